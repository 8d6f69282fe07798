package stagekit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/fernandezvara/dbkit"
)

// Pagination bounds for list and search pages.
const (
	DefaultTake = 50
	MaxTake     = 50
)

// ClampPagination normalizes a skip/take pair: skip is floored at 0,
// take falls back to DefaultTake when non-positive and is capped at MaxTake.
func ClampPagination(skip, take int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if take < 1 {
		take = DefaultTake
	}
	if take > MaxTake {
		take = MaxTake
	}
	return skip, take
}

// Store is the generic access engine for one declared entity: uniform CRUD
// and search over any Base-embedding model, driven entirely by the entity's
// registry descriptor. T is the entity struct; the pointer type is inferred.
//
// Example:
//
//	venues, err := stagekit.NewStore[stagekit.Venue](service, "Venue")
//	venue, err := venues.GetByID(ctx, id, "Events")
type Store[T any, PT EntityPtr[T]] struct {
	svc  *Service
	desc *EntityDescriptor
	log  *zap.Logger
}

// NewStore creates a store for a declared entity.
func NewStore[T any, PT EntityPtr[T]](svc *Service, entityName string) (*Store[T, PT], error) {
	desc := svc.registry.Entity(entityName)
	if desc == nil {
		return nil, NewError(ErrUnknownEntity, fmt.Sprintf("entity %q not defined", entityName))
	}
	return &Store[T, PT]{
		svc:  svc,
		desc: desc,
		log:  svc.log,
	}, nil
}

// Descriptor returns the entity descriptor the store operates on.
func (s *Store[T, PT]) Descriptor() *EntityDescriptor {
	return s.desc
}

// List returns all rows ordered by id, with the requested navigations
// eager-loaded. Invalid include paths are dropped with a logged warning.
func (s *Store[T, PT]) List(ctx context.Context, includes ...string) ([]T, error) {
	var rows []T
	q := s.svc.db.NewSelect().Model(&rows)
	q = applyIncludes(q, validIncludes(s.desc, includes, s.log))
	q = q.OrderExpr("?TableAlias.id ASC")

	if err := dbkit.WithErr1(q.Scan(ctx), "List"+s.desc.Name()).Err(); err != nil {
		return nil, NewError(ErrPersistence, "failed to list entities").WithEntity(s.desc.Name())
	}
	return rows, nil
}

// ListPage returns one page of rows plus the total row count (unpaged).
// Skip and take are clamped, never rejected.
func (s *Store[T, PT]) ListPage(ctx context.Context, includes []string, skip, take int) ([]T, int, error) {
	skip, take = ClampPagination(skip, take)

	var rows []T
	q := s.svc.db.NewSelect().Model(&rows)
	q = applyIncludes(q, validIncludes(s.desc, includes, s.log))
	q = q.OrderExpr("?TableAlias.id ASC").Limit(take).Offset(skip)

	total, err := q.ScanAndCount(ctx)
	if err = dbkit.WithErr1(err, "ListPage"+s.desc.Name()).Err(); err != nil {
		return nil, 0, NewError(ErrPersistence, "failed to list entities").WithEntity(s.desc.Name())
	}
	return rows, total, nil
}

// GetByID returns one row by id with the requested navigations eager-loaded.
func (s *Store[T, PT]) GetByID(ctx context.Context, id int64, includes ...string) (PT, error) {
	entity := PT(new(T))
	q := s.svc.db.NewSelect().Model(entity).Where("?TableAlias.id = ?", id)
	q = applyIncludes(q, validIncludes(s.desc, includes, s.log))

	if err := q.Scan(ctx); err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrNotFound, fmt.Sprintf("%s %d does not exist", s.desc.Name(), id)).
				WithEntity(s.desc.Name())
		}
		return nil, NewError(ErrPersistence, "failed to load entity").WithEntity(s.desc.Name())
	}
	return entity, nil
}

// Exists reports whether a row with the id exists.
func (s *Store[T, PT]) Exists(ctx context.Context, id int64) (bool, error) {
	return dbkit.Exists[T](ctx, s.svc.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("id = ?", id)
	})
}

// Count returns the total number of rows.
func (s *Store[T, PT]) Count(ctx context.Context) (int, error) {
	return dbkit.Count[T](ctx, s.svc.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q
	})
}

// Create inserts a new row. The header is assigned here: a fresh UUID and
// both timestamps; any caller-supplied id is discarded. Declared navigations
// are linked (existing rows by id, never created), join tables synced, and
// when the entity declares direct ownership the acting user is granted an
// Owner membership. Everything runs in one transaction: a resource that can
// be owned is never persisted without its owner record.
func (s *Store[T, PT]) Create(ctx context.Context, entity PT) (PT, error) {
	if entity == nil {
		return nil, NewError(ErrValidation, "entity payload is nil").WithEntity(s.desc.Name())
	}

	meta := entity.Meta()
	meta.ID = 0
	meta.UUID = uuid.NewString()
	now := time.Now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	resource, ownable := s.desc.Resource()
	actorID := GetActorID(ctx)
	if ownable && actorID == 0 {
		return nil, NewError(ErrNoActorID, "actor ID required to create an ownable resource").
			WithEntity(s.desc.Name())
	}

	err := s.svc.Transaction(ctx, func(tx dbkit.IDB) error {
		if err := linkRelationships(ctx, tx, s.desc, entity); err != nil {
			return err
		}

		result, err := tx.NewInsert().Model(entity).Exec(ctx)
		if err = dbkit.WithErr(result, err, "Create"+s.desc.Name()).Err(); err != nil {
			return NewError(ErrPersistence, "failed to create entity").WithEntity(s.desc.Name())
		}

		if err := syncRelationships(ctx, tx, s.desc, entity); err != nil {
			return err
		}

		if ownable {
			if err := s.svc.grantOwner(ctx, tx, actorID, resource, meta.ID); err != nil {
				s.log.Error("owner grant failed, rolling back create",
					zap.String("entity", s.desc.Name()),
					zap.Int64("actor_id", actorID),
					zap.Error(err))
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// Update persists a payload's scalar columns over an existing row.
// Identity is immutable: UUID and CreatedAt are taken from the stored row,
// UpdatedAt is bumped. Navigations go exclusively through the linker; a
// payload that omits a navigation leaves the stored relationship unchanged.
func (s *Store[T, PT]) Update(ctx context.Context, entity PT) (PT, error) {
	if entity == nil {
		return nil, NewError(ErrValidation, "entity payload is nil").WithEntity(s.desc.Name())
	}

	meta := entity.Meta()
	if meta.ID <= 0 {
		return nil, NewError(ErrNotFound, "entity id is required for update").WithEntity(s.desc.Name())
	}

	existing := PT(new(T))
	err := s.svc.db.NewSelect().
		Model(existing).
		Where("?TableAlias.id = ?", meta.ID).
		Scan(ctx)
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrNotFound, fmt.Sprintf("%s %d does not exist", s.desc.Name(), meta.ID)).
				WithEntity(s.desc.Name())
		}
		return nil, NewError(ErrPersistence, "failed to load entity").WithEntity(s.desc.Name())
	}

	stored := existing.Meta()
	meta.UUID = stored.UUID
	meta.CreatedAt = stored.CreatedAt
	meta.UpdatedAt = time.Now().UTC()

	carryRelationships(s.desc, entity, existing)

	err = s.svc.Transaction(ctx, func(tx dbkit.IDB) error {
		if err := linkRelationships(ctx, tx, s.desc, entity); err != nil {
			return err
		}

		result, err := tx.NewUpdate().Model(entity).WherePK().Exec(ctx)
		if err = dbkit.WithErr(result, err, "Update"+s.desc.Name()).Err(); err != nil {
			return NewError(ErrPersistence, "failed to update entity").WithEntity(s.desc.Name())
		}

		return syncRelationships(ctx, tx, s.desc, entity)
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// Delete removes a row by id. Returns false, not an error, when the row
// does not exist.
func (s *Store[T, PT]) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := s.svc.db.NewDelete().
		Model((*T)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err = dbkit.WithErr(result, err, "Delete"+s.desc.Name()).Err(); err != nil {
		return false, NewError(ErrPersistence, "failed to delete entity").WithEntity(s.desc.Name())
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// Search runs a DSL query and returns every match.
func (s *Store[T, PT]) Search(ctx context.Context, query string, includes ...string) ([]T, error) {
	rows, _, err := s.search(ctx, query, includes, 0, 0, false)
	return rows, err
}

// SearchPage runs a DSL query and returns one page of matches plus the
// total match count. With fuzzy terms the candidate set is materialized
// first and pagination happens after the distance filter; otherwise
// pagination pushes down to the store.
func (s *Store[T, PT]) SearchPage(ctx context.Context, query string, includes []string, skip, take int) ([]T, int, error) {
	return s.search(ctx, query, includes, skip, take, true)
}

func (s *Store[T, PT]) search(ctx context.Context, query string, includes []string, skip, take int, paged bool) ([]T, int, error) {
	parsed, err := ParseSearch(query)
	if err != nil {
		return nil, 0, err
	}
	bound, err := s.desc.bindSearch(parsed)
	if err != nil {
		return nil, 0, err
	}
	pushdown, fuzzy := splitFuzzy(bound)

	build := func(rows *[]T) *bun.SelectQuery {
		q := s.svc.db.NewSelect().Model(rows)
		q = applyIncludes(q, validIncludes(s.desc, includes, s.log))
		q = applySearchTerms(q, pushdown)
		return q.OrderExpr("?TableAlias.id ASC")
	}

	if len(fuzzy) == 0 {
		var rows []T
		q := build(&rows)
		if paged {
			skip, take = ClampPagination(skip, take)
			total, err := q.Limit(take).Offset(skip).ScanAndCount(ctx)
			if err = dbkit.WithErr1(err, "Search"+s.desc.Name()).Err(); err != nil {
				return nil, 0, NewError(ErrPersistence, "failed to search entities").WithEntity(s.desc.Name())
			}
			return rows, total, nil
		}
		if err := dbkit.WithErr1(q.Scan(ctx), "Search"+s.desc.Name()).Err(); err != nil {
			return nil, 0, NewError(ErrPersistence, "failed to search entities").WithEntity(s.desc.Name())
		}
		return rows, len(rows), nil
	}

	// Fuzzy terms cannot push down: materialize the candidate set the
	// non-fuzzy predicates leave, then filter by edit distance.
	var candidates []T
	if err := dbkit.WithErr1(build(&candidates).Scan(ctx), "Search"+s.desc.Name()).Err(); err != nil {
		return nil, 0, NewError(ErrPersistence, "failed to search entities").WithEntity(s.desc.Name())
	}

	matched := make([]T, 0, len(candidates))
	for i := range candidates {
		if matchesFuzzy(PT(&candidates[i]), fuzzy, s.svc.fuzzyThreshold) {
			matched = append(matched, candidates[i])
		}
	}

	total := len(matched)
	if paged {
		skip, take = ClampPagination(skip, take)
		if skip >= total {
			return []T{}, total, nil
		}
		end := skip + take
		if end > total {
			end = total
		}
		matched = matched[skip:end]
	}
	return matched, total, nil
}
