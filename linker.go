package stagekit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// Relationship linking is strictly link-only: a payload's nested objects can
// reference pre-existing rows by positive id, and nothing else. Nested
// scalar fields never create or mutate related rows. The helpers below build
// the LinkFunc/SyncFunc/CarryFunc closures that DefaultRegistry (or any
// custom registry) attaches to navigations.

// LinkReference builds a LinkFunc for a single-valued navigation. The field
// accessor returns the address of the payload's reference slot; fk stores
// the resolved id in the scalar foreign key column.
//
// Semantics: a nil reference is "absent", left untouched. A reference with a
// non-positive id clears the slot and the foreign key. A positive id loads
// the row; a missing row also clears (invalid ids are not errors).
func LinkReference[T any, PT EntityPtr[T], R any, PR EntityPtr[R]](field func(PT) *PR, fk func(PT, int64)) LinkFunc {
	return func(ctx context.Context, db dbkit.IDB, entity any) error {
		e := entity.(PT)
		slot := field(e)
		ref := *slot
		if ref == nil {
			return nil
		}

		id := ref.Meta().ID
		if id <= 0 {
			*slot = nil
			fk(e, 0)
			return nil
		}

		loaded := PR(new(R))
		err := db.NewSelect().
			Model(loaded).
			Where("?TableAlias.id = ?", id).
			Scan(ctx)
		if err != nil {
			if dbkit.IsNotFound(err) {
				*slot = nil
				fk(e, 0)
				return nil
			}
			return NewError(ErrPersistence, "failed to link reference")
		}

		*slot = loaded
		fk(e, id)
		return nil
	}
}

// LinkCollection builds a LinkFunc for a set-valued navigation. The field
// accessor returns the address of the payload's slice.
//
// Semantics: a nil slice is "absent", left untouched. Otherwise the positive
// ids of the payload elements are collected and exactly those rows are
// loaded and assigned; no valid ids yields an empty (non-nil) set.
func LinkCollection[T any, PT EntityPtr[T], R any, PR EntityPtr[R]](field func(PT) *[]PR) LinkFunc {
	return func(ctx context.Context, db dbkit.IDB, entity any) error {
		e := entity.(PT)
		slot := field(e)
		if *slot == nil {
			return nil
		}

		ids := make([]int64, 0, len(*slot))
		seen := make(map[int64]bool, len(*slot))
		for _, item := range *slot {
			if item == nil {
				continue
			}
			if id := item.Meta().ID; id > 0 && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}

		if len(ids) == 0 {
			*slot = []PR{}
			return nil
		}

		var rows []PR
		err := db.NewSelect().
			Model(&rows).
			Where("?TableAlias.id IN (?)", bun.In(ids)).
			Scan(ctx)
		if err != nil {
			return NewError(ErrPersistence, "failed to link collection")
		}
		if rows == nil {
			rows = []PR{}
		}

		*slot = rows
		return nil
	}
}

// CarryFK builds a CarryFunc for a single-valued navigation: when an update
// payload omits the reference, the stored foreign key is copied from the
// existing row so the update does not clear it.
func CarryFK[T any, PT EntityPtr[T], R any, PR EntityPtr[R]](field func(PT) *PR, fk func(PT) int64, set func(PT, int64)) CarryFunc {
	return func(entity, existing any) {
		e := entity.(PT)
		ex := existing.(PT)
		if *field(e) == nil {
			set(e, fk(ex))
		}
	}
}

// SyncJoin builds a SyncFunc that persists a linked many-to-many collection:
// delete the entity's join rows, bulk-insert one row per linked element.
// A nil collection (absent from the payload) leaves the join table alone.
func SyncJoin[T any, PT EntityPtr[T], R any, PR EntityPtr[R], J any](
	field func(PT) []PR,
	row func(PT, PR) J,
	clear func(*bun.DeleteQuery, PT) *bun.DeleteQuery,
) SyncFunc {
	return func(ctx context.Context, db dbkit.IDB, entity any) error {
		e := entity.(PT)
		items := field(e)
		if items == nil {
			return nil
		}

		result, err := clear(db.NewDelete().Model((*J)(nil)), e).Exec(ctx)
		if err = dbkit.WithErr(result, err, "SyncJoinClear").Err(); err != nil {
			return NewError(ErrPersistence, "failed to clear join rows")
		}

		if len(items) == 0 {
			return nil
		}

		rows := make([]J, 0, len(items))
		for _, item := range items {
			rows = append(rows, row(e, item))
		}
		result, err = db.NewInsert().Model(&rows).Exec(ctx)
		if err = dbkit.WithErr(result, err, "SyncJoinInsert").Err(); err != nil {
			return NewError(ErrPersistence, "failed to insert join rows")
		}
		return nil
	}
}

// linkRelationships runs every declared link function against a payload, in
// declaration order.
func linkRelationships(ctx context.Context, db dbkit.IDB, desc *EntityDescriptor, entity any) error {
	for _, nav := range desc.navOrder {
		if nav.link == nil {
			continue
		}
		if err := nav.link(ctx, db, entity); err != nil {
			return err
		}
	}
	return nil
}

// syncRelationships persists every declared join table for a saved entity.
func syncRelationships(ctx context.Context, db dbkit.IDB, desc *EntityDescriptor, entity any) error {
	for _, nav := range desc.navOrder {
		if nav.sync == nil {
			continue
		}
		if err := nav.sync(ctx, db, entity); err != nil {
			return err
		}
	}
	return nil
}

// carryRelationships copies stored foreign keys from the existing row onto
// an update payload for every navigation the payload omits.
func carryRelationships(desc *EntityDescriptor, entity, existing any) {
	for _, nav := range desc.navOrder {
		if nav.carry != nil {
			nav.carry(entity, existing)
		}
	}
}
