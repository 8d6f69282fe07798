package stagekit

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/fernandezvara/dbkit"
)

// Authorize decides whether a principal may act on a resource with at least
// one of the required roles. Evaluation order: principal existence (unknown
// principals are denied), admin override, direct membership on the resource,
// then cascade rules in ascending priority. The first granting path wins.
//
// Passing no required roles asks only for any membership on the resource.
//
// A cascade rule that fails (broken navigation, owning entity without a
// resource tag, query error) is logged and skipped; errors never grant and
// never abort the walk.
//
// Example:
//
//	if service.Authorize(ctx, userID, stagekit.ResourceEvent, eventID,
//	    stagekit.RoleOwner, stagekit.RoleManager) {
//	    // allowed
//	}
func (s *Service) Authorize(ctx context.Context, principalID int64, resource ResourceType, resourceID int64, required ...Role) bool {
	desc := s.registry.EntityForResource(resource)
	if desc == nil {
		s.log.Error("no entity declares direct ownership for resource type",
			zap.String("resource_type", string(resource)))
		return false
	}
	return s.authorize(ctx, principalID, desc, resourceID, required)
}

// AuthorizeEntity is Authorize addressed by entity name instead of resource
// type, for entities whose access is cascade-only (no direct ownership tag).
func (s *Service) AuthorizeEntity(ctx context.Context, principalID int64, entityName string, resourceID int64, required ...Role) bool {
	desc := s.registry.Entity(entityName)
	if desc == nil {
		s.log.Error("authorize against undeclared entity",
			zap.String("entity", entityName))
		return false
	}
	return s.authorize(ctx, principalID, desc, resourceID, required)
}

func (s *Service) authorize(ctx context.Context, principalID int64, desc *EntityDescriptor, resourceID int64, required []Role) bool {
	admin, exists := s.principalIsAdmin(ctx, principalID)
	if !exists {
		s.log.Debug("denying unknown principal",
			zap.Int64("principal_id", principalID),
			zap.String("entity", desc.Name()))
		return false
	}
	if admin {
		s.log.Debug("admin override",
			zap.Int64("principal_id", principalID),
			zap.String("entity", desc.Name()),
			zap.Int64("resource_id", resourceID))
		return true
	}

	if resource, ok := desc.Resource(); ok {
		if s.hasDirectMembership(ctx, principalID, resource, resourceID, required) {
			return true
		}
	}

	for _, rule := range desc.Cascades() {
		switch rule.kind {
		case CascadeMembership:
			ownerID, err := rule.resolve(ctx, s.db, resourceID)
			if err != nil {
				s.logCascadeError(desc, rule, err)
				continue
			}
			if ownerID <= 0 {
				s.logAbsentOwner(desc, rule, resourceID)
				continue
			}
			ownerDesc := s.registry.Entity(rule.owner)
			if ownerDesc == nil {
				s.log.Error("cascade rule points at undeclared owning entity",
					zap.String("entity", desc.Name()),
					zap.String("navigation", rule.navigation),
					zap.String("owner", rule.owner))
				continue
			}
			ownerResource, ok := ownerDesc.Resource()
			if !ok {
				s.log.Error("cascade owning entity declares no direct ownership",
					zap.String("entity", desc.Name()),
					zap.String("owner", rule.owner))
				continue
			}
			if s.hasDirectMembership(ctx, principalID, ownerResource, ownerID, required) {
				return true
			}

		case CascadeInclusion:
			included, err := rule.contains(ctx, s.db, resourceID, principalID)
			if err != nil {
				s.logCascadeError(desc, rule, err)
				continue
			}
			if included {
				return true
			}

		case CascadeIdentity:
			ownerID, err := rule.resolve(ctx, s.db, resourceID)
			if err != nil {
				s.logCascadeError(desc, rule, err)
				continue
			}
			if ownerID <= 0 {
				s.logAbsentOwner(desc, rule, resourceID)
				continue
			}
			if ownerID == principalID {
				return true
			}
		}
	}

	s.log.Debug("access denied",
		zap.Int64("principal_id", principalID),
		zap.String("entity", desc.Name()),
		zap.Int64("resource_id", resourceID))
	return false
}

// principalIsAdmin looks the principal up and returns (isAdmin, exists).
func (s *Service) principalIsAdmin(ctx context.Context, principalID int64) (bool, bool) {
	var user User
	err := s.db.NewSelect().
		Model(&user).
		Column("id", "is_admin").
		Where("?TableAlias.id = ?", principalID).
		Scan(ctx)
	if err != nil {
		if !dbkit.IsNotFound(err) {
			s.log.Error("principal lookup failed",
				zap.Int64("principal_id", principalID),
				zap.Error(err))
		}
		return false, false
	}
	return user.IsAdmin, true
}

// hasDirectMembership checks the principal's membership records on one
// resource against the required roles. With no required roles, any record
// grants.
func (s *Service) hasDirectMembership(ctx context.Context, userID int64, resource ResourceType, resourceID int64, required []Role) bool {
	var memberships []ResourceMembership
	err := s.db.NewSelect().
		Model(&memberships).
		Where("user_id = ? AND resource_type = ? AND resource_id = ?", userID, resource, resourceID).
		Scan(ctx)
	if err != nil {
		s.log.Error("membership lookup failed",
			zap.Int64("user_id", userID),
			zap.String("resource_type", string(resource)),
			zap.Int64("resource_id", resourceID),
			zap.Error(err))
		return false
	}

	if len(required) == 0 {
		return len(memberships) > 0
	}
	for i := range memberships {
		if memberships[i].HasAnyRole(required...) {
			return true
		}
	}
	return false
}

func (s *Service) logCascadeError(desc *EntityDescriptor, rule *CascadeRule, err error) {
	s.log.Error("cascade rule evaluation failed",
		zap.String("entity", desc.Name()),
		zap.String("navigation", rule.navigation),
		zap.Int("priority", rule.priority),
		zap.Error(err))
}

func (s *Service) logAbsentOwner(desc *EntityDescriptor, rule *CascadeRule, resourceID int64) {
	if !rule.required {
		return
	}
	s.log.Warn("required owner reference is absent",
		zap.String("entity", desc.Name()),
		zap.String("navigation", rule.navigation),
		zap.Int64("resource_id", resourceID))
}

// OwnerColumn builds an OwnerFunc reading a foreign key column from the
// entity's own table. A NULL column or a missing row is "no owner".
//
// Example:
//
//	CascadeFrom("Venue", "Venue", 10, OwnerColumn("events", "venue_id"))
func OwnerColumn(table, column string) OwnerFunc {
	return func(ctx context.Context, db dbkit.IDB, resourceID int64) (int64, error) {
		var owner sql.NullInt64
		err := db.NewSelect().
			ColumnExpr("?", bun.Ident(column)).
			Table(table).
			Where("id = ?", resourceID).
			Scan(ctx, &owner)
		if err != nil {
			if dbkit.IsNotFound(err) {
				return 0, nil
			}
			return 0, dbkit.WithErr1(err, "OwnerColumn").Err()
		}
		if !owner.Valid {
			return 0, nil
		}
		return owner.Int64, nil
	}
}

// MemberJoin builds a ContainsFunc probing a join table for a
// (resource, principal) pair.
//
// Example:
//
//	CascadeMembers("Organizers", 20, MemberJoin("event_organizers", "event_id", "user_id"))
func MemberJoin(table, resourceColumn, principalColumn string) ContainsFunc {
	return func(ctx context.Context, db dbkit.IDB, resourceID, principalID int64) (bool, error) {
		var included bool
		err := db.NewSelect().
			ColumnExpr("count(*) > 0").
			Table(table).
			Where("? = ? AND ? = ?", bun.Ident(resourceColumn), resourceID, bun.Ident(principalColumn), principalID).
			Scan(ctx, &included)
		if err != nil {
			return false, dbkit.WithErr1(err, "MemberJoin").Err()
		}
		return included, nil
	}
}
