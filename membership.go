package stagekit

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/fernandezvara/dbkit"
)

// Role is a membership role. The vocabulary is closed; authorization is a
// set intersection between a membership's roles and the required roles.
type Role string

const (
	RoleOrganizer     Role = "organizer"
	RoleMember        Role = "member"
	RoleViewer        Role = "viewer"
	RoleOwner         Role = "owner"
	RoleManager       Role = "manager"
	RoleAdministrator Role = "administrator"
)

// Roles returns the full role vocabulary.
func Roles() []Role {
	return []Role{
		RoleOrganizer,
		RoleMember,
		RoleViewer,
		RoleOwner,
		RoleManager,
		RoleAdministrator,
	}
}

// ValidRole reports whether a role is part of the vocabulary.
func ValidRole(role Role) bool {
	switch role {
	case RoleOrganizer, RoleMember, RoleViewer, RoleOwner, RoleManager, RoleAdministrator:
		return true
	}
	return false
}

// ResourceType tags membership records with the kind of resource they
// grant access to. Only entities declared with DirectOwnership carry one.
type ResourceType string

const (
	ResourceEvent  ResourceType = "event"
	ResourceArtist ResourceType = "artist"
	ResourceVenue  ResourceType = "venue"
	ResourceTour   ResourceType = "tour"
)

// ResourceTypes returns the full resource type vocabulary.
func ResourceTypes() []ResourceType {
	return []ResourceType{ResourceEvent, ResourceArtist, ResourceVenue, ResourceTour}
}

// ValidResourceType reports whether a resource type is part of the vocabulary.
func ValidResourceType(resource ResourceType) bool {
	switch resource {
	case ResourceEvent, ResourceArtist, ResourceVenue, ResourceTour:
		return true
	}
	return false
}

// ResourceMembership is a (user, resource type, resource id, role set)
// grant. A user may hold several records on the same resource; access is a
// disjunction over all of them. Uniqueness is deliberately not enforced.
type ResourceMembership struct {
	bun.BaseModel `bun:"table:resource_memberships,alias:rm"`

	ID           int64        `bun:"id,pk,autoincrement"`
	UserID       int64        `bun:"user_id,notnull"`
	ResourceType ResourceType `bun:"resource_type,notnull"`
	ResourceID   int64        `bun:"resource_id,notnull"`
	Roles        []Role       `bun:"roles,notnull,type:text[]"`
	CreatedAt    time.Time    `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time    `bun:"updated_at,notnull,default:current_timestamp"`
}

// HasRole checks if the record carries a specific role.
func (m *ResourceMembership) HasRole(role Role) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if the record carries at least one of the given roles.
func (m *ResourceMembership) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if m.HasRole(role) {
			return true
		}
	}
	return false
}

// GrantMembership grants roles to a user on a resource. All requested roles
// already held is an error; otherwise a new membership record carrying the
// requested roles is created and the change is audited.
//
// Example:
//
//	err := service.GrantMembership(ctx, userID, stagekit.ResourceVenue, venueID,
//	    stagekit.RoleManager)
func (s *Service) GrantMembership(ctx context.Context, userID int64, resource ResourceType, resourceID int64, roles ...Role) error {
	if len(roles) == 0 {
		return NewError(ErrValidation, "at least one role is required").
			WithResource(resource, resourceID).
			WithUser(userID)
	}
	if !ValidResourceType(resource) {
		return NewError(ErrInvalidResource, string(resource)).WithUser(userID)
	}
	for _, role := range roles {
		if !ValidRole(role) {
			return NewError(ErrInvalidRole, string(role)).
				WithResource(resource, resourceID).
				WithUser(userID)
		}
	}

	actorID := GetActorID(ctx)
	if actorID == 0 {
		return NewError(ErrNoActorID, "actor ID required for membership grant")
	}

	previous, err := s.userRolesOn(ctx, s.db, userID, resource, resourceID)
	if err != nil {
		return err
	}

	missing := rolesMissingFrom(previous, roles)
	if len(missing) == 0 {
		return NewError(ErrAlreadyGranted, "user already holds all requested roles").
			WithResource(resource, resourceID).
			WithUser(userID)
	}

	membership := &ResourceMembership{
		UserID:       userID,
		ResourceType: resource,
		ResourceID:   resourceID,
		Roles:        roles,
	}
	result, err := s.db.NewInsert().Model(membership).Exec(ctx)
	if err = dbkit.WithErr(result, err, "CreateMembership").Err(); err != nil {
		return NewError(ErrPersistence, "failed to create membership").
			WithResource(resource, resourceID).
			WithUser(userID)
	}

	audit := GetAuditContext(ctx)
	_ = s.logAudit(ctx, &AuditEntry{
		ActorID:       actorID,
		Action:        AuditActionGranted,
		TargetUserID:  userID,
		ResourceType:  resource,
		ResourceID:    resourceID,
		Roles:         roles,
		PreviousRoles: previous,
		NewRoles:      append(previous, missing...),
		IPAddress:     audit.IPAddress,
		UserAgent:     audit.UserAgent,
		RequestID:     audit.RequestID,
	}) // Log error but don't fail the grant

	return nil
}

// RevokeMembership removes roles from a user on a resource across all of
// the user's membership records there. Records left with an empty role set
// are deleted. Revoking roles the user does not hold is an error.
func (s *Service) RevokeMembership(ctx context.Context, userID int64, resource ResourceType, resourceID int64, roles ...Role) error {
	if len(roles) == 0 {
		return NewError(ErrValidation, "at least one role is required").
			WithResource(resource, resourceID).
			WithUser(userID)
	}

	actorID := GetActorID(ctx)
	if actorID == 0 {
		return NewError(ErrNoActorID, "actor ID required for membership revocation")
	}

	var memberships []ResourceMembership
	err := s.db.NewSelect().
		Model(&memberships).
		Where("user_id = ? AND resource_type = ? AND resource_id = ?", userID, resource, resourceID).
		Scan(ctx)
	if err = dbkit.WithErr1(err, "LoadMemberships").Err(); err != nil {
		return NewError(ErrPersistence, "failed to load memberships").
			WithResource(resource, resourceID).
			WithUser(userID)
	}

	previous := flattenRoles(memberships)
	if len(rolesMissingFrom(previous, roles)) == len(roles) {
		return NewError(ErrNotGranted, "user does not hold any of the requested roles").
			WithResource(resource, resourceID).
			WithUser(userID)
	}

	revoked := make(map[Role]bool, len(roles))
	for _, role := range roles {
		revoked[role] = true
	}

	err = s.Transaction(ctx, func(tx dbkit.IDB) error {
		for i := range memberships {
			m := &memberships[i]
			remaining := make([]Role, 0, len(m.Roles))
			for _, r := range m.Roles {
				if !revoked[r] {
					remaining = append(remaining, r)
				}
			}
			if len(remaining) == len(m.Roles) {
				continue
			}
			if len(remaining) == 0 {
				result, err := tx.NewDelete().
					Model((*ResourceMembership)(nil)).
					Where("id = ?", m.ID).
					Exec(ctx)
				if err = dbkit.WithErr(result, err, "DeleteMembership").Err(); err != nil {
					return err
				}
				continue
			}
			m.Roles = remaining
			m.UpdatedAt = time.Now().UTC()
			result, err := tx.NewUpdate().
				Model(m).
				Column("roles", "updated_at").
				WherePK().
				Exec(ctx)
			if err = dbkit.WithErr(result, err, "UpdateMembership").Err(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return NewError(ErrPersistence, "failed to revoke membership").
			WithResource(resource, resourceID).
			WithUser(userID)
	}

	newRoles := rolesMissingFrom(roles, previous)

	audit := GetAuditContext(ctx)
	_ = s.logAudit(ctx, &AuditEntry{
		ActorID:       actorID,
		Action:        AuditActionRevoked,
		TargetUserID:  userID,
		ResourceType:  resource,
		ResourceID:    resourceID,
		Roles:         roles,
		PreviousRoles: previous,
		NewRoles:      newRoles,
		IPAddress:     audit.IPAddress,
		UserAgent:     audit.UserAgent,
		RequestID:     audit.RequestID,
	}) // Log error but don't fail the revocation

	return nil
}

// GetUserMemberships returns every membership record a user holds.
func (s *Service) GetUserMemberships(ctx context.Context, userID int64) ([]ResourceMembership, error) {
	var memberships []ResourceMembership
	err := s.db.NewSelect().
		Model(&memberships).
		Where("user_id = ?", userID).
		Order("resource_type", "resource_id").
		Scan(ctx)
	if err = dbkit.WithErr1(err, "GetUserMemberships").Err(); err != nil {
		return nil, NewError(ErrPersistence, "failed to load user memberships").WithUser(userID)
	}
	return memberships, nil
}

// GetResourceMembers returns every membership record on a resource.
func (s *Service) GetResourceMembers(ctx context.Context, resource ResourceType, resourceID int64) ([]ResourceMembership, error) {
	var memberships []ResourceMembership
	err := s.db.NewSelect().
		Model(&memberships).
		Where("resource_type = ? AND resource_id = ?", resource, resourceID).
		Order("user_id").
		Scan(ctx)
	if err = dbkit.WithErr1(err, "GetResourceMembers").Err(); err != nil {
		return nil, NewError(ErrPersistence, "failed to load resource members").
			WithResource(resource, resourceID)
	}
	return memberships, nil
}

// HasMembership checks if a user holds at least one membership record on a
// resource, regardless of roles.
func (s *Service) HasMembership(ctx context.Context, userID int64, resource ResourceType, resourceID int64) bool {
	exists, err := dbkit.Exists[ResourceMembership](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("user_id = ? AND resource_type = ? AND resource_id = ?", userID, resource, resourceID)
	})
	if err != nil {
		return false
	}
	return exists
}

// CountMembers returns the number of membership records on a resource.
func (s *Service) CountMembers(ctx context.Context, resource ResourceType, resourceID int64) (int, error) {
	return dbkit.Count[ResourceMembership](ctx, s.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("resource_type = ? AND resource_id = ?", resource, resourceID)
	})
}

// grantOwner records the creating actor as owner of a freshly inserted
// resource. Runs on the create transaction; a failure rolls the insert back.
func (s *Service) grantOwner(ctx context.Context, tx dbkit.IDB, actorID int64, resource ResourceType, resourceID int64) error {
	membership := &ResourceMembership{
		UserID:       actorID,
		ResourceType: resource,
		ResourceID:   resourceID,
		Roles:        []Role{RoleOwner},
	}
	result, err := tx.NewInsert().Model(membership).Exec(ctx)
	if err = dbkit.WithErr(result, err, "GrantOwner").Err(); err != nil {
		return NewError(ErrPersistence, "failed to grant owner membership").
			WithResource(resource, resourceID).
			WithActor(actorID)
	}

	audit := GetAuditContext(ctx)
	_ = s.logAuditOn(ctx, tx, &AuditEntry{
		ActorID:      actorID,
		Action:       AuditActionGranted,
		TargetUserID: actorID,
		ResourceType: resource,
		ResourceID:   resourceID,
		Roles:        []Role{RoleOwner},
		NewRoles:     []Role{RoleOwner},
		IPAddress:    audit.IPAddress,
		UserAgent:    audit.UserAgent,
		RequestID:    audit.RequestID,
	})

	return nil
}

// userRolesOn returns the union of the user's roles across all membership
// records on one resource.
func (s *Service) userRolesOn(ctx context.Context, db dbkit.IDB, userID int64, resource ResourceType, resourceID int64) ([]Role, error) {
	var memberships []ResourceMembership
	err := db.NewSelect().
		Model(&memberships).
		Where("user_id = ? AND resource_type = ? AND resource_id = ?", userID, resource, resourceID).
		Scan(ctx)
	if err = dbkit.WithErr1(err, "UserRolesOn").Err(); err != nil {
		return nil, NewError(ErrPersistence, "failed to load memberships").
			WithResource(resource, resourceID).
			WithUser(userID)
	}
	return flattenRoles(memberships), nil
}

func flattenRoles(memberships []ResourceMembership) []Role {
	seen := make(map[Role]bool)
	var roles []Role
	for _, m := range memberships {
		for _, r := range m.Roles {
			if !seen[r] {
				seen[r] = true
				roles = append(roles, r)
			}
		}
	}
	return roles
}

// rolesMissingFrom returns the roles in want that are absent from have.
func rolesMissingFrom(have, want []Role) []Role {
	held := make(map[Role]bool, len(have))
	for _, r := range have {
		held[r] = true
	}
	var missing []Role
	for _, r := range want {
		if !held[r] {
			missing = append(missing, r)
		}
	}
	return missing
}
