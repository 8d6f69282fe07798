package stagekit

import (
	"context"
	"strconv"
)

// Checker is a per-principal snapshot for repeated direct-path checks in
// handlers: the admin flag plus every membership record, loaded once.
// Cascade rules are not evaluated here; anything that needs to walk a
// relationship goes through Service.Authorize.
type Checker struct {
	userID      int64
	admin       bool
	memberships []ResourceMembership
	byResource  map[string][]Role
}

// GetChecker loads a principal's access snapshot.
//
// Example:
//
//	checker, err := service.GetChecker(ctx, userID)
//	if checker.Can(stagekit.ResourceVenue, venueID, stagekit.RoleManager) {
//	    // direct manager of the venue (or admin)
//	}
func (s *Service) GetChecker(ctx context.Context, userID int64) (*Checker, error) {
	admin, exists := s.principalIsAdmin(ctx, userID)
	if !exists {
		return nil, NewError(ErrNotFound, "principal does not exist").WithUser(userID)
	}

	memberships, err := s.GetUserMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewChecker(userID, admin, memberships), nil
}

// NewChecker builds a Checker from already-loaded membership records.
func NewChecker(userID int64, admin bool, memberships []ResourceMembership) *Checker {
	c := &Checker{
		userID:      userID,
		admin:       admin,
		memberships: memberships,
		byResource:  make(map[string][]Role),
	}
	for _, m := range memberships {
		key := resourceKey(m.ResourceType, m.ResourceID)
		c.byResource[key] = append(c.byResource[key], m.Roles...)
	}
	return c
}

// UserID returns the principal this checker is for.
func (c *Checker) UserID() int64 {
	return c.userID
}

// IsAdmin reports whether the principal bypasses ownership checks.
func (c *Checker) IsAdmin() bool {
	return c.admin
}

// Can checks direct access to a resource: admin, or at least one of the
// required roles on it. With no roles given, any membership suffices.
func (c *Checker) Can(resource ResourceType, resourceID int64, roles ...Role) bool {
	if c.admin {
		return true
	}
	held := c.byResource[resourceKey(resource, resourceID)]
	if len(roles) == 0 {
		return len(held) > 0
	}
	for _, want := range roles {
		for _, have := range held {
			if have == want {
				return true
			}
		}
	}
	return false
}

// HasAllRoles checks that the principal holds every one of the given roles
// on a resource (admins always pass).
func (c *Checker) HasAllRoles(resource ResourceType, resourceID int64, roles ...Role) bool {
	if c.admin {
		return true
	}
	for _, want := range roles {
		if !c.Can(resource, resourceID, want) {
			return false
		}
	}
	return true
}

// RolesOn returns the principal's role union on one resource.
func (c *Checker) RolesOn(resource ResourceType, resourceID int64) []Role {
	held := c.byResource[resourceKey(resource, resourceID)]
	seen := make(map[Role]bool, len(held))
	roles := make([]Role, 0, len(held))
	for _, r := range held {
		if !seen[r] {
			seen[r] = true
			roles = append(roles, r)
		}
	}
	return roles
}

// ResourcesWithRole returns the ids of every resource of one type where
// the principal holds the role.
func (c *Checker) ResourcesWithRole(resource ResourceType, role Role) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, m := range c.memberships {
		if m.ResourceType != resource || seen[m.ResourceID] {
			continue
		}
		if m.HasRole(role) {
			seen[m.ResourceID] = true
			ids = append(ids, m.ResourceID)
		}
	}
	return ids
}

// ResourcesWithAnyRole returns the ids of every resource of one type the
// principal holds any membership on.
func (c *Checker) ResourcesWithAnyRole(resource ResourceType) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, m := range c.memberships {
		if m.ResourceType == resource && !seen[m.ResourceID] {
			seen[m.ResourceID] = true
			ids = append(ids, m.ResourceID)
		}
	}
	return ids
}

// IsEmpty returns true if the principal holds no memberships (and is not admin).
func (c *Checker) IsEmpty() bool {
	return !c.admin && len(c.memberships) == 0
}

func resourceKey(resource ResourceType, resourceID int64) string {
	return string(resource) + ":" + strconv.FormatInt(resourceID, 10)
}
