package stagekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testMemberships() []ResourceMembership {
	return []ResourceMembership{
		{UserID: 1, ResourceType: ResourceVenue, ResourceID: 10, Roles: []Role{RoleOwner, RoleManager}},
		{UserID: 1, ResourceType: ResourceVenue, ResourceID: 11, Roles: []Role{RoleViewer}},
		{UserID: 1, ResourceType: ResourceVenue, ResourceID: 10, Roles: []Role{RoleViewer}},
		{UserID: 1, ResourceType: ResourceEvent, ResourceID: 20, Roles: []Role{RoleOrganizer}},
	}
}

// TestCheckerCan tests direct-path access checks
func TestCheckerCan(t *testing.T) {
	c := NewChecker(1, false, testMemberships())

	assert.Equal(t, int64(1), c.UserID())
	assert.False(t, c.IsAdmin())

	assert.True(t, c.Can(ResourceVenue, 10, RoleOwner))
	assert.True(t, c.Can(ResourceVenue, 10, RoleViewer))
	assert.False(t, c.Can(ResourceVenue, 11, RoleOwner))
	assert.False(t, c.Can(ResourceVenue, 99, RoleOwner))
	assert.False(t, c.Can(ResourceTour, 10, RoleOwner))

	// Any of the given roles suffices
	assert.True(t, c.Can(ResourceVenue, 11, RoleOwner, RoleViewer))

	// No roles given means any membership
	assert.True(t, c.Can(ResourceVenue, 11))
	assert.False(t, c.Can(ResourceVenue, 99))
}

// TestCheckerAdminBypass tests that admins pass every check
func TestCheckerAdminBypass(t *testing.T) {
	c := NewChecker(2, true, nil)

	assert.True(t, c.IsAdmin())
	assert.True(t, c.Can(ResourceVenue, 123, RoleOwner))
	assert.True(t, c.HasAllRoles(ResourceTour, 5, RoleOwner, RoleManager))
	assert.False(t, c.IsEmpty())
}

// TestCheckerHasAllRoles tests conjunction over required roles
func TestCheckerHasAllRoles(t *testing.T) {
	c := NewChecker(1, false, testMemberships())

	assert.True(t, c.HasAllRoles(ResourceVenue, 10, RoleOwner, RoleManager))
	// Roles merge across records on the same resource
	assert.True(t, c.HasAllRoles(ResourceVenue, 10, RoleOwner, RoleViewer))
	assert.False(t, c.HasAllRoles(ResourceVenue, 11, RoleViewer, RoleOwner))
}

// TestCheckerRolesOn tests the deduplicated role union
func TestCheckerRolesOn(t *testing.T) {
	c := NewChecker(1, false, append(testMemberships(),
		ResourceMembership{UserID: 1, ResourceType: ResourceVenue, ResourceID: 10, Roles: []Role{RoleOwner}},
	))

	roles := c.RolesOn(ResourceVenue, 10)
	assert.ElementsMatch(t, []Role{RoleOwner, RoleManager, RoleViewer}, roles)
	assert.Empty(t, c.RolesOn(ResourceVenue, 99))
}

// TestCheckerResourceEnumeration tests listing resources by role
func TestCheckerResourceEnumeration(t *testing.T) {
	c := NewChecker(1, false, testMemberships())

	assert.ElementsMatch(t, []int64{10, 11}, c.ResourcesWithRole(ResourceVenue, RoleViewer))
	assert.ElementsMatch(t, []int64{10}, c.ResourcesWithRole(ResourceVenue, RoleOwner))
	assert.Empty(t, c.ResourcesWithRole(ResourceTour, RoleOwner))

	assert.ElementsMatch(t, []int64{10, 11}, c.ResourcesWithAnyRole(ResourceVenue))
	assert.ElementsMatch(t, []int64{20}, c.ResourcesWithAnyRole(ResourceEvent))
}

// TestCheckerIsEmpty tests the empty snapshot predicate
func TestCheckerIsEmpty(t *testing.T) {
	assert.True(t, NewChecker(1, false, nil).IsEmpty())
	assert.False(t, NewChecker(1, false, testMemberships()).IsEmpty())
	assert.False(t, NewChecker(1, true, nil).IsEmpty())
}
