package stagekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegistryDefineEntityBasic validates entity definition and lookup
func TestRegistryDefineEntityBasic(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Entities())

	desc := r.DefineEntity("Venue")
	assert.NotNil(t, desc)
	assert.Equal(t, "Venue", desc.Name())

	// Lookups are case-insensitive
	assert.Same(t, desc, r.Entity("Venue"))
	assert.Same(t, desc, r.Entity("venue"))
	assert.Same(t, desc, r.Entity("VENUE"))
	assert.Nil(t, r.Entity("Stadium"))

	assert.NoError(t, r.ValidateEntity("venue"))
	assert.Error(t, r.ValidateEntity("stadium"))
}

// TestRegistryDirectOwnership validates the resource tag and reverse lookup
func TestRegistryDirectOwnership(t *testing.T) {
	r := NewRegistry()

	venue := r.DefineEntity("Venue").DirectOwnership(ResourceVenue)
	song := r.DefineEntity("Song")

	resource, ok := venue.Resource()
	assert.True(t, ok)
	assert.Equal(t, ResourceVenue, resource)

	_, ok = song.Resource()
	assert.False(t, ok)

	assert.Same(t, venue, r.EntityForResource(ResourceVenue))
	assert.Nil(t, r.EntityForResource(ResourceEvent))
}

// TestRegistryNavigations validates navigation declaration and lookup
func TestRegistryNavigations(t *testing.T) {
	r := NewRegistry()
	r.DefineEntity("Venue")
	r.DefineEntity("Event").
		Reference("Venue", "Venue").
		Collection("Organizers", "User")

	desc := r.Entity("Event")
	assert.Equal(t, []string{"Venue", "Organizers"}, desc.Navigations())

	venue := desc.Navigation("venue")
	require.NotNil(t, venue)
	assert.Equal(t, "Venue", venue.Name())
	assert.Equal(t, NavigationSingle, venue.Kind())

	organizers := desc.Navigation("ORGANIZERS")
	require.NotNil(t, organizers)
	assert.Equal(t, NavigationCollection, organizers.Kind())
	assert.Equal(t, "User", organizers.Target())

	assert.Nil(t, desc.Navigation("Attendees"))
}

// TestRegistryCascadeOrdering validates ascending priority with stable ties
func TestRegistryCascadeOrdering(t *testing.T) {
	r := NewRegistry()
	desc := r.DefineEntity("Budget").
		Reference("Artist", "Artist").
		Reference("Venue", "Venue").
		Reference("Tour", "Tour").
		CascadeFrom("Venue", "Venue", 20, OwnerColumn("budgets", "venue_id")).
		CascadeFrom("Artist", "Artist", 10, OwnerColumn("budgets", "artist_id")).
		CascadeFrom("Tour", "Tour", 20, OwnerColumn("budgets", "tour_id"))

	cascades := desc.Cascades()
	require.Len(t, cascades, 3)
	assert.Equal(t, "Artist", cascades[0].Navigation())
	assert.Equal(t, "Venue", cascades[1].Navigation())
	assert.Equal(t, "Tour", cascades[2].Navigation())
	assert.Equal(t, 10, cascades[0].Priority())
}

// TestRegistryCascadeKinds validates the three rule shapes
func TestRegistryCascadeKinds(t *testing.T) {
	r := NewRegistry()
	desc := r.DefineEntity("Expense").
		Reference("Budget", "Budget").
		Reference("SubmittedBy", "User").
		Collection("Reviewers", "User").
		CascadeFrom("Budget", "Budget", 10, OwnerColumn("expenses", "budget_id")).
		CascadeMembers("Reviewers", 20, MemberJoin("expense_reviewers", "expense_id", "user_id")).
		CascadeOwner("SubmittedBy", 30, OwnerColumn("expenses", "submitted_by_user_id"), CascadeRequired())

	cascades := desc.Cascades()
	require.Len(t, cascades, 3)
	assert.Equal(t, CascadeMembership, cascades[0].Kind())
	assert.Equal(t, "Budget", cascades[0].Owner())
	assert.False(t, cascades[0].Required())

	assert.Equal(t, CascadeInclusion, cascades[1].Kind())
	assert.Equal(t, CascadeIdentity, cascades[2].Kind())
	assert.True(t, cascades[2].Required())
}

// TestRegistrySearchFields validates search field declaration
func TestRegistrySearchFields(t *testing.T) {
	r := NewRegistry()
	desc := r.DefineEntity("Venue").
		SearchField("name", "name", func(e any) string { return e.(*Venue).Name }).
		SearchField("phone", "phone", func(e any) string { return e.(*Venue).Phone })

	assert.Equal(t, []string{"name", "phone"}, desc.SearchFields())

	field := desc.Field("PHONE")
	require.NotNil(t, field)
	assert.Equal(t, "phone", field.Column())
	assert.Equal(t, "555", field.Value(&Venue{Phone: "555"}))

	assert.Nil(t, desc.Field("email"))
}

// TestResolveIncludePath validates dotted path resolution with canonical casing
func TestResolveIncludePath(t *testing.T) {
	r := DefaultRegistry()
	event := r.Entity("Event")
	require.NotNil(t, event)

	t.Run("Single segment", func(t *testing.T) {
		path, err := event.ResolveIncludePath("venue")
		assert.NoError(t, err)
		assert.Equal(t, "Venue", path)
	})

	t.Run("Dotted path", func(t *testing.T) {
		path, err := event.ResolveIncludePath("venue.events")
		assert.NoError(t, err)
		assert.Equal(t, "Venue.Events", path)
	})

	t.Run("Unknown segment", func(t *testing.T) {
		_, err := event.ResolveIncludePath("venue.owner")
		assert.Error(t, err)
		assert.True(t, IsUnknownField(err))
	})

	t.Run("Unknown root", func(t *testing.T) {
		_, err := event.ResolveIncludePath("tickets")
		assert.Error(t, err)
	})
}

// TestDefaultRegistryEntities validates the default domain declaration
func TestDefaultRegistryEntities(t *testing.T) {
	r := DefaultRegistry()

	for _, name := range []string{
		"User", "Venue", "Event", "Artist", "Tour",
		"Song", "InstrumentCategory", "Instrument", "Budget", "Expense",
	} {
		assert.NotNil(t, r.Entity(name), "entity %s should be defined", name)
	}

	assert.Same(t, r.Entity("Event"), r.EntityForResource(ResourceEvent))
	assert.Same(t, r.Entity("Artist"), r.EntityForResource(ResourceArtist))
	assert.Same(t, r.Entity("Venue"), r.EntityForResource(ResourceVenue))
	assert.Same(t, r.Entity("Tour"), r.EntityForResource(ResourceTour))

	// Budget and Expense are cascade-only
	_, ok := r.Entity("Budget").Resource()
	assert.False(t, ok)
	_, ok = r.Entity("Expense").Resource()
	assert.False(t, ok)

	// Event cascades from its venue before its organizer list
	cascades := r.Entity("Event").Cascades()
	require.Len(t, cascades, 2)
	assert.Equal(t, "Venue", cascades[0].Navigation())
	assert.Equal(t, CascadeInclusion, cascades[1].Kind())
}
