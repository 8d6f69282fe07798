// Package stagekit provides the authorization and generic-resource-access
// core for multi-tenant event/artist/venue management backends.
//
// StageKit decides, for any declared resource and any authenticated
// principal, whether an operation is permitted, and it provides a uniform
// CRUD + search surface over heterogeneous resource types without per-type
// boilerplate.
//
// # Core Concepts
//
// Resource: any domain entity that can be owned, listed, searched, or
// linked (Venue, Event, Artist, Tour, Song, Budget, ...). Every resource
// shares a common header (id, uuid, name, timestamps, optional emoji).
//
// Membership: a (principal, resource type, resource id, role set) grant.
// A principal may hold several membership records on the same resource;
// authorization is a disjunction over all of them.
//
// Ownership rules: declared per entity in a Registry at startup. A direct
// rule says the entity carries its own membership records under a resource
// type tag. Cascade rules say the entity inherits access from a related
// entity reachable through a declared navigation, evaluated in ascending
// priority order.
//
// Navigation: a named reference (single or collection) from one entity to
// another, with an optional link function (attach pre-existing rows by id,
// never create) and an optional sync function (persist a join table).
//
// # Basic Usage
//
//	// 1. Build the rule registry (at application startup)
//	registry := stagekit.DefaultRegistry()
//
//	// 2. Create the service
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	service := stagekit.NewService(registry, db)
//
//	// 3. Run migrations
//	db.Migrate(ctx, stagekit.NewMigrationService(service).Migrations())
//
//	// 4. Authorize
//	if service.Authorize(ctx, userID, stagekit.ResourceEvent, eventID,
//	    stagekit.RoleOwner, stagekit.RoleManager) {
//	    // principal owns or manages the event, its venue, or is an organizer
//	}
//
//	// 5. Generic access
//	events, _ := stagekit.NewStore[stagekit.Event](service, "Event")
//	event, err := events.GetByID(ctx, eventID, "Venue", "Organizers")
//
//	// 6. Search
//	results, err := events.Search(ctx, "name^fest:description~tribute")
//
// # Authorization Order
//
// Authorize evaluates, in order: principal existence (fail closed), the
// admin override, the direct membership rule, then cascade rules sorted by
// ascending priority. The first granting path wins; a rule that fails with
// a configuration error is logged and skipped, never fatal.
//
// # Link-Only Relationships
//
// Create and Update never materialize related rows from nested payload
// data. A nested object can only reference a pre-existing row by id; all
// other nested fields are ignored for relationship purposes. Invalid or
// unknown ids resolve to an empty collection or a nil reference.
//
// # Search DSL
//
// A query is a colon-separated list of terms, each <field><op><value>:
//
//	=  equals         name=Fillmore
//	!  not equals     status!void
//	^  contains       name^fest
//	>  starts with    name>The
//	<  ends with      name<Club
//	~  fuzzy          name~filmore
//
// Exact and substring operators push down to the store. The fuzzy operator
// materializes the candidate set and keeps rows whose bounded
// Damerau-Levenshtein distance to the value is strictly below the
// threshold (default 4).
package stagekit
