package stagekit

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/fernandezvara/dbkit"
)

// NavigationKind distinguishes single references from collections.
type NavigationKind int

const (
	// NavigationSingle is a reference to at most one related entity.
	NavigationSingle NavigationKind = iota
	// NavigationCollection is a set of related entities.
	NavigationCollection
)

// CascadeKind is the evaluation strategy of a cascade ownership rule.
type CascadeKind int

const (
	// CascadeMembership resolves the owning resource id through a single
	// navigation and checks the principal's memberships on that resource.
	CascadeMembership CascadeKind = iota
	// CascadeInclusion grants access when the principal appears in a
	// principal-typed collection, regardless of the required roles.
	CascadeInclusion
	// CascadeIdentity grants access when the resolved owner id is the
	// principal itself (single principal-typed reference).
	CascadeIdentity
)

// LinkFunc attaches pre-existing related rows to an entity payload by id.
// It must never create or mutate related rows.
type LinkFunc func(ctx context.Context, db dbkit.IDB, entity any) error

// SyncFunc persists a linked collection's join table for an already-saved entity.
type SyncFunc func(ctx context.Context, db dbkit.IDB, entity any) error

// CarryFunc copies a navigation's stored foreign key from the existing row
// onto an update payload when the payload omits the navigation.
type CarryFunc func(entity, existing any)

// OwnerFunc resolves the owning resource id for a cascade rule.
// A zero id with a nil error means "no owner".
type OwnerFunc func(ctx context.Context, db dbkit.IDB, resourceID int64) (int64, error)

// ContainsFunc reports whether a principal appears in a resource's
// principal collection.
type ContainsFunc func(ctx context.Context, db dbkit.IDB, resourceID, principalID int64) (bool, error)

// Registry holds all entity descriptors for the application.
// It is created at startup and should be treated as immutable after initialization.
type Registry struct {
	mu         sync.RWMutex
	entities   map[string]*EntityDescriptor // keyed by lowercase name
	byResource map[ResourceType]*EntityDescriptor
}

// EntityDescriptor declares everything StageKit needs to know about one
// entity: its ownership rules, navigations and search fields.
type EntityDescriptor struct {
	name        string
	resource    ResourceType
	hasResource bool
	navigations map[string]*Navigation // keyed by lowercase name
	navOrder    []*Navigation
	cascades    []*CascadeRule
	fields      map[string]*SearchFieldDef // keyed by lowercase name
	fieldOrder  []*SearchFieldDef
	registry    *Registry
}

// Navigation declares a named reference from one entity to another.
type Navigation struct {
	name   string
	target string
	kind   NavigationKind
	link   LinkFunc
	sync   SyncFunc
	carry  CarryFunc
}

// CascadeRule declares an inherited-ownership path through a navigation.
type CascadeRule struct {
	navigation string
	owner      string // owning entity name (CascadeMembership only)
	kind       CascadeKind
	priority   int
	required   bool
	resolve    OwnerFunc
	contains   ContainsFunc
}

// SearchFieldDef declares a searchable field: its public name, the backing
// column for push-down predicates, and a getter for in-memory fuzzy matching.
type SearchFieldDef struct {
	name   string
	column string
	value  func(entity any) string
}

// NewRegistry creates a new entity registry.
func NewRegistry() *Registry {
	return &Registry{
		entities:   make(map[string]*EntityDescriptor),
		byResource: make(map[ResourceType]*EntityDescriptor),
	}
}

// DefineEntity starts defining a new entity.
// Returns an EntityDescriptor builder for fluent configuration.
//
// Example:
//
//	registry.DefineEntity("Event").
//	    DirectOwnership(ResourceEvent).
//	    Reference("Venue", "Venue", WithLink(...)).
//	    CascadeFrom("Venue", "Venue", 10, OwnerColumn("events", "venue_id")).
//	    SearchField("name", "name", func(e any) string { return e.(*Event).Name })
func (r *Registry) DefineEntity(name string) *EntityDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()

	desc := &EntityDescriptor{
		name:        name,
		navigations: make(map[string]*Navigation),
		fields:      make(map[string]*SearchFieldDef),
		registry:    r,
	}
	r.entities[strings.ToLower(name)] = desc
	return desc
}

// Entity returns the descriptor for an entity name (case-insensitive).
// Returns nil if the entity is not defined.
func (r *Registry) Entity(name string) *EntityDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entities[strings.ToLower(name)]
}

// EntityForResource returns the descriptor whose direct ownership rule
// carries the given resource type. Returns nil if none is declared.
func (r *Registry) EntityForResource(resource ResourceType) *EntityDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byResource[resource]
}

// Entities returns all defined entity names.
func (r *Registry) Entities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entities))
	for _, desc := range r.entities {
		names = append(names, desc.name)
	}
	sort.Strings(names)
	return names
}

// ValidateEntity checks if an entity is defined.
func (r *Registry) ValidateEntity(name string) error {
	if r.Entity(name) == nil {
		return fmt.Errorf("%w: entity %q not defined", ErrUnknownEntity, name)
	}
	return nil
}

// DefineEntity continues defining entities on the registry (fluent API).
func (d *EntityDescriptor) DefineEntity(name string) *EntityDescriptor {
	return d.registry.DefineEntity(name)
}

// DirectOwnership declares that this entity carries its own membership
// records under the given resource type.
func (d *EntityDescriptor) DirectOwnership(resource ResourceType) *EntityDescriptor {
	d.registry.mu.Lock()
	defer d.registry.mu.Unlock()

	d.resource = resource
	d.hasResource = true
	d.registry.byResource[resource] = d
	return d
}

// Reference declares a single-valued navigation to a target entity.
func (d *EntityDescriptor) Reference(name, target string, opts ...NavigationOption) *EntityDescriptor {
	return d.addNavigation(name, target, NavigationSingle, opts)
}

// Collection declares a set-valued navigation to a target entity.
func (d *EntityDescriptor) Collection(name, target string, opts ...NavigationOption) *EntityDescriptor {
	return d.addNavigation(name, target, NavigationCollection, opts)
}

func (d *EntityDescriptor) addNavigation(name, target string, kind NavigationKind, opts []NavigationOption) *EntityDescriptor {
	nav := &Navigation{
		name:   name,
		target: target,
		kind:   kind,
	}
	for _, opt := range opts {
		opt(nav)
	}
	d.navigations[strings.ToLower(name)] = nav
	d.navOrder = append(d.navOrder, nav)
	return d
}

// NavigationOption configures a navigation declaration.
type NavigationOption func(*Navigation)

// WithLink sets the navigation's link function.
func WithLink(fn LinkFunc) NavigationOption {
	return func(n *Navigation) { n.link = fn }
}

// WithSync sets the navigation's join-table sync function.
func WithSync(fn SyncFunc) NavigationOption {
	return func(n *Navigation) { n.sync = fn }
}

// WithCarry sets the navigation's foreign-key carry function for updates.
func WithCarry(fn CarryFunc) NavigationOption {
	return func(n *Navigation) { n.carry = fn }
}

// CascadeOption configures a cascade rule declaration.
type CascadeOption func(*CascadeRule)

// CascadeRequired marks the owning reference as expected to be present.
// An absent owner is still non-granting, never an error; the flag only
// drives logging.
func CascadeRequired() CascadeOption {
	return func(c *CascadeRule) { c.required = true }
}

// CascadeFrom declares that access cascades from the resource reached
// through a single-valued navigation: the owner id is resolved, then the
// principal's memberships on the owning entity are checked with the same
// required roles. Rules evaluate in ascending priority order.
func (d *EntityDescriptor) CascadeFrom(navigation, owner string, priority int, resolve OwnerFunc, opts ...CascadeOption) *EntityDescriptor {
	return d.addCascade(&CascadeRule{
		navigation: navigation,
		owner:      owner,
		kind:       CascadeMembership,
		priority:   priority,
		resolve:    resolve,
	}, opts)
}

// CascadeMembers declares that any principal appearing in the given
// principal-typed collection is granted access, regardless of roles.
func (d *EntityDescriptor) CascadeMembers(navigation string, priority int, contains ContainsFunc, opts ...CascadeOption) *EntityDescriptor {
	return d.addCascade(&CascadeRule{
		navigation: navigation,
		kind:       CascadeInclusion,
		priority:   priority,
		contains:   contains,
	}, opts)
}

// CascadeOwner declares that the principal referenced by a single-valued
// principal-typed navigation is granted access, regardless of roles.
func (d *EntityDescriptor) CascadeOwner(navigation string, priority int, resolve OwnerFunc, opts ...CascadeOption) *EntityDescriptor {
	return d.addCascade(&CascadeRule{
		navigation: navigation,
		kind:       CascadeIdentity,
		priority:   priority,
		resolve:    resolve,
	}, opts)
}

func (d *EntityDescriptor) addCascade(rule *CascadeRule, opts []CascadeOption) *EntityDescriptor {
	for _, opt := range opts {
		opt(rule)
	}
	d.cascades = append(d.cascades, rule)
	return d
}

// SearchField declares a searchable field backed by a column, with a getter
// used by the fuzzy operator.
func (d *EntityDescriptor) SearchField(name, column string, value func(entity any) string) *EntityDescriptor {
	def := &SearchFieldDef{
		name:   name,
		column: column,
		value:  value,
	}
	d.fields[strings.ToLower(name)] = def
	d.fieldOrder = append(d.fieldOrder, def)
	return d
}

// Name returns the entity name.
func (d *EntityDescriptor) Name() string {
	return d.name
}

// Resource returns the entity's direct ownership resource type,
// and false when the entity declares no direct ownership.
func (d *EntityDescriptor) Resource() (ResourceType, bool) {
	return d.resource, d.hasResource
}

// Navigation returns a navigation by name (case-insensitive).
// Returns nil if not declared.
func (d *EntityDescriptor) Navigation(name string) *Navigation {
	return d.navigations[strings.ToLower(name)]
}

// Navigations returns the declared navigation names in declaration order.
func (d *EntityDescriptor) Navigations() []string {
	names := make([]string, 0, len(d.navOrder))
	for _, nav := range d.navOrder {
		names = append(names, nav.name)
	}
	return names
}

// Cascades returns the cascade rules sorted by ascending priority.
// Declaration order breaks ties.
func (d *EntityDescriptor) Cascades() []*CascadeRule {
	rules := make([]*CascadeRule, len(d.cascades))
	copy(rules, d.cascades)
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].priority < rules[j].priority
	})
	return rules
}

// Field returns a search field definition by name (case-insensitive).
// Returns nil if not declared.
func (d *EntityDescriptor) Field(name string) *SearchFieldDef {
	return d.fields[strings.ToLower(name)]
}

// SearchFields returns the declared search field names in declaration order.
func (d *EntityDescriptor) SearchFields() []string {
	names := make([]string, 0, len(d.fieldOrder))
	for _, def := range d.fieldOrder {
		names = append(names, def.name)
	}
	return names
}

// ResolveIncludePath validates a dotted include path segment by segment
// against declared navigations, case-insensitively, and returns the path
// in canonical casing.
func (d *EntityDescriptor) ResolveIncludePath(path string) (string, error) {
	segments := strings.Split(path, ".")
	canonical := make([]string, 0, len(segments))
	current := d
	for _, segment := range segments {
		if current == nil {
			return "", fmt.Errorf("%w: include path %q leaves declared entities", ErrUnknownEntity, path)
		}
		nav := current.Navigation(strings.TrimSpace(segment))
		if nav == nil {
			return "", fmt.Errorf("%w: entity %q has no navigation %q", ErrUnknownField, current.name, segment)
		}
		canonical = append(canonical, nav.name)
		current = current.registry.Entity(nav.target)
	}
	return strings.Join(canonical, "."), nil
}

// Name returns the navigation name.
func (n *Navigation) Name() string {
	return n.name
}

// Target returns the target entity name.
func (n *Navigation) Target() string {
	return n.target
}

// Kind returns the navigation kind.
func (n *Navigation) Kind() NavigationKind {
	return n.kind
}

// Navigation returns the navigation the rule cascades through.
func (c *CascadeRule) Navigation() string {
	return c.navigation
}

// Owner returns the owning entity name (CascadeMembership rules only).
func (c *CascadeRule) Owner() string {
	return c.owner
}

// Kind returns the cascade kind.
func (c *CascadeRule) Kind() CascadeKind {
	return c.kind
}

// Priority returns the rule's evaluation priority (lower first).
func (c *CascadeRule) Priority() int {
	return c.priority
}

// Required reports whether the owning reference is expected to be present.
func (c *CascadeRule) Required() bool {
	return c.required
}

// Name returns the search field's public name.
func (f *SearchFieldDef) Name() string {
	return f.name
}

// Column returns the backing column.
func (f *SearchFieldDef) Column() string {
	return f.column
}

// Value extracts the field's value from an entity for fuzzy matching.
func (f *SearchFieldDef) Value(entity any) string {
	if f.value == nil {
		return ""
	}
	return f.value(entity)
}
