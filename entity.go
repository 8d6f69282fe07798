package stagekit

import (
	"time"
)

// Base is the shared header embedded by every StageKit entity: surrogate
// integer key, stable external UUID, display name, optional emoji glyph and
// create/update timestamps. The store assigns UUID and both timestamps on
// Create and bumps UpdatedAt on Update; callers never set them.
type Base struct {
	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	UUID      string    `bun:"uuid,notnull,type:uuid" json:"uuid"`
	Name      string    `bun:"name,notnull" json:"name"`
	Emoji     string    `bun:"emoji,nullzero" json:"emoji,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// Meta returns the embedded header. It is what makes a struct a StageKit
// entity; the generic store reaches ids and timestamps through it.
func (b *Base) Meta() *Base {
	return b
}

// Entity is implemented by every struct that embeds Base.
type Entity interface {
	Meta() *Base
}

// EntityPtr constrains a type parameter to "pointer to T that is an Entity",
// letting NewStore[Event](...) infer the pointer type.
type EntityPtr[T any] interface {
	*T
	Entity
}
