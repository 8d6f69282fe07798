package stagekit

import (
	"go.uber.org/zap"

	"github.com/fernandezvara/dbkit"
)

// Service is the StageKit root: it carries the database handle, the entity
// registry and the logger, and provides authorization, membership
// administration and the audit log. Generic per-entity access goes through
// NewStore.
//
// Error Handling:
// All database operations use dbkit's chainable error wrapping; failures
// surface as *Error values wrapping ErrPersistence (or a more specific
// sentinel) and preserve the dbkit classification underneath.
type Service struct {
	db             dbkit.IDB
	registry       *Registry
	log            *zap.Logger
	fuzzyThreshold int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithFuzzyThreshold overrides the fuzzy search distance threshold
// (a row matches when its distance is strictly below the threshold).
func WithFuzzyThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold > 0 {
			s.fuzzyThreshold = threshold
		}
	}
}

// NewService creates a new StageKit service.
//
// Example:
//
//	registry := stagekit.DefaultRegistry()
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	service := stagekit.NewService(registry, db,
//	    stagekit.WithLogger(logger))
func NewService(registry *Registry, db dbkit.IDB, opts ...Option) *Service {
	s := &Service{
		db:             db,
		registry:       registry,
		log:            zap.NewNop(),
		fuzzyThreshold: DefaultFuzzyThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}

	// bun resolves many-to-many relations through registered join models.
	if rm, ok := db.(interface{ RegisterModel(models ...interface{}) }); ok {
		rm.RegisterModel(joinModels()...)
	}

	return s
}

// Registry returns the entity registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// DB returns the underlying database handle.
func (s *Service) DB() dbkit.IDB {
	return s.db
}

// Logger returns the service logger.
func (s *Service) Logger() *zap.Logger {
	return s.log
}
