package stagekit

import (
	"github.com/fernandezvara/dbkit"
)

// MigrationService provides migration management functionality as an extension to Service
type MigrationService struct {
	*Service
}

// NewMigrationService creates a new migration service extension
func NewMigrationService(service *Service) *MigrationService {
	return &MigrationService{Service: service}
}

// Migrations returns all database migrations for the default domain schema.
// Use db.Migrate(ctx, migrations.Migrations()) to run them.
// Applications with their own schema manage their own migrations and only
// need stagekit-012 and stagekit-013 (memberships and audit log).
func (ms *MigrationService) Migrations() []dbkit.Migration {
	return []dbkit.Migration{
		{
			ID:          "stagekit-001",
			Description: "Create users table",
			SQL: `
                CREATE TABLE IF NOT EXISTS users (
                    id BIGSERIAL PRIMARY KEY,
                    uuid UUID NOT NULL,
                    name TEXT NOT NULL,
                    emoji TEXT,
                    username TEXT NOT NULL UNIQUE,
                    email TEXT,
                    first_name TEXT,
                    last_name TEXT,
                    is_active BOOLEAN NOT NULL DEFAULT true,
                    is_confirmed BOOLEAN NOT NULL DEFAULT false,
                    is_admin BOOLEAN NOT NULL DEFAULT false,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "stagekit-002",
			Description: "Create venues table",
			SQL: `
                CREATE TABLE IF NOT EXISTS venues (
                    id BIGSERIAL PRIMARY KEY,
                    uuid UUID NOT NULL,
                    name TEXT NOT NULL,
                    emoji TEXT,
                    description TEXT,
                    phone TEXT,
                    website TEXT,
                    email TEXT,
                    address JSONB,
                    external_sources JSONB,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "stagekit-003",
			Description: "Create events table",
			SQL: `
                CREATE TABLE IF NOT EXISTS events (
                    id BIGSERIAL PRIMARY KEY,
                    uuid UUID NOT NULL,
                    name TEXT NOT NULL,
                    emoji TEXT,
                    description TEXT,
                    date TIMESTAMPTZ,
                    doors TIMESTAMPTZ,
                    external_sources JSONB,
                    venue_id BIGINT REFERENCES venues(id) ON DELETE SET NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE INDEX IF NOT EXISTS idx_events_venue_id ON events (venue_id)`,
		},
		{
			ID:          "stagekit-004",
			Description: "Create artists table",
			SQL: `
                CREATE TABLE IF NOT EXISTS artists (
                    id BIGSERIAL PRIMARY KEY,
                    uuid UUID NOT NULL,
                    name TEXT NOT NULL,
                    emoji TEXT,
                    description TEXT,
                    image_url TEXT,
                    contacts JSONB,
                    external_sources JSONB,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "stagekit-005",
			Description: "Create tours table",
			SQL: `
                CREATE TABLE IF NOT EXISTS tours (
                    id BIGSERIAL PRIMARY KEY,
                    uuid UUID NOT NULL,
                    name TEXT NOT NULL,
                    emoji TEXT,
                    description TEXT,
                    start_city TEXT,
                    end_city TEXT,
                    start_date TIMESTAMPTZ,
                    end_date TIMESTAMPTZ,
                    website TEXT,
                    sponsor TEXT,
                    is_active BOOLEAN NOT NULL DEFAULT true,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "stagekit-006",
			Description: "Create instrument_categories and instruments tables",
			SQL: `
                CREATE TABLE IF NOT EXISTS instrument_categories (
                    id BIGSERIAL PRIMARY KEY,
                    uuid UUID NOT NULL,
                    name TEXT NOT NULL,
                    emoji TEXT,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE TABLE IF NOT EXISTS instruments (
                    id BIGSERIAL PRIMARY KEY,
                    uuid UUID NOT NULL,
                    name TEXT NOT NULL,
                    emoji TEXT,
                    category_id BIGINT REFERENCES instrument_categories(id) ON DELETE SET NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "stagekit-007",
			Description: "Create songs table",
			SQL: `
                CREATE TABLE IF NOT EXISTS songs (
                    id BIGSERIAL PRIMARY KEY,
                    uuid UUID NOT NULL,
                    name TEXT NOT NULL,
                    emoji TEXT,
                    artist TEXT,
                    album TEXT,
                    external_sources JSONB,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "stagekit-008",
			Description: "Create budgets table",
			SQL: `
                CREATE TABLE IF NOT EXISTS budgets (
                    id BIGSERIAL PRIMARY KEY,
                    uuid UUID NOT NULL,
                    name TEXT NOT NULL,
                    emoji TEXT,
                    description TEXT,
                    total_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
                    spent_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
                    start_date TIMESTAMPTZ,
                    end_date TIMESTAMPTZ,
                    tour_id BIGINT REFERENCES tours(id) ON DELETE SET NULL,
                    event_id BIGINT REFERENCES events(id) ON DELETE SET NULL,
                    artist_id BIGINT REFERENCES artists(id) ON DELETE SET NULL,
                    venue_id BIGINT REFERENCES venues(id) ON DELETE SET NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE INDEX IF NOT EXISTS idx_budgets_artist_id ON budgets (artist_id);
                CREATE INDEX IF NOT EXISTS idx_budgets_venue_id ON budgets (venue_id)`,
		},
		{
			ID:          "stagekit-009",
			Description: "Create expenses table",
			SQL: `
                CREATE TABLE IF NOT EXISTS expenses (
                    id BIGSERIAL PRIMARY KEY,
                    uuid UUID NOT NULL,
                    name TEXT NOT NULL,
                    emoji TEXT,
                    description TEXT,
                    amount DOUBLE PRECISION NOT NULL,
                    status TEXT NOT NULL DEFAULT 'pending',
                    notes TEXT,
                    category TEXT,
                    vendor TEXT,
                    expense_date TIMESTAMPTZ,
                    attachments TEXT[],
                    budget_id BIGINT NOT NULL REFERENCES budgets(id) ON DELETE CASCADE,
                    submitted_by_user_id BIGINT NOT NULL REFERENCES users(id),
                    approved_by_user_id BIGINT REFERENCES users(id),
                    approved_date TIMESTAMPTZ,
                    paid_date TIMESTAMPTZ,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE INDEX IF NOT EXISTS idx_expenses_budget_id ON expenses (budget_id);
                CREATE INDEX IF NOT EXISTS idx_expenses_submitted_by ON expenses (submitted_by_user_id)`,
		},
		{
			ID:          "stagekit-010",
			Description: "Create event join tables",
			SQL: `
                CREATE TABLE IF NOT EXISTS event_organizers (
                    event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
                    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                    PRIMARY KEY (event_id, user_id)
                );
                CREATE TABLE IF NOT EXISTS event_attendees (
                    event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
                    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                    PRIMARY KEY (event_id, user_id)
                )`,
		},
		{
			ID:          "stagekit-011",
			Description: "Create artist, tour and song join tables",
			SQL: `
                CREATE TABLE IF NOT EXISTS artist_members (
                    artist_id BIGINT NOT NULL REFERENCES artists(id) ON DELETE CASCADE,
                    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                    PRIMARY KEY (artist_id, user_id)
                );
                CREATE TABLE IF NOT EXISTS tour_shows (
                    tour_id BIGINT NOT NULL REFERENCES tours(id) ON DELETE CASCADE,
                    event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
                    PRIMARY KEY (tour_id, event_id)
                );
                CREATE TABLE IF NOT EXISTS tour_artists (
                    tour_id BIGINT NOT NULL REFERENCES tours(id) ON DELETE CASCADE,
                    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                    PRIMARY KEY (tour_id, user_id)
                );
                CREATE TABLE IF NOT EXISTS song_required_instruments (
                    song_id BIGINT NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
                    instrument_id BIGINT NOT NULL REFERENCES instruments(id) ON DELETE CASCADE,
                    PRIMARY KEY (song_id, instrument_id)
                );
                CREATE TABLE IF NOT EXISTS song_optional_instruments (
                    song_id BIGINT NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
                    instrument_id BIGINT NOT NULL REFERENCES instruments(id) ON DELETE CASCADE,
                    PRIMARY KEY (song_id, instrument_id)
                )`,
		},
		{
			ID:          "stagekit-012",
			Description: "Create resource_memberships table",
			SQL: `
                CREATE TABLE IF NOT EXISTS resource_memberships (
                    id BIGSERIAL PRIMARY KEY,
                    user_id BIGINT NOT NULL,
                    resource_type TEXT NOT NULL,
                    resource_id BIGINT NOT NULL,
                    roles TEXT[] NOT NULL,
                    created_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    updated_at TIMESTAMPTZ NOT NULL DEFAULT current_timestamp
                );
                CREATE INDEX IF NOT EXISTS idx_resource_memberships_lookup
                    ON resource_memberships (user_id, resource_type, resource_id)`,
		},
		{
			ID:          "stagekit-013",
			Description: "Create membership_audit_log table",
			SQL: `
                CREATE TABLE IF NOT EXISTS membership_audit_log (
                    id BIGSERIAL PRIMARY KEY,
                    timestamp TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    actor_id BIGINT NOT NULL,
                    action TEXT NOT NULL,
                    target_user_id BIGINT NOT NULL,
                    resource_type TEXT NOT NULL,
                    resource_id BIGINT NOT NULL,
                    roles TEXT[],
                    previous_roles TEXT[],
                    new_roles TEXT[],
                    ip_address TEXT,
                    user_agent TEXT,
                    request_id TEXT,
                    metadata JSONB
                );
                CREATE INDEX IF NOT EXISTS idx_membership_audit_log_resource
                    ON membership_audit_log (resource_type, resource_id)`,
		},
	}
}
