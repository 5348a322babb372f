package relational

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/medconnect/graphd/internal/types"
)

// migration represents a single schema migration.
type migration struct {
	version int
	name    string
	up      string
}

// Migrator applies schema migrations in order.
type Migrator struct {
	db *DB
}

// NewMigrator creates a new database migrator.
func NewMigrator(db *DB) *Migrator {
	return &Migrator{db: db}
}

func getMigrations() []migration {
	return []migration{
		{
			version: 1,
			name:    "initial_schema",
			up: `
CREATE TABLE IF NOT EXISTS people (
	id          TEXT PRIMARY KEY,
	full_name   TEXT NOT NULL,
	city        TEXT NOT NULL DEFAULT '',
	state       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS specialties (
	id    TEXT PRIMARY KEY,
	name  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS person_specialties (
	person_id     TEXT NOT NULL REFERENCES people(id) ON DELETE CASCADE,
	specialty_id  TEXT NOT NULL REFERENCES specialties(id) ON DELETE CASCADE,
	is_primary    INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (person_id, specialty_id)
);

CREATE TABLE IF NOT EXISTS affiliations (
	id           TEXT PRIMARY KEY,
	from_id      TEXT NOT NULL REFERENCES people(id) ON DELETE CASCADE,
	to_id        TEXT NOT NULL REFERENCES people(id) ON DELETE CASCADE,
	status       TEXT NOT NULL CHECK (status IN ('PENDING','ACCEPTED','REJECTED')),
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_affiliations_from ON affiliations(from_id, status);
CREATE INDEX IF NOT EXISTS idx_affiliations_to ON affiliations(to_id, status);
`,
		},
		{
			version: 2,
			name:    "availability_and_bookings",
			up: `
CREATE TABLE IF NOT EXISTS availability_windows (
	id                 TEXT PRIMARY KEY,
	person_id          TEXT NOT NULL REFERENCES people(id) ON DELETE CASCADE,
	workplace_id       TEXT NOT NULL,
	day_of_week        INTEGER NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
	start_time         TEXT NOT NULL,
	end_time           TEXT NOT NULL,
	slot_duration_min  INTEGER NOT NULL DEFAULT 30,
	is_active          INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_availability_person_day
	ON availability_windows(person_id, day_of_week, is_active);

CREATE TABLE IF NOT EXISTS bookings (
	id            TEXT PRIMARY KEY,
	person_id     TEXT NOT NULL REFERENCES people(id) ON DELETE CASCADE,
	scheduled_at  TIMESTAMP NOT NULL,
	status        TEXT NOT NULL CHECK (status IN ('PENDING','CONFIRMED','CANCELLED'))
);
CREATE INDEX IF NOT EXISTS idx_bookings_person_time
	ON bookings(person_id, scheduled_at, status);
`,
		},
	}
}

// Migrate applies all pending migrations inside transactions.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.ensureVersionTable(ctx); err != nil {
		return err
	}

	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, mig := range getMigrations() {
		if mig.version <= current {
			continue
		}
		if err := m.apply(ctx, mig); err != nil {
			return types.WrapError(types.DB_MIGRATION_FAILED,
				fmt.Sprintf("applying migration %d (%s)", mig.version, mig.name), err)
		}
	}
	return nil
}

// CurrentVersion returns the highest applied schema version, 0 if none.
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	if err := m.ensureVersionTable(ctx); err != nil {
		return 0, err
	}
	var version sql.NullInt64
	err := m.db.conn.QueryRowContext(ctx,
		"SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, types.WrapError(types.DB_MIGRATION_FAILED, "reading schema version", err)
	}
	return int(version.Int64), nil
}

func (m *Migrator) ensureVersionTable(ctx context.Context) error {
	_, err := m.db.conn.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version     INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	applied_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`)
	if err != nil {
		return types.WrapError(types.DB_MIGRATION_FAILED, "creating schema_migrations table", err)
	}
	return nil
}

func (m *Migrator) apply(ctx context.Context, mig migration) error {
	tx, err := m.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, mig.up); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		mig.version, mig.name); err != nil {
		return err
	}
	return tx.Commit()
}
