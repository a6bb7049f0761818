package store

import "database/sql"

// Migrate applies the schema. Statements are idempotent so startup can run
// this unconditionally. The UNIQUE (email, attendance_date) constraints on the
// meal tables are load-bearing: they are the only guard against two concurrent
// first-time submissions for the same member and date.
func Migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS members (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT UNIQUE NOT NULL,
		photo_url     TEXT NOT NULL DEFAULT '',
		active        BOOLEAN NOT NULL DEFAULT TRUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL DEFAULT 'member',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS lunch_records (
		id              UUID PRIMARY KEY,
		email           TEXT NOT NULL,
		attendance_date DATE NOT NULL,
		status          TEXT NOT NULL,
		guest_count     INT NOT NULL DEFAULT 0,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (email, attendance_date)
	);

	CREATE TABLE IF NOT EXISTS dinner_records (
		id              UUID PRIMARY KEY,
		email           TEXT NOT NULL,
		attendance_date DATE NOT NULL,
		status          TEXT NOT NULL,
		guest_count     INT NOT NULL DEFAULT 0,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (email, attendance_date)
	);

	CREATE TABLE IF NOT EXISTS menus (
		day            TEXT PRIMARY KEY,
		breakfast      JSONB NOT NULL DEFAULT '[]',
		snacks         JSONB NOT NULL DEFAULT '[]',
		lunch          TEXT[] NOT NULL DEFAULT '{}',
		dinner         TEXT[] NOT NULL DEFAULT '{}',
		special_lunch  TEXT[] NOT NULL DEFAULT '{}',
		special_dinner TEXT[] NOT NULL DEFAULT '{}',
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_lunch_records_date  ON lunch_records(attendance_date);
	CREATE INDEX IF NOT EXISTS idx_dinner_records_date ON dinner_records(attendance_date);
	`
	_, err := db.Exec(schema)
	return err
}
