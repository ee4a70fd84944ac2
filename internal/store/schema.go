package store

import "strings"

// DDL is dialect-specific because surrogate-id generation differs between
// Postgres and SQLite. Both carry the same natural-key uniques: those back
// the in-application identity resolution, FK constraints are the backstop.

const postgresSchema = `
CREATE TABLE IF NOT EXISTS countries (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS locations (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	city TEXT NOT NULL,
	latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
	country_id BIGINT NOT NULL REFERENCES countries(id),
	UNIQUE (city, country_id)
);

CREATE TABLE IF NOT EXISTS botanists (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone VARCHAR(20) NOT NULL DEFAULT '',
	UNIQUE (name, email)
);

CREATE TABLE IF NOT EXISTS plants (
	id BIGINT PRIMARY KEY,
	scientific_name TEXT NOT NULL DEFAULT '',
	common_name TEXT NOT NULL DEFAULT '',
	location_id BIGINT NOT NULL REFERENCES locations(id)
);

CREATE TABLE IF NOT EXISTS readings (
	id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	plant_id BIGINT NOT NULL REFERENCES plants(id),
	recording_taken TIMESTAMPTZ NOT NULL,
	moisture DOUBLE PRECISION NOT NULL,
	temperature DOUBLE PRECISION NOT NULL,
	last_watered TIMESTAMPTZ,
	botanist_id BIGINT REFERENCES botanists(id),
	UNIQUE (plant_id, recording_taken)
);

CREATE INDEX IF NOT EXISTS idx_readings_recording_taken ON readings (recording_taken);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS countries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS locations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	city TEXT NOT NULL,
	latitude REAL NOT NULL DEFAULT 0,
	longitude REAL NOT NULL DEFAULT 0,
	country_id INTEGER NOT NULL REFERENCES countries(id),
	UNIQUE (city, country_id)
);

CREATE TABLE IF NOT EXISTS botanists (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	UNIQUE (name, email)
);

CREATE TABLE IF NOT EXISTS plants (
	id INTEGER PRIMARY KEY,
	scientific_name TEXT NOT NULL DEFAULT '',
	common_name TEXT NOT NULL DEFAULT '',
	location_id INTEGER NOT NULL REFERENCES locations(id)
);

CREATE TABLE IF NOT EXISTS readings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	plant_id INTEGER NOT NULL REFERENCES plants(id),
	recording_taken TIMESTAMP NOT NULL,
	moisture REAL NOT NULL,
	temperature REAL NOT NULL,
	last_watered TIMESTAMP,
	botanist_id INTEGER REFERENCES botanists(id),
	UNIQUE (plant_id, recording_taken)
);

CREATE INDEX IF NOT EXISTS idx_readings_recording_taken ON readings (recording_taken);
`

// schemaFor returns the DDL bundle for a driver.
func schemaFor(driver string) string {
	if driver == DriverSQLite {
		return sqliteSchema
	}
	return postgresSchema
}

// splitStatements breaks a DDL bundle into individual statements.
func splitStatements(bundle string) []string {
	parts := strings.Split(bundle, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
