// Package store opens the operational relational store and applies the
// entity DDL on startup. The handle is acquired once per pipeline run and
// closed on all exit paths.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // register the embedded sqlite driver
)

const (
	// DriverPostgres is the production driver.
	DriverPostgres = "pgx"
	// DriverSQLite is the embedded driver for local development and tests.
	DriverSQLite = "sqlite"
)

// Open connects with the given driver/DSN, verifies connectivity, and
// ensures the schema exists.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if driver == DriverSQLite {
		// Single writer keeps the embedded driver predictable and makes
		// FK enforcement apply to every statement.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: enable foreign keys: %w", err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if err := applySchema(ctx, db, driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func applySchema(ctx context.Context, db *sql.DB, driver string) error {
	for _, stmt := range splitStatements(schemaFor(driver)) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: execute ddl: %w", err)
		}
	}
	return nil
}
