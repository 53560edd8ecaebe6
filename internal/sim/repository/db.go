package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// InitDB opens/creates the simulator's SQLite file and ensures the schema.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Single writer keeps SQLite happy under the tick loop.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    email TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'user',
    status TEXT NOT NULL DEFAULT 'active',
    theme TEXT NOT NULL DEFAULT 'dark',
    created_at TIMESTAMP NOT NULL
);
`

const schemaReadings = `
CREATE TABLE IF NOT EXISTS readings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ts TIMESTAMP NOT NULL,
    temp REAL NOT NULL,
    hum REAL NOT NULL,
    light REAL NOT NULL,
    soil_moisture REAL NOT NULL,
    soil1 REAL NOT NULL,
    soil2 REAL NOT NULL,
    npk_n REAL NOT NULL,
    npk_p REAL NOT NULL,
    npk_k REAL NOT NULL,
    actuators TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_readings_ts ON readings(ts);
`

const schemaThresholds = `
CREATE TABLE IF NOT EXISTS thresholds (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    soil1 REAL NOT NULL,
    soil2 REAL NOT NULL,
    temp_high REAL NOT NULL,
    temp_low REAL NOT NULL,
    hum_high REAL NOT NULL,
    hum_low REAL NOT NULL,
    npk_n REAL NOT NULL,
    npk_p REAL NOT NULL,
    npk_k REAL NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaAlerts = `
CREATE TABLE IF NOT EXISTS alerts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    level TEXT NOT NULL,
    message TEXT NOT NULL,
    ts TIMESTAMP NOT NULL,
    acknowledged BOOLEAN NOT NULL DEFAULT 0
);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range []string{schemaUsers, schemaReadings, schemaThresholds, schemaAlerts} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}
