package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	greenhouse "greenhouse_console"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite {
	return &ReadingSQLite{db: db}
}

const (
	insertReadingSQL = `
		INSERT INTO readings (ts, temp, hum, light, soil_moisture, soil1, soil2, npk_n, npk_p, npk_k, actuators)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	readingColumns = "ts, temp, hum, light, soil_moisture, soil1, soil2, npk_n, npk_p, npk_k, actuators"
)

// Append stores one reading; the actuator set is kept as a JSON column so
// the reading stays one row.
func (r *ReadingSQLite) Append(ctx context.Context, reading greenhouse.EnvironmentReading) error {
	acts, err := json.Marshal(reading.Actuators)
	if err != nil {
		return err
	}
	ts := reading.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err = r.db.ExecContext(ctx, insertReadingSQL,
		ts.UTC(),
		reading.Temp, reading.Hum, reading.Light, reading.SoilMoisture,
		reading.Soil1, reading.Soil2,
		reading.NPKN, reading.NPKP, reading.NPKK,
		string(acts),
	)
	return err
}

func scanReading(row interface{ Scan(...any) error }) (*greenhouse.EnvironmentReading, error) {
	var reading greenhouse.EnvironmentReading
	var acts string
	err := row.Scan(
		&reading.Timestamp,
		&reading.Temp, &reading.Hum, &reading.Light, &reading.SoilMoisture,
		&reading.Soil1, &reading.Soil2,
		&reading.NPKN, &reading.NPKP, &reading.NPKK,
		&acts,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if acts != "" && acts != "null" {
		var set greenhouse.ActuatorSet
		if err := json.Unmarshal([]byte(acts), &set); err != nil {
			return nil, err
		}
		reading.Actuators = &set
	}
	reading.Timestamp = reading.Timestamp.UTC()
	return &reading, nil
}

// Latest fetches the most recent reading, or nil when none exist yet.
func (r *ReadingSQLite) Latest(ctx context.Context) (*greenhouse.EnvironmentReading, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+readingColumns+" FROM readings ORDER BY ts DESC LIMIT 1")
	return scanReading(row)
}

// Range fetches readings within [from, to) in ascending time order.
func (r *ReadingSQLite) Range(ctx context.Context, from, to time.Time) ([]greenhouse.EnvironmentReading, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+readingColumns+" FROM readings WHERE ts >= ? AND ts < ? ORDER BY ts",
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []greenhouse.EnvironmentReading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *reading)
	}
	return out, rows.Err()
}
