package repository

import (
	"context"
	"database/sql"
	"time"

	greenhouse "greenhouse_console"
)

type AlertSQLite struct {
	db *sql.DB
}

func NewAlertSQLite(db *sql.DB) *AlertSQLite {
	return &AlertSQLite{db: db}
}

func (r *AlertSQLite) Append(ctx context.Context, a greenhouse.Alert) error {
	ts := a.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO alerts (level, message, ts, acknowledged) VALUES (?, ?, ?, ?)",
		a.Level, a.Message, ts.UTC(), a.Acknowledged,
	)
	return err
}

func (r *AlertSQLite) List(ctx context.Context) ([]greenhouse.Alert, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, level, message, ts, acknowledged FROM alerts ORDER BY ts DESC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []greenhouse.Alert
	for rows.Next() {
		var a greenhouse.Alert
		if err := rows.Scan(&a.ID, &a.Level, &a.Message, &a.Timestamp, &a.Acknowledged); err != nil {
			return nil, err
		}
		a.Timestamp = a.Timestamp.UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AlertSQLite) Acknowledge(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "UPDATE alerts SET acknowledged=1 WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
