package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	greenhouse "greenhouse_console"
)

type ThresholdSQLite struct {
	db *sql.DB
}

func NewThresholdSQLite(db *sql.DB) *ThresholdSQLite {
	return &ThresholdSQLite{db: db}
}

const thresholdRowID = 1

// Defaults applied when the table is empty.
var defaultThresholds = greenhouse.ThresholdSet{
	Soil1: 40, Soil2: 40,
	TempHigh: 30, TempLow: 18,
	HumHigh: 80, HumLow: 40,
	NPKN: 50, NPKP: 50, NPKK: 50,
}

const upsertThresholdsSQL = `
	INSERT INTO thresholds (id, soil1, soil2, temp_high, temp_low, hum_high, hum_low, npk_n, npk_p, npk_k, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		soil1=excluded.soil1,
		soil2=excluded.soil2,
		temp_high=excluded.temp_high,
		temp_low=excluded.temp_low,
		hum_high=excluded.hum_high,
		hum_low=excluded.hum_low,
		npk_n=excluded.npk_n,
		npk_p=excluded.npk_p,
		npk_k=excluded.npk_k,
		updated_at=excluded.updated_at
`

func (r *ThresholdSQLite) Save(ctx context.Context, t greenhouse.ThresholdSet) error {
	ts := t.UpdatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.ExecContext(ctx, upsertThresholdsSQL,
		thresholdRowID,
		t.Soil1, t.Soil2,
		t.TempHigh, t.TempLow,
		t.HumHigh, t.HumLow,
		t.NPKN, t.NPKP, t.NPKK,
		ts.UTC(),
	)
	return err
}

// Load fetches the single thresholds row, falling back to defaults when
// nothing has been saved yet.
func (r *ThresholdSQLite) Load(ctx context.Context) (greenhouse.ThresholdSet, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT soil1, soil2, temp_high, temp_low, hum_high, hum_low, npk_n, npk_p, npk_k, updated_at
		 FROM thresholds WHERE id=?`, thresholdRowID)

	var t greenhouse.ThresholdSet
	err := row.Scan(
		&t.Soil1, &t.Soil2,
		&t.TempHigh, &t.TempLow,
		&t.HumHigh, &t.HumLow,
		&t.NPKN, &t.NPKP, &t.NPKK,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return defaultThresholds, nil
		}
		return greenhouse.ThresholdSet{}, err
	}
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}
