package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	greenhouse "greenhouse_console"
	"greenhouse_console/internal/sim/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAlertSQLite_AppendAndList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := repository.NewAlertSQLite(db)
	ts := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO alerts")).
		WithArgs(greenhouse.AlertCritical, "temp runaway", ts, false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	if err := repo.Append(context.Background(), greenhouse.Alert{
		Level: greenhouse.AlertCritical, Message: "temp runaway", Timestamp: ts,
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM alerts ORDER BY ts DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "level", "message", "ts", "acknowledged"}).
			AddRow(1, greenhouse.AlertCritical, "temp runaway", ts, false))

	alerts, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Level != greenhouse.AlertCritical {
		t.Fatalf("alerts = %+v", alerts)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAlertSQLite_Acknowledge_MissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := repository.NewAlertSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE alerts SET acknowledged=1 WHERE id=?")).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Acknowledge(context.Background(), 99); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
}
