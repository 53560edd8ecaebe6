package repository

import (
	"context"
	"database/sql"
	"time"

	greenhouse "greenhouse_console"
)

// UserRecord is the stored account, including the hash the API never sees.
type UserRecord struct {
	greenhouse.User
	PasswordHash string
}

type UserRepo interface {
	Create(ctx context.Context, username, email, hash string) (*UserRecord, error)
	GetByUsername(ctx context.Context, username string) (*UserRecord, error)
	GetByID(ctx context.Context, id int) (*UserRecord, error)
	List(ctx context.Context) ([]greenhouse.User, error)
	Delete(ctx context.Context, id int) error
	SetStatus(ctx context.Context, id int, status string) error
	SetRole(ctx context.Context, id int, role string) error
	SetTheme(ctx context.Context, id int, theme string) error
	SetUsername(ctx context.Context, id int, username string) error
	SetPasswordHash(ctx context.Context, id int, hash string) error
}

type ReadingRepo interface {
	Append(ctx context.Context, r greenhouse.EnvironmentReading) error
	Latest(ctx context.Context) (*greenhouse.EnvironmentReading, error)
	Range(ctx context.Context, from, to time.Time) ([]greenhouse.EnvironmentReading, error)
}

type ThresholdRepo interface {
	Load(ctx context.Context) (greenhouse.ThresholdSet, error)
	Save(ctx context.Context, t greenhouse.ThresholdSet) error
}

type AlertRepo interface {
	Append(ctx context.Context, a greenhouse.Alert) error
	List(ctx context.Context) ([]greenhouse.Alert, error)
	Acknowledge(ctx context.Context, id int) error
}

type Repository struct {
	Users      UserRepo
	Readings   ReadingRepo
	Thresholds ThresholdRepo
	Alerts     AlertRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users:      NewUserSQLite(db),
		Readings:   NewReadingSQLite(db),
		Thresholds: NewThresholdSQLite(db),
		Alerts:     NewAlertSQLite(db),
	}
}
