package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	greenhouse "greenhouse_console"
)

type UserSQLite struct {
	db *sql.DB
}

func NewUserSQLite(db *sql.DB) *UserSQLite {
	return &UserSQLite{db: db}
}

const userColumns = "id, username, email, password_hash, role, status, theme, created_at"

func scanUser(row interface{ Scan(...any) error }) (*UserRecord, error) {
	var u UserRecord
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.Theme, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (r *UserSQLite) Create(ctx context.Context, username, email, hash string) (*UserRecord, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, role, status, theme, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		username, email, hash, greenhouse.RoleUser, greenhouse.StatusActive, greenhouse.ThemeDark, now,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, int(id))
}

func (r *UserSQLite) GetByUsername(ctx context.Context, username string) (*UserRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username=?", username)
	return scanUser(row)
}

func (r *UserSQLite) GetByID(ctx context.Context, id int) (*UserRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id=?", id)
	return scanUser(row)
}

func (r *UserSQLite) List(ctx context.Context) ([]greenhouse.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []greenhouse.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u.User)
	}
	return out, rows.Err()
}

func (r *UserSQLite) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	return err
}

func (r *UserSQLite) SetStatus(ctx context.Context, id int, status string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET status=? WHERE id=?", status, id)
	return err
}

func (r *UserSQLite) SetRole(ctx context.Context, id int, role string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET role=? WHERE id=?", role, id)
	return err
}

func (r *UserSQLite) SetTheme(ctx context.Context, id int, theme string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET theme=? WHERE id=?", theme, id)
	return err
}

func (r *UserSQLite) SetUsername(ctx context.Context, id int, username string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET username=? WHERE id=?", username, id)
	return err
}

func (r *UserSQLite) SetPasswordHash(ctx context.Context, id int, hash string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}
