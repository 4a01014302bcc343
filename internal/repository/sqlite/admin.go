package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/xid"

	"github.com/ijwihub/studio-cms/internal/apperror"
	"github.com/ijwihub/studio-cms/internal/model"
	"github.com/ijwihub/studio-cms/internal/repository"
)

var _ repository.AdminRepository = (*DB)(nil)

const adminColumns = `id, email, password_hash, role, created_at, updated_at`

// UpsertAdmin inserts or updates an admin keyed by email.
//
// An existing admin keeps their internal ID and created_at, so sessions issued
// before a password reset still point at the same row (they are not revoked by
// this call; the CLI decides that).
func (db *DB) UpsertAdmin(ctx context.Context, admin *model.Admin) error {
	existing, err := db.GetAdminByEmail(ctx, admin.Email)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	if admin.Role == "" {
		admin.Role = model.RoleAdmin
	}

	now := time.Now().UTC()

	if existing != nil {
		admin.ID = existing.ID
		admin.CreatedAt = existing.CreatedAt
		admin.UpdatedAt = now
		_, err = db.conn.ExecContext(ctx,
			`UPDATE admins SET password_hash = ?, role = ?, updated_at = ? WHERE id = ?`,
			admin.PasswordHash,
			admin.Role,
			admin.UpdatedAt,
			admin.ID,
		)
		if err != nil {
			return apperror.Store("updating admin", err)
		}
		return nil
	}

	admin.ID = xid.New().String()
	admin.CreatedAt = now
	admin.UpdatedAt = now
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO admins (`+adminColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		admin.ID,
		admin.Email,
		admin.PasswordHash,
		admin.Role,
		admin.CreatedAt,
		admin.UpdatedAt,
	)
	if err != nil {
		return apperror.Store("inserting admin", err)
	}
	return nil
}

func (db *DB) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE email = ?`, email)
	admin, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("admin", email)
		}
		return nil, apperror.Store("getting admin by email", err)
	}
	return admin, nil
}

func (db *DB) GetAdminByID(ctx context.Context, id string) (*model.Admin, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = ?`, id)
	admin, err := scanAdmin(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("admin", id)
		}
		return nil, apperror.Store("getting admin", err)
	}
	return admin, nil
}

func (db *DB) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+adminColumns+` FROM admins ORDER BY email`)
	if err != nil {
		return nil, apperror.Store("listing admins", err)
	}
	defer rows.Close()

	admins := make([]model.Admin, 0)
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, apperror.Store("scanning admin row", err)
		}
		admins = append(admins, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Store("iterating admins", err)
	}
	return admins, nil
}

func scanAdmin(s scanner) (*model.Admin, error) {
	var a model.Admin
	if err := s.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
