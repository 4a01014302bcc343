package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ijwihub/studio-cms/internal/apperror"
	"github.com/ijwihub/studio-cms/internal/model"
	"github.com/ijwihub/studio-cms/internal/repository"
)

var _ repository.SessionRepository = (*DB)(nil)

// CreateSession stores s as given. The caller (auth service) picks the ID so the
// same value can be signed into the token before the row exists.
func (db *DB) CreateSession(ctx context.Context, s *model.Session) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, admin_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		s.ID,
		s.AdminID,
		s.CreatedAt.Unix(),
		s.ExpiresAt.Unix(),
	)
	if err != nil {
		return apperror.Store("creating session", err)
	}
	return nil
}

func (db *DB) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var (
		s                    model.Session
		createdAt, expiresAt int64
		revokedAt            sql.NullInt64
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, admin_id, created_at, expires_at, revoked_at FROM sessions WHERE id = ?`,
		id,
	).Scan(&s.ID, &s.AdminID, &createdAt, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("session", id)
		}
		return nil, apperror.Store("getting session", err)
	}

	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	s.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	if revokedAt.Valid {
		t := time.Unix(revokedAt.Int64, 0).UTC()
		s.RevokedAt = &t
	}
	return &s, nil
}

// ExtendSession only touches sessions that are still unrevoked.
func (db *DB) ExtendSession(ctx context.Context, id string, expiresAt time.Time) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE sessions SET expires_at = ? WHERE id = ? AND revoked_at IS NULL`,
		expiresAt.Unix(), id,
	)
	if err != nil {
		return apperror.Store("extending session", err)
	}
	return checkAffected(result, "session", id)
}

// RevokeSession keeps the first revocation time if called again.
func (db *DB) RevokeSession(ctx context.Context, id string, at time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = COALESCE(revoked_at, ?) WHERE id = ?`,
		at.Unix(), id,
	)
	if err != nil {
		return apperror.Store("revoking session", err)
	}
	return nil
}

func (db *DB) PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)`,
		cutoff.Unix(), cutoff.Unix(),
	)
	if err != nil {
		return 0, apperror.Store("purging sessions", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperror.Store("checking rows affected", err)
	}
	return n, nil
}
