package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/rs/xid"
	"gorm.io/gorm"

	"github.com/ijwihub/studio-cms/internal/apperror"
	"github.com/ijwihub/studio-cms/internal/model"
)

// UpsertAdmin runs in a transaction so two concurrent seeds for the same
// email cannot both insert.
func (db *DB) UpsertAdmin(ctx context.Context, admin *model.Admin) error {
	if admin.Role == "" {
		admin.Role = model.RoleAdmin
	}
	now := time.Now().UTC()

	err := db.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing adminRecord
		err := tx.First(&existing, "email = ?", admin.Email).Error
		switch {
		case err == nil:
			admin.ID = existing.ID
			admin.CreatedAt = existing.CreatedAt.UTC()
			admin.UpdatedAt = now
			return tx.Model(&existing).Updates(map[string]any{
				"password_hash": admin.PasswordHash,
				"role":          admin.Role,
				"updated_at":    now,
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			admin.ID = xid.New().String()
			admin.CreatedAt = now
			admin.UpdatedAt = now
			return tx.Create(&adminRecord{
				ID:           admin.ID,
				Email:        admin.Email,
				PasswordHash: admin.PasswordHash,
				Role:         admin.Role,
				CreatedAt:    now,
				UpdatedAt:    now,
			}).Error
		default:
			return err
		}
	})
	if err != nil {
		return apperror.Store("upserting admin", err)
	}
	return nil
}

func (db *DB) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return db.firstAdmin(ctx, "email = ?", email)
}

func (db *DB) GetAdminByID(ctx context.Context, id string) (*model.Admin, error) {
	return db.firstAdmin(ctx, "id = ?", id)
}

func (db *DB) firstAdmin(ctx context.Context, where, key string) (*model.Admin, error) {
	var rec adminRecord
	if err := db.gorm.WithContext(ctx).First(&rec, where, key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("admin", key)
		}
		return nil, apperror.Store("getting admin", err)
	}
	return rec.toModel(), nil
}

func (db *DB) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var recs []adminRecord
	if err := db.gorm.WithContext(ctx).Order("email").Find(&recs).Error; err != nil {
		return nil, apperror.Store("listing admins", err)
	}
	admins := make([]model.Admin, 0, len(recs))
	for i := range recs {
		admins = append(admins, *recs[i].toModel())
	}
	return admins, nil
}

func (db *DB) CreateSession(ctx context.Context, s *model.Session) error {
	rec := &sessionRecord{
		ID:        s.ID,
		AdminID:   s.AdminID,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
	if err := db.gorm.WithContext(ctx).Create(rec).Error; err != nil {
		return apperror.Store("creating session", err)
	}
	return nil
}

func (db *DB) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var rec sessionRecord
	if err := db.gorm.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("session", id)
		}
		return nil, apperror.Store("getting session", err)
	}
	return rec.toModel(), nil
}

// ExtendSession only touches sessions that are still unrevoked.
func (db *DB) ExtendSession(ctx context.Context, id string, expiresAt time.Time) error {
	result := db.gorm.WithContext(ctx).Model(&sessionRecord{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("expires_at", expiresAt)
	return checkAffected(result, "extending session", "session", id)
}

// RevokeSession keeps the first revocation time if called again.
func (db *DB) RevokeSession(ctx context.Context, id string, at time.Time) error {
	err := db.gorm.WithContext(ctx).Model(&sessionRecord{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at).Error
	if err != nil {
		return apperror.Store("revoking session", err)
	}
	return nil
}

func (db *DB) PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	result := db.gorm.WithContext(ctx).
		Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", cutoff, cutoff).
		Delete(&sessionRecord{})
	if result.Error != nil {
		return 0, apperror.Store("purging sessions", result.Error)
	}
	return result.RowsAffected, nil
}
