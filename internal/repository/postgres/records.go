package postgres

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/ijwihub/studio-cms/internal/model"
)

type serviceRecord struct {
	ID          string         `gorm:"primaryKey;size:20"`
	Title       string         `gorm:"not null"`
	Description string         `gorm:"not null"`
	Icon        string         `gorm:"not null"`
	Price       string         `gorm:"not null"`
	Features    datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time      `gorm:"not null;index"`
	UpdatedAt   time.Time      `gorm:"not null"`
}

func (serviceRecord) TableName() string { return "services" }

func toServiceRecord(svc *model.Service) (*serviceRecord, error) {
	features := svc.Features
	if features == nil {
		features = []string{}
	}
	raw, err := json.Marshal(features)
	if err != nil {
		return nil, err
	}
	return &serviceRecord{
		ID:          svc.ID,
		Title:       svc.Title,
		Description: svc.Description,
		Icon:        svc.Icon,
		Price:       svc.Price,
		Features:    datatypes.JSON(raw),
		CreatedAt:   svc.CreatedAt,
		UpdatedAt:   svc.UpdatedAt,
	}, nil
}

func (r *serviceRecord) toModel() (*model.Service, error) {
	svc := &model.Service{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Icon:        r.Icon,
		Price:       r.Price,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if len(r.Features) > 0 {
		if err := json.Unmarshal(r.Features, &svc.Features); err != nil {
			return nil, err
		}
	}
	if svc.Features == nil {
		svc.Features = []string{}
	}
	return svc, nil
}

type workRecord struct {
	ID          string    `gorm:"primaryKey;size:20"`
	Title       string    `gorm:"not null"`
	Description string    `gorm:"not null"`
	Category    string    `gorm:"not null"`
	ImageURL    string    `gorm:"column:image_url;not null"`
	TrailerURL  string    `gorm:"column:trailer_url;not null;default:''"`
	ClientName  string    `gorm:"not null;default:''"`
	CreatedAt   time.Time `gorm:"not null;index"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (workRecord) TableName() string { return "portfolio_works" }

func toWorkRecord(w *model.PortfolioWork) *workRecord {
	return &workRecord{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Category:    w.Category,
		ImageURL:    w.ImageURL,
		TrailerURL:  w.TrailerURL,
		ClientName:  w.ClientName,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func (r *workRecord) toModel() *model.PortfolioWork {
	return &model.PortfolioWork{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		TrailerURL:  r.TrailerURL,
		ClientName:  r.ClientName,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type adminRecord struct {
	ID           string    `gorm:"primaryKey;size:20"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (adminRecord) TableName() string { return "admins" }

func (r *adminRecord) toModel() *model.Admin {
	return &model.Admin{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

// sessionRecord belongs to an admin; deleting the admin deletes its sessions.
type sessionRecord struct {
	ID        string       `gorm:"primaryKey;size:36"`
	AdminID   string       `gorm:"size:20;not null;index"`
	Admin     *adminRecord `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time    `gorm:"not null"`
	ExpiresAt time.Time    `gorm:"not null;index"`
	RevokedAt *time.Time
}

func (sessionRecord) TableName() string { return "sessions" }

func (r *sessionRecord) toModel() *model.Session {
	s := &model.Session{
		ID:        r.ID,
		AdminID:   r.AdminID,
		CreatedAt: r.CreatedAt.UTC(),
		ExpiresAt: r.ExpiresAt.UTC(),
	}
	if r.RevokedAt != nil {
		t := r.RevokedAt.UTC()
		s.RevokedAt = &t
	}
	return s
}
