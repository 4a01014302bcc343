// Package repository declares the storage contracts the service layer depends on.
//
// Implementations live in sub-packages (sqlite, postgres) and all follow the same
// rules:
//   - Create fills in the generated ID and timestamps on the passed pointer.
//   - GetByID, Update and Delete return apperror.ErrNotFound for unknown ids.
//   - Any driver failure comes back wrapped in apperror.ErrStore.
//   - List returns every record, oldest first.
package repository

import (
	"context"
	"time"

	"github.com/ijwihub/studio-cms/internal/model"
)

type ServiceRepository interface {
	CreateService(ctx context.Context, svc *model.Service) error
	GetService(ctx context.Context, id string) (*model.Service, error)
	ListServices(ctx context.Context) ([]model.Service, error)
	UpdateService(ctx context.Context, svc *model.Service) error
	DeleteService(ctx context.Context, id string) error
}

type PortfolioRepository interface {
	CreateWork(ctx context.Context, work *model.PortfolioWork) error
	GetWork(ctx context.Context, id string) (*model.PortfolioWork, error)
	ListWorks(ctx context.Context) ([]model.PortfolioWork, error)
	UpdateWork(ctx context.Context, work *model.PortfolioWork) error
	DeleteWork(ctx context.Context, id string) error
}

// AdminRepository is the credential store.
type AdminRepository interface {
	// UpsertAdmin inserts a new admin or, when the email already exists, replaces
	// its password hash and role while keeping the existing ID.
	UpsertAdmin(ctx context.Context, admin *model.Admin) error
	GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error)
	GetAdminByID(ctx context.Context, id string) (*model.Admin, error)
	ListAdmins(ctx context.Context) ([]model.Admin, error)
}

type SessionRepository interface {
	CreateSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	// ExtendSession moves expires_at forward for an active session.
	ExtendSession(ctx context.Context, id string, expiresAt time.Time) error
	// RevokeSession marks the session revoked. Revoking twice is not an error.
	RevokeSession(ctx context.Context, id string, at time.Time) error
	// PurgeSessions deletes sessions that expired or were revoked before cutoff
	// and returns how many rows went away.
	PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store bundles every repository one backend provides, plus its lifecycle.
type Store interface {
	ServiceRepository
	PortfolioRepository
	AdminRepository
	SessionRepository
	Ping(ctx context.Context) error
	Close() error
}
