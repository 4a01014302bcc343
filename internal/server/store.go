package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ijwihub/studio-cms/internal/auth"
	"github.com/ijwihub/studio-cms/internal/config"
	"github.com/ijwihub/studio-cms/internal/repository"
	"github.com/ijwihub/studio-cms/internal/repository/memory"
	"github.com/ijwihub/studio-cms/internal/repository/postgres"
	sqliteRepo "github.com/ijwihub/studio-cms/internal/repository/sqlite"
	"github.com/ijwihub/studio-cms/internal/service"
	"github.com/ijwihub/studio-cms/internal/validate"
)

// OpenStore opens the backend named by cfg.Driver. The caller owns Close.
func OpenStore(cfg config.StoreConfig) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		if cfg.SQLitePath != ":memory:" {
			// 0755 = owner rwx, everyone else r-x
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		return sqliteRepo.New(cfg.SQLitePath)
	case config.DriverPostgres:
		return postgres.New(cfg.DatabaseURL)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Services is the service layer wired to one store. The HTTP server and the
// studioctl CLI both build it through NewServices.
type Services struct {
	Auth      *service.AuthService
	Catalog   *service.CatalogService
	Portfolio *service.PortfolioService
}

func NewServices(cfg *config.Config, store repository.Store, logger *slog.Logger) (*Services, error) {
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	passwords, err := auth.NewPasswordService(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("creating password service: %w", err)
	}
	v := validate.New()

	return &Services{
		Auth: service.NewAuthService(store, store, tokens, passwords, v,
			service.AuthConfig{SessionTTL: cfg.Auth.SessionTTL}, logger),
		Catalog:   service.NewCatalogService(store, v, logger),
		Portfolio: service.NewPortfolioService(store, v, logger),
	}, nil
}

// SeedContent fills empty collections with the studio's default content.
func (s *Services) SeedContent(ctx context.Context) (service.SeedResult, error) {
	return service.SeedContent(ctx, s.Catalog, s.Portfolio)
}
