package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"golang.org/x/crypto/bcrypt"

	"github.com/ijwihub/studio-cms/internal/auth"
)

// Validate checks the configuration for values the server cannot start with.
//
// Ensures:
//   - server.port is a valid TCP port
//   - store.driver is known, and postgres has a database_url
//   - production runs on a durable store with secure cookies
//   - auth.jwt_secret is set and at least 16 characters
//   - auth.guard_bypass is only set in dev builds outside production
//   - sweeper.schedule parses when the sweeper is enabled
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("config: store.sqlite_path must be set for the sqlite driver")
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("config: store.database_url (or DATABASE_URL) must be set for the postgres driver")
		}
	case DriverMemory:
		if c.IsProduction() {
			return errors.New("config: store.driver memory does not persist and is not allowed when server.env is production")
		}
	default:
		return fmt.Errorf("config: unknown store.driver %q (want sqlite, postgres or memory)", c.Store.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("config: auth.jwt_secret (or JWT_SECRET) must be set")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("config: auth.session_ttl must be positive")
	}
	if c.Auth.BcryptCost != 0 && (c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost) {
		return fmt.Errorf("config: auth.bcrypt_cost %d outside %d..%d", c.Auth.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.IsProduction() && !c.Auth.CookieSecure {
		return errors.New("config: auth.cookie_secure must be true when server.env is production")
	}
	if c.Auth.GuardBypass {
		if !auth.BypassAvailable {
			return errors.New("config: auth.guard_bypass requires a binary built with -tags dev")
		}
		if c.IsProduction() {
			return errors.New("config: auth.guard_bypass is not allowed when server.env is production")
		}
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log.format %q (want text or json)", c.Log.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log.level %q", c.Log.Level)
	}

	if c.Sweeper.Enabled {
		if _, err := cron.ParseStandard(c.Sweeper.Schedule); err != nil {
			return fmt.Errorf("config: invalid sweeper.schedule %q: %w", c.Sweeper.Schedule, err)
		}
		if c.Sweeper.Retention < 0 {
			return errors.New("config: sweeper.retention must not be negative")
		}
	}

	return nil
}
