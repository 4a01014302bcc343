package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// applyEnvOverrides copies set environment variables over cfg. Invalid
// values fail fast instead of silently keeping the previous value.
func applyEnvOverrides(cfg *Config) error {
	// unprefixed names follow the usual hosting conventions
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = p
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Store.DatabaseURL = v
	}

	if v := os.Getenv("STUDIO_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("STUDIO_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("STUDIO_SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := os.Getenv("STUDIO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("STUDIO_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	if err := envDuration("STUDIO_SESSION_TTL", &cfg.Auth.SessionTTL); err != nil {
		return err
	}
	if v := os.Getenv("STUDIO_BCRYPT_COST"); v != "" {
		c, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid STUDIO_BCRYPT_COST %q: %w", v, err)
		}
		cfg.Auth.BcryptCost = c
	}
	if err := envBool("STUDIO_COOKIE_SECURE", &cfg.Auth.CookieSecure); err != nil {
		return err
	}
	if err := envBool("STUDIO_GUARD_BYPASS", &cfg.Auth.GuardBypass); err != nil {
		return err
	}

	if err := envBool("STUDIO_SWEEPER_ENABLED", &cfg.Sweeper.Enabled); err != nil {
		return err
	}
	if v := os.Getenv("STUDIO_SWEEPER_SCHEDULE"); v != "" {
		cfg.Sweeper.Schedule = v
	}
	return envDuration("STUDIO_SWEEPER_RETENTION", &cfg.Sweeper.Retention)
}

func envDuration(name string, dst *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("config: invalid %s %q: %w", name, v, err)
	}
	*dst = d
	return nil
}

func envBool(name string, dst *bool) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("config: invalid %s %q: %w", name, v, err)
	}
	*dst = b
	return nil
}
