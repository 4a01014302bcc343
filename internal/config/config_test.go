package config_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ijwihub/studio-cms/internal/auth"
	"github.com/ijwihub/studio-cms/internal/config"
)

const testSecret = "0123456789abcdef0123"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWithSecretFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := config.Load(config.Options{})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, config.DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "@every 1h", cfg.Sweeper.Schedule)
	assert.False(t, cfg.Auth.GuardBypass)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load(config.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "studio.yaml", `
server:
  port: 9090
  env: production
  shutdown_timeout: 5s
store:
  driver: sqlite
  sqlite_path: /var/lib/studio/studio.db
auth:
  jwt_secret: "`+testSecret+`"
  session_ttl: 2h
  cookie_secure: true
log:
  level: debug
  format: json
sweeper:
  schedule: "*/15 * * * *"
  retention: 1h
`)

	cfg, err := config.Load(config.Options{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout, "unset keys keep their defaults")
	assert.Equal(t, "/var/lib/studio/studio.db", cfg.Store.SQLitePath)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, time.Hour, cfg.Sweeper.Retention)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "studio.yaml", "server:\n  port: 9090\nauth:\n  jwt_secret: \""+testSecret+"\"\n")
	t.Setenv("PORT", "7070")
	t.Setenv("STUDIO_SESSION_TTL", "30m")
	t.Setenv("STUDIO_STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://studio@localhost/studio")

	cfg, err := config.Load(config.Options{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Auth.SessionTTL)
	assert.Equal(t, config.DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://studio@localhost/studio", cfg.Store.DatabaseURL)
}

func TestLoad_EnvFile(t *testing.T) {
	// registered first so the variable is restored after godotenv sets it
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	envPath := writeFile(t, ".env", "JWT_SECRET="+testSecret+"\n")

	cfg, err := config.Load(config.Options{EnvFile: envPath})
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.Auth.JWTSecret)
}

func TestLoad_MissingEnvFileIsFine(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	_, err := config.Load(config.Options{EnvFile: filepath.Join(t.TempDir(), ".env")})
	assert.NoError(t, err)
}

func TestLoad_InvalidEnvValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"port", "PORT", "eighty"},
		{"ttl", "STUDIO_SESSION_TTL", "forever"},
		{"bool", "STUDIO_COOKIE_SECURE", "maybe"},
		{"cost", "STUDIO_BCRYPT_COST", "high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", testSecret)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load(config.Options{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "studio.yaml", "server: [unclosed")
	_, err := config.Load(config.Options{ConfigFile: path})
	assert.Error(t, err)
}

func validConfig() *config.Config {
	cfg := config.Default()
	cfg.Auth.JWTSecret = testSecret
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"port", func(c *config.Config) { c.Server.Port = 70000 }, "server.port"},
		{"driver", func(c *config.Config) { c.Store.Driver = "mongo" }, "store.driver"},
		{"postgres without url", func(c *config.Config) { c.Store.Driver = config.DriverPostgres }, "database_url"},
		{"short secret", func(c *config.Config) { c.Auth.JWTSecret = "short" }, "16 characters"},
		{"ttl", func(c *config.Config) { c.Auth.SessionTTL = 0 }, "session_ttl"},
		{"cost", func(c *config.Config) { c.Auth.BcryptCost = 99 }, "bcrypt_cost"},
		{"log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
		{"log level", func(c *config.Config) { c.Log.Level = "loud" }, "log.level"},
		{"schedule", func(c *config.Config) { c.Sweeper.Schedule = "whenever" }, "sweeper.schedule"},
		{"memory store outside production", func(c *config.Config) { c.Store.Driver = config.DriverMemory }, ""},
		{"memory store in production", func(c *config.Config) {
			c.Server.Env = config.EnvProduction
			c.Auth.CookieSecure = true
			c.Store.Driver = config.DriverMemory
		}, "store.driver memory"},
		{"production with secure cookie", func(c *config.Config) {
			c.Server.Env = config.EnvProduction
			c.Auth.CookieSecure = true
		}, ""},
		{"production without secure cookie", func(c *config.Config) { c.Server.Env = config.EnvProduction }, "cookie_secure"},
		{"disabled sweeper ignores schedule", func(c *config.Config) {
			c.Sweeper.Enabled = false
			c.Sweeper.Schedule = "whenever"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_GuardBypass(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.GuardBypass = true

	if auth.BypassAvailable {
		assert.NoError(t, cfg.Validate(), "dev builds accept the bypass outside production")
	} else {
		assert.Error(t, cfg.Validate(), "release builds never accept the bypass")
	}

	cfg.Server.Env = "production"
	cfg.Auth.CookieSecure = true
	err := cfg.Validate()
	require.Error(t, err, "production never accepts the bypass")
	assert.Contains(t, err.Error(), "guard_bypass")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := config.LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown", slog.String("k", "v"))
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}
