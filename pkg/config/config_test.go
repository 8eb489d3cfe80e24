package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "PORT", "ENVIRONMENT", "ALLOWED_ORIGINS", "DB_MAX_OPEN_CONNS",
		"DB_CONN_MAX_LIFETIME", "AUTO_MIGRATE", "EXPOSE_ERROR_DETAILS",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, defaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 10, cfg.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
	assert.True(t, cfg.AutoMigrate)
	assert.True(t, cfg.ExposeErrorDetails)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://crm@db:5432/crm")
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("DB_MAX_OPEN_CONNS", "42")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90s")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("EXPOSE_ERROR_DETAILS", "")

	cfg := LoadConfig()

	assert.Equal(t, "postgres://crm@db:5432/crm", cfg.DatabaseURL)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 42, cfg.MaxOpenConns)
	assert.Equal(t, 90*time.Second, cfg.ConnMaxLifetime)
	assert.False(t, cfg.AutoMigrate)
	assert.True(t, cfg.IsProduction())
	// production hides storage diagnostics unless asked
	assert.False(t, cfg.ExposeErrorDetails)
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("DB_MAX_IDLE_CONNS", "lots")
	assert.Equal(t, 7, getEnvInt("DB_MAX_IDLE_CONNS", 7))
}
