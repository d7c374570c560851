package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INTAKE_STR", "hello")
	t.Setenv("TEST_INTAKE_INT", "42")
	t.Setenv("TEST_INTAKE_BAD_INT", "abc")
	t.Setenv("TEST_INTAKE_FLOAT", "0.75")
	t.Setenv("TEST_INTAKE_BOOL", "true")
	t.Setenv("TEST_INTAKE_BAD_BOOL", "maybe")

	assert.Equal(t, "hello", getEnv("TEST_INTAKE_STR", "default"))
	assert.Equal(t, "default", getEnv("TEST_INTAKE_MISSING", "default"))
	assert.Equal(t, 42, getEnvAsInt("TEST_INTAKE_INT", 10))
	assert.Equal(t, 10, getEnvAsInt("TEST_INTAKE_BAD_INT", 10))
	assert.InDelta(t, 0.75, getEnvAsFloat("TEST_INTAKE_FLOAT", 0.1), 1e-9)
	assert.True(t, getEnvAsBool("TEST_INTAKE_BOOL", false))
	assert.False(t, getEnvAsBool("TEST_INTAKE_BAD_BOOL", false))
}

func TestLoad_FallsBackToFrontEndVariables(t *testing.T) {
	t.Setenv("BROKER_API_BASE_URL", "")
	t.Setenv("NEXT_PUBLIC_API_BASE_URL", "http://broker.internal:8000/")
	t.Setenv("BROKER_USE_MOCK_API", "")
	t.Setenv("NEXT_PUBLIC_USE_MOCK_API", "true")
	t.Setenv("GOOGLE_MAPS_API_KEY", "")
	t.Setenv("NEXT_PUBLIC_GOOGLE_MAPS_API_KEY", "maps-key")
	t.Setenv("BROKER_TIMEOUT", "5")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_URI", "")
	t.Setenv("PG_DSN", "")
	t.Setenv("PG_HOST", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://broker.internal:8000", cfg.Broker.APIBaseURL)
	assert.True(t, cfg.Broker.UseMock)
	assert.Equal(t, 5*time.Second, cfg.Broker.Timeout)
	assert.Equal(t, "maps-key", cfg.Maps.GoogleMapsAPIKey)
	assert.False(t, cfg.PostgreSQL.Enabled)
	assert.False(t, cfg.Redis.Enabled)
}

func TestGetPostgreSQLDSN(t *testing.T) {
	cfg := &Config{PostgreSQL: PostgreSQLConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable",
	}}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", cfg.GetPostgreSQLDSN())

	cfg.PostgreSQL.DSN = "postgres://x"
	assert.Equal(t, "postgres://x", cfg.GetPostgreSQLDSN())
}
