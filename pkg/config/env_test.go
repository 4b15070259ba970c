package config_test

import (
	"testing"

	"github.com/smartstock/smartstock-backend/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("SMARTSTOCK_TEST_KEY", "value")
	assert.Equal(t, "value", config.GetEnv("SMARTSTOCK_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", config.GetEnv("SMARTSTOCK_MISSING_KEY", "fallback"))
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("SMARTSTOCK_SERVER_ENVIRONMENT", "Production")
	assert.Equal(t, "production", config.GetEnvironment())
	assert.True(t, config.IsProduction())
	assert.True(t, config.IsProductionLike())
	assert.False(t, config.IsDevelopment())
}

func TestGetEnvironmentDefault(t *testing.T) {
	t.Setenv("SMARTSTOCK_SERVER_ENVIRONMENT", "")
	assert.Equal(t, config.EnvDevelopment, config.GetEnvironment())
	assert.True(t, config.IsDevelopment())
	assert.False(t, config.IsProductionLike())
}

func TestRequireEnvPanics(t *testing.T) {
	assert.Panics(t, func() {
		config.RequireEnv("SMARTSTOCK_DEFINITELY_NOT_SET")
	})
}
