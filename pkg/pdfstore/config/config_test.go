package config_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loresmith/pdfstore/pkg/pdfstore/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(func(c *config.ServerConfig) error {
		c.APIKey = "secret"
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.HourlyUploadLimit)
	assert.Equal(t, 50, cfg.DailyUploadLimit)
	assert.True(t, cfg.RequireAdminDelete)
	assert.Equal(t, "memory://", cfg.StorageURL)
	assert.Equal(t, "memory://", cfg.RecordsURL)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEY")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("API_KEY", "user-secret")
	t.Setenv("ADMIN_API_KEY", "admin-secret")
	t.Setenv("RATE_LIMIT_UPLOADS_PER_HOUR", "3")
	t.Setenv("RATE_LIMIT_UPLOADS_PER_DAY", "7")
	t.Setenv("REQUIRE_ADMIN_DELETE", "false")
	t.Setenv("STORAGE_URL", "s3://my-bucket?region=us-west-2")
	t.Setenv("RECORDS_URL", "memory://")

	cfg, err := config.Load(config.WithEnv())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "user-secret", cfg.APIKey)
	assert.Equal(t, "admin-secret", cfg.AdminAPIKey)
	assert.Equal(t, 3, cfg.HourlyUploadLimit)
	assert.Equal(t, 7, cfg.DailyUploadLimit)
	assert.False(t, cfg.RequireAdminDelete)
	assert.Equal(t, "s3://my-bucket?region=us-west-2", cfg.StorageURL)
}

func TestLoadRejectsBadURLs(t *testing.T) {
	t.Setenv("API_KEY", "secret")

	t.Run("storage", func(t *testing.T) {
		t.Setenv("STORAGE_URL", "ftp://nope")
		_, err := config.Load(config.WithEnv())
		assert.Error(t, err)
	})

	t.Run("records", func(t *testing.T) {
		t.Setenv("RECORDS_URL", "redis://nope")
		_, err := config.Load(config.WithEnv())
		assert.Error(t, err)
	})
}

func TestLoadRejectsBadBool(t *testing.T) {
	t.Setenv("API_KEY", "secret")
	t.Setenv("REQUIRE_ADMIN_DELETE", "perhaps")

	_, err := config.Load(config.WithEnv())
	assert.Error(t, err)
}

func TestBuildServiceMemory(t *testing.T) {
	cfg, err := config.Load(func(c *config.ServerConfig) error {
		c.APIKey = "secret"
		return nil
	})
	require.NoError(t, err)

	svc, err := cfg.BuildService(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestBuildAuthenticator(t *testing.T) {
	cfg, err := config.Load(func(c *config.ServerConfig) error {
		c.APIKey = "user-secret"
		c.AdminAPIKey = "admin-secret"
		return nil
	})
	require.NoError(t, err)

	auth := cfg.BuildAuthenticator()
	identity, err := auth.Authenticate("admin-secret", true)
	require.NoError(t, err)
	assert.True(t, identity.IsAdmin)
}
