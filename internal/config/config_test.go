package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 10*time.Second, cfg.MailTimeout)
	assert.InDelta(t, 0.10, cfg.CommissionRate, 1e-9)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoad_FromEnv(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_TIMEOUT", "3s")
	t.Setenv("FRONTEND_URL", "https://app.example.com/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
	assert.Equal(t, "https://app.example.com", cfg.FrontendURL)
	assert.True(t, cfg.IsProduction())
}
