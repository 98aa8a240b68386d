package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-session-auth/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ACCESS_SECRET", strings.Repeat("a", 32))
	t.Setenv("REFRESH_SECRET", strings.Repeat("r", 32))
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := config.Load()
		require.NoError(t, err)
		require.Equal(t, 1800, cfg.Auth.AccessTTLSeconds)
		require.Equal(t, 1209600, cfg.Auth.RefreshTTLSeconds)
		require.Equal(t, 12, cfg.Auth.HashCostFactor)
		require.Equal(t, time.Duration(0), cfg.Auth.ClockSkewTolerance())
		require.Equal(t, ":8080", cfg.HTTP.Addr())
		require.True(t, cfg.IsDev())
	})

	t.Run("overrides", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ACCESS_TTL_SECONDS", "900")
		t.Setenv("REFRESH_TTL_SECONDS", "86400")
		t.Setenv("CLOCK_SKEW_TOLERANCE_SECONDS", "5")
		t.Setenv("HTTP_PORT", "9090")

		cfg, err := config.Load()
		require.NoError(t, err)
		require.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL())
		require.Equal(t, 24*time.Hour, cfg.Auth.RefreshTTL())
		require.Equal(t, 5*time.Second, cfg.Auth.ClockSkewTolerance())
		require.Equal(t, ":9090", cfg.HTTP.Addr())
	})

	t.Run("missing secrets fail", func(t *testing.T) {
		t.Setenv("ACCESS_SECRET", "")
		t.Setenv("REFRESH_SECRET", "")

		_, err := config.Load()
		require.Error(t, err)
	})
}

func TestAuthConfigValidate(t *testing.T) {
	valid := config.AuthConfig{
		AccessSecret:      strings.Repeat("a", 32),
		RefreshSecret:     strings.Repeat("r", 32),
		AccessTTLSeconds:  1800,
		RefreshTTLSeconds: 86400,
		HashCostFactor:    10,
		CacheTTLSeconds:   3600,
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, valid.Validate())
	})

	t.Run("short access secret", func(t *testing.T) {
		cfg := valid
		cfg.AccessSecret = "tooshort"
		require.Error(t, cfg.Validate())
	})

	t.Run("identical secrets", func(t *testing.T) {
		cfg := valid
		cfg.RefreshSecret = cfg.AccessSecret
		err := cfg.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "distinct")
	})

	t.Run("refresh TTL not exceeding access TTL", func(t *testing.T) {
		cfg := valid
		cfg.RefreshTTLSeconds = cfg.AccessTTLSeconds
		err := cfg.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "exceed")
	})

	t.Run("hash cost out of range", func(t *testing.T) {
		cfg := valid
		cfg.HashCostFactor = 99
		require.Error(t, cfg.Validate())
	})

	t.Run("negative skew", func(t *testing.T) {
		cfg := valid
		cfg.ClockSkewToleranceSeconds = -1
		require.Error(t, cfg.Validate())
	})
}
