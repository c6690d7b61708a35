package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Default(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 15, cfg.Reward.DailyCap)
	require.Equal(t, 30*time.Second, cfg.Reward.DwellTime)
	require.Equal(t, ScopeAccount, cfg.Reward.Scope)
	require.Equal(t, 6*time.Hour, cfg.Spin.Cooldown)
	require.Len(t, cfg.Spin.Outcomes, 4)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(`
env = "production"

[reward]
daily_cap = 10
dwell_time = "45s"
scope = "device"

[spin]
cooldown = "3h"
`), 0o600)
	require.NoError(t, err)

	t.Setenv("REWARD_DAILY_CAP", "20")
	t.Setenv("REALTIME_PORT", "9000")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "production", cfg.Env)
	require.Equal(t, 20, cfg.Reward.DailyCap)
	require.Equal(t, 45*time.Second, cfg.Reward.DwellTime)
	require.Equal(t, ScopeDevice, cfg.Reward.Scope)
	require.Equal(t, 3*time.Hour, cfg.Spin.Cooldown)
	require.Equal(t, "9000", cfg.RealtimeServer.Port)

	// Values absent from the file keep their defaults.
	require.Len(t, cfg.Reward.Offers, 3)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	t.Setenv("REWARD_SCOPE", "browser")
	_, err = Load("")
	require.Error(t, err)
}
