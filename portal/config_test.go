package portal

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"

[economy]
update_interval = "30s"
persistence = "redis"

[economy.seed]
treasury_value_usd = 75000.0

[economy.pricing]
max_price = 2.0

[web]
port = 9090
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, 30*time.Second, cfg.Economy.UpdateInterval.Duration)
	assert.Equal(t, PersistenceRedis, cfg.Economy.Persistence)
	assert.Equal(t, 75000.0, cfg.Economy.Seed.TreasuryValueUSD)
	assert.Equal(t, 2.0, cfg.Economy.Pricing.MaxPrice)
	assert.Equal(t, "0.0.0.0:9090", cfg.Web.Address())

	// Omitted keys keep their defaults
	defaults := DefaultConfig()
	assert.Equal(t, defaults.Economy.Seed.CirculatingSupply, cfg.Economy.Seed.CirculatingSupply)
	assert.Equal(t, defaults.Economy.Pricing.MinPrice, cfg.Economy.Pricing.MinPrice)
	assert.Equal(t, defaults.Spot.Tokens, cfg.Spot.Tokens)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed toml", "[economy\npersistence = "},
		{"bad duration", "[economy]\nupdate_interval = \"soon\""},
		{"unknown persistence", "[economy]\npersistence = \"sqlite\""},
		{"inverted price limits", "[economy.pricing]\nmin_price = 2.0\nmax_price = 1.0"},
		{"seed without effective supply", "[economy.seed]\ntotal_staked = 9950000.0"},
		{"zero refresh rate", "[web]\nrefresh_rate = 0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil {
				t.Errorf("LoadConfig() error = nil, want error")
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_ValidateJoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Economy.UpdateInterval = Duration{}
	cfg.Spot.Tokens = append(cfg.Spot.Tokens, SpotToken{Symbol: "BONK"})

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update_interval")
	assert.Contains(t, err.Error(), "spot.tokens[2]")
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration)

	out, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(out))
}
