package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-deal/gym-finder/internal/engine/match"
	"github.com/a-deal/gym-finder/internal/engine/resolve"
	"github.com/a-deal/gym-finder/internal/engine/similarity"
)

// clearEnv unsets the variables Load reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvYelpKey, EnvPlacesKey, EnvWorkers, EnvMergeThreshold, EnvLogDir} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	// Keep a stray .env in the working directory out of the picture.
	t.Chdir(t.TempDir())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, match.StrategyOptimal, cfg.Strategy())
	assert.True(t, cfg.CrossRegion.Verify)
	assert.Equal(t, 4, cfg.Runner.Workers)
	assert.Equal(t, 3, cfg.CrossRegion.NameOverlap)
	assert.Equal(t, 5, cfg.CrossRegion.AddressOverlap)
}

func TestLoad_NoFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "gymtap.toml", `
log_dir = "logs"

[matching]
threshold = 0.7
strategy = "greedy"

[matching.weights]
phone = 0.4
price = 0

[cross_region]
verify = false

[runner]
workers = 8
sources = ["yelp", "gmaps"]
progress_every = "30s"

[retry]
base_delay = "250ms"
max_delay = "2s"

[sources.gmaps]
max_pages = 3
proxy_url = "http://127.0.0.1:8080"
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "logs", cfg.LogDir)
	assert.InDelta(t, 0.7, cfg.Matching.Threshold, 1e-9)
	assert.Equal(t, match.StrategyGreedy, cfg.Strategy())
	assert.InDelta(t, 0.4, cfg.Matching.Weights[similarity.SignalPhone], 1e-9)
	assert.Zero(t, cfg.Matching.Weights[similarity.SignalPrice])
	assert.InDelta(t, 0.30, cfg.Matching.Weights[similarity.SignalName], 1e-9, "unlisted weights keep defaults")
	assert.False(t, cfg.CrossRegion.Verify)
	assert.Equal(t, 3, cfg.CrossRegion.NameOverlap)
	assert.Equal(t, 8, cfg.Runner.Workers)
	assert.Equal(t, []string{"yelp", "gmaps"}, cfg.Runner.Sources)
	assert.Equal(t, 30*time.Second, cfg.Runner.ProgressEvery.Duration)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.BaseDelay.Duration)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 3, cfg.Sources.Gmaps.MaxPages)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.Sources.Gmaps.ProxyURL)
	assert.Equal(t, "en", cfg.Sources.Gmaps.Lang)

	opts := cfg.RunnerOptions()
	assert.Equal(t, 8, opts.Workers)
	assert.Equal(t, 2*time.Second, opts.Retry.MaxDelay)
	assert.False(t, cfg.DedupConfig().Verify)

	_, err = resolve.New(cfg.ResolverConfig())
	require.NoError(t, err)
}

func TestLoad_FileErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), "")
	assert.Error(t, err)

	_, err = Load(writeFile(t, "typo.toml", "[matching]\nthreshhold = 0.5\n"), "")
	assert.Error(t, err, "unknown keys are rejected")

	_, err = Load(writeFile(t, "dur.toml", "[retry]\nbase_delay = \"soon\"\n"), "")
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.toml", "[runner]\nworkers = 0\n"), "")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	envFile := writeFile(t, "test.env", "YELP_API_KEY=from-file\nGOOGLE_PLACES_API_KEY=places-key\nGYMTAP_WORKERS=2\n")
	t.Setenv(EnvYelpKey, "from-env")
	t.Setenv(EnvMergeThreshold, "0.65")
	t.Setenv(EnvLogDir, "/var/log/gymtap")

	cfg, err := Load("", envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Sources.Yelp.APIKey, "the environment wins over .env")
	assert.Equal(t, "places-key", cfg.Sources.Places.APIKey)
	assert.Equal(t, 2, cfg.Runner.Workers)
	assert.InDelta(t, 0.65, cfg.Matching.Threshold, 1e-9)
	assert.Equal(t, "/var/log/gymtap", cfg.LogDir)
}

func TestLoad_EnvErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvWorkers, "many")
	_, err := Load("", "")
	assert.ErrorIs(t, err, ErrInvalid)

	clearEnv(t)
	t.Setenv(EnvMergeThreshold, "1.5")
	_, err = Load("", "")
	assert.ErrorIs(t, err, ErrInvalid)

	clearEnv(t)
	_, err = Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero weights", func(c *Config) {
			for k := range c.Matching.Weights {
				c.Matching.Weights[k] = 0
			}
		}},
		{"negative weight", func(c *Config) { c.Matching.Weights[similarity.SignalName] = -1 }},
		{"unknown signal", func(c *Config) { c.Matching.Weights["vibes"] = 0.5 }},
		{"zero threshold", func(c *Config) { c.Matching.Threshold = 0 }},
		{"threshold above one", func(c *Config) { c.Matching.Threshold = 1.01 }},
		{"no workers", func(c *Config) { c.Runner.Workers = 0 }},
		{"zero distance", func(c *Config) { c.Matching.MaxDistanceMiles = 0 }},
		{"negative overlap", func(c *Config) { c.CrossRegion.AddressOverlap = -1 }},
		{"unknown strategy", func(c *Config) { c.Matching.Strategy = "random" }},
		{"no sources", func(c *Config) { c.Runner.Sources = nil }},
		{"no attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }},
		{"inverted delays", func(c *Config) { c.Retry.MaxDelay = Duration{time.Millisecond} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration)
	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(b))
}
