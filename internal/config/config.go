// Package config loads gymtap settings from defaults, an optional TOML
// file, a .env file and the environment, in that order.
package config

import (
	"bytes"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/rotisserie/eris"

	"github.com/a-deal/gym-finder/internal/engine/match"
	"github.com/a-deal/gym-finder/internal/engine/region"
	"github.com/a-deal/gym-finder/internal/engine/resolve"
	"github.com/a-deal/gym-finder/internal/model"
)

// ErrInvalid marks a configuration that fails validation.
var ErrInvalid = errors.New("invalid config")

// Environment variables read by Load.
const (
	EnvYelpKey        = "YELP_API_KEY"
	EnvPlacesKey      = "GOOGLE_PLACES_API_KEY"
	EnvWorkers        = "GYMTAP_WORKERS"
	EnvMergeThreshold = "GYMTAP_MERGE_THRESHOLD"
	EnvLogDir         = "GYMTAP_LOG_DIR"
)

// Duration is a time.Duration written as "500ms" or "5s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return eris.Wrapf(err, "parsing duration %q", string(b))
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Config struct {
	Matching    Matching    `toml:"matching"`
	CrossRegion CrossRegion `toml:"cross_region"`
	Runner      Runner      `toml:"runner"`
	Retry       Retry       `toml:"retry"`
	Sources     Sources     `toml:"sources"`
	LogDir      string      `toml:"log_dir"`
}

type Matching struct {
	Threshold        float64         `toml:"threshold"`
	MaxDistanceMiles float64         `toml:"max_distance_miles"`
	Strategy         string          `toml:"strategy"`
	SourcePriority   []string        `toml:"source_priority"`
	Weights          resolve.Weights `toml:"weights"`
}

type CrossRegion struct {
	NameOverlap    int  `toml:"name_overlap"`
	AddressOverlap int  `toml:"address_overlap"`
	Verify         bool `toml:"verify"`
}

type Runner struct {
	Workers       int      `toml:"workers"`
	RadiusMiles   float64  `toml:"radius_miles"`
	Sources       []string `toml:"sources"`
	ProgressEvery Duration `toml:"progress_every"`
}

type Retry struct {
	MaxAttempts int      `toml:"max_attempts"`
	BaseDelay   Duration `toml:"base_delay"`
	MaxDelay    Duration `toml:"max_delay"`
}

type Sources struct {
	Yelp   Yelp   `toml:"yelp"`
	Places Places `toml:"places"`
	Gmaps  Gmaps  `toml:"gmaps"`
}

// API keys come from the environment only and are never read from or
// written to the TOML file.
type Yelp struct {
	APIKey            string   `toml:"-" json:"-"`
	BaseURL           string   `toml:"base_url"`
	Categories        string   `toml:"categories"`
	MaxResults        int      `toml:"max_results"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Timeout           Duration `toml:"timeout"`
}

type Places struct {
	APIKey            string   `toml:"-" json:"-"`
	BaseURL           string   `toml:"base_url"`
	IncludedTypes     []string `toml:"included_types"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Timeout           Duration `toml:"timeout"`
}

type Gmaps struct {
	BaseURL           string   `toml:"base_url"`
	Lang              string   `toml:"lang"`
	Query             string   `toml:"query"`
	MaxPages          int      `toml:"max_pages"`
	Zoom              int      `toml:"zoom"`
	ProxyURL          string   `toml:"proxy_url"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Timeout           Duration `toml:"timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	retry := region.DefaultRetry()
	dedup := region.DefaultDedup()
	return Config{
		Matching: Matching{
			Threshold:        resolve.DefaultThreshold,
			MaxDistanceMiles: 0.25,
			Strategy:         string(match.StrategyOptimal),
			SourcePriority:   []string{"places", "yelp", "gmaps"},
			Weights:          resolve.DefaultWeights(),
		},
		CrossRegion: CrossRegion{
			NameOverlap:    dedup.NameOverlap,
			AddressOverlap: dedup.AddressOverlap,
			Verify:         dedup.Verify,
		},
		Runner: Runner{
			Workers:       region.DefaultWorkers,
			RadiusMiles:   5,
			Sources:       []string{"yelp", "places"},
			ProgressEvery: Duration{10 * time.Second},
		},
		Retry: Retry{
			MaxAttempts: retry.MaxAttempts,
			BaseDelay:   Duration{retry.BaseDelay},
			MaxDelay:    Duration{retry.MaxDelay},
		},
		Sources: Sources{
			Yelp:   Yelp{Categories: "gyms,fitness", MaxResults: 100, RequestsPerSecond: 5, Timeout: Duration{15 * time.Second}},
			Places: Places{IncludedTypes: []string{"gym"}, RequestsPerSecond: 5, Timeout: Duration{15 * time.Second}},
			Gmaps:  Gmaps{Lang: "en", Query: "gym", MaxPages: 2, RequestsPerSecond: 1, Timeout: Duration{15 * time.Second}},
		},
		LogDir: ".",
	}
}

// Load builds the configuration. path names an optional TOML file. envFile
// names a .env file; when empty, a .env in the working directory is loaded
// if present. Variables already set in the environment win over .env.
func Load(path, envFile string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, eris.Wrapf(err, "reading config %s", path)
		}
		dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, eris.Wrapf(err, "decoding config %s", path)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, eris.Wrapf(err, "loading env file %s", envFile)
		}
	} else {
		_ = godotenv.Load()
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvYelpKey); v != "" {
		c.Sources.Yelp.APIKey = v
	}
	if v := os.Getenv(EnvPlacesKey); v != "" {
		c.Sources.Places.APIKey = v
	}
	if v := os.Getenv(EnvLogDir); v != "" {
		c.LogDir = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return eris.Wrapf(ErrInvalid, "%s=%q is not an integer", EnvWorkers, v)
		}
		c.Runner.Workers = n
	}
	if v := os.Getenv(EnvMergeThreshold); v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return eris.Wrapf(ErrInvalid, "%s=%q is not a number", EnvMergeThreshold, v)
		}
		c.Matching.Threshold = f
	}
	return nil
}

// Validate checks the settings the engine cannot run without.
func (c Config) Validate() error {
	if err := c.Matching.Weights.Validate(); err != nil {
		return eris.Wrapf(ErrInvalid, "matching.weights: %v", err)
	}
	if !(c.Matching.Threshold > 0 && c.Matching.Threshold <= 1) {
		return eris.Wrapf(ErrInvalid, "matching.threshold must be in (0,1], got %v", c.Matching.Threshold)
	}
	if !(c.Matching.MaxDistanceMiles > 0) {
		return eris.Wrapf(ErrInvalid, "matching.max_distance_miles must be positive, got %v", c.Matching.MaxDistanceMiles)
	}
	if _, err := match.ParseStrategy(c.Matching.Strategy); err != nil {
		return eris.Wrapf(ErrInvalid, "matching.strategy: %v", err)
	}
	if c.CrossRegion.NameOverlap < 0 || c.CrossRegion.AddressOverlap < 0 {
		return eris.Wrapf(ErrInvalid, "cross_region overlaps must not be negative, got %d and %d",
			c.CrossRegion.NameOverlap, c.CrossRegion.AddressOverlap)
	}
	if c.Runner.Workers < 1 {
		return eris.Wrapf(ErrInvalid, "runner.workers must be at least 1, got %d", c.Runner.Workers)
	}
	if !(c.Runner.RadiusMiles > 0) {
		return eris.Wrapf(ErrInvalid, "runner.radius_miles must be positive, got %v", c.Runner.RadiusMiles)
	}
	if len(c.Runner.Sources) == 0 {
		return eris.Wrap(ErrInvalid, "runner.sources is empty")
	}
	if c.Retry.MaxAttempts < 1 {
		return eris.Wrapf(ErrInvalid, "retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.BaseDelay.Duration < 0 || c.Retry.MaxDelay.Duration < c.Retry.BaseDelay.Duration {
		return eris.Wrapf(ErrInvalid, "retry delays %s..%s", c.Retry.BaseDelay, c.Retry.MaxDelay)
	}
	return nil
}

// ResolverConfig returns the scoring settings.
func (c Config) ResolverConfig() resolve.Config {
	priority := make([]model.SourceID, len(c.Matching.SourcePriority))
	for i, s := range c.Matching.SourcePriority {
		priority[i] = model.SourceID(s)
	}
	return resolve.Config{
		Weights:          c.Matching.Weights.With(nil),
		Threshold:        c.Matching.Threshold,
		MaxDistanceMiles: c.Matching.MaxDistanceMiles,
		SourcePriority:   priority,
	}
}

func (c Config) DedupConfig() region.DedupConfig {
	return region.DedupConfig{
		NameOverlap:    c.CrossRegion.NameOverlap,
		AddressOverlap: c.CrossRegion.AddressOverlap,
		Verify:         c.CrossRegion.Verify,
	}
}

func (c Config) RunnerOptions() region.Options {
	return region.Options{
		Workers: c.Runner.Workers,
		Retry: region.RetryConfig{
			MaxAttempts: c.Retry.MaxAttempts,
			BaseDelay:   c.Retry.BaseDelay.Duration,
			MaxDelay:    c.Retry.MaxDelay.Duration,
		},
		ProgressEvery: c.Runner.ProgressEvery.Duration,
	}
}

// Strategy returns the validated matching strategy.
func (c Config) Strategy() match.Strategy {
	s, _ := match.ParseStrategy(c.Matching.Strategy)
	return s
}
