// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/series"
	"github.com/tejashwikalptaru/spectrotune/internal/service"
)

// Audio backends.
const (
	BackendBeep = "beep"
	BackendMock = "mock"
)

// DefaultEnvFile is read by Load when present.
const DefaultEnvFile = ".env"

// Config holds all runtime configuration.
type Config struct {
	// Audio pipeline
	Backend          string
	SampleRate       int
	FFTSize          int
	DefaultVolume    float64
	PollInterval     time.Duration // sampler cadence
	ProgressInterval time.Duration

	// Visualization
	Style string

	// Catalog
	CatalogLocation string // file path or http(s) URL
	MetadataWorkers int
	CatalogTimeout  time.Duration

	// Startup behavior
	AutoLoadFirst bool // load the first catalog track once the catalog is ready
}

// Default returns the built-in settings.
func Default() Config {
	playback := service.DefaultPlaybackConfig()
	return Config{
		Backend:          BackendBeep,
		SampleRate:       44100,
		FFTSize:          playback.FFTSize,
		DefaultVolume:    playback.DefaultVolume,
		PollInterval:     playback.PollInterval,
		ProgressInterval: playback.ProgressInterval,
		Style:            series.StyleDots,
		CatalogLocation:  "tracks.json",
		MetadataWorkers:  4,
		CatalogTimeout:   30 * time.Second,
		AutoLoadFirst:    true,
	}
}

// Load reads DefaultEnvFile if it exists, then the process environment.
func Load() (Config, error) {
	return LoadFiles(DefaultEnvFile)
}

// LoadFiles reads the given .env files (missing files are skipped) and then
// the environment. Variables already set in the environment take precedence.
func LoadFiles(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	return FromEnv()
}

// FromEnv builds a validated Config from environment variables with defaults.
func FromEnv() (Config, error) {
	d := Default()
	cfg := Config{
		Backend:          strings.ToLower(envStr("SPECTROTUNE_AUDIO_BACKEND", d.Backend)),
		SampleRate:       envInt("SPECTROTUNE_SAMPLE_RATE", d.SampleRate),
		FFTSize:          envInt("SPECTROTUNE_FFT_SIZE", d.FFTSize),
		DefaultVolume:    envFloat("SPECTROTUNE_DEFAULT_VOLUME", d.DefaultVolume),
		PollInterval:     envDuration("SPECTROTUNE_POLL_INTERVAL", d.PollInterval),
		ProgressInterval: envDuration("SPECTROTUNE_PROGRESS_INTERVAL", d.ProgressInterval),
		Style:            envStr("SPECTROTUNE_STYLE", d.Style),
		CatalogLocation:  envStr("SPECTROTUNE_CATALOG", d.CatalogLocation),
		MetadataWorkers:  envInt("SPECTROTUNE_METADATA_WORKERS", d.MetadataWorkers),
		CatalogTimeout:   envDuration("SPECTROTUNE_CATALOG_TIMEOUT", d.CatalogTimeout),
		AutoLoadFirst:    envBool("SPECTROTUNE_AUTOLOAD", d.AutoLoadFirst),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting as a *domain.ValidationError.
func (c Config) Validate() error {
	switch {
	case c.Backend != BackendBeep && c.Backend != BackendMock:
		return domain.NewValidationError("Backend", c.Backend, "must be beep or mock")
	case c.SampleRate < 8000 || c.SampleRate > 192000:
		return domain.NewValidationError("SampleRate", c.SampleRate, "must be between 8000 and 192000")
	case !service.ValidFFTSize(c.FFTSize):
		return domain.NewValidationError("FFTSize", c.FFTSize, "must be a power of two between 32 and 32768")
	case c.DefaultVolume < 0 || c.DefaultVolume > 1:
		return domain.NewValidationError("DefaultVolume", c.DefaultVolume, "must be between 0 and 1")
	case c.PollInterval <= 0:
		return domain.NewValidationError("PollInterval", c.PollInterval, "must be positive")
	case c.ProgressInterval <= 0:
		return domain.NewValidationError("ProgressInterval", c.ProgressInterval, "must be positive")
	case c.CatalogLocation == "":
		return domain.NewValidationError("CatalogLocation", c.CatalogLocation, "must not be empty")
	case c.MetadataWorkers < 1:
		return domain.NewValidationError("MetadataWorkers", c.MetadataWorkers, "must be at least 1")
	case c.CatalogTimeout <= 0:
		return domain.NewValidationError("CatalogTimeout", c.CatalogTimeout, "must be positive")
	}
	if _, err := series.Preset(c.Style); err != nil {
		return domain.NewValidationError("Style", c.Style, "unknown style")
	}
	return nil
}

// Playback returns the playback service tuning.
func (c Config) Playback() service.PlaybackConfig {
	return service.PlaybackConfig{
		FFTSize:          c.FFTSize,
		DefaultVolume:    c.DefaultVolume,
		PollInterval:     c.PollInterval,
		ProgressInterval: c.ProgressInterval,
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// envDuration accepts Go durations ("75ms") or bare milliseconds ("75").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
