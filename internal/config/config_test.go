package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 4096, cfg.FFTSize)
	assert.Equal(t, 50*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 0.8, cfg.DefaultVolume)
	assert.Equal(t, "dots", cfg.Style)
	assert.Equal(t, BackendBeep, cfg.Backend)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SPECTROTUNE_AUDIO_BACKEND", "MOCK")
	t.Setenv("SPECTROTUNE_FFT_SIZE", "2048")
	t.Setenv("SPECTROTUNE_DEFAULT_VOLUME", "0.5")
	t.Setenv("SPECTROTUNE_POLL_INTERVAL", "20ms")
	t.Setenv("SPECTROTUNE_PROGRESS_INTERVAL", "500")
	t.Setenv("SPECTROTUNE_STYLE", "scape-mono")
	t.Setenv("SPECTROTUNE_CATALOG", "https://example.com/tracks.json")
	t.Setenv("SPECTROTUNE_AUTOLOAD", "false")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, BackendMock, cfg.Backend)
	assert.Equal(t, 2048, cfg.FFTSize)
	assert.Equal(t, 0.5, cfg.DefaultVolume)
	assert.Equal(t, 20*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.ProgressInterval)
	assert.Equal(t, "scape-mono", cfg.Style)
	assert.Equal(t, "https://example.com/tracks.json", cfg.CatalogLocation)
	assert.False(t, cfg.AutoLoadFirst)

	playback := cfg.Playback()
	assert.Equal(t, 2048, playback.FFTSize)
	assert.Equal(t, 500*time.Millisecond, playback.ProgressInterval)
}

func TestFromEnv_MalformedFallsBack(t *testing.T) {
	t.Setenv("SPECTROTUNE_SAMPLE_RATE", "fast")
	t.Setenv("SPECTROTUNE_POLL_INTERVAL", "soon")
	t.Setenv("SPECTROTUNE_AUTOLOAD", "maybe")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 44100, cfg.SampleRate)
	assert.Equal(t, 50*time.Millisecond, cfg.PollInterval)
	assert.True(t, cfg.AutoLoadFirst)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"backend", func(c *Config) { c.Backend = "alsa" }, "Backend"},
		{"fft size", func(c *Config) { c.FFTSize = 1000 }, "FFTSize"},
		{"volume", func(c *Config) { c.DefaultVolume = 1.5 }, "DefaultVolume"},
		{"poll", func(c *Config) { c.PollInterval = 0 }, "PollInterval"},
		{"style", func(c *Config) { c.Style = "waves" }, "Style"},
		{"catalog", func(c *Config) { c.CatalogLocation = "" }, "CatalogLocation"},
		{"workers", func(c *Config) { c.MetadataWorkers = 0 }, "MetadataWorkers"},
		{"sample rate", func(c *Config) { c.SampleRate = 100 }, "SampleRate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)

			var vErr *domain.ValidationError
			require.ErrorAs(t, cfg.Validate(), &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "SPECTROTUNE_STYLE=lines\nSPECTROTUNE_METADATA_WORKERS=2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv writes straight into the process environment
	t.Cleanup(func() {
		_ = os.Unsetenv("SPECTROTUNE_STYLE")
		_ = os.Unsetenv("SPECTROTUNE_METADATA_WORKERS")
	})

	cfg, err := LoadFiles(filepath.Join(dir, "missing.env"), path)
	require.NoError(t, err)
	assert.Equal(t, "lines", cfg.Style)
	assert.Equal(t, 2, cfg.MetadataWorkers)
}

func TestLoadFiles_EnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SPECTROTUNE_STYLE=lines\n"), 0o600))
	t.Setenv("SPECTROTUNE_STYLE", "bars")

	cfg, err := LoadFiles(path)
	require.NoError(t, err)
	assert.Equal(t, "bars", cfg.Style)
}

func TestLoadFiles_InvalidValue(t *testing.T) {
	t.Setenv("SPECTROTUNE_FFT_SIZE", "3000")
	_, err := LoadFiles()
	assert.Error(t, err)
}
