package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kicad-web-opener/kicad-web-opener/internal/config"
)

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.KiCad.ApplicationPath = "/usr/bin/kicad"
	cfg.Paths.DefaultSavePath = "/data/boards"
	cfg.Git.Backend = config.GitBackendCLI
	cfg.Download.Timeout = 90 * time.Second
	cfg.Download.MaxRetries = 1

	values := FromConfig(cfg)

	assert.Equal(t, "/usr/bin/kicad", values.ApplicationPath)
	assert.Equal(t, "/data/boards", values.DefaultSavePath)
	assert.Equal(t, config.GitBackendCLI, values.GitBackend)
	assert.Equal(t, "1m30s", values.DownloadTimeout)
	assert.Equal(t, "1", values.MaxRetries)
	assert.True(t, values.Register)
}

func TestSetupValues_ApplyTo(t *testing.T) {
	t.Run("applies and validates", func(t *testing.T) {
		base := config.Default()
		values := &SetupValues{
			ApplicationPath: " /opt/kicad/bin/kicad ",
			DefaultSavePath: "/data/boards",
			GitBackend:      config.GitBackendBuiltin,
			DownloadTimeout: "2m",
			MaxRetries:      "0",
		}

		cfg, err := values.ApplyTo(base)
		require.NoError(t, err)

		assert.Equal(t, "/opt/kicad/bin/kicad", cfg.KiCad.ApplicationPath)
		assert.Equal(t, "/data/boards", cfg.Paths.DefaultSavePath)
		assert.Equal(t, config.GitBackendBuiltin, cfg.Git.Backend)
		assert.Equal(t, 2*time.Minute, cfg.Download.Timeout)
		assert.Equal(t, 0, cfg.Download.MaxRetries)

		assert.Empty(t, base.KiCad.ApplicationPath, "input config is not modified")
	})

	t.Run("empty numbers use defaults", func(t *testing.T) {
		values := &SetupValues{ApplicationPath: "/usr/bin/kicad", DefaultSavePath: "/data"}

		cfg, err := values.ApplyTo(config.Default())
		require.NoError(t, err)
		assert.Equal(t, config.DefaultDownloadTimeout, cfg.Download.Timeout)
		assert.Equal(t, config.DefaultMaxRetries, cfg.Download.MaxRetries)
		assert.Equal(t, config.GitBackendAuto, cfg.Git.Backend)
	})

	t.Run("invalid duration", func(t *testing.T) {
		_, err := (&SetupValues{DownloadTimeout: "soon"}).ApplyTo(config.Default())
		assert.ErrorContains(t, err, "download timeout")
	})

	t.Run("invalid retries", func(t *testing.T) {
		_, err := (&SetupValues{MaxRetries: "many"}).ApplyTo(config.Default())
		assert.ErrorContains(t, err, "max retries")
	})
}
