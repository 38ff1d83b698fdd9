package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
	"github.com/kicad-web-opener/kicad-web-opener/internal/utils"
)

// Config represents the application configuration
type Config struct {
	KiCad    KiCadConfig    `mapstructure:"kicad" yaml:"kicad"`
	Paths    PathsConfig    `mapstructure:"paths" yaml:"paths"`
	Download DownloadConfig `mapstructure:"download" yaml:"download"`
	Git      GitConfig      `mapstructure:"git" yaml:"git"`
	History  HistoryConfig  `mapstructure:"history" yaml:"history"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// KiCadConfig locates the CAD application
type KiCadConfig struct {
	ApplicationPath string `mapstructure:"application_path" yaml:"application_path"`
}

// PathsConfig contains filesystem locations
type PathsConfig struct {
	// DefaultSavePath is the parent of every fetched project unless --dest is given
	DefaultSavePath string `mapstructure:"default_save_path" yaml:"default_save_path"`
}

// DownloadConfig contains archive download settings
type DownloadConfig struct {
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	UserAgent  string        `mapstructure:"user_agent" yaml:"user_agent"`
	// BrowserTLS sends downloads with a browser TLS fingerprint
	BrowserTLS bool   `mapstructure:"browser_tls" yaml:"browser_tls"`
	Proxy      string `mapstructure:"proxy" yaml:"proxy"`
}

// GitConfig contains repository clone settings
type GitConfig struct {
	Binary  string        `mapstructure:"binary" yaml:"binary"`
	Backend string        `mapstructure:"backend" yaml:"backend"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// HistoryConfig contains recent-projects settings
type HistoryConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Git backends
const (
	GitBackendAuto    = "auto"
	GitBackendCLI     = "cli"
	GitBackendBuiltin = "builtin"
)

// absolutePath makes an application path absolute. A bare command name
// is left alone so it is still resolved through PATH.
func absolutePath(path string) (string, error) {
	path = utils.ExpandPath(strings.TrimSpace(path))
	if path == "" || !strings.ContainsAny(path, `/\`) {
		return path, nil
	}
	return filepath.Abs(path)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	app, err := absolutePath(c.KiCad.ApplicationPath)
	if err != nil {
		return fmt.Errorf("invalid kicad.application_path: %w", err)
	}
	c.KiCad.ApplicationPath = app

	save, err := utils.AbsPath(strings.TrimSpace(c.Paths.DefaultSavePath))
	if err != nil {
		return fmt.Errorf("invalid paths.default_save_path: %w", err)
	}
	c.Paths.DefaultSavePath = save
	if c.Paths.DefaultSavePath == "" {
		c.Paths.DefaultSavePath = DefaultSavePath()
	}

	if c.Download.Timeout < time.Second {
		c.Download.Timeout = DefaultDownloadTimeout
	}
	if c.Download.MaxRetries < 0 {
		c.Download.MaxRetries = DefaultMaxRetries
	}

	if c.Git.Binary == "" {
		c.Git.Binary = DefaultGitBinary
	}
	c.Git.Backend = strings.ToLower(strings.TrimSpace(c.Git.Backend))
	switch c.Git.Backend {
	case "":
		c.Git.Backend = DefaultGitBackend
	case GitBackendAuto, GitBackendCLI, GitBackendBuiltin:
	default:
		return fmt.Errorf("invalid git.backend %q: must be %s, %s or %s",
			c.Git.Backend, GitBackendAuto, GitBackendCLI, GitBackendBuiltin)
	}
	if c.Git.Timeout < 0 {
		c.Git.Timeout = 0
	}

	if c.History.Directory == "" {
		c.History.Directory = HistoryDir()
	} else {
		c.History.Directory = utils.ExpandPath(c.History.Directory)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format != "json" && c.Logging.Format != "pretty" {
		c.Logging.Format = DefaultLogFormat
	}
	return nil
}

// RequireSetup reports domain.ErrNotConfigured until first-run setup has
// stored the CAD application path.
func (c *Config) RequireSetup() error {
	if c.KiCad.ApplicationPath == "" {
		return fmt.Errorf("%w: KiCad application path is not set, run 'kicad-web-opener setup'", domain.ErrNotConfigured)
	}
	return nil
}
