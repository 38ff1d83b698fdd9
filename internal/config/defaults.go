package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// Download defaults
	DefaultDownloadTimeout = 5 * time.Minute
	DefaultMaxRetries      = 3
	DefaultUserAgent       = "kicad-web-opener"

	// Git defaults
	DefaultGitBinary  = "git"
	DefaultGitBackend = GitBackendAuto

	// History defaults
	DefaultHistoryEnabled = true

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"

	// EnvPrefix prefixes environment overrides, e.g. KICAD_WEB_OPENER_GIT_BINARY
	EnvPrefix = "KICAD_WEB_OPENER"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kicad-web-opener"
	}
	return filepath.Join(home, ".kicad-web-opener")
}

// HistoryDir returns the history database directory
func HistoryDir() string {
	return filepath.Join(ConfigDir(), "history")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultSavePath returns the directory projects are fetched under when
// none is configured.
func DefaultSavePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "kicad-projects"
	}
	return filepath.Join(home, "kicad-projects")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			DefaultSavePath: DefaultSavePath(),
		},
		Download: DownloadConfig{
			Timeout:    DefaultDownloadTimeout,
			MaxRetries: DefaultMaxRetries,
			UserAgent:  DefaultUserAgent,
		},
		Git: GitConfig{
			Binary:  DefaultGitBinary,
			Backend: DefaultGitBackend,
		},
		History: HistoryConfig{
			Enabled:   DefaultHistoryEnabled,
			Directory: HistoryDir(),
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
