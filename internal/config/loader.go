package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load loads configuration from file, environment, and defaults.
// An empty configFile searches ~/.kicad-web-opener and the working directory.
func Load(configFile string) (*Config, error) {
	cfg, _, err := LoadWithViper(configFile)
	return cfg, err
}

// LoadWithViper loads configuration and returns the viper instance
// This is useful for merging CLI flags later
func LoadWithViper(configFile string) (*Config, *viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configFile != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	// Environment variables (KICAD_WEB_OPENER_*)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return &cfg, v, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("kicad.application_path", "")
	v.SetDefault("paths.default_save_path", DefaultSavePath())

	v.SetDefault("download.timeout", DefaultDownloadTimeout)
	v.SetDefault("download.max_retries", DefaultMaxRetries)
	v.SetDefault("download.user_agent", DefaultUserAgent)
	v.SetDefault("download.browser_tls", false)
	v.SetDefault("download.proxy", "")

	v.SetDefault("git.binary", DefaultGitBinary)
	v.SetDefault("git.backend", DefaultGitBackend)
	v.SetDefault("git.timeout", 0)

	v.SetDefault("history.enabled", DefaultHistoryEnabled)
	v.SetDefault("history.directory", HistoryDir())

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}

// Save writes cfg as YAML to path, or to ConfigFilePath when path is empty.
// Durations are written in their string form so the file stays editable.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigFilePath()
	}

	doc := map[string]any{
		"kicad": map[string]any{
			"application_path": cfg.KiCad.ApplicationPath,
		},
		"paths": map[string]any{
			"default_save_path": cfg.Paths.DefaultSavePath,
		},
		"download": map[string]any{
			"timeout":     cfg.Download.Timeout.String(),
			"max_retries": cfg.Download.MaxRetries,
			"user_agent":  cfg.Download.UserAgent,
			"browser_tls": cfg.Download.BrowserTLS,
			"proxy":       cfg.Download.Proxy,
		},
		"git": map[string]any{
			"binary":  cfg.Git.Binary,
			"backend": cfg.Git.Backend,
			"timeout": cfg.Git.Timeout.String(),
		},
		"history": map[string]any{
			"enabled":   cfg.History.Enabled,
			"directory": cfg.History.Directory,
		},
		"logging": map[string]any{
			"level":  cfg.Logging.Level,
			"format": cfg.Logging.Format,
		},
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir(), 0755)
}
