package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kicad-web-opener/kicad-web-opener/internal/config"
	"github.com/kicad-web-opener/kicad-web-opener/internal/utils"
)

// SetupValues holds form values that map to Config.
// Numeric and duration fields are stored as strings for form editing.
type SetupValues struct {
	ApplicationPath string
	DefaultSavePath string

	GitBackend      string
	DownloadTimeout string
	MaxRetries      string

	// Register asks setup to register the URL scheme afterwards
	Register bool
}

// FromConfig converts a Config to SetupValues for form editing
func FromConfig(cfg *config.Config) *SetupValues {
	return &SetupValues{
		ApplicationPath: cfg.KiCad.ApplicationPath,
		DefaultSavePath: cfg.Paths.DefaultSavePath,
		GitBackend:      cfg.Git.Backend,
		DownloadTimeout: formatDuration(cfg.Download.Timeout),
		MaxRetries:      strconv.Itoa(cfg.Download.MaxRetries),
		Register:        true,
	}
}

// ApplyTo writes the form values into a copy of cfg and validates it
func (v *SetupValues) ApplyTo(cfg *config.Config) (*config.Config, error) {
	timeout, err := parseDurationOrDefault(strings.TrimSpace(v.DownloadTimeout), config.DefaultDownloadTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid download timeout: %w", err)
	}

	retries, err := parseIntOrDefault(strings.TrimSpace(v.MaxRetries), config.DefaultMaxRetries)
	if err != nil {
		return nil, fmt.Errorf("invalid max retries: %w", err)
	}

	out := *cfg
	out.KiCad.ApplicationPath = utils.ExpandPath(strings.TrimSpace(v.ApplicationPath))
	out.Paths.DefaultSavePath = utils.ExpandPath(strings.TrimSpace(v.DefaultSavePath))
	out.Git.Backend = v.GitBackend
	out.Download.Timeout = timeout
	out.Download.MaxRetries = retries

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func parseDurationOrDefault(s string, defaultVal time.Duration) (time.Duration, error) {
	if s == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(s)
}

func parseIntOrDefault(s string, defaultVal int) (int, error) {
	if s == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(s)
}
