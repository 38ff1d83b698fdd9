package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/kicad-web-opener/kicad-web-opener/internal/config"
)

// ErrSetupAborted is returned when the user leaves the setup form
var ErrSetupAborted = errors.New("setup aborted")

// SetupOptions configures RunSetup
type SetupOptions struct {
	Config     *config.Config
	SaveFunc   func(*config.Config) error
	Accessible bool

	// run replaces form.Run in tests
	run func(*huh.Form) error
}

// SetupResult is what a completed setup produced
type SetupResult struct {
	Config   *config.Config
	Register bool
}

// RunSetup shows the setup form, then saves the resulting configuration
func RunSetup(opts SetupOptions) (*SetupResult, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	values := FromConfig(cfg)
	form := CreateSetupForm(values, opts.Accessible)

	run := opts.run
	if run == nil {
		run = func(f *huh.Form) error { return f.Run() }
	}
	if err := run(form); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrSetupAborted
		}
		return nil, fmt.Errorf("setup form: %w", err)
	}

	updated, err := values.ApplyTo(cfg)
	if err != nil {
		return nil, err
	}

	if opts.SaveFunc != nil {
		if err := opts.SaveFunc(updated); err != nil {
			return nil, fmt.Errorf("save config: %w", err)
		}
	}

	return &SetupResult{Config: updated, Register: values.Register}, nil
}
