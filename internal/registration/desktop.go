package registration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
	"github.com/kicad-web-opener/kicad-web-opener/internal/utils"
)

// Ensure DesktopRegistrar implements domain.Registrar
var _ domain.Registrar = (*DesktopRegistrar)(nil)

// CommandFunc runs an external command to completion
type CommandFunc func(ctx context.Context, name string, args ...string) error

// DesktopRegistrar installs a freedesktop.org desktop entry and makes it
// the default handler for the scheme via xdg-mime.
type DesktopRegistrar struct {
	applicationsDir string
	run             CommandFunc
	logger          *utils.Logger
}

// DesktopRegistrarOptions contains options for creating a DesktopRegistrar
type DesktopRegistrarOptions struct {
	// DataHome overrides $XDG_DATA_HOME
	DataHome string
	Run      CommandFunc
	Logger   *utils.Logger
}

// NewDesktopRegistrar creates a new DesktopRegistrar
func NewDesktopRegistrar(opts DesktopRegistrarOptions) (*DesktopRegistrar, error) {
	dataHome := opts.DataHome
	if dataHome == "" {
		dataHome = os.Getenv("XDG_DATA_HOME")
	}
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve XDG data directory: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	run := opts.Run
	if run == nil {
		run = runCommand
	}

	return &DesktopRegistrar{
		applicationsDir: filepath.Join(dataHome, "applications"),
		run:             run,
		logger:          opts.Logger,
	}, nil
}

// Location returns the path of the desktop entry
func (r *DesktopRegistrar) Location() string {
	return filepath.Join(r.applicationsDir, DesktopFileName)
}

// Register writes the desktop entry and sets it as the scheme's default handler
func (r *DesktopRegistrar) Register(executablePath string) error {
	if err := os.MkdirAll(r.applicationsDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", r.applicationsDir, err)
	}

	if err := os.WriteFile(r.Location(), []byte(DesktopEntry(executablePath)), 0o644); err != nil {
		return fmt.Errorf("write desktop entry: %w", err)
	}

	if err := r.run(context.Background(), "xdg-mime", "default", DesktopFileName, MimeType()); err != nil {
		return fmt.Errorf("set default handler with xdg-mime: %w", err)
	}

	if r.logger != nil {
		r.logger.Info().
			Str("entry", r.Location()).
			Str("mime", MimeType()).
			Msg("Scheme handler registered")
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil && len(out) > 0 {
		return fmt.Errorf("%w: %s", err, out)
	}
	return err
}
