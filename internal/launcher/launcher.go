package launcher

import (
	"errors"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
	"github.com/kicad-web-opener/kicad-web-opener/internal/utils"
)

// ProcessLauncher starts the CAD application as a detached child process
type ProcessLauncher struct {
	logger *utils.Logger
}

// NewProcessLauncher creates a new ProcessLauncher
func NewProcessLauncher(logger *utils.Logger) *ProcessLauncher {
	return &ProcessLauncher{logger: logger}
}

// Launch starts applicationPath with projectFile as its only argument and
// returns once the process is running.
func (l *ProcessLauncher) Launch(projectFile, applicationPath string) error {
	if applicationPath == "" {
		return domain.NewLaunchError(applicationPath, projectFile, errors.New("no application configured"))
	}

	// The child runs in the project directory, so relative paths are
	// resolved against ours first.
	projectFile, err := filepath.Abs(projectFile)
	if err != nil {
		return domain.NewLaunchError(applicationPath, projectFile, err)
	}
	if strings.ContainsAny(applicationPath, `/\`) {
		if applicationPath, err = filepath.Abs(applicationPath); err != nil {
			return domain.NewLaunchError(applicationPath, projectFile, err)
		}
	}

	cmd := exec.Command(applicationPath, projectFile)
	cmd.Dir = filepath.Dir(projectFile)
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return domain.NewLaunchError(applicationPath, projectFile, err)
	}

	if l.logger != nil {
		l.logger.Info().
			Int("pid", cmd.Process.Pid).
			Str("application", applicationPath).
			Str("project", projectFile).
			Msg("Application started")
	}

	return cmd.Process.Release()
}
