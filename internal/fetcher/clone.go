package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
	"github.com/kicad-web-opener/kicad-web-opener/internal/utils"
)

// DefaultGitBinary is the version-control client looked up on PATH
const DefaultGitBinary = "git"

// CommandRunner runs an external command, writing its combined output to output
type CommandRunner interface {
	Run(ctx context.Context, output io.Writer, name string, args ...string) error
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	// Env is appended to the inherited environment
	Env []string
}

// Run implements CommandRunner. Credential prompts are disabled so a
// private repository fails instead of waiting on a terminal.
func (r ExecRunner) Run(ctx context.Context, output io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = output
	cmd.Stderr = output
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	cmd.Env = append(cmd.Env, r.Env...)
	cmd.WaitDelay = 5 * time.Second
	return cmd.Run()
}

// CloneFetcher clones a repository with the git command line client and
// classifies failures from the text git prints.
type CloneFetcher struct {
	runner   CommandRunner
	binary   string
	timeout  time.Duration
	logger   *utils.Logger
	progress io.Writer
}

// CloneFetcherOptions contains options for creating a CloneFetcher
type CloneFetcherOptions struct {
	Runner CommandRunner
	Binary string
	// Timeout bounds the whole clone; zero means no bound
	Timeout  time.Duration
	Logger   *utils.Logger
	Progress io.Writer
}

// NewCloneFetcher creates a new CloneFetcher
func NewCloneFetcher(opts CloneFetcherOptions) *CloneFetcher {
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	binary := opts.Binary
	if binary == "" {
		binary = DefaultGitBinary
	}

	return &CloneFetcher{
		runner:   runner,
		binary:   binary,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
		progress: opts.Progress,
	}
}

func (f *CloneFetcher) Name() string {
	return "clone"
}

// Fetch runs `git clone <sourceURL> <destDir>` and blocks until it exits.
// A captured fatal line decides the outcome; the exit status is only
// consulted when git printed nothing fatal.
func (f *CloneFetcher) Fetch(ctx context.Context, sourceURL, destDir string) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	log := f.logger
	if log != nil {
		log = log.WithURL(sourceURL)
		log.Debug().
			Str("binary", f.binary).
			Str("dest", destDir).
			Msg("Cloning repository")
	}

	pr, pw := io.Pipe()
	done := make(chan error, 1)
	go func() {
		err := f.runner.Run(ctx, pw, f.binary, "clone", sourceURL, destDir)
		pw.Close()
		done <- err
	}()

	var output io.Reader = pr
	if f.progress != nil {
		bar := utils.NewBytesProgressBar(-1, utils.DescCloning, f.progress)
		defer bar.Finish()
		output = io.TeeReader(pr, bar)
	}

	result, scanErr := ScanOutput(output)
	runErr := <-done

	if log != nil {
		log.Debug().
			Int("lines", result.Lines).
			Str("failure", result.Failure).
			AnErr("exit", runErr).
			Msg("git clone finished")
	}

	return f.classify(ctx, sourceURL, destDir, result, runErr, scanErr)
}

func (f *CloneFetcher) classify(ctx context.Context, sourceURL, destDir string, result ScanResult, runErr, scanErr error) error {
	if result.Failed() {
		lower := strings.ToLower(result.Failure)
		for _, marker := range DestinationMarkers {
			if strings.Contains(lower, marker) {
				return domain.NewDestinationError(destDir, errors.New(result.Failure))
			}
		}
		return ClassifyFailure(sourceURL, result.Failure)
	}

	switch ctxErr := ctx.Err(); {
	case errors.Is(ctxErr, context.DeadlineExceeded):
		return domain.NewNetworkError(sourceURL, 0, fmt.Errorf("git clone timed out after %s", f.timeout))
	case ctxErr != nil:
		return ctxErr
	}

	if errors.Is(runErr, exec.ErrNotFound) {
		return fmt.Errorf("version control client %q not found on PATH: %w", f.binary, runErr)
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return domain.NewNotFoundError(sourceURL, fmt.Sprintf("Git: clone exited with status %d", exitErr.ExitCode()))
	}
	if runErr != nil {
		return fmt.Errorf("git clone %s: %w", sourceURL, runErr)
	}

	if scanErr != nil {
		return fmt.Errorf("read git output: %w", scanErr)
	}
	return nil
}
