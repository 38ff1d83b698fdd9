package app

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"

	"github.com/kicad-web-opener/kicad-web-opener/internal/config"
	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
	"github.com/kicad-web-opener/kicad-web-opener/internal/fetcher"
	"github.com/kicad-web-opener/kicad-web-opener/internal/history"
	"github.com/kicad-web-opener/kicad-web-opener/internal/launcher"
	"github.com/kicad-web-opener/kicad-web-opener/internal/registration"
	"github.com/kicad-web-opener/kicad-web-opener/internal/utils"
	"github.com/kicad-web-opener/kicad-web-opener/pkg/version"
)

// BuildOptions contains the process-level inputs to Build
type BuildOptions struct {
	Logger *utils.Logger
	// Progress receives download and clone progress bars; nil disables them
	Progress io.Writer
	// LookPath resolves the git binary; defaults to exec.LookPath
	LookPath func(string) (string, error)
	// HistoryInMemory keeps history out of the filesystem
	HistoryInMemory bool
}

// Build assembles an Orchestrator from the configuration
func Build(cfg *config.Config, opts BuildOptions) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	archive, err := newArchiveFetcher(cfg, logger, opts.Progress)
	if err != nil {
		return nil, err
	}

	repository := newRepositoryFetcher(cfg, logger, opts)

	var store domain.History
	if cfg.History.Enabled {
		s, err := history.Open(history.Options{
			Directory: utils.ExpandPath(cfg.History.Directory),
			InMemory:  opts.HistoryInMemory,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("History disabled")
		} else {
			store = s
		}
	}

	registrar, err := registration.ForPlatform(logger)
	if err != nil {
		if !errors.Is(err, domain.ErrUnsupportedPlatform) {
			return nil, err
		}
		registrar = nil
	}

	return NewOrchestrator(OrchestratorOptions{
		Archive:         archive,
		Repository:      repository,
		Launcher:        launcher.NewProcessLauncher(logger),
		History:         store,
		Registrar:       registrar,
		ApplicationPath: utils.ExpandPath(cfg.KiCad.ApplicationPath),
		Logger:          logger,
	})
}

func newArchiveFetcher(cfg *config.Config, logger *utils.Logger, progress io.Writer) (*fetcher.ArchiveFetcher, error) {
	var client *http.Client
	if cfg.Download.BrowserTLS {
		c, err := fetcher.NewBrowserHTTPClient(cfg.Download.Timeout, cfg.Download.Proxy)
		if err != nil {
			return nil, err
		}
		client = c
	} else {
		client = fetcher.NewHTTPClient(cfg.Download.Timeout)
	}

	opts := fetcher.DefaultRetrierOptions()
	opts.MaxRetries = cfg.Download.MaxRetries

	return fetcher.NewArchiveFetcher(fetcher.ArchiveFetcherOptions{
		HTTPClient: client,
		Retrier:    fetcher.NewRetrier(opts),
		Logger:     logger,
		UserAgent:  userAgent(cfg),
		Progress:   progress,
	}), nil
}

func newRepositoryFetcher(cfg *config.Config, logger *utils.Logger, opts BuildOptions) domain.ProjectFetcher {
	binary := cfg.Git.Binary
	if binary == "" {
		binary = fetcher.DefaultGitBinary
	}

	backend := cfg.Git.Backend
	if backend == "" || backend == config.GitBackendAuto {
		backend = SelectGitBackend(binary, opts.LookPath)
		logger.Debug().Str("backend", backend).Msg("Selected git backend")
	}

	if backend == config.GitBackendBuiltin {
		return fetcher.NewBuiltinCloneFetcher(fetcher.BuiltinCloneFetcherOptions{
			Timeout:  cfg.Git.Timeout,
			Logger:   logger,
			Progress: opts.Progress,
		})
	}

	return fetcher.NewCloneFetcher(fetcher.CloneFetcherOptions{
		Runner:   fetcher.ExecRunner{},
		Binary:   binary,
		Timeout:  cfg.Git.Timeout,
		Logger:   logger,
		Progress: opts.Progress,
	})
}

// SelectGitBackend picks the git CLI when binary is on PATH and the
// built-in client otherwise.
func SelectGitBackend(binary string, lookPath func(string) (string, error)) string {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath(binary); err != nil {
		return config.GitBackendBuiltin
	}
	return config.GitBackendCLI
}

func userAgent(cfg *config.Config) string {
	ua := cfg.Download.UserAgent
	if ua == "" || ua == config.DefaultUserAgent {
		return version.UserAgent()
	}
	return ua
}
