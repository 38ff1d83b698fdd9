package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
	"github.com/kicad-web-opener/kicad-web-opener/internal/launcher"
	"github.com/kicad-web-opener/kicad-web-opener/internal/utils"
)

// Orchestrator coordinates fetching a project, launching the CAD
// application on it and recording it in the history.
type Orchestrator struct {
	archive         domain.ProjectFetcher
	repository      domain.ProjectFetcher
	launcher        domain.Launcher
	history         domain.History
	registrar       domain.Registrar
	applicationPath string
	logger          *utils.Logger
}

// OrchestratorOptions contains options for creating an orchestrator
type OrchestratorOptions struct {
	Archive    domain.ProjectFetcher
	Repository domain.ProjectFetcher
	Launcher   domain.Launcher
	// History is optional
	History domain.History
	// Registrar is nil on platforms without scheme registration
	Registrar       domain.Registrar
	ApplicationPath string
	Logger          *utils.Logger
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	if opts.Archive == nil || opts.Repository == nil {
		return nil, fmt.Errorf("archive and repository fetchers are required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Orchestrator{
		archive:         opts.Archive,
		repository:      opts.Repository,
		launcher:        opts.Launcher,
		history:         opts.History,
		registrar:       opts.Registrar,
		applicationPath: opts.ApplicationPath,
		logger:          logger,
	}, nil
}

// Fetch populates req.DestinationPath with the referenced project and
// returns the project file found at its top level.
func (o *Orchestrator) Fetch(ctx context.Context, req domain.FetchRequest) (*domain.FetchOutcome, error) {
	ref := req.Reference
	if ref.IsZero() {
		return nil, domain.NewFormatError("", "empty project reference")
	}
	dest, err := utils.AbsPath(req.DestinationPath)
	if err != nil {
		return nil, domain.NewDestinationError(req.DestinationPath, err)
	}
	startTime := time.Now()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, domain.NewDestinationError(dest, err)
	}

	fetcher := o.fetcherFor(ref.Type())
	log := o.logger.WithComponent("orchestrator").WithProject(ref)
	log.Info().
		Str("dest", dest).
		Str("method", fetcher.Name()).
		Msg("Fetching project")

	if err := fetcher.Fetch(ctx, ref.SourceURL(), dest); err != nil {
		if ctx.Err() != nil {
			log.Warn().Msg("Fetch cancelled")
			return nil, ctx.Err()
		}
		return nil, err
	}

	projectFile, err := launcher.FindProjectFile(dest)
	if err != nil {
		if errors.Is(err, launcher.ErrNoProjectFile) {
			return nil, domain.NewInvalidProjectError(ref.SourceURL(), dest)
		}
		return nil, domain.NewDestinationError(dest, err)
	}

	outcome := &domain.FetchOutcome{
		ProjectFile: projectFile,
		Destination: dest,
		Method:      fetcher.Name(),
		Duration:    time.Since(startTime),
	}

	log.Info().
		Str("project_file", projectFile).
		Dur("duration", outcome.Duration).
		Msg("Project fetched")

	return outcome, nil
}

// Open fetches the project and, unless launch is false, starts the CAD
// application on it. Successful opens are recorded in the history; a
// history failure is logged and does not fail the open.
func (o *Orchestrator) Open(ctx context.Context, req domain.FetchRequest, launch bool) (*domain.FetchOutcome, error) {
	outcome, err := o.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	if launch {
		if err := o.Launch(outcome.ProjectFile); err != nil {
			return outcome, err
		}
	}

	o.record(ctx, req, outcome)
	return outcome, nil
}

// Launch starts the configured CAD application on projectFile
func (o *Orchestrator) Launch(projectFile string) error {
	if o.launcher == nil {
		return domain.NewLaunchError(o.applicationPath, projectFile, errors.New("no launcher configured"))
	}
	return o.launcher.Launch(projectFile, o.applicationPath)
}

// Register associates the kicad-project scheme with executablePath
func (o *Orchestrator) Register(executablePath string) error {
	if o.registrar == nil {
		return domain.ErrUnsupportedPlatform
	}
	if err := o.registrar.Register(executablePath); err != nil {
		return err
	}
	o.logger.Info().
		Str("executable", executablePath).
		Str("location", o.registrar.Location()).
		Msg("Registered URL scheme")
	return nil
}

// RegistrationLocation describes where Register stores the association,
// or returns "" when this platform has no registrar.
func (o *Orchestrator) RegistrationLocation() string {
	if o.registrar == nil {
		return ""
	}
	return o.registrar.Location()
}

// Recent returns up to limit history entries, newest first. It returns
// nothing when history is disabled.
func (o *Orchestrator) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if o.history == nil {
		return nil, nil
	}
	return o.history.Recent(ctx, limit)
}

// ClearHistory removes every history entry
func (o *Orchestrator) ClearHistory() error {
	if o.history == nil {
		return nil
	}
	return o.history.Clear()
}

// Close releases all resources held by the orchestrator
func (o *Orchestrator) Close() error {
	if o.history != nil {
		return o.history.Close()
	}
	return nil
}

func (o *Orchestrator) fetcherFor(t domain.ProjectType) domain.ProjectFetcher {
	if t == domain.ProjectTypeArchive {
		return o.archive
	}
	return o.repository
}

func (o *Orchestrator) record(ctx context.Context, req domain.FetchRequest, outcome *domain.FetchOutcome) {
	if o.history == nil {
		return
	}

	ref := req.Reference
	err := o.history.Record(ctx, domain.HistoryEntry{
		Name:        ref.Name(),
		Type:        ref.Type(),
		SourceURL:   ref.SourceURL(),
		Destination: outcome.Destination,
		ProjectFile: outcome.ProjectFile,
	})
	if err != nil {
		o.logger.Warn().Err(err).Msg("Failed to record history")
	}
}
