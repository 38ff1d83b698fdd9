package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
	gitclient "github.com/kicad-web-opener/kicad-web-opener/internal/git"
	"github.com/kicad-web-opener/kicad-web-opener/internal/utils"
)

// BuiltinCloneFetcher clones with go-git, for machines without a git binary
type BuiltinCloneFetcher struct {
	client   gitclient.Client
	timeout  time.Duration
	logger   *utils.Logger
	progress io.Writer
}

// BuiltinCloneFetcherOptions contains options for creating a BuiltinCloneFetcher
type BuiltinCloneFetcherOptions struct {
	Client   gitclient.Client
	Timeout  time.Duration
	Logger   *utils.Logger
	Progress io.Writer
}

// NewBuiltinCloneFetcher creates a new BuiltinCloneFetcher
func NewBuiltinCloneFetcher(opts BuiltinCloneFetcherOptions) *BuiltinCloneFetcher {
	client := opts.Client
	if client == nil {
		client = gitclient.NewClient()
	}
	return &BuiltinCloneFetcher{
		client:   client,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
		progress: opts.Progress,
	}
}

func (f *BuiltinCloneFetcher) Name() string {
	return "builtin-clone"
}

// Fetch clones sourceURL into destDir
func (f *BuiltinCloneFetcher) Fetch(ctx context.Context, sourceURL, destDir string) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	if f.logger != nil {
		f.logger.WithURL(sourceURL).Debug().Str("dest", destDir).Msg("Cloning repository with go-git")
	}

	_, err := f.client.PlainCloneContext(ctx, destDir, false, gitclient.NewCloneOptions(sourceURL, f.progress))
	if err == nil {
		return nil
	}

	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		return domain.NewDestinationError(destDir, err)
	}
	return classifyCloneError(ctx, sourceURL, err)
}

func classifyCloneError(ctx context.Context, sourceURL string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.NewNetworkError(sourceURL, 0, fmt.Errorf("clone timed out: %w", err))
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domain.NewNetworkError(sourceURL, 0, fmt.Errorf("could not resolve host %s: %w", dnsErr.Name, err))
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.NewNetworkError(sourceURL, 0, err)
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return domain.NewDestinationError(pathErr.Path, err)
	}

	// go-git reports some transport failures only as text
	if strings.Contains(strings.ToLower(err.Error()), "no such host") {
		return domain.NewNetworkError(sourceURL, 0, err)
	}

	if errors.Is(err, transport.ErrAuthenticationRequired) || errors.Is(err, transport.ErrAuthorizationFailed) {
		return domain.NewNotFoundError(sourceURL, "Git: repository is private or requires authentication")
	}
	return domain.NewNotFoundError(sourceURL, "Git: "+err.Error())
}
