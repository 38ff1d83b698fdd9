package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/schollz/progressbar/v3"

	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
	"github.com/kicad-web-opener/kicad-web-opener/internal/utils"
)

// ArchiveFetcher downloads a zip archive next to the destination and extracts it
type ArchiveFetcher struct {
	httpClient *http.Client
	retrier    *Retrier
	logger     *utils.Logger
	userAgent  string
	progress   io.Writer
}

// ArchiveFetcherOptions contains options for creating an ArchiveFetcher
type ArchiveFetcherOptions struct {
	HTTPClient *http.Client
	Retrier    *Retrier
	Logger     *utils.Logger
	UserAgent  string
	// Progress receives the download and extraction bars; nil disables them
	Progress io.Writer
}

// NewArchiveFetcher creates a new ArchiveFetcher
func NewArchiveFetcher(opts ArchiveFetcherOptions) *ArchiveFetcher {
	client := opts.HTTPClient
	if client == nil {
		client = NewHTTPClient(0)
	}
	retrier := opts.Retrier
	if retrier == nil {
		retrier = NewRetrier(DefaultRetrierOptions())
	}

	return &ArchiveFetcher{
		httpClient: client,
		retrier:    retrier,
		logger:     opts.Logger,
		userAgent:  opts.UserAgent,
		progress:   opts.Progress,
	}
}

func (f *ArchiveFetcher) Name() string {
	return "archive"
}

// ArchivePath returns the temporary archive location for destDir: a
// sibling file named <destDir>.zip.
func ArchivePath(destDir string) string {
	return filepath.Clean(destDir) + ".zip"
}

// Fetch downloads sourceURL to <destDir>.zip, extracts it into destDir and
// removes the archive.
func (f *ArchiveFetcher) Fetch(ctx context.Context, sourceURL, destDir string) error {
	archivePath := ArchivePath(destDir)

	log := f.logger
	if log != nil {
		log = log.WithURL(sourceURL)
		log.Debug().Str("archive", archivePath).Msg("Downloading archive")
	}

	err := f.retrier.Retry(ctx, func() error {
		return f.Download(ctx, sourceURL, archivePath)
	})
	if err != nil {
		return err
	}

	if log != nil {
		log.Debug().Str("archive", archivePath).Str("dest", destDir).Msg("Extracting archive")
	}

	if err := f.Extract(archivePath, destDir); err != nil {
		return err
	}

	if err := os.Remove(archivePath); err != nil {
		return domain.NewDestinationError(archivePath, fmt.Errorf("remove downloaded archive: %w", err))
	}

	return nil
}

// Download writes the resource at sourceURL to archivePath. On failure the
// partial file is removed so a retry starts clean.
func (f *ArchiveFetcher) Download(ctx context.Context, sourceURL, archivePath string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return domain.NewNetworkError(sourceURL, 0, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return domain.NewNetworkError(sourceURL, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NewNetworkError(sourceURL, resp.StatusCode, errors.New(http.StatusText(resp.StatusCode)))
	}

	file, err := os.Create(archivePath)
	if err != nil {
		return domain.NewDestinationError(archivePath, err)
	}
	defer func() {
		closeErr := file.Close()
		if err == nil && closeErr != nil {
			err = domain.NewDestinationError(archivePath, closeErr)
		}
		if err != nil {
			_ = os.Remove(archivePath)
		}
	}()

	var w io.Writer = file
	if f.progress != nil {
		bar := utils.NewBytesProgressBar(resp.ContentLength, utils.DescDownloading, f.progress)
		defer bar.Finish()
		w = io.MultiWriter(file, bar)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return domain.NewNetworkError(sourceURL, 0, fmt.Errorf("download interrupted: %w", err))
	}

	return nil
}

// Extract unpacks the zip at archivePath into destDir, keeping the
// archive's directory layout.
func (f *ArchiveFetcher) Extract(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return domain.NewExtractError(archivePath, err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return domain.NewDestinationError(destDir, err)
	}

	var bar *progressbar.ProgressBar
	if f.progress != nil {
		bar = utils.NewProgressBar(len(r.File), utils.DescExtracting, f.progress)
		defer bar.Finish()
	}

	for _, zf := range r.File {
		if err := f.extractFile(zf, destDir); err != nil {
			return domain.NewExtractError(archivePath, err)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	return nil
}

func (f *ArchiveFetcher) extractFile(zf *zip.File, destDir string) error {
	targetPath, err := safeJoin(destDir, zf.Name)
	if err != nil {
		return err
	}

	mode := zf.Mode()
	switch {
	case mode.IsDir():
		return os.MkdirAll(targetPath, 0o755)
	case mode&os.ModeSymlink != 0:
		if f.logger != nil {
			f.logger.Debug().Str("entry", zf.Name).Msg("Skipping symlink in archive")
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}

	src, err := zf.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", zf.Name, err)
	}
	defer src.Close()

	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}

	dst, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create file failed: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy %s: %w", zf.Name, err)
	}
	return dst.Close()
}

// safeJoin resolves an archive entry name under destDir and rejects entries
// that would escape it.
func safeJoin(destDir, name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("illegal absolute path in archive: %s", name)
	}

	target := filepath.Join(destDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(filepath.Clean(destDir), target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("illegal path in archive: %s", name)
	}
	return target, nil
}
