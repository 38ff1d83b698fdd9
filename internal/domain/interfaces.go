package domain

import (
	"context"
	"time"
)

// ProjectFetcher retrieves a remote project into a local directory
type ProjectFetcher interface {
	// Name returns the strategy name
	Name() string
	// Fetch populates destDir with the content at sourceURL
	Fetch(ctx context.Context, sourceURL, destDir string) error
}

// Launcher starts the CAD application on a project file
type Launcher interface {
	// Launch starts applicationPath with projectFile as its only argument and does not wait
	Launch(projectFile, applicationPath string) error
}

// History records successfully opened projects
type History interface {
	// Record stores an entry
	Record(ctx context.Context, entry HistoryEntry) error
	// Recent returns at most limit entries, newest first
	Recent(ctx context.Context, limit int) ([]HistoryEntry, error)
	// Clear removes every entry
	Clear() error
	// Close releases resources
	Close() error
}

// HistoryEntry describes one opened project
type HistoryEntry struct {
	Name        string      `json:"name"`
	Type        ProjectType `json:"type"`
	SourceURL   string      `json:"source_url"`
	Destination string      `json:"destination"`
	ProjectFile string      `json:"project_file"`
	OpenedAt    time.Time   `json:"opened_at"`
}

// Registrar associates the kicad-project URL scheme with an executable.
// It exists only on platforms that support scheme registration.
type Registrar interface {
	// Register points the scheme handler at executablePath
	Register(executablePath string) error
	// Location describes where the association is stored
	Location() string
}
