package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProjectFileExt is the extension of the KiCad project descriptor
const ProjectFileExt = ".kicad_pro"

// ProjectType is the declared retrieval strategy of a project
type ProjectType string

const (
	ProjectTypeArchive    ProjectType = "zip"
	ProjectTypeRepository ProjectType = "git"
)

// ParseProjectType maps a scheme type token (case-insensitive) to a ProjectType
func ParseProjectType(token string) (ProjectType, bool) {
	switch strings.ToLower(token) {
	case string(ProjectTypeArchive):
		return ProjectTypeArchive, true
	case string(ProjectTypeRepository):
		return ProjectTypeRepository, true
	default:
		return "", false
	}
}

// String returns the scheme token of the type
func (t ProjectType) String() string {
	return string(t)
}

// ProjectReference is an immutable reference to a remote project.
// The zero value is not valid; use NewProjectReference.
type ProjectReference struct {
	projectType ProjectType
	sourceURL   string
	name        string
}

// NewProjectReference validates and builds a ProjectReference.
// All three fields must be non-empty.
func NewProjectReference(projectType ProjectType, sourceURL, name string) (ProjectReference, error) {
	switch {
	case projectType != ProjectTypeArchive && projectType != ProjectTypeRepository:
		return ProjectReference{}, NewFormatError(sourceURL, fmt.Sprintf("unsupported project type %q", projectType))
	case strings.TrimSpace(sourceURL) == "":
		return ProjectReference{}, NewFormatError(sourceURL, "empty source URL")
	case strings.TrimSpace(name) == "":
		return ProjectReference{}, NewFormatError(sourceURL, "cannot derive a project name")
	}

	return ProjectReference{
		projectType: projectType,
		sourceURL:   sourceURL,
		name:        name,
	}, nil
}

// Type returns the retrieval strategy
func (r ProjectReference) Type() ProjectType { return r.projectType }

// SourceURL returns the absolute URL to fetch from
func (r ProjectReference) SourceURL() string { return r.sourceURL }

// Name returns the derived project name
func (r ProjectReference) Name() string { return r.name }

// IsZero reports whether r was not built by NewProjectReference
func (r ProjectReference) IsZero() bool { return r.sourceURL == "" }

func (r ProjectReference) String() string {
	return fmt.Sprintf("%s project %q from %s", r.projectType, r.name, r.sourceURL)
}

// FetchRequest pairs a reference with the local directory to populate
type FetchRequest struct {
	Reference       ProjectReference
	DestinationPath string
}

// FetchOutcome is the result of a successful fetch
type FetchOutcome struct {
	ProjectFile string
	Destination string
	Method      string
	Duration    time.Duration
}
