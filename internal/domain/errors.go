package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per failure kind. Typed errors below match them with errors.Is.
var (
	// ErrFormat indicates a URL that does not follow the kicad-project scheme
	ErrFormat = errors.New("invalid kicad-project URL")

	// ErrDestination indicates the destination directory cannot be created or accessed
	ErrDestination = errors.New("destination not accessible")

	// ErrNetwork indicates a download or host resolution failure
	ErrNetwork = errors.New("network error")

	// ErrExtract indicates a downloaded archive that cannot be unpacked
	ErrExtract = errors.New("extraction failed")

	// ErrNotFound indicates the remote repository or source was not found
	ErrNotFound = errors.New("source not found")

	// ErrInvalidProject indicates the fetched directory contains no project file
	ErrInvalidProject = errors.New("invalid project")

	// ErrLaunch indicates the CAD application could not be started
	ErrLaunch = errors.New("launch failed")

	// ErrUnsupportedPlatform indicates a capability missing on this OS
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrNotConfigured indicates first-run setup has not been completed
	ErrNotConfigured = errors.New("not configured")
)

// ErrorKind names a class of failure in the error taxonomy
type ErrorKind string

const (
	KindFormat         ErrorKind = "format"
	KindDestination    ErrorKind = "destination"
	KindNetwork        ErrorKind = "network"
	KindExtract        ErrorKind = "extract"
	KindNotFound       ErrorKind = "not_found"
	KindInvalidProject ErrorKind = "invalid_project"
	KindLaunch         ErrorKind = "launch"
	KindUnsupported    ErrorKind = "unsupported"
	KindNotConfigured  ErrorKind = "not_configured"
	KindUnknown        ErrorKind = "unknown"
)

var kindSentinels = []struct {
	kind     ErrorKind
	sentinel error
	title    string
}{
	{KindFormat, ErrFormat, "Invalid link"},
	{KindDestination, ErrDestination, "Cannot use destination"},
	{KindNetwork, ErrNetwork, "Download failed"},
	{KindExtract, ErrExtract, "Cannot unpack archive"},
	{KindNotFound, ErrNotFound, "Project not found"},
	{KindInvalidProject, ErrInvalidProject, "Not a KiCad project"},
	{KindLaunch, ErrLaunch, "Cannot start KiCad"},
	{KindUnsupported, ErrUnsupportedPlatform, "Unsupported platform"},
	{KindNotConfigured, ErrNotConfigured, "Setup required"},
}

// KindOf returns the taxonomy kind of err, or KindUnknown
func KindOf(err error) ErrorKind {
	for _, k := range kindSentinels {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindUnknown
}

// UserMessage renders err as the text shown to the user
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kindSentinels {
		if errors.Is(err, k.sentinel) {
			return k.title + ": " + err.Error()
		}
	}
	return err.Error()
}

// FormatError represents a URL that failed the scheme grammar
type FormatError struct {
	Raw    string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s is not a valid kicad-project URL: %s", e.Raw, e.Reason)
	}
	return fmt.Sprintf("%s is not a valid kicad-project URL", e.Raw)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// NewFormatError creates a new FormatError
func NewFormatError(raw, reason string) *FormatError {
	return &FormatError{Raw: raw, Reason: reason}
}

// DestinationError represents a failure to create or access the destination directory
type DestinationError struct {
	Path string
	Err  error
}

func (e *DestinationError) Error() string {
	return fmt.Sprintf("cannot create destination %s: %v", e.Path, e.Err)
}

func (e *DestinationError) Unwrap() error {
	return e.Err
}

func (e *DestinationError) Is(target error) bool {
	return target == ErrDestination
}

// NewDestinationError creates a new DestinationError
func NewDestinationError(path string, err error) *DestinationError {
	return &DestinationError{Path: path, Err: err}
}

// NetworkError represents a download or connectivity failure
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("could not download %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("could not download %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(url string, statusCode int, err error) *NetworkError {
	return &NetworkError{URL: url, StatusCode: statusCode, Err: err}
}

// NotFoundError represents a repository or source that does not exist or is not accessible
type NotFoundError struct {
	URL     string
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.URL, e.Message)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(url, message string) *NotFoundError {
	return &NotFoundError{URL: url, Message: message}
}

// InvalidProjectError represents a fetched source without a project file
type InvalidProjectError struct {
	URL string
	Dir string
}

func (e *InvalidProjectError) Error() string {
	return fmt.Sprintf("%s is not a valid KiCad project: no *%s file in %s", e.URL, ProjectFileExt, e.Dir)
}

func (e *InvalidProjectError) Is(target error) bool {
	return target == ErrInvalidProject
}

// NewInvalidProjectError creates a new InvalidProjectError
func NewInvalidProjectError(url, dir string) *InvalidProjectError {
	return &InvalidProjectError{URL: url, Dir: dir}
}

// LaunchError represents a failure to start the CAD application
type LaunchError struct {
	Application string
	ProjectFile string
	Err         error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("could not start %s with %s: %v", e.Application, e.ProjectFile, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

func (e *LaunchError) Is(target error) bool {
	return target == ErrLaunch
}

// NewLaunchError creates a new LaunchError
func NewLaunchError(application, projectFile string, err error) *LaunchError {
	return &LaunchError{Application: application, ProjectFile: projectFile, Err: err}
}

// ExtractError represents a downloaded archive that could not be unpacked
type ExtractError struct {
	Archive string
	Err     error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("cannot extract %s: %v", e.Archive, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

func (e *ExtractError) Is(target error) bool {
	return target == ErrExtract
}

// NewExtractError creates a new ExtractError
func NewExtractError(archive string, err error) *ExtractError {
	return &ExtractError{Archive: archive, Err: err}
}
