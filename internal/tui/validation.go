package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/kicad-web-opener/kicad-web-opener/internal/utils"
)

// Validation error messages
var (
	ErrRequired      = errors.New("this field is required")
	ErrInvalidNumber = errors.New("must be a valid number")
	ErrInvalidRange  = errors.New("value out of valid range")
	ErrNotExecutable = errors.New("not an executable file")
	ErrNotWritable   = errors.New("directory is not writable")
)

// ValidateRequired ensures a string value is not empty
func ValidateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrRequired
	}
	return nil
}

// ValidateApplication checks that s names an existing, runnable file
func ValidateApplication(s string) error {
	if err := ValidateRequired(s); err != nil {
		return err
	}
	path := utils.ExpandPath(strings.TrimSpace(s))

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot find %s", path)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory: %w", path, ErrNotExecutable)
	}
	if !isExecutable(path, info) {
		return fmt.Errorf("%s: %w", path, ErrNotExecutable)
	}
	return nil
}

// ValidateSaveDir accepts a writable directory or a path whose nearest
// existing parent is a writable directory, so setup can create it later.
func ValidateSaveDir(s string) error {
	if err := ValidateRequired(s); err != nil {
		return err
	}
	path := filepath.Clean(utils.ExpandPath(strings.TrimSpace(s)))

	for p := path; ; p = filepath.Dir(p) {
		if utils.DirExists(p) {
			if !utils.IsWritableDir(p) {
				return fmt.Errorf("%s: %w", p, ErrNotWritable)
			}
			return nil
		}
		_, err := os.Stat(p)
		if err == nil {
			return fmt.Errorf("%s is not a directory", p)
		}
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("cannot use %s: %w", p, err)
		}
		if parent := filepath.Dir(p); parent == p {
			return fmt.Errorf("cannot use %s", path)
		}
	}
}

// ValidateDuration validates that a string can be parsed as a time.Duration
func ValidateDuration(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil // Empty is valid (will use default)
	}
	_, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration format (use: 30s, 5m, 1h): %w", err)
	}
	return nil
}

// ValidateIntRange validates that a string represents an integer within a range
func ValidateIntRange(min, max int) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return ErrInvalidNumber
		}
		if n < min || n > max {
			return fmt.Errorf("%w: must be between %d and %d", ErrInvalidRange, min, max)
		}
		return nil
	}
}

var isWindows = runtime.GOOS == "windows"

func isExecutable(path string, info os.FileInfo) bool {
	if isWindows {
		ext := strings.ToLower(filepath.Ext(path))
		return ext == ".exe" || ext == ".bat" || ext == ".cmd"
	}
	return info.Mode().Perm()&0o111 != 0
}
