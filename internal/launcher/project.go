package launcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
)

// ErrNoProjectFile is returned when a directory holds no project file
var ErrNoProjectFile = errors.New("no project file")

// FindProjectFile returns the path of the project file among dir's direct
// children. Names are compared case-insensitively; with several candidates
// the lexicographically first name wins.
func FindProjectFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if IsProjectFile(entry.Name()) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	return "", ErrNoProjectFile
}

// IsProjectFile reports whether name carries the project file extension
func IsProjectFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), domain.ProjectFileExt)
}
