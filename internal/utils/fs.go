package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxFilenameLength is the maximum length for a directory or file name
const MaxFilenameLength = 200

// Windows reserved names
var windowsReserved = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// invalidCharsRegex matches characters not allowed in names on common filesystems
var invalidCharsRegex = regexp.MustCompile(`[<>:"|?*\\/\x00-\x1f]`)

// repeatedDashRegex matches runs of dashes produced by substitution
var repeatedDashRegex = regexp.MustCompile(`-{2,}`)

// SanitizeFilename makes name safe to use as a single path element.
// Project names come from URLs and may carry query strings or escapes.
func SanitizeFilename(name string) string {
	name = invalidCharsRegex.ReplaceAllString(name, "-")
	name = repeatedDashRegex.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-. ")

	upper := strings.ToUpper(name)
	if windowsReserved[strings.TrimSuffix(upper, filepath.Ext(upper))] {
		name = "_" + name
	}

	if len(name) > MaxFilenameLength {
		name = name[:MaxFilenameLength]
	}

	if name == "" {
		name = "project"
	}

	return name
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}

// AbsPath expands ~ and makes path absolute against the working directory.
// An empty path stays empty.
func AbsPath(path string) (string, error) {
	path = ExpandPath(path)
	if path == "" {
		return "", nil
	}
	return filepath.Abs(path)
}

// DirExists reports whether path is an existing directory
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileExists reports whether path is an existing non-directory
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsWritableDir checks that a file can be created inside dir
func IsWritableDir(dir string) bool {
	f, err := os.CreateTemp(dir, ".kicad-web-opener-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
