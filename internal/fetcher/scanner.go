package fetcher

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
)

// FailurePrefix is the token git starts its fatal diagnostics with
const FailurePrefix = "fatal"

// NetworkMarkers are substrings of a git failure line that point at
// connectivity rather than a missing repository.
var NetworkMarkers = []string{
	"could not resolve host",
}

// DestinationMarkers are substrings of a git failure line that blame the
// local destination rather than the remote.
var DestinationMarkers = []string{
	"already exists and is not an empty directory",
}

// LineRule reports whether an output line is a failure line
type LineRule func(line string) bool

// PrefixRule matches lines starting with prefix, ignoring case
func PrefixRule(prefix string) LineRule {
	prefix = strings.ToLower(prefix)
	return func(line string) bool {
		return strings.HasPrefix(strings.ToLower(line), prefix)
	}
}

// ScanResult is what a pass over subprocess output found
type ScanResult struct {
	// Failure is the last failure line, prefixed with "Git: ", or empty
	Failure string
	// Lines counts the lines inspected
	Lines int
}

// Failed reports whether a failure line was captured
func (r ScanResult) Failed() bool {
	return r.Failure != ""
}

const maxLineSize = 1024 * 1024

// ScanOutput reads r to EOF and records the last line matched by any rule.
// Lines end at \n or \r so progress updates count as lines. The reader is
// always drained so a writing subprocess never blocks on a full pipe.
func ScanOutput(r io.Reader, rules ...LineRule) (ScanResult, error) {
	if len(rules) == 0 {
		rules = []LineRule{PrefixRule(FailurePrefix)}
	}

	var result ScanResult
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanLinesOrCR)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		result.Lines++
		for _, rule := range rules {
			if rule(line) {
				result.Failure = "Git: " + line
				break
			}
		}
	}

	if err := scanner.Err(); err != nil {
		_, _ = io.Copy(io.Discard, r)
		return result, err
	}
	return result, nil
}

// ClassifyFailure maps a captured failure message onto the error taxonomy
func ClassifyFailure(url, message string) error {
	lower := strings.ToLower(message)
	for _, marker := range NetworkMarkers {
		if strings.Contains(lower, marker) {
			return domain.NewNetworkError(url, 0, errors.New(message))
		}
	}
	return domain.NewNotFoundError(url, message)
}

func scanLinesOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
