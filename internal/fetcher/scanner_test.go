package fetcher

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
)

func TestScanOutput(t *testing.T) {
	tests := []struct {
		name        string
		output      string
		wantFailure string
		wantLines   int
	}{
		{
			name:      "clean clone",
			output:    "Cloning into '/tmp/out'...\nReceiving objects: 100% (10/10), done.\n",
			wantLines: 2,
		},
		{
			name:        "host resolution failure",
			output:      "Cloning into '/tmp/out'...\nfatal: unable to access 'https://example.com/user/board.git/': Could not resolve host: example.com\n",
			wantFailure: "Git: fatal: unable to access 'https://example.com/user/board.git/': Could not resolve host: example.com",
			wantLines:   2,
		},
		{
			name:        "prefix is case-insensitive",
			output:      "FATAL: repository not found\n",
			wantFailure: "Git: FATAL: repository not found",
			wantLines:   1,
		},
		{
			name:        "last fatal line wins",
			output:      "fatal: first\nfatal: second\n",
			wantFailure: "Git: fatal: second",
			wantLines:   2,
		},
		{
			name:      "fatal inside a line is ignored",
			output:    "remote: not fatal: just chatter\n",
			wantLines: 1,
		},
		{
			name:      "carriage return progress lines",
			output:    "Receiving objects:  50%\rReceiving objects: 100%\r\n",
			wantLines: 2,
		},
		{
			name:        "no trailing newline",
			output:      "fatal: repository 'https://example.com/x.git/' not found",
			wantFailure: "Git: fatal: repository 'https://example.com/x.git/' not found",
			wantLines:   1,
		},
		{
			name:   "empty output",
			output: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ScanOutput(strings.NewReader(tt.output))
			require.NoError(t, err)
			assert.Equal(t, tt.wantFailure, result.Failure)
			assert.Equal(t, tt.wantFailure != "", result.Failed())
			assert.Equal(t, tt.wantLines, result.Lines)
		})
	}
}

func TestScanOutput_CustomRules(t *testing.T) {
	output := "error: pathspec did not match\nwarning: remote HEAD refers to nonexistent ref\n"

	result, err := ScanOutput(strings.NewReader(output), PrefixRule("error"), PrefixRule("warning"))
	require.NoError(t, err)
	assert.Equal(t, "Git: warning: remote HEAD refers to nonexistent ref", result.Failure)

	result, err = ScanOutput(strings.NewReader(output), func(line string) bool {
		return strings.Contains(line, "pathspec")
	})
	require.NoError(t, err)
	assert.Equal(t, "Git: error: pathspec did not match", result.Failure)
}

func TestScanOutput_ReadError(t *testing.T) {
	readErr := errors.New("pipe broken")
	result, err := ScanOutput(iotest.ErrReader(readErr))
	assert.ErrorIs(t, err, readErr)
	assert.False(t, result.Failed())
}

func TestPrefixRule(t *testing.T) {
	rule := PrefixRule("Fatal")
	assert.True(t, rule("fatal: x"))
	assert.True(t, rule("FATAL: x"))
	assert.False(t, rule("error: fatal"))
}

func TestClassifyFailure(t *testing.T) {
	const url = "https://example.com/user/board.git"

	t.Run("host resolution is a network error", func(t *testing.T) {
		err := ClassifyFailure(url, "Git: fatal: could not resolve host example.com")
		assert.ErrorIs(t, err, domain.ErrNetwork)
		assert.Contains(t, err.Error(), "could not resolve host example.com")
	})

	t.Run("match ignores case", func(t *testing.T) {
		err := ClassifyFailure(url, "Git: fatal: unable to access: Could Not Resolve Host: example.com")
		assert.ErrorIs(t, err, domain.ErrNetwork)
	})

	t.Run("anything else is not found", func(t *testing.T) {
		err := ClassifyFailure(url, "Git: fatal: repository not found")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		var nf *domain.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, url, nf.URL)
		assert.Equal(t, "Git: fatal: repository not found", nf.Message)
	})
}
