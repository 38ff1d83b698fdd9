package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain project name", "board", "board"},
		{"keeps dots and dashes", "power-supply.v2", "power-supply.v2"},
		{"query string from URL", "board.zip?dl=1", "board.zip-dl=1"},
		{"path separators", `a/b\c`, "a-b-c"},
		{"control characters", "bo\x00ard", "bo-ard"},
		{"leading and trailing junk", "..-board-..", "board"},
		{"collapsed dashes", "a::b", "a-b"},
		{"Windows reserved name", "CON", "_CON"},
		{"Windows reserved name with extension", "aux.txt", "_aux.txt"},
		{"empty", "", "project"},
		{"only invalid characters", "???", "project"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilename_TruncatesLongNames(t *testing.T) {
	long := strings.Repeat("a", MaxFilenameLength+50)
	assert.Len(t, SanitizeFilename(long), MaxFilenameLength)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "kicad"), ExpandPath("~/kicad"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
	assert.Equal(t, "relative", ExpandPath("relative"))
	assert.Equal(t, "~user/x", ExpandPath("~user/x"))
}

func TestAbsPath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "relative", in: "out", want: filepath.Join(wd, "out")},
		{name: "dot relative", in: "./boards/../out", want: filepath.Join(wd, "out")},
		{name: "home", in: "~/boards", want: filepath.Join(home, "boards")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AbsPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDirAndFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "kicad")
	require.NoError(t, os.WriteFile(file, []byte("#!/bin/sh\n"), 0o755))

	assert.True(t, DirExists(dir))
	assert.False(t, DirExists(file))
	assert.False(t, DirExists(filepath.Join(dir, "missing")))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
}

func TestIsWritableDir(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, IsWritableDir(dir))
	assert.False(t, IsWritableDir(filepath.Join(dir, "does-not-exist")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary file must be removed")
}
