package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kicad-web-opener/kicad-web-opener/internal/config"
	"github.com/kicad-web-opener/kicad-web-opener/pkg/version"
)

func found(string) (string, error)   { return "/usr/bin/git", nil }
func missing(string) (string, error) { return "", errors.New("executable file not found in $PATH") }

func TestSelectGitBackend(t *testing.T) {
	assert.Equal(t, config.GitBackendCLI, SelectGitBackend("git", found))
	assert.Equal(t, config.GitBackendBuiltin, SelectGitBackend("git", missing))
}

func TestBuild(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	tests := []struct {
		name       string
		backend    string
		lookPath   func(string) (string, error)
		wantMethod string
	}{
		{name: "auto with git on PATH", backend: config.GitBackendAuto, lookPath: found, wantMethod: "clone"},
		{name: "auto without git", backend: config.GitBackendAuto, lookPath: missing, wantMethod: "builtin-clone"},
		{name: "forced cli", backend: config.GitBackendCLI, lookPath: missing, wantMethod: "clone"},
		{name: "forced builtin", backend: config.GitBackendBuiltin, lookPath: found, wantMethod: "builtin-clone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Git.Backend = tt.backend
			cfg.History.Enabled = false

			orch, err := Build(cfg, BuildOptions{LookPath: tt.lookPath})
			require.NoError(t, err)
			defer orch.Close()

			assert.Equal(t, tt.wantMethod, orch.repository.Name())
			assert.Equal(t, "archive", orch.archive.Name())
			assert.Nil(t, orch.history)
		})
	}
}

func TestBuild_InMemoryHistory(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	cfg := config.Default()
	cfg.History.Enabled = true

	orch, err := Build(cfg, BuildOptions{LookPath: found, HistoryInMemory: true})
	require.NoError(t, err)
	defer orch.Close()

	require.NotNil(t, orch.history)
	require.NoError(t, orch.ClearHistory())
}

func TestBuild_BrowserTLS(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	cfg := config.Default()
	cfg.History.Enabled = false
	cfg.Download.BrowserTLS = true

	orch, err := Build(cfg, BuildOptions{LookPath: found})
	require.NoError(t, err)
	assert.Equal(t, "archive", orch.archive.Name())
}

func TestBuild_NilConfig(t *testing.T) {
	_, err := Build(nil, BuildOptions{})
	assert.Error(t, err)
}

func TestUserAgent(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, version.UserAgent(), userAgent(cfg))

	cfg.Download.UserAgent = "Mozilla/5.0 (X11; Linux x86_64)"
	assert.Equal(t, "Mozilla/5.0 (X11; Linux x86_64)", userAgent(cfg))
}
