package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kicad-web-opener/kicad-web-opener/internal/app"
	"github.com/kicad-web-opener/kicad-web-opener/internal/config"
	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
	"github.com/kicad-web-opener/kicad-web-opener/pkg/version"
)

// isolate points every user directory at a temp dir
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "share"))
	return home
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func zipServer(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	payload := buf.Bytes()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version.Name)
}

func TestRoot_NoArgsShowsHelp(t *testing.T) {
	isolate(t)
	out, err := executeCommand(t)
	require.NoError(t, err)
	assert.Contains(t, out, "kicad-project://")
}

func TestRoot_InvalidLink(t *testing.T) {
	isolate(t)
	_, err := executeCommand(t, "--no-launch", "kicad-project://tar?source=https%3A%2F%2Fexample.com%2Fa.tar")
	assert.ErrorIs(t, err, domain.ErrFormat)
	assert.Equal(t, domain.KindFormat, domain.KindOf(err))
}

func TestRoot_RequiresSetup(t *testing.T) {
	isolate(t)
	_, err := executeCommand(t, "https://example.com/amp.zip")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestRoot_InvalidGitBackendFlag(t *testing.T) {
	isolate(t)
	_, err := executeCommand(t, "--no-launch", "--git-backend", "svn", "https://example.com/board")
	assert.ErrorContains(t, err, "git.backend")
}

func TestRoot_FetchArchiveWithoutLaunch(t *testing.T) {
	home := isolate(t)
	cfgPath := writeConfig(t, home, "history:\n  enabled: false\n")
	srv := zipServer(t, map[string]string{
		"amp/amp.kicad_pro": "{}",
		"amp.kicad_pro":     "{}",
		"amp.kicad_pcb":     "(kicad_pcb)",
	})
	dest := filepath.Join(home, "projects", "amp")

	out, err := executeCommand(t, "--config", cfgPath, "--quiet", "--no-launch", "--dest", dest, srv.URL+"/files/amp.zip")
	require.NoError(t, err)

	assert.Contains(t, out, filepath.Join(dest, "amp.kicad_pro"))
	assert.FileExists(t, filepath.Join(dest, "amp.kicad_pcb"))
	assert.FileExists(t, filepath.Join(dest, "amp", "amp.kicad_pro"))
	assert.NoFileExists(t, dest+".zip")
}

func TestRoot_ArchiveWithoutProjectFile(t *testing.T) {
	home := isolate(t)
	cfgPath := writeConfig(t, home, "history:\n  enabled: false\n")
	srv := zipServer(t, map[string]string{"README.md": "# docs"})

	_, err := executeCommand(t, "--config", cfgPath, "-q", "--no-launch", "--dest", filepath.Join(home, "docs"), srv.URL+"/docs.zip")
	assert.ErrorIs(t, err, domain.ErrInvalidProject)
}

func TestRoot_FailureLogsKind(t *testing.T) {
	home := isolate(t)
	cfgPath := writeConfig(t, home, "history:\n  enabled: false\nlogging:\n  format: json\n")
	srv := zipServer(t, map[string]string{"README.md": "# docs"})

	out, err := executeCommand(t, "--config", cfgPath, "-q", "-v", "--no-launch", "--dest", filepath.Join(home, "docs"), srv.URL+"/docs.zip")
	require.Error(t, err)
	assert.Contains(t, out, `"kind":"invalid_project"`)
}

func TestShareLink(t *testing.T) {
	entry := domain.HistoryEntry{
		Name:      "board",
		Type:      domain.ProjectTypeRepository,
		SourceURL: "https://github.com/acme/board.git",
	}
	assert.Equal(t, "kicad-project://git?source=https%3A%2F%2Fgithub.com%2Facme%2Fboard.git", shareLink(entry))

	entry.Type = ""
	assert.Equal(t, entry.SourceURL, shareLink(entry))
}

func TestRoot_DefaultDestination(t *testing.T) {
	home := isolate(t)
	saveDir := filepath.Join(home, "boards")
	cfgPath := writeConfig(t, home, "history:\n  enabled: false\npaths:\n  default_save_path: "+saveDir+"\n")
	srv := zipServer(t, map[string]string{"amp.kicad_pro": "{}"})

	_, err := executeCommand(t, "--config", cfgPath, "-q", "--no-launch", srv.URL+"/amp.zip")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(saveDir, "amp", "amp.kicad_pro"))
}

func TestHistoryCommand(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		home := isolate(t)
		cfgPath := writeConfig(t, home, "history:\n  enabled: false\n")

		out, err := executeCommand(t, "--config", cfgPath, "history")
		require.NoError(t, err)
		assert.Contains(t, out, "History is disabled")
	})

	t.Run("empty and cleared", func(t *testing.T) {
		home := isolate(t)
		cfgPath := writeConfig(t, home, "history:\n  enabled: true\n")

		orig := buildOrchestrator
		t.Cleanup(func() { buildOrchestrator = orig })
		buildOrchestrator = func(cfg *config.Config, opts app.BuildOptions) (*app.Orchestrator, error) {
			opts.HistoryInMemory = true
			return app.Build(cfg, opts)
		}

		out, err := executeCommand(t, "--config", cfgPath, "history")
		require.NoError(t, err)
		assert.Contains(t, out, "No projects opened yet")

		out, err = executeCommand(t, "--config", cfgPath, "history", "--clear")
		require.NoError(t, err)
		assert.Contains(t, out, "History cleared")
	})
}

func TestSetupCommand_NonInteractive(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on permission bits")
	}
	home := isolate(t)
	cfgPath := filepath.Join(home, "conf", "config.yaml")
	kicad := filepath.Join(home, "kicad")
	require.NoError(t, os.WriteFile(kicad, []byte("#!/bin/sh\n"), 0o755))
	saveDir := filepath.Join(home, "boards")

	out, err := executeCommand(t, "--config", cfgPath, "setup", "--application", kicad, "--save-dir", saveDir, "--no-register")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration saved")

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, kicad, cfg.KiCad.ApplicationPath)
	assert.Equal(t, saveDir, cfg.Paths.DefaultSavePath)
	assert.NoError(t, cfg.RequireSetup())
}

func TestSetupCommand_InvalidApplication(t *testing.T) {
	home := isolate(t)
	cfgPath := filepath.Join(home, "config.yaml")

	_, err := executeCommand(t, "--config", cfgPath, "setup", "--application", filepath.Join(home, "missing"), "--no-register")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.NoFileExists(t, cfgPath)
}

func TestRegisterCommand_ExecutableUnknown(t *testing.T) {
	isolate(t)
	orig := osExecutable
	t.Cleanup(func() { osExecutable = orig })
	osExecutable = func() (string, error) { return "", errors.New("no /proc") }

	_, err := executeCommand(t, "register")
	assert.ErrorContains(t, err, "locate executable")
}

func TestDoctorCommand(t *testing.T) {
	home := isolate(t)
	cfgPath := writeConfig(t, home, "git:\n  backend: auto\n")

	orig := execLookPath
	t.Cleanup(func() { execLookPath = orig })
	execLookPath = func(string) (string, error) { return "", errors.New("not found") }

	out, err := executeCommand(t, "--config", cfgPath, "doctor")

	assert.ErrorIs(t, err, domain.ErrNotConfigured, "KiCad is not configured")
	assert.Contains(t, out, "Config file")
	assert.Contains(t, out, "KiCad")
	assert.Contains(t, out, "built-in client")
	assert.Contains(t, out, "Some checks failed")
}
