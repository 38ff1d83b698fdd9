package registration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
)

func TestMimeType(t *testing.T) {
	assert.Equal(t, "x-scheme-handler/kicad-project", MimeType())
}

func TestDesktopEntry(t *testing.T) {
	entry := DesktopEntry("/usr/local/bin/kicad-web-opener")

	assert.True(t, strings.HasPrefix(entry, "[Desktop Entry]\n"))
	assert.Contains(t, entry, "Type=Application\n")
	assert.Contains(t, entry, "Name=KiCad Project\n")
	assert.Contains(t, entry, "Exec=/usr/local/bin/kicad-web-opener %u\n")
	assert.Contains(t, entry, "MimeType=x-scheme-handler/kicad-project;\n")
}

func TestQuoteExecArg(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/usr/bin/kwo", "/usr/bin/kwo"},
		{"/opt/My Apps/kwo", `"/opt/My Apps/kwo"`},
		{`/opt/a"b/kwo`, `"/opt/a\"b/kwo"`},
		{"/opt/$HOME/kwo", `"/opt/\$HOME/kwo"`},
		{"", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, quoteExecArg(tt.in))
		})
	}
}

func TestRegistryLayout(t *testing.T) {
	exe := `C:\Program Files\KiCadWebOpener\kicad-web-opener.exe`
	layout := RegistryLayout(exe)

	require.Len(t, layout, 4)
	assert.Equal(t, RegistryValue{Key: `SOFTWARE\Classes\kicad-project`, Name: "", Value: "URL:KiCad Project"}, layout[0])
	assert.Equal(t, RegistryValue{Key: `SOFTWARE\Classes\kicad-project`, Name: "URL Protocol", Value: ""}, layout[1])
	assert.Equal(t, `SOFTWARE\Classes\kicad-project\DefaultIcon`, layout[2].Key)
	assert.Equal(t, exe+",1", layout[2].Value)
	assert.Equal(t, `SOFTWARE\Classes\kicad-project\shell\open\command`, layout[3].Key)
	assert.Equal(t, `"`+exe+`" "%1"`, layout[3].Value)
}

type recordedCommand struct {
	name string
	args []string
}

func TestDesktopRegistrar_Register(t *testing.T) {
	dataHome := t.TempDir()
	var calls []recordedCommand

	r, err := NewDesktopRegistrar(DesktopRegistrarOptions{
		DataHome: dataHome,
		Run: func(ctx context.Context, name string, args ...string) error {
			calls = append(calls, recordedCommand{name: name, args: args})
			return nil
		},
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dataHome, "applications", DesktopFileName), r.Location())
	require.NoError(t, r.Register("/usr/bin/kicad-web-opener"))

	data, err := os.ReadFile(r.Location())
	require.NoError(t, err)
	assert.Equal(t, DesktopEntry("/usr/bin/kicad-web-opener"), string(data))

	require.Len(t, calls, 1)
	assert.Equal(t, "xdg-mime", calls[0].name)
	assert.Equal(t, []string{"default", DesktopFileName, "x-scheme-handler/kicad-project"}, calls[0].args)
}

func TestDesktopRegistrar_Register_XdgMimeFails(t *testing.T) {
	r, err := NewDesktopRegistrar(DesktopRegistrarOptions{
		DataHome: t.TempDir(),
		Run: func(ctx context.Context, name string, args ...string) error {
			return errors.New("exec: \"xdg-mime\": executable file not found in $PATH")
		},
	})
	require.NoError(t, err)

	err = r.Register("/usr/bin/kicad-web-opener")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xdg-mime")
	assert.FileExists(t, r.Location(), "entry is written before xdg-mime runs")
}

func TestDesktopRegistrar_UsesXDGDataHome(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)

	r, err := NewDesktopRegistrar(DesktopRegistrarOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataHome, "applications", DesktopFileName), r.Location())
}

func TestForPlatform(t *testing.T) {
	r, err := ForPlatform(nil)
	switch runtime.GOOS {
	case "linux", "windows":
		require.NoError(t, err)
		assert.NotEmpty(t, r.Location())
	default:
		assert.ErrorIs(t, err, domain.ErrUnsupportedPlatform)
		assert.Nil(t, r)
	}
}
