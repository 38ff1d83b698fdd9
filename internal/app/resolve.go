package app

import (
	"path/filepath"
	"strings"

	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
	"github.com/kicad-web-opener/kicad-web-opener/internal/scheme"
	"github.com/kicad-web-opener/kicad-web-opener/internal/utils"
)

// ResolveRequest turns a raw link into a FetchRequest. raw may be a
// kicad-project:// URL or a plain http(s) URL typed by the user. When
// dest is empty the project goes to <saveDir>/<project name>.
func ResolveRequest(raw, dest, saveDir string) (domain.FetchRequest, error) {
	ref, err := scheme.NewParser().ParseAny(strings.TrimSpace(raw))
	if err != nil {
		return domain.FetchRequest{}, err
	}

	if dest == "" {
		dest = DefaultDestination(saveDir, ref)
	}

	abs, err := utils.AbsPath(dest)
	if err != nil {
		return domain.FetchRequest{}, domain.NewDestinationError(dest, err)
	}

	return domain.FetchRequest{
		Reference:       ref,
		DestinationPath: abs,
	}, nil
}

// DefaultDestination places ref in its own directory under saveDir
func DefaultDestination(saveDir string, ref domain.ProjectReference) string {
	return filepath.Join(utils.ExpandPath(saveDir), utils.SanitizeFilename(ref.Name()))
}
