//go:build !linux && !windows

package registration

import (
	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
	"github.com/kicad-web-opener/kicad-web-opener/internal/utils"
)

// ForPlatform reports that scheme registration is not available here
func ForPlatform(logger *utils.Logger) (domain.Registrar, error) {
	return nil, domain.ErrUnsupportedPlatform
}
