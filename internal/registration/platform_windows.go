//go:build windows

package registration

import (
	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
	"github.com/kicad-web-opener/kicad-web-opener/internal/utils"
)

// ForPlatform returns the registrar for this operating system
func ForPlatform(logger *utils.Logger) (domain.Registrar, error) {
	return NewRegistryRegistrar(logger), nil
}
