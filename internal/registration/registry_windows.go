//go:build windows

package registration

import (
	"fmt"

	"golang.org/x/sys/windows/registry"

	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
	"github.com/kicad-web-opener/kicad-web-opener/internal/utils"
)

// Ensure RegistryRegistrar implements domain.Registrar
var _ domain.Registrar = (*RegistryRegistrar)(nil)

// RegistryRegistrar writes the scheme's class key under HKEY_CURRENT_USER,
// which needs no elevation.
type RegistryRegistrar struct {
	logger *utils.Logger
}

// NewRegistryRegistrar creates a new RegistryRegistrar
func NewRegistryRegistrar(logger *utils.Logger) *RegistryRegistrar {
	return &RegistryRegistrar{logger: logger}
}

// Location returns the registry path of the class key
func (r *RegistryRegistrar) Location() string {
	return `HKEY_CURRENT_USER\` + RegistryKey()
}

// Register writes every value of RegistryLayout
func (r *RegistryRegistrar) Register(executablePath string) error {
	for _, v := range RegistryLayout(executablePath) {
		if err := setValue(v); err != nil {
			return err
		}
	}

	if r.logger != nil {
		r.logger.Info().Str("key", r.Location()).Msg("Scheme handler registered")
	}
	return nil
}

func setValue(v RegistryValue) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, v.Key, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("create registry key %s: %w", v.Key, err)
	}
	defer key.Close()

	if err := key.SetStringValue(v.Name, v.Value); err != nil {
		return fmt.Errorf("set registry value %s\\%s: %w", v.Key, v.Name, err)
	}
	return nil
}
