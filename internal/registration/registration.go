// Package registration associates the kicad-project URL scheme with this
// executable so that clicking a link in a browser starts it.
package registration

import (
	"fmt"
	"strings"

	"github.com/kicad-web-opener/kicad-web-opener/internal/scheme"
)

const (
	// FriendlyName is the human readable name of the scheme
	FriendlyName = "KiCad Project"

	// DesktopFileName is the desktop entry installed on Linux
	DesktopFileName = "kicad-web-opener.desktop"
)

// MimeType is the x-scheme-handler type desktop environments route links by
func MimeType() string {
	return "x-scheme-handler/" + scheme.Scheme
}

// DesktopEntry renders the desktop entry that hands links to executable
func DesktopEntry(executable string) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", FriendlyName)
	fmt.Fprintf(&b, "Exec=%s %%u\n", quoteExecArg(executable))
	b.WriteString("Terminal=false\n")
	b.WriteString("NoDisplay=true\n")
	b.WriteString("StartupNotify=false\n")
	fmt.Fprintf(&b, "MimeType=%s;\n", MimeType())
	return b.String()
}

// quoteExecArg quotes an argument for the Exec key of a desktop entry
func quoteExecArg(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\n\"'\\><~|&;$*?#()`") {
		return arg
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + r.Replace(arg) + `"`
}

// RegistryValue is one value written under HKEY_CURRENT_USER
type RegistryValue struct {
	Key   string
	Name  string
	Value string
}

// RegistryKey is the per-user class key for the scheme
func RegistryKey() string {
	return `SOFTWARE\Classes\` + scheme.Scheme
}

// RegistryLayout lists the values that make Windows route the scheme to executable
func RegistryLayout(executable string) []RegistryValue {
	root := RegistryKey()
	return []RegistryValue{
		{Key: root, Name: "", Value: "URL:" + FriendlyName},
		{Key: root, Name: "URL Protocol", Value: ""},
		{Key: root + `\DefaultIcon`, Name: "", Value: executable + ",1"},
		{Key: root + `\shell\open\command`, Name: "", Value: `"` + executable + `" "%1"`},
	}
}
