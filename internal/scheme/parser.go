package scheme

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/net/idna"

	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
)

// Scheme is the custom URL scheme routed to this application
const Scheme = "kicad-project"

// SourceParam is the query parameter carrying the percent-encoded source URL
const SourceParam = "source"

// Parser turns raw links into project references
type Parser struct {
	sourceSchemes map[string]bool
}

// NewParser creates a Parser accepting http and https sources
func NewParser() *Parser {
	return &Parser{
		sourceSchemes: map[string]bool{
			"http":  true,
			"https": true,
		},
	}
}

// IsSchemeURL reports whether raw uses the kicad-project scheme
func IsSchemeURL(raw string) bool {
	prefix := Scheme + ":"
	raw = strings.TrimSpace(raw)
	return len(raw) >= len(prefix) && strings.EqualFold(raw[:len(prefix)], prefix)
}

// Parse parses a kicad-project://<type>?source=<url> link.
// It never returns a partially populated reference.
func (p *Parser) Parse(rawURL string) (domain.ProjectReference, error) {
	raw := strings.TrimSpace(rawURL)

	u, err := url.Parse(raw)
	if err != nil {
		return domain.ProjectReference{}, domain.NewFormatError(rawURL, err.Error())
	}
	if !strings.EqualFold(u.Scheme, Scheme) {
		return domain.ProjectReference{}, domain.NewFormatError(rawURL, "scheme must be "+Scheme+"://")
	}
	if u.Opaque != "" || u.User != nil || u.Port() != "" || (u.Path != "" && u.Path != "/") {
		return domain.ProjectReference{}, domain.NewFormatError(rawURL, "expected "+Scheme+"://<zip|git>?source=<url>")
	}

	projectType, ok := domain.ParseProjectType(u.Host)
	if !ok {
		return domain.ProjectReference{}, domain.NewFormatError(rawURL, "unsupported project type "+quote(u.Host))
	}

	query, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return domain.ProjectReference{}, domain.NewFormatError(rawURL, "malformed query: "+err.Error())
	}
	source := query.Get(SourceParam)
	if source == "" {
		return domain.ProjectReference{}, domain.NewFormatError(rawURL, "missing source parameter")
	}

	if reason := p.validateSource(source); reason != "" {
		return domain.ProjectReference{}, domain.NewFormatError(rawURL, reason)
	}

	name := DeriveName(source)
	if name == "" {
		return domain.ProjectReference{}, domain.NewFormatError(rawURL, "cannot derive a project name from "+source)
	}

	return domain.NewProjectReference(projectType, source, name)
}

// ParseManual builds a reference from a URL typed by the user.
// URLs ending in .zip are archives; everything else is treated as a git repository.
func (p *Parser) ParseManual(rawURL string) (domain.ProjectReference, error) {
	raw := strings.TrimSpace(rawURL)

	u, err := url.Parse(raw)
	if err != nil {
		return domain.ProjectReference{}, domain.NewFormatError(rawURL, err.Error())
	}
	if u.Scheme == "" || u.Host == "" {
		return domain.ProjectReference{}, domain.NewFormatError(rawURL, "URL must be absolute")
	}

	projectType := domain.ProjectTypeRepository
	if strings.HasSuffix(raw, ".zip") {
		projectType = domain.ProjectTypeArchive
	}

	name := DeriveName(raw)
	if name == "" {
		return domain.ProjectReference{}, domain.NewFormatError(rawURL, "cannot derive a project name")
	}

	return domain.NewProjectReference(projectType, raw, name)
}

// ParseAny dispatches to Parse for kicad-project links and to ParseManual otherwise
func (p *Parser) ParseAny(rawURL string) (domain.ProjectReference, error) {
	if IsSchemeURL(rawURL) {
		return p.Parse(rawURL)
	}
	return p.ParseManual(rawURL)
}

// BuildURL encodes a reference as a kicad-project link
func BuildURL(ref domain.ProjectReference) string {
	return Scheme + "://" + ref.Type().String() + "?" + SourceParam + "=" + url.QueryEscape(ref.SourceURL())
}

// validateSource returns a non-empty reason when source is not an
// absolute http(s) URL whose last path segment has an extension.
func (p *Parser) validateSource(source string) string {
	u, err := url.Parse(source)
	if err != nil {
		return "source is not a URL: " + err.Error()
	}
	if !p.sourceSchemes[strings.ToLower(u.Scheme)] {
		return "source must be an http or https URL"
	}

	host := u.Hostname()
	if host == "" {
		return "source has no host"
	}
	if _, err := idna.Lookup.ToASCII(host); err != nil {
		return "source host is invalid: " + err.Error()
	}

	last := path.Base(u.Path)
	if strings.HasSuffix(u.Path, "/") || last == "/" || last == "." {
		return "source must end with a file or repository name"
	}
	dot := strings.LastIndex(last, ".")
	if dot < 0 || dot == len(last)-1 {
		return "source must end with a name like project.zip or project.git"
	}

	return ""
}

func quote(s string) string {
	return "\"" + s + "\""
}
