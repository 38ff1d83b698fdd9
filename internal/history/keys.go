package history

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
)

// PrefixOpened namespaces entries ordered by the time they were opened
const PrefixOpened = "opened/"

// EntryKey builds the key for an entry. The zero-padded timestamp makes
// byte order equal to chronological order; the source hash keeps two
// entries opened in the same nanosecond apart.
func EntryKey(openedAt time.Time, sourceURL string) []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", PrefixOpened, openedAt.UnixNano(), SourceHash(sourceURL)[:16]))
}

// SourceHash returns a SHA256 hash of the normalized source URL
func SourceHash(rawURL string) string {
	hash := sha256.Sum256([]byte(normalizeSource(rawURL)))
	return hex.EncodeToString(hash[:])
}

// normalizeSource normalizes a URL so trivially different spellings of the
// same source hash alike.
func normalizeSource(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if (u.Scheme == "http" && u.Port() == "80") ||
		(u.Scheme == "https" && u.Port() == "443") {
		u.Host = u.Hostname()
	}

	if u.Path != "" {
		u.Path = path.Clean(u.Path)
	}

	u.Fragment = ""

	return u.String()
}
