package scheme

import "strings"

// strippedSuffixes are removed from the last URL segment when deriving a name
var strippedSuffixes = []string{".zip", ".git"}

// DeriveName returns the last '/'-separated segment of url without a
// trailing .zip or .git. A URL ending in '/' yields "".
func DeriveName(url string) string {
	segments := strings.Split(url, "/")
	name := segments[len(segments)-1]

	for _, suffix := range strippedSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}
