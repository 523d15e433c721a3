package pagecms

import (
	"strings"
	"unicode"
)

// Slugify derives a URL-safe slug from a page name: lowercase, leading and
// trailing whitespace dropped, runs of whitespace and other non-alphanumeric
// separators collapsed to a single hyphen. Deterministic, and applied at
// write time so slug uniqueness covers names that differ only in case or
// spacing ("Title" and "   tiTLe " collide).
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	return b.String()
}
