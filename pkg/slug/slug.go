// Package slug turns display names into URL-friendly identifiers.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Letters that do not decompose into a base letter plus a mark.
var folder = strings.NewReplacer(
	"ı", "i", "ł", "l", "ø", "o", "đ", "d", "ß", "ss", "æ", "ae", "œ", "oe", "&", " and ",
)

// Generate creates a URL-friendly slug from the given name. Accented Latin
// letters are folded to ASCII; anything else that is not a letter or digit
// becomes a single hyphen.
//
// Examples:
//   - "Women's Fashion" → "women-s-fashion"
//   - "Électronique & Maison" → "electronique-and-maison"
//   - "Hello   World!" → "hello-world"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = folder.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	s = slugRegexp.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
