package report

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxSlugLen bounds a slug in runes.
const maxSlugLen = 200

var (
	slugUnsafe     = regexp.MustCompile(`[^\p{L}\p{N}_\s\-.]`)
	slugWhitespace = regexp.MustCompile(`\s+`)
)

// Slug turns a label into a file name stem: characters other than letters,
// digits, '_', '-', '.' and whitespace become '_', whitespace runs become a
// single '_', leading and trailing '_' are trimmed, and the result is cut
// to 200 runes. An empty result becomes "unnamed".
func Slug(label string) string {
	s := norm.NFC.String(label)
	s = slugUnsafe.ReplaceAllString(s, "_")
	s = slugWhitespace.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")

	if r := []rune(s); len(r) > maxSlugLen {
		s = string(r[:maxSlugLen])
	}
	if s == "" || s == "." || s == ".." {
		return "unnamed"
	}
	return s
}
