package analysis

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9+ ]`)
	spacesRe   = regexp.MustCompile(`\s+`)
)

// Normalize folds accents to ASCII, lowercases, and collapses every run of
// characters other than letters, digits and '+' into a single space. All
// keyword scoring and catalog matching happens on this form.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	out := strings.ToLower(b.String())
	out = nonAlnumRe.ReplaceAllString(out, " ")
	out = spacesRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// parseFloatFR parses a French-formatted number ("1 234,56").
func parseFloatFR(s string) *float64 {
	x := strings.ReplaceAll(s, " ", "")
	x = strings.ReplaceAll(x, ",", ".")
	v, err := strconv.ParseFloat(x, 64)
	if err != nil {
		return nil
	}
	return &v
}

func isZeroOrNil(v *float64) bool {
	return v == nil || *v == 0
}
