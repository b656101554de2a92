// Package beneficiary cleans up the names and cities page owners type in so
// they survive the ASCII-only expectations of payer banking apps.
package beneficiary

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/alovak/pix-donations/internal/brcode"
)

// Normalize strips diacritics, collapses whitespace and upper-cases s.
// "  São   Paulo " becomes "SAO PAULO".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToUpper(strings.Join(strings.Fields(folded), " "))
}

// Truncate cuts s to at most max bytes without splitting a character and
// drops a trailing space left by the cut.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimRight(s[:cut], " ")
}

// Profile normalises name and city and fits them to the payload limits.
func Profile(name, city string) brcode.Profile {
	return brcode.Profile{
		Name: Truncate(Normalize(name), brcode.MaxNameLen),
		City: Truncate(Normalize(city), brcode.MaxCityLen),
	}
}
