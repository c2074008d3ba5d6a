package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentFolder decomposes characters and drops the combining marks, so
// "Querétaro" and "queretaro" fold to the same string.
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold normalizes free text for matching: accents stripped, lowercased,
// whitespace collapsed to single spaces.
func Fold(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		folded = s
	}

	folded = strings.ToLower(folded)
	folded = strings.Join(strings.Fields(folded), " ")

	return folded
}
