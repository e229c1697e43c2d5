package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letterFolds spells out Latin letters that have no combining-mark decomposition
var letterFolds = strings.NewReplacer(
	"ß", "SS", "ẞ", "SS",
	"Æ", "AE", "æ", "AE",
	"Œ", "OE", "œ", "OE",
	"Ø", "O", "ø", "O",
	"Ł", "L", "ł", "L",
	"Đ", "D", "đ", "D",
)

// NormalizeName strips accents, folds ligatures and stroked letters, uppercases
// and drops everything that is not A-Z or 0-9.
// "Émile" becomes "EMILE", "Jean-Loïc" becomes "JEANLOIC", "Strauß" becomes "STRAUSS".
func NormalizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	stripped = letterFolds.Replace(stripped)

	var b strings.Builder
	for _, r := range strings.ToUpper(stripped) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ReferralCode builds the customer-facing code: the normalized first name
// followed by the first two letters of the normalized last name.
func ReferralCode(firstName, lastName string) string {
	last := NormalizeName(lastName)
	if len(last) > 2 {
		last = last[:2]
	}
	return NormalizeName(firstName) + last
}

// CollapseSpaces trims s and replaces every run of whitespace with a single space
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
