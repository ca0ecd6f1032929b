// Package textutil normalizes Icelandic text for matching and URLs.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that do not decompose into a base letter plus a combining mark.
var ligatures = strings.NewReplacer(
	"ð", "d", "Ð", "D",
	"þ", "th", "Þ", "Th",
	"æ", "ae", "Æ", "Ae",
	"ø", "o", "Ø", "O",
	"ß", "ss",
)

// Fold lowercases s and strips diacritics, so "Ölgerðin" becomes "olgerdin".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, ligatures.Replace(s))
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// FoldRune folds a single rune. Multi-letter expansions ("þ" to "th") keep
// only their first letter.
func FoldRune(r rune) rune {
	f := Fold(string(r))
	for _, c := range f {
		return c
	}
	return r
}

// Slugify turns a store name into a URL slug: lowercase, whitespace to "-",
// Icelandic letters transliterated.
func Slugify(name string) string {
	folded := Fold(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(folded))
	dash := false
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case unicode.IsSpace(r) || r == '-':
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
