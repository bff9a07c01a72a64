// Package textclean canonicalises extracted text and strips characters the
// persistence layer cannot store.
//
// Normalise makes keyword search see literals: it folds non-breaking spaces,
// drops zero-width characters and collapses whitespace. The Sanitise family
// removes NUL and invalid UTF-8 from strings and from arbitrarily nested
// JSON-like metadata.
package textclean

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var (
	multiSpace   = regexp.MustCompile(`[ \t]{2,}`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

// isNBSP matches the non-breaking space class.
func isNBSP(r rune) bool {
	switch r {
	case '\u00a0', '\u2007', '\u202f':
		return true
	}
	return false
}

// isInvisible matches zero-width and byte-order-mark code points, and NUL,
// which renders as nothing and would otherwise leave doubled spaces behind
// when the sanitiser strips it.
func isInvisible(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff', '\x00':
		return true
	}
	return false
}

func newInvisibleTransformer() transform.Transformer {
	return transform.Chain(
		runes.Map(func(r rune) rune {
			if isNBSP(r) {
				return ' '
			}
			return r
		}),
		runes.Remove(runes.Predicate(isInvisible)),
	)
}

// Normalise canonicalises whitespace and invisible characters.
// It is idempotent: Normalise(Normalise(s)) == Normalise(s).
func Normalise(s string) string {
	if s == "" {
		return ""
	}
	cleaned, _, err := transform.String(newInvisibleTransformer(), s)
	if err != nil {
		cleaned = fallbackFold(s)
	}
	cleaned = multiSpace.ReplaceAllString(cleaned, " ")
	cleaned = multiNewline.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// fallbackFold does the rune folding without x/text, for inputs the
// transformer refuses.
func fallbackFold(s string) string {
	return strings.Map(func(r rune) rune {
		if isNBSP(r) {
			return ' '
		}
		if isInvisible(r) {
			return -1
		}
		return r
	}, s)
}
