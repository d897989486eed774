// words/text.go
package words

import (
	"regexp"
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// NormalizeForCompare collapses whitespace, trims and applies NFC so guesses
// in scripts with combining marks (e.g. Amharic) compare correctly.
func NormalizeForCompare(s string) string {
	collapsed := whitespaceRE.ReplaceAllString(s, " ")
	return norm.NFC.String(strings.TrimSpace(collapsed))
}

// Matches reports whether a guess equals the secret word after
// normalization and case folding.
func Matches(word, guess string) bool {
	return strings.EqualFold(NormalizeForCompare(word), NormalizeForCompare(guess))
}

// Graphemes splits a string into user-perceived characters.
func Graphemes(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Mask converts a phrase into the per-word grapheme counts shown to
// guessers instead of the literal word, e.g. "ice cream" -> [3 5].
func Mask(phrase string) []int {
	parts := strings.Fields(strings.TrimSpace(phrase))
	mask := make([]int, 0, len(parts))
	for _, part := range parts {
		mask = append(mask, uniseg.GraphemeClusterCount(part))
	}
	return mask
}
