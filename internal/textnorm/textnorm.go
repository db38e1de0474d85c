// Package textnorm normalizes informal Portuguese chat text before pattern matching.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize removes diacritics, lowercases and trims the text.
func Normalize(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}
	return strings.TrimSpace(strings.ToLower(stripped))
}

// typos maps a misspelled token to its canonical spelling.
var typos = buildTypoTable(map[string][]string{
	"gastei": {"gaste", "gasteu", "gastou", "gastar"},
	"paguei": {"pague", "pagou", "pagar"},
	"comprei": {"compre", "comprou", "comprar"},
	"reais": {"real", "reau", "reauis"},
	"almoço": {"almoco", "almosso", "almosço"},
	"jantar": {"janta", "jantou"},
	"uber": {"uberr"},
	"táxi": {"taxi"},
	"farmácia": {"farmacia"},
})

func buildTypoTable(canonical map[string][]string) map[string]string {
	table := make(map[string]string)
	for fixed, wrong := range canonical {
		for _, w := range wrong {
			table[w] = fixed
		}
	}
	return table
}

// FixCommonTypos replaces known misspelled tokens with their canonical form.
// Unknown tokens pass through unchanged.
func FixCommonTypos(text string) string {
	words := strings.Fields(strings.ToLower(text))
	for i, w := range words {
		if fixed, ok := typos[w]; ok {
			words[i] = fixed
		}
	}
	return strings.Join(words, " ")
}

// Clean runs Normalize followed by FixCommonTypos.
func Clean(text string) string {
	return FixCommonTypos(Normalize(text))
}

// EqualFold compares two strings ignoring case and accents.
func EqualFold(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
