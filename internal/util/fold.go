package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s, trims it and strips diacritics so "Média" and "media" compare equal
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// EnumKey folds s and collapses separators so "suporte técnico" matches "SUPORTE_TECNICO"
func EnumKey(s string) string {
	s = Fold(s)
	s = strings.NewReplacer("-", "_", " ", "_", ".", "").Replace(s)
	return s
}
