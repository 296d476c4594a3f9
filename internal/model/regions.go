package model

import (
	"strings"

	"github.com/ppiankov/telcoscope/internal/util"
)

// BrazilStates lists the 27 UF codes
var BrazilStates = []string{
	"AC", "AL", "AP", "AM", "BA", "CE", "DF", "ES", "GO", "MA", "MT", "MS", "MG", "PA",
	"PB", "PR", "PE", "PI", "RJ", "RN", "RS", "RO", "RR", "SC", "SP", "SE", "TO",
}

var stateNames = map[string]string{
	"acre":                "AC",
	"alagoas":             "AL",
	"amapa":               "AP",
	"amazonas":            "AM",
	"bahia":               "BA",
	"ceara":               "CE",
	"distrito federal":    "DF",
	"espirito santo":      "ES",
	"goias":               "GO",
	"maranhao":            "MA",
	"mato grosso":         "MT",
	"mato grosso do sul":  "MS",
	"minas gerais":        "MG",
	"para":                "PA",
	"paraiba":             "PB",
	"parana":              "PR",
	"pernambuco":          "PE",
	"piaui":               "PI",
	"rio de janeiro":      "RJ",
	"rio grande do norte": "RN",
	"rio grande do sul":   "RS",
	"rondonia":            "RO",
	"roraima":             "RR",
	"santa catarina":      "SC",
	"sao paulo":           "SP",
	"sergipe":             "SE",
	"tocantins":           "TO",
}

// NormalizeRegion maps a UF code or full state name to its upper-case UF code.
// Other region names ("Nacional", "Grande SP") are returned trimmed.
func NormalizeRegion(s string) string {
	s = strings.TrimSpace(s)
	folded := util.Fold(s)
	if uf, ok := stateNames[folded]; ok {
		return uf
	}
	upper := strings.ToUpper(folded)
	for _, uf := range BrazilStates {
		if upper == uf {
			return uf
		}
	}
	return s
}

// NormalizeRegions normalizes and deduplicates region names, preserving order.
// Blank entries are dropped; the result is never nil.
func NormalizeRegions(regions []string) []string {
	out := make([]string, 0, len(regions))
	seen := make(map[string]bool, len(regions))
	for _, r := range regions {
		n := NormalizeRegion(r)
		if n == "" || seen[strings.ToUpper(n)] {
			continue
		}
		seen[strings.ToUpper(n)] = true
		out = append(out, n)
	}
	return out
}
