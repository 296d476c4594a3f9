package source

import (
	"strings"

	"github.com/ppiankov/telcoscope/internal/model"
	"golang.org/x/net/publicsuffix"
)

// Dedupe collapses citations to one entry per exact URL; the first occurrence wins.
// Citations without a usable URL are dropped. Input order is preserved.
func Dedupe(citations []model.Citation) []model.Citation {
	seen := make(map[string]bool, len(citations))
	out := make([]model.Citation, 0, len(citations))

	for _, c := range citations {
		if strings.TrimSpace(c.URL) == "" {
			continue
		}
		if seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		out = append(out, c)
	}

	return out
}

// RegistrableDomain returns the eTLD+1 of a source URL (e.g. "g1.globo.com" -> "globo.com"),
// falling back to the bare host when the public suffix list has no answer
func RegistrableDomain(rawURL string) string {
	host, _, err := parseCitationURL(rawURL)
	if err != nil {
		return ""
	}
	host = strings.TrimPrefix(host, "www.")
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}
