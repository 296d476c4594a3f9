package source

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/telcoscope/internal/model"
	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// Classifier assigns a type and reliability tier to grounding citations
type Classifier struct {
	regulatory []string
	news       []string
	networks   []model.PagePattern
}

// NewClassifier creates a classifier from static domain lists
func NewClassifier(config *model.SourcesConfig) *Classifier {
	if config == nil {
		defaults := model.DefaultSourcesConfig()
		config = &defaults
	}

	c := &Classifier{
		regulatory: normalizeDomains(config.RegulatoryDomains),
		news:       normalizeDomains(config.NewsDomains),
	}

	for _, p := range config.ProfessionalNetworks {
		host := normalizeHost(p.Host)
		if host == "" {
			continue
		}
		c.networks = append(c.networks, model.PagePattern{
			Host:       host,
			PathPrefix: strings.ToLower(p.PathPrefix),
		})
	}

	return c
}

// Classify classifies one citation against the operator's own domain.
// Rules are checked in priority order and the first match wins.
func (c *Classifier) Classify(rawURL, title, operatorDomain string) (model.SourceMetadata, error) {
	host, path, err := parseCitationURL(rawURL)
	if err != nil {
		return model.SourceMetadata{}, err
	}

	if strings.TrimSpace(title) == "" {
		title = host
	}

	meta := model.SourceMetadata{
		URL:   rawURL,
		Title: title,
	}

	operatorDomain = normalizeHost(operatorDomain)

	switch {
	case operatorDomain != "" && strings.Contains(host, operatorDomain):
		meta.Type, meta.Reliability = model.SourceTypeOficial, model.RatingAlta
	case c.isCompanyPage(host, path):
		meta.Type, meta.Reliability = model.SourceTypeOficial, model.RatingAlta
	case matchesAny(host, c.regulatory):
		meta.Type, meta.Reliability = model.SourceTypeTerceiros, model.RatingAlta
	case matchesAny(host, c.news):
		meta.Type, meta.Reliability = model.SourceTypeNoticia, model.RatingMedia
	default:
		meta.Type, meta.Reliability = model.SourceTypeTerceiros, model.RatingBaixa
	}

	return meta, nil
}

// Result is the outcome of classifying a whole citation list
type Result struct {
	Sources []model.SourceMetadata
	Dropped []error // one *model.URLParseError per citation that could not be classified
}

// ClassifyAll deduplicates citations, classifies the survivors and stamps them with now.
// Citations whose URL cannot be parsed are dropped and reported in Result.Dropped.
func (c *Classifier) ClassifyAll(citations []model.Citation, operatorDomain string, now time.Time) Result {
	unique := Dedupe(citations)
	result := Result{Sources: make([]model.SourceMetadata, 0, len(unique))}

	for _, cit := range unique {
		meta, err := c.Classify(cit.URL, cit.Title, operatorDomain)
		if err != nil {
			result.Dropped = append(result.Dropped, err)
			continue
		}
		meta.Timestamp = now.UTC()
		result.Sources = append(result.Sources, meta)
	}

	return result
}

func (c *Classifier) isCompanyPage(host, path string) bool {
	for _, p := range c.networks {
		if hostMatches(host, p.Host) && strings.HasPrefix(strings.ToLower(path), p.PathPrefix) {
			return true
		}
	}
	return false
}

// OperatorDomain extracts the operator's own domain from its website, without a leading "www.".
// Bare hosts ("vivo.com.br") are accepted. Returns "" when the website is absent, has no
// registrable domain ("Oi", "com.br") or cannot be parsed.
func OperatorDomain(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return ""
	}
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}

	parsed, err := url.Parse(website)
	if err != nil {
		return ""
	}
	host := normalizeHost(parsed.Hostname())
	if !strings.Contains(host, ".") {
		return ""
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(host); err != nil {
		return ""
	}
	return host
}

// parseCitationURL returns the normalized host and the path of an absolute http(s) URL
func parseCitationURL(rawURL string) (string, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", &model.URLParseError{URL: rawURL, Err: err}
	}
	if parsed.Scheme == "" || parsed.Hostname() == "" {
		return "", "", &model.URLParseError{URL: rawURL, Err: errors.New("not an absolute URL")}
	}

	host := toASCII(strings.ToLower(parsed.Hostname()))
	return host, parsed.Path, nil
}

// normalizeHost lower-cases, strips a port, a trailing dot and a leading "www."
func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if idx := strings.Index(host, ":"); idx > 0 {
		host = host[:idx]
	}
	host = strings.TrimSuffix(host, ".")
	host = strings.TrimPrefix(host, "www.")
	return toASCII(host)
}

// toASCII converts internationalized hosts to their punycode form so lists and URLs compare equal
func toASCII(host string) string {
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return host
	}
	return ascii
}

func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if n := normalizeHost(d); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// hostMatches reports whether host is domain or a subdomain of it
func hostMatches(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func matchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if hostMatches(host, d) {
			return true
		}
	}
	return false
}
