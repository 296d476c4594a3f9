package reputation

import (
	"fmt"
	"time"

	"github.com/ppiankov/telcoscope/internal/model"
)

// Status thresholds on the 0-10 scale, aligned with Reclame Aqui's own bands
const (
	regularFrom = 6.0
	bomFrom     = 7.0
	otimoFrom   = 8.0
)

// Resolution is the outcome of the reputation cascade
type Resolution struct {
	// Entries lists the authoritative entry first, then independent extra signals
	Entries []model.ReputationEntry
	// Warnings lists signals that were skipped (e.g. out of range)
	Warnings []string
}

// Authoritative returns the cascade winner, if any
func (r Resolution) Authoritative() (model.ReputationEntry, bool) {
	if len(r.Entries) == 0 {
		return model.ReputationEntry{}, false
	}
	return r.Entries[0], true
}

// Resolve picks one authoritative score with the priority
// Reclame Aqui score -> Google stars x2 -> sentiment of the supplied snippets.
// A Consumidor.gov score is reported as an extra, independent entry.
func Resolve(signals model.ReputationSignals, now time.Time) Resolution {
	var res Resolution

	lastUpdated := signals.LastUpdated
	if lastUpdated == "" {
		lastUpdated = now.UTC().Format(time.RFC3339)
	}

	entry := func(score float64, source model.ReputationSource, reviews *int) model.ReputationEntry {
		return model.ReputationEntry{
			Score:        score,
			Source:       source,
			Status:       Status(score),
			TotalReviews: reviews,
			LastUpdated:  lastUpdated,
		}
	}

	ra := signals.ReclameAquiScore
	if ra != nil && !inRange(*ra, 0, 10) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Reclame Aqui score %.2f outside 0-10, ignored", *ra))
		ra = nil
	}

	stars := signals.GoogleStars
	if stars != nil && !inRange(*stars, 1, 5) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("Google star rating %.2f outside 1-5, ignored", *stars))
		stars = nil
	}

	switch {
	case ra != nil:
		res.Entries = append(res.Entries, entry(*ra, model.SourceReclameAqui, signals.TotalReviews))
	case stars != nil:
		res.Entries = append(res.Entries, entry(StarsToScore(*stars), model.SourceGooglePlaces, signals.TotalReviews))
	case len(signals.Snippets) > 0:
		res.Entries = append(res.Entries, entry(EstimateSentiment(signals.Snippets), model.SourceInternalAI, nil))
	}

	if cg := signals.ConsumidorGovScore; cg != nil {
		if inRange(*cg, 0, 10) {
			res.Entries = append(res.Entries, entry(*cg, model.SourceConsumidorGov, nil))
		} else {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Consumidor.gov score %.2f outside 0-10, ignored", *cg))
		}
	}

	return res
}

// StarsToScore converts a 1-5 star rating to the 0-10 scale
func StarsToScore(stars float64) float64 {
	return stars * 2
}

// Status buckets a 0-10 score; lower scores never get a better label
func Status(score float64) model.ReputationStatus {
	switch {
	case score >= otimoFrom:
		return model.StatusOtimo
	case score >= bomFrom:
		return model.StatusBom
	case score >= regularFrom:
		return model.StatusRegular
	default:
		return model.StatusRuim
	}
}

// SignalsFromCandidate merges the explicit reputation_signals block with legacy
// reputation entries. Explicit signals take precedence field by field.
// Entries labelled "Internal AI Analysis" are ignored: sentiment is always re-derived here.
func SignalsFromCandidate(c *model.Candidate) (model.ReputationSignals, []string) {
	var signals model.ReputationSignals
	if c.ReputationSignals != nil {
		signals = *c.ReputationSignals
		signals.Snippets = append([]string(nil), c.ReputationSignals.Snippets...)
	}

	var warnings []string
	for _, r := range c.Reputation {
		if r.Score == nil {
			continue
		}
		src, ok := model.ParseReputationSource(r.Source)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown reputation source %q, ignored", r.Source))
			continue
		}

		score := *r.Score
		used := false
		switch src {
		case model.SourceReclameAqui:
			if signals.ReclameAquiScore == nil {
				signals.ReclameAquiScore = &score
				used = true
			}
		case model.SourceGooglePlaces:
			if signals.GoogleStars == nil {
				stars := score / 2
				signals.GoogleStars = &stars
				used = true
			}
		case model.SourceConsumidorGov:
			if signals.ConsumidorGovScore == nil {
				signals.ConsumidorGovScore = &score
				used = true
			}
		}

		if used {
			if signals.TotalReviews == nil && r.TotalReviews != nil && src != model.SourceConsumidorGov {
				reviews := *r.TotalReviews
				signals.TotalReviews = &reviews
			}
			if signals.LastUpdated == "" {
				signals.LastUpdated = r.LastUpdated
			}
		}
	}

	return signals, warnings
}

func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
