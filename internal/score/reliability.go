package score

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/telcoscope/internal/model"
	"github.com/ppiankov/telcoscope/internal/util"
)

// Criterion weights; they sum to 100
const (
	weightSourceCount     = 35
	weightCrossValidation = 40
	weightRecentUpdate    = 25

	// Applied when the record carries no contact channel at all
	penaltyNoContacts = 10
)

// ReliabilityScorer computes how much the assembled record can be trusted
type ReliabilityScorer struct {
	recencyWindow time.Duration
}

// NewReliabilityScorer creates a scorer; a zero window falls back to 30 days
func NewReliabilityScorer(recencyWindow time.Duration) *ReliabilityScorer {
	if recencyWindow <= 0 {
		recencyWindow = 30 * 24 * time.Hour
	}
	return &ReliabilityScorer{recencyWindow: recencyWindow}
}

// Score evaluates the three criteria over the deduplicated sources and the profile's
// reputation and contacts.
// score = 35*source_count + 40*cross_validation + 25*recent_update - 10 if no contacts
func (s *ReliabilityScorer) Score(profile *model.OperatorProfile, sources []model.SourceMetadata, now time.Time) model.DataReliability {
	criteria := model.ReliabilityCriteria{
		SourceCount:     len(sources) > 1,
		CrossValidation: crossValidated(sources),
		RecentUpdate:    s.recentlyUpdated(sources, profile.Reputation, now),
	}

	score := 0
	if criteria.SourceCount {
		score += weightSourceCount
	}
	if criteria.CrossValidation {
		score += weightCrossValidation
	}
	if criteria.RecentUpdate {
		score += weightRecentUpdate
	}

	noContacts := len(profile.Contacts) == 0
	if noContacts {
		score -= penaltyNoContacts
	}
	score = clamp(score, 0, 100)

	return model.DataReliability{
		Score:       score,
		Rating:      RatingFor(score),
		Explanation: explain(criteria, len(sources), noContacts, s.recencyWindow),
		Criteria:    criteria,
	}
}

// RatingFor buckets a 0-100 reliability score: ALTA >= 80, MEDIA 50-79, BAIXA < 50
func RatingFor(score int) model.Rating {
	switch {
	case score >= 80:
		return model.RatingAlta
	case score >= 50:
		return model.RatingMedia
	default:
		return model.RatingBaixa
	}
}

// crossValidated reports whether at least two different source types
// of ALTA or MEDIA reliability are present
func crossValidated(sources []model.SourceMetadata) bool {
	types := make(map[model.SourceType]bool)
	for _, src := range sources {
		if src.Reliability == model.RatingAlta || src.Reliability == model.RatingMedia {
			types[src.Type] = true
		}
	}
	return len(types) >= 2
}

func (s *ReliabilityScorer) recentlyUpdated(sources []model.SourceMetadata, reputation []model.ReputationEntry, now time.Time) bool {
	var newest time.Time
	for _, src := range sources {
		if src.Timestamp.After(newest) {
			newest = src.Timestamp
		}
	}
	for _, r := range reputation {
		if t, ok := util.ParseTimestamp(r.LastUpdated); ok && t.After(newest) {
			newest = t
		}
	}
	if newest.IsZero() {
		return false
	}
	return now.Sub(newest) <= s.recencyWindow
}

func explain(c model.ReliabilityCriteria, sourceCount int, noContacts bool, window time.Duration) string {
	var met, missed []string

	label := fmt.Sprintf("%d unique sources", sourceCount)
	if sourceCount == 1 {
		label = "1 unique source"
	}
	if c.SourceCount {
		met = append(met, "multiple sources")
	} else {
		missed = append(missed, "multiple sources")
	}
	if c.CrossValidation {
		met = append(met, "cross-validation between source types")
	} else {
		missed = append(missed, "cross-validation between source types")
	}
	recency := fmt.Sprintf("update within %d days", int(window.Hours()/24))
	if c.RecentUpdate {
		met = append(met, recency)
	} else {
		missed = append(missed, recency)
	}

	var b strings.Builder
	b.WriteString("Based on ")
	b.WriteString(label)
	if len(met) > 0 {
		b.WriteString(". Met: ")
		b.WriteString(strings.Join(met, ", "))
	}
	if len(missed) > 0 {
		b.WriteString(". Not met: ")
		b.WriteString(strings.Join(missed, ", "))
	}
	if noContacts {
		b.WriteString(". No contact channels found")
	}
	b.WriteString(".")
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
