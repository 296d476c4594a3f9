package score

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ppiankov/telcoscope/internal/model"
	"github.com/ppiankov/telcoscope/internal/util"
)

const (
	pointsActiveOutage   = 40
	maxIncidentPoints    = 30
	pointsUnknownRep     = 15
	reputationMultiplier = 4.0

	goodReputation = 7.0 // BAIXO needs a score above this
	badReputation  = 5.0 // ALTO needs a score below this

	baixoBelow = 30
	altoFrom   = 70
)

var incidentPoints = map[model.Severity]int{
	model.SeverityAlta:  15,
	model.SeverityMedia: 8,
	model.SeverityBaixa: 3,
}

// RiskScorer computes operational risk from reputation, outage and incident data
type RiskScorer struct {
	incidentWindow    time.Duration
	majorOutageWindow time.Duration
}

// NewRiskScorer creates a risk scorer from the scoring windows
func NewRiskScorer(cfg model.ScoringConfig) *RiskScorer {
	s := &RiskScorer{
		incidentWindow:    cfg.IncidentWindow,
		majorOutageWindow: cfg.MajorOutageWindow,
	}
	if s.incidentWindow <= 0 {
		s.incidentWindow = 30 * 24 * time.Hour
	}
	if s.majorOutageWindow <= 0 {
		s.majorOutageWindow = 48 * time.Hour
	}
	return s
}

type factor struct {
	text   string
	points int
}

// Score combines the contributions, then enforces the bucket rules:
// BAIXO requires reputation > 7.0 and no major outage,
// ALTO requires reputation < 5.0 together with a major outage.
// reputation is nil when no reputation entry could be resolved.
func (s *RiskScorer) Score(reputation *model.ReputationEntry, outage model.OutageStatus, incidents model.IncidentHistory, now time.Time) model.OperationalRisk {
	var factors []factor

	if outage.HasActiveOutage {
		text := "active outage in progress"
		if n := len(outage.AffectedRegions); n > 0 {
			text = fmt.Sprintf("active outage in progress affecting %d region(s)", n)
		}
		factors = append(factors, factor{text: text, points: pointsActiveOutage})
	}

	recent, high, incidentTotal := 0, 0, 0
	for _, ev := range incidents.Events {
		t, ok := util.ParseTimestamp(ev.Date)
		if !ok || now.Sub(t) > s.incidentWindow {
			continue
		}
		recent++
		if ev.Severity == model.SeverityAlta {
			high++
		}
		incidentTotal += incidentPoints[ev.Severity]
	}
	if incidentTotal > maxIncidentPoints {
		incidentTotal = maxIncidentPoints
	}
	if incidentTotal > 0 {
		factors = append(factors, factor{
			text:   fmt.Sprintf("%d recent incident(s) in the last %d days, %d high severity", recent, int(s.incidentWindow.Hours()/24), high),
			points: incidentTotal,
		})
	}

	switch {
	case reputation == nil:
		factors = append(factors, factor{text: "no reputation data available", points: pointsUnknownRep})
	case reputation.Score < badReputation:
		factors = append(factors, factor{
			text:   fmt.Sprintf("reputation below threshold: %.1f/10 (%s)", reputation.Score, reputation.Source),
			points: reputationPoints(reputation.Score),
		})
	case reputation.Score <= goodReputation:
		factors = append(factors, factor{
			text:   fmt.Sprintf("average reputation: %.1f/10 (%s)", reputation.Score, reputation.Source),
			points: reputationPoints(reputation.Score),
		})
	}

	score := 0
	for _, f := range factors {
		score += f.points
	}

	major := outage.HasActiveOutage || s.recentMajorIncident(incidents.Events, now)
	good := reputation != nil && reputation.Score > goodReputation
	bad := reputation != nil && reputation.Score < badReputation

	if score < baixoBelow && !(good && !major) {
		score = baixoBelow
	}
	if bad && major && score < altoFrom {
		score = altoFrom
	}
	if score >= altoFrom && !(bad && major) {
		score = altoFrom - 1
	}
	score = clamp(score, 0, 100)

	sort.SliceStable(factors, func(i, j int) bool { return factors[i].points > factors[j].points })
	texts := make([]string, 0, len(factors))
	for _, f := range factors {
		texts = append(texts, f.text)
	}

	return model.OperationalRisk{
		Score:   score,
		Level:   LevelFor(score),
		Factors: texts,
	}
}

// LevelFor buckets a 0-100 risk score: BAIXO < 30, MODERADO 30-69, ALTO >= 70
func LevelFor(score int) model.RiskLevel {
	switch {
	case score >= altoFrom:
		return model.RiskAlto
	case score >= baixoBelow:
		return model.RiskModerado
	default:
		return model.RiskBaixo
	}
}

// recentMajorIncident reports an ALTA incident inside the major-outage window
func (s *RiskScorer) recentMajorIncident(events []model.IncidentEvent, now time.Time) bool {
	for _, ev := range events {
		if ev.Severity != model.SeverityAlta {
			continue
		}
		if t, ok := util.ParseTimestamp(ev.Date); ok && now.Sub(t) <= s.majorOutageWindow {
			return true
		}
	}
	return false
}

func reputationPoints(r float64) int {
	return int(math.Round((10 - r) * reputationMultiplier))
}
