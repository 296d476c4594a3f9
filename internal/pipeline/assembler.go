package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/telcoscope/internal/incident"
	"github.com/ppiankov/telcoscope/internal/logging"
	"github.com/ppiankov/telcoscope/internal/model"
	"github.com/ppiankov/telcoscope/internal/reputation"
	"github.com/ppiankov/telcoscope/internal/score"
	"github.com/ppiankov/telcoscope/internal/source"
	"github.com/ppiankov/telcoscope/internal/util"
)

// Assembler turns a raw candidate and its citations into a finished OperatorProfile.
// It is safe for concurrent use; it holds no mutable state.
type Assembler struct {
	classifier  *source.Classifier
	reliability *score.ReliabilityScorer
	risk        *score.RiskScorer
	scoring     model.ScoringConfig
	now         func() time.Time
	newID       func() string
	logger      *zap.Logger
}

// Option configures an Assembler
type Option func(*Assembler)

// WithClock fixes the analysis clock
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithIDGenerator replaces the uuid v4 generator
func WithIDGenerator(newID func() string) Option {
	return func(a *Assembler) { a.newID = newID }
}

// WithLogger sets the logger used for item-level recoveries
func WithLogger(l *zap.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// NewAssembler creates an assembler from the sources and scoring configuration
func NewAssembler(cfg *model.Config, opts ...Option) *Assembler {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	a := &Assembler{
		classifier:  source.NewClassifier(&cfg.Sources),
		reliability: score.NewReliabilityScorer(cfg.Scoring.RecencyWindow),
		risk:        score.NewRiskScorer(cfg.Scoring),
		scoring:     cfg.Scoring,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	if a.scoring.MaxIncidents <= 0 {
		a.scoring.MaxIncidents = 3
	}

	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.L()
	}
	return a
}

// Assembly is the result of one assembly pass
type Assembly struct {
	Profile *model.OperatorProfile

	// Warnings lists the items that were skipped or corrected
	Warnings []string

	// DroppedCitations counts citations whose URL could not be parsed
	DroppedCitations int
}

// Assemble validates the raw candidate, classifies the citations and runs every scorer.
// Structural problems abort with a *model.DataFormatError or *model.ValidationError;
// problems with single items are recorded as warnings.
func (a *Assembler) Assemble(raw []byte, citations []model.Citation) (*Assembly, error) {
	candidate, err := DecodeCandidate(raw)
	if err != nil {
		return nil, err
	}

	now := a.now().UTC()
	out := &Assembly{}
	warn := func(msg string) {
		out.Warnings = append(out.Warnings, msg)
		a.logger.Warn("item skipped during assembly", zap.String("operator", candidate.Name), zap.String("reason", msg))
	}

	profile := &model.OperatorProfile{
		Name:        strings.TrimSpace(candidate.Name),
		LegalName:   strings.TrimSpace(candidate.LegalName),
		CNPJ:        strings.TrimSpace(candidate.CNPJ),
		Website:     strings.TrimSpace(candidate.Website),
		LogoURL:     strings.TrimSpace(candidate.LogoURL),
		Description: strings.TrimSpace(candidate.Description),
		Coverage:    model.NormalizeRegions(candidate.Coverage),
	}

	profile.Contacts = make([]model.Contact, 0, len(candidate.Contacts))
	for _, c := range candidate.Contacts {
		value := strings.TrimSpace(c.Value)
		if value == "" {
			warn(fmt.Sprintf("contact %q has no value", c.Type))
			continue
		}
		profile.Contacts = append(profile.Contacts, model.Contact{
			Type:           model.ParseContactType(c.Type),
			Value:          value,
			Description:    strings.TrimSpace(c.Description),
			AvailableHours: strings.TrimSpace(c.AvailableHours),
		})
	}

	lastChecked := strings.TrimSpace(candidate.OutageStatus.LastChecked)
	if lastChecked == "" {
		lastChecked = now.Format(time.RFC3339)
	}
	profile.OutageStatus = model.OutageStatus{
		HasActiveOutage: *candidate.OutageStatus.HasActiveOutage,
		Description:     strings.TrimSpace(candidate.OutageStatus.Description),
		AffectedRegions: model.NormalizeRegions(candidate.OutageStatus.AffectedRegions),
		LastChecked:     lastChecked,
	}

	signals, repWarnings := reputation.SignalsFromCandidate(candidate)
	for _, w := range repWarnings {
		warn(w)
	}
	resolution := reputation.Resolve(signals, now)
	for _, w := range resolution.Warnings {
		warn(w)
	}
	profile.Reputation = resolution.Entries
	if profile.Reputation == nil {
		profile.Reputation = []model.ReputationEntry{}
	}

	events := a.incidentEvents(candidate.IncidentHistory, warn)
	profile.IncidentHistory = model.IncidentHistory{
		Events:         incident.Retain(events, a.scoring.MaxIncidents),
		StabilityTrend: incident.Trend(events, now, a.scoring.IncidentWindow),
	}

	classified := a.classifier.ClassifyAll(citations, source.OperatorDomain(profile.Website), now)
	for _, dropErr := range classified.Dropped {
		warn(dropErr.Error())
	}
	out.DroppedCitations = len(classified.Dropped)
	profile.Sources = classified.Sources

	profile.DataReliability = a.reliability.Score(profile, profile.Sources, now)

	var authoritative *model.ReputationEntry
	if entry, ok := resolution.Authoritative(); ok {
		authoritative = &entry
	}
	profile.OperationalRisk = a.risk.Score(authoritative, profile.OutageStatus, model.IncidentHistory{Events: events}, now)

	profile.ID = a.newID()
	profile.LastAnalyzed = now

	out.Profile = profile
	return out, nil
}

func (a *Assembler) incidentEvents(history *model.CandidateIncidents, warn func(string)) []model.IncidentEvent {
	if history == nil {
		return nil
	}

	events := make([]model.IncidentEvent, 0, len(history.Events))
	for _, ev := range history.Events {
		sev, ok := model.ParseSeverity(ev.Severity)
		if !ok {
			warn(fmt.Sprintf("incident %q has unknown severity %q", ev.Date, ev.Severity))
			continue
		}
		events = append(events, model.IncidentEvent{
			Date:     strings.TrimSpace(ev.Date),
			Summary:  strings.TrimSpace(ev.Summary),
			Duration: strings.TrimSpace(ev.Duration),
			Severity: sev,
		})
	}
	return events
}

// DecodeCandidate parses the backend's text into a Candidate and checks the required fields
func DecodeCandidate(raw []byte) (*model.Candidate, error) {
	body := util.StripFences(raw)
	if len(body) == 0 {
		return nil, &model.DataFormatError{Err: errors.New("empty response")}
	}

	var candidate model.Candidate
	if err := json.Unmarshal(body, &candidate); err != nil {
		return nil, &model.DataFormatError{Err: err}
	}

	if strings.TrimSpace(candidate.Name) == "" {
		return nil, &model.ValidationError{Field: "name"}
	}
	if candidate.OutageStatus == nil {
		return nil, &model.ValidationError{Field: "outage_status"}
	}
	if candidate.OutageStatus.HasActiveOutage == nil {
		return nil, &model.ValidationError{Field: "outage_status.has_active_outage"}
	}

	return &candidate, nil
}
