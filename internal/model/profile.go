package model

import "time"

// OperatorProfile is the finished, validated record for one telecom operator lookup
type OperatorProfile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LegalName   string `json:"legal_name,omitempty"` // Razão social
	CNPJ        string `json:"cnpj,omitempty"`
	Website     string `json:"website,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
	Description string `json:"description,omitempty"`

	Contacts     []Contact         `json:"contacts"`
	Reputation   []ReputationEntry `json:"reputation"`
	Coverage     []string          `json:"coverage"` // UF codes or region names
	OutageStatus OutageStatus      `json:"outage_status"`

	IncidentHistory IncidentHistory `json:"incident_history"`
	DataReliability DataReliability `json:"data_reliability"`
	OperationalRisk OperationalRisk `json:"operational_risk"`

	Sources      []SourceMetadata `json:"sources"`
	LastAnalyzed time.Time        `json:"last_analyzed"`
}

// Contact is a customer-service channel carried through from the candidate
type Contact struct {
	Type           ContactType `json:"type"`
	Value          string      `json:"value"`
	Description    string      `json:"description,omitempty"`
	AvailableHours string      `json:"available_hours,omitempty"` // e.g. "24h", "Seg-Sex 08:00-18:00"
}

// ReputationEntry is one resolved reputation score on a 0-10 scale
type ReputationEntry struct {
	Score        float64          `json:"score"`
	Source       ReputationSource `json:"source"`
	Status       ReputationStatus `json:"status"`
	TotalReviews *int             `json:"total_reviews,omitempty"`
	LastUpdated  string           `json:"last_updated"`
}

// OutageStatus describes whether a massive failure is in progress
type OutageStatus struct {
	HasActiveOutage bool     `json:"has_active_outage"`
	Description     string   `json:"description,omitempty"`
	AffectedRegions []string `json:"affected_regions"`
	LastChecked     string   `json:"last_checked"`
}

// IncidentEvent is a single reported outage or service degradation
type IncidentEvent struct {
	Date     string   `json:"date"` // ISO date
	Summary  string   `json:"summary"`
	Duration string   `json:"duration,omitempty"` // e.g. "4h"
	Severity Severity `json:"severity"`
}

// IncidentHistory holds the retained events (most recent first) and the derived trend
type IncidentHistory struct {
	Events         []IncidentEvent `json:"events"`
	StabilityTrend StabilityTrend  `json:"stability_trend"`
}

// DataReliability is the confidence score for the whole record
type DataReliability struct {
	Score       int                 `json:"score"`
	Rating      Rating              `json:"rating"`
	Explanation string              `json:"explanation"`
	Criteria    ReliabilityCriteria `json:"criteria"`
}

// ReliabilityCriteria are the boolean checks behind DataReliability.Score
type ReliabilityCriteria struct {
	SourceCount     bool `json:"source_count"`
	CrossValidation bool `json:"cross_validation"`
	RecentUpdate    bool `json:"recent_update"`
}

// OperationalRisk is the derived risk of relying on the operator right now
type OperationalRisk struct {
	Score   int       `json:"score"`
	Level   RiskLevel `json:"level"`
	Factors []string  `json:"factors"`
}

// SourceMetadata is a deduplicated, classified grounding citation
type SourceMetadata struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Type        SourceType `json:"type"`
	Reliability Rating     `json:"reliability"`
	Timestamp   time.Time  `json:"timestamp"`
}

// Citation is a web reference returned alongside a generative-search answer
type Citation struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}
