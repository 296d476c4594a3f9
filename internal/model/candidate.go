package model

// Candidate is the raw, model-generated profile as decoded from the backend's JSON.
// Enum-like fields stay as strings here; the assembler parses them item by item.
// Fields the assembler always recomputes (id, sources, last_analyzed, data_reliability,
// operational_risk, stability_trend) are not decoded at all.
type Candidate struct {
	Name        string `json:"name"`
	LegalName   string `json:"legal_name"`
	CNPJ        string `json:"cnpj"`
	Website     string `json:"website"`
	LogoURL     string `json:"logo_url"`
	Description string `json:"description"`

	Contacts          []CandidateContact    `json:"contacts"`
	Reputation        []CandidateReputation `json:"reputation"`
	ReputationSignals *ReputationSignals    `json:"reputation_signals"`
	Coverage          []string              `json:"coverage"`
	OutageStatus      *CandidateOutage      `json:"outage_status"`
	IncidentHistory   *CandidateIncidents   `json:"incident_history"`
}

// CandidateContact is a contact as written by the backend
type CandidateContact struct {
	Type           string `json:"type"`
	Value          string `json:"value"`
	Description    string `json:"description"`
	AvailableHours string `json:"available_hours"`
}

// CandidateReputation is a reputation entry as written by the backend
type CandidateReputation struct {
	Score        *float64 `json:"score"`
	Source       string   `json:"source"`
	TotalReviews *int     `json:"total_reviews"`
	LastUpdated  string   `json:"last_updated"`
}

// ReputationSignals are the raw reputation inputs for the cascade
type ReputationSignals struct {
	ReclameAquiScore   *float64 `json:"reclame_aqui_score,omitempty"`   // 0-10
	GoogleStars        *float64 `json:"google_stars,omitempty"`         // 1-5
	ConsumidorGovScore *float64 `json:"consumidor_gov_score,omitempty"` // 0-10
	TotalReviews       *int     `json:"total_reviews,omitempty"`
	Snippets           []string `json:"snippets,omitempty"` // complaint/praise text for sentiment
	LastUpdated        string   `json:"last_updated,omitempty"`
}

// CandidateOutage is the outage block; HasActiveOutage is required
type CandidateOutage struct {
	HasActiveOutage *bool    `json:"has_active_outage"`
	Description     string   `json:"description"`
	AffectedRegions []string `json:"affected_regions"`
	LastChecked     string   `json:"last_checked"`
}

// CandidateIncidents is the incident block as written by the backend
type CandidateIncidents struct {
	Events []CandidateIncident `json:"events"`
}

// CandidateIncident is one incident as written by the backend
type CandidateIncident struct {
	Date     string `json:"date"`
	Summary  string `json:"summary"`
	Duration string `json:"duration"`
	Severity string `json:"severity"`
}
