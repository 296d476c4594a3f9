package model

import "github.com/ppiankov/telcoscope/internal/util"

// ContactType classifies a customer-service channel
type ContactType string

const (
	ContactSAC            ContactType = "SAC"
	ContactOuvidoria      ContactType = "OUVIDORIA"
	ContactVendas         ContactType = "VENDAS"
	ContactSuporteTecnico ContactType = "SUPORTE_TECNICO"
	ContactWhatsApp       ContactType = "WHATSAPP"
	ContactEmail          ContactType = "EMAIL"
	ContactOutro          ContactType = "OUTRO"
)

var contactTypes = map[string]ContactType{
	"sac":             ContactSAC,
	"ouvidoria":       ContactOuvidoria,
	"vendas":          ContactVendas,
	"suporte_tecnico": ContactSuporteTecnico,
	"suporte":         ContactSuporteTecnico,
	"whatsapp":        ContactWhatsApp,
	"whats_app":       ContactWhatsApp,
	"email":           ContactEmail,
	"e_mail":          ContactEmail,
	"outro":           ContactOutro,
}

// ParseContactType maps free text to a ContactType; anything unknown is OUTRO
func ParseContactType(s string) ContactType {
	if t, ok := contactTypes[util.EnumKey(s)]; ok {
		return t
	}
	return ContactOutro
}

// ReputationSource labels the cascade tier that produced a reputation score
type ReputationSource string

const (
	SourceReclameAqui   ReputationSource = "Reclame Aqui"
	SourceGooglePlaces  ReputationSource = "Google Places"
	SourceConsumidorGov ReputationSource = "Consumidor.gov"
	SourceInternalAI    ReputationSource = "Internal AI Analysis"
)

var reputationSources = map[string]ReputationSource{
	"reclame_aqui":         SourceReclameAqui,
	"reclameaqui":          SourceReclameAqui,
	"google_places":        SourceGooglePlaces,
	"google":               SourceGooglePlaces,
	"google_maps":          SourceGooglePlaces,
	"consumidorgov":        SourceConsumidorGov,
	"consumidor_gov":       SourceConsumidorGov,
	"consumidorgovbr":      SourceConsumidorGov,
	"internal_ai_analysis": SourceInternalAI,
}

// ParseReputationSource maps free text to a ReputationSource
func ParseReputationSource(s string) (ReputationSource, bool) {
	src, ok := reputationSources[util.EnumKey(s)]
	return src, ok
}

// ReputationStatus is the label bucket for a 0-10 reputation score
type ReputationStatus string

const (
	StatusRuim    ReputationStatus = "Ruim"
	StatusRegular ReputationStatus = "Regular"
	StatusBom     ReputationStatus = "Bom"
	StatusOtimo   ReputationStatus = "Ótimo"
)

// Severity of an incident
type Severity string

const (
	SeverityBaixa Severity = "BAIXA"
	SeverityMedia Severity = "MEDIA"
	SeverityAlta  Severity = "ALTA"
)

var severities = map[string]Severity{
	"baixa":  SeverityBaixa,
	"low":    SeverityBaixa,
	"media":  SeverityMedia,
	"medio":  SeverityMedia,
	"medium": SeverityMedia,
	"alta":   SeverityAlta,
	"high":   SeverityAlta,
}

// ParseSeverity maps free text to a Severity
func ParseSeverity(s string) (Severity, bool) {
	sev, ok := severities[util.EnumKey(s)]
	return sev, ok
}

// Weight ranks severities: ALTA 3, MEDIA 2, BAIXA 1
func (s Severity) Weight() int {
	switch s {
	case SeverityAlta:
		return 3
	case SeverityMedia:
		return 2
	case SeverityBaixa:
		return 1
	default:
		return 0
	}
}

// StabilityTrend is the direction of incident frequency/severity over time
type StabilityTrend string

const (
	TrendEstavel    StabilityTrend = "ESTAVEL"
	TrendDegradando StabilityTrend = "DEGRADANDO"
	TrendMelhorando StabilityTrend = "MELHORANDO"
)

// Rating is a three-level confidence bucket shared by data reliability and source reliability
type Rating string

const (
	RatingBaixa Rating = "BAIXA"
	RatingMedia Rating = "MEDIA"
	RatingAlta  Rating = "ALTA"
)

// RiskLevel buckets an operational risk score
type RiskLevel string

const (
	RiskBaixo    RiskLevel = "BAIXO"
	RiskModerado RiskLevel = "MODERADO"
	RiskAlto     RiskLevel = "ALTO"
)

// SourceType classifies who published a citation
type SourceType string

const (
	SourceTypeOficial   SourceType = "OFICIAL"
	SourceTypeTerceiros SourceType = "TERCEIROS"
	SourceTypeNoticia   SourceType = "NOTICIA"
)
