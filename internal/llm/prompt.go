package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/telcoscope/internal/model"
)

// SystemInstruction frames every lookup
const SystemInstruction = `You are an operator lookup engine specialised in Brazilian telecom operators and ISPs.
Your goal is to aggregate public data into a detailed profile of the requested operator.

Strict guidelines:
1. Truthfulness: NEVER invent phone numbers, e-mails or scores. Extract facts ONLY from search results.
2. Scope: Brazilian operators (Vivo, Claro, TIM, Oi, Brisanet, Algar, Unifique, Desktop, etc.).
3. Reputation: report the raw signals you found, do not convert or estimate them.
   - Reclame Aqui score (0-10), exactly as published (e.g. 8.5).
   - Google Maps/Business star rating (1-5), exactly as published.
   - Consumidor.gov.br satisfaction score (0-10), if published.
   - Short verbatim snippets of complaints and praise from the results.
4. Coverage: list the Brazilian states (UF codes) the operator serves.
5. Outages: look for VERY RECENT news (last 24-48h) about massive failures. If none, the status is normal.

Output format: a single JSON object adhering to the schema. No Markdown.`

// contactRules mirrors the contact classification guidance
var contactRules = fmt.Sprintf(`Contact rules:
1. 0800 numbers are usually SAC or OUVIDORIA.
2. 4004/4003/3003 numbers usually serve capitals and metro regions.
3. Classify strictly into: %s.
4. Format mobiles as +55 (XX) XXXXX-XXXX and landlines as +55 (XX) XXXX-XXXX.
5. Do not invent numbers. Only use found data.`, strings.Join(contactTypeNames(), ", "))

// outageRules mirrors the outage detection guidance
const outageRules = `Outage detection:
Search for "falha massiva <operator> hoje", "<operator> fora do ar", "problemas <operator> agora".
- Is there a high volume of complaints in the last 24h?
- Are there major news articles confirming an outage?
- If yes, has_active_outage = true.`

// SchemaDescription is the candidate shape the assembler decodes
const SchemaDescription = `{
  "name": "string",
  "legal_name": "string",
  "cnpj": "string",
  "website": "string",
  "logo_url": "string (optional)",
  "description": "string",
  "contacts": [
    {
      "type": "SAC" | "OUVIDORIA" | "VENDAS" | "SUPORTE_TECNICO" | "WHATSAPP" | "EMAIL" | "OUTRO",
      "value": "string",
      "description": "string (optional)",
      "available_hours": "string (optional)"
    }
  ],
  "reputation_signals": {
    "reclame_aqui_score": number (0-10, optional),
    "google_stars": number (1-5, optional),
    "consumidor_gov_score": number (0-10, optional),
    "total_reviews": number (optional),
    "snippets": ["string"],
    "last_updated": "string (ISO date, optional)"
  },
  "coverage": ["string (UF codes)"],
  "outage_status": {
    "has_active_outage": boolean,
    "description": "string (optional)",
    "affected_regions": ["string"],
    "last_checked": "string"
  },
  "incident_history": {
    "events": [
      {
        "date": "string (ISO date)",
        "summary": "string",
        "duration": "string",
        "severity": "BAIXA" | "MEDIA" | "ALTA"
      }
    ]
  },
  "citations": [{"url": "string", "title": "string"}]
}`

// BuildPrompt constructs the lookup prompt for a user query
func BuildPrompt(query string) string {
	query = strings.TrimSpace(query)

	var b strings.Builder
	fmt.Fprintf(&b, "Search for detailed information about the Brazilian telecom operator: %q.\n\n", query)
	b.WriteString(`Find:
1. Official support phone numbers (SAC, WhatsApp, Ouvidoria).
2. Official website and CNPJ.
3. REPUTATION (MANDATORY):
   - Search for "` + query + ` Reclame Aqui nota" (numbers like 8.5/10).
   - Search for "` + query + ` Google Maps reviews" (stars like 4.5/5).
   - Search for "` + query + ` problemas reclame aqui" and copy complaint snippets.
4. States where they operate (cobertura).
5. News in the last 30 days about outages or massive failures, up to 5 events.

`)
	b.WriteString(contactRules)
	b.WriteString("\n\n")
	b.WriteString(outageRules)
	b.WriteString("\n\n")
	b.WriteString(`List every web page you used in "citations". Do not compute scores, ratings, trends or risk levels; they are derived downstream.

Schema:
`)
	b.WriteString(SchemaDescription)
	return b.String()
}

func contactTypeNames() []string {
	types := []model.ContactType{
		model.ContactSAC, model.ContactOuvidoria, model.ContactVendas, model.ContactSuporteTecnico,
		model.ContactWhatsApp, model.ContactEmail, model.ContactOutro,
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}
