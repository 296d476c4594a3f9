package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/telcoscope/internal/model"
	"github.com/ppiankov/telcoscope/internal/source"
)

// Renderer writes profiles as JSON, Markdown and one-line summaries
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the indented profile to path, or to stdout when path is "-"
func (r *Renderer) RenderJSON(profile *model.OperatorProfile, path string) error {
	return writeTo(path, func(w io.Writer) error { return r.WriteJSON(w, profile) })
}

// RenderMarkdown writes the Markdown report to path, or to stdout when path is "-"
func (r *Renderer) RenderMarkdown(profile *model.OperatorProfile, path string) error {
	return writeTo(path, func(w io.Writer) error { return r.WriteMarkdown(w, profile) })
}

// WriteJSON encodes the profile with two-space indentation
func (r *Renderer) WriteJSON(w io.Writer, profile *model.OperatorProfile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(profile); err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return nil
}

// WriteMarkdown renders a human-readable report
func (r *Renderer) WriteMarkdown(w io.Writer, p *model.OperatorProfile) error {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# %s\n\n", p.Name)
	if p.LegalName != "" {
		fmt.Fprintf(&b, "**Razão social:** %s  \n", p.LegalName)
	}
	if p.CNPJ != "" {
		fmt.Fprintf(&b, "**CNPJ:** %s  \n", p.CNPJ)
	}
	if p.Website != "" {
		fmt.Fprintf(&b, "**Website:** %s  \n", p.Website)
	}
	fmt.Fprintf(&b, "**Analisado em:** %s\n\n", p.LastAnalyzed.UTC().Format("2006-01-02 15:04 UTC"))
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", p.Description)
	}

	b.WriteString("## Indicadores\n\n")
	b.WriteString("| Indicador | Valor |\n|---|---|\n")
	fmt.Fprintf(&b, "| Confiabilidade dos dados | %d/100 (%s) |\n", p.DataReliability.Score, p.DataReliability.Rating)
	fmt.Fprintf(&b, "| Risco operacional | %d/100 (%s) |\n", p.OperationalRisk.Score, p.OperationalRisk.Level)
	fmt.Fprintf(&b, "| Tendência de estabilidade | %s |\n", p.IncidentHistory.StabilityTrend)
	outage := "não"
	if p.OutageStatus.HasActiveOutage {
		outage = "sim"
	}
	fmt.Fprintf(&b, "| Falha massiva ativa | %s |\n\n", outage)

	if p.DataReliability.Explanation != "" {
		fmt.Fprintf(&b, "_%s_\n\n", p.DataReliability.Explanation)
	}
	if len(p.OperationalRisk.Factors) > 0 {
		b.WriteString("**Fatores de risco:**\n\n")
		for _, f := range p.OperationalRisk.Factors {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		b.WriteString("\n")
	}

	if p.OutageStatus.HasActiveOutage {
		b.WriteString("## Falha em andamento\n\n")
		if p.OutageStatus.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", p.OutageStatus.Description)
		}
		if len(p.OutageStatus.AffectedRegions) > 0 {
			fmt.Fprintf(&b, "Regiões afetadas: %s\n\n", strings.Join(p.OutageStatus.AffectedRegions, ", "))
		}
	}

	if len(p.Contacts) > 0 {
		b.WriteString("## Contatos\n\n")
		b.WriteString("| Tipo | Contato | Horário |\n|---|---|---|\n")
		for _, c := range p.Contacts {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", c.Type, escapeCell(c.Value), escapeCell(c.AvailableHours))
		}
		b.WriteString("\n")
	}

	if len(p.Reputation) > 0 {
		b.WriteString("## Reputação\n\n")
		b.WriteString("| Fonte | Nota | Status | Avaliações |\n|---|---|---|---|\n")
		for _, rep := range p.Reputation {
			reviews := "-"
			if rep.TotalReviews != nil {
				reviews = fmt.Sprintf("%d", *rep.TotalReviews)
			}
			fmt.Fprintf(&b, "| %s | %.1f | %s | %s |\n", rep.Source, rep.Score, rep.Status, reviews)
		}
		b.WriteString("\n")
	}

	if len(p.Coverage) > 0 {
		fmt.Fprintf(&b, "## Cobertura\n\n%s\n\n", strings.Join(p.Coverage, ", "))
	}

	if len(p.IncidentHistory.Events) > 0 {
		b.WriteString("## Incidentes recentes\n\n")
		for _, e := range p.IncidentHistory.Events {
			date := e.Date
			if date == "" {
				date = "sem data"
			}
			line := fmt.Sprintf("- **%s** [%s] %s", date, e.Severity, e.Summary)
			if e.Duration != "" {
				line += fmt.Sprintf(" (%s)", e.Duration)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if len(p.Sources) > 0 {
		b.WriteString("## Fontes\n\n")
		for _, group := range groupSources(p.Sources) {
			fmt.Fprintf(&b, "### %s\n\n", group.domain)
			for _, s := range group.sources {
				title := s.Title
				if title == "" {
					title = s.URL
				}
				fmt.Fprintf(&b, "- [%s](%s) (%s, confiabilidade %s)\n", title, s.URL, s.Type, s.Reliability)
			}
			b.WriteString("\n")
		}
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Gerado por telcoscope. Notas e riscos derivam das fontes citadas e não são verificados manualmente._\n")
	}

	_, err := w.Write(b.Bytes())
	return err
}

// RenderSummary prints a one-line summary of the profile
func (r *Renderer) RenderSummary(w io.Writer, p *model.OperatorProfile) {
	fmt.Fprintln(w, Summary(p))
}

// Summary returns the one-line summary of a profile
func Summary(p *model.OperatorProfile) string {
	rep := "reputação desconhecida"
	if len(p.Reputation) > 0 {
		rep = fmt.Sprintf("reputação %.1f (%s)", p.Reputation[0].Score, p.Reputation[0].Source)
	}
	line := fmt.Sprintf("%s: confiabilidade %d/100 %s, risco %d/100 %s, %s, %d fontes",
		p.Name,
		p.DataReliability.Score, p.DataReliability.Rating,
		p.OperationalRisk.Score, p.OperationalRisk.Level,
		rep, len(p.Sources))
	if p.OutageStatus.HasActiveOutage {
		line += ", FALHA ATIVA"
	}
	return line
}

type sourceGroup struct {
	domain  string
	sources []model.SourceMetadata
}

// groupSources groups sources by registrable domain, keeping first-seen order
func groupSources(sources []model.SourceMetadata) []sourceGroup {
	index := make(map[string]int)
	var groups []sourceGroup
	for _, s := range sources {
		domain := source.RegistrableDomain(s.URL)
		if domain == "" {
			domain = "outros"
		}
		i, ok := index[domain]
		if !ok {
			i = len(groups)
			index[domain] = i
			groups = append(groups, sourceGroup{domain: domain})
		}
		groups[i].sources = append(groups[i].sources, s)
	}

	// Official sources first
	sort.SliceStable(groups, func(a, b int) bool {
		return rankGroup(groups[a]) < rankGroup(groups[b])
	})
	return groups
}

func rankGroup(g sourceGroup) int {
	switch g.sources[0].Type {
	case model.SourceTypeOficial:
		return 0
	case model.SourceTypeTerceiros:
		return 1
	default:
		return 2
	}
}

func escapeCell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", "\\|")
}

func writeTo(path string, write func(io.Writer) error) (err error) {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	return write(f)
}
