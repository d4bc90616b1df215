package formatter

import (
	"fmt"
	"strings"

	"github.com/wolfman30/clinic-chat-assistant/internal/clinicdata"
	"github.com/wolfman30/clinic-chat-assistant/internal/intent"
	"github.com/wolfman30/clinic-chat-assistant/internal/lookup"
)

var domainTitles = map[string]string{
	intent.DomainTrends:       "tendencias",
	intent.DomainSatisfaction: "satisfacción",
	intent.DomainSeasonal:     "temporada",
	intent.DomainFinancial:    "finanzas",
	intent.DomainRequirements: "requisitos",
	intent.DomainPatients:     "pacientes",
	intent.DomainDoctors:      "médicos",
	intent.DomainAppointments: "citas",
}

func statLabel(s clinicdata.Statistic) string {
	if s.Description != "" {
		return s.Description
	}
	return capitalize(strings.ReplaceAll(orPlaceholder(s.Name), "_", " "))
}

// Statistics renders a single named statistic as a sentence and anything
// else as a labeled list. Values follow an arrow, never a colon, so the
// price extractor skips them.
func Statistics(p lookup.Statistics) string {
	if p.Named && len(p.Rows) == 1 {
		s := p.Rows[0]
		period := PeriodPhrase(s.Period)
		if period != "" {
			period = " " + period
		}
		return fmt.Sprintf("%s%s → %s.", statLabel(s), period, orPlaceholder(s.Value))
	}
	var b strings.Builder
	if title, ok := domainTitles[p.Domain]; ok {
		fmt.Fprintf(&b, "Estadísticas de %s:", title)
	} else {
		b.WriteString("Estadísticas de la clínica:")
	}
	for _, s := range p.Rows {
		fmt.Fprintf(&b, "\n- %s", statLabel(s))
		if s.Period != "" {
			fmt.Fprintf(&b, " (%s)", PeriodPhrase(s.Period))
		}
		fmt.Fprintf(&b, " → %s", orPlaceholder(s.Value))
	}
	return b.String()
}

var analysisTitles = map[intent.AnalysisKind]string{
	intent.AnalysisSpecialtyTrend: "Tendencia de citas por especialidad",
	intent.AnalysisFollowUpRate:   "Tasa de reconsultas por especialidad",
	intent.AnalysisAgeCorrelation: "Relación entre edad y frecuencia de consultas",
}

// Analysis renders the rows of an advanced analysis.
func Analysis(p lookup.Analysis) string {
	var b strings.Builder
	title, ok := analysisTitles[p.Kind]
	if !ok {
		title = "Análisis"
	}
	b.WriteString(title)
	if phrase := PeriodPhrase(p.Period); phrase != "" {
		b.WriteString(" " + phrase)
	}
	b.WriteString(":")
	for _, r := range p.Rows {
		switch p.Kind {
		case intent.AnalysisSpecialtyTrend:
			fmt.Fprintf(&b, "\n- %s, %s → %s", r.Group, orPlaceholder(r.Period), Plural(r.Count, "cita", "citas"))
		case intent.AnalysisFollowUpRate:
			fmt.Fprintf(&b, "\n- %s → %.1f%% (%d de %s)", r.Group, r.Rate, r.Count, Plural(r.Total, "paciente", "pacientes"))
		case intent.AnalysisAgeCorrelation:
			fmt.Fprintf(&b, "\n- %s años → %s, %s, %.1f citas por paciente",
				r.Group, Plural(r.Count, "cita", "citas"), Plural(r.Total, "paciente", "pacientes"), r.Rate)
		default:
			fmt.Fprintf(&b, "\n- %s → %d", r.Group, r.Count)
		}
	}
	if p.Computed {
		b.WriteString("\n\nCalculado a partir de las citas registradas.")
	}
	return b.String()
}
