// Package formatter renders lookup results as the Spanish text the chat
// widget shows. Formatting never fails: a missing field is written as
// Placeholder instead of being dropped.
package formatter

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wolfman30/clinic-chat-assistant/internal/intent"
	"github.com/wolfman30/clinic-chat-assistant/internal/lookup"
	"github.com/wolfman30/clinic-chat-assistant/internal/pricing"
)

// Placeholder stands in for any missing field.
const Placeholder = "No disponible"

// Currency renders an amount with the clinic's symbol and two decimals.
func Currency(v float64) string { return pricing.FormatAmount(v) }

// Plural returns "1 cita" or "3 citas".
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

// Date renders a calendar date as DD/MM/YYYY.
func Date(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format("02/01/2006")
}

var weekdayNames = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

// Weekday returns the Spanish weekday name.
func Weekday(t time.Time) string { return weekdayNames[t.Weekday()] }

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return strings.ToUpper(string(r)) + s[size:]
}

func bulletList(b *strings.Builder, items []string) {
	for _, it := range items {
		b.WriteString("\n- ")
		b.WriteString(it)
	}
}

// Result renders a Found or AmbiguousMultiple result. Other kinds render
// as the empty string; the caller falls through instead.
func Result(res lookup.Result) string {
	if res.Kind == lookup.AmbiguousMultiple {
		return Ambiguous(res.Count)
	}
	if res.Kind != lookup.Found {
		return ""
	}
	switch p := res.Payload.(type) {
	case lookup.Appointments:
		return Appointments(p)
	case lookup.Doctors:
		return Doctors(p)
	case lookup.GeneralInfo:
		return GeneralInfo(p)
	case lookup.Statistics:
		return Statistics(p)
	case lookup.Analysis:
		return Analysis(p)
	case lookup.MedicalArticle:
		return MedicalArticle(p)
	default:
		return ""
	}
}

// Ambiguous asks for detail to tell several matching appointments apart.
func Ambiguous(n int) string {
	return fmt.Sprintf("Encontré %s que coinciden con su búsqueda. Para identificar la suya, ¿podría indicarme el nombre del paciente, la fecha aproximada de la cita o el doctor que le atiende?",
		Plural(n, "cita", "citas"))
}

// ForgotCodePrompt asks for the attributes needed to find a lost code.
func ForgotCodePrompt() string {
	return "No se preocupe, puedo ayudarle a encontrar su número de cita. Por favor indíqueme el nombre completo del paciente, la fecha aproximada de la cita y el doctor o la especialidad."
}

const maxEvidenceRunes = 600

// Evidence is a short rendering of res for the model prompt, or the empty
// string when there is nothing to show.
func Evidence(res lookup.Result) string {
	if res.Kind != lookup.Found {
		return ""
	}
	text := Result(res)
	if utf8.RuneCountInString(text) <= maxEvidenceRunes {
		return text
	}
	return string([]rune(text)[:maxEvidenceRunes]) + "…"
}

// PeriodPhrase turns a period tag into "en el último mes".
func PeriodPhrase(period string) string {
	switch period {
	case "dia":
		return "hoy"
	case "semana":
		return "en la última semana"
	case intent.PeriodMonth:
		return "en el último mes"
	case intent.PeriodQuarter:
		return "en el último trimestre"
	case intent.PeriodSemester:
		return "en el último semestre"
	case intent.PeriodYear:
		return "en el último año"
	default:
		return ""
	}
}
