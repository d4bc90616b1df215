package pricing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/wolfman30/clinic-chat-assistant/internal/textnorm"
)

// TaxType names the tax a question asks about.
type TaxType string

const (
	TaxNone    TaxType = ""
	TaxIVA     TaxType = "IVA"
	TaxISR     TaxType = "ISR"
	TaxGeneric TaxType = "Impuesto"
)

const (
	// VATRate is the Guatemalan IVA percentage.
	VATRate = 12.0
	// IncomeTaxRate is the ISR percentage quoted for services.
	IncomeTaxRate = 5.0
)

// TaxQuestion is the result of ClassifyTaxQuestion.
type TaxQuestion struct {
	IsTaxQuestion bool    `json:"is_tax_question"`
	Type          TaxType `json:"type,omitempty"`
	RatePercent   float64 `json:"rate_percent,omitempty"`
}

type taxRule struct {
	kind     TaxType
	rate     float64
	patterns []*regexp.Regexp
}

// Evaluated in order; the first matching rule wins.
var taxRules = []taxRule{
	{
		kind: TaxIVA,
		rate: VATRate,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\biva\b`),
			regexp.MustCompile(`impuesto al valor agregado`),
			regexp.MustCompile(`\b12\s?%`),
			regexp.MustCompile(`doce por ciento`),
		},
	},
	{
		kind: TaxISR,
		rate: IncomeTaxRate,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bisr\b`),
			regexp.MustCompile(`impuesto sobre la renta`),
			regexp.MustCompile(`(^|[^\d.,])5\s?%`),
			regexp.MustCompile(`cinco por ciento`),
		},
	},
}

var (
	genericTaxPattern = regexp.MustCompile(`\bimpuestos?\b`)
	explicitRate      = regexp.MustCompile(`(\d{1,2}(?:[.,]\d+)?)\s?%`)
)

// ClassifyTaxQuestion detects whether text asks for a tax calculation.
// VAT wording wins over income tax, which wins over a bare "impuesto".
// A bare "impuesto" is IVA unless an explicit percentage other than the VAT
// rate is given, in which case it is reported as a generic tax.
func ClassifyTaxQuestion(text string) TaxQuestion {
	norm := textnorm.Normalize(text)
	for _, rule := range taxRules {
		for _, p := range rule.patterns {
			if p.MatchString(norm) {
				return TaxQuestion{IsTaxQuestion: true, Type: rule.kind, RatePercent: rule.rate}
			}
		}
	}
	if genericTaxPattern.MatchString(norm) {
		q := TaxQuestion{IsTaxQuestion: true, Type: TaxIVA, RatePercent: VATRate}
		if m := explicitRate.FindStringSubmatch(norm); m != nil {
			if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64); err == nil && v > 0 && v != VATRate {
				q.Type, q.RatePercent = TaxGeneric, v
			}
		}
		return q
	}
	return TaxQuestion{}
}

var (
	totalWords       = regexp.MustCompile(`\b(total|suma|sumar|sumatoria|sumando)\b`)
	totalPhrases     = []string{"cuanto es", "cuanto seria", "en total", "todo junto", "precio total", "costo total"}
	countingQuestion = regexp.MustCompile(`\bcuant[oa]s\b`)
	statisticTotal   = regexp.MustCompile(`\btotal(es)? de (pacientes|citas|consultas|medicos|doctores|ingresos|servicios prestados)\b`)
)

// IsTotalQuestion reports whether text asks to add up previously quoted prices.
// Counting questions ("cuántos pacientes...") are not totals.
func IsTotalQuestion(text string) bool {
	norm := textnorm.Normalize(text)
	if countingQuestion.MatchString(norm) || statisticTotal.MatchString(norm) {
		return false
	}
	return totalWords.MatchString(norm) || textnorm.ContainsAny(norm, totalPhrases...)
}
