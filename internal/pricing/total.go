package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	noPricesForTotal = "No he mencionado precios anteriormente para poder calcular un total."
	noPricesForTax   = "No he mencionado precios anteriormente para poder calcular impuestos."
)

// FormatAmount renders v with the currency symbol and two decimals.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%s%.2f", Currency, roundCents(v))
}

// FormatRate renders a percentage without trailing zeros ("12", "12.5").
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}

// PreTax returns the tax-exclusive value of m.
func (m Mention) PreTax() float64 {
	if m.IncludesTax {
		return m.Amount / (1 + VATRate/100)
	}
	return m.Amount
}

// Subtotal sums the tax-exclusive value of every mention at full precision.
func Subtotal(mentions []Mention) float64 {
	var sum float64
	for _, m := range mentions {
		sum += m.PreTax()
	}
	return sum
}

// CalculateTotal builds the itemized answer to a total or tax question.
// When tax.IsTaxQuestion is false only the subtotal is reported.
// Rounding happens only when amounts are rendered.
func CalculateTotal(mentions []Mention, tax TaxQuestion) string {
	if len(mentions) == 0 {
		if tax.IsTaxQuestion {
			return noPricesForTax
		}
		return noPricesForTotal
	}

	subtotal := Subtotal(mentions)
	var b strings.Builder
	if tax.IsTaxQuestion {
		kind, rate := tax.Type, tax.RatePercent
		if kind == TaxNone {
			kind = TaxIVA
		}
		if rate <= 0 {
			rate = VATRate
		}
		taxAmount := subtotal * rate / 100
		label := fmt.Sprintf("%s (%s%%)", kind, FormatRate(rate))
		fmt.Fprintf(&b, "Cálculo de %s:\n", label)
		fmt.Fprintf(&b, "Subtotal: %s\n", FormatAmount(subtotal))
		fmt.Fprintf(&b, "%s: %s\n", label, FormatAmount(taxAmount))
		fmt.Fprintf(&b, "Total con %s: %s\n\n", kind, FormatAmount(subtotal+taxAmount))
		b.WriteString("Desglose de servicios:")
	} else {
		fmt.Fprintf(&b, "El total de los servicios mencionados es: %s\n\n", FormatAmount(subtotal))
		b.WriteString("Desglose:")
	}

	inclusive := false
	for _, m := range mentions {
		fmt.Fprintf(&b, "\n- %s: %s", m.Label, FormatAmount(m.Amount))
		if m.IncludesTax {
			inclusive = true
			b.WriteString(" (IVA incluido)")
		}
	}
	if inclusive {
		b.WriteString("\n\nLos precios con IVA incluido se sumaron sin el impuesto.")
	}
	return b.String()
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
