package formatter

import (
	"fmt"
	"strings"

	"github.com/wolfman30/clinic-chat-assistant/internal/clinic"
	"github.com/wolfman30/clinic-chat-assistant/internal/clinicdata"
	"github.com/wolfman30/clinic-chat-assistant/internal/intent"
	"github.com/wolfman30/clinic-chat-assistant/internal/lookup"
)

// GeneralInfo renders a logistics answer for its category.
func GeneralInfo(p lookup.GeneralInfo) string {
	prof := p.Profile
	if prof == nil {
		prof = clinic.DefaultProfile()
	}
	switch p.Category {
	case intent.CategorySchedule:
		return Schedule(prof, p.Subcategory)
	case intent.CategoryLocation:
		return Location(prof)
	case intent.CategoryContact:
		return Contact(prof)
	case intent.CategoryDocuments:
		return listAnswer("Para su cita le recomendamos presentar:", prof.Documents)
	case intent.CategoryPayments:
		return listAnswer("Aceptamos los siguientes métodos de pago:", prof.PaymentMethods)
	case intent.CategoryInsurance:
		return listAnswer("Trabajamos con las siguientes aseguradoras:", prof.Insurers)
	case intent.CategoryBooking:
		return BookingSteps(prof)
	case intent.CategorySpecialties:
		return listAnswer("Contamos con las siguientes especialidades:", p.Specialties)
	case intent.CategoryPrices:
		return PriceList(p.Services)
	case intent.CategoryAvailability:
		return Availability(p.Days)
	default:
		return Contact(prof)
	}
}

func listAnswer(header string, items []string) string {
	if len(items) == 0 {
		return header + "\n- " + Placeholder
	}
	var b strings.Builder
	b.WriteString(header)
	bulletList(&b, items)
	return b.String()
}

// Schedule renders opening hours, or a single day when sub is "sabado" or
// "domingo".
func Schedule(p *clinic.Profile, sub string) string {
	s := p.Schedule
	switch sub {
	case "sabado":
		return fmt.Sprintf("Los sábados atendemos en horario de %s.", strings.TrimPrefix(orPlaceholder(s.Saturday), "Sábados de "))
	case "domingo":
		return fmt.Sprintf("Domingos: %s. Para emergencias acuda al hospital más cercano.", orPlaceholder(s.Sunday))
	}
	return fmt.Sprintf("Nuestro horario de atención es:\n- %s\n- %s\n- Domingos: %s",
		orPlaceholder(s.Weekdays), orPlaceholder(s.Saturday), orPlaceholder(s.Sunday))
}

// Location renders the address and how to get there.
func Location(p *clinic.Profile) string {
	text := fmt.Sprintf("Estamos ubicados en %s.", orPlaceholder(p.Location.Address))
	if p.Location.Reference != "" {
		text += " " + p.Location.Reference + "."
	}
	return text
}

// Contact renders the front desk channels.
func Contact(p *clinic.Profile) string {
	return fmt.Sprintf("Puede comunicarse con nosotros por:\n- Teléfono: %s\n- WhatsApp: %s\n- Correo: %s",
		orPlaceholder(p.Contact.Phone), orPlaceholder(p.Contact.WhatsApp), orPlaceholder(p.Contact.Email))
}

// BookingSteps renders the numbered booking process.
func BookingSteps(p *clinic.Profile) string {
	var b strings.Builder
	b.WriteString("Para agendar una cita siga estos pasos:")
	for i, step := range p.BookingSteps {
		fmt.Fprintf(&b, "\n%d. %s", i+1, step)
	}
	return b.String()
}

// PriceList renders "- Service: Q150.00" lines so quoted prices can be
// picked up from the transcript later.
func PriceList(services []clinicdata.Service) string {
	var b strings.Builder
	b.WriteString("Estos son nuestros precios:")
	for _, s := range services {
		fmt.Fprintf(&b, "\n- %s: %s", orPlaceholder(s.Name), Currency(s.Price))
	}
	b.WriteString("\n\nLos precios pueden variar según la evaluación médica.")
	return b.String()
}

// Availability renders remaining slots per day.
func Availability(days []lookup.DayAvailability) string {
	if len(days) == 0 {
		return "No tengo información de disponibilidad en este momento."
	}
	if len(days) == 1 {
		return fmt.Sprintf("Para %s %s.", dayLabel(days[0]), slotPhrase(days[0]))
	}
	var b strings.Builder
	b.WriteString("Disponibilidad de citas para los próximos días:")
	for _, d := range days {
		fmt.Fprintf(&b, "\n- %s: %s", capitalize(dayLabel(d)), slotPhrase(d))
	}
	return b.String()
}

func dayLabel(d lookup.DayAvailability) string {
	label := fmt.Sprintf("%s %s", Weekday(d.Date), d.Date.Format("02/01"))
	if d.Label != "" {
		return fmt.Sprintf("%s (%s)", d.Label, label)
	}
	return label
}

func slotPhrase(d lookup.DayAvailability) string {
	switch {
	case !d.Open:
		return "la clínica está cerrada"
	case d.Remaining == 0:
		return "ya no hay espacios disponibles"
	default:
		return Plural(d.Remaining, "espacio disponible", "espacios disponibles")
	}
}
