package assistant

import (
	"fmt"
	"strings"

	"github.com/wolfman30/clinic-chat-assistant/internal/clinic"
	"github.com/wolfman30/clinic-chat-assistant/internal/clinicdata"
	"github.com/wolfman30/clinic-chat-assistant/internal/formatter"
	"github.com/wolfman30/clinic-chat-assistant/internal/intent"
	"github.com/wolfman30/clinic-chat-assistant/internal/lookup"
)

// cannedPrices is the price table quoted when the store cannot be reached.
var cannedPrices = []clinicdata.Service{
	{Name: "Consulta general", Price: 150},
	{Name: "Consulta de pediatría", Price: 200},
	{Name: "Consulta de ginecología", Price: 250},
	{Name: "Consulta de cardiología", Price: 300},
}

// staticCategories can be answered from the profile alone.
var staticCategories = map[intent.Category]bool{
	intent.CategorySchedule:  true,
	intent.CategoryLocation:  true,
	intent.CategoryContact:   true,
	intent.CategoryDocuments: true,
	intent.CategoryPayments:  true,
	intent.CategoryInsurance: true,
	intent.CategoryBooking:   true,
}

func greeting(prof *clinic.Profile, clinician bool, identity string) string {
	if clinician {
		if name := strings.TrimSpace(identity); name != "" {
			return fmt.Sprintf("¡Hola, Dr(a). %s! Soy el asistente virtual para médicos de %s. ¿En qué puedo ayudarle?", name, prof.Name)
		}
		return fmt.Sprintf("¡Hola! Soy el asistente virtual para médicos de %s. ¿En qué puedo ayudarle?", prof.Name)
	}
	return fmt.Sprintf("¡Hola! Soy la asistente virtual de %s. ¿En qué puedo ayudarle hoy?", prof.Name)
}

func emergencyReply(prof *clinic.Profile) string {
	return fmt.Sprintf("Si se trata de una emergencia, acuda de inmediato al hospital más cercano o llame a los Bomberos Voluntarios al 122. Para una consulta con nuestros médicos, comuníquese al %s.", prof.Contact.Phone)
}

func appointmentHint(prof *clinic.Profile) string {
	return fmt.Sprintf("Para consultar su cita, indíqueme su número de cita de 4 dígitos. Si no lo recuerda, puedo buscarla con el nombre del paciente y la fecha aproximada, o puede llamarnos al %s.", prof.Contact.Phone)
}

// genericReplies is the pool picked from when nothing else matches.
func genericReplies(prof *clinic.Profile) []string {
	phone := prof.Contact.Phone
	return []string{
		fmt.Sprintf("Para información más precisa, llame a %s al %s. ¿Puedo ayudarle en algo más?", prof.Name, phone),
		fmt.Sprintf("%s está en %s. Para más detalles, llame al %s.", prof.Name, prof.Location.Address, phone),
		fmt.Sprintf("Ofrecemos diversos servicios médicos. Para consultas específicas o agendar cita, llame al %s.", phone),
		fmt.Sprintf("Nuestro horario es %s y %s. ¿Necesita algo más?", strings.ToLower(prof.Schedule.Weekdays), strings.ToLower(prof.Schedule.Saturday)),
		fmt.Sprintf("Para agendar una cita, llame al %s o use el formulario en nuestra web. Estoy para servirle.", phone),
		"Los documentos necesarios son: " + strings.ToLower(strings.Join(prof.Documents, ", ")) + ".",
		"Aceptamos " + strings.ToLower(strings.Join(prof.PaymentMethods, ", ")) + ". ¿Requiere información adicional?",
	}
}

func terminalMessage(prof *clinic.Profile) string {
	return fmt.Sprintf("Lo siento, estoy teniendo problemas para responder. Por favor, intenta de nuevo o comunícate directamente al %s.", prof.Contact.Phone)
}

// cannedReply picks a topic-matched reply using the turn's classifiers,
// or a generic one at random.
func (p *Pipeline) cannedReply(t *turn) string {
	prof := p.profile
	text := t.req.Text
	switch {
	case intent.IsEmergency(text):
		return emergencyReply(prof)
	case len(t.evidence) > 0:
		if a, ok := t.evidence[0].Payload.(lookup.MedicalArticle); ok {
			return formatter.MedicalArticle(a)
		}
	}

	if q, ok := intent.Find[intent.GeneralInfoQuery](t.intents); ok {
		switch {
		case staticCategories[q.Category]:
			return formatter.GeneralInfo(lookup.GeneralInfo{Category: q.Category, Subcategory: q.Subcategory, Profile: prof})
		case q.Category == intent.CategoryPrices:
			return formatter.PriceList(cannedPrices) + fmt.Sprintf("\n\nPara otros servicios llame al %s.", prof.Contact.Phone)
		}
	}
	if t.intents.Has(intent.KindAppointmentByCode) || t.intents.Has(intent.KindForgotCode) ||
		t.intents.Has(intent.KindAppointmentByAttributes) {
		return appointmentHint(prof)
	}
	if intent.IsGreeting(text) {
		return greeting(prof, t.req.CallerIsClinician, t.req.CallerIdentity)
	}
	if t.req.CallerIsClinician {
		return fmt.Sprintf("No pude generar una respuesta en este momento. Para información clínica detallada consulte las guías oficiales o comuníquese con la coordinación médica al %s.", prof.Contact.Phone)
	}

	pool := genericReplies(prof)
	i := p.pick(len(pool))
	if i < 0 || i >= len(pool) {
		i = 0
	}
	return pool[i]
}
