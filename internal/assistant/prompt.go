package assistant

import (
	"fmt"
	"strings"

	"github.com/wolfman30/clinic-chat-assistant/internal/clinic"
	"github.com/wolfman30/clinic-chat-assistant/internal/formatter"
	"github.com/wolfman30/clinic-chat-assistant/internal/pricing"
	"github.com/wolfman30/clinic-chat-assistant/internal/session"
)

const patientInstructions = `INSTRUCCIONES IMPORTANTES:
1. Sé EXTREMADAMENTE CONCISO. Limita tus respuestas a 1-3 oraciones cortas.
2. Mantén un tono amable y profesional.
3. Identifícate como la IA de %[1]s.
4. Evita explicaciones largas o detalles innecesarios.
5. Proporciona información precisa y directa.
6. Si no conoces la respuesta, sugiere contactar al centro al %[2]s.
7. Cuando menciones precios, usa quetzales (Q) con el formato "Servicio: Q0.00".
8. No inventes citas, doctores ni precios que no aparezcan en este mensaje.
9. Mantén el contexto de la conversación y recuerda información previa relevante.`

const clinicianInstructions = `Responde de manera profesional, clara y concisa. Proporciona información médica precisa cuando sea posible, pero recuerda que no puedes diagnosticar ni recetar medicamentos. Sugiere consultar fuentes oficiales o literatura médica actualizada para información más detallada.`

// systemPrompt assembles the persona, the clinic facts, whatever partial
// data the lookups found and the trailing transcript.
func (p *Pipeline) systemPrompt(t *turn) string {
	prof := p.profile
	var b strings.Builder

	if t.req.CallerIsClinician {
		fmt.Fprintf(&b, "Eres un asistente virtual especializado para médicos de %s.\n", prof.Name)
		if name := strings.TrimSpace(t.req.CallerIdentity); name != "" {
			fmt.Fprintf(&b, "Estás hablando con el/la Dr(a). %s.\n", name)
		}
		b.WriteString("\n" + clinicianInstructions + "\n")
	} else {
		fmt.Fprintf(&b, "Eres la asistente virtual de %s en %s, Guatemala.\n\n", prof.Name, prof.City)
		fmt.Fprintf(&b, patientInstructions, prof.Name, prof.Contact.Phone)
		b.WriteString("\n")
	}

	b.WriteString("\nINFORMACIÓN GENERAL:\n")
	writeClinicFacts(&b, prof)
	fmt.Fprintf(&b, "- %s\n", prof.StatusLine(p.now()))

	if facts := conversationFacts(t.sess); len(facts) > 0 {
		b.WriteString("\nDATOS DE LA CONVERSACIÓN:\n")
		for _, f := range facts {
			b.WriteString("- " + f + "\n")
		}
	}

	if len(t.evidence) > 0 {
		b.WriteString("\nINFORMACIÓN ENCONTRADA:\n")
		for _, res := range t.evidence {
			if ev := formatter.Evidence(res); ev != "" {
				b.WriteString(ev + "\n")
			}
		}
	}

	if history := t.req.PriorTurns.Last(p.historyTurns); len(history) > 0 {
		b.WriteString("\nHISTORIAL DE CONVERSACIÓN RECIENTE:\n")
		for _, tr := range history {
			speaker := "Usuario"
			if tr.Role == session.RoleAssistant {
				speaker = "Asistente"
			}
			fmt.Fprintf(&b, "%s: %s\n", speaker, strings.TrimSpace(tr.Text))
		}
	}

	if !t.req.CallerIsClinician {
		b.WriteString("\nRecuerda: Brevedad y precisión son tu prioridad.")
	}
	return strings.TrimSpace(b.String())
}

func writeClinicFacts(b *strings.Builder, prof *clinic.Profile) {
	fmt.Fprintf(b, "- Dirección: %s\n", prof.Location.Address)
	fmt.Fprintf(b, "- Teléfono: %s\n", prof.Contact.Phone)
	fmt.Fprintf(b, "- Horario: %s, %s\n", prof.Schedule.Weekdays, prof.Schedule.Saturday)
	if len(prof.PaymentMethods) > 0 {
		fmt.Fprintf(b, "- Métodos de pago: %s\n", strings.ToLower(strings.Join(prof.PaymentMethods, ", ")))
	}
}

func conversationFacts(sess *session.Context) []string {
	var facts []string
	if sess.IdentifiedUserName != "" {
		facts = append(facts, "Nombre del usuario: "+sess.IdentifiedUserName)
	}
	if sess.IdentifiedDoctorName != "" {
		facts = append(facts, "Doctor mencionado: "+sess.IdentifiedDoctorName)
	}
	if sess.LastAppointmentCode != "" {
		facts = append(facts, "Último número de cita mencionado: "+sess.LastAppointmentCode)
	}
	for _, m := range sess.MentionedPrices {
		facts = append(facts, fmt.Sprintf("Precio mencionado: %s %s", m.Label, pricing.FormatAmount(m.Amount)))
	}
	return facts
}
