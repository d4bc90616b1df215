package formatter

import (
	"fmt"
	"strings"

	"github.com/wolfman30/clinic-chat-assistant/internal/clinicdata"
	"github.com/wolfman30/clinic-chat-assistant/internal/lookup"
)

// Appointment renders one record in the fixed field order: code, date,
// time, doctor, specialty, reason, status, then patient when allowed.
func Appointment(a clinicdata.Appointment, showPatient bool) string {
	doctor := Placeholder
	if strings.TrimSpace(a.Doctor.Name) != "" {
		doctor = "Dr(a). " + a.Doctor.Name
	}
	lines := []string{
		"Número de cita: " + orPlaceholder(a.Code),
		"Fecha: " + Date(a.Date),
		"Hora: " + orPlaceholder(a.Time),
		"Doctor: " + doctor,
		"Especialidad: " + orPlaceholder(a.Doctor.Specialty),
		"Motivo: " + orPlaceholder(a.Reason),
		"Estado: " + capitalize(orPlaceholder(a.Status)),
	}
	if showPatient {
		lines = append(lines, "Paciente: "+orPlaceholder(a.Patient.Name))
	}
	return strings.Join(lines, "\n")
}

// Appointments renders one or several appointment records.
func Appointments(p lookup.Appointments) string {
	switch len(p.Items) {
	case 0:
		return "No encontré citas con esos datos."
	case 1:
		return "Encontré la siguiente cita:\n\n" + Appointment(p.Items[0], p.ShowPatient)
	}
	blocks := make([]string, 0, len(p.Items))
	for _, a := range p.Items {
		blocks = append(blocks, Appointment(a, p.ShowPatient))
	}
	return fmt.Sprintf("Encontré %s:\n\n%s", Plural(len(p.Items), "cita", "citas"), strings.Join(blocks, "\n\n"))
}

// Doctors lists doctors with their specialty.
func Doctors(p lookup.Doctors) string {
	var b strings.Builder
	if p.Specialty != "" {
		fmt.Fprintf(&b, "Contamos con %s de %s:", Plural(len(p.Items), "especialista", "especialistas"), p.Specialty)
	} else {
		fmt.Fprintf(&b, "Estos son los doctores que encontré (%d):", len(p.Items))
	}
	for _, d := range p.Items {
		fmt.Fprintf(&b, "\n- Dr(a). %s (%s)", orPlaceholder(d.Name), orPlaceholder(d.Specialty))
		if d.Email != "" {
			fmt.Fprintf(&b, ", %s", d.Email)
		}
	}
	b.WriteString("\n\nPara agendar una cita puede llamarnos o escribirnos por WhatsApp.")
	return b.String()
}

// MedicalArticle renders an education excerpt with a care disclaimer.
func MedicalArticle(p lookup.MedicalArticle) string {
	return fmt.Sprintf("%s\n\n%s\n\nEsta información es orientativa y no sustituye una consulta. Si tiene síntomas, agende una cita con nuestros médicos.",
		orPlaceholder(p.Article.Title), orPlaceholder(p.Excerpt))
}
