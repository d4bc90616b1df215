package intent

import (
	"regexp"
	"strings"

	"github.com/wolfman30/clinic-chat-assistant/internal/pricing"
	"github.com/wolfman30/clinic-chat-assistant/internal/textnorm"
)

// Hints carries what the conversation already established, so a classifier
// can complete an intent the user only referred to ("my appointment").
type Hints struct {
	LastAppointmentCode string
	UserName            string
}

// turn is the classifier input: raw text for extracting names, normalized
// text for every trigger check.
type turn struct {
	raw   string
	norm  string
	hints Hints
}

type classifier struct {
	kind Kind
	fn   func(turn) (Intent, bool)
}

// classifiers is the canonical table. Every entry runs on every turn.
var classifiers = []classifier{
	{KindTotal, classifyTotal},
	{KindTax, classifyTax},
	{KindForgotCode, classifyForgotCode},
	{KindAppointmentByCode, classifyAppointmentByCode},
	{KindAppointmentByAttributes, classifyAppointmentByAttributes},
	{KindDoctor, classifyDoctor},
	{KindMedicalInfo, classifyMedicalInfo},
	{KindGeneralInfo, classifyGeneralInfo},
	{KindStatistics, classifyStatistics},
	{KindAdvancedAnalytics, classifyAdvancedAnalytics},
}

// Classify runs every classifier over text.
func Classify(text string, hints Hints) Set {
	t := turn{raw: text, norm: textnorm.Normalize(text), hints: hints}
	var set Set
	if t.norm == "" {
		return set
	}
	for _, c := range classifiers {
		if in, ok := c.fn(t); ok {
			set.add(in)
		}
	}
	return set
}

func classifyTotal(t turn) (Intent, bool) {
	if pricing.IsTotalQuestion(t.raw) {
		return TotalRequest{}, true
	}
	return nil, false
}

func classifyTax(t turn) (Intent, bool) {
	q := pricing.ClassifyTaxQuestion(t.raw)
	if !q.IsTaxQuestion {
		return nil, false
	}
	return TaxRequest{Type: q.Type, RatePercent: q.RatePercent}, true
}

var forgotCodePattern = regexp.MustCompile(`\b(olvide|no recuerdo|no me acuerdo de|no se|perdi|no tengo|no encuentro)\s+(mi|el)\s+(numero|codigo)\b`)

func classifyForgotCode(t turn) (Intent, bool) {
	if !forgotCodePattern.MatchString(t.norm) {
		return nil, false
	}
	f := ForgotAppointmentCode{
		PatientName: ExtractPatientName(t.raw),
		DoctorName:  ExtractDoctorName(t.raw),
		Specialty:   ExtractSpecialty(t.norm),
	}
	if f.PatientName == "" {
		f.PatientName = t.hints.UserName
	}
	if d, ok := ExtractDate(t.raw); ok {
		f.ApproxDate = d
	}
	return f, true
}

var ownAppointmentPhrases = []string{
	"numero de cita", "cita numero", "cita no.", "cita #", "codigo de cita", "mi cita",
	"informacion de la cita", "detalles de cita", "detalles de la cita", "consultar cita",
	"buscar cita", "estado de cita", "estado de la cita", "datos de mi cita", "mi consulta",
	"a que hora es mi", "tengo cita", "mis citas",
}

func isOwnAppointment(norm string) bool {
	return textnorm.ContainsAny(norm, ownAppointmentPhrases...)
}

func classifyAppointmentByCode(t turn) (Intent, bool) {
	code, hasCode := ExtractCode(t.raw)
	if hasCode {
		return AppointmentByCode{Code: code}, true
	}
	if !isOwnAppointment(t.norm) || isScheduleListing(t.norm) {
		return nil, false
	}
	if t.hints.LastAppointmentCode != "" {
		return AppointmentByCode{Code: t.hints.LastAppointmentCode, FromContext: true}, true
	}
	return AppointmentByCode{}, true
}

var attributeTriggers = []string{
	"quien tiene cita", "quien tiene una cita", "que paciente tiene", "que pacientes tienen",
	"cita programada", "cita agendada", "citas programadas", "citas agendadas",
	"cita para", "citas para", "consulta de", "consulta para", "citas del", "citas con",
	"cita con", "citas de hoy", "citas pendientes", "citas canceladas", "citas completadas",
	"citas realizadas", "proximas citas", "citas pasadas", "citas anteriores",
}

var ownSchedulePattern = regexp.MustCompile(`\b(mis (?:[a-z]+ )?(?:citas|consultas|pacientes)|mi agenda)\b`)

// isScheduleListing reports a question about a whole schedule ("mis citas
// de hoy"), which must not resolve to the last appointment discussed.
func isScheduleListing(norm string) bool {
	if !ownSchedulePattern.MatchString(norm) {
		return false
	}
	return ExtractWindow(norm) != "" || ExtractStatus(norm) != ""
}

var priceWords = []string{"cuesta", "precio", "costo", "tarifa", "cuanto vale", "cobran"}

func classifyAppointmentByAttributes(t turn) (Intent, bool) {
	own := ownSchedulePattern.MatchString(t.norm)
	if (!own && !textnorm.ContainsAny(t.norm, attributeTriggers...)) || textnorm.ContainsAny(t.norm, priceWords...) {
		return nil, false
	}
	a := AppointmentByAttributes{
		PatientName: ExtractPatientName(t.raw),
		DoctorName:  ExtractDoctorName(t.raw),
		Specialty:   ExtractSpecialty(t.norm),
		Topic:       ExtractTopic(t.norm),
		Status:      ExtractStatus(t.norm),
		Own:         own,
	}
	if d, ok := ExtractDate(t.raw); ok {
		a.Date = d
	} else {
		a.Window = ExtractWindow(t.norm)
	}
	if tm, ok := ExtractTime(t.raw); ok {
		a.Time = tm
	}
	if !a.HasFilters() {
		return nil, false
	}
	return a, true
}

var (
	doctorTriggers   = []string{"doctor", "doctora", "dr.", "dra.", "medico", "especialista", "quien atiende"}
	specialtyAskers  = []string{"tienen", "hay ", "busco", "necesito", "recomienda"}
	doctorAbbrevOnly = regexp.MustCompile(`\b(dr|dra)\b`)
)

func classifyDoctor(t turn) (Intent, bool) {
	norm := withoutClinicName(t.norm)
	sp := ExtractSpecialty(norm)
	triggered := textnorm.ContainsAny(norm, doctorTriggers...) || doctorAbbrevOnly.MatchString(norm)
	if !triggered && !(sp != nil && textnorm.ContainsAny(norm, specialtyAskers...)) {
		return nil, false
	}
	return DoctorQuery{Specialty: sp, Name: ExtractDoctorName(t.raw)}, true
}

var medicalTriggers = regexp.MustCompile(`\b(que es|que son|sintomas?|tratamientos?|causas?|como se (trata|cura|contagia|previene)|cura para|como prevenir|prevencion|contagio|signos de|complicaciones)\b`)

func classifyMedicalInfo(t turn) (Intent, bool) {
	if !medicalTriggers.MatchString(t.norm) {
		return nil, false
	}
	return MedicalInfoQuery{Topic: ExtractCondition(t.norm)}, true
}

// withoutClinicName drops "centro medico" so the clinic's own name does not
// read as a question about doctors.
func withoutClinicName(norm string) string {
	return strings.ReplaceAll(norm, "centro medico", "")
}

var (
	weekdayWords = regexp.MustCompile(`\b(lunes|martes|miercoles|jueves|viernes|entre semana)\b`)
	todayWords   = regexp.MustCompile(`\bhoy\b`)
	tomorrowWord = regexp.MustCompile(`\bmanana\b`)
	weekWords    = regexp.MustCompile(`\bsemana\b`)
)

func classifyGeneralInfo(t turn) (Intent, bool) {
	for _, g := range generalInfoTriggers {
		if !textnorm.ContainsAny(t.norm, g.triggers...) {
			continue
		}
		if g.category == CategorySchedule && isOwnAppointment(t.norm) {
			continue
		}
		return GeneralInfoQuery{Category: g.category, Subcategory: subcategory(g.category, t.norm)}, true
	}
	return nil, false
}

func subcategory(c Category, norm string) string {
	switch c {
	case CategorySchedule:
		switch {
		case strings.Contains(norm, "sabado"):
			return "sabado"
		case strings.Contains(norm, "domingo"):
			return "domingo"
		case weekdayWords.MatchString(norm):
			return "semana"
		}
	case CategoryPrices:
		return ExtractService(norm)
	case CategoryAvailability:
		switch {
		case todayWords.MatchString(norm):
			return "hoy"
		case tomorrowWord.MatchString(norm):
			return "manana"
		case weekWords.MatchString(norm):
			return "semana"
		}
	}
	return ""
}
