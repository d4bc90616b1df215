package intent

import (
	"regexp"

	"github.com/wolfman30/clinic-chat-assistant/internal/textnorm"
)

// Statistics domains.
const (
	DomainTrends       = "tendencias"
	DomainSatisfaction = "satisfaccion"
	DomainSeasonal     = "temporada"
	DomainFinancial    = "financiero"
	DomainRequirements = "requisitos"
	DomainPatients     = "pacientes"
	DomainDoctors      = "medicos"
	DomainAppointments = "citas"
	DomainGeneral      = "general"
)

var statisticsTriggers = regexp.MustCompile(`\b(cuant[oa]s|promedio|estadisticas?|reporte|porcentaje|total de|cantidad de|numero de (pacientes|citas|consultas|medicos|doctores)|indicadores?|resumen de|ingresos|satisfaccion|mas comun(es)?|mas frecuentes?|tendencias?)\b`)

// Phrases that make a counting question about availability, not statistics.
var availabilityWords = []string{"disponible", "disponibilidad", "espacio", "cupo"}

type namedStatistic struct {
	name     string
	triggers []string
}

type statisticsDomain struct {
	domain            string
	triggers          []string
	named             []namedStatistic
	requiresClinician bool
}

// Evaluated in order; the first domain with a matching trigger wins.
var statisticsDomains = []statisticsDomain{
	{
		domain:            DomainTrends,
		triggers:          []string{"tendencia", "reconsulta", "crecimiento", "evolucion", "comparado con"},
		named:             []namedStatistic{{"reconsultas", []string{"reconsulta"}}, {"crecimiento_pacientes", []string{"crecimiento"}}},
		requiresClinician: true,
	},
	{
		domain:   DomainSatisfaction,
		triggers: []string{"satisfaccion", "calificacion", "encuesta", "valoracion", "opinion"},
		named:    []namedStatistic{{"satisfaccion_promedio", []string{"promedio", "calificacion"}}, {"quejas", []string{"queja", "reclamo"}}},
	},
	{
		domain:   DomainSeasonal,
		triggers: []string{"temporada", "estacional", "epoca del ano", "lluvias", "invierno", "verano"},
		named:    []namedStatistic{{"enfermedades_temporada", []string{"enfermedad"}}},
	},
	{
		domain:   DomainFinancial,
		triggers: []string{"ingreso", "facturacion", "ganancia", "gasto", "financier", "costo promedio", "dinero"},
		named: []namedStatistic{
			{"costo_tratamiento", []string{"tratamiento"}},
			{"ingresos", []string{"ingreso"}},
			{"ticket_promedio", []string{"promedio"}},
		},
	},
	{
		domain:   DomainRequirements,
		triggers: []string{"requisito", "documentacion"},
	},
	{
		domain:   DomainPatients,
		triggers: []string{"paciente"},
		named: []namedStatistic{
			{"pacientes_nuevos", []string{"nuevo"}},
			{"edad_promedio", []string{"edad"}},
			{"pacientes_por_genero", []string{"genero", "sexo", "mujeres", "hombres"}},
			{"pacientes_atendidos", []string{"atendid"}},
		},
		requiresClinician: true,
	},
	{
		domain:   DomainDoctors,
		triggers: []string{"medico", "doctor", "especialista", "especialidad"},
		named: []namedStatistic{
			{"medicos_por_especialidad", []string{"por especialidad"}},
			{"medico_mas_consultas", []string{"mas consultas", "mas citas", "mas pacientes"}},
		},
	},
	{
		domain:   DomainAppointments,
		triggers: []string{"cita", "consulta"},
		named: []namedStatistic{
			{"citas_canceladas", []string{"cancelad"}},
			{"tiempo_espera_promedio", []string{"espera"}},
			{"citas_por_especialidad", []string{"por especialidad"}},
			{"citas_por_dia", []string{"por dia", "diaria"}},
			{"citas_por_mes", []string{"por mes", "mensual"}},
		},
	},
}

var statisticsPeriods = []struct {
	period  string
	pattern *regexp.Regexp
}{
	{"dia", regexp.MustCompile(`\b(hoy|diari[oa]s?|por dia)\b`)},
	{"semana", regexp.MustCompile(`\b(semana|semanal(es)?)\b`)},
	{PeriodQuarter, regexp.MustCompile(`\b(trimestre|trimestral(es)?)\b`)},
	{PeriodSemester, regexp.MustCompile(`\b(semestre|semestral(es)?)\b`)},
	{PeriodMonth, regexp.MustCompile(`\b(mes|meses|mensual(es)?)\b`)},
	{PeriodYear, regexp.MustCompile(`\b(ano|anos|anio|anual(es)?)\b`)},
}

func detectPeriod(norm string) string {
	for _, p := range statisticsPeriods {
		if p.pattern.MatchString(norm) {
			return p.period
		}
	}
	return ""
}

func classifyStatistics(t turn) (Intent, bool) {
	norm := withoutClinicName(t.norm)
	if !statisticsTriggers.MatchString(norm) {
		return nil, false
	}
	if isOwnAppointment(norm) || textnorm.ContainsAny(norm, availabilityWords...) {
		return nil, false
	}
	q := StatisticsQuery{Domain: DomainGeneral, Period: detectPeriod(norm)}
	for _, d := range statisticsDomains {
		if !textnorm.ContainsAny(norm, d.triggers...) {
			continue
		}
		q.Domain = d.domain
		q.RequiresClinician = d.requiresClinician
		for _, n := range d.named {
			if textnorm.ContainsAny(norm, n.triggers...) {
				q.FilterName = n.name
				break
			}
		}
		break
	}
	return q, true
}

var analyticsTriggers = []string{"tendencia", "correlacion", "tasa"}

func classifyAdvancedAnalytics(t turn) (Intent, bool) {
	n := t.norm
	if !textnorm.ContainsAny(n, analyticsTriggers...) {
		return nil, false
	}
	var kind AnalysisKind
	switch {
	case textnorm.ContainsAll(n, "tendencia", "especialidad") && textnorm.ContainsAny(n, "cita", "consulta"):
		kind = AnalysisSpecialtyTrend
	case textnorm.ContainsAll(n, "tasa", "reconsulta"):
		kind = AnalysisFollowUpRate
	case textnorm.ContainsAll(n, "correlacion", "edad"):
		kind = AnalysisAgeCorrelation
	default:
		return nil, false
	}
	period := detectPeriod(n)
	switch period {
	case PeriodMonth, PeriodQuarter, PeriodSemester, PeriodYear:
	default:
		period = PeriodYear
	}
	return AdvancedAnalyticsQuery{Analysis: kind, Period: period}, true
}
