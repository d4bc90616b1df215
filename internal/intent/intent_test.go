package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-chat-assistant/internal/pricing"
)

func TestClassifyTotalsAndTax(t *testing.T) {
	set := Classify("¿Cuál es el total con IVA?", Hints{})
	assert.True(t, set.Has(KindTotal))
	tax, ok := Find[TaxRequest](set)
	require.True(t, ok)
	assert.Equal(t, pricing.TaxIVA, tax.Type)
	assert.Equal(t, 12.0, tax.RatePercent)
}

func TestClassifyAppointmentByCode(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		hints    Hints
		wantCode string
		fromCtx  bool
	}{
		{"bare code", "Quiero información sobre la cita 0042", Hints{}, "0042", false},
		{"hash code", "estado de la cita #1234", Hints{}, "1234", false},
		{"context code", "¿A qué hora es mi cita?", Hints{LastAppointmentCode: "0042"}, "0042", true},
		{"no code known", "¿A qué hora es mi cita?", Hints{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Find[AppointmentByCode](Classify(tt.text, tt.hints))
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.fromCtx, got.FromContext)
		})
	}
}

func TestClassifyCodeIgnoresPhoneDatesAndYears(t *testing.T) {
	for _, text := range []string{
		"Llame al 4644-9158",
		"cita del 15/03/2025 a las 10:30",
		"estadísticas del 2024",
		"cuesta Q1500",
		"pagué Q 1500 ayer",
		"me cobraron $ 2000",
		"fueron 1200 quetzales",
	} {
		_, ok := ExtractCode(text)
		assert.False(t, ok, text)
	}
	code, ok := ExtractCode("pagué Q 1500 por la cita 0042")
	require.True(t, ok)
	assert.Equal(t, "0042", code)
}

func TestClassifyForgotCode(t *testing.T) {
	set := Classify("Olvidé mi número de cita, me llamo Ana López y tengo cita con la doctora Ramírez", Hints{})
	f, ok := Find[ForgotAppointmentCode](set)
	require.True(t, ok)
	assert.Equal(t, "Ana López", f.PatientName)
	assert.Equal(t, "Ramírez", f.DoctorName)
	assert.True(t, f.HasFilters())

	f, ok = Find[ForgotAppointmentCode](Classify("no recuerdo mi número", Hints{UserName: "Luis"}))
	require.True(t, ok)
	assert.Equal(t, "Luis", f.PatientName)
}

func TestClassifyAppointmentByAttributes(t *testing.T) {
	set := Classify("¿Quién tiene cita el 15/03/25 a las 9:30 para ultrasonido?", Hints{})
	a, ok := Find[AppointmentByAttributes](set)
	require.True(t, ok)
	assert.Equal(t, "2025-03-15", a.Date)
	assert.Equal(t, "09:30", a.Time)
	assert.Equal(t, "ultrasonido", a.Topic)

	a, ok = Find[AppointmentByAttributes](Classify("citas con el doctor Pérez", Hints{}))
	require.True(t, ok)
	assert.Equal(t, "Pérez", a.DoctorName)

	assert.False(t, Classify("¿Cuánto cuesta la consulta de pediatría?", Hints{}).Has(KindAppointmentByAttributes))
	assert.False(t, Classify("quien tiene cita", Hints{}).Has(KindAppointmentByAttributes))
}

func TestClassifyOwnSchedule(t *testing.T) {
	tests := []struct {
		text   string
		window Window
		status string
	}{
		{"mis citas de hoy", WindowToday, ""},
		{"¿Cuáles son mis próximas citas?", WindowUpcoming, ""},
		{"muéstrame mi agenda de citas pasadas", WindowPast, ""},
		{"mis citas canceladas", "", StatusCancelled},
		{"mis citas pendientes para hoy", WindowToday, StatusPending},
		{"mis consultas realizadas", "", StatusCompleted},
	}
	for _, tt := range tests {
		set := Classify(tt.text, Hints{LastAppointmentCode: "0042"})
		a, ok := Find[AppointmentByAttributes](set)
		require.True(t, ok, tt.text)
		assert.True(t, a.Own, tt.text)
		assert.Equal(t, tt.window, a.Window, tt.text)
		assert.Equal(t, tt.status, a.Status, tt.text)
		assert.False(t, a.NamesRecord(), tt.text)
		assert.False(t, set.Has(KindAppointmentByCode), tt.text)
	}

	a, ok := Find[AppointmentByAttributes](Classify("citas de hoy con la doctora Méndez", Hints{}))
	require.True(t, ok)
	assert.False(t, a.Own)
	assert.Equal(t, WindowToday, a.Window)
	assert.Equal(t, "Méndez", a.DoctorName)

	a, ok = Find[AppointmentByAttributes](Classify("mis citas del 15/03/2025", Hints{}))
	require.True(t, ok)
	assert.Equal(t, "2025-03-15", a.Date)
	assert.Empty(t, a.Window)
}

func TestEveryIntentReportsItsKind(t *testing.T) {
	tests := []struct {
		in   Intent
		kind Kind
	}{
		{TotalRequest{}, KindTotal},
		{TaxRequest{Type: pricing.TaxIVA}, KindTax},
		{AppointmentByCode{Code: "0042"}, KindAppointmentByCode},
		{ForgotAppointmentCode{}, KindForgotCode},
		{AppointmentByAttributes{Own: true}, KindAppointmentByAttributes},
		{DoctorQuery{}, KindDoctor},
		{MedicalInfoQuery{Topic: "dengue"}, KindMedicalInfo},
		{GeneralInfoQuery{Category: CategoryPrices}, KindGeneralInfo},
		{StatisticsQuery{}, KindStatistics},
		{AdvancedAnalyticsQuery{Analysis: AnalysisFollowUpRate, Period: PeriodYear}, KindAdvancedAnalytics},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, tt.in.Kind())
	}
}

func TestClassifyDoctor(t *testing.T) {
	d, ok := Find[DoctorQuery](Classify("¿Qué doctor atiende cardiología?", Hints{}))
	require.True(t, ok)
	require.NotNil(t, d.Specialty)
	assert.Equal(t, "Cardiología", d.Specialty.Name)

	d, ok = Find[DoctorQuery](Classify("¿Tienen pediatra?", Hints{}))
	require.True(t, ok)
	assert.Equal(t, "pediatr", d.Specialty.Stem)

	d, ok = Find[DoctorQuery](Classify("Busco a la Dra. Méndez", Hints{}))
	require.True(t, ok)
	assert.Equal(t, "Méndez", d.Name)

	assert.False(t, Classify("¿Dónde queda el Centro Médico?", Hints{}).Has(KindDoctor))
}

func TestClassifyMedicalInfo(t *testing.T) {
	m, ok := Find[MedicalInfoQuery](Classify("¿Cuáles son los síntomas del dengue?", Hints{}))
	require.True(t, ok)
	assert.Equal(t, "dengue", m.Topic)

	m, ok = Find[MedicalInfoQuery](Classify("¿Qué es la fibromialgia?", Hints{}))
	require.True(t, ok)
	assert.Empty(t, m.Topic)

	assert.False(t, Classify("¿Qué especialidades tienen?", Hints{}).Has(KindMedicalInfo))
}

func TestClassifyGeneralInfo(t *testing.T) {
	tests := []struct {
		text string
		cat  Category
		sub  string
	}{
		{"¿Cuál es su horario el sábado?", CategorySchedule, "sabado"},
		{"¿A qué hora abren el lunes?", CategorySchedule, "semana"},
		{"¿Dónde están ubicados?", CategoryLocation, ""},
		{"¿Cuál es su número de teléfono?", CategoryContact, ""},
		{"¿Qué documentos debo llevar?", CategoryDocuments, ""},
		{"¿Aceptan tarjeta?", CategoryPayments, ""},
		{"¿Qué seguros aceptan?", CategoryInsurance, ""},
		{"¿Cómo agendo una cita?", CategoryBooking, ""},
		{"¿Qué especialidades tienen?", CategorySpecialties, ""},
		{"¿Cuánto cuesta un ultrasonido?", CategoryPrices, "ultrasonido"},
		{"¿Cuál es el precio de cardiología?", CategoryPrices, "cardiolog"},
		{"¿Hay disponibilidad mañana?", CategoryAvailability, "manana"},
		{"¿Tienen espacio hoy?", CategoryAvailability, "hoy"},
	}
	for _, tt := range tests {
		g, ok := Find[GeneralInfoQuery](Classify(tt.text, Hints{}))
		require.True(t, ok, tt.text)
		assert.Equal(t, tt.cat, g.Category, tt.text)
		assert.Equal(t, tt.sub, g.Subcategory, tt.text)
	}

	assert.False(t, Classify("¿A qué hora es mi cita?", Hints{}).Has(KindGeneralInfo))
}

func TestClassifyStatistics(t *testing.T) {
	tests := []struct {
		text      string
		domain    string
		name      string
		period    string
		clinician bool
	}{
		{"¿Cuántos pacientes nuevos hubo este mes?", DomainPatients, "pacientes_nuevos", PeriodMonth, true},
		{"¿Cuántos doctores hay por especialidad?", DomainDoctors, "medicos_por_especialidad", "", false},
		{"Promedio de satisfacción del trimestre", DomainSatisfaction, "satisfaccion_promedio", PeriodQuarter, false},
		{"¿Cuántas citas canceladas hubo este año?", DomainAppointments, "citas_canceladas", PeriodYear, false},
		{"Reporte de ingresos mensual", DomainFinancial, "ingresos", PeriodMonth, false},
		{"¿Cuál es la tendencia de pacientes?", DomainTrends, "", "", true},
	}
	for _, tt := range tests {
		s, ok := Find[StatisticsQuery](Classify(tt.text, Hints{}))
		require.True(t, ok, tt.text)
		assert.Equal(t, tt.domain, s.Domain, tt.text)
		assert.Equal(t, tt.name, s.FilterName, tt.text)
		assert.Equal(t, tt.period, s.Period, tt.text)
		assert.Equal(t, tt.clinician, s.RequiresClinician, tt.text)
	}
}

func TestStatisticsExcludesOwnAppointment(t *testing.T) {
	set := Classify("¿Cuántas horas faltan para mi cita?", Hints{})
	assert.False(t, set.Has(KindStatistics))
	assert.True(t, set.Has(KindAppointmentByCode))

	assert.False(t, Classify("¿Cuántos espacios disponibles hay mañana?", Hints{}).Has(KindStatistics))
}

func TestClassifyAdvancedAnalytics(t *testing.T) {
	tests := []struct {
		text   string
		kind   AnalysisKind
		period string
	}{
		{"tendencia de citas por especialidad este trimestre", AnalysisSpecialtyTrend, PeriodQuarter},
		{"¿Cuál es la tasa de reconsultas?", AnalysisFollowUpRate, PeriodYear},
		{"correlación entre edad y consultas por semestre", AnalysisAgeCorrelation, PeriodSemester},
	}
	for _, tt := range tests {
		a, ok := Find[AdvancedAnalyticsQuery](Classify(tt.text, Hints{}))
		require.True(t, ok, tt.text)
		assert.Equal(t, tt.kind, a.Analysis)
		assert.Equal(t, tt.period, a.Period)
		assert.True(t, a.RequiresClinician())
	}
	assert.False(t, Classify("tasa de cambio del dólar", Hints{}).Has(KindAdvancedAnalytics))
}

func TestClassifyNothing(t *testing.T) {
	assert.True(t, Classify("   ", Hints{}).Empty())
	assert.True(t, Classify("me gusta el color azul", Hints{}).Empty())
}

func TestSetFirstFollowsPriority(t *testing.T) {
	set := Classify("¿Cuál es el total? también busco al doctor Pérez", Hints{})
	require.True(t, set.Has(KindDoctor))
	in, ok := set.First(KindTax, KindTotal, KindDoctor)
	require.True(t, ok)
	assert.Equal(t, KindTotal, in.Kind())
	assert.Equal(t, "total", KindTotal.String())
}

func TestExtractDate(t *testing.T) {
	tests := map[string]string{
		"el 15/03/2025": "2025-03-15",
		"el 5-3-25":     "2025-03-05",
		"el 07.11.2024": "2024-11-07",
		"para 2025-1-9": "2025-01-09",
	}
	for in, want := range tests {
		got, ok := ExtractDate(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ExtractDate("el 31/02/2025")
	assert.False(t, ok)
}

func TestExtractPatientName(t *testing.T) {
	assert.Equal(t, "María Gómez", ExtractPatientName("mi nombre es maría gómez y quiero saber"))
	assert.Equal(t, "Juan", ExtractPatientName("cita a nombre de Juan para mañana"))
	assert.Equal(t, "Pedro Ruiz", ExtractPatientName("Hola, soy Pedro Ruiz"))
	assert.Empty(t, ExtractPatientName("soy diabético"))
}

func TestSmallTalk(t *testing.T) {
	assert.True(t, IsGreeting("¡Hola!"))
	assert.True(t, IsGreeting("Buenos días, una consulta"))
	assert.False(t, IsGreeting("quiero saber el horario, hola"))
	assert.True(t, IsEmergency("Tengo un dolor fuerte en el pecho"))
	assert.True(t, IsEmergency("es una EMERGENCIA"))
	assert.False(t, IsEmergency("¿A qué hora abren?"))
}
