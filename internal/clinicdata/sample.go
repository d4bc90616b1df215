package clinicdata

import "time"

// SampleData returns a small dataset anchored on today, for the terminal
// REPL and tests. Appointment dates are relative so availability and
// date-window lookups stay meaningful whenever it runs.
func SampleData(today time.Time) MemoryData {
	day := func(offset int) time.Time {
		d := today.AddDate(0, 0, offset)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	birth := func(year int) *time.Time {
		t := time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
		return &t
	}

	patients := []Patient{
		{ID: "p1", Name: "Ana López", Phone: "5555-1001", BirthDate: birth(1990)},
		{ID: "p2", Name: "Luis Martínez", Phone: "5555-1002", BirthDate: birth(1958)},
		{ID: "p3", Name: "Sofía Ramírez", Phone: "5555-1003", BirthDate: birth(2015)},
		{ID: "p4", Name: "Ana Gómez", Phone: "5555-1004", BirthDate: birth(1982)},
	}
	doctors := []Doctor{
		{ID: "d1", Name: "Carlos Pérez", Specialty: "Cardiología", Email: "cperez@centromedicofamiliar.com"},
		{ID: "d2", Name: "María Méndez", Specialty: "Pediatría", Email: "mmendez@centromedicofamiliar.com"},
		{ID: "d3", Name: "Jorge Castillo", Specialty: "Medicina General"},
		{ID: "d4", Name: "Lucía Herrera", Specialty: "Ginecología"},
	}
	appt := func(id, code string, offset int, hour, reason, status string, p Patient, d Doctor) Appointment {
		return Appointment{ID: id, Code: code, Date: day(offset), Time: hour, Reason: reason, Status: status, Patient: p, Doctor: d}
	}
	appointments := []Appointment{
		appt("a1", "0042", 2, "09:30", "Control de presión arterial", "confirmada", patients[1], doctors[0]),
		appt("a2", "1042", 0, "10:00", "Chequeo pediátrico", "confirmada", patients[2], doctors[1]),
		appt("a3", "0107", 5, "11:15", "Ultrasonido pélvico", "pendiente", patients[0], doctors[3]),
		appt("a4", "2210", -30, "08:00", "Control de diabetes", "completada", patients[1], doctors[2]),
		appt("a5", "3301", -60, "14:00", "Control de diabetes", "completada", patients[1], doctors[2]),
		appt("a6", "4410", 0, "15:30", "Consulta general", "confirmada", patients[3], doctors[2]),
		appt("a7", "5120", -3, "09:00", "Vacuna", "cancelada", patients[2], doctors[1]),
	}
	services := []Service{
		{Name: "Consulta general", Description: "Evaluación médica general", Price: 150, DurationMinutes: 30},
		{Name: "Consulta de pediatría", Description: "Atención para niños y adolescentes", Price: 200, DurationMinutes: 30},
		{Name: "Consulta de ginecología", Price: 250, DurationMinutes: 40},
		{Name: "Consulta de cardiología", Price: 300, DurationMinutes: 40},
		{Name: "Ultrasonido", Description: "Ultrasonido abdominal o pélvico", Price: 350, DurationMinutes: 30},
		{Name: "Laboratorio básico", Description: "Hematología y química sanguínea", Price: 175},
	}
	statistics := []Statistic{
		{Category: "medicos", Name: "total_medicos", Value: "4", Description: "Médicos activos"},
		{Category: "medicos", Name: "medicos_por_especialidad", Value: "Cardiología 1, Pediatría 1, Medicina General 1, Ginecología 1", Description: "Médicos por especialidad"},
		{Category: "citas", Name: "citas_canceladas", Value: "12", Period: "mes", Description: "Citas canceladas"},
		{Category: "citas", Name: "citas_por_dia", Value: "14", Period: "mes", Description: "Citas promedio por día"},
		{Category: "pacientes", Name: "pacientes_nuevos", Value: "38", Period: "mes", Description: "Pacientes nuevos", ClinicianOnly: true},
		{Category: "satisfaccion", Name: "satisfaccion_promedio", Value: "4.7 de 5", Period: "trimestre", Description: "Satisfacción promedio"},
		{Category: "financiero", Name: "ingresos", Value: "Q84,500.00", Period: "mes", Description: "Ingresos del mes", ClinicianOnly: true},
		{Category: "financiero", Name: "ticket_promedio", Value: "Q210.00", Period: "mes", Description: "Pago promedio por consulta"},
	}
	articles := []MedicalInfo{
		{
			ID:        "m1",
			Title:     "Dengue: síntomas y prevención",
			Body:      "El dengue es una enfermedad viral transmitida por el mosquito Aedes aegypti. Los síntomas incluyen fiebre alta, dolor de cabeza y dolor detrás de los ojos. Para prevenirlo elimine criaderos de mosquitos y use repelente.",
			Category:  "enfermedades",
			UpdatedAt: day(-10),
		},
		{
			ID:        "m2",
			Title:     "Diabetes tipo 2",
			Body:      "La diabetes tipo 2 es una enfermedad crónica que afecta la forma en que el cuerpo procesa el azúcar. El tratamiento combina alimentación saludable, actividad física y medicamentos. Los controles de glucemia deben ser periódicos.",
			Category:  "enfermedades",
			UpdatedAt: day(-20),
		},
	}
	return MemoryData{
		Patients:     patients,
		Doctors:      doctors,
		Appointments: appointments,
		Services:     services,
		Statistics:   statistics,
		Articles:     articles,
	}
}
