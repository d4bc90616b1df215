package clinicdata

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var appointmentColumns = []string{
	"id", "numero_cita", "fecha", "hora", "motivo", "estado",
	"paciente_id", "paciente_nombre", "paciente_telefono",
	"doctor_id", "doctor_nombre", "doctor_especialidad",
}

func TestPostgresStore_AppointmentsByCode(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	date := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM "citas" AS "c" LEFT JOIN "pacientes" AS "p" .+ WHERE \("c"\."numero_cita" = \$1\)`).
		WithArgs("0042", int64(20)).
		WillReturnRows(pgxmock.NewRows(appointmentColumns).AddRow(
			"a1", "0042", date, "09:30", "Control", "confirmada",
			"p1", "Luis Martínez", "5555-1002",
			"d1", "Carlos Pérez", "Cardiología",
		))

	store := NewPostgresStore(mock)
	got, err := store.AppointmentsByCode(context.Background(), "0042", false)
	if err != nil {
		t.Fatalf("AppointmentsByCode failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(got))
	}
	if got[0].Doctor.Specialty != "Cardiología" || got[0].Patient.Name != "Luis Martínez" {
		t.Errorf("unexpected appointment %+v", got[0])
	}
	if !got[0].Date.Equal(date) {
		t.Errorf("date = %v, want %v", got[0].Date, date)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_PartialCodeUsesILike(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`"c"\."numero_cita" ILIKE \$1`).
		WithArgs("%042%", int64(20)).
		WillReturnRows(pgxmock.NewRows(appointmentColumns))

	got, err := NewPostgresStore(mock).AppointmentsByCode(context.Background(), "042", true)
	if err != nil {
		t.Fatalf("AppointmentsByCode failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no rows, got %d", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_BookedCounts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	day1 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	mock.ExpectQuery(`SELECT "fecha", COUNT\(\*\) AS "reservadas" FROM "citas"`).
		WithArgs("2025-03-10", "2025-03-16", "cancelada").
		WillReturnRows(pgxmock.NewRows([]string{"fecha", "reservadas"}).
			AddRow(day1, int64(9)).
			AddRow(day2, int64(16)))

	counts, err := NewPostgresStore(mock).BookedCounts(context.Background(), day1, day1.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("BookedCounts failed: %v", err)
	}
	if counts["2025-03-10"] != 9 || counts["2025-03-11"] != 16 {
		t.Errorf("unexpected counts %v", counts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_Statistics(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM "estadisticas" WHERE \("categoria" = \$1\)`).
		WithArgs("citas").
		WillReturnRows(pgxmock.NewRows([]string{"categoria", "nombre", "valor", "periodo", "descripcion", "solo_medicos"}).
			AddRow("citas", "citas_canceladas", "12", "mes", "Citas canceladas", false))

	rows, err := NewPostgresStore(mock).Statistics(context.Background(), StatisticFilter{Category: "citas"})
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Value != "12" || rows[0].Period != "mes" {
		t.Errorf("unexpected rows %+v", rows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_AppointmentFacts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	birth := time.Date(1980, 5, 1, 0, 0, 0, 0, time.UTC)
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT "c"\."fecha", .+ FROM "citas" AS "c"`).
		WithArgs("2024-01-15").
		WillReturnRows(pgxmock.NewRows([]string{"fecha", "especialidad", "paciente_id", "fecha_nacimiento"}).
			AddRow(date, "Pediatría", "p3", &birth))

	facts, err := NewPostgresStore(mock).AppointmentFacts(context.Background(), date.AddDate(-1, 0, 0))
	if err != nil {
		t.Fatalf("AppointmentFacts failed: %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("expected 1 fact, got %d", len(facts))
	}
	if facts[0].PatientBirthDate == nil || !facts[0].PatientBirthDate.Equal(birth) {
		t.Errorf("unexpected birth date %v", facts[0].PatientBirthDate)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_QueryErrorIsWrapped(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery(`FROM "doctores"`).
		WithArgs("%cardio%", int64(5)).
		WillReturnError(boom)

	_, err = NewPostgresStore(mock).Doctors(context.Background(), DoctorFilter{Specialty: "cardio"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestPostgresStore_AppointmentsFiltersByDoctorDateAndStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE \(\("c"\."doctor_id" IN \(\$1\)\) AND \("c"\."fecha" = \$2\) AND \("c"\."estado" = \$3\)\) ORDER BY .+ LIMIT \$4`).
		WithArgs("d3", "2025-03-10", "confirmada", int64(20)).
		WillReturnRows(pgxmock.NewRows(appointmentColumns).AddRow(
			"a6", "4410", day, "15:30", "Consulta general", "confirmada",
			"p4", "Ana Gómez", "5555-1004",
			"d3", "Jorge Castillo", "Medicina General",
		))

	got, err := NewPostgresStore(mock).Appointments(context.Background(), AppointmentFilter{
		DoctorIDs: []string{"d3"},
		Date:      &day,
		Status:    "confirmada",
	})
	if err != nil {
		t.Fatalf("Appointments failed: %v", err)
	}
	if len(got) != 1 || got[0].Code != "4410" {
		t.Errorf("unexpected appointments %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
