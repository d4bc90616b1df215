package clinicdata

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
)

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Seed loads data into an empty schema in one transaction. Rows whose key
// already exists are left untouched, so seeding twice is harmless.
func Seed(ctx context.Context, db txBeginner, data MemoryData) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("clinicdata: begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, ins := range seedInserts(data) {
		query, args, err := ins.ds.OnConflict(goqu.DoNothing()).Prepared(true).ToSQL()
		if err != nil {
			return fmt.Errorf("clinicdata: build %s seed: %w", ins.table, err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("clinicdata: seed %s: %w", ins.table, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("clinicdata: commit seed: %w", err)
	}
	return nil
}

type seedInsert struct {
	table string
	ds    *goqu.InsertDataset
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func seedInserts(data MemoryData) []seedInsert {
	var out []seedInsert
	add := func(table string, rows []goqu.Record) {
		if len(rows) == 0 {
			return
		}
		vals := make([]any, len(rows))
		for i, r := range rows {
			vals[i] = r
		}
		out = append(out, seedInsert{table: table, ds: psql.Insert(table).Rows(vals...)})
	}

	patients := make([]goqu.Record, 0, len(data.Patients))
	for _, p := range data.Patients {
		var birth any
		if p.BirthDate != nil {
			birth = p.BirthDate.Format(DateLayout)
		}
		patients = append(patients, goqu.Record{
			"id": p.ID, "nombre": p.Name, "telefono": nullable(p.Phone),
			"email": nullable(p.Email), "fecha_nacimiento": birth,
		})
	}
	add("pacientes", patients)

	doctors := make([]goqu.Record, 0, len(data.Doctors))
	for _, d := range data.Doctors {
		doctors = append(doctors, goqu.Record{
			"id": d.ID, "nombre": d.Name, "especialidad": nullable(d.Specialty),
			"email": nullable(d.Email), "biografia": nullable(d.Bio),
		})
	}
	add("doctores", doctors)

	appointments := make([]goqu.Record, 0, len(data.Appointments))
	for _, a := range data.Appointments {
		appointments = append(appointments, goqu.Record{
			"id": a.ID, "numero_cita": a.Code,
			"paciente_id": nullable(a.Patient.ID), "doctor_id": nullable(a.Doctor.ID),
			"fecha": a.Date.Format(DateLayout), "hora": nullable(a.Time),
			"motivo": nullable(a.Reason), "estado": a.Status,
		})
	}
	add("citas", appointments)

	services := make([]goqu.Record, 0, len(data.Services))
	for _, s := range data.Services {
		var duration any
		if s.DurationMinutes > 0 {
			duration = s.DurationMinutes
		}
		services = append(services, goqu.Record{
			"nombre": s.Name, "descripcion": nullable(s.Description),
			"precio": s.Price, "duracion_minutos": duration,
		})
	}
	add("servicios", services)

	stats := make([]goqu.Record, 0, len(data.Statistics))
	for _, s := range data.Statistics {
		stats = append(stats, goqu.Record{
			"categoria": s.Category, "nombre": s.Name, "valor": s.Value,
			"periodo": nullable(s.Period), "descripcion": nullable(s.Description),
			"solo_medicos": s.ClinicianOnly,
		})
	}
	add("estadisticas", stats)

	articles := make([]goqu.Record, 0, len(data.Articles))
	for _, m := range data.Articles {
		articles = append(articles, goqu.Record{
			"id": m.ID, "titulo": m.Title, "contenido": m.Body,
			"categoria": nullable(m.Category), "actualizado_en": m.UpdatedAt,
		})
	}
	add("info_medica", articles)
	return out
}
