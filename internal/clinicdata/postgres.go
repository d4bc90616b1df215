package clinicdata

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
)

// queryer is satisfied by *pgxpool.Pool and pgxmock pools.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var psql = goqu.Dialect("postgres")

const (
	defaultAppointmentLimit = 20
	defaultDoctorLimit      = 5
	patientMatchLimit       = 50
)

// PostgresStore reads the clinic schema with prepared goqu statements.
type PostgresStore struct {
	db queryer
}

// NewPostgresStore wraps a pgx pool (or any compatible queryer).
func NewPostgresStore(db queryer) *PostgresStore {
	return &PostgresStore{db: db}
}

// accentInsensitiveLike matches col against %term% ignoring case and accents.
func accentInsensitiveLike(col string, term string) exp.Expression {
	return goqu.L("unaccent(?) ILIKE unaccent(?)", goqu.I(col), "%"+term+"%")
}

func appointmentDataset() *goqu.SelectDataset {
	return psql.From(goqu.T("citas").As("c")).
		LeftJoin(goqu.T("pacientes").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("c.paciente_id")))).
		LeftJoin(goqu.T("doctores").As("d"), goqu.On(goqu.I("d.id").Eq(goqu.I("c.doctor_id")))).
		Select(
			goqu.I("c.id"),
			goqu.I("c.numero_cita"),
			goqu.I("c.fecha"),
			goqu.L("COALESCE(?, '')", goqu.I("c.hora")).As("hora"),
			goqu.L("COALESCE(?, '')", goqu.I("c.motivo")).As("motivo"),
			goqu.L("COALESCE(?, '')", goqu.I("c.estado")).As("estado"),
			goqu.L("COALESCE(?, '')", goqu.I("p.id")).As("paciente_id"),
			goqu.L("COALESCE(?, '')", goqu.I("p.nombre")).As("paciente_nombre"),
			goqu.L("COALESCE(?, '')", goqu.I("p.telefono")).As("paciente_telefono"),
			goqu.L("COALESCE(?, '')", goqu.I("d.id")).As("doctor_id"),
			goqu.L("COALESCE(?, '')", goqu.I("d.nombre")).As("doctor_nombre"),
			goqu.L("COALESCE(?, '')", goqu.I("d.especialidad")).As("doctor_especialidad"),
		).
		Prepared(true)
}

func (s *PostgresStore) queryAppointments(ctx context.Context, ds *goqu.SelectDataset) ([]Appointment, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("clinicdata: build appointment query: %w", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("clinicdata: query appointments: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(
			&a.ID, &a.Code, &a.Date, &a.Time, &a.Reason, &a.Status,
			&a.Patient.ID, &a.Patient.Name, &a.Patient.Phone,
			&a.Doctor.ID, &a.Doctor.Name, &a.Doctor.Specialty,
		); err != nil {
			return nil, fmt.Errorf("clinicdata: scan appointment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("clinicdata: iterate appointments: %w", err)
	}
	return out, nil
}

// AppointmentsByCode matches numero_cita exactly, or as a substring when
// partial is set.
func (s *PostgresStore) AppointmentsByCode(ctx context.Context, code string, partial bool) ([]Appointment, error) {
	ds := appointmentDataset()
	if partial {
		ds = ds.Where(goqu.I("c.numero_cita").ILike("%" + code + "%"))
	} else {
		ds = ds.Where(goqu.I("c.numero_cita").Eq(code))
	}
	return s.queryAppointments(ctx, ds.Order(goqu.I("c.fecha").Desc()).Limit(defaultAppointmentLimit))
}

// Appointments applies every set filter in filter.
func (s *PostgresStore) Appointments(ctx context.Context, filter AppointmentFilter) ([]Appointment, error) {
	ds := appointmentDataset()
	if filter.PatientIDs != nil {
		ds = ds.Where(goqu.I("c.paciente_id").In(filter.PatientIDs))
	}
	if filter.DoctorIDs != nil {
		ds = ds.Where(goqu.I("c.doctor_id").In(filter.DoctorIDs))
	}
	if filter.Date != nil {
		ds = ds.Where(goqu.I("c.fecha").Eq(filter.Date.Format(DateLayout)))
	}
	if filter.From != nil {
		ds = ds.Where(goqu.I("c.fecha").Gte(filter.From.Format(DateLayout)))
	}
	if filter.To != nil {
		ds = ds.Where(goqu.I("c.fecha").Lte(filter.To.Format(DateLayout)))
	}
	if filter.Time != "" {
		ds = ds.Where(goqu.I("c.hora").Like(filter.Time + "%"))
	}
	if filter.ReasonContains != "" {
		ds = ds.Where(accentInsensitiveLike("c.motivo", filter.ReasonContains))
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.I("c.estado").Eq(filter.Status))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAppointmentLimit
	}
	ds = ds.Order(goqu.I("c.fecha").Desc(), goqu.I("c.hora").Asc()).Limit(uint(limit))
	return s.queryAppointments(ctx, ds)
}

// PatientIDsByName resolves a partial patient name to ids.
func (s *PostgresStore) PatientIDsByName(ctx context.Context, name string) ([]string, error) {
	query, args, err := psql.From("pacientes").
		Select("id").
		Where(accentInsensitiveLike("nombre", name)).
		Limit(patientMatchLimit).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("clinicdata: build patient query: %w", err)
	}
	return s.queryStrings(ctx, query, args, "patients")
}

// Doctors returns doctors matching the filter, capped to filter.Limit.
func (s *PostgresStore) Doctors(ctx context.Context, filter DoctorFilter) ([]Doctor, error) {
	ds := psql.From("doctores").
		Select(
			"id", "nombre",
			goqu.L("COALESCE(especialidad, '')").As("especialidad"),
			goqu.L("COALESCE(email, '')").As("email"),
			goqu.L("COALESCE(biografia, '')").As("biografia"),
		)
	if filter.Name != "" {
		ds = ds.Where(accentInsensitiveLike("nombre", filter.Name))
	}
	if filter.Specialty != "" {
		ds = ds.Where(accentInsensitiveLike("especialidad", filter.Specialty))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultDoctorLimit
	}
	query, args, err := ds.Order(goqu.I("nombre").Asc()).Limit(uint(limit)).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("clinicdata: build doctor query: %w", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("clinicdata: query doctors: %w", err)
	}
	defer rows.Close()

	var out []Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialty, &d.Email, &d.Bio); err != nil {
			return nil, fmt.Errorf("clinicdata: scan doctor: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Specialties lists the distinct specialties doctors practice.
func (s *PostgresStore) Specialties(ctx context.Context) ([]string, error) {
	query, args, err := psql.From("doctores").
		Select(goqu.DISTINCT("especialidad")).
		Where(goqu.I("especialidad").IsNotNull(), goqu.I("especialidad").Neq("")).
		Order(goqu.I("especialidad").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("clinicdata: build specialty query: %w", err)
	}
	return s.queryStrings(ctx, query, args, "specialties")
}

// Services returns the price list, optionally filtered by name.
func (s *PostgresStore) Services(ctx context.Context, nameContains string) ([]Service, error) {
	ds := psql.From("servicios").Select(
		"nombre",
		goqu.L("COALESCE(descripcion, '')").As("descripcion"),
		"precio",
		goqu.L("COALESCE(duracion_minutos, 0)").As("duracion_minutos"),
	)
	if nameContains != "" {
		ds = ds.Where(accentInsensitiveLike("nombre", nameContains))
	}
	query, args, err := ds.Order(goqu.I("nombre").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("clinicdata: build service query: %w", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("clinicdata: query services: %w", err)
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		var svc Service
		var duration int32
		if err := rows.Scan(&svc.Name, &svc.Description, &svc.Price, &duration); err != nil {
			return nil, fmt.Errorf("clinicdata: scan service: %w", err)
		}
		svc.DurationMinutes = int(duration)
		out = append(out, svc)
	}
	return out, rows.Err()
}

// BookedCounts counts non-cancelled appointments per date in [from, to].
func (s *PostgresStore) BookedCounts(ctx context.Context, from, to time.Time) (map[string]int, error) {
	query, args, err := psql.From("citas").
		Select(goqu.I("fecha"), goqu.COUNT("*").As("reservadas")).
		Where(
			goqu.I("fecha").Gte(from.Format(DateLayout)),
			goqu.I("fecha").Lte(to.Format(DateLayout)),
			goqu.I("estado").Neq("cancelada"),
		).
		GroupBy("fecha").
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("clinicdata: build booked count query: %w", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("clinicdata: query booked counts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var count int64
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("clinicdata: scan booked count: %w", err)
		}
		out[day.Format(DateLayout)] = int(count)
	}
	return out, rows.Err()
}

// Statistics returns rows matching every non-empty filter field exactly.
func (s *PostgresStore) Statistics(ctx context.Context, filter StatisticFilter) ([]Statistic, error) {
	ds := psql.From("estadisticas").Select(
		"categoria", "nombre", "valor",
		goqu.L("COALESCE(periodo, '')").As("periodo"),
		goqu.L("COALESCE(descripcion, '')").As("descripcion"),
		"solo_medicos",
	)
	ex := goqu.Ex{}
	if filter.Category != "" {
		ex["categoria"] = filter.Category
	}
	if filter.Name != "" {
		ex["nombre"] = filter.Name
	}
	if filter.Period != "" {
		ex["periodo"] = filter.Period
	}
	if len(ex) > 0 {
		ds = ds.Where(ex)
	}
	query, args, err := ds.Order(goqu.I("nombre").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("clinicdata: build statistics query: %w", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("clinicdata: query statistics: %w", err)
	}
	defer rows.Close()

	var out []Statistic
	for rows.Next() {
		var st Statistic
		if err := rows.Scan(&st.Category, &st.Name, &st.Value, &st.Period, &st.Description, &st.ClinicianOnly); err != nil {
			return nil, fmt.Errorf("clinicdata: scan statistic: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// MedicalInfo returns the most recently updated articles.
func (s *PostgresStore) MedicalInfo(ctx context.Context, limit int) ([]MedicalInfo, error) {
	if limit <= 0 {
		limit = 100
	}
	query, args, err := psql.From("info_medica").
		Select("id", "titulo", "contenido", goqu.L("COALESCE(categoria, '')").As("categoria"), "actualizado_en").
		Order(goqu.I("actualizado_en").Desc()).
		Limit(uint(limit)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("clinicdata: build medical info query: %w", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("clinicdata: query medical info: %w", err)
	}
	defer rows.Close()

	var out []MedicalInfo
	for rows.Next() {
		var m MedicalInfo
		if err := rows.Scan(&m.ID, &m.Title, &m.Body, &m.Category, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("clinicdata: scan medical info: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AppointmentFacts projects every appointment since the given date.
func (s *PostgresStore) AppointmentFacts(ctx context.Context, since time.Time) ([]AppointmentFact, error) {
	query, args, err := psql.From(goqu.T("citas").As("c")).
		LeftJoin(goqu.T("doctores").As("d"), goqu.On(goqu.I("d.id").Eq(goqu.I("c.doctor_id")))).
		LeftJoin(goqu.T("pacientes").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("c.paciente_id")))).
		Select(
			goqu.I("c.fecha"),
			goqu.L("COALESCE(?, '')", goqu.I("d.especialidad")).As("especialidad"),
			goqu.L("COALESCE(?, '')", goqu.I("c.paciente_id")).As("paciente_id"),
			goqu.I("p.fecha_nacimiento"),
		).
		Where(goqu.I("c.fecha").Gte(since.Format(DateLayout))).
		Order(goqu.I("c.fecha").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("clinicdata: build facts query: %w", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("clinicdata: query facts: %w", err)
	}
	defer rows.Close()

	var out []AppointmentFact
	for rows.Next() {
		var f AppointmentFact
		if err := rows.Scan(&f.Date, &f.Specialty, &f.PatientID, &f.PatientBirthDate); err != nil {
			return nil, fmt.Errorf("clinicdata: scan fact: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *PostgresStore) queryStrings(ctx context.Context, query string, args []any, what string) ([]string, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("clinicdata: query %s: %w", what, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("clinicdata: scan %s: %w", what, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
