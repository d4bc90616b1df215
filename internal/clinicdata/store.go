// Package clinicdata is the read-only view of the clinic's records the
// assistant answers from.
package clinicdata

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when no backing store is configured.
var ErrUnavailable = errors.New("clinicdata: store unavailable")

// CategoryAnalysis holds precomputed analyses in the statistics collection.
const CategoryAnalysis = "analisis"

// DoctorFilter narrows a doctor search. Name and Specialty are partial,
// accent-insensitive matches.
type DoctorFilter struct {
	Name      string
	Specialty string
	Limit     int
}

// AppointmentFilter narrows an appointment search. Nil ID slices mean "no
// filter"; callers never pass empty non-nil slices.
type AppointmentFilter struct {
	PatientIDs     []string
	DoctorIDs      []string
	Date           *time.Time
	From           *time.Time
	To             *time.Time
	Time           string
	ReasonContains string
	Status         string
	Limit          int
}

// StatisticFilter selects rows by exact category, name and period.
type StatisticFilter struct {
	Category string
	Name     string
	Period   string
}

// Store is the data collaborator. Every method may return an empty result.
type Store interface {
	AppointmentsByCode(ctx context.Context, code string, partial bool) ([]Appointment, error)
	PatientIDsByName(ctx context.Context, name string) ([]string, error)
	Doctors(ctx context.Context, filter DoctorFilter) ([]Doctor, error)
	Appointments(ctx context.Context, filter AppointmentFilter) ([]Appointment, error)
	Specialties(ctx context.Context) ([]string, error)
	Services(ctx context.Context, nameContains string) ([]Service, error)
	BookedCounts(ctx context.Context, from, to time.Time) (map[string]int, error)
	Statistics(ctx context.Context, filter StatisticFilter) ([]Statistic, error)
	MedicalInfo(ctx context.Context, limit int) ([]MedicalInfo, error)
	AppointmentFacts(ctx context.Context, since time.Time) ([]AppointmentFact, error)
}
