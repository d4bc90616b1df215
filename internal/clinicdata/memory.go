package clinicdata

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/clinic-chat-assistant/internal/textnorm"
)

// MemoryStore serves the Store interface from in-process slices. It backs
// the terminal REPL and tests.
type MemoryStore struct {
	mu           sync.RWMutex
	patients     []Patient
	doctors      []Doctor
	appointments []Appointment
	services     []Service
	statistics   []Statistic
	articles     []MedicalInfo
}

// MemoryData seeds a MemoryStore.
type MemoryData struct {
	Patients     []Patient
	Doctors      []Doctor
	Appointments []Appointment
	Services     []Service
	Statistics   []Statistic
	Articles     []MedicalInfo
}

// NewMemoryStore copies data into a new store.
func NewMemoryStore(data MemoryData) *MemoryStore {
	return &MemoryStore{
		patients:     append([]Patient(nil), data.Patients...),
		doctors:      append([]Doctor(nil), data.Doctors...),
		appointments: append([]Appointment(nil), data.Appointments...),
		services:     append([]Service(nil), data.Services...),
		statistics:   append([]Statistic(nil), data.Statistics...),
		articles:     append([]MedicalInfo(nil), data.Articles...),
	}
}

func fold(s string) string { return textnorm.Normalize(s) }

func containsFolded(haystack, needle string) bool {
	return strings.Contains(fold(haystack), fold(needle))
}

func sortAppointments(out []Appointment) {
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})
}

func capAppointments(out []Appointment, limit int) []Appointment {
	if limit <= 0 {
		limit = defaultAppointmentLimit
	}
	if len(out) > limit {
		return out[:limit]
	}
	return out
}

// AppointmentsByCode implements Store.
func (m *MemoryStore) AppointmentsByCode(_ context.Context, code string, partial bool) ([]Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Appointment
	for _, a := range m.appointments {
		if (partial && strings.Contains(a.Code, code)) || (!partial && a.Code == code) {
			out = append(out, a)
		}
	}
	sortAppointments(out)
	return capAppointments(out, defaultAppointmentLimit), nil
}

// PatientIDsByName implements Store.
func (m *MemoryStore) PatientIDsByName(_ context.Context, name string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for _, p := range m.patients {
		if containsFolded(p.Name, name) {
			out = append(out, p.ID)
		}
	}
	return out, nil
}

// Doctors implements Store.
func (m *MemoryStore) Doctors(_ context.Context, filter DoctorFilter) ([]Doctor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultDoctorLimit
	}
	var out []Doctor
	for _, d := range m.doctors {
		if filter.Name != "" && !containsFolded(d.Name, filter.Name) {
			continue
		}
		if filter.Specialty != "" && !containsFolded(d.Specialty, filter.Specialty) {
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func inSet(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	return a.Format(DateLayout) == b.Format(DateLayout)
}

// Appointments implements Store.
func (m *MemoryStore) Appointments(_ context.Context, filter AppointmentFilter) ([]Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Appointment
	for _, a := range m.appointments {
		if filter.PatientIDs != nil && !inSet(filter.PatientIDs, a.Patient.ID) {
			continue
		}
		if filter.DoctorIDs != nil && !inSet(filter.DoctorIDs, a.Doctor.ID) {
			continue
		}
		if filter.Date != nil && !sameDay(a.Date, *filter.Date) {
			continue
		}
		if filter.From != nil && a.Date.Format(DateLayout) < filter.From.Format(DateLayout) {
			continue
		}
		if filter.To != nil && a.Date.Format(DateLayout) > filter.To.Format(DateLayout) {
			continue
		}
		if filter.Time != "" && !strings.HasPrefix(a.Time, filter.Time) {
			continue
		}
		if filter.ReasonContains != "" && !containsFolded(a.Reason, filter.ReasonContains) {
			continue
		}
		if filter.Status != "" && !strings.EqualFold(a.Status, filter.Status) {
			continue
		}
		out = append(out, a)
	}
	sortAppointments(out)
	return capAppointments(out, filter.Limit), nil
}

// Specialties implements Store.
func (m *MemoryStore) Specialties(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, d := range m.doctors {
		if d.Specialty == "" {
			continue
		}
		if _, ok := seen[d.Specialty]; ok {
			continue
		}
		seen[d.Specialty] = struct{}{}
		out = append(out, d.Specialty)
	}
	sort.Strings(out)
	return out, nil
}

// Services implements Store.
func (m *MemoryStore) Services(_ context.Context, nameContains string) ([]Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Service
	for _, s := range m.services {
		if nameContains == "" || containsFolded(s.Name, nameContains) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// BookedCounts implements Store.
func (m *MemoryStore) BookedCounts(_ context.Context, from, to time.Time) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lo, hi := from.Format(DateLayout), to.Format(DateLayout)
	out := make(map[string]int)
	for _, a := range m.appointments {
		day := a.Date.Format(DateLayout)
		if day < lo || day > hi || a.Status == "cancelada" {
			continue
		}
		out[day]++
	}
	return out, nil
}

// Statistics implements Store.
func (m *MemoryStore) Statistics(_ context.Context, filter StatisticFilter) ([]Statistic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Statistic
	for _, s := range m.statistics {
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		if filter.Name != "" && s.Name != filter.Name {
			continue
		}
		if filter.Period != "" && s.Period != filter.Period {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// MedicalInfo implements Store.
func (m *MemoryStore) MedicalInfo(_ context.Context, limit int) ([]MedicalInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]MedicalInfo(nil), m.articles...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// AppointmentFacts implements Store.
func (m *MemoryStore) AppointmentFacts(_ context.Context, since time.Time) ([]AppointmentFact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	birth := make(map[string]*time.Time, len(m.patients))
	for _, p := range m.patients {
		birth[p.ID] = p.BirthDate
	}
	lo := since.Format(DateLayout)
	var out []AppointmentFact
	for _, a := range m.appointments {
		if a.Date.Format(DateLayout) < lo {
			continue
		}
		out = append(out, AppointmentFact{
			Date:             a.Date,
			Specialty:        a.Doctor.Specialty,
			PatientID:        a.Patient.ID,
			PatientBirthDate: birth[a.Patient.ID],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
