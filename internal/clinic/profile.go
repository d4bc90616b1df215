// Package clinic describes the clinic the assistant speaks for: contact
// details, opening hours and the static answers for logistics questions.
package clinic

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// DayHours represents the opening hours for a single day.
// Nil means the clinic is closed that day.
type DayHours struct {
	Open  string `yaml:"open" json:"open"`   // "08:00" in 24-hour format
	Close string `yaml:"close" json:"close"` // "18:00" in 24-hour format
}

// BusinessHours maps day names to their hours.
type BusinessHours struct {
	Monday    *DayHours `yaml:"monday,omitempty" json:"monday,omitempty"`
	Tuesday   *DayHours `yaml:"tuesday,omitempty" json:"tuesday,omitempty"`
	Wednesday *DayHours `yaml:"wednesday,omitempty" json:"wednesday,omitempty"`
	Thursday  *DayHours `yaml:"thursday,omitempty" json:"thursday,omitempty"`
	Friday    *DayHours `yaml:"friday,omitempty" json:"friday,omitempty"`
	Saturday  *DayHours `yaml:"saturday,omitempty" json:"saturday,omitempty"`
	Sunday    *DayHours `yaml:"sunday,omitempty" json:"sunday,omitempty"`
}

// Location is the clinic's street address.
type Location struct {
	Address   string  `yaml:"address"`
	Reference string  `yaml:"reference"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// Contact lists the ways to reach the front desk.
type Contact struct {
	Phone    string `yaml:"phone"`
	Email    string `yaml:"email"`
	WhatsApp string `yaml:"whatsapp"`
}

// ScheduleText is the human wording of the opening hours.
type ScheduleText struct {
	Weekdays string `yaml:"weekdays"`
	Saturday string `yaml:"saturday"`
	Sunday   string `yaml:"sunday"`
}

// Profile is everything the assistant may state about the clinic without
// querying the store.
type Profile struct {
	Name           string        `yaml:"name"`
	City           string        `yaml:"city"`
	Timezone       string        `yaml:"timezone"`
	Location       Location      `yaml:"location"`
	Contact        Contact       `yaml:"contact"`
	Schedule       ScheduleText  `yaml:"schedule"`
	BusinessHours  BusinessHours `yaml:"business_hours"`
	Documents      []string      `yaml:"documents"`
	PaymentMethods []string      `yaml:"payment_methods"`
	Insurers       []string      `yaml:"insurers"`
	BookingSteps   []string      `yaml:"booking_steps"`
	DailyCapacity  int           `yaml:"daily_capacity"`
}

// DefaultProfile returns the Centro Médico Familiar profile.
func DefaultProfile() *Profile {
	weekday := &DayHours{Open: "08:00", Close: "18:00"}
	return &Profile{
		Name:     "Centro Médico Familiar",
		City:     "San Juan Sacatepéquez",
		Timezone: "America/Guatemala",
		Location: Location{
			Address:   "2 av. 5-08 zona 3 San Juan Sacatepéquez",
			Reference: "A dos cuadras del parque central",
			Latitude:  14.7167,
			Longitude: -90.6333,
		},
		Contact: Contact{
			Phone:    "4644-9158",
			Email:    "info@centromedicofamiliar.com",
			WhatsApp: "+502 4644-9158",
		},
		Schedule: ScheduleText{
			Weekdays: "Lunes a Viernes de 8:00 a 18:00",
			Saturday: "Sábados de 8:00 a 13:00",
			Sunday:   "Cerrado",
		},
		BusinessHours: BusinessHours{
			Monday:    weekday,
			Tuesday:   weekday,
			Wednesday: weekday,
			Thursday:  weekday,
			Friday:    weekday,
			Saturday:  &DayHours{Open: "08:00", Close: "13:00"},
		},
		Documents: []string{
			"DPI o documento de identificación",
			"Comprobante de domicilio",
			"Tarjeta de seguro médico (si aplica)",
		},
		PaymentMethods: []string{
			"Efectivo",
			"Tarjetas de crédito y débito",
			"Cheques",
			"Transferencias bancarias",
			"Seguros médicos afiliados",
		},
		Insurers: []string{"El Roble", "G&T", "Aseguradora General", "Mapfre", "Universales"},
		BookingSteps: []string{
			"Llame al 4644-9158 o escríbanos por WhatsApp",
			"Indique la especialidad o el doctor que necesita",
			"Elija la fecha y hora disponibles",
			"Proporcione su nombre completo y número de teléfono",
			"Guarde el número de cita de 4 dígitos que le asignaremos",
		},
		DailyCapacity: 16,
	}
}

// LoadProfile reads a YAML profile from path. Fields absent from the file
// keep their default values. An empty path returns the default profile.
func LoadProfile(path string) (*Profile, error) {
	p := DefaultProfile()
	if strings.TrimSpace(path) == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("clinic: read profile: %w", err)
	}
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("clinic: parse profile: %w", err)
	}
	if p.DailyCapacity <= 0 {
		return nil, fmt.Errorf("clinic: daily_capacity must be positive, got %d", p.DailyCapacity)
	}
	return p, nil
}

// TimeLocation returns the clinic's time zone, falling back to UTC.
func (p *Profile) TimeLocation() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetHoursForDay returns the hours for a given weekday (0=Sunday, 6=Saturday).
func (b *BusinessHours) GetHoursForDay(weekday time.Weekday) *DayHours {
	switch weekday {
	case time.Sunday:
		return b.Sunday
	case time.Monday:
		return b.Monday
	case time.Tuesday:
		return b.Tuesday
	case time.Wednesday:
		return b.Wednesday
	case time.Thursday:
		return b.Thursday
	case time.Friday:
		return b.Friday
	case time.Saturday:
		return b.Saturday
	default:
		return nil
	}
}

func minutesOf(hhmm string) (int, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// IsOpenAt checks if the clinic is open at the given time.
func (p *Profile) IsOpenAt(t time.Time) bool {
	local := t.In(p.TimeLocation())
	hours := p.BusinessHours.GetHoursForDay(local.Weekday())
	if hours == nil {
		return false
	}
	open, ok1 := minutesOf(hours.Open)
	closing, ok2 := minutesOf(hours.Close)
	if !ok1 || !ok2 {
		return false
	}
	now := local.Hour()*60 + local.Minute()
	return now >= open && now < closing
}

// NextOpenTime returns when the clinic next opens, or t itself when open.
func (p *Profile) NextOpenTime(t time.Time) (time.Time, bool) {
	loc := p.TimeLocation()
	local := t.In(loc)
	if p.IsOpenAt(t) {
		return local, true
	}
	for i := 0; i < 8; i++ {
		day := local.AddDate(0, 0, i)
		hours := p.BusinessHours.GetHoursForDay(day.Weekday())
		if hours == nil {
			continue
		}
		open, ok := minutesOf(hours.Open)
		if !ok {
			continue
		}
		at := time.Date(day.Year(), day.Month(), day.Day(), open/60, open%60, 0, 0, loc)
		if at.After(local) {
			return at, true
		}
	}
	return time.Time{}, false
}

var weekdayNames = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

// StatusLine describes whether the clinic is open right now, in Spanish.
func (p *Profile) StatusLine(t time.Time) string {
	local := t.In(p.TimeLocation())
	if p.IsOpenAt(t) {
		hours := p.BusinessHours.GetHoursForDay(local.Weekday())
		return fmt.Sprintf("En este momento estamos abiertos (hoy atendemos hasta las %s).", hours.Close)
	}
	next, ok := p.NextOpenTime(t)
	if !ok {
		return "En este momento estamos cerrados."
	}
	return fmt.Sprintf("En este momento estamos cerrados. Abrimos el %s a las %s.",
		weekdayNames[next.Weekday()], next.Format("15:04"))
}
