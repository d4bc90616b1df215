// Package intent classifies a user turn into the closed set of intents the
// assistant knows how to resolve. Every classifier is a pure function of the
// text; Classify runs all of them and returns every match.
package intent

import "github.com/wolfman30/clinic-chat-assistant/internal/pricing"

// Kind tags an Intent variant.
type Kind int

const (
	KindTotal Kind = iota + 1
	KindTax
	KindAppointmentByCode
	KindForgotCode
	KindAppointmentByAttributes
	KindDoctor
	KindMedicalInfo
	KindGeneralInfo
	KindStatistics
	KindAdvancedAnalytics
)

var kindNames = map[Kind]string{
	KindTotal:                   "total",
	KindTax:                     "tax",
	KindAppointmentByCode:       "appointment_by_code",
	KindForgotCode:              "forgot_code",
	KindAppointmentByAttributes: "appointment_by_attributes",
	KindDoctor:                  "doctor",
	KindMedicalInfo:             "medical_info",
	KindGeneralInfo:             "general_info",
	KindStatistics:              "statistics",
	KindAdvancedAnalytics:       "advanced_analytics",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "none"
}

// Intent is implemented only by the variants declared in this package.
type Intent interface {
	Kind() Kind
	isIntent()
}

// TotalRequest asks to add up the prices quoted so far.
type TotalRequest struct{}

// TaxRequest asks for a total with tax applied.
type TaxRequest struct {
	Type        pricing.TaxType
	RatePercent float64
}

// AppointmentByCode looks up one appointment by its 4-digit code. Code is
// empty when the user referred to "my appointment" and no code is known.
type AppointmentByCode struct {
	Code        string
	FromContext bool
}

// ForgotAppointmentCode is a user who lost their appointment code. The
// attributes are whatever could be extracted to narrow the search.
type ForgotAppointmentCode struct {
	PatientName string
	DoctorName  string
	Specialty   *Specialty
	ApproxDate  string
}

// HasFilters reports whether any attribute can narrow the search.
func (f ForgotAppointmentCode) HasFilters() bool {
	return f.PatientName != "" || f.DoctorName != "" || f.Specialty != nil
}

// Window is a schedule range relative to today.
type Window string

const (
	WindowToday    Window = "hoy"
	WindowUpcoming Window = "proximas"
	WindowPast     Window = "pasadas"
)

// Appointment statuses as stored.
const (
	StatusPending   = "pendiente"
	StatusCompleted = "completada"
	StatusCancelled = "cancelada"
)

// AppointmentByAttributes finds appointments by who/when/what. Own is set
// when the user asks about their own schedule ("mis citas", "mi agenda").
type AppointmentByAttributes struct {
	PatientName string
	DoctorName  string
	Specialty   *Specialty
	Date        string // YYYY-MM-DD
	Time        string // HH:MM
	Topic       string
	Window      Window
	Status      string
	Own         bool
}

// HasFilters reports whether at least one attribute was extracted.
func (a AppointmentByAttributes) HasFilters() bool {
	return a.NamesRecord() || a.Window != "" || a.Status != "" || a.Own
}

// NamesRecord reports whether the query names who, when or what, as opposed
// to only a window or a status.
func (a AppointmentByAttributes) NamesRecord() bool {
	return a.PatientName != "" || a.DoctorName != "" || a.Specialty != nil ||
		a.Date != "" || a.Time != "" || a.Topic != ""
}

// DoctorQuery asks who the doctors are, optionally by specialty or name.
type DoctorQuery struct {
	Specialty *Specialty
	Name      string
}

// MedicalInfoQuery asks about a condition or treatment.
type MedicalInfoQuery struct {
	Topic string
}

// GeneralInfoQuery asks about clinic logistics.
type GeneralInfoQuery struct {
	Category    Category
	Subcategory string
}

// StatisticsQuery asks for an aggregate figure from the statistics collection.
type StatisticsQuery struct {
	Domain            string
	Period            string
	FilterName        string
	RequiresClinician bool
}

// AdvancedAnalyticsQuery asks for one of the computed analyses.
type AdvancedAnalyticsQuery struct {
	Analysis AnalysisKind
	Period   string
}

// RequiresClinician is always true for analytics.
func (AdvancedAnalyticsQuery) RequiresClinician() bool { return true }

func (TotalRequest) Kind() Kind            { return KindTotal }
func (TaxRequest) Kind() Kind              { return KindTax }
func (AppointmentByCode) Kind() Kind       { return KindAppointmentByCode }
func (ForgotAppointmentCode) Kind() Kind   { return KindForgotCode }
func (AppointmentByAttributes) Kind() Kind { return KindAppointmentByAttributes }
func (DoctorQuery) Kind() Kind             { return KindDoctor }
func (MedicalInfoQuery) Kind() Kind        { return KindMedicalInfo }
func (GeneralInfoQuery) Kind() Kind        { return KindGeneralInfo }
func (StatisticsQuery) Kind() Kind         { return KindStatistics }
func (AdvancedAnalyticsQuery) Kind() Kind  { return KindAdvancedAnalytics }

func (TotalRequest) isIntent()            {}
func (TaxRequest) isIntent()              {}
func (AppointmentByCode) isIntent()       {}
func (ForgotAppointmentCode) isIntent()   {}
func (AppointmentByAttributes) isIntent() {}
func (DoctorQuery) isIntent()             {}
func (MedicalInfoQuery) isIntent()        {}
func (GeneralInfoQuery) isIntent()        {}
func (StatisticsQuery) isIntent()         {}
func (AdvancedAnalyticsQuery) isIntent()  {}

// Set holds the intents matched for one turn, at most one per kind.
type Set struct {
	matched map[Kind]Intent
	order   []Kind
}

func (s *Set) add(in Intent) {
	if s.matched == nil {
		s.matched = make(map[Kind]Intent)
	}
	if _, dup := s.matched[in.Kind()]; dup {
		return
	}
	s.matched[in.Kind()] = in
	s.order = append(s.order, in.Kind())
}

// Empty reports whether no classifier matched.
func (s Set) Empty() bool { return len(s.order) == 0 }

// Has reports whether an intent of kind k matched.
func (s Set) Has(k Kind) bool {
	_, ok := s.matched[k]
	return ok
}

// Get returns the intent of kind k.
func (s Set) Get(k Kind) (Intent, bool) {
	in, ok := s.matched[k]
	return in, ok
}

// Kinds lists matched kinds in classifier order.
func (s Set) Kinds() []Kind {
	return append([]Kind(nil), s.order...)
}

// First returns the first matched intent following priority.
func (s Set) First(priority ...Kind) (Intent, bool) {
	for _, k := range priority {
		if in, ok := s.matched[k]; ok {
			return in, true
		}
	}
	return nil, false
}

// Find returns the matched intent of variant T.
func Find[T Intent](s Set) (T, bool) {
	var zero T
	in, ok := s.matched[zero.Kind()]
	if !ok {
		return zero, false
	}
	typed, ok := in.(T)
	return typed, ok
}
