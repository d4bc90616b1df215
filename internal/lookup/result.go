// Package lookup turns classified intents into read-only queries against the
// clinic store and returns typed results the formatter can render.
package lookup

import (
	"time"

	"github.com/wolfman30/clinic-chat-assistant/internal/clinic"
	"github.com/wolfman30/clinic-chat-assistant/internal/clinicdata"
	"github.com/wolfman30/clinic-chat-assistant/internal/intent"
)

// Kind is the outcome of a lookup.
type Kind int

const (
	NotFound Kind = iota
	Found
	AmbiguousMultiple
	LookupError
)

func (k Kind) String() string {
	switch k {
	case Found:
		return "found"
	case AmbiguousMultiple:
		return "ambiguous"
	case LookupError:
		return "error"
	default:
		return "not_found"
	}
}

// Result is the typed outcome of one lookup. Payload is set for Found;
// Count is set for AmbiguousMultiple; Reason is set for LookupError and
// for NotFound results that never reached the store.
type Result struct {
	Kind    Kind
	Payload Payload
	Count   int
	Reason  string
}

// Resolved reports whether the result can be answered without falling
// through to the next resolution state.
func (r Result) Resolved() bool {
	return r.Kind == Found || r.Kind == AmbiguousMultiple
}

func found(p Payload) Result { return Result{Kind: Found, Payload: p} }

func notFound(reason string) Result { return Result{Kind: NotFound, Reason: reason} }

func ambiguous(n int) Result { return Result{Kind: AmbiguousMultiple, Count: n} }

// Payload is implemented by the record shapes below.
type Payload interface {
	isPayload()
}

// Appointments are one or more appointment records. ShowPatient is set for
// clinician callers only.
type Appointments struct {
	Items       []clinicdata.Appointment
	ShowPatient bool
}

// Doctors are the doctors matching a name or specialty.
type Doctors struct {
	Items     []clinicdata.Doctor
	Specialty string
}

// DayAvailability is the remaining capacity of one calendar day.
type DayAvailability struct {
	Date      time.Time
	Label     string
	Open      bool
	Booked    int
	Remaining int
}

// GeneralInfo answers a logistics question. Static categories carry only
// the profile; computed categories fill the matching slice.
type GeneralInfo struct {
	Category    intent.Category
	Subcategory string
	Profile     *clinic.Profile
	Specialties []string
	Services    []clinicdata.Service
	Days        []DayAvailability
}

// Statistics are rows from the statistics collection. Named is set when a
// single named statistic was requested and found.
type Statistics struct {
	Rows   []clinicdata.Statistic
	Domain string
	Period string
	Named  bool
}

// AnalysisRow is one group of an analysis: a specialty or age bucket,
// optionally split by month.
type AnalysisRow struct {
	Group  string  `json:"group"`
	Period string  `json:"period,omitempty"`
	Count  int     `json:"count"`
	Total  int     `json:"total,omitempty"`
	Rate   float64 `json:"rate,omitempty"`
}

// Analysis is the result of an advanced analytics query. Computed is set
// when rows were derived from appointment facts rather than read from the
// precomputed collection.
type Analysis struct {
	Kind     intent.AnalysisKind
	Period   string
	Rows     []AnalysisRow
	Computed bool
}

// MedicalArticle is the best matching patient education article.
type MedicalArticle struct {
	Article clinicdata.MedicalInfo
	Excerpt string
	Score   int
}

func (Appointments) isPayload()   {}
func (Doctors) isPayload()        {}
func (GeneralInfo) isPayload()    {}
func (Statistics) isPayload()     {}
func (Analysis) isPayload()       {}
func (MedicalArticle) isPayload() {}
