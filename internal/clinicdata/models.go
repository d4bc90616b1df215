package clinicdata

import "time"

// DateLayout is the wire and cache format for calendar dates.
const DateLayout = "2006-01-02"

// Patient is a registered patient.
type Patient struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone,omitempty"`
	Email     string     `json:"email,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
}

// Doctor is a clinician that sees patients.
type Doctor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Email     string `json:"email,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// Appointment is a booked visit joined with its patient and doctor.
type Appointment struct {
	ID      string    `json:"id"`
	Code    string    `json:"code"`
	Date    time.Time `json:"date"`
	Time    string    `json:"time"`
	Reason  string    `json:"reason"`
	Status  string    `json:"status"`
	Patient Patient   `json:"patient"`
	Doctor  Doctor    `json:"doctor"`
}

// Service is a billable service with its list price.
type Service struct {
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
}

// Statistic is one row of the flat statistics collection.
type Statistic struct {
	Category      string `json:"category"`
	Name          string `json:"name"`
	Value         string `json:"value"`
	Period        string `json:"period,omitempty"`
	Description   string `json:"description,omitempty"`
	ClinicianOnly bool   `json:"clinician_only"`
}

// MedicalInfo is an article of the patient education collection.
type MedicalInfo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Category  string    `json:"category,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppointmentFact is the minimal projection analytics are computed from.
type AppointmentFact struct {
	Date             time.Time  `json:"date"`
	Specialty        string     `json:"specialty"`
	PatientID        string     `json:"patient_id"`
	PatientBirthDate *time.Time `json:"patient_birth_date,omitempty"`
}
