package lookup

import (
	"context"
	"strings"
	"time"

	"github.com/wolfman30/clinic-chat-assistant/internal/clinicdata"
	"github.com/wolfman30/clinic-chat-assistant/internal/intent"
)

// byCode tries an exact code match first, then a substring match.
func (a *Adapter) byCode(ctx context.Context, q intent.AppointmentByCode, caller Caller) (Result, error) {
	if q.Code == "" {
		return notFound("no appointment code"), nil
	}
	exact, err := a.store.AppointmentsByCode(ctx, q.Code, false)
	if err != nil {
		return Result{}, err
	}
	if len(exact) > 0 {
		return a.appointmentResult(exact, caller, false), nil
	}
	partial, err := a.store.AppointmentsByCode(ctx, q.Code, true)
	if err != nil {
		return Result{}, err
	}
	return a.appointmentResult(partial, caller, false), nil
}

// forgotCode searches a ±7 day window around the approximate date, or
// upcoming appointments when no date was given.
func (a *Adapter) forgotCode(ctx context.Context, q intent.ForgotAppointmentCode, caller Caller) (Result, error) {
	if !q.HasFilters() {
		return notFound("no attributes to search by"), nil
	}
	filter := clinicdata.AppointmentFilter{}
	if d, ok := parseDate(q.ApproxDate); ok {
		from, to := d.AddDate(0, 0, -forgotCodeWindow), d.AddDate(0, 0, forgotCodeWindow)
		filter.From, filter.To = &from, &to
	} else {
		from := a.today()
		filter.From = &from
	}
	resolved, err := a.resolveEntities(ctx, &filter, q.PatientName, q.DoctorName, q.Specialty)
	if err != nil || !resolved {
		return notFound("no matching patient or doctor"), err
	}
	items, err := a.store.Appointments(ctx, filter)
	if err != nil {
		return Result{}, err
	}
	return a.appointmentResult(items, caller, false), nil
}

// byAttributes resolves names to id sets and filters appointments by them.
// Clinicians receive every match; anyone else is asked to narrow the search.
// A clinician asking for their own schedule ("mis citas de hoy") is
// resolved to the doctor named by their identity.
func (a *Adapter) byAttributes(ctx context.Context, q intent.AppointmentByAttributes, caller Caller) (Result, error) {
	if !q.HasFilters() {
		return notFound("no attributes to search by"), nil
	}
	doctor := q.DoctorName
	ownSchedule := false
	if q.Own && doctor == "" && q.PatientName == "" {
		if !caller.Clinician || caller.Identity == "" {
			return notFound("own schedule needs a clinician identity"), nil
		}
		doctor, ownSchedule = doctorFromIdentity(caller.Identity), true
	}
	if !ownSchedule && !q.NamesRecord() {
		return notFound("a window or status alone is too broad"), nil
	}

	filter := clinicdata.AppointmentFilter{Time: q.Time, ReasonContains: q.Topic, Status: q.Status}
	if d, ok := parseDate(q.Date); ok {
		filter.Date = &d
	} else {
		a.applyWindow(&filter, q.Window)
	}
	resolved, err := a.resolveEntities(ctx, &filter, q.PatientName, doctor, q.Specialty)
	if err != nil || !resolved {
		return notFound("no matching patient or doctor"), err
	}
	items, err := a.store.Appointments(ctx, filter)
	if err != nil {
		return Result{}, err
	}
	if ownSchedule && len(items) == 0 {
		return found(Appointments{ShowPatient: true}), nil
	}
	return a.appointmentResult(items, caller, caller.Clinician), nil
}

// applyWindow narrows filter to today, today onwards, or before today.
func (a *Adapter) applyWindow(filter *clinicdata.AppointmentFilter, w intent.Window) {
	today := a.today()
	switch w {
	case intent.WindowToday:
		filter.Date = &today
	case intent.WindowUpcoming:
		filter.From = &today
	case intent.WindowPast:
		yesterday := today.AddDate(0, 0, -1)
		filter.To = &yesterday
	}
}

var doctorTitles = []string{"dra.", "dr.", "dra", "dr", "doctora", "doctor"}

// doctorFromIdentity strips a leading title from a clinician's display name.
func doctorFromIdentity(identity string) string {
	name := strings.TrimSpace(identity)
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return name
	}
	first := strings.ToLower(fields[0])
	for _, title := range doctorTitles {
		if first == title {
			return strings.Join(fields[1:], " ")
		}
	}
	return name
}

// resolveEntities fills the patient and doctor id filters. It reports false
// when a requested entity matched nobody, so the appointment query can be
// skipped.
func (a *Adapter) resolveEntities(ctx context.Context, filter *clinicdata.AppointmentFilter, patient, doctor string, specialty *intent.Specialty) (bool, error) {
	if patient != "" {
		ids, err := a.store.PatientIDsByName(ctx, patient)
		if err != nil {
			return false, err
		}
		if len(ids) == 0 {
			return false, nil
		}
		filter.PatientIDs = ids
	}
	if doctor == "" && specialty == nil {
		return true, nil
	}
	df := clinicdata.DoctorFilter{Name: doctor, Limit: doctorIDLimit}
	if specialty != nil {
		df.Specialty = specialty.Stem
	}
	docs, err := a.store.Doctors(ctx, df)
	if err != nil {
		return false, err
	}
	if len(docs) == 0 {
		return false, nil
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	filter.DoctorIDs = ids
	return true, nil
}

func (a *Adapter) appointmentResult(items []clinicdata.Appointment, caller Caller, listAll bool) Result {
	switch {
	case len(items) == 0:
		return notFound("")
	case len(items) == 1 || listAll:
		return found(Appointments{Items: items, ShowPatient: caller.Clinician})
	default:
		return ambiguous(len(items))
	}
}

func (a *Adapter) doctors(ctx context.Context, q intent.DoctorQuery) (Result, error) {
	filter := clinicdata.DoctorFilter{Name: q.Name, Limit: doctorResultCap}
	specialty := ""
	if q.Specialty != nil {
		filter.Specialty = q.Specialty.Stem
		specialty = q.Specialty.Name
	}
	docs, err := a.store.Doctors(ctx, filter)
	if err != nil {
		return Result{}, err
	}
	if len(docs) == 0 {
		return notFound(""), nil
	}
	return found(Doctors{Items: docs, Specialty: specialty}), nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(clinicdata.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
