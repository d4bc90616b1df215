package lookup

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/wolfman30/clinic-chat-assistant/internal/clinicdata"
	"github.com/wolfman30/clinic-chat-assistant/internal/intent"
)

const noSpecialty = "Sin especialidad"

// statistics is an exact match on domain, named statistic and period.
// Clinician-only rows are dropped for everyone else.
func (a *Adapter) statistics(ctx context.Context, q intent.StatisticsQuery, caller Caller) (Result, error) {
	filter := clinicdata.StatisticFilter{Category: q.Domain, Name: q.FilterName, Period: q.Period}
	if q.Domain == intent.DomainGeneral {
		filter.Category = ""
	}
	rows, err := a.store.Statistics(ctx, filter)
	if err != nil {
		return Result{}, err
	}
	var visible []clinicdata.Statistic
	for _, r := range rows {
		if r.Category == clinicdata.CategoryAnalysis {
			continue
		}
		if r.ClinicianOnly && !caller.Clinician {
			continue
		}
		visible = append(visible, r)
	}
	if len(visible) == 0 {
		return notFound(""), nil
	}
	return found(Statistics{
		Rows:   visible,
		Domain: q.Domain,
		Period: q.Period,
		Named:  q.FilterName != "" && len(visible) == 1,
	}), nil
}

// analytics reads a precomputed analysis when one exists and otherwise
// derives it from appointment facts.
func (a *Adapter) analytics(ctx context.Context, q intent.AdvancedAnalyticsQuery, caller Caller) (Result, error) {
	if !caller.Clinician {
		return notFound("analytics are restricted to clinicians"), nil
	}
	period := q.Period
	if period == "" {
		period = intent.PeriodYear
	}
	stored, err := a.store.Statistics(ctx, clinicdata.StatisticFilter{
		Category: clinicdata.CategoryAnalysis,
		Name:     string(q.Analysis),
		Period:   period,
	})
	if err != nil {
		return Result{}, err
	}
	for _, row := range stored {
		var rows []AnalysisRow
		if err := json.Unmarshal([]byte(row.Value), &rows); err != nil {
			a.logger.Warn("lookup: unreadable precomputed analysis", "name", row.Name, "error", err)
			continue
		}
		if len(rows) > 0 {
			return found(Analysis{Kind: q.Analysis, Period: period, Rows: rows}), nil
		}
	}

	facts, err := a.store.AppointmentFacts(ctx, periodStart(a.today(), period))
	if err != nil {
		return Result{}, err
	}
	var rows []AnalysisRow
	switch q.Analysis {
	case intent.AnalysisSpecialtyTrend:
		rows = specialtyTrend(facts)
	case intent.AnalysisFollowUpRate:
		rows = followUpRate(facts)
	case intent.AnalysisAgeCorrelation:
		rows = ageCorrelation(facts, a.today())
	}
	if len(rows) == 0 {
		return notFound(""), nil
	}
	return found(Analysis{Kind: q.Analysis, Period: period, Rows: rows, Computed: true}), nil
}

func periodStart(today time.Time, period string) time.Time {
	switch period {
	case intent.PeriodMonth:
		return today.AddDate(0, -1, 0)
	case intent.PeriodQuarter:
		return today.AddDate(0, -3, 0)
	case intent.PeriodSemester:
		return today.AddDate(0, -6, 0)
	default:
		return today.AddDate(-1, 0, 0)
	}
}

func specialtyOf(f clinicdata.AppointmentFact) string {
	if f.Specialty == "" {
		return noSpecialty
	}
	return f.Specialty
}

// specialtyTrend counts appointments per specialty per month.
func specialtyTrend(facts []clinicdata.AppointmentFact) []AnalysisRow {
	type key struct{ group, month string }
	counts := make(map[key]int)
	for _, f := range facts {
		counts[key{specialtyOf(f), f.Date.Format("2006-01")}]++
	}
	rows := make([]AnalysisRow, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, AnalysisRow{Group: k.group, Period: k.month, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Group != rows[j].Group {
			return rows[i].Group < rows[j].Group
		}
		return rows[i].Period < rows[j].Period
	})
	return rows
}

// followUpRate is, per specialty, the share of patients seen more than once.
func followUpRate(facts []clinicdata.AppointmentFact) []AnalysisRow {
	visits := make(map[string]map[string]int)
	for _, f := range facts {
		if f.PatientID == "" {
			continue
		}
		g := specialtyOf(f)
		if visits[g] == nil {
			visits[g] = make(map[string]int)
		}
		visits[g][f.PatientID]++
	}
	rows := make([]AnalysisRow, 0, len(visits))
	for g, perPatient := range visits {
		row := AnalysisRow{Group: g, Total: len(perPatient)}
		for _, n := range perPatient {
			if n > 1 {
				row.Count++
			}
		}
		row.Rate = 100 * float64(row.Count) / float64(row.Total)
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Group < rows[j].Group })
	return rows
}

var ageBuckets = []struct {
	label string
	max   int
}{
	{"0-18", 18},
	{"19-35", 35},
	{"36-50", 50},
	{"51-65", 65},
	{"66+", 1 << 30},
}

// ageCorrelation relates patient age to visit frequency: appointments,
// distinct patients and visits per patient for each age bucket.
func ageCorrelation(facts []clinicdata.AppointmentFact, today time.Time) []AnalysisRow {
	appts := make([]int, len(ageBuckets))
	patients := make([]map[string]struct{}, len(ageBuckets))
	for _, f := range facts {
		if f.PatientBirthDate == nil {
			continue
		}
		age := ageOn(*f.PatientBirthDate, today)
		for i, b := range ageBuckets {
			if age <= b.max {
				appts[i]++
				if patients[i] == nil {
					patients[i] = make(map[string]struct{})
				}
				patients[i][f.PatientID] = struct{}{}
				break
			}
		}
	}
	var rows []AnalysisRow
	for i, b := range ageBuckets {
		if appts[i] == 0 {
			continue
		}
		total := len(patients[i])
		rows = append(rows, AnalysisRow{
			Group: b.label,
			Count: appts[i],
			Total: total,
			Rate:  float64(appts[i]) / float64(total),
		})
	}
	return rows
}

func ageOn(birth, day time.Time) int {
	age := day.Year() - birth.Year()
	if day.Month() < birth.Month() || (day.Month() == birth.Month() && day.Day() < birth.Day()) {
		age--
	}
	return max(age, 0)
}
