package lookup

import (
	"context"

	"github.com/wolfman30/clinic-chat-assistant/internal/clinicdata"
	"github.com/wolfman30/clinic-chat-assistant/internal/intent"
)

const (
	subToday    = "hoy"
	subTomorrow = "manana"
	weekDays    = 7
)

// generalInfo answers logistics from the profile, except for specialties,
// prices and availability which come from the store.
func (a *Adapter) generalInfo(ctx context.Context, q intent.GeneralInfoQuery) (Result, error) {
	payload := GeneralInfo{Category: q.Category, Subcategory: q.Subcategory, Profile: a.profile}
	switch q.Category {
	case intent.CategorySpecialties:
		specs, err := a.store.Specialties(ctx)
		if err != nil {
			return Result{}, err
		}
		if len(specs) == 0 {
			return notFound(""), nil
		}
		payload.Specialties = specs
	case intent.CategoryPrices:
		svcs, err := a.store.Services(ctx, q.Subcategory)
		if err != nil {
			return Result{}, err
		}
		if len(svcs) == 0 {
			return notFound(""), nil
		}
		payload.Services = svcs
	case intent.CategoryAvailability:
		days, err := a.availability(ctx, q.Subcategory)
		if err != nil {
			return Result{}, err
		}
		payload.Days = days
	}
	return found(payload), nil
}

// availability is daily capacity minus booked appointments for today,
// tomorrow, or the next seven days.
func (a *Adapter) availability(ctx context.Context, sub string) ([]DayAvailability, error) {
	start, n := a.today(), weekDays
	switch sub {
	case subToday:
		n = 1
	case subTomorrow:
		start, n = start.AddDate(0, 0, 1), 1
	}
	end := start.AddDate(0, 0, n-1)
	booked, err := a.store.BookedCounts(ctx, start, end)
	if err != nil {
		return nil, err
	}

	today := a.today()
	days := make([]DayAvailability, 0, n)
	for i := 0; i < n; i++ {
		d := start.AddDate(0, 0, i)
		day := DayAvailability{Date: d, Booked: booked[d.Format(clinicdata.DateLayout)]}
		switch {
		case d.Equal(today):
			day.Label = "hoy"
		case d.Equal(today.AddDate(0, 0, 1)):
			day.Label = "mañana"
		}
		if a.profile.BusinessHours.GetHoursForDay(d.Weekday()) != nil {
			day.Open = true
			day.Remaining = max(a.profile.DailyCapacity-day.Booked, 0)
		}
		days = append(days, day)
	}
	return days, nil
}
