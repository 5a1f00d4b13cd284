// Package recurrence turns a base event and a recurrence rule into the
// concrete occurrence documents of a series.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eventsync/internal/server/models"
)

// ErrUnknownRecurrence is returned for a recurrence type the stepper does not know.
var ErrUnknownRecurrence = errors.New("unknown recurrence type")

// Step returns the date of occurrence i (0-based) of a series starting at
// base. Index 0 is base itself for every type.
//
// daily, weekly, monthly and yearly are computed directly from base.
// Month and year steps clamp to the last day of the target month instead of
// overflowing (Jan 31 + 1 month = Feb 28/29). weekdays and weekends walk day
// by day from base, skipping days of the other kind.
func Step(base time.Time, rt models.RecurrenceType, i int) (time.Time, error) {
	if !rt.Valid() {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownRecurrence, rt)
	}
	if i <= 0 {
		return base, nil
	}

	switch rt {
	case models.RecurrenceDaily:
		return base.AddDate(0, 0, i), nil
	case models.RecurrenceWeekly:
		return base.AddDate(0, 0, 7*i), nil
	case models.RecurrenceMonthly:
		return addMonthsClamped(base, i), nil
	case models.RecurrenceYearly:
		return addMonthsClamped(base, 12*i), nil
	case models.RecurrenceWeekdays, models.RecurrenceWeekends:
		d := base
		for k := 0; k < i; k++ {
			d = nextMatching(d, rt)
		}
		return d, nil
	default:
		// none: a single date
		return base, nil
	}
}

// Sequence returns the first n occurrence dates of the series. It resolves
// the iterative types in one pass instead of re-walking from base for every
// index.
func Sequence(base time.Time, rt models.RecurrenceType, n int) ([]time.Time, error) {
	if !rt.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecurrence, rt)
	}
	if n <= 0 {
		return nil, nil
	}

	out := make([]time.Time, 0, n)
	out = append(out, base)

	iterative := rt == models.RecurrenceWeekdays || rt == models.RecurrenceWeekends
	prev := base
	for i := 1; i < n; i++ {
		var d time.Time
		if iterative {
			d = nextMatching(prev, rt)
		} else {
			var err error
			if d, err = Step(base, rt, i); err != nil {
				return nil, err
			}
		}
		out = append(out, d)
		prev = d
	}
	return out, nil
}

func nextMatching(d time.Time, rt models.RecurrenceType) time.Time {
	d = d.AddDate(0, 0, 1)
	for isWeekend(d) != (rt == models.RecurrenceWeekends) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func addMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(monthStart time.Time) int {
	return monthStart.AddDate(0, 1, -1).Day()
}
