// internal/reporting/period.go
package reporting

import (
	"time"

	"umkmpos/internal/inventory"
)

// DateRange is the inclusive instant range a report covers.
type DateRange struct {
	From time.Time
	To   time.Time
	// LastDay is the calendar day To falls on, at midnight.
	LastDay time.Time
}

// ResolveRange turns the request dates into instants in loc. Without an
// explicit end date the range spans one period starting at startDate. The
// end is inclusive up to the last millisecond of its day.
func ResolveRange(period Period, startDate, endDate string, loc *time.Location) (DateRange, error) {
	if startDate == "" {
		return DateRange{}, inventory.Invalid("start_date", "is required")
	}
	start, err := time.ParseInLocation(DateLayout, startDate, loc)
	if err != nil {
		return DateRange{}, inventory.Invalid("start_date", "must be a YYYY-MM-DD date, got %q", startDate)
	}

	var last time.Time
	if endDate != "" {
		last, err = time.ParseInLocation(DateLayout, endDate, loc)
		if err != nil {
			return DateRange{}, inventory.Invalid("end_date", "must be a YYYY-MM-DD date, got %q", endDate)
		}
	} else {
		y, m, d := start.Date()
		switch period {
		case PeriodDaily:
			last = start
		case PeriodWeekly:
			last = time.Date(y, m, d+6, 0, 0, 0, 0, loc)
		case PeriodMonthly:
			last = time.Date(y, m+1, 0, 0, 0, 0, 0, loc)
		case PeriodYearly:
			last = time.Date(y, time.December, 31, 0, 0, 0, 0, loc)
		default:
			return DateRange{}, inventory.Invalid("period", "unknown period %q", period)
		}
	}
	if last.Before(start) {
		return DateRange{}, inventory.Invalid("end_date", "must not be before start_date")
	}

	return DateRange{From: start, To: endOfDay(last), LastDay: last}, nil
}

func endOfDay(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, day.Location()).Add(-time.Millisecond)
}

// BucketStart truncates t, seen in loc, to the first day of its period.
// Weeks start on Monday.
func BucketStart(period Period, t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	switch period {
	case PeriodWeekly:
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
	case PeriodMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case PeriodYearly:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
}
