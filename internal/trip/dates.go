package trip

import "time"

// DayLayout is the yyyy-MM-dd key format used for days.
const DayLayout = "2006-01-02"

// DayID identifies a calendar day as a yyyy-MM-dd string.
type DayID string

// NewDayID formats t's calendar date in t's own location.
func NewDayID(t time.Time) DayID {
	return DayID(t.Format(DayLayout))
}

// ParseDayID parses a yyyy-MM-dd string.
func ParseDayID(s string) (DayID, error) {
	if _, err := time.Parse(DayLayout, s); err != nil {
		return "", err
	}
	return DayID(s), nil
}

func (d DayID) String() string { return string(d) }

// Time returns midnight of the day in loc.
func (d DayID) Time(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DayLayout, string(d), loc)
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ExpandDateRange returns every calendar day from start through end inclusive,
// ascending. Both bounds are normalized to midnight in loc first, so the time
// of day never changes which days are included. An inverted range yields an
// empty slice.
func ExpandDateRange(start, end time.Time, loc *time.Location) []DayID {
	from := StartOfDay(start, loc)
	to := StartOfDay(end, loc)
	if from.After(to) {
		return []DayID{}
	}

	days := make([]DayID, 0, daysBetween(from, to)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, NewDayID(d))
	}
	return days
}

// daysBetween counts whole calendar days from a to b using their y/m/d
// values, so DST transitions do not skew the result.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
