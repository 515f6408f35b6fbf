package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// DateLayout is the calendar date format used on the API surface.
const DateLayout = "2006-01-02"

// DateRange is an inclusive calendar date window. A nil bound is open.
type DateRange struct {
	Start *time.Time `json:"startDate,omitempty"`
	End   *time.Time `json:"endDate,omitempty"`
}

// Validate rejects ranges whose start is after their end.
func (r DateRange) Validate() bool {
	if r.Start == nil || r.End == nil {
		return true
	}
	return !CalendarDay(*r.Start).After(CalendarDay(*r.End))
}

// CalendarDay truncates t to midnight UTC of its calendar date.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the absolute number of calendar days between a and b.
func DaysBetween(a, b time.Time) int {
	diff := CalendarDay(a).Sub(CalendarDay(b))
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}
