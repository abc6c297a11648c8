package models

import "time"

// DateRange is an inclusive start/end date filter over expenses. Either bound
// may be unset; Effective substitutes the first and last calendar day of the
// current month for a missing bound.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Effective resolves the range against the given clock time. A missing start
// defaults to the first day of now's month, a missing end to the last day.
func (r DateRange) Effective(now time.Time) (time.Time, time.Time) {
	start := firstDayOfMonth(now)
	end := lastDayOfMonth(now)

	if r.Start != nil {
		start = truncateToDay(*r.Start)
	}
	if r.End != nil {
		end = truncateToDay(*r.End)
	}

	return start, end
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

func firstDayOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func lastDayOfMonth(t time.Time) time.Time {
	// Day zero of the next month is the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
