package dates

import "time"

// Holidays is a set of non-working calendar days, keyed by UTC midnight.
type Holidays map[time.Time]struct{}

// NewHolidays builds a holiday set from the given days.
func NewHolidays(days ...time.Time) Holidays {
	h := make(Holidays, len(days))
	for _, d := range days {
		h[Day(d)] = struct{}{}
	}
	return h
}

// Contains reports whether t falls on a holiday.
func (h Holidays) Contains(t time.Time) bool {
	if len(h) == 0 {
		return false
	}
	_, ok := h[Day(t)]
	return ok
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsWorkingDay reports whether t is a Monday-Friday day that is not a holiday.
func IsWorkingDay(t time.Time, h Holidays) bool {
	switch t.UTC().Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !h.Contains(t)
}

// WorkingDaysInMonth counts the working days of the given month up to and
// including upTo. The result is never below 1 so it can be used as a
// run-rate denominator.
func WorkingDaysInMonth(year int, month time.Month, upTo time.Time, h Holidays) int {
	limit := Day(upTo)
	count := 0
	for d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); d.Month() == month && !d.After(limit); d = d.AddDate(0, 0, 1) {
		if IsWorkingDay(d, h) {
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return count
}

// TotalWorkingDaysInMonth counts every working day of the month.
func TotalWorkingDaysInMonth(year int, month time.Month, h Holidays) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return WorkingDaysInMonth(year, month, last, h)
}
