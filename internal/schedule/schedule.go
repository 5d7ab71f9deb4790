// Package schedule holds the calendar arithmetic shared by campaign creation
// and contribution settlement. Everything here is pure: dates in, dates out,
// always UTC at midnight.
package schedule

import "time"

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidDay clamps a requested day-of-month to the last valid day of the
// target month, e.g. day 31 in April yields 30.
func ValidDay(year int, month time.Month, desiredDay int) int {
	last := DaysInMonth(year, month)
	if desiredDay > last {
		return last
	}
	return desiredDay
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// monthDate builds the clamped savings date for a year/month.
func monthDate(year int, month time.Month, savingsDay int) time.Time {
	return time.Date(year, month, ValidDay(year, month, savingsDay), 0, 0, 0, 0, time.UTC)
}

// AddMonths advances t by n calendar months, clamping the day to the target
// month's length instead of letting it overflow into the following month.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return monthDate(target.Year(), target.Month(), day)
}

// FirstScheduledDate computes the first contribution date for a campaign: the
// clamped savings day in the start month, rolled forward one month when that
// date is not strictly after the start date.
func FirstScheduledDate(startDate time.Time, savingsDay int) time.Time {
	start := StartOfDay(startDate)
	first := monthDate(start.Year(), start.Month(), savingsDay)
	if !first.After(start) {
		next := time.Date(start.Year(), start.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		first = monthDate(next.Year(), next.Month(), savingsDay)
	}
	return first
}

// MonthlyDates generates one clamped date per month of the duration. Each
// period is computed independently from the first date so every period lands
// on the same nominal day-of-month, subject to month-length clamping.
func MonthlyDates(first time.Time, savingsDay, months int) []time.Time {
	dates := make([]time.Time, 0, months)
	for i := 0; i < months; i++ {
		target := time.Date(first.Year(), first.Month()+time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		dates = append(dates, monthDate(target.Year(), target.Month(), savingsDay))
	}
	return dates
}

// Window returns the on-time settlement window for an obligation's stored
// period. The window is derived from the obligation's own year/month, never
// from the caller's current date.
func Window(year int, month time.Month, savingsDay, windowDays int) (start, end time.Time) {
	end = monthDate(year, month, savingsDay)
	start = end.AddDate(0, 0, -windowDays)
	return start, end
}

// Timing classifies a payment attempt against a settlement window.
type Timing int

const (
	TooEarly Timing = iota
	OnTime
	Late
)

// Classify compares the attempt date against the window at day granularity:
// before the window opens is too early, on or before the window end is
// on-time, strictly after is late.
func Classify(now, windowStart, windowEnd time.Time) Timing {
	day := StartOfDay(now)
	switch {
	case day.Before(windowStart):
		return TooEarly
	case day.After(windowEnd):
		return Late
	default:
		return OnTime
	}
}
