package domain

import "time"

// DayCategory classifies a calendar date for tariff purposes.
type DayCategory string

const (
	Weekday DayCategory = "weekday"
	Weekend DayCategory = "weekend"
	// Anytime exists in stored catalogs but is never produced by CategoryOf,
	// so tariff lookup never matches it. Parsed, not priced.
	Anytime DayCategory = "anytime"
)

func (c DayCategory) Valid() bool {
	switch c {
	case Weekday, Weekend, Anytime:
		return true
	}
	return false
}

// CategoryOf resolves a date to weekday or weekend. Saturday and Sunday are
// the weekend. Pure function of the date; storage never gets a say.
func CategoryOf(d time.Time) DayCategory {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return Weekend
	}
	return Weekday
}

// DateOnly truncates t to whole-day granularity in UTC. All booking dates
// pass through this before any comparison or arithmetic.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func SameDay(a, b time.Time) bool { return DateOnly(a).Equal(DateOnly(b)) }

// Nights counts the nights in [checkIn, checkOut).
func Nights(checkIn, checkOut time.Time) int {
	return int(DateOnly(checkOut).Sub(DateOnly(checkIn)).Hours() / 24)
}
