package domain

import "time"

type Booking struct {
	ID         int64
	UnitID     int64
	CheckIn    time.Time // date only
	CheckOut   time.Time // date only; equals CheckIn for single-day units
	GuestName  string
	GuestPhone string
	GuestEmail string
	Notes      *string
	TotalPrice Money
	CreatedAt  time.Time
}

// SingleDay reports whether this is a single-day booking. The date equality
// is the discriminator; the unit kind is not duplicated onto the row.
func (b Booking) SingleDay() bool { return SameDay(b.CheckIn, b.CheckOut) }

// Covers reports whether the booking occupies the night starting on d,
// i.e. d falls in [CheckIn, CheckOut).
func (b Booking) Covers(d time.Time) bool {
	d = DateOnly(d)
	return !b.CheckIn.After(d) && b.CheckOut.After(d)
}
