package app

import (
	"context"
	"time"

	"pinecove/internal/domain"
)

// AvailabilityChecker decides whether a unit has free inventory for a date
// range, against the booking snapshot behind the repository. Pure read; safe
// to call repeatedly and concurrently on the same snapshot.
type AvailabilityChecker struct {
	bookings domain.BookingRepository
}

func NewAvailabilityChecker(r domain.BookingRepository) *AvailabilityChecker {
	return &AvailabilityChecker{bookings: r}
}

// IsAvailable reports whether the unit is free for [checkIn, checkOut).
//
// Single-day units accept only checkIn == checkOut and count bookings on
// that exact day. Stay-based units walk each night in [checkIn, checkOut);
// the check-out day itself is not occupied. The walk stops at the first
// saturated day.
func (c *AvailabilityChecker) IsAvailable(ctx context.Context, unit domain.Unit, checkIn, checkOut time.Time) (bool, error) {
	checkIn, checkOut = domain.DateOnly(checkIn), domain.DateOnly(checkOut)
	if checkOut.Before(checkIn) {
		return false, domain.ErrInvalidRange
	}

	if unit.Kind.SingleDay() {
		if !checkIn.Equal(checkOut) {
			// A gazebo cannot hold a multi-day range; reject, never coerce.
			return false, domain.ErrInvalidRange
		}
		n, err := c.bookings.CountStartingOn(ctx, unit.ID, checkIn)
		if err != nil {
			return false, err
		}
		return n < unit.InstanceCount, nil
	}

	if checkIn.Equal(checkOut) {
		// Zero-night stays are not a thing for stay-based units.
		return false, domain.ErrInvalidRange
	}

	for d := checkIn; d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		n, err := c.bookings.CountCovering(ctx, unit.ID, d)
		if err != nil {
			return false, err
		}
		if n >= unit.InstanceCount {
			return false, nil
		}
	}
	return true, nil
}
