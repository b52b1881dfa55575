package domain

import (
	"context"
	"time"
)

type CatalogRepository interface {
	// Write paths (administrative)
	CreateUnit(ctx context.Context, u Unit) (int64, error)
	CreateService(ctx context.Context, s Service) (int64, error)

	// Read paths
	GetUnit(ctx context.Context, id int64) (Unit, error)
	ListUnits(ctx context.Context) ([]Unit, error)
	GetService(ctx context.Context, id int64) (Service, error)
	ListServices(ctx context.Context) ([]Service, error)
}

// BookingRepository is the read snapshot the availability checker consumes
// plus the persistence path admission commits through.
type BookingRepository interface {
	// CountCovering counts bookings whose [check_in, check_out) contains day.
	CountCovering(ctx context.Context, unitID int64, day time.Time) (int, error)
	// CountStartingOn counts bookings checking in exactly on day
	// (single-day occupancy).
	CountStartingOn(ctx context.Context, unitID int64, day time.Time) (int, error)

	CreateBooking(ctx context.Context, b Booking) (int64, error)
	GetBooking(ctx context.Context, id int64) (Booking, error)
	ListBookings(ctx context.Context, q BookingsQuery) ([]Booking, error)
}

// BookingsQuery filters the booking list. TargetDate, when set, matches
// stays covering that date and single-day bookings on it.
type BookingsQuery struct {
	TargetDate *time.Time
	Limit      int
	Offset     int
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
