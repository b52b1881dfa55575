package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrInvalidRange covers check-out before check-in, check-in in the past,
	// zero-night stays, and a single-day unit asked for a multi-day range.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrUnavailable means the availability check failed; admission stops
	// without creating anything.
	ErrUnavailable = errors.New("unit unavailable")

	// ErrPriceMismatch means the caller-supplied total does not equal the
	// recomputed one — a stale quote. Never reconciled silently.
	ErrPriceMismatch = errors.New("price mismatch")

	// ErrInvalidInput rejects malformed catalog writes (unknown kind or day
	// category, non-positive capacity, negative price).
	ErrInvalidInput = errors.New("invalid input")

	// ErrTariffMissing is a catalog data-integrity error, distinct from
	// ErrUnavailable: the unit has no tariff row for the resolved category.
	ErrTariffMissing = errors.New("tariff missing")
)

// TariffMissingError identifies which unit and date had no matching tariff.
// It matches ErrTariffMissing under errors.Is.
type TariffMissingError struct {
	UnitID   int64
	Date     time.Time
	Category DayCategory
}

func (e *TariffMissingError) Error() string {
	return fmt.Sprintf("no %s tariff for unit %d on %s", e.Category, e.UnitID, e.Date.Format("2006-01-02"))
}

func (e *TariffMissingError) Unwrap() error { return ErrTariffMissing }
