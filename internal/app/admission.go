package app

import (
	"context"
	"sync"
	"time"

	"pinecove/internal/domain"
)

// BookingRequest is a fully materialized admission request. Every field is
// explicit; nothing is probed for presence at runtime.
type BookingRequest struct {
	UnitID        int64
	CheckIn       time.Time
	CheckOut      time.Time
	Guests        int
	GuestName     string
	GuestPhone    string
	GuestEmail    string
	Notes         *string
	ExpectedTotal domain.Money
}

// UnitSource resolves a unit with its tariff rows loaded. Both the raw
// repository and the cached catalog service satisfy it.
type UnitSource interface {
	GetUnit(ctx context.Context, id int64) (domain.Unit, error)
}

// AdmissionService runs the booking admission pipeline: validate the range,
// check availability, recompute the price, verify it against the caller's
// quote, then persist. Admissions for the same unit are serialized so two
// of them cannot both observe "available" and both commit.
type AdmissionService struct {
	catalog  UnitSource
	bookings domain.BookingRepository
	checker  *AvailabilityChecker
	calc     PriceCalculator
	now      func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewAdmissionService(cat UnitSource, bk domain.BookingRepository) *AdmissionService {
	return &AdmissionService{
		catalog:  cat,
		bookings: bk,
		checker:  NewAvailabilityChecker(bk),
		calc:     NewPriceCalculator(),
		now:      time.Now,
		locks:    make(map[int64]*sync.Mutex),
	}
}

// WithClock overrides the time source used for the not-in-the-past rule.
func (s *AdmissionService) WithClock(now func() time.Time) *AdmissionService {
	s.now = now
	return s
}

// Admit validates and persists a booking. On success the returned booking
// carries its assigned ID and the independently computed total.
func (s *AdmissionService) Admit(ctx context.Context, req BookingRequest) (domain.Booking, Quote, error) {
	checkIn, checkOut := domain.DateOnly(req.CheckIn), domain.DateOnly(req.CheckOut)
	if checkOut.Before(checkIn) {
		return domain.Booking{}, Quote{}, domain.ErrInvalidRange
	}
	if checkIn.Before(domain.DateOnly(s.now())) {
		return domain.Booking{}, Quote{}, domain.ErrInvalidRange
	}

	unit, err := s.catalog.GetUnit(ctx, req.UnitID)
	if err != nil {
		return domain.Booking{}, Quote{}, err
	}

	// Check-to-persist must not interleave with another admission for the
	// same unit, or both can pass the availability check and oversell.
	lock := s.unitLock(unit.ID)
	lock.Lock()
	defer lock.Unlock()

	ok, err := s.checker.IsAvailable(ctx, unit, checkIn, checkOut)
	if err != nil {
		return domain.Booking{}, Quote{}, err
	}
	if !ok {
		return domain.Booking{}, Quote{}, domain.ErrUnavailable
	}

	quote, err := s.calc.Calculate(unit, checkIn, checkOut, req.Guests)
	if err != nil {
		return domain.Booking{}, Quote{}, err
	}
	if quote.Total != req.ExpectedTotal {
		// Stale client-side quote; exact equality, no tolerance.
		return domain.Booking{}, quote, domain.ErrPriceMismatch
	}

	b := domain.Booking{
		UnitID:     unit.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestName:  req.GuestName,
		GuestPhone: req.GuestPhone,
		GuestEmail: req.GuestEmail,
		Notes:      req.Notes,
		TotalPrice: quote.Total,
	}
	id, err := s.bookings.CreateBooking(ctx, b)
	if err != nil {
		return domain.Booking{}, Quote{}, err
	}
	b.ID = id
	return b, quote, nil
}

func (s *AdmissionService) unitLock(unitID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[unitID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[unitID] = l
	}
	return l
}
