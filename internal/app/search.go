package app

import (
	"context"
	"errors"
	"time"

	"pinecove/internal/domain"
)

type SearchResult struct {
	Unit             domain.Unit     `json:"accommodation"`
	TotalPrice       domain.Money    `json:"total_price"`
	Nights           int             `json:"nights"`
	RequiresExtraBed bool            `json:"requires_extra_bed"`
	Prices           []BreakdownLine `json:"prices"`
}

// SearchService finds units that fit a party over a date range, drops the
// occupied ones, and prices the rest.
type SearchService struct {
	catalog  UnitLister
	bookings domain.BookingRepository
	checker  *AvailabilityChecker
	calc     PriceCalculator
	now      func() time.Time
}

// UnitLister enumerates the unit catalog, tariffs included.
type UnitLister interface {
	ListUnits(ctx context.Context) ([]domain.Unit, error)
}

func NewSearchService(cat UnitLister, bk domain.BookingRepository) *SearchService {
	return &SearchService{
		catalog:  cat,
		bookings: bk,
		checker:  NewAvailabilityChecker(bk),
		calc:     NewPriceCalculator(),
		now:      time.Now,
	}
}

// WithClock overrides the time source used for the not-in-the-past rule.
func (s *SearchService) WithClock(now func() time.Time) *SearchService {
	s.now = now
	return s
}

func (s *SearchService) Find(ctx context.Context, checkIn, checkOut time.Time, guests int) ([]SearchResult, error) {
	checkIn, checkOut = domain.DateOnly(checkIn), domain.DateOnly(checkOut)
	if checkOut.Before(checkIn) {
		return nil, domain.ErrInvalidRange
	}
	if checkIn.Before(domain.DateOnly(s.now())) {
		return nil, domain.ErrInvalidRange
	}

	units, err := s.catalog.ListUnits(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(units))
	for _, u := range units {
		if !u.Fits(guests) {
			continue
		}
		ok, err := s.checker.IsAvailable(ctx, u, checkIn, checkOut)
		if errors.Is(err, domain.ErrInvalidRange) {
			// Kind mismatch for this range (a gazebo asked for a multi-night
			// stay, or a room for zero nights); not a match, not a failure.
			continue
		}
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		quote, err := s.calc.Calculate(u, checkIn, checkOut, guests)
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{
			Unit:             u,
			TotalPrice:       quote.Total,
			Nights:           quote.Nights,
			RequiresExtraBed: guests > u.Capacity,
			Prices:           quote.Lines,
		})
	}
	return results, nil
}
