package app

import (
	"time"

	"pinecove/internal/domain"
)

// BreakdownLine prices one night of a stay (or the single day of a gazebo
// rental). Category describes the line's own date; the amount may have been
// resolved from the following day's tariff (see priceForDay).
type BreakdownLine struct {
	Date       time.Time          `json:"date"`
	Category   domain.DayCategory `json:"type"`
	PriceOnDay domain.Money       `json:"price_on_day"`
	ExtraBeds  int                `json:"extra_beds"`
}

// Quote is an itemized price for a stay. Total always equals the sum of the
// lines; Nights is 0 for single-day units to distinguish a day rental from a
// one-night stay.
type Quote struct {
	Total  domain.Money    `json:"total"`
	Nights int             `json:"nights"`
	Lines  []BreakdownLine `json:"details"`
}

// PriceCalculator computes stay prices from a unit's tariff rows. It holds
// no state and performs no I/O; the unit arrives with tariffs loaded.
type PriceCalculator struct{}

func NewPriceCalculator() PriceCalculator { return PriceCalculator{} }

// Calculate prices [checkIn, checkOut) for the given party size.
// Extra beds are max(0, guests-capacity), fixed for the whole stay.
// Single-day units ignore checkOut and never bill extra beds.
func (PriceCalculator) Calculate(unit domain.Unit, checkIn, checkOut time.Time, guests int) (Quote, error) {
	checkIn, checkOut = domain.DateOnly(checkIn), domain.DateOnly(checkOut)
	extraBeds := guests - unit.Capacity
	if extraBeds < 0 {
		extraBeds = 0
	}

	if unit.Kind.SingleDay() {
		price, err := priceForDay(unit, checkIn, 0)
		if err != nil {
			return Quote{}, err
		}
		return Quote{
			Total:  price,
			Nights: 0,
			Lines: []BreakdownLine{{
				Date:       checkIn,
				Category:   domain.CategoryOf(checkIn),
				PriceOnDay: price,
				ExtraBeds:  0,
			}},
		}, nil
	}

	var q Quote
	for d := checkIn; d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		price, err := priceForDay(unit, d, extraBeds)
		if err != nil {
			return Quote{}, err
		}
		q.Lines = append(q.Lines, BreakdownLine{
			Date:       d,
			Category:   domain.CategoryOf(d),
			PriceOnDay: price,
			ExtraBeds:  extraBeds,
		})
		q.Total += price
		q.Nights++
	}
	return q, nil
}

// priceForDay looks up the tariff that applies to the night starting on day.
// A stay-based night is keyed by the following day (checking in Friday pays
// the Saturday tariff); a single-day unit is keyed by the day itself.
// Returns base price plus the extra-bed surcharge.
func priceForDay(unit domain.Unit, day time.Time, extraBeds int) (domain.Money, error) {
	target := day
	if !unit.Kind.SingleDay() {
		target = day.AddDate(0, 0, 1)
	}
	cat := domain.CategoryOf(target)

	for _, t := range unit.Tariffs {
		if t.Category == cat {
			return t.BasePrice + t.ExtraBedPrice*domain.Money(extraBeds), nil
		}
	}
	return 0, &domain.TariffMissingError{UnitID: unit.ID, Date: day, Category: cat}
}
