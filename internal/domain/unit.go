package domain

// UnitKind distinguishes stay-based accommodations (billed per night) from
// single-day ones (billed once per calendar day, check-in == check-out).
type UnitKind string

const (
	KindHotelRoom  UnitKind = "hotel_room"
	KindGuestHouse UnitKind = "guest_house"
	KindGazebo     UnitKind = "gazebo"
)

func (k UnitKind) Valid() bool {
	switch k {
	case KindHotelRoom, KindGuestHouse, KindGazebo:
		return true
	}
	return false
}

// SingleDay reports whether units of this kind are booked for exactly one
// calendar day instead of a range of nights.
func (k UnitKind) SingleDay() bool { return k == KindGazebo }

// Money is an amount in minor currency units. Admission verifies the
// client-supplied total with exact equality, so no floats anywhere.
type Money int64

type Unit struct {
	ID                 int64
	Name               string
	Kind               UnitKind
	ShortDescription   *string
	FullDescription    *string
	Image              *string
	Capacity           int // base occupant count
	InstanceCount      int // physical copies of this unit (e.g. 5 identical rooms)
	ExtraBedsAvailable int
	CheckInTime        string // "15:00"
	CheckOutTime       string // "12:00"
	Tariffs            []TariffRow
}

// Fits reports whether the unit can host the given party, counting extra
// beds only when the unit actually has some.
func (u Unit) Fits(guests int) bool {
	if u.Capacity >= guests {
		return true
	}
	return u.ExtraBedsAvailable > 0 && u.Capacity+u.ExtraBedsAvailable >= guests
}

type TariffRow struct {
	ID            int64
	UnitID        int64
	Category      DayCategory
	BasePrice     Money
	ExtraBedPrice Money // surcharge per extra bed per night (or day)
}
