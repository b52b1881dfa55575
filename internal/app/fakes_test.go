package app_test

import (
	"context"
	"sync"
	"time"

	"pinecove/internal/domain"
)

// ---- shared fakes ----

type fakeBookings struct {
	mu    sync.Mutex
	items []domain.Booking
	// optional hook executed inside CountCovering, used to widen race windows
	onCount func()
}

func (f *fakeBookings) CountCovering(ctx context.Context, unitID int64, day time.Time) (int, error) {
	if f.onCount != nil {
		f.onCount()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.items {
		if b.UnitID == unitID && b.Covers(day) {
			n++
		}
	}
	return n, nil
}

func (f *fakeBookings) CountStartingOn(ctx context.Context, unitID int64, day time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.items {
		if b.UnitID == unitID && domain.SameDay(b.CheckIn, day) {
			n++
		}
	}
	return n, nil
}

func (f *fakeBookings) CreateBooking(ctx context.Context, b domain.Booking) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = int64(len(f.items) + 1)
	f.items = append(f.items, b)
	return b.ID, nil
}

func (f *fakeBookings) GetBooking(ctx context.Context, id int64) (domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.items {
		if b.ID == id {
			return b, nil
		}
	}
	return domain.Booking{}, domain.ErrNotFound
}

func (f *fakeBookings) ListBookings(ctx context.Context, q domain.BookingsQuery) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]domain.Booking(nil), f.items...)
	return out, nil
}

type fakeCatalog struct {
	units    map[int64]domain.Unit
	services map[int64]domain.Service
	nextID   int64
}

func (f *fakeCatalog) CreateUnit(ctx context.Context, u domain.Unit) (int64, error) {
	if f.units == nil {
		f.units = map[int64]domain.Unit{}
	}
	f.nextID++
	u.ID = f.nextID
	f.units[u.ID] = u
	return u.ID, nil
}

func (f *fakeCatalog) GetUnit(ctx context.Context, id int64) (domain.Unit, error) {
	u, ok := f.units[id]
	if !ok {
		return domain.Unit{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeCatalog) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	var out []domain.Unit
	for _, u := range f.units {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeCatalog) CreateService(ctx context.Context, s domain.Service) (int64, error) {
	if f.services == nil {
		f.services = map[int64]domain.Service{}
	}
	f.nextID++
	s.ID = f.nextID
	f.services[s.ID] = s
	return s.ID, nil
}

func (f *fakeCatalog) GetService(ctx context.Context, id int64) (domain.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return domain.Service{}, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeCatalog) ListServices(ctx context.Context) ([]domain.Service, error) {
	var out []domain.Service
	for _, s := range f.services {
		out = append(out, s)
	}
	return out, nil
}

// ---- helpers ----

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// 2026-01-02 is a Friday; most range tests start there.
var friday = date(2026, time.January, 2)

func roomUnit() domain.Unit {
	return domain.Unit{
		ID:                 1,
		Name:               "Pine Room",
		Kind:               domain.KindHotelRoom,
		Capacity:           4,
		InstanceCount:      1,
		ExtraBedsAvailable: 2,
		Tariffs: []domain.TariffRow{
			{UnitID: 1, Category: domain.Weekday, BasePrice: 100, ExtraBedPrice: 20},
			{UnitID: 1, Category: domain.Weekend, BasePrice: 150, ExtraBedPrice: 25},
		},
	}
}

func gazeboUnit(instances int) domain.Unit {
	return domain.Unit{
		ID:            2,
		Name:          "Lakeside Gazebo",
		Kind:          domain.KindGazebo,
		Capacity:      8,
		InstanceCount: instances,
		Tariffs: []domain.TariffRow{
			{UnitID: 2, Category: domain.Weekday, BasePrice: 50},
			{UnitID: 2, Category: domain.Weekend, BasePrice: 80},
		},
	}
}
