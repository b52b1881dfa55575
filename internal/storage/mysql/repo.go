package mysql

import (
	"context"
	"database/sql"
	"time"

	"pinecove/internal/domain"
)

const dateLayout = "2006-01-02"

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func dateArg(t time.Time) string { return domain.DateOnly(t).Format(dateLayout) }

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- catalog writes ----

func (r *Repo) CreateUnit(ctx context.Context, u domain.Unit) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, insertUnitSQL,
		u.Name,
		string(u.Kind),
		valStr(u.ShortDescription),
		valStr(u.FullDescription),
		valStr(u.Image),
		u.Capacity,
		u.InstanceCount,
		u.ExtraBedsAvailable,
		u.CheckInTime,
		u.CheckOutTime,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, t := range u.Tariffs {
		if _, err := tx.ExecContext(ctx, insertTariffSQL,
			id, string(t.Category), int64(t.BasePrice), int64(t.ExtraBedPrice),
		); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Repo) CreateService(ctx context.Context, s domain.Service) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, insertServiceSQL,
		s.Name,
		valStr(s.ShortDescription),
		valStr(s.FullDescription),
		valStr(s.Image),
		s.IsFree,
		s.AgreementRequired,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, p := range s.Prices {
		if _, err := tx.ExecContext(ctx, insertServicePriceSQL,
			id, valStr(p.Name), string(p.Category), valF64(p.DurationHours), int64(p.Price),
		); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ---- catalog reads ----

func scanUnit(row interface{ Scan(...any) error }) (domain.Unit, error) {
	var u domain.Unit
	var short, full, image sql.NullString
	if err := row.Scan(
		&u.ID, &u.Name, (*string)(&u.Kind), &short, &full, &image,
		&u.Capacity, &u.InstanceCount, &u.ExtraBedsAvailable,
		&u.CheckInTime, &u.CheckOutTime,
	); err != nil {
		return domain.Unit{}, err
	}
	if short.Valid {
		s := short.String
		u.ShortDescription = &s
	}
	if full.Valid {
		s := full.String
		u.FullDescription = &s
	}
	if image.Valid {
		s := image.String
		u.Image = &s
	}
	return u, nil
}

func (r *Repo) GetUnit(ctx context.Context, id int64) (domain.Unit, error) {
	u, err := scanUnit(r.db.QueryRowContext(ctx, getUnitSQL, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Unit{}, domain.ErrNotFound
		}
		return domain.Unit{}, err
	}

	rows, err := r.db.QueryContext(ctx, getTariffsSQL, id)
	if err != nil {
		return domain.Unit{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var t domain.TariffRow
		var base, extra int64
		if err := rows.Scan(&t.ID, &t.UnitID, (*string)(&t.Category), &base, &extra); err != nil {
			return domain.Unit{}, err
		}
		t.BasePrice, t.ExtraBedPrice = domain.Money(base), domain.Money(extra)
		u.Tariffs = append(u.Tariffs, t)
	}
	return u, rows.Err()
}

func (r *Repo) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	rows, err := r.db.QueryContext(ctx, listUnitsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []domain.Unit
	index := map[int64]int{}
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		index[u.ID] = len(units)
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	trows, err := r.db.QueryContext(ctx, listTariffsSQL)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var t domain.TariffRow
		var base, extra int64
		if err := trows.Scan(&t.ID, &t.UnitID, (*string)(&t.Category), &base, &extra); err != nil {
			return nil, err
		}
		t.BasePrice, t.ExtraBedPrice = domain.Money(base), domain.Money(extra)
		if i, ok := index[t.UnitID]; ok {
			units[i].Tariffs = append(units[i].Tariffs, t)
		}
	}
	return units, trows.Err()
}

func scanService(row interface{ Scan(...any) error }) (domain.Service, error) {
	var s domain.Service
	var short, full, image sql.NullString
	if err := row.Scan(&s.ID, &s.Name, &short, &full, &image, &s.IsFree, &s.AgreementRequired); err != nil {
		return domain.Service{}, err
	}
	if short.Valid {
		v := short.String
		s.ShortDescription = &v
	}
	if full.Valid {
		v := full.String
		s.FullDescription = &v
	}
	if image.Valid {
		v := image.String
		s.Image = &v
	}
	return s, nil
}

func scanServicePrice(rows *sql.Rows) (domain.ServicePrice, error) {
	var p domain.ServicePrice
	var name sql.NullString
	var hours sql.NullFloat64
	var price int64
	if err := rows.Scan(&p.ID, &p.ServiceID, &name, (*string)(&p.Category), &hours, &price); err != nil {
		return domain.ServicePrice{}, err
	}
	if name.Valid {
		v := name.String
		p.Name = &v
	}
	if hours.Valid {
		v := hours.Float64
		p.DurationHours = &v
	}
	p.Price = domain.Money(price)
	return p, nil
}

func (r *Repo) GetService(ctx context.Context, id int64) (domain.Service, error) {
	s, err := scanService(r.db.QueryRowContext(ctx, getServiceSQL, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Service{}, domain.ErrNotFound
		}
		return domain.Service{}, err
	}

	rows, err := r.db.QueryContext(ctx, getServicePricesSQL, id)
	if err != nil {
		return domain.Service{}, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanServicePrice(rows)
		if err != nil {
			return domain.Service{}, err
		}
		s.Prices = append(s.Prices, p)
	}
	return s, rows.Err()
}

func (r *Repo) ListServices(ctx context.Context) ([]domain.Service, error) {
	rows, err := r.db.QueryContext(ctx, listServicesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var svcs []domain.Service
	index := map[int64]int{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		index[s.ID] = len(svcs)
		svcs = append(svcs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := r.db.QueryContext(ctx, listServicePricesSQL)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		p, err := scanServicePrice(prows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[p.ServiceID]; ok {
			svcs[i].Prices = append(svcs[i].Prices, p)
		}
	}
	return svcs, prows.Err()
}

// ---- bookings ----

func (r *Repo) CountCovering(ctx context.Context, unitID int64, day time.Time) (int, error) {
	d := dateArg(day)
	var n int
	err := r.db.QueryRowContext(ctx, countCoveringSQL, unitID, d, d).Scan(&n)
	return n, err
}

func (r *Repo) CountStartingOn(ctx context.Context, unitID int64, day time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countStartingOnSQL, unitID, dateArg(day)).Scan(&n)
	return n, err
}

func (r *Repo) CreateBooking(ctx context.Context, b domain.Booking) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.UnitID,
		dateArg(b.CheckIn),
		dateArg(b.CheckOut),
		b.GuestName,
		b.GuestPhone,
		b.GuestEmail,
		valStr(b.Notes),
		int64(b.TotalPrice),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func scanBooking(row interface{ Scan(...any) error }) (domain.Booking, error) {
	var b domain.Booking
	var notes sql.NullString
	var total int64
	var createdAt sql.NullTime
	if err := row.Scan(
		&b.ID, &b.UnitID, &b.CheckIn, &b.CheckOut,
		&b.GuestName, &b.GuestPhone, &b.GuestEmail, &notes, &total, &createdAt,
	); err != nil {
		return domain.Booking{}, err
	}
	if notes.Valid {
		v := notes.String
		b.Notes = &v
	}
	b.TotalPrice = domain.Money(total)
	if createdAt.Valid {
		b.CreatedAt = createdAt.Time
	}
	b.CheckIn, b.CheckOut = domain.DateOnly(b.CheckIn), domain.DateOnly(b.CheckOut)
	return b, nil
}

func (r *Repo) GetBooking(ctx context.Context, id int64) (domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, getBookingSQL, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, err
	}
	return b, nil
}

func (r *Repo) ListBookings(ctx context.Context, q domain.BookingsQuery) ([]domain.Booking, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	sqlStr := listBookingsSQL
	var args []any
	if q.TargetDate != nil {
		d := dateArg(*q.TargetDate)
		sqlStr += listBookingsDateFilter
		args = append(args, d, d, d, d)
	}
	sqlStr += listBookingsOrder
	args = append(args, limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
