package mysql

const insertUnitSQL = `
INSERT INTO units
  (name, kind, short_description, full_description, image,
   capacity, instance_count, extra_beds_available, check_in_time, check_out_time)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const insertTariffSQL = `
INSERT INTO unit_tariffs (unit_id, day_category, base_price, extra_bed_price)
VALUES (?, ?, ?, ?)
`

const getUnitSQL = `
SELECT
  id, name, kind, short_description, full_description, image,
  capacity, instance_count, extra_beds_available, check_in_time, check_out_time
FROM units
WHERE id = ?
`

const listUnitsSQL = `
SELECT
  id, name, kind, short_description, full_description, image,
  capacity, instance_count, extra_beds_available, check_in_time, check_out_time
FROM units
ORDER BY id
`

const listTariffsSQL = `
SELECT id, unit_id, day_category, base_price, extra_bed_price
FROM unit_tariffs
ORDER BY unit_id, id
`

const getTariffsSQL = `
SELECT id, unit_id, day_category, base_price, extra_bed_price
FROM unit_tariffs
WHERE unit_id = ?
ORDER BY id
`

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

// Bookings occupying the night that starts on the given day:
// check_in <= day < check_out.
const countCoveringSQL = `
SELECT COUNT(*) FROM bookings
WHERE unit_id = ? AND check_in_date <= ? AND check_out_date > ?
`

// Single-day occupancy: bookings checking in exactly on the given day.
const countStartingOnSQL = `
SELECT COUNT(*) FROM bookings
WHERE unit_id = ? AND check_in_date = ?
`

const insertBookingSQL = `
INSERT INTO bookings
  (unit_id, check_in_date, check_out_date, guest_name, guest_phone, guest_email, notes, total_price)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

const getBookingSQL = `
SELECT id, unit_id, check_in_date, check_out_date,
       guest_name, guest_phone, guest_email, notes, total_price, created_at
FROM bookings
WHERE id = ?
`

const listBookingsSQL = `
SELECT id, unit_id, check_in_date, check_out_date,
       guest_name, guest_phone, guest_email, notes, total_price, created_at
FROM bookings
`

// Stays covering the target date, or single-day bookings on it.
const listBookingsDateFilter = `
WHERE (check_in_date <= ? AND check_out_date > ?)
   OR (check_in_date = ? AND check_out_date = ?)
`

const listBookingsOrder = `
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?
`

// -----------------------------------------------------------------------------
// SERVICES
// -----------------------------------------------------------------------------

const insertServiceSQL = `
INSERT INTO services
  (name, short_description, full_description, image, is_free, agreement_required)
VALUES
  (?, ?, ?, ?, ?, ?)
`

const insertServicePriceSQL = `
INSERT INTO service_prices (service_id, name, day_category, duration_hours, price)
VALUES (?, ?, ?, ?, ?)
`

const getServiceSQL = `
SELECT id, name, short_description, full_description, image, is_free, agreement_required
FROM services
WHERE id = ?
`

const listServicesSQL = `
SELECT id, name, short_description, full_description, image, is_free, agreement_required
FROM services
ORDER BY id
`

const listServicePricesSQL = `
SELECT id, service_id, name, day_category, duration_hours, price
FROM service_prices
ORDER BY service_id, id
`

const getServicePricesSQL = `
SELECT id, service_id, name, day_category, duration_hours, price
FROM service_prices
WHERE service_id = ?
ORDER BY id
`
