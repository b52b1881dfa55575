package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"pinecove/internal/adapters/observability"
	"pinecove/internal/app"
	"pinecove/internal/domain"
)

const dateLayout = "2006-01-02"

type Handlers struct {
	Catalog   *app.CatalogService
	Search    *app.SearchService
	Admission *app.AdmissionService
	Bookings  domain.BookingRepository
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/units", h.listUnits)
	s.mux.Post("/v1/units", h.createUnit)
	s.mux.Get("/v1/units/{id}", h.getUnit)

	s.mux.Get("/v1/search", h.search)

	s.mux.Get("/v1/bookings", h.listBookings)
	s.mux.Post("/v1/bookings", h.createBooking)
	s.mux.Get("/v1/bookings/{id}", h.getBooking)

	s.mux.Get("/v1/services", h.listServices)
	s.mux.Post("/v1/services", h.createService)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCachedJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// ---- DTOs (wire names follow the public API contract) ----

type tariffDTO struct {
	WeekdayType   string `json:"weekday_type"`
	Price         int64  `json:"price"`
	ExtraBedPrice int64  `json:"extra_bed_price"`
}

type unitDTO struct {
	ID                 int64       `json:"id"`
	Name               string      `json:"name"`
	Type               string      `json:"type"`
	ShortDescription   *string     `json:"short_description,omitempty"`
	FullDescription    *string     `json:"full_description,omitempty"`
	Image              *string     `json:"image,omitempty"`
	Capacity           int         `json:"capacity"`
	Count              int         `json:"count"`
	ExtraBedsAvailable int         `json:"extra_beds_available"`
	CheckInTime        string      `json:"check_in_time"`
	CheckOutTime       string      `json:"check_out_time"`
	Prices             []tariffDTO `json:"prices"`
}

func toUnitDTO(u domain.Unit) unitDTO {
	d := unitDTO{
		ID:                 u.ID,
		Name:               u.Name,
		Type:               string(u.Kind),
		ShortDescription:   u.ShortDescription,
		FullDescription:    u.FullDescription,
		Image:              u.Image,
		Capacity:           u.Capacity,
		Count:              u.InstanceCount,
		ExtraBedsAvailable: u.ExtraBedsAvailable,
		CheckInTime:        u.CheckInTime,
		CheckOutTime:       u.CheckOutTime,
		Prices:             make([]tariffDTO, 0, len(u.Tariffs)),
	}
	for _, t := range u.Tariffs {
		d.Prices = append(d.Prices, tariffDTO{
			WeekdayType:   string(t.Category),
			Price:         int64(t.BasePrice),
			ExtraBedPrice: int64(t.ExtraBedPrice),
		})
	}
	return d
}

type priceLineDTO struct {
	Date       string `json:"date"`
	Type       string `json:"type"`
	PriceOnDay int64  `json:"price_on_day"`
	ExtraBeds  int    `json:"extra_beds"`
}

func toPriceLines(lines []app.BreakdownLine) []priceLineDTO {
	out := make([]priceLineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, priceLineDTO{
			Date:       l.Date.Format(dateLayout),
			Type:       string(l.Category),
			PriceOnDay: int64(l.PriceOnDay),
			ExtraBeds:  l.ExtraBeds,
		})
	}
	return out
}

type bookingDTO struct {
	ID           int64   `json:"id"`
	UnitID       int64   `json:"accommodation_id"`
	CheckInDate  string  `json:"check_in_date"`
	CheckOutDate string  `json:"check_out_date"`
	GuestName    string  `json:"guest_name"`
	GuestPhone   string  `json:"guest_phone"`
	GuestEmail   string  `json:"guest_email"`
	Notes        *string `json:"notes,omitempty"`
	TotalPrice   int64   `json:"total_price"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

func toBookingDTO(b domain.Booking) bookingDTO {
	d := bookingDTO{
		ID:           b.ID,
		UnitID:       b.UnitID,
		CheckInDate:  b.CheckIn.Format(dateLayout),
		CheckOutDate: b.CheckOut.Format(dateLayout),
		GuestName:    b.GuestName,
		GuestPhone:   b.GuestPhone,
		GuestEmail:   b.GuestEmail,
		Notes:        b.Notes,
		TotalPrice:   int64(b.TotalPrice),
	}
	if !b.CreatedAt.IsZero() {
		d.CreatedAt = b.CreatedAt.Format(time.RFC3339)
	}
	return d
}

// ---- helpers ----

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// maps domain failures onto problem responses; anything unrecognized is a 500.
func writeDomainProblem(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrInvalidRange), errors.Is(err, domain.ErrInvalidInput):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		writeProblem(w, http.StatusConflict, "Unavailable", "the unit is already booked for the requested dates")
	case errors.Is(err, domain.ErrPriceMismatch):
		writeProblem(w, http.StatusConflict, "Price Mismatch", "the quoted total is stale; fetch a fresh price")
	case errors.Is(err, domain.ErrTariffMissing):
		// catalog misconfiguration, not a user input error
		writeProblem(w, http.StatusInternalServerError, "Catalog Error", err.Error())
	default:
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// ---- catalog ----

func (h *Handlers) listUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.Catalog.ListUnits(r.Context())
	if err != nil {
		writeDomainProblem(w, err)
		return
	}
	out := make([]unitDTO, 0, len(units))
	for _, u := range units {
		out = append(out, toUnitDTO(u))
	}
	writeCachedJSON(w, r, out)
}

func (h *Handlers) getUnit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	u, err := h.Catalog.GetUnit(r.Context(), id)
	if err != nil {
		writeDomainProblem(w, err)
		return
	}
	writeCachedJSON(w, r, toUnitDTO(u))
}

type createUnitRequest struct {
	Name               string      `json:"name"`
	Type               string      `json:"type"`
	ShortDescription   *string     `json:"short_description"`
	FullDescription    *string     `json:"full_description"`
	Image              *string     `json:"image"`
	Capacity           int         `json:"capacity"`
	Count              int         `json:"count"`
	ExtraBedsAvailable int         `json:"extra_beds_available"`
	CheckInTime        string      `json:"check_in_time"`
	CheckOutTime       string      `json:"check_out_time"`
	Prices             []tariffDTO `json:"prices"`
}

func (h *Handlers) createUnit(w http.ResponseWriter, r *http.Request) {
	var req createUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if req.CheckInTime == "" {
		req.CheckInTime = "15:00"
	}
	if req.CheckOutTime == "" {
		req.CheckOutTime = "12:00"
	}
	u := domain.Unit{
		Name:               req.Name,
		Kind:               domain.UnitKind(req.Type),
		ShortDescription:   req.ShortDescription,
		FullDescription:    req.FullDescription,
		Image:              req.Image,
		Capacity:           req.Capacity,
		InstanceCount:      req.Count,
		ExtraBedsAvailable: req.ExtraBedsAvailable,
		CheckInTime:        req.CheckInTime,
		CheckOutTime:       req.CheckOutTime,
	}
	for _, p := range req.Prices {
		u.Tariffs = append(u.Tariffs, domain.TariffRow{
			Category:      domain.DayCategory(p.WeekdayType),
			BasePrice:     domain.Money(p.Price),
			ExtraBedPrice: domain.Money(p.ExtraBedPrice),
		})
	}
	created, err := h.Catalog.CreateUnit(r.Context(), u)
	if err != nil {
		writeDomainProblem(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUnitDTO(created))
}

// ---- search ----

type searchResultDTO struct {
	Accommodation    unitDTO        `json:"accommodation"`
	TotalPrice       int64          `json:"total_price"`
	Nights           int            `json:"nights"`
	RequiresExtraBed bool           `json:"requires_extra_bed"`
	Prices           []priceLineDTO `json:"prices"`
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	checkIn, err := parseDate(q.Get("check_in_date"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "check_in_date must be YYYY-MM-DD")
		return
	}
	checkOut, err := parseDate(q.Get("check_out_date"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "check_out_date must be YYYY-MM-DD")
		return
	}
	guests, err := strconv.Atoi(q.Get("guests"))
	if err != nil || guests < 1 {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "guests must be a positive integer")
		return
	}

	results, err := h.Search.Find(r.Context(), checkIn, checkOut, guests)
	if err != nil {
		observability.ObserveSearch("error", 0)
		writeDomainProblem(w, err)
		return
	}
	observability.ObserveSearch("ok", len(results))

	out := make([]searchResultDTO, 0, len(results))
	for _, res := range results {
		out = append(out, searchResultDTO{
			Accommodation:    toUnitDTO(res.Unit),
			TotalPrice:       int64(res.TotalPrice),
			Nights:           res.Nights,
			RequiresExtraBed: res.RequiresExtraBed,
			Prices:           toPriceLines(res.Prices),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- bookings ----

type createBookingRequest struct {
	UnitID       int64   `json:"accommodation_id"`
	CheckInDate  string  `json:"check_in_date"`
	CheckOutDate string  `json:"check_out_date"`
	Guests       int     `json:"guests"`
	GuestName    string  `json:"guest_name"`
	GuestPhone   string  `json:"guest_phone"`
	GuestEmail   string  `json:"guest_email"`
	Notes        *string `json:"notes"`
	TotalPrice   int64   `json:"total_price"`
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	checkIn, err := parseDate(req.CheckInDate)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "check_in_date must be YYYY-MM-DD")
		return
	}
	checkOut, err := parseDate(req.CheckOutDate)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "check_out_date must be YYYY-MM-DD")
		return
	}
	if req.Guests < 1 || req.GuestName == "" || req.GuestPhone == "" || req.GuestEmail == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "guests, guest_name, guest_phone and guest_email are required")
		return
	}

	b, _, err := h.Admission.Admit(r.Context(), app.BookingRequest{
		UnitID:        req.UnitID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Guests:        req.Guests,
		GuestName:     req.GuestName,
		GuestPhone:    req.GuestPhone,
		GuestEmail:    req.GuestEmail,
		Notes:         req.Notes,
		ExpectedTotal: domain.Money(req.TotalPrice),
	})
	if err != nil {
		observability.ObserveAdmission(admissionOutcome(err))
		writeDomainProblem(w, err)
		return
	}
	observability.ObserveAdmission("created")
	writeJSON(w, http.StatusCreated, toBookingDTO(b))
}

func admissionOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidRange):
		return "invalid_range"
	case errors.Is(err, domain.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrPriceMismatch):
		return "price_mismatch"
	case errors.Is(err, domain.ErrTariffMissing):
		return "tariff_missing"
	default:
		return "error"
	}
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	b, err := h.Bookings.GetBooking(r.Context(), id)
	if err != nil {
		writeDomainProblem(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(b))
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	q := domain.BookingsQuery{Limit: 10}
	if ds := r.URL.Query().Get("target_date"); ds != "" {
		d, err := parseDate(ds)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", "target_date must be YYYY-MM-DD")
			return
		}
		q.TargetDate = &d
	}
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 100 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 100")
			return
		}
		q.Limit = l
	}
	if off := r.URL.Query().Get("offset"); off != "" {
		o, err := strconv.Atoi(off)
		if err != nil || o < 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid offset", "offset must be a non-negative integer")
			return
		}
		q.Offset = o
	}

	bookings, err := h.Bookings.ListBookings(r.Context(), q)
	if err != nil {
		writeDomainProblem(w, err)
		return
	}
	out := make([]bookingDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingDTO(b))
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- services ----

type servicePriceDTO struct {
	Name          *string  `json:"name,omitempty"`
	WeekdayType   string   `json:"weekday_type"`
	DurationHours *float64 `json:"duration_hours,omitempty"`
	Price         int64    `json:"price"`
}

type serviceDTO struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	ShortDescription  *string           `json:"short_description,omitempty"`
	FullDescription   *string           `json:"full_description,omitempty"`
	Image             *string           `json:"image,omitempty"`
	IsFree            bool              `json:"is_free"`
	AgreementRequired bool              `json:"is_agreement_required"`
	Prices            []servicePriceDTO `json:"prices"`
}

func toServiceDTO(s domain.Service) serviceDTO {
	d := serviceDTO{
		ID:                s.ID,
		Name:              s.Name,
		ShortDescription:  s.ShortDescription,
		FullDescription:   s.FullDescription,
		Image:             s.Image,
		IsFree:            s.IsFree,
		AgreementRequired: s.AgreementRequired,
		Prices:            make([]servicePriceDTO, 0, len(s.Prices)),
	}
	for _, p := range s.Prices {
		d.Prices = append(d.Prices, servicePriceDTO{
			Name:          p.Name,
			WeekdayType:   string(p.Category),
			DurationHours: p.DurationHours,
			Price:         int64(p.Price),
		})
	}
	return d
}

func (h *Handlers) listServices(w http.ResponseWriter, r *http.Request) {
	svcs, err := h.Catalog.ListServices(r.Context())
	if err != nil {
		writeDomainProblem(w, err)
		return
	}
	out := make([]serviceDTO, 0, len(svcs))
	for _, s := range svcs {
		out = append(out, toServiceDTO(s))
	}
	writeCachedJSON(w, r, out)
}

type createServiceRequest struct {
	Name              string            `json:"name"`
	ShortDescription  *string           `json:"short_description"`
	FullDescription   *string           `json:"full_description"`
	Image             *string           `json:"image"`
	IsFree            bool              `json:"is_free"`
	AgreementRequired bool              `json:"is_agreement_required"`
	Prices            []servicePriceDTO `json:"prices"`
}

func (h *Handlers) createService(w http.ResponseWriter, r *http.Request) {
	var req createServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	s := domain.Service{
		Name:              req.Name,
		ShortDescription:  req.ShortDescription,
		FullDescription:   req.FullDescription,
		Image:             req.Image,
		IsFree:            req.IsFree,
		AgreementRequired: req.AgreementRequired,
	}
	for _, p := range req.Prices {
		s.Prices = append(s.Prices, domain.ServicePrice{
			Name:          p.Name,
			Category:      domain.DayCategory(p.WeekdayType),
			DurationHours: p.DurationHours,
			Price:         domain.Money(p.Price),
		})
	}
	created, err := h.Catalog.CreateService(r.Context(), s)
	if err != nil {
		writeDomainProblem(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toServiceDTO(created))
}
