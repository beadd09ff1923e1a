package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-rental-booking.git/internal/kafka"
	"github.com/ariefcatur/go-rental-booking.git/internal/metrics"
	"github.com/ariefcatur/go-rental-booking.git/internal/notify"
	"github.com/ariefcatur/go-rental-booking.git/internal/redisx"
	"github.com/ariefcatur/go-rental-booking.git/internal/rental"
)

type RentalHandler struct {
	Svc      *rental.Service
	Producer *kafkax.Producer
	Redis    *redis.Client
	Metrics  *metrics.BookingMetrics
	Builder  notify.MessageBuilder
	Service  string
}

func (h *RentalHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.showProduct)
	r.Get("/products/{id}/booked-dates", h.bookedDates)
	r.Post("/products/{id}/check", h.checkAvailability)
	r.Post("/products/{id}/booking", h.createBooking)
	r.Post("/cart/checkout", h.cartCheckout)
	r.Get("/bookings", h.listBookings)
	r.Get("/bookings/{id}", h.getBooking)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(k rental.Kind) int {
	switch k {
	case rental.KindValidation:
		return http.StatusUnprocessableEntity
	case rental.KindNotFound:
		return http.StatusNotFound
	case rental.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	var e *rental.Error
	if !errors.As(err, &e) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	body := map[string]any{"error": string(e.Kind), "message": e.Message}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	if e.Item >= 0 {
		body["item"] = e.Item
	}
	writeJSON(w, statusFor(e.Kind), body)
}

func errLabel(err error) string {
	switch rental.KindOf(err) {
	case rental.KindValidation:
		return "validation"
	case rental.KindNotFound:
		return "not_found"
	case rental.KindConflict:
		return "conflict"
	default:
		return "error"
	}
}

func urlID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, rental.ErrValidation(rental.FieldError{Field: "id", Message: "harus angka positif"})
	}
	return id, nil
}

func (h *RentalHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	f := rental.ProductFilter{Search: r.URL.Query().Get("search")}
	rawCat := r.URL.Query().Get("category_id")
	if rawCat != "" {
		cid, err := strconv.ParseInt(rawCat, 10, 64)
		if err != nil {
			writeErr(w, rental.ErrValidation(rental.FieldError{Field: "category_id", Message: "harus angka"}))
			return
		}
		f.CategoryID = &cid
	}

	products, err := h.Svc.ListProducts(ctx, f)
	if err != nil {
		writeErr(w, err)
		return
	}
	if products == nil {
		products = []rental.Product{}
	}
	categories, err := h.Svc.ListCategories(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	if categories == nil {
		categories = []rental.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"products":   products,
		"categories": categories,
		"filters":    map[string]string{"category_id": rawCat, "search": f.Search},
	})
}

func (h *RentalHandler) showProduct(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	ranges, err := h.cachedRanges(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": p, "booked_dates": ranges})
}

func (h *RentalHandler) bookedDates(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ranges, err := h.cachedRanges(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"booked_dates": ranges})
}

// cachedRanges: cache-aside di redis, TTL pendek, di-invalidate saat ada
// booking baru. DB tetap jadi kebenaran.
func (h *RentalHandler) cachedRanges(ctx context.Context, productID int64) ([]rental.DateRange, error) {
	key := fmt.Sprintf(redisx.KeyBookedRanges, productID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		var out []rental.DateRange
		if json.Unmarshal([]byte(s), &out) == nil {
			return out, nil
		}
	}
	ranges, err := h.Svc.ListBookedRanges(ctx, productID)
	if err != nil {
		return nil, err
	}
	if ranges == nil {
		ranges = []rental.DateRange{}
	}
	b, _ := json.Marshal(ranges)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLBookedRanges).Err()
	return ranges, nil
}

type checkReq struct {
	TanggalMulai   rental.Date `json:"tanggal_mulai"`
	TanggalSelesai rental.Date `json:"tanggal_selesai"`
}

func (h *RentalHandler) checkAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	var req checkReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	today := rental.DateOf(time.Now())
	if err := rental.ValidateCheck(req.TanggalMulai, req.TanggalSelesai, today); err != nil {
		writeErr(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	av, err := h.Svc.CheckAvailability(ctx, id, rental.DateRange{Mulai: req.TanggalMulai, Selesai: req.TanggalSelesai})
	if err != nil {
		writeErr(w, err)
		return
	}
	h.Metrics.ObserveCheck(av.Available)
	if !av.Available {
		writeJSON(w, http.StatusOK, map[string]any{
			"available": false,
			"message":   "Produk sudah dibooking pada tanggal tersebut",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"available":       true,
		"days":            av.Days,
		"total_price":     av.TotalPrice,
		"price_formatted": notify.FormatRupiah(av.TotalPrice),
	})
}

func (h *RentalHandler) createBooking(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	var req rental.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	req.ProductID = id

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Svc.SubmitBooking(ctx, req)
	if err != nil {
		h.Metrics.ObserveSubmission("single", errLabel(err))
		writeErr(w, err)
		return
	}
	h.Metrics.ObserveSubmission("single", "created")

	payload := rental.BookingCreatedPayload{
		NamaPemesan:      b.NamaPemesan,
		NomorWA:          b.NomorWA,
		Catatan:          b.Catatan,
		Lines:            []rental.BookingLine{h.toLine(ctx, *b)},
		TotalKeseluruhan: b.TotalHarga,
	}
	h.publish(payload, b.ID, r.Header.Get("X-Request-Id"))
	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyBookedRanges, b.ProductID)).Err()

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":      true,
		"booking_id":   b.ID,
		"booking":      b,
		"whatsapp_url": h.Builder.Link(payload, b.CreatedAt),
		"message":      "Booking berhasil dibuat!",
	})
}

func (h *RentalHandler) cartCheckout(w http.ResponseWriter, r *http.Request) {
	var req rental.CartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Svc.SubmitCartBooking(ctx, req)
	if err != nil {
		h.Metrics.ObserveSubmission("cart", errLabel(err))
		writeErr(w, err)
		return
	}
	h.Metrics.ObserveSubmission("cart", "created")

	payload := rental.BookingCreatedPayload{
		NamaPemesan:      req.NamaPemesan,
		NomorWA:          req.NomorWA,
		Catatan:          req.Catatan,
		TotalKeseluruhan: res.TotalKeseluruhan,
	}
	ids := make([]int64, 0, len(res.Bookings))
	for _, b := range res.Bookings {
		payload.Lines = append(payload.Lines, h.toLine(ctx, b))
		ids = append(ids, b.ID)
		_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyBookedRanges, b.ProductID)).Err()
	}
	h.publish(payload, ids[0], r.Header.Get("X-Request-Id"))

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":           true,
		"booking_ids":       ids,
		"total_keseluruhan": res.TotalKeseluruhan,
		"whatsapp_url":      h.Builder.Link(payload, res.Bookings[0].CreatedAt),
		"message":           "Booking berhasil dibuat!",
	})
}

// toLine melengkapi line event dengan nama & harga produk. Kalau lookup
// gagal, line tetap terkirim tanpa nama; notifier tidak bergantung padanya.
func (h *RentalHandler) toLine(ctx context.Context, b rental.Booking) rental.BookingLine {
	l := rental.BookingLine{
		BookingID:      b.ID,
		ProductID:      b.ProductID,
		TanggalMulai:   b.TanggalMulai,
		TanggalSelesai: b.TanggalSelesai,
		Jumlah:         b.Jumlah,
		DurasiHari:     b.DurasiHari,
		TotalHarga:     b.TotalHarga,
	}
	if p, err := h.Svc.GetProduct(ctx, b.ProductID); err == nil {
		l.ProductNama = p.Nama
		l.HargaPerhari = p.HargaSewaPerhari
	}
	return l
}

func (h *RentalHandler) publish(p rental.BookingCreatedPayload, corrID int64, trace string) {
	if h.Producer == nil {
		return
	}
	ev := rental.Envelope{
		EventID:       uuid.NewString(),
		EventType:     rental.EventBookingCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       trace,
		CorrelationID: strconv.FormatInt(corrID, 10),
	}
	ev.Payload = kafkax.MustMarshal(p)
	h.Producer.Publish(rental.PartitionKey(corrID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(rental.EventBookingCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *RentalHandler) listBookings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	bs, err := h.Svc.ListBookings(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	if bs == nil {
		bs = []rental.Booking{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bs})
}

func (h *RentalHandler) getBooking(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) coba cache
	key := fmt.Sprintf(redisx.KeyBooking, id)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s))
		return
	}

	// 2) fallback DB
	b, err := h.Svc.GetBooking(ctx, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	body, _ := json.Marshal(b)
	_ = h.Redis.Set(ctx, key, body, redisx.TTLBooking).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
