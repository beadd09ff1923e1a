package rental

import (
	"encoding/json"
	"time"
)

const (
	EventBookingCreated = "BookingCreated"
	EventCartCheckedOut = "CartCheckedOut"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "rental-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // booking_id (atau id booking pertama utk cart)
	Payload       json.RawMessage `json:"payload"`
}

type BookingLine struct {
	BookingID      int64  `json:"booking_id"`
	ProductID      int64  `json:"product_id"`
	ProductNama    string `json:"product_nama"`
	TanggalMulai   Date   `json:"tanggal_mulai"`
	TanggalSelesai Date   `json:"tanggal_selesai"`
	Jumlah         int    `json:"jumlah"`
	DurasiHari     int    `json:"durasi_hari"`
	HargaPerhari   int64  `json:"harga_perhari"`
	TotalHarga     int64  `json:"total_harga"`
}

// BookingCreatedPayload dipakai utk booking tunggal maupun checkout
// keranjang; bedanya hanya jumlah Lines.
type BookingCreatedPayload struct {
	NamaPemesan      string        `json:"nama_pemesan"`
	NomorWA          string        `json:"nomor_wa"`
	Catatan          *string       `json:"catatan,omitempty"`
	Lines            []BookingLine `json:"lines"`
	TotalKeseluruhan int64         `json:"total_keseluruhan"`
}
