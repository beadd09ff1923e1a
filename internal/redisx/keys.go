package redisx

import "time"

const (
	// Cache rentang tanggal terisi per produk: booked_ranges:{product_id}
	// -> JSON [{start,end}]. Di-invalidate setiap ada booking baru.
	KeyBookedRanges = "booked_ranges:%d"

	// Cache booking utk GET by id: booking:{booking_id} -> JSON booking.
	KeyBooking = "booking:%d"

	// Link WA yang sudah dibangun notifier: wa:booking:{booking_id} -> URL.
	KeyWhatsAppLink = "wa:booking:%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLBookedRanges = 5 * time.Minute
	TTLBooking      = 5 * time.Minute
	TTLWhatsAppLink = 7 * 24 * time.Hour
	TTLDedup        = 48 * time.Hour
)
