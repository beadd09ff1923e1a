package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-rental-booking.git/internal/kafka"
	"github.com/ariefcatur/go-rental-booking.git/internal/metrics"
	"github.com/ariefcatur/go-rental-booking.git/internal/redisx"
	"github.com/ariefcatur/go-rental-booking.git/internal/rental"
)

// Service mengkonsumsi event booking dan menyiapkan pesan WA admin.
// Pengiriman sesungguhnya tetap manual (admin membuka deep link); service
// ini hanya membangun dan menyimpan link-nya.
type Service struct {
	Redis       *redis.Client
	Builder     MessageBuilder
	Metrics     *metrics.BookingMetrics
	ServiceName string
}

// HandleBookingCreated dipasang sebagai handler consumer.
func (s *Service) HandleBookingCreated(ctx context.Context, m kafkago.Message) error {
	var env rental.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != rental.EventBookingCreated {
		return nil // ignore
	}

	// dedup via redis (pakai event_id): event ulang tidak membangun link dua kali
	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}

	p, err := kafkax.UnwrapPayload[rental.BookingCreatedPayload](env.Payload)
	if err != nil {
		return err
	}
	if len(p.Lines) == 0 {
		return nil
	}

	link := s.Builder.Link(p, env.OccurredAt)
	for _, l := range p.Lines {
		key := fmt.Sprintf(redisx.KeyWhatsAppLink, l.BookingID)
		if err := s.Redis.Set(ctx, key, link, redisx.TTLWhatsAppLink).Err(); err != nil {
			return err
		}
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	s.Metrics.ObserveNotified()

	log.Printf("booking %d: pesan WA siap (%d item, total %s)",
		p.Lines[0].BookingID, len(p.Lines), FormatRupiah(p.TotalKeseluruhan))
	return nil
}
