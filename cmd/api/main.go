package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ariefcatur/go-rental-booking.git/internal/config"
	"github.com/ariefcatur/go-rental-booking.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-rental-booking.git/internal/kafka"
	"github.com/ariefcatur/go-rental-booking.git/internal/metrics"
	"github.com/ariefcatur/go-rental-booking.git/internal/notify"
	"github.com/ariefcatur/go-rental-booking.git/internal/postgres"
	"github.com/ariefcatur/go-rental-booking.git/internal/redisx"
	"github.com/ariefcatur/go-rental-booking.git/internal/rental"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PgMaxConns)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer utk event booking
	prod := kafkax.NewProducer(cfg.KafkaBrokers, rental.TopicBookingCreated, 1024)
	prod.Start(ctx)

	// Engine & handler
	svc := &rental.Service{
		Products: &rental.ProductRepo{DB: db},
		Bookings: &rental.BookingRepo{DB: db},
		Now:      time.Now,
	}
	router := httpx.NewRouter()
	rh := &httpx.RentalHandler{
		Svc:      svc,
		Producer: prod,
		Redis:    rdb,
		Metrics:  metrics.NewBookingMetrics(prometheus.DefaultRegisterer),
		Builder:  notify.MessageBuilder{AdminPhone: cfg.AdminPhone},
		Service:  cfg.ServiceName,
	}
	rh.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // tutup inbox -> flush & close writer
	prod.WaitClosed() // drain
}
