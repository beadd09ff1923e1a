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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ariefcatur/go-rental-booking.git/internal/config"
	kafkax "github.com/ariefcatur/go-rental-booking.git/internal/kafka"
	"github.com/ariefcatur/go-rental-booking.git/internal/metrics"
	"github.com/ariefcatur/go-rental-booking.git/internal/notify"
	"github.com/ariefcatur/go-rental-booking.git/internal/redisx"
	"github.com/ariefcatur/go-rental-booking.git/internal/rental"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis utk dedup & simpan link WA
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Redis:       rdb,
		Builder:     notify.MessageBuilder{AdminPhone: cfg.AdminPhone},
		Metrics:     metrics.NewBookingMetrics(prometheus.DefaultRegisterer),
		ServiceName: cfg.ServiceName + "-notifier",
	}

	// endpoint kecil utk healthcheck & scrape metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	msrv := &http.Server{Addr: cfg.NotifierAddr, Handler: mux}
	go func() {
		if err := msrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics listen: %v", err)
		}
	}()

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, rental.TopicBookingCreated, cfg.NotifierWorkers)

	go func() {
		log.Printf("notifier consumer started: group=%s topic=%s workers=%d",
			cfg.NotifierGroup, rental.TopicBookingCreated, cfg.NotifierWorkers)
		if err := cons.Start(ctx, svc.HandleBookingCreated); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumer...")
	cancel()
	ctx2, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel2()
	_ = msrv.Shutdown(ctx2)
	time.Sleep(500 * time.Millisecond)
}
