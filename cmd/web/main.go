package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/go-wedding-orders/internal/availability"
	"github.com/ariefcatur/go-wedding-orders/internal/backend"
	"github.com/ariefcatur/go-wedding-orders/internal/checkout"
	"github.com/ariefcatur/go-wedding-orders/internal/config"
	"github.com/ariefcatur/go-wedding-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-wedding-orders/internal/kafka"
	"github.com/ariefcatur/go-wedding-orders/internal/lifecycle"
	"github.com/ariefcatur/go-wedding-orders/internal/logging"
	"github.com/ariefcatur/go-wedding-orders/internal/metrics"
	"github.com/ariefcatur/go-wedding-orders/internal/orders"
	"github.com/ariefcatur/go-wedding-orders/internal/payment"
	"github.com/ariefcatur/go-wedding-orders/internal/postgres"
	"github.com/ariefcatur/go-wedding-orders/internal/redisx"
	"github.com/ariefcatur/go-wedding-orders/internal/tracing"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.Setup(os.Stdout, cfg.ServiceName, cfg.LogLevel)
	ctx, cancel := context.WithCancel(logger.WithContext(context.Background()))
	defer cancel()

	tp, err := tracing.Init(ctx, cfg.CollectorHost, cfg.ServiceName)
	if err != nil {
		log.Fatal().Err(err).Msg("init tracing")
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("shutdown tracing")
		}
	}()

	metrics.Serve(cfg.MetricsAddr)

	// DB (draft)
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer, berhenti paling akhir supaya event terakhir ikut terkirim
	prodCtx, stopProd := context.WithCancel(ctx)
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicActivity, 1024)
	prod.Start(prodCtx)
	events := kafkax.NewEmitter(prod, cfg.ServiceName)

	be := backend.New(cfg.BackendURL, cfg.BackendTimeout)
	h := &httpx.Handlers{
		Backend:      be,
		Availability: availability.NewSource(rdb, be, cfg.BookedDatesTTL),
		Checkout:     checkout.NewService(be, &checkout.DraftRepo{DB: db}, rdb, events),
		Lifecycle:    lifecycle.NewService(be, rdb, events),
		Payments:     payment.NewService(rdb, be, events),
		Location:     cfg.Location(),
	}
	router := httpx.NewRouter()
	h.Register(router)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.BackendURL).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	stopProd()        // flush inbox lalu tutup writer
	prod.WaitClosed() // drain
}
