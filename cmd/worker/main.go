package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "time/tzdata"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/go-wedding-orders/internal/backend"
	"github.com/ariefcatur/go-wedding-orders/internal/config"
	kafkax "github.com/ariefcatur/go-wedding-orders/internal/kafka"
	"github.com/ariefcatur/go-wedding-orders/internal/logging"
	"github.com/ariefcatur/go-wedding-orders/internal/metrics"
	"github.com/ariefcatur/go-wedding-orders/internal/orders"
	"github.com/ariefcatur/go-wedding-orders/internal/payment"
	"github.com/ariefcatur/go-wedding-orders/internal/redisx"
	"github.com/ariefcatur/go-wedding-orders/internal/tracing"
	"github.com/ariefcatur/go-wedding-orders/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	name := cfg.ServiceName + "-worker"
	logger := logging.Setup(os.Stdout, name, cfg.LogLevel)
	ctx, cancel := context.WithCancel(logger.WithContext(context.Background()))
	defer cancel()

	tp, err := tracing.Init(ctx, cfg.CollectorHost, name)
	if err != nil {
		log.Fatal().Err(err).Msg("init tracing")
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	metrics.Serve(cfg.MetricsAddr)

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prodCtx, stopProd := context.WithCancel(context.Background())
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicActivity, 1024)
	prod.Start(prodCtx)

	be := backend.New(cfg.BackendURL, cfg.BackendTimeout)
	payments := payment.NewService(rdb, be, nil)
	svc := worker.NewService(rdb, payments, kafkax.NewEmitter(prod, name), cfg.BackendToken)

	// VA polling
	sch, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler")
	}
	if _, err := svc.Schedule(ctx, sch, cfg.VAPollInterval); err != nil {
		log.Fatal().Err(err).Msg("schedule va poll")
	}
	sch.Start()

	// Consumer
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.WorkerGroup, orders.TopicVASettled, cfg.WorkerCount)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info().Str("group", cfg.WorkerGroup).Str("topic", orders.TopicVASettled).Int("workers", cfg.WorkerCount).Msg("worker consumer started")
		if err := cons.Start(ctx, svc.HandleVASettled); err != nil {
			log.Error().Err(err).Msg("consumer exit")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down worker...")

	cancel()
	if err := sch.Shutdown(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown")
	}
	<-done
	stopProd()
	prod.WaitClosed()
}
