// Package worker keeps cached booking views in step with what happens at the payment gateway.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-wedding-orders/internal/backend"
	kafkax "github.com/ariefcatur/go-wedding-orders/internal/kafka"
	"github.com/ariefcatur/go-wedding-orders/internal/orders"
	"github.com/ariefcatur/go-wedding-orders/internal/payment"
	"github.com/ariefcatur/go-wedding-orders/internal/redisx"
)

const dedupScope = "worker"

type Service struct {
	rdb      redis.Cmdable
	payments *payment.Service
	events   *kafkax.Emitter
	token    string
}

// NewService wires the VA settlement consumer and poller. token is the service credential used
// for backend calls made outside of any user request.
func NewService(rdb redis.Cmdable, payments *payment.Service, events *kafkax.Emitter, token string) *Service {
	return &Service{rdb: rdb, payments: payments, events: events, token: token}
}

// HandleVASettled dipasang sebagai handler consumer topic payment.va.settled.
func (s *Service) HandleVASettled(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventVASettled {
		return nil
	}

	first, err := redisx.FirstSeen(ctx, s.rdb, dedupScope, env.EventID)
	if err != nil {
		return err
	}
	if !first {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.VASettledPayload](env.Payload)
	if err != nil {
		// payload rusak tidak akan membaik kalau diulang
		zerolog.Ctx(ctx).Error().Err(err).Str("component", "worker").Str("event_id", env.EventID).Msg("drop va settlement")
		return nil
	}

	if err := s.settle(ctx, p); err != nil {
		// offset sesudahnya tetap di-commit; tanda dilepas supaya event yang sama bisa diproses
		// kalau dikirim ulang, sisanya ditangani PollVA
		_ = s.rdb.Del(ctx, redisx.Dedup(dedupScope, env.EventID)).Err()
		return err
	}

	s.events.Emit(ctx, orders.EventPaymentSettled, p.OrderID, orders.PaymentActivityPayload{
		OrderID:   p.OrderID,
		PaymentID: p.PaymentID,
		Method:    orders.MethodVirtualAccount,
		Amount:    p.Amount.Int64(),
		Status:    orders.PaymentVerified,
	})
	return nil
}

func (s *Service) settle(ctx context.Context, p orders.VASettledPayload) error {
	if err := s.payments.Store().UnwatchVA(ctx, p.PaymentID); err != nil {
		return err
	}
	return redisx.InvalidateOrder(ctx, s.rdb, p.OrderID, "")
}

// PollVA is one round of the scheduled VA status check.
func (s *Service) PollVA(ctx context.Context) {
	lg := zerolog.Ctx(ctx)
	if s.token != "" {
		ctx = backend.WithToken(ctx, s.token)
	}
	checked, err := s.payments.PollWatched(ctx)
	if err != nil {
		lg.Error().Err(err).Str("component", "worker").Msg("poll va payments")
		return
	}
	if checked > 0 {
		lg.Debug().Str("component", "worker").Int("checked", checked).Msg("va payments polled")
	}
}

// Schedule registers PollVA on s every interval. A round still running when the next is due
// makes the scheduler skip that tick.
func (s *Service) Schedule(ctx context.Context, sch gocron.Scheduler, every time.Duration) (gocron.Job, error) {
	return sch.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() { s.PollVA(ctx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("va-status-poll"),
	)
}
