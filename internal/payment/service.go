package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ariefcatur/go-wedding-orders/internal/backend"
	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
	kafkax "github.com/ariefcatur/go-wedding-orders/internal/kafka"
	"github.com/ariefcatur/go-wedding-orders/internal/metrics"
	"github.com/ariefcatur/go-wedding-orders/internal/orders"
	"github.com/ariefcatur/go-wedding-orders/internal/redisx"
)

type Backend interface {
	Order(ctx context.Context, id int64) (orders.Order, error)
	Payment(ctx context.Context, paymentID int64) (orders.Payment, error)
	CreatePayment(ctx context.Context, orderID int64, in backend.PaymentRequest) (orders.Payment, error)
	VerifyPayment(ctx context.Context, paymentID int64, in backend.VerifyRequest) (orders.Payment, error)
	PaymentStatus(ctx context.Context, paymentID int64) (backend.PaymentStatusResult, error)
}

type Service struct {
	store  *Store
	rdb    redis.UniversalClient
	be     Backend
	events *kafkax.Emitter
	now    func() time.Time
}

func NewService(rdb redis.UniversalClient, be Backend, events *kafkax.Emitter) *Service {
	return &Service{store: NewStore(rdb), rdb: rdb, be: be, events: events, now: time.Now}
}

func (s *Service) Store() *Store { return s.store }

// Start opens a new attempt for an order, using the backend's current totals.
func (s *Service) Start(ctx context.Context, orderID int64) (*Flow, error) {
	o, err := s.be.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	f, err := NewFlow(id.String(), o, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, f); err != nil {
		return nil, err
	}
	metrics.FlowTransitions.WithLabelValues(string(f.Step())).Inc()
	return f, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Flow, error) {
	return s.store.Load(ctx, id)
}

func (s *Service) SelectMethod(ctx context.Context, id string, m orders.PaymentMethod) (*Flow, error) {
	return s.mutate(ctx, id, func(f *Flow) error { return f.SelectMethod(m) })
}

func (s *Service) EnterDetails(ctx context.Context, id string, in DetailsInput) (*Flow, error) {
	return s.mutate(ctx, id, func(f *Flow) error { return f.EnterDetails(in) })
}

func (s *Service) Confirm(ctx context.Context, id string) (*Flow, error) {
	return s.mutate(ctx, id, (*Flow).Confirm)
}

func (s *Service) Back(ctx context.Context, id string) (*Flow, error) {
	return s.mutate(ctx, id, (*Flow).Back)
}

// mutate persists the flow unless the action was refused outright; partially accepted detail
// input is kept so the form does not lose it.
func (s *Service) mutate(ctx context.Context, id string, fn func(*Flow) error) (*Flow, error) {
	var before Step
	f, err := s.store.Update(ctx, id, func(f *Flow) error {
		before = f.Step()
		return fn(f)
	})
	if f != nil && before != "" && f.Step() != before {
		metrics.FlowTransitions.WithLabelValues(string(f.Step())).Inc()
	}
	return f, err
}

// Submit posts the confirmed attempt. A bank transfer must carry its proof image. The balance is
// re-read from the backend first, and the move to Submitting is a compare-and-set, so a double
// click posts once. On failure the flow returns to detail entry with the message; nothing is
// retried.
func (s *Service) Submit(ctx context.Context, id string, proof *backend.Upload) (*Flow, error) {
	f, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	c, ok := f.State.(Confirmation)
	if !ok {
		return f, f.wrongStep("submit")
	}
	if c.Details.Method == orders.MethodBankTransfer {
		if err := checkProof(proof); err != nil {
			return f, err
		}
	}
	o, err := s.be.Order(ctx, f.OrderID)
	if err != nil {
		return f, err
	}

	var d Details
	f, err = s.mutate(ctx, id, func(f *Flow) error {
		if err := f.Refresh(o); err != nil {
			return err
		}
		var err error
		d, err = f.Begin()
		return err
	})
	if err != nil {
		return f, err
	}

	req := backend.PaymentRequest{
		Amount:        d.Amount,
		PaymentType:   d.Type,
		PaymentMethod: d.Method,
		BankCode:      d.BankCode,
	}
	if d.Method == orders.MethodBankTransfer {
		req.Proof = proof
	}

	p, err := s.be.CreatePayment(ctx, f.OrderID, req)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("component", "payment").Str("flow", f.ID).Int64("order_id", f.OrderID).Msg("payment submission failed")
		_ = f.Fail(err)
		if saveErr := s.store.Save(ctx, f); saveErr != nil {
			return nil, saveErr
		}
		metrics.FlowTransitions.WithLabelValues(string(StepDetailEntry)).Inc()
		return f, err
	}

	_ = f.Succeed(p)
	if err := s.store.Save(ctx, f); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("component", "payment").Str("flow", f.ID).Msg("save succeeded flow")
	}
	metrics.FlowTransitions.WithLabelValues(string(StepSucceeded)).Inc()

	if p.PaymentMethod == orders.MethodVirtualAccount && p.Status == orders.PaymentPending {
		if err := s.store.WatchVA(ctx, p.ID); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("component", "payment").Int64("payment_id", p.ID).Msg("watch va")
		}
	}
	s.invalidate(ctx, f.OrderID)
	s.events.Emit(ctx, orders.EventPaymentSubmitted, f.OrderID, activity(f.OrderID, p))
	return f, nil
}

func checkProof(u *backend.Upload) error {
	if u == nil {
		return ValidateProof(0, "")
	}
	ct := DetectProofType(u.Data)
	if err := ValidateProof(int64(len(u.Data)), ct); err != nil {
		return err
	}
	u.ContentType = ct
	return nil
}

// Verify applies the admin decision with a single PATCH, then drops the cached order view so the
// next read carries the backend's recomputed totals.
func (s *Service) Verify(ctx context.Context, paymentID int64, v Verification) (orders.Payment, error) {
	p, err := s.be.Payment(ctx, paymentID)
	if err != nil {
		return orders.Payment{}, err
	}
	v, err = v.Validate(p)
	if err != nil {
		return orders.Payment{}, err
	}
	updated, err := s.be.VerifyPayment(ctx, paymentID, backend.VerifyRequest{Status: v.Status, Note: v.Note})
	if err != nil {
		return orders.Payment{}, err
	}
	if updated.OrderID == 0 {
		updated.OrderID = p.OrderID
	}

	s.invalidate(ctx, updated.OrderID)
	ev := orders.EventPaymentVerified
	if v.Status == orders.PaymentRejected {
		ev = orders.EventPaymentRejected
	}
	s.events.Emit(ctx, ev, updated.OrderID, activity(updated.OrderID, updated))
	return updated, nil
}

type StatusView struct {
	PaymentID int64                `json:"payment_id"`
	Status    orders.PaymentStatus `json:"status"`
	Label     string               `json:"label"`
	Payment   *orders.Payment      `json:"payment,omitempty"`
	Countdown *Countdown           `json:"countdown,omitempty"`
	CheckedAt time.Time            `json:"checked_at"`
}

// CheckStatus asks the backend for the current VA status. Every successful answer overwrites the
// stored one; terminal statuses stop the poller from asking again.
func (s *Service) CheckStatus(ctx context.Context, paymentID int64) (StatusView, error) {
	res, err := s.be.PaymentStatus(ctx, paymentID)
	if err != nil {
		return StatusView{}, err
	}
	now := s.now()
	v := StatusView{
		PaymentID: paymentID,
		Status:    res.Status,
		Label:     res.Status.Label(),
		Payment:   res.Payment,
		CheckedAt: now,
	}
	if res.Payment != nil && res.Status == orders.PaymentPending {
		if created, err := time.Parse(time.RFC3339Nano, res.Payment.CreatedAt); err == nil {
			cd := NewCountdown(now, created)
			v.Countdown = &cd
		}
	}
	metrics.VAPolls.WithLabelValues(string(res.Status)).Inc()

	lg := zerolog.Ctx(ctx)
	if err := s.store.SaveVAStatus(ctx, paymentID, v); err != nil {
		lg.Warn().Err(err).Str("component", "payment").Int64("payment_id", paymentID).Msg("store va status")
	}
	if res.Status.Terminal() {
		if err := s.store.UnwatchVA(ctx, paymentID); err != nil {
			lg.Warn().Err(err).Str("component", "payment").Int64("payment_id", paymentID).Msg("unwatch va")
		}
		if res.Payment != nil {
			s.invalidate(ctx, res.Payment.OrderID)
		}
	}
	return v, nil
}

// PollWatched checks every VA payment still marked pending. One failing payment does not stop
// the others.
func (s *Service) PollWatched(ctx context.Context) (checked int, err error) {
	ids, err := s.store.WatchedVA(ctx)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return checked, ctx.Err()
		}
		if _, err := s.CheckStatus(ctx, id); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("component", "payment").Int64("payment_id", id).Msg("va status check failed")
			if errors.Is(err, feedback.ErrNotFound) {
				_ = s.store.UnwatchVA(ctx, id)
			}
			continue
		}
		checked++
	}
	return checked, nil
}

func (s *Service) invalidate(ctx context.Context, orderID int64) {
	if orderID == 0 {
		return
	}
	if err := redisx.InvalidateOrder(ctx, s.rdb, orderID, ""); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("component", "payment").Int64("order_id", orderID).Msg("invalidate order view")
	}
}

func activity(orderID int64, p orders.Payment) orders.PaymentActivityPayload {
	return orders.PaymentActivityPayload{
		OrderID:   orderID,
		PaymentID: p.ID,
		Method:    p.PaymentMethod,
		Type:      p.PaymentType,
		Amount:    p.Amount.Int64(),
		Status:    p.Status,
		Note:      p.Note,
	}
}
