// Package lifecycle runs the admin and user actions on an existing order: cancel, complete and
// review, plus the cached single-order read those screens start from.
package lifecycle

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ariefcatur/go-wedding-orders/internal/backend"
	kafkax "github.com/ariefcatur/go-wedding-orders/internal/kafka"
	"github.com/ariefcatur/go-wedding-orders/internal/orders"
	"github.com/ariefcatur/go-wedding-orders/internal/redisx"
)

type Backend interface {
	Order(ctx context.Context, id int64) (orders.Order, error)
	Orders(ctx context.Context, q backend.ListQuery) (orders.Page[orders.Order], error)
	UpdateOrderStatus(ctx context.Context, id int64, in orders.StatusUpdate) (orders.Order, error)
	SubmitReview(ctx context.Context, orderID int64, in orders.Review) error
}

type Service struct {
	be     Backend
	rdb    redis.Cmdable
	events *kafkax.Emitter
}

func NewService(be Backend, rdb redis.Cmdable, events *kafkax.Emitter) *Service {
	return &Service{be: be, rdb: rdb, events: events}
}

// Get reads through the order view cache. A cached order is only served to a viewer allowed to
// see it; anyone else goes to the backend, which answers 403/404 on its own.
func (s *Service) Get(ctx context.Context, v orders.Viewer, id int64) (orders.Order, error) {
	lg := zerolog.Ctx(ctx)
	if s.rdb != nil {
		var o orders.Order
		found, err := redisx.GetJSON(ctx, s.rdb, redisx.OrderView(id), &o)
		if err != nil {
			lg.Warn().Err(err).Str("component", "lifecycle").Int64("order_id", id).Msg("order view cache read")
		}
		if found && v.CanSee(o) {
			return o, nil
		}
	}

	o, err := s.be.Order(ctx, id)
	if err != nil {
		return orders.Order{}, err
	}
	if s.rdb != nil && o.UserID > 0 {
		if err := redisx.SetJSON(ctx, s.rdb, redisx.OrderView(id), o, redisx.TTLOrderView); err != nil {
			lg.Warn().Err(err).Str("component", "lifecycle").Int64("order_id", id).Msg("order view cache write")
		}
	}
	return o, nil
}

// List passes filters and pagination straight to the backend.
func (s *Service) List(ctx context.Context, q backend.ListQuery) (orders.Page[orders.Order], error) {
	return s.be.Orders(ctx, q)
}

func (s *Service) Cancel(ctx context.Context, v orders.Viewer, id int64, f orders.CancelForm) (orders.Order, error) {
	o, err := s.fresh(ctx, id)
	if err != nil {
		return orders.Order{}, err
	}
	upd, err := f.Validate(o)
	if err != nil {
		return orders.Order{}, err
	}
	updated, err := s.be.UpdateOrderStatus(ctx, id, upd)
	if err != nil {
		return orders.Order{}, err
	}
	s.invalidate(ctx, id, o.EventDate)
	s.events.Emit(ctx, orders.EventOrderCancelled, id, orders.OrderActivityPayload{
		OrderID:     id,
		OrderNumber: o.OrderNumber,
		Status:      orders.StatusCancelled,
		ActorID:     actor(v),
		Reason:      upd.CancellationReason,
	})
	if updated.ID == 0 {
		o.CancellationReason = upd.CancellationReason
	}
	return applied(o, updated, orders.StatusCancelled), nil
}

type CompleteResult struct {
	Order   orders.Order        `json:"order"`
	Warning string              `json:"warning,omitempty"`
	Review  orders.ReviewPrompt `json:"review"`
}

// Complete finishes an ongoing order and opens the review prompt straight away.
func (s *Service) Complete(ctx context.Context, v orders.Viewer, id int64) (CompleteResult, error) {
	o, err := s.fresh(ctx, id)
	if err != nil {
		return CompleteResult{}, err
	}
	c, err := orders.CheckCompletion(o)
	if err != nil {
		return CompleteResult{}, err
	}
	updated, err := s.be.UpdateOrderStatus(ctx, id, c.Update)
	if err != nil {
		return CompleteResult{}, err
	}
	done := applied(o, updated, orders.StatusCompleted)

	s.invalidate(ctx, id, "")
	s.events.Emit(ctx, orders.EventOrderCompleted, id, orders.OrderActivityPayload{
		OrderID:     id,
		OrderNumber: o.OrderNumber,
		Status:      orders.StatusCompleted,
		ActorID:     actor(v),
	})
	return CompleteResult{Order: done, Warning: c.Warning, Review: orders.PromptAfterCompletion(done)}, nil
}

func (s *Service) Review(ctx context.Context, v orders.Viewer, id int64, p orders.ReviewPrompt) (orders.Order, error) {
	o, err := s.fresh(ctx, id)
	if err != nil {
		return orders.Order{}, err
	}
	r, err := p.Validate(o)
	if err != nil {
		return orders.Order{}, err
	}
	if err := s.be.SubmitReview(ctx, id, r); err != nil {
		return orders.Order{}, err
	}
	o.Review = &r
	o.HasReviewed = true

	s.invalidate(ctx, id, "")
	s.events.Emit(ctx, orders.EventReviewSubmitted, id, orders.ReviewSubmittedPayload{OrderID: id, Rating: r.Rating})
	return o, nil
}

// fresh bypasses the cache; guards must see the backend's current status.
func (s *Service) fresh(ctx context.Context, id int64) (orders.Order, error) {
	return s.be.Order(ctx, id)
}

func (s *Service) invalidate(ctx context.Context, id int64, eventDate string) {
	if s.rdb == nil {
		return
	}
	if err := redisx.InvalidateOrder(ctx, s.rdb, id, eventDate); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("component", "lifecycle").Int64("order_id", id).Msg("invalidate order view")
	}
}

// applied prefers the backend's echo; some status endpoints answer with an empty body.
func applied(before, echo orders.Order, st orders.Status) orders.Order {
	if echo.ID == 0 {
		before.Status = st
		return before
	}
	return echo
}

func actor(v orders.Viewer) string {
	if v.Admin {
		return "admin:" + strconv.FormatInt(v.UserID, 10)
	}
	return strconv.FormatInt(v.UserID, 10)
}
