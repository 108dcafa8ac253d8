package checkout

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ariefcatur/go-wedding-orders/internal/availability"
	"github.com/ariefcatur/go-wedding-orders/internal/backend"
	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
	kafkax "github.com/ariefcatur/go-wedding-orders/internal/kafka"
	"github.com/ariefcatur/go-wedding-orders/internal/orders"
	"github.com/ariefcatur/go-wedding-orders/internal/redisx"
)

type Backend interface {
	availability.Checker
	Catalog(ctx context.Context, id int64) (orders.Catalog, error)
	CreateOrder(ctx context.Context, in backend.OrderRequest) (orders.Order, error)
	UpdateOrder(ctx context.Context, id int64, in backend.OrderRequest) (orders.Order, error)
}

type Service struct {
	be     Backend
	drafts DraftStore
	rdb    redis.Cmdable
	events *kafkax.Emitter
}

func NewService(be Backend, drafts DraftStore, rdb redis.Cmdable, events *kafkax.Emitter) *Service {
	return &Service{be: be, drafts: drafts, rdb: rdb, events: events}
}

// Result tells the front end where to go next.
type Result struct {
	Order    orders.Order `json:"order"`
	Redirect string       `json:"redirect"`
}

// Submit validates, re-checks the date right before posting, then creates or updates the order.
// Server-side 422s come back as backend.ValidationError; nothing is retried.
func (s *Service) Submit(ctx context.Context, userID int64, f Form) (Result, error) {
	if err := f.Validate(); err != nil {
		return Result{}, err
	}
	if f.priceFromCatalog() {
		c, err := s.be.Catalog(ctx, *f.CatalogID)
		if err != nil {
			return Result{}, err
		}
		f.Sheet.PackagePrice = c.PriceRange[0].Int64()
		if err := f.validateDiscount(); err != nil {
			return Result{}, err
		}
	}
	if err := availability.Recheck(ctx, s.be, f.EventDate, f.OwnDate); err != nil {
		return Result{}, err
	}

	var (
		o   orders.Order
		err error
		ev  = orders.EventOrderSubmitted
	)
	if f.Editing() {
		ev = orders.EventOrderUpdated
		o, err = s.be.UpdateOrder(ctx, *f.OrderID, f.Request())
	} else {
		o, err = s.be.CreateOrder(ctx, f.Request())
	}
	if err != nil {
		if backend.IsConflict(err) {
			// tanggal keburu diambil orang lain di antara recheck dan POST
			return Result{}, availability.DateConflict()
		}
		return Result{}, err
	}

	lg := zerolog.Ctx(ctx)
	if f.Type == backend.OrderTypeCustom && !f.Editing() && userID > 0 && s.drafts != nil {
		if err := s.drafts.Delete(ctx, userID); err != nil {
			lg.Warn().Err(err).Str("component", "checkout").Int64("user_id", userID).Msg("delete draft")
		}
	}
	s.invalidate(ctx, o.ID, f.EventDate, f.OwnDate)
	s.events.Emit(ctx, ev, o.ID, orders.OrderActivityPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		ActorID:     fmt.Sprint(userID),
	})

	return Result{Order: o, Redirect: redirectFor(f, o)}, nil
}

func redirectFor(f Form, o orders.Order) string {
	if f.Admin {
		return "/admin/orders"
	}
	if o.Status == orders.StatusPendingPayment && !o.IsFullyPaid {
		return fmt.Sprintf("/orders/%d/payment-flows", o.ID)
	}
	return "/orders"
}

func (s *Service) invalidate(ctx context.Context, orderID int64, dates ...string) {
	if s.rdb == nil {
		return
	}
	for _, d := range dates {
		if err := redisx.InvalidateOrder(ctx, s.rdb, orderID, d); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("component", "checkout").Int64("order_id", orderID).Msg("invalidate cache")
			return
		}
	}
}

func (s *Service) Draft(ctx context.Context, userID int64) (Draft, error) {
	if userID <= 0 {
		return Draft{}, feedback.ErrUnauthorized
	}
	return s.drafts.Get(ctx, userID)
}

// SaveDraft stores the form as-is; drafts are allowed to be incomplete.
func (s *Service) SaveDraft(ctx context.Context, userID int64, f Form) (Draft, error) {
	if userID <= 0 {
		return Draft{}, feedback.ErrUnauthorized
	}
	f.Admin = false
	f.UserID = nil
	return s.drafts.Put(ctx, Draft{UserID: userID, Form: f})
}

func (s *Service) DeleteDraft(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return feedback.ErrUnauthorized
	}
	return s.drafts.Delete(ctx, userID)
}
