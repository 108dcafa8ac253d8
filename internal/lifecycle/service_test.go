package lifecycle

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-wedding-orders/internal/backend"
	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
	"github.com/ariefcatur/go-wedding-orders/internal/orders"
	"github.com/ariefcatur/go-wedding-orders/internal/redisx"
)

type fakeBackend struct {
	order   orders.Order
	reads   int
	updates []orders.StatusUpdate
	reviews []orders.Review
}

func (f *fakeBackend) Order(context.Context, int64) (orders.Order, error) {
	f.reads++
	return f.order, nil
}

func (f *fakeBackend) Orders(context.Context, backend.ListQuery) (orders.Page[orders.Order], error) {
	return orders.Page[orders.Order]{Data: []orders.Order{f.order}}, nil
}

// UpdateOrderStatus answers with an empty body, like the real status endpoint sometimes does.
func (f *fakeBackend) UpdateOrderStatus(_ context.Context, _ int64, in orders.StatusUpdate) (orders.Order, error) {
	f.updates = append(f.updates, in)
	f.order.Status = in.Status
	return orders.Order{}, nil
}

func (f *fakeBackend) SubmitReview(_ context.Context, _ int64, in orders.Review) error {
	f.reviews = append(f.reviews, in)
	f.order.HasReviewed = true
	return nil
}

func setup(t *testing.T, o orders.Order) (*Service, *fakeBackend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	be := &fakeBackend{order: o}
	return NewService(be, rdb, nil), be, mr
}

var admin = orders.Viewer{UserID: 1, Admin: true}

func TestGetUsesCacheOnlyForAllowedViewer(t *testing.T) {
	svc, be, mr := setup(t, orders.Order{ID: 4, UserID: 50, Status: orders.StatusOngoing})
	ctx := context.Background()

	_, err := svc.Get(ctx, orders.Viewer{UserID: 50}, 4)
	require.NoError(t, err)
	assert.True(t, mr.Exists(redisx.OrderView(4)))

	_, err = svc.Get(ctx, orders.Viewer{UserID: 50}, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, be.reads)

	_, err = svc.Get(ctx, orders.Viewer{UserID: 51}, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, be.reads, "other users never get the cached copy")
}

func TestCancel(t *testing.T) {
	svc, be, mr := setup(t, orders.Order{ID: 4, UserID: 50, Status: orders.StatusPendingPayment, EventDate: "2026-02-14"})
	ctx := context.Background()
	require.NoError(t, mr.Set(redisx.BookedMonth(2026, 2), "[]"))

	_, err := svc.Cancel(ctx, admin, 4, orders.CancelForm{Reason: " "})
	var inv *feedback.Invalid
	require.ErrorAs(t, err, &inv)
	assert.Empty(t, be.updates)

	o, err := svc.Cancel(ctx, admin, 4, orders.CancelForm{Reason: "Klien membatalkan"})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, o.Status)
	assert.Equal(t, "Klien membatalkan", o.CancellationReason)
	assert.False(t, mr.Exists(redisx.BookedMonth(2026, 2)), "freed date shows up again")

	_, err = svc.Cancel(ctx, admin, 4, orders.CancelForm{Reason: "lagi"})
	var cf *feedback.Conflict
	assert.ErrorAs(t, err, &cf)
}

func TestCompleteOpensReviewPrompt(t *testing.T) {
	svc, be, _ := setup(t, orders.Order{ID: 4, UserID: 50, Status: orders.StatusOngoing, IsFullyPaid: false})

	res, err := svc.Complete(context.Background(), orders.Viewer{UserID: 50}, 4)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCompleted, res.Order.Status)
	assert.NotEmpty(t, res.Warning)
	assert.True(t, res.Review.Open)
	assert.Equal(t, 0, res.Review.Rating)
	assert.False(t, res.Review.CanSubmit())
	assert.Equal(t, []orders.StatusUpdate{{Status: orders.StatusCompleted}}, be.updates)
}

func TestCompleteRequiresOngoing(t *testing.T) {
	svc, be, _ := setup(t, orders.Order{ID: 4, Status: orders.StatusPendingPayment})

	_, err := svc.Complete(context.Background(), admin, 4)
	assert.ErrorIs(t, err, orders.ErrTransitionNotAllowed)
	assert.Empty(t, be.updates)
}

func TestReviewOncePerOrder(t *testing.T) {
	svc, be, _ := setup(t, orders.Order{ID: 4, UserID: 50, Status: orders.StatusCompleted})
	ctx := context.Background()
	user := orders.Viewer{UserID: 50}

	_, err := svc.Review(ctx, user, 4, orders.ReviewPrompt{Rating: 0, Comment: "Mantap"})
	require.Error(t, err)

	o, err := svc.Review(ctx, user, 4, orders.ReviewPrompt{Rating: 5, Comment: "Mantap"})
	require.NoError(t, err)
	assert.True(t, o.Reviewed())
	assert.Len(t, be.reviews, 1)

	_, err = svc.Review(ctx, user, 4, orders.ReviewPrompt{Rating: 4, Comment: "Lagi"})
	assert.ErrorIs(t, err, orders.ErrAlreadyReviewed)
	assert.Len(t, be.reviews, 1)
}
