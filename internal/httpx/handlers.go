package httpx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-wedding-orders/internal/availability"
	"github.com/ariefcatur/go-wedding-orders/internal/backend"
	"github.com/ariefcatur/go-wedding-orders/internal/checkout"
	"github.com/ariefcatur/go-wedding-orders/internal/lifecycle"
	"github.com/ariefcatur/go-wedding-orders/internal/payment"
)

type Handlers struct {
	Backend      *backend.Client
	Availability *availability.Source
	Checkout     *checkout.Service
	Lifecycle    *lifecycle.Service
	Payments     *payment.Service
	Location     *time.Location
	Now          func() time.Time
}

func (h *Handlers) Register(r chi.Router) {
	r.Get("/catalogs", h.listCatalogs)
	r.Get("/catalogs/{id}", h.getCatalog)
	r.Get("/custom-features", h.customFeatures)

	r.Get("/calendar/booked-dates", h.bookedDates)
	r.Get("/calendar/{year}/{month}", h.calendar)
	r.Post("/calendar/confirm", h.confirmDate)
	r.Post("/quote", h.quote)

	r.Get("/drafts", h.getDraft)
	r.Put("/drafts", h.saveDraft)
	r.Delete("/drafts", h.deleteDraft)

	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Put("/orders/{id}", h.updateOrder)
	r.Post("/orders/{id}/cancel", h.cancelOrder)
	r.Post("/orders/{id}/complete", h.completeOrder)
	r.Post("/orders/{id}/review", h.reviewOrder)

	r.Post("/orders/{id}/payment-flows", h.startFlow)
	r.Get("/payment-flows/{flow}", h.getFlow)
	r.Post("/payment-flows/{flow}/method", h.selectMethod)
	r.Post("/payment-flows/{flow}/details", h.enterDetails)
	r.Post("/payment-flows/{flow}/confirm", h.confirmFlow)
	r.Post("/payment-flows/{flow}/back", h.backFlow)
	r.Post("/payment-flows/{flow}/submit", h.submitFlow)
	r.Get("/payments/{id}/status", h.paymentStatus)

	r.Route("/admin", func(r chi.Router) {
		r.Use(RequireAdmin)
		r.Post("/orders", h.createOrder)
		r.Get("/orders", h.listOrders)
		r.Get("/payments", h.listPayments)
		r.Patch("/payments/{id}/verify", h.verifyPayment)
		r.Get("/users", h.listUsers)
	})
}

func (h *Handlers) today() time.Time {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	loc := h.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

func listQuery(r *http.Request) backend.ListQuery {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	return backend.ListQuery{
		Status:  q.Get("status"),
		Search:  q.Get("search"),
		Page:    page,
		PerPage: perPage,
	}
}
