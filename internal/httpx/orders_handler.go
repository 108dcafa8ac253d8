package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/ariefcatur/go-wedding-orders/internal/checkout"
	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
	"github.com/ariefcatur/go-wedding-orders/internal/orders"
	"github.com/ariefcatur/go-wedding-orders/internal/pricing"
)

// orderView adds what list and detail screens render next to the raw order.
type orderView struct {
	orders.Order
	StatusLabel string            `json:"status_label"`
	CanCancel   bool              `json:"can_cancel"`
	CanComplete bool              `json:"can_complete"`
	CanReview   bool              `json:"can_review"`
	Formatted   map[string]string `json:"formatted"`
}

func viewOf(o orders.Order) orderView {
	for i := range o.Payments {
		if o.Payments[i].FormattedAmount == "" {
			o.Payments[i].FormattedAmount = pricing.Format(o.Payments[i].Amount.Int64())
		}
	}
	f := map[string]string{
		"price":               pricing.Format(o.Price.Int64()),
		"original_price":      pricing.Format(o.OriginalPrice.Int64()),
		"discount_amount":     pricing.Format(o.DiscountAmount.Int64()),
		"down_payment_amount": pricing.Format(o.DownPaymentAmount.Int64()),
		"paid_amount":         pricing.Format(o.PaidAmount.Int64()),
		"remaining_amount":    pricing.Format(o.RemainingAmount.Int64()),
	}
	if o.FormattedPrice != "" {
		f["price"] = o.FormattedPrice
	}
	return orderView{
		Order:       o,
		StatusLabel: o.Status.Label(),
		CanCancel:   orders.CanCancel(o),
		CanComplete: orders.CanComplete(o),
		CanReview:   orders.CanReview(o),
		Formatted:   f,
	}
}

func (h *Handlers) createOrder(w http.ResponseWriter, r *http.Request) {
	var f checkout.Form
	if err := decode(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	v := viewerFrom(r.Context())
	f.Admin = v.Admin && strings.HasPrefix(r.URL.Path, "/admin/")
	f.OrderID, f.OwnDate = nil, ""

	ctx, cancel := withTimeout(r, 10*time.Second)
	defer cancel()

	res, err := h.Checkout.Submit(ctx, v.UserID, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"order": viewOf(res.Order), "redirect": res.Redirect})
}

func (h *Handlers) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var f checkout.Form
	if err := decode(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r, 10*time.Second)
	defer cancel()

	v := viewerFrom(ctx)
	current, err := h.Lifecycle.Get(ctx, v, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if current.Status.Terminal() {
		writeError(w, r, &feedback.Conflict{Message: "Pesanan yang sudah " + strings.ToLower(current.Status.Label()) + " tidak dapat diubah.", Err: orders.ErrTransitionNotAllowed})
		return
	}
	f.OrderID = &id
	f.OwnDate = current.EventDate
	f.Admin = v.Admin
	if f.Admin && f.UserID == nil && current.UserID > 0 {
		f.UserID = &current.UserID
	}

	res, err := h.Checkout.Submit(ctx, v.UserID, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": viewOf(res.Order), "redirect": res.Redirect})
}

func (h *Handlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	page, err := h.Lifecycle.List(ctx, listQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := orders.Page[orderView]{Meta: page.Meta, Data: make([]orderView, 0, len(page.Data))}
	for _, o := range page.Data {
		out.Data = append(out.Data, viewOf(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	o, err := h.Lifecycle.Get(ctx, viewerFrom(ctx), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(o))
}

func (h *Handlers) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var f orders.CancelForm
	if err := decode(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	o, err := h.Lifecycle.Cancel(ctx, viewerFrom(ctx), id, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(o))
}

func (h *Handlers) completeOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	res, err := h.Lifecycle.Complete(ctx, viewerFrom(ctx), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order":   viewOf(res.Order),
		"warning": res.Warning,
		"review":  res.Review,
	})
}

func (h *Handlers) reviewOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p orders.ReviewPrompt
	if err := decode(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	p.OrderID = id
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	o, err := h.Lifecycle.Review(ctx, viewerFrom(ctx), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(o))
}

func (h *Handlers) getDraft(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 3*time.Second)
	defer cancel()

	d, err := h.Checkout.Draft(ctx, viewerFrom(ctx).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) saveDraft(w http.ResponseWriter, r *http.Request) {
	var f checkout.Form
	if err := decode(r, &f); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r, 3*time.Second)
	defer cancel()

	d, err := h.Checkout.SaveDraft(ctx, viewerFrom(ctx).UserID, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) deleteDraft(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 3*time.Second)
	defer cancel()

	if err := h.Checkout.DeleteDraft(ctx, viewerFrom(ctx).UserID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
