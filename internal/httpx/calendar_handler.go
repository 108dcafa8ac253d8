package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-wedding-orders/internal/availability"
	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
	"github.com/ariefcatur/go-wedding-orders/internal/pricing"
)

// ownDate resolves the event date of the order being edited, if any.
func (h *Handlers) ownDate(r *http.Request, orderID int64) (string, error) {
	if orderID <= 0 {
		return "", nil
	}
	o, err := h.Lifecycle.Get(r.Context(), viewerFrom(r.Context()), orderID)
	if err != nil {
		return "", err
	}
	return o.EventDate, nil
}

func (h *Handlers) calendar(w http.ResponseWriter, r *http.Request) {
	year, errY := strconv.Atoi(chi.URLParam(r, "year"))
	month, errM := strconv.Atoi(chi.URLParam(r, "month"))
	if errY != nil || errM != nil || month < 1 || month > 12 || year < 2000 {
		writeError(w, r, feedback.Field("month", "Bulan tidak valid."))
		return
	}
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()
	r = r.WithContext(ctx)

	editing, _ := strconv.ParseInt(r.URL.Query().Get("editing_order"), 10, 64)
	own, err := h.ownDate(r, editing)
	if err != nil {
		writeError(w, r, err)
		return
	}

	m, err := h.Availability.Calendar(ctx, year, time.Month(month), h.today(), own)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// bookedDates is the bulk list the date input uses before a month is opened.
func (h *Handlers) bookedDates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	dates, err := h.Availability.All(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"booked_dates": dates})
}

type confirmDateReq struct {
	Date           string `json:"date"`
	ConfirmedDate  string `json:"confirmed_date"`
	EditingOrderID int64  `json:"editing_order_id"`
}

// confirmDate is the "OK" of the date dialog: a click on an unselectable day changes nothing, an
// available one is double-checked against the backend.
func (h *Handlers) confirmDate(w http.ResponseWriter, r *http.Request) {
	var req confirmDateReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()
	r = r.WithContext(ctx)

	own, err := h.ownDate(r, req.EditingOrderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		writeError(w, r, feedback.Field("event_date", "Format tanggal acara tidak valid."))
		return
	}
	booked, err := h.Availability.Month(ctx, d.Year(), int(d.Month()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	p := &availability.Picker{
		Rules: availability.Rules{
			Today:   h.today().Format(time.DateOnly),
			Booked:  availability.NewSet(booked),
			OwnDate: own,
		},
		Confirmed: req.ConfirmedDate,
		Open:      true,
	}
	if !p.Select(req.Date) {
		writeJSON(w, http.StatusOK, p)
		return
	}
	if err := p.Confirm(ctx, h.Availability); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type quoteReq struct {
	PackagePrice        int64             `json:"package_price"`
	Features            []pricing.Feature `json:"features"`
	Discount            pricing.Discount  `json:"discount"`
	DownPaymentOverride *int64            `json:"down_payment_override"`
}

type quoteView struct {
	pricing.Quote
	Formatted map[string]string `json:"formatted"`
}

func (h *Handlers) quote(w http.ResponseWriter, r *http.Request) {
	var req quoteReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s := pricing.Sheet{PackagePrice: req.PackagePrice, DownPaymentOverride: req.DownPaymentOverride}
	for _, f := range req.Features {
		s.AddFeature(f)
	}
	if err := req.Discount.Validate(s.Base()); err != nil {
		writeError(w, r, discountError(err))
		return
	}
	s.Discount = req.Discount

	q := s.Quote()
	writeJSON(w, http.StatusOK, quoteView{
		Quote: q,
		Formatted: map[string]string{
			"original_price":      pricing.Format(q.OriginalPrice),
			"price":               pricing.Format(q.Price),
			"discount_amount":     pricing.Format(q.DiscountAmount),
			"down_payment_amount": pricing.Format(q.DownPayment),
		},
	})
}

func discountError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrNegativePrice):
		return feedback.Field("package_price", "Harga tidak boleh negatif.")
	case errors.Is(err, pricing.ErrUnknownDiscountType):
		return feedback.Field("discount_type", "Jenis diskon tidak dikenal.")
	}
	return feedback.Field("discount_value", "Nilai diskon di luar batas.")
}
