package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-wedding-orders/internal/backend"
	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
	"github.com/ariefcatur/go-wedding-orders/internal/orders"
	"github.com/ariefcatur/go-wedding-orders/internal/payment"
	"github.com/ariefcatur/go-wedding-orders/internal/pricing"
)

// flowView is what the payment screen renders. Banks is the sub-selection list of the chosen
// method, Countdown only shows up once a pending payment exists.
type flowView struct {
	Flow      *payment.Flow       `json:"flow"`
	Banks     []payment.Bank      `json:"banks,omitempty"`
	Remaining string              `json:"formatted_remaining"`
	Countdown *payment.Countdown  `json:"countdown,omitempty"`
	VAStatus  *payment.StatusView `json:"va_status,omitempty"`
}

func (h *Handlers) viewFlow(ctx context.Context, f *payment.Flow) flowView {
	v := flowView{Flow: f, Remaining: pricing.Format(f.Balance.Remaining)}
	switch st := f.State.(type) {
	case payment.DetailEntry:
		v.Banks = payment.BanksFor(st.Details.Method)
	case payment.Confirmation:
		v.Banks = payment.BanksFor(st.Details.Method)
	case payment.Succeeded:
		if st.Payment.Status == orders.PaymentPending {
			created := f.CreatedAt
			if t, err := time.Parse(time.RFC3339Nano, st.Payment.CreatedAt); err == nil {
				created = t
			}
			cd := payment.NewCountdown(h.today(), created)
			v.Countdown = &cd
		}
		if st.Payment.PaymentMethod == orders.MethodVirtualAccount {
			// status terakhir dari poller, kalau sudah pernah dicek
			if last, ok, err := h.Payments.Store().LastVAStatus(ctx, st.Payment.ID); err == nil && ok {
				v.VAStatus = &last
			}
		}
	}
	return v
}

// flowResponse writes the flow even when the action failed, so the screen can keep its state.
func (h *Handlers) flowResponse(w http.ResponseWriter, r *http.Request, f *payment.Flow, err error) {
	if err != nil {
		if f == nil {
			writeError(w, r, err)
			return
		}
		p := feedback.Classify(err)
		writeJSON(w, p.Status, map[string]any{"error": p, "flow": h.viewFlow(r.Context(), f)})
		return
	}
	writeJSON(w, http.StatusOK, h.viewFlow(r.Context(), f))
}

func (h *Handlers) startFlow(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	f, err := h.Payments.Start(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.viewFlow(r.Context(), f))
}

func (h *Handlers) getFlow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 3*time.Second)
	defer cancel()

	f, err := h.Payments.Get(ctx, chi.URLParam(r, "flow"))
	h.flowResponse(w, r, f, err)
}

func (h *Handlers) selectMethod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method orders.PaymentMethod `json:"method"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r, 3*time.Second)
	defer cancel()

	f, err := h.Payments.SelectMethod(ctx, chi.URLParam(r, "flow"), req.Method)
	h.flowResponse(w, r, f, err)
}

func (h *Handlers) enterDetails(w http.ResponseWriter, r *http.Request) {
	var req payment.DetailsInput
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r, 3*time.Second)
	defer cancel()

	f, err := h.Payments.EnterDetails(ctx, chi.URLParam(r, "flow"), req)
	h.flowResponse(w, r, f, err)
}

func (h *Handlers) confirmFlow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 3*time.Second)
	defer cancel()

	f, err := h.Payments.Confirm(ctx, chi.URLParam(r, "flow"))
	h.flowResponse(w, r, f, err)
}

func (h *Handlers) backFlow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 3*time.Second)
	defer cancel()

	f, err := h.Payments.Back(ctx, chi.URLParam(r, "flow"))
	h.flowResponse(w, r, f, err)
}

// submitFlow accepts an optional multipart "payment_proof" file.
func (h *Handlers) submitFlow(w http.ResponseWriter, r *http.Request) {
	proof, err := readProof(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r, 20*time.Second)
	defer cancel()

	f, err := h.Payments.Submit(ctx, chi.URLParam(r, "flow"), proof)
	h.flowResponse(w, r, f, err)
}

func readProof(w http.ResponseWriter, r *http.Request) (*backend.Upload, error) {
	if r.Header.Get("Content-Type") == "" || r.ContentLength == 0 {
		return nil, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, payment.MaxProofBytes+1<<20)
	if err := r.ParseMultipartForm(payment.MaxProofBytes + 1<<20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, payment.ValidateProof(payment.MaxProofBytes+1, "")
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, feedback.Field("payment_proof", "Gagal membaca unggahan.")
	}
	file, hdr, err := r.FormFile("payment_proof")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, feedback.Field("payment_proof", "Gagal membaca unggahan.")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, payment.MaxProofBytes+1))
	if err != nil {
		return nil, feedback.Field("payment_proof", "Gagal membaca unggahan.")
	}
	return &backend.Upload{Filename: hdr.Filename, ContentType: hdr.Header.Get("Content-Type"), Data: data}, nil
}

func (h *Handlers) paymentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	v, err := h.Payments.CheckStatus(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type paymentView struct {
	orders.Payment
	StatusLabel string `json:"status_label"`
	CanVerify   bool   `json:"can_verify"`
}

func (h *Handlers) listPayments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	page, err := h.Backend.Payments(ctx, listQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := orders.Page[paymentView]{Meta: page.Meta, Data: make([]paymentView, 0, len(page.Data))}
	for _, p := range page.Data {
		if p.FormattedAmount == "" {
			p.FormattedAmount = pricing.Format(p.Amount.Int64())
		}
		out.Data = append(out.Data, paymentView{
			Payment:     p,
			StatusLabel: p.Status.Label(),
			CanVerify:   p.Status == orders.PaymentPending && p.PaymentMethod == orders.MethodBankTransfer,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) verifyPayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var v payment.Verification
	if err := decode(r, &v); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	p, err := h.Payments.Verify(ctx, id, v)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentView{Payment: p, StatusLabel: p.Status.Label()})
}
