package payment

import (
	"strings"

	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
	"github.com/ariefcatur/go-wedding-orders/internal/orders"
)

// Verification is the admin decision on a pending payment.
type Verification struct {
	Status orders.PaymentStatus `json:"status"`
	Note   string               `json:"note"`
}

// CanSubmit mirrors the submit button: a rejection needs a note.
func (v Verification) CanSubmit() bool {
	switch v.Status {
	case orders.PaymentVerified:
		return true
	case orders.PaymentRejected:
		return strings.TrimSpace(v.Note) != ""
	}
	return false
}

// Validate only accepts a decision on a pending bank transfer; other methods settle on their own.
func (v Verification) Validate(p orders.Payment) (Verification, error) {
	if p.Status != orders.PaymentPending {
		return Verification{}, &feedback.Conflict{
			Field:   "status",
			Message: "Pembayaran ini sudah " + strings.ToLower(p.Status.Label()) + ".",
			Err:     ErrWrongStep,
		}
	}
	if p.PaymentMethod != orders.MethodBankTransfer {
		return Verification{}, &feedback.Conflict{
			Field:   "payment_method",
			Message: "Hanya pembayaran transfer bank yang perlu diverifikasi.",
			Err:     ErrWrongStep,
		}
	}
	switch v.Status {
	case orders.PaymentVerified, orders.PaymentRejected:
	default:
		return Verification{}, feedback.Field("status", "Pilih verifikasi atau tolak.")
	}
	note := strings.TrimSpace(v.Note)
	if v.Status == orders.PaymentRejected && note == "" {
		return Verification{}, feedback.Field("note", "Alasan penolakan wajib diisi.")
	}
	return Verification{Status: v.Status, Note: note}, nil
}
