package payment

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
	"github.com/ariefcatur/go-wedding-orders/internal/orders"
)

const (
	MaxProofBytes = 2 << 20
	ExpiryWindow  = 24 * time.Hour
)

var allowedProofTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var ErrAmountAboveRemaining = errors.New("amount exceeds remaining balance")

const msgAboveRemaining = "Nominal melebihi sisa tagihan, silakan periksa kembali."

// Balance is the part of an order the payment screens work with.
type Balance struct {
	Price       int64 `json:"price"`
	Paid        int64 `json:"paid"`
	Remaining   int64 `json:"remaining"`
	DownPayment int64 `json:"down_payment"`
}

func BalanceOf(o orders.Order) Balance {
	b := Balance{
		Price:       o.Price.Int64(),
		Paid:        o.PaidAmount.Int64(),
		Remaining:   o.RemainingAmount.Int64(),
		DownPayment: o.DownPaymentAmount.Int64(),
	}
	// payload lama tidak selalu punya remaining_amount
	if b.Remaining == 0 && !o.IsFullyPaid && b.Price > b.Paid {
		b.Remaining = b.Price - b.Paid
	}
	return b
}

// DefaultAmount: DP for the first payment, the rest of the balance afterwards.
func (b Balance) DefaultAmount() int64 {
	if b.Paid == 0 && b.DownPayment > 0 {
		return ClampAmount(b.DownPayment, b.Remaining)
	}
	return b.Remaining
}

// ClampAmount keeps a submitted amount within [0, remaining].
func ClampAmount(amount, remaining int64) int64 {
	if remaining < 0 {
		remaining = 0
	}
	if amount > remaining {
		return remaining
	}
	if amount < 0 {
		return 0
	}
	return amount
}

// TypeFor derives payment_type from what has been paid so far.
func TypeFor(b Balance, amount int64) orders.PaymentType {
	switch {
	case b.Paid == 0 && amount >= b.Remaining:
		return orders.PaymentTypeFullPayment
	case b.Paid == 0:
		return orders.PaymentTypeDownPayment
	default:
		return orders.PaymentTypeInstallment
	}
}

// DetectProofType sniffs the upload instead of trusting the client's Content-Type.
func DetectProofType(data []byte) string {
	return http.DetectContentType(data)
}

func ValidateProof(size int64, contentType string) error {
	if size == 0 {
		return feedback.Field("payment_proof", "Bukti transfer wajib diunggah.")
	}
	if size > MaxProofBytes {
		return feedback.Field("payment_proof", fmt.Sprintf("Ukuran bukti transfer maksimal %d MB.", MaxProofBytes>>20))
	}
	if !allowedProofTypes[contentType] {
		return feedback.Field("payment_proof", "Bukti transfer harus berupa gambar JPG, PNG, atau WEBP.")
	}
	return nil
}

type Countdown struct {
	ExpiresAt time.Time `json:"expires_at"`
	Remaining string    `json:"remaining"`
	Seconds   int64     `json:"seconds"`
	Elapsed   bool      `json:"elapsed"`
}

// NewCountdown is informational only; the backend decides when a payment expires.
func NewCountdown(now, createdAt time.Time) Countdown {
	exp := createdAt.Add(ExpiryWindow)
	left := exp.Sub(now).Truncate(time.Second)
	if left <= 0 {
		return Countdown{ExpiresAt: exp, Remaining: "00:00:00", Elapsed: true}
	}
	h := int64(left / time.Hour)
	m := int64(left%time.Hour) / int64(time.Minute)
	s := int64(left%time.Minute) / int64(time.Second)
	return Countdown{
		ExpiresAt: exp,
		Remaining: fmt.Sprintf("%02d:%02d:%02d", h, m, s),
		Seconds:   int64(left / time.Second),
	}
}
