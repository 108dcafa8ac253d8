package payment

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
	"github.com/ariefcatur/go-wedding-orders/internal/orders"
)

func TestTypeFor(t *testing.T) {
	tests := []struct {
		name   string
		b      Balance
		amount int64
		want   orders.PaymentType
	}{
		{"first partial", Balance{Remaining: 10_000_000}, 3_000_000, orders.PaymentTypeDownPayment},
		{"first full", Balance{Remaining: 10_000_000}, 10_000_000, orders.PaymentTypeFullPayment},
		{"second", Balance{Paid: 3_000_000, Remaining: 7_000_000}, 7_000_000, orders.PaymentTypeInstallment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeFor(tt.b, tt.amount))
		})
	}
}

func TestDefaultAmount(t *testing.T) {
	assert.Equal(t, int64(3_000_000), Balance{Remaining: 10_000_000, DownPayment: 3_000_000}.DefaultAmount())
	assert.Equal(t, int64(7_000_000), Balance{Paid: 3_000_000, Remaining: 7_000_000, DownPayment: 3_000_000}.DefaultAmount())
	assert.Equal(t, int64(1_000), Balance{Remaining: 1_000, DownPayment: 3_000_000}.DefaultAmount())
}

func TestBalanceOfDerivesMissingRemaining(t *testing.T) {
	b := BalanceOf(orders.Order{Price: 10_000_000, PaidAmount: 4_000_000})
	assert.Equal(t, int64(6_000_000), b.Remaining)
}

func TestValidateProof(t *testing.T) {
	png := append([]byte("\x89PNG\x0D\x0A\x1A\x0A"), make([]byte, 64)...)
	require.Equal(t, "image/png", DetectProofType(png))

	assert.NoError(t, ValidateProof(int64(len(png)), DetectProofType(png)))

	var inv *feedback.Invalid
	assert.ErrorAs(t, ValidateProof(0, ""), &inv)
	assert.ErrorAs(t, ValidateProof(MaxProofBytes+1, "image/png"), &inv)
	assert.ErrorAs(t, ValidateProof(10, DetectProofType([]byte("%PDF-1.7 hello"))), &inv)
	assert.Equal(t, "payment_proof", firstField(inv))

	big := bytes.Repeat([]byte{0}, MaxProofBytes)
	assert.NoError(t, ValidateProof(int64(len(big)), "image/webp"))
}

func firstField(inv *feedback.Invalid) string {
	for k := range inv.Fields {
		return k
	}
	return ""
}

func TestCountdown(t *testing.T) {
	created := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)

	cd := NewCountdown(created.Add(90*time.Minute+30*time.Second), created)
	assert.Equal(t, "22:29:30", cd.Remaining)
	assert.False(t, cd.Elapsed)
	assert.Equal(t, created.Add(24*time.Hour), cd.ExpiresAt)

	cd = NewCountdown(created.Add(25*time.Hour), created)
	assert.True(t, cd.Elapsed)
	assert.Equal(t, "00:00:00", cd.Remaining)
}

func TestVerificationRequiresNoteOnReject(t *testing.T) {
	pending := orders.Payment{ID: 1, Status: orders.PaymentPending, PaymentMethod: orders.MethodBankTransfer}

	v := Verification{Status: orders.PaymentRejected}
	assert.False(t, v.CanSubmit())
	_, err := v.Validate(pending)
	var inv *feedback.Invalid
	require.ErrorAs(t, err, &inv)
	assert.Contains(t, inv.Fields, "note")

	v.Note = "   "
	assert.False(t, v.CanSubmit())

	v.Note = "Nominal tidak sesuai"
	assert.True(t, v.CanSubmit())
	got, err := v.Validate(pending)
	require.NoError(t, err)
	assert.Equal(t, "Nominal tidak sesuai", got.Note)

	assert.True(t, Verification{Status: orders.PaymentVerified}.CanSubmit())
	assert.False(t, Verification{Status: orders.PaymentExpired}.CanSubmit())

	_, err = Verification{Status: orders.PaymentVerified}.Validate(orders.Payment{Status: orders.PaymentVerified, PaymentMethod: orders.MethodBankTransfer})
	var cf *feedback.Conflict
	assert.ErrorAs(t, err, &cf)
}

func TestVerificationOnlyForBankTransfer(t *testing.T) {
	for _, m := range []orders.PaymentMethod{orders.MethodCash, orders.MethodVirtualAccount} {
		t.Run(string(m), func(t *testing.T) {
			_, err := Verification{Status: orders.PaymentVerified}.Validate(orders.Payment{ID: 1, Status: orders.PaymentPending, PaymentMethod: m})
			var cf *feedback.Conflict
			require.ErrorAs(t, err, &cf)
			assert.Equal(t, "payment_method", cf.Field)
			assert.ErrorIs(t, err, ErrWrongStep)
		})
	}
}
