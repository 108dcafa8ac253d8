package payment

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
	"github.com/ariefcatur/go-wedding-orders/internal/orders"
)

func pendingOrder() orders.Order {
	return orders.Order{
		ID:                10,
		OrderNumber:       "WO-2025-0010",
		Status:            orders.StatusPendingPayment,
		Price:             9_000_000,
		DownPaymentAmount: 2_700_000,
		RemainingAmount:   9_000_000,
	}
}

func newTestFlow(t *testing.T, o orders.Order) *Flow {
	t.Helper()
	f, err := NewFlow("flow-1", o, time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return f
}

func TestNewFlowRejectsClosedOrders(t *testing.T) {
	tests := []struct {
		name  string
		order func(o *orders.Order)
	}{
		{"cancelled", func(o *orders.Order) { o.Status = orders.StatusCancelled }},
		{"completed", func(o *orders.Order) { o.Status = orders.StatusCompleted }},
		{"fully paid", func(o *orders.Order) { o.IsFullyPaid = true; o.RemainingAmount = 0; o.PaidAmount = 9_000_000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := pendingOrder()
			tt.order(&o)
			_, err := NewFlow("x", o, time.Now())
			var cf *feedback.Conflict
			assert.ErrorAs(t, err, &cf)
		})
	}
}

func TestHappyPathBankTransfer(t *testing.T) {
	f := newTestFlow(t, pendingOrder())
	assert.Equal(t, StepMethodSelection, f.Step())

	require.NoError(t, f.SelectMethod(orders.MethodBankTransfer))
	de := f.State.(DetailEntry)
	assert.Equal(t, int64(2_700_000), de.Details.Amount, "first payment defaults to the down payment")
	assert.Equal(t, orders.PaymentTypeDownPayment, de.Details.Type)
	assert.False(t, f.CanConfirm(), "bank not chosen yet")

	require.NoError(t, f.EnterDetails(DetailsInput{BankCode: "bca", Amount: 3_000_000}))
	assert.True(t, f.CanConfirm())

	require.NoError(t, f.Confirm())
	assert.Equal(t, StepConfirmation, f.Step())

	require.NoError(t, f.Back())
	assert.Equal(t, StepDetailEntry, f.Step())
	assert.Equal(t, "bca", f.State.(DetailEntry).Details.BankCode, "preview must not lose input")
	require.NoError(t, f.Confirm())

	d, err := f.Begin()
	require.NoError(t, err)
	assert.Equal(t, int64(3_000_000), d.Amount)
	assert.Equal(t, StepSubmitting, f.Step())

	require.NoError(t, f.Succeed(orders.Payment{ID: 5}))
	assert.Equal(t, StepSucceeded, f.Step())
}

func TestSelectMethodResetsBank(t *testing.T) {
	f := newTestFlow(t, pendingOrder())
	require.NoError(t, f.SelectMethod(orders.MethodBankTransfer))
	require.NoError(t, f.EnterDetails(DetailsInput{BankCode: "bni", Amount: 1_000_000}))

	require.NoError(t, f.SelectMethod(orders.MethodVirtualAccount))
	de := f.State.(DetailEntry)
	assert.Empty(t, de.Details.BankCode)
	assert.Equal(t, orders.MethodVirtualAccount, de.Details.Method)
}

func TestAmountNeverExceedsRemaining(t *testing.T) {
	o := pendingOrder()
	o.PaidAmount = 2_700_000
	o.RemainingAmount = 6_300_000

	for _, amount := range []int64{1, 6_299_999, 6_300_000, 6_300_001, 50_000_000} {
		f := newTestFlow(t, o)
		require.NoError(t, f.SelectMethod(orders.MethodCash))
		require.NoError(t, f.EnterDetails(DetailsInput{Amount: amount}))
		require.NoError(t, f.Confirm())
		d, err := f.Begin()
		require.NoError(t, err)
		assert.LessOrEqual(t, d.Amount, o.RemainingAmount.Int64())
		assert.Equal(t, amount > 6_300_000, d.Clamped)
		assert.Equal(t, orders.PaymentTypeInstallment, d.Type)
	}
}

func TestEnterDetailsValidation(t *testing.T) {
	f := newTestFlow(t, pendingOrder())
	require.NoError(t, f.SelectMethod(orders.MethodVirtualAccount))

	err := f.EnterDetails(DetailsInput{BankCode: "bogus", Amount: 0})
	var inv *feedback.Invalid
	require.ErrorAs(t, err, &inv)
	assert.Contains(t, inv.Fields, "bank_code")
	assert.Contains(t, inv.Fields, "amount")
	assert.Equal(t, StepDetailEntry, f.Step())
	assert.False(t, f.CanConfirm())

	require.Error(t, f.Confirm())
}

func TestFailReturnsToDetailEntry(t *testing.T) {
	f := newTestFlow(t, pendingOrder())
	require.NoError(t, f.SelectMethod(orders.MethodCash))
	require.NoError(t, f.Confirm())
	_, err := f.Begin()
	require.NoError(t, err)

	require.NoError(t, f.Fail(assert.AnError))
	de, ok := f.State.(DetailEntry)
	require.True(t, ok)
	assert.Equal(t, feedback.MsgGeneric, de.Error)
	assert.Equal(t, orders.MethodCash, de.Details.Method)
}

func TestWrongStepIsRefused(t *testing.T) {
	f := newTestFlow(t, pendingOrder())

	assert.ErrorIs(t, f.Confirm(), ErrWrongStep)
	_, err := f.Begin()
	assert.ErrorIs(t, err, ErrWrongStep)
	assert.ErrorIs(t, f.EnterDetails(DetailsInput{Amount: 1}), ErrWrongStep)
	assert.ErrorIs(t, f.Back(), ErrWrongStep)
	assert.Equal(t, StepMethodSelection, f.Step())
}

func TestFlowJSONKeepsVariant(t *testing.T) {
	f := newTestFlow(t, pendingOrder())
	require.NoError(t, f.SelectMethod(orders.MethodVirtualAccount))
	require.NoError(t, f.EnterDetails(DetailsInput{BankCode: "permata", Amount: 2_000_000}))
	require.NoError(t, f.Confirm())

	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"step":"confirmation"`)

	var got Flow
	require.NoError(t, json.Unmarshal(b, &got))
	c, ok := got.State.(Confirmation)
	require.True(t, ok)
	assert.Equal(t, "permata", c.Details.BankCode)
	assert.Equal(t, f.Balance, got.Balance)

	assert.Error(t, json.Unmarshal([]byte(`{"step":"teleport"}`), &got))
}
