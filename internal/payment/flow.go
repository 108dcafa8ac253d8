// Package payment drives one payment attempt from method selection to submission, and the admin
// verification of submitted payments.
package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
	"github.com/ariefcatur/go-wedding-orders/internal/orders"
)

type Step string

const (
	StepMethodSelection Step = "method_selection"
	StepDetailEntry     Step = "detail_entry"
	StepConfirmation    Step = "confirmation"
	StepSubmitting      Step = "submitting"
	StepSucceeded       Step = "succeeded"
)

var ErrWrongStep = errors.New("action not allowed in current step")

// State is one of MethodSelection, DetailEntry, Confirmation, Submitting or Succeeded.
type State interface {
	Step() Step
	state()
}

type MethodSelection struct{}

type DetailEntry struct {
	Details Details `json:"details"`
	Error   string  `json:"error,omitempty"`
}

type Confirmation struct {
	Details Details `json:"details"`
}

type Submitting struct {
	Details Details `json:"details"`
}

type Succeeded struct {
	Payment orders.Payment `json:"payment"`
}

func (MethodSelection) Step() Step { return StepMethodSelection }
func (DetailEntry) Step() Step     { return StepDetailEntry }
func (Confirmation) Step() Step    { return StepConfirmation }
func (Submitting) Step() Step      { return StepSubmitting }
func (Succeeded) Step() Step       { return StepSucceeded }

func (MethodSelection) state() {}
func (DetailEntry) state()     {}
func (Confirmation) state()    {}
func (Submitting) state()      {}
func (Succeeded) state()       {}

// Details is the sub-selection and amount of an attempt. Amount is always within the remaining
// balance; Clamped tells the screen it was lowered.
type Details struct {
	Method   orders.PaymentMethod `json:"method"`
	BankCode string               `json:"bank_code,omitempty"`
	Amount   int64                `json:"amount"`
	Clamped  bool                 `json:"clamped,omitempty"`
	Type     orders.PaymentType   `json:"payment_type,omitempty"`
}

type Flow struct {
	ID          string    `json:"id"`
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Balance     Balance   `json:"balance"`
	CreatedAt   time.Time `json:"created_at"`
	State       State     `json:"-"`
}

// NewFlow rejects orders that cannot take another payment.
func NewFlow(id string, o orders.Order, now time.Time) (*Flow, error) {
	f := &Flow{
		ID:          id,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		CreatedAt:   now,
		State:       MethodSelection{},
	}
	if err := f.Refresh(o); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Flow) Step() Step { return f.State.Step() }

func (f *Flow) wrongStep(action string) error {
	return &feedback.Conflict{
		Message: "Langkah pembayaran tidak valid, silakan muat ulang.",
		Err:     fmt.Errorf("%s from %s: %w", action, f.Step(), ErrWrongStep),
	}
}

// SelectMethod moves to detail entry and resets any bank sub-selection. The amount starts at the
// default for this order.
func (f *Flow) SelectMethod(m orders.PaymentMethod) error {
	switch f.State.(type) {
	case MethodSelection, DetailEntry:
	default:
		return f.wrongStep("select method")
	}
	if !validMethod(m) {
		return feedback.Field("method", "Pilih metode pembayaran.")
	}
	amount := f.Balance.DefaultAmount()
	f.State = DetailEntry{Details: Details{Method: m, Amount: amount, Type: TypeFor(f.Balance, amount)}}
	return nil
}

type DetailsInput struct {
	BankCode string `json:"bank_code"`
	Amount   int64  `json:"amount"`
}

// EnterDetails stores the sub-selection and a clamped amount. Invalid input is reported but the
// flow stays in detail entry with whatever was accepted.
func (f *Flow) EnterDetails(in DetailsInput) error {
	de, ok := f.State.(DetailEntry)
	if !ok {
		return f.wrongStep("enter details")
	}
	d := de.Details
	v := &feedback.Invalid{}

	if d.Method == orders.MethodCash {
		d.BankCode = ""
	} else if validBank(d.Method, in.BankCode) {
		d.BankCode = in.BankCode
	} else {
		d.BankCode = ""
		v.Add("bank_code", "Pilih bank tujuan.")
	}

	if in.Amount <= 0 {
		v.Add("amount", "Nominal pembayaran harus lebih dari 0.")
	} else {
		d.Amount = ClampAmount(in.Amount, f.Balance.Remaining)
		d.Clamped = d.Amount != in.Amount
		d.Type = TypeFor(f.Balance, d.Amount)
	}

	f.State = DetailEntry{Details: d}
	return v.OrNil()
}

func (d Details) ready(b Balance) bool {
	if d.Amount <= 0 || d.Amount > b.Remaining {
		return false
	}
	if d.Method == orders.MethodCash {
		return true
	}
	return validBank(d.Method, d.BankCode)
}

// CanConfirm mirrors the enabled state of the confirm button.
func (f *Flow) CanConfirm() bool {
	de, ok := f.State.(DetailEntry)
	return ok && de.Details.ready(f.Balance)
}

func (f *Flow) Confirm() error {
	de, ok := f.State.(DetailEntry)
	if !ok {
		return f.wrongStep("confirm")
	}
	if !de.Details.ready(f.Balance) {
		v := &feedback.Invalid{}
		if de.Details.Method != orders.MethodCash && !validBank(de.Details.Method, de.Details.BankCode) {
			v.Add("bank_code", "Pilih bank tujuan.")
		}
		v.Add("amount", "Nominal pembayaran tidak valid.")
		return v
	}
	f.State = Confirmation{Details: de.Details}
	return nil
}

// Back steps one screen back. Confirmation is a preview, so nothing is lost.
func (f *Flow) Back() error {
	switch st := f.State.(type) {
	case Confirmation:
		f.State = DetailEntry{Details: st.Details}
	case DetailEntry:
		f.State = MethodSelection{}
	default:
		return f.wrongStep("back")
	}
	return nil
}

// Refresh replaces the balance with the backend's current totals. Another payment may have been
// posted since the flow started.
func (f *Flow) Refresh(o orders.Order) error {
	if o.Status.Terminal() {
		return &feedback.Conflict{Message: "Pesanan ini sudah " + o.Status.Label() + ".", Err: ErrWrongStep}
	}
	f.Balance = BalanceOf(o)
	if o.IsFullyPaid || f.Balance.Remaining <= 0 {
		return &feedback.Conflict{Message: "Pesanan ini sudah lunas.", Err: ErrAmountAboveRemaining}
	}
	return nil
}

// Begin locks the attempt for submission and returns the final details. An amount that no longer
// fits the balance is not posted: the flow goes back to detail entry with the lowered amount.
func (f *Flow) Begin() (Details, error) {
	c, ok := f.State.(Confirmation)
	if !ok {
		return Details{}, f.wrongStep("submit")
	}
	d := c.Details
	if d.Amount > f.Balance.Remaining {
		d.Amount = ClampAmount(d.Amount, f.Balance.Remaining)
		d.Clamped = true
		d.Type = TypeFor(f.Balance, d.Amount)
		f.State = DetailEntry{Details: d, Error: msgAboveRemaining}
		return Details{}, &feedback.Conflict{Field: "amount", Message: msgAboveRemaining, Err: ErrAmountAboveRemaining}
	}
	d.Type = TypeFor(f.Balance, d.Amount)
	f.State = Submitting{Details: d}
	return d, nil
}

func (f *Flow) Succeed(p orders.Payment) error {
	if _, ok := f.State.(Submitting); !ok {
		return f.wrongStep("succeed")
	}
	f.State = Succeeded{Payment: p}
	return nil
}

// Fail returns to detail entry carrying a user-facing message. No automatic retry.
func (f *Flow) Fail(err error) error {
	s, ok := f.State.(Submitting)
	if !ok {
		return f.wrongStep("fail")
	}
	f.State = DetailEntry{Details: s.Details, Error: feedback.Classify(err).Message}
	return nil
}

type flowJSON struct {
	ID          string          `json:"id"`
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Balance     Balance         `json:"balance"`
	CreatedAt   time.Time       `json:"created_at"`
	Step        Step            `json:"step"`
	State       json.RawMessage `json:"state"`
	CanConfirm  bool            `json:"can_confirm"`
}

func (f Flow) MarshalJSON() ([]byte, error) {
	if f.State == nil {
		f.State = MethodSelection{}
	}
	st, err := json.Marshal(f.State)
	if err != nil {
		return nil, err
	}
	return json.Marshal(flowJSON{
		ID:          f.ID,
		OrderID:     f.OrderID,
		OrderNumber: f.OrderNumber,
		Balance:     f.Balance,
		CreatedAt:   f.CreatedAt,
		Step:        f.State.Step(),
		State:       st,
		CanConfirm:  f.CanConfirm(),
	})
}

func (f *Flow) UnmarshalJSON(b []byte) error {
	var raw flowJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := decodeState(raw.Step, raw.State)
	if err != nil {
		return err
	}
	*f = Flow{
		ID:          raw.ID,
		OrderID:     raw.OrderID,
		OrderNumber: raw.OrderNumber,
		Balance:     raw.Balance,
		CreatedAt:   raw.CreatedAt,
		State:       st,
	}
	return nil
}

func decodeState(step Step, raw json.RawMessage) (State, error) {
	switch step {
	case StepMethodSelection:
		return MethodSelection{}, nil
	case StepDetailEntry:
		return decodeInto[DetailEntry](raw)
	case StepConfirmation:
		return decodeInto[Confirmation](raw)
	case StepSubmitting:
		return decodeInto[Submitting](raw)
	case StepSucceeded:
		return decodeInto[Succeeded](raw)
	}
	return nil, fmt.Errorf("unknown payment flow step %q", step)
}

func decodeInto[T State](raw json.RawMessage) (State, error) {
	var st T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &st); err != nil {
			return nil, fmt.Errorf("decode %s: %w", st.Step(), err)
		}
	}
	return st, nil
}
