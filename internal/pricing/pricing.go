// Package pricing holds the one implementation of the package price / discount arithmetic used by
// every booking screen. Amounts are whole rupiah.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// DefaultDownPaymentPercent dipakai kalau admin tidak mengisi DP sendiri.
const DefaultDownPaymentPercent = 30

var (
	ErrUnknownDiscountType = errors.New("unknown discount type")
	ErrDiscountOutOfRange  = errors.New("discount value out of range")
	ErrNegativePrice       = errors.New("price must not be negative")

	hundred = decimal.NewFromInt(100)
)

type Discount struct {
	Enabled bool            `json:"enabled"`
	Type    DiscountType    `json:"type"`
	Value   decimal.Decimal `json:"value"`
	Reason  string          `json:"reason,omitempty"`
}

// Validate reports raw input problems. Compute never fails; it clamps instead.
func (d Discount) Validate(base int64) error {
	if base < 0 {
		return ErrNegativePrice
	}
	if !d.Enabled {
		return nil
	}
	switch d.Type {
	case DiscountPercentage:
		if d.Value.IsNegative() || d.Value.GreaterThan(hundred) {
			return ErrDiscountOutOfRange
		}
	case DiscountFixed:
		if d.Value.IsNegative() || d.Value.GreaterThan(decimal.NewFromInt(base)) {
			return ErrDiscountOutOfRange
		}
	default:
		return ErrUnknownDiscountType
	}
	return nil
}

type Quote struct {
	OriginalPrice   int64           `json:"original_price"`
	Price           int64           `json:"price"`
	DiscountType    DiscountType    `json:"discount_type,omitempty"`
	DiscountAmount  int64           `json:"discount_amount"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountReason  string          `json:"discount_reason,omitempty"`
	DownPayment     int64           `json:"down_payment_amount"`
}

// Compute derives the final price from a base price and a discount setting.
// Invariant: Price = OriginalPrice - DiscountAmount.
func Compute(base int64, d Discount) Quote {
	if base < 0 {
		base = 0
	}
	q := Quote{OriginalPrice: base, Price: base, DiscountPercent: decimal.Zero}

	if d.Enabled {
		switch d.Type {
		case DiscountPercentage:
			pct := clamp(d.Value, decimal.Zero, hundred)
			q.DiscountAmount = decimal.NewFromInt(base).Mul(pct).Div(hundred).Round(0).IntPart()
			q.DiscountPercent = pct.Round(2)
			q.DiscountType = d.Type
		case DiscountFixed:
			amt := clamp(d.Value.Round(0), decimal.Zero, decimal.NewFromInt(base))
			q.DiscountAmount = amt.IntPart()
			q.DiscountPercent = percentOf(q.DiscountAmount, base)
			q.DiscountType = d.Type
		}
		if q.DiscountType != "" {
			q.DiscountReason = d.Reason
		}
	}

	q.Price = base - q.DiscountAmount
	q.DownPayment = DownPayment(q.Price, nil)
	return q
}

// DownPayment returns the default 30% DP, or the override clamped into [0, price].
func DownPayment(price int64, override *int64) int64 {
	if price <= 0 {
		return 0
	}
	if override != nil {
		v := *override
		if v < 0 {
			return 0
		}
		if v > price {
			return price
		}
		return v
	}
	return decimal.NewFromInt(price).
		Mul(decimal.NewFromInt(DefaultDownPaymentPercent)).
		Div(hundred).
		Round(0).
		IntPart()
}

func percentOf(amount, base int64) decimal.Decimal {
	if base == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(amount).Mul(hundred).Div(decimal.NewFromInt(base)).Round(2)
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
