package pricing

import "github.com/shopspring/decimal"

type Feature struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Sheet is the calculator state behind the package configuration screen. The base price is
// always rebuilt from the package price plus the selected features, so add/remove never drifts.
type Sheet struct {
	PackagePrice        int64     `json:"package_price"`
	Features            []Feature `json:"features"`
	Discount            Discount  `json:"discount"`
	DownPaymentOverride *int64    `json:"down_payment_override,omitempty"`
}

func (s Sheet) Base() int64 {
	base := s.PackagePrice
	for _, f := range s.Features {
		base += f.Price
	}
	return base
}

func (s *Sheet) HasFeature(id int64) bool {
	for _, f := range s.Features {
		if f.ID == id {
			return true
		}
	}
	return false
}

// AddFeature returns false when the feature is already selected.
func (s *Sheet) AddFeature(f Feature) bool {
	if s.HasFeature(f.ID) {
		return false
	}
	s.Features = append(s.Features, f)
	return true
}

func (s *Sheet) RemoveFeature(id int64) bool {
	for i, f := range s.Features {
		if f.ID == id {
			s.Features = append(s.Features[:i], s.Features[i+1:]...)
			return true
		}
	}
	return false
}

// SetDiscount stores a clamped value; the amount itself is recomputed on every Quote against
// the current base, never kept as a stale absolute number.
func (s *Sheet) SetDiscount(t DiscountType, v decimal.Decimal, reason string) {
	hi := hundred
	if t == DiscountFixed {
		hi = decimal.NewFromInt(s.Base())
	}
	s.Discount = Discount{Enabled: true, Type: t, Value: clamp(v, decimal.Zero, hi), Reason: reason}
}

// ToggleDiscount(false) clears every discount field; turning it back on starts from a zero
// percentage discount.
func (s *Sheet) ToggleDiscount(on bool) {
	if !on {
		s.Discount = Discount{}
		return
	}
	if s.Discount.Enabled {
		return
	}
	s.Discount = Discount{Enabled: true, Type: DiscountPercentage, Value: decimal.Zero}
}

func (s Sheet) Quote() Quote {
	q := Compute(s.Base(), s.Discount)
	if s.DownPaymentOverride != nil {
		q.DownPayment = DownPayment(q.Price, s.DownPaymentOverride)
	}
	return q
}
