// Package checkout validates and submits catalog and custom orders, and keeps unfinished custom
// package configurations as drafts.
package checkout

import (
	"strings"
	"time"

	"github.com/ariefcatur/go-wedding-orders/internal/backend"
	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
	"github.com/ariefcatur/go-wedding-orders/internal/pricing"
)

// Form is the order screen. OrderID and OwnDate are set when an existing order is edited.
type Form struct {
	OrderID         *int64            `json:"order_id,omitempty"`
	OwnDate         string            `json:"own_date,omitempty"`
	Type            backend.OrderType `json:"order_type"`
	Admin           bool              `json:"-"`
	UserID          *int64            `json:"user_id,omitempty"`
	CatalogID       *int64            `json:"catalog_id,omitempty"`
	EventDate       string            `json:"event_date"`
	Venue           string            `json:"venue"`
	EstimatedGuests int               `json:"estimated_guests"`
	Notes           string            `json:"notes,omitempty"`
	Sheet           pricing.Sheet     `json:"sheet"`
}

func (f Form) Editing() bool { return f.OrderID != nil }

// Validate runs before any network call.
func (f Form) Validate() error {
	v := &feedback.Invalid{}

	if f.Admin && (f.UserID == nil || *f.UserID <= 0) {
		v.Add("user_id", "Pilih klien terlebih dahulu.")
	}
	switch f.Type {
	case backend.OrderTypeCatalog:
		if f.CatalogID == nil || *f.CatalogID <= 0 {
			v.Add("catalog_id", "Pilih paket katalog.")
		}
	case backend.OrderTypeCustom:
		if len(f.Sheet.Features) == 0 {
			v.Add("custom_features", "Pilih minimal satu fitur.")
		}
	default:
		v.Add("order_type", "Jenis pesanan tidak dikenal.")
	}

	if strings.TrimSpace(f.EventDate) == "" {
		v.Add("event_date", "Tanggal acara wajib diisi.")
	} else if _, err := time.Parse(time.DateOnly, f.EventDate); err != nil {
		v.Add("event_date", "Format tanggal acara tidak valid.")
	}
	if strings.TrimSpace(f.Venue) == "" {
		v.Add("venue", "Lokasi acara wajib diisi.")
	}
	if f.EstimatedGuests <= 0 {
		v.Add("estimated_guests", "Jumlah tamu harus lebih dari 0.")
	}

	if f.Sheet.PackagePrice < 0 {
		v.Add("price", "Harga tidak boleh negatif.")
	} else if !f.priceFromCatalog() {
		if err := f.validateDiscount(); err != nil {
			v.Add("discount_value", discountMessage(f.Sheet.Discount.Type))
		}
	}
	return v.OrNil()
}

// priceFromCatalog: the package price is left empty and filled in from the catalog on submit, so
// a fixed discount can only be range-checked after that.
func (f Form) priceFromCatalog() bool {
	return f.Type == backend.OrderTypeCatalog && f.Sheet.PackagePrice == 0
}

func (f Form) validateDiscount() error {
	if err := f.Sheet.Discount.Validate(f.Sheet.Base()); err != nil {
		return feedback.Field("discount_value", discountMessage(f.Sheet.Discount.Type))
	}
	return nil
}

func discountMessage(t pricing.DiscountType) string {
	if t == pricing.DiscountFixed {
		return "Potongan harga tidak boleh melebihi harga paket."
	}
	return "Diskon persentase harus antara 0 dan 100."
}

// Request builds the backend body. Price fields all come from one quote, so the pair
// discount_percent / discount_amount is always consistent.
func (f Form) Request() backend.OrderRequest {
	q := f.Sheet.Quote()
	req := backend.OrderRequest{
		OrderType:         f.Type,
		UserID:            f.UserID,
		CatalogID:         f.CatalogID,
		EventDate:         f.EventDate,
		Venue:             strings.TrimSpace(f.Venue),
		EstimatedGuests:   f.EstimatedGuests,
		Notes:             strings.TrimSpace(f.Notes),
		OriginalPrice:     q.OriginalPrice,
		Price:             q.Price,
		DiscountType:      string(q.DiscountType),
		DiscountPercent:   q.DiscountPercent,
		DiscountAmount:    q.DiscountAmount,
		DiscountReason:    q.DiscountReason,
		DownPaymentAmount: q.DownPayment,
	}
	if !f.Admin {
		req.UserID = nil
	}
	for _, ft := range f.Sheet.Features {
		req.CustomFeatureIDs = append(req.CustomFeatureIDs, ft.ID)
	}
	return req
}
