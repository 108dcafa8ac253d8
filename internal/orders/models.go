package orders

import "github.com/shopspring/decimal"

type PaymentType string

const (
	PaymentTypeDownPayment PaymentType = "down_payment"
	PaymentTypeInstallment PaymentType = "installment"
	PaymentTypeFullPayment PaymentType = "full_payment"
)

type PaymentMethod string

const (
	MethodBankTransfer   PaymentMethod = "bank_transfer"
	MethodVirtualAccount PaymentMethod = "virtual_account"
	MethodCash           PaymentMethod = "cash"
)

type Review struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
	Date    string `json:"date,omitempty"`
}

type CustomFeature struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Price          Amount `json:"price"`
	FormattedPrice string `json:"formatted_price,omitempty"`
}

type Order struct {
	ID                 int64           `json:"id"`
	OrderNumber        string          `json:"order_number"`
	UserID             int64           `json:"user_id,omitempty"`
	CatalogID          *int64          `json:"catalog_id,omitempty"`
	ClientName         string          `json:"client_name"`
	EventDate          string          `json:"event_date"` // YYYY-MM-DD
	Venue              string          `json:"venue"`
	EstimatedGuests    int             `json:"estimated_guests"`
	Price              Amount          `json:"price"`
	OriginalPrice      Amount          `json:"original_price"`
	DiscountPercent    decimal.Decimal `json:"discount_percent"`
	DiscountAmount     Amount          `json:"discount_amount"`
	DiscountReason     string          `json:"discount_reason,omitempty"`
	DownPaymentAmount  Amount          `json:"down_payment_amount"`
	Status             Status          `json:"status"`
	PaidAmount         Amount          `json:"paid_amount"`
	RemainingAmount    Amount          `json:"remaining_amount"`
	IsFullyPaid        bool            `json:"is_fully_paid"`
	IncludedServices   []string        `json:"included_services"`
	CustomFeatures     []CustomFeature `json:"custom_features"`
	Review             *Review         `json:"review,omitempty"`
	HasReviewed        bool            `json:"has_reviewed"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	FormattedPrice     string          `json:"formatted_price,omitempty"`
	Payments           []Payment       `json:"payments,omitempty"`
	CreatedAt          string          `json:"created_at,omitempty"`
}

// Reviewed covers both the flag and an attached review; older payloads only carry one of them.
func (o Order) Reviewed() bool {
	return o.HasReviewed || o.Review != nil
}

type Payment struct {
	ID              int64         `json:"id"`
	OrderID         int64         `json:"order_id"`
	Amount          Amount        `json:"amount"`
	PaymentType     PaymentType   `json:"payment_type"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	BankCode        string        `json:"bank_code,omitempty"`
	VANumber        string        `json:"va_number,omitempty"`
	PaymentProof    string        `json:"payment_proof,omitempty"`
	Status          PaymentStatus `json:"status"`
	Note            string        `json:"note,omitempty"`
	VerifiedAt      string        `json:"verified_at,omitempty"`
	VerifiedBy      string        `json:"verified_by,omitempty"`
	ExpiredAt       string        `json:"expired_at,omitempty"`
	CreatedAt       string        `json:"created_at,omitempty"`
	FormattedAmount string        `json:"formatted_amount,omitempty"`
}

type Catalog struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Description    string    `json:"description,omitempty"`
	PriceRange     [2]Amount `json:"price_range"`
	Features       []string  `json:"features"`
	FormattedPrice string    `json:"formatted_price,omitempty"`
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Meta mirrors the paginator fields every list endpoint returns next to "data".
type Meta struct {
	CurrentPage int     `json:"current_page"`
	LastPage    int     `json:"last_page"`
	PerPage     int     `json:"per_page,omitempty"`
	From        *int    `json:"from"`
	To          *int    `json:"to"`
	Total       int     `json:"total"`
	PrevPageURL *string `json:"prev_page_url"`
	NextPageURL *string `json:"next_page_url"`
}

type Page[T any] struct {
	Data []T `json:"data"`
	Meta
}

// Viewer is the identity a read is made for.
type Viewer struct {
	UserID int64
	Admin  bool
}

func (v Viewer) CanSee(o Order) bool {
	return v.Admin || (v.UserID > 0 && v.UserID == o.UserID)
}
