package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ariefcatur/go-wedding-orders/internal/orders"
	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeCatalog OrderType = "catalog"
	OrderTypeCustom  OrderType = "custom"
)

// OrderRequest is the create/update body. Both discount_percent and discount_amount are sent,
// derived from the same quote.
type OrderRequest struct {
	OrderType         OrderType       `json:"order_type"`
	UserID            *int64          `json:"user_id,omitempty"`
	CatalogID         *int64          `json:"catalog_id,omitempty"`
	EventDate         string          `json:"event_date"`
	Venue             string          `json:"venue"`
	EstimatedGuests   int             `json:"estimated_guests"`
	Notes             string          `json:"notes,omitempty"`
	CustomFeatureIDs  []int64         `json:"custom_features,omitempty"`
	OriginalPrice     int64           `json:"original_price"`
	Price             int64           `json:"price"`
	DiscountType      string          `json:"discount_type,omitempty"`
	DiscountPercent   decimal.Decimal `json:"discount_percent"`
	DiscountAmount    int64           `json:"discount_amount"`
	DiscountReason    string          `json:"discount_reason,omitempty"`
	DownPaymentAmount int64           `json:"down_payment_amount"`
}

func (c *Client) Orders(ctx context.Context, q ListQuery) (orders.Page[orders.Order], error) {
	var out orders.Page[orders.Order]
	err := c.get(ctx, "list_orders", "/api/orders", q.values(), &out)
	return out, err
}

func (c *Client) Order(ctx context.Context, id int64) (orders.Order, error) {
	var out envelope[orders.Order]
	err := c.get(ctx, "get_order", fmt.Sprintf("/api/orders/%d", id), nil, &out)
	return out.Data, err
}

func (c *Client) CreateOrder(ctx context.Context, in OrderRequest) (orders.Order, error) {
	var out envelope[orders.Order]
	err := c.sendJSON(ctx, "create_order", http.MethodPost, "/api/orders", in, &out)
	return out.Data, err
}

func (c *Client) UpdateOrder(ctx context.Context, id int64, in OrderRequest) (orders.Order, error) {
	var out envelope[orders.Order]
	err := c.sendJSON(ctx, "update_order", http.MethodPut, fmt.Sprintf("/api/orders/%d", id), in, &out)
	return out.Data, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, in orders.StatusUpdate) (orders.Order, error) {
	var out envelope[orders.Order]
	err := c.sendJSON(ctx, "update_order_status", http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", id), in, &out)
	return out.Data, err
}

func (c *Client) SubmitReview(ctx context.Context, orderID int64, in orders.Review) error {
	return c.sendJSON(ctx, "submit_review", http.MethodPost, fmt.Sprintf("/api/orders/%d/review", orderID), in, nil)
}
