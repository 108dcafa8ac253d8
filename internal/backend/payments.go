package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/ariefcatur/go-wedding-orders/internal/orders"
)

// Upload is an in-memory proof image.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type PaymentRequest struct {
	Amount        int64
	PaymentType   orders.PaymentType
	PaymentMethod orders.PaymentMethod
	BankCode      string
	Proof         *Upload
}

type VerifyRequest struct {
	Status orders.PaymentStatus `json:"status"`
	Note   string               `json:"note,omitempty"`
}

type PaymentStatusResult struct {
	Status  orders.PaymentStatus `json:"status"`
	Payment *orders.Payment      `json:"payment,omitempty"`
}

// CreatePayment posts to the method-specific processing endpoint. Bank transfers go out as
// multipart because of the proof file, everything else as JSON.
func (c *Client) CreatePayment(ctx context.Context, orderID int64, in PaymentRequest) (orders.Payment, error) {
	var out envelope[orders.Payment]
	path := fmt.Sprintf("/api/orders/%d/payments", orderID)

	if in.Proof == nil {
		body := map[string]any{
			"amount":         in.Amount,
			"payment_type":   in.PaymentType,
			"payment_method": in.PaymentMethod,
		}
		if in.BankCode != "" {
			body["bank_code"] = in.BankCode
		}
		err := c.sendJSON(ctx, "create_payment", http.MethodPost, path, body, &out)
		return out.Data, err
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	fields := [][2]string{
		{"amount", strconv.FormatInt(in.Amount, 10)},
		{"payment_type", string(in.PaymentType)},
		{"payment_method", string(in.PaymentMethod)},
		{"bank_code", in.BankCode},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return orders.Payment{}, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="payment_proof"; filename=%q`, in.Proof.Filename))
	h.Set("Content-Type", in.Proof.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return orders.Payment{}, fmt.Errorf("create proof part: %w", err)
	}
	if _, err := part.Write(in.Proof.Data); err != nil {
		return orders.Payment{}, fmt.Errorf("write proof: %w", err)
	}
	if err := w.Close(); err != nil {
		return orders.Payment{}, err
	}

	err = c.do(ctx, request{
		op:          "create_payment",
		method:      http.MethodPost,
		path:        path,
		body:        buf,
		contentType: w.FormDataContentType(),
	}, &out)
	return out.Data, err
}

func (c *Client) VerifyPayment(ctx context.Context, paymentID int64, in VerifyRequest) (orders.Payment, error) {
	var out envelope[orders.Payment]
	err := c.sendJSON(ctx, "verify_payment", http.MethodPatch, fmt.Sprintf("/api/payments/%d/verify", paymentID), in, &out)
	return out.Data, err
}

func (c *Client) Payment(ctx context.Context, paymentID int64) (orders.Payment, error) {
	var out envelope[orders.Payment]
	err := c.get(ctx, "get_payment", fmt.Sprintf("/api/payments/%d", paymentID), nil, &out)
	return out.Data, err
}

func (c *Client) PaymentStatus(ctx context.Context, paymentID int64) (PaymentStatusResult, error) {
	var out PaymentStatusResult
	err := c.get(ctx, "payment_status", fmt.Sprintf("/api/payments/%d/check-status", paymentID), nil, &out)
	return out, err
}

func (c *Client) Payments(ctx context.Context, q ListQuery) (orders.Page[orders.Payment], error) {
	var out orders.Page[orders.Payment]
	err := c.get(ctx, "list_payments", "/api/payments", q.values(), &out)
	return out, err
}
