package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderSubmitted   = "OrderSubmitted"
	EventOrderUpdated     = "OrderUpdated"
	EventOrderCancelled   = "OrderCancelled"
	EventOrderCompleted   = "OrderCompleted"
	EventReviewSubmitted  = "ReviewSubmitted"
	EventPaymentSubmitted = "PaymentSubmitted"
	EventPaymentVerified  = "PaymentVerified"
	EventPaymentRejected  = "PaymentRejected"
	EventPaymentSettled   = "PaymentSettled"
	EventVASettled        = "VASettled"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

func NewEnvelope(eventType, producer, traceID string, orderID int64, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: string(PartitionKey(orderID)),
		Payload:       b,
	}, nil
}

// ---- Payload tipe per event ----

type OrderActivityPayload struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number,omitempty"`
	Status      Status `json:"status"`
	ActorID     string `json:"actor_id,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

type ReviewSubmittedPayload struct {
	OrderID int64 `json:"order_id"`
	Rating  int   `json:"rating"`
}

type PaymentActivityPayload struct {
	OrderID   int64         `json:"order_id"`
	PaymentID int64         `json:"payment_id"`
	Method    PaymentMethod `json:"method"`
	Type      PaymentType   `json:"type"`
	Amount    int64         `json:"amount"`
	Status    PaymentStatus `json:"status"`
	Note      string        `json:"note,omitempty"`
}

// VASettledPayload is produced by the backend, not by this service.
type VASettledPayload struct {
	OrderID   int64  `json:"order_id"`
	PaymentID int64  `json:"payment_id"`
	VANumber  string `json:"va_number"`
	Amount    Amount `json:"amount"`
	SettledAt string `json:"settled_at"`
}
