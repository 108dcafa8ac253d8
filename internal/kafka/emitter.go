package kafka

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"

	"github.com/ariefcatur/go-wedding-orders/internal/orders"
)

// Publisher is satisfied by *Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafka.Header)
}

// Emitter wraps activity payloads in the v1 envelope, keyed by order id. A nil Emitter or one
// without a publisher drops events, which is what tests and kafka-less setups want.
type Emitter struct {
	pub      Publisher
	producer string
}

func NewEmitter(pub Publisher, producer string) *Emitter {
	return &Emitter{pub: pub, producer: producer}
}

func (e *Emitter) Emit(ctx context.Context, eventType string, orderID int64, payload any) {
	if e == nil || e.pub == nil {
		return
	}
	var traceID string
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		traceID = sc.TraceID().String()
	}
	env, err := orders.NewEnvelope(eventType, e.producer, traceID, orderID, payload)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("component", "kafka").Str("event", eventType).Msg("build envelope")
		return
	}
	e.pub.Publish(orders.PartitionKey(orderID), MustMarshal(env),
		kafka.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafka.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(env.EventVersion))},
	)
}
