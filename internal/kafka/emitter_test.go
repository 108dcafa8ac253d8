package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-wedding-orders/internal/orders"
)

type recorder struct {
	keys    [][]byte
	values  [][]byte
	headers [][]kafka.Header
}

func (r *recorder) Publish(key, value []byte, headers ...kafka.Header) {
	r.keys = append(r.keys, key)
	r.values = append(r.values, value)
	r.headers = append(r.headers, headers)
}

func TestEmitWrapsEnvelope(t *testing.T) {
	rec := &recorder{}
	e := NewEmitter(rec, "wedding-web")

	e.Emit(context.Background(), orders.EventOrderCancelled, 42, orders.OrderActivityPayload{
		OrderID: 42, Status: orders.StatusCancelled, Reason: "jadwal bentrok",
	})

	require.Len(t, rec.values, 1)
	assert.Equal(t, "42", string(rec.keys[0]))

	var env orders.Envelope
	require.NoError(t, json.Unmarshal(rec.values[0], &env))
	assert.Equal(t, orders.EventOrderCancelled, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "wedding-web", env.Producer)
	assert.NotEmpty(t, env.EventID)

	p, err := UnwrapPayload[orders.OrderActivityPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, "jadwal bentrok", p.Reason)

	assert.Equal(t, "x-event-type", rec.headers[0][0].Key)
	assert.Equal(t, orders.EventOrderCancelled, string(rec.headers[0][0].Value))
}

func TestNilEmitterIsNoop(t *testing.T) {
	var e *Emitter
	assert.NotPanics(t, func() {
		e.Emit(context.Background(), orders.EventOrderCompleted, 1, nil)
	})
	assert.NotPanics(t, func() {
		NewEmitter(nil, "x").Emit(context.Background(), orders.EventOrderCompleted, 1, nil)
	})
}
