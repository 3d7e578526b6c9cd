package nats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.PAYMENT_COMPLETED", Subject("PAYMENT_COMPLETED"))
}

func TestDecode_Envelope(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(envelope{Type: "PAYMENT_FAILED", Data: map[string]interface{}{"payment_id": "p-1"}, OccurredAt: at})
	require.NoError(t, err)

	evt, err := decode("events.PAYMENT_FAILED", raw)
	require.NoError(t, err)
	assert.Equal(t, "PAYMENT_FAILED", evt.EventType())
	assert.Equal(t, "p-1", evt.Payload()["payment_id"])
	assert.True(t, at.Equal(evt.Timestamp()))
}

func TestDecode_TypeFromSubject(t *testing.T) {
	evt, err := decode("events.ENTITLEMENT_GRANTED", []byte(`{"data":{"tool_id":"consultor_ia"}}`))
	require.NoError(t, err)
	assert.Equal(t, "ENTITLEMENT_GRANTED", evt.EventType())
	assert.False(t, evt.Timestamp().IsZero())
}

func TestDecode_Malformed(t *testing.T) {
	_, err := decode("events.X", []byte("not json"))
	assert.Error(t, err)
}
