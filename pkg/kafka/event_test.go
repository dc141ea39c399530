package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_Fields(t *testing.T) {
	type CartData struct {
		SessionID string `json:"session_id"`
		Subtotal  int64  `json:"subtotal"`
	}

	data := CartData{SessionID: "sess-123", Subtotal: 4999}
	event, err := NewEvent("cart.updated", "sess-123", "cart", "storefront", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID, "EventID should be a non-empty UUID")
	assert.Equal(t, "cart.updated", event.EventType)
	assert.Equal(t, "sess-123", event.AggregateID)
	assert.Equal(t, "cart", event.AggregateType)
	assert.Equal(t, "storefront", event.Source)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)
	assert.NotNil(t, event.Metadata)
	assert.NotNil(t, event.Data)

	var roundTripped CartData
	require.NoError(t, json.Unmarshal(event.Data, &roundTripped))
	assert.Equal(t, data, roundTripped)
}

func TestNewEvent_InvalidData(t *testing.T) {
	// Channels are not serializable to JSON.
	_, err := NewEvent("test.event", "agg-1", "test", "storefront", make(chan int))
	require.Error(t, err)
}

func TestEvent_Marshal_Unmarshal(t *testing.T) {
	original, err := NewEvent("checkout.completed", "sess-456", "checkout", "storefront", map[string]string{"order_id": "ord-1"})
	require.NoError(t, err)
	original.CorrelationID = "corr-abc"
	original.Metadata["channel"] = "web"

	bytes, err := original.Marshal()
	require.NoError(t, err)
	assert.NotEmpty(t, bytes)

	restored, err := UnmarshalEvent(bytes)
	require.NoError(t, err)

	assert.Equal(t, original.EventID, restored.EventID)
	assert.Equal(t, original.EventType, restored.EventType)
	assert.Equal(t, original.CorrelationID, restored.CorrelationID)
	assert.Equal(t, original.Metadata, restored.Metadata)
}

func TestUnmarshalEvent_MalformedJSON(t *testing.T) {
	_, err := UnmarshalEvent([]byte(`{"event_id":`))
	require.Error(t, err)
}

func TestEvent_UnmarshalData(t *testing.T) {
	type payload struct {
		OrderID string `json:"order_id"`
	}
	event, err := NewEvent("checkout.completed", "sess-1", "checkout", "storefront", payload{OrderID: "ord-9"})
	require.NoError(t, err)

	var out payload
	require.NoError(t, event.UnmarshalData(&out))
	assert.Equal(t, "ord-9", out.OrderID)
}

func TestEvent_WithCorrelationID(t *testing.T) {
	event, err := NewEvent("cart.cleared", "sess-1", "cart", "storefront", struct{}{})
	require.NoError(t, err)

	same := event.WithCorrelationID("corr-1")
	assert.Same(t, event, same)
	assert.Equal(t, "corr-1", event.CorrelationID)
}
