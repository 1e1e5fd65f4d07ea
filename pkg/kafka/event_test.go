package kafka

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartChangedPayload struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	LineCount int    `json:"line_count"`
}

func TestNewEvent(t *testing.T) {
	payload := cartChangedPayload{UserID: "user-1", ProductID: "prod-1", LineCount: 2}

	event, err := NewEvent("storefront.cart.changed", "user-1", "cart", "storefront-service", payload)
	require.NoError(t, err)

	_, parseErr := uuid.Parse(event.EventID)
	assert.NoError(t, parseErr)
	assert.Equal(t, "storefront.cart.changed", event.EventType)
	assert.Equal(t, "user-1", event.AggregateID)
	assert.Equal(t, "cart", event.AggregateType)
	assert.Equal(t, 1, event.Version)
	assert.Equal(t, "storefront-service", event.Source)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	_, err := NewEvent("bad.event", "id", "cart", "storefront-service", make(chan int))
	assert.Error(t, err)
}

func TestEvent_WithCorrelationID(t *testing.T) {
	event, err := NewEvent("storefront.cart.changed", "user-1", "cart", "storefront-service", nil)
	require.NoError(t, err)

	same := event.WithCorrelationID("corr-123")
	assert.Same(t, event, same)
	assert.Equal(t, "corr-123", event.CorrelationID)
}

func TestEvent_MarshalRoundTrip(t *testing.T) {
	payload := cartChangedPayload{UserID: "user-1", ProductID: "prod-1", LineCount: 3}
	event, err := NewEvent("storefront.cart.changed", "user-1", "cart", "storefront-service", payload)
	require.NoError(t, err)
	event.WithCorrelationID("corr-9")

	raw, err := event.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, "corr-9", decoded.CorrelationID)

	var got cartChangedPayload
	require.NoError(t, decoded.UnmarshalData(&got))
	assert.Equal(t, payload, got)
}

func TestUnmarshalEvent_Invalid(t *testing.T) {
	_, err := UnmarshalEvent([]byte("not json"))
	assert.Error(t, err)
}
