package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]any{"product_id": "p1", "quantity": 3}

	event, err := NewEvent("product.sold", "p1", "product", "storefront", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "product.sold", event.EventType)
	assert.Equal(t, "p1", event.AggregateID)
	assert.Equal(t, "product", event.AggregateType)
	assert.Equal(t, 1, event.Version)
	assert.False(t, event.Timestamp.IsZero())

	var decoded map[string]any
	require.NoError(t, event.UnmarshalData(&decoded))
	assert.Equal(t, "p1", decoded["product_id"])
}

func TestEventWithCorrelationID(t *testing.T) {
	event, err := NewEvent("product.created", "p2", "product", "storefront", nil)
	require.NoError(t, err)

	event.WithCorrelationID("corr-1")
	assert.Equal(t, "corr-1", event.CorrelationID)

	data, err := event.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"correlation_id":"corr-1"`)
}
