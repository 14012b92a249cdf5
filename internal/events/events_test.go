package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope(EventOrderPaid, 42, map[string]any{"payment_id": "p1"})
	require.NoError(t, err)

	assert.Equal(t, "42", env.OrderID)
	assert.Equal(t, 1, env.EventVersion)
	assert.NotEmpty(t, env.EventID)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "p1", payload["payment_id"])
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	r.Publish(context.Background(), EventOrderCreated, 1, nil)
	r.Publish(context.Background(), EventOrderStatusChanged, 1, nil)
	assert.Equal(t, []string{EventOrderCreated, EventOrderStatusChanged}, r.Types())
}
