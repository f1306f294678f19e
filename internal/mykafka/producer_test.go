package mykafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_RequiresBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewProducer(context.Background(), nil, Topics())
	require.Error(t, err)
}

func TestNewEvent_Envelope(t *testing.T) {
	t.Parallel()

	ev := NewEvent("order_created", map[string]any{"order_id": 7})
	b, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "order_created", decoded["type"])
	assert.Contains(t, decoded, "at")
	assert.EqualValues(t, 7, decoded["data"].(map[string]any)["order_id"])
}
