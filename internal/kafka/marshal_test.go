package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-delivery-marketplace/internal/events"
)

func TestUnmarshalEnvelope(t *testing.T) {
	env, err := events.NewEnvelope(events.EventOrderCreated, "api", "o1", events.OrderCreatedPayload{OrderID: "o1", Total: 21})
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var got events.Envelope
	require.NoError(t, UnmarshalEnvelope(raw, &got))
	assert.Equal(t, env.EventID, got.EventID)

	assert.Error(t, UnmarshalEnvelope([]byte(`nope`), &got))
}

func TestUnmarshalEnvelopeIntoReusedValue(t *testing.T) {
	got := events.Envelope{EventID: "old", EventType: events.EventOrderCreated, Producer: "api"}

	err := UnmarshalEnvelope([]byte(`{"event_id":"e2","payload":{}}`), &got)
	assert.Error(t, err)
	assert.Empty(t, got.EventType)
	assert.Empty(t, got.Producer)
	assert.Equal(t, "e2", got.EventID)
}
