package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeCarriesPayload(t *testing.T) {
	env, err := NewEnvelope(EventUserRegistered, "marketplace-api", "u1",
		UserRegisteredPayload{UserID: "u1", ReferredBy: "u0"})
	require.NoError(t, err)

	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, Version, env.EventVersion)
	assert.Equal(t, []byte("u1"), env.PartitionKey())

	p, err := Decode[UserRegisteredPayload](env)
	require.NoError(t, err)
	assert.Equal(t, "u0", p.ReferredBy)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	env, err := NewEnvelope(EventOrderCreated, "test", "o1", OrderCreatedPayload{OrderID: "o1"})
	require.NoError(t, err)
	require.NoError(t, r.Publish(context.Background(), TopicOrderCreated, env))
	assert.Equal(t, []string{TopicOrderCreated}, r.Topics())
}

func TestInProcessDeliversThenForwards(t *testing.T) {
	var (
		rec  Recorder
		seen []string
	)
	p := &InProcess{Next: &rec}
	p.Subscribe(TopicUserRegistered, func(_ context.Context, env Envelope) error {
		seen = append(seen, env.CorrelationID)
		return nil
	})
	p.Subscribe(TopicUserRegistered, func(context.Context, Envelope) error {
		return errors.New("boom")
	})

	env, err := NewEnvelope(EventUserRegistered, "test", "u1", UserRegisteredPayload{UserID: "u1"})
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), TopicUserRegistered, env))

	other, err := NewEnvelope(EventOrderCreated, "test", "o1", OrderCreatedPayload{OrderID: "o1"})
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), TopicOrderCreated, other))

	assert.Equal(t, []string{"u1"}, seen)
	assert.Equal(t, []string{TopicUserRegistered, TopicOrderCreated}, rec.Topics())
}
