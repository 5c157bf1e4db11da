package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/traitproof/internal/testutil"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/event"
)

func TestPublishSubscribe(t *testing.T) {
	bus := New(testutil.NewTestLogger())

	var got []event.ProofStateChanged
	handler := func(e event.ProofStateChanged) { got = append(got, e) }
	require.NoError(t, bus.Subscribe(event.EventProofState, handler))

	bus.Publish(event.EventProofState, event.ProofStateChanged{Kind: "trait_threshold", From: "idle", To: "witness_executing"})
	bus.Publish(event.EventRecordRevoked, event.RecordRevoked{ContentRef: "Qm"})

	require.Len(t, got, 1)
	assert.Equal(t, "witness_executing", got[0].To)

	require.NoError(t, bus.Unsubscribe(event.EventProofState, handler))
	bus.Publish(event.EventProofState, event.ProofStateChanged{To: "proof_ready"})
	assert.Len(t, got, 1)

	published, failed := bus.Stats()
	assert.Equal(t, uint64(1), published)
	assert.Zero(t, failed)
}

func TestSubscribeRejectsNonFunction(t *testing.T) {
	bus := New(nil)
	assert.Error(t, bus.Subscribe(event.EventProofState, "not a func"))
}

func TestHandlerPanicIsContained(t *testing.T) {
	bus := New(testutil.NewTestLogger())
	require.NoError(t, bus.Subscribe(event.EventRecordPublished, func(event.RecordPublished) { panic("boom") }))

	assert.NotPanics(t, func() {
		bus.Publish(event.EventRecordPublished, event.RecordPublished{ID: "zkp_1"})
	})
	_, failed := bus.Stats()
	assert.Equal(t, uint64(1), failed)
}
