package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventbus "github.com/weisyn/traitproof/internal/core/infrastructure/event"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/event"
)

func TestStageText(t *testing.T) {
	assert.Equal(t, "计算见证...", StageText("witness_executing"))
	assert.Equal(t, "custom", StageText("custom"))
}

func TestTrackProofSilentInJSON(t *testing.T) {
	var buf bytes.Buffer
	bus := eventbus.New(nil)
	r := NewRenderer(FormatJSON, &buf)

	stop, err := r.TrackProof(bus)
	require.NoError(t, err)
	bus.Publish(event.EventProofState, event.ProofStateChanged{To: "proof_ready"})
	stop()

	assert.Empty(t, buf.String())
	published, _ := bus.Stats()
	assert.Zero(t, published, "JSON 模式不订阅")
}
