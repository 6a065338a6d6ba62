package generation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrackerLatchesRequestIDOnce(t *testing.T) {
	track := newTracker()
	seq := track.begin("gen-1")

	require.True(t, track.latchRequestID(seq, "req-1"))
	require.False(t, track.latchRequestID(seq, "req-2"))
	require.Equal(t, "req-1", track.snapshot().RequestID)
}

func TestTrackerRejectsStaleSequence(t *testing.T) {
	track := newTracker()
	old := track.begin("gen-1")
	_, ok := track.appendDelta(old, "stara ")
	require.True(t, ok)

	// A new generation supersedes the old one; its deltas are abandoned,
	// not merged.
	current := track.begin("gen-2")
	_, ok = track.appendDelta(old, "zavržena")
	require.False(t, ok)

	text, ok := track.appendDelta(current, "nova")
	require.True(t, ok)
	require.Equal(t, "nova", text)
}

func TestTrackerBeginResetsPerRequestState(t *testing.T) {
	track := newTracker()
	seq := track.begin("gen-1")
	track.latchRequestID(seq, "req-1")
	track.appendDelta(seq, "besedilo")
	track.setTokens(seq, 12)

	track.begin("gen-2")

	state := track.snapshot()
	require.Equal(t, PhaseStreaming, state.Phase)
	require.Empty(t, state.RequestID)
	require.Empty(t, state.Text)
	require.Zero(t, state.Tokens)
}

func TestTrackerCancelRequiresLatchedID(t *testing.T) {
	track := newTracker()
	track.begin("gen-1")

	_, ok := track.markCancelled()
	require.False(t, ok, "nothing addressable to cancel before an id is latched")
}

func TestTrackerCancelStopsMutation(t *testing.T) {
	track := newTracker()
	seq := track.begin("gen-1")
	track.latchRequestID(seq, "req-1")
	track.appendDelta(seq, "delno ")

	id, ok := track.markCancelled()
	require.True(t, ok)
	require.Equal(t, "req-1", id)

	_, ok = track.appendDelta(seq, "po preklicu")
	require.False(t, ok)
	require.Equal(t, PhaseCancelled, track.snapshot().Phase)
	require.Equal(t, "delno ", track.snapshot().Text)
}

func TestTrackerFinishComputesFallbackTokens(t *testing.T) {
	track := newTracker()
	seq := track.begin("gen-1")
	track.appendDelta(seq, "ena dva tri")

	state, ok := track.finishOwned(seq, 2000, func(text string) int { return len(text) / 4 })
	require.True(t, ok)
	require.Equal(t, PhaseDone, state.Phase)
	require.Equal(t, 2, state.Tokens)
	require.Equal(t, int64(2000), state.ElapsedMs)
}

func TestTrackerFinishKeepsReportedUsage(t *testing.T) {
	track := newTracker()
	seq := track.begin("gen-1")
	track.setTokens(seq, 42)

	state, ok := track.finishOwned(seq, 1000, func(string) int { return 0 })
	require.True(t, ok)
	require.Equal(t, 42, state.Tokens)
}
