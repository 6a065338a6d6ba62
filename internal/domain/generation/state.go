package generation

import (
	"strings"
	"sync"
)

// Phase is the discriminant of the generation state machine.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseStreaming Phase = "streaming"
	PhaseCancelled Phase = "cancelled"
	PhaseErrored   Phase = "errored"
	PhaseDone      Phase = "done"
)

// State is a snapshot of the active generation. It replaces the loose bag of
// reactive flags the UI once kept, so loading/progress/error can never drift
// apart.
type State struct {
	Phase        Phase  `json:"phase"`
	GenerationID string `json:"generationId,omitempty"`
	RequestID    string `json:"requestId,omitempty"`
	Text         string `json:"text,omitempty"`
	Tokens       int    `json:"tokens,omitempty"`
	ElapsedMs    int64  `json:"elapsedMs,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
}

// tracker owns the state of at most one in-flight generation. A sequence
// number hands out ownership: starting a new generation supersedes the prior
// one, whose still-draining events are rejected as stale instead of being
// interleaved into the new buffer.
type tracker struct {
	mu        sync.Mutex
	seq       uint64
	phase     Phase
	genID     string
	requestID string
	buffer    strings.Builder
	tokens    int
	elapsedMs int64
	errMsg    string
}

func newTracker() *tracker {
	return &tracker{phase: PhaseIdle}
}

// begin resets per-request state and returns the new owning sequence number.
func (t *tracker) begin(genID string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.phase = PhaseStreaming
	t.genID = genID
	t.requestID = ""
	t.buffer.Reset()
	t.tokens = 0
	t.elapsedMs = 0
	t.errMsg = ""
	return t.seq
}

// owns reports whether seq still controls the tracker and the generation is
// still mutable.
func (t *tracker) owns(seq uint64) bool {
	return seq == t.seq && t.phase == PhaseStreaming
}

// appendDelta applies one content fragment in arrival order. Returns the
// accumulated text, or false when the event is stale or the generation was
// cancelled locally.
func (t *tracker) appendDelta(seq uint64, delta string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.owns(seq) {
		return "", false
	}
	t.buffer.WriteString(delta)
	return t.buffer.String(), true
}

// latchRequestID records the upstream identifier once; later ids in the same
// stream are ignored.
func (t *tracker) latchRequestID(seq uint64, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.owns(seq) || id == "" || t.requestID != "" {
		return false
	}
	t.requestID = id
	return true
}

func (t *tracker) setTokens(seq uint64, tokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.owns(seq) {
		t.tokens = tokens
	}
}

// finishOwned transitions to Done and returns the final snapshot. When the
// upstream never reported usage, fallbackCount derives the token count from
// the accumulated text.
func (t *tracker) finishOwned(seq uint64, elapsedMs int64, fallbackCount func(text string) int) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.owns(seq) {
		return State{}, false
	}
	if t.tokens == 0 && fallbackCount != nil {
		t.tokens = fallbackCount(t.buffer.String())
	}
	t.phase = PhaseDone
	t.elapsedMs = elapsedMs
	return t.snapshotLocked(), true
}

func (t *tracker) fail(seq uint64, message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.owns(seq) {
		return false
	}
	t.phase = PhaseErrored
	t.errMsg = message
	return true
}

// markCancelled acknowledges cancellation locally and returns the latched
// request id. With no id latched there is nothing addressable to cancel.
func (t *tracker) markCancelled() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase != PhaseStreaming || t.requestID == "" {
		return "", false
	}
	t.phase = PhaseCancelled
	return t.requestID, true
}

func (t *tracker) snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *tracker) snapshotLocked() State {
	return State{
		Phase:        t.phase,
		GenerationID: t.genID,
		RequestID:    t.requestID,
		Text:         t.buffer.String(),
		Tokens:       t.tokens,
		ElapsedMs:    t.elapsedMs,
		ErrorMessage: t.errMsg,
	}
}
