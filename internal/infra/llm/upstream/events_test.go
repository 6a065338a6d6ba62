package upstream

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleStream = "data: {\"id\":\"req-42\",\"choices\":[{\"delta\":{\"content\":\"Pes \"}}]}\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\"teče\"}}]}\n" +
	": keep-alive comment\n" +
	"\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\".\"},\"finish_reason\":\"stop\"}],\"usage\":{\"completion_tokens\":3}}\n"

// chunkReader yields the input in fixed-size reads, deliberately splitting
// lines mid-way.
type chunkReader struct {
	data []byte
	size int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.size
	if n > len(r.data) {
		n = len(r.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func drain(t *testing.T, stream Stream) (string, string, int) {
	t.Helper()
	var (
		text      strings.Builder
		requestID string
		tokens    int
	)
	for {
		event, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		text.WriteString(event.Delta)
		if requestID == "" && event.ID != "" {
			requestID = event.ID
		}
		if event.Usage != nil {
			tokens = event.Usage.CompletionTokens
		}
	}
	return text.String(), requestID, tokens
}

func TestEventStreamChunkBoundaryIndependence(t *testing.T) {
	for _, size := range []int{1, 2, 3, 7, 16, 64, len(sampleStream)} {
		reader := &chunkReader{data: []byte(sampleStream), size: size}
		stream := NewEventStream(reader, nil, testLogger())

		text, requestID, tokens := drain(t, stream)
		require.Equal(t, "Pes teče.", text, "chunk size %d", size)
		require.Equal(t, "req-42", requestID, "chunk size %d", size)
		require.Equal(t, 3, tokens, "chunk size %d", size)
	}
}

func TestEventStreamSkipsMalformedLines(t *testing.T) {
	input := "data: {\"choices\":[{\"delta\":{\"content\":\"prva\"}}]}\n" +
		"data: {not valid json at all\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\" druga\"}}]}\n"
	stream := NewEventStream(strings.NewReader(input), nil, testLogger())

	text, _, _ := drain(t, stream)
	require.Equal(t, "prva druga", text)
}

func TestEventStreamIgnoresNonDataLines(t *testing.T) {
	input := "event: message\n" +
		"retry: 100\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"besedilo\"}}]}\n"
	stream := NewEventStream(strings.NewReader(input), nil, testLogger())

	text, _, _ := drain(t, stream)
	require.Equal(t, "besedilo", text)
}

func TestEventStreamErrorEventIsFatal(t *testing.T) {
	input := "data: {\"choices\":[{\"delta\":{\"content\":\"delno\"}}]}\n" +
		"data: {\"error\":\"model crashed\"}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"never seen\"}}]}\n"
	stream := NewEventStream(strings.NewReader(input), nil, testLogger())

	event, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, "delno", event.Delta)

	_, err = stream.Recv()
	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	require.Equal(t, "model crashed", upstreamErr.Message)

	// The error latches; the trailing delta is never surfaced.
	_, err = stream.Recv()
	require.ErrorAs(t, err, &upstreamErr)
}

func TestEventStreamDoneSentinelEndsStream(t *testing.T) {
	input := "data: {\"choices\":[{\"delta\":{\"content\":\"konec\"}}]}\n" +
		"data: [DONE]\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"ignored\"}}]}\n"
	stream := NewEventStream(strings.NewReader(input), nil, testLogger())

	event, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, "konec", event.Delta)

	_, err = stream.Recv()
	require.ErrorIs(t, err, io.EOF)
}

func TestEventStreamUsageEventDoesNotEndStream(t *testing.T) {
	input := "data: {\"choices\":[{\"delta\":{\"content\":\"a\"},\"finish_reason\":\"stop\"}],\"usage\":{\"completion_tokens\":7}}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n"
	stream := NewEventStream(strings.NewReader(input), nil, testLogger())

	event, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, "stop", event.FinishReason)
	require.NotNil(t, event.Usage)
	require.Equal(t, 7, event.Usage.CompletionTokens)

	// The stream ends on transport EOF, not on finish_reason.
	event, err = stream.Recv()
	require.NoError(t, err)
	require.Equal(t, "b", event.Delta)

	_, err = stream.Recv()
	require.ErrorIs(t, err, io.EOF)
}

func TestSwitchStreamDecodesProgress(t *testing.T) {
	input := "data: {\"status\":\"progress\",\"total_progress\":40}\n" +
		"data: {\"status\":\"success\",\"total_progress\":100}\n"
	stream := newSwitchStream(strings.NewReader(input), nil, testLogger())

	event, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, "progress", event.Status)
	require.Equal(t, 40.0, event.TotalProgress)

	event, err = stream.Recv()
	require.NoError(t, err)
	require.Equal(t, "success", event.Status)

	_, err = stream.Recv()
	require.ErrorIs(t, err, io.EOF)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
