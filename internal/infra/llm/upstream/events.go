package upstream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Usage carries token accounting from the terminal progress event.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Event is one decoded frame of the completion stream.
type Event struct {
	// ID is the upstream request/session identifier when the frame
	// carries one.
	ID string
	// Delta is the incremental content fragment, possibly empty.
	Delta string
	// FinishReason is set on the terminal progress event ("stop").
	FinishReason string
	// Usage accompanies the terminal progress event when the upstream
	// reports token counts.
	Usage *Usage
}

// UpstreamError is the fatal in-band error event of the protocol.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	return "upstream error event: " + e.Message
}

type wireEvent struct {
	ID      string `json:"id"`
	Error   string `json:"error"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

// Stream is the consumer-facing view of a decoded completion stream.
type Stream interface {
	Recv() (Event, error)
	Close() error
}

// ProgressStream is the consumer-facing view of a model-switch stream.
type ProgressStream interface {
	Recv() (SwitchEvent, error)
	Close() error
}

// EventStream decodes the newline-delimited `data: ` event protocol from a
// byte stream. Reads may split lines anywhere; the scanner keeps the last
// incomplete line buffered until the next read, so the decoded sequence does
// not depend on chunk boundaries.
type EventStream struct {
	scanner *bufio.Scanner
	closer  io.Closer
	logger  *slog.Logger
	err     error
}

// NewEventStream wraps a raw byte stream. closer may be nil for synthetic
// inputs.
func NewEventStream(r io.Reader, closer io.Closer, logger *slog.Logger) *EventStream {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), 1<<20)
	return &EventStream{
		scanner: scanner,
		closer:  closer,
		logger:  logger.With("component", "upstream.stream"),
	}
}

// Recv returns the next decoded event. io.EOF signals natural end of stream.
// An in-band error event is fatal: Recv keeps returning it and no further
// lines are processed. A line that fails to parse is logged and skipped; one
// bad event must not poison the rest of the generation.
func (s *EventStream) Recv() (Event, error) {
	if s.err != nil {
		return Event{}, s.err
	}
	for {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				s.fail(err)
				return Event{}, err
			}
			s.fail(io.EOF)
			return Event{}, io.EOF
		}
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			s.fail(io.EOF)
			return Event{}, io.EOF
		}

		var raw wireEvent
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			s.logger.Warn("skipping malformed stream event", "error", err)
			continue
		}
		if raw.Error != "" {
			err := &UpstreamError{Message: raw.Error}
			s.fail(err)
			return Event{}, err
		}

		event := Event{ID: raw.ID, Usage: raw.Usage}
		for _, choice := range raw.Choices {
			event.Delta += choice.Delta.Content
			if choice.FinishReason != "" {
				event.FinishReason = choice.FinishReason
			}
		}
		return event, nil
	}
}

// Close releases the underlying transport.
func (s *EventStream) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (s *EventStream) fail(err error) {
	s.err = err
	if closeErr := s.Close(); closeErr != nil {
		s.logger.Debug("stream close failed", "error", closeErr)
	}
	s.closer = nil
}

// SwitchEvent is one frame of the model-switch progress protocol.
type SwitchEvent struct {
	Status        string  `json:"status"`
	TotalProgress float64 `json:"total_progress"`
	Error         string  `json:"error,omitempty"`
}

// SwitchStream decodes model-switch progress events over the same
// `data: `-line framing as completions.
type SwitchStream struct {
	scanner *bufio.Scanner
	closer  io.Closer
	logger  *slog.Logger
	err     error
}

func newSwitchStream(r io.Reader, closer io.Closer, logger *slog.Logger) *SwitchStream {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), 1<<20)
	return &SwitchStream{scanner: scanner, closer: closer, logger: logger}
}

// Recv returns the next progress event or io.EOF.
func (s *SwitchStream) Recv() (SwitchEvent, error) {
	if s.err != nil {
		return SwitchEvent{}, s.err
	}
	for {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				s.err = err
				s.Close()
				return SwitchEvent{}, err
			}
			s.err = io.EOF
			s.Close()
			return SwitchEvent{}, io.EOF
		}
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		var event SwitchEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			s.logger.Warn("skipping malformed switch event", "error", err)
			continue
		}
		if event.Error != "" {
			s.err = fmt.Errorf("model switch failed: %s", event.Error)
			s.Close()
			return SwitchEvent{}, s.err
		}
		return event, nil
	}
}

// Close releases the underlying transport.
func (s *SwitchStream) Close() error {
	if s.closer != nil {
		err := s.closer.Close()
		s.closer = nil
		return err
	}
	return nil
}
