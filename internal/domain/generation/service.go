package generation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkoukk/tiktoken-go"

	"github.com/matevzk/povzetek/internal/infra/llm/upstream"
	apperrors "github.com/matevzk/povzetek/pkg/errors"
	"github.com/matevzk/povzetek/pkg/metrics"
	"github.com/matevzk/povzetek/pkg/util"
)

const refineSystemPrompt = "Si pomočnik za urejanje in izboljševanje povzetkov. " +
	"Imaš dostop do izvirnega besedila in trenutnega povzetka. Zagotovi, da so tvoje spremembe točne glede na izvirno besedilo."

// Service exposes streaming summary generation.
type Service interface {
	// Generate streams one completion. Starting a new generation
	// supersedes any still-draining previous one.
	Generate(ctx context.Context, req Request) (<-chan Update, error)
	// Cancel asks the upstream to stop the in-flight generation. A no-op
	// when no request identifier has been latched yet.
	Cancel(ctx context.Context, req CancelRequest) error
	// Refine reworks the current summary per a user instruction.
	Refine(ctx context.Context, req RefineRequest) (RefineResponse, error)
	// State snapshots the active generation.
	State() State
}

// ChatClient is the outbound contract of the completion upstream.
type ChatClient interface {
	CreateChatCompletionStream(ctx context.Context, endpoint string, req upstream.CompletionRequest) (upstream.Stream, error)
	CreateChatCompletion(ctx context.Context, endpoint string, req upstream.CompletionRequest) (upstream.CompletionResponse, error)
	CancelGeneration(ctx context.Context, endpoint, requestID string) error
}

type service struct {
	cfg    Config
	client ChatClient
	logger *slog.Logger
	track  *tracker
	now    func() time.Time

	encOnce sync.Once
	encoder *tiktoken.Tiktoken
}

// NewService wires up the generation domain.
func NewService(cfg Config, client ChatClient, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		client: client,
		logger: logger.With("component", "generation.service"),
		track:  newTracker(),
		now:    util.NowUTC,
	}
}

func (s *service) Generate(ctx context.Context, req Request) (<-chan Update, error) {
	if strings.TrimSpace(req.InputText) == "" {
		return nil, apperrors.Wrap("invalid_input", "input text cannot be empty", nil)
	}

	instruction := Instruction(req.IsBullet, Category(req.SummaryCategory), s.cfg.NumBulletPoints)
	payload := s.buildCompletionRequest(req, instruction)

	stream, err := s.client.CreateChatCompletionStream(ctx, req.APIEndpoint, payload)
	if err != nil {
		// Transport failure before any delta arrived: nothing partial
		// to keep.
		return nil, apperrors.Wrap("llm_error", "completion stream request failed", err)
	}

	genID := uuid.NewString()
	seq := s.track.begin(genID)
	started := s.now()
	s.logger.Info("generation started", "generation_id", genID, "model", payload.Model, "is_bullet", req.IsBullet, "category", req.SummaryCategory)

	out := make(chan Update)
	go func() {
		defer close(out)
		defer stream.Close()
		s.consume(stream, seq, started, out)
	}()
	return out, nil
}

// consume drains the event stream, applying deltas in arrival order. Events
// belonging to a superseded or locally cancelled generation are still read
// (cancellation is cooperative) but no longer mutate state or reach the
// caller.
func (s *service) consume(stream upstream.Stream, seq uint64, started time.Time, out chan<- Update) {
	for {
		event, recvErr := stream.Recv()
		if recvErr != nil {
			if errors.Is(recvErr, io.EOF) {
				elapsed := s.now().Sub(started).Milliseconds()
				final, ok := s.track.finishOwned(seq, elapsed, s.countTokens)
				if !ok {
					return
				}
				stats := &metrics.GenerationStats{
					CompletionTokens: final.Tokens,
					ElapsedMs:        final.ElapsedMs,
					TokensPerSecond:  metrics.Throughput(final.Tokens, final.ElapsedMs),
				}
				s.logger.Info("generation finished", "generation_id", final.GenerationID, "tokens", stats.CompletionTokens, "elapsed_ms", stats.ElapsedMs)
				out <- Update{Text: final.Text, Done: true, Stats: stats}
				return
			}

			message := recvErr.Error()
			var upErr *upstream.UpstreamError
			if errors.As(recvErr, &upErr) {
				message = upErr.Message
			}
			if s.track.fail(seq, message) {
				s.logger.Error("generation stream failed", "error", recvErr)
				out <- Update{Error: message}
			}
			return
		}

		if event.ID != "" && s.track.latchRequestID(seq, event.ID) {
			out <- Update{RequestID: event.ID}
		}
		if event.Usage != nil {
			s.track.setTokens(seq, event.Usage.CompletionTokens)
		}
		if event.Delta != "" {
			if text, ok := s.track.appendDelta(seq, event.Delta); ok {
				out <- Update{Delta: event.Delta, Text: text}
			}
		}
	}
}

func (s *service) Cancel(ctx context.Context, req CancelRequest) error {
	latched, acknowledged := s.track.markCancelled()
	requestID := req.RequestID
	if requestID == "" {
		requestID = latched
	}
	if requestID == "" {
		// Nothing addressable to cancel yet.
		return nil
	}
	if acknowledged {
		s.logger.Info("generation cancelled locally", "request_id", requestID)
	}
	if err := s.client.CancelGeneration(ctx, req.APIEndpoint, requestID); err != nil {
		return apperrors.Wrap("llm_error", "cancel request failed", err)
	}
	return nil
}

func (s *service) Refine(ctx context.Context, req RefineRequest) (RefineResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return RefineResponse{}, apperrors.Wrap("invalid_input", "instruction message cannot be empty", nil)
	}

	userPrompt := "Izvirno besedilo: " + req.OriginalText + "\n\n" +
		"Trenutni povzetek: " + req.CurrentSummary + "\n\n" +
		"Navodilo uporabnika: " + req.Message + "\n\n" +
		"Prosim, spremeni povzetek v skladu z zgornjim navodilom in ostani zvest izvirnemu besedilu. Vrni samo spremenjeni povzetek brez dodatnih pojasnil."

	resp, err := s.client.CreateChatCompletion(ctx, req.APIEndpoint, upstream.CompletionRequest{
		Model: s.cfg.Model,
		Messages: []upstream.Message{
			{Role: "system", Content: refineSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return RefineResponse{}, apperrors.Wrap("llm_error", "refine request failed", err)
	}
	if len(resp.Choices) == 0 {
		return RefineResponse{}, apperrors.Wrap("llm_error", "upstream returned no choices", nil)
	}
	return RefineResponse{UpdatedSummary: strings.TrimSpace(resp.Choices[0].Message.Content)}, nil
}

func (s *service) State() State {
	return s.track.snapshot()
}

func (s *service) buildCompletionRequest(req Request, instruction string) upstream.CompletionRequest {
	payload := upstream.CompletionRequest{
		Model: s.cfg.Model,
		Messages: []upstream.Message{
			{Role: "user", Content: instruction + "\n\n" + req.InputText},
		},
		Temperature:      s.cfg.Temperature,
		MaxTokens:        s.cfg.MaxTokens,
		TopK:             s.cfg.TopK,
		TopP:             s.cfg.TopP,
		FrequencyPenalty: s.cfg.FrequencyPenalty,
	}
	if req.Model != "" {
		payload.Model = req.Model
	}
	if req.Temperature != nil {
		payload.Temperature = *req.Temperature
	}
	if req.MaxTokens > 0 {
		payload.MaxTokens = req.MaxTokens
	}
	if req.TopK > 0 {
		payload.TopK = req.TopK
	}
	if req.TopP != nil {
		payload.TopP = *req.TopP
	}
	if req.FrequencyPenalty != nil {
		payload.FrequencyPenalty = *req.FrequencyPenalty
	}
	return payload
}

// countTokens approximates completion tokens locally when the upstream does
// not report usage.
func (s *service) countTokens(text string) int {
	if text == "" {
		return 0
	}
	s.encOnce.Do(func() {
		enc, err := tiktoken.EncodingForModel(s.cfg.TokenizerModel)
		if err != nil {
			s.logger.Warn("tokenizer unavailable, token fallback disabled", "model", s.cfg.TokenizerModel, "error", err)
			return
		}
		s.encoder = enc
	})
	if s.encoder == nil {
		return 0
	}
	return len(s.encoder.Encode(text, nil, nil))
}
