package grounding

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/matevzk/povzetek/pkg/errors"
)

// Service exposes word-grounding analysis over summaries.
type Service interface {
	// Analyze returns the per-word verdict and highlight spans for a
	// (source, summary) pair, memoized until the active record changes.
	Analyze(ctx context.Context, req Request) (Result, error)
	// AnalyzeLocal grounds with the offline stem matcher only.
	AnalyzeLocal(req Request) Result
	// ActivateRecord marks a record switch and drops every cached verdict.
	ActivateRecord(recordID int64)
}

// AnalyzerClient is the outbound contract of the lemmatizer service.
type AnalyzerClient interface {
	AnalyzeText(ctx context.Context, originalText, summaryText string) ([]WordAnalysis, error)
}

type service struct {
	client AnalyzerClient
	cache  Cache
	logger *slog.Logger
}

// NewService wires up the grounding domain.
func NewService(client AnalyzerClient, cache Cache, logger *slog.Logger) Service {
	return &service{
		client: client,
		cache:  cache,
		logger: logger.With("component", "grounding.service"),
	}
}

func (s *service) Analyze(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.SummaryText) == "" {
		return Result{}, apperrors.Wrap("invalid_input", "summary text cannot be empty", nil)
	}

	if analysis, ok := s.cache.Get(req.OriginalText, req.SummaryText); ok {
		return Result{
			Analysis: analysis,
			Spans:    BuildSpans(req.SummaryText, analysis),
		}, nil
	}

	analysis, err := s.client.AnalyzeText(ctx, req.OriginalText, req.SummaryText)
	if err != nil {
		// The grounding view degrades to plain text instead of failing
		// the page.
		s.logger.Error("lemmatizer analysis failed", "error", err)
		return Result{
			Spans:    []HighlightSpan{{Text: req.SummaryText}},
			Degraded: true,
		}, nil
	}

	s.cache.Put(req.OriginalText, req.SummaryText, analysis)
	return Result{
		Analysis: analysis,
		Spans:    BuildSpans(req.SummaryText, analysis),
	}, nil
}

func (s *service) AnalyzeLocal(req Request) Result {
	analysis := LocalAnalysis(req.OriginalText, req.SummaryText)
	return Result{
		Analysis: analysis,
		Spans:    BuildSpans(req.SummaryText, analysis),
	}
}

func (s *service) ActivateRecord(recordID int64) {
	s.cache.Clear()
	s.logger.Debug("analysis cache cleared", "record_id", recordID)
}
