package models

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/matevzk/povzetek/internal/infra/llm/upstream"
	apperrors "github.com/matevzk/povzetek/pkg/errors"
)

// Progress is one model-switch progress update relayed to the caller.
type Progress struct {
	Status        string  `json:"status"`
	TotalProgress float64 `json:"total_progress"`
	Error         string  `json:"error,omitempty"`
}

// Service proxies model management against the configured upstream.
type Service interface {
	List(ctx context.Context, endpoint string) ([]upstream.ModelInfo, error)
	Current(ctx context.Context, endpoint string) (upstream.CurrentModelInfo, error)
	// Switch streams loading progress. Only one switch may run at a time;
	// a second caller gets a switch_in_progress error.
	Switch(ctx context.Context, endpoint, modelName string) (<-chan Progress, error)
}

// ModelClient is the outbound contract of the model-management upstream.
type ModelClient interface {
	ListModels(ctx context.Context, endpoint string) ([]upstream.ModelInfo, error)
	CurrentModel(ctx context.Context, endpoint string) (upstream.CurrentModelInfo, error)
	SwitchModel(ctx context.Context, endpoint, modelName string) (upstream.ProgressStream, error)
}

type service struct {
	client ModelClient
	logger *slog.Logger

	mu        sync.Mutex
	switching bool
	current   string
}

// NewService wires up the models domain.
func NewService(client ModelClient, logger *slog.Logger) Service {
	return &service{
		client: client,
		logger: logger.With("component", "models.service"),
	}
}

func (s *service) List(ctx context.Context, endpoint string) ([]upstream.ModelInfo, error) {
	infos, err := s.client.ListModels(ctx, endpoint)
	if err != nil {
		return nil, apperrors.Wrap("llm_error", "listing models failed", err)
	}
	return infos, nil
}

func (s *service) Current(ctx context.Context, endpoint string) (upstream.CurrentModelInfo, error) {
	info, err := s.client.CurrentModel(ctx, endpoint)
	if err != nil {
		return upstream.CurrentModelInfo{}, apperrors.Wrap("llm_error", "querying current model failed", err)
	}

	s.mu.Lock()
	if info.Model != "" {
		s.current = info.Model
	}
	s.mu.Unlock()
	return info, nil
}

func (s *service) Switch(ctx context.Context, endpoint, modelName string) (<-chan Progress, error) {
	if strings.TrimSpace(modelName) == "" {
		return nil, apperrors.Wrap("invalid_input", "model name cannot be empty", nil)
	}

	s.mu.Lock()
	if s.switching {
		s.mu.Unlock()
		return nil, apperrors.Wrap("switch_in_progress", "a model switch is already running", nil)
	}
	s.switching = true
	s.mu.Unlock()

	stream, err := s.client.SwitchModel(ctx, endpoint, modelName)
	if err != nil {
		s.clearSwitching()
		return nil, apperrors.Wrap("llm_error", "model switch request failed", err)
	}

	s.logger.Info("model switch started", "model", modelName)

	out := make(chan Progress)
	go func() {
		defer close(out)
		defer stream.Close()
		defer s.clearSwitching()
		s.relay(stream, modelName, out)
	}()
	return out, nil
}

func (s *service) relay(stream upstream.ProgressStream, modelName string, out chan<- Progress) {
	for {
		event, err := stream.Recv()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Error("model switch stream failed", "model", modelName, "error", err)
				out <- Progress{Status: "error", Error: err.Error()}
			}
			return
		}

		if event.Status == "success" || event.Status == "unchanged" {
			s.mu.Lock()
			s.current = modelName
			s.mu.Unlock()
			s.logger.Info("model switch finished", "model", modelName, "status", event.Status)
		}
		out <- Progress{Status: event.Status, TotalProgress: event.TotalProgress, Error: event.Error}
	}
}

func (s *service) clearSwitching() {
	s.mu.Lock()
	s.switching = false
	s.mu.Unlock()
}
