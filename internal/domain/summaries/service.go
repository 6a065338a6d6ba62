package summaries

import (
	"context"
	"log/slog"
	"strings"

	"github.com/matevzk/povzetek/internal/domain/grounding"
	apperrors "github.com/matevzk/povzetek/pkg/errors"
)

// settingAPIEndpoint is the fixed settings key the chosen completion endpoint
// persists under.
const settingAPIEndpoint = "api_endpoint"

const defaultListLimit = 100

// Service exposes summary record management.
type Service interface {
	List(ctx context.Context, skip, limit int) ([]Record, error)
	Get(ctx context.Context, id int64) (Record, error)
	Create(ctx context.Context, record Record) (Record, error)
	UpdateOutput(ctx context.Context, id int64, output string) (Record, error)
	Parameters(ctx context.Context, id int64) (Parameters, error)
	UpdateParameters(ctx context.Context, id int64, params Parameters) (Record, error)
	// Activate marks a record as the one being edited. Analysis results
	// cached for the previous record are dropped wholesale.
	Activate(ctx context.Context, id int64) error

	Endpoint(ctx context.Context) (string, error)
	SetEndpoint(ctx context.Context, endpoint string) error
}

type service struct {
	repo      Repository
	settings  SettingsRepository
	grounding grounding.Service
	logger    *slog.Logger
}

// NewService wires up the summaries domain.
func NewService(repo Repository, settings SettingsRepository, groundingSvc grounding.Service, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		settings:  settings,
		grounding: groundingSvc,
		logger:    logger.With("component", "summaries.service"),
	}
}

func (s *service) List(ctx context.Context, skip, limit int) ([]Record, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	records, err := s.repo.List(ctx, skip, limit)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "listing summaries failed", err)
	}
	return records, nil
}

func (s *service) Get(ctx context.Context, id int64) (Record, error) {
	record, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, apperrors.Wrap("storage_error", "loading summary failed", err)
	}
	if !found {
		return Record{}, apperrors.Wrap("not_found", "summary does not exist", nil)
	}
	return record, nil
}

func (s *service) Create(ctx context.Context, record Record) (Record, error) {
	if strings.TrimSpace(record.Input) == "" {
		return Record{}, apperrors.Wrap("invalid_input", "summary input cannot be empty", nil)
	}
	created, err := s.repo.Insert(ctx, record)
	if err != nil {
		return Record{}, apperrors.Wrap("storage_error", "storing summary failed", err)
	}
	return created, nil
}

func (s *service) UpdateOutput(ctx context.Context, id int64, output string) (Record, error) {
	record, found, err := s.repo.UpdateOutput(ctx, id, output)
	if err != nil {
		return Record{}, apperrors.Wrap("storage_error", "updating summary failed", err)
	}
	if !found {
		return Record{}, apperrors.Wrap("not_found", "summary does not exist", nil)
	}
	return record, nil
}

func (s *service) Parameters(ctx context.Context, id int64) (Parameters, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return Parameters{}, err
	}
	return Parameters{
		NumWords:        record.NumWords,
		IsBullet:        record.IsBullet,
		SummaryCategory: record.SummaryCategory,
		NumBulletPoints: record.NumBulletPoints,
	}, nil
}

func (s *service) UpdateParameters(ctx context.Context, id int64, params Parameters) (Record, error) {
	record, found, err := s.repo.UpdateParameters(ctx, id, params)
	if err != nil {
		return Record{}, apperrors.Wrap("storage_error", "updating summary parameters failed", err)
	}
	if !found {
		return Record{}, apperrors.Wrap("not_found", "summary does not exist", nil)
	}
	return record, nil
}

func (s *service) Activate(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	s.grounding.ActivateRecord(id)
	s.logger.Info("summary activated", "summary_id", id)
	return nil
}

func (s *service) Endpoint(ctx context.Context) (string, error) {
	endpoint, _, err := s.settings.GetSetting(ctx, settingAPIEndpoint)
	if err != nil {
		return "", apperrors.Wrap("storage_error", "loading endpoint setting failed", err)
	}
	return endpoint, nil
}

func (s *service) SetEndpoint(ctx context.Context, endpoint string) error {
	if err := s.settings.PutSetting(ctx, settingAPIEndpoint, strings.TrimSpace(endpoint)); err != nil {
		return apperrors.Wrap("storage_error", "persisting endpoint setting failed", err)
	}
	return nil
}
