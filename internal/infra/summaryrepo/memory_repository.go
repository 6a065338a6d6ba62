package summaryrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/matevzk/povzetek/internal/domain/summaries"
)

// MemoryRepository is an in-memory Repository/SettingsRepository used for
// tests and DSN-less dev runs.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64

	records  map[int64]summaries.Record
	settings map[string]string
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:   1,
		records:  make(map[int64]summaries.Record),
		settings: make(map[string]string),
	}
}

// List implements summaries.Repository.
func (r *MemoryRepository) List(_ context.Context, skip, limit int) ([]summaries.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if skip >= len(ids) {
		return nil, nil
	}
	ids = ids[skip:]
	if limit < len(ids) {
		ids = ids[:limit]
	}

	records := make([]summaries.Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, r.records[id])
	}
	return records, nil
}

// Get implements summaries.Repository.
func (r *MemoryRepository) Get(_ context.Context, id int64) (summaries.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	return record, ok, nil
}

// Insert implements summaries.Repository.
func (r *MemoryRepository) Insert(_ context.Context, record summaries.Record) (summaries.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.ID = r.nextID
	r.nextID++
	r.records[record.ID] = record
	return record, nil
}

// UpdateOutput implements summaries.Repository.
func (r *MemoryRepository) UpdateOutput(_ context.Context, id int64, output string) (summaries.Record, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return summaries.Record{}, false, nil
	}
	record.Output = output
	r.records[id] = record
	return record, true, nil
}

// UpdateParameters implements summaries.Repository.
func (r *MemoryRepository) UpdateParameters(_ context.Context, id int64, params summaries.Parameters) (summaries.Record, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return summaries.Record{}, false, nil
	}
	record.NumWords = params.NumWords
	record.IsBullet = params.IsBullet
	record.SummaryCategory = params.SummaryCategory
	record.NumBulletPoints = params.NumBulletPoints
	r.records[id] = record
	return record, true, nil
}

// GetSetting implements summaries.SettingsRepository.
func (r *MemoryRepository) GetSetting(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.settings[key]
	return value, ok, nil
}

// PutSetting implements summaries.SettingsRepository.
func (r *MemoryRepository) PutSetting(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[key] = value
	return nil
}

var _ summaries.Repository = (*MemoryRepository)(nil)
var _ summaries.SettingsRepository = (*MemoryRepository)(nil)
