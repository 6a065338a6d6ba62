package summaryrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matevzk/povzetek/internal/domain/summaries"
)

// PostgresRepository implements summaries.Repository and
// summaries.SettingsRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const summaryColumns = `id, input, output, num_words, is_bullet, summary_category,
	num_bullet_points, instruction, instruction_prefix, token_length`

// List returns records ordered by id, newest last.
func (r *PostgresRepository) List(ctx context.Context, skip, limit int) ([]summaries.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+summaryColumns+`
		FROM summaries
		ORDER BY id
		OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []summaries.Record
	for rows.Next() {
		record, err := scanSummaryRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Get fetches one record by id.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (summaries.Record, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+summaryColumns+`
		FROM summaries
		WHERE id = $1
	`, id)
	record, err := scanSummaryRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return summaries.Record{}, false, nil
	}
	if err != nil {
		return summaries.Record{}, false, err
	}
	return record, true, nil
}

// Insert stores a new record.
func (r *PostgresRepository) Insert(ctx context.Context, record summaries.Record) (summaries.Record, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO summaries (input, output, num_words, is_bullet, summary_category,
			num_bullet_points, instruction, instruction_prefix, token_length)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+summaryColumns+`
	`, record.Input, record.Output, record.NumWords, record.IsBullet, record.SummaryCategory,
		record.NumBulletPoints, record.Instruction, record.InstructionPrefix, record.TokenLength)
	return scanSummaryRecord(row)
}

// UpdateOutput replaces the edited summary text.
func (r *PostgresRepository) UpdateOutput(ctx context.Context, id int64, output string) (summaries.Record, bool, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE summaries
		SET output = $2
		WHERE id = $1
		RETURNING `+summaryColumns+`
	`, id, output)
	return scanUpdatedRecord(row)
}

// UpdateParameters replaces the generation parameters of a record.
func (r *PostgresRepository) UpdateParameters(ctx context.Context, id int64, params summaries.Parameters) (summaries.Record, bool, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE summaries
		SET num_words = $2, is_bullet = $3, summary_category = $4, num_bullet_points = $5
		WHERE id = $1
		RETURNING `+summaryColumns+`
	`, id, params.NumWords, params.IsBullet, params.SummaryCategory, params.NumBulletPoints)
	return scanUpdatedRecord(row)
}

// GetSetting fetches one settings value.
func (r *PostgresRepository) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.pool.QueryRow(ctx, `
		SELECT value FROM settings WHERE key = $1
	`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// PutSetting upserts one settings value.
func (r *PostgresRepository) PutSetting(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummaryRecord(row rowScanner) (summaries.Record, error) {
	var record summaries.Record
	err := row.Scan(
		&record.ID, &record.Input, &record.Output, &record.NumWords, &record.IsBullet,
		&record.SummaryCategory, &record.NumBulletPoints, &record.Instruction,
		&record.InstructionPrefix, &record.TokenLength,
	)
	return record, err
}

func scanUpdatedRecord(row rowScanner) (summaries.Record, bool, error) {
	record, err := scanSummaryRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return summaries.Record{}, false, nil
	}
	if err != nil {
		return summaries.Record{}, false, err
	}
	return record, true, nil
}

var _ summaries.Repository = (*PostgresRepository)(nil)
var _ summaries.SettingsRepository = (*PostgresRepository)(nil)
