package summaries

import "context"

// Repository encapsulates storage operations for summary records.
type Repository interface {
	List(ctx context.Context, skip, limit int) ([]Record, error)
	Get(ctx context.Context, id int64) (Record, bool, error)
	Insert(ctx context.Context, record Record) (Record, error)
	UpdateOutput(ctx context.Context, id int64, output string) (Record, bool, error)
	UpdateParameters(ctx context.Context, id int64, params Parameters) (Record, bool, error)
}

// SettingsRepository persists small key/value settings, such as the chosen
// completion endpoint.
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	PutSetting(ctx context.Context, key, value string) error
}
