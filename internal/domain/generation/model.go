package generation

import "github.com/matevzk/povzetek/pkg/metrics"

// Config carries the generation defaults applied when a request leaves a
// sampling parameter unset.
type Config struct {
	Model            string
	Temperature      float32
	MaxTokens        int
	TopK             int
	TopP             float32
	FrequencyPenalty float32
	NumBulletPoints  int
	TokenizerModel   string
}

// Request is the incoming generation payload.
type Request struct {
	InputText        string   `json:"input_text"`
	APIEndpoint      string   `json:"api_endpoint,omitempty"`
	IsBullet         bool     `json:"is_bullet"`
	SummaryCategory  string   `json:"summary_category"`
	Model            string   `json:"model,omitempty"`
	Temperature      *float32 `json:"temperature,omitempty"`
	MaxTokens        int      `json:"max_tokens,omitempty"`
	TopK             int      `json:"top_k,omitempty"`
	TopP             *float32 `json:"top_p,omitempty"`
	FrequencyPenalty *float32 `json:"frequency_penalty,omitempty"`
}

// CancelRequest addresses an in-flight generation by its upstream id.
type CancelRequest struct {
	APIEndpoint string `json:"api_endpoint,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// RefineRequest asks the assistant to rework the current summary.
type RefineRequest struct {
	Message        string `json:"message"`
	CurrentSummary string `json:"current_summary"`
	OriginalText   string `json:"original_text"`
	APIEndpoint    string `json:"api_endpoint,omitempty"`
}

// RefineResponse returns the reworked summary.
type RefineResponse struct {
	UpdatedSummary string `json:"updated_summary"`
}

// Update is one frame of the generation stream surfaced to the transport.
type Update struct {
	RequestID string                   `json:"request_id,omitempty"`
	Delta     string                   `json:"delta,omitempty"`
	Text      string                   `json:"text,omitempty"`
	Done      bool                     `json:"done,omitempty"`
	Stats     *metrics.GenerationStats `json:"stats,omitempty"`
	Error     string                   `json:"error,omitempty"`
}
