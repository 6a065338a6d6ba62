package lemmatizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matevzk/povzetek/internal/domain/grounding"
)

// Client calls the word-analysis NLP service. The service tokenizes and
// lemmatizes both texts and reports, per summary word, whether its lemma
// occurs in the original. The NLP internals live entirely on the other side
// of this contract.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a lemmatizer client. Lemmatization of long documents
// is slow, so the timeout is generous by default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type analyzeRequest struct {
	OriginalText string `json:"original_text"`
	SummaryText  string `json:"summary_text"`
}

type analyzeResponse struct {
	Analysis []grounding.WordAnalysis `json:"analysis"`
}

// AnalyzeText implements grounding.AnalyzerClient.
func (c *Client) AnalyzeText(ctx context.Context, originalText, summaryText string) ([]grounding.WordAnalysis, error) {
	payload, err := json.Marshal(analyzeRequest{
		OriginalText: originalText,
		SummaryText:  summaryText,
	})
	if err != nil {
		return nil, fmt.Errorf("encode analysis request: %w", err)
	}

	endpoint := c.baseURL + "/analyze-text"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build analysis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request analysis: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("lemmatizer request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode analysis response: %w", err)
	}
	return out.Analysis, nil
}

var _ grounding.AnalyzerClient = (*Client)(nil)
