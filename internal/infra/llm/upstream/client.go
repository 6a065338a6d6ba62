package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Message mirrors the OpenAI chat message structure.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the payload sent to the chat-completion endpoint.
type CompletionRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      float32   `json:"temperature,omitempty"`
	MaxTokens        int       `json:"max_tokens,omitempty"`
	TopK             int       `json:"top_k,omitempty"`
	TopP             float32   `json:"top_p,omitempty"`
	FrequencyPenalty float32   `json:"frequency_penalty,omitempty"`
	Stream           bool      `json:"stream,omitempty"`
}

// CompletionChoice is one alternative in a non streaming completion.
type CompletionChoice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// CompletionResponse captures the response for non streaming calls.
type CompletionResponse struct {
	ID      string             `json:"id"`
	Choices []CompletionChoice `json:"choices"`
	Usage   *Usage             `json:"usage"`
}

// ModelInfo describes one model exposed by the upstream.
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// CurrentModelInfo is the upstream's report of its loaded model.
type CurrentModelInfo struct {
	Model         string `json:"model"`
	CheckpointDir string `json:"checkpoint_dir,omitempty"`
}

// Client performs HTTP requests against a configurable OpenAI-compatible
// endpoint. Every call takes the endpoint explicitly because the user can
// point the app at a different inference server per request.
type Client struct {
	apiKey          string
	defaultEndpoint string
	httpClient      *http.Client
	logger          *slog.Logger
}

// NewClient constructs an upstream client. The API key may be empty for
// local inference servers that do not authenticate.
func NewClient(apiKey, defaultEndpoint string, logger *slog.Logger) *Client {
	return &Client{
		apiKey:          apiKey,
		defaultEndpoint: strings.TrimRight(defaultEndpoint, "/"),
		httpClient: &http.Client{
			// No overall timeout: generations stream for minutes and
			// end on the transport's own lifecycle.
			Timeout: 0,
		},
		logger: logger.With("component", "upstream.client"),
	}
}

// CreateChatCompletion performs a non streaming completion call.
func (c *Client) CreateChatCompletion(ctx context.Context, endpoint string, req CompletionRequest) (CompletionResponse, error) {
	var out CompletionResponse

	base, err := c.resolveEndpoint(endpoint)
	if err != nil {
		return out, err
	}
	httpReq, err := c.newJSONRequest(ctx, http.MethodPost, base+"/v1/chat/completions", req)
	if err != nil {
		return out, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return out, fmt.Errorf("request chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return out, fmt.Errorf("chat completion failed: status=%d body=%s", resp.StatusCode, string(payload))
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode chat completion: %w", err)
	}
	return out, nil
}

// CreateChatCompletionStream opens a streaming completion call and returns
// the decoded event stream.
func (c *Client) CreateChatCompletionStream(ctx context.Context, endpoint string, req CompletionRequest) (Stream, error) {
	req.Stream = true

	base, err := c.resolveEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	httpReq, err := c.newJSONRequest(ctx, http.MethodPost, base+"/v1/chat/completions", req)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request chat completion stream: %w", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("chat completion stream failed: status=%d body=%s", resp.StatusCode, string(payload))
	}

	return NewEventStream(resp.Body, resp.Body, c.logger), nil
}

// CancelGeneration asks the upstream to stop producing tokens for the given
// request. The local read loop is not torn down here; it drains until the
// upstream closes the stream.
func (c *Client) CancelGeneration(ctx context.Context, endpoint, requestID string) error {
	base, err := c.resolveEndpoint(endpoint)
	if err != nil {
		return err
	}
	httpReq, err := c.newJSONRequest(ctx, http.MethodPost, base+"/v1/cancel", map[string]string{"request_id": requestID})
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request generation cancel: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("generation cancel failed: status=%d body=%s", resp.StatusCode, string(payload))
	}
	return nil
}

// ListModels fetches the models the upstream can serve.
func (c *Client) ListModels(ctx context.Context, endpoint string) ([]ModelInfo, error) {
	base, err := c.resolveEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("build models request: %w", err)
	}
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("models request failed: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var out struct {
		Data []ModelInfo `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode models response: %w", err)
	}
	return out.Data, nil
}

// CurrentModel fetches the model currently loaded by the upstream.
func (c *Client) CurrentModel(ctx context.Context, endpoint string) (CurrentModelInfo, error) {
	var out CurrentModelInfo

	base, err := c.resolveEndpoint(endpoint)
	if err != nil {
		return out, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/current_model", nil)
	if err != nil {
		return out, fmt.Errorf("build current model request: %w", err)
	}
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return out, fmt.Errorf("request current model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return out, fmt.Errorf("current model request failed: status=%d body=%s", resp.StatusCode, string(payload))
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode current model response: %w", err)
	}
	return out, nil
}

// SwitchModel starts a model switch on the upstream and returns the
// progress stream.
func (c *Client) SwitchModel(ctx context.Context, endpoint, modelName string) (ProgressStream, error) {
	base, err := c.resolveEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/switch_model/"+url.PathEscape(modelName), nil)
	if err != nil {
		return nil, fmt.Errorf("build switch model request: %w", err)
	}
	c.authorize(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request model switch: %w", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("model switch failed: status=%d body=%s", resp.StatusCode, string(payload))
	}

	return newSwitchStream(resp.Body, resp.Body, c.logger), nil
}

func (c *Client) resolveEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = c.defaultEndpoint
	}
	endpoint = strings.TrimRight(endpoint, "/")

	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid api endpoint %q", endpoint)
	}
	return endpoint, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request payload: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)
	return httpReq, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
