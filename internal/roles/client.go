package roles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/neurorouter"
)

// defaultTimeout bounds a single LLM round trip. The orchestration loop
// itself carries no timeouts; they all live here at the client boundary.
const defaultTimeout = 60 * time.Second

// Client makes structured calls to an OpenAI-compatible chat endpoint.
// System prompts demand strict JSON; the response is decoded into the
// caller's output type.
type Client struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	HTTPClient  *http.Client
}

// NewClient builds a client for one role from resolved provider settings.
func NewClient(p Provider, apiKey string, rc RoleConfig) *Client {
	maxTokens := rc.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}
	return &Client{
		BaseURL:     p.BaseURL,
		APIKey:      apiKey,
		Model:       rc.Model,
		MaxTokens:   maxTokens,
		Temperature: rc.Temperature,
		HTTPClient:  &http.Client{Timeout: defaultTimeout},
	}
}

// CreateJSON sends a system+user prompt pair and decodes the model's JSON
// reply into out. Markdown fences are stripped before decoding.
func (c *Client) CreateJSON(ctx context.Context, system, user string, out any) error {
	messages := []map[string]string{
		{"role": "system", "content": system},
		{"role": "user", "content": user},
	}

	body, _ := json.Marshal(map[string]any{
		"model":       c.Model,
		"messages":    messages,
		"max_tokens":  c.MaxTokens,
		"temperature": c.Temperature,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("llm request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("llm HTTP 429: %w", neurorouter.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("llm HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil || len(result.Choices) == 0 {
		return fmt.Errorf("llm returned an empty response")
	}

	raw := stripFences(result.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("llm returned invalid JSON: %w", err)
	}
	return nil
}

// stripFences removes markdown code fences models add despite being told
// not to.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}
