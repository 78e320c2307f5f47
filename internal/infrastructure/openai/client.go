package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kurochkinivan/onboarding_ai/internal/config"
)

const (
	DefaultBaseURL = "https://api.openai.com"
	DefaultModel   = "gpt-4o-mini"

	responsesPath = "/v1/responses"
	maxRetries    = 2
	retryBackoff  = time.Second
)

var ErrEmptyOutput = errors.New("no output_text found in response")

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Client calls the Responses API with structured JSON output.
type Client struct {
	log         *slog.Logger
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	backoff     time.Duration
}

func New(log *slog.Logger, cfg config.OpenAI) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		log:         log,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: cfg.Temperature,
		backoff:     retryBackoff,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model        string    `json:"model"`
	Instructions string    `json:"instructions,omitempty"`
	Input        []message `json:"input"`
	Text         struct {
		Format map[string]any `json:"format"`
	} `json:"text"`
	Temperature float64 `json:"temperature"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type    string `json:"type"`
			Text    string `json:"text,omitempty"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// GenerateJSON asks the model for output conforming to schema and returns the raw JSON text.
// Validation of the returned document is left to the caller.
func (c *Client) GenerateJSON(
	ctx context.Context,
	instructions, input, schemaName string,
	schema map[string]any,
) (string, error) {
	if schemaName == "" || schema == nil {
		return "", errors.New("schema name and schema are required")
	}

	req := responsesRequest{
		Model:        c.model,
		Instructions: instructions,
		Input:        []message{{Role: "user", Content: input}},
	}
	req.Text.Format = map[string]any{
		"type":   "json_schema",
		"name":   schemaName,
		"schema": schema,
		"strict": true,
	}
	// zero is a valid setting and is sent as is
	req.Temperature = c.temperature

	var resp responsesResponse
	if err := c.doWithRetry(ctx, &req, &resp); err != nil {
		return "", err
	}

	c.log.DebugContext(ctx, "model responded",
		slog.String("model", c.model),
		slog.Int("input_tokens", resp.Usage.InputTokens),
		slog.Int("output_tokens", resp.Usage.OutputTokens),
	)

	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.Content {
			switch content.Type {
			case "refusal":
				return "", fmt.Errorf("model refused: %s", content.Refusal)
			case "output_text":
				out.WriteString(content.Text)
			}
		}
	}

	if strings.TrimSpace(out.String()) == "" {
		return "", ErrEmptyOutput
	}

	return out.String(), nil
}

func (c *Client) doWithRetry(ctx context.Context, body, out any) error {
	backoff := c.backoff

	for attempt := 0; ; attempt++ {
		err := c.do(ctx, body, out)

		var httpErr *HTTPError
		if err == nil || !errors.As(err, &httpErr) || !httpErr.retryable() || attempt >= maxRetries {
			return err
		}

		c.log.WarnContext(ctx, "openai request failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Int("status", httpErr.StatusCode),
		)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
}

func (c *Client) do(ctx context.Context, body, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+responsesPath, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
