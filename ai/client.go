package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/habitmaster/habitmaster/config"
)

var (
	// ErrNoAPIKey means no gateway key is configured; callers fall back to
	// deterministic defaults instead of failing the request.
	ErrNoAPIKey = errors.New("ai: api key not configured")
	// ErrRateLimited maps an upstream 429.
	ErrRateLimited = errors.New("ai: rate limited")
	// ErrQuotaExceeded maps an upstream 402.
	ErrQuotaExceeded = errors.New("ai: quota exceeded")
)

// Message is one chat turn in the completions payload.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Client talks to an OpenRouter-compatible chat completions gateway.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	httpc   *http.Client
}

// NewClient builds a client from loaded configuration.
func NewClient(cfg config.AppConfig) *Client {
	return &Client{
		baseURL: cfg.AIBaseURL,
		apiKey:  cfg.AIAPIKey,
		model:   cfg.AIModel,
		httpc:   &http.Client{},
	}
}

// Model returns the default completion model.
func (c *Client) Model() string { return c.model }

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

func (c *Client) newRequest(ctx context.Context, payload chatRequest) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusPaymentRequired:
		return ErrQuotaExceeded
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("ai: gateway status %d: %s", resp.StatusCode, string(snippet))
}

// Complete sends a non-streaming chat request and returns the first choice's
// content. The timeout bounds the whole round trip.
func (c *Client) Complete(ctx context.Context, model string, msgs []Message, timeout time.Duration) (string, error) {
	if !c.Configured() {
		return "", ErrNoAPIKey
	}
	if model == "" {
		model = c.model
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := c.newRequest(ctx, chatRequest{Model: model, Messages: msgs})
	if err != nil {
		return "", err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ai: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("ai: empty choices")
	}
	return out.Choices[0].Message.Content, nil
}

// Stream opens a streaming chat request and returns the raw SSE body for the
// caller to relay. The caller must close the returned reader.
func (c *Client) Stream(ctx context.Context, model string, msgs []Message) (io.ReadCloser, error) {
	if !c.Configured() {
		return nil, ErrNoAPIKey
	}
	if model == "" {
		model = c.model
	}
	req, err := c.newRequest(ctx, chatRequest{Model: model, Messages: msgs, Stream: true})
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp.Body, nil
}
