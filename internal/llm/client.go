// Package llm is a minimal client for OpenAI-compatible chat completion APIs
// such as OpenRouter.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/rest/httpc"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	ErrNotConfigured = errors.New("llm api key is not configured")
	ErrEmptyReply    = errors.New("llm returned no choices")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer turns a conversation into the next assistant reply.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// HTTPError is a non-2xx reply from the provider.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("llm request failed with status %d", e.Status)
}

type Client struct {
	BaseURL string
	APIKey  string
	Model   string

	svc httpc.Service
}

// New returns a client posting to {baseURL}/chat/completions. Calls are not
// retried; timeout bounds each call.
func New(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		svc:     httpc.NewServiceWithClient("llm", &http.Client{Timeout: timeout}),
	}
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	if c.APIKey == "" {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(completionRequest{Model: c.Model, Messages: messages})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.svc.DoRequest(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode >= 300 {
		return "", &HTTPError{Status: res.StatusCode, Body: string(body)}
	}

	var out completionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode llm reply: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyReply
	}
	return out.Choices[0].Message.Content, nil
}
