package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/planvet/planvet/internal/errors"
)

// ChatInvoker runs the secondary backend via a single OpenAI-compatible
// chat-completions call. Cancellation is cooperative: the request context
// carries the timeout and aborts the in-flight call cleanly.
type ChatInvoker struct {
	// BaseURL is the API base, e.g. "https://api.openai.com/v1".
	BaseURL string
	// APIKey is the bearer credential.
	APIKey string
	// Model is the model to request.
	Model string
	// MaxTokens caps the completion length. Zero leaves it to the provider.
	MaxTokens int
	// HTTPClient is the client used for requests. Nil means http.DefaultClient.
	HTTPClient *http.Client
}

// NewChatInvoker creates an HTTP invoker for the secondary backend.
func NewChatInvoker(baseURL, apiKey, model string, maxTokens int) *ChatInvoker {
	return &ChatInvoker{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		Model:     model,
		MaxTokens: maxTokens,
	}
}

// Kind returns KindSecondary.
func (c *ChatInvoker) Kind() Kind {
	return KindSecondary
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens *int          `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Invoke issues one chat completion with the analysis prompt pair and
// classifies the result. HTTP 429 and quota phrases in error bodies map
// to FailureQuotaExhausted; context expiry maps to FailureTimeout.
func (c *ChatInvoker) Invoke(ctx context.Context, req Request) (Outcome, error) {
	if c.Model == "" {
		return Outcome{}, fmt.Errorf("chat invoker: model is empty")
	}
	if strings.TrimSpace(req.PlanText) == "" {
		return Outcome{}, fmt.Errorf("chat invoker: %w", errors.ErrPlanEmpty)
	}
	if req.Timeout <= 0 {
		return Outcome{}, fmt.Errorf("chat invoker: timeout must be positive, got %v", req.Timeout)
	}

	runCtx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	system, user := BuildPromptPair(req)
	body := chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	if c.MaxTokens > 0 {
		body.MaxTokens = &c.MaxTokens
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Outcome{}, fmt.Errorf("chat invoker: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(runCtx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return Outcome{}, fmt.Errorf("chat invoker: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	outcome := Outcome{Backend: KindSecondary, ExitCode: ExitUnknown}

	resp, err := client.Do(httpReq)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			outcome.Failure = FailureTimeout
		} else {
			outcome.Failure = FailureProcessError
		}
		outcome.Stderr = err.Error()
		return outcome, nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome.Failure = FailureProcessError
		outcome.Stderr = fmt.Sprintf("read response: %v", err)
		return outcome, nil
	}
	outcome.ExitCode = resp.StatusCode

	if resp.StatusCode == http.StatusTooManyRequests {
		outcome.Failure = FailureQuotaExhausted
		outcome.Stderr = string(data)
		return outcome, nil
	}
	if resp.StatusCode != http.StatusOK {
		outcome.Stderr = fmt.Sprintf("API error (%d): %s", resp.StatusCode, string(data))
		if IsQuotaExhausted(outcome.Stderr) {
			outcome.Failure = FailureQuotaExhausted
		} else {
			outcome.Failure = FailureProcessError
		}
		return outcome, nil
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		outcome.Failure = FailureProcessError
		outcome.Stderr = fmt.Sprintf("unmarshal response: %v", err)
		return outcome, nil
	}
	if len(parsed.Choices) == 0 {
		outcome.Failure = FailureProcessError
		outcome.Stderr = "no choices in response"
		return outcome, nil
	}

	outcome.Stdout = parsed.Choices[0].Message.Content
	outcome.Succeeded = true
	outcome.Failure = FailureNone
	return outcome, nil
}

// Available probes the API with a cheap authenticated request. Used by
// startup diagnostics only; initialization treats credential presence as
// the configuration signal.
func (c *ChatInvoker) Available(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.BaseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("connect to API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("invalid API key")
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}
	return nil
}
