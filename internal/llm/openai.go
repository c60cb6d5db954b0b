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
)

// OpenAIClient implements Provider against the OpenAI Chat Completions API.
type OpenAIClient struct {
	cfg      OpenAIConfig
	http     *http.Client
	observer Observer
}

// NewOpenAIClient creates a Provider for the configured OpenAI models.
// Eligibility (key presence and shape) is checked by ResolveProviders.
func NewOpenAIClient(cfg OpenAIConfig, observer Observer) *OpenAIClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &OpenAIClient{cfg: cfg, http: newHTTPClient(), observer: observer}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

type openAIErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (c *OpenAIClient) Kind() ProviderKind { return ProviderOpenAI }

// Generate tries each model in order. Quota or rate limiting stops the
// whole adapter since every model shares the same account limits.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) Outcome {
	start := time.Now()
	var last Outcome

	for _, model := range c.cfg.Models {
		if ctx.Err() != nil {
			break
		}
		attemptStart := time.Now()
		text, err := c.attempt(ctx, model, prompt)
		latency := time.Since(attemptStart).Milliseconds()

		if err == nil {
			c.observer.OnCallComplete(CallEvent{Provider: ProviderOpenAI, Model: model, LatencyMs: latency, Status: StatusOK})
			return Outcome{Status: StatusOK, Text: text, Model: model, LatencyMs: time.Since(start).Milliseconds()}
		}

		status := StatusFailed
		switch {
		case isQuotaError(err):
			status = StatusQuotaExceeded
			if !errors.Is(err, ErrQuotaExceeded) {
				err = fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
			}
		case errors.Is(err, ErrUnavailable):
			status = StatusUnavailable
		}
		c.observer.OnCallComplete(CallEvent{
			Provider:  ProviderOpenAI,
			Model:     model,
			LatencyMs: latency,
			Status:    status,
			ErrorCode: errorCode(err),
			Err:       err,
		})
		last = Outcome{Status: status, Model: model, LatencyMs: time.Since(start).Milliseconds(), Err: err}
		if status == StatusQuotaExceeded {
			return last
		}
	}

	if last.Err == nil {
		return Outcome{Status: StatusFailed, Err: fmt.Errorf("openai: no attempt made: %w", context.Cause(ctx))}
	}
	// Every model failed; report a plain failure with the last cause kept.
	last.Status = StatusFailed
	return last
}

func (c *OpenAIClient) attempt(ctx context.Context, model, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	data, err := json.Marshal(openAIRequest{
		Model:       model,
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := c.cfg.BaseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if isConnectionError(err) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: model %s", ErrTimeout, model)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(body)
		var apiErr openAIErrorBody
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
			if apiErr.Error.Code != "" {
				msg += " (" + apiErr.Error.Code + ")"
			}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: openai status %d: %s", ErrQuotaExceeded, resp.StatusCode, msg)
		}
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, msg)
	}

	var parsed openAIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: model %s", ErrEmptyResponse, model)
	}
	return parsed.Choices[0].Message.Content, nil
}
