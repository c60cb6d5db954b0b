package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GeminiClient implements Provider against the Gemini generateContent API.
type GeminiClient struct {
	cfg      GeminiConfig
	http     *http.Client
	observer Observer
}

// NewGeminiClient creates a Provider for the configured Gemini model.
func NewGeminiClient(cfg GeminiConfig, observer Observer) *GeminiClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &GeminiClient{cfg: cfg, http: newHTTPClient(), observer: observer}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) Kind() ProviderKind { return ProviderGemini }

// Generate makes a single attempt; the only output check is that the first
// candidate carries text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) Outcome {
	start := time.Now()
	text, err := c.attempt(ctx, prompt)
	latency := time.Since(start).Milliseconds()

	if err == nil {
		c.observer.OnCallComplete(CallEvent{Provider: ProviderGemini, Model: c.cfg.Model, LatencyMs: latency, Status: StatusOK})
		return Outcome{Status: StatusOK, Text: text, Model: c.cfg.Model, LatencyMs: latency}
	}

	status := StatusFailed
	switch {
	case errors.Is(err, ErrUnavailable):
		status = StatusUnavailable
	case isQuotaError(err):
		status = StatusQuotaExceeded
	}
	c.observer.OnCallComplete(CallEvent{
		Provider:  ProviderGemini,
		Model:     c.cfg.Model,
		LatencyMs: latency,
		Status:    status,
		ErrorCode: errorCode(err),
		Err:       err,
	})
	return Outcome{Status: status, Model: c.cfg.Model, LatencyMs: latency, Err: err}
}

func (c *GeminiClient) attempt(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	data, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, url.PathEscape(c.cfg.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if isConnectionError(err) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: model %s", ErrTimeout, c.cfg.Model)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: model %s", ErrEmptyResponse, c.cfg.Model)
	}
	var b strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: model %s", ErrEmptyResponse, c.cfg.Model)
	}
	return b.String(), nil
}
