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

// OllamaClient implements Provider using the Ollama HTTP API.
type OllamaClient struct {
	cfg      OllamaConfig
	http     *http.Client
	observer Observer
}

// NewOllamaClient creates a Provider that talks to a local Ollama instance.
func NewOllamaClient(cfg OllamaConfig, observer Observer) *OllamaClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &OllamaClient{
		cfg:      cfg,
		http:     newHTTPClient(),
		observer: observer,
	}
}

// ollamaRequest is the JSON body sent to POST /api/generate.
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
}

// ollamaResponse is the JSON body returned by POST /api/generate (non-streaming).
type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

func (c *OllamaClient) Kind() ProviderKind { return ProviderOllama }

// Generate tries each configured model in order. A refused connection ends
// the attempt immediately since no other model can succeed either.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) Outcome {
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
			c.observer.OnCallComplete(CallEvent{Provider: ProviderOllama, Model: model, LatencyMs: latency, Status: StatusOK})
			return Outcome{Status: StatusOK, Text: text, Model: model, LatencyMs: time.Since(start).Milliseconds()}
		}

		status := StatusFailed
		if errors.Is(err, ErrUnavailable) {
			status = StatusUnavailable
		}
		c.observer.OnCallComplete(CallEvent{
			Provider:  ProviderOllama,
			Model:     model,
			LatencyMs: latency,
			Status:    status,
			ErrorCode: errorCode(err),
			Err:       err,
		})
		last = Outcome{Status: status, Model: model, LatencyMs: time.Since(start).Milliseconds(), Err: err}
		if status == StatusUnavailable {
			return last
		}
	}

	if last.Err == nil {
		last = Outcome{Status: StatusFailed, Err: fmt.Errorf("ollama: no attempt made: %w", context.Cause(ctx))}
	}
	return last
}

func (c *OllamaClient) attempt(ctx context.Context, model, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	resp, err := c.doRequest(ctx, ollamaRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  false,
		Options: ollamaOptions{Temperature: 0.2},
	})
	if err != nil {
		if isConnectionError(err) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: model %s", ErrTimeout, model)
		}
		return "", err
	}
	if strings.TrimSpace(resp.Response) == "" {
		return "", fmt.Errorf("%w: model %s", ErrEmptyResponse, model)
	}
	return resp.Response, nil
}

func (c *OllamaClient) doRequest(ctx context.Context, body ollamaRequest) (*ollamaResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := c.cfg.Endpoint + "/api/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp ollamaResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &resp, nil
}

// Available checks whether the Ollama server is reachable.
func (c *OllamaClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	url := c.cfg.Endpoint + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
