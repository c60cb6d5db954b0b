package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

// ProviderKind identifies a generation backend.
type ProviderKind string

const (
	ProviderOpenAI ProviderKind = "openai"
	ProviderGemini ProviderKind = "gemini"
	ProviderOllama ProviderKind = "ollama"
)

// Status classifies the outcome of one adapter call.
type Status int

const (
	// StatusOK means Text holds non-empty raw model output.
	StatusOK Status = iota
	// StatusUnavailable means the backend could not be reached at all.
	StatusUnavailable
	// StatusQuotaExceeded means a usage limit was hit; retrying other models
	// on the same backend is pointless.
	StatusQuotaExceeded
	// StatusFailed covers every other failure; Err keeps the last cause.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnavailable:
		return "unavailable"
	case StatusQuotaExceeded:
		return "quota_exceeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the typed result of Provider.Generate. Failures are values,
// never errors crossing the adapter boundary. LatencyMs covers every model
// attempt; per-attempt timings go to the Observer.
type Outcome struct {
	Status    Status
	Text      string
	Model     string
	LatencyMs int64
	Err       error
}

// OK reports whether the outcome carries usable text.
func (o Outcome) OK() bool {
	return o.Status == StatusOK && strings.TrimSpace(o.Text) != ""
}

// Provider is a uniform prompt-in, raw-text-out wrapper around one backend.
type Provider interface {
	Kind() ProviderKind
	Generate(ctx context.Context, prompt string) Outcome
}

// ResolveProviders builds the ordered list of eligible providers from cfg.
// The order is the generation priority: OpenAI, Gemini, then the local
// Ollama daemon. Ineligible backends are left out entirely.
func ResolveProviders(cfg ProvidersConfig, observer Observer) []Provider {
	if observer == nil {
		observer = NoopObserver{}
	}
	var providers []Provider
	if cfg.OpenAIEligible() {
		providers = append(providers, NewOpenAIClient(cfg.OpenAI, observer))
	}
	if cfg.GeminiEligible() {
		providers = append(providers, NewGeminiClient(cfg.Gemini, observer))
	}
	if cfg.OllamaEligible() {
		providers = append(providers, NewOllamaClient(cfg.Ollama, observer))
	}
	return providers
}

// ProviderInfo describes a backend's configuration state for display.
type ProviderInfo struct {
	Kind     ProviderKind
	Eligible bool
	Models   []string
	Reason   string
	// Reachable is set only after a live check; nil means not checked.
	Reachable *bool
}

// DescribeProviders reports every backend in priority order, including the
// ineligible ones, with the reason they were skipped.
func DescribeProviders(cfg ProvidersConfig) []ProviderInfo {
	openai := ProviderInfo{Kind: ProviderOpenAI, Eligible: cfg.OpenAIEligible(), Models: cfg.OpenAI.Models}
	switch {
	case cfg.OpenAI.APIKey == "":
		openai.Reason = "OPENAI_API_KEY not set"
	case !strings.HasPrefix(cfg.OpenAI.APIKey, openAIKeyPrefix):
		openai.Reason = "OPENAI_API_KEY is malformed"
	case len(cfg.OpenAI.Models) == 0:
		openai.Reason = "no models configured"
	}

	gemini := ProviderInfo{Kind: ProviderGemini, Eligible: cfg.GeminiEligible()}
	if cfg.Gemini.Model != "" {
		gemini.Models = []string{cfg.Gemini.Model}
	}
	if cfg.Gemini.APIKey == "" {
		gemini.Reason = "GEMINI_API_KEY not set"
	} else if cfg.Gemini.Model == "" {
		gemini.Reason = "no model configured"
	}

	ollama := ProviderInfo{Kind: ProviderOllama, Eligible: cfg.OllamaEligible(), Models: cfg.Ollama.Models}
	switch {
	case !cfg.Ollama.Enabled:
		ollama.Reason = "disabled"
	case cfg.Ollama.Endpoint == "":
		ollama.Reason = "no endpoint configured"
	case len(cfg.Ollama.Models) == 0:
		ollama.Reason = "no models configured"
	}

	return []ProviderInfo{openai, gemini, ollama}
}

// newHTTPClient returns a client whose dial timeout is short so that an
// unreachable backend fails fast; per-call deadlines come from the context.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 60 * time.Second,
			}).DialContext,
			MaxIdleConns:        20,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		},
	}
}

// isConnectionError reports whether the backend refused the connection.
// DNS failures and dial timeouts are ordinary attempt errors.
func isConnectionError(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}

var quotaMarkers = []string{
	"quota",
	"rate limit",
	"rate_limit",
	"ratelimit",
	"too many requests",
	"429",
	"resource_exhausted",
}

// isQuotaError reports whether the error text indicates rate or quota
// limiting.
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrQuotaExceeded):
		return "QUOTA_EXCEEDED"
	case errors.Is(err, ErrEmptyResponse):
		return "EMPTY_RESPONSE"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	default:
		return "UNKNOWN"
	}
}
