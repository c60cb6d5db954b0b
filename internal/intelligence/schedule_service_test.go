package intelligence

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/llm"
)

type stubProvider struct {
	kind    llm.ProviderKind
	outcome llm.Outcome
	delay   time.Duration
	calls   int
	prompts []string
}

func (p *stubProvider) Kind() llm.ProviderKind { return p.kind }

func (p *stubProvider) Generate(ctx context.Context, prompt string) llm.Outcome {
	p.calls++
	p.prompts = append(p.prompts, prompt)
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return llm.Outcome{Status: llm.StatusFailed, Err: llm.ErrTimeout}
		}
	}
	return p.outcome
}

func okOutcome(model, text string) llm.Outcome {
	return llm.Outcome{Status: llm.StatusOK, Model: model, Text: text}
}

const validEvents = `[{"title":"Gym","date":"2025-03-14","start_time":"07:00","end_time":"08:00"},{"title":"Read","date":"2025-03-14","start_time":"21:00","end_time":"22:00"}]`

func fixedNow() time.Time { return time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC) }

func newTestScheduleService(providers ...llm.Provider) ScheduleService {
	return NewScheduleService(providers, ScheduleOptions{Now: fixedNow, Location: time.UTC})
}

func TestScheduleService_FirstSuccessShortCircuits(t *testing.T) {
	openai := &stubProvider{kind: llm.ProviderOpenAI, outcome: okOutcome("gpt-4o-mini", validEvents)}
	gemini := &stubProvider{kind: llm.ProviderGemini, outcome: okOutcome("gemini-1.5-flash", validEvents)}
	ollama := &stubProvider{kind: llm.ProviderOllama, outcome: okOutcome("llama3.2", validEvents)}

	result, err := newTestScheduleService(openai, gemini, ollama).Generate(context.Background(), "gym and reading")

	require.NoError(t, err)
	assert.Equal(t, 1, openai.calls)
	assert.Zero(t, gemini.calls)
	assert.Zero(t, ollama.calls)
	assert.Equal(t, "Generated 2 event(s) using OpenAI (gpt-4o-mini)", result.Summary)
	assert.Equal(t, domain.SourceOpenAI, result.Source)
	assert.Equal(t, "gpt-4o-mini", result.Model)
	require.Len(t, result.Events, 2)
	assert.Equal(t, "Gym", result.Events[0].Title)
}

func TestScheduleService_FallsThroughOnUnavailable(t *testing.T) {
	first := &stubProvider{kind: llm.ProviderOpenAI, outcome: llm.Outcome{Status: llm.StatusUnavailable, Err: llm.ErrUnavailable}}
	second := &stubProvider{kind: llm.ProviderGemini, outcome: okOutcome("gemini-1.5-flash", validEvents)}

	result, err := newTestScheduleService(first, second).Generate(context.Background(), "plan")

	require.NoError(t, err)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Contains(t, result.Summary, "Gemini")
	assert.Equal(t, domain.SourceGemini, result.Source)
}

func TestScheduleService_QuotaAndMalformedOutputFallThrough(t *testing.T) {
	quota := &stubProvider{kind: llm.ProviderOpenAI, outcome: llm.Outcome{Status: llm.StatusQuotaExceeded, Model: "gpt-4o-mini", Err: llm.ErrQuotaExceeded}}
	object := &stubProvider{kind: llm.ProviderGemini, outcome: okOutcome("gemini-1.5-flash", `{"not":"an array"}`)}
	local := &stubProvider{kind: llm.ProviderOllama, outcome: okOutcome("llama3.2", "```json\n"+validEvents+"\n```")}

	result, err := newTestScheduleService(quota, object, local).Generate(context.Background(), "plan")

	require.NoError(t, err)
	assert.Equal(t, 1, object.calls)
	assert.Equal(t, "Generated 2 event(s) using Ollama (llama3.2)", result.Summary)
}

func TestScheduleService_RelativeDatesFallThrough(t *testing.T) {
	relative := &stubProvider{kind: llm.ProviderOpenAI, outcome: okOutcome("gpt-4o-mini",
		`[{"title":"Gym","date":"tomorrow","start_time":"7am","end_time":"8am"}]`)}

	result, err := newTestScheduleService(relative).Generate(context.Background(), "gym tomorrow")

	require.NoError(t, err)
	assert.Equal(t, 1, relative.calls)
	assert.Equal(t, domain.SourceFallback, result.Source)
	for _, ev := range result.Events {
		_, err := time.Parse(domain.DateLayout, ev.Date)
		assert.NoError(t, err)
	}
}

func TestScheduleService_AllFailUsesFallback(t *testing.T) {
	providers := []llm.Provider{
		&stubProvider{kind: llm.ProviderOpenAI, outcome: llm.Outcome{Status: llm.StatusFailed}},
		&stubProvider{kind: llm.ProviderGemini, outcome: okOutcome("g", "[]")},
		&stubProvider{kind: llm.ProviderOllama, outcome: okOutcome("l", "no idea")},
	}

	result, err := newTestScheduleService(providers...).Generate(context.Background(), "study for 3 hours")

	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, result.Source)
	assert.Equal(t, "Generated 1 event(s) in fallback mode (rule-based parser)", result.Summary)
	require.Len(t, result.Events, 1)
	assert.Equal(t, domain.Event{Title: "Study Session", Date: "2025-03-14", StartTime: "09:00", EndTime: "12:00"}, result.Events[0])
}

func TestScheduleService_NoProvidersConfigured(t *testing.T) {
	result, err := newTestScheduleService().Generate(context.Background(), "I want to wake up and pray all prayers")

	require.NoError(t, err)
	assert.Len(t, result.Events, 6)
	assert.Contains(t, result.Summary, "fallback mode")
}

func TestScheduleService_NeverEmpty(t *testing.T) {
	svc := newTestScheduleService(&stubProvider{kind: llm.ProviderOllama, outcome: okOutcome("l", "[]")})
	for _, text := range []string{"", "zzz", "pray", "wake up tomorrow at 5am", "[]"} {
		result, err := svc.Generate(context.Background(), text)
		require.NoError(t, err)
		assert.NotEmpty(t, result.Events, "input %q", text)
	}
}

func TestScheduleService_PromptUsesInjectedClock(t *testing.T) {
	p := &stubProvider{kind: llm.ProviderOpenAI, outcome: okOutcome("m", `[{"title":"x"}]`)}

	result, err := newTestScheduleService(p).Generate(context.Background(), "dentist")

	require.NoError(t, err)
	require.Len(t, p.prompts, 1)
	assert.Contains(t, p.prompts[0], "Today is Friday, 2025-03-14")
	assert.Contains(t, p.prompts[0], "Request: dentist")
	assert.Equal(t, "2025-03-14", result.Events[0].Date, "missing date defaults to today")
}

func TestScheduleService_BudgetSkipsRemainingProviders(t *testing.T) {
	slow := &stubProvider{kind: llm.ProviderOpenAI, delay: time.Second, outcome: okOutcome("m", validEvents)}
	next := &stubProvider{kind: llm.ProviderGemini, outcome: okOutcome("g", validEvents)}

	var logs bytes.Buffer
	svc := NewScheduleService([]llm.Provider{slow, next}, ScheduleOptions{
		Now:    fixedNow,
		Budget: 20 * time.Millisecond,
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	})

	result, err := svc.Generate(context.Background(), "breakfast")

	require.NoError(t, err)
	assert.Zero(t, next.calls)
	assert.Equal(t, domain.SourceFallback, result.Source)
	assert.Contains(t, logs.String(), "generation budget exhausted")
}

func TestScheduleService_RecordsGenerationSource(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewGenerationMetrics(reg)
	svc := NewScheduleService([]llm.Provider{
		&stubProvider{kind: llm.ProviderOllama, outcome: okOutcome("llama3.2", validEvents)},
	}, ScheduleOptions{Now: fixedNow, Recorder: metrics})
	fallbackOnly := NewScheduleService(nil, ScheduleOptions{Now: fixedNow, Recorder: metrics})

	_, err := svc.Generate(context.Background(), "x")
	require.NoError(t, err)
	_, err = fallbackOnly.Generate(context.Background(), "x")
	require.NoError(t, err)
	_, err = fallbackOnly.Generate(context.Background(), "y")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.generations.WithLabelValues("ollama")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.generations.WithLabelValues("fallback")))
}

// The real adapters against local test servers: Ollama refuses connections,
// Gemini answers with fenced JSON.
func TestScheduleService_WithHTTPProviders(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply := map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": "```json\n" + validEvents + "\n```"}}},
			}},
		}
		_ = json.NewEncoder(w).Encode(reply)
	}))
	defer gemini.Close()

	cfg := llm.DefaultConfig()
	cfg.Gemini.APIKey = "k"
	cfg.Gemini.BaseURL = gemini.URL
	cfg.Ollama.Endpoint = deadURL

	var calls []llm.CallEvent
	providers := llm.ResolveProviders(cfg, callRecorder(func(e llm.CallEvent) { calls = append(calls, e) }))
	require.Len(t, providers, 2)

	result, err := NewScheduleService(providers, ScheduleOptions{Now: fixedNow}).Generate(context.Background(), "gym and reading")

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.Summary, "using Gemini (gemini-1.5-flash)"))
	require.Len(t, calls, 1)
	assert.Equal(t, llm.ProviderGemini, calls[0].Provider)
}

type callRecorder func(llm.CallEvent)

func (f callRecorder) OnCallComplete(e llm.CallEvent) { f(e) }
