package llm

import (
	"log/slog"
)

// CallEvent records metadata about a single backend invocation (one model
// attempt).
type CallEvent struct {
	Provider  ProviderKind
	Model     string
	LatencyMs int64
	Status    Status
	ErrorCode string
	Err       error
}

// Observer receives events about LLM calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes LLM call events to a structured logger.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to logger.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	attrs := []any{
		"provider", event.Provider,
		"model", event.Model,
		"latency_ms", event.LatencyMs,
		"status", event.Status.String(),
	}
	if event.Status == StatusOK {
		o.logger.Info("llm_call", attrs...)
		return
	}
	attrs = append(attrs, "error_code", event.ErrorCode)
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
	}
	o.logger.Warn("llm_call", attrs...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}

// MultiObserver fans every event out to each non-nil observer.
type MultiObserver []Observer

func (m MultiObserver) OnCallComplete(event CallEvent) {
	for _, o := range m {
		if o != nil {
			o.OnCallComplete(event)
		}
	}
}
