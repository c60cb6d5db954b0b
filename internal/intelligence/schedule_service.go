package intelligence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/llm"
)

// ErrNoEvents means a generation path produced an empty batch. The fallback
// never does, so seeing this is a defect rather than a provider failure.
var ErrNoEvents = errors.New("generation produced no events")

// ScheduleService turns free text into calendar events.
type ScheduleService interface {
	Generate(ctx context.Context, userText string) (*domain.GenerationResult, error)
}

// GenerationRecorder is notified of the path that answered each request.
type GenerationRecorder interface {
	RecordGeneration(source domain.GenerationSource)
}

// ScheduleOptions tunes a ScheduleService. Zero values pick defaults.
type ScheduleOptions struct {
	Now      func() time.Time
	Location *time.Location
	// Budget caps the time spent across all providers. Zero means no cap.
	Budget   time.Duration
	Logger   *slog.Logger
	Recorder GenerationRecorder
}

type scheduleService struct {
	providers []llm.Provider
	now       func() time.Time
	location  *time.Location
	budget    time.Duration
	logger    *slog.Logger
	recorder  GenerationRecorder
}

// NewScheduleService creates a ScheduleService that tries providers in the
// given order before falling back to the rule-based parser.
func NewScheduleService(providers []llm.Provider, opts ScheduleOptions) ScheduleService {
	s := &scheduleService{
		providers: providers,
		now:       opts.Now,
		location:  opts.Location,
		budget:    opts.Budget,
		logger:    opts.Logger,
		recorder:  opts.Recorder,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.location == nil {
		s.location = time.Local
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

func (s *scheduleService) Generate(ctx context.Context, userText string) (*domain.GenerationResult, error) {
	tc := NewTimeContext(s.now().In(s.location))
	prompt := BuildSchedulePrompt(userText, tc)

	if s.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.budget)
		defer cancel()
	}

	for i, p := range s.providers {
		if ctx.Err() != nil {
			s.logger.WarnContext(ctx, "generation budget exhausted",
				"skipped_providers", len(s.providers)-i,
				"error", context.Cause(ctx),
			)
			break
		}

		out := p.Generate(ctx, prompt)
		if !out.OK() {
			s.logger.InfoContext(ctx, "provider skipped",
				"provider", p.Kind(),
				"status", out.Status.String(),
				"model", out.Model,
				"error", out.Err,
			)
			continue
		}

		events := NormalizeEvents(out.Text, tc.Today)
		if len(events) == 0 {
			s.logger.WarnContext(ctx, "provider output rejected",
				"provider", p.Kind(),
				"model", out.Model,
				"output_len", len(out.Text),
			)
			continue
		}

		source := sourceFor(p.Kind())
		result := &domain.GenerationResult{
			Events:  events,
			Summary: fmt.Sprintf("Generated %d event(s) using %s (%s)", len(events), source.DisplayName(), out.Model),
			Source:  source,
			Model:   out.Model,
		}
		s.record(source)
		return result, nil
	}

	result := GenerateFallback(userText, tc.Today)
	if len(result.Events) == 0 {
		return nil, fmt.Errorf("fallback: %w", ErrNoEvents)
	}
	s.record(result.Source)
	return &result, nil
}

func (s *scheduleService) record(source domain.GenerationSource) {
	if s.recorder != nil {
		s.recorder.RecordGeneration(source)
	}
}

func sourceFor(kind llm.ProviderKind) domain.GenerationSource {
	switch kind {
	case llm.ProviderOpenAI:
		return domain.SourceOpenAI
	case llm.ProviderGemini:
		return domain.SourceGemini
	case llm.ProviderOllama:
		return domain.SourceOllama
	default:
		return domain.GenerationSource(kind)
	}
}
