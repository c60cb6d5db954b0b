package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/dayplan/internal/config"
	"github.com/alexanderramin/dayplan/internal/llm"
	"github.com/alexanderramin/dayplan/internal/service"
)

// App holds the wired services used by CLI commands. Commands run against
// a pre-populated App when Planner is set; otherwise the root command
// bootstraps one from configuration.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Planner   service.PlannerService
	Users     service.UserService
	Events    service.EventService
	Handler   http.Handler
	Providers []llm.ProviderInfo

	// IsInteractive reports whether stdout is a terminal. plan prints a
	// styled table when it is and JSON when it is not.
	IsInteractive func() bool

	// CheckLocal pings the local Ollama daemon. It is nil when Ollama is
	// not eligible.
	CheckLocal func(ctx context.Context) bool

	closers []func() error
}

// Close releases resources acquired by Bootstrap, in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) interactive() bool {
	if a.IsInteractive == nil {
		return false
	}
	return a.IsInteractive()
}

// StdoutIsTerminal is the default IsInteractive.
func StdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewLogger builds the process logger: JSON for the long-running server,
// text for one-shot commands.
func NewLogger(w io.Writer, cfg *config.Config, server bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if server || cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
