package cli

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alexanderramin/dayplan/internal/caldav"
	"github.com/alexanderramin/dayplan/internal/config"
	"github.com/alexanderramin/dayplan/internal/db"
	"github.com/alexanderramin/dayplan/internal/httpapi"
	"github.com/alexanderramin/dayplan/internal/intelligence"
	"github.com/alexanderramin/dayplan/internal/llm"
	"github.com/alexanderramin/dayplan/internal/repository"
	"github.com/alexanderramin/dayplan/internal/service"
)

// Bootstrap opens storage and wires every service described by cfg into app.
// The caller owns app.Close.
func Bootstrap(app *App, cfg *config.Config, logger *slog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	app.closers = append(app.closers, database.Close)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var llmObserver llm.Observer = llm.NewMetricsObserver(reg)
	if cfg.Providers.LogCalls {
		llmObserver = llm.MultiObserver{llmObserver, llm.NewLogObserver(logger)}
	}
	providers := llm.ResolveProviders(cfg.Providers, llmObserver)

	schedule := intelligence.NewScheduleService(providers, intelligence.ScheduleOptions{
		Location: loc,
		Budget:   cfg.RequestTimeout(),
		Logger:   logger.With("component", "orchestrator"),
		Recorder: intelligence.NewGenerationMetrics(reg),
	})

	plannerOpts := service.PlannerOptions{Location: loc, Logger: logger}
	if cfg.CalDAV.Enabled() {
		pub, err := caldav.NewPublisher(cfg.CalDAV, loc)
		if err != nil {
			return fmt.Errorf("configuring CalDAV: %w", err)
		}
		plannerOpts.Publisher = pub
	}

	observer := service.NewLogUseCaseObserver(logger)
	uow := db.NewSQLiteUnitOfWork(database)

	app.Config = cfg
	app.Logger = logger
	app.Planner = service.NewPlannerService(schedule, uow, plannerOpts, observer)
	app.Users = service.NewUserService(repository.NewSQLiteUserRepo(database), service.DefaultArgon2idParams, observer)
	app.Events = service.NewEventService(uow, observer)
	app.Providers = llm.DescribeProviders(cfg.Providers)
	if cfg.Providers.OllamaEligible() {
		app.CheckLocal = llm.NewOllamaClient(cfg.Providers.Ollama, nil).Available
	}
	app.Handler = httpapi.NewRouter(httpapi.RouterConfig{
		Generate: httpapi.NewGenerateHandler(app.Planner, logger),
		Users:    httpapi.NewUserHandler(app.Users, logger),
		Events:   httpapi.NewEventHandler(app.Events, logger),
		Metrics:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Middleware: []func(http.Handler) http.Handler{
			httpapi.RequestLogger(logger),
			httpapi.Recover(logger),
		},
	})

	logger.Debug("bootstrap complete",
		"db", cfg.DBPath,
		"providers", len(providers),
		"caldav", cfg.CalDAV.Enabled(),
	)
	return nil
}
