package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"ArticleNormalizer/internal/batch"
	"ArticleNormalizer/internal/config"
	"ArticleNormalizer/internal/infrastructure/httpapi"
	"ArticleNormalizer/internal/infrastructure/scheduler"
	"ArticleNormalizer/internal/infrastructure/storage"
	"ArticleNormalizer/internal/infrastructure/telegram"
	"ArticleNormalizer/internal/logging"
	"ArticleNormalizer/internal/pipeline"
	"ArticleNormalizer/internal/ports"
)

// Application wires configs to the batch runner, admin API and the
// scheduled analysis sweep.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	runner    *batch.Runner
	server    *httpapi.Server
	scheduler ports.Scheduler
	notifier  ports.Notifier
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pol := cfg.ResolvedPolicy()
	store := storage.NewPostgresStore(db)
	orchestrator := pipeline.New(pol, baseLogger.With("component", "pipeline"))

	runner := batch.NewRunner(batch.Deps{
		Store:        store,
		Orchestrator: orchestrator,
		Policy:       pol,
		Logger:       baseLogger.With("component", "batch"),
	})

	app := &Application{
		cfg:    cfg,
		logger: baseLogger,
		db:     db,
		runner: runner,
		server: httpapi.NewServer(cfg.HTTP.Addr, cfg.HTTP.AdminToken, runner, baseLogger.With("component", "httpapi")),
	}

	if cfg.Analysis.ScheduleEnabled {
		app.scheduler = scheduler.NewIntervalScheduler(cfg.Analysis.ResolvedInterval())
		tg := cfg.Notifications.Telegram
		if tg.BotToken != "" && tg.ChatID != "" {
			app.notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
		}
	}

	return app, nil
}

// Run starts the scheduled sweep (if enabled) and serves the admin API
// until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx, a.analysisSweep(ctx)); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer func() { _ = a.scheduler.Stop(context.Background()) }()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()

	a.logger.Info("admin api listening", "addr", a.cfg.HTTP.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return a.db.Close()
}

// analysisSweep runs the detect-only pass and publishes a digest. It never
// touches the store's write path.
func (a *Application) analysisSweep(ctx context.Context) func(time.Time) {
	return func(t time.Time) {
		report, err := a.runner.Analyze(ctx, "")
		if err != nil {
			a.logger.Error("scheduled analysis failed", "error", err)
			return
		}

		a.logger.Info("scheduled analysis finished",
			"articles", report.TotalArticles,
			"with_issues", report.ArticlesWithIssues,
			"issues", report.TotalIssues)

		if a.notifier == nil {
			return
		}
		digest := batch.BuildDigest(report)
		if digest == "" {
			return
		}
		if err := a.notifier.PublishDigest(ctx, digest); err != nil {
			a.logger.Error("publish analysis digest", "error", err)
		}
	}
}
