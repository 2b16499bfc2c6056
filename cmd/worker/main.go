package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/odyssey-erp/recon-portal/internal/app"
	jobmetrics "github.com/odyssey-erp/recon-portal/internal/jobs"
	"github.com/odyssey-erp/recon-portal/internal/observability"
	"github.com/odyssey-erp/recon-portal/jobs"
	"github.com/odyssey-erp/recon-portal/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	sections, err := report.LoadSections(cfg.ReportSections)
	if err != nil {
		logger.Error("load report sections", slog.Any("error", err))
		os.Exit(1)
	}

	renderMetrics := observability.NewMetrics()
	renderer, err := report.NewRenderer(sections, report.Options{
		DataDir:     cfg.ReportDataDir,
		OutDir:      cfg.ReportDir,
		Concurrency: cfg.RenderConcurrency,
		Logger:      logger,
		Recorder:    renderMetrics,
	})
	if err != nil {
		logger.Error("init renderer", slog.Any("error", err))
		os.Exit(1)
	}
	renderJob := jobs.NewRenderJob(renderer, logger, jobmetrics.NewMetrics(renderMetrics.Registerer()))

	var cron []jobs.CronRegistration
	if cfg.RenderCron != "" {
		task, err := jobs.NewRenderTask(jobs.RenderPayload{Source: jobs.SourceCron})
		if err != nil {
			logger.Error("build render task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{Spec: cfg.RenderCron, Task: task})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   cfg.RedisOptions().AsynqOpt(),
		Logger:      logger,
		Concurrency: 1,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRenderReports, Handler: renderJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.WorkerMetricsAddr != "" {
		metricsServer := &http.Server{
			Addr:              cfg.WorkerMetricsAddr,
			Handler:           renderMetrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("serving worker metrics", slog.String("addr", cfg.WorkerMetricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("worker metrics server", slog.Any("error", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
