// Command render regenerates the static report pages from scan output, or
// queues a render for the worker with --enqueue.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/spf13/pflag"

	"github.com/odyssey-erp/recon-portal/internal/app"
	"github.com/odyssey-erp/recon-portal/jobs"
	"github.com/odyssey-erp/recon-portal/report"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping render")
		return nil
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var (
		dataDir      string
		outDir       string
		sectionsPath string
		concurrency  int
		enqueue      bool
		strict       bool
	)
	flagSet := pflag.NewFlagSet("render", pflag.ContinueOnError)
	flagSet.StringVar(&dataDir, "data", cfg.ReportDataDir, "directory holding the scan output files")
	flagSet.StringVar(&outDir, "out", cfg.ReportDir, "directory receiving the rendered pages")
	flagSet.StringVar(&sectionsPath, "sections", cfg.ReportSections, "YAML section list overriding the built-in one")
	flagSet.IntVarP(&concurrency, "concurrency", "j", cfg.RenderConcurrency, "sections rendered in parallel")
	flagSet.BoolVar(&enqueue, "enqueue", false, "queue a render for the worker instead of rendering locally")
	flagSet.BoolVar(&strict, "strict", false, "exit non-zero when any section fails")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := app.NewLoggerTo(os.Stderr, cfg)

	if enqueue {
		client := jobs.NewClient(cfg.RedisOptions().AsynqOpt())
		defer client.Close()
		info, err := client.EnqueueRender(ctx, jobs.RenderPayload{Source: jobs.SourceCLI})
		if errors.Is(err, asynq.ErrDuplicateTask) {
			logger.Info("render already pending")
			return nil
		}
		if err != nil {
			return fmt.Errorf("enqueue render: %w", err)
		}
		logger.Info("render queued", slog.String("task_id", info.ID))
		return nil
	}

	sections, err := report.LoadSections(sectionsPath)
	if err != nil {
		return err
	}
	renderer, err := report.NewRenderer(sections, report.Options{
		DataDir:     dataDir,
		OutDir:      outDir,
		Concurrency: concurrency,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	summary, err := renderer.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Report generation complete: %d generated, %d failed.\n", summary.Generated, summary.Failed)
	if strict && summary.Failed > 0 {
		return fmt.Errorf("%d section(s) failed", summary.Failed)
	}
	return nil
}
