package main

import (
	"context"
	"log/slog"

	"performersync/internal/catalog"
	"performersync/internal/config"
	"performersync/internal/history"
	"performersync/internal/logging"
	"performersync/internal/notifications"
	"performersync/internal/pipeline"
	"performersync/internal/runlock"
)

type runRequest struct {
	command  string
	dryRun   bool
	progress func(float64)
}

// execute runs one pipeline command under the run lock and journals the
// report. The report is returned even when the run ended early.
func (c *commandContext) execute(ctx context.Context, cfg *config.Config, logger *slog.Logger, req runRequest) (*pipeline.Report, error) {
	lock, err := runlock.Acquire(cfg.LockPath())
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logging.WarnWithContext(logger, "run lock release failed", "lock_release_failed",
				logging.String("lock", lock.Path()),
				logging.String(logging.FieldImpact, "the next run may report a held lock"),
				logging.Error(err),
			)
		}
	}()

	var store catalog.Store = c.deps.openCatalog(cfg, logger)
	if req.dryRun {
		store = catalog.NewDryRun(store, logger)
	}
	opts := pipeline.Options{
		NativeMatch:     cfg.Registries.NativeMatch,
		CanonicalMatch:  cfg.Registries.CanonicalMatch,
		MergeDuplicates: cfg.Run.MergeDuplicates,
		DryRun:          req.dryRun,
	}
	var options []pipeline.Option
	if req.progress != nil {
		options = append(options, pipeline.WithProgress(req.progress))
	}
	p := pipeline.New(store, c.deps.connector(cfg, logger, req.dryRun), opts, logger, options...)

	var report *pipeline.Report
	if req.command == "dedup" {
		report, err = p.Dedup(ctx)
	} else {
		report, err = p.Run(ctx)
	}
	c.journal(ctx, cfg, logger, report)
	notify(ctx, cfg, logger, report, err)
	return report, err
}

func notify(ctx context.Context, cfg *config.Config, logger *slog.Logger, report *pipeline.Report, runErr error) {
	svc := notifications.NewService(cfg)
	event := notifications.EventRunCompleted
	payload := notifications.Payload{
		"command":  report.Command,
		"status":   string(report.Status),
		"updated":  report.Counters.Updated,
		"merged":   report.Counters.Merged,
		"errors":   report.Counters.Errors + report.Counters.MergeFailures,
		"changes":  report.Changes(),
		"dryRun":   report.DryRun,
		"duration": report.Duration(),
	}
	if runErr != nil {
		event = notifications.EventRunFailed
		payload["error"] = runErr
	}
	if err := svc.Publish(ctx, event, payload); err != nil {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.String("event", string(event)),
			logging.String(logging.FieldImpact, "run result not pushed"),
			logging.Error(err),
		)
	}
}

func (c *commandContext) journal(ctx context.Context, cfg *config.Config, logger *slog.Logger, report *pipeline.Report) {
	if report == nil || !cfg.History.Enabled {
		return
	}
	store, err := history.Open(cfg)
	if err == nil {
		defer store.Close()
		err = store.SaveReport(ctx, report)
	}
	if err != nil {
		logging.WarnWithContext(logger, "run journal unavailable", "history_write_failed",
			logging.String("path", cfg.History.Path),
			logging.String(logging.FieldImpact, "run not recorded in history"),
			logging.Error(err),
		)
	}
}
