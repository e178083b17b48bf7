package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"performersync/internal/catalog"
	"performersync/internal/dedup"
	"performersync/internal/logging"
	"performersync/internal/namesync"
	"performersync/internal/performer"
	"performersync/internal/services"
	"performersync/internal/stashbox"
)

// Connector opens a registry client for a configured stash-box.
type Connector func(box stashbox.Box) stashbox.Registry

// Options select registries and optional stages.
type Options struct {
	NativeMatch     string
	CanonicalMatch  string
	MergeDuplicates bool
	DryRun          bool
}

// Pipeline runs sync and dedup against one catalog.
type Pipeline struct {
	store    catalog.Store
	connect  Connector
	opts     Options
	logger   *slog.Logger
	progress func(float64)
	now      func() time.Time
}

// Option customizes the pipeline.
type Option func(*Pipeline)

// WithProgress reports the fraction of eligible performers processed during
// the sync stage.
func WithProgress(fn func(float64)) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// WithClock overrides the report clock (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New builds a pipeline. In dry-run mode store should already be wrapped in
// catalog.DryRun; the flag only marks the report.
func New(store catalog.Store, connect Connector, opts Options, logger *slog.Logger, options ...Option) *Pipeline {
	p := &Pipeline{
		store:   store,
		connect: connect,
		opts:    opts,
		logger:  logging.NewComponentLogger(logger, "pipeline"),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *Pipeline) newReport(command string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Command:   command,
		DryRun:    p.opts.DryRun,
		Status:    StatusOK,
		StartedAt: p.now(),
	}
}

func (p *Pipeline) finish(report *Report) {
	report.FinishedAt = p.now()
	p.logger.Info("run finished",
		logging.String(logging.FieldRunID, report.RunID),
		logging.String("status", string(report.Status)),
		logging.Int("updated", report.Counters.Updated),
		logging.Int("fallback", report.Counters.Fallback),
		logging.Int("skipped_multi_id", report.Counters.SkippedMultiID),
		logging.Int("skipped_no_alias", report.Counters.SkippedNoAlias),
		logging.Int("skipped_no_change", report.Counters.SkippedNoChange),
		logging.Int("merged", report.Counters.Merged),
		logging.Int("errors", report.Counters.Errors),
		logging.Bool("dry_run", report.DryRun),
	)
}

// Run executes IdentifyRegistries, FetchAll, PreMerge, Sync, PostMerge. The
// returned error is non-nil only when the run ended early; the report is
// always returned.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := p.newReport("run")
	ctx = services.WithRunID(ctx, report.RunID)
	defer p.finish(report)

	native, canonical, err := p.identify(ctx, report)
	if err != nil {
		return report, err
	}

	records, err := p.fetch(ctx, report)
	if err != nil {
		return report, err
	}

	if p.opts.MergeDuplicates {
		records = p.merge(ctx, report, StagePreMerge, records)
	}

	p.sync(ctx, report, namesync.New(native, canonical, p.logger), records)

	if p.opts.MergeDuplicates {
		refetched, err := p.fetch(ctx, report)
		if err != nil {
			return report, err
		}
		p.merge(ctx, report, StagePostMerge, refetched)
	}
	p.stage(ctx, StageDone)
	return report, nil
}

// Dedup runs a single duplicate pass over the whole catalog.
func (p *Pipeline) Dedup(ctx context.Context) (*Report, error) {
	report := p.newReport("dedup")
	ctx = services.WithRunID(ctx, report.RunID)
	defer p.finish(report)

	records, err := p.fetch(ctx, report)
	if err != nil {
		return report, err
	}
	p.merge(ctx, report, StagePreMerge, records)
	p.stage(ctx, StageDone)
	return report, nil
}

func (p *Pipeline) stage(ctx context.Context, stage Stage) (context.Context, *slog.Logger) {
	ctx = services.WithStage(ctx, string(stage))
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	return ctx, logger
}

func (p *Pipeline) identify(ctx context.Context, report *Report) (stashbox.Registry, stashbox.Registry, error) {
	ctx, logger := p.stage(ctx, StageIdentify)
	boxes, err := p.store.StashBoxes(ctx)
	if err != nil {
		report.Status = StatusFailed
		report.add(Event{Stage: StageIdentify, Kind: EventError, Message: err.Error()})
		return nil, nil, services.Wrap(services.ErrTransient, string(StageIdentify), "list stash boxes", "", err)
	}
	nativeBox, canonicalBox := stashbox.Identify(boxes, p.opts.NativeMatch, p.opts.CanonicalMatch)
	if nativeBox == nil {
		report.Status = StatusConfigurationMissing
		msg := "no stash-box matching " + p.opts.NativeMatch + " is configured"
		report.add(Event{Stage: StageIdentify, Kind: EventError, Message: msg})
		logging.ErrorWithContext(logger, "native registry missing", "configuration_missing",
			logging.String("native_match", p.opts.NativeMatch),
			logging.String(logging.FieldErrorHint, "add a stash-box whose endpoint or name contains "+p.opts.NativeMatch),
		)
		return nil, nil, services.Wrap(services.ErrConfiguration, string(StageIdentify), "identify registries", msg, nil)
	}
	report.Native = nativeBox.Endpoint
	native := p.connect(*nativeBox)
	logger.Info("native registry", logging.String(logging.FieldEndpoint, nativeBox.Endpoint))

	var canonical stashbox.Registry
	if canonicalBox == nil {
		logging.WarnWithContext(logger, "canonical registry missing", "canonical_registry_missing",
			logging.String("canonical_match", p.opts.CanonicalMatch),
			logging.String(logging.FieldImpact, "renames use native aliases only"),
		)
		report.add(Event{Stage: StageIdentify, Kind: EventNotice, Message: "no canonical registry; native aliases only"})
	} else {
		report.Canonical = canonicalBox.Endpoint
		canonical = p.connect(*canonicalBox)
		logger.Info("canonical registry", logging.String(logging.FieldEndpoint, canonicalBox.Endpoint))
	}
	return native, canonical, nil
}

func (p *Pipeline) fetch(ctx context.Context, report *Report) ([]performer.Record, error) {
	ctx, logger := p.stage(ctx, StageFetch)
	records, err := p.store.ListPerformers(ctx)
	if err != nil {
		report.Status = StatusFailed
		report.add(Event{Stage: StageFetch, Kind: EventError, Message: err.Error()})
		return nil, services.Wrap(services.ErrTransient, string(StageFetch), "list performers", "", err)
	}
	if report.Counters.Performers == 0 {
		report.Counters.Performers = len(records)
	}
	logger.Info("performers fetched", logging.Int("count", len(records)))
	return records, nil
}

func (p *Pipeline) merge(ctx context.Context, report *Report, stage Stage, records []performer.Record) []performer.Record {
	ctx, logger := p.stage(ctx, stage)
	pass := dedup.NewEngine(p.store, logger).Pass(ctx, records)
	report.addPass(stage, pass)
	logger.Info("duplicate pass complete",
		logging.Int("groups", len(pass.Merges)),
		logging.Int("merged", pass.Absorbed()),
		logging.Int("failures", len(pass.Failures)),
	)
	return pass.Records
}

func (p *Pipeline) sync(ctx context.Context, report *Report, syncer *namesync.Syncer, records []performer.Record) {
	ctx, logger := p.stage(ctx, StageSync)
	var eligible []*performer.Record
	for i := range records {
		if syncer.Eligible(&records[i]) {
			eligible = append(eligible, &records[i])
			continue
		}
		report.Count(services.OutcomeSkippedNotLinked)
	}
	report.Counters.Eligible = len(eligible)
	logger.Info("performers eligible for sync", logging.Int("count", len(eligible)))

	total := len(eligible)
	for i, rec := range eligible {
		p.reportProgress(float64(i) / float64(max(total, 1)))
		p.syncOne(services.WithPerformerID(ctx, rec.ID), report, syncer, rec)
	}
	p.reportProgress(1)
}

func (p *Pipeline) syncOne(ctx context.Context, report *Report, syncer *namesync.Syncer, rec *performer.Record) {
	logger := logging.WithContext(ctx, p.logger)
	plan, err := syncer.Plan(ctx, rec)
	switch {
	case err != nil && !services.IsSkip(err):
		report.Count(services.OutcomeError)
		report.add(Event{Stage: StageSync, Kind: EventError, PerformerID: rec.ID, Name: rec.Name, Message: err.Error()})
		logging.WarnWithContext(logger, "performer sync failed", "performer_sync_failed",
			logging.String("name", rec.Name),
			logging.Error(err),
		)
		return
	case plan.Outcome != services.OutcomeUpdated:
		report.Count(plan.Outcome)
		report.add(Event{Stage: StageSync, Kind: EventSkip, PerformerID: rec.ID, Name: rec.Name, Message: string(plan.Outcome)})
		logger.Debug("performer skipped", logging.String("reason", string(plan.Outcome)))
		return
	}

	if err := p.store.UpdatePerformer(ctx, plan.Patch); err != nil {
		report.Count(services.OutcomeError)
		report.add(Event{Stage: StageSync, Kind: EventError, PerformerID: rec.ID, Name: rec.Name, Message: err.Error()})
		logging.ErrorWithContext(logger, "performer update failed", "performer_update_failed",
			logging.String("name", rec.Name),
			logging.String(logging.FieldErrorHint, "catalog writes are not retried; rerun to try again"),
			logging.Error(err),
		)
		return
	}
	report.Count(services.OutcomeUpdated)
	if plan.Fallback {
		report.Counters.Fallback++
	}
	message := "renamed"
	if plan.Matched {
		message = "matched " + plan.Match.ID
	}
	report.add(Event{
		Stage:       StageSync,
		Kind:        EventUpdate,
		PerformerID: rec.ID,
		Name:        plan.NewName,
		Message:     message,
		Fields:      plan.Patch.Fields(),
		Related:     []string{plan.OldName},
	})
}

func (p *Pipeline) reportProgress(fraction float64) {
	if p.progress != nil {
		p.progress(fraction)
	}
}
