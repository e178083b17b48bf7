package catalog

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"performersync/internal/logging"
	"performersync/internal/performer"
	"performersync/internal/stashbox"
)

// DryRun wraps a Store so every write is logged and recorded in memory
// instead of being sent. Reads return the underlying state with the
// recorded writes applied, so multi-stage runs observe their own effects.
type DryRun struct {
	inner  Store
	logger *slog.Logger

	mu       sync.Mutex
	patches  map[string][]performer.Patch
	deleted  map[string]struct{}
	rewrites map[string]Association
	writes   int
}

var _ Store = (*DryRun)(nil)

// NewDryRun wraps inner.
func NewDryRun(inner Store, logger *slog.Logger) *DryRun {
	return &DryRun{
		inner:    inner,
		logger:   logging.NewComponentLogger(logger, "catalog-dry-run"),
		patches:  make(map[string][]performer.Patch),
		deleted:  make(map[string]struct{}),
		rewrites: make(map[string]Association),
	}
}

// Writes returns the number of suppressed write calls.
func (d *DryRun) Writes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writes
}

// ListPerformers returns the underlying records with recorded patches applied
// and recorded deletions removed.
func (d *DryRun) ListPerformers(ctx context.Context) ([]performer.Record, error) {
	records, err := d.inner.ListPerformers(ctx)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]performer.Record, 0, len(records))
	for _, rec := range records {
		if _, gone := d.deleted[rec.ID]; gone {
			continue
		}
		for _, patch := range d.patches[rec.ID] {
			patch.Apply(&rec)
		}
		out = append(out, rec)
	}
	return out, nil
}

// UpdatePerformer records patch without sending it.
func (d *DryRun) UpdatePerformer(_ context.Context, patch performer.Patch) error {
	d.mu.Lock()
	d.patches[patch.ID] = append(d.patches[patch.ID], patch)
	d.writes++
	d.mu.Unlock()
	d.logger.Info("dry run: would update performer",
		logging.String(logging.FieldPerformerID, patch.ID),
		logging.String("fields", strings.Join(patch.Fields(), ",")),
	)
	return nil
}

// DeletePerformer records the deletion without sending it.
func (d *DryRun) DeletePerformer(_ context.Context, id string) error {
	d.mu.Lock()
	d.deleted[id] = struct{}{}
	d.writes++
	d.mu.Unlock()
	d.logger.Info("dry run: would delete performer", logging.String(logging.FieldPerformerID, id))
	return nil
}

// FindAssociations returns associations referencing performerID as they would
// look after the recorded rewrites.
func (d *DryRun) FindAssociations(ctx context.Context, kind Kind, performerID string) ([]Association, error) {
	found, err := d.inner.FindAssociations(ctx, kind, performerID)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	seen := make(map[string]struct{}, len(found))
	out := make([]Association, 0, len(found))
	for _, assoc := range found {
		seen[assoc.Key()] = struct{}{}
		if rewritten, ok := d.rewrites[assoc.Key()]; ok {
			assoc = rewritten
		}
		if assoc.References(performerID) {
			out = append(out, assoc)
		}
	}
	var extra []Association
	for key, assoc := range d.rewrites {
		if _, ok := seen[key]; ok || assoc.Kind != kind {
			continue
		}
		if assoc.References(performerID) {
			extra = append(extra, assoc)
		}
	}
	slices.SortFunc(extra, func(a, b Association) int { return strings.Compare(a.ID, b.ID) })
	return append(out, extra...), nil
}

// RewriteAssociation records the new performer list without sending it.
func (d *DryRun) RewriteAssociation(_ context.Context, kind Kind, id string, performerIDs []string) error {
	assoc := Association{Kind: kind, ID: id, PerformerIDs: append([]string(nil), performerIDs...)}
	d.mu.Lock()
	d.rewrites[assoc.Key()] = assoc
	d.writes++
	d.mu.Unlock()
	d.logger.Info("dry run: would rewrite association",
		logging.String("kind", string(kind)),
		logging.String("id", id),
		logging.Strings("performer_ids", performerIDs),
	)
	return nil
}

// StashBoxes passes through to the wrapped store.
func (d *DryRun) StashBoxes(ctx context.Context) ([]stashbox.Box, error) {
	return d.inner.StashBoxes(ctx)
}
