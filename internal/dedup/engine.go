package dedup

import (
	"context"
	"log/slog"

	"performersync/internal/catalog"
	"performersync/internal/logging"
	"performersync/internal/performer"
)

// Failure is a group whose merge stopped early.
type Failure struct {
	Signal Signal
	IDs    []string
	Err    error
}

// PassResult summarizes one deduplication pass.
type PassResult struct {
	Merges   []Merge
	Failures []Failure
	// Records are the survivors in input order, keepers carrying their
	// merged state.
	Records []performer.Record
}

// Absorbed counts the records merged away.
func (r PassResult) Absorbed() int {
	n := 0
	for _, m := range r.Merges {
		n += len(m.Absorbed)
	}
	return n
}

// Engine runs deduplication passes.
type Engine struct {
	merger *Merger
	logger *slog.Logger
}

// NewEngine builds an engine writing merges to store.
func NewEngine(store catalog.Store, logger *slog.Logger) *Engine {
	return &Engine{
		merger: NewMerger(store, logger),
		logger: logging.NewComponentLogger(logger, "dedup"),
	}
}

// Pass runs every grouping phase over records, merging each group as it is
// found. A failed group is recorded and the pass continues.
func (e *Engine) Pass(ctx context.Context, records []performer.Record) PassResult {
	alive := make([]performer.Record, 0, len(records))
	for i := range records {
		alive = append(alive, *records[i].Clone())
	}
	var result PassResult
	for _, phase := range Phases() {
		groups := phase.Find(alive)
		if len(groups) == 0 {
			continue
		}
		e.logger.Info("duplicate groups found",
			logging.String("signal", string(phase.Signal)),
			logging.Int("groups", len(groups)),
		)
		for _, g := range groups {
			merge, err := e.merger.MergeGroup(ctx, g)
			alive = fold(alive, merge)
			if len(merge.Absorbed) > 0 {
				result.Merges = append(result.Merges, merge)
			}
			if err != nil {
				logging.WarnWithContext(e.logger, "duplicate merge failed", "dedup_merge_failed",
					logging.String("signal", string(g.Signal)),
					logging.Strings("performer_ids", g.IDs()),
					logging.String(logging.FieldErrorHint, "rerun once the catalog is reachable; merged fields are not rolled back"),
					logging.String(logging.FieldImpact, "group left partially merged"),
					logging.Error(err),
				)
				result.Failures = append(result.Failures, Failure{Signal: g.Signal, IDs: g.IDs(), Err: err})
			}
		}
	}
	result.Records = alive
	return result
}

// fold replaces the keeper with its merged state and drops absorbed records.
func fold(records []performer.Record, m Merge) []performer.Record {
	gone := make(map[string]struct{}, len(m.Absorbed))
	for _, id := range m.Absorbed {
		gone[id] = struct{}{}
	}
	out := records[:0]
	for _, r := range records {
		if _, ok := gone[r.ID]; ok {
			continue
		}
		if r.ID == m.KeeperID && m.Keeper.ID != "" {
			r = *m.Keeper.Clone()
		}
		out = append(out, r)
	}
	return out
}
