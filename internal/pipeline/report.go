package pipeline

import (
	"time"

	"performersync/internal/dedup"
	"performersync/internal/services"
)

// Stage names a step of the run.
type Stage string

const (
	StageIdentify  Stage = "identify_registries"
	StageFetch     Stage = "fetch"
	StagePreMerge  Stage = "pre_merge"
	StageSync      Stage = "sync"
	StagePostMerge Stage = "post_merge"
	StageDone      Stage = "done"
)

// EventKind classifies report events.
type EventKind string

const (
	EventUpdate EventKind = "update"
	EventMerge  EventKind = "merge"
	EventSkip   EventKind = "skip"
	EventError  EventKind = "error"
	EventNotice EventKind = "notice"
)

// Event is one structured entry in the run report.
type Event struct {
	Time        time.Time `json:"time"`
	Stage       Stage     `json:"stage"`
	Kind        EventKind `json:"kind"`
	PerformerID string    `json:"performer_id,omitempty"`
	Name        string    `json:"name,omitempty"`
	Message     string    `json:"message"`
	Fields      []string  `json:"fields,omitempty"`
	Related     []string  `json:"related,omitempty"`
}

// Counters are the run-wide tallies.
type Counters struct {
	Performers        int `json:"performers"`
	Eligible          int `json:"eligible"`
	Updated           int `json:"updated"`
	Fallback          int `json:"fallback"`
	SkippedMultiID    int `json:"skipped_multi_id"`
	SkippedNoAlias    int `json:"skipped_no_alias"`
	SkippedNoChange   int `json:"skipped_no_change"`
	SkippedNotLinked  int `json:"skipped_not_linked"`
	Errors            int `json:"errors"`
	MergeGroups       int `json:"merge_groups"`
	Merged            int `json:"merged"`
	MergeFailures     int `json:"merge_failures"`
	AssociationsMoved int `json:"associations_moved"`
}

// Status is the terminal state of a run.
type Status string

const (
	StatusOK                   Status = "ok"
	StatusConfigurationMissing Status = "configuration_missing"
	StatusFailed               Status = "failed"
)

// Report is the result of a run.
type Report struct {
	RunID      string    `json:"run_id"`
	Command    string    `json:"command"`
	DryRun     bool      `json:"dry_run"`
	Status     Status    `json:"status"`
	Native     string    `json:"native,omitempty"`
	Canonical  string    `json:"canonical,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Counters   Counters  `json:"counters"`
	Events     []Event   `json:"events"`
}

func (r *Report) add(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	r.Events = append(r.Events, e)
}

// Count bumps the counter for a per-performer outcome.
func (r *Report) Count(outcome services.Outcome) {
	switch outcome {
	case services.OutcomeUpdated:
		r.Counters.Updated++
	case services.OutcomeSkippedMultiID:
		r.Counters.SkippedMultiID++
	case services.OutcomeSkippedNoAlias:
		r.Counters.SkippedNoAlias++
	case services.OutcomeSkippedNoChange:
		r.Counters.SkippedNoChange++
	case services.OutcomeSkippedNotLinked:
		r.Counters.SkippedNotLinked++
	default:
		r.Counters.Errors++
	}
}

func (r *Report) addPass(stage Stage, pass dedup.PassResult) {
	for _, m := range pass.Merges {
		r.Counters.MergeGroups++
		r.Counters.Merged += len(m.Absorbed)
		r.Counters.AssociationsMoved += m.Moved
		r.add(Event{
			Stage:       stage,
			Kind:        EventMerge,
			PerformerID: m.KeeperID,
			Name:        m.Keeper.Name,
			Message:     string(m.Signal),
			Related:     m.Absorbed,
		})
	}
	for _, f := range pass.Failures {
		r.Counters.MergeFailures++
		r.add(Event{
			Stage:   stage,
			Kind:    EventError,
			Message: f.Err.Error(),
			Related: f.IDs,
		})
	}
}

// Changes counts the catalog writes the run made or, in a dry run, would
// have made.
func (r *Report) Changes() int {
	return r.Counters.Updated + r.Counters.Merged
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
