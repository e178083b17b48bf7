package catalog

import (
	"context"
	"fmt"
	"slices"

	"performersync/internal/performer"
	"performersync/internal/stashbox"
)

// Kind names a content type that references performers.
type Kind string

const (
	KindScene   Kind = "scene"
	KindGallery Kind = "gallery"
	KindImage   Kind = "image"
)

// Kinds lists every association kind in the order merges rewrite them.
func Kinds() []Kind {
	return []Kind{KindScene, KindGallery, KindImage}
}

// Association is a content entity and the performers it references.
type Association struct {
	Kind         Kind
	ID           string
	PerformerIDs []string
}

// Key identifies the association across kinds.
func (a Association) Key() string {
	return fmt.Sprintf("%s:%s", a.Kind, a.ID)
}

// References reports whether the association lists performerID.
func (a Association) References(performerID string) bool {
	return slices.Contains(a.PerformerIDs, performerID)
}

// Store is the catalog surface used by the sync and merge stages.
type Store interface {
	ListPerformers(ctx context.Context) ([]performer.Record, error)
	UpdatePerformer(ctx context.Context, patch performer.Patch) error
	FindAssociations(ctx context.Context, kind Kind, performerID string) ([]Association, error)
	RewriteAssociation(ctx context.Context, kind Kind, id string, performerIDs []string) error
	DeletePerformer(ctx context.Context, id string) error
	StashBoxes(ctx context.Context) ([]stashbox.Box, error)
}

// ReplacePerformer returns ids with from replaced by to, dropping the
// duplicate when to is already listed. The second return reports whether
// anything changed.
func ReplacePerformer(ids []string, from, to string) ([]string, bool) {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	changed := false
	for _, id := range ids {
		if id == from {
			id = to
			changed = true
		}
		if _, ok := seen[id]; ok {
			changed = true
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, changed
}
