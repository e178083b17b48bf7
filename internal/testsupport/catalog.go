package testsupport

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"performersync/internal/catalog"
	"performersync/internal/performer"
	"performersync/internal/services"
	"performersync/internal/stashbox"
)

// Catalog is an in-memory catalog.Store. Records keep insertion order and
// every write is counted so tests can assert on side effects.
type Catalog struct {
	mu           sync.Mutex
	records      []performer.Record
	associations []catalog.Association
	boxes        []stashbox.Box

	Updates  []performer.Patch
	Deletes  []string
	Rewrites int

	FailUpdate map[string]error
	FailDelete map[string]error
	FailBoxes  error
}

var _ catalog.Store = (*Catalog)(nil)

// NewCatalog seeds a catalog with records and configured registries.
func NewCatalog(boxes []stashbox.Box, records ...performer.Record) *Catalog {
	c := &Catalog{boxes: boxes}
	for _, r := range records {
		c.records = append(c.records, *r.Clone())
	}
	return c
}

// AddAssociation links a content entity to performers.
func (c *Catalog) AddAssociation(kind catalog.Kind, id string, performerIDs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.associations = append(c.associations, catalog.Association{Kind: kind, ID: id, PerformerIDs: performerIDs})
}

// Record returns a copy of the record with id.
func (c *Catalog) Record(id string) (performer.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.records {
		if r.ID == id {
			return *r.Clone(), true
		}
	}
	return performer.Record{}, false
}

// Associations returns a copy of every association.
func (c *Catalog) Associations() []catalog.Association {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]catalog.Association, 0, len(c.associations))
	for _, a := range c.associations {
		a.PerformerIDs = slices.Clone(a.PerformerIDs)
		out = append(out, a)
	}
	return out
}

// ResetCalls clears the recorded writes.
func (c *Catalog) ResetCalls() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Updates = nil
	c.Deletes = nil
	c.Rewrites = 0
}

func (c *Catalog) ListPerformers(context.Context) ([]performer.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]performer.Record, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, *r.Clone())
	}
	return out, nil
}

func (c *Catalog) UpdatePerformer(_ context.Context, patch performer.Patch) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.FailUpdate[patch.ID]; err != nil {
		return err
	}
	for i := range c.records {
		if c.records[i].ID == patch.ID {
			patch.Apply(&c.records[i])
			c.Updates = append(c.Updates, patch)
			return nil
		}
	}
	return services.Wrap(services.ErrSemanticRejection, "catalog", "update performer", fmt.Sprintf("performer %s not found", patch.ID), nil)
}

func (c *Catalog) DeletePerformer(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.FailDelete[id]; err != nil {
		return err
	}
	for i := range c.records {
		if c.records[i].ID == id {
			c.records = slices.Delete(c.records, i, i+1)
			c.Deletes = append(c.Deletes, id)
			return nil
		}
	}
	return services.Wrap(services.ErrSemanticRejection, "catalog", "delete performer", fmt.Sprintf("performer %s not found", id), nil)
}

func (c *Catalog) FindAssociations(_ context.Context, kind catalog.Kind, performerID string) ([]catalog.Association, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []catalog.Association
	for _, a := range c.associations {
		if a.Kind == kind && a.References(performerID) {
			a.PerformerIDs = slices.Clone(a.PerformerIDs)
			out = append(out, a)
		}
	}
	return out, nil
}

func (c *Catalog) RewriteAssociation(_ context.Context, kind catalog.Kind, id string, performerIDs []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.associations {
		if c.associations[i].Kind == kind && c.associations[i].ID == id {
			c.associations[i].PerformerIDs = slices.Clone(performerIDs)
			c.Rewrites++
			return nil
		}
	}
	return services.Wrap(services.ErrSemanticRejection, "catalog", "rewrite association", fmt.Sprintf("%s %s not found", kind, id), nil)
}

func (c *Catalog) StashBoxes(context.Context) ([]stashbox.Box, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailBoxes != nil {
		return nil, c.FailBoxes
	}
	return slices.Clone(c.boxes), nil
}
