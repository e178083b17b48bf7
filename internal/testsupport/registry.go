package testsupport

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"performersync/internal/services"
	"performersync/internal/stashbox"
)

// Registry is an in-memory stash-box registry. Search matches any record
// whose name or alias contains the term, case-insensitively, mimicking the
// fuzzy search of a real registry.
type Registry struct {
	endpoint string

	mu         sync.Mutex
	records    []stashbox.Performer
	Searches   []string
	SearchErr  map[string]error
	FindErr    map[string]error
	FullLookup int
}

var _ stashbox.Registry = (*Registry)(nil)

// NewRegistry builds a registry serving records at endpoint.
func NewRegistry(endpoint string, records ...stashbox.Performer) *Registry {
	return &Registry{endpoint: endpoint, records: records}
}

func (r *Registry) Endpoint() string { return r.endpoint }

func (r *Registry) lookup(id string) (*stashbox.Performer, error) {
	if err := r.FindErr[id]; err != nil {
		return nil, err
	}
	for i := range r.records {
		if r.records[i].ID == id {
			p := r.records[i]
			return &p, nil
		}
	}
	return nil, services.Wrap(services.ErrNotFound, "stashbox", "find", fmt.Sprintf("performer %s not found", id), nil)
}

func (r *Registry) FindPerformer(_ context.Context, id string) (*stashbox.Performer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return &stashbox.Performer{ID: p.ID, Name: p.Name, Aliases: p.Aliases}, nil
}

func (r *Registry) FindPerformerFull(_ context.Context, id string) (*stashbox.Performer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FullLookup++
	return r.lookup(id)
}

func (r *Registry) SearchPerformers(_ context.Context, term string) ([]stashbox.Performer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Searches = append(r.Searches, term)
	if err := r.SearchErr[term]; err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(term))
	var out []stashbox.Performer
	for _, p := range r.records {
		hit := strings.Contains(strings.ToLower(p.Name), needle)
		for _, alias := range p.Aliases {
			hit = hit || strings.Contains(strings.ToLower(alias), needle)
		}
		if hit {
			out = append(out, stashbox.Performer{ID: p.ID, Name: p.Name, Aliases: p.Aliases})
		}
	}
	return out, nil
}
