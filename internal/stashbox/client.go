package stashbox

import (
	"context"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"performersync/internal/graphql"
	"performersync/internal/logging"
	"performersync/internal/services"
	"performersync/internal/textutil"
)

const (
	memoExpiration      = 30 * time.Minute
	memoCleanupInterval = time.Hour
)

const findPerformerQuery = `
query FindPerformer($id: ID!) {
	findPerformer(id: $id) {
		id
		name
		aliases
	}
}`

const searchPerformerQuery = `
query SearchPerformer($input: PerformerSearchInput!) {
	searchPerformer(input: $input) {
		id
		name
		aliases
	}
}`

const findPerformerFullQuery = `
query FindPerformerFull($id: ID!) {
	findPerformer(id: $id) {
		id
		name
		disambiguation
		aliases
		gender
		birth_date
		ethnicity
		country
		eye_color
		hair_color
		height
		cup_size
		band_size
		waist_size
		hip_size
		breast_type
		career_start_year
		career_end_year
		tattoos { location description }
		piercings { location description }
		urls { url type }
	}
}`

// Box is a stash-box registry as configured in the catalog.
type Box struct {
	Endpoint string `json:"endpoint"`
	APIKey   string `json:"api_key"`
	Name     string `json:"name"`
}

// Label returns the configured name, falling back to the endpoint.
func (b Box) Label() string {
	if name := strings.TrimSpace(b.Name); name != "" {
		return name
	}
	return b.Endpoint
}

// Identify picks the native registry (endpoint or name containing
// nativeMatch) and the canonical registry (containing canonicalMatch) from
// boxes. A box that matches the native marker is never considered canonical.
// The last matching box wins for each role.
func Identify(boxes []Box, nativeMatch, canonicalMatch string) (native, canonical *Box) {
	nativeMatch = strings.ToLower(strings.TrimSpace(nativeMatch))
	canonicalMatch = strings.ToLower(strings.TrimSpace(canonicalMatch))
	for i := range boxes {
		box := &boxes[i]
		endpoint := strings.ToLower(box.Endpoint)
		name := strings.ToLower(box.Name)
		switch {
		case nativeMatch != "" && (strings.Contains(endpoint, nativeMatch) || strings.Contains(name, nativeMatch)):
			native = box
		case canonicalMatch != "" && (strings.Contains(endpoint, canonicalMatch) || strings.Contains(name, canonicalMatch)):
			canonical = box
		}
	}
	return native, canonical
}

// EnsureGraphQL returns endpoint with a single trailing /graphql path.
func EnsureGraphQL(endpoint string) string {
	ep := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if !strings.HasSuffix(ep, "/graphql") {
		ep += "/graphql"
	}
	return ep
}

// Client queries one stash-box registry.
type Client struct {
	box    Box
	gql    *graphql.Client
	memo   *gocache.Cache
	logger *slog.Logger
}

// NewClient builds a registry client for box. Transport options configure
// timeout, retry, and throttling.
func NewClient(box Box, logger *slog.Logger, opts ...graphql.Option) *Client {
	logger = logging.NewComponentLogger(logger, "stashbox").With(logging.String(logging.FieldEndpoint, box.Endpoint))
	opts = append([]graphql.Option{graphql.WithLogger(logger)}, opts...)
	return &Client{
		box:    box,
		gql:    graphql.NewClient(EnsureGraphQL(box.Endpoint), box.APIKey, opts...),
		memo:   gocache.New(memoExpiration, memoCleanupInterval),
		logger: logger,
	}
}

// Endpoint returns the registry endpoint as configured.
func (c *Client) Endpoint() string {
	return c.box.Endpoint
}

// FindPerformer returns the summary record (id, name, aliases) for id.
func (c *Client) FindPerformer(ctx context.Context, id string) (*Performer, error) {
	return c.find(ctx, "find", findPerformerQuery, id)
}

// FindPerformerFull returns the full profile for id.
func (c *Client) FindPerformerFull(ctx context.Context, id string) (*Performer, error) {
	return c.find(ctx, "full", findPerformerFullQuery, id)
}

func (c *Client) find(ctx context.Context, kind, query, id string) (*Performer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, services.Wrap(services.ErrValidation, "stashbox", kind, "performer id required", nil)
	}
	key := kind + ":" + id
	if cached, ok := c.memo.Get(key); ok {
		if p, ok := cached.(*Performer); ok {
			return p, nil
		}
	}
	var data struct {
		FindPerformer *Performer `json:"findPerformer"`
	}
	if err := c.gql.Query(ctx, "find performer", query, map[string]any{"id": id}, &data); err != nil {
		return nil, err
	}
	if data.FindPerformer == nil {
		return nil, services.Wrap(services.ErrNotFound, "stashbox", kind, "performer "+id+" not found on "+c.box.Label(), nil)
	}
	c.memo.SetDefault(key, data.FindPerformer)
	return data.FindPerformer, nil
}

// SearchPerformers returns the summary records matching term, in registry
// order.
func (c *Client) SearchPerformers(ctx context.Context, term string) ([]Performer, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	key := "search:" + textutil.Key(term)
	if cached, ok := c.memo.Get(key); ok {
		if results, ok := cached.([]Performer); ok {
			return results, nil
		}
	}
	var data struct {
		SearchPerformer []Performer `json:"searchPerformer"`
	}
	if err := c.gql.Query(ctx, "search performer", searchPerformerQuery, map[string]any{"input": map[string]any{"term": term}}, &data); err != nil {
		return nil, err
	}
	c.memo.SetDefault(key, data.SearchPerformer)
	c.logger.Debug("registry search",
		logging.String("term", term),
		logging.Int("results", len(data.SearchPerformer)),
	)
	return data.SearchPerformer, nil
}

// Registry is the read surface of a stash-box registry.
type Registry interface {
	Endpoint() string
	FindPerformer(ctx context.Context, id string) (*Performer, error)
	SearchPerformers(ctx context.Context, term string) ([]Performer, error)
	FindPerformerFull(ctx context.Context, id string) (*Performer, error)
}

var _ Registry = (*Client)(nil)
