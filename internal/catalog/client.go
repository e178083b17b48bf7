package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"performersync/internal/graphql"
	"performersync/internal/logging"
	"performersync/internal/performer"
	"performersync/internal/services"
	"performersync/internal/stashbox"
)

const associationPageSize = 100

// Client is the GraphQL-backed Store.
type Client struct {
	gql    *graphql.Client
	logger *slog.Logger
}

var _ Store = (*Client)(nil)

// NewClient builds a catalog client posting to endpoint (the full /graphql URL).
// Catalog reads make a single attempt whatever retry options are passed;
// only registry reads are retried.
func NewClient(endpoint, apiKey string, logger *slog.Logger, opts ...graphql.Option) *Client {
	logger = logging.NewComponentLogger(logger, "catalog")
	opts = append([]graphql.Option{graphql.WithLogger(logger)}, opts...)
	opts = append(opts, graphql.WithRetryMaxAttempts(1))
	return &Client{
		gql:    graphql.NewClient(endpoint, apiKey, opts...),
		logger: logger,
	}
}

// ListPerformers returns every performer with the full field set.
func (c *Client) ListPerformers(ctx context.Context) ([]performer.Record, error) {
	var data struct {
		FindPerformers struct {
			Count      int                `json:"count"`
			Performers []performer.Record `json:"performers"`
		} `json:"findPerformers"`
	}
	if err := c.gql.Query(ctx, "list performers", allPerformersQuery, nil, &data); err != nil {
		return nil, err
	}
	c.logger.Debug("catalog performers listed", logging.Int("count", len(data.FindPerformers.Performers)))
	return data.FindPerformers.Performers, nil
}

// UpdatePerformer sends the fields set on patch. Writes are not retried.
func (c *Client) UpdatePerformer(ctx context.Context, patch performer.Patch) error {
	if strings.TrimSpace(patch.ID) == "" {
		return services.Wrap(services.ErrValidation, "catalog", "update performer", "performer id required", nil)
	}
	return c.gql.Mutate(ctx, "performer update", performerUpdateMutation, map[string]any{"input": patch}, nil)
}

// DeletePerformer destroys the performer with id.
func (c *Client) DeletePerformer(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return services.Wrap(services.ErrValidation, "catalog", "delete performer", "performer id required", nil)
	}
	return c.gql.Mutate(ctx, "performer destroy", performerDestroyMutation, map[string]any{"input": map[string]any{"id": id}}, nil)
}

// StashBoxes returns the stash-box registries configured in the catalog.
func (c *Client) StashBoxes(ctx context.Context) ([]stashbox.Box, error) {
	var data struct {
		Configuration struct {
			General struct {
				StashBoxes []stashbox.Box `json:"stashBoxes"`
			} `json:"general"`
		} `json:"configuration"`
	}
	if err := c.gql.Query(ctx, "stash boxes", stashBoxesQuery, nil, &data); err != nil {
		return nil, err
	}
	return data.Configuration.General.StashBoxes, nil
}

type associationNode struct {
	ID         string `json:"id"`
	Performers []struct {
		ID string `json:"id"`
	} `json:"performers"`
}

// FindAssociations pages through every content entity of kind that
// references performerID.
func (c *Client) FindAssociations(ctx context.Context, kind Kind, performerID string) ([]Association, error) {
	q, ok := queriesByKind[kind]
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "catalog", "find associations", fmt.Sprintf("unknown kind %q", kind), nil)
	}
	var out []Association
	for page := 1; ; page++ {
		vars := map[string]any{
			"filter": map[string]any{"page": page, "per_page": associationPageSize},
			"performer_filter": map[string]any{
				"performers": map[string]any{"value": []string{performerID}, "modifier": "INCLUDES"},
			},
		}
		var data map[string]json.RawMessage
		if err := c.gql.Query(ctx, "find "+string(kind)+"s", q.find, vars, &data); err != nil {
			return nil, err
		}
		var result map[string]json.RawMessage
		if err := json.Unmarshal(data[q.root], &result); err != nil {
			return nil, services.Wrap(services.ErrValidation, "catalog", "find associations", "decode "+q.root, err)
		}
		var count int
		if raw, ok := result["count"]; ok {
			if err := json.Unmarshal(raw, &count); err != nil {
				return nil, services.Wrap(services.ErrValidation, "catalog", "find associations", "decode count", err)
			}
		}
		var nodes []associationNode
		if raw, ok := result[q.listKey]; ok {
			if err := json.Unmarshal(raw, &nodes); err != nil {
				return nil, services.Wrap(services.ErrValidation, "catalog", "find associations", "decode "+q.listKey, err)
			}
		}
		for _, node := range nodes {
			ids := make([]string, 0, len(node.Performers))
			for _, p := range node.Performers {
				ids = append(ids, p.ID)
			}
			out = append(out, Association{Kind: kind, ID: node.ID, PerformerIDs: ids})
		}
		if len(nodes) < associationPageSize || len(out) >= count {
			return out, nil
		}
	}
}

// RewriteAssociation replaces the performer list of one content entity.
func (c *Client) RewriteAssociation(ctx context.Context, kind Kind, id string, performerIDs []string) error {
	q, ok := queriesByKind[kind]
	if !ok {
		return services.Wrap(services.ErrValidation, "catalog", "rewrite association", fmt.Sprintf("unknown kind %q", kind), nil)
	}
	if performerIDs == nil {
		performerIDs = []string{}
	}
	input := map[string]any{"id": id, "performer_ids": performerIDs}
	return c.gql.Mutate(ctx, q.updateName, q.update, map[string]any{"input": input}, nil)
}
