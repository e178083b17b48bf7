package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"performersync/internal/catalog"
	"performersync/internal/graphql"
	"performersync/internal/performer"
	"performersync/internal/services"
)

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func newCatalogServer(t *testing.T, handle func(req gqlRequest) string) (*catalog.Client, *[]gqlRequest) {
	t.Helper()
	var seen []gqlRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		seen = append(seen, req)
		_, _ = w.Write([]byte(handle(req)))
	}))
	t.Cleanup(server.Close)
	return catalog.NewClient(server.URL+"/graphql", "key", nil), &seen
}

func TestListPerformersDecodesRecords(t *testing.T) {
	client, _ := newCatalogServer(t, func(req gqlRequest) string {
		assert.Contains(t, req.Query, "per_page: -1")
		return `{"data":{"findPerformers":{"count":1,"performers":[{
			"id":"1","name":"田中花子","alias_list":["花子"],"height_cm":null,
			"tattoos":"left arm: rose","urls":["https://x.example"],
			"stash_ids":[{"endpoint":"https://javstash.org/graphql","stash_id":"A1"}]
		}]}}}`
	})

	records, err := client.ListPerformers(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "田中花子", r.Name)
	assert.Equal(t, 0, r.HeightCm)
	assert.Equal(t, []performer.StashID{{Endpoint: "https://javstash.org/graphql", StashID: "A1"}}, r.StashIDs)
}

func TestUpdatePerformerSendsOnlySetFields(t *testing.T) {
	client, seen := newCatalogServer(t, func(gqlRequest) string {
		return `{"data":{"performerUpdate":{"id":"1"}}}`
	})

	err := client.UpdatePerformer(context.Background(), performer.Patch{
		ID:        "1",
		Name:      performer.Str("Hanako T."),
		AliasList: []string{"田中花子"},
	})
	require.NoError(t, err)
	require.Len(t, *seen, 1)
	input := (*seen)[0].Variables["input"].(map[string]any)
	assert.Equal(t, map[string]any{"id": "1", "name": "Hanako T.", "alias_list": []any{"田中花子"}}, input)
	assert.Contains(t, (*seen)[0].Query, "performerUpdate")
}

func TestUpdatePerformerRequiresID(t *testing.T) {
	client, seen := newCatalogServer(t, func(gqlRequest) string { return `{}` })
	require.Error(t, client.UpdatePerformer(context.Background(), performer.Patch{}))
	assert.Empty(t, *seen)
}

func TestStashBoxes(t *testing.T) {
	client, _ := newCatalogServer(t, func(gqlRequest) string {
		return `{"data":{"configuration":{"general":{"stashBoxes":[
			{"endpoint":"https://javstash.org/graphql","api_key":"k1","name":"JAVStash"},
			{"endpoint":"https://stashdb.org/graphql","api_key":"k2","name":"StashDB"}
		]}}}}`
	})
	boxes, err := client.StashBoxes(context.Background())
	require.NoError(t, err)
	require.Len(t, boxes, 2)
	assert.Equal(t, "k2", boxes[1].APIKey)
}

func TestFindAssociationsPages(t *testing.T) {
	const total = 130
	client, seen := newCatalogServer(t, func(req gqlRequest) string {
		filter := req.Variables["filter"].(map[string]any)
		page := int(filter["page"].(float64))
		perf := req.Variables["performer_filter"].(map[string]any)["performers"].(map[string]any)
		assert.Equal(t, "INCLUDES", perf["modifier"])
		start := (page - 1) * 100
		end := min(start+100, total)
		nodes := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			nodes = append(nodes, fmt.Sprintf(`{"id":"s%d","performers":[{"id":"9"},{"id":"2"}]}`, i))
		}
		return fmt.Sprintf(`{"data":{"findScenes":{"count":%d,"scenes":[%s]}}}`, total, strings.Join(nodes, ","))
	})

	got, err := client.FindAssociations(context.Background(), catalog.KindScene, "2")
	require.NoError(t, err)
	assert.Len(t, got, total)
	assert.Len(t, *seen, 2)
	assert.Equal(t, []string{"9", "2"}, got[0].PerformerIDs)
	assert.Equal(t, catalog.KindScene, got[0].Kind)
}

func TestFindAssociationsRejectsMalformedCount(t *testing.T) {
	client, _ := newCatalogServer(t, func(gqlRequest) string {
		return `{"data":{"findScenes":{"count":"many","scenes":[]}}}`
	})

	_, err := client.FindAssociations(context.Background(), catalog.KindScene, "2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrValidation))
}

func TestCatalogReadsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	client := catalog.NewClient(server.URL+"/graphql", "key", nil,
		graphql.WithRetryMaxAttempts(5),
		graphql.WithSleeper(func(time.Duration) {}),
	)

	_, err := client.ListPerformers(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrTransient))
	assert.Equal(t, int32(1), calls.Load())

	_, err = client.FindAssociations(context.Background(), catalog.KindImage, "2")
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRewriteAssociationUsesKindMutation(t *testing.T) {
	client, seen := newCatalogServer(t, func(gqlRequest) string {
		return `{"data":{"galleryUpdate":{"id":"g1"}}}`
	})
	require.NoError(t, client.RewriteAssociation(context.Background(), catalog.KindGallery, "g1", []string{"1"}))
	require.Len(t, *seen, 1)
	assert.Contains(t, (*seen)[0].Query, "galleryUpdate")
	input := (*seen)[0].Variables["input"].(map[string]any)
	assert.Equal(t, []any{"1"}, input["performer_ids"])

	require.Error(t, client.RewriteAssociation(context.Background(), catalog.Kind("movie"), "m1", nil))
}

func TestReplacePerformer(t *testing.T) {
	out, changed := catalog.ReplacePerformer([]string{"1", "2", "3"}, "2", "9")
	assert.True(t, changed)
	assert.Equal(t, []string{"1", "9", "3"}, out)

	out, changed = catalog.ReplacePerformer([]string{"9", "2"}, "2", "9")
	assert.True(t, changed)
	assert.Equal(t, []string{"9"}, out)

	out, changed = catalog.ReplacePerformer([]string{"1"}, "2", "9")
	assert.False(t, changed)
	assert.Equal(t, []string{"1"}, out)
}
