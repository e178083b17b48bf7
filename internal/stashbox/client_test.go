package stashbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"performersync/internal/graphql"
	"performersync/internal/services"
	"performersync/internal/stashbox"
)

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func newRegistry(t *testing.T, handle func(req gqlRequest) string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/graphql" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req gqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(handle(req)))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestFindPerformerMemoizes(t *testing.T) {
	server, calls := newRegistry(t, func(req gqlRequest) string {
		assert.Equal(t, "A1", req.Variables["id"])
		return `{"data":{"findPerformer":{"id":"A1","name":"田中花子","aliases":["Hanako Tanaka","花子"]}}}`
	})
	client := stashbox.NewClient(stashbox.Box{Endpoint: server.URL + "/", Name: "JAVStash"}, nil)

	for range 2 {
		p, err := client.FindPerformer(context.Background(), "A1")
		require.NoError(t, err)
		assert.Equal(t, "田中花子", p.Name)
		assert.Equal(t, []string{"Hanako Tanaka", "花子"}, p.Aliases)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestFindPerformerNotFound(t *testing.T) {
	server, _ := newRegistry(t, func(gqlRequest) string {
		return `{"data":{"findPerformer":null}}`
	})
	client := stashbox.NewClient(stashbox.Box{Endpoint: server.URL}, nil)

	_, err := client.FindPerformer(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrNotFound))
}

func TestSearchPerformersSendsInputTerm(t *testing.T) {
	server, calls := newRegistry(t, func(req gqlRequest) string {
		input, _ := req.Variables["input"].(map[string]any)
		assert.Equal(t, "Hanako Tanaka", input["term"])
		assert.Contains(t, req.Query, "searchPerformer(input: $input)")
		return `{"data":{"searchPerformer":[{"id":"B9","name":"Hanako T.","aliases":["Hanako Tanaka"]}]}}`
	})
	client := stashbox.NewClient(stashbox.Box{Endpoint: server.URL}, nil)

	results, err := client.SearchPerformers(context.Background(), " Hanako Tanaka ")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].MatchesTerm("hanako tanaka"))
	assert.False(t, results[0].MatchesTerm("Hanako"))

	_, err = client.SearchPerformers(context.Background(), "HANAKO TANAKA")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	empty, err := client.SearchPerformers(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFindPerformerFullDecodesProfile(t *testing.T) {
	server, _ := newRegistry(t, func(req gqlRequest) string {
		assert.Contains(t, req.Query, "breast_type")
		return `{"data":{"findPerformer":{
			"id":"B9","name":"Hanako T.","aliases":[],
			"gender":"FEMALE","birth_date":{"date":"1995-04-01"},
			"height":158,"cup_size":"C","band_size":32,"waist_size":24,"hip_size":34,
			"breast_type":"NATURAL","career_start_year":2015,"career_end_year":null,
			"tattoos":[{"location":"left arm","description":"rose"}],
			"piercings":[],
			"urls":[{"url":"https://twitter.com/hanako","type":"SOCIAL"},{"url":"https://hanako.example","type":"HOME"}]
		}}}`
	})
	client := stashbox.NewClient(stashbox.Box{Endpoint: server.URL + "/graphql"}, nil)

	p, err := client.FindPerformerFull(context.Background(), "B9")
	require.NoError(t, err)
	assert.Equal(t, "1995-04-01", p.BirthDate.String())
	height, ok := p.Height.Int()
	assert.True(t, ok)
	assert.Equal(t, 158, height)
	assert.Equal(t, "32", p.BandSize.String())
	assert.Equal(t, "2015", p.CareerStartYear.String())
	assert.Empty(t, p.CareerEndYear.String())
	assert.Equal(t, "https://hanako.example", p.HomeURL())
	assert.Equal(t, []string{"https://twitter.com/hanako", "https://hanako.example"}, p.URLList())
	require.Len(t, p.Tattoos, 1)
	assert.Equal(t, "left arm", p.Tattoos[0].Location)
}

func TestSemanticRejectionSurfaces(t *testing.T) {
	server, calls := newRegistry(t, func(gqlRequest) string {
		return `{"errors":[{"message":"invalid id"}]}`
	})
	client := stashbox.NewClient(stashbox.Box{Endpoint: server.URL}, nil, graphql.WithRetryMaxAttempts(3))

	_, err := client.FindPerformer(context.Background(), "bad")
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrSemanticRejection))
	assert.Equal(t, int32(1), calls.Load())
}

func TestTextDecoding(t *testing.T) {
	var v struct {
		A stashbox.Text `json:"a"`
		B stashbox.Text `json:"b"`
		C stashbox.Text `json:"c"`
		D stashbox.Text `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":" 160 ","b":{"date":"2001-02-03"},"c":null,"d":"tall"}`), &v))
	n, ok := v.A.Int()
	assert.True(t, ok)
	assert.Equal(t, 160, n)
	assert.Equal(t, "2001-02-03", v.B.String())
	assert.Empty(t, v.C.String())
	_, ok = v.D.Int()
	assert.False(t, ok)
}

func TestHomeURLFallsBackToFirst(t *testing.T) {
	p := stashbox.Performer{URLs: []stashbox.URL{{URL: "https://a.example", Type: "SOCIAL"}}}
	assert.Equal(t, "https://a.example", p.HomeURL())
	assert.Empty(t, (&stashbox.Performer{}).HomeURL())
}

func TestIdentify(t *testing.T) {
	boxes := []stashbox.Box{
		{Endpoint: "https://fansdb.cc/graphql", Name: "FansDB"},
		{Endpoint: "https://stashdb.org/graphql", Name: "StashDB"},
		{Endpoint: "https://jav.example/graphql", Name: "JAVStash"},
	}
	native, canonical := stashbox.Identify(boxes, "javstash", "stashdb")
	require.NotNil(t, native)
	require.NotNil(t, canonical)
	assert.Equal(t, "JAVStash", native.Name)
	assert.Equal(t, "https://stashdb.org/graphql", canonical.Endpoint)

	native, canonical = stashbox.Identify(boxes[:2], "javstash", "stashdb")
	assert.Nil(t, native)
	assert.NotNil(t, canonical)
}

func TestEnsureGraphQL(t *testing.T) {
	for _, in := range []string{"https://stashdb.org", "https://stashdb.org/", "https://stashdb.org/graphql", "https://stashdb.org/graphql/"} {
		assert.Equal(t, "https://stashdb.org/graphql", stashbox.EnsureGraphQL(in), in)
	}
	assert.True(t, strings.HasSuffix(stashbox.EnsureGraphQL("http://localhost:9998"), "/graphql"))
}
