package namesync_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"performersync/internal/namesync"
	"performersync/internal/performer"
	"performersync/internal/services"
	"performersync/internal/stashbox"
	"performersync/internal/testsupport"
)

const (
	regA = "https://javstash.org/graphql"
	regB = "https://stashdb.org/graphql"
)

func nativeLinked(id, name string, aliases ...string) *performer.Record {
	return &performer.Record{
		ID:        id,
		Name:      name,
		AliasList: aliases,
		StashIDs:  []performer.StashID{{Endpoint: regA, StashID: "A1"}},
	}
}

func registries(native []stashbox.Performer, canonical []stashbox.Performer) (*testsupport.Registry, *testsupport.Registry) {
	return testsupport.NewRegistry(regA, native...), testsupport.NewRegistry(regB, canonical...)
}

func TestPlanRenamesAndLinksOnCanonicalMatch(t *testing.T) {
	a, b := registries(
		[]stashbox.Performer{{ID: "A1", Name: "田中花子", Aliases: []string{"Hanako Tanaka", "花子"}}},
		[]stashbox.Performer{{ID: "B9", Name: "Hanako T.", Aliases: []string{"Hanako Tanaka"}}},
	)
	rec := nativeLinked("1", "田中花子")

	plan, err := namesync.New(a, b, nil).Plan(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeUpdated, plan.Outcome)
	assert.True(t, plan.Matched)
	assert.True(t, plan.Linked)
	assert.False(t, plan.Fallback)
	assert.Equal(t, "Hanako Tanaka", plan.Match.Candidate)

	p := plan.Patch
	assert.Equal(t, "1", p.ID)
	assert.Equal(t, "Hanako T.", *p.Name)
	assert.Equal(t, []string{"田中花子", "Hanako Tanaka"}, p.AliasList)
	assert.Equal(t, []performer.StashID{{Endpoint: regA, StashID: "A1"}, {Endpoint: regB, StashID: "B9"}}, p.StashIDs)
}

func TestPlanFallsBackToFirstCandidate(t *testing.T) {
	a, b := registries(
		[]stashbox.Performer{{ID: "A1", Name: "田中花子", Aliases: []string{"花子", "Hanako Tanaka", "Tanaka Hanako"}}},
		[]stashbox.Performer{{ID: "B1", Name: "Someone Else"}},
	)
	rec := nativeLinked("1", "田中花子")

	plan, err := namesync.New(a, b, nil).Plan(context.Background(), rec)
	require.NoError(t, err)
	assert.False(t, plan.Matched)
	assert.True(t, plan.Fallback)
	assert.False(t, plan.Linked)
	assert.Equal(t, "Hanako Tanaka", *plan.Patch.Name)
	assert.Equal(t, []string{"田中花子"}, plan.Patch.AliasList)
	assert.Equal(t, []performer.StashID{{Endpoint: regA, StashID: "A1"}}, plan.Patch.StashIDs)
	assert.Equal(t, []string{"Hanako Tanaka", "Tanaka Hanako"}, b.Searches)
}

func TestPlanRenamesAlreadyLatinRecordToCanonicalName(t *testing.T) {
	a, b := registries(
		[]stashbox.Performer{{ID: "A1", Name: "田中花子"}},
		[]stashbox.Performer{{ID: "B9", Name: "Hanako T.", Aliases: []string{"Hanako Tanaka"}}},
	)
	rec := nativeLinked("1", "Hanako Tanaka", "花子")

	plan, err := namesync.New(a, b, nil).Plan(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "Hanako T.", *plan.Patch.Name)
	assert.Equal(t, []string{"花子", "Hanako Tanaka"}, plan.Patch.AliasList)
	assert.True(t, plan.Linked)
}

func TestPlanEnrichesFromCanonicalProfile(t *testing.T) {
	a, b := registries(
		[]stashbox.Performer{{ID: "A1", Name: "Yui"}},
		[]stashbox.Performer{{
			ID:      "B3",
			Name:    "Yui",
			Aliases: []string{"Yui H."},
			Gender:  "FEMALE",
			Country: "JP",
			Height:  "160",
			Tattoos: []performer.BodyMod{{Location: "left arm", Description: "rose"}, {Location: "right wrist", Description: "star"}},
			URLs:    []stashbox.URL{{URL: "https://yui.example", Type: "HOME"}, {URL: "https://x.example/yui", Type: "SOCIAL"}},
		}},
	)
	rec := nativeLinked("1", "Yui")
	rec.Tattoos = "left arm: rose"
	rec.Gender = "FEMALE"
	rec.URLs = []string{"https://x.example/yui/"}

	plan, err := namesync.New(a, b, nil).Plan(context.Background(), rec)
	require.NoError(t, err)
	p := plan.Patch
	assert.Equal(t, "Yui", *p.Name)
	assert.Nil(t, p.Gender)
	assert.Equal(t, "JP", *p.Country)
	assert.Equal(t, 160, *p.HeightCm)
	assert.Equal(t, "left arm: rose, right wrist: star", *p.Tattoos)
	assert.Equal(t, "https://yui.example", *p.URL)
	assert.Equal(t, []string{"https://x.example/yui/", "https://yui.example"}, p.URLs)
	assert.Equal(t, []string{"Yui H."}, p.AliasList)
	assert.Equal(t, []string{"Yui H."}, plan.Aliases)
	assert.Contains(t, plan.Enriched, "tattoos")
}

func TestPlanSkips(t *testing.T) {
	a, b := registries(
		[]stashbox.Performer{{ID: "A1", Name: "田中花子", Aliases: []string{"花子"}}},
		nil,
	)
	s := namesync.New(a, b, nil)

	plan, err := s.Plan(context.Background(), &performer.Record{ID: "1", Name: "Aoi"})
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeSkippedNotLinked, plan.Outcome)

	multi := nativeLinked("2", "田中花子")
	multi.StashIDs = append(multi.StashIDs, performer.StashID{Endpoint: regB, StashID: "B1"})
	plan, err = s.Plan(context.Background(), multi)
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeSkippedMultiID, plan.Outcome)

	plan, err = s.Plan(context.Background(), nativeLinked("3", "田中花子"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrNoTranslatableName))
	assert.Equal(t, services.OutcomeSkippedNoAlias, plan.Outcome)
}

func TestPlanNoChangeNeeded(t *testing.T) {
	a, b := registries(
		[]stashbox.Performer{{ID: "A1", Name: "田中花子", Aliases: []string{"Hanako Tanaka"}}},
		nil,
	)
	rec := nativeLinked("1", "Hanako Tanaka", "田中花子")

	plan, err := namesync.New(a, b, nil).Plan(context.Background(), rec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrNoChangeNeeded))
	assert.Equal(t, services.OutcomeSkippedNoChange, plan.Outcome)
	assert.True(t, plan.Patch.IsEmpty())
}

func TestPlanWithoutCanonicalRegistry(t *testing.T) {
	a := testsupport.NewRegistry(regA, stashbox.Performer{ID: "A1", Name: "Hanako Tanaka"})
	plan, err := namesync.New(a, nil, nil).Plan(context.Background(), nativeLinked("1", "田中花子"))
	require.NoError(t, err)
	assert.Equal(t, "Hanako Tanaka", *plan.Patch.Name)
	assert.False(t, plan.Matched)
}

func TestPlanNativeRecordMissingIsError(t *testing.T) {
	a, b := registries(nil, nil)
	plan, err := namesync.New(a, b, nil).Plan(context.Background(), nativeLinked("1", "田中花子"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrNotFound))
	assert.Equal(t, services.OutcomeError, plan.Outcome)
}

func TestPlanTransientSearchFailureIsError(t *testing.T) {
	a, b := registries(
		[]stashbox.Performer{{ID: "A1", Name: "Hanako Tanaka"}},
		nil,
	)
	b.SearchErr = map[string]error{"Hanako Tanaka": services.Wrap(services.ErrTransient, "graphql", "search", "", nil)}
	plan, err := namesync.New(a, b, nil).Plan(context.Background(), nativeLinked("1", "田中花子"))
	require.Error(t, err)
	assert.Equal(t, services.OutcomeError, plan.Outcome)
	assert.True(t, plan.Patch.IsEmpty())
}
