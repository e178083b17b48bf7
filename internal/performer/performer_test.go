package performer_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"performersync/internal/performer"
)

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "https://stashdb.org", performer.NormalizeEndpoint("https://StashDB.org/graphql/"))
	assert.Equal(t, "https://stashdb.org", performer.NormalizeEndpoint("https://stashdb.org//"))
	assert.True(t, performer.EndpointMatches("https://javstash.org/graphql", "https://JAVSTASH.org"))
	assert.False(t, performer.EndpointMatches("https://javstash.org", "https://stashdb.org"))
}

func TestRecordStashIDFor(t *testing.T) {
	r := &performer.Record{StashIDs: []performer.StashID{
		{Endpoint: "https://javstash.org/graphql", StashID: "A1"},
		{Endpoint: "https://stashdb.org/graphql", StashID: "B9"},
	}}
	id, ok := r.StashIDFor("https://stashdb.org")
	require.True(t, ok)
	assert.Equal(t, "B9", id)
	assert.False(t, r.HasEndpoint("https://fansdb.cc"))
}

func TestUnionStashIDs(t *testing.T) {
	base := []performer.StashID{{Endpoint: "https://javstash.org/graphql", StashID: "A1"}}
	out, added := performer.UnionStashIDs(base, []performer.StashID{
		{Endpoint: "https://JAVSTASH.org", StashID: "A1"},
		{Endpoint: "https://stashdb.org/graphql", StashID: "B9"},
	})
	assert.True(t, added)
	assert.Equal(t, []performer.StashID{
		{Endpoint: "https://javstash.org/graphql", StashID: "A1"},
		{Endpoint: "https://stashdb.org/graphql", StashID: "B9"},
	}, out)

	_, added = performer.UnionStashIDs(out, base)
	assert.False(t, added)
}

func TestPatchJSONOmitsAbsentFieldsButKeepsEmptyLists(t *testing.T) {
	p := performer.Patch{ID: "7", Name: performer.Str("Hanako T."), AliasList: []string{}}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7","name":"Hanako T.","alias_list":[]}`, string(data))
}

func TestPatchApplyAndFields(t *testing.T) {
	r := &performer.Record{ID: "1", Name: "old", Country: "JP"}
	p := performer.Patch{
		Name:      performer.Str("new"),
		AliasList: []string{"old"},
		Gender:    performer.Str("FEMALE"),
		HeightCm:  performer.Int(158),
		URLs:      []string{"https://example.com"},
	}
	assert.Equal(t, []string{"name", "alias_list", "gender", "height_cm", "urls"}, p.Fields())
	assert.False(t, p.IsEmpty())

	p.Apply(r)
	assert.Equal(t, "new", r.Name)
	assert.Equal(t, []string{"old"}, r.AliasList)
	assert.Equal(t, "FEMALE", r.Gender)
	assert.Equal(t, "JP", r.Country)
	assert.Equal(t, 158, r.HeightCm)

	var empty performer.Patch
	assert.True(t, empty.IsEmpty())
}

func TestPatchMergeOverrides(t *testing.T) {
	p := performer.Patch{Name: performer.Str("a"), Country: performer.Str("JP")}
	p.Merge(performer.Patch{Name: performer.Str("b"), Tattoos: performer.Str("arm")})
	assert.Equal(t, "b", *p.Name)
	assert.Equal(t, "JP", *p.Country)
	assert.Equal(t, "arm", *p.Tattoos)
}

func TestFillScalarsNeverOverwrites(t *testing.T) {
	dst := &performer.Record{Gender: "FEMALE", HeightCm: 160}
	src := &performer.Record{Gender: "MALE", Country: "JP", HeightCm: 170, Details: "bio", EyeColor: " "}
	p := performer.FillScalars(dst, src)
	assert.Nil(t, p.Gender)
	assert.Nil(t, p.HeightCm)
	assert.Nil(t, p.EyeColor)
	require.NotNil(t, p.Country)
	assert.Equal(t, "JP", *p.Country)
	assert.Nil(t, p.Details, "details are never filled")
}

func TestScore(t *testing.T) {
	r := &performer.Record{
		Gender:    "FEMALE",
		HeightCm:  150,
		Tattoos:   "arm",
		AliasList: []string{"a", "b"},
		URLs:      []string{"u"},
		StashIDs:  []performer.StashID{{Endpoint: "e", StashID: "1"}},
	}
	assert.Equal(t, 3, performer.PopulatedFields(r))
	assert.Equal(t, 7, performer.Score(r))

	textOnly := &performer.Record{URL: "https://a.example", Details: "bio"}
	assert.Zero(t, performer.Score(textOnly))
}

func TestScalarAccessors(t *testing.T) {
	var p performer.Patch
	assert.True(t, performer.SetScalar(&p, "hair_color", "Black"))
	assert.False(t, performer.SetScalar(&p, "weight", "50"))
	r := &performer.Record{}
	p.Apply(r)
	v, ok := performer.ScalarValue(r, "hair_color")
	assert.True(t, ok)
	assert.Equal(t, "Black", v)
	assert.Contains(t, performer.ScalarFieldNames(), "career_length")
}

func TestFormatBodyMods(t *testing.T) {
	got := performer.FormatBodyMods([]performer.BodyMod{
		{Location: "left arm", Description: "rose"},
		{Location: " navel "},
		{Description: "tribal"},
		{},
	})
	assert.Equal(t, "left arm: rose, navel, tribal", got)
}

func TestMergeBodyModsAppendsUnique(t *testing.T) {
	incoming := performer.FormatBodyMods([]performer.BodyMod{
		{Location: "left arm", Description: "rose"},
		{Location: "right wrist", Description: "star"},
	})
	assert.Equal(t, "left arm: rose, right wrist: star", performer.MergeBodyMods(incoming, "left arm: rose"))
	assert.Equal(t, "", performer.MergeBodyMods(incoming, "LEFT ARM: ROSE, right wrist: star"))
	assert.Equal(t, incoming, performer.MergeBodyMods(incoming, "  "))
	assert.Equal(t, "", performer.MergeBodyMods("", "left arm: rose"))
	assert.Equal(t, "a, b", performer.MergeBodyMods("b", "a, "))
}

func TestMergeAliases(t *testing.T) {
	got := performer.MergeAliases(
		[]string{" Hanako ", "hanako t.", "田中花子", "HT", "ht", ""},
		[]string{"田中花子"},
		"Hanako T.",
		"Hanako T.",
	)
	assert.Equal(t, []string{"Hanako", "HT"}, got)
}

func TestMergeURLs(t *testing.T) {
	r := &performer.Record{URL: "https://Example.com/", URLs: []string{"https://twitter.com/x"}}
	got := performer.MergeURLs([]string{
		"https://example.com",
		"https://twitter.com/x/",
		"https://instagram.com/x",
		"https://instagram.com/X",
		" ",
	}, r)
	assert.Equal(t, []string{"https://instagram.com/x"}, got)
}

func TestCloneDoesNotAlias(t *testing.T) {
	r := &performer.Record{AliasList: []string{"a"}}
	c := r.Clone()
	c.AliasList[0] = "b"
	assert.Equal(t, "a", r.AliasList[0])
}
