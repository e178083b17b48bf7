package enrich

import (
	"strings"

	"performersync/internal/performer"
	"performersync/internal/stashbox"
)

// Fields returns the patch of descriptive fields profile fills on local.
// Scalars are set only where local is blank; tattoos and piercings gain
// entries they lack; url is filled only when empty. Aliases and the url
// list are merged by the caller.
func Fields(profile *stashbox.Performer, local *performer.Record) performer.Patch {
	var p performer.Patch
	if profile == nil || local == nil {
		return p
	}

	fill := func(name string, value string) {
		current, _ := performer.ScalarValue(local, name)
		value = strings.TrimSpace(value)
		if performer.IsBlank(current) && value != "" {
			performer.SetScalar(&p, name, value)
		}
	}
	fill("disambiguation", profile.Disambiguation)
	fill("gender", profile.Gender.String())
	fill("birthdate", profile.BirthDate.String())
	fill("ethnicity", profile.Ethnicity.String())
	fill("country", profile.Country.String())
	fill("eye_color", profile.EyeColor.String())
	fill("hair_color", profile.HairColor.String())
	fill("measurements", Measurements(profile))
	fill("fake_tits", FakeTits(profile.BreastType.String()))
	fill("career_length", CareerLength(profile))

	if local.HeightCm <= 0 {
		if h, ok := profile.Height.Int(); ok {
			p.HeightCm = performer.Int(h)
		}
	}

	if merged := performer.MergeBodyMods(performer.FormatBodyMods(profile.Tattoos), local.Tattoos); merged != "" {
		p.Tattoos = performer.Str(merged)
	}
	if merged := performer.MergeBodyMods(performer.FormatBodyMods(profile.Piercings), local.Piercings); merged != "" {
		p.Piercings = performer.Str(merged)
	}

	if performer.IsBlank(local.URL) {
		if home := profile.HomeURL(); home != "" {
			p.URL = performer.Str(home)
		}
	}
	return p
}

func present(t stashbox.Text) bool {
	v := t.String()
	return v != "" && v != "0"
}

// Measurements formats band, cup, waist, and hip as "32C-24-34". Band and cup
// are both required; waist and hip are optional.
func Measurements(profile *stashbox.Performer) string {
	if !present(profile.BandSize) || !present(profile.CupSize) {
		return ""
	}
	parts := []string{profile.BandSize.String() + profile.CupSize.String()}
	if present(profile.WaistSize) {
		parts = append(parts, profile.WaistSize.String())
	}
	if present(profile.HipSize) {
		parts = append(parts, profile.HipSize.String())
	}
	return strings.Join(parts, "-")
}

// FakeTits maps a registry breast type to the catalog's Yes/No value.
func FakeTits(breastType string) string {
	switch strings.ToUpper(strings.TrimSpace(breastType)) {
	case "FAKE", "AUGMENTED":
		return "Yes"
	case "NATURAL":
		return "No"
	default:
		return ""
	}
}

// CareerLength formats "start" or "start-end". No start means no value.
func CareerLength(profile *stashbox.Performer) string {
	if !present(profile.CareerStartYear) {
		return ""
	}
	if present(profile.CareerEndYear) {
		return profile.CareerStartYear.String() + "-" + profile.CareerEndYear.String()
	}
	return profile.CareerStartYear.String()
}
