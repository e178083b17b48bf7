package performer

import (
	"strings"
	"unicode"

	"performersync/internal/textutil"
)

// BodyMod is a structured tattoo or piercing entry from a registry.
type BodyMod struct {
	Location    string `json:"location"`
	Description string `json:"description"`
}

// FormatBodyMods renders entries as "location: description", falling back to
// whichever half is present, comma-joined.
func FormatBodyMods(mods []BodyMod) string {
	parts := make([]string, 0, len(mods))
	for _, m := range mods {
		loc := strings.TrimSpace(m.Location)
		desc := strings.TrimSpace(m.Description)
		switch {
		case loc != "" && desc != "":
			parts = append(parts, loc+": "+desc)
		case loc != "":
			parts = append(parts, loc)
		case desc != "":
			parts = append(parts, desc)
		}
	}
	return strings.Join(parts, ", ")
}

// MergeBodyMods appends the comma-separated entries of incoming that local
// does not already hold (case-insensitive). It returns the full merged value,
// or "" when nothing needs to change. A blank local takes incoming verbatim.
func MergeBodyMods(incoming, local string) string {
	if IsBlank(incoming) {
		return ""
	}
	if IsBlank(local) {
		return incoming
	}
	existing := textutil.KeySet(strings.Split(local, ",")...)
	var added []string
	for _, part := range strings.Split(incoming, ",") {
		part = strings.TrimSpace(part)
		key := textutil.Key(part)
		if key == "" {
			continue
		}
		if _, ok := existing[key]; ok {
			continue
		}
		existing[key] = struct{}{}
		added = append(added, part)
	}
	if len(added) == 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimRightFunc(local, unicode.IsSpace), ",") + ", " + strings.Join(added, ", ")
}
