package performer

import (
	"strings"
)

// StashID links a local record to a record on one stash-box registry.
type StashID struct {
	Endpoint string `json:"endpoint"`
	StashID  string `json:"stash_id"`
}

// LinkKey identifies a stash-box record independent of endpoint spelling.
type LinkKey struct {
	Endpoint string
	ID       string
}

// Key returns the normalized identity of the link.
func (s StashID) Key() LinkKey {
	return LinkKey{Endpoint: NormalizeEndpoint(s.Endpoint), ID: strings.TrimSpace(s.StashID)}
}

// NormalizeEndpoint lowercases an endpoint URL and strips trailing slashes and
// a trailing /graphql path so configured and stored spellings compare equal.
func NormalizeEndpoint(endpoint string) string {
	u := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	u = strings.TrimSuffix(u, "/graphql")
	return strings.ToLower(strings.TrimRight(u, "/"))
}

// EndpointMatches reports whether two endpoint spellings refer to the same registry.
func EndpointMatches(a, b string) bool {
	return NormalizeEndpoint(a) == NormalizeEndpoint(b)
}

// Record is a local catalog performer with the full field set used by the
// pipeline.
type Record struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Disambiguation string    `json:"disambiguation"`
	AliasList      []string  `json:"alias_list"`
	Gender         string    `json:"gender"`
	Birthdate      string    `json:"birthdate"`
	Ethnicity      string    `json:"ethnicity"`
	Country        string    `json:"country"`
	EyeColor       string    `json:"eye_color"`
	HairColor      string    `json:"hair_color"`
	HeightCm       int       `json:"height_cm"`
	Measurements   string    `json:"measurements"`
	FakeTits       string    `json:"fake_tits"`
	CareerLength   string    `json:"career_length"`
	Tattoos        string    `json:"tattoos"`
	Piercings      string    `json:"piercings"`
	URL            string    `json:"url"`
	URLs           []string  `json:"urls"`
	Details        string    `json:"details"`
	StashIDs       []StashID `json:"stash_ids"`
}

// StashIDFor returns the first link whose endpoint matches endpoint.
func (r *Record) StashIDFor(endpoint string) (string, bool) {
	for _, sid := range r.StashIDs {
		if EndpointMatches(sid.Endpoint, endpoint) {
			return sid.StashID, true
		}
	}
	return "", false
}

// HasEndpoint reports whether the record carries any link to endpoint.
func (r *Record) HasEndpoint(endpoint string) bool {
	_, ok := r.StashIDFor(endpoint)
	return ok
}

// Clone returns a deep copy so callers can fold merges without aliasing slices.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.AliasList = append([]string(nil), r.AliasList...)
	c.URLs = append([]string(nil), r.URLs...)
	c.StashIDs = append([]StashID(nil), r.StashIDs...)
	return &c
}

// CopyStashIDs returns the links stripped of any extra state, preserving order.
func CopyStashIDs(ids []StashID) []StashID {
	out := make([]StashID, 0, len(ids))
	for _, sid := range ids {
		out = append(out, StashID{Endpoint: sid.Endpoint, StashID: sid.StashID})
	}
	return out
}

// UnionStashIDs appends the links in extra whose normalized key is not yet in
// base. The second return reports whether anything was added.
func UnionStashIDs(base, extra []StashID) ([]StashID, bool) {
	out := CopyStashIDs(base)
	seen := make(map[LinkKey]struct{}, len(out)+len(extra))
	for _, sid := range out {
		seen[sid.Key()] = struct{}{}
	}
	added := false
	for _, sid := range extra {
		key := sid.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, StashID{Endpoint: sid.Endpoint, StashID: sid.StashID})
		added = true
	}
	return out, added
}

// IsBlank reports whether a text field counts as empty.
func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
