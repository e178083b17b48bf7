package performer

import (
	"strings"

	"performersync/internal/textutil"
)

// MergeAliases returns the entries of incoming absent (case-insensitively)
// from local, currentName, and newName, trimmed, in incoming order.
func MergeAliases(incoming, local []string, currentName, newName string) []string {
	existing := textutil.KeySet(local...)
	for _, name := range []string{currentName, newName} {
		if key := textutil.Key(name); key != "" {
			existing[key] = struct{}{}
		}
	}
	var added []string
	for _, alias := range incoming {
		a := strings.TrimSpace(alias)
		key := textutil.Key(a)
		if key == "" {
			continue
		}
		if _, ok := existing[key]; ok {
			continue
		}
		existing[key] = struct{}{}
		added = append(added, a)
	}
	return added
}

func urlKey(u string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(u), "/"))
}

// MergeURLs returns the entries of incoming not already present in the
// record's primary url or url list. Comparison ignores case and trailing
// slashes.
func MergeURLs(incoming []string, r *Record) []string {
	local := make(map[string]struct{}, len(r.URLs)+1)
	if k := urlKey(r.URL); k != "" {
		local[k] = struct{}{}
	}
	for _, u := range r.URLs {
		if k := urlKey(u); k != "" {
			local[k] = struct{}{}
		}
	}
	var added []string
	for _, raw := range incoming {
		u := strings.TrimSpace(raw)
		k := urlKey(u)
		if k == "" {
			continue
		}
		if _, ok := local[k]; ok {
			continue
		}
		local[k] = struct{}{}
		added = append(added, u)
	}
	return added
}
