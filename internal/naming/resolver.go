package naming

import (
	"strings"

	"performersync/internal/services"
	"performersync/internal/textutil"
)

// Candidates builds the ordered, case-insensitively distinct list of
// Latin-script names to try: native registry aliases in listed order, then
// the native registry name, then the current local name. Each entry must
// pass textutil.IsLatin. An empty result is ErrNoTranslatableName.
func Candidates(nativeAliases []string, nativeName, localName string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if !textutil.IsLatin(name) {
			return
		}
		name = strings.TrimSpace(name)
		key := textutil.Key(name)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	for _, alias := range nativeAliases {
		add(alias)
	}
	add(nativeName)
	add(localName)
	if len(out) == 0 {
		return nil, services.Wrap(services.ErrNoTranslatableName, "naming", "resolve candidates", "no latin-script name available", nil)
	}
	return out, nil
}
