package dedup

import (
	"slices"

	"performersync/internal/performer"
	"performersync/internal/textutil"
)

// Signal names the evidence that produced a group.
type Signal string

const (
	SignalSharedLink Signal = "shared_link"
	SignalSameName   Signal = "same_name"
	SignalAliasMatch Signal = "alias_match"
)

// Group is two or more records believed to be the same person. Members keep
// input order.
type Group struct {
	Signal  Signal
	Key     string
	Members []performer.Record
}

// IDs returns the member ids in order.
func (g Group) IDs() []string {
	ids := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		ids = append(ids, m.ID)
	}
	return ids
}

// Phase is one grouping signal.
type Phase struct {
	Signal Signal
	Find   func(records []performer.Record) []Group
}

// Phases returns the grouping phases in the order a pass applies them.
// Every phase groups transitively: records linked through a chain of shared
// links or alias matches form one group, so no record is in two groups of
// the same phase.
func Phases() []Phase {
	return []Phase{
		{Signal: SignalSharedLink, Find: SharedLinkGroups},
		{Signal: SignalSameName, Find: SameNameGroups},
		{Signal: SignalAliasMatch, Find: AliasGroups},
	}
}

// SharedLinkGroups groups records carrying the same (endpoint, id) link.
// Records chained through different shared links land in one group.
func SharedLinkGroups(records []performer.Record) []Group {
	u := newUnion(len(records))
	owner := make(map[performer.LinkKey]int)
	for i := range records {
		for _, sid := range records[i].StashIDs {
			key := sid.Key()
			if key.ID == "" || key.Endpoint == "" {
				continue
			}
			if j, ok := owner[key]; ok {
				u.join(j, i, key.Endpoint+"#"+key.ID)
				continue
			}
			owner[key] = i
		}
	}
	return u.groups(SignalSharedLink, records)
}

// SameNameGroups groups records whose trimmed, case-folded names are equal.
func SameNameGroups(records []performer.Record) []Group {
	u := newUnion(len(records))
	owner := make(map[string]int)
	for i := range records {
		key := textutil.Key(records[i].Name)
		if key == "" {
			continue
		}
		if j, ok := owner[key]; ok {
			u.join(j, i, key)
			continue
		}
		owner[key] = i
	}
	return u.groups(SignalSameName, records)
}

// AliasGroups pairs each record with every other record whose name equals
// one of its aliases. Pairs are deduplicated without regard to order and
// self-pairs are ignored; overlapping pairs are coalesced so no record is in
// two groups.
func AliasGroups(records []performer.Record) []Group {
	byName := make(map[string][]int)
	for i := range records {
		if key := textutil.Key(records[i].Name); key != "" {
			byName[key] = append(byName[key], i)
		}
	}
	type pair struct{ a, b int }
	seen := make(map[pair]struct{})
	u := newUnion(len(records))
	for i := range records {
		for _, alias := range records[i].AliasList {
			key := textutil.Key(alias)
			if key == "" {
				continue
			}
			for _, j := range byName[key] {
				if j == i {
					continue
				}
				p := pair{min(i, j), max(i, j)}
				if _, ok := seen[p]; ok {
					continue
				}
				seen[p] = struct{}{}
				u.join(i, j, key)
			}
		}
	}
	return u.groups(SignalAliasMatch, records)
}

// union is a disjoint-set over record positions that remembers the first key
// each position was joined by.
type union struct {
	parent []int
	key    []string
}

func newUnion(n int) *union {
	u := &union{parent: make([]int, n), key: make([]string, n)}
	for i := range u.parent {
		u.parent[i] = i
	}
	return u
}

func (u *union) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *union) join(a, b int, key string) {
	for _, i := range []int{a, b} {
		if u.key[i] == "" {
			u.key[i] = key
		}
	}
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
}

// groups returns every set of two or more positions, ordered by their first
// member, members in input order.
func (u *union) groups(signal Signal, records []performer.Record) []Group {
	members := make(map[int][]int)
	var roots []int
	for i := range u.parent {
		r := u.find(i)
		if _, ok := members[r]; !ok {
			roots = append(roots, r)
		}
		members[r] = append(members[r], i)
	}
	var out []Group
	for _, r := range roots {
		idx := members[r]
		if len(idx) < 2 {
			continue
		}
		slices.Sort(idx)
		g := Group{Signal: signal, Key: u.key[idx[0]]}
		for _, i := range idx {
			g.Members = append(g.Members, *records[i].Clone())
		}
		out = append(out, g)
	}
	return out
}
