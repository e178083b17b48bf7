// Package dedup finds and merges duplicate performers.
//
// A pass runs three grouping phases in order: records sharing a stash-box
// link, records with the same name, and records where one's alias is
// another's name. Each group is merged as soon as it is found: the most
// complete member is kept, the others are folded into it, their scenes,
// galleries, and images are repointed, and they are deleted. Later phases
// only see the survivors, with keepers carrying their merged state.
package dedup
