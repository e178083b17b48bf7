// Package stashbox queries external stash-box registries: lookup by id,
// search by term, and the full profile used for enrichment. Responses are
// memoized for the lifetime of a Client so repeated lookups within one run
// cost a single round trip.
package stashbox
