// Package catalog reads and writes the local media catalog over GraphQL.
//
// Store is the surface the pipeline consumes: bulk performer listing,
// partial performer updates, association lookup and rewrite for scenes,
// galleries, and images, performer deletion, and the configured stash-box
// registries. DryRun wraps any Store so writes are logged instead of sent,
// while later reads still observe them.
package catalog
