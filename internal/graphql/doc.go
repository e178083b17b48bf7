// Package graphql is the HTTP transport shared by the catalog and stash-box
// clients.
//
// Every request is a JSON POST carrying an ApiKey header when a credential is
// configured. Reads go through Query, which retries transient failures with a
// doubling backoff; writes go through Mutate, which is attempted exactly once.
// HTTP 422 responses and GraphQL error payloads are classified as semantic
// rejections and are never retried. An optional rate limiter spaces outbound
// calls.
package graphql
