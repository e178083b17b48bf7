// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and performer IDs for
//     logging.
//   - The error taxonomy (transient, semantic rejection, not found, skip
//     markers, configuration) plus the Wrap helper and Classify, which maps
//     per-record failures onto run counters.
//
// Use these helpers when wiring new stage logic so retry decisions and skip
// accounting stay uniform across the pipeline.
package services
