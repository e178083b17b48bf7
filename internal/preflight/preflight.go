package preflight

import (
	"context"

	"performersync/internal/catalog"
	"performersync/internal/config"
	"performersync/internal/stashbox"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check for cfg against store. Registry checks only run
// for boxes that were identified.
func RunAll(ctx context.Context, cfg *config.Config, store catalog.Store, connect func(stashbox.Box) stashbox.Registry) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("State directory", cfg.Paths.StateDir)}

	catalogResult, boxes := CheckCatalog(ctx, store)
	results = append(results, catalogResult)
	if !catalogResult.Passed {
		return results
	}

	native, canonical := stashbox.Identify(boxes, cfg.Registries.NativeMatch, cfg.Registries.CanonicalMatch)
	results = append(results, CheckRegistries(native, canonical)...)

	if connect == nil {
		return results
	}
	if native != nil {
		results = append(results, CheckRegistry(ctx, "Native registry reachable", connect(*native)))
	}
	if canonical != nil {
		results = append(results, CheckRegistry(ctx, "Canonical registry reachable", connect(*canonical)))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
