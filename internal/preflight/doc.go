// Package preflight provides readiness checks for the catalog, the
// stash-box registries it is configured with, and the state directory.
//
// The CLI "performersync check" command runs RunAll and prints one line per
// check. A failed check does not stop later checks; a missing canonical
// registry is reported but passes, since runs fall back to native aliases.
package preflight
