// Command performersync renames catalog performers to their canonical
// Latin-script names, links them to the canonical stash-box, fills empty
// profile fields, and merges duplicate performers.
//
// Subcommands:
//   - run: the full pipeline (merge, sync, merge again)
//   - dedup: one duplicate merge pass
//   - plugin: host plugin entry point reading its payload from stdin
//   - history: journaled runs
//   - check: catalog and registry readiness
//   - test-notify: ntfy connectivity check
//   - config init|validate|show: configuration utilities
package main
