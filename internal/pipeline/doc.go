// Package pipeline runs a full sync: identify the registries, fetch every
// performer, merge duplicates, rename and enrich each natively linked
// performer, then merge any duplicates the renames created.
//
// Run returns a Report holding run-wide counters and a structured event
// list; nothing is accumulated in package state. Per-performer failures are
// counted and never stop the run. Only a missing native registry (or an
// unreachable catalog) ends a run early.
package pipeline
