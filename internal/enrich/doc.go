// Package enrich computes the fill-if-empty and append-unique field updates
// a canonical registry profile contributes to a local performer.
package enrich
