// Package namesync plans the per-performer update that renames a
// native-script performer to its Latin-script canonical name, links it to
// the canonical registry, and enriches its profile.
package namesync
