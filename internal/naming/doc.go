// Package naming turns a native-script performer into Latin-script name
// candidates and matches them against the canonical registry.
package naming
