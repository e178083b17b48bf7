// Package textutil provides the string normalization shared by the name
// reconciliation and duplicate detection stages.
//
// The primary use cases are:
//   - Building case-insensitive comparison keys (trimmed, Unicode lowercased)
//   - Classifying names as already Latin-script or needing translation
//   - Order-preserving, case-insensitive de-duplication of string lists
package textutil
