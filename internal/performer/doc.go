// Package performer models local catalog performer records and the merge
// primitives shared by enrichment and duplicate merging.
//
// Record mirrors the catalog's performer shape. Patch is the explicit partial
// update: every field is absent unless set, and Apply mirrors a patch onto an
// in-memory record so later merge steps see the updated state. The scalar
// field table drives fill-if-empty merging and the completeness score used to
// pick a keeper among duplicates.
package performer
