// Package file provides JSON-file implementations of the store interfaces
// defined in the parent store package.
//
// Each collection is one <name>.json file holding a JSON array, written with
// two-space indentation. SaveAll writes a temporary file in the same
// directory, syncs it and renames it over the target, so readers never see a
// partially written collection.
//
// The package does not serialize writers; callers that need a single writer
// per collection must lock around LoadAll/SaveAll themselves. Several
// processes sharing one data directory can still lose updates.
package file
