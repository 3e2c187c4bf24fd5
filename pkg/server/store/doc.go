// Package store provides storage abstractions for the Ezra server.
//
// This package defines the whole-collection contract every record kind is
// persisted through, allowing the resource services to be decoupled from the
// storage backend. Every mutation is LoadAll, an in-memory change, then
// SaveAll; there are no partial or streaming updates.
//
// # Available Stores
//
//   - Collection: load/save of one ordered record collection
//   - HealthStore: backend reachability check
//
// Implementations live in the file (JSON files, the default) and gorm
// (PostgreSQL) subpackages.
//
// # Usage
//
//	orgs := file.NewCollection[model.Organization](dataDir, "organizations")
//	records, err := orgs.LoadAll(ctx)
//	if err != nil {
//	    if errors.Is(err, store.ErrStorageRead) {
//	        // Missing or malformed collection
//	    }
//	}
package store
