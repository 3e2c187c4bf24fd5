// Package resource implements list/get/create/update/delete for one record
// kind on top of a store.Collection.
//
// A single generic Service is instantiated once per kind:
//
//	orgs := resource.NewService[model.Organization](collections.Organizations)
//	created, err := orgs.Create(ctx, model.Organization{Name: "Acme", Audit: model.Audit{CreatedBy: "alice"}})
//
// The server is authoritative for id, createdOn and updatedOn. Updates apply
// a model.Patch and can never change id, createdOn or createdBy.
//
// # Concurrency
//
// Each Service serializes its own mutations (LoadAll, change, SaveAll) with a
// mutex, so two requests against the same kind cannot lose each other's
// writes within one process. Reads are not locked. Different kinds never
// share a lock.
package resource
