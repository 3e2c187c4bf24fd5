// Package model defines the record types served by the Ezra API.
//
// There are four record kinds, each persisted as an ordered collection:
//
//   - Organization: top-level tenant
//   - Location: a site belonging to an organization
//   - Group: a group meeting at a location
//   - Member: a person attached to an organization, location and optionally a group
//
// Parent references (organizationId, locationId, groupId) are plain ids and
// are not checked for existence.
//
// # Updates
//
// Records are never updated by blind merge. Each kind has a Patch type whose
// pointer fields mark which values the caller supplied; identity and
// provenance fields (id, createdOn, createdBy) have no patch field and so
// cannot be rewritten.
//
// # Database Schema
//
// When the postgres storage driver is used, each collection is one row of
// the collections table (see CollectionRow).
package model
