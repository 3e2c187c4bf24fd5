// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// Each collection is a single row of the collections table holding the
// whole record array as jsonb. SaveAll upserts that row inside a
// transaction, so concurrent readers see either the old or the new array.
// The table is created by the migrations in db/migrations.
package gorm
