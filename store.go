package leandb

import "context"

// Store is the document-store client the repository is built on. Adapters live
// in the mongostore and gormstore packages.
//
// Absent records are reported as (nil, nil); every other failure is returned
// as the driver produced it.
type Store[T any] interface {
	// Find starts a lazily executed query.
	Find(filter Filter[T], projection Projection[T]) Query[T]
	FindOne(ctx context.Context, filter Filter[T], projection Projection[T]) (*T, error)
	Exists(ctx context.Context, filter Filter[T]) (bool, error)
	// Insert stores the record and returns it as stored, with the assigned
	// identifier and any store-side defaults.
	Insert(ctx context.Context, record *T) (*T, error)
	// FindOneAndUpdate applies the patch to the first match and returns the
	// record after the update.
	FindOneAndUpdate(ctx context.Context, filter Filter[T], patch Patch[T]) (*T, error)
	// FindOneAndDelete removes the first match and returns it.
	FindOneAndDelete(ctx context.Context, filter Filter[T]) (*T, error)
}

// Query is a sortable, limitable query. Nothing reaches the store before All.
type Query[T any] interface {
	Sort(field string, direction Direction) Query[T]
	// Limit is handed to the store as is; zero and negative values keep the
	// store's own meaning.
	Limit(n int) Query[T]
	// All returns plain, detached records.
	All(ctx context.Context) ([]T, error)
}
