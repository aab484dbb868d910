// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Initial reference and motivation taken from
// https://gitlab.com/project-emco/core/emco-base/-/blob/main/src/orchestrator/pkg/infra/db

// Package db is the thin driver boundary the replication core talks to.
// It deliberately exposes only the operations the pipeline, phase
// controller and manager need (cursor streaming, unordered bulk insert,
// index and view administration) rather than a general purpose CRUD
// surface, so that everything above this package can be exercised against
// a fake Client/Database/Collection in tests without a live server.
package db

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// IndexSpec is one captured index description, as listed from the source
// and replayed on the target. The implicit _id index is never part of a
// captured set.
type IndexSpec struct {
	Name                    string   `bson:"name"`
	Keys                    bson.D   `bson:"key"`
	Unique                  bool     `bson:"unique,omitempty"`
	Sparse                  bool     `bson:"sparse,omitempty"`
	PartialFilterExpression bson.Raw `bson:"partialFilterExpression,omitempty"`
	ExpireAfterSeconds      *int32   `bson:"expireAfterSeconds,omitempty"`
	Collation               bson.Raw `bson:"collation,omitempty"`
}

// ViewSpec is one captured MongoDB view definition.
type ViewSpec struct {
	// Name of the view itself.
	Name string

	// On is the underlying source collection the view is defined over.
	On string

	// Pipeline is the aggregation pipeline defining the view.
	Pipeline []bson.D
}

// WriteError is one document's failure inside an otherwise-successful
// unordered bulk write.
type WriteError struct {
	Index int
	Err   error
}

// BulkOutcome reports the result of an unordered bulk insert: documents
// that made it to the target, and the per-document failures that did not.
type BulkOutcome struct {
	InsertedCount int64
	Errors        []WriteError
}

// Cursor abstracts a streaming query result, typed or opaque.
type Cursor interface {
	// Next advances the cursor, returning false on exhaustion or error.
	Next(ctx context.Context) bool

	// Decode unmarshals the current document into val.
	Decode(val interface{}) error

	// Current is the raw bytes of the document the cursor is positioned
	// at, usable for size estimation without a typed decode.
	Current() bson.Raw

	// Err returns the error that stopped iteration, if any.
	Err() error

	// Close releases server-side and driver-side cursor resources.
	Close(ctx context.Context) error
}

// Collection is the per-collection surface the replication core needs.
type Collection interface {
	// Name of the collection.
	Name() string

	// Find opens a cursor over filter, honoring projection/sort/batch
	// size via opts.
	Find(ctx context.Context, filter interface{}, opts ...options.Lister[options.FindOptions]) (Cursor, error)

	// Sample draws n documents via $sample for size estimation.
	Sample(ctx context.Context, n int) (Cursor, error)

	// CountDocuments returns the number of documents matching filter.
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)

	// BulkInsert performs an unordered bulk insert of docs, returning
	// per-document failures without aborting the rest of the batch.
	BulkInsert(ctx context.Context, docs []interface{}) (*BulkOutcome, error)

	// Drop removes the collection; idempotent if it does not exist.
	Drop(ctx context.Context) error

	// ListIndexes returns every index on the collection except the
	// implicit _id index.
	ListIndexes(ctx context.Context) ([]IndexSpec, error)

	// CreateIndex replays a captured index, preserving name and options.
	CreateIndex(ctx context.Context, spec IndexSpec) error
}

// Database is a handle to one database within a deployment.
type Database interface {
	// Name of the database.
	Name() string

	// Collection returns a handle to the named collection.
	Collection(name string) Collection

	// ListCollectionNames enumerates ordinary (non-view) collections.
	ListCollectionNames(ctx context.Context) ([]string, error)

	// ListViews enumerates view definitions.
	ListViews(ctx context.Context) ([]ViewSpec, error)

	// CreateView replays a captured view definition.
	CreateView(ctx context.Context, spec ViewSpec) error
}

// Client is a connected deployment handle.
type Client interface {
	// Database returns a handle scoped to dbName.
	Database(dbName string) Database

	// HealthCheck verifies the deployment is reachable.
	HealthCheck(ctx context.Context) error

	// Disconnect releases the underlying connection pool.
	Disconnect(ctx context.Context) error
}
