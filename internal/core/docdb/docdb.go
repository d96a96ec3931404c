// Package docdb defines the document database interface.
package docdb

import (
	"context"
	"errors"
	"time"
)

// ErrNoDocuments is returned by SingleResult when no document matched.
var ErrNoDocuments = errors.New("docdb: no documents in result")

// SingleResult represents the result of a FindOne operation.
type SingleResult interface {
	// Decode decodes the result into the provided interface.
	Decode(v interface{}) error
	// Err returns any error from the operation.
	Err() error
}

// Cursor represents a cursor for iterating over query results.
type Cursor interface {
	// Next advances the cursor to the next document.
	Next(ctx context.Context) bool
	// Decode decodes the current document.
	Decode(v interface{}) error
	// All decodes all remaining documents.
	All(ctx context.Context, results interface{}) error
	// Err returns any cursor error.
	Err() error
	// Close closes the cursor.
	Close(ctx context.Context) error
}

// FindOptions represents options for Find operations.
type FindOptions struct {
	Limit      int64
	Skip       int64
	Sort       interface{}
	Projection interface{}
}

// ReturnDocument selects which version of a document a find-and-modify returns.
type ReturnDocument int

const (
	// ReturnBefore returns the document as it was before the update.
	ReturnBefore ReturnDocument = iota
	// ReturnAfter returns the document as it is after the update.
	ReturnAfter
)

// FindOneAndUpdateOptions represents options for FindOneAndUpdate operations.
type FindOneAndUpdateOptions struct {
	ReturnDocument ReturnDocument
	Upsert         bool
	Sort           interface{}
}

// UpdateResult represents the result of an update operation.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
	UpsertedCount int64
	UpsertedID    interface{}
}

// DeleteResult represents the result of a delete operation.
type DeleteResult struct {
	DeletedCount int64
}

// IndexKey is one field of an index in key order.
type IndexKey struct {
	Field string
	Kind  IndexKind
}

// IndexOptions carries the optional settings of an index.
type IndexOptions struct {
	Name            string
	Unique          bool
	Sparse          bool
	ExpireAfter     *time.Duration
	DefaultLanguage string
	Weights         map[string]int32
	// PartialFilter restricts the index to documents matching the filter.
	PartialFilter interface{}
}

// IndexModel describes an index to create.
type IndexModel struct {
	Keys    []IndexKey
	Options *IndexOptions
}

// IndexView manages the indexes of a single collection.
type IndexView interface {
	// CreateOne creates an index and returns its name.
	CreateOne(ctx context.Context, model IndexModel) (string, error)

	// DropOne drops the named index.
	DropOne(ctx context.Context, name string) error

	// ListNames returns the names of all indexes in the order reported by the store.
	ListNames(ctx context.Context) ([]string, error)
}

// Collection defines the interface for document collection operations.
type Collection interface {
	// Name returns the physical collection name.
	Name() string

	// InsertOne inserts a single document.
	InsertOne(ctx context.Context, document interface{}) (interface{}, error)

	// InsertMany inserts multiple documents.
	InsertMany(ctx context.Context, documents []interface{}) ([]interface{}, error)

	// FindOne finds a single document.
	FindOne(ctx context.Context, filter interface{}) SingleResult

	// Find finds multiple documents.
	Find(ctx context.Context, filter interface{}, opts *FindOptions) (Cursor, error)

	// ReplaceOne replaces a single document.
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}) (*UpdateResult, error)

	// UpdateOne updates a single document.
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (*UpdateResult, error)

	// UpdateMany updates multiple documents.
	UpdateMany(ctx context.Context, filter interface{}, update interface{}) (*UpdateResult, error)

	// FindOneAndUpdate atomically updates a single document and returns it.
	FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *FindOneAndUpdateOptions) SingleResult

	// DeleteOne deletes a single document.
	DeleteOne(ctx context.Context, filter interface{}) (*DeleteResult, error)

	// DeleteMany deletes multiple documents.
	DeleteMany(ctx context.Context, filter interface{}) (*DeleteResult, error)

	// CountDocuments counts documents matching the filter.
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)

	// Aggregate runs an aggregation pipeline.
	Aggregate(ctx context.Context, pipeline interface{}) (Cursor, error)

	// Indexes returns the index view of the collection.
	Indexes() IndexView
}

// Database defines the interface for database operations.
// It is the context repositories resolve their collections from.
type Database interface {
	// Collection returns a collection by name.
	Collection(name string) Collection

	// ListCollectionNames lists all collection names.
	ListCollectionNames(ctx context.Context) ([]string, error)
}
