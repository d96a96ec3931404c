package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/unifiedui/docrepo-service/internal/core/docdb"
	domainerrors "github.com/unifiedui/docrepo-service/internal/domain/errors"
)

// DocumentSet is the typed view of one collection: documents of type T keyed
// by K, optionally scoped to a partition key.
type DocumentSet[T Document[K], K comparable] struct {
	repo   *Repository[K]
	target Target
}

// For returns the document set for T in the collection selected by partitionKey.
// An empty partitionKey selects T's default collection.
func For[T Document[K], K comparable](repo *Repository[K], partitionKey string) *DocumentSet[T, K] {
	return &DocumentSet[T, K]{repo: repo, target: TargetOf[T](partitionKey)}
}

// DefaultSet is a document set keyed by uuid.UUID.
type DefaultSet[T Document[uuid.UUID]] = DocumentSet[T, uuid.UUID]

// ForDefault returns the uuid-keyed document set for T.
func ForDefault[T Document[uuid.UUID]](repo *GUIDRepository, partitionKey string) *DefaultSet[T] {
	return For[T](repo, partitionKey)
}

// Page selects a window of a sorted result.
type Page struct {
	Skip   int64
	Limit  int64
	SortBy string
	Order  docdb.SortOrder
}

// PageResult is one page of documents and the total number of matches.
type PageResult[T any] struct {
	Items []T
	Total int64
	Skip  int64
	Limit int64
}

// CollectionName returns the name of the collection the set operates on.
func (s *DocumentSet[T, K]) CollectionName() string {
	return CollectionName(s.target.Type, s.target.PartitionKey)
}

// PartitionKey returns the partition key the set was created with.
func (s *DocumentSet[T, K]) PartitionKey() string {
	return s.target.PartitionKey
}

func (s *DocumentSet[T, K]) collection() docdb.Collection {
	return s.repo.resolver.Resolve(s.target)
}

// AddOne assigns an identifier to doc if it has none and inserts it.
func (s *DocumentSet[T, K]) AddOne(ctx context.Context, doc T) error {
	return s.repo.Creator().AddOne(ctx, s.target, doc)
}

// AddMany assigns missing identifiers and inserts docs in one request.
func (s *DocumentSet[T, K]) AddMany(ctx context.Context, docs []T) error {
	return s.repo.Creator().AddMany(ctx, s.target, asDocuments[T, K](docs))
}

// GetByID returns the document with the given identifier, or the zero T when none exists.
func (s *DocumentSet[T, K]) GetByID(ctx context.Context, id K) (T, error) {
	var doc T
	coll := s.collection()

	if s.repo.cache.get(ctx, coll.Name(), id, &doc) {
		return doc, nil
	}
	gen, cacheable := s.repo.cache.generation(ctx, coll.Name())

	found, err := decodeOne(coll.FindOne(ctx, idFilter(id)), &doc)
	if err != nil || !found {
		return doc, err
	}

	if cacheable {
		s.repo.cache.put(ctx, coll.Name(), id, doc, gen)
	}
	return doc, nil
}

// GetOne returns the first document matching filter, or the zero T when none does.
func (s *DocumentSet[T, K]) GetOne(ctx context.Context, filter interface{}) (T, error) {
	var doc T
	_, err := decodeOne(s.collection().FindOne(ctx, orAll(filter)), &doc)
	return doc, err
}

// GetAll returns every document matching filter. A nil filter matches all documents.
func (s *DocumentSet[T, K]) GetAll(ctx context.Context, filter interface{}) ([]T, error) {
	return s.find(ctx, filter, nil)
}

// Any reports whether at least one document matches filter.
func (s *DocumentSet[T, K]) Any(ctx context.Context, filter interface{}) (bool, error) {
	err := s.collection().FindOne(ctx, orAll(filter)).Err()
	if errors.Is(err, docdb.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Count returns the number of documents matching filter.
func (s *DocumentSet[T, K]) Count(ctx context.Context, filter interface{}) (int64, error) {
	return s.collection().CountDocuments(ctx, orAll(filter))
}

// GetPaginated returns one page of documents matching filter.
func (s *DocumentSet[T, K]) GetPaginated(ctx context.Context, filter interface{}, page Page) (*PageResult[T], error) {
	if page.Skip < 0 || page.Limit < 0 {
		return nil, domainerrors.NewValidationError("invalid page", "skip and limit must not be negative")
	}

	filter = orAll(filter)
	total, err := s.collection().CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	opts := &docdb.FindOptions{Skip: page.Skip, Limit: page.Limit}
	if page.SortBy != "" {
		opts.Sort = bson.D{{Key: page.SortBy, Value: page.Order.Direction()}}
	}

	items, err := s.find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	return &PageResult[T]{Items: items, Total: total, Skip: page.Skip, Limit: page.Limit}, nil
}

// GetByMax returns the matching document with the greatest value of field.
func (s *DocumentSet[T, K]) GetByMax(ctx context.Context, filter interface{}, field string) (T, error) {
	return s.first(ctx, filter, field, docdb.SortOrderDesc)
}

// GetByMin returns the matching document with the smallest value of field.
func (s *DocumentSet[T, K]) GetByMin(ctx context.Context, filter interface{}, field string) (T, error) {
	return s.first(ctx, filter, field, docdb.SortOrderAsc)
}

// SumBy returns the sum of field over the documents matching filter.
// Missing and non-numeric values count as 0.
func (s *DocumentSet[T, K]) SumBy(ctx context.Context, filter interface{}, field string) (float64, error) {
	if field == "" {
		return 0, domainerrors.NewArgumentNullError("field")
	}

	pipeline := bson.A{
		bson.M{"$match": orAll(filter)},
		bson.M{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$" + field}}},
	}

	var totals []struct {
		Total float64 `bson:"total"`
	}
	if err := s.Aggregate(ctx, pipeline, &totals); err != nil {
		return 0, err
	}
	if len(totals) == 0 {
		return 0, nil
	}
	return totals[0].Total, nil
}

// Aggregate runs pipeline against the collection and decodes every result into results,
// which must be a pointer to a slice.
func (s *DocumentSet[T, K]) Aggregate(ctx context.Context, pipeline interface{}, results interface{}) error {
	if isNil(pipeline) {
		return domainerrors.NewArgumentNullError("pipeline")
	}
	if isNil(results) {
		return domainerrors.NewArgumentNullError("results")
	}

	cursor, err := s.collection().Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	return cursor.All(ctx, results)
}

// ReplaceOne replaces the stored document with doc's identifier.
func (s *DocumentSet[T, K]) ReplaceOne(ctx context.Context, doc T) (bool, error) {
	return s.repo.Updater().ReplaceOne(ctx, s.target, doc)
}

// UpdateOne applies update to the document with doc's identifier.
func (s *DocumentSet[T, K]) UpdateOne(ctx context.Context, doc T, update interface{}) (bool, error) {
	return s.repo.Updater().UpdateOne(ctx, s.target, doc, update)
}

// UpdateOneWhere applies update to the first document matching filter.
func (s *DocumentSet[T, K]) UpdateOneWhere(ctx context.Context, filter interface{}, update interface{}) (bool, error) {
	return s.repo.Updater().UpdateOneWhere(ctx, s.target, filter, update)
}

// UpdateMany applies update to every document matching filter.
func (s *DocumentSet[T, K]) UpdateMany(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	return s.repo.Updater().UpdateMany(ctx, s.target, filter, update)
}

// SetField sets field to value on the first document matching filter.
func (s *DocumentSet[T, K]) SetField(ctx context.Context, filter interface{}, field string, value interface{}) (bool, error) {
	return s.repo.Updater().SetField(ctx, s.target, filter, field, value)
}

// FindOneAndUpdate atomically updates the first document matching filter and
// returns it as selected by opts. The zero T is returned when nothing matched.
func (s *DocumentSet[T, K]) FindOneAndUpdate(ctx context.Context, filter interface{}, update interface{}, opts *docdb.FindOneAndUpdateOptions) (T, error) {
	var doc T
	_, err := s.repo.Updater().FindOneAndUpdate(ctx, s.target, filter, update, opts, &doc)
	return doc, err
}

// DeleteOne deletes the document with doc's identifier.
func (s *DocumentSet[T, K]) DeleteOne(ctx context.Context, doc T) (int64, error) {
	return s.repo.Eraser().DeleteOne(ctx, s.target, doc)
}

// DeleteOneWhere deletes the first document matching filter.
func (s *DocumentSet[T, K]) DeleteOneWhere(ctx context.Context, filter interface{}) (int64, error) {
	return s.repo.Eraser().DeleteOneWhere(ctx, s.target, filter)
}

// DeleteMany deletes the documents with the identifiers of docs.
func (s *DocumentSet[T, K]) DeleteMany(ctx context.Context, docs []T) (int64, error) {
	return s.repo.Eraser().DeleteMany(ctx, s.target, asDocuments[T, K](docs))
}

// DeleteManyWhere deletes every document matching filter.
func (s *DocumentSet[T, K]) DeleteManyWhere(ctx context.Context, filter interface{}) (int64, error) {
	return s.repo.Eraser().DeleteManyWhere(ctx, s.target, filter)
}

// CreateTextIndex creates a text index on field.
func (s *DocumentSet[T, K]) CreateTextIndex(ctx context.Context, field string, opts *docdb.IndexOptions) (string, error) {
	return s.repo.Indexes().CreateTextIndex(ctx, s.target, field, opts)
}

// CreateAscendingIndex creates an ascending index on field.
func (s *DocumentSet[T, K]) CreateAscendingIndex(ctx context.Context, field string, opts *docdb.IndexOptions) (string, error) {
	return s.repo.Indexes().CreateAscendingIndex(ctx, s.target, field, opts)
}

// CreateDescendingIndex creates a descending index on field.
func (s *DocumentSet[T, K]) CreateDescendingIndex(ctx context.Context, field string, opts *docdb.IndexOptions) (string, error) {
	return s.repo.Indexes().CreateDescendingIndex(ctx, s.target, field, opts)
}

// CreateHashedIndex creates a hashed index on field.
func (s *DocumentSet[T, K]) CreateHashedIndex(ctx context.Context, field string, opts *docdb.IndexOptions) (string, error) {
	return s.repo.Indexes().CreateHashedIndex(ctx, s.target, field, opts)
}

// CreateCombinedTextIndex creates one text index spanning fields.
func (s *DocumentSet[T, K]) CreateCombinedTextIndex(ctx context.Context, fields []string, opts *docdb.IndexOptions) (string, error) {
	return s.repo.Indexes().CreateCombinedTextIndex(ctx, s.target, fields, opts)
}

// DropIndex drops the named index.
func (s *DocumentSet[T, K]) DropIndex(ctx context.Context, name string) error {
	return s.repo.Indexes().DropIndex(ctx, s.target, name)
}

// ListIndexNames returns the names of the collection's indexes.
func (s *DocumentSet[T, K]) ListIndexNames(ctx context.Context) ([]string, error) {
	return s.repo.Indexes().ListIndexNames(ctx, s.target)
}

func (s *DocumentSet[T, K]) find(ctx context.Context, filter interface{}, opts *docdb.FindOptions) ([]T, error) {
	cursor, err := s.collection().Find(ctx, orAll(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *DocumentSet[T, K]) first(ctx context.Context, filter interface{}, field string, order docdb.SortOrder) (T, error) {
	var zero T
	if field == "" {
		return zero, domainerrors.NewArgumentNullError("field")
	}

	docs, err := s.find(ctx, filter, &docdb.FindOptions{
		Limit: 1,
		Sort:  bson.D{{Key: field, Value: order.Direction()}},
	})
	if err != nil || len(docs) == 0 {
		return zero, err
	}
	return docs[0], nil
}

// decodeOne decodes a single result into out, reporting false when nothing matched.
func decodeOne(result docdb.SingleResult, out interface{}) (bool, error) {
	err := result.Decode(out)
	if errors.Is(err, docdb.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// orAll turns a nil filter into one matching every document.
func orAll(filter interface{}) interface{} {
	if isNil(filter) {
		return bson.M{}
	}
	return filter
}

func asDocuments[T Document[K], K comparable](docs []T) []Document[K] {
	out := make([]Document[K], len(docs))
	for i, doc := range docs {
		out[i] = doc
	}
	return out
}
