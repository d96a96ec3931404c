package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/unifiedui/docrepo-service/internal/core/docdb"
	domainerrors "github.com/unifiedui/docrepo-service/internal/domain/errors"
)

// Eraser deletes documents by identity or by filter.
// Matching nothing is not an error; the returned count is simply 0.
type Eraser[K comparable] struct {
	resolver *Resolver
	cache    *documentCache
}

// DeleteOne deletes the document with doc's identifier. Other fields of doc are ignored.
func (e *Eraser[K]) DeleteOne(ctx context.Context, target Target, doc Document[K]) (int64, error) {
	if isNil(doc) {
		return 0, domainerrors.NewArgumentNullError("document")
	}
	return e.deleteOne(ctx, target, idFilter(doc.GetID()))
}

// DeleteOneWhere deletes the first document matching filter.
func (e *Eraser[K]) DeleteOneWhere(ctx context.Context, target Target, filter interface{}) (int64, error) {
	if isNil(filter) {
		return 0, domainerrors.NewArgumentNullError("filter")
	}
	return e.deleteOne(ctx, target, filter)
}

// DeleteMany deletes the documents with the identifiers of docs.
// An empty slice deletes nothing and does not contact the store.
func (e *Eraser[K]) DeleteMany(ctx context.Context, target Target, docs []Document[K]) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	ids := make([]K, 0, len(docs))
	for _, doc := range docs {
		if isNil(doc) {
			return 0, domainerrors.NewArgumentNullError("document")
		}
		ids = append(ids, doc.GetID())
	}
	return e.deleteMany(ctx, target, bson.M{"_id": bson.M{"$in": ids}})
}

// DeleteManyWhere deletes every document matching filter.
func (e *Eraser[K]) DeleteManyWhere(ctx context.Context, target Target, filter interface{}) (int64, error) {
	if isNil(filter) {
		return 0, domainerrors.NewArgumentNullError("filter")
	}
	return e.deleteMany(ctx, target, filter)
}

func (e *Eraser[K]) deleteOne(ctx context.Context, target Target, filter interface{}) (int64, error) {
	coll := e.resolver.Resolve(target)
	result, err := coll.DeleteOne(ctx, filter)
	return e.done(ctx, coll, result, err)
}

func (e *Eraser[K]) deleteMany(ctx context.Context, target Target, filter interface{}) (int64, error) {
	coll := e.resolver.Resolve(target)
	result, err := coll.DeleteMany(ctx, filter)
	return e.done(ctx, coll, result, err)
}

func (e *Eraser[K]) done(ctx context.Context, coll docdb.Collection, result *docdb.DeleteResult, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	if result.DeletedCount > 0 {
		e.cache.invalidate(ctx, coll.Name())
	}
	return result.DeletedCount, nil
}

func idFilter(id interface{}) bson.M {
	return bson.M{"_id": id}
}
