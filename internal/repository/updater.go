package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/unifiedui/docrepo-service/internal/core/docdb"
	domainerrors "github.com/unifiedui/docrepo-service/internal/domain/errors"
)

// Updater modifies documents matched by identity or filter. Match-then-mutate
// atomicity is whatever the store guarantees for a single-document update.
type Updater[K comparable] struct {
	resolver *Resolver
	cache    *documentCache
}

// ReplaceOne replaces the stored document that has doc's identifier with doc.
// It reports whether such a document existed, even if the replacement was identical.
func (u *Updater[K]) ReplaceOne(ctx context.Context, target Target, doc Document[K]) (bool, error) {
	if isNil(doc) {
		return false, domainerrors.NewArgumentNullError("document")
	}

	coll := u.resolver.Resolve(target)
	result, err := coll.ReplaceOne(ctx, idFilter(doc.GetID()), doc)
	if err != nil {
		return false, err
	}
	u.touched(ctx, coll, result.MatchedCount)
	return result.MatchedCount > 0, nil
}

// UpdateOne applies update to the document with doc's identifier.
func (u *Updater[K]) UpdateOne(ctx context.Context, target Target, doc Document[K], update interface{}) (bool, error) {
	if isNil(doc) {
		return false, domainerrors.NewArgumentNullError("document")
	}
	return u.UpdateOneWhere(ctx, target, idFilter(doc.GetID()), update)
}

// UpdateOneWhere applies update to the first document matching filter.
func (u *Updater[K]) UpdateOneWhere(ctx context.Context, target Target, filter interface{}, update interface{}) (bool, error) {
	if err := checkUpdateArgs(filter, update); err != nil {
		return false, err
	}

	coll := u.resolver.Resolve(target)
	result, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	u.touched(ctx, coll, result.MatchedCount)
	return result.ModifiedCount > 0, nil
}

// SetField sets a single field on the first document matching filter.
func (u *Updater[K]) SetField(ctx context.Context, target Target, filter interface{}, field string, value interface{}) (bool, error) {
	if field == "" {
		return false, domainerrors.NewArgumentNullError("field")
	}
	return u.UpdateOneWhere(ctx, target, filter, bson.M{"$set": bson.M{field: value}})
}

// UpdateMany applies update to every document matching filter and returns the modified count.
func (u *Updater[K]) UpdateMany(ctx context.Context, target Target, filter interface{}, update interface{}) (int64, error) {
	if err := checkUpdateArgs(filter, update); err != nil {
		return 0, err
	}

	coll := u.resolver.Resolve(target)
	result, err := coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	u.touched(ctx, coll, result.MatchedCount)
	return result.ModifiedCount, nil
}

// FindOneAndUpdate atomically updates the first document matching filter and
// decodes it into out, before or after the update as opts selects.
// It reports false with a nil error when nothing matched.
func (u *Updater[K]) FindOneAndUpdate(ctx context.Context, target Target, filter interface{}, update interface{}, opts *docdb.FindOneAndUpdateOptions, out interface{}) (bool, error) {
	if err := checkUpdateArgs(filter, update); err != nil {
		return false, err
	}
	if isNil(out) {
		return false, domainerrors.NewArgumentNullError("result")
	}

	coll := u.resolver.Resolve(target)
	err := coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
	if errors.Is(err, docdb.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	u.touched(ctx, coll, 1)
	return true, nil
}

func (u *Updater[K]) touched(ctx context.Context, coll docdb.Collection, matched int64) {
	if matched > 0 {
		u.cache.invalidate(ctx, coll.Name())
	}
}

func checkUpdateArgs(filter, update interface{}) error {
	if isNil(filter) {
		return domainerrors.NewArgumentNullError("filter")
	}
	if isNil(update) {
		return domainerrors.NewArgumentNullError("update")
	}
	return nil
}
