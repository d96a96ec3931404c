package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unifiedui/docrepo-service/internal/core/docdb"
)

// IndexView implements the docdb.IndexView interface for MongoDB.
type IndexView struct {
	view       mongo.IndexView
	collection string
}

// CreateOne creates an index and returns the name the server assigned to it.
func (v *IndexView) CreateOne(ctx context.Context, model docdb.IndexModel) (string, error) {
	if len(model.Keys) == 0 {
		return "", fmt.Errorf("index on %s needs at least one key", v.collection)
	}

	name, err := v.view.CreateOne(ctx, toIndexModel(model))
	if err != nil {
		return "", fmt.Errorf("failed to create index on %s: %w", v.collection, classify("create index", err))
	}
	return name, nil
}

// DropOne drops the named index.
func (v *IndexView) DropOne(ctx context.Context, name string) error {
	_, err := v.view.DropOne(ctx, name)
	return classifyDrop(name, err)
}

// ListNames returns the index names in the order the server reports them.
func (v *IndexView) ListNames(ctx context.Context) ([]string, error) {
	cursor, err := v.view.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes on %s: %w", v.collection, classify("list indexes", err))
	}
	defer cursor.Close(ctx)

	var listed []struct {
		Name string `bson:"name"`
	}
	if err := cursor.All(ctx, &listed); err != nil {
		return nil, fmt.Errorf("failed to decode indexes on %s: %w", v.collection, classify("list indexes", err))
	}

	names := make([]string, 0, len(listed))
	for _, index := range listed {
		names = append(names, index.Name)
	}
	return names, nil
}

// toIndexModel maps the store-agnostic index description to the driver model.
func toIndexModel(model docdb.IndexModel) mongo.IndexModel {
	keys := make(bson.D, 0, len(model.Keys))
	for _, key := range model.Keys {
		keys = append(keys, bson.E{Key: key.Field, Value: indexValue(key.Kind)})
	}

	return mongo.IndexModel{
		Keys:    keys,
		Options: toIndexOptions(model.Options),
	}
}

func indexValue(kind docdb.IndexKind) interface{} {
	switch kind {
	case docdb.IndexDescending:
		return -1
	case docdb.IndexText:
		return "text"
	case docdb.IndexHashed:
		return "hashed"
	default:
		return 1
	}
}

func toIndexOptions(opts *docdb.IndexOptions) *options.IndexOptions {
	if opts == nil {
		return nil
	}

	indexOpts := options.Index()
	if opts.Name != "" {
		indexOpts.SetName(opts.Name)
	}
	if opts.Unique {
		indexOpts.SetUnique(true)
	}
	if opts.Sparse {
		indexOpts.SetSparse(true)
	}
	if opts.ExpireAfter != nil {
		indexOpts.SetExpireAfterSeconds(int32(opts.ExpireAfter.Seconds()))
	}
	if opts.DefaultLanguage != "" {
		indexOpts.SetDefaultLanguage(opts.DefaultLanguage)
	}
	if len(opts.Weights) > 0 {
		weights := bson.M{}
		for field, weight := range opts.Weights {
			weights[field] = weight
		}
		indexOpts.SetWeights(weights)
	}
	if opts.PartialFilter != nil {
		indexOpts.SetPartialFilterExpression(opts.PartialFilter)
	}
	return indexOpts
}
