package repository

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/unifiedui/docrepo-service/internal/core/docdb"
	domainerrors "github.com/unifiedui/docrepo-service/internal/domain/errors"
)

// IndexManager creates, drops and lists indexes of resolved collections.
// Index administration is rare and slow; no retries are attempted.
type IndexManager struct {
	resolver *Resolver
	logger   zerolog.Logger
}

// CreateTextIndex creates a text index on field and returns its name.
func (m *IndexManager) CreateTextIndex(ctx context.Context, target Target, field string, opts *docdb.IndexOptions) (string, error) {
	return m.createSingle(ctx, target, field, docdb.IndexText, opts)
}

// CreateAscendingIndex creates an ascending index on field and returns its name.
func (m *IndexManager) CreateAscendingIndex(ctx context.Context, target Target, field string, opts *docdb.IndexOptions) (string, error) {
	return m.createSingle(ctx, target, field, docdb.IndexAscending, opts)
}

// CreateDescendingIndex creates a descending index on field and returns its name.
func (m *IndexManager) CreateDescendingIndex(ctx context.Context, target Target, field string, opts *docdb.IndexOptions) (string, error) {
	return m.createSingle(ctx, target, field, docdb.IndexDescending, opts)
}

// CreateHashedIndex creates a hashed index on field and returns its name.
func (m *IndexManager) CreateHashedIndex(ctx context.Context, target Target, field string, opts *docdb.IndexOptions) (string, error) {
	return m.createSingle(ctx, target, field, docdb.IndexHashed, opts)
}

// CreateCombinedTextIndex creates one compound text index over fields.
// An empty field list fails with EMPTY_FIELD_SET before any store call.
func (m *IndexManager) CreateCombinedTextIndex(ctx context.Context, target Target, fields []string, opts *docdb.IndexOptions) (string, error) {
	if len(fields) == 0 {
		return "", domainerrors.NewEmptyFieldSetError("combined text index")
	}

	keys := make([]docdb.IndexKey, 0, len(fields))
	for _, field := range fields {
		if field == "" {
			return "", domainerrors.NewArgumentNullError("field")
		}
		keys = append(keys, docdb.IndexKey{Field: field, Kind: docdb.IndexText})
	}
	return m.create(ctx, target, docdb.IndexModel{Keys: keys, Options: opts})
}

// DropIndex drops the named index. A missing index yields a recoverable
// NOT_FOUND_ON_DROP error.
func (m *IndexManager) DropIndex(ctx context.Context, target Target, name string) error {
	if name == "" {
		return domainerrors.NewArgumentNullError("index name")
	}

	coll := m.resolver.Resolve(target)
	if err := coll.Indexes().DropOne(ctx, name); err != nil {
		return err
	}

	m.logger.Info().Str("collection", coll.Name()).Str("index", name).Msg("index dropped")
	return nil
}

// ListIndexNames returns the index names of the collection in store order.
func (m *IndexManager) ListIndexNames(ctx context.Context, target Target) ([]string, error) {
	return m.resolver.Resolve(target).Indexes().ListNames(ctx)
}

func (m *IndexManager) createSingle(ctx context.Context, target Target, field string, kind docdb.IndexKind, opts *docdb.IndexOptions) (string, error) {
	if field == "" {
		return "", domainerrors.NewArgumentNullError("field")
	}
	return m.create(ctx, target, docdb.IndexModel{
		Keys:    []docdb.IndexKey{{Field: field, Kind: kind}},
		Options: opts,
	})
}

func (m *IndexManager) create(ctx context.Context, target Target, model docdb.IndexModel) (string, error) {
	coll := m.resolver.Resolve(target)
	name, err := coll.Indexes().CreateOne(ctx, model)
	if err != nil {
		return "", err
	}

	m.logger.Info().Str("collection", coll.Name()).Str("index", name).Msg("index created")
	return name, nil
}
