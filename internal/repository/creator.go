package repository

import (
	"context"
	"fmt"

	domainerrors "github.com/unifiedui/docrepo-service/internal/domain/errors"
)

// Creator inserts documents, assigning identifiers first.
type Creator[K comparable] struct {
	resolver  *Resolver
	formatter Formatter[K]
}

// AddOne formats doc and inserts it into the target collection.
func (c *Creator[K]) AddOne(ctx context.Context, target Target, doc Document[K]) error {
	if err := c.formatter.Format(doc); err != nil {
		return err
	}

	_, err := c.resolver.Resolve(target).InsertOne(ctx, doc)
	return err
}

// AddMany formats every document and inserts them in one request.
// An empty slice succeeds without contacting the store. A nil element rejects
// the whole batch before any identifier is assigned.
func (c *Creator[K]) AddMany(ctx context.Context, target Target, docs []Document[K]) error {
	if len(docs) == 0 {
		return nil
	}
	for i, doc := range docs {
		if isNil(doc) {
			return domainerrors.NewArgumentNullError(fmt.Sprintf("documents[%d]", i))
		}
	}

	payload := make([]interface{}, 0, len(docs))
	for _, doc := range docs {
		if err := c.formatter.Format(doc); err != nil {
			return err
		}
		payload = append(payload, doc)
	}

	_, err := c.resolver.Resolve(target).InsertMany(ctx, payload)
	return err
}
