package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/unifiedui/docrepo-service/internal/core/cache"
	"github.com/unifiedui/docrepo-service/internal/pkg/encryption"
)

// documentCache is an optional read-through cache for documents fetched by id.
// A nil *documentCache is valid and caches nothing. Cache failures are logged
// and never surface to callers.
//
// Every collection has a generation counter that invalidate bumps before it
// deletes keys. A read snapshots the generation before going to the store and
// only writes back if no invalidation happened in between, so a slow read
// cannot resurrect a document that a concurrent mutation already replaced.
type documentCache struct {
	store  cache.Cache
	ttl    time.Duration
	sealer encryption.Encryptor
	logger zerolog.Logger
}

func documentKey(collection string, id interface{}) string {
	return fmt.Sprintf("%s:%v", collection, id)
}

// generationKey lives outside every collection's key space: collection names
// cannot contain '$', so no "<collection>:*" pattern matches it.
func generationKey(collection string) string {
	return "$gen:" + collection
}

// generation returns the current generation of collection. The second result
// is false when the cache cannot be consulted and nothing should be written back.
func (c *documentCache) generation(ctx context.Context, collection string) (string, bool) {
	if c == nil {
		return "", false
	}

	gen, err := c.store.Get(ctx, generationKey(collection))
	if err != nil {
		c.logger.Warn().Err(err).Str("collection", collection).Msg("document cache generation read failed")
		return "", false
	}
	return string(gen), true
}

func (c *documentCache) unchanged(ctx context.Context, collection, gen string) bool {
	current, ok := c.generation(ctx, collection)
	return ok && current == gen
}

// get decodes the cached document into out and reports whether it was found.
func (c *documentCache) get(ctx context.Context, collection string, id interface{}, out interface{}) bool {
	if c == nil {
		return false
	}

	key := documentKey(collection, id)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("document cache read failed")
		return false
	}
	if data == nil {
		return false
	}
	if c.sealer != nil {
		if data, err = c.sealer.Open(data); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable cached document")
			return false
		}
	}
	if err := bson.Unmarshal(data, out); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cached document")
		return false
	}
	return true
}

// put stores doc unless collection was invalidated since gen was read.
func (c *documentCache) put(ctx context.Context, collection string, id interface{}, doc interface{}, gen string) {
	if c == nil {
		return
	}

	key := documentKey(collection, id)
	data, err := bson.Marshal(doc)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("document not cacheable")
		return
	}
	if c.sealer != nil {
		if data, err = c.sealer.Seal(data); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("document not cacheable")
			return
		}
	}

	if !c.unchanged(ctx, collection, gen) {
		c.logger.Debug().Str("key", key).Msg("skipping write-back of document read before invalidation")
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("document cache write failed")
		return
	}
	// An invalidation that ran between the check and the write may have missed the new key.
	if !c.unchanged(ctx, collection, gen) {
		if _, err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("failed to drop document cached during invalidation")
		}
	}
}

// invalidate drops every cached document of a collection.
func (c *documentCache) invalidate(ctx context.Context, collection string) {
	if c == nil {
		return
	}

	if _, err := c.store.Incr(ctx, generationKey(collection)); err != nil {
		c.logger.Warn().Err(err).Str("collection", collection).Msg("document cache generation bump failed")
	}

	pattern := cache.EscapePattern(collection) + ":*"
	deleted, err := c.store.DeletePattern(ctx, pattern)
	if err != nil {
		c.logger.Warn().Err(err).Str("pattern", pattern).Msg("document cache invalidation failed")
		return
	}
	c.logger.Debug().Str("collection", collection).Int64("keys", deleted).Msg("document cache invalidated")
}
