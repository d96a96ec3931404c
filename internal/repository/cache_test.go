package repository_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/unifiedui/docrepo-service/internal/core/cache"
	"github.com/unifiedui/docrepo-service/internal/core/docdb"
	rediscache "github.com/unifiedui/docrepo-service/internal/infrastructure/cache/redis"
	"github.com/unifiedui/docrepo-service/internal/mocks"
	"github.com/unifiedui/docrepo-service/internal/pkg/encryption"
	"github.com/unifiedui/docrepo-service/internal/repository"
)

// hookedCache runs beforeSet ahead of every write.
type hookedCache struct {
	cache.Cache
	beforeSet func()
}

func (h *hookedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if h.beforeSet != nil {
		h.beforeSet()
	}
	return h.Cache.Set(ctx, key, value, ttl)
}

func newTestCache(t *testing.T) (*rediscache.Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	c, err := rediscache.NewCache(rediscache.Config{
		Host:      mr.Host(),
		Port:      mr.Port(),
		KeyPrefix: "test",
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		c.Close()
		mr.Close()
	})
	return c, mr
}

func setupCachedRepository(t *testing.T, coll *mocks.MockCollection, opts ...repository.Option) (*repository.GUIDRepository, *miniredis.Miniredis) {
	t.Helper()

	c, mr := newTestCache(t)
	return setupRepositoryWithCache(t, coll, c, opts...), mr
}

func setupRepositoryWithCache(t *testing.T, coll *mocks.MockCollection, c cache.Cache, opts ...repository.Option) *repository.GUIDRepository {
	t.Helper()

	db := &mocks.MockDatabase{}
	db.On("Collection", coll.Name()).Return(coll)

	opts = append([]repository.Option{repository.WithCache(c, time.Minute)}, opts...)
	repo, err := repository.NewDefault(db, opts...)
	require.NoError(t, err)
	return repo
}

// cachedDocuments lists the cached document keys, leaving out generation counters.
func cachedDocuments(mr *miniredis.Miniredis) []string {
	var keys []string
	for _, key := range mr.Keys() {
		if !strings.Contains(key, "$gen:") {
			keys = append(keys, key)
		}
	}
	return keys
}

func TestGetByID_ReadThroughCache(t *testing.T) {
	coll := mocks.NewMockCollection("tenantA-testNotes")
	repo, mr := setupCachedRepository(t, coll)
	notes := repository.ForDefault[*testNote](repo, "tenantA")
	ctx := context.Background()

	id := uuid.New()
	key := "test:tenantA-testNotes:" + id.String()
	coll.On("FindOne", ctx, bson.M{"_id": id}).Return(foundNote(testNote{ID: id, Title: "cached", Priority: 3})).Once()

	first, err := notes.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	second, err := notes.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	coll.AssertNumberOfCalls(t, "FindOne", 1)
}

func TestGetByID_EncryptedCache(t *testing.T) {
	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	enc, err := encryption.NewAESEncryptor(key)
	require.NoError(t, err)

	coll := mocks.NewMockCollection("testNotes")
	repo, mr := setupCachedRepository(t, coll, repository.WithCacheEncryption(enc))
	notes := repository.ForDefault[*testNote](repo, "")
	ctx := context.Background()

	id := uuid.New()
	coll.On("FindOne", ctx, bson.M{"_id": id}).Return(foundNote(testNote{ID: id, Title: "secret title"})).Once()

	first, err := notes.GetByID(ctx, id)
	require.NoError(t, err)

	raw, err := mr.Get("test:testNotes:" + id.String())
	require.NoError(t, err)
	assert.NotContains(t, raw, "secret title")
	var decoded testNote
	assert.Error(t, bson.Unmarshal([]byte(raw), &decoded))

	second, err := notes.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	coll.AssertNumberOfCalls(t, "FindOne", 1)
}

func TestGetByID_MissIsNotCached(t *testing.T) {
	coll := mocks.NewMockCollection("testNotes")
	repo, mr := setupCachedRepository(t, coll)
	ctx := context.Background()

	id := uuid.New()
	coll.On("FindOne", ctx, bson.M{"_id": id}).Return(noDocuments())

	note, err := repository.ForDefault[*testNote](repo, "").GetByID(ctx, id)

	require.NoError(t, err)
	assert.Nil(t, note)
	assert.Empty(t, mr.Keys())
}

func TestMutations_InvalidateCollection(t *testing.T) {
	coll := mocks.NewMockCollection("tenantA-testNotes")
	repo, mr := setupCachedRepository(t, coll)
	ctx := context.Background()

	// Entries of another partition must survive.
	require.NoError(t, mr.Set("test:tenantB-testNotes:other", "x"))

	seed := func() {
		require.NoError(t, mr.Set("test:tenantA-testNotes:1", "a"))
		require.NoError(t, mr.Set("test:tenantA-testNotes:2", "b"))
	}
	notes := repository.ForDefault[*testNote](repo, "tenantA")

	t.Run("update", func(t *testing.T) {
		seed()
		coll.On("UpdateOne", ctx, bson.M{"title": "a"}, mock.Anything).
			Return(&docdb.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil).Once()

		_, err := notes.SetField(ctx, bson.M{"title": "a"}, "priority", 1)

		require.NoError(t, err)
		assert.Equal(t, []string{"test:tenantB-testNotes:other"}, cachedDocuments(mr))
	})

	t.Run("delete", func(t *testing.T) {
		seed()
		coll.On("DeleteMany", ctx, bson.M{}).Return(&docdb.DeleteResult{DeletedCount: 2}, nil).Once()

		_, err := notes.DeleteManyWhere(ctx, bson.M{})

		require.NoError(t, err)
		assert.Equal(t, []string{"test:tenantB-testNotes:other"}, cachedDocuments(mr))
	})

	t.Run("no match keeps entries", func(t *testing.T) {
		seed()
		coll.On("DeleteOne", ctx, bson.M{"title": "none"}).Return(&docdb.DeleteResult{}, nil).Once()

		_, err := notes.DeleteOneWhere(ctx, bson.M{"title": "none"})

		require.NoError(t, err)
		assert.Len(t, cachedDocuments(mr), 3)
	})
}

func TestGetByID_CacheFailureFallsBackToStore(t *testing.T) {
	coll := mocks.NewMockCollection("testNotes")
	db := &mocks.MockDatabase{}
	db.On("Collection", "testNotes").Return(coll)
	ctx := context.Background()

	broken := &mocks.MockCache{}
	broken.On("Get", ctx, mock.Anything).Return(nil, errors.New("connection refused"))

	repo, err := repository.NewDefault(db, repository.WithCache(broken, 0))
	require.NoError(t, err)

	id := uuid.New()
	coll.On("FindOne", ctx, bson.M{"_id": id}).Return(foundNote(testNote{ID: id, Title: "store"}))

	note, err := repository.ForDefault[*testNote](repo, "").GetByID(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, "store", note.Title)
	broken.AssertExpectations(t)
	broken.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetByID_UpdateDuringReadIsNotOverwritten(t *testing.T) {
	coll := mocks.NewMockCollection("testNotes")
	repo, mr := setupCachedRepository(t, coll)
	notes := repository.ForDefault[*testNote](repo, "")
	ctx := context.Background()

	id := uuid.New()
	coll.On("UpdateOne", ctx, bson.M{"_id": id}, mock.Anything).
		Return(&docdb.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	// The update commits after the store returned the old document but
	// before the read writes it back.
	stale := &mocks.MockSingleResult{}
	stale.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		_, err := notes.UpdateOne(ctx, &testNote{ID: id}, bson.M{"$set": bson.M{"title": "new"}})
		require.NoError(t, err)
		*args.Get(0).(**testNote) = &testNote{ID: id, Title: "old"}
	}).Return(nil)
	coll.On("FindOne", ctx, bson.M{"_id": id}).Return(stale).Once()
	coll.On("FindOne", ctx, bson.M{"_id": id}).Return(foundNote(testNote{ID: id, Title: "new"})).Once()

	first, err := notes.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "old", first.Title)
	assert.Empty(t, cachedDocuments(mr))

	second, err := notes.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new", second.Title)
	coll.AssertNumberOfCalls(t, "FindOne", 2)
}

func TestGetByID_InvalidationDuringWriteBackDropsEntry(t *testing.T) {
	coll := mocks.NewMockCollection("testNotes")
	c, mr := newTestCache(t)
	hooked := &hookedCache{Cache: c}
	repo := setupRepositoryWithCache(t, coll, hooked)
	notes := repository.ForDefault[*testNote](repo, "")
	ctx := context.Background()

	id := uuid.New()
	coll.On("FindOne", ctx, bson.M{"_id": id}).Return(foundNote(testNote{ID: id, Title: "old"}))
	coll.On("DeleteOne", ctx, bson.M{"_id": id}).Return(&docdb.DeleteResult{DeletedCount: 1}, nil)

	hooked.beforeSet = func() {
		hooked.beforeSet = nil
		_, err := notes.DeleteOne(ctx, &testNote{ID: id})
		require.NoError(t, err)
	}

	_, err := notes.GetByID(ctx, id)

	require.NoError(t, err)
	assert.Empty(t, cachedDocuments(mr))
}

func TestMutations_InvalidatePartitionWithGlobCharacters(t *testing.T) {
	coll := mocks.NewMockCollection("t[1]*-testNotes")
	repo, mr := setupCachedRepository(t, coll)
	notes := repository.ForDefault[*testNote](repo, "t[1]*")
	ctx := context.Background()

	// Would match the unescaped pattern "t[1]*-testNotes:*".
	require.NoError(t, mr.Set("test:t1-testNotes:other", "x"))

	id := uuid.New()
	coll.On("FindOne", ctx, bson.M{"_id": id}).Return(foundNote(testNote{ID: id, Title: "old"})).Once()
	coll.On("UpdateOne", ctx, bson.M{"_id": id}, mock.Anything).
		Return(&docdb.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	_, err := notes.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, mr.Exists("test:t[1]*-testNotes:"+id.String()))

	_, err = notes.UpdateOne(ctx, &testNote{ID: id}, bson.M{"$set": bson.M{"title": "new"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"test:t1-testNotes:other"}, cachedDocuments(mr))
}
