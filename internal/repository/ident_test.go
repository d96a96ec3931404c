package repository_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	domainerrors "github.com/unifiedui/docrepo-service/internal/domain/errors"
	"github.com/unifiedui/docrepo-service/internal/repository"
)

func TestNewID_BuiltInPolicies(t *testing.T) {
	t.Run("uuid", func(t *testing.T) {
		first, err := repository.NewID[uuid.UUID]()
		require.NoError(t, err)
		second, err := repository.NewID[uuid.UUID]()
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, first)
		assert.NotEqual(t, first, second)
		assert.Equal(t, uuid.Version(4), first.Version())
	})

	t.Run("object id", func(t *testing.T) {
		id, err := repository.NewID[primitive.ObjectID]()
		require.NoError(t, err)
		assert.False(t, id.IsZero())
	})

	t.Run("string", func(t *testing.T) {
		id, err := repository.NewID[string]()
		require.NoError(t, err)

		_, parseErr := uuid.Parse(id)
		assert.NoError(t, parseErr)
	})
}

func TestNewID_UnsupportedType(t *testing.T) {
	id, err := repository.NewID[float32]()

	assert.Zero(t, id)
	require.Error(t, err)
	assert.True(t, domainerrors.IsUnsupportedIdentifierType(err))
}

type sequenceID int64

func TestRegisterIDGenerator(t *testing.T) {
	var next sequenceID
	repository.RegisterIDGenerator(func() sequenceID {
		next++
		return next
	})

	first, err := repository.NewID[sequenceID]()
	require.NoError(t, err)
	second, err := repository.NewID[sequenceID]()
	require.NoError(t, err)

	assert.Equal(t, sequenceID(1), first)
	assert.Equal(t, sequenceID(2), second)
}
