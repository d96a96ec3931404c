package repository_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/unifiedui/docrepo-service/internal/mocks"
	"github.com/unifiedui/docrepo-service/internal/repository"
)

type testNote struct {
	ID       uuid.UUID `bson:"_id"`
	Title    string    `bson:"title"`
	Priority int       `bson:"priority"`
}

func (n *testNote) GetID() uuid.UUID   { return n.ID }
func (n *testNote) SetID(id uuid.UUID) { n.ID = id }

type testEntry struct {
	ID      string `bson:"_id"`
	Message string `bson:"message"`
}

func (e *testEntry) GetID() string   { return e.ID }
func (e *testEntry) SetID(id string) { e.ID = id }

type counterDoc struct {
	ID int `bson:"_id"`
}

func (d *counterDoc) GetID() int   { return d.ID }
func (d *counterDoc) SetID(id int) { d.ID = id }

// setupRepository returns a uuid-keyed repository whose database hands out
// the given collections by name.
func setupRepository(t *testing.T, collections ...*mocks.MockCollection) (*repository.GUIDRepository, *mocks.MockDatabase) {
	t.Helper()

	db := &mocks.MockDatabase{}
	for _, coll := range collections {
		db.On("Collection", coll.Name()).Return(coll)
	}

	repo, err := repository.NewDefault(db)
	require.NoError(t, err)
	return repo, db
}
