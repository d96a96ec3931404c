package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/unifiedui/docrepo-service/internal/api/dto"
	"github.com/unifiedui/docrepo-service/internal/api/handlers"
	"github.com/unifiedui/docrepo-service/internal/api/middleware"
	"github.com/unifiedui/docrepo-service/internal/api/routes"
	"github.com/unifiedui/docrepo-service/internal/core/docdb"
	domainerrors "github.com/unifiedui/docrepo-service/internal/domain/errors"
	"github.com/unifiedui/docrepo-service/internal/domain/models"
	"github.com/unifiedui/docrepo-service/internal/mocks"
	"github.com/unifiedui/docrepo-service/internal/repository"
)

type testEnv struct {
	router *gin.Engine
	client *mocks.MockDocDBClient
	notes  *mocks.MockCollection
	audit  *mocks.MockCollection
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client := mocks.NewMockDocDBClient()
	db := client.GetDatabase()
	notes := mocks.NewMockCollection("tenantA-notes")
	audit := mocks.NewMockCollection("auditEntries")
	db.On("Collection", "tenantA-notes").Return(notes)
	db.On("Collection", "auditEntries").Return(audit)

	notesRepo, err := repository.NewDefault(db)
	require.NoError(t, err)
	auditRepo, err := repository.New[string](db)
	require.NoError(t, err)

	router := gin.New()
	routes.SetupWithMiddleware(router, &routes.Config{
		HealthHandler:    handlers.NewHealthHandler(client, nil),
		NotesHandler:     handlers.NewNotesHandler(notesRepo, auditRepo),
		TenantMiddleware: middleware.NewTenantMiddleware(),
	}, middleware.NewLoggingMiddleware(), middleware.NewErrorMiddleware(), middleware.DefaultCORSConfig())

	return &testEnv{router: router, client: client, notes: notes, audit: audit}
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		payload, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) expectAudit(action models.AuditAction) {
	e.audit.On("InsertOne", mock.Anything, mock.MatchedBy(func(v interface{}) bool {
		entry, ok := v.(*models.AuditEntry)
		return ok && entry.Action == action && entry.TenantID == "tenantA" && entry.ID != ""
	})).Return(nil, nil).Once()
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	t.Run("healthy without cache", func(t *testing.T) {
		env := setupTestEnv(t)
		env.client.On("Ping", mock.Anything).Return(nil)

		w := env.do(http.MethodGet, "/health", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "disabled", resp.Components["cache"])
	})

	t.Run("store down", func(t *testing.T) {
		env := setupTestEnv(t)
		env.client.On("Ping", mock.Anything).Return(errors.New("no reachable servers"))

		assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodGet, "/health", nil).Code)
		assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodGet, "/ready", nil).Code)
	})

	t.Run("degraded cache stays healthy", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		client := mocks.NewMockDocDBClient()
		client.On("Ping", mock.Anything).Return(nil)
		c := &mocks.MockCache{}
		c.On("Ping", mock.Anything).Return(errors.New("connection refused"))

		router := gin.New()
		router.GET("/health", handlers.NewHealthHandler(client, c).Health)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"cache":"unhealthy"`)
	})
}

func TestCreateNote(t *testing.T) {
	env := setupTestEnv(t)
	env.notes.On("InsertOne", mock.Anything, mock.AnythingOfType("*models.Note")).Return(nil, nil).Once()
	env.expectAudit(models.AuditActionCreate)

	w := env.do(http.MethodPost, "/api/v1/tenants/tenantA/notes", dto.CreateNoteRequest{
		Title: "groceries",
		Tags:  []string{"home"},
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.NoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "groceries", resp.Title)
	_, err := uuid.Parse(resp.ID)
	assert.NoError(t, err)
	env.audit.AssertExpectations(t)
}

func TestCreateNote_Validation(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/tenants/tenantA/notes", map[string]string{"body": "no title"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domainerrors.ErrCodeValidation, decodeError(t, w).Code)
	env.notes.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestCreateNote_Conflict(t *testing.T) {
	env := setupTestEnv(t)
	id := uuid.New()
	env.notes.On("InsertOne", mock.Anything, mock.Anything).
		Return(nil, domainerrors.NewWriteConflictError(errors.New("E11000 duplicate key error"))).Once()

	w := env.do(http.MethodPost, "/api/v1/tenants/tenantA/notes", dto.CreateNoteRequest{ID: id.String(), Title: "dup"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, domainerrors.ErrCodeWriteConflict, decodeError(t, w).Code)
	env.audit.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestCreateNote_InvalidTenant(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/tenants/bad$tenant/notes", dto.CreateNoteRequest{Title: "x"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domainerrors.ErrCodeBadRequest, decodeError(t, w).Code)
}

func TestGetNote(t *testing.T) {
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		env := setupTestEnv(t)
		result := &mocks.MockSingleResult{}
		result.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
			*(args.Get(0).(**models.Note)) = &models.Note{ID: id, Title: "found"}
		}).Return(nil)
		env.notes.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(result)

		w := env.do(http.MethodGet, "/api/v1/tenants/tenantA/notes/"+id.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"title":"found"`)
	})

	t.Run("missing", func(t *testing.T) {
		env := setupTestEnv(t)
		result := &mocks.MockSingleResult{}
		result.On("Decode", mock.Anything).Return(docdb.ErrNoDocuments)
		env.notes.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(result)

		w := env.do(http.MethodGet, "/api/v1/tenants/tenantA/notes/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, domainerrors.ErrCodeNotFound, decodeError(t, w).Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.do(http.MethodGet, "/api/v1/tenants/tenantA/notes/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store unreachable", func(t *testing.T) {
		env := setupTestEnv(t)
		result := &mocks.MockSingleResult{}
		result.On("Decode", mock.Anything).Return(domainerrors.NewConnectionError(errors.New("server selection timeout")))
		env.notes.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(result)

		w := env.do(http.MethodGet, "/api/v1/tenants/tenantA/notes/"+id.String(), nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, domainerrors.ErrCodeConnection, decodeError(t, w).Code)
	})
}

func TestReplaceNote(t *testing.T) {
	stored := func(env *testEnv, id uuid.UUID) {
		result := &mocks.MockSingleResult{}
		result.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
			*(args.Get(0).(**models.Note)) = &models.Note{ID: id, Title: "before"}
		}).Return(nil)
		env.notes.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(result)
	}
	body := dto.CreateNoteRequest{Title: "after", Priority: 2}

	t.Run("replaced", func(t *testing.T) {
		env := setupTestEnv(t)
		id := uuid.New()
		stored(env, id)
		env.notes.On("ReplaceOne", mock.Anything, bson.M{"_id": id}, mock.AnythingOfType("*models.Note")).
			Return(&docdb.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
		env.expectAudit(models.AuditActionUpdate)

		w := env.do(http.MethodPut, "/api/v1/tenants/tenantA/notes/"+id.String(), body)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"title":"after"`)
	})

	t.Run("deleted after read", func(t *testing.T) {
		env := setupTestEnv(t)
		id := uuid.New()
		stored(env, id)
		env.notes.On("ReplaceOne", mock.Anything, bson.M{"_id": id}, mock.AnythingOfType("*models.Note")).
			Return(&docdb.UpdateResult{}, nil)

		w := env.do(http.MethodPut, "/api/v1/tenants/tenantA/notes/"+id.String(), body)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, domainerrors.ErrCodeNotFound, decodeError(t, w).Code)
		env.audit.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
	})
}

func TestUpdateNote(t *testing.T) {
	id := uuid.New()

	t.Run("empty update", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.do(http.MethodPatch, "/api/v1/tenants/tenantA/notes/"+id.String(), map[string]string{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns updated note", func(t *testing.T) {
		env := setupTestEnv(t)
		result := &mocks.MockSingleResult{}
		result.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
			*(args.Get(0).(**models.Note)) = &models.Note{ID: id, Title: "renamed"}
		}).Return(nil)
		env.notes.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": id}, mock.Anything,
			&docdb.FindOneAndUpdateOptions{ReturnDocument: docdb.ReturnAfter}).Return(result)
		env.expectAudit(models.AuditActionUpdate)

		title := "renamed"
		w := env.do(http.MethodPatch, "/api/v1/tenants/tenantA/notes/"+id.String(), dto.UpdateNoteRequest{Title: &title})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"title":"renamed"`)
	})

	t.Run("missing", func(t *testing.T) {
		env := setupTestEnv(t)
		result := &mocks.MockSingleResult{}
		result.On("Decode", mock.Anything).Return(docdb.ErrNoDocuments)
		env.notes.On("FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(result)

		title := "renamed"
		w := env.do(http.MethodPatch, "/api/v1/tenants/tenantA/notes/"+id.String(), dto.UpdateNoteRequest{Title: &title})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteNote(t *testing.T) {
	id := uuid.New()

	t.Run("deleted", func(t *testing.T) {
		env := setupTestEnv(t)
		env.notes.On("DeleteOne", mock.Anything, bson.M{"_id": id}).Return(&docdb.DeleteResult{DeletedCount: 1}, nil)
		env.expectAudit(models.AuditActionDelete)

		w := env.do(http.MethodDelete, "/api/v1/tenants/tenantA/notes/"+id.String(), nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		env := setupTestEnv(t)
		env.notes.On("DeleteOne", mock.Anything, bson.M{"_id": id}).Return(&docdb.DeleteResult{}, nil)

		w := env.do(http.MethodDelete, "/api/v1/tenants/tenantA/notes/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteNotes_NothingToDelete(t *testing.T) {
	env := setupTestEnv(t)
	env.notes.On("DeleteMany", mock.Anything, bson.M{"tags": "old"}).Return(&docdb.DeleteResult{}, nil)

	w := env.do(http.MethodDelete, "/api/v1/tenants/tenantA/notes?tag=old", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":0}`, w.Body.String())
	env.audit.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestListNotes(t *testing.T) {
	env := setupTestEnv(t)
	env.notes.On("CountDocuments", mock.Anything, bson.M{}).Return(int64(1), nil)

	cursor := &mocks.MockCursor{}
	cursor.On("All", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		out := args.Get(1).(*[]*models.Note)
		*out = append(*out, &models.Note{ID: uuid.New(), Title: "only"})
	}).Return(nil)
	cursor.On("Close", mock.Anything).Return(nil)
	env.notes.On("Find", mock.Anything, bson.M{}, &docdb.FindOptions{
		Skip:  0,
		Limit: 100,
		Sort:  bson.D{{Key: "createdAt", Value: 1}},
	}).Return(cursor, nil)

	w := env.do(http.MethodGet, "/api/v1/tenants/tenantA/notes?limit=500&order=asc", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.ListNotesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, int64(100), resp.Limit)
	require.Len(t, resp.Notes, 1)
	assert.Equal(t, "only", resp.Notes[0].Title)
}

func TestIndexes(t *testing.T) {
	t.Run("combined text index needs fields", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.do(http.MethodPost, "/api/v1/tenants/tenantA/notes/indexes", dto.CreateIndexRequest{Kind: dto.IndexKindCombinedText})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, domainerrors.ErrCodeEmptyFieldSet, decodeError(t, w).Code)
	})

	t.Run("create ascending", func(t *testing.T) {
		env := setupTestEnv(t)
		env.notes.IndexView().On("CreateOne", mock.Anything, mock.MatchedBy(func(m docdb.IndexModel) bool {
			return len(m.Keys) == 1 && m.Keys[0].Field == "priority" && m.Keys[0].Kind == docdb.IndexAscending
		})).Return("priority_1", nil)
		env.expectAudit(models.AuditActionIndex)

		w := env.do(http.MethodPost, "/api/v1/tenants/tenantA/notes/indexes", dto.CreateIndexRequest{
			Kind:   dto.IndexKindAscending,
			Fields: []string{"priority"},
		})

		require.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"name":"priority_1"}`, w.Body.String())
	})

	t.Run("unknown kind", func(t *testing.T) {
		env := setupTestEnv(t)

		w := env.do(http.MethodPost, "/api/v1/tenants/tenantA/notes/indexes", map[string]interface{}{
			"kind":   "geo",
			"fields": []string{"location"},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list", func(t *testing.T) {
		env := setupTestEnv(t)
		env.notes.IndexView().On("ListNames", mock.Anything).Return([]string{"_id_", "title_text"}, nil)

		w := env.do(http.MethodGet, "/api/v1/tenants/tenantA/notes/indexes", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"collection":"tenantA-notes","indexes":["_id_","title_text"]}`, w.Body.String())
	})

	t.Run("dropping a missing index succeeds", func(t *testing.T) {
		env := setupTestEnv(t)
		env.notes.IndexView().On("DropOne", mock.Anything, "nonexistent").
			Return(domainerrors.NewNotFoundOnDropError("nonexistent", errors.New("index not found")))

		w := env.do(http.MethodDelete, "/api/v1/tenants/tenantA/notes/indexes/nonexistent", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		env.audit.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
	})
}

func TestAuditFailureDoesNotFailRequest(t *testing.T) {
	env := setupTestEnv(t)
	env.notes.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	env.audit.On("InsertOne", mock.Anything, mock.Anything).
		Return(nil, domainerrors.NewConnectionError(errors.New("no reachable servers")))

	w := env.do(http.MethodPost, "/api/v1/tenants/tenantA/notes", dto.CreateNoteRequest{Title: "kept"})

	assert.Equal(t, http.StatusCreated, w.Code)
}
