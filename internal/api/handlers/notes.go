package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/unifiedui/docrepo-service/internal/api/dto"
	"github.com/unifiedui/docrepo-service/internal/api/middleware"
	"github.com/unifiedui/docrepo-service/internal/core/docdb"
	"github.com/unifiedui/docrepo-service/internal/domain/errors"
	"github.com/unifiedui/docrepo-service/internal/domain/models"
	"github.com/unifiedui/docrepo-service/internal/repository"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// NotesHandler handles tenant-scoped note endpoints.
type NotesHandler struct {
	repo  *repository.GUIDRepository
	audit *auditLog
}

// NewNotesHandler creates a new NotesHandler. auditRepo may be nil to disable auditing.
func NewNotesHandler(repo *repository.GUIDRepository, auditRepo *repository.Repository[string]) *NotesHandler {
	return &NotesHandler{
		repo:  repo,
		audit: newAuditLog(auditRepo),
	}
}

func (h *NotesHandler) notes(c *gin.Context) *repository.DefaultSet[*models.Note] {
	return repository.ForDefault[*models.Note](h.repo, middleware.GetTenantID(c))
}

// CreateNote handles POST /tenants/{tenantId}/notes
// @Summary Create note
// @Tags Notes
// @Accept json
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param request body dto.CreateNoteRequest true "Note"
// @Success 201 {object} dto.NoteResponse
// @Failure 400 {object} dto.ErrorResponse "Bad Request"
// @Failure 409 {object} dto.ErrorResponse "Conflict"
// @Router /api/v1/tenants/{tenantId}/notes [post]
func (h *NotesHandler) CreateNote(c *gin.Context) {
	var req dto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	note, err := noteFromRequest(&req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	notes := h.notes(c)
	if err := notes.AddOne(c.Request.Context(), note); err != nil {
		middleware.HandleError(c, wrapStoreError("failed to create note", err))
		return
	}

	h.audit.record(c, models.AuditActionCreate, notes.CollectionName(), note.ID.String(), 1)
	c.JSON(http.StatusCreated, dto.NoteToResponse(note))
}

// CreateNotes handles POST /tenants/{tenantId}/notes/batch
// @Summary Create notes
// @Tags Notes
// @Accept json
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param request body dto.CreateNotesRequest true "Notes"
// @Success 201 {object} dto.CreateNotesResponse
// @Failure 400 {object} dto.ErrorResponse "Bad Request"
// @Router /api/v1/tenants/{tenantId}/notes/batch [post]
func (h *NotesHandler) CreateNotes(c *gin.Context) {
	var req dto.CreateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	batch := make([]*models.Note, 0, len(req.Notes))
	for i := range req.Notes {
		note, err := noteFromRequest(&req.Notes[i])
		if err != nil {
			middleware.HandleError(c, err)
			return
		}
		batch = append(batch, note)
	}

	notes := h.notes(c)
	if err := notes.AddMany(c.Request.Context(), batch); err != nil {
		middleware.HandleError(c, wrapStoreError("failed to create notes", err))
		return
	}

	h.audit.record(c, models.AuditActionCreate, notes.CollectionName(), "", int64(len(batch)))
	c.JSON(http.StatusCreated, dto.CreateNotesResponse{Notes: dto.NotesToResponse(batch)})
}

// ListNotes handles GET /tenants/{tenantId}/notes
// @Summary List notes
// @Tags Notes
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param skip query int false "Documents to skip"
// @Param limit query int false "Page size"
// @Param sortBy query string false "Sort field"
// @Param order query string false "Sort order"
// @Param tag query string false "Only notes carrying this tag"
// @Success 200 {object} dto.ListNotesResponse
// @Failure 400 {object} dto.ErrorResponse "Bad Request"
// @Failure 500 {object} dto.ErrorResponse "Internal Server Error"
// @Router /api/v1/tenants/{tenantId}/notes [get]
func (h *NotesHandler) ListNotes(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)), 10, 64)
	if err != nil || limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	skip, err := strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	if err != nil || skip < 0 {
		skip = 0
	}

	order := docdb.SortOrderDesc
	if c.DefaultQuery("order", "desc") == "asc" {
		order = docdb.SortOrderAsc
	}

	var filter bson.M
	if tag := c.Query("tag"); tag != "" {
		filter = bson.M{"tags": tag}
	}

	page, err := h.notes(c).GetPaginated(c.Request.Context(), filter, repository.Page{
		Skip:   skip,
		Limit:  limit,
		SortBy: c.DefaultQuery("sortBy", "createdAt"),
		Order:  order,
	})
	if err != nil {
		middleware.HandleError(c, wrapStoreError("failed to list notes", err))
		return
	}

	c.JSON(http.StatusOK, dto.ListNotesResponse{
		Notes: dto.NotesToResponse(page.Items),
		Total: page.Total,
		Limit: page.Limit,
		Skip:  page.Skip,
	})
}

// SearchNotes handles GET /tenants/{tenantId}/notes/search?q=
// It requires a text index on the tenant's notes collection.
// @Summary Full-text search
// @Tags Notes
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param q query string true "Search terms"
// @Success 200 {object} dto.ListNotesResponse
// @Failure 400 {object} dto.ErrorResponse "Bad Request"
// @Router /api/v1/tenants/{tenantId}/notes/search [get]
func (h *NotesHandler) SearchNotes(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		middleware.HandleError(c, errors.NewBadRequestError("missing query", "q is required"))
		return
	}

	found, err := h.notes(c).GetAll(c.Request.Context(), bson.M{"$text": bson.M{"$search": query}})
	if err != nil {
		middleware.HandleError(c, wrapStoreError("failed to search notes", err))
		return
	}

	c.JSON(http.StatusOK, dto.ListNotesResponse{
		Notes: dto.NotesToResponse(found),
		Total: int64(len(found)),
	})
}

// GetNote handles GET /tenants/{tenantId}/notes/{noteId}
// @Summary Get note
// @Tags Notes
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param noteId path string true "Note ID"
// @Success 200 {object} dto.NoteResponse
// @Failure 404 {object} dto.ErrorResponse "Not Found"
// @Router /api/v1/tenants/{tenantId}/notes/{noteId} [get]
func (h *NotesHandler) GetNote(c *gin.Context) {
	id, ok := parseNoteID(c)
	if !ok {
		return
	}

	note, err := h.notes(c).GetByID(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, wrapStoreError("failed to get note", err))
		return
	}
	if note == nil {
		middleware.HandleError(c, errors.NewNotFoundError("note", id.String()))
		return
	}

	c.JSON(http.StatusOK, dto.NoteToResponse(note))
}

// ReplaceNote handles PUT /tenants/{tenantId}/notes/{noteId}
// @Summary Replace note
// @Tags Notes
// @Accept json
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param noteId path string true "Note ID"
// @Param request body dto.CreateNoteRequest true "Note"
// @Success 200 {object} dto.NoteResponse
// @Failure 404 {object} dto.ErrorResponse "Not Found"
// @Router /api/v1/tenants/{tenantId}/notes/{noteId} [put]
func (h *NotesHandler) ReplaceNote(c *gin.Context) {
	id, ok := parseNoteID(c)
	if !ok {
		return
	}

	var req dto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	ctx := c.Request.Context()
	notes := h.notes(c)

	existing, err := notes.GetByID(ctx, id)
	if err != nil {
		middleware.HandleError(c, wrapStoreError("failed to get note", err))
		return
	}
	if existing == nil {
		middleware.HandleError(c, errors.NewNotFoundError("note", id.String()))
		return
	}

	replacement := &models.Note{
		ID:        id,
		Title:     req.Title,
		Body:      req.Body,
		Tags:      req.Tags,
		Priority:  req.Priority,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}
	replaced, err := notes.ReplaceOne(ctx, replacement)
	if err != nil {
		middleware.HandleError(c, wrapStoreError("failed to replace note", err))
		return
	}
	if !replaced {
		// Deleted since it was read.
		middleware.HandleError(c, errors.NewNotFoundError("note", id.String()))
		return
	}

	h.audit.record(c, models.AuditActionUpdate, notes.CollectionName(), id.String(), 1)
	c.JSON(http.StatusOK, dto.NoteToResponse(replacement))
}

// UpdateNote handles PATCH /tenants/{tenantId}/notes/{noteId}
// @Summary Update note
// @Tags Notes
// @Accept json
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param noteId path string true "Note ID"
// @Param request body dto.UpdateNoteRequest true "Fields to change"
// @Success 200 {object} dto.NoteResponse
// @Failure 404 {object} dto.ErrorResponse "Not Found"
// @Router /api/v1/tenants/{tenantId}/notes/{noteId} [patch]
func (h *NotesHandler) UpdateNote(c *gin.Context) {
	id, ok := parseNoteID(c)
	if !ok {
		return
	}

	var req dto.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}
	if req.IsEmpty() {
		middleware.HandleError(c, errors.NewValidationError("empty update", "at least one field must be set"))
		return
	}

	notes := h.notes(c)
	note, err := notes.FindOneAndUpdate(c.Request.Context(),
		bson.M{"_id": id},
		bson.M{"$set": updateFields(&req)},
		&docdb.FindOneAndUpdateOptions{ReturnDocument: docdb.ReturnAfter},
	)
	if err != nil {
		middleware.HandleError(c, wrapStoreError("failed to update note", err))
		return
	}
	if note == nil {
		middleware.HandleError(c, errors.NewNotFoundError("note", id.String()))
		return
	}

	h.audit.record(c, models.AuditActionUpdate, notes.CollectionName(), id.String(), 1)
	c.JSON(http.StatusOK, dto.NoteToResponse(note))
}

// DeleteNote handles DELETE /tenants/{tenantId}/notes/{noteId}
// @Summary Delete note
// @Tags Notes
// @Param tenantId path string true "Tenant ID"
// @Param noteId path string true "Note ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse "Not Found"
// @Router /api/v1/tenants/{tenantId}/notes/{noteId} [delete]
func (h *NotesHandler) DeleteNote(c *gin.Context) {
	id, ok := parseNoteID(c)
	if !ok {
		return
	}

	notes := h.notes(c)
	deleted, err := notes.DeleteOne(c.Request.Context(), &models.Note{ID: id})
	if err != nil {
		middleware.HandleError(c, wrapStoreError("failed to delete note", err))
		return
	}
	if deleted == 0 {
		middleware.HandleError(c, errors.NewNotFoundError("note", id.String()))
		return
	}

	h.audit.record(c, models.AuditActionDelete, notes.CollectionName(), id.String(), deleted)
	c.Status(http.StatusNoContent)
}

// DeleteNotes handles DELETE /tenants/{tenantId}/notes
// An optional tag query parameter restricts the deletion.
// @Summary Delete notes
// @Tags Notes
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param tag query string false "Only notes carrying this tag"
// @Success 200 {object} dto.DeleteNotesResponse
// @Failure 500 {object} dto.ErrorResponse "Internal Server Error"
// @Router /api/v1/tenants/{tenantId}/notes [delete]
func (h *NotesHandler) DeleteNotes(c *gin.Context) {
	filter := bson.M{}
	if tag := c.Query("tag"); tag != "" {
		filter["tags"] = tag
	}

	notes := h.notes(c)
	deleted, err := notes.DeleteManyWhere(c.Request.Context(), filter)
	if err != nil {
		middleware.HandleError(c, wrapStoreError("failed to delete notes", err))
		return
	}

	if deleted > 0 {
		h.audit.record(c, models.AuditActionDelete, notes.CollectionName(), "", deleted)
	}
	c.JSON(http.StatusOK, dto.DeleteNotesResponse{Deleted: deleted})
}

// GetStats handles GET /tenants/{tenantId}/notes/stats
// @Summary Note statistics
// @Tags Notes
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Success 200 {object} dto.NoteStatsResponse
// @Failure 500 {object} dto.ErrorResponse "Internal Server Error"
// @Router /api/v1/tenants/{tenantId}/notes/stats [get]
func (h *NotesHandler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	notes := h.notes(c)

	count := repository.Async(ctx, func(ctx context.Context) (int64, error) {
		return notes.Count(ctx, nil)
	})
	total := repository.Async(ctx, func(ctx context.Context) (float64, error) {
		return notes.SumBy(ctx, nil, "priority")
	})
	highest := repository.Async(ctx, func(ctx context.Context) (*models.Note, error) {
		return notes.GetByMax(ctx, nil, "priority")
	})
	lowest := repository.Async(ctx, func(ctx context.Context) (*models.Note, error) {
		return notes.GetByMin(ctx, nil, "priority")
	})

	stats := dto.NoteStatsResponse{Collection: notes.CollectionName()}
	var err error
	if stats.Count, err = count.Wait(); err != nil {
		middleware.HandleError(c, wrapStoreError("failed to count notes", err))
		return
	}
	if stats.TotalPriority, err = total.Wait(); err != nil {
		middleware.HandleError(c, wrapStoreError("failed to sum note priorities", err))
		return
	}
	maxNote, err := highest.Wait()
	if err != nil {
		middleware.HandleError(c, wrapStoreError("failed to get highest priority note", err))
		return
	}
	minNote, err := lowest.Wait()
	if err != nil {
		middleware.HandleError(c, wrapStoreError("failed to get lowest priority note", err))
		return
	}
	if maxNote != nil {
		stats.HighestPriority = dto.NoteToResponse(maxNote)
	}
	if minNote != nil {
		stats.LowestPriority = dto.NoteToResponse(minNote)
	}

	c.JSON(http.StatusOK, stats)
}

func parseNoteID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param("noteId")
	id, err := uuid.Parse(raw)
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("invalid note id", raw))
		return uuid.Nil, false
	}
	return id, true
}

func noteFromRequest(req *dto.CreateNoteRequest) (*models.Note, error) {
	note := models.NewNote(req.Title, req.Body, req.Tags, req.Priority)
	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			return nil, errors.NewBadRequestError("invalid note id", req.ID)
		}
		note.ID = id
	}
	return note, nil
}

func updateFields(req *dto.UpdateNoteRequest) bson.M {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Body != nil {
		set["body"] = *req.Body
	}
	if req.Tags != nil {
		set["tags"] = *req.Tags
	}
	if req.Priority != nil {
		set["priority"] = *req.Priority
	}
	return set
}

// wrapStoreError keeps classified store errors and turns anything else into an internal error.
func wrapStoreError(message string, err error) error {
	if errors.IsDomainError(err) {
		return err
	}
	return errors.NewInternalError(message, err)
}
