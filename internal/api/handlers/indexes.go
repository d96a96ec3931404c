package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unifiedui/docrepo-service/internal/api/dto"
	"github.com/unifiedui/docrepo-service/internal/api/middleware"
	"github.com/unifiedui/docrepo-service/internal/core/docdb"
	"github.com/unifiedui/docrepo-service/internal/domain/errors"
	"github.com/unifiedui/docrepo-service/internal/domain/models"
)

// ListIndexes handles GET /tenants/{tenantId}/notes/indexes
// @Summary List indexes
// @Tags Indexes
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Success 200 {object} dto.ListIndexesResponse
// @Router /api/v1/tenants/{tenantId}/notes/indexes [get]
func (h *NotesHandler) ListIndexes(c *gin.Context) {
	notes := h.notes(c)

	names, err := notes.ListIndexNames(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, wrapStoreError("failed to list indexes", err))
		return
	}

	c.JSON(http.StatusOK, dto.ListIndexesResponse{
		Collection: notes.CollectionName(),
		Indexes:    names,
	})
}

// CreateIndex handles POST /tenants/{tenantId}/notes/indexes
// @Summary Create index
// @Tags Indexes
// @Accept json
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param request body dto.CreateIndexRequest true "Index"
// @Success 201 {object} dto.IndexResponse
// @Failure 400 {object} dto.ErrorResponse "Bad Request"
// @Router /api/v1/tenants/{tenantId}/notes/indexes [post]
func (h *NotesHandler) CreateIndex(c *gin.Context) {
	var req dto.CreateIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	ctx := c.Request.Context()
	notes := h.notes(c)
	opts := indexOptions(&req)

	var (
		name string
		err  error
	)
	if req.Kind == dto.IndexKindCombinedText {
		name, err = notes.CreateCombinedTextIndex(ctx, req.Fields, opts)
	} else {
		if len(req.Fields) != 1 {
			middleware.HandleError(c, errors.NewValidationError("invalid fields", "exactly one field is required for "+req.Kind+" indexes"))
			return
		}
		field := req.Fields[0]
		switch req.Kind {
		case dto.IndexKindAscending:
			name, err = notes.CreateAscendingIndex(ctx, field, opts)
		case dto.IndexKindDescending:
			name, err = notes.CreateDescendingIndex(ctx, field, opts)
		case dto.IndexKindText:
			name, err = notes.CreateTextIndex(ctx, field, opts)
		case dto.IndexKindHashed:
			name, err = notes.CreateHashedIndex(ctx, field, opts)
		}
	}
	if err != nil {
		middleware.HandleError(c, wrapStoreError("failed to create index", err))
		return
	}

	h.audit.record(c, models.AuditActionIndex, notes.CollectionName(), name, 1)
	c.JSON(http.StatusCreated, dto.IndexResponse{Name: name})
}

// DropIndex handles DELETE /tenants/{tenantId}/notes/indexes/{name}
// Dropping an index that does not exist succeeds.
// @Summary Drop index
// @Tags Indexes
// @Param tenantId path string true "Tenant ID"
// @Param name path string true "Index name"
// @Success 204
// @Router /api/v1/tenants/{tenantId}/notes/indexes/{name} [delete]
func (h *NotesHandler) DropIndex(c *gin.Context) {
	name := c.Param("name")
	notes := h.notes(c)

	err := notes.DropIndex(c.Request.Context(), name)
	if domainErr, ok := errors.GetDomainError(err); ok && domainErr.Recoverable() {
		middleware.GetRequestLogger(c).Info().
			Str("collection", notes.CollectionName()).
			Str("index", name).
			Msg("index already absent")
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		middleware.HandleError(c, wrapStoreError("failed to drop index", err))
		return
	}

	h.audit.record(c, models.AuditActionIndex, notes.CollectionName(), name, 1)
	c.Status(http.StatusNoContent)
}

func indexOptions(req *dto.CreateIndexRequest) *docdb.IndexOptions {
	opts := &docdb.IndexOptions{
		Name:            req.Name,
		Unique:          req.Unique,
		Sparse:          req.Sparse,
		DefaultLanguage: req.DefaultLanguage,
		Weights:         req.Weights,
	}
	if req.ExpireAfterSeconds != nil {
		ttl := time.Duration(*req.ExpireAfterSeconds) * time.Second
		opts.ExpireAfter = &ttl
	}
	return opts
}
