package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/unifiedui/docrepo-service/internal/api/middleware"
	"github.com/unifiedui/docrepo-service/internal/domain/models"
	"github.com/unifiedui/docrepo-service/internal/repository"
)

// auditLog appends audit entries to the shared auditEntries collection.
// A failed audit write is logged and does not fail the request.
type auditLog struct {
	entries *repository.DocumentSet[*models.AuditEntry, string]
}

func newAuditLog(repo *repository.Repository[string]) *auditLog {
	if repo == nil {
		return nil
	}
	return &auditLog{entries: repository.For[*models.AuditEntry](repo, "")}
}

func (a *auditLog) record(c *gin.Context, action models.AuditAction, collection, subject string, count int64) {
	if a == nil {
		return
	}

	tenantID := middleware.GetTenantID(c)
	entry := models.NewAuditEntry(tenantID, action, collection, subject, count)
	if err := a.entries.AddOne(c.Request.Context(), entry); err != nil {
		middleware.GetRequestLogger(c).Warn().
			Err(err).
			Str("action", string(action)).
			Str("collection", collection).
			Msg("failed to record audit entry")
	}
}
