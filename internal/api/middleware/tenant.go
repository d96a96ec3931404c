package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/unifiedui/docrepo-service/internal/domain/errors"
)

// tenantPattern limits tenant ids to characters that are safe in collection names.
var tenantPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,62}$`)

// TenantMiddleware extracts the tenant from the path. The tenant id is the
// partition key of every tenant-scoped collection.
type TenantMiddleware struct{}

// NewTenantMiddleware creates a new TenantMiddleware.
func NewTenantMiddleware() *TenantMiddleware {
	return &TenantMiddleware{}
}

// ExtractTenant returns a gin middleware that validates and stores the tenant id.
func (m *TenantMiddleware) ExtractTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.Param("tenantId")
		if !tenantPattern.MatchString(tenantID) {
			HandleError(c, domainerrors.NewBadRequestError("invalid tenant id", tenantID))
			return
		}

		c.Set("tenant_id", tenantID)
		c.Next()
	}
}

// GetTenantID retrieves the tenant ID from the gin context.
func GetTenantID(c *gin.Context) string {
	if tenantID, exists := c.Get("tenant_id"); exists {
		return tenantID.(string)
	}
	return c.Param("tenantId")
}
