package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/interfaces/http/dto"
)

// Keys for tenant propagation through gin.Context
const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantRequired resolves the tenant from the X-Tenant-ID header. The header
// is populated by the upstream authentication layer; this middleware only
// validates shape and makes the id available to handlers. Requests without a
// parseable tenant id are rejected.
func TenantRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(TenantHeaderKey)
		if raw == "" {
			abortWithValidation(c, "missing "+TenantHeaderKey+" header")
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			abortWithValidation(c, "malformed tenant id: "+raw)
			return
		}

		c.Set(TenantIDKey, tenantID.String())
		c.Next()
	}
}

// GetTenantID returns the resolved tenant id, or uuid.Nil when the
// middleware did not run.
func GetTenantID(c *gin.Context) uuid.UUID {
	raw := c.GetString(TenantIDKey)
	if raw == "" {
		return uuid.Nil
	}
	tenantID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return tenantID
}

func abortWithValidation(c *gin.Context, message string) {
	requestID := c.GetString("request_id")
	c.AbortWithStatusJSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(shared.CodeValidation, message, requestID))
}
