package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// parseIDParam parses the :id path parameter, writing a 400 when it is not a UUID
func (h *BaseHandler) parseIDParam(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid "+what+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// tenantOrAbort resolves the tenant, writing a 400 when the header is malformed
func (h *BaseHandler) tenantOrAbort(c *gin.Context) (uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return uuid.Nil, false
	}
	return tenantID, true
}

// optionalUUIDQuery parses an optional UUID query parameter, writing a 400 when malformed
func (h *BaseHandler) optionalUUIDQuery(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "Invalid "+key+" format")
		return nil, false
	}
	return &id, true
}
