package handler

import (
	"net/http"
	"strconv"

	"github.com/enrollflow/enrollflow/internal/apiserver/database"
	"github.com/enrollflow/enrollflow/internal/i18n"
	"github.com/gin-gonic/gin"
)

// ListAuditLogs handles listing the tenant's audit trail, newest first
func (h *Handler) ListAuditLogs(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		i18n.Unauthorized("ErrorUnauthorized").Send(c)
		return
	}
	tenantID, ok := resolveTenantID(c, actor)
	if !ok {
		i18n.Error(i18n.ErrorTenantRequiredFields).Send(c)
		return
	}
	if !actor.CanAccessTenant(tenantID) {
		i18n.Error(i18n.ErrForbidden).Send(c)
		return
	}

	filter := &database.AuditFilter{
		Action:     c.Query("action"),
		EntityType: c.Query("entityType"),
		EntityID:   c.Query("entityId"),
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		filter.Offset = v
	}
	if filter.Limit == 0 || filter.Limit > 500 {
		filter.Limit = 100
	}

	logs, err := h.db.ListAuditLogs(c.Request.Context(), tenantID, filter)
	if err != nil {
		i18n.Error(i18n.ErrInternalServer).Send(c)
		return
	}

	c.JSON(http.StatusOK, logs)
}
