package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/enrollflow/enrollflow/internal/common/dto"
	"github.com/enrollflow/enrollflow/internal/i18n"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListAgents handles listing the tenant's agent profiles
func (h *Handler) ListAgents(c *gin.Context) {
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

	agents, err := h.db.ListAgentProfiles(c.Request.Context(), tenantID)
	if err != nil {
		i18n.Error(i18n.ErrInternalServer).Send(c)
		return
	}

	c.JSON(http.StatusOK, agents)
}

// UpdateAgent handles agent profile updates, including deactivation.
// Deactivation blocks login and pipeline visibility but deletes nothing.
func (h *Handler) UpdateAgent(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		i18n.Unauthorized("ErrorUnauthorized").Send(c)
		return
	}

	agentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		i18n.Error(i18n.ErrorAgentNotFound).Send(c)
		return
	}

	var req dto.UpdateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.BadRequest("ErrorInvalidRequest").Send(c)
		return
	}

	agent, err := h.db.GetAgentProfileByID(c.Request.Context(), uint(agentID))
	if err != nil {
		i18n.Error(i18n.ErrorAgentNotFound).Send(c)
		return
	}
	if !actor.CanAccessTenant(agent.TenantID) {
		i18n.Error(i18n.ErrorAgentNotFound).Send(c)
		return
	}

	if req.DisplayName != nil {
		agent.DisplayName = *req.DisplayName
	}
	if req.Phone != nil {
		agent.Phone = *req.Phone
	}
	if req.Bio != nil {
		agent.Bio = *req.Bio
	}
	if req.IsActive != nil {
		agent.IsActive = *req.IsActive
	}
	agent.UpdatedAt = time.Now()

	if err := h.db.UpdateAgentProfile(c.Request.Context(), agent); err != nil {
		i18n.Error(i18n.ErrInternalServer).Send(c)
		return
	}

	i18n.Success(i18n.SuccessAgentUpdated).WithPayload(agent).Send(c)
}

// RotateAgentSlug replaces the agent's public landing slug, invalidating
// the previous personal link
func (h *Handler) RotateAgentSlug(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		i18n.Unauthorized("ErrorUnauthorized").Send(c)
		return
	}

	agentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		i18n.Error(i18n.ErrorAgentNotFound).Send(c)
		return
	}

	agent, err := h.db.GetAgentProfileByID(c.Request.Context(), uint(agentID))
	if err != nil {
		i18n.Error(i18n.ErrorAgentNotFound).Send(c)
		return
	}
	if !actor.CanAccessTenant(agent.TenantID) {
		i18n.Error(i18n.ErrorAgentNotFound).Send(c)
		return
	}

	agent.Slug = uuid.NewString()
	agent.UpdatedAt = time.Now()
	if err := h.db.UpdateAgentProfile(c.Request.Context(), agent); err != nil {
		i18n.Error(i18n.ErrInternalServer).Send(c)
		return
	}

	i18n.Success(i18n.SuccessAgentUpdated).With("slug", agent.Slug).Send(c)
}
