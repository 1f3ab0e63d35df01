package handler

import (
	"net/http"
	"strconv"

	"github.com/enrollflow/enrollflow/internal/apiserver/database"
	"github.com/enrollflow/enrollflow/internal/common/dto"
	"github.com/enrollflow/enrollflow/internal/i18n"
	"github.com/gin-gonic/gin"
)

// leadFilterFromQuery builds the list filter from query parameters. The
// visibility scope is applied later by the engine, never here.
func leadFilterFromQuery(c *gin.Context) *database.LeadFilter {
	filter := &database.LeadFilter{
		Source: c.Query("source"),
		Search: c.Query("q"),
	}
	if v, err := strconv.ParseUint(c.Query("stageId"), 10, 32); err == nil {
		id := uint(v)
		filter.StageID = &id
	}
	if v, err := strconv.ParseUint(c.Query("agentId"), 10, 32); err == nil {
		id := uint(v)
		filter.AgentID = &id
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		filter.Offset = v
	}
	return filter
}

// ListLeads handles listing leads within the actor's visibility scope
func (h *Handler) ListLeads(c *gin.Context) {
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

	leads, err := h.engine.ListLeads(c.Request.Context(), actor, tenantID, leadFilterFromQuery(c))
	if err != nil {
		sendPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, leads)
}

// CreateLead handles manual lead creation by staff
func (h *Handler) CreateLead(c *gin.Context) {
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

	var req dto.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.Error(i18n.ErrorLeadRequiredField).Send(c)
		return
	}

	lead := &database.Lead{
		TenantID:  tenantID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Country:   req.Country,
		City:      req.City,
		Program:   req.Program,
		Notes:     req.Notes,
		StageID:   req.StageID,
		AgentID:   req.AgentID,
		Score:     req.Score,
	}

	if err := h.engine.CreateLead(c.Request.Context(), actor, lead); err != nil {
		sendPipelineError(c, err)
		return
	}

	i18n.Created(i18n.SuccessLeadCreated).WithPayload(lead).Send(c)
}

// GetLead handles fetching one lead within the actor's scope
func (h *Handler) GetLead(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		i18n.Unauthorized("ErrorUnauthorized").Send(c)
		return
	}

	lead, err := h.engine.GetLead(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		sendPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, lead)
}

// MoveLead handles moving a lead to another stage, the board's core drag
// operation. Null stageId parks the lead outside the board.
func (h *Handler) MoveLead(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		i18n.Unauthorized("ErrorUnauthorized").Send(c)
		return
	}

	var req dto.MoveLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.BadRequest("ErrorInvalidRequest").Send(c)
		return
	}

	lead, err := h.engine.MoveLead(c.Request.Context(), actor, c.Param("id"), req.StageID)
	if err != nil {
		sendPipelineError(c, err)
		return
	}

	h.metrics.LeadMoved(string(actor.Role))
	i18n.Success(i18n.SuccessLeadMoved).WithPayload(lead).Send(c)
}

// AssignAgent handles assigning or unassigning a lead's agent
func (h *Handler) AssignAgent(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		i18n.Unauthorized("ErrorUnauthorized").Send(c)
		return
	}

	var req dto.AssignAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.BadRequest("ErrorInvalidRequest").Send(c)
		return
	}

	lead, err := h.engine.AssignAgent(c.Request.Context(), actor, c.Param("id"), req.AgentID)
	if err != nil {
		sendPipelineError(c, err)
		return
	}

	i18n.Success(i18n.SuccessLeadAssigned).WithPayload(lead).Send(c)
}

// ScoreLead handles updating a lead's score
func (h *Handler) ScoreLead(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		i18n.Unauthorized("ErrorUnauthorized").Send(c)
		return
	}

	var req dto.ScoreLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.BadRequest("ErrorInvalidRequest").Send(c)
		return
	}

	lead, err := h.engine.UpdateScore(c.Request.Context(), actor, c.Param("id"), req.Score)
	if err != nil {
		sendPipelineError(c, err)
		return
	}

	i18n.Success(i18n.SuccessLeadScored).WithPayload(lead).Send(c)
}
