package handler

import (
	"net/http"
	"strconv"

	"github.com/enrollflow/enrollflow/internal/common/dto"
	"github.com/enrollflow/enrollflow/internal/i18n"
	"github.com/enrollflow/enrollflow/internal/pipeline"
	"github.com/gin-gonic/gin"
)

// resolveTenantID determines the tenant an operation targets: actors bound
// to a tenant always get their own; super admins name one with ?tenantId.
func resolveTenantID(c *gin.Context, actor pipeline.Actor) (uint, bool) {
	if actor.TenantID != 0 {
		return actor.TenantID, true
	}
	id, err := strconv.ParseUint(c.Query("tenantId"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// ListStages handles listing the tenant's pipeline stages in board order
func (h *Handler) ListStages(c *gin.Context) {
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

	stages, err := h.engine.ListStages(c.Request.Context(), actor, tenantID)
	if err != nil {
		sendPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, stages)
}

// SaveStages handles the atomic board save: create, rename, reorder and
// delete stages in one all-or-nothing batch
func (h *Handler) SaveStages(c *gin.Context) {
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

	var req dto.SaveStagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.BadRequest("ErrorInvalidRequest").Send(c)
		return
	}

	batch := make([]pipeline.StageInput, 0, len(req.Stages))
	for _, entry := range req.Stages {
		batch = append(batch, pipeline.StageInput{
			ID:      entry.ID,
			Name:    entry.Name,
			Color:   entry.Color,
			Deleted: entry.Deleted,
		})
	}

	stages, err := h.engine.ReorderStages(c.Request.Context(), actor, tenantID, batch)
	if err != nil {
		sendPipelineError(c, err)
		return
	}

	h.metrics.StageBatchSaved()
	i18n.Success(i18n.SuccessStagesSaved).WithPayload(stages).Send(c)
}
