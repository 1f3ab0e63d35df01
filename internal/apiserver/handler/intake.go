package handler

import (
	"errors"

	"github.com/enrollflow/enrollflow/internal/i18n"
	"github.com/enrollflow/enrollflow/internal/intake"
	"github.com/enrollflow/enrollflow/internal/pipeline"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubmitUniversityForm handles the public per-university application form.
// No authentication; the slug alone selects the tenant.
func (h *Handler) SubmitUniversityForm(c *gin.Context) {
	h.handleIntake(c, func(sub *intake.Submission) (string, error) {
		return h.intake.SubmitUniversityForm(c.Request.Context(), c.Param("slug"), c.ClientIP(), sub)
	})
}

// SubmitAgentForm handles the public agent landing form. The created lead
// is pre-assigned to the agent behind the slug.
func (h *Handler) SubmitAgentForm(c *gin.Context) {
	h.handleIntake(c, func(sub *intake.Submission) (string, error) {
		return h.intake.SubmitAgentForm(c.Request.Context(), c.Param("slug"), c.ClientIP(), sub)
	})
}

func (h *Handler) handleIntake(c *gin.Context, submit func(*intake.Submission) (string, error)) {
	var sub intake.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		h.metrics.IntakeSubmission(intake.OutcomeRejected)
		i18n.Error(i18n.ErrorLeadRequiredField).Send(c)
		return
	}

	outcome, err := submit(&sub)
	h.metrics.IntakeSubmission(outcome)
	if err != nil {
		switch {
		case errors.Is(err, intake.ErrFormNotFound):
			i18n.Error(i18n.ErrorIntakeFormNotFound).Send(c)
		case errors.Is(err, intake.ErrThrottled):
			i18n.Error(i18n.ErrorIntakeThrottled).Send(c)
		case errors.Is(err, pipeline.ErrLeadRequired):
			i18n.Error(i18n.ErrorLeadRequiredField).Send(c)
		default:
			h.logger.Error("intake submission failed", zap.Error(err))
			i18n.Error(i18n.ErrInternalServer).Send(c)
		}
		return
	}

	// Honeypot hits land here too; callers cannot tell them apart.
	i18n.Success(i18n.SuccessFormReceived).Send(c)
}
