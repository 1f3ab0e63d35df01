package handler

import (
	"errors"

	"github.com/enrollflow/enrollflow/internal/apiserver/database"
	"github.com/enrollflow/enrollflow/internal/audit"
	"github.com/enrollflow/enrollflow/internal/auth/jwt"
	"github.com/enrollflow/enrollflow/internal/i18n"
	"github.com/enrollflow/enrollflow/internal/intake"
	"github.com/enrollflow/enrollflow/internal/pipeline"
	"github.com/enrollflow/enrollflow/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler carries the dependencies shared by all API handlers
type Handler struct {
	db         database.Database
	engine     *pipeline.Engine
	intake     *intake.Service
	jwtService *jwt.Service
	auditor    *audit.Recorder
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(db database.Database, engine *pipeline.Engine, intakeSvc *intake.Service, jwtService *jwt.Service, auditor *audit.Recorder, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		db:         db,
		engine:     engine,
		intake:     intakeSvc,
		jwtService: jwtService,
		auditor:    auditor,
		metrics:    m,
		logger:     logger.Named("handler"),
	}
}

// actorFromContext rebuilds the pipeline actor from verified JWT claims.
// Client-supplied tenant or agent ids are never consulted.
func actorFromContext(c *gin.Context) (pipeline.Actor, bool) {
	claims, exists := c.Get("claims")
	if !exists {
		return pipeline.Actor{}, false
	}
	jwtClaims, ok := claims.(*jwt.Claims)
	if !ok {
		return pipeline.Actor{}, false
	}

	switch database.UserRole(jwtClaims.Role) {
	case database.RoleSuperAdmin:
		return pipeline.SuperAdmin(jwtClaims.UserID), true
	case database.RoleUniversityAdmin:
		return pipeline.UniversityAdmin(jwtClaims.UserID, jwtClaims.TenantID), true
	case database.RoleAgent:
		return pipeline.AgentActor(jwtClaims.UserID, jwtClaims.TenantID, jwtClaims.AgentID), true
	default:
		return pipeline.Actor{}, false
	}
}

// sendPipelineError maps engine errors onto i18n HTTP responses
func sendPipelineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pipeline.ErrNotFound):
		// uniform wording: missing, cross-tenant and out-of-scope all match
		i18n.Error(i18n.ErrNotFound).Send(c)
	case errors.Is(err, pipeline.ErrStageNotFound):
		i18n.Error(i18n.ErrorStageNotFound).Send(c)
	case errors.Is(err, pipeline.ErrAgentNotFound):
		i18n.Error(i18n.ErrorAgentNotFound).Send(c)
	case errors.Is(err, pipeline.ErrAgentInactive):
		i18n.Error(i18n.ErrorAgentInactive).Send(c)
	case errors.Is(err, pipeline.ErrEmptyStageName):
		i18n.Error(i18n.ErrorStageNameRequired).Send(c)
	case errors.Is(err, pipeline.ErrLeadRequired):
		i18n.Error(i18n.ErrorLeadRequiredField).Send(c)
	case errors.Is(err, pipeline.ErrForbidden):
		i18n.Error(i18n.ErrForbidden).Send(c)
	default:
		i18n.Error(i18n.ErrInternalServer).Send(c)
	}
}
