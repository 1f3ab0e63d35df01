package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/enrollflow/enrollflow/internal/apiserver/database"
	"github.com/enrollflow/enrollflow/internal/auth/jwt"
	"github.com/enrollflow/enrollflow/internal/common/dto"
	"github.com/enrollflow/enrollflow/internal/i18n"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Login handles user login
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.BadRequest("ErrorInvalidRequest").Send(c)
		return
	}

	user, err := h.db.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		i18n.Error(i18n.ErrorInvalidCredentials).Send(c)
		return
	}

	if !user.IsActive {
		i18n.Error(i18n.ErrorUserDisabled).Send(c)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		i18n.Error(i18n.ErrorInvalidCredentials).Send(c)
		return
	}

	var tenantID, agentID uint
	if user.TenantID != nil {
		tenantID = *user.TenantID

		// a suspended tenant blocks everyone but super admins
		tenant, err := h.db.GetTenantByID(c.Request.Context(), tenantID)
		if err != nil || !tenant.IsActive {
			i18n.Error(i18n.ErrorTenantSuspended).Send(c)
			return
		}
	}
	if user.Role == database.RoleAgent {
		agent, err := h.db.GetAgentProfileByUserID(c.Request.Context(), user.ID)
		if err != nil {
			i18n.Error(i18n.ErrorAgentNotFound).Send(c)
			return
		}
		if !agent.IsActive {
			i18n.Error(i18n.ErrorUserDisabled).Send(c)
			return
		}
		agentID = agent.ID
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Email, string(user.Role), tenantID, agentID)
	if err != nil {
		i18n.InternalError("ErrorTokenGeneration").Send(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": dto.UserInfo{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Role:        string(user.Role),
			TenantID:    tenantID,
			AgentID:     agentID,
		},
	})
}

// ChangePassword handles password change requests
func (h *Handler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.BadRequest("ErrorInvalidRequest").Send(c)
		return
	}

	claims, exists := c.Get("claims")
	if !exists {
		i18n.Unauthorized("ErrorUnauthorized").Send(c)
		return
	}
	jwtClaims := claims.(*jwt.Claims)

	user, err := h.db.GetUserByID(c.Request.Context(), jwtClaims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			i18n.Error(i18n.ErrorUserNotFound).Send(c)
			return
		}
		i18n.Error(i18n.ErrInternalServer).Send(c)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		i18n.Error(i18n.ErrorInvalidOldPassword).Send(c)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		i18n.Error(i18n.ErrInternalServer).Send(c)
		return
	}

	user.Password = string(hashedPassword)
	user.UpdatedAt = time.Now()
	if err := h.db.UpdateUser(c.Request.Context(), user); err != nil {
		i18n.Error(i18n.ErrInternalServer).Send(c)
		return
	}

	i18n.Success(i18n.SuccessPasswordChanged).Send(c)
}

// Me returns the authenticated user's info
func (h *Handler) Me(c *gin.Context) {
	claims, exists := c.Get("claims")
	if !exists {
		i18n.Unauthorized("ErrorUnauthorized").Send(c)
		return
	}
	jwtClaims := claims.(*jwt.Claims)

	user, err := h.db.GetUserByID(c.Request.Context(), jwtClaims.UserID)
	if err != nil {
		i18n.Error(i18n.ErrorUserNotFound).Send(c)
		return
	}

	c.JSON(http.StatusOK, dto.UserInfo{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TenantID:    jwtClaims.TenantID,
		AgentID:     jwtClaims.AgentID,
	})
}

// SuperAdminMiddleware creates a middleware that only lets super admins through
func SuperAdminMiddleware() gin.HandlerFunc {
	return roleMiddleware(database.RoleSuperAdmin)
}

// AdminMiddleware creates a middleware for super admins and university admins
func AdminMiddleware() gin.HandlerFunc {
	return roleMiddleware(database.RoleSuperAdmin, database.RoleUniversityAdmin)
}

func roleMiddleware(roles ...database.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, exists := c.Get("claims")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		jwtClaims, ok := claims.(*jwt.Claims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		for _, role := range roles {
			if database.UserRole(jwtClaims.Role) == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}
