package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/enrollflow/enrollflow/internal/apiserver/database"
	"github.com/enrollflow/enrollflow/internal/common/cnst"
	"github.com/enrollflow/enrollflow/internal/common/dto"
	"github.com/enrollflow/enrollflow/internal/i18n"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ListUsers handles listing users. Super admins see everyone; university
// admins see their own tenant only.
func (h *Handler) ListUsers(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		i18n.Unauthorized("ErrorUnauthorized").Send(c)
		return
	}

	var tenantID *uint
	if actor.Role != database.RoleSuperAdmin {
		id := actor.TenantID
		tenantID = &id
	}

	users, err := h.db.ListUsers(c.Request.Context(), tenantID)
	if err != nil {
		i18n.Error(i18n.ErrInternalServer).Send(c)
		return
	}

	c.JSON(http.StatusOK, users)
}

// CreateUser handles user creation. Creating an agent also provisions the
// per-tenant agent profile with a fresh public slug.
func (h *Handler) CreateUser(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		i18n.Unauthorized("ErrorUnauthorized").Send(c)
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.Error(i18n.ErrorEmailPasswordRequired).Send(c)
		return
	}

	role := database.UserRole(req.Role)
	if role != database.RoleUniversityAdmin && role != database.RoleAgent {
		i18n.Error(i18n.ErrorInvalidRole).Send(c)
		return
	}

	// University admins provision inside their own tenant only; super
	// admins must name the target tenant.
	tenantID := req.TenantID
	if actor.Role == database.RoleUniversityAdmin {
		tenantID = actor.TenantID
	}
	if tenantID == 0 {
		i18n.Error(i18n.ErrorTenantRequiredFields).Send(c)
		return
	}
	tenant, err := h.db.GetTenantByID(c.Request.Context(), tenantID)
	if err != nil {
		i18n.Error(i18n.ErrorTenantNotFound).Send(c)
		return
	}
	if !tenant.IsActive {
		i18n.Error(i18n.ErrorTenantSuspended).Send(c)
		return
	}

	if _, err := h.db.GetUserByEmail(c.Request.Context(), req.Email); err == nil {
		i18n.Error(i18n.ErrorEmailExists).Send(c)
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		i18n.Error(i18n.ErrInternalServer).Send(c)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		i18n.Error(i18n.ErrInternalServer).Send(c)
		return
	}

	user := &database.User{
		Email:       req.Email,
		Password:    string(hashedPassword),
		Role:        role,
		TenantID:    &tenantID,
		DisplayName: req.DisplayName,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	// User plus agent profile commit together or not at all
	err = h.db.Transaction(c.Request.Context(), func(txCtx context.Context) error {
		if err := h.db.CreateUser(txCtx, user); err != nil {
			return err
		}
		if role != database.RoleAgent {
			return nil
		}
		profile := &database.AgentProfile{
			UserID:      user.ID,
			TenantID:    tenantID,
			DisplayName: req.DisplayName,
			Slug:        uuid.NewString(),
			Phone:       req.Phone,
			Bio:         req.Bio,
			IsActive:    true,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		return h.db.CreateAgentProfile(txCtx, profile)
	})
	if err != nil {
		i18n.Error(i18n.ErrInternalServer).Send(c)
		return
	}

	_ = h.auditor.Record(c.Request.Context(), tenantID, actor.UserID, string(actor.Role),
		cnst.AuditUserCreated, "user", fmt.Sprintf("%d", user.ID),
		map[string]any{"role": string(role)})

	i18n.Created(i18n.SuccessUserCreated).With("id", user.ID).Send(c)
}

// ChangeRole switches a user between university_admin and agent within
// their tenant. Demoting an admin to agent provisions an agent profile if
// one does not exist yet.
func (h *Handler) ChangeRole(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		i18n.Unauthorized("ErrorUnauthorized").Send(c)
		return
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		i18n.Error(i18n.ErrorUserNotFound).Send(c)
		return
	}

	var req dto.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.Error(i18n.ErrorInvalidRole).Send(c)
		return
	}
	newRole := database.UserRole(req.Role)
	if newRole != database.RoleUniversityAdmin && newRole != database.RoleAgent {
		i18n.Error(i18n.ErrorInvalidRole).Send(c)
		return
	}

	user, err := h.db.GetUserByID(c.Request.Context(), uint(userID))
	if err != nil {
		i18n.Error(i18n.ErrorUserNotFound).Send(c)
		return
	}
	if user.TenantID == nil {
		// super admins have no tenant affiliation to change role within
		i18n.Error(i18n.ErrorInvalidRole).Send(c)
		return
	}
	if !actor.CanAccessTenant(*user.TenantID) {
		// report uniformly; cross-tenant probes learn nothing
		i18n.Error(i18n.ErrorUserNotFound).Send(c)
		return
	}

	if user.Role == newRole {
		i18n.Success(i18n.SuccessRoleChanged).Send(c)
		return
	}

	err = h.db.Transaction(c.Request.Context(), func(txCtx context.Context) error {
		user.Role = newRole
		user.UpdatedAt = time.Now()
		if err := h.db.UpdateUser(txCtx, user); err != nil {
			return err
		}
		if newRole != database.RoleAgent {
			return nil
		}
		if _, err := h.db.GetAgentProfileByUserID(txCtx, user.ID); err == nil {
			return nil
		} else if !errors.Is(err, database.ErrNotFound) {
			return err
		}
		profile := &database.AgentProfile{
			UserID:      user.ID,
			TenantID:    *user.TenantID,
			DisplayName: user.DisplayName,
			Slug:        uuid.NewString(),
			IsActive:    true,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		return h.db.CreateAgentProfile(txCtx, profile)
	})
	if err != nil {
		i18n.Error(i18n.ErrInternalServer).Send(c)
		return
	}

	_ = h.auditor.Record(c.Request.Context(), *user.TenantID, actor.UserID, string(actor.Role),
		cnst.AuditUserRole, "user", fmt.Sprintf("%d", user.ID),
		map[string]any{"role": string(newRole)})

	i18n.Success(i18n.SuccessRoleChanged).Send(c)
}
