package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/enrollflow/enrollflow/internal/apiserver/database"
	"github.com/enrollflow/enrollflow/internal/common/cnst"
	"github.com/enrollflow/enrollflow/internal/common/dto"
	"github.com/enrollflow/enrollflow/internal/i18n"
	"github.com/gin-gonic/gin"
)

// ListTenants handles listing all tenants
func (h *Handler) ListTenants(c *gin.Context) {
	tenants, err := h.db.ListTenants(c.Request.Context())
	if err != nil {
		i18n.Error(i18n.ErrInternalServer).Send(c)
		return
	}

	c.JSON(http.StatusOK, tenants)
}

// CreateTenant handles tenant creation
func (h *Handler) CreateTenant(c *gin.Context) {
	var req dto.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.Error(i18n.ErrorTenantRequiredFields).Send(c)
		return
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if req.Name == "" || slug == "" {
		i18n.Error(i18n.ErrorTenantRequiredFields).Send(c)
		return
	}
	visibility := req.LeadVisibility
	if visibility == "" {
		visibility = cnst.VisibilityAssignedOnly
	}
	if visibility != cnst.VisibilityAssignedOnly && visibility != cnst.VisibilityAllLeads {
		i18n.Error(i18n.ErrorInvalidVisibility).Send(c)
		return
	}

	// Check if name or slug already exists
	existingTenants, err := h.db.ListTenants(c.Request.Context())
	if err != nil {
		i18n.Error(i18n.ErrInternalServer).Send(c)
		return
	}
	for _, tenant := range existingTenants {
		if tenant.Name == req.Name {
			i18n.Error(i18n.ErrorTenantNameExists).Send(c)
			return
		}
		if tenant.Slug == slug {
			i18n.Error(i18n.ErrorTenantSlugExists).Send(c)
			return
		}
	}

	plan := req.Plan
	if plan == "" {
		plan = "free"
	}

	newTenant := &database.Tenant{
		Name:           req.Name,
		Slug:           slug,
		Plan:           plan,
		IsActive:       true,
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		LogoURL:        req.LogoURL,
		LeadVisibility: visibility,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := h.db.CreateTenant(c.Request.Context(), newTenant); err != nil {
		i18n.Error(i18n.ErrInternalServer).Send(c)
		return
	}

	actor, _ := actorFromContext(c)
	_ = h.auditor.Record(c.Request.Context(), newTenant.ID, actor.UserID, string(actor.Role),
		cnst.AuditTenantCreated, "tenant", fmt.Sprintf("%d", newTenant.ID),
		map[string]any{"slug": newTenant.Slug})

	i18n.Created(i18n.SuccessTenantCreated).With("id", newTenant.ID).Send(c)
}

// GetTenant handles getting tenant info by slug
func (h *Handler) GetTenant(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		i18n.Error(i18n.ErrorTenantRequiredFields).Send(c)
		return
	}

	tenant, err := h.db.GetTenantBySlug(c.Request.Context(), slug)
	if err != nil {
		i18n.Error(i18n.ErrorTenantNotFound).Send(c)
		return
	}

	c.JSON(http.StatusOK, tenant)
}

// UpdateTenant handles tenant updates, including suspension and
// reactivation. Tenants are never hard-deleted.
func (h *Handler) UpdateTenant(c *gin.Context) {
	slug := c.Param("slug")
	var req dto.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.BadRequest("ErrorInvalidRequest").Send(c)
		return
	}

	existing, err := h.db.GetTenantBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			i18n.Error(i18n.ErrorTenantNotFound).Send(c)
			return
		}
		i18n.Error(i18n.ErrInternalServer).Send(c)
		return
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Plan != "" {
		existing.Plan = req.Plan
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if req.PrimaryColor != nil {
		existing.PrimaryColor = *req.PrimaryColor
	}
	if req.SecondaryColor != nil {
		existing.SecondaryColor = *req.SecondaryColor
	}
	if req.LogoURL != nil {
		existing.LogoURL = *req.LogoURL
	}
	if req.LeadVisibility != nil {
		if *req.LeadVisibility != cnst.VisibilityAssignedOnly && *req.LeadVisibility != cnst.VisibilityAllLeads {
			i18n.Error(i18n.ErrorInvalidVisibility).Send(c)
			return
		}
		existing.LeadVisibility = *req.LeadVisibility
	}
	existing.UpdatedAt = time.Now()

	if err := h.db.UpdateTenant(c.Request.Context(), existing); err != nil {
		i18n.Error(i18n.ErrInternalServer).Send(c)
		return
	}

	actor, _ := actorFromContext(c)
	_ = h.auditor.Record(c.Request.Context(), existing.ID, actor.UserID, string(actor.Role),
		cnst.AuditTenantUpdated, "tenant", fmt.Sprintf("%d", existing.ID),
		map[string]any{"active": existing.IsActive})

	i18n.Success(i18n.SuccessTenantUpdated).Send(c)
}
