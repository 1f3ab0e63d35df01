package pipeline

import (
	"github.com/enrollflow/enrollflow/internal/apiserver/database"
	"github.com/enrollflow/enrollflow/internal/common/cnst"
)

// Actor is the authenticated identity every pipeline operation runs as.
// TenantID is zero for super admins; AgentID is the agent profile ID and is
// zero for every other role. Handlers build it from verified JWT claims,
// never from client-supplied fields.
type Actor struct {
	UserID   uint
	Role     database.UserRole
	TenantID uint
	AgentID  uint
}

// SuperAdmin returns an actor with unrestricted cross-tenant access
func SuperAdmin(userID uint) Actor {
	return Actor{UserID: userID, Role: database.RoleSuperAdmin}
}

// UniversityAdmin returns an actor bound to one tenant with full rights in it
func UniversityAdmin(userID, tenantID uint) Actor {
	return Actor{UserID: userID, Role: database.RoleUniversityAdmin, TenantID: tenantID}
}

// SystemActor represents an unattended server-side path (public intake)
// acting within one tenant resolved from a verified slug
func SystemActor(tenantID uint) Actor {
	return Actor{Role: database.RoleSystem, TenantID: tenantID}
}

// AgentActor returns an actor bound to one tenant and one agent profile
func AgentActor(userID, tenantID, agentID uint) Actor {
	return Actor{UserID: userID, Role: database.RoleAgent, TenantID: tenantID, AgentID: agentID}
}

// IsAdmin reports whether the actor holds an administrative role
func (a Actor) IsAdmin() bool {
	return a.Role == database.RoleSuperAdmin || a.Role == database.RoleUniversityAdmin
}

// CanAccessTenant reports whether the actor may touch records of the tenant.
// Tenant isolation is a hard boundary: everyone but super admins is confined
// to their own tenant.
func (a Actor) CanAccessTenant(tenantID uint) bool {
	if a.Role == database.RoleSuperAdmin {
		return true
	}
	return a.TenantID != 0 && a.TenantID == tenantID
}

// CanManageStages reports whether the actor may create, rename, reorder or
// delete stages of the tenant. Stage schema is admin territory; agents only
// move leads between stages.
func (a Actor) CanManageStages(tenantID uint) bool {
	if a.Role == database.RoleSuperAdmin {
		return true
	}
	return a.Role == database.RoleUniversityAdmin && a.TenantID == tenantID
}

// CanSeeLead evaluates the visibility policy for one lead. policy is the
// owning tenant's configured scope (assigned_only or all_leads).
func (a Actor) CanSeeLead(lead *database.Lead, policy string) bool {
	if !a.CanAccessTenant(lead.TenantID) {
		return false
	}
	if a.Role != database.RoleAgent {
		return true
	}
	if policy == cnst.VisibilityAllLeads {
		return true
	}
	return lead.AgentID != nil && *lead.AgentID == a.AgentID
}

// CanMoveLead reports whether the actor may change the lead's stage. Every
// role that can see a lead within its own tenant may move it.
func (a Actor) CanMoveLead(lead *database.Lead, policy string) bool {
	return a.CanSeeLead(lead, policy)
}

// CanAssignAgent reports whether the actor may reassign the lead to another
// agent. Agents cannot reassign; admins may within their tenant.
func (a Actor) CanAssignAgent(lead *database.Lead) bool {
	return a.IsAdmin() && a.CanAccessTenant(lead.TenantID)
}

// ScopeLeadFilter narrows a lead filter to the actor's visibility scope.
// Under assigned_only an agent's listing is pinned to their own profile ID
// regardless of what the caller asked for.
func (a Actor) ScopeLeadFilter(filter *database.LeadFilter, policy string) *database.LeadFilter {
	if a.Role != database.RoleAgent || policy == cnst.VisibilityAllLeads {
		return filter
	}
	if filter == nil {
		filter = &database.LeadFilter{}
	}
	agentID := a.AgentID
	filter.AgentID = &agentID
	return filter
}
