package pipeline

import (
	"testing"

	"github.com/enrollflow/enrollflow/internal/apiserver/database"
	"github.com/enrollflow/enrollflow/internal/common/cnst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestCanAccessTenant(t *testing.T) {
	assert.True(t, SuperAdmin(1).CanAccessTenant(7))
	assert.True(t, UniversityAdmin(1, 7).CanAccessTenant(7))
	assert.False(t, UniversityAdmin(1, 7).CanAccessTenant(8))
	assert.True(t, AgentActor(1, 7, 3).CanAccessTenant(7))
	assert.False(t, AgentActor(1, 7, 3).CanAccessTenant(8))
	assert.True(t, SystemActor(7).CanAccessTenant(7))
	assert.False(t, SystemActor(7).CanAccessTenant(8))
}

func TestCanManageStages(t *testing.T) {
	assert.True(t, SuperAdmin(1).CanManageStages(7))
	assert.True(t, UniversityAdmin(1, 7).CanManageStages(7))
	assert.False(t, UniversityAdmin(1, 7).CanManageStages(8))
	assert.False(t, AgentActor(1, 7, 3).CanManageStages(7))
	assert.False(t, SystemActor(7).CanManageStages(7))
}

func TestCanSeeLead(t *testing.T) {
	assigned := &database.Lead{TenantID: 7, AgentID: uintPtr(3)}
	foreign := &database.Lead{TenantID: 7, AgentID: uintPtr(4)}
	unassigned := &database.Lead{TenantID: 7}

	agent := AgentActor(1, 7, 3)
	assert.True(t, agent.CanSeeLead(assigned, cnst.VisibilityAssignedOnly))
	assert.False(t, agent.CanSeeLead(foreign, cnst.VisibilityAssignedOnly))
	assert.False(t, agent.CanSeeLead(unassigned, cnst.VisibilityAssignedOnly))

	assert.True(t, agent.CanSeeLead(foreign, cnst.VisibilityAllLeads))
	assert.True(t, agent.CanSeeLead(unassigned, cnst.VisibilityAllLeads))

	// Admins ignore the policy inside their own tenant.
	admin := UniversityAdmin(2, 7)
	assert.True(t, admin.CanSeeLead(unassigned, cnst.VisibilityAssignedOnly))
	assert.False(t, UniversityAdmin(2, 8).CanSeeLead(unassigned, cnst.VisibilityAllLeads))

	// The policy never crosses the tenant boundary.
	outsider := AgentActor(1, 8, 3)
	assert.False(t, outsider.CanSeeLead(assigned, cnst.VisibilityAllLeads))
}

func TestCanAssignAgent(t *testing.T) {
	lead := &database.Lead{TenantID: 7, AgentID: uintPtr(3)}

	assert.True(t, SuperAdmin(1).CanAssignAgent(lead))
	assert.True(t, UniversityAdmin(1, 7).CanAssignAgent(lead))
	assert.False(t, UniversityAdmin(1, 8).CanAssignAgent(lead))
	// even the assigned agent cannot reassign their own lead
	assert.False(t, AgentActor(1, 7, 3).CanAssignAgent(lead))
}

func TestScopeLeadFilter(t *testing.T) {
	agent := AgentActor(1, 7, 3)

	scoped := agent.ScopeLeadFilter(nil, cnst.VisibilityAssignedOnly)
	require.NotNil(t, scoped)
	require.NotNil(t, scoped.AgentID)
	assert.Equal(t, uint(3), *scoped.AgentID)

	// A caller-supplied agent filter is overridden, not honored.
	scoped = agent.ScopeLeadFilter(&database.LeadFilter{AgentID: uintPtr(99)}, cnst.VisibilityAssignedOnly)
	require.NotNil(t, scoped.AgentID)
	assert.Equal(t, uint(3), *scoped.AgentID)

	// all_leads leaves the filter untouched.
	open := agent.ScopeLeadFilter(&database.LeadFilter{AgentID: uintPtr(99)}, cnst.VisibilityAllLeads)
	require.NotNil(t, open.AgentID)
	assert.Equal(t, uint(99), *open.AgentID)

	// Admin filters pass through unchanged.
	assert.Nil(t, UniversityAdmin(1, 7).ScopeLeadFilter(nil, cnst.VisibilityAssignedOnly))
}
