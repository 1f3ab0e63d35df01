package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/enrollflow/enrollflow/internal/apiserver/database"
	"github.com/enrollflow/enrollflow/internal/audit"
	"github.com/enrollflow/enrollflow/internal/common/cnst"
	"github.com/enrollflow/enrollflow/internal/common/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T) (*Engine, database.Database) {
	t.Helper()
	db, err := database.NewSQLite(&config.DatabaseConfig{
		Type:   "sqlite",
		DBName: filepath.Join(t.TempDir(), "pipeline.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	logger := zap.NewNop()
	engine := NewEngine(db, audit.NewRecorder(db, logger), logger)
	return engine, db
}

func seedTenant(t *testing.T, db database.Database, slug, visibility string) *database.Tenant {
	t.Helper()
	tenant := &database.Tenant{
		Name:           slug,
		Slug:           slug,
		Plan:           "free",
		IsActive:       true,
		LeadVisibility: visibility,
	}
	require.NoError(t, db.CreateTenant(context.Background(), tenant))
	return tenant
}

func seedStage(t *testing.T, db database.Database, tenantID uint, name string, position int) *database.Stage {
	t.Helper()
	stage := &database.Stage{TenantID: tenantID, Name: name, Position: position}
	require.NoError(t, db.CreateStage(context.Background(), stage))
	return stage
}

func seedAgent(t *testing.T, db database.Database, tenantID uint, active bool) *database.AgentProfile {
	t.Helper()
	user := &database.User{
		Email:    fmt.Sprintf("%s@test.local", uuid.NewString()),
		Password: "x",
		Role:     database.RoleAgent,
		TenantID: &tenantID,
		IsActive: true,
	}
	require.NoError(t, db.CreateUser(context.Background(), user))
	agent := &database.AgentProfile{
		UserID:   user.ID,
		TenantID: tenantID,
		Slug:     uuid.NewString(),
		IsActive: active,
	}
	require.NoError(t, db.CreateAgentProfile(context.Background(), agent))
	return agent
}

func seedLead(t *testing.T, db database.Database, tenantID uint, stageID, agentID *uint) *database.Lead {
	t.Helper()
	lead := &database.Lead{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		FirstName: "Amina",
		Email:     fmt.Sprintf("%s@applicant.local", uuid.NewString()),
		StageID:   stageID,
		AgentID:   agentID,
		Source:    cnst.LeadSourceManual,
	}
	require.NoError(t, db.CreateLead(context.Background(), lead))
	return lead
}

func stageNames(stages []*database.Stage) []string {
	names := make([]string, 0, len(stages))
	for _, s := range stages {
		names = append(names, s.Name)
	}
	return names
}

func TestReorderStagesSubmittedOrderWins(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()
	tenant := seedTenant(t, db, "atlas", cnst.VisibilityAssignedOnly)
	admin := UniversityAdmin(1, tenant.ID)

	sNew := seedStage(t, db, tenant.ID, "New", 0)
	sContacted := seedStage(t, db, tenant.ID, "Contacted", 1)
	sQualified := seedStage(t, db, tenant.ID, "Qualified", 2)

	stages, err := engine.ReorderStages(ctx, admin, tenant.ID, []StageInput{
		{ID: &sQualified.ID, Name: "Qualified"},
		{ID: &sNew.ID, Name: "New"},
		{ID: &sContacted.ID, Name: "Contacted"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Qualified", "New", "Contacted"}, stageNames(stages))
	for i, s := range stages {
		assert.Equal(t, i, s.Position)
	}
}

func TestReorderStagesCreateRenameDelete(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()
	tenant := seedTenant(t, db, "atlas", cnst.VisibilityAssignedOnly)
	admin := UniversityAdmin(1, tenant.ID)

	sOld := seedStage(t, db, tenant.ID, "Old", 0)
	sKeep := seedStage(t, db, tenant.ID, "Keep", 1)

	stages, err := engine.ReorderStages(ctx, admin, tenant.ID, []StageInput{
		{Name: "Fresh", Color: "#ff0000"},
		{ID: &sKeep.ID, Name: "Kept"},
		{ID: &sOld.ID, Deleted: true},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Fresh", "Kept"}, stageNames(stages))
	assert.Equal(t, "#ff0000", stages[0].Color)

	_, err = db.GetStageByID(ctx, sOld.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestReorderStagesDeletionClearsLeadRefs(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()
	tenant := seedTenant(t, db, "atlas", cnst.VisibilityAssignedOnly)
	admin := UniversityAdmin(1, tenant.ID)

	doomed := seedStage(t, db, tenant.ID, "Doomed", 0)
	survivor := seedStage(t, db, tenant.ID, "Survivor", 1)

	parked := make([]*database.Lead, 0, 3)
	for i := 0; i < 3; i++ {
		parked = append(parked, seedLead(t, db, tenant.ID, &doomed.ID, nil))
	}
	untouched := seedLead(t, db, tenant.ID, &survivor.ID, nil)

	_, err := engine.ReorderStages(ctx, admin, tenant.ID, []StageInput{
		{ID: &doomed.ID, Deleted: true},
		{ID: &survivor.ID, Name: "Survivor"},
	})
	require.NoError(t, err)

	for _, lead := range parked {
		got, err := db.GetLeadByID(ctx, lead.ID)
		require.NoError(t, err)
		assert.Nil(t, got.StageID, "lead must survive with a nil stage ref")
	}
	got, err := db.GetLeadByID(ctx, untouched.ID)
	require.NoError(t, err)
	require.NotNil(t, got.StageID)
	assert.Equal(t, survivor.ID, *got.StageID)
}

func TestReorderStagesBlankNameRejectsWholeBatch(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()
	tenant := seedTenant(t, db, "atlas", cnst.VisibilityAssignedOnly)
	admin := UniversityAdmin(1, tenant.ID)
	stage := seedStage(t, db, tenant.ID, "New", 0)

	_, err := engine.ReorderStages(ctx, admin, tenant.ID, []StageInput{
		{ID: &stage.ID, Name: "Renamed"},
		{Name: "   "},
	})
	assert.ErrorIs(t, err, ErrEmptyStageName)

	got, err := db.GetStageByID(ctx, stage.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name, "a rejected batch must change nothing")
}

func TestReorderStagesForeignStageRejected(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()
	tenantA := seedTenant(t, db, "atlas", cnst.VisibilityAssignedOnly)
	tenantB := seedTenant(t, db, "borealis", cnst.VisibilityAssignedOnly)
	admin := UniversityAdmin(1, tenantA.ID)

	foreign := seedStage(t, db, tenantB.ID, "Theirs", 0)

	_, err := engine.ReorderStages(ctx, admin, tenantA.ID, []StageInput{
		{ID: &foreign.ID, Name: "Hijacked"},
	})
	assert.ErrorIs(t, err, ErrStageNotFound)

	got, err := db.GetStageByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, "Theirs", got.Name)
	assert.Equal(t, tenantB.ID, got.TenantID)
}

func TestReorderStagesAgentForbidden(t *testing.T) {
	engine, db := newTestEngine(t)
	tenant := seedTenant(t, db, "atlas", cnst.VisibilityAssignedOnly)
	agent := seedAgent(t, db, tenant.ID, true)

	_, err := engine.ReorderStages(context.Background(),
		AgentActor(agent.UserID, tenant.ID, agent.ID), tenant.ID,
		[]StageInput{{Name: "New"}})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMoveLeadWritesAudit(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()
	tenant := seedTenant(t, db, "atlas", cnst.VisibilityAssignedOnly)
	admin := UniversityAdmin(1, tenant.ID)

	from := seedStage(t, db, tenant.ID, "New", 0)
	to := seedStage(t, db, tenant.ID, "Contacted", 1)
	lead := seedLead(t, db, tenant.ID, &from.ID, nil)

	moved, err := engine.MoveLead(ctx, admin, lead.ID, &to.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.StageID)
	assert.Equal(t, to.ID, *moved.StageID)

	entries, err := db.ListAuditLogs(ctx, tenant.ID, &database.AuditFilter{Action: cnst.AuditLeadMoved})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, lead.ID, entries[0].EntityID)
}

func TestMoveLeadNoOpSkipsWriteAndAudit(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()
	tenant := seedTenant(t, db, "atlas", cnst.VisibilityAssignedOnly)
	admin := UniversityAdmin(1, tenant.ID)

	stage := seedStage(t, db, tenant.ID, "New", 0)
	lead := seedLead(t, db, tenant.ID, &stage.ID, nil)

	moved, err := engine.MoveLead(ctx, admin, lead.ID, &stage.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.StageID)
	assert.Equal(t, stage.ID, *moved.StageID)

	entries, err := db.ListAuditLogs(ctx, tenant.ID, &database.AuditFilter{Action: cnst.AuditLeadMoved})
	require.NoError(t, err)
	assert.Empty(t, entries, "idempotent move must not leave an audit entry")
}

func TestMoveLeadCrossTenantTargetFailsWithoutMutation(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()
	tenantA := seedTenant(t, db, "atlas", cnst.VisibilityAssignedOnly)
	tenantB := seedTenant(t, db, "borealis", cnst.VisibilityAssignedOnly)
	admin := UniversityAdmin(1, tenantA.ID)

	home := seedStage(t, db, tenantA.ID, "New", 0)
	foreign := seedStage(t, db, tenantB.ID, "Theirs", 0)
	lead := seedLead(t, db, tenantA.ID, &home.ID, nil)

	_, err := engine.MoveLead(ctx, admin, lead.ID, &foreign.ID)
	assert.ErrorIs(t, err, ErrStageNotFound)

	got, err := db.GetLeadByID(ctx, lead.ID)
	require.NoError(t, err)
	require.NotNil(t, got.StageID)
	assert.Equal(t, home.ID, *got.StageID)
}

func TestMoveLeadToNoStage(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()
	tenant := seedTenant(t, db, "atlas", cnst.VisibilityAssignedOnly)
	admin := UniversityAdmin(1, tenant.ID)

	stage := seedStage(t, db, tenant.ID, "New", 0)
	lead := seedLead(t, db, tenant.ID, &stage.ID, nil)

	moved, err := engine.MoveLead(ctx, admin, lead.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, moved.StageID)

	got, err := db.GetLeadByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Nil(t, got.StageID)
}

func TestAgentVisibilityAssignedOnly(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()
	tenant := seedTenant(t, db, "atlas", cnst.VisibilityAssignedOnly)

	mine := seedAgent(t, db, tenant.ID, true)
	other := seedAgent(t, db, tenant.ID, true)
	actor := AgentActor(mine.UserID, tenant.ID, mine.ID)

	stage := seedStage(t, db, tenant.ID, "New", 0)
	assigned := seedLead(t, db, tenant.ID, &stage.ID, &mine.ID)
	foreign := seedLead(t, db, tenant.ID, &stage.ID, &other.ID)
	unassigned := seedLead(t, db, tenant.ID, &stage.ID, nil)

	leads, err := engine.ListLeads(ctx, actor, tenant.ID, nil)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, assigned.ID, leads[0].ID)

	_, err = engine.GetLead(ctx, actor, foreign.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = engine.MoveLead(ctx, actor, unassigned.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAgentVisibilityPolicySwitchTakesEffectImmediately(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()
	tenant := seedTenant(t, db, "atlas", cnst.VisibilityAssignedOnly)

	mine := seedAgent(t, db, tenant.ID, true)
	other := seedAgent(t, db, tenant.ID, true)
	actor := AgentActor(mine.UserID, tenant.ID, mine.ID)

	stage := seedStage(t, db, tenant.ID, "New", 0)
	seedLead(t, db, tenant.ID, &stage.ID, &mine.ID)
	seedLead(t, db, tenant.ID, &stage.ID, &other.ID)

	leads, err := engine.ListLeads(ctx, actor, tenant.ID, nil)
	require.NoError(t, err)
	assert.Len(t, leads, 1)

	// Policy is re-read per call, not cached in the session.
	tenant.LeadVisibility = cnst.VisibilityAllLeads
	require.NoError(t, db.UpdateTenant(ctx, tenant))

	leads, err = engine.ListLeads(ctx, actor, tenant.ID, nil)
	require.NoError(t, err)
	assert.Len(t, leads, 2)
}

func TestCrossTenantLeadIsUniformNotFound(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()
	tenantA := seedTenant(t, db, "atlas", cnst.VisibilityAssignedOnly)
	tenantB := seedTenant(t, db, "borealis", cnst.VisibilityAssignedOnly)

	stage := seedStage(t, db, tenantA.ID, "New", 0)
	lead := seedLead(t, db, tenantA.ID, &stage.ID, nil)

	outsider := UniversityAdmin(9, tenantB.ID)
	_, err := engine.GetLead(ctx, outsider, lead.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = engine.MoveLead(ctx, outsider, lead.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = engine.AssignAgent(ctx, outsider, lead.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignAgent(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()
	tenant := seedTenant(t, db, "atlas", cnst.VisibilityAllLeads)
	admin := UniversityAdmin(1, tenant.ID)

	active := seedAgent(t, db, tenant.ID, true)
	inactive := seedAgent(t, db, tenant.ID, false)
	lead := seedLead(t, db, tenant.ID, nil, nil)

	_, err := engine.AssignAgent(ctx, admin, lead.ID, &inactive.ID)
	assert.ErrorIs(t, err, ErrAgentInactive)

	got, err := engine.AssignAgent(ctx, admin, lead.ID, &active.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AgentID)
	assert.Equal(t, active.ID, *got.AgentID)

	// Agents may see but never reassign.
	actor := AgentActor(active.UserID, tenant.ID, active.ID)
	_, err = engine.AssignAgent(ctx, actor, lead.ID, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err = engine.AssignAgent(ctx, admin, lead.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, got.AgentID)
}

func TestAssignAgentCrossTenantAgentRejected(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()
	tenantA := seedTenant(t, db, "atlas", cnst.VisibilityAssignedOnly)
	tenantB := seedTenant(t, db, "borealis", cnst.VisibilityAssignedOnly)
	admin := UniversityAdmin(1, tenantA.ID)

	foreign := seedAgent(t, db, tenantB.ID, true)
	lead := seedLead(t, db, tenantA.ID, nil, nil)

	_, err := engine.AssignAgent(ctx, admin, lead.ID, &foreign.ID)
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestCreateLeadValidation(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()
	tenant := seedTenant(t, db, "atlas", cnst.VisibilityAssignedOnly)
	admin := UniversityAdmin(1, tenant.ID)

	err := engine.CreateLead(ctx, admin, &database.Lead{
		TenantID:  tenant.ID,
		FirstName: "Amina",
	})
	assert.ErrorIs(t, err, ErrLeadRequired)

	lead := &database.Lead{
		TenantID:  tenant.ID,
		FirstName: "Amina",
		Email:     "amina@applicant.local",
	}
	require.NoError(t, engine.CreateLead(ctx, admin, lead))
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, cnst.LeadSourceManual, lead.Source)

	entries, err := db.ListAuditLogs(ctx, tenant.ID, &database.AuditFilter{Action: cnst.AuditLeadCreated})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpdateScore(t *testing.T) {
	engine, db := newTestEngine(t)
	ctx := context.Background()
	tenant := seedTenant(t, db, "atlas", cnst.VisibilityAssignedOnly)
	admin := UniversityAdmin(1, tenant.ID)
	lead := seedLead(t, db, tenant.ID, nil, nil)

	got, err := engine.UpdateScore(ctx, admin, lead.ID, 80)
	require.NoError(t, err)
	assert.Equal(t, 80, got.Score)

	// Same score again is a no-op without a second audit entry.
	_, err = engine.UpdateScore(ctx, admin, lead.ID, 80)
	require.NoError(t, err)
	entries, err := db.ListAuditLogs(ctx, tenant.ID, &database.AuditFilter{Action: cnst.AuditLeadScored})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestListStagesEmptyTenant(t *testing.T) {
	engine, db := newTestEngine(t)
	tenant := seedTenant(t, db, "atlas", cnst.VisibilityAssignedOnly)

	stages, err := engine.ListStages(context.Background(), UniversityAdmin(1, tenant.ID), tenant.ID)
	require.NoError(t, err)
	assert.Empty(t, stages)
}
