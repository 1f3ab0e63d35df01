package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/enrollflow/enrollflow/internal/common/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) Database {
	t.Helper()
	db, err := NewSQLite(&config.DatabaseConfig{
		Type:   "sqlite",
		DBName: filepath.Join(t.TempDir(), "crm.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func mustTenant(t *testing.T, db Database, slug string) *Tenant {
	t.Helper()
	tenant := &Tenant{Name: slug, Slug: slug, Plan: "free", IsActive: true, LeadVisibility: "assigned_only"}
	require.NoError(t, db.CreateTenant(context.Background(), tenant))
	return tenant
}

func TestTenantCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tenant := mustTenant(t, db, "atlas")
	require.NotZero(t, tenant.ID)

	got, err := db.GetTenantBySlug(ctx, "atlas")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.ID)

	got.Plan = "pro"
	require.NoError(t, db.UpdateTenant(ctx, got))
	got, err = db.GetTenantByID(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "pro", got.Plan)

	_, err = db.GetTenantBySlug(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserLookups(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tenant := mustTenant(t, db, "atlas")

	user := &User{Email: "admin@atlas.local", Password: "hash", Role: RoleUniversityAdmin, TenantID: &tenant.ID, IsActive: true}
	require.NoError(t, db.CreateUser(ctx, user))

	got, err := db.GetUserByEmail(ctx, "admin@atlas.local")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = db.GetUserByEmail(ctx, "ghost@atlas.local")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := db.ListUsers(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	other := uint(999)
	none, err := db.ListUsers(ctx, &other)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStageOrderingByPosition(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tenant := mustTenant(t, db, "atlas")

	// Insertion order differs from position order on purpose.
	require.NoError(t, db.CreateStage(ctx, &Stage{TenantID: tenant.ID, Name: "Last", Position: 2}))
	require.NoError(t, db.CreateStage(ctx, &Stage{TenantID: tenant.ID, Name: "First", Position: 0}))
	require.NoError(t, db.CreateStage(ctx, &Stage{TenantID: tenant.ID, Name: "Middle", Position: 1}))

	stages, err := db.ListStages(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, stages, 3)
	assert.Equal(t, "First", stages[0].Name)
	assert.Equal(t, "Middle", stages[1].Name)
	assert.Equal(t, "Last", stages[2].Name)
}

func TestClearLeadStageRefs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tenant := mustTenant(t, db, "atlas")

	stage := &Stage{TenantID: tenant.ID, Name: "New"}
	require.NoError(t, db.CreateStage(ctx, stage))
	other := &Stage{TenantID: tenant.ID, Name: "Other", Position: 1}
	require.NoError(t, db.CreateStage(ctx, other))

	for i := 0; i < 2; i++ {
		require.NoError(t, db.CreateLead(ctx, &Lead{
			ID: uuid.NewString(), TenantID: tenant.ID,
			FirstName: "A", Email: uuid.NewString() + "@x.local", StageID: &stage.ID,
		}))
	}
	kept := &Lead{ID: uuid.NewString(), TenantID: tenant.ID, FirstName: "B", Email: "b@x.local", StageID: &other.ID}
	require.NoError(t, db.CreateLead(ctx, kept))

	cleared, err := db.ClearLeadStageRefs(ctx, stage.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)

	got, err := db.GetLeadByID(ctx, kept.ID)
	require.NoError(t, err)
	require.NotNil(t, got.StageID)
	assert.Equal(t, other.ID, *got.StageID)
}

func TestLeadFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tenant := mustTenant(t, db, "atlas")

	require.NoError(t, db.CreateLead(ctx, &Lead{ID: uuid.NewString(), TenantID: tenant.ID, FirstName: "Amina", Email: "amina@x.local", Source: "form"}))
	require.NoError(t, db.CreateLead(ctx, &Lead{ID: uuid.NewString(), TenantID: tenant.ID, FirstName: "Omar", Email: "omar@x.local", Source: "manual"}))

	bySource, err := db.ListLeads(ctx, tenant.ID, &LeadFilter{Source: "form"})
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	assert.Equal(t, "Amina", bySource[0].FirstName)

	bySearch, err := db.ListLeads(ctx, tenant.ID, &LeadFilter{Search: "omar"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "Omar", bySearch[0].FirstName)

	limited, err := db.ListLeads(ctx, tenant.ID, &LeadFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestTransactionRollback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tenant := mustTenant(t, db, "atlas")

	boom := errors.New("boom")
	err := db.Transaction(ctx, func(txCtx context.Context) error {
		if err := db.CreateStage(txCtx, &Stage{TenantID: tenant.ID, Name: "Doomed"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stages, err := db.ListStages(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Empty(t, stages, "a failed transaction must leave nothing behind")
}

func TestTransactionCommit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tenant := mustTenant(t, db, "atlas")

	err := db.Transaction(ctx, func(txCtx context.Context) error {
		if err := db.CreateStage(txCtx, &Stage{TenantID: tenant.ID, Name: "New"}); err != nil {
			return err
		}
		return db.CreateStage(txCtx, &Stage{TenantID: tenant.ID, Name: "Contacted", Position: 1})
	})
	require.NoError(t, err)

	stages, err := db.ListStages(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Len(t, stages, 2)
}

func TestEnsureSuperAdmin(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, EnsureSuperAdmin(ctx, db, "root@enrollflow.dev", "hash"))

	user, err := db.GetUserByEmail(ctx, "root@enrollflow.dev")
	require.NoError(t, err)
	assert.Equal(t, RoleSuperAdmin, user.Role)
	assert.Nil(t, user.TenantID)

	// Idempotent: a second boot neither duplicates nor overwrites.
	require.NoError(t, EnsureSuperAdmin(ctx, db, "root@enrollflow.dev", "other-hash"))
	user, err = db.GetUserByEmail(ctx, "root@enrollflow.dev")
	require.NoError(t, err)
	assert.Equal(t, "hash", user.Password)

	// Blank credentials skip the bootstrap entirely.
	require.NoError(t, EnsureSuperAdmin(ctx, db, "", ""))
}

func TestAuditLogFilterAndOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tenant := mustTenant(t, db, "atlas")

	require.NoError(t, db.CreateAuditLog(ctx, &AuditLog{TenantID: tenant.ID, Action: "lead.created", EntityType: "lead", EntityID: "a"}))
	require.NoError(t, db.CreateAuditLog(ctx, &AuditLog{TenantID: tenant.ID, Action: "lead.stage_moved", EntityType: "lead", EntityID: "a"}))
	require.NoError(t, db.CreateAuditLog(ctx, &AuditLog{TenantID: tenant.ID + 1, Action: "lead.created", EntityType: "lead", EntityID: "b"}))

	entries, err := db.ListAuditLogs(ctx, tenant.ID, nil)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "audit listing is tenant scoped")

	moved, err := db.ListAuditLogs(ctx, tenant.ID, &AuditFilter{Action: "lead.stage_moved"})
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, "a", moved[0].EntityID)
}
