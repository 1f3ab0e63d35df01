package intake

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/enrollflow/enrollflow/internal/apiserver/database"
	"github.com/enrollflow/enrollflow/internal/audit"
	"github.com/enrollflow/enrollflow/internal/common/cnst"
	"github.com/enrollflow/enrollflow/internal/common/config"
	"github.com/enrollflow/enrollflow/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, limit int) (*Service, database.Database) {
	t.Helper()
	db, err := database.NewSQLite(&config.DatabaseConfig{
		Type:   "sqlite",
		DBName: filepath.Join(t.TempDir(), "intake.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	logger := zap.NewNop()
	engine := pipeline.NewEngine(db, audit.NewRecorder(db, logger), logger)
	svc := NewService(db, engine, NewMemoryLimiter(limit, time.Minute), logger)
	return svc, db
}

func seedIntakeTenant(t *testing.T, db database.Database, slug string, active bool) *database.Tenant {
	t.Helper()
	tenant := &database.Tenant{
		Name:           slug,
		Slug:           slug,
		Plan:           "free",
		IsActive:       active,
		LeadVisibility: cnst.VisibilityAssignedOnly,
	}
	require.NoError(t, db.CreateTenant(context.Background(), tenant))
	return tenant
}

func submission() *Submission {
	return &Submission{
		FirstName: "Amina",
		LastName:  "Diallo",
		Email:     "amina@applicant.local",
		Phone:     "+221700000000",
		Country:   "Senegal",
		Program:   "Computer Science",
	}
}

func TestSubmitUniversityForm(t *testing.T) {
	svc, db := newTestService(t, 10)
	ctx := context.Background()
	tenant := seedIntakeTenant(t, db, "atlas", true)

	sub := submission()
	sub.Metadata = json.RawMessage(`{"utm_source":"google","utm_medium":"cpc","utm_campaign":"fall","referrer":"https://google.com"}`)

	outcome, err := svc.SubmitUniversityForm(ctx, "atlas", "203.0.113.5", sub)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)

	leads, err := db.ListLeads(ctx, tenant.ID, nil)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	lead := leads[0]
	assert.Equal(t, cnst.LeadSourceForm, lead.Source)
	assert.Nil(t, lead.AgentID)
	assert.Equal(t, "google", lead.UTMSource)
	assert.Equal(t, "cpc", lead.UTMMedium)
	assert.Equal(t, "fall", lead.UTMCampaign)
	assert.Equal(t, "https://google.com", lead.ReferrerURL)

	entries, err := db.ListAuditLogs(ctx, tenant.ID, &database.AuditFilter{Action: cnst.AuditLeadCreated})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, string(database.RoleSystem), entries[0].ActorRole)
}

func TestSubmitUniversityFormUnknownOrSuspendedSlug(t *testing.T) {
	svc, db := newTestService(t, 10)
	ctx := context.Background()
	seedIntakeTenant(t, db, "dormant", false)

	outcome, err := svc.SubmitUniversityForm(ctx, "nope", "203.0.113.5", submission())
	assert.ErrorIs(t, err, ErrFormNotFound)
	assert.Equal(t, OutcomeRejected, outcome)

	// A suspended tenant is indistinguishable from a missing one.
	outcome, err = svc.SubmitUniversityForm(ctx, "dormant", "203.0.113.5", submission())
	assert.ErrorIs(t, err, ErrFormNotFound)
	assert.Equal(t, OutcomeRejected, outcome)
}

func TestSubmitAgentFormPreAssignsAgent(t *testing.T) {
	svc, db := newTestService(t, 10)
	ctx := context.Background()
	tenant := seedIntakeTenant(t, db, "atlas", true)

	tenantID := tenant.ID
	user := &database.User{Email: "agent@atlas.local", Password: "x", Role: database.RoleAgent, TenantID: &tenantID, IsActive: true}
	require.NoError(t, db.CreateUser(ctx, user))
	agent := &database.AgentProfile{UserID: user.ID, TenantID: tenant.ID, Slug: "omar-landing", IsActive: true}
	require.NoError(t, db.CreateAgentProfile(ctx, agent))

	outcome, err := svc.SubmitAgentForm(ctx, "omar-landing", "203.0.113.5", submission())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)

	leads, err := db.ListLeads(ctx, tenant.ID, nil)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	require.NotNil(t, leads[0].AgentID)
	assert.Equal(t, agent.ID, *leads[0].AgentID)
	assert.Equal(t, cnst.LeadSourceAgentLanding, leads[0].Source)
}

func TestSubmitAgentFormInactiveAgent(t *testing.T) {
	svc, db := newTestService(t, 10)
	ctx := context.Background()
	tenant := seedIntakeTenant(t, db, "atlas", true)

	tenantID := tenant.ID
	user := &database.User{Email: "gone@atlas.local", Password: "x", Role: database.RoleAgent, TenantID: &tenantID, IsActive: false}
	require.NoError(t, db.CreateUser(ctx, user))
	agent := &database.AgentProfile{UserID: user.ID, TenantID: tenant.ID, Slug: "stale-landing", IsActive: false}
	require.NoError(t, db.CreateAgentProfile(ctx, agent))

	_, err := svc.SubmitAgentForm(ctx, "stale-landing", "203.0.113.5", submission())
	assert.ErrorIs(t, err, ErrFormNotFound)
}

func TestHoneypotDiscardsSilently(t *testing.T) {
	svc, db := newTestService(t, 10)
	ctx := context.Background()
	tenant := seedIntakeTenant(t, db, "atlas", true)

	sub := submission()
	sub.Honeypot = "https://spam.example"

	outcome, err := svc.SubmitUniversityForm(ctx, "atlas", "203.0.113.5", sub)
	require.NoError(t, err, "bots must see a normal success")
	assert.Equal(t, OutcomeHoneypot, outcome)

	leads, err := db.ListLeads(ctx, tenant.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, leads)

	entries, err := db.ListAuditLogs(ctx, tenant.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, entries, "a discarded submission leaves no trace")
}

func TestThrottledSubmission(t *testing.T) {
	svc, db := newTestService(t, 2)
	ctx := context.Background()
	tenant := seedIntakeTenant(t, db, "atlas", true)

	for i := 0; i < 2; i++ {
		sub := submission()
		_, err := svc.SubmitUniversityForm(ctx, "atlas", "203.0.113.5", sub)
		require.NoError(t, err)
	}

	outcome, err := svc.SubmitUniversityForm(ctx, "atlas", "203.0.113.5", submission())
	assert.ErrorIs(t, err, ErrThrottled)
	assert.Equal(t, OutcomeThrottled, outcome)

	// A different address is unaffected.
	outcome, err = svc.SubmitUniversityForm(ctx, "atlas", "198.51.100.7", submission())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)

	leads, err := db.ListLeads(ctx, tenant.ID, nil)
	require.NoError(t, err)
	assert.Len(t, leads, 3)
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return false, context.DeadlineExceeded
}
func (brokenLimiter) Close() error { return nil }

func TestLimiterFailureFailsOpen(t *testing.T) {
	svc, db := newTestService(t, 1)
	svc.limiter = brokenLimiter{}
	ctx := context.Background()
	tenant := seedIntakeTenant(t, db, "atlas", true)

	outcome, err := svc.SubmitUniversityForm(ctx, "atlas", "203.0.113.5", submission())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAccepted, outcome)

	leads, err := db.ListLeads(ctx, tenant.ID, nil)
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}
