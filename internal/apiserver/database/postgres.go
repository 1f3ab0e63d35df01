package database

import (
	"context"
	"fmt"

	"github.com/enrollflow/enrollflow/internal/common/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Postgres implements the Database interface using PostgreSQL
type Postgres struct {
	db  *gorm.DB
	cfg *config.DatabaseConfig
}

// NewPostgres creates a new Postgres instance
func NewPostgres(cfg *config.DatabaseConfig) (Database, error) {
	db := &Postgres{
		cfg: cfg,
	}

	gormDB, err := gorm.Open(postgres.Open(db.cfg.GetDSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := gormDB.AutoMigrate(allModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	db.db = gormDB
	return db, nil
}

// Close closes the database connection
func (db *Postgres) Close() error {
	sqlDB, err := db.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction runs fn inside a transaction propagated through the context
func (db *Postgres) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTransaction(ctx, tx))
	})
}

func (db *Postgres) CreateTenant(ctx context.Context, tenant *Tenant) error {
	return getDBFromContext(ctx, db.db).Create(tenant).Error
}

func (db *Postgres) UpdateTenant(ctx context.Context, tenant *Tenant) error {
	return getDBFromContext(ctx, db.db).Save(tenant).Error
}

func (db *Postgres) GetTenantByID(ctx context.Context, id uint) (*Tenant, error) {
	var tenant Tenant
	if err := getDBFromContext(ctx, db.db).First(&tenant, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &tenant, nil
}

func (db *Postgres) GetTenantBySlug(ctx context.Context, slug string) (*Tenant, error) {
	var tenant Tenant
	if err := getDBFromContext(ctx, db.db).Where("slug = ?", slug).First(&tenant).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &tenant, nil
}

func (db *Postgres) ListTenants(ctx context.Context) ([]*Tenant, error) {
	var tenants []*Tenant
	err := getDBFromContext(ctx, db.db).Order("created_at asc").Find(&tenants).Error
	return tenants, err
}

func (db *Postgres) CreateUser(ctx context.Context, user *User) error {
	return getDBFromContext(ctx, db.db).Create(user).Error
}

func (db *Postgres) UpdateUser(ctx context.Context, user *User) error {
	return getDBFromContext(ctx, db.db).Save(user).Error
}

func (db *Postgres) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := getDBFromContext(ctx, db.db).First(&user, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := getDBFromContext(ctx, db.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

func (db *Postgres) ListUsers(ctx context.Context, tenantID *uint) ([]*User, error) {
	var users []*User
	q := getDBFromContext(ctx, db.db).Order("created_at asc")
	if tenantID != nil {
		q = q.Where("tenant_id = ?", *tenantID)
	}
	err := q.Find(&users).Error
	return users, err
}

func (db *Postgres) CreateAgentProfile(ctx context.Context, agent *AgentProfile) error {
	return getDBFromContext(ctx, db.db).Create(agent).Error
}

func (db *Postgres) UpdateAgentProfile(ctx context.Context, agent *AgentProfile) error {
	return getDBFromContext(ctx, db.db).Save(agent).Error
}

func (db *Postgres) GetAgentProfileByID(ctx context.Context, id uint) (*AgentProfile, error) {
	var agent AgentProfile
	if err := getDBFromContext(ctx, db.db).First(&agent, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &agent, nil
}

func (db *Postgres) GetAgentProfileByUserID(ctx context.Context, userID uint) (*AgentProfile, error) {
	var agent AgentProfile
	if err := getDBFromContext(ctx, db.db).Where("user_id = ?", userID).First(&agent).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &agent, nil
}

func (db *Postgres) GetAgentProfileBySlug(ctx context.Context, slug string) (*AgentProfile, error) {
	var agent AgentProfile
	if err := getDBFromContext(ctx, db.db).Where("slug = ?", slug).First(&agent).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &agent, nil
}

func (db *Postgres) ListAgentProfiles(ctx context.Context, tenantID uint) ([]*AgentProfile, error) {
	var agents []*AgentProfile
	err := getDBFromContext(ctx, db.db).
		Where("tenant_id = ?", tenantID).
		Order("created_at asc").
		Find(&agents).Error
	return agents, err
}

func (db *Postgres) CreateStage(ctx context.Context, stage *Stage) error {
	return getDBFromContext(ctx, db.db).Create(stage).Error
}

func (db *Postgres) UpdateStage(ctx context.Context, stage *Stage) error {
	return getDBFromContext(ctx, db.db).Save(stage).Error
}

func (db *Postgres) GetStageByID(ctx context.Context, id uint) (*Stage, error) {
	var stage Stage
	if err := getDBFromContext(ctx, db.db).First(&stage, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &stage, nil
}

func (db *Postgres) ListStages(ctx context.Context, tenantID uint) ([]*Stage, error) {
	var stages []*Stage
	err := getDBFromContext(ctx, db.db).
		Where("tenant_id = ?", tenantID).
		Order("position asc").
		Find(&stages).Error
	return stages, err
}

func (db *Postgres) DeleteStage(ctx context.Context, id uint) error {
	return getDBFromContext(ctx, db.db).Delete(&Stage{}, id).Error
}

func (db *Postgres) ClearLeadStageRefs(ctx context.Context, stageID uint) (int64, error) {
	result := getDBFromContext(ctx, db.db).
		Model(&Lead{}).
		Where("stage_id = ?", stageID).
		Update("stage_id", nil)
	return result.RowsAffected, result.Error
}

func (db *Postgres) CreateLead(ctx context.Context, lead *Lead) error {
	return getDBFromContext(ctx, db.db).Create(lead).Error
}

func (db *Postgres) GetLeadByID(ctx context.Context, id string) (*Lead, error) {
	var lead Lead
	if err := getDBFromContext(ctx, db.db).Where("id = ?", id).First(&lead).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &lead, nil
}

func (db *Postgres) ListLeads(ctx context.Context, tenantID uint, filter *LeadFilter) ([]*Lead, error) {
	var leads []*Lead
	q := getDBFromContext(ctx, db.db).
		Where("tenant_id = ?", tenantID).
		Order("created_at desc")
	q = applyLeadFilter(q, filter)
	err := q.Find(&leads).Error
	return leads, err
}

func (db *Postgres) UpdateLeadStage(ctx context.Context, leadID string, stageID *uint) error {
	return getDBFromContext(ctx, db.db).
		Model(&Lead{}).
		Where("id = ?", leadID).
		Update("stage_id", stageID).Error
}

func (db *Postgres) UpdateLeadAgent(ctx context.Context, leadID string, agentID *uint) error {
	return getDBFromContext(ctx, db.db).
		Model(&Lead{}).
		Where("id = ?", leadID).
		Update("agent_id", agentID).Error
}

func (db *Postgres) UpdateLeadScore(ctx context.Context, leadID string, score int) error {
	return getDBFromContext(ctx, db.db).
		Model(&Lead{}).
		Where("id = ?", leadID).
		Update("score", score).Error
}

func (db *Postgres) CreateAuditLog(ctx context.Context, entry *AuditLog) error {
	return getDBFromContext(ctx, db.db).Create(entry).Error
}

func (db *Postgres) ListAuditLogs(ctx context.Context, tenantID uint, filter *AuditFilter) ([]*AuditLog, error) {
	var entries []*AuditLog
	q := getDBFromContext(ctx, db.db).
		Where("tenant_id = ?", tenantID).
		Order("created_at desc")
	q = applyAuditFilter(q, filter)
	err := q.Find(&entries).Error
	return entries, err
}
