package database

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// Database defines the methods for database operations.
type Database interface {
	// Close closes the database connection.
	Close() error

	// Transaction runs fn inside a transaction. The transaction is
	// propagated through the context and picked up by every method
	// called with that context.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Tenants
	CreateTenant(ctx context.Context, tenant *Tenant) error
	UpdateTenant(ctx context.Context, tenant *Tenant) error
	GetTenantByID(ctx context.Context, id uint) (*Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*Tenant, error)
	ListTenants(ctx context.Context) ([]*Tenant, error)

	// Users
	CreateUser(ctx context.Context, user *User) error
	UpdateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, tenantID *uint) ([]*User, error)

	// Agent profiles
	CreateAgentProfile(ctx context.Context, agent *AgentProfile) error
	UpdateAgentProfile(ctx context.Context, agent *AgentProfile) error
	GetAgentProfileByID(ctx context.Context, id uint) (*AgentProfile, error)
	GetAgentProfileByUserID(ctx context.Context, userID uint) (*AgentProfile, error)
	GetAgentProfileBySlug(ctx context.Context, slug string) (*AgentProfile, error)
	ListAgentProfiles(ctx context.Context, tenantID uint) ([]*AgentProfile, error)

	// Stages
	CreateStage(ctx context.Context, stage *Stage) error
	UpdateStage(ctx context.Context, stage *Stage) error
	GetStageByID(ctx context.Context, id uint) (*Stage, error)
	// ListStages returns the tenant's stages ordered by position ascending.
	ListStages(ctx context.Context, tenantID uint) ([]*Stage, error)
	// DeleteStage removes a stage record. Lead references must be cleared
	// first with ClearLeadStageRefs, inside the same transaction.
	DeleteStage(ctx context.Context, id uint) error
	// ClearLeadStageRefs sets stage_id to NULL on every lead referencing
	// the stage and returns the number of leads touched.
	ClearLeadStageRefs(ctx context.Context, stageID uint) (int64, error)

	// Leads
	CreateLead(ctx context.Context, lead *Lead) error
	GetLeadByID(ctx context.Context, id string) (*Lead, error)
	ListLeads(ctx context.Context, tenantID uint, filter *LeadFilter) ([]*Lead, error)
	UpdateLeadStage(ctx context.Context, leadID string, stageID *uint) error
	UpdateLeadAgent(ctx context.Context, leadID string, agentID *uint) error
	UpdateLeadScore(ctx context.Context, leadID string, score int) error

	// Audit
	CreateAuditLog(ctx context.Context, entry *AuditLog) error
	ListAuditLogs(ctx context.Context, tenantID uint, filter *AuditFilter) ([]*AuditLog, error)
}
