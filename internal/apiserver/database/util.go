package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// EnsureSuperAdmin creates the bootstrap super admin account if it does not
// exist yet. The password must already be hashed.
func EnsureSuperAdmin(ctx context.Context, db Database, email, passwordHash string) error {
	if email == "" || passwordHash == "" {
		return nil
	}

	_, err := db.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	admin := &User{
		Email:     email,
		Password:  passwordHash,
		Role:      RoleSuperAdmin,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	return db.CreateUser(ctx, admin)
}

// wrapNotFound maps gorm's record-not-found to the package sentinel
func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// applyLeadFilter applies optional lead query filters
func applyLeadFilter(q *gorm.DB, filter *LeadFilter) *gorm.DB {
	if filter == nil {
		return q
	}
	if filter.StageID != nil {
		q = q.Where("stage_id = ?", *filter.StageID)
	}
	if filter.AgentID != nil {
		q = q.Where("agent_id = ?", *filter.AgentID)
	}
	if filter.Source != "" {
		q = q.Where("source = ?", filter.Source)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", like, like, like)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	return q
}

// applyAuditFilter applies optional audit query filters
func applyAuditFilter(q *gorm.DB, filter *AuditFilter) *gorm.DB {
	if filter == nil {
		return q
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		q = q.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		q = q.Where("entity_id = ?", filter.EntityID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	return q
}

// allModels lists every model migrated by the drivers
func allModels() []any {
	return []any{
		&Tenant{},
		&User{},
		&AgentProfile{},
		&Stage{},
		&Lead{},
		&AuditLog{},
	}
}
