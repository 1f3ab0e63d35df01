package database

import "time"

// UserRole represents the role of a user
type UserRole string

const (
	RoleSuperAdmin      UserRole = "super_admin"
	RoleUniversityAdmin UserRole = "university_admin"
	RoleAgent           UserRole = "agent"

	// RoleSystem is never persisted on a User; it identifies unattended
	// write paths such as the public intake surface in audit entries.
	RoleSystem UserRole = "system"
)

// Tenant represents one university account, the unit of data isolation
type Tenant struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name           string    `json:"name" gorm:"type:varchar(255);not null"`
	Slug           string    `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	Plan           string    `json:"plan" gorm:"type:varchar(50);not null;default:'free'"`
	IsActive       bool      `json:"isActive" gorm:"not null;default:true"`
	PrimaryColor   string    `json:"primaryColor" gorm:"type:varchar(20)"`
	SecondaryColor string    `json:"secondaryColor" gorm:"type:varchar(20)"`
	LogoURL        string    `json:"logoUrl" gorm:"type:text"`
	// LeadVisibility is the per-tenant agent scope policy:
	// "assigned_only" or "all_leads". Evaluated on every read and write.
	LeadVisibility string    `json:"leadVisibility" gorm:"type:varchar(20);not null;default:'assigned_only'"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// User represents an actor with exactly one role. TenantID is nil for
// super admins and required for university admins and agents.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Email       string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password    string    `json:"-" gorm:"not null"` // Password is not exposed in JSON
	Role        UserRole  `json:"role" gorm:"type:varchar(30);not null;default:'agent'"`
	TenantID    *uint     `json:"tenantId" gorm:"index"`
	DisplayName string    `json:"displayName" gorm:"type:varchar(255)"`
	IsActive    bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AgentProfile holds per-tenant operational attributes for an agent user,
// one-to-one with a User of role agent. Deactivation blocks pipeline
// visibility without deleting history.
type AgentProfile struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      uint      `json:"userId" gorm:"uniqueIndex;not null"`
	TenantID    uint      `json:"tenantId" gorm:"index;not null"`
	DisplayName string    `json:"displayName" gorm:"type:varchar(255)"`
	Slug        string    `json:"slug" gorm:"type:varchar(100);uniqueIndex"` // public landing link
	Phone       string    `json:"phone" gorm:"type:varchar(50)"`
	Bio         string    `json:"bio" gorm:"type:text"`
	IsActive    bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Stage is an ordered pipeline step belonging to one tenant. Position
// defines the board order; values need not be contiguous.
type Stage struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID  uint      `json:"tenantId" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Position  int       `json:"position" gorm:"not null;default:0"`
	Color     string    `json:"color" gorm:"type:varchar(20)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Lead is a prospective student record. StageID nil means "no stage yet",
// which is a meaningful state, not an error. TenantID never changes once set.
type Lead struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TenantID    uint      `json:"tenantId" gorm:"index;not null"`
	FirstName   string    `json:"firstName" gorm:"type:varchar(255);not null"`
	LastName    string    `json:"lastName" gorm:"type:varchar(255)"`
	Email       string    `json:"email" gorm:"type:varchar(255);index;not null"`
	Phone       string    `json:"phone" gorm:"type:varchar(50)"`
	Country     string    `json:"country" gorm:"type:varchar(100)"`
	City        string    `json:"city" gorm:"type:varchar(100)"`
	Notes       string    `json:"notes" gorm:"type:text"`
	Program     string    `json:"program" gorm:"type:varchar(255)"`
	StageID     *uint     `json:"stageId" gorm:"index"`
	AgentID     *uint     `json:"agentId" gorm:"index"` // AgentProfile ID
	Score       int       `json:"score" gorm:"not null;default:0"`
	Source      string    `json:"source" gorm:"type:varchar(50);not null;default:'manual'"`
	SourceMeta  string    `json:"sourceMeta" gorm:"type:text"` // raw JSON payload
	UTMSource   string    `json:"utmSource" gorm:"type:varchar(255)"`
	UTMMedium   string    `json:"utmMedium" gorm:"type:varchar(255)"`
	UTMCampaign string    `json:"utmCampaign" gorm:"type:varchar(255)"`
	ReferrerURL string    `json:"referrerUrl" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AuditLog is an append-only record of a significant mutation. Never updated.
type AuditLog struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID   uint      `json:"tenantId" gorm:"index"`
	ActorID    uint      `json:"actorId" gorm:"index"`
	ActorRole  string    `json:"actorRole" gorm:"type:varchar(30)"`
	Action     string    `json:"action" gorm:"type:varchar(50);index;not null"`
	EntityType string    `json:"entityType" gorm:"type:varchar(50)"`
	EntityID   string    `json:"entityId" gorm:"type:varchar(64);index"`
	Metadata   string    `json:"metadata" gorm:"type:text"` // JSON stored as text
	CreatedAt  time.Time `json:"createdAt"`
}

// LeadFilter narrows ListLeads results. Nil pointers mean "no filter".
type LeadFilter struct {
	StageID *uint
	AgentID *uint
	Source  string
	Search  string // matches name or email
	Limit   int
	Offset  int
}

// AuditFilter narrows ListAuditLogs results
type AuditFilter struct {
	Action     string
	EntityType string
	EntityID   string
	Limit      int
	Offset     int
}
