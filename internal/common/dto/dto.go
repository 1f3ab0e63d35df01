package dto

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// UserInfo is the user payload returned by auth endpoints
type UserInfo struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	TenantID    uint   `json:"tenantId,omitempty"`
	AgentID     uint   `json:"agentId,omitempty"`
}

// CreateTenantRequest represents a tenant creation request
type CreateTenantRequest struct {
	Name           string `json:"name" binding:"required"`
	Slug           string `json:"slug" binding:"required"`
	Plan           string `json:"plan"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	LogoURL        string `json:"logoUrl"`
	LeadVisibility string `json:"leadVisibility"`
}

// UpdateTenantRequest represents a tenant update request. Nil pointers
// leave the field unchanged.
type UpdateTenantRequest struct {
	Name           string  `json:"name"`
	Plan           string  `json:"plan"`
	IsActive       *bool   `json:"isActive"`
	PrimaryColor   *string `json:"primaryColor"`
	SecondaryColor *string `json:"secondaryColor"`
	LogoURL        *string `json:"logoUrl"`
	LeadVisibility *string `json:"leadVisibility"`
}

// CreateUserRequest represents a user creation request. TenantID is ignored
// unless the caller is a super admin; university admins create users in
// their own tenant only.
type CreateUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role" binding:"required"`
	TenantID    uint   `json:"tenantId"`
	Phone       string `json:"phone"`
	Bio         string `json:"bio"`
}

// ChangeRoleRequest demotes or promotes a user within a tenant
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateAgentRequest represents an agent profile update
type UpdateAgentRequest struct {
	DisplayName *string `json:"displayName"`
	Phone       *string `json:"phone"`
	Bio         *string `json:"bio"`
	IsActive    *bool   `json:"isActive"`
}

// SaveStagesRequest is the atomic board save: the submitted order defines
// stage positions; entries marked deleted are removed.
type SaveStagesRequest struct {
	Stages []StageEntry `json:"stages" binding:"required"`
}

// StageEntry is one stage row of a board save
type StageEntry struct {
	ID      *uint  `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Deleted bool   `json:"deleted"`
}

// CreateLeadRequest represents a manual lead creation request
type CreateLeadRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Country   string `json:"country"`
	City      string `json:"city"`
	Program   string `json:"program"`
	Notes     string `json:"notes"`
	StageID   *uint  `json:"stageId"`
	AgentID   *uint  `json:"agentId"`
	Score     int    `json:"score"`
}

// MoveLeadRequest sets the lead's stage; null means "no stage"
type MoveLeadRequest struct {
	StageID *uint `json:"stageId"`
}

// AssignAgentRequest sets the lead's agent; null unassigns
type AssignAgentRequest struct {
	AgentID *uint `json:"agentId"`
}

// ScoreLeadRequest updates the lead's score
type ScoreLeadRequest struct {
	Score int `json:"score"`
}
