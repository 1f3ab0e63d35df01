package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/enrollflow/enrollflow/internal/apiserver/database"
	"github.com/enrollflow/enrollflow/internal/audit"
	"github.com/enrollflow/enrollflow/internal/common/cnst"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotFound covers both missing records and records the actor is not
	// allowed to know about. Cross-tenant probes always get this one.
	ErrNotFound = errors.New("record not found")
	// ErrForbidden is returned to actors who are authorized for the tenant
	// but lack rights for the specific operation.
	ErrForbidden = errors.New("operation not allowed")
	// ErrEmptyStageName rejects a stage batch containing a blank name
	ErrEmptyStageName = errors.New("stage name must not be empty")
	// ErrAgentNotFound is returned when an assignment target does not exist
	// in the lead's tenant
	ErrAgentNotFound = errors.New("agent not found")
	// ErrAgentInactive rejects assignment to a deactivated agent
	ErrAgentInactive = errors.New("agent is not active")
	// ErrStageNotFound is returned when a move target does not exist in the
	// lead's tenant
	ErrStageNotFound = errors.New("stage not found")
	// ErrLeadRequired is returned when a lead is missing required fields
	ErrLeadRequired = errors.New("lead first name and email are required")
)

// StageInput is one entry of a stage batch save. A nil ID creates a new
// stage; Deleted removes an existing one. Position is taken from the entry's
// index in the submitted order, so the caller's sequence is authoritative.
type StageInput struct {
	ID      *uint  `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Deleted bool   `json:"deleted"`
}

// Engine owns stage ordering, lead-to-stage assignment and the authorization
// rules over both. All mutations flow through here so the visibility policy
// is enforced server-side on every path.
type Engine struct {
	db      database.Database
	auditor *audit.Recorder
	logger  *zap.Logger
}

// NewEngine creates a new pipeline engine
func NewEngine(db database.Database, auditor *audit.Recorder, logger *zap.Logger) *Engine {
	return &Engine{
		db:      db,
		auditor: auditor,
		logger:  logger.Named("pipeline"),
	}
}

// ListStages returns the tenant's stages ordered by position ascending.
// An unconfigured tenant yields an empty list, not an error.
func (e *Engine) ListStages(ctx context.Context, actor Actor, tenantID uint) ([]*database.Stage, error) {
	if !actor.CanAccessTenant(tenantID) {
		return nil, ErrNotFound
	}
	return e.db.ListStages(ctx, tenantID)
}

// ListLeads returns the tenant's leads narrowed to the actor's visibility
// scope. The tenant's policy is re-read on every call; the scope is never
// trusted from the client.
func (e *Engine) ListLeads(ctx context.Context, actor Actor, tenantID uint, filter *database.LeadFilter) ([]*database.Lead, error) {
	if !actor.CanAccessTenant(tenantID) {
		return nil, ErrNotFound
	}
	policy, err := e.tenantPolicy(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return e.db.ListLeads(ctx, tenantID, actor.ScopeLeadFilter(filter, policy))
}

// GetLead returns one lead if the actor's scope covers it
func (e *Engine) GetLead(ctx context.Context, actor Actor, leadID string) (*database.Lead, error) {
	lead, _, err := e.visibleLead(ctx, actor, leadID)
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// CreateLead validates tenant-internal references, stamps identity and
// timestamps, persists the lead and records an audit entry.
func (e *Engine) CreateLead(ctx context.Context, actor Actor, lead *database.Lead) error {
	if !actor.CanAccessTenant(lead.TenantID) {
		return ErrNotFound
	}
	if strings.TrimSpace(lead.FirstName) == "" || strings.TrimSpace(lead.Email) == "" {
		return ErrLeadRequired
	}
	if lead.StageID != nil {
		stage, err := e.db.GetStageByID(ctx, *lead.StageID)
		if err != nil || stage.TenantID != lead.TenantID {
			return ErrStageNotFound
		}
	}
	if lead.AgentID != nil {
		agent, err := e.db.GetAgentProfileByID(ctx, *lead.AgentID)
		if err != nil || agent.TenantID != lead.TenantID {
			return ErrAgentNotFound
		}
		if !agent.IsActive {
			return ErrAgentInactive
		}
	}

	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.Source == "" {
		lead.Source = cnst.LeadSourceManual
	}
	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	if err := e.db.CreateLead(ctx, lead); err != nil {
		return err
	}

	_ = e.auditor.Record(ctx, lead.TenantID, actor.UserID, string(actor.Role),
		cnst.AuditLeadCreated, "lead", lead.ID, map[string]any{
			"source": lead.Source,
			"email":  lead.Email,
		})
	return nil
}

// MoveLead sets the lead's stage reference. This is the sole pipeline state
// transition; the current stage is the lead's status. Moving a lead to the
// stage it already occupies is a no-op with no write and no audit entry, so
// client retries are safe. Concurrent moves resolve last-write-wins.
func (e *Engine) MoveLead(ctx context.Context, actor Actor, leadID string, targetStageID *uint) (*database.Lead, error) {
	lead, policy, err := e.visibleLead(ctx, actor, leadID)
	if err != nil {
		return nil, err
	}
	if !actor.CanMoveLead(lead, policy) {
		return nil, ErrNotFound
	}

	if targetStageID != nil {
		stage, err := e.db.GetStageByID(ctx, *targetStageID)
		if err != nil {
			return nil, ErrStageNotFound
		}
		if stage.TenantID != lead.TenantID {
			// cross-tenant target: report uniformly, mutate nothing
			return nil, ErrStageNotFound
		}
	}

	if stageRefEqual(lead.StageID, targetStageID) {
		return lead, nil
	}

	from := stageRefString(lead.StageID)
	if err := e.db.UpdateLeadStage(ctx, leadID, targetStageID); err != nil {
		return nil, err
	}
	lead.StageID = targetStageID
	lead.UpdatedAt = time.Now()

	_ = e.auditor.Record(ctx, lead.TenantID, actor.UserID, string(actor.Role),
		cnst.AuditLeadMoved, "lead", lead.ID, map[string]any{
			"from_stage": from,
			"to_stage":   stageRefString(targetStageID),
		})
	return lead, nil
}

// AssignAgent sets the lead's agent reference. Admins only; a nil agentID
// unassigns. The target agent must be active and of the lead's tenant.
func (e *Engine) AssignAgent(ctx context.Context, actor Actor, leadID string, agentID *uint) (*database.Lead, error) {
	lead, _, err := e.visibleLead(ctx, actor, leadID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAssignAgent(lead) {
		return nil, ErrForbidden
	}

	if agentID != nil {
		agent, err := e.db.GetAgentProfileByID(ctx, *agentID)
		if err != nil || agent.TenantID != lead.TenantID {
			return nil, ErrAgentNotFound
		}
		if !agent.IsActive {
			return nil, ErrAgentInactive
		}
	}

	if agentRefEqual(lead.AgentID, agentID) {
		return lead, nil
	}

	if err := e.db.UpdateLeadAgent(ctx, leadID, agentID); err != nil {
		return nil, err
	}
	lead.AgentID = agentID
	lead.UpdatedAt = time.Now()

	_ = e.auditor.Record(ctx, lead.TenantID, actor.UserID, string(actor.Role),
		cnst.AuditLeadAssigned, "lead", lead.ID, map[string]any{
			"agent": agentRefString(agentID),
		})
	return lead, nil
}

// UpdateScore sets the lead's numeric score within the actor's scope
func (e *Engine) UpdateScore(ctx context.Context, actor Actor, leadID string, score int) (*database.Lead, error) {
	lead, _, err := e.visibleLead(ctx, actor, leadID)
	if err != nil {
		return nil, err
	}
	if lead.Score == score {
		return lead, nil
	}

	if err := e.db.UpdateLeadScore(ctx, leadID, score); err != nil {
		return nil, err
	}
	lead.Score = score
	lead.UpdatedAt = time.Now()

	_ = e.auditor.Record(ctx, lead.TenantID, actor.UserID, string(actor.Role),
		cnst.AuditLeadScored, "lead", lead.ID, map[string]any{"score": score})
	return lead, nil
}

// ReorderStages applies one board save as a single all-or-nothing unit:
// creations, renames, reorders and deletions commit together or not at all.
// Position becomes the entry's index among the surviving stages. Deleting a
// stage nulls the stage reference of its leads; the leads survive.
func (e *Engine) ReorderStages(ctx context.Context, actor Actor, tenantID uint, batch []StageInput) ([]*database.Stage, error) {
	if !actor.CanAccessTenant(tenantID) {
		return nil, ErrNotFound
	}
	if !actor.CanManageStages(tenantID) {
		return nil, ErrForbidden
	}

	// Validate before touching anything: one bad entry rejects the batch.
	for _, in := range batch {
		if !in.Deleted && strings.TrimSpace(in.Name) == "" {
			return nil, ErrEmptyStageName
		}
	}

	err := e.db.Transaction(ctx, func(txCtx context.Context) error {
		// Every referenced stage must belong to the tenant.
		for _, in := range batch {
			if in.ID == nil {
				continue
			}
			stage, err := e.db.GetStageByID(txCtx, *in.ID)
			if err != nil {
				return ErrStageNotFound
			}
			if stage.TenantID != tenantID {
				return ErrStageNotFound
			}
		}

		position := 0
		for _, in := range batch {
			if in.Deleted {
				if in.ID == nil {
					continue
				}
				cleared, err := e.db.ClearLeadStageRefs(txCtx, *in.ID)
				if err != nil {
					return err
				}
				if err := e.db.DeleteStage(txCtx, *in.ID); err != nil {
					return err
				}
				e.logger.Info("stage deleted",
					zap.Uint("stage_id", *in.ID),
					zap.Uint("tenant_id", tenantID),
					zap.Int64("leads_cleared", cleared))
				continue
			}

			name := strings.TrimSpace(in.Name)
			if in.ID == nil {
				stage := &database.Stage{
					TenantID:  tenantID,
					Name:      name,
					Position:  position,
					Color:     in.Color,
					CreatedAt: time.Now(),
					UpdatedAt: time.Now(),
				}
				if err := e.db.CreateStage(txCtx, stage); err != nil {
					return err
				}
			} else {
				stage, err := e.db.GetStageByID(txCtx, *in.ID)
				if err != nil {
					return ErrStageNotFound
				}
				stage.Name = name
				stage.Position = position
				stage.Color = in.Color
				stage.UpdatedAt = time.Now()
				if err := e.db.UpdateStage(txCtx, stage); err != nil {
					return err
				}
			}
			position++
		}

		return e.auditor.Record(txCtx, tenantID, actor.UserID, string(actor.Role),
			cnst.AuditStagesSaved, "stage", fmt.Sprintf("tenant:%d", tenantID),
			map[string]any{"stages": position})
	})
	if err != nil {
		return nil, err
	}

	return e.db.ListStages(ctx, tenantID)
}

// visibleLead loads a lead together with its tenant's visibility policy and
// applies the uniform not-found rule for anything outside the actor's reach.
func (e *Engine) visibleLead(ctx context.Context, actor Actor, leadID string) (*database.Lead, string, error) {
	lead, err := e.db.GetLeadByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	if !actor.CanAccessTenant(lead.TenantID) {
		return nil, "", ErrNotFound
	}
	policy, err := e.tenantPolicy(ctx, lead.TenantID)
	if err != nil {
		return nil, "", err
	}
	if !actor.CanSeeLead(lead, policy) {
		return nil, "", ErrNotFound
	}
	return lead, policy, nil
}

// tenantPolicy returns the tenant's configured lead visibility policy
func (e *Engine) tenantPolicy(ctx context.Context, tenantID uint) (string, error) {
	tenant, err := e.db.GetTenantByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if tenant.LeadVisibility == "" {
		return cnst.VisibilityAssignedOnly, nil
	}
	return tenant.LeadVisibility, nil
}

func stageRefEqual(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func agentRefEqual(a, b *uint) bool {
	return stageRefEqual(a, b)
}

func stageRefString(id *uint) string {
	if id == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *id)
}

func agentRefString(id *uint) string {
	return stageRefString(id)
}
