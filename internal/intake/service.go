package intake

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/enrollflow/enrollflow/internal/apiserver/database"
	"github.com/enrollflow/enrollflow/internal/common/cnst"
	"github.com/enrollflow/enrollflow/internal/pipeline"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var (
	// ErrFormNotFound is returned when the slug resolves to nothing usable:
	// unknown, suspended tenant or deactivated agent all look the same.
	ErrFormNotFound = errors.New("form not found")
	// ErrThrottled is returned when the source address exceeds the limit
	ErrThrottled = errors.New("too many submissions")
)

// Submission outcomes, reported alongside the error for instrumentation.
// A honeypot hit is a nil-error outcome: callers answer success while
// nothing is created.
const (
	OutcomeAccepted  = "accepted"
	OutcomeHoneypot  = "honeypot"
	OutcomeThrottled = "throttled"
	OutcomeRejected  = "rejected"
)

// Submission carries applicant-supplied fields from a public form. Honeypot
// is a hidden field humans never fill; Metadata is the raw tracking payload
// attached by the form embed (UTM parameters, referrer).
type Submission struct {
	FirstName string          `json:"firstName" binding:"required"`
	LastName  string          `json:"lastName"`
	Email     string          `json:"email" binding:"required,email"`
	Phone     string          `json:"phone"`
	Country   string          `json:"country"`
	City      string          `json:"city"`
	Program   string          `json:"program"`
	Message   string          `json:"message"`
	Honeypot  string          `json:"website_url"`
	Metadata  json.RawMessage `json:"metadata"`
}

// Service is the unauthenticated lead-intake surface. It resolves the
// tenant from the slug server-side, applies anti-abuse controls and hands
// accepted submissions to the pipeline engine.
type Service struct {
	db      database.Database
	engine  *pipeline.Engine
	limiter Limiter
	logger  *zap.Logger
}

// NewService creates a new intake service
func NewService(db database.Database, engine *pipeline.Engine, limiter Limiter, logger *zap.Logger) *Service {
	return &Service{
		db:      db,
		engine:  engine,
		limiter: limiter,
		logger:  logger.Named("intake"),
	}
}

// SubmitUniversityForm handles a submission against a university form slug.
// A honeypot hit returns nil so the caller reports success without creating
// anything; bots get no signal that they were detected.
func (s *Service) SubmitUniversityForm(ctx context.Context, slug, remoteAddr string, sub *Submission) (string, error) {
	tenant, err := s.db.GetTenantBySlug(ctx, slug)
	if err != nil || !tenant.IsActive {
		return OutcomeRejected, ErrFormNotFound
	}

	return s.accept(ctx, tenant.ID, nil, cnst.LeadSourceForm, remoteAddr, sub)
}

// SubmitAgentForm handles a submission against an agent's personal landing
// slug. The lead is pre-assigned to that agent.
func (s *Service) SubmitAgentForm(ctx context.Context, slug, remoteAddr string, sub *Submission) (string, error) {
	agent, err := s.db.GetAgentProfileBySlug(ctx, slug)
	if err != nil || !agent.IsActive {
		return OutcomeRejected, ErrFormNotFound
	}
	tenant, err := s.db.GetTenantByID(ctx, agent.TenantID)
	if err != nil || !tenant.IsActive {
		return OutcomeRejected, ErrFormNotFound
	}

	agentID := agent.ID
	return s.accept(ctx, tenant.ID, &agentID, cnst.LeadSourceAgentLanding, remoteAddr, sub)
}

// accept runs the anti-abuse checks and creates the lead
func (s *Service) accept(ctx context.Context, tenantID uint, agentID *uint, source, remoteAddr string, sub *Submission) (string, error) {
	allowed, err := s.limiter.Allow(ctx, remoteAddr)
	if err != nil {
		// a broken limiter must not take the form down
		s.logger.Error("rate limiter failure", zap.Error(err))
		allowed = true
	}
	if !allowed {
		return OutcomeThrottled, ErrThrottled
	}

	if strings.TrimSpace(sub.Honeypot) != "" {
		s.logger.Info("honeypot submission discarded",
			zap.Uint("tenant_id", tenantID),
			zap.String("source", source))
		return OutcomeHoneypot, nil
	}

	lead := &database.Lead{
		TenantID:    tenantID,
		FirstName:   strings.TrimSpace(sub.FirstName),
		LastName:    strings.TrimSpace(sub.LastName),
		Email:       strings.TrimSpace(sub.Email),
		Phone:       sub.Phone,
		Country:     sub.Country,
		City:        sub.City,
		Program:     sub.Program,
		Notes:       sub.Message,
		AgentID:     agentID,
		Source:      source,
		SourceMeta:  string(sub.Metadata),
		UTMSource:   metaField(sub.Metadata, "utm_source"),
		UTMMedium:   metaField(sub.Metadata, "utm_medium"),
		UTMCampaign: metaField(sub.Metadata, "utm_campaign"),
		ReferrerURL: metaField(sub.Metadata, "referrer"),
	}

	if err := s.engine.CreateLead(ctx, pipeline.SystemActor(tenantID), lead); err != nil {
		return OutcomeRejected, err
	}
	return OutcomeAccepted, nil
}

// metaField extracts one string field from the raw tracking payload
func metaField(raw json.RawMessage, path string) string {
	if len(raw) == 0 {
		return ""
	}
	return gjson.GetBytes(raw, path).String()
}
