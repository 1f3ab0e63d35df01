package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/enrollflow/enrollflow/internal/apiserver/database"
	"go.uber.org/zap"
)

// Recorder appends audit entries for significant mutations. It is
// write-only: entries are never read back or mutated by the recorder.
type Recorder struct {
	db     database.Database
	logger *zap.Logger
}

// NewRecorder creates a new audit recorder
func NewRecorder(db database.Database, logger *zap.Logger) *Recorder {
	return &Recorder{
		db:     db,
		logger: logger.Named("audit"),
	}
}

// Record appends one audit entry. Metadata is marshalled to JSON; a nil map
// produces an empty payload. When the entry is written outside a
// transaction, a write failure is logged and swallowed so that the audited
// operation itself is not rolled back by a sink failure. Inside a
// transaction (context carries one) the error propagates so the batch stays
// atomic.
func (r *Recorder) Record(ctx context.Context, tenantID, actorID uint, actorRole, action, entityType, entityID string, metadata map[string]any) error {
	payload := ""
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			r.logger.Warn("failed to marshal audit metadata",
				zap.String("action", action),
				zap.Error(err))
		} else {
			payload = string(raw)
		}
	}

	entry := &database.AuditLog{
		TenantID:   tenantID,
		ActorID:    actorID,
		ActorRole:  actorRole,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   payload,
		CreatedAt:  time.Now(),
	}

	if err := r.db.CreateAuditLog(ctx, entry); err != nil {
		if database.TransactionFromContext(ctx) != nil {
			return err
		}
		r.logger.Error("failed to write audit entry",
			zap.String("action", action),
			zap.String("entity", entityType),
			zap.Error(err))
	}
	return nil
}
