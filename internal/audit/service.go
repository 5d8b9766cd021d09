package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder appends audit entries for state-changing pipeline actions and
// serves compliance queries. Appends are best-effort: a failed append is
// logged but never fails the action it describes, since the action has
// already been committed by the time it is recorded.
type Recorder struct {
	repo   Repository
	logger *zap.Logger
}

// NewRecorder creates a new audit recorder.
func NewRecorder(repo Repository, logger *zap.Logger) *Recorder {
	return &Recorder{
		repo:   repo,
		logger: logger,
	}
}

// Record appends one entry describing a completed state change.
func (r *Recorder) Record(ctx context.Context, actor Actor, action, resourceType, resourceID, detail string) {
	entry := &Entry{
		ID:           uuid.New(),
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Detail:       detail,
		CreatedAt:    time.Now(),
	}

	if err := r.repo.Append(ctx, entry); err != nil {
		r.logger.Error("failed to append audit entry",
			zap.String("action", action),
			zap.String("resource_id", resourceID),
			zap.Error(err))
	}
}

// Query returns entries matching the filter, newest first.
func (r *Recorder) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	return r.repo.Query(ctx, filter)
}
