package appeals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"edutrust/student-portal/student-portal-backend/internal/activities"
	"edutrust/student-portal/student-portal-backend/internal/audit"
	"edutrust/student-portal/student-portal-backend/pkg/faults"
)

// Service handles appeal submission and the appeal view of the state machine.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*Appeal, error)
	List(ctx context.Context, filter ListFilter) ([]Appeal, error)

	// ResolveForActivity closes pending appeals once the activity they
	// reopened reaches a new terminal decision. Wired into the activities
	// service as its AppealResolver.
	ResolveForActivity(ctx context.Context, activityID uuid.UUID) error
}

// SubmitRequest carries one appeal.
type SubmitRequest struct {
	ActivityID uuid.UUID
	StudentID  uuid.UUID
	Message    string
	Evidence   []activities.EvidenceRecord
}

type service struct {
	repo     Repository
	pipeline activities.Service
	auditor  *audit.Recorder
	logger   *zap.Logger
}

// NewService creates the appeal service.
func NewService(repo Repository, pipeline activities.Service, auditor *audit.Recorder, logger *zap.Logger) Service {
	return &service{
		repo:     repo,
		pipeline: pipeline,
		auditor:  auditor,
		logger:   logger,
	}
}

func (s *service) Submit(ctx context.Context, req SubmitRequest) (*Appeal, error) {
	if req.Message == "" {
		return nil, faults.Validation("an appeal message is required")
	}
	if req.StudentID == uuid.Nil {
		return nil, faults.Validation("student_id is required")
	}

	// Eligibility is checked inside the state machine under the activity's
	// lock, so an appeal cannot interleave with a concurrent mentor
	// decision. New evidence is attached but deliberately not rescored.
	activity, err := s.pipeline.ReopenForAppeal(ctx, activities.ReopenRequest{
		ActivityID:  req.ActivityID,
		StudentID:   req.StudentID,
		NewEvidence: req.Evidence,
	})
	if err != nil {
		return nil, err
	}

	appeal := &Appeal{
		ID:         uuid.New(),
		ActivityID: activity.ID,
		StudentID:  req.StudentID,
		Message:    req.Message,
		Evidence:   req.Evidence,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Create(ctx, appeal); err != nil {
		return nil, fmt.Errorf("failed to create appeal: %w", err)
	}

	s.logger.Info("appeal submitted",
		zap.String("appeal_id", appeal.ID.String()),
		zap.String("activity_id", activity.ID.String()))

	s.auditor.Record(ctx,
		audit.Actor{ID: req.StudentID.String()},
		audit.ActionAppealSubmitted, "activity", activity.ID.String(),
		fmt.Sprintf("appeal %s reopened activity for review: %s", appeal.ID, req.Message))

	return appeal, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Appeal, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ResolveForActivity(ctx context.Context, activityID uuid.UUID) error {
	return s.repo.ResolvePending(ctx, activityID, time.Now())
}
