package fraud

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

// Service is the fraud alert registry: it materializes alerts from detector
// signals and tracks their investigation state. Only open alerts may
// transition; every transition is audited.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]Alert, error)
	Get(ctx context.Context, id uuid.UUID) (*Alert, error)
	Resolve(ctx context.Context, id uuid.UUID, notes string, actor audit.Actor) (*Alert, error)
	Escalate(ctx context.Context, id uuid.UUID, notes string, actor audit.Actor) (*Alert, error)
	MarkFalsePositive(ctx context.Context, id uuid.UUID, notes string, actor audit.Actor) (*Alert, error)

	// ScanActivity derives the fraud signal for one activity and raises an
	// alert when the activity is flagged and carries no live alert yet.
	// Returns the raised alert, or nil when nothing was raised.
	ScanActivity(ctx context.Context, activity *activities.Activity) (*Alert, error)
}

type service struct {
	repo          Repository
	auditor       *audit.Recorder
	logger        *zap.Logger
	lowConfidence int
}

// NewService creates the fraud alert registry. lowConfidence is the
// confidence score below which an otherwise clean activity is still flagged.
func NewService(repo Repository, auditor *audit.Recorder, logger *zap.Logger, lowConfidence int) Service {
	return &service{
		repo:          repo,
		auditor:       auditor,
		logger:        logger,
		lowConfidence: lowConfidence,
	}
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Alert, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Alert, error) {
	alert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, faults.NotFound("fraud alert %s not found", id)
	}
	return alert, nil
}

func (s *service) Resolve(ctx context.Context, id uuid.UUID, notes string, actor audit.Actor) (*Alert, error) {
	return s.transition(ctx, id, StatusResolved, notes, actor, audit.ActionAlertResolved)
}

func (s *service) Escalate(ctx context.Context, id uuid.UUID, notes string, actor audit.Actor) (*Alert, error) {
	return s.transition(ctx, id, StatusInvestigating, notes, actor, audit.ActionAlertEscalated)
}

func (s *service) MarkFalsePositive(ctx context.Context, id uuid.UUID, notes string, actor audit.Actor) (*Alert, error) {
	return s.transition(ctx, id, StatusFalsePositive, notes, actor, audit.ActionAlertFalsePositive)
}

func (s *service) transition(ctx context.Context, id uuid.UUID, to AlertStatus, notes string, actor audit.Actor, action string) (*Alert, error) {
	alert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, faults.NotFound("fraud alert %s not found", id)
	}
	if alert.Status != StatusOpen {
		return nil, faults.InvalidAlertState("fraud alert %s is %s; only open alerts may transition", id, alert.Status)
	}

	now := time.Now()
	alert.Status = to
	alert.ResolvedBy = &actor.ID
	alert.ResolutionNotes = &notes
	alert.ResolvedAt = &now

	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to update fraud alert: %w", err)
	}

	s.auditor.Record(ctx, actor, action, "fraud_alert", alert.ID.String(),
		fmt.Sprintf("%s alert for activity %s: %s", to, alert.ActivityID, notes))

	return alert, nil
}

func (s *service) ScanActivity(ctx context.Context, activity *activities.Activity) (*Alert, error) {
	signal := Detect(activity, s.lowConfidence)
	if signal == nil {
		return nil, nil
	}

	existing, err := s.repo.ListByActivity(ctx, activity.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range existing {
		// One live alert per activity at a time; a false positive verdict
		// also suppresses re-raising the same signal type.
		if a.Status == StatusOpen || a.Status == StatusInvestigating {
			return nil, nil
		}
		if a.Status == StatusFalsePositive && a.Type == signal.Type {
			return nil, nil
		}
	}

	alert := &Alert{
		ID:          uuid.New(),
		ActivityID:  activity.ID,
		StudentID:   activity.StudentID,
		Type:        signal.Type,
		Severity:    signal.Severity,
		Description: signal.Description,
		Status:      StatusOpen,
		DetectedAt:  time.Now(),
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to create fraud alert: %w", err)
	}

	s.logger.Info("fraud alert raised",
		zap.String("alert_id", alert.ID.String()),
		zap.String("activity_id", activity.ID.String()),
		zap.String("type", string(alert.Type)),
		zap.String("severity", string(alert.Severity)))

	s.auditor.Record(ctx, audit.Actor{ID: "system", Name: "fraud-detector"},
		audit.ActionAlertRaised, "fraud_alert", alert.ID.String(),
		fmt.Sprintf("%s (%s) on activity %s: %s", alert.Type, alert.Severity, activity.ID, alert.Description))

	return alert, nil
}
