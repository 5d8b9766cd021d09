package activities

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"edutrust/student-portal/student-portal-backend/internal/audit"
	"edutrust/student-portal/student-portal-backend/pkg/faults"
	"edutrust/student-portal/student-portal-backend/pkg/locks"
	"edutrust/student-portal/student-portal-backend/pkg/workflows"
)

// Service owns the verification state machine. All transitions on a single
// activity are serialized behind a per-id mutex; transitions on different
// activities proceed in parallel.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*Activity, error)
	Get(ctx context.Context, id uuid.UUID) (*Activity, error)
	List(ctx context.Context, filter ListFilter) ([]Activity, error)
	AttachEvidence(ctx context.Context, id uuid.UUID, evidence []EvidenceRecord, actor audit.Actor) (*Activity, error)
	MentorDecision(ctx context.Context, req DecisionRequest) (*Activity, error)

	// ReopenForAppeal validates appeal eligibility and forces the activity
	// into under_review. It is invoked by the appeals service, which owns
	// the audit entry for the overall appeal submission.
	ReopenForAppeal(ctx context.Context, req ReopenRequest) (*Activity, error)

	// SetAppealResolver wires the appeals module in after construction so a
	// terminal mentor decision can close out the pending appeal.
	SetAppealResolver(resolver AppealResolver)
}

// AppealResolver marks pending appeals resolved once the activity they
// reopened reaches a new terminal state.
type AppealResolver interface {
	ResolveForActivity(ctx context.Context, activityID uuid.UUID) error
}

// SubmitRequest carries a new activity claim.
type SubmitRequest struct {
	StudentID       uuid.UUID
	Type            ActivityType
	Title           string
	Organization    string
	Date            time.Time
	Location        string
	Description     string
	Evidence        []EvidenceRecord
	AdditionalProof map[string]interface{}
}

// DecisionRequest carries one mentor decision.
type DecisionRequest struct {
	ActivityID uuid.UUID
	MentorID   uuid.UUID
	MentorName string
	Status     VerificationStatus
	Comments   string
}

// ReopenRequest carries the state-machine side of an appeal.
type ReopenRequest struct {
	ActivityID  uuid.UUID
	StudentID   uuid.UUID
	NewEvidence []EvidenceRecord
}

type service struct {
	repo           Repository
	scorer         *Scorer
	sm             *workflows.StateMachine
	locks          *locks.KeyedMutex
	auditor        *audit.Recorder
	logger         *zap.Logger
	thresholds     Thresholds
	appealScoreMax int
	resolver       AppealResolver
}

// NewService creates the verification pipeline service. appealScoreMax is the
// confidence score below which even a verified activity may be appealed.
func NewService(repo Repository, scorer *Scorer, auditor *audit.Recorder, logger *zap.Logger, thresholds Thresholds, appealScoreMax int) Service {
	return &service{
		repo:           repo,
		scorer:         scorer,
		sm:             workflows.NewVerificationStateMachine(),
		locks:          locks.NewKeyedMutex(),
		auditor:        auditor,
		logger:         logger,
		thresholds:     thresholds,
		appealScoreMax: appealScoreMax,
	}
}

func (s *service) SetAppealResolver(resolver AppealResolver) {
	s.resolver = resolver
}

func (s *service) Submit(ctx context.Context, req SubmitRequest) (*Activity, error) {
	if req.StudentID == uuid.Nil {
		return nil, faults.Validation("student_id is required")
	}
	if req.Title == "" {
		return nil, faults.Validation("title is required")
	}
	if !ValidType(req.Type) {
		return nil, faults.Validation("unknown activity type %q", req.Type)
	}

	activity := &Activity{
		ID:              uuid.New(),
		StudentID:       req.StudentID,
		Type:            req.Type,
		Title:           req.Title,
		Organization:    req.Organization,
		Date:            req.Date,
		Location:        req.Location,
		Description:     req.Description,
		Evidence:        req.Evidence,
		AdditionalProof: req.AdditionalProof,
		Verification: VerificationState{
			Status: StatusPending,
		},
	}

	// Score and auto-classify synchronously; mentors only ever see
	// activities that already carry a confidence score.
	s.applyScore(activity)

	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	s.logger.Info("activity submitted",
		zap.String("activity_id", activity.ID.String()),
		zap.Int("score", activity.Verification.AIConfidenceScore),
		zap.String("status", string(activity.Verification.Status)))

	s.auditor.Record(ctx,
		audit.Actor{ID: req.StudentID.String()},
		audit.ActionActivitySubmitted, "activity", activity.ID.String(),
		fmt.Sprintf("submitted %q, scored %d, auto-classified %s",
			activity.Title, activity.Verification.AIConfidenceScore, activity.Verification.Status))

	return activity, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Activity, error) {
	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, faults.NotFound("activity %s not found", id)
	}
	return activity, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Activity, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) AttachEvidence(ctx context.Context, id uuid.UUID, evidence []EvidenceRecord, actor audit.Actor) (*Activity, error) {
	if len(evidence) == 0 {
		return nil, faults.Validation("at least one evidence record is required")
	}

	s.locks.Lock(id.String())
	defer s.locks.Unlock(id.String())

	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, faults.NotFound("activity %s not found", id)
	}

	// A material evidence change re-enters the machine at submission:
	// rescore and auto-classify from scratch. Mentor identity and comments
	// survive; mentor_id is monotonic once set.
	activity.Evidence = append(activity.Evidence, evidence...)
	s.applyScore(activity)

	if err := s.repo.Update(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}

	s.auditor.Record(ctx, actor,
		audit.ActionEvidenceAttached, "activity", activity.ID.String(),
		fmt.Sprintf("attached %d evidence record(s), rescored %d, status %s",
			len(evidence), activity.Verification.AIConfidenceScore, activity.Verification.Status))

	return activity, nil
}

func (s *service) MentorDecision(ctx context.Context, req DecisionRequest) (*Activity, error) {
	if req.MentorID == uuid.Nil {
		return nil, faults.Validation("mentor_id is required")
	}
	if req.Comments == "" {
		return nil, faults.Validation("comments are required")
	}
	switch req.Status {
	case StatusVerified, StatusRejected, StatusUnderReview:
	default:
		return nil, faults.Validation("decision status must be verified, rejected or under_review, got %q", req.Status)
	}

	s.locks.Lock(req.ActivityID.String())
	defer s.locks.Unlock(req.ActivityID.String())

	activity, err := s.repo.GetByID(ctx, req.ActivityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, faults.NotFound("activity %s not found", req.ActivityID)
	}

	current := activity.Verification.Status
	if !s.mentorMayDecide(activity) {
		return nil, faults.InvalidTransition(
			"activity %s is %s by mentor decision and can only be reopened through an appeal",
			activity.ID, current)
	}
	if !s.sm.IsTerminal(string(current)) && !s.sm.CanTransition(string(current), string(req.Status)) {
		return nil, faults.InvalidTransition("cannot move activity %s from %s to %s", activity.ID, current, req.Status)
	}

	// The human decision wins over the auto-classification unconditionally.
	if activity.Verification.MentorComments != "" {
		activity.Verification.CommentHistory = append(activity.Verification.CommentHistory, activity.Verification.MentorComments)
	}
	mentorID := req.MentorID
	activity.Verification.MentorID = &mentorID
	activity.Verification.MentorComments = req.Comments
	s.setStatus(activity, req.Status, time.Now())

	if err := s.repo.Update(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}

	if s.sm.IsTerminal(string(req.Status)) && s.resolver != nil {
		if err := s.resolver.ResolveForActivity(ctx, activity.ID); err != nil {
			s.logger.Error("failed to resolve pending appeals",
				zap.String("activity_id", activity.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("mentor decision rendered",
		zap.String("activity_id", activity.ID.String()),
		zap.String("mentor_id", req.MentorID.String()),
		zap.String("from", string(current)),
		zap.String("to", string(req.Status)))

	s.auditor.Record(ctx,
		audit.Actor{ID: req.MentorID.String(), Name: req.MentorName},
		audit.ActionMentorDecision, "activity", activity.ID.String(),
		fmt.Sprintf("decision %s (was %s): %s", req.Status, current, req.Comments))

	return activity, nil
}

func (s *service) ReopenForAppeal(ctx context.Context, req ReopenRequest) (*Activity, error) {
	s.locks.Lock(req.ActivityID.String())
	defer s.locks.Unlock(req.ActivityID.String())

	activity, err := s.repo.GetByID(ctx, req.ActivityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, faults.NotFound("activity %s not found", req.ActivityID)
	}
	if activity.StudentID != req.StudentID {
		return nil, faults.Validation("activity %s does not belong to student %s", req.ActivityID, req.StudentID)
	}

	v := activity.Verification
	if v.Status != StatusRejected && v.AIConfidenceScore >= s.appealScoreMax {
		return nil, faults.IneligibleAppeal(
			"activity %s is %s with confidence %d; appeals require a rejection or confidence below %d",
			activity.ID, v.Status, v.AIConfidenceScore, s.appealScoreMax)
	}

	// Prior mentor comments become history rather than being discarded.
	if v.MentorComments != "" {
		activity.Verification.CommentHistory = append(activity.Verification.CommentHistory, v.MentorComments)
	}

	// Appeal evidence is stored but deliberately not rescored; the next
	// mentor decision reviews it directly.
	activity.Evidence = append(activity.Evidence, req.NewEvidence...)
	s.setStatus(activity, StatusUnderReview, time.Now())

	if err := s.repo.Update(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}

	return activity, nil
}

// mentorMayDecide reports whether a mentor decision is currently legal. Open
// states always accept one; auto-classified terminal states accept one until
// a mentor has rendered a decision, after which only an appeal reopens the
// activity.
func (s *service) mentorMayDecide(activity *Activity) bool {
	switch activity.Verification.Status {
	case StatusPending, StatusUnderReview:
		return true
	default:
		return activity.Verification.MentorID == nil
	}
}

// applyScore recomputes the confidence score from the current evidence set
// and applies the auto-classification outcome.
func (s *service) applyScore(activity *Activity) {
	score := s.scorer.Score(activity.Evidence)
	activity.Verification.AIConfidenceScore = score
	s.setStatus(activity, Classify(score, s.thresholds), time.Now())
}

// setStatus is the single place a status is written, keeping the invariant
// that verification_date is non-nil iff the status is terminal.
func (s *service) setStatus(activity *Activity, status VerificationStatus, at time.Time) {
	activity.Verification.Status = status
	if s.sm.IsTerminal(string(status)) {
		activity.Verification.VerificationDate = &at
	} else {
		activity.Verification.VerificationDate = nil
	}
}
