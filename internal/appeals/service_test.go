package appeals

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"edutrust/student-portal/student-portal-backend/internal/activities"
	"edutrust/student-portal/student-portal-backend/internal/audit"
	"edutrust/student-portal/student-portal-backend/pkg/faults"
)

type memActivityStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]activities.Activity
}

func (m *memActivityStore) Create(_ context.Context, activity *activities.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[activity.ID] = *activity
	return nil
}

func (m *memActivityStore) GetByID(_ context.Context, id uuid.UUID) (*activities.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	activity, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &activity, nil
}

func (m *memActivityStore) List(_ context.Context, _ activities.ListFilter) ([]activities.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []activities.Activity
	for _, activity := range m.items {
		result = append(result, activity)
	}
	return result, nil
}

func (m *memActivityStore) Update(_ context.Context, activity *activities.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[activity.ID] = *activity
	return nil
}

type memAppealStore struct {
	mu    sync.Mutex
	items []Appeal
}

func (m *memAppealStore) Create(_ context.Context, appeal *Appeal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, *appeal)
	return nil
}

func (m *memAppealStore) List(_ context.Context, filter ListFilter) ([]Appeal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []Appeal
	for _, appeal := range m.items {
		if filter.ActivityID != nil && appeal.ActivityID != *filter.ActivityID {
			continue
		}
		if filter.StudentID != nil && appeal.StudentID != *filter.StudentID {
			continue
		}
		result = append(result, appeal)
	}
	return result, nil
}

func (m *memAppealStore) ResolvePending(_ context.Context, activityID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ActivityID == activityID && m.items[i].Status == StatusPending {
			m.items[i].Status = StatusResolved
			resolvedAt := at
			m.items[i].ResolvedAt = &resolvedAt
		}
	}
	return nil
}

type nullAuditRepo struct{}

func (nullAuditRepo) Append(context.Context, *audit.Entry) error { return nil }
func (nullAuditRepo) Query(context.Context, audit.QueryFilter) ([]audit.Entry, error) {
	return nil, nil
}

// newTestPipeline wires a real verification pipeline, the appeal service, and
// the resolver hook, the same shape main assembles.
func newTestPipeline(base float64) (Service, activities.Service, *memAppealStore) {
	logger := zap.NewNop()
	recorder := audit.NewRecorder(nullAuditRepo{}, logger)
	activityStore := &memActivityStore{items: make(map[uuid.UUID]activities.Activity)}
	pipeline := activities.NewService(activityStore, activities.NewScorer(activities.FixedBase(base)),
		recorder, logger, activities.DefaultThresholds(), 50)
	appealStore := &memAppealStore{}
	svc := NewService(appealStore, pipeline, recorder, logger)
	pipeline.SetAppealResolver(svc)
	return svc, pipeline, appealStore
}

func submitActivity(t *testing.T, pipeline activities.Service) *activities.Activity {
	t.Helper()
	activity, err := pipeline.Submit(context.Background(), activities.SubmitRequest{
		StudentID: uuid.New(),
		Type:      activities.TypeSocialWork,
		Title:     "Beach Cleanup Drive",
	})
	require.NoError(t, err)
	return activity
}

func rejectActivity(t *testing.T, pipeline activities.Service, activityID uuid.UUID, comments string) {
	t.Helper()
	_, err := pipeline.MentorDecision(context.Background(), activities.DecisionRequest{
		ActivityID: activityID,
		MentorID:   uuid.New(),
		Status:     activities.StatusRejected,
		Comments:   comments,
	})
	require.NoError(t, err)
}

func TestSubmitRequiresMessage(t *testing.T) {
	svc, pipeline, store := newTestPipeline(70)
	activity := submitActivity(t, pipeline)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		ActivityID: activity.ID,
		StudentID:  activity.StudentID,
	})

	assert.True(t, faults.Is(err, faults.KindValidation))
	assert.Empty(t, store.items)
}

func TestSubmitReopensRejectedActivity(t *testing.T) {
	svc, pipeline, _ := newTestPipeline(70)
	ctx := context.Background()
	activity := submitActivity(t, pipeline)
	rejectActivity(t, pipeline, activity.ID, "organization not recognized")

	appeal, err := svc.Submit(ctx, SubmitRequest{
		ActivityID: activity.ID,
		StudentID:  activity.StudentID,
		Message:    "the organization is registered under its parent trust",
		Evidence: []activities.EvidenceRecord{
			{Filename: "registration.pdf", GPSVerified: true, BiometricMatchScore: 90},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, StatusPending, appeal.Status)
	assert.Equal(t, activity.ID, appeal.ActivityID)

	reopened, err := pipeline.Get(ctx, activity.ID)
	require.NoError(t, err)
	assert.Equal(t, activities.StatusUnderReview, reopened.Verification.Status)
	assert.Nil(t, reopened.Verification.VerificationDate)
	assert.Contains(t, reopened.Verification.CommentHistory, "organization not recognized")
	assert.Len(t, reopened.Evidence, 1)
}

func TestSubmitIneligibleActivity(t *testing.T) {
	svc, pipeline, store := newTestPipeline(70)
	activity := submitActivity(t, pipeline) // pending with confidence 70

	_, err := svc.Submit(context.Background(), SubmitRequest{
		ActivityID: activity.ID,
		StudentID:  activity.StudentID,
		Message:    "please reconsider",
	})

	assert.True(t, faults.Is(err, faults.KindIneligibleAppeal), "got %v", err)
	assert.Empty(t, store.items)
}

func TestSubmitUnknownActivity(t *testing.T) {
	svc, _, _ := newTestPipeline(70)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		ActivityID: uuid.New(),
		StudentID:  uuid.New(),
		Message:    "please reconsider",
	})

	assert.True(t, faults.Is(err, faults.KindNotFound))
}

func TestNewDecisionResolvesPendingAppeal(t *testing.T) {
	svc, pipeline, _ := newTestPipeline(70)
	ctx := context.Background()
	activity := submitActivity(t, pipeline)
	rejectActivity(t, pipeline, activity.ID, "blurry scan")

	_, err := svc.Submit(ctx, SubmitRequest{
		ActivityID: activity.ID,
		StudentID:  activity.StudentID,
		Message:    "attaching a readable copy",
	})
	require.NoError(t, err)

	_, err = pipeline.MentorDecision(ctx, activities.DecisionRequest{
		ActivityID: activity.ID,
		MentorID:   uuid.New(),
		Status:     activities.StatusVerified,
		Comments:   "readable copy checks out",
	})
	require.NoError(t, err)

	appeals, err := svc.List(ctx, ListFilter{ActivityID: &activity.ID})
	require.NoError(t, err)
	require.Len(t, appeals, 1)
	assert.Equal(t, StatusResolved, appeals[0].Status)
	assert.NotNil(t, appeals[0].ResolvedAt)
}

func TestListFiltersByStudent(t *testing.T) {
	svc, pipeline, _ := newTestPipeline(70)
	ctx := context.Background()

	first := submitActivity(t, pipeline)
	rejectActivity(t, pipeline, first.ID, "no proof of attendance")
	second := submitActivity(t, pipeline)
	rejectActivity(t, pipeline, second.ID, "no proof of attendance")

	for _, activity := range []*activities.Activity{first, second} {
		_, err := svc.Submit(ctx, SubmitRequest{
			ActivityID: activity.ID,
			StudentID:  activity.StudentID,
			Message:    "attendance sheet attached",
		})
		require.NoError(t, err)
	}

	appeals, err := svc.List(ctx, ListFilter{StudentID: &first.StudentID})
	require.NoError(t, err)
	require.Len(t, appeals, 1)
	assert.Equal(t, first.ID, appeals[0].ActivityID)
}
