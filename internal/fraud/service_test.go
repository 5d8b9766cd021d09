package fraud

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"edutrust/student-portal/student-portal-backend/internal/activities"
	"edutrust/student-portal/student-portal-backend/internal/audit"
	"edutrust/student-portal/student-portal-backend/pkg/faults"
)

type mockAlertRepo struct {
	mock.Mock
}

func (m *mockAlertRepo) Create(ctx context.Context, alert *Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *mockAlertRepo) GetByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Alert), args.Error(1)
}

func (m *mockAlertRepo) List(ctx context.Context, filter ListFilter) ([]Alert, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]Alert), args.Error(1)
}

func (m *mockAlertRepo) ListByActivity(ctx context.Context, activityID uuid.UUID) ([]Alert, error) {
	args := m.Called(ctx, activityID)
	return args.Get(0).([]Alert), args.Error(1)
}

func (m *mockAlertRepo) Update(ctx context.Context, alert *Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

type nullAuditRepo struct{}

func (nullAuditRepo) Append(context.Context, *audit.Entry) error { return nil }
func (nullAuditRepo) Query(context.Context, audit.QueryFilter) ([]audit.Entry, error) {
	return nil, nil
}

func newFraudService(repo Repository) Service {
	return NewService(repo, audit.NewRecorder(nullAuditRepo{}, zap.NewNop()), zap.NewNop(), 50)
}

func openAlert() *Alert {
	return &Alert{
		ID:         uuid.New(),
		ActivityID: uuid.New(),
		StudentID:  uuid.New(),
		Type:       TypeGPSMismatch,
		Severity:   SeverityMedium,
		Status:     StatusOpen,
		DetectedAt: time.Now(),
	}
}

func flaggedActivity() *activities.Activity {
	return &activities.Activity{
		ID:           uuid.New(),
		StudentID:    uuid.New(),
		Title:        "NSS Community Service",
		Location:     "Chennai",
		Verification: activities.VerificationState{AIConfidenceScore: 70},
	}
}

func TestResolveOpenAlert(t *testing.T) {
	repo := new(mockAlertRepo)
	svc := newFraudService(repo)
	alert := openAlert()

	repo.On("GetByID", mock.Anything, alert.ID).Return(alert, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	resolved, err := svc.Resolve(context.Background(), alert.ID, "issuer confirmed the certificate", audit.Actor{ID: "mentor-1"})

	require.NoError(t, err)
	assert.Equal(t, StatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, "mentor-1", *resolved.ResolvedBy)
	require.NotNil(t, resolved.ResolutionNotes)
	assert.Equal(t, "issuer confirmed the certificate", *resolved.ResolutionNotes)
	assert.NotNil(t, resolved.ResolvedAt)
	repo.AssertExpectations(t)
}

func TestEscalateOpenAlert(t *testing.T) {
	repo := new(mockAlertRepo)
	svc := newFraudService(repo)
	alert := openAlert()

	repo.On("GetByID", mock.Anything, alert.ID).Return(alert, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	escalated, err := svc.Escalate(context.Background(), alert.ID, "needs manual document review", audit.Actor{ID: "mentor-1"})

	require.NoError(t, err)
	assert.Equal(t, StatusInvestigating, escalated.Status)
}

func TestMarkFalsePositive(t *testing.T) {
	repo := new(mockAlertRepo)
	svc := newFraudService(repo)
	alert := openAlert()

	repo.On("GetByID", mock.Anything, alert.ID).Return(alert, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	marked, err := svc.MarkFalsePositive(context.Background(), alert.ID, "GPS drift inside the venue", audit.Actor{ID: "mentor-1"})

	require.NoError(t, err)
	assert.Equal(t, StatusFalsePositive, marked.Status)
}

func TestTransitionRejectsNonOpenAlert(t *testing.T) {
	repo := new(mockAlertRepo)
	svc := newFraudService(repo)
	alert := openAlert()
	alert.Status = StatusResolved

	repo.On("GetByID", mock.Anything, alert.ID).Return(alert, nil)

	_, err := svc.Resolve(context.Background(), alert.ID, "again", audit.Actor{ID: "mentor-1"})

	assert.True(t, faults.Is(err, faults.KindInvalidAlertState), "got %v", err)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestGetUnknownAlert(t *testing.T) {
	repo := new(mockAlertRepo)
	svc := newFraudService(repo)
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(nil, nil)

	_, err := svc.Get(context.Background(), id)

	assert.True(t, faults.Is(err, faults.KindNotFound))
}

func TestScanActivityRaisesAlert(t *testing.T) {
	repo := new(mockAlertRepo)
	svc := newFraudService(repo)
	activity := flaggedActivity() // no evidence, so GPS counts as unverified

	repo.On("ListByActivity", mock.Anything, activity.ID).Return([]Alert{}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	alert, err := svc.ScanActivity(context.Background(), activity)

	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, TypeGPSMismatch, alert.Type)
	assert.Equal(t, SeverityMedium, alert.Severity)
	assert.Equal(t, StatusOpen, alert.Status)
	assert.Equal(t, activity.ID, alert.ActivityID)
	assert.Equal(t, activity.StudentID, alert.StudentID)
	repo.AssertExpectations(t)
}

func TestScanActivitySkipsCleanActivity(t *testing.T) {
	repo := new(mockAlertRepo)
	svc := newFraudService(repo)
	activity := flaggedActivity()
	activity.Evidence = []activities.EvidenceRecord{
		{Filename: "certificate.pdf", GPSVerified: true, BiometricMatchScore: 90},
	}

	alert, err := svc.ScanActivity(context.Background(), activity)

	require.NoError(t, err)
	assert.Nil(t, alert)
	repo.AssertNotCalled(t, "ListByActivity", mock.Anything, mock.Anything)
}

func TestScanActivitySuppressedByLiveAlert(t *testing.T) {
	repo := new(mockAlertRepo)
	svc := newFraudService(repo)
	activity := flaggedActivity()

	existing := *openAlert()
	existing.ActivityID = activity.ID
	repo.On("ListByActivity", mock.Anything, activity.ID).Return([]Alert{existing}, nil)

	alert, err := svc.ScanActivity(context.Background(), activity)

	require.NoError(t, err)
	assert.Nil(t, alert)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestScanActivitySuppressedByMatchingFalsePositive(t *testing.T) {
	repo := new(mockAlertRepo)
	svc := newFraudService(repo)
	activity := flaggedActivity()

	existing := *openAlert()
	existing.ActivityID = activity.ID
	existing.Status = StatusFalsePositive
	existing.Type = TypeGPSMismatch
	repo.On("ListByActivity", mock.Anything, activity.ID).Return([]Alert{existing}, nil)

	alert, err := svc.ScanActivity(context.Background(), activity)

	require.NoError(t, err)
	assert.Nil(t, alert)
}

func TestScanActivityFalsePositiveOfOtherTypeDoesNotSuppress(t *testing.T) {
	repo := new(mockAlertRepo)
	svc := newFraudService(repo)
	activity := flaggedActivity()

	existing := *openAlert()
	existing.ActivityID = activity.ID
	existing.Status = StatusFalsePositive
	existing.Type = TypeLowBiometric
	repo.On("ListByActivity", mock.Anything, activity.ID).Return([]Alert{existing}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	alert, err := svc.ScanActivity(context.Background(), activity)

	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, TypeGPSMismatch, alert.Type)
}
