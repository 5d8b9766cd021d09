package fraud

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows an alert listing. Nil fields are ignored.
type ListFilter struct {
	Severity *Severity
	Status   *AlertStatus
}

// Repository is the durable alert store. GetByID returns (nil, nil) when no
// alert exists for the id.
type Repository interface {
	Create(ctx context.Context, alert *Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	List(ctx context.Context, filter ListFilter) ([]Alert, error)
	ListByActivity(ctx context.Context, activityID uuid.UUID) ([]Alert, error)
	Update(ctx context.Context, alert *Alert) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a GORM-backed alert repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, alert *Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	var alert Alert
	err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]Alert, error) {
	q := r.db.WithContext(ctx).Model(&Alert{})

	if filter.Severity != nil {
		q = q.Where("severity = ?", *filter.Severity)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}

	var alerts []Alert
	err := q.Order("detected_at DESC").Find(&alerts).Error
	return alerts, err
}

func (r *gormRepository) ListByActivity(ctx context.Context, activityID uuid.UUID) ([]Alert, error) {
	var alerts []Alert
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("detected_at DESC").
		Find(&alerts).Error
	return alerts, err
}

func (r *gormRepository) Update(ctx context.Context, alert *Alert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}
