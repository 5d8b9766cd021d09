package appeals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows an appeal listing. Nil fields are ignored.
type ListFilter struct {
	ActivityID *uuid.UUID
	StudentID  *uuid.UUID
}

// Repository is the durable appeal store.
type Repository interface {
	Create(ctx context.Context, appeal *Appeal) error
	List(ctx context.Context, filter ListFilter) ([]Appeal, error)
	ResolvePending(ctx context.Context, activityID uuid.UUID, at time.Time) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a GORM-backed appeal repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, appeal *Appeal) error {
	return r.db.WithContext(ctx).Create(appeal).Error
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]Appeal, error) {
	q := r.db.WithContext(ctx).Model(&Appeal{})

	if filter.ActivityID != nil {
		q = q.Where("activity_id = ?", *filter.ActivityID)
	}
	if filter.StudentID != nil {
		q = q.Where("student_id = ?", *filter.StudentID)
	}

	var appeals []Appeal
	err := q.Order("created_at DESC").Find(&appeals).Error
	return appeals, err
}

func (r *gormRepository) ResolvePending(ctx context.Context, activityID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&Appeal{}).
		Where("activity_id = ? AND status = ?", activityID, StatusPending).
		Updates(map[string]interface{}{"status": StatusResolved, "resolved_at": at}).Error
}
