package activities

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows an activity listing. Nil fields are ignored.
type ListFilter struct {
	StudentID *uuid.UUID
	Status    *VerificationStatus
	Type      *ActivityType
}

// Repository is the durable activity store. GetByID returns (nil, nil) when
// no activity exists for the id.
type Repository interface {
	Create(ctx context.Context, activity *Activity) error
	GetByID(ctx context.Context, id uuid.UUID) (*Activity, error)
	List(ctx context.Context, filter ListFilter) ([]Activity, error)
	Update(ctx context.Context, activity *Activity) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a GORM-backed activity repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, activity *Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Activity, error) {
	var activity Activity
	err := r.db.WithContext(ctx).First(&activity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]Activity, error) {
	q := r.db.WithContext(ctx).Model(&Activity{})

	if filter.StudentID != nil {
		q = q.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != nil {
		q = q.Where("verification_status = ?", *filter.Status)
	}
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}

	var result []Activity
	err := q.Order("created_at DESC").Find(&result).Error
	return result, err
}

func (r *gormRepository) Update(ctx context.Context, activity *Activity) error {
	return r.db.WithContext(ctx).Save(activity).Error
}
