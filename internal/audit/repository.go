package audit

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// QueryFilter narrows an audit query. Zero-valued fields are ignored.
type QueryFilter struct {
	ActorID string
	Action  string
	From    *time.Time
	To      *time.Time
	Limit   int
}

// Repository is the append-only audit store. There is deliberately no update
// or delete operation.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	Query(ctx context.Context, filter QueryFilter) ([]Entry, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a GORM-backed audit repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Append(ctx context.Context, entry *Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *gormRepository) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	q := r.db.WithContext(ctx).Model(&Entry{})

	if filter.ActorID != "" {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var entries []Entry
	err := q.Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
