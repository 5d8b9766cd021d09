package appeals

import (
	"time"

	"github.com/google/uuid"

	"edutrust/student-portal/student-portal-backend/internal/activities"
)

type AppealStatus string

const (
	StatusPending  AppealStatus = "pending"
	StatusResolved AppealStatus = "resolved"
)

// Appeal is one student-initiated request to reopen a terminal verification
// decision. Its status is a view into the activity's state-machine re-entry:
// pending while the reopened activity sits in review, resolved once a mentor
// renders the new decision.
type Appeal struct {
	ID         uuid.UUID                    `json:"id" gorm:"type:uuid;primaryKey"`
	ActivityID uuid.UUID                    `json:"activity_id" gorm:"type:uuid;index"`
	StudentID  uuid.UUID                    `json:"student_id" gorm:"type:uuid;index"`
	Message    string                       `json:"message"`
	Evidence   []activities.EvidenceRecord  `json:"evidence,omitempty" gorm:"serializer:json"`
	Status     AppealStatus                 `json:"status" gorm:"index"`
	CreatedAt  time.Time                    `json:"created_at"`
	ResolvedAt *time.Time                   `json:"resolved_at,omitempty"`
}
