package audit

import (
	"time"

	"github.com/google/uuid"
)

// Actions recorded by the pipeline. One entry is appended per successful
// state-changing call; failed calls produce none.
const (
	ActionActivitySubmitted  = "activity_submitted"
	ActionEvidenceAttached   = "evidence_attached"
	ActionMentorDecision     = "mentor_decision"
	ActionAppealSubmitted    = "appeal_submitted"
	ActionAlertRaised        = "alert_raised"
	ActionAlertResolved      = "alert_resolved"
	ActionAlertEscalated     = "alert_escalated"
	ActionAlertFalsePositive = "alert_false_positive"
)

// Actor identifies who performed a state-changing action.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Entry is one immutable audit record. Entries are never updated or deleted.
type Entry struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ActorID      string    `json:"actor_id" gorm:"index"`
	ActorName    string    `json:"actor_name"`
	Action       string    `json:"action" gorm:"index"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id" gorm:"index"`
	Detail       string    `json:"detail"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

// TableName sets the audit table name.
func (Entry) TableName() string {
	return "audit_entries"
}
