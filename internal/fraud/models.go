package fraud

import (
	"time"

	"github.com/google/uuid"
)

type AlertType string

const (
	TypeGPSMismatch       AlertType = "gps_mismatch"
	TypeDuplicateDocument AlertType = "duplicate_document"
	TypeLowBiometric      AlertType = "low_biometric"
	TypeSuspiciousPattern AlertType = "suspicious_pattern"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type AlertStatus string

const (
	StatusOpen          AlertStatus = "open"
	StatusInvestigating AlertStatus = "investigating"
	StatusResolved      AlertStatus = "resolved"
	StatusFalsePositive AlertStatus = "false_positive"
)

// Alert is one materialized fraud case for an activity. Its status is
// tracked independently of the activity's own verification status.
type Alert struct {
	ID              uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	ActivityID      uuid.UUID   `json:"activity_id" gorm:"type:uuid;index"`
	StudentID       uuid.UUID   `json:"student_id" gorm:"type:uuid;index"`
	Type            AlertType   `json:"type"`
	Severity        Severity    `json:"severity" gorm:"index"`
	Description     string      `json:"description"`
	Status          AlertStatus `json:"status" gorm:"index"`
	DetectedAt      time.Time   `json:"detected_at"`
	ResolvedBy      *string     `json:"resolved_by,omitempty"`
	ResolutionNotes *string     `json:"resolution_notes,omitempty"`
	ResolvedAt      *time.Time  `json:"resolved_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TableName sets the alert table name.
func (Alert) TableName() string {
	return "fraud_alerts"
}
