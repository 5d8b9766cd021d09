package activities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ActivityType string

const (
	TypeInternshipCertificate    ActivityType = "internship_certificate"
	TypeParticipationCertificate ActivityType = "participation_certificate"
	TypeSkillCertificate         ActivityType = "skill_certificate"
	TypeProjectCompletion        ActivityType = "project_completion"
	TypeSocialWork               ActivityType = "social_work"
)

// ValidType reports whether t is a known activity type.
func ValidType(t ActivityType) bool {
	switch t {
	case TypeInternshipCertificate, TypeParticipationCertificate,
		TypeSkillCertificate, TypeProjectCompletion, TypeSocialWork:
		return true
	}
	return false
}

type VerificationStatus string

const (
	StatusPending     VerificationStatus = "pending"
	StatusUnderReview VerificationStatus = "under_review"
	StatusVerified    VerificationStatus = "verified"
	StatusRejected    VerificationStatus = "rejected"
)

// GPSCoordinate is a raw coordinate pair attached to an evidence record.
type GPSCoordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// EvidenceRecord is one uploaded artifact plus its externally derived
// verification signals. Records are immutable once attached to an activity;
// slice order is upload order.
type EvidenceRecord struct {
	Filename            string         `json:"filename"`
	GPS                 *GPSCoordinate `json:"gps,omitempty"`
	GPSVerified         bool           `json:"gps_verified"`
	BiometricMatchScore float64        `json:"biometric_match_score"`
	ExtractedText       string         `json:"extracted_text,omitempty"`
}

// VerificationState is the mutable sub-record owned exclusively by the
// verification state machine.
type VerificationState struct {
	AIConfidenceScore int                `json:"ai_confidence_score"`
	Status            VerificationStatus `json:"status"`
	MentorID          *uuid.UUID         `json:"mentor_id,omitempty" gorm:"type:uuid"`
	MentorComments    string             `json:"mentor_comments"`
	CommentHistory    []string           `json:"comment_history,omitempty" gorm:"serializer:json"`
	VerificationDate  *time.Time         `json:"verification_date"`
}

// Activity is one submitted claim of participation or achievement. Activities
// are created in "pending" and are only ever mutated through state-machine
// transitions, never deleted.
type Activity struct {
	ID              uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	StudentID       uuid.UUID         `json:"student_id" gorm:"type:uuid;index"`
	Type            ActivityType      `json:"type" gorm:"index"`
	Title           string            `json:"title"`
	Organization    string            `json:"organization"`
	Date            time.Time         `json:"date"`
	Location        string            `json:"location"`
	Description     string            `json:"description"`
	Evidence        []EvidenceRecord  `json:"evidence" gorm:"serializer:json"`
	Verification    VerificationState `json:"verification" gorm:"embedded;embeddedPrefix:verification_"`
	AdditionalProof datatypes.JSONMap `json:"additional_proof,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
