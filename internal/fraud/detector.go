package fraud

import (
	"fmt"

	"edutrust/student-portal/student-portal-backend/internal/activities"
)

// Biometric match scores below this floor on the primary document flag the
// activity.
const lowBiometricFloor = 60.0

// duplicateFlagKey is the additional_proof key set by the upstream document
// dedup check.
const duplicateFlagKey = "duplicate_flag"

// Signal is one typed, severity-ranked fraud suspicion.
type Signal struct {
	Type        AlertType
	Severity    Severity
	Description string
}

// Detect derives the fraud signal for an activity, or nil when none of the
// flag conditions hold. It is pure and safe for concurrent use, and runs over
// every activity regardless of its verification status.
//
// Only the first evidence record's GPS and biometric values are considered;
// the primary document is the certificate itself, later uploads are
// supporting material. An activity with no evidence counts as GPS-unverified.
//
// Signal type is assigned by first-match precedence: duplicate document, then
// GPS mismatch, then low biometric, then the low-confidence catch-all.
func Detect(activity *activities.Activity, lowConfidence int) *Signal {
	duplicate := truthy(activity.AdditionalProof[duplicateFlagKey])

	gpsVerified := false
	biometric := 0.0
	if len(activity.Evidence) > 0 {
		gpsVerified = activity.Evidence[0].GPSVerified
		biometric = activity.Evidence[0].BiometricMatchScore
	}

	flagged := duplicate ||
		!gpsVerified ||
		biometric < lowBiometricFloor ||
		activity.Verification.AIConfidenceScore < lowConfidence
	if !flagged {
		return nil
	}

	switch {
	case duplicate:
		return &Signal{
			Type:        TypeDuplicateDocument,
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("document for %q matches a previously submitted certificate", activity.Title),
		}
	case !gpsVerified:
		return &Signal{
			Type:        TypeGPSMismatch,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("primary document GPS does not match the claimed location %q", activity.Location),
		}
	case biometric < lowBiometricFloor:
		return &Signal{
			Type:        TypeLowBiometric,
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("primary document biometric match is %.0f%%, below the %.0f%% floor", biometric, lowBiometricFloor),
		}
	default:
		return &Signal{
			Type:        TypeSuspiciousPattern,
			Severity:    SeverityMedium,
			Description: fmt.Sprintf("confidence score %d is below the review floor of %d", activity.Verification.AIConfidenceScore, lowConfidence),
		}
	}
}

// truthy interprets an open additional_proof value the way the upstream
// checks write it: booleans, numbers and strings all appear in practice.
func truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != "" && v != "false" && v != "0"
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return true
	}
}
