package workflows

// StateMachine enforces verification status transitions
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewVerificationStateMachine creates the state machine for the activity
// verification lifecycle. Self-transitions are listed where a re-decision may
// leave the status unchanged (auto-classification keeping "pending", a mentor
// keeping an activity in review).
func NewVerificationStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"pending":      {"pending", "under_review", "verified", "rejected"},
			"under_review": {"under_review", "verified", "rejected"},
			"verified":     {"under_review"}, // appeal re-entry only
			"rejected":     {"under_review"}, // appeal re-entry only
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}

// IsTerminal reports whether a status ends the lifecycle absent an appeal.
func (sm *StateMachine) IsTerminal(status string) bool {
	return status == "verified" || status == "rejected"
}
