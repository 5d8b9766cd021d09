package activities

import (
	"math"
	"math/rand"
)

const (
	gpsBonus  = 15.0
	maxScore  = 99
	baseFloor = 40.0
	baseSpan  = 40.0
)

// BaseScoreFunc supplies the base component of a confidence score. The base
// is injected so scoring stays deterministic under test; production wiring
// uses RandomBase.
type BaseScoreFunc func() float64

// RandomBase draws a base score from [40, 80). Safe for concurrent use.
func RandomBase() float64 {
	return baseFloor + rand.Float64()*baseSpan
}

// FixedBase pins the base score, for deterministic scoring.
func FixedBase(base float64) BaseScoreFunc {
	return func() float64 { return base }
}

// Scorer estimates the authenticity of an activity from its evidence. Score
// is pure apart from the injected base source and is safe to call
// concurrently for any number of activities.
type Scorer struct {
	base BaseScoreFunc
}

// NewScorer creates a scorer with the given base-score source.
func NewScorer(base BaseScoreFunc) *Scorer {
	return &Scorer{base: base}
}

// Score computes a confidence score in [0, 99] for the given evidence:
// base, plus 15 when any record is GPS-verified, plus the average biometric
// match score divided by 5. The average over zero records is 0.
func (s *Scorer) Score(evidence []EvidenceRecord) int {
	total := s.base()

	for _, e := range evidence {
		if e.GPSVerified {
			total += gpsBonus
			break
		}
	}

	if len(evidence) > 0 {
		sum := 0.0
		for _, e := range evidence {
			sum += e.BiometricMatchScore
		}
		total += sum / float64(len(evidence)) / 5
	}

	score := int(math.Round(total))
	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Thresholds holds the auto-classification boundaries. Boundaries are
// inclusive on the lower bound: a score equal to AutoVerify verifies, a
// score equal to AutoReject does not reject.
type Thresholds struct {
	AutoVerify int // score >= AutoVerify auto-verifies
	AutoReject int // score < AutoReject auto-rejects
	Review     int // AutoReject <= score < Review flags mandatory review
}

// DefaultThresholds are the production boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{AutoVerify: 85, AutoReject: 40, Review: 60}
}

// Classify maps a confidence score to its provisional status. Scores between
// Review and AutoVerify stay pending as routine queue items for human review.
func Classify(score int, t Thresholds) VerificationStatus {
	switch {
	case score >= t.AutoVerify:
		return StatusVerified
	case score < t.AutoReject:
		return StatusRejected
	case score < t.Review:
		return StatusUnderReview
	default:
		return StatusPending
	}
}
