package workflow

import (
	"math"
	"strings"
)

var invalidPhrases = []string{
	"invalid image",
	"not a plant leaf",
	"wrong crop type",
}

const defaultInvalidReason = "One or more images do not show plant leaves"

// Gate classifies a consensus. A sentinel phrase in the consensus label or in
// any individual run label makes it Invalid regardless of confidence.
// Otherwise confidence below ConfidenceThreshold is LowConfidence, and
// anything else is Accepted.
func Gate(c ConsensusPrediction) GateDecision {
	if p, ok := invalidPrediction(c); ok {
		reason := strings.TrimSpace(p.Rationale)
		if reason == "" {
			reason = defaultInvalidReason
		}
		return Invalid(reason, c)
	}

	if math.IsNaN(c.Confidence) || c.Confidence < ConfidenceThreshold {
		return LowConfidence(c.Confidence, ConfidenceThreshold, c)
	}

	return Accepted(c)
}

func invalidPrediction(c ConsensusPrediction) (Prediction, bool) {
	if isInvalidLabel(c.Label) {
		return c.Prediction, true
	}
	for _, r := range c.Runs {
		if r.Prediction != nil && isInvalidLabel(r.Prediction.Label) {
			return *r.Prediction, true
		}
	}
	return Prediction{}, false
}

func isInvalidLabel(label string) bool {
	l := strings.ToLower(label)
	for _, phrase := range invalidPhrases {
		if strings.Contains(l, phrase) {
			return true
		}
	}
	return false
}
