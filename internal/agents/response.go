package agents

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/workflow"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/formatting"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// text accepts either a JSON string or a list of strings. Vision models
// sometimes return symptom lists where a sentence was requested.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = text(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*t = text(strings.Join(list, "; "))
	return nil
}

type predictionResponse struct {
	DiseaseName          string  `json:"disease_name" validate:"required"`
	Confidence           float64 `json:"confidence" validate:"gte=0,lte=100"`
	VisualSymptoms       text    `json:"visual_symptoms"`
	PreliminaryReasoning text    `json:"preliminary_reasoning"`
}

type verdictResponse struct {
	IsMatch              *bool    `json:"is_match" validate:"required"`
	Reasoning            string   `json:"reasoning" validate:"required"`
	Confidence           float64  `json:"confidence" validate:"gte=0,lte=100"`
	KeySimilarities      []string `json:"key_similarities"`
	KeyDifferences       []string `json:"key_differences"`
	AlternativeDiagnosis string   `json:"alternative_diagnosis"`
}

// ParsePrediction decodes and validates classifier output.
func ParsePrediction(content string) (*workflow.Prediction, error) {
	r, err := formatting.Parse[predictionResponse](content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}

	r.DiseaseName = strings.TrimSpace(r.DiseaseName)
	if err := validate.Struct(r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}

	return &workflow.Prediction{
		Label:        r.DiseaseName,
		Confidence:   unitInterval(r.Confidence),
		Observations: strings.TrimSpace(string(r.VisualSymptoms)),
		Rationale:    strings.TrimSpace(string(r.PreliminaryReasoning)),
	}, nil
}

// ParseVerdict decodes and validates verifier output. is_match decides the
// verdict. The model's free-text verdict label is ignored.
func ParseVerdict(content string) (*workflow.VerificationVerdict, error) {
	r, err := formatting.Parse[verdictResponse](content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}

	if err := validate.Struct(r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}

	v := &workflow.VerificationVerdict{
		IsMatch:      *r.IsMatch,
		Confidence:   unitInterval(r.Confidence),
		Reasoning:    strings.TrimSpace(r.Reasoning),
		Similarities: r.KeySimilarities,
		Differences:  r.KeyDifferences,
		Verdict:      workflow.VerdictRejected,
	}
	if v.IsMatch {
		v.Verdict = workflow.VerdictConfirmed
	}

	if alt := strings.TrimSpace(r.AlternativeDiagnosis); alt != "" && !strings.EqualFold(alt, "unknown") {
		v.AlternativeLabel = alt
	}

	return v, nil
}

// unitInterval maps a confidence onto [0,1]. Values above 1 are read as
// percentages.
func unitInterval(c float64) float64 {
	if math.IsNaN(c) {
		return 0
	}
	if c > 1 {
		c /= 100
	}
	return min(max(c, 0), 1)
}
