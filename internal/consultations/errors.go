package consultations

import (
	"errors"
	"math"
	"net/http"

	"github.com/google/uuid"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/catalog"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/workflow"
)

var (
	ErrNotFound          = errors.New("consultation not found")
	ErrDuplicate         = errors.New("consultation already exists")
	ErrInvalidSession    = errors.New("invalid session id")
	ErrInvalidSubmission = errors.New("invalid submission")
	ErrUploadTooLarge    = errors.New("upload exceeds maximum size")
	ErrInvalidImage      = errors.New("invalid image")
	ErrLowConfidence     = errors.New("low confidence")
)

const (
	suggestionInvalid       = "Please upload 1-3 clear, well-lit photos of the affected leaves of the selected crop."
	suggestionLowConfidence = "Take photos in natural daylight, fill the frame with the affected leaf, and avoid blur."
)

// RejectionError reports a submission the gate refused. The consultation is
// still persisted under SessionID. Unwrap yields ErrInvalidImage or
// ErrLowConfidence.
type RejectionError struct {
	Kind       error
	SessionID  uuid.UUID
	Message    string
	Reasoning  string
	Confidence float64
	Threshold  float64
}

func (e *RejectionError) Error() string {
	return e.Kind.Error() + ": " + e.Message
}

func (e *RejectionError) Unwrap() error {
	return e.Kind
}

// RejectionPayload is the 422 response body for a rejected submission.
type RejectionPayload struct {
	Error             string    `json:"error"`
	Message           string    `json:"message"`
	Reasoning         string    `json:"reasoning,omitempty"`
	Confidence        *float64  `json:"confidence,omitempty"`
	ConfidencePercent *float64  `json:"confidence_percent,omitempty"`
	Threshold         *float64  `json:"threshold,omitempty"`
	Suggestion        string    `json:"suggestion"`
	SessionID         uuid.UUID `json:"session_id"`
}

// Payload renders e for the client.
func (e *RejectionError) Payload() RejectionPayload {
	if errors.Is(e.Kind, ErrInvalidImage) {
		return RejectionPayload{
			Error:      "invalid_image",
			Message:    e.Message,
			Reasoning:  e.Reasoning,
			Suggestion: suggestionInvalid,
			SessionID:  e.SessionID,
		}
	}

	confidence := e.Confidence
	percent := math.Round(e.Confidence*1000) / 10
	threshold := e.Threshold
	return RejectionPayload{
		Error:             "low_confidence",
		Message:           e.Message,
		Confidence:        &confidence,
		ConfidencePercent: &percent,
		Threshold:         &threshold,
		Suggestion:        suggestionLowConfidence,
		SessionID:         e.SessionID,
	}
}

func rejection(id uuid.UUID, d workflow.GateDecision, result workflow.FinalResult) *RejectionError {
	if d.Outcome == workflow.OutcomeInvalid {
		return &RejectionError{
			Kind:      ErrInvalidImage,
			SessionID: id,
			Message:   result.Message,
			Reasoning: d.Reason,
		}
	}
	return &RejectionError{
		Kind:       ErrLowConfidence,
		SessionID:  id,
		Message:    result.Message,
		Reasoning:  d.Consensus.Rationale,
		Confidence: d.Confidence,
		Threshold:  d.Threshold,
	}
}

// MapHTTPStatus maps consultation and pipeline errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidSession),
		errors.Is(err, ErrInvalidSubmission),
		errors.Is(err, catalog.ErrUnknownCrop):
		return http.StatusBadRequest
	case errors.Is(err, ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidImage), errors.Is(err, ErrLowConfidence):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workflow.ErrClassifierUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, workflow.ErrChatUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
