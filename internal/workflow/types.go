package workflow

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Image is one photograph passed to a gateway. Data is populated only when
// the bytes have been loaded; gateways that need pixels use it in preference
// to URL.
type Image struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// Prediction is the output of a single classifier call.
type Prediction struct {
	Label        string  `json:"label"`
	Confidence   float64 `json:"confidence"`
	Observations string  `json:"observations"`
	Rationale    string  `json:"rationale"`
}

// RunResult records one ensemble attempt. Exactly one of Prediction and
// Error is set.
type RunResult struct {
	Run        int         `json:"run"`
	Prediction *Prediction `json:"prediction,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// ConsensusPrediction is the majority-vote result over the successful runs.
type ConsensusPrediction struct {
	Prediction
	VoteCount      int         `json:"vote_count"`
	TotalRuns      int         `json:"total_runs"`
	SuccessfulRuns int         `json:"successful_runs"`
	AllLabels      []string    `json:"all_labels"`
	Runs           []RunResult `json:"runs"`
	Boosted        bool        `json:"boosted"`
}

// Votes renders the tally as "winning/requested", for example "3/3".
func (c ConsensusPrediction) Votes() string {
	return fmt.Sprintf("%d/%d", c.VoteCount, c.TotalRuns)
}

// Outcome is the gate classification of a consensus.
type Outcome string

const (
	OutcomeInvalid       Outcome = "invalid"
	OutcomeLowConfidence Outcome = "low_confidence"
	OutcomeAccepted      Outcome = "accepted"
)

// GateDecision is the terminal classification of a consensus. Reason is set
// for invalid decisions; Confidence and Threshold for low-confidence ones.
// Consensus is always carried.
type GateDecision struct {
	Outcome    Outcome             `json:"outcome"`
	Reason     string              `json:"reason,omitempty"`
	Confidence float64             `json:"confidence"`
	Threshold  float64             `json:"threshold"`
	Consensus  ConsensusPrediction `json:"consensus"`
}

func Invalid(reason string, c ConsensusPrediction) GateDecision {
	return GateDecision{
		Outcome:    OutcomeInvalid,
		Reason:     reason,
		Confidence: c.Confidence,
		Threshold:  ConfidenceThreshold,
		Consensus:  c,
	}
}

func LowConfidence(confidence, threshold float64, c ConsensusPrediction) GateDecision {
	return GateDecision{
		Outcome:    OutcomeLowConfidence,
		Confidence: confidence,
		Threshold:  threshold,
		Consensus:  c,
	}
}

func Accepted(c ConsensusPrediction) GateDecision {
	return GateDecision{
		Outcome:    OutcomeAccepted,
		Confidence: c.Confidence,
		Threshold:  ConfidenceThreshold,
		Consensus:  c,
	}
}

func (d GateDecision) IsAccepted() bool {
	return d.Outcome == OutcomeAccepted
}

// ReferenceLocator points at a reference image. Found is true only when an
// existence probe of Key succeeded. Unverified marks a fallback locator built
// because every probe errored; it is never Found.
type ReferenceLocator struct {
	Found      bool     `json:"found"`
	URL        string   `json:"url,omitempty"`
	Key        string   `json:"key,omitempty"`
	Unverified bool     `json:"unverified,omitempty"`
	Attempted  []string `json:"attempted,omitempty"`
}

// VerificationStatus records how a verdict was produced.
type VerificationStatus string

const (
	StatusConfirmed  VerificationStatus = "confirmed"
	StatusRejected   VerificationStatus = "rejected"
	StatusUnverified VerificationStatus = "unverified"
	StatusFailed     VerificationStatus = "failed"
	StatusSkipped    VerificationStatus = "skipped"
)

// VerificationVerdict is the outcome of comparing a submission against its
// reference image.
type VerificationVerdict struct {
	IsMatch          bool               `json:"is_match"`
	Confidence       float64            `json:"confidence"`
	Reasoning        string             `json:"reasoning"`
	Similarities     []string           `json:"key_similarities"`
	Differences      []string           `json:"key_differences"`
	AlternativeLabel string             `json:"alternative_diagnosis,omitempty"`
	Verdict          string             `json:"verdict"`
	Status           VerificationStatus `json:"status"`
}

// TreatmentPlan lists recommended actions.
type TreatmentPlan struct {
	Immediate  []string `json:"immediate"`
	Preventive []string `json:"preventive"`
	Products   []string `json:"products"`
}

// ConsensusSummary is the persisted view of a consensus without its runs.
type ConsensusSummary struct {
	Label          string   `json:"label"`
	Confidence     float64  `json:"confidence"`
	Observations   string   `json:"observations"`
	Rationale      string   `json:"rationale"`
	Votes          string   `json:"votes"`
	SuccessfulRuns int      `json:"successful_runs"`
	AllLabels      []string `json:"all_labels"`
	Boosted        bool     `json:"boosted"`
}

// Models names the gateway models that produced a diagnosis.
type Models struct {
	Classifier string `json:"classifier"`
	Reasoner   string `json:"reasoner,omitempty"`
}

// DiagnosisLog is the full provenance of a diagnosis.
type DiagnosisLog struct {
	Outcome      Outcome              `json:"outcome"`
	Reason       string               `json:"reason,omitempty"`
	Threshold    float64              `json:"threshold"`
	Consensus    ConsensusSummary     `json:"consensus"`
	Runs         []RunResult          `json:"runs"`
	Reference    *ReferenceLocator    `json:"reference,omitempty"`
	Verification *VerificationVerdict `json:"verification,omitempty"`
	Weather      string               `json:"weather_context"`
	Models       Models               `json:"models"`
}

// FinalResult is the presentation-facing diagnosis.
type FinalResult struct {
	DiseaseName        string             `json:"disease_name"`
	ConfidenceScore    float64            `json:"confidence_score"`
	Severity           string             `json:"severity"`
	TreatmentPlan      *TreatmentPlan     `json:"treatment_plan"`
	Verified           bool               `json:"verified"`
	VerificationStatus VerificationStatus `json:"verification_status,omitempty"`
	Message            string             `json:"message,omitempty"`
}

// Record is the diagnosis portion of a consultation.
type Record struct {
	Log    DiagnosisLog `json:"diagnosis_log"`
	Result FinalResult  `json:"final_result"`
}

// Role identifies the author of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one message in a consultation conversation.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ClassifyRequest is the input to a single classifier call. Prompt holds the
// composed system instructions.
type ClassifyRequest struct {
	Images []Image
	Crop   string
	Prompt string
}

// ComparisonRequest is the input to a verification call. Images are the
// farmer's photographs in order; Reference is sent last.
type ComparisonRequest struct {
	Images    []Image
	Reference Image
	Prompt    string
}

// Submission is the input to Execute.
type Submission struct {
	SessionID     string
	Images        []Image
	Crop          string
	Weather       string
	TreatmentPlan *TreatmentPlan
}

// Result is the output of Execute.
type Result struct {
	Decision    GateDecision        `json:"decision"`
	Reference   ReferenceLocator    `json:"reference"`
	Verdict     VerificationVerdict `json:"verdict"`
	Record      Record              `json:"record"`
	CompletedAt time.Time           `json:"completed_at"`
}

// MIMETypeFor infers an image content type from the extension of key.
// Anything other than PNG or WebP is treated as JPEG.
func MIMETypeFor(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
