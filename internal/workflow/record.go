package workflow

const (
	SeverityModerate     = "moderate"
	SeverityUndetermined = "Unable to determine"

	LabelLowConfidence = "Low Confidence - Need Clearer Images"
	LabelInvalid       = "Invalid Image - Upload Clear Leaf Photos"

	MessageLowConfidence = "Image quality or symptoms unclear. Please upload higher quality images with better lighting."
	MessageInvalid       = "Invalid images detected. Please upload only clear photos of plant leaves."
)

// RecordInput gathers the stage outputs for one submission. Reference and
// Verdict are ignored unless the decision is accepted. TreatmentPlan, when
// set, replaces the placeholder plan.
type RecordInput struct {
	Decision      GateDecision
	Reference     ReferenceLocator
	Verdict       VerificationVerdict
	TreatmentPlan *TreatmentPlan
	Weather       string
	Models        Models
}

// PlaceholderPlan is the generic plan attached to accepted diagnoses when no
// richer plan is supplied.
func PlaceholderPlan() *TreatmentPlan {
	return &TreatmentPlan{
		Immediate:  []string{"Consult local agricultural extension officer for confirmation"},
		Preventive: []string{"Monitor crop regularly", "Maintain proper plant hygiene"},
		Products:   []string{},
	}
}

// BuildRecord assembles the diagnosis log and final result. Rejected
// decisions carry a sentinel label, an undetermined severity, and no plan.
func BuildRecord(in RecordInput) Record {
	d := in.Decision
	c := d.Consensus

	log := DiagnosisLog{
		Outcome:   d.Outcome,
		Reason:    d.Reason,
		Threshold: d.Threshold,
		Consensus: ConsensusSummary{
			Label:          c.Label,
			Confidence:     c.Confidence,
			Observations:   c.Observations,
			Rationale:      c.Rationale,
			Votes:          c.Votes(),
			SuccessfulRuns: c.SuccessfulRuns,
			AllLabels:      c.AllLabels,
			Boosted:        c.Boosted,
		},
		Runs:    c.Runs,
		Weather: in.Weather,
		Models:  in.Models,
	}

	switch d.Outcome {
	case OutcomeAccepted:
		ref := in.Reference
		verdict := in.Verdict
		log.Reference = &ref
		log.Verification = &verdict

		plan := in.TreatmentPlan
		if plan == nil {
			plan = PlaceholderPlan()
		}

		return Record{
			Log: log,
			Result: FinalResult{
				DiseaseName:        c.Label,
				ConfidenceScore:    c.Confidence,
				Severity:           SeverityModerate,
				TreatmentPlan:      plan,
				Verified:           verdict.Status == StatusConfirmed,
				VerificationStatus: verdict.Status,
			},
		}

	case OutcomeLowConfidence:
		return Record{
			Log: log,
			Result: FinalResult{
				DiseaseName:     LabelLowConfidence,
				ConfidenceScore: d.Confidence,
				Severity:        SeverityUndetermined,
				Message:         MessageLowConfidence,
			},
		}

	default:
		return Record{
			Log: log,
			Result: FinalResult{
				DiseaseName:     LabelInvalid,
				ConfidenceScore: 0,
				Severity:        SeverityUndetermined,
				Message:         MessageInvalid + " " + d.Reason,
			},
		}
	}
}
