package workflow

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Execute drives one submission through the pipeline:
// aggregate, gate, then for accepted diagnoses resolve and verify, and
// finally build the record. Only ErrClassifierUnavailable is returned as an
// error; every later failure is folded into the record.
func Execute(ctx context.Context, rt *Runtime, sub Submission) (*Result, error) {
	ctx, span := rt.tracer().Start(ctx, "consultation.pipeline", trace.WithAttributes(
		attribute.String("session_id", sub.SessionID),
		attribute.String("crop", sub.Crop),
		attribute.Int("images", len(sub.Images)),
	))
	defer span.End()

	scoped := *rt
	scoped.Logger = rt.logger().With("session_id", sub.SessionID)
	rt = &scoped

	var consensus *ConsensusPrediction
	err := runStage(ctx, rt, "aggregate", func(ctx context.Context) error {
		var err error
		consensus, err = Aggregate(ctx, rt, sub.Images, sub.Crop, rt.runs())
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "classifier unavailable")
		return nil, err
	}

	decision := Gate(*consensus)
	rt.metrics().GateOutcome(string(decision.Outcome))
	span.SetAttributes(
		attribute.String("outcome", string(decision.Outcome)),
		attribute.String("votes", consensus.Votes()),
	)
	rt.logger().InfoContext(ctx, "gate decision",
		"outcome", decision.Outcome,
		"label", consensus.Label,
		"confidence", consensus.Confidence,
		"votes", consensus.Votes(),
	)

	var (
		ref     ReferenceLocator
		verdict VerificationVerdict
	)

	if decision.IsAccepted() {
		runStage(ctx, rt, "resolve", func(ctx context.Context) error {
			ref = Resolve(ctx, rt, consensus.Label)
			return nil
		})

		runStage(ctx, rt, "verify", func(ctx context.Context) error {
			verdict = Verify(ctx, rt, VerifyInput{
				Images:     sub.Images,
				Reference:  ref,
				Label:      consensus.Label,
				Crop:       sub.Crop,
				Weather:    sub.Weather,
				Confidence: consensus.Confidence,
			})
			return nil
		})

		rt.metrics().Verification(string(verdict.Status))
		span.SetAttributes(
			attribute.Bool("reference_found", ref.Found),
			attribute.String("verification", string(verdict.Status)),
		)
	}

	record := BuildRecord(RecordInput{
		Decision:      decision,
		Reference:     ref,
		Verdict:       verdict,
		TreatmentPlan: sub.TreatmentPlan,
		Weather:       sub.Weather,
		Models: Models{
			Classifier: rt.Classifier.Model(),
			Reasoner:   rt.reasonerModel(),
		},
	})

	return &Result{
		Decision:    decision,
		Reference:   ref,
		Verdict:     verdict,
		Record:      record,
		CompletedAt: time.Now().UTC(),
	}, nil
}

func runStage(ctx context.Context, rt *Runtime, name string, fn func(context.Context) error) error {
	ctx, span := rt.tracer().Start(ctx, "consultation."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	rt.metrics().ObserveStage(name, elapsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		rt.logger().ErrorContext(ctx, "pipeline stage failed", "stage", name, "duration", elapsed, "error", err)
		return fmt.Errorf("%s: %w", name, err)
	}

	rt.logger().InfoContext(ctx, "pipeline stage complete", "stage", name, "duration", elapsed)
	return nil
}
