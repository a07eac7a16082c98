package workflow

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/catalog"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/prompts"
)

const (
	// ConfidenceThreshold is the inclusive lower bound for acceptance.
	ConfidenceThreshold = 0.75

	// DefaultRuns is the ensemble size when none is configured.
	DefaultRuns = 3
)

// Classifier performs one vision classification attempt.
type Classifier interface {
	Classify(ctx context.Context, req ClassifyRequest) (*Prediction, error)
	Model() string
}

// Reasoner compares images against a reference and answers chat prompts.
// Each call is self-contained.
type Reasoner interface {
	Compare(ctx context.Context, req ComparisonRequest) (*VerificationVerdict, error)
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// ObjectStore is the read side of image storage used by the pipeline.
type ObjectStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	PublicURL(key string) string
	Download(ctx context.Context, key string) ([]byte, error)
}

// Metrics receives pipeline observations.
type Metrics interface {
	ObserveStage(stage string, d time.Duration)
	ClassifierRun(ok bool)
	GateOutcome(outcome string)
	Verification(status string)
	ChatTurn(ok bool)
}

// Timeouts bounds every external call made by the pipeline.
type Timeouts struct {
	Classifier time.Duration
	Probe      time.Duration
	Download   time.Duration
	Reasoning  time.Duration
	Chat       time.Duration
}

// DefaultTimeouts returns the timeouts used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Classifier: 60 * time.Second,
		Probe:      5 * time.Second,
		Download:   15 * time.Second,
		Reasoning:  90 * time.Second,
		Chat:       60 * time.Second,
	}
}

// Runtime bundles the collaborators the pipeline needs. Reasoner may be nil,
// in which case verification passes through and chat is unavailable.
type Runtime struct {
	Classifier Classifier
	Reasoner   Reasoner
	Store      ObjectStore
	Catalog    *catalog.Catalog
	Prompts    prompts.Source
	Metrics    Metrics
	Logger     *slog.Logger
	Tracer     trace.Tracer
	Timeouts   Timeouts
	Runs       int
	Verify     bool
}

func (rt *Runtime) runs() int {
	if rt.Runs < 1 {
		return DefaultRuns
	}
	return rt.Runs
}

func (rt *Runtime) metrics() Metrics {
	if rt.Metrics == nil {
		return nopMetrics{}
	}
	return rt.Metrics
}

func (rt *Runtime) logger() *slog.Logger {
	if rt.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return rt.Logger
}

func (rt *Runtime) tracer() trace.Tracer {
	if rt.Tracer == nil {
		return otel.Tracer("agrovision/workflow")
	}
	return rt.Tracer
}

func (rt *Runtime) reasonerModel() string {
	if rt.Reasoner == nil {
		return ""
	}
	return rt.Reasoner.Model()
}

type nopMetrics struct{}

func (nopMetrics) ObserveStage(string, time.Duration) {}
func (nopMetrics) ClassifierRun(bool)                 {}
func (nopMetrics) GateOutcome(string)                 {}
func (nopMetrics) Verification(string)                {}
func (nopMetrics) ChatTurn(bool)                      {}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
