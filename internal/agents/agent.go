// Package agents adapts hosted model APIs to the pipeline's classifier and
// reasoner contracts. One Agent wraps one provider backend and serves
// classification, reference comparison, and free-text generation.
package agents

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/encoding"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/workflow"
)

type request struct {
	System string
	Text   string
	Images []workflow.Image
	JSON   bool
}

type backend interface {
	complete(ctx context.Context, req request) (string, error)
}

// Agent is a rate-limited, traced client for one configured model.
type Agent struct {
	backend  backend
	provider string
	model    string
	limiter  *rate.Limiter
	tracer   trace.Tracer
	logger   *slog.Logger
}

// New builds the backend named by cfg.Provider. It returns ErrDisabled when
// the provider is "none".
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (*Agent, error) {
	var (
		b   backend
		err error
	)

	switch cfg.Provider {
	case ProviderOpenAI:
		b = newOpenAI(cfg)
	case ProviderGemini:
		b, err = newGemini(ctx, cfg)
	case ProviderAnthropic:
		b = newAnthropic(cfg)
	case ProviderNone:
		return nil, ErrDisabled
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.Provider, err)
	}

	a := &Agent{
		backend:  b,
		provider: cfg.Provider,
		model:    cfg.Model,
		tracer:   otel.Tracer("agrovision/agents"),
		logger:   logger.With("system", "agents", "provider", cfg.Provider, "model", cfg.Model),
	}
	if cfg.RateLimit > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))
	}

	return a, nil
}

func (a *Agent) Model() string {
	return a.model
}

// Classify sends the farmer's photos with the composed classify prompt and
// decodes a single prediction.
func (a *Agent) Classify(ctx context.Context, req workflow.ClassifyRequest) (*workflow.Prediction, error) {
	out, err := a.call(ctx, "classify", request{
		System: req.Prompt,
		Text:   fmt.Sprintf("Analyze these %s plant images for diseases:", req.Crop),
		Images: req.Images,
		JSON:   true,
	})
	if err != nil {
		return nil, err
	}
	return ParsePrediction(out)
}

// Compare sends the farmer's photos followed by the reference image.
func (a *Agent) Compare(ctx context.Context, req workflow.ComparisonRequest) (*workflow.VerificationVerdict, error) {
	images := append(slices.Clone(req.Images), req.Reference)

	out, err := a.call(ctx, "compare", request{
		System: req.Prompt,
		Text: fmt.Sprintf(
			"Images 1 to %d are the farmer's photos. Image %d is the reference. Compare them now.",
			len(req.Images), len(images),
		),
		Images: images,
		JSON:   true,
	})
	if err != nil {
		return nil, err
	}
	return ParseVerdict(out)
}

// Generate answers a self-contained text prompt.
func (a *Agent) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := a.call(ctx, "generate", request{Text: prompt})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (a *Agent) call(ctx context.Context, op string, req request) (string, error) {
	ctx, span := a.tracer.Start(ctx, "agents."+op, trace.WithAttributes(
		attribute.String("provider", a.provider),
		attribute.String("model", a.model),
		attribute.Int("images", len(req.Images)),
	))
	defer span.End()

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			span.RecordError(err)
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	start := time.Now()
	out, err := a.backend.complete(ctx, req)
	if err == nil && strings.TrimSpace(out) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.WarnContext(ctx, "model call failed", "op", op, "duration", time.Since(start), "error", err)
		return "", err
	}

	a.logger.DebugContext(ctx, "model call complete", "op", op, "duration", time.Since(start), "chars", len(out))
	return out, nil
}

func mimeType(img workflow.Image) string {
	if img.MIMEType != "" {
		return img.MIMEType
	}
	return workflow.MIMETypeFor(img.Key)
}

const mimeWebP = "image/webp"

// dataURI inlines img for providers that take image URLs. WebP has no
// document.ImageFormat and is encoded directly.
func dataURI(img workflow.Image) (string, error) {
	mime := mimeType(img)
	if mime == mimeWebP {
		return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data), nil
	}

	format, err := document.ParseImageFormat(strings.TrimPrefix(mime, "image/"))
	if err != nil {
		return "", fmt.Errorf("%s: %w", img.Key, err)
	}
	return encoding.EncodeImageDataURI(img.Data, format)
}
