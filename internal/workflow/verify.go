package workflow

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/prompts"
)

const (
	VerdictConfirmed   = "CONFIRMED"
	VerdictRejected    = "REJECTED"
	VerdictPassThrough = "ACCEPTED - Without Verification"
	VerdictUnverified  = "UNVERIFIED - Reference Unavailable"
	VerdictFailed      = "REJECTED - Verification Failed"

	passThroughReasoning = "Diagnosis accepted from ensemble screening; reference verification is disabled."
	unverifiedReasoning  = "No reference image is available for this diagnosis, so it could not be verified."
)

// VerifyInput carries everything the verifier needs for one diagnosis.
type VerifyInput struct {
	Images     []Image
	Reference  ReferenceLocator
	Label      string
	Crop       string
	Weather    string
	Confidence float64
}

// PassThrough is the verdict used when verification is disabled.
func PassThrough(confidence float64) VerificationVerdict {
	return VerificationVerdict{
		IsMatch:      true,
		Confidence:   confidence,
		Reasoning:    passThroughReasoning,
		Similarities: []string{},
		Differences:  []string{},
		Verdict:      VerdictPassThrough,
		Status:       StatusSkipped,
	}
}

// Verify compares the submission against its reference through the
// reasoner. It never returns an error: a missing reference yields an
// unverified verdict and any download, prompt, or gateway failure yields a
// failed verdict with IsMatch false. The gateway's decision is taken as is.
func Verify(ctx context.Context, rt *Runtime, in VerifyInput) VerificationVerdict {
	if !rt.Verify || rt.Reasoner == nil {
		return PassThrough(in.Confidence)
	}

	if !in.Reference.Found {
		return VerificationVerdict{
			Reasoning:    unverifiedReasoning,
			Similarities: []string{},
			Differences:  []string{},
			Verdict:      VerdictUnverified,
			Status:       StatusUnverified,
		}
	}

	images, reference, err := loadImages(ctx, rt, in.Images, in.Reference)
	if err != nil {
		rt.logger().WarnContext(ctx, "verification download failed", "error", err)
		return failed(err.Error())
	}

	prompt, err := ComposePrompt(
		ctx, rt.Prompts, prompts.StageVerify,
		verifyContext(in.Label, in.Crop, in.Weather, len(images)),
	)
	if err != nil {
		return failed(fmt.Sprintf("verification prompt unavailable: %v", err))
	}

	rctx, cancel := withTimeout(ctx, rt.Timeouts.Reasoning)
	defer cancel()

	v, err := rt.Reasoner.Compare(rctx, ComparisonRequest{
		Images:    images,
		Reference: reference,
		Prompt:    prompt,
	})
	if err != nil {
		rt.logger().WarnContext(ctx, "verification call failed", "error", err)
		return failed(fmt.Sprintf("verification call failed: %v", err))
	}
	if v == nil {
		return failed("verification returned no verdict")
	}

	return normalize(*v)
}

func normalize(v VerificationVerdict) VerificationVerdict {
	if v.IsMatch {
		v.Status = StatusConfirmed
		if v.Verdict == "" {
			v.Verdict = VerdictConfirmed
		}
	} else {
		v.Status = StatusRejected
		if v.Verdict == "" {
			v.Verdict = VerdictRejected
		}
	}
	if v.Similarities == nil {
		v.Similarities = []string{}
	}
	if v.Differences == nil {
		v.Differences = []string{}
	}
	return v
}

func failed(reason string) VerificationVerdict {
	return VerificationVerdict{
		Reasoning:    reason,
		Similarities: []string{},
		Differences:  []string{},
		Verdict:      VerdictFailed,
		Status:       StatusFailed,
	}
}

// loadImages fetches the bytes of every user image that is not already
// loaded, plus the reference, in parallel. The first failure cancels the rest.
func loadImages(
	ctx context.Context,
	rt *Runtime,
	images []Image,
	ref ReferenceLocator,
) ([]Image, Image, error) {
	loaded := make([]Image, len(images))
	copy(loaded, images)

	reference := Image{
		Key:      ref.Key,
		URL:      ref.URL,
		MIMEType: MIMETypeFor(ref.Key),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(len(images) + 1))

	for i := range loaded {
		if len(loaded[i].Data) > 0 {
			continue
		}
		g.Go(func() error {
			data, err := download(gctx, rt, loaded[i].Key)
			if err != nil {
				return fmt.Errorf("image %d could not be downloaded: %w", i+1, err)
			}
			loaded[i].Data = data
			return nil
		})
	}

	g.Go(func() error {
		data, err := download(gctx, rt, ref.Key)
		if err != nil {
			return fmt.Errorf("reference image could not be downloaded: %w", err)
		}
		reference.Data = data
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, Image{}, err
	}
	return loaded, reference, nil
}

func download(ctx context.Context, rt *Runtime, key string) ([]byte, error) {
	dctx, cancel := withTimeout(ctx, rt.Timeouts.Download)
	defer cancel()
	return rt.Store.Download(dctx, key)
}
