package workflow

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/prompts"
)

const (
	unanimityBoost = 0.05
	boostCeiling   = 0.99
)

// Aggregate runs the classifier runs times concurrently with identical input
// and votes over the runs that succeed. Every run is bounded by the
// classifier timeout and a failed run never cancels its siblings. Voting
// starts only after all runs have settled.
func Aggregate(
	ctx context.Context,
	rt *Runtime,
	images []Image,
	crop string,
	runs int,
) (*ConsensusPrediction, error) {
	runs = max(runs, 1)

	var diseases []string
	if rt.Catalog != nil {
		diseases = rt.Catalog.Diseases(crop)
	}

	prompt, err := ComposePrompt(ctx, rt.Prompts, prompts.StageClassify, classifyContext(crop, diseases))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassifierUnavailable, err)
	}

	req := ClassifyRequest{Images: images, Crop: crop, Prompt: prompt}
	results := make([]RunResult, runs)

	var g errgroup.Group
	g.SetLimit(workerCount(runs))

	for i := range runs {
		g.Go(func() error {
			results[i] = classifyOnce(ctx, rt, req, i+1)
			return nil
		})
	}
	g.Wait()

	return Vote(results, runs)
}

func classifyOnce(ctx context.Context, rt *Runtime, req ClassifyRequest, run int) RunResult {
	cctx, cancel := withTimeout(ctx, rt.Timeouts.Classifier)
	defer cancel()

	result := RunResult{Run: run}

	p, err := rt.Classifier.Classify(cctx, req)
	if err == nil && p == nil {
		err = errors.New("empty prediction")
	}
	if err != nil {
		result.Error = err.Error()
		rt.metrics().ClassifierRun(false)
		rt.logger().WarnContext(ctx, "classifier run failed", "run", run, "error", err)
		return result
	}

	result.Prediction = p
	rt.metrics().ClassifierRun(true)
	rt.logger().InfoContext(ctx, "classifier run complete",
		"run", run,
		"label", p.Label,
		"confidence", p.Confidence,
	)
	return result
}

// Vote builds a consensus from settled runs. Labels are compared after
// trimming. The label with the most votes wins; a tie goes to the label whose
// best prediction is more confident, then to the label seen first. The
// representative is the most confident prediction carrying the winning label.
// When runs > 1 and every requested run voted for the winner, confidence is
// raised by 0.05 and capped at 0.99.
func Vote(results []RunResult, runs int) (*ConsensusPrediction, error) {
	type tally struct {
		votes int
		best  Prediction
	}

	var (
		order  []string
		counts = make(map[string]*tally)
		labels []string
		errs   []error
	)

	for _, r := range results {
		if r.Prediction == nil {
			errs = append(errs, fmt.Errorf("run %d: %s", r.Run, r.Error))
			continue
		}

		p := *r.Prediction
		p.Label = strings.TrimSpace(p.Label)
		labels = append(labels, p.Label)

		t, ok := counts[p.Label]
		if !ok {
			t = &tally{best: p}
			counts[p.Label] = t
			order = append(order, p.Label)
		}
		t.votes++
		if p.Confidence > t.best.Confidence {
			t.best = p
		}
	}

	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: all %d runs failed: %w", ErrClassifierUnavailable, len(results), errors.Join(errs...))
	}

	winner := order[0]
	for _, label := range order[1:] {
		w, c := counts[winner], counts[label]
		if c.votes > w.votes || (c.votes == w.votes && c.best.Confidence > w.best.Confidence) {
			winner = label
		}
	}

	t := counts[winner]
	consensus := &ConsensusPrediction{
		Prediction:     t.best,
		VoteCount:      t.votes,
		TotalRuns:      runs,
		SuccessfulRuns: len(labels),
		AllLabels:      labels,
		Runs:           results,
	}

	if runs > 1 && t.votes == runs {
		consensus.Confidence = min(consensus.Confidence+unanimityBoost, boostCeiling)
		consensus.Boosted = true
	}

	return consensus, nil
}

func workerCount(n int) int {
	return max(min(runtime.NumCPU(), n), 1)
}
