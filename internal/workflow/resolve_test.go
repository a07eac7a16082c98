package workflow_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/workflow"
)

func TestResolve(t *testing.T) {
	t.Run("first existing candidate wins", func(t *testing.T) {
		s := newStore("refs/apple/apple_scab.png", "refs/apple/apple_scab.webp")
		rt := newRuntime(sequence(), nil, s)

		got := workflow.Resolve(context.Background(), rt, "Apple Scab")
		if !got.Found || got.Key != "refs/apple/apple_scab.png" {
			t.Fatalf("Resolve() = %+v", got)
		}
		if got.URL != "https://store.test/crop-images/refs/apple/apple_scab.png" {
			t.Errorf("url = %q", got.URL)
		}

		want := []string{
			"refs/apple/apple_scab.jpg",
			"refs/apple/apple_scab.JPG",
			"refs/apple/apple_scab.jpeg",
			"refs/apple/apple_scab.JPEG",
			"refs/apple/apple_scab.png",
		}
		if !slices.Equal(s.probes, want) {
			t.Errorf("probes = %v, want %v", s.probes, want)
		}
	})

	t.Run("label is normalised", func(t *testing.T) {
		s := newStore("refs/rice/leaf_blast.jpg")
		rt := newRuntime(sequence(), nil, s)

		got := workflow.Resolve(context.Background(), rt, "  rice LEAF blast ")
		if !got.Found || got.Key != "refs/rice/leaf_blast.jpg" {
			t.Errorf("Resolve() = %+v", got)
		}
	})

	t.Run("no candidate exists", func(t *testing.T) {
		s := newStore()
		rt := newRuntime(sequence(), nil, s)

		got := workflow.Resolve(context.Background(), rt, "Black Rot")
		if got.Found || got.Unverified {
			t.Errorf("Resolve() = %+v", got)
		}
		if len(s.probes) != len(workflow.ReferenceExtensions) {
			t.Errorf("probes = %d, want %d", len(s.probes), len(workflow.ReferenceExtensions))
		}
	})

	t.Run("unknown label makes no probes", func(t *testing.T) {
		s := newStore()
		rt := newRuntime(sequence(), nil, s)

		got := workflow.Resolve(context.Background(), rt, "Corn Rust")
		if got.Found || len(s.probes) != 0 {
			t.Errorf("Resolve() = %+v, probes = %v", got, s.probes)
		}
	})

	t.Run("probe errors fall through to later candidates", func(t *testing.T) {
		s := newStore("refs/apple/black_rot.jpeg")
		s.probeErrs["refs/apple/black_rot.jpg"] = errors.New("timeout")
		rt := newRuntime(sequence(), nil, s)

		got := workflow.Resolve(context.Background(), rt, "Black Rot")
		if !got.Found || got.Key != "refs/apple/black_rot.jpeg" {
			t.Fatalf("Resolve() = %+v", got)
		}
		if !strings.Contains(got.Attempted[0], "timeout") {
			t.Errorf("attempted = %v", got.Attempted)
		}
	})

	t.Run("all probes error yields unverified locator", func(t *testing.T) {
		s := newStore("refs/apple/black_rot.jpg")
		s.failAll = errors.New("connection refused")
		rt := newRuntime(sequence(), nil, s)

		got := workflow.Resolve(context.Background(), rt, "Black Rot")
		if got.Found {
			t.Fatal("locator must not be found when probes failed")
		}
		if !got.Unverified || got.Key != "refs/apple/black_rot.jpg" {
			t.Errorf("Resolve() = %+v", got)
		}
	})

	t.Run("mixed errors and misses are not unverified", func(t *testing.T) {
		s := newStore()
		s.probeErrs["refs/apple/black_rot.jpg"] = errors.New("timeout")
		rt := newRuntime(sequence(), nil, s)

		got := workflow.Resolve(context.Background(), rt, "Black Rot")
		if got.Found || got.Unverified {
			t.Errorf("Resolve() = %+v", got)
		}
	})

	t.Run("tomato path with spaces", func(t *testing.T) {
		s := newStore("refs/Tomato Leaf Disease/tomato-early-bright.JPG")
		rt := newRuntime(sequence(), nil, s)

		got := workflow.Resolve(context.Background(), rt, "Tomato Early Blight")
		if !got.Found || got.Key != "refs/Tomato Leaf Disease/tomato-early-bright.JPG" {
			t.Errorf("Resolve() = %+v", got)
		}
	})
}
