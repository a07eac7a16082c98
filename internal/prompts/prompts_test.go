package prompts_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/prompts"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/query"
)

func ptr[T any](v T) *T { return &v }

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", prompts.ErrNotFound, http.StatusNotFound},
		{"duplicate", prompts.ErrDuplicate, http.StatusConflict},
		{"invalid stage", prompts.ErrInvalidStage, http.StatusBadRequest},
		{"invalid command", prompts.ErrInvalid, http.StatusBadRequest},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("find failed: %w", prompts.ErrNotFound), http.StatusNotFound},
		{"wrapped invalid stage", fmt.Errorf("decode failed: %w", prompts.ErrInvalidStage), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := prompts.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestStages(t *testing.T) {
	want := []prompts.Stage{prompts.StageClassify, prompts.StageVerify, prompts.StageChat}
	stages := prompts.Stages()

	if len(stages) != len(want) {
		t.Fatalf("len(Stages()) = %d, want %d", len(stages), len(want))
	}
	for i, s := range stages {
		if s != want[i] {
			t.Errorf("Stages()[%d] = %q, want %q", i, s, want[i])
		}
	}

	stages[0] = "mutated"
	if prompts.Stages()[0] != prompts.StageClassify {
		t.Error("Stages() must return a copy")
	}
}

func TestStageUnmarshalJSON(t *testing.T) {
	tests := []struct {
		input   string
		want    prompts.Stage
		wantErr error
	}{
		{`"classify"`, prompts.StageClassify, nil},
		{`"verify"`, prompts.StageVerify, nil},
		{`"chat"`, prompts.StageChat, nil},
		{`"enhance"`, "", prompts.ErrInvalidStage},
		{`""`, "", prompts.ErrInvalidStage},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var s prompts.Stage
			err := json.Unmarshal([]byte(tt.input), &s)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Unmarshal() error = %v, want %v", err, tt.wantErr)
			}
			if s != tt.want {
				t.Errorf("stage = %q, want %q", s, tt.want)
			}
		})
	}

	t.Run("non-string", func(t *testing.T) {
		var s prompts.Stage
		if err := json.Unmarshal([]byte(`42`), &s); err == nil {
			t.Error("expected error for numeric stage")
		}
	})
}

func TestParseStage(t *testing.T) {
	if s, err := prompts.ParseStage("verify"); err != nil || s != prompts.StageVerify {
		t.Errorf("ParseStage(verify) = %q, %v", s, err)
	}
	if _, err := prompts.ParseStage("Verify"); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("ParseStage(Verify) error = %v, want ErrInvalidStage", err)
	}
}

func TestInstructionsAndSpecs(t *testing.T) {
	for _, stage := range prompts.Stages() {
		t.Run(string(stage), func(t *testing.T) {
			text, err := prompts.Instructions(stage)
			if err != nil || text == "" {
				t.Errorf("Instructions(%q) = %q, %v", stage, text, err)
			}
			spec, err := prompts.Spec(stage)
			if err != nil || spec == "" {
				t.Errorf("Spec(%q) = %q, %v", stage, spec, err)
			}
		})
	}

	if _, err := prompts.Instructions("banana"); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("Instructions(banana) error = %v", err)
	}
	if _, err := prompts.Spec("banana"); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("Spec(banana) error = %v", err)
	}
}

func TestSpecContent(t *testing.T) {
	tests := []struct {
		stage prompts.Stage
		want  []string
	}{
		{prompts.StageClassify, []string{
			`"disease_name"`, `"confidence"`, `"visual_symptoms"`, `"preliminary_reasoning"`,
			"Invalid Image - Not a Plant Leaf", "Invalid Image - Wrong Crop Type", "Uncertain - Need Better Images",
		}},
		{prompts.StageVerify, []string{
			"3 or more of the 6 criteria", `"is_match"`, `"key_similarities"`, `"key_differences"`,
			`"alternative_diagnosis"`, "CONFIRMED", "REJECTED",
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			spec, _ := prompts.Spec(tt.stage)
			for _, w := range tt.want {
				if !strings.Contains(spec, w) {
					t.Errorf("Spec(%q) missing %q", tt.stage, w)
				}
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	src := prompts.Defaults()
	ctx := context.Background()

	got, err := src.Instructions(ctx, prompts.StageChat)
	if err != nil {
		t.Fatalf("Instructions() error = %v", err)
	}
	want, _ := prompts.Instructions(prompts.StageChat)
	if got != want {
		t.Error("Defaults().Instructions should return the built-in text")
	}

	if _, err := src.Spec(ctx, "banana"); !errors.Is(err, prompts.ErrInvalidStage) {
		t.Errorf("Spec(banana) error = %v", err)
	}
}

func TestFiltersFromQuery(t *testing.T) {
	t.Run("all params present", func(t *testing.T) {
		f := prompts.FiltersFromQuery(url.Values{
			"stage":  {"verify"},
			"active": {"true"},
		})

		if f.Stage == nil || *f.Stage != prompts.StageVerify {
			t.Errorf("Stage = %v, want verify", f.Stage)
		}
		if f.Active == nil || !*f.Active {
			t.Errorf("Active = %v, want true", f.Active)
		}
	})

	t.Run("empty params yield nil fields", func(t *testing.T) {
		f := prompts.FiltersFromQuery(url.Values{})
		if f.Stage != nil || f.Active != nil {
			t.Errorf("filters = %+v, want zero", f)
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		f := prompts.FiltersFromQuery(url.Values{
			"stage":  {"enhance"},
			"active": {"not-a-bool"},
		})
		if f.Stage != nil || f.Active != nil {
			t.Errorf("filters = %+v, want zero", f)
		}
	})
}

func TestFiltersApply(t *testing.T) {
	projection := query.
		NewProjectionMap("public", "prompts", "p").
		Project("stage", "Stage").
		Project("active", "Active")

	tests := []struct {
		name    string
		filters prompts.Filters
		wantSQL string
		args    []any
	}{
		{
			name:    "no filters",
			wantSQL: "SELECT p.stage, p.active FROM public.prompts p",
		},
		{
			name:    "stage",
			filters: prompts.Filters{Stage: ptr(prompts.StageChat)},
			wantSQL: "SELECT p.stage, p.active FROM public.prompts p WHERE p.stage = $1",
			args:    []any{"chat"},
		},
		{
			name:    "stage and active",
			filters: prompts.Filters{Stage: ptr(prompts.StageClassify), Active: ptr(false)},
			wantSQL: "SELECT p.stage, p.active FROM public.prompts p WHERE p.stage = $1 AND p.active = $2",
			args:    []any{"classify", false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := query.NewBuilder(projection)
			tt.filters.Apply(b)
			sql, args := b.Build()

			if sql != tt.wantSQL {
				t.Errorf("sql = %q, want %q", sql, tt.wantSQL)
			}
			if len(args) != len(tt.args) {
				t.Fatalf("args = %v, want %v", args, tt.args)
			}
			for i := range args {
				if args[i] != tt.args[i] {
					t.Errorf("args[%d] = %v, want %v", i, args[i], tt.args[i])
				}
			}
		})
	}
}
