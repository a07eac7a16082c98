package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/prompts"
)

// ComposePrompt joins the tunable instructions and immutable specification
// for stage, followed by extra per-call context when it is not empty.
func ComposePrompt(
	ctx context.Context,
	ps prompts.Source,
	stage prompts.Stage,
	extra string,
) (string, error) {
	instructions, err := ps.Instructions(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := ps.Spec(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)

	if extra != "" {
		sb.WriteString("\n\n")
		sb.WriteString(extra)
	}

	return sb.String(), nil
}

func classifyContext(crop string, diseases []string) string {
	list := "any plant disease"
	if len(diseases) > 0 {
		list = strings.Join(diseases, ", ")
	}
	return fmt.Sprintf(
		"Supported crops: Tomato, Apple, Rice\nCurrent crop: %s\nPossible diseases for %s: %s",
		crop, crop, list,
	)
}

func verifyContext(label, crop, weather string, userImages int) string {
	return fmt.Sprintf(
		"Suspected disease: %s\nCrop: %s\n\n"+
			"Image sequence:\n"+
			"1. The first %d image(s) are the farmer's crop photos.\n"+
			"2. The last image is the reference for %s.\n\n"+
			"Current weather: %s",
		label, crop, userImages, label, weather,
	)
}
