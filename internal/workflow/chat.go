package workflow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/prompts"
)

// ChatWindow is the number of trailing history turns included in a prompt.
const ChatWindow = 4

// ChatRecord is the part of a stored consultation that grounds a chat turn.
type ChatRecord struct {
	Crop    string
	Weather string
	Log     DiagnosisLog
	Result  FinalResult
	History []ChatTurn
}

// ChatResult is one completed exchange. Turn holds the new user and
// assistant pair; History is the prior history with Turn appended.
type ChatResult struct {
	Answer  string
	Turn    []ChatTurn
	History []ChatTurn
}

// BuildChatPrompt grounds message in the record and the trailing ChatWindow
// turns of its history, oldest first. It returns the prompt and the window
// that was included.
func BuildChatPrompt(rec ChatRecord, message, instructions string) (string, []ChatTurn) {
	window := rec.History[max(len(rec.History)-ChatWindow, 0):]

	var sb strings.Builder
	if instructions != "" {
		sb.WriteString(instructions)
		sb.WriteString("\n\n")
	}

	sb.WriteString("DIAGNOSIS CONTEXT:\n")
	if rec.Crop != "" {
		fmt.Fprintf(&sb, "- Crop: %s\n", rec.Crop)
	}

	if rec.Log.Outcome == OutcomeAccepted {
		fmt.Fprintf(&sb, "- Disease Identified: %s\n", rec.Result.DiseaseName)
		fmt.Fprintf(&sb, "- Confidence: %s\n", Percent(rec.Result.ConfidenceScore))
	} else {
		fmt.Fprintf(&sb, "- Disease Identified: none confirmed (%s)\n", rec.Result.DiseaseName)
		sb.WriteString("- Note: No disease was confirmed for this consultation. " +
			"Do not make disease-specific claims; suggest resubmitting clearer leaf photos.\n")
	}

	fmt.Fprintf(&sb, "- Verification Reasoning: %s\n", verificationReasoning(rec.Log))
	fmt.Fprintf(&sb, "- Weather: %s\n", orDefault(rec.Weather, "Not available"))

	if plan := rec.Result.TreatmentPlan; plan != nil {
		fmt.Fprintf(&sb, "- Immediate Actions: %s\n", strings.Join(plan.Immediate, ", "))
		fmt.Fprintf(&sb, "- Preventive: %s\n", strings.Join(plan.Preventive, ", "))
		if len(plan.Products) > 0 {
			fmt.Fprintf(&sb, "- Products: %s\n", strings.Join(plan.Products, ", "))
		}
	}

	if len(window) > 0 {
		sb.WriteString("\nRECENT CONVERSATION:\n")
		for _, turn := range window {
			speaker := "You"
			if turn.Role == RoleUser {
				speaker = "User"
			}
			fmt.Fprintf(&sb, "%s: %s\n", speaker, turn.Content)
		}
	}

	fmt.Fprintf(&sb, "\nFARMER'S CURRENT QUESTION: \"%s\"\n\nYour answer:", message)

	return sb.String(), slices.Clone(window)
}

// AppendTurn returns a new history with the user and assistant pair added.
func AppendTurn(history []ChatTurn, message, answer string) []ChatTurn {
	out := make([]ChatTurn, 0, len(history)+2)
	out = append(out, history...)
	return append(out,
		ChatTurn{Role: RoleUser, Content: message},
		ChatTurn{Role: RoleAssistant, Content: answer},
	)
}

// Chat answers message through the reasoner. On any failure it returns
// ErrChatUnavailable and no turn; the caller's history is never modified.
func Chat(ctx context.Context, rt *Runtime, rec ChatRecord, message string) (*ChatResult, error) {
	if rt.Reasoner == nil {
		return nil, fmt.Errorf("%w: no reasoning model configured", ErrChatUnavailable)
	}

	instructions, err := ComposePrompt(ctx, rt.Prompts, prompts.StageChat, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChatUnavailable, err)
	}

	prompt, window := BuildChatPrompt(rec, message, instructions)

	cctx, cancel := withTimeout(ctx, rt.Timeouts.Chat)
	defer cancel()

	answer, err := rt.Reasoner.Generate(cctx, prompt)
	if err == nil && strings.TrimSpace(answer) == "" {
		err = errors.New("empty response")
	}
	if err != nil {
		rt.metrics().ChatTurn(false)
		rt.logger().WarnContext(ctx, "chat generation failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrChatUnavailable, err)
	}

	answer = strings.TrimSpace(answer)
	rt.metrics().ChatTurn(true)
	rt.logger().InfoContext(ctx, "chat turn complete",
		"history_length", len(rec.History),
		"window", len(window),
	)

	history := AppendTurn(rec.History, message, answer)
	return &ChatResult{
		Answer:  answer,
		Turn:    history[len(history)-2:],
		History: history,
	}, nil
}

// Percent renders a confidence in [0,1] as a whole percentage.
func Percent(confidence float64) string {
	return fmt.Sprintf("%.0f%%", confidence*100)
}

func verificationReasoning(log DiagnosisLog) string {
	if log.Verification != nil && log.Verification.Reasoning != "" {
		return log.Verification.Reasoning
	}
	return "Not available"
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
