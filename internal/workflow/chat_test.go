package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/workflow"
)

func acceptedRecord(history []workflow.ChatTurn) workflow.ChatRecord {
	return workflow.ChatRecord{
		Crop:    "Apple",
		Weather: "Temperature: 24.0°C, Humidity: 81%",
		Log: workflow.DiagnosisLog{
			Outcome:      workflow.OutcomeAccepted,
			Verification: &workflow.VerificationVerdict{Reasoning: "Matching olive lesions"},
		},
		Result: workflow.FinalResult{
			DiseaseName:     "Apple Scab",
			ConfidenceScore: 0.96,
			TreatmentPlan:   workflow.PlaceholderPlan(),
		},
		History: history,
	}
}

func turns(n int) []workflow.ChatTurn {
	out := make([]workflow.ChatTurn, n)
	for i := range out {
		role := workflow.RoleUser
		if i%2 == 1 {
			role = workflow.RoleAssistant
		}
		out[i] = workflow.ChatTurn{Role: role, Content: fmt.Sprintf("turn-%d", i)}
	}
	return out
}

func TestBuildChatPrompt(t *testing.T) {
	prompt, window := workflow.BuildChatPrompt(acceptedRecord(turns(6)), "Should I spray today?", "Be brief.")

	if len(window) != workflow.ChatWindow || window[0].Content != "turn-2" {
		t.Errorf("window = %+v", window)
	}

	for _, want := range []string{
		"Be brief.",
		"- Crop: Apple",
		"- Disease Identified: Apple Scab",
		"- Confidence: 96%",
		"- Verification Reasoning: Matching olive lesions",
		"Humidity: 81%",
		"User: turn-2",
		"You: turn-5",
		`FARMER'S CURRENT QUESTION: "Should I spray today?"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	for _, absent := range []string{"turn-0", "turn-1"} {
		if strings.Contains(prompt, absent) {
			t.Errorf("prompt includes turn outside window: %q", absent)
		}
	}
	if strings.Index(prompt, "turn-2") > strings.Index(prompt, "turn-5") {
		t.Error("window not in chronological order")
	}
}

func TestBuildChatPromptNotAccepted(t *testing.T) {
	rec := workflow.ChatRecord{
		Log:    workflow.DiagnosisLog{Outcome: workflow.OutcomeLowConfidence},
		Result: workflow.FinalResult{DiseaseName: workflow.LabelLowConfidence},
	}

	prompt, window := workflow.BuildChatPrompt(rec, "What now?", "")
	if len(window) != 0 {
		t.Errorf("window = %+v", window)
	}
	for _, want := range []string{"none confirmed", "No disease was confirmed", "Verification Reasoning: Not available", "Weather: Not available"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "RECENT CONVERSATION") {
		t.Error("empty history should not render a conversation block")
	}
}

func TestChat(t *testing.T) {
	r := &stubReasoner{
		generateFn: func(string) (string, error) { return "  Apply a fungicide after the rain.  ", nil },
	}
	m := newMetrics()
	rt := newRuntime(sequence(), r, newStore())
	rt.Metrics = m

	history := turns(2000)
	got, err := workflow.Chat(context.Background(), rt, acceptedRecord(history), "Which fungicide?")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if got.Answer != "Apply a fungicide after the rain." {
		t.Errorf("answer = %q", got.Answer)
	}
	if len(got.History) != 2002 || len(history) != 2000 {
		t.Errorf("history lengths = %d, %d", len(got.History), len(history))
	}
	if len(got.Turn) != 2 || got.Turn[0].Role != workflow.RoleUser || got.Turn[1].Content != got.Answer {
		t.Errorf("turn = %+v", got.Turn)
	}
	if strings.Count(r.lastPrompt, "turn-") != workflow.ChatWindow {
		t.Errorf("prompt should include only the last %d turns", workflow.ChatWindow)
	}
	if !strings.Contains(r.lastPrompt, "diagnosis context") {
		t.Error("prompt missing chat instructions")
	}
	if m.chats[true] != 1 {
		t.Errorf("chat metrics = %v", m.chats)
	}
}

func TestChatFailure(t *testing.T) {
	tests := []struct {
		name     string
		reasoner workflow.Reasoner
	}{
		{"no reasoner", nil},
		{"gateway error", &stubReasoner{generateFn: func(string) (string, error) { return "", errors.New("quota exceeded") }}},
		{"empty answer", &stubReasoner{generateFn: func(string) (string, error) { return "   ", nil }}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := newRuntime(sequence(), tt.reasoner, newStore())
			history := turns(3)

			got, err := workflow.Chat(context.Background(), rt, acceptedRecord(history), "Hello?")
			if !errors.Is(err, workflow.ErrChatUnavailable) {
				t.Fatalf("Chat() error = %v, want ErrChatUnavailable", err)
			}
			if got != nil {
				t.Errorf("Chat() result = %+v, want nil", got)
			}
			if len(history) != 3 || history[2].Content != "turn-2" {
				t.Error("history modified on failure")
			}
		})
	}
}

func TestAppendTurnDoesNotAlias(t *testing.T) {
	history := make([]workflow.ChatTurn, 1, 8)
	history[0] = workflow.ChatTurn{Role: workflow.RoleUser, Content: "hi"}

	a := workflow.AppendTurn(history, "q1", "a1")
	b := workflow.AppendTurn(history, "q2", "a2")
	if a[1].Content != "q1" || b[1].Content != "q2" {
		t.Errorf("appends alias each other: %+v %+v", a, b)
	}
}

func TestPercent(t *testing.T) {
	if got := workflow.Percent(0.96); got != "96%" {
		t.Errorf("Percent(0.96) = %q", got)
	}
	if got := workflow.Percent(0.5); got != "50%" {
		t.Errorf("Percent(0.5) = %q", got)
	}
}
