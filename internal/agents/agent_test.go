package agents_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/agents"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/workflow"
)

type fakeOpenAI struct {
	mu      sync.Mutex
	bodies  []map[string]any
	status  int
	content string
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.bodies = append(f.bodies, body)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 && f.status != http.StatusOK {
		w.WriteHeader(f.status)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "Rate limit reached", "type": "requests", "code": "rate_limit_exceeded"},
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   body["model"],
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": f.content},
			"finish_reason": "stop",
		}},
	})
}

func (f *fakeOpenAI) last() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[len(f.bodies)-1]
}

func newAgent(t *testing.T, f *fakeOpenAI) *agents.Agent {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	cfg := agents.Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"}
	if err := cfg.Finalize(agents.ClassifierDefaults(), nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	a, err := agents.New(context.Background(), &cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return a
}

func leafImages() []workflow.Image {
	return []workflow.Image{
		{Key: "s/image_1.jpg", MIMEType: "image/jpeg", Data: []byte("leaf-1")},
		{Key: "s/image_2.png", Data: []byte("leaf-2")},
	}
}

func messages(body map[string]any) []map[string]any {
	raw, _ := body["messages"].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, m := range raw {
		out = append(out, m.(map[string]any))
	}
	return out
}

func TestClassify(t *testing.T) {
	f := &fakeOpenAI{content: `{"disease_name":"Apple Scab","confidence":0.92,"visual_symptoms":["olive spots","velvety texture"],"preliminary_reasoning":"classic scab lesions"}`}
	a := newAgent(t, f)

	got, err := a.Classify(context.Background(), workflow.ClassifyRequest{
		Images: leafImages(),
		Crop:   "Apple",
		Prompt: "You are a plant pathologist.",
	})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if got.Label != "Apple Scab" || got.Confidence != 0.92 {
		t.Errorf("prediction = %+v", got)
	}
	if got.Observations != "olive spots; velvety texture" {
		t.Errorf("observations = %q", got.Observations)
	}

	body := f.last()
	if body["model"] != "gpt-4o" || body["max_tokens"] != float64(800) {
		t.Errorf("model = %v, max_tokens = %v", body["model"], body["max_tokens"])
	}
	if rf, _ := body["response_format"].(map[string]any); rf["type"] != "json_object" {
		t.Errorf("response_format = %v", body["response_format"])
	}

	msgs := messages(body)
	if len(msgs) != 2 || msgs[0]["role"] != "system" || msgs[0]["content"] != "You are a plant pathologist." {
		t.Fatalf("messages = %v", msgs)
	}

	parts, _ := msgs[1]["content"].([]any)
	if len(parts) != 3 {
		t.Fatalf("user parts = %d, want text plus 2 images", len(parts))
	}
	if text := parts[0].(map[string]any)["text"]; text != "Analyze these Apple plant images for diseases:" {
		t.Errorf("user text = %v", text)
	}
	img := parts[2].(map[string]any)["image_url"].(map[string]any)
	if !strings.HasPrefix(img["url"].(string), "data:image/png;base64,") {
		t.Errorf("image url = %v", img["url"])
	}
}

func TestClassifyInvalidOutput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing label", `{"confidence":0.5}`},
		{"not json", "I cannot help with that."},
		{"negative confidence", `{"disease_name":"Apple Scab","confidence":-3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAgent(t, &fakeOpenAI{content: tt.content})
			_, err := a.Classify(context.Background(), workflow.ClassifyRequest{Images: leafImages(), Crop: "Apple"})
			if !errors.Is(err, agents.ErrInvalidOutput) {
				t.Errorf("Classify() error = %v, want ErrInvalidOutput", err)
			}
		})
	}
}

func TestClassifyProviderError(t *testing.T) {
	a := newAgent(t, &fakeOpenAI{status: http.StatusTooManyRequests})

	_, err := a.Classify(context.Background(), workflow.ClassifyRequest{Images: leafImages(), Crop: "Rice"})

	var pe *agents.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("Classify() error = %v, want ProviderError", err)
	}
	if pe.Type != agents.ErrorTypeRateLimit || pe.StatusCode != 429 || pe.Provider != "openai" {
		t.Errorf("provider error = %+v", pe)
	}
}

func TestClassifyImageEncoding(t *testing.T) {
	t.Run("webp", func(t *testing.T) {
		f := &fakeOpenAI{content: `{"disease_name":"Apple Scab","confidence":0.9}`}
		a := newAgent(t, f)

		_, err := a.Classify(context.Background(), workflow.ClassifyRequest{
			Images: []workflow.Image{{Key: "s/image_1.webp", Data: []byte("leaf")}},
			Crop:   "Apple",
		})
		if err != nil {
			t.Fatalf("Classify() error = %v", err)
		}

		msgs := messages(f.last())
		if len(msgs) != 1 {
			t.Fatalf("messages = %d, want 1 without a system prompt", len(msgs))
		}
		parts, _ := msgs[0]["content"].([]any)
		url := parts[1].(map[string]any)["image_url"].(map[string]any)["url"]
		if url != "data:image/webp;base64,bGVhZg==" {
			t.Errorf("image url = %v", url)
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		f := &fakeOpenAI{content: `{"disease_name":"Apple Scab","confidence":0.9}`}
		a := newAgent(t, f)

		_, err := a.Classify(context.Background(), workflow.ClassifyRequest{
			Images: []workflow.Image{{Key: "s/image_1.gif", MIMEType: "image/gif", Data: []byte("leaf")}},
			Crop:   "Apple",
		})
		if err == nil || !strings.Contains(err.Error(), "unsupported image format") {
			t.Fatalf("Classify() error = %v, want unsupported image format", err)
		}
		if len(f.bodies) != 0 {
			t.Error("request sent for an image that could not be encoded")
		}
	})
}

func TestCompare(t *testing.T) {
	f := &fakeOpenAI{content: "```json\n" + `{"is_match":true,"reasoning":"Same olive lesions.","confidence":0.93,"key_similarities":["color"],"key_differences":[],"verdict":"confirmed","alternative_diagnosis":"Unknown"}` + "\n```"}
	a := newAgent(t, f)

	got, err := a.Compare(context.Background(), workflow.ComparisonRequest{
		Images:    leafImages(),
		Reference: workflow.Image{Key: "refs/apple/apple_scab.jpg", Data: []byte("ref")},
		Prompt:    "verify",
	})
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if !got.IsMatch || got.Verdict != workflow.VerdictConfirmed || got.AlternativeLabel != "" {
		t.Errorf("verdict = %+v", got)
	}

	parts, _ := messages(f.last())[1]["content"].([]any)
	if len(parts) != 4 {
		t.Fatalf("user parts = %d, want text plus 3 images", len(parts))
	}
	ref := parts[3].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	if ref != "data:image/jpeg;base64,cmVm" {
		t.Errorf("reference must be sent last, got %q", ref)
	}
}

func TestGenerate(t *testing.T) {
	f := &fakeOpenAI{content: "  Spray a copper fungicide after the rain stops.\n"}
	a := newAgent(t, f)

	got, err := a.Generate(context.Background(), "FARMER'S CURRENT QUESTION: \"What now?\"")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Spray a copper fungicide after the rain stops." {
		t.Errorf("Generate() = %q", got)
	}

	body := f.last()
	if _, ok := body["response_format"]; ok {
		t.Error("free text generation should not request JSON mode")
	}
	msgs := messages(body)
	if len(msgs) != 1 || msgs[0]["role"] != "user" {
		t.Errorf("messages = %v", msgs)
	}
}

func TestGenerateEmpty(t *testing.T) {
	a := newAgent(t, &fakeOpenAI{content: "   "})
	if _, err := a.Generate(context.Background(), "hi"); !errors.Is(err, agents.ErrEmptyResponse) {
		t.Errorf("Generate() error = %v, want ErrEmptyResponse", err)
	}
}

func TestNewDisabled(t *testing.T) {
	cfg := agents.Config{Provider: agents.ProviderNone}
	if err := cfg.Finalize(agents.ReasonerDefaults(), nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	_, err := agents.New(context.Background(), &cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if !errors.Is(err, agents.ErrDisabled) {
		t.Errorf("New() error = %v, want ErrDisabled", err)
	}
}

func TestNewProviders(t *testing.T) {
	for _, provider := range []string{agents.ProviderAnthropic, agents.ProviderGemini} {
		t.Run(provider, func(t *testing.T) {
			cfg := agents.Config{Provider: provider, Model: "m", APIKey: "k"}
			if err := cfg.Finalize(agents.ReasonerDefaults(), nil); err != nil {
				t.Fatalf("Finalize() error = %v", err)
			}

			a, err := agents.New(context.Background(), &cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if a.Model() != "m" {
				t.Errorf("Model() = %q", a.Model())
			}
		})
	}
}
