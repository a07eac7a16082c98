package workflow_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/catalog"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/prompts"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/workflow"
)

type stubClassifier struct {
	calls   atomic.Int32
	mu      sync.Mutex
	prompts []string
	fn      func(call int, req workflow.ClassifyRequest) (*workflow.Prediction, error)
}

func (s *stubClassifier) Classify(ctx context.Context, req workflow.ClassifyRequest) (*workflow.Prediction, error) {
	call := int(s.calls.Add(1))
	s.mu.Lock()
	s.prompts = append(s.prompts, req.Prompt)
	s.mu.Unlock()
	return s.fn(call, req)
}

func (s *stubClassifier) Model() string { return "stub-vision" }

// sequence returns predictions in call order, cycling when exhausted.
func sequence(preds ...workflow.Prediction) *stubClassifier {
	return &stubClassifier{
		fn: func(call int, _ workflow.ClassifyRequest) (*workflow.Prediction, error) {
			p := preds[(call-1)%len(preds)]
			return &p, nil
		},
	}
}

type stubReasoner struct {
	compareCalls atomic.Int32
	lastCompare  workflow.ComparisonRequest
	compareFn    func(req workflow.ComparisonRequest) (*workflow.VerificationVerdict, error)
	generateFn   func(prompt string) (string, error)
	lastPrompt   string
}

func (s *stubReasoner) Compare(_ context.Context, req workflow.ComparisonRequest) (*workflow.VerificationVerdict, error) {
	s.compareCalls.Add(1)
	s.lastCompare = req
	return s.compareFn(req)
}

func (s *stubReasoner) Generate(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	return s.generateFn(prompt)
}

func (s *stubReasoner) Model() string { return "stub-reasoner" }

type stubStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	probeErrs map[string]error
	failAll   error
	probes    []string
	downloads []string
}

func newStore(keys ...string) *stubStore {
	s := &stubStore{objects: map[string][]byte{}, probeErrs: map[string]error{}}
	for _, k := range keys {
		s.objects[k] = []byte("img:" + k)
	}
	return s
}

func (s *stubStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probes = append(s.probes, key)
	if s.failAll != nil {
		return false, s.failAll
	}
	if err, ok := s.probeErrs[key]; ok {
		return false, err
	}
	_, ok := s.objects[key]
	return ok, nil
}

func (s *stubStore) PublicURL(key string) string {
	return "https://store.test/crop-images/" + key
}

func (s *stubStore) Download(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloads = append(s.downloads, key)
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return data, nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	stages   []string
	outcomes []string
	verdicts []string
	runs     map[bool]int
	chats    map[bool]int
}

func newMetrics() *recordingMetrics {
	return &recordingMetrics{runs: map[bool]int{}, chats: map[bool]int{}}
}

func (m *recordingMetrics) ObserveStage(stage string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = append(m.stages, stage)
}

func (m *recordingMetrics) ClassifierRun(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[ok]++
}

func (m *recordingMetrics) GateOutcome(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *recordingMetrics) Verification(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts = append(m.verdicts, status)
}

func (m *recordingMetrics) ChatTurn(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats[ok]++
}

func newRuntime(c workflow.Classifier, r workflow.Reasoner, s workflow.ObjectStore) *workflow.Runtime {
	rt := &workflow.Runtime{
		Classifier: c,
		Store:      s,
		Catalog:    catalog.Default(),
		Prompts:    prompts.Defaults(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Timeouts:   workflow.DefaultTimeouts(),
		Runs:       3,
	}
	if r != nil {
		rt.Reasoner = r
		rt.Verify = true
	}
	return rt
}

func userImages() []workflow.Image {
	return []workflow.Image{
		{Key: "session/image_1.jpg", MIMEType: "image/jpeg", Data: []byte("leaf-1")},
		{Key: "session/image_2.png", MIMEType: "image/png", Data: []byte("leaf-2")},
	}
}

func pred(label string, confidence float64) workflow.Prediction {
	return workflow.Prediction{
		Label:        label,
		Confidence:   confidence,
		Observations: "olive-brown lesions",
		Rationale:    "velvety spots on upper leaf surface",
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
