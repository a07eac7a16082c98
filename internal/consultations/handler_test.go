package consultations_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"slices"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/consultations"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/workflow"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/pagination"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/routes"
)

type mockSystem struct {
	analyzeFn func(ctx context.Context, cmd consultations.AnalyzeCommand) (*consultations.Consultation, error)
	listFn    func(ctx context.Context, page pagination.PageRequest, filters consultations.Filters) (*pagination.PageResult[consultations.Summary], error)
	findFn    func(ctx context.Context, id uuid.UUID) (*consultations.Consultation, error)
	chatFn    func(ctx context.Context, id uuid.UUID, cmd consultations.ChatCommand) (*consultations.ChatResponse, error)
}

func (m *mockSystem) Handler(maxUploadSize int64) *consultations.Handler {
	return newTestHandler(m, maxUploadSize)
}

func (m *mockSystem) Analyze(ctx context.Context, cmd consultations.AnalyzeCommand) (*consultations.Consultation, error) {
	return m.analyzeFn(ctx, cmd)
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters consultations.Filters) (*pagination.PageResult[consultations.Summary], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*consultations.Consultation, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Chat(ctx context.Context, id uuid.UUID, cmd consultations.ChatCommand) (*consultations.ChatResponse, error) {
	return m.chatFn(ctx, id, cmd)
}

func newTestHandler(sys consultations.System, maxUploadSize int64) *consultations.Handler {
	return consultations.NewHandler(
		sys,
		discard(),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
		maxUploadSize,
	)
}

func setupMux(sys consultations.System) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler(1<<20).Routes())
	return mux
}

type formFile struct {
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField() error = %v", err)
		}
	}

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, f.name))
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart() error = %v", err)
		}
		part.Write(f.data)
	}

	mw.Close()
	return &buf, mw.FormDataContentType()
}

func submissionFields() map[string]string {
	return map[string]string{
		"farmer_name":  "Asha",
		"village":      "Kotkhai",
		"latitude":     "31.1",
		"longitude":    "77.2",
		"crop_name":    "Apple",
		"sown_date":    "2026-03-01",
		"observations": "spots after rain",
	}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestHandlerAnalyze(t *testing.T) {
	var got consultations.AnalyzeCommand
	id := uuid.New()
	sys := &mockSystem{
		analyzeFn: func(_ context.Context, cmd consultations.AnalyzeCommand) (*consultations.Consultation, error) {
			got = cmd
			return &consultations.Consultation{SessionID: id}, nil
		},
	}

	body, ct := multipartBody(t, submissionFields(),
		formFile{name: "a.png", data: pngHeader},
		formFile{name: "b.jpg", contentType: "image/jpeg", data: []byte("jpeg")},
	)

	req := httptest.NewRequest(http.MethodPost, "/consultations", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	setupMux(sys).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	if got.FarmerName != "Asha" || got.CropName != "Apple" || got.Latitude != 31.1 || got.Longitude != 77.2 {
		t.Errorf("command = %+v", got)
	}
	if len(got.Images) != 2 {
		t.Fatalf("images = %d, want 2", len(got.Images))
	}
	if got.Images[0].ContentType != "image/png" {
		t.Errorf("sniffed content type = %q, want image/png", got.Images[0].ContentType)
	}
	if got.Images[1].ContentType != "image/jpeg" || got.Images[1].Filename != "b.jpg" {
		t.Errorf("second image = %+v", got.Images[1])
	}

	var c consultations.Consultation
	if err := json.NewDecoder(rec.Body).Decode(&c); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if c.SessionID != id {
		t.Errorf("session_id = %s, want %s", c.SessionID, id)
	}
}

func TestHandlerAnalyzeRejected(t *testing.T) {
	id := uuid.New()
	sys := &mockSystem{
		analyzeFn: func(context.Context, consultations.AnalyzeCommand) (*consultations.Consultation, error) {
			return nil, &consultations.RejectionError{
				Kind:      consultations.ErrInvalidImage,
				SessionID: id,
				Message:   workflow.MessageInvalid,
				Reasoning: "Image 2 shows a dog",
			}
		},
	}

	body, ct := multipartBody(t, submissionFields(), formFile{name: "a.png", data: pngHeader})
	req := httptest.NewRequest(http.MethodPost, "/consultations", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	setupMux(sys).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	var p consultations.RejectionPayload
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if p.Error != "invalid_image" || p.SessionID != id || p.Reasoning != "Image 2 shows a dog" {
		t.Errorf("payload = %+v", p)
	}
	if p.Confidence != nil {
		t.Error("invalid image payload should not carry confidence")
	}
}

func TestHandlerAnalyzeErrors(t *testing.T) {
	unreachable := func(context.Context, consultations.AnalyzeCommand) (*consultations.Consultation, error) {
		return nil, fmt.Errorf("%w: run 1: upstream 500", workflow.ErrClassifierUnavailable)
	}

	tests := []struct {
		name   string
		fields map[string]string
		json   bool
		want   int
	}{
		{"classifier unavailable", submissionFields(), false, http.StatusBadGateway},
		{"bad latitude", func() map[string]string {
			f := submissionFields()
			f["latitude"] = "north"
			return f
		}(), false, http.StatusBadRequest},
		{"not multipart", nil, true, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{analyzeFn: unreachable}

			var req *http.Request
			if tt.json {
				req = httptest.NewRequest(http.MethodPost, "/consultations", strings.NewReader(`{}`))
				req.Header.Set("Content-Type", "application/json")
			} else {
				body, ct := multipartBody(t, tt.fields, formFile{name: "a.png", data: pngHeader})
				req = httptest.NewRequest(http.MethodPost, "/consultations", body)
				req.Header.Set("Content-Type", ct)
			}

			rec := httptest.NewRecorder()
			setupMux(sys).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandlerAnalyzeTooLarge(t *testing.T) {
	called := false
	sys := &mockSystem{
		analyzeFn: func(context.Context, consultations.AnalyzeCommand) (*consultations.Consultation, error) {
			called = true
			return nil, nil
		},
	}

	big := append(slices.Clone(pngHeader), bytes.Repeat([]byte{0}, 2<<20)...)
	body, ct := multipartBody(t, submissionFields(), formFile{name: "a.png", data: big})
	req := httptest.NewRequest(http.MethodPost, "/consultations", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	setupMux(sys).ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "upload exceeds maximum size: limit") {
		t.Errorf("body should name the limit: %s", rec.Body.String())
	}
	if called {
		t.Error("Analyze should not run for an oversized upload")
	}
}

func TestHandlerFind(t *testing.T) {
	known := uuid.New()
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*consultations.Consultation, error) {
			if id == known {
				return &consultations.Consultation{SessionID: id}, nil
			}
			return nil, consultations.ErrNotFound
		},
	}

	tests := []struct {
		name string
		path string
		want int
	}{
		{"found", "/consultations/" + known.String(), http.StatusOK},
		{"missing", "/consultations/" + uuid.NewString(), http.StatusNotFound},
		{"malformed id", "/consultations/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			setupMux(sys).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerList(t *testing.T) {
	var (
		gotPage    pagination.PageRequest
		gotFilters consultations.Filters
	)
	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, filters consultations.Filters) (*pagination.PageResult[consultations.Summary], error) {
			gotPage, gotFilters = page, filters
			result := pagination.NewPageResult([]consultations.Summary{{DiseaseName: "Apple Scab"}}, 1, page.Page, page.PageSize)
			return &result, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/consultations?page=2&page_size=5&crop=Apple&outcome=accepted&verified=true&search=asha", nil)
	setupMux(sys).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotPage.Page != 2 || gotPage.PageSize != 5 || gotPage.Search == nil || *gotPage.Search != "asha" {
		t.Errorf("page = %+v", gotPage)
	}
	if gotFilters.Crop == nil || *gotFilters.Crop != "Apple" {
		t.Errorf("crop filter = %v", gotFilters.Crop)
	}
	if gotFilters.Outcome == nil || *gotFilters.Outcome != "accepted" {
		t.Errorf("outcome filter = %v", gotFilters.Outcome)
	}
	if gotFilters.Verified == nil || !*gotFilters.Verified {
		t.Errorf("verified filter = %v", gotFilters.Verified)
	}

	var result pagination.PageResult[consultations.Summary]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.Data) != 1 || result.Data[0].DiseaseName != "Apple Scab" {
		t.Errorf("data = %+v", result.Data)
	}
}

func TestHandlerChat(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"answered", `{"message":"What should I spray?"}`, nil, http.StatusOK},
		{"unknown field", `{"question":"hi"}`, nil, http.StatusBadRequest},
		{"chat unavailable", `{"message":"hi"}`, workflow.ErrChatUnavailable, http.StatusServiceUnavailable},
		{"not found", `{"message":"hi"}`, consultations.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				chatFn: func(_ context.Context, got uuid.UUID, cmd consultations.ChatCommand) (*consultations.ChatResponse, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &consultations.ChatResponse{SessionID: got, Response: "Copper spray.", HistoryLength: 2}, nil
				},
			}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/consultations/"+id.String()+"/chat", strings.NewReader(tt.body))
			setupMux(sys).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}

			var resp consultations.ChatResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.SessionID != id || resp.HistoryLength != 2 || resp.Response != "Copper spray." {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}
