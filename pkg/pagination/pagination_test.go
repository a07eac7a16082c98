package pagination_test

import (
	"net/url"
	"testing"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/pagination"
)

func config(t *testing.T) pagination.Config {
	t.Helper()
	cfg := pagination.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	return cfg
}

func TestFinalize(t *testing.T) {
	cfg := config(t)
	if cfg.DefaultPageSize != 20 || cfg.MaxPageSize != 100 {
		t.Errorf("defaults: got %+v", cfg)
	}

	bad := pagination.Config{DefaultPageSize: 50, MaxPageSize: 10}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected error when default exceeds max")
	}

	t.Setenv("TEST_PAGE_SIZE", "5")
	env := pagination.Config{}
	if err := env.Finalize(&pagination.ConfigEnv{DefaultPageSize: "TEST_PAGE_SIZE"}); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if env.DefaultPageSize != 5 {
		t.Errorf("env override: got %d, want 5", env.DefaultPageSize)
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	cfg := config(t)

	tests := []struct {
		name     string
		query    string
		wantPage int
		wantSize int
		search   bool
		sorts    int
	}{
		{"defaults", "", 1, 20, false, 0},
		{"explicit", "page=3&page_size=10&search=scab&sort=-CreatedAt", 3, 10, true, 1},
		{"clamped", "page=-2&page_size=1000", 1, 100, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, _ := url.ParseQuery(tt.query)
			req := pagination.PageRequestFromQuery(values, cfg)

			if req.Page != tt.wantPage || req.PageSize != tt.wantSize {
				t.Errorf("page/size: got %d/%d, want %d/%d", req.Page, req.PageSize, tt.wantPage, tt.wantSize)
			}
			if (req.Search != nil) != tt.search {
				t.Errorf("search set = %v, want %v", req.Search != nil, tt.search)
			}
			if len(req.Sort) != tt.sorts {
				t.Errorf("sorts: got %d, want %d", len(req.Sort), tt.sorts)
			}
		})
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{95, 10, 10},
	}

	for _, tt := range tests {
		got := pagination.NewPageResult[string](nil, tt.total, 1, tt.size)
		if got.TotalPages != tt.want {
			t.Errorf("total=%d size=%d: TotalPages = %d, want %d", tt.total, tt.size, got.TotalPages, tt.want)
		}
		if got.Data == nil {
			t.Error("Data should never be nil")
		}
	}
}
