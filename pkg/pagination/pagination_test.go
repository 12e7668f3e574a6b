package pagination_test

import (
	"net/url"
	"testing"

	"github.com/kbristol/sift/pkg/pagination"
)

func defaultConfig() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		req          pagination.PageRequest
		wantPage     int
		wantPageSize int
	}{
		{"zero values", pagination.PageRequest{}, 1, 20},
		{"negative page", pagination.PageRequest{Page: -5, PageSize: 10}, 1, 10},
		{"over max page size", pagination.PageRequest{Page: 2, PageSize: 500}, 2, 100},
		{"valid unchanged", pagination.PageRequest{Page: 3, PageSize: 50}, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize(defaultConfig())
			if tt.req.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", tt.req.Page, tt.wantPage)
			}
			if tt.req.PageSize != tt.wantPageSize {
				t.Errorf("PageSize = %d, want %d", tt.req.PageSize, tt.wantPageSize)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	req := pagination.PageRequest{Page: 3, PageSize: 25}
	if got := req.Offset(); got != 50 {
		t.Errorf("Offset = %d, want 50", got)
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	values := url.Values{}
	values.Set("page", "4")
	values.Set("page_size", "10")

	req := pagination.PageRequestFromQuery(values, defaultConfig())
	if req.Page != 4 || req.PageSize != 10 {
		t.Errorf("req = %+v, want Page:4 PageSize:10", req)
	}
}

func TestPageRequestFromQueryInvalid(t *testing.T) {
	values := url.Values{}
	values.Set("page", "abc")

	req := pagination.PageRequestFromQuery(values, defaultConfig())
	if req.Page != 1 || req.PageSize != 20 {
		t.Errorf("req = %+v, want normalized defaults", req)
	}
}

func TestNewPageResult(t *testing.T) {
	result := pagination.NewPageResult([]int{1, 2, 3}, 7, 1, 3)

	if result.Total != 7 {
		t.Errorf("Total = %d, want 7", result.Total)
	}
	if result.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", result.TotalPages)
	}
}

func TestNewPageResultNilData(t *testing.T) {
	result := pagination.NewPageResult[int](nil, 0, 1, 10)

	if result.Data == nil {
		t.Error("Data should be an empty slice, not nil")
	}
	if result.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", result.TotalPages)
	}
}
