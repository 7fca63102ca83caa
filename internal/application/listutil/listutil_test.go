package listutil

import (
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"
)

// TestParsePageParams verifies page and per_page parsing with defaults.
func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name        string
		q           url.Values
		wantPage    int
		wantPerPage int
	}{
		{"defaults", url.Values{}, 1, DefaultPerPage},
		{"valid", url.Values{"page": {"3"}, "per_page": {"50"}}, 3, 50},
		{"per_page not allowed", url.Values{"per_page": {"25"}}, 1, DefaultPerPage},
		{"negative page", url.Values{"page": {"-1"}}, 1, DefaultPerPage},
		{"garbage", url.Values{"page": {"two"}, "per_page": {"lots"}}, 1, DefaultPerPage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePageParams(tt.q)
			if p.Page != tt.wantPage || p.PerPage != tt.wantPerPage {
				t.Errorf("got page=%d per_page=%d, want %d/%d", p.Page, p.PerPage, tt.wantPage, tt.wantPerPage)
			}
		})
	}
}

// TestParseFilterParams verifies search and filter extraction from query values.
func TestParseFilterParams(t *testing.T) {
	q := url.Values{"q": {" gst "}, "category": {"Academic"}, "tag": {"  "}, "unknown": {"x"}}
	f := ParseFilterParams(q, []string{"category", "tag"})
	if f.Search != "gst" {
		t.Errorf("expected search=gst, got %q", f.Search)
	}
	if f.Filters["category"] != "Academic" {
		t.Errorf("expected category=Academic, got %s", f.Filters["category"])
	}
	if _, ok := f.Filters["tag"]; ok {
		t.Error("blank filter value should be dropped")
	}
	if _, ok := f.Filters["unknown"]; ok {
		t.Error("unexpected filter key 'unknown'")
	}
}

// TestParseListParams verifies the combined parser.
func TestParseListParams(t *testing.T) {
	lp := ParseListParams(url.Values{"page": {"2"}, "tag": {"EXAMS"}}, []string{"tag"})
	if lp.Page != 2 || lp.PerPage != DefaultPerPage || lp.Filters["tag"] != "EXAMS" {
		t.Errorf("unexpected params: %+v", lp)
	}
}

// TestNewPageInfo verifies pagination metadata computation.
func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		perPage    int
		total      int
		wantPages  int
		wantPage   int
		wantOffset int
	}{
		{"basic", 1, 20, 85, 5, 1, 0},
		{"page2", 2, 20, 85, 5, 2, 20},
		{"lastPage", 5, 20, 85, 5, 5, 80},
		{"pageBeyondTotal", 10, 20, 85, 5, 5, 80},
		{"emptyList", 1, 20, 0, 1, 1, 0},
		{"exactFit", 1, 10, 10, 1, 1, 0},
		{"zeroPerPage", 1, 0, 45, 3, 1, 0},
		{"zeroPage", 0, 20, 45, 3, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pi := NewPageInfo(tt.page, tt.perPage, tt.total)
			if pi.TotalPages != tt.wantPages {
				t.Errorf("TotalPages: got %d, want %d", pi.TotalPages, tt.wantPages)
			}
			if pi.Page != tt.wantPage {
				t.Errorf("Page: got %d, want %d", pi.Page, tt.wantPage)
			}
			if pi.Offset() != tt.wantOffset {
				t.Errorf("Offset: got %d, want %d", pi.Offset(), tt.wantOffset)
			}
		})
	}
}

func TestNewPageInfo_PrevNext(t *testing.T) {
	tests := []struct {
		page, total      int
		wantPrev, wantNx bool
	}{
		{1, 0, false, false},
		{1, 45, false, true},
		{2, 45, true, true},
		{3, 45, true, false},
	}
	for _, tt := range tests {
		pi := NewPageInfo(tt.page, 20, tt.total)
		if pi.HasPrev != tt.wantPrev || pi.HasNext != tt.wantNx {
			t.Errorf("page %d of %d: hasPrev=%v hasNext=%v", tt.page, tt.total, pi.HasPrev, pi.HasNext)
		}
	}
}

func TestParseFilterParams_SearchCapped(t *testing.T) {
	long := strings.Repeat("é", MaxSearchRunes+20)
	f := ParseFilterParams(url.Values{"q": {long}}, nil)
	if n := utf8.RuneCountInString(f.Search); n != MaxSearchRunes {
		t.Errorf("expected %d runes, got %d", MaxSearchRunes, n)
	}
}
