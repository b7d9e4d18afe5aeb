package params

import (
	"net/url"
	"testing"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantPage   int
		wantOffset int
	}{
		{"defaults", "", defaultLimit, 1, 0},
		{"explicit", "limit=30&page=2", 30, 2, 30},
		{"limit clamped high", "limit=500", maxLimit, 1, 0},
		{"limit clamped low", "limit=-3", defaultLimit, 1, 0},
		{"bad page ignored", "page=zero", defaultLimit, 1, 0},
		{"negative page ignored", "page=-1", defaultLimit, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			p := ParsePagination(q)
			if p.Limit != tt.wantLimit || p.Page != tt.wantPage || p.Offset != tt.wantOffset {
				t.Errorf("got limit=%d page=%d offset=%d, want %d/%d/%d",
					p.Limit, p.Page, p.Offset, tt.wantLimit, tt.wantPage, tt.wantOffset)
			}
		})
	}
}

func TestComputeMeta(t *testing.T) {
	p := Pagination{Limit: 20, Page: 2, Offset: 20}
	p.ComputeMeta(45)

	if p.TotalPages != 3 {
		t.Errorf("total pages = %d, want 3", p.TotalPages)
	}
	if !p.HasNext || !p.HasPrev {
		t.Errorf("has_next=%v has_prev=%v, want true/true", p.HasNext, p.HasPrev)
	}

	last := Pagination{Limit: 20, Page: 3, Offset: 40}
	last.ComputeMeta(45)
	if last.HasNext {
		t.Error("last page reports has_next")
	}
}
