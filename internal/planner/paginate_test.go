package planner

import (
	"reflect"
	"strings"
	"testing"
)

func TestPage(t *testing.T) {
	items := make([]int, 17)
	for i := range items {
		items[i] = i + 1
	}

	if got := TotalPages(len(items), PageSize); got != 3 {
		t.Fatalf("TotalPages=%d, want 3", got)
	}
	sizes := []int{8, 8, 1}
	for i, want := range sizes {
		page := Page(items, i+1, PageSize)
		if len(page) != want {
			t.Errorf("page %d has %d items, want %d", i+1, len(page), want)
		}
	}
	if got := Page(items, 3, PageSize); !reflect.DeepEqual(got, []int{17}) {
		t.Errorf("last page=%v", got)
	}
	if got := Page(items, 4, PageSize); got != nil {
		t.Errorf("page past end=%v, want nil", got)
	}
	if got := Page(items, 0, PageSize); got != nil {
		t.Errorf("page 0=%v, want nil", got)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct{ n, size, want int }{
		{0, 8, 0},
		{1, 8, 1},
		{8, 8, 1},
		{9, 8, 2},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.n, tt.size); got != tt.want {
			t.Errorf("TotalPages(%d,%d)=%d, want %d", tt.n, tt.size, got, tt.want)
		}
	}
}

func bar(buttons []PageButton) string {
	parts := make([]string, len(buttons))
	for i, b := range buttons {
		parts[i] = b.String()
	}
	return strings.Join(parts, " ")
}

func TestPageNumbers(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
		want           string
	}{
		{"no pages", 1, 0, ""},
		{"all fit", 2, 5, "1 2 3 4 5"},
		{"exactly max", 10, 10, "1 2 3 4 5 6 7 8 9 10"},
		{"near start", 1, 12, "1 2 3 4 5 6 7 8 ... 12"},
		{"start boundary", 6, 20, "1 2 3 4 5 6 7 8 ... 20"},
		{"middle", 7, 20, "1 ... 5 6 7 8 9 ... 20"},
		{"end boundary", 15, 20, "1 ... 13 14 15 16 17 18 19 20"},
		{"near end", 20, 20, "1 ... 13 14 15 16 17 18 19 20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bar(PageNumbers(tt.current, tt.total, MaxPageButtons)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPageButtonEllipsis(t *testing.T) {
	if !(PageButton{}).Ellipsis() {
		t.Error("zero button should be an ellipsis")
	}
	if (PageButton{Page: 3}).Ellipsis() {
		t.Error("numbered button reported as ellipsis")
	}
}
