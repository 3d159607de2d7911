package planner

import "strconv"

const (
	// PageSize is the number of tasks shown per filter page.
	PageSize = 8
	// MaxPageButtons bounds the number of entries in the page bar.
	MaxPageButtons = 10
)

// TotalPages returns ceil(n/size), and 0 for an empty result.
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Page returns the 1-based page of items. Pages past the end are empty.
func Page[T any](items []T, page, size int) []T {
	if page < 1 || size <= 0 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(items) {
		return nil
	}
	end := min(start+size, len(items))
	return items[start:end]
}

// PageButton is one entry of the page bar: a page number or an ellipsis.
type PageButton struct {
	Page int // 0 for an ellipsis
}

// Ellipsis reports whether the button is a gap marker.
func (b PageButton) Ellipsis() bool { return b.Page == 0 }

func (b PageButton) String() string {
	if b.Ellipsis() {
		return "..."
	}
	return strconv.Itoa(b.Page)
}

// PageNumbers returns the page bar for the current page. When every page fits
// all are listed; otherwise the first and last page stay visible and an
// ellipsis marks each elided run.
func PageNumbers(current, total, maxButtons int) []PageButton {
	var out []PageButton
	add := func(from, to int) {
		for p := from; p <= to; p++ {
			out = append(out, PageButton{Page: p})
		}
	}
	gap := PageButton{}

	if total <= maxButtons {
		add(1, total)
		return out
	}

	middle := maxButtons / 2
	switch {
	case current <= middle+1:
		add(1, maxButtons-2)
		out = append(out, gap)
		add(total, total)
	case current >= total-middle:
		add(1, 1)
		out = append(out, gap)
		add(total-(maxButtons-3), total)
	default:
		add(1, 1)
		out = append(out, gap)
		add(current-2, current+2)
		out = append(out, gap)
		add(total, total)
	}
	return out
}
