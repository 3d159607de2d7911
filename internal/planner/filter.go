package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tgienger/smartplanner/internal/models"
)

// Completion is the tri-state completion predicate of a filter.
type Completion int

const (
	CompletionAll Completion = iota
	CompletionDone
	CompletionOpen
)

func (c Completion) String() string {
	switch c {
	case CompletionDone:
		return "true"
	case CompletionOpen:
		return "false"
	}
	return "all"
}

// ParseCompletion reads "true", "false" or "all" (empty means all).
func ParseCompletion(s string) (Completion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return CompletionAll, nil
	case "true":
		return CompletionDone, nil
	case "false":
		return CompletionOpen, nil
	}
	return CompletionAll, fmt.Errorf("completed must be true, false or all, got %q", s)
}

// SortOption selects the ordering of a filtered result.
type SortOption string

const (
	SortDateDesc        SortOption = "date_desc"
	SortDateAsc         SortOption = "date_asc"
	SortPriorityDesc    SortOption = "priority_desc"
	SortPriorityAsc     SortOption = "priority_asc"
	SortCompletedFirst  SortOption = "completed"
	SortIncompleteFirst SortOption = "not_completed"
)

// DefaultSortOption matches the filter page's initial ordering.
const DefaultSortOption = SortDateDesc

// SortOptions lists every option in display order.
var SortOptions = []SortOption{
	SortDateDesc,
	SortDateAsc,
	SortPriorityDesc,
	SortPriorityAsc,
	SortCompletedFirst,
	SortIncompleteFirst,
}

// Label is the human-readable name of the option.
func (o SortOption) Label() string {
	switch o {
	case SortDateDesc:
		return "Date Created (Newest)"
	case SortDateAsc:
		return "Date Created (Oldest)"
	case SortPriorityDesc:
		return "Priority (High to Low)"
	case SortPriorityAsc:
		return "Priority (Low to High)"
	case SortCompletedFirst:
		return "Completed Tasks First"
	case SortIncompleteFirst:
		return "Not Completed Tasks First"
	}
	return string(o)
}

// ParseSortOption validates a sort option name. Empty selects the default.
func ParseSortOption(s string) (SortOption, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultSortOption, nil
	}
	for _, o := range SortOptions {
		if string(o) == s {
			return o, nil
		}
	}
	return DefaultSortOption, fmt.Errorf("unknown sort option %q", s)
}

// FilterSpec is the set of predicates and the ordering used by the filter view.
// Every predicate is optional; the zero value matches everything.
type FilterSpec struct {
	Tags      []int64
	Completed Completion
	Priority  models.Priority
	StartDate *models.Date
	EndDate   *models.Date
	Sort      SortOption
}

// Match reports whether t satisfies every predicate of the spec.
func (f FilterSpec) Match(t models.Task) bool {
	if len(f.Tags) > 0 {
		if t.TagID == nil {
			return false
		}
		found := false
		for _, id := range f.Tags {
			if id == *t.TagID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	switch f.Completed {
	case CompletionDone:
		if !t.IsCompleted {
			return false
		}
	case CompletionOpen:
		if t.IsCompleted {
			return false
		}
	}

	if f.Priority != models.PriorityNone && t.Priority != f.Priority {
		return false
	}

	if f.StartDate != nil && t.DateCreated.Compare(*f.StartDate) < 0 {
		return false
	}
	if f.EndDate != nil && t.DateCreated.Compare(*f.EndDate) > 0 {
		return false
	}
	return true
}

// Filter applies the spec's predicates to all and orders the result by the
// spec's sort option. The input is not modified.
func Filter(all []models.Task, f FilterSpec) []models.Task {
	out := make([]models.Task, 0, len(all))
	for _, t := range all {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	sortBy(out, f.Sort)
	return out
}

// SortBy returns a copy of tasks ordered by opt. Ties keep their input order.
func SortBy(tasks []models.Task, opt SortOption) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	sortBy(out, opt)
	return out
}

func sortBy(tasks []models.Task, opt SortOption) {
	var less func(a, b models.Task) bool
	switch opt {
	case SortDateAsc:
		less = func(a, b models.Task) bool { return a.DateCreated.Compare(b.DateCreated) < 0 }
	case SortPriorityDesc:
		less = func(a, b models.Task) bool { return a.Priority > b.Priority }
	case SortPriorityAsc:
		less = func(a, b models.Task) bool { return a.Priority < b.Priority }
	case SortCompletedFirst:
		less = func(a, b models.Task) bool { return a.IsCompleted && !b.IsCompleted }
	case SortIncompleteFirst:
		less = func(a, b models.Task) bool { return !a.IsCompleted && b.IsCompleted }
	default:
		less = func(a, b models.Task) bool { return a.DateCreated.Compare(b.DateCreated) > 0 }
	}
	sort.SliceStable(tasks, func(i, j int) bool { return less(tasks[i], tasks[j]) })
}
