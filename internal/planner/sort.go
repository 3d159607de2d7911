package planner

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tgienger/smartplanner/internal/models"
)

// titleCollator compares titles the way a user reads them: letters before
// case, so "apple" sorts next to "Apple" rather than after "Zebra".
// A Collator is not safe for concurrent use, so each sort builds its own.
func titleCollator() *collate.Collator {
	return collate.New(language.English)
}

// SortTasks returns a new slice ordered by priority (High first) and then by
// title. Tasks with equal priority and title keep their input order.
func SortTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	sortInPlace(out, titleCollator())
	return out
}

func sortInPlace(tasks []models.Task, c *collate.Collator) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return c.CompareString(a.Title, b.Title) < 0
	})
}
