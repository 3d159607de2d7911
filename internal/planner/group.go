package planner

import "github.com/tgienger/smartplanner/internal/models"

// GroupByDay partitions tasks into one bucket per window date, matching on
// calendar date only. Input order is preserved within each bucket. Tasks whose
// date is outside the window are left out.
func GroupByDay(tasks []models.Task, w Window) [][]models.Task {
	buckets, _ := GroupByDayCount(tasks, w)
	return buckets
}

// GroupByDayCount is GroupByDay that also reports how many tasks fell outside
// the window.
func GroupByDayCount(tasks []models.Task, w Window) ([][]models.Task, int) {
	buckets := make([][]models.Task, len(w))
	for i := range buckets {
		buckets[i] = []models.Task{}
	}
	dropped := 0
	for _, t := range tasks {
		i := w.Index(t.DateCreated)
		if i < 0 {
			dropped++
			continue
		}
		buckets[i] = append(buckets[i], t)
	}
	return buckets, dropped
}
