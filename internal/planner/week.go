package planner

import "github.com/tgienger/smartplanner/internal/models"

// Week is the calendar projection of one window: sorted buckets of tasks.
// It is disposable and rebuilt whenever the window or the fetched tasks change.
type Week struct {
	Window  Window
	Buckets [][]models.Task
	Dropped int
}

// NewWeek groups tasks into the window and sorts each bucket.
func NewWeek(w Window, tasks []models.Task) *Week {
	buckets, dropped := GroupByDayCount(tasks, w)
	c := titleCollator()
	for _, b := range buckets {
		sortInPlace(b, c)
	}
	return &Week{Window: w, Buckets: buckets, Dropped: dropped}
}

// Day returns the bucket at index i, or nil when out of range.
func (wk *Week) Day(i int) []models.Task {
	if i < 0 || i >= len(wk.Buckets) {
		return nil
	}
	return wk.Buckets[i]
}

// Len returns the number of tasks across all buckets.
func (wk *Week) Len() int {
	n := 0
	for _, b := range wk.Buckets {
		n += len(b)
	}
	return n
}

// Find returns the bucket and position of the task with the given id.
func (wk *Week) Find(id int64) (day, pos int, ok bool) {
	for d, b := range wk.Buckets {
		for p, t := range b {
			if t.ID == id {
				return d, p, true
			}
		}
	}
	return -1, -1, false
}

// Put inserts t or replaces the task with the same id, moving it to the bucket
// for its date. A task dated outside the window is removed from the week.
// Call it only after the repository has confirmed the write.
func (wk *Week) Put(t models.Task) {
	wk.Remove(t.ID)
	i := wk.Window.Index(t.DateCreated)
	if i < 0 {
		return
	}
	wk.Buckets[i] = append(wk.Buckets[i], t)
	sortInPlace(wk.Buckets[i], titleCollator())
}

// Remove drops the task with the given id. It reports whether one was found.
func (wk *Week) Remove(id int64) bool {
	d, p, ok := wk.Find(id)
	if !ok {
		return false
	}
	b := wk.Buckets[d]
	wk.Buckets[d] = append(b[:p:p], b[p+1:]...)
	return true
}

// Untag clears a deleted tag from every task in the week.
func (wk *Week) Untag(tagID int64) {
	for _, b := range wk.Buckets {
		for i := range b {
			if b[i].Tagged(tagID) {
				b[i].TagID = nil
				b[i].TagName = models.NoTagName
			}
		}
	}
}
