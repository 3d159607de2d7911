package planner

import (
	"reflect"
	"testing"
	"time"

	"github.com/tgienger/smartplanner/internal/models"
)

func task(id int64, title string, p models.Priority, date string) models.Task {
	return models.Task{
		ID:          id,
		Title:       title,
		Priority:    p,
		DateCreated: models.MustParseDate(date),
	}
}

func titles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func ids(tasks []models.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestWeekOf(t *testing.T) {
	// 2024-01-10 is a Wednesday.
	selected := models.MustParseDate("2024-01-10")

	tests := []struct {
		name  string
		start time.Weekday
		first string
		last  string
	}{
		{"sunday start", time.Sunday, "2024-01-07", "2024-01-13"},
		{"monday start", time.Monday, "2024-01-08", "2024-01-14"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := WeekOf(selected, tt.start)
			if len(w) != DaysPerWeek {
				t.Fatalf("len=%d, want %d", len(w), DaysPerWeek)
			}
			if got := w.Start().String(); got != tt.first {
				t.Errorf("start=%s, want %s", got, tt.first)
			}
			if got := w.End().String(); got != tt.last {
				t.Errorf("end=%s, want %s", got, tt.last)
			}
			for i := 1; i < len(w); i++ {
				if !w[i].SameDay(w[i-1].AddDays(1)) {
					t.Fatalf("dates not consecutive at %d: %s after %s", i, w[i], w[i-1])
				}
			}
		})
	}
}

func TestWeekOfOnStartDay(t *testing.T) {
	monday := models.MustParseDate("2024-01-08")
	w := WeekOf(monday, time.Monday)
	if !w.Start().SameDay(monday) {
		t.Fatalf("start=%s, want %s", w.Start(), monday)
	}
}

func TestWindowShift(t *testing.T) {
	w := WeekOf(models.MustParseDate("2024-12-30"), time.Monday)
	next := w.Next()
	if got := next.Start().String(); got != "2025-01-06" {
		t.Errorf("next start=%s", got)
	}
	if got := next.Prev().Start().String(); got != w.Start().String() {
		t.Errorf("prev of next=%s, want %s", got, w.Start())
	}
}

func TestGroupByDayScenario(t *testing.T) {
	w := WeekOf(models.MustParseDate("2024-01-07"), time.Sunday)
	tasks := []models.Task{
		task(1, "A", models.PriorityMedium, "2024-01-09"),
		task(2, "B", models.PriorityMedium, "2024-01-09"),
		task(3, "C", models.PriorityMedium, "2024-01-20"),
	}

	buckets, dropped := GroupByDayCount(tasks, w)
	if len(buckets) != 7 {
		t.Fatalf("buckets=%d, want 7", len(buckets))
	}
	if dropped != 1 {
		t.Errorf("dropped=%d, want 1", dropped)
	}
	for i, b := range buckets {
		if i == 2 {
			if got := titles(b); !reflect.DeepEqual(got, []string{"A", "B"}) {
				t.Errorf("bucket 2=%v, want [A B]", got)
			}
			continue
		}
		if len(b) != 0 {
			t.Errorf("bucket %d=%v, want empty", i, titles(b))
		}
	}
}

func TestGroupByDayPartitions(t *testing.T) {
	w := WeekOf(models.MustParseDate("2024-03-04"), time.Monday)
	var tasks []models.Task
	inWindow := 0
	start := models.MustParseDate("2024-02-25")
	for i := 0; i < 30; i++ {
		d := start.AddDays(i % 20)
		if w.Contains(d) {
			inWindow++
		}
		tasks = append(tasks, models.Task{ID: int64(i + 1), Title: "t", DateCreated: d})
	}

	buckets := GroupByDay(tasks, w)
	seen := map[int64]bool{}
	total := 0
	for i, b := range buckets {
		for _, tk := range b {
			if seen[tk.ID] {
				t.Fatalf("task %d appears twice", tk.ID)
			}
			seen[tk.ID] = true
			if !tk.DateCreated.SameDay(w[i]) {
				t.Errorf("task %d dated %s in bucket for %s", tk.ID, tk.DateCreated, w[i])
			}
		}
		total += len(b)
	}
	if total != inWindow {
		t.Errorf("bucketed %d tasks, want %d", total, inWindow)
	}
}

func TestGroupByDayEmpty(t *testing.T) {
	w := WeekOf(models.Today(), time.Monday)
	buckets := GroupByDay(nil, w)
	if len(buckets) != 7 {
		t.Fatalf("buckets=%d, want 7", len(buckets))
	}
	for i, b := range buckets {
		if b == nil || len(b) != 0 {
			t.Errorf("bucket %d=%v, want empty non-nil", i, b)
		}
	}
}

func TestGroupByDayArbitraryLength(t *testing.T) {
	w := Window{models.MustParseDate("2024-05-01"), models.MustParseDate("2024-05-02"), models.MustParseDate("2024-05-03")}
	buckets := GroupByDay([]models.Task{task(1, "x", models.PriorityLow, "2024-05-03")}, w)
	if len(buckets) != 3 || len(buckets[2]) != 1 {
		t.Fatalf("buckets=%v", buckets)
	}
}

func TestGroupByDayIgnoresTimeOfDay(t *testing.T) {
	w := WeekOf(models.MustParseDate("2024-01-07"), time.Sunday)
	late := models.Task{ID: 1, DateCreated: models.DateOf(time.Date(2024, 1, 8, 23, 59, 0, 0, time.Local))}
	buckets := GroupByDay([]models.Task{late}, w)
	if len(buckets[1]) != 1 {
		t.Fatalf("task not in Monday bucket: %v", buckets)
	}
}

func TestSortTasksScenario(t *testing.T) {
	in := []models.Task{
		{ID: 1, Title: "Zeta", Priority: models.PriorityLow},
		{ID: 2, Title: "Alpha", Priority: models.PriorityHigh},
		{ID: 3, Title: "Beta", Priority: models.PriorityHigh},
	}
	got := SortTasks(in)
	if want := []string{"Alpha", "Beta", "Zeta"}; !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("got %v, want %v", titles(got), want)
	}
	if in[0].Title != "Zeta" {
		t.Errorf("input was modified")
	}
}

func TestSortTasksCollation(t *testing.T) {
	in := []models.Task{
		{ID: 1, Title: "cherry", Priority: models.PriorityMedium},
		{ID: 2, Title: "Banana", Priority: models.PriorityMedium},
		{ID: 3, Title: "apple", Priority: models.PriorityMedium},
	}
	got := SortTasks(in)
	if want := []string{"apple", "Banana", "cherry"}; !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("got %v, want %v", titles(got), want)
	}
}

func TestSortTasksStableAndIdempotent(t *testing.T) {
	in := []models.Task{
		{ID: 1, Title: "Same", Priority: models.PriorityLow},
		{ID: 2, Title: "Same", Priority: models.PriorityHigh},
		{ID: 3, Title: "Same", Priority: models.PriorityLow},
		{ID: 4, Title: "Same", Priority: models.PriorityHigh},
		{ID: 5, Title: "Other", Priority: models.PriorityLow},
	}
	once := SortTasks(in)
	if want := []int64{2, 4, 5, 1, 3}; !reflect.DeepEqual(ids(once), want) {
		t.Fatalf("got %v, want %v", ids(once), want)
	}
	twice := SortTasks(once)
	if !reflect.DeepEqual(ids(once), ids(twice)) {
		t.Fatalf("not idempotent: %v then %v", ids(once), ids(twice))
	}
}

func TestNewWeekSortsBuckets(t *testing.T) {
	w := WeekOf(models.MustParseDate("2024-01-07"), time.Sunday)
	wk := NewWeek(w, []models.Task{
		task(1, "Zeta", models.PriorityLow, "2024-01-09"),
		task(2, "Alpha", models.PriorityHigh, "2024-01-09"),
		task(3, "Out", models.PriorityHigh, "2024-02-01"),
	})
	if got := titles(wk.Day(2)); !reflect.DeepEqual(got, []string{"Alpha", "Zeta"}) {
		t.Errorf("day 2=%v", got)
	}
	if wk.Len() != 2 || wk.Dropped != 1 {
		t.Errorf("len=%d dropped=%d", wk.Len(), wk.Dropped)
	}
}

func TestWeekPutAndRemove(t *testing.T) {
	w := WeekOf(models.MustParseDate("2024-01-07"), time.Sunday)
	wk := NewWeek(w, []models.Task{task(1, "Beta", models.PriorityMedium, "2024-01-09")})

	wk.Put(task(2, "Alpha", models.PriorityMedium, "2024-01-09"))
	if got := titles(wk.Day(2)); !reflect.DeepEqual(got, []string{"Alpha", "Beta"}) {
		t.Fatalf("after insert day 2=%v", got)
	}

	moved := task(1, "Beta", models.PriorityMedium, "2024-01-12")
	wk.Put(moved)
	if got := titles(wk.Day(2)); !reflect.DeepEqual(got, []string{"Alpha"}) {
		t.Errorf("after move day 2=%v", got)
	}
	if got := titles(wk.Day(5)); !reflect.DeepEqual(got, []string{"Beta"}) {
		t.Errorf("after move day 5=%v", got)
	}

	wk.Put(task(2, "Alpha", models.PriorityMedium, "2030-01-01"))
	if _, _, ok := wk.Find(2); ok {
		t.Errorf("task moved out of window is still present")
	}

	if !wk.Remove(1) {
		t.Errorf("remove existing returned false")
	}
	if wk.Remove(1) {
		t.Errorf("remove missing returned true")
	}
	if wk.Len() != 0 {
		t.Errorf("len=%d, want 0", wk.Len())
	}
}

func TestWeekUntag(t *testing.T) {
	tag := int64(7)
	w := WeekOf(models.MustParseDate("2024-01-07"), time.Sunday)
	tk := task(1, "x", models.PriorityLow, "2024-01-07")
	tk.TagID = &tag
	tk.TagName = "work"
	wk := NewWeek(w, []models.Task{tk})
	wk.Untag(tag)
	got := wk.Day(0)[0]
	if got.TagID != nil || got.Label() != models.NoTagName {
		t.Errorf("task still tagged: %+v", got)
	}
}
