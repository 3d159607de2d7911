package views

import (
	"reflect"
	"testing"
	"time"

	"github.com/tgienger/smartplanner/internal/api"
	"github.com/tgienger/smartplanner/internal/models"
	"github.com/tgienger/smartplanner/internal/ui/popover"
)

// 2024-01-10 is a Wednesday; with a Sunday start the window is 01-07..01-13.
var wednesday = models.MustParseDate("2024-01-10")

func weekFixture() *fakeRepo {
	repo := newFakeRepo()
	repo.tags = []models.Tag{{ID: 7, Name: "work"}}
	tag := int64(7)
	repo.tasks = []models.Task{
		{ID: 1, Title: "Zeta", Priority: models.PriorityLow, DateCreated: wednesday},
		{ID: 2, Title: "Alpha", Priority: models.PriorityHigh, DateCreated: wednesday, TagID: &tag, TagName: "work"},
		{ID: 3, Title: "Next week", Priority: models.PriorityMedium, DateCreated: models.MustParseDate("2024-01-15")},
	}
	return repo
}

func loadedWeek(t *testing.T, repo *fakeRepo) *WeekView {
	t.Helper()
	v := NewWeekView(repo, testSession, time.Sunday, wednesday)
	drive(t, v, v.Init())
	return v
}

func dayTitles(v *WeekView, i int) []string {
	var out []string
	for _, t := range v.Week().Day(i) {
		out = append(out, t.Title)
	}
	return out
}

func TestWeekViewLoadsWindow(t *testing.T) {
	repo := weekFixture()
	v := loadedWeek(t, repo)

	if len(repo.fetches) != 1 || repo.fetches[0].Start().String() != "2024-01-07" {
		t.Fatalf("fetches=%v", repo.fetches)
	}
	if got := dayTitles(v, 3); !reflect.DeepEqual(got, []string{"Alpha", "Zeta"}) {
		t.Errorf("wednesday=%v", got)
	}
	if v.Week().Len() != 2 {
		t.Errorf("len=%d, want 2", v.Week().Len())
	}
	if v.loading {
		t.Error("still loading")
	}
	if len(v.tags) != 1 {
		t.Errorf("tags=%v", v.tags)
	}
}

func TestWeekViewNavigation(t *testing.T) {
	repo := weekFixture()
	v := loadedWeek(t, repo)

	press(t, v, "l", "l", "l")
	if got := v.Selected().String(); got != "2024-01-13" {
		t.Fatalf("selected=%s", got)
	}
	if len(repo.fetches) != 1 {
		t.Errorf("moving inside the window fetched again: %d", len(repo.fetches))
	}

	press(t, v, "l")
	if got := v.Window().Start().String(); got != "2024-01-14" {
		t.Fatalf("window start=%s", got)
	}
	if len(repo.fetches) != 2 {
		t.Errorf("fetches=%d, want 2", len(repo.fetches))
	}
	if got := dayTitles(v, 1); !reflect.DeepEqual(got, []string{"Next week"}) {
		t.Errorf("monday=%v", got)
	}

	press(t, v, "[")
	if got := v.Selected().String(); got != "2024-01-07" {
		t.Errorf("after [ selected=%s", got)
	}
}

func TestWeekViewDiscardsStaleResponse(t *testing.T) {
	repo := weekFixture()
	v := loadedWeek(t, repo)
	oldStart := v.Window().Start()

	// Switch weeks but hold the new response back.
	v.Update(keyPress("]"))
	if v.Window().Start().SameDay(oldStart) {
		t.Fatal("window did not move")
	}

	late := []models.Task{{ID: 9, Title: "late", DateCreated: wednesday}}
	v.Update(weekLoadedMsg{start: oldStart, tasks: late})
	if v.Week().Len() != 0 {
		t.Fatalf("stale response applied: %d tasks", v.Week().Len())
	}
	if !v.loading {
		t.Error("stale response cleared the loading flag")
	}

	fresh := []models.Task{{ID: 3, Title: "Next week", DateCreated: models.MustParseDate("2024-01-17")}}
	v.Update(weekLoadedMsg{start: v.Window().Start(), tasks: fresh})
	if v.Week().Len() != 1 || v.loading {
		t.Errorf("current response not applied: len=%d loading=%v", v.Week().Len(), v.loading)
	}
}

func TestWeekViewToggle(t *testing.T) {
	repo := weekFixture()
	v := loadedWeek(t, repo)

	press(t, v, " ")
	p, ok := repo.updates[2]
	if !ok || p.IsCompleted == nil || !*p.IsCompleted {
		t.Fatalf("patch=%+v", p)
	}
	if p.Title != nil || p.TagID.Set {
		t.Errorf("toggle sent more than the completion flag: %+v", p)
	}
	if !v.Week().Day(3)[0].IsCompleted {
		t.Error("projection not updated")
	}
}

func TestWeekViewFailedWriteLeavesProjection(t *testing.T) {
	repo := weekFixture()
	v := loadedWeek(t, repo)
	repo.writeErr = &api.Error{Op: "update task", Kind: api.KindUnavailable, Message: "repository down"}

	press(t, v, " ")
	if v.Week().Day(3)[0].IsCompleted {
		t.Error("projection changed after a failed write")
	}
	if !v.status.err || v.status.text != "repository down" {
		t.Errorf("status=%+v", v.status)
	}
	if v.saving {
		t.Error("still saving")
	}

	press(t, v, "d", "y")
	if v.Week().Len() != 2 {
		t.Errorf("task removed after a failed delete")
	}
}

func TestWeekViewCreate(t *testing.T) {
	repo := weekFixture()
	v := loadedWeek(t, repo)

	press(t, v, "n")
	if !v.creating {
		t.Fatal("form not open")
	}
	press(t, v, "Buy milk", "ctrl+s")

	if len(repo.created) != 1 {
		t.Fatalf("created=%v", repo.created)
	}
	got := repo.created[0]
	if got.Title != "Buy milk" || !got.DateCreated.SameDay(wednesday) || got.Priority != models.PriorityMedium {
		t.Errorf("sent %+v", got)
	}
	if v.creating {
		t.Error("form still open")
	}
	if _, _, ok := v.Week().Find(101); !ok {
		t.Errorf("created task missing from projection: %v", dayTitles(v, 3))
	}
}

func TestWeekViewCreateValidation(t *testing.T) {
	repo := weekFixture()
	v := loadedWeek(t, repo)

	press(t, v, "n", "ctrl+s")
	if len(repo.created) != 0 {
		t.Fatal("empty title was sent")
	}
	if !v.creating || !v.status.err {
		t.Errorf("creating=%v status=%+v", v.creating, v.status)
	}

	press(t, v, "esc")
	if v.creating {
		t.Error("esc did not close the form")
	}
}

func TestWeekViewPopoverEdit(t *testing.T) {
	repo := weekFixture()
	v := loadedWeek(t, repo)

	press(t, v, "enter")
	if v.popover.State() != popover.Viewing || v.popover.Task().ID != 2 {
		t.Fatalf("state=%s task=%d", v.popover.State(), v.popover.Task().ID)
	}

	press(t, v, "e")
	if v.popover.State() != popover.Editing {
		t.Fatalf("state=%s", v.popover.State())
	}
	press(t, v, "esc")
	if v.popover.State() != popover.Viewing {
		t.Fatalf("cancel: state=%s", v.popover.State())
	}

	press(t, v, "e", "!", "ctrl+s")
	if v.popover.State() != popover.Viewing {
		t.Fatalf("save: state=%s", v.popover.State())
	}
	p := repo.updates[2]
	if p.Title == nil || *p.Title != "Alpha!" {
		t.Errorf("patch title=%v", p.Title)
	}
	if !p.TagID.Valid || p.TagID.ID != 7 {
		t.Errorf("patch tag=%+v", p.TagID)
	}
	if v.popover.Task().Title != "Alpha!" {
		t.Errorf("popover shows %q", v.popover.Task().Title)
	}
	if _, _, ok := v.Week().Find(2); !ok || v.Week().Day(3)[0].Title != "Alpha!" {
		t.Errorf("projection=%v", dayTitles(v, 3))
	}

	press(t, v, "esc")
	if v.popover.Open() {
		t.Error("esc did not dismiss")
	}
}

func TestWeekViewDelete(t *testing.T) {
	repo := weekFixture()
	v := loadedWeek(t, repo)

	press(t, v, "enter", "d", "n")
	if len(repo.deleted) != 0 || !v.popover.Open() {
		t.Fatalf("declined delete went through: %v", repo.deleted)
	}

	press(t, v, "d", "y")
	if !reflect.DeepEqual(repo.deleted, []int64{2}) {
		t.Fatalf("deleted=%v", repo.deleted)
	}
	if v.popover.Open() {
		t.Error("popover still showing the deleted task")
	}
	if got := dayTitles(v, 3); !reflect.DeepEqual(got, []string{"Zeta"}) {
		t.Errorf("wednesday=%v", got)
	}
}

func TestWeekViewExpiredSession(t *testing.T) {
	repo := weekFixture()
	repo.fetchErr = &api.Error{Op: "fetch", Kind: api.KindNotAuthenticated, Status: 401, Message: "Invalid token"}
	v := NewWeekView(repo, testSession, time.Sunday, wednesday)

	nav := drive(t, v, v.Init())
	if len(nav) != 1 {
		t.Fatalf("nav=%v", nav)
	}
	out, ok := nav[0].(LoggedOut)
	if !ok || out.Reason != "Invalid token" {
		t.Errorf("got %#v", nav[0])
	}
}

func TestWeekViewUntag(t *testing.T) {
	v := loadedWeek(t, weekFixture())
	v.Untag(7)
	for _, tk := range v.Week().Day(3) {
		if tk.TagID != nil {
			t.Errorf("%s still tagged", tk.Title)
		}
	}
	if len(v.tags) != 0 {
		t.Errorf("tags=%v", v.tags)
	}
}

func TestTaskText(t *testing.T) {
	tk := models.Task{Title: "Call", Description: "about the lease", Priority: models.PriorityHigh, DateCreated: wednesday}
	want := "Call\n2024-01-10 · High priority · No Tag\n\nabout the lease"
	if got := taskText(tk); got != want {
		t.Errorf("got %q", got)
	}
}

func TestFailureKinds(t *testing.T) {
	st, cmd := failure(rejected("Tag name already exists"))
	if cmd != nil || st.text != "Tag name already exists" || !st.err {
		t.Errorf("rejected: %+v", st)
	}
	st, cmd = failure(api.ErrNotAuthenticated)
	if cmd == nil || st.text != "please log in" {
		t.Errorf("not authenticated: %+v", st)
	}
}
