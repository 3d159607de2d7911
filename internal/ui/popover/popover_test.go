package popover

import (
	"testing"

	"github.com/tgienger/smartplanner/internal/models"
)

func TestNext(t *testing.T) {
	events := []Event{Select, Edit, Save, Cancel, Dismiss}
	allowed := map[State]map[Event]State{
		Closed:  {Select: Viewing},
		Viewing: {Edit: Editing, Dismiss: Closed},
		Editing: {Save: Viewing, Cancel: Viewing, Dismiss: Closed},
	}
	for from, table := range allowed {
		for _, e := range events {
			got, ok := Next(from, e)
			want, wantOK := table[e]
			if !wantOK {
				want = from
			}
			if got != want || ok != wantOK {
				t.Errorf("%s --%s--> %s (ok=%v), want %s (ok=%v)", from, e, got, ok, want, wantOK)
			}
		}
	}
}

func TestPopoverLifecycle(t *testing.T) {
	var p Popover
	task := models.Task{ID: 4, Title: "write report"}

	if p.Fire(Edit) {
		t.Fatal("edit accepted while closed")
	}
	if !p.SelectTask(task) || p.State() != Viewing || p.Task().ID != 4 {
		t.Fatalf("select: state=%s task=%+v", p.State(), p.Task())
	}
	if p.SelectTask(models.Task{ID: 5}) {
		t.Fatal("second select accepted while open")
	}
	if p.Task().ID != 4 {
		t.Errorf("rejected select replaced the task")
	}
	if !p.Fire(Edit) || p.State() != Editing {
		t.Fatalf("edit: state=%s", p.State())
	}

	updated := task
	updated.Title = "write the report"
	p.Refresh(updated)
	p.Refresh(models.Task{ID: 9, Title: "other"})
	if p.Task().Title != "write the report" {
		t.Errorf("Refresh: task=%+v", p.Task())
	}

	if !p.Fire(Save) || p.State() != Viewing {
		t.Fatalf("save: state=%s", p.State())
	}
	if !p.Fire(Dismiss) || p.Open() {
		t.Fatalf("dismiss: state=%s", p.State())
	}
	if p.Task().ID != 0 {
		t.Errorf("task kept after dismiss: %+v", p.Task())
	}
}

func TestSide(t *testing.T) {
	tests := []struct {
		name                         string
		anchorRight, width, viewport int
		want                         Placement
	}{
		{"fits right", 20, 30, 80, Right},
		{"exact fit", 50, 30, 80, Right},
		{"overflows", 51, 30, 80, Left},
		{"last column", 80, 30, 80, Left},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Side(tt.anchorRight, tt.width, tt.viewport); got != tt.want {
				t.Errorf("Side=%v, want %v", got, tt.want)
			}
		})
	}
}
