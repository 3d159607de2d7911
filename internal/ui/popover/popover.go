// Package popover is the task detail overlay of the calendar, modelled as a
// small state machine driven by discrete events.
package popover

import "github.com/tgienger/smartplanner/internal/models"

// State is where the popover is in its lifecycle.
type State int

const (
	Closed State = iota
	Viewing
	Editing
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	}
	return "closed"
}

// Event is a user action that may move the popover to another State.
type Event int

const (
	Select Event = iota
	Edit
	Save
	Cancel
	Dismiss
)

func (e Event) String() string {
	switch e {
	case Select:
		return "select"
	case Edit:
		return "edit"
	case Save:
		return "save"
	case Cancel:
		return "cancel"
	}
	return "dismiss"
}

// Next returns the state reached from s on e. ok is false when the pair has
// no transition, in which case s is returned unchanged.
func Next(s State, e Event) (State, bool) {
	switch {
	case s == Closed && e == Select:
		return Viewing, true
	case s == Viewing && e == Edit:
		return Editing, true
	case s == Editing && (e == Save || e == Cancel):
		return Viewing, true
	case s != Closed && e == Dismiss:
		return Closed, true
	}
	return s, false
}

// Popover tracks the overlay state and the task it shows.
type Popover struct {
	state State
	task  models.Task
}

// State returns the current state.
func (p *Popover) State() State { return p.state }

// Open reports whether the popover is showing a task.
func (p *Popover) Open() bool { return p.state != Closed }

// Task returns the selected task. It is only meaningful while Open.
func (p *Popover) Task() models.Task { return p.task }

// Fire applies e and reports whether it was accepted.
func (p *Popover) Fire(e Event) bool {
	next, ok := Next(p.state, e)
	if !ok {
		return false
	}
	p.state = next
	if next == Closed {
		p.task = models.Task{}
	}
	return true
}

// SelectTask opens the popover on t. It fails if the popover is already open.
func (p *Popover) SelectTask(t models.Task) bool {
	if !p.Fire(Select) {
		return false
	}
	p.task = t
	return true
}

// Refresh replaces the shown task after a confirmed write.
func (p *Popover) Refresh(t models.Task) {
	if p.Open() && p.task.ID == t.ID {
		p.task = t
	}
}

// Placement is the horizontal side of the anchor column the popover opens on.
type Placement int

const (
	Right Placement = iota
	Left
)

// Side places a popover of the given width next to an anchor whose right edge
// is at anchorRight. It opens to the right unless that would overflow the
// viewport.
func Side(anchorRight, width, viewport int) Placement {
	if anchorRight+width > viewport {
		return Left
	}
	return Right
}
