package views

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/smartplanner/internal/api"
	"github.com/tgienger/smartplanner/internal/models"
	"github.com/tgienger/smartplanner/internal/planner"
	"github.com/tgienger/smartplanner/internal/session"
)

// fakeRepo is an in-memory Repository that records every call.
type fakeRepo struct {
	tasks []models.Task
	tags  []models.Tag

	fetchErr error
	writeErr error

	fetches   []planner.Window
	filters   []planner.FilterSpec
	created   []models.Task
	updates   map[int64]api.TaskPatch
	deleted   []int64
	tagsMade  []string
	tagsGone  []int64
	filterOut []models.Task

	loginErr  error
	logins    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{updates: map[int64]api.TaskPatch{}}
}

func (f *fakeRepo) Login(ctx context.Context, username, password string) (session.Session, error) {
	f.logins++
	if f.loginErr != nil {
		return session.Anonymous(), f.loginErr
	}
	return session.New("tok-"+username, username), nil
}

func (f *fakeRepo) Register(ctx context.Context, reg api.Registration) (session.Session, error) {
	return f.Login(ctx, reg.Username, reg.Password)
}

func (f *fakeRepo) FetchRange(ctx context.Context, sess session.Session, w planner.Window) ([]models.Task, error) {
	f.fetches = append(f.fetches, w)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []models.Task
	for _, t := range f.tasks {
		if w.Contains(t.DateCreated) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) FilterTasks(ctx context.Context, sess session.Session, spec planner.FilterSpec) ([]models.Task, error) {
	f.filters = append(f.filters, spec)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.filterOut, nil
}

func (f *fakeRepo) CreateTask(ctx context.Context, sess session.Session, t models.Task) (int64, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.created = append(f.created, t)
	return int64(100 + len(f.created)), nil
}

func (f *fakeRepo) UpdateTask(ctx context.Context, sess session.Session, id int64, p api.TaskPatch) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.updates[id] = p
	return nil
}

func (f *fakeRepo) DeleteTask(ctx context.Context, sess session.Session, id int64) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepo) Tags(ctx context.Context, sess session.Session) ([]models.Tag, error) {
	return f.tags, nil
}

func (f *fakeRepo) CreateTag(ctx context.Context, sess session.Session, name string) (int64, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.tagsMade = append(f.tagsMade, name)
	return int64(50 + len(f.tagsMade)), nil
}

func (f *fakeRepo) DeleteTag(ctx context.Context, sess session.Session, id int64) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.tagsGone = append(f.tagsGone, id)
	return nil
}

var testSession = session.New("tok", "ana")

func rejected(msg string) error {
	return &api.Error{Op: "test", Kind: api.KindRejected, Status: 400, Message: msg}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes cmd and flattens batches into the messages they produce.
// Commands that wait on a timer, like cursor blinks, are dropped.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-ch:
	case <-time.After(100 * time.Millisecond):
		return nil
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// drive runs cmd and feeds every view message it yields back into m until
// nothing is left. Navigation messages are returned for the caller.
func drive(t *testing.T, m tea.Model, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var nav []tea.Msg
	queue := run(cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		switch msg.(type) {
		case weekLoadedMsg, tagsLoadedMsg, taskSavedMsg, taskDeletedMsg,
			filterResultMsg, tagCreatedMsg, tagDeletedMsg, loginResultMsg:
			_, next := m.Update(msg)
			queue = append(queue, run(next)...)
		case LoggedIn, LoggedOut, OpenFilter, OpenTags, BackToWeek, TagDeleted:
			nav = append(nav, msg)
		}
	}
	return nav
}

func resize(m tea.Model) {
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
}

// press sends each key to m, driving the commands it returns.
func press(t *testing.T, m tea.Model, keys ...string) []tea.Msg {
	t.Helper()
	var nav []tea.Msg
	for _, k := range keys {
		_, cmd := m.Update(keyPress(k))
		nav = append(nav, drive(t, m, cmd)...)
	}
	return nav
}
