package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/smartplanner/internal/models"
	"github.com/tgienger/smartplanner/internal/planner"
	"github.com/tgienger/smartplanner/internal/session"
	"github.com/tgienger/smartplanner/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewLogin View = iota
	ViewWeek
	ViewFilter
	ViewTags
)

// SessionStore persists the login across runs.
type SessionStore interface {
	Save(sess session.Session) error
	Clear() error
}

// Options are the user preferences the views need.
type Options struct {
	WeekStart time.Weekday
	Sort      planner.SortOption
}

type App struct {
	repo        views.Repository
	store       SessionStore
	opts        Options
	sess        session.Session
	currentView View

	login  *views.LoginView
	week   *views.WeekView
	filter *views.FilterView
	tags   *views.TagsView

	width  int
	height int
}

// Creates a new application. An authenticated sess opens the calendar
// directly; otherwise the login screen is shown.
func NewApp(repo views.Repository, store SessionStore, sess session.Session, opts Options) *App {
	return &App{
		repo:        repo,
		store:       store,
		opts:        opts,
		sess:        sess,
		currentView: ViewLogin,
		login:       views.NewLoginView(repo),
	}
}

// Current returns the active view.
func (a *App) Current() View { return a.currentView }

// Session returns the session the views are using.
func (a *App) Session() session.Session { return a.sess }

func (a *App) Init() tea.Cmd {
	if a.sess.Authenticated() {
		return a.openWeek()
	}
	return a.login.Init()
}

// resize replays the last window size to a freshly opened view.
func (a *App) resize() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

func (a *App) openWeek() tea.Cmd {
	a.currentView = ViewWeek
	a.week = views.NewWeekView(a.repo, a.sess, a.opts.WeekStart, models.Today())
	return tea.Batch(a.week.Init(), a.resize())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// The login view persists across logouts.
		if a.currentView != ViewLogin {
			a.login.Update(msg)
		}

	case views.LoggedIn:
		if err := a.store.Save(msg.Session); err != nil {
			a.login.SetStatus("could not save session: " + err.Error())
		}
		a.sess = msg.Session
		return a, a.openWeek()

	case views.LoggedOut:
		// A failure to remove the file still ends the session in memory.
		_ = a.store.Clear()
		a.sess = session.Anonymous()
		a.week, a.filter, a.tags = nil, nil, nil
		a.currentView = ViewLogin
		a.login = views.NewLoginView(a.repo)
		if msg.Reason != "" {
			a.login.SetStatus(msg.Reason)
		}
		return a, tea.Batch(a.login.Init(), a.resize())

	case views.OpenFilter:
		a.currentView = ViewFilter
		a.filter = views.NewFilterView(a.repo, a.sess, a.opts.Sort)
		return a, tea.Batch(a.filter.Init(), a.resize())

	case views.OpenTags:
		a.currentView = ViewTags
		a.tags = views.NewTagsView(a.repo, a.sess)
		return a, tea.Batch(a.tags.Init(), a.resize())

	case views.BackToWeek:
		if a.week == nil {
			return a, a.openWeek()
		}
		a.currentView = ViewWeek
		return a, tea.Batch(a.week.Refresh(), a.resize())

	case views.TagDeleted:
		if a.week != nil {
			a.week.Untag(msg.ID)
		}
		return a, nil
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewLogin:
		_, cmd = a.login.Update(msg)
	case ViewWeek:
		_, cmd = a.week.Update(msg)
	case ViewFilter:
		_, cmd = a.filter.Update(msg)
	case ViewTags:
		_, cmd = a.tags.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewWeek:
		if a.week != nil {
			return a.week.View()
		}
	case ViewFilter:
		if a.filter != nil {
			return a.filter.View()
		}
	case ViewTags:
		if a.tags != nil {
			return a.tags.View()
		}
	}
	return a.login.View()
}
