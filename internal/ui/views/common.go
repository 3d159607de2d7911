package views

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/smartplanner/internal/api"
	"github.com/tgienger/smartplanner/internal/models"
	"github.com/tgienger/smartplanner/internal/planner"
	"github.com/tgienger/smartplanner/internal/session"
	"github.com/tgienger/smartplanner/internal/ui/styles"
)

// Repository is the part of the API client the views call.
type Repository interface {
	Login(ctx context.Context, username, password string) (session.Session, error)
	Register(ctx context.Context, reg api.Registration) (session.Session, error)

	FetchRange(ctx context.Context, sess session.Session, w planner.Window) ([]models.Task, error)
	FilterTasks(ctx context.Context, sess session.Session, f planner.FilterSpec) ([]models.Task, error)
	CreateTask(ctx context.Context, sess session.Session, t models.Task) (int64, error)
	UpdateTask(ctx context.Context, sess session.Session, id int64, p api.TaskPatch) error
	DeleteTask(ctx context.Context, sess session.Session, id int64) error

	Tags(ctx context.Context, sess session.Session) ([]models.Tag, error)
	CreateTag(ctx context.Context, sess session.Session, name string) (int64, error)
	DeleteTag(ctx context.Context, sess session.Session, id int64) error
}

// Navigation messages handled by the app router.
type (
	LoggedIn struct {
		Session session.Session
	}
	LoggedOut struct {
		Reason string // shown on the login screen
	}
	OpenFilter struct{}
	OpenTags   struct{}
	BackToWeek struct{}

	// TagDeleted is sent after the repository confirmed a tag deletion.
	TagDeleted struct {
		ID int64
	}
)

func send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

type tagsLoadedMsg struct {
	tags []models.Tag
	err  error
}

func loadTags(repo Repository, sess session.Session) tea.Cmd {
	return func() tea.Msg {
		tags, err := repo.Tags(context.Background(), sess)
		return tagsLoadedMsg{tags: tags, err: err}
	}
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// truncate shortens s to width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// status is the one-line message shown under a view.
type status struct {
	text string
	err  bool
}

func infoStatus(text string) status { return status{text: text} }

func errorStatus(err error) status {
	return status{text: api.Reason(err), err: true}
}

// failure turns err into a status. An expired session also sends the user
// back to the login screen.
func failure(err error) (status, tea.Cmd) {
	st := errorStatus(err)
	if errors.Is(err, api.ErrNotAuthenticated) {
		return st, send(LoggedOut{Reason: st.text})
	}
	return st, nil
}

func (st status) render(s *styles.Styles) string {
	if st.text == "" {
		return ""
	}
	if st.err {
		return s.StatusError.Render("✗ " + st.text)
	}
	return s.StatusBar.Render(st.text)
}

// renderHelp lays out key hints on one line.
func renderHelp(s *styles.Styles, bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, s.HelpKey.Render(h.Key)+" "+s.HelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, s.HelpDesc.Render(" • "))
}

// renderHelpPopup lists every binding in a centered box.
func renderHelpPopup(s *styles.Styles, width, height int, bindings ...key.Binding) string {
	lines := []string{s.Title.Render("Keys"), ""}
	for _, b := range bindings {
		h := b.Help()
		lines = append(lines, s.HelpKey.Width(10).Render(h.Key)+s.HelpDesc.Render(h.Desc))
	}
	lines = append(lines, "", s.TitleMuted.Render("Press any key to close"))

	contentWidth := styles.ContentWidth(width)
	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)),
	)
	return styles.CenterView(centered, width, height)
}

// renderConfirm is the yes/no dialog used before destructive actions.
func renderConfirm(s *styles.Styles, width, height int, title, subject string) string {
	contentWidth := styles.ContentWidth(width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(title),
		"",
		s.TitleMuted.Render(subject),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, width, height)
}
