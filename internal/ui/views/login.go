package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/smartplanner/internal/api"
	"github.com/tgienger/smartplanner/internal/session"
	"github.com/tgienger/smartplanner/internal/ui/keys"
	"github.com/tgienger/smartplanner/internal/ui/styles"
)

// LoginView signs in to the task repository or registers a new account.
type LoginView struct {
	repo   Repository
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	registering bool
	inputs      []textinput.Model // username, password, then email and name when registering
	focusIdx    int
	busy        bool
	status      status
}

const (
	inputUsername = iota
	inputPassword
	inputEmail
	inputName
)

var switchMode = key.NewBinding(
	key.WithKeys("ctrl+r"),
	key.WithHelp("ctrl+r", "login/register"),
)

func NewLoginView(repo Repository) *LoginView {
	placeholders := []string{"Username", "Password", "Email", "Full name"}
	inputs := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		in := textinput.New()
		in.Placeholder = p
		in.CharLimit = 100
		inputs[i] = in
	}
	inputs[inputPassword].EchoMode = textinput.EchoPassword
	inputs[inputPassword].EchoCharacter = '•'
	inputs[inputUsername].Focus()

	return &LoginView{
		repo:   repo,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
		inputs: inputs,
	}
}

type loginResultMsg struct {
	sess session.Session
	err  error
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

// SetStatus shows a message, e.g. why the user was sent back here.
func (v *LoginView) SetStatus(text string) {
	v.status = status{text: text, err: true}
}

func (v *LoginView) fields() int {
	if v.registering {
		return len(v.inputs)
	}
	return inputPassword + 1
}

func (v *LoginView) updateFocus() {
	for i := range v.inputs {
		v.inputs[i].Blur()
	}
	if v.focusIdx < v.fields() {
		v.inputs[v.focusIdx].Focus()
	}
}

func (v *LoginView) value(i int) string {
	return strings.TrimSpace(v.inputs[i].Value())
}

func (v *LoginView) submit() tea.Cmd {
	username, password := v.value(inputUsername), v.inputs[inputPassword].Value()
	if username == "" || password == "" {
		v.status = status{text: "Username and password are required", err: true}
		return nil
	}

	v.busy = true
	v.status = infoStatus("Signing in…")
	repo := v.repo
	if !v.registering {
		return func() tea.Msg {
			sess, err := repo.Login(context.Background(), username, password)
			return loginResultMsg{sess: sess, err: err}
		}
	}

	reg := api.Registration{
		Username: username,
		Password: password,
		Email:    v.value(inputEmail),
		Name:     v.value(inputName),
	}
	return func() tea.Msg {
		sess, err := repo.Register(context.Background(), reg)
		return loginResultMsg{sess: sess, err: err}
	}
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case loginResultMsg:
		v.busy = false
		if msg.err != nil {
			v.status = errorStatus(msg.err)
			return v, nil
		}
		v.status = status{}
		v.inputs[inputPassword].Reset()
		return v, send(LoggedIn{Session: msg.sess})

	case tea.KeyMsg:
		if v.busy {
			if msg.Type == tea.KeyCtrlC {
				return v, tea.Quit
			}
			return v, nil
		}
		switch {
		case msg.Type == tea.KeyCtrlC, msg.Type == tea.KeyEsc:
			return v, tea.Quit

		case key.Matches(msg, switchMode):
			v.registering = !v.registering
			v.focusIdx = 0
			v.status = status{}
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Tab), msg.Type == tea.KeyDown:
			v.focusIdx = (v.focusIdx + 1) % v.fields()
			v.updateFocus()
			return v, nil

		case msg.String() == "shift+tab", msg.Type == tea.KeyUp:
			v.focusIdx = (v.focusIdx + v.fields() - 1) % v.fields()
			v.updateFocus()
			return v, nil

		case msg.Type == tea.KeyEnter:
			if v.focusIdx < v.fields()-1 {
				v.focusIdx++
				v.updateFocus()
				return v, nil
			}
			return v, v.submit()
		}
	}

	var cmd tea.Cmd
	v.inputs[v.focusIdx], cmd = v.inputs[v.focusIdx].Update(msg)
	return v, cmd
}

func (v *LoginView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 40)

	heading := "Log in to SmartPlanner"
	if v.registering {
		heading = "Create an account"
	}

	rows := []string{s.Title.Render(heading), ""}
	for i := 0; i < v.fields(); i++ {
		style := s.Input
		if i == v.focusIdx {
			style = s.InputFocused
		}
		rows = append(rows, style.Width(inputWidth).Render(v.inputs[i].View()))
	}
	rows = append(rows,
		"",
		v.status.render(s),
		renderHelp(s, v.keys.Tab, switchMode),
		s.TitleMuted.Render("↵ submit • esc quit"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
	return styles.CenterView(centered, v.width, v.height)
}
