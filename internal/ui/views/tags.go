package views

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/smartplanner/internal/models"
	"github.com/tgienger/smartplanner/internal/session"
	"github.com/tgienger/smartplanner/internal/ui/keys"
	"github.com/tgienger/smartplanner/internal/ui/styles"
)

type tagItem struct {
	tag models.Tag
}

func (i tagItem) Title() string       { return i.tag.Name }
func (i tagItem) Description() string { return "" }
func (i tagItem) FilterValue() string { return i.tag.Name }

type tagDelegate struct {
	styles *styles.Styles
	width  int
}

func (d tagDelegate) Height() int                               { return 1 }
func (d tagDelegate) Spacing() int                              { return 0 }
func (d tagDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d tagDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	t, ok := item.(tagItem)
	if !ok {
		return
	}

	width := max(d.width-4, 20)
	style := d.styles.ListItem.Width(width)
	if index == m.Index() {
		style = d.styles.ListSelected.Width(width)
	}
	fmt.Fprint(w, style.Render("# "+t.Title()))
}

// TagsView lists the user's tags and creates or deletes them.
type TagsView struct {
	repo     Repository
	sess     session.Session
	list     list.Model
	delegate *tagDelegate
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int

	loaded           bool
	creating         bool
	newName          textinput.Model
	confirmingDelete bool
	deleteTarget     models.Tag

	status status
}

func NewTagsView(repo Repository, sess session.Session) *TagsView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Tag name"
	newName.CharLimit = models.MaxTagNameLength

	delegate := &tagDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Tags"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &TagsView{
		repo:     repo,
		sess:     sess,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
	}
}

type tagCreatedMsg struct {
	tag models.Tag
	err error
}

type tagDeletedMsg struct {
	id  int64
	err error
}

func (v *TagsView) Init() tea.Cmd {
	return loadTags(v.repo, v.sess)
}

// Tags returns the tags currently listed.
func (v *TagsView) Tags() []models.Tag {
	items := v.list.Items()
	out := make([]models.Tag, 0, len(items))
	for _, it := range items {
		if t, ok := it.(tagItem); ok {
			out = append(out, t.tag)
		}
	}
	return out
}

func (v *TagsView) setTags(tags []models.Tag) tea.Cmd {
	items := make([]list.Item, len(tags))
	for i, t := range tags {
		items[i] = tagItem{tag: t}
	}
	return v.list.SetItems(items)
}

func (v *TagsView) fail(err error) tea.Cmd {
	var cmd tea.Cmd
	v.status, cmd = failure(err)
	return cmd
}

func (v *TagsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case tagsLoadedMsg:
		if msg.err != nil {
			return v, v.fail(msg.err)
		}
		v.loaded = true
		return v, v.setTags(msg.tags)

	case tagCreatedMsg:
		if msg.err != nil {
			return v, v.fail(msg.err)
		}
		v.creating = false
		v.status = infoStatus("Created tag " + msg.tag.Name)
		return v, v.setTags(append(v.Tags(), msg.tag))

	case tagDeletedMsg:
		if msg.err != nil {
			return v, v.fail(msg.err)
		}
		var kept []models.Tag
		for _, t := range v.Tags() {
			if t.ID != msg.id {
				kept = append(kept, t)
			}
		}
		v.status = infoStatus("Tag deleted")
		return v, tea.Batch(v.setTags(kept), send(TagDeleted{ID: msg.id}))

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return v, tea.Quit
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.creating {
			return v.updateCreating(msg)
		}
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			if v.list.FilterState() == list.FilterApplied {
				break
			}
			return v, send(BackToWeek{})
		case key.Matches(msg, v.keys.New):
			if len(v.list.Items()) >= models.MaxTagsPerUser {
				v.status = status{text: fmt.Sprintf("You can have at most %d tags", models.MaxTagsPerUser), err: true}
				return v, nil
			}
			v.creating = true
			v.newName.Reset()
			v.newName.Focus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(tagItem); ok {
				v.confirmingDelete = true
				v.deleteTarget = item.tag
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *TagsView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := v.deleteTarget.ID
		repo, sess := v.repo, v.sess
		return v, func() tea.Msg {
			return tagDeletedMsg{id: id, err: repo.DeleteTag(context.Background(), sess, id)}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *TagsView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Save), msg.Type == tea.KeyEnter:
		name := strings.TrimSpace(v.newName.Value())
		if name == "" {
			v.status = status{text: "Tag name is required", err: true}
			return v, nil
		}
		if utf8.RuneCountInString(name) > models.MaxTagNameLength {
			v.status = status{text: fmt.Sprintf("Tag name is limited to %d characters", models.MaxTagNameLength), err: true}
			return v, nil
		}
		repo, sess := v.repo, v.sess
		return v, func() tea.Msg {
			id, err := repo.CreateTag(context.Background(), sess, name)
			return tagCreatedMsg{tag: models.Tag{ID: id, Name: name}, err: err}
		}
	}

	var cmd tea.Cmd
	v.newName, cmd = v.newName.Update(msg)
	return v, cmd
}

func (v *TagsView) View() string {
	if v.confirmingDelete {
		return renderConfirm(v.styles, v.width, v.height, "Delete Tag?",
			fmt.Sprintf("Tasks tagged %q will become untagged.", v.deleteTarget.Name))
	}

	if v.creating {
		return v.renderCreateForm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	var content string
	if len(v.list.Items()) == 0 {
		content = v.styles.TitleMuted.Render("No tags yet. Press 'n' to create one.")
	} else {
		content = v.list.View()
	}
	count := v.styles.TitleMuted.Render(fmt.Sprintf("%d/%d tags", len(v.list.Items()), models.MaxTagsPerUser))
	content = lipgloss.JoinVertical(lipgloss.Left,
		content,
		count,
		v.status.render(v.styles),
		renderHelp(v.styles, v.keys.New, v.keys.Delete, v.keys.Back, v.keys.Quit),
	)
	return styles.CenterView(content, v.width, v.height)
}

func (v *TagsView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Tag"),
		"",
		"Name:",
		s.InputFocused.Width(inputWidth).Render(v.newName.View()),
		"",
		v.status.render(s),
		s.TitleMuted.Render("↵: create • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
