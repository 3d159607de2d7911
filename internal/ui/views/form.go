package views

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/smartplanner/internal/models"
	"github.com/tgienger/smartplanner/internal/ui/keys"
	"github.com/tgienger/smartplanner/internal/ui/styles"
)

// Form fields in tab order.
const (
	fieldTitle = iota
	fieldDesc
	fieldDate
	fieldPriority
	fieldTag
	fieldSave
	fieldCount
)

// taskForm edits the writable fields of one task.
type taskForm struct {
	isNew     bool
	base      models.Task
	title     textinput.Model
	desc      textarea.Model
	date      textinput.Model
	priority  models.Priority
	tagCursor int // 0 = no tag, i = tags[i-1]
	focus     int
}

func newTaskForm() taskForm {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = models.MaxTitleLength

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 1000
	desc.SetWidth(40)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	date := textinput.New()
	date.Placeholder = "yyyy-mm-dd"
	date.CharLimit = 10

	return taskForm{title: title, desc: desc, date: date, priority: models.PriorityMedium}
}

// load fills the form from t. tags is the current tag set.
func (f *taskForm) load(t models.Task, tags []models.Tag, isNew bool) {
	f.isNew = isNew
	f.base = t
	f.title.SetValue(t.Title)
	f.title.CursorEnd()
	f.desc.SetValue(t.Description)
	f.date.SetValue(t.DateCreated.String())
	f.date.CursorEnd()
	f.priority = t.Priority
	if !f.priority.Valid() {
		f.priority = models.PriorityMedium
	}
	f.tagCursor = 0
	if t.TagID != nil {
		for i, tag := range tags {
			if tag.ID == *t.TagID {
				f.tagCursor = i + 1
				break
			}
		}
	}
	f.focus = fieldTitle
	f.updateFocus()
}

func (f *taskForm) setWidth(w int) {
	f.desc.SetWidth(w)
	f.title.Width = w - 2
}

func (f *taskForm) updateFocus() {
	f.title.Blur()
	f.desc.Blur()
	f.date.Blur()

	switch f.focus {
	case fieldTitle:
		f.title.Focus()
	case fieldDesc:
		f.desc.Focus()
	case fieldDate:
		f.date.Focus()
	}
}

// update handles a key while the form is open. submit is true when the user
// asked to save.
func (f *taskForm) update(msg tea.KeyMsg, km keys.KeyMap, tags []models.Tag) (submit bool, cmd tea.Cmd) {
	switch {
	case key.Matches(msg, km.Save):
		return true, nil

	case key.Matches(msg, km.Tab):
		f.focus = (f.focus + 1) % fieldCount
		f.updateFocus()
		return false, nil

	case msg.String() == "shift+tab":
		f.focus = (f.focus + fieldCount - 1) % fieldCount
		f.updateFocus()
		return false, nil

	case msg.Type == tea.KeyEnter:
		switch f.focus {
		case fieldSave:
			return true, nil
		case fieldDesc:
			// newline in the textarea
		default:
			f.focus++
			f.updateFocus()
			return false, nil
		}
	}

	switch f.focus {
	case fieldPriority:
		switch msg.String() {
		case "left", "h":
			if f.priority > models.PriorityLow {
				f.priority--
			}
		case "right", "l":
			if f.priority < models.PriorityHigh {
				f.priority++
			}
		case "1", "2", "3":
			f.priority = models.Priority(msg.Runes[0] - '0')
		}
		return false, nil
	case fieldTag:
		switch msg.String() {
		case "left", "h":
			f.tagCursor = (f.tagCursor + len(tags)) % (len(tags) + 1)
		case "right", "l", " ":
			f.tagCursor = (f.tagCursor + 1) % (len(tags) + 1)
		}
		return false, nil
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDesc:
		f.desc, cmd = f.desc.Update(msg)
	case fieldDate:
		f.date, cmd = f.date.Update(msg)
	}
	return false, cmd
}

// value validates the form and returns the edited task. TagName is resolved
// from tags so the local projection shows the right label.
func (f *taskForm) value(tags []models.Tag) (models.Task, error) {
	t := f.base

	t.Title = strings.TrimSpace(f.title.Value())
	if t.Title == "" {
		return t, errors.New("title is required")
	}
	if utf8.RuneCountInString(t.Title) > models.MaxTitleLength {
		return t, fmt.Errorf("title is limited to %d characters", models.MaxTitleLength)
	}
	t.Description = strings.TrimSpace(f.desc.Value())

	d, err := models.ParseDate(strings.TrimSpace(f.date.Value()))
	if err != nil {
		return t, errors.New("date must be yyyy-mm-dd")
	}
	t.DateCreated = d
	t.Priority = f.priority

	t.TagID, t.TagName = nil, models.NoTagName
	if f.tagCursor > 0 && f.tagCursor <= len(tags) {
		tag := tags[f.tagCursor-1]
		id := tag.ID
		t.TagID, t.TagName = &id, tag.Name
	}
	return t, nil
}

func (f *taskForm) view(s *styles.Styles, tags []models.Tag, width int) string {
	fieldStyle := func(i int) lipgloss.Style {
		if f.focus == i {
			return s.InputFocused
		}
		return s.Input
	}

	heading := "Edit Task"
	if f.isNew {
		heading = "New Task"
	}

	var prio []string
	for _, p := range models.Priorities {
		label := p.String()
		if p == f.priority {
			label = s.Priority(p).Render("[" + label + "]")
		} else {
			label = s.TitleMuted.Render(" " + label + " ")
		}
		prio = append(prio, label)
	}

	tagLabel := models.NoTagName
	if f.tagCursor > 0 && f.tagCursor <= len(tags) {
		tagLabel = tags[f.tagCursor-1].Name
	}

	saveStyle := s.Button
	if f.focus == fieldSave {
		saveStyle = s.ButtonFocused
	}

	inner := width - 4
	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(heading),
		"",
		"Title:",
		fieldStyle(fieldTitle).Width(inner).Render(f.title.View()),
		"Description:",
		fieldStyle(fieldDesc).Render(f.desc.View()),
		"Date:",
		fieldStyle(fieldDate).Width(14).Render(f.date.View()),
		"Priority:",
		fieldStyle(fieldPriority).Render(strings.Join(prio, " ")),
		"Tag:",
		fieldStyle(fieldTag).Render("◀ "+tagLabel+" ▶"),
		"",
		saveStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • ←→: change • Ctrl+S: save • Esc: cancel"),
	)
}
