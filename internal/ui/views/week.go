package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/smartplanner/internal/api"
	"github.com/tgienger/smartplanner/internal/models"
	"github.com/tgienger/smartplanner/internal/planner"
	"github.com/tgienger/smartplanner/internal/session"
	"github.com/tgienger/smartplanner/internal/ui/keys"
	"github.com/tgienger/smartplanner/internal/ui/popover"
	"github.com/tgienger/smartplanner/internal/ui/styles"
)

// WeekView shows one calendar week as seven day columns.
type WeekView struct {
	repo      Repository
	sess      session.Session
	weekStart time.Weekday
	styles    *styles.Styles
	keys      keys.KeyMap
	spinner   spinner.Model

	width  int
	height int

	selected models.Date
	week     *planner.Week
	tags     []models.Tag
	cursor   int // task index within the selected day
	loading  bool

	popover  popover.Popover
	form     taskForm
	creating bool // form open for a task that does not exist yet
	saving   bool

	confirmingDelete bool
	deleteTarget     models.Task

	showHelpPopup bool
	status        status
}

// NewWeekView creates the calendar positioned on the week containing today.
func NewWeekView(repo Repository, sess session.Session, weekStart time.Weekday, today models.Date) *WeekView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Current.Accent)

	return &WeekView{
		repo:      repo,
		sess:      sess,
		weekStart: weekStart,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		spinner:   sp,
		selected:  today,
		week:      planner.NewWeek(planner.WeekOf(today, weekStart), nil),
		form:      newTaskForm(),
	}
}

type weekLoadedMsg struct {
	start models.Date // first day of the window the request was made for
	tasks []models.Task
	err   error
}

type taskSavedMsg struct {
	task    models.Task
	created bool
	toggled bool
	err     error
}

type taskDeletedMsg struct {
	id  int64
	err error
}

type copiedMsg struct {
	err error
}

func (v *WeekView) Init() tea.Cmd {
	return v.Refresh()
}

// Refresh reloads the tags and the tasks of the current window.
func (v *WeekView) Refresh() tea.Cmd {
	return tea.Batch(v.spinner.Tick, v.load(), loadTags(v.repo, v.sess))
}

// Window returns the dates currently displayed.
func (v *WeekView) Window() planner.Window { return v.week.Window }

// Selected returns the highlighted date.
func (v *WeekView) Selected() models.Date { return v.selected }

// Week returns the current projection.
func (v *WeekView) Week() *planner.Week { return v.week }

// Untag applies a confirmed tag deletion to the projection.
func (v *WeekView) Untag(tagID int64) {
	v.week.Untag(tagID)
	for i, t := range v.tags {
		if t.ID == tagID {
			v.tags = append(v.tags[:i:i], v.tags[i+1:]...)
			break
		}
	}
}

func (v *WeekView) load() tea.Cmd {
	w := v.week.Window
	repo, sess := v.repo, v.sess
	v.loading = true
	return func() tea.Msg {
		tasks, err := repo.FetchRange(context.Background(), sess, w)
		return weekLoadedMsg{start: w.Start(), tasks: tasks, err: err}
	}
}

// setSelected moves the selection, switching windows and reloading when d
// falls outside the displayed week.
func (v *WeekView) setSelected(d models.Date) tea.Cmd {
	v.selected = d
	v.cursor = 0
	if v.week.Window.Contains(d) {
		return nil
	}
	v.week = planner.NewWeek(planner.WeekOf(d, v.weekStart), nil)
	return v.load()
}

func (v *WeekView) dayIndex() int {
	return v.week.Window.Index(v.selected)
}

func (v *WeekView) selectedTasks() []models.Task {
	return v.week.Day(v.dayIndex())
}

func (v *WeekView) currentTask() (models.Task, bool) {
	tasks := v.selectedTasks()
	if v.cursor < 0 || v.cursor >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[v.cursor], true
}

func (v *WeekView) clampCursor() {
	n := len(v.selectedTasks())
	if v.cursor >= n {
		v.cursor = max(0, n-1)
	}
}

// fail reports err in the status bar. An expired session logs the user out.
func (v *WeekView) fail(err error) tea.Cmd {
	var cmd tea.Cmd
	v.status, cmd = failure(err)
	return cmd
}

func (v *WeekView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.form.setWidth(v.popoverWidth() - 8)
		return v, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case weekLoadedMsg:
		if !msg.start.SameDay(v.week.Window.Start()) {
			// response for a window that is no longer displayed
			return v, nil
		}
		v.loading = false
		if msg.err != nil {
			return v, v.fail(msg.err)
		}
		v.week = planner.NewWeek(v.week.Window, msg.tasks)
		v.clampCursor()
		if v.week.Dropped > 0 {
			v.status = infoStatus(fmt.Sprintf("%d task(s) outside this week were skipped", v.week.Dropped))
		}
		return v, nil

	case tagsLoadedMsg:
		if msg.err != nil {
			return v, v.fail(msg.err)
		}
		v.tags = msg.tags
		return v, nil

	case taskSavedMsg:
		return v, v.applySaved(msg)

	case taskDeletedMsg:
		if msg.err != nil {
			return v, v.fail(msg.err)
		}
		v.week.Remove(msg.id)
		if v.popover.Open() && v.popover.Task().ID == msg.id {
			v.popover.Fire(popover.Dismiss)
		}
		v.clampCursor()
		v.status = infoStatus("Task deleted")
		return v, nil

	case copiedMsg:
		if msg.err != nil {
			v.status = status{text: "clipboard: " + msg.err.Error(), err: true}
		} else {
			v.status = infoStatus("Copied to clipboard")
		}
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if msg.Type == tea.KeyCtrlC {
			return v, tea.Quit
		}
		if v.saving {
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.creating || v.popover.State() == popover.Editing {
			return v.updateEditing(msg)
		}
		if v.popover.Open() {
			return v.updateViewing(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

// applySaved patches the projection after the repository answered a write.
// A failed write leaves everything as it was.
func (v *WeekView) applySaved(msg taskSavedMsg) tea.Cmd {
	v.saving = false
	if msg.err != nil {
		return v.fail(msg.err)
	}

	v.week.Put(msg.task)
	switch {
	case msg.created:
		v.creating = false
		v.status = infoStatus("Created " + msg.task.Title)
	case msg.toggled:
		v.popover.Refresh(msg.task)
		if msg.task.IsCompleted {
			v.status = infoStatus("Marked done")
		} else {
			v.status = infoStatus("Marked not done")
		}
	default:
		v.popover.Refresh(msg.task)
		v.popover.Fire(popover.Save)
		v.status = infoStatus("Saved")
	}
	v.clampCursor()
	return nil
}

func (v *WeekView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Left):
		return v, v.setSelected(v.selected.AddDays(-1))

	case key.Matches(msg, v.keys.Right):
		return v, v.setSelected(v.selected.AddDays(1))

	case key.Matches(msg, v.keys.PrevWeek):
		return v, v.setSelected(v.selected.AddDays(-planner.DaysPerWeek))

	case key.Matches(msg, v.keys.NextWeek):
		return v, v.setSelected(v.selected.AddDays(planner.DaysPerWeek))

	case key.Matches(msg, v.keys.Today):
		return v, v.setSelected(models.Today())

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.selectedTasks())-1 {
			v.cursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if t, ok := v.currentTask(); ok {
			v.popover.SelectTask(t)
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		if t, ok := v.currentTask(); ok && v.popover.SelectTask(t) {
			v.startEdit(t)
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.creating = true
		v.form.load(models.Task{DateCreated: v.selected, Priority: models.PriorityMedium}, v.tags, true)
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if t, ok := v.currentTask(); ok {
			v.confirmDelete(t)
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		if t, ok := v.currentTask(); ok {
			return v, v.toggle(t)
		}
		return v, nil

	case key.Matches(msg, v.keys.Copy):
		if t, ok := v.currentTask(); ok {
			return v, copyTask(t)
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, v.Refresh()

	case key.Matches(msg, v.keys.Filter):
		return v, send(OpenFilter{})

	case key.Matches(msg, v.keys.Tags):
		return v, send(OpenTags{})

	case key.Matches(msg, v.keys.Logout):
		return v, send(LoggedOut{})

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}
	return v, nil
}

func (v *WeekView) updateViewing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := v.popover.Task()
	switch {
	case key.Matches(msg, v.keys.Back):
		v.popover.Fire(popover.Dismiss)
	case key.Matches(msg, v.keys.Edit):
		v.startEdit(t)
	case key.Matches(msg, v.keys.Delete):
		v.confirmDelete(t)
	case key.Matches(msg, v.keys.Toggle):
		return v, v.toggle(t)
	case key.Matches(msg, v.keys.Copy):
		return v, copyTask(t)
	}
	return v, nil
}

func (v *WeekView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, v.keys.Back) {
		if v.creating {
			v.creating = false
		} else {
			v.popover.Fire(popover.Cancel)
		}
		return v, nil
	}

	submit, cmd := v.form.update(msg, v.keys, v.tags)
	if !submit {
		return v, cmd
	}
	t, err := v.form.value(v.tags)
	if err != nil {
		v.status = status{text: err.Error(), err: true}
		return v, nil
	}
	v.saving = true
	return v, v.save(t, v.creating)
}

func (v *WeekView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := v.deleteTarget.ID
		repo, sess := v.repo, v.sess
		return v, func() tea.Msg {
			err := repo.DeleteTask(context.Background(), sess, id)
			return taskDeletedMsg{id: id, err: err}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *WeekView) startEdit(t models.Task) {
	if v.popover.Fire(popover.Edit) {
		v.form.load(t, v.tags, false)
	}
}

func (v *WeekView) confirmDelete(t models.Task) {
	v.confirmingDelete = true
	v.deleteTarget = t
}

func (v *WeekView) save(t models.Task, isNew bool) tea.Cmd {
	repo, sess := v.repo, v.sess
	return func() tea.Msg {
		ctx := context.Background()
		if isNew {
			id, err := repo.CreateTask(ctx, sess, t)
			t.ID = id
			return taskSavedMsg{task: t, created: true, err: err}
		}
		err := repo.UpdateTask(ctx, sess, t.ID, api.FullPatch(t))
		return taskSavedMsg{task: t, err: err}
	}
}

func (v *WeekView) toggle(t models.Task) tea.Cmd {
	v.saving = true
	t.IsCompleted = !t.IsCompleted
	completed := t.IsCompleted
	repo, sess := v.repo, v.sess
	return func() tea.Msg {
		err := repo.UpdateTask(context.Background(), sess, t.ID, api.TaskPatch{IsCompleted: &completed})
		return taskSavedMsg{task: t, toggled: true, err: err}
	}
}

func copyTask(t models.Task) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(taskText(t))}
	}
}

// taskText is the plain-text form of a task put on the clipboard.
func taskText(t models.Task) string {
	var b strings.Builder
	b.WriteString(t.Title)
	fmt.Fprintf(&b, "\n%s · %s priority · %s", t.DateCreated, t.Priority, t.Label())
	if t.IsCompleted {
		b.WriteString(" · done")
	}
	if t.Description != "" {
		b.WriteString("\n\n" + t.Description)
	}
	return b.String()
}

func (v *WeekView) View() string {
	if v.showHelpPopup {
		return renderHelpPopup(v.styles, v.width, v.height, v.helpBindings()...)
	}

	if v.confirmingDelete {
		return renderConfirm(v.styles, v.width, v.height, "Delete Task?",
			fmt.Sprintf("%q will be removed.", v.deleteTarget.Title))
	}

	if v.creating {
		contentWidth := styles.ContentWidth(v.width)
		centered := lipgloss.Place(contentWidth, v.height,
			lipgloss.Center, lipgloss.Center,
			v.styles.Popover.Render(v.form.view(v.styles, v.tags, v.popoverWidth())),
		)
		return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, centered, v.status.render(v.styles)), v.width, v.height)
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderCalendar())
	b.WriteString("\n")
	b.WriteString(v.status.render(v.styles))
	b.WriteString("\n")
	b.WriteString(renderHelp(v.styles, v.keys.Left, v.keys.PrevWeek, v.keys.NextWeek, v.keys.Enter, v.keys.New, v.keys.Filter, v.keys.Tags, v.keys.Help))

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *WeekView) helpBindings() []key.Binding {
	k := v.keys
	return []key.Binding{
		k.Left, k.Right, k.Up, k.Down, k.PrevWeek, k.NextWeek, k.Today,
		k.Enter, k.Edit, k.Save, k.New, k.Delete, k.Toggle, k.Copy, k.Refresh,
		k.Filter, k.Tags, k.Logout, k.Back, k.Quit,
	}
}

func (v *WeekView) renderHeader() string {
	s := v.styles
	w := v.week.Window
	title := fmt.Sprintf("%s – %s", w.Start().Format("Jan 2"), w.End().Format("Jan 2, 2006"))

	header := s.Title.Render(title)
	if v.loading {
		header += " " + v.spinner.View()
	}
	if name := v.sess.Username(); name != "" {
		header += "  " + s.TitleMuted.Render("@"+name)
	}
	return header
}

func (v *WeekView) columnWidth() int {
	return max(styles.ContentWidth(v.width)/planner.DaysPerWeek, 12)
}

func (v *WeekView) popoverWidth() int {
	return clamp(styles.ContentWidth(v.width)/3, 32, 48)
}

func (v *WeekView) renderCalendar() string {
	w := v.week.Window
	cols := make([]string, len(w))
	for i := range w {
		cols[i] = v.renderColumn(i)
	}

	if !v.popover.Open() {
		return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	}

	// The popover covers the columns on the side it opens towards.
	day := v.dayIndex()
	if day < 0 {
		day = 0
	}
	pop := v.renderPopover()
	anchorRight := (day + 1) * v.columnWidth()
	if popover.Side(anchorRight, v.popoverWidth(), styles.ContentWidth(v.width)) == popover.Right {
		return lipgloss.JoinHorizontal(lipgloss.Top, append(cols[:day+1:day+1], pop)...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, append([]string{pop}, cols[day:]...)...)
}

func (v *WeekView) renderColumn(i int) string {
	s := v.styles
	d := v.week.Window[i]
	selectedDay := i == v.dayIndex()
	inner := v.columnWidth() - 4 // border and padding

	headerStyle := s.DayHeader
	if d.SameDay(models.Today()) {
		headerStyle = s.DayToday
	}
	lines := []string{headerStyle.Render(truncate(d.Format("Mon 01/02"), inner)), ""}

	rows := max(v.height-10, 3)
	tasks := v.week.Day(i)
	for j, t := range tasks {
		if j == rows-1 && len(tasks) > rows {
			lines = append(lines, s.TitleMuted.Render(fmt.Sprintf("+%d more", len(tasks)-j)))
			break
		}
		lines = append(lines, v.renderTaskLine(t, inner, selectedDay && j == v.cursor))
	}
	if len(tasks) == 0 {
		lines = append(lines, s.TitleMuted.Render("-"))
	}

	colStyle := s.Column
	if selectedDay {
		colStyle = s.ColumnSelected
	}
	return colStyle.Width(inner + 2).Height(rows + 2).Render(strings.Join(lines, "\n"))
}

func (v *WeekView) renderTaskLine(t models.Task, width int, selected bool) string {
	s := v.styles
	marker := s.Priority(t.Priority).Render("●")
	title := truncate(t.Title, width-2)

	titleStyle := s.TaskTitle
	if t.IsCompleted {
		titleStyle = s.TaskDone
	}
	if selected {
		titleStyle = titleStyle.Background(styles.Current.Selection).Bold(true)
	}
	return marker + " " + titleStyle.Render(title)
}

func (v *WeekView) renderPopover() string {
	s := v.styles
	width := v.popoverWidth()

	if v.popover.State() == popover.Editing {
		return s.Popover.Width(width).Render(v.form.view(s, v.tags, width-4))
	}

	t := v.popover.Task()
	done := "no"
	if t.IsCompleted {
		done = "yes"
	}
	desc := t.Description
	if desc == "" {
		desc = s.TitleMuted.Render("No description")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(t.Title),
		"",
		s.TitleMuted.Render("Date:     ")+t.DateCreated.String(),
		s.TitleMuted.Render("Priority: ")+s.Priority(t.Priority).Render(t.Priority.String()),
		s.TitleMuted.Render("Tag:      ")+s.Tag.Render(t.Label()),
		s.TitleMuted.Render("Done:     ")+done,
		"",
		lipgloss.NewStyle().Width(width-6).Render(desc),
		"",
		renderHelp(s, v.keys.Edit, v.keys.Toggle, v.keys.Delete, v.keys.Copy, v.keys.Back),
	)
	return s.Popover.Width(width).Render(content)
}
