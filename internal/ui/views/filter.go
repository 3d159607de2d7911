package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/smartplanner/internal/models"
	"github.com/tgienger/smartplanner/internal/planner"
	"github.com/tgienger/smartplanner/internal/session"
	"github.com/tgienger/smartplanner/internal/ui/keys"
	"github.com/tgienger/smartplanner/internal/ui/styles"
)

// FilterFocus is the part of the filter screen receiving keys.
type FilterFocus int

const (
	FocusTags FilterFocus = iota
	FocusStartDate
	FocusEndDate
	FocusResults
	filterFocusCount
)

// FilterView searches every task of the user by tag, completion, priority
// and date range, and pages through the sorted result.
type FilterView struct {
	repo   Repository
	sess   session.Session
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	tags      []models.Tag
	spec      planner.FilterSpec
	selected  map[int64]bool
	focus     FilterFocus
	tagCursor int
	startDate textinput.Model
	endDate   textinput.Model

	applied planner.FilterSpec // predicates fetched was requested with
	fetched []models.Task      // last repository result
	results []models.Task // fetched after local filtering and sorting
	page    int
	cursor  int // row on the current page
	loading bool
	searched bool

	status status
}

// NewFilterView creates the filter screen with sort as the initial ordering.
func NewFilterView(repo Repository, sess session.Session, sort planner.SortOption) *FilterView {
	start := textinput.New()
	start.Placeholder = "yyyy-mm-dd"
	start.CharLimit = 10
	start.Width = 12

	end := textinput.New()
	end.Placeholder = "yyyy-mm-dd"
	end.CharLimit = 10
	end.Width = 12

	return &FilterView{
		repo:      repo,
		sess:      sess,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		spec:      planner.FilterSpec{Sort: sort},
		selected:  map[int64]bool{},
		startDate: start,
		endDate:   end,
		page:      1,
	}
}

type filterResultMsg struct {
	spec  planner.FilterSpec
	tasks []models.Task
	err   error
}

func (v *FilterView) Init() tea.Cmd {
	return loadTags(v.repo, v.sess)
}

// Spec returns the predicates currently selected.
func (v *FilterView) Spec() planner.FilterSpec { return v.spec }

// Results returns the filtered and sorted tasks across all pages.
func (v *FilterView) Results() []models.Task { return v.results }

// PageTasks returns the tasks shown on the current page.
func (v *FilterView) PageTasks() []models.Task {
	return planner.Page(v.results, v.page, planner.PageSize)
}

func (v *FilterView) totalPages() int {
	return planner.TotalPages(len(v.results), planner.PageSize)
}

// search validates the date inputs and asks the repository for matches.
func (v *FilterView) search() tea.Cmd {
	spec, err := v.readSpec()
	if err != nil {
		v.status = status{text: err.Error(), err: true}
		return nil
	}
	v.spec = spec
	v.loading = true
	v.status = infoStatus("Searching…")

	repo, sess := v.repo, v.sess
	return func() tea.Msg {
		tasks, err := repo.FilterTasks(context.Background(), sess, spec)
		return filterResultMsg{spec: spec, tasks: tasks, err: err}
	}
}

func (v *FilterView) readSpec() (planner.FilterSpec, error) {
	spec := v.spec
	spec.Tags = spec.Tags[:0:0]
	for _, t := range v.tags {
		if v.selected[t.ID] {
			spec.Tags = append(spec.Tags, t.ID)
		}
	}

	spec.StartDate, spec.EndDate = nil, nil
	parse := func(in textinput.Model, label string) (*models.Date, error) {
		s := strings.TrimSpace(in.Value())
		if s == "" {
			return nil, nil
		}
		d, err := models.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("%s date must be yyyy-mm-dd", label)
		}
		return &d, nil
	}
	var err error
	if spec.StartDate, err = parse(v.startDate, "start"); err != nil {
		return spec, err
	}
	if spec.EndDate, err = parse(v.endDate, "end"); err != nil {
		return spec, err
	}
	if spec.StartDate != nil && spec.EndDate != nil && spec.EndDate.Compare(*spec.StartDate) < 0 {
		return spec, errors.New("end date is before start date")
	}
	return spec, nil
}

// refilter re-applies the submitted predicates to the last result, ordered
// by the current sort option. Unsubmitted predicate changes are ignored.
func (v *FilterView) refilter() {
	spec := v.applied
	spec.Sort = v.spec.Sort
	v.results = planner.Filter(v.fetched, spec)
	if total := v.totalPages(); v.page > total {
		v.page = max(1, total)
	}
	v.cursor = 0
}

func (v *FilterView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tagsLoadedMsg:
		if msg.err != nil {
			return v, v.fail(msg.err)
		}
		v.tags = msg.tags
		if v.tagCursor >= len(v.tags) {
			v.tagCursor = max(0, len(v.tags)-1)
		}
		return v, nil

	case filterResultMsg:
		v.loading = false
		if msg.err != nil {
			return v, v.fail(msg.err)
		}
		v.searched = true
		v.applied = msg.spec
		v.fetched = msg.tasks
		v.page = 1
		v.refilter()
		v.status = infoStatus(fmt.Sprintf("%d task(s) found", len(v.results)))
		return v, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return v, tea.Quit
		}
		return v.updateKeys(msg)
	}
	return v, nil
}

func (v *FilterView) fail(err error) tea.Cmd {
	var cmd tea.Cmd
	v.status, cmd = failure(err)
	return cmd
}

func (v *FilterView) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		return v, send(BackToWeek{})
	case key.Matches(msg, v.keys.Tab):
		v.setFocus((v.focus + 1) % filterFocusCount)
		return v, nil
	case msg.String() == "shift+tab":
		v.setFocus((v.focus + filterFocusCount - 1) % filterFocusCount)
		return v, nil
	case msg.Type == tea.KeyEnter:
		return v, v.search()
	}

	// Date inputs take every other key.
	if v.focus == FocusStartDate || v.focus == FocusEndDate {
		var cmd tea.Cmd
		if v.focus == FocusStartDate {
			v.startDate, cmd = v.startDate.Update(msg)
		} else {
			v.endDate, cmd = v.endDate.Update(msg)
		}
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Completed):
		v.spec.Completed = (v.spec.Completed + 1) % 3
		return v, nil

	case key.Matches(msg, v.keys.Priority):
		v.spec.Priority = (v.spec.Priority + 1) % (models.PriorityHigh + 1)
		return v, nil

	case key.Matches(msg, v.keys.Sort):
		v.spec.Sort = nextSort(v.spec.Sort)
		v.refilter()
		return v, nil

	case key.Matches(msg, v.keys.PrevPage):
		if v.page > 1 {
			v.page--
			v.cursor = 0
		}
		return v, nil

	case key.Matches(msg, v.keys.NextPage):
		if v.page < v.totalPages() {
			v.page++
			v.cursor = 0
		}
		return v, nil
	}

	switch v.focus {
	case FocusTags:
		switch {
		case key.Matches(msg, v.keys.Left), key.Matches(msg, v.keys.Up):
			if v.tagCursor > 0 {
				v.tagCursor--
			}
		case key.Matches(msg, v.keys.Right), key.Matches(msg, v.keys.Down):
			if v.tagCursor < len(v.tags)-1 {
				v.tagCursor++
			}
		case key.Matches(msg, v.keys.Toggle):
			if v.tagCursor < len(v.tags) {
				id := v.tags[v.tagCursor].ID
				v.selected[id] = !v.selected[id]
			}
		}
	case FocusResults:
		switch {
		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, v.keys.Down):
			if v.cursor < len(v.PageTasks())-1 {
				v.cursor++
			}
		}
	}
	return v, nil
}

func (v *FilterView) setFocus(f FilterFocus) {
	v.focus = f
	v.startDate.Blur()
	v.endDate.Blur()
	switch f {
	case FocusStartDate:
		v.startDate.Focus()
	case FocusEndDate:
		v.endDate.Focus()
	}
}

func nextSort(o planner.SortOption) planner.SortOption {
	for i, opt := range planner.SortOptions {
		if opt == o {
			return planner.SortOptions[(i+1)%len(planner.SortOptions)]
		}
	}
	return planner.DefaultSortOption
}

func (v *FilterView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	var b strings.Builder
	b.WriteString(s.Title.Render("Filter Tasks"))
	b.WriteString("\n\n")
	b.WriteString(v.renderCriteria(contentWidth))
	b.WriteString("\n\n")
	b.WriteString(v.renderResults(contentWidth))
	b.WriteString("\n")
	b.WriteString(v.renderPageBar())
	b.WriteString("\n")
	b.WriteString(v.status.render(s))
	b.WriteString("\n")
	b.WriteString(renderHelp(s, v.keys.Tab, v.keys.Toggle, v.keys.Completed, v.keys.Priority, v.keys.Sort, v.keys.PrevPage, v.keys.NextPage, v.keys.Back))

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *FilterView) renderCriteria(width int) string {
	s := v.styles
	label := func(text string, f FilterFocus) string {
		if v.focus == f {
			return s.HelpKey.Render("▸ " + text)
		}
		return s.TitleMuted.Render("  " + text)
	}

	var tags []string
	for i, t := range v.tags {
		box := "[ ]"
		if v.selected[t.ID] {
			box = "[x]"
		}
		item := box + " " + t.Name
		if v.focus == FocusTags && i == v.tagCursor {
			item = s.ListSelected.Padding(0).Render(item)
		}
		tags = append(tags, item)
	}
	tagLine := strings.Join(tags, "  ")
	if len(v.tags) == 0 {
		tagLine = s.TitleMuted.Render("no tags")
	}

	dateStyle := func(f FilterFocus) lipgloss.Style {
		if v.focus == f {
			return s.InputFocused
		}
		return s.Input
	}
	dates := lipgloss.JoinHorizontal(lipgloss.Center,
		label("From ", FocusStartDate), dateStyle(FocusStartDate).Render(v.startDate.View()),
		"  ",
		label("To ", FocusEndDate), dateStyle(FocusEndDate).Render(v.endDate.View()),
	)

	options := fmt.Sprintf("Completed: %s   Priority: %s   Sort: %s",
		completionLabel(v.spec.Completed), v.spec.Priority, v.spec.Sort.Label())

	return s.FilterBar.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left,
		label("Tags  ", FocusTags)+lipgloss.NewStyle().Width(width-12).Render(tagLine),
		dates,
		s.TitleMuted.Render(options),
	))
}

func completionLabel(c planner.Completion) string {
	switch c {
	case planner.CompletionDone:
		return "Completed"
	case planner.CompletionOpen:
		return "Not completed"
	}
	return "All"
}

func (v *FilterView) renderResults(width int) string {
	s := v.styles
	if v.loading {
		return s.TitleMuted.Render("Searching…")
	}
	if !v.searched {
		return s.TitleMuted.Render("Press ↵ to search.")
	}
	if len(v.results) == 0 {
		return s.TitleMuted.Render("No tasks match.")
	}

	var rows []string
	for i, t := range v.PageTasks() {
		check := "○"
		if t.IsCompleted {
			check = "●"
		}
		line := fmt.Sprintf("%s %s  %s  %s", check, t.DateCreated,
			s.Priority(t.Priority).Render(fmt.Sprintf("%-6s", t.Priority)),
			truncate(t.Title, width-40))
		line += "  " + s.Tag.Render(t.Label())

		rowStyle := s.ListItem
		if v.focus == FocusResults && i == v.cursor {
			rowStyle = s.ListSelected
		}
		rows = append(rows, rowStyle.Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *FilterView) renderPageBar() string {
	s := v.styles
	buttons := planner.PageNumbers(v.page, v.totalPages(), planner.MaxPageButtons)
	if len(buttons) == 0 {
		return ""
	}
	parts := make([]string, len(buttons))
	for i, b := range buttons {
		if b.Page == v.page {
			parts[i] = s.PageCurrent.Render(" " + b.String() + " ")
		} else {
			parts[i] = s.TitleMuted.Render(" " + b.String() + " ")
		}
	}
	return strings.Join(parts, "")
}
