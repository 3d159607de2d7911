package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tgienger/smartplanner/internal/models"
	"github.com/tgienger/smartplanner/internal/planner"
	"github.com/tgienger/smartplanner/internal/session"
)

type tasksResponse struct {
	Tasks *[]models.Task `json:"tasks"`
}

// list returns the decoded tasks. A body without a tasks list, or a task
// without a date or with an out-of-range priority, is a rejected response.
func (r tasksResponse) list(op string) ([]models.Task, error) {
	if r.Tasks == nil {
		return nil, &Error{Op: op, Kind: KindRejected, Message: "response has no tasks"}
	}
	for _, t := range *r.Tasks {
		if t.DateCreated.IsZero() {
			return nil, &Error{Op: op, Kind: KindRejected,
				Message: fmt.Sprintf("task %d has no date_created", t.ID), Err: models.ErrInvalidDate}
		}
		if !t.Priority.Valid() {
			return nil, &Error{Op: op, Kind: KindRejected,
				Message: fmt.Sprintf("task %d has no valid priority", t.ID), Err: models.ErrInvalidPriority}
		}
	}
	return nonNil(*r.Tasks), nil
}

// taskFields is the writable part of a task.
type taskFields struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	TagID       *int64          `json:"tag_id"`
	DateCreated models.Date     `json:"date_created"`
	IsCompleted bool            `json:"is_completed"`
}

// TaskPatch lists the fields to change on a task. Nil and unset fields are
// left alone; TagID set to null untags the task.
type TaskPatch struct {
	Title       *string           `json:"title,omitempty"`
	Description *string           `json:"description,omitempty"`
	Priority    *models.Priority  `json:"priority,omitempty"`
	TagID       models.OptionalID `json:"tag_id,omitzero"`
	DateCreated *models.Date      `json:"date_created,omitempty"`
	IsCompleted *bool             `json:"is_completed,omitempty"`
}

// FullPatch sets every writable field of t.
func FullPatch(t models.Task) TaskPatch {
	return TaskPatch{
		Title:       &t.Title,
		Description: &t.Description,
		Priority:    &t.Priority,
		TagID:       models.OptionalFrom(t.TagID),
		DateCreated: &t.DateCreated,
		IsCompleted: &t.IsCompleted,
	}
}

type updateRequest struct {
	TaskID int64 `json:"task_id"`
	TaskPatch
}

type taskIDRequest struct {
	TaskID int64 `json:"task_id"`
}

type createTaskResponse struct {
	Message string `json:"message"`
	TaskID  int64  `json:"task_id"`
}

type rangeRequest struct {
	StartDate models.Date `json:"start_date"`
	EndDate   models.Date `json:"end_date"`
}

type filterRequest struct {
	Tags      []int64      `json:"tags"`
	Completed string       `json:"completed"`
	Priority  string       `json:"priority"`
	StartDate *models.Date `json:"start_date,omitempty"`
	EndDate   *models.Date `json:"end_date,omitempty"`
}

// AllTasks returns every task of the session's user.
func (c *Client) AllTasks(ctx context.Context, sess session.Session) ([]models.Task, error) {
	var out tasksResponse
	if err := c.do(ctx, "list tasks", &sess, http.MethodGet, "/tasks/get/", nil, &out); err != nil {
		return nil, err
	}
	return out.list("list tasks")
}

// TasksInRange returns the tasks dated within [start, end], both inclusive.
func (c *Client) TasksInRange(ctx context.Context, sess session.Session, start, end models.Date) ([]models.Task, error) {
	if end.Compare(start) < 0 {
		return nil, &Error{Op: "list tasks in range", Kind: KindRejected, Message: "end date is before start date"}
	}
	in := rangeRequest{StartDate: start, EndDate: end}
	var out tasksResponse
	if err := c.do(ctx, "list tasks in range", &sess, http.MethodPost, "/tasks/get-by-date/", in, &out); err != nil {
		return nil, err
	}
	return out.list("list tasks in range")
}

// FetchRange returns whatever the repository holds for the window's dates.
// Nothing is cached; every call goes to the repository.
func (c *Client) FetchRange(ctx context.Context, sess session.Session, w planner.Window) ([]models.Task, error) {
	if len(w) == 0 {
		return nil, &Error{Op: "fetch window", Kind: KindRejected, Message: "empty window"}
	}
	return c.TasksInRange(ctx, sess, w.Start(), w.End())
}

// FilterTasks asks the repository for the tasks matching f's predicates.
// f.Sort is not sent; order the result with planner.SortBy.
func (c *Client) FilterTasks(ctx context.Context, sess session.Session, f planner.FilterSpec) ([]models.Task, error) {
	in := filterRequest{
		Tags:      f.Tags,
		Completed: f.Completed.String(),
		Priority:  f.Priority.String(),
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	}
	if in.Tags == nil {
		in.Tags = []int64{}
	}
	var out tasksResponse
	if err := c.do(ctx, "filter tasks", &sess, http.MethodPost, "/tasks/filter/", in, &out); err != nil {
		return nil, err
	}
	return out.list("filter tasks")
}

// CreateTask stores t and returns the id the repository assigned.
func (c *Client) CreateTask(ctx context.Context, sess session.Session, t models.Task) (int64, error) {
	in := taskFields{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		TagID:       t.TagID,
		DateCreated: t.DateCreated,
		IsCompleted: t.IsCompleted,
	}
	var out createTaskResponse
	if err := c.do(ctx, "create task", &sess, http.MethodPost, "/tasks/create/", in, &out); err != nil {
		return 0, err
	}
	return out.TaskID, nil
}

// UpdateTask applies p to the task with the given id.
func (c *Client) UpdateTask(ctx context.Context, sess session.Session, id int64, p TaskPatch) error {
	in := updateRequest{TaskID: id, TaskPatch: p}
	return c.do(ctx, "update task", &sess, http.MethodPost, "/tasks/update/", in, nil)
}

// DeleteTask removes the task with the given id.
func (c *Client) DeleteTask(ctx context.Context, sess session.Session, id int64) error {
	return c.do(ctx, "delete task", &sess, http.MethodDelete, "/tasks/delete/", taskIDRequest{TaskID: id}, nil)
}

func nonNil(tasks []models.Task) []models.Task {
	if tasks == nil {
		return []models.Task{}
	}
	return tasks
}
