package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/tgienger/smartplanner/internal/db"
	"github.com/tgienger/smartplanner/internal/models"
	"github.com/tgienger/smartplanner/internal/planner"
)

type createTaskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	TagID       *int64          `json:"tag_id"`
	DateCreated models.Date     `json:"date_created"`
	IsCompleted bool            `json:"is_completed"`
}

// validTitle returns the trimmed title, or the reason it is rejected.
func validTitle(title string) (string, string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "Title is required"
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return "", fmt.Sprintf("Title must be at most %d characters", models.MaxTitleLength)
	}
	return title, ""
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if strings.TrimSpace(req.Title) == "" || req.DateCreated.IsZero() {
		writeError(w, http.StatusBadRequest, "Title and date_created are required")
		return
	}
	title, problem := validTitle(req.Title)
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	id, err := s.store.CreateTask(r.Context(), user.ID, models.Task{
		Title:       title,
		Description: req.Description,
		Priority:    req.Priority,
		TagID:       req.TagID,
		DateCreated: req.DateCreated,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Task created successfully",
		"task_id": id,
	})
}

type updateTaskRequest struct {
	TaskID      int64             `json:"task_id"`
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Priority    *models.Priority  `json:"priority"`
	TagID       models.OptionalID `json:"tag_id"`
	DateCreated *models.Date      `json:"date_created"`
	IsCompleted *bool             `json:"is_completed"`
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req updateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.TaskID == 0 {
		writeError(w, http.StatusBadRequest, "Task ID is required")
		return
	}

	if req.Title != nil {
		title, problem := validTitle(*req.Title)
		if problem != "" {
			writeError(w, http.StatusBadRequest, problem)
			return
		}
		req.Title = &title
	}
	if req.Priority != nil && !req.Priority.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid priority value.")
		return
	}
	if req.DateCreated != nil && req.DateCreated.IsZero() {
		writeError(w, http.StatusBadRequest, "date_created cannot be empty")
		return
	}

	err := s.store.UpdateTask(r.Context(), user.ID, req.TaskID, db.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		TagID:       req.TagID,
		DateCreated: req.DateCreated,
		IsCompleted: req.IsCompleted,
	})
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Task updated successfully")
}

type taskIDRequest struct {
	TaskID int64 `json:"task_id"`
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req taskIDRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.TaskID == 0 {
		writeError(w, http.StatusBadRequest, "Task ID is required")
		return
	}

	err := s.store.DeleteTask(r.Context(), user.ID, req.TaskID)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Task deleted successfully")
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request, user *models.User) {
	tasks, err := s.store.ListTasks(r.Context(), user.ID)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

type dateRangeRequest struct {
	StartDate models.Date `json:"start_date"`
	EndDate   models.Date `json:"end_date"`
}

func (s *Server) handleTasksByDate(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req dateRangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		writeError(w, http.StatusBadRequest, "Start date and end date are required")
		return
	}
	if req.EndDate.Compare(req.StartDate) < 0 {
		writeError(w, http.StatusBadRequest, "End date must not be before start date")
		return
	}

	tasks, err := s.store.ListTasksInRange(r.Context(), user.ID, req.StartDate, req.EndDate)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

type filterRequest struct {
	Tags      []json.Number   `json:"tags"`
	Completed string          `json:"completed"`
	Priority  models.Priority `json:"priority"`
	StartDate *models.Date    `json:"start_date"`
	EndDate   *models.Date    `json:"end_date"`
}

func (s *Server) handleFilterTasks(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req filterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var f planner.FilterSpec
	for _, n := range req.Tags {
		id, err := n.Int64()
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid tag IDs provided.")
			return
		}
		f.Tags = append(f.Tags, id)
	}

	completed, err := planner.ParseCompletion(req.Completed)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.Completed = completed
	f.Priority = req.Priority
	if req.StartDate != nil && !req.StartDate.IsZero() {
		f.StartDate = req.StartDate
	}
	if req.EndDate != nil && !req.EndDate.IsZero() {
		f.EndDate = req.EndDate
	}

	tasks, err := s.store.FilterTasks(r.Context(), user.ID, f)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}
