package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tgienger/smartplanner/internal/models"
	"github.com/tgienger/smartplanner/internal/planner"
)

const selectTasks = `
	SELECT t.id, t.title, t.description, t.priority, t.tag_id, tg.name, t.date_created, t.is_completed
	FROM tasks t
	LEFT JOIN tags tg ON t.tag_id = tg.id
	WHERE t.user_id = ?`

// TaskUpdate lists the columns to change. Nil and unset fields are kept.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *models.Priority
	TagID       models.OptionalID
	DateCreated *models.Date
	IsCompleted *bool
}

// Empty reports whether the update changes nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil &&
		!u.TagID.Set && u.DateCreated == nil && u.IsCompleted == nil
}

// CreateTask creates a new task and returns its ID
func (db *DB) CreateTask(ctx context.Context, userID int64, t models.Task) (int64, error) {
	if t.Priority == models.PriorityNone {
		t.Priority = models.PriorityMedium
	}

	var id int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if t.TagID != nil {
			if err := ownsTag(ctx, tx, userID, *t.TagID); err != nil {
				return err
			}
		}
		result, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (user_id, title, description, priority, tag_id, date_created, is_completed)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, userID, t.Title, t.Description, int(t.Priority), t.TagID, t.DateCreated.String(), t.IsCompleted)
		if err != nil {
			return err
		}
		id, err = result.LastInsertId()
		return err
	})
	return id, err
}

// GetTask retrieves a task by ID
func (db *DB) GetTask(ctx context.Context, userID, id int64) (*models.Task, error) {
	t, err := scanTask(db.QueryRowContext(ctx, selectTasks+" AND t.id = ?", userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTasks returns all of a user's tasks ordered by date
func (db *DB) ListTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	return db.queryTasks(ctx, selectTasks+" ORDER BY t.date_created, t.id", userID)
}

// ListTasksInRange returns the tasks dated within [start, end]
func (db *DB) ListTasksInRange(ctx context.Context, userID int64, start, end models.Date) ([]models.Task, error) {
	return db.queryTasks(ctx, selectTasks+" AND t.date_created BETWEEN ? AND ? ORDER BY t.date_created, t.id",
		userID, start.String(), end.String())
}

// FilterTasks returns the tasks matching f's predicates, oldest first.
// f.Sort is ignored.
func (db *DB) FilterTasks(ctx context.Context, userID int64, f planner.FilterSpec) ([]models.Task, error) {
	query := selectTasks
	args := []any{userID}

	if len(f.Tags) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.Tags)), ",")
		query += " AND t.tag_id IN (" + placeholders + ")"
		for _, id := range f.Tags {
			args = append(args, id)
		}
	}

	if f.StartDate != nil {
		query += " AND t.date_created >= ?"
		args = append(args, f.StartDate.String())
	}
	if f.EndDate != nil {
		query += " AND t.date_created <= ?"
		args = append(args, f.EndDate.String())
	}

	switch f.Completed {
	case planner.CompletionDone:
		query += " AND t.is_completed = 1"
	case planner.CompletionOpen:
		query += " AND t.is_completed = 0"
	}

	if f.Priority != models.PriorityNone {
		query += " AND t.priority = ?"
		args = append(args, int(f.Priority))
	}

	query += " ORDER BY t.date_created ASC, t.id"
	return db.queryTasks(ctx, query, args...)
}

// UpdateTask applies u to one of the user's tasks
func (db *DB) UpdateTask(ctx context.Context, userID, id int64, u TaskUpdate) error {
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if u.Title != nil {
		set("title", *u.Title)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.Priority != nil {
		set("priority", int(*u.Priority))
	}
	if u.TagID.Set {
		set("tag_id", u.TagID.Ptr())
	}
	if u.DateCreated != nil {
		set("date_created", u.DateCreated.String())
	}
	if u.IsCompleted != nil {
		set("is_completed", *u.IsCompleted)
	}

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if u.TagID.Valid {
			if err := ownsTag(ctx, tx, userID, u.TagID.ID); err != nil {
				return err
			}
		}
		if len(sets) == 0 {
			var n int
			if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks WHERE id = ? AND user_id = ?", id, userID).Scan(&n); err != nil {
				return err
			}
			if n == 0 {
				return ErrNotFound
			}
			return nil
		}

		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, id, userID)
		result, err := tx.ExecContext(ctx,
			"UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ?", args...)
		if err != nil {
			return err
		}
		return expectRow(result)
	})
}

// DeleteTask deletes one of the user's tasks
func (db *DB) DeleteTask(ctx context.Context, userID, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	return expectRow(result)
}

func (db *DB) queryTasks(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (models.Task, error) {
	var (
		t        models.Task
		priority int
		tagID    sql.NullInt64
		tagName  sql.NullString
		date     string
	)
	if err := s.Scan(&t.ID, &t.Title, &t.Description, &priority, &tagID, &tagName, &date, &t.IsCompleted); err != nil {
		return t, err
	}

	d, err := models.ParseDate(date)
	if err != nil {
		return t, fmt.Errorf("task %d: %w", t.ID, err)
	}
	t.DateCreated = d
	t.Priority = models.Priority(priority)
	t.TagName = models.NoTagName
	if tagID.Valid {
		id := tagID.Int64
		t.TagID = &id
		t.TagName = tagName.String
	}
	return t, nil
}
