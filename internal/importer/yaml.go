package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/tgienger/smartplanner/internal/models"
	"github.com/tgienger/smartplanner/internal/session"
)

// YAMLTask represents a single task in the YAML input.
type YAMLTask struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Priority    string `yaml:"priority,omitempty"`
	Date        string `yaml:"date"`
	Tag         string `yaml:"tag,omitempty"`
	Completed   bool   `yaml:"completed,omitempty"`
}

// YAMLInput represents the root structure of the YAML input.
type YAMLInput struct {
	Tasks []YAMLTask `yaml:"tasks"`
}

// Repository is the part of the task repository client the importer uses.
type Repository interface {
	Tags(ctx context.Context, sess session.Session) ([]models.Tag, error)
	CreateTag(ctx context.Context, sess session.Session, name string) (int64, error)
	CreateTask(ctx context.Context, sess session.Session, t models.Task) (int64, error)
}

// Parse reads tasks from YAML. A task's tag name is carried in TagName with
// TagID left nil until Import resolves it.
func Parse(r io.Reader) ([]models.Task, error) {
	var input YAMLInput
	if err := yaml.NewDecoder(r).Decode(&input); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("no tasks found in YAML")
		}
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}

	if len(input.Tasks) == 0 {
		return nil, fmt.Errorf("no tasks found in YAML")
	}

	tasks := make([]models.Task, 0, len(input.Tasks))
	for i, yt := range input.Tasks {
		t, err := convert(yt)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func convert(yt YAMLTask) (models.Task, error) {
	title := strings.TrimSpace(yt.Title)
	if title == "" {
		return models.Task{}, fmt.Errorf("task title is required")
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return models.Task{}, fmt.Errorf("title %q is longer than %d characters", title, models.MaxTitleLength)
	}

	date, err := models.ParseDate(strings.TrimSpace(yt.Date))
	if err != nil {
		return models.Task{}, fmt.Errorf("date for %q: %w", title, err)
	}

	priority, err := models.ParsePriority(yt.Priority)
	if err != nil {
		return models.Task{}, fmt.Errorf("priority for %q: %w", title, err)
	}
	if priority == models.PriorityNone {
		priority = models.PriorityMedium
	}

	return models.Task{
		Title:       title,
		Description: yt.Description,
		Priority:    priority,
		TagName:     strings.TrimSpace(yt.Tag),
		DateCreated: date,
		IsCompleted: yt.Completed,
	}, nil
}

// Import creates tasks in order, creating any tag that does not exist yet.
// It stops at the first failure and returns how many tasks were created.
func Import(ctx context.Context, repo Repository, sess session.Session, tasks []models.Task) (int, error) {
	existing, err := repo.Tags(ctx, sess)
	if err != nil {
		return 0, fmt.Errorf("list tags: %w", err)
	}
	tagMap := make(map[string]int64, len(existing))
	for _, t := range existing {
		tagMap[t.Name] = t.ID
	}

	count := 0
	for _, t := range tasks {
		if t.TagName != "" && t.TagName != models.NoTagName {
			id, ok := tagMap[t.TagName]
			if !ok {
				id, err = repo.CreateTag(ctx, sess, t.TagName)
				if err != nil {
					return count, fmt.Errorf("create tag %q: %w", t.TagName, err)
				}
				tagMap[t.TagName] = id
			}
			t.TagID = &id
		}

		if _, err := repo.CreateTask(ctx, sess, t); err != nil {
			return count, fmt.Errorf("add task %q: %w", t.Title, err)
		}
		count++
	}
	return count, nil
}
