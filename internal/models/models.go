package models

// Limits enforced at the input boundary and by the task repository.
const (
	MaxTitleLength   = 50
	MaxTagNameLength = 50
	MaxTagsPerUser   = 10
)

// NoTagName is what the repository reports as the tag name of an untagged task.
const NoTagName = "No Tag"

// User represents an account on the task repository
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// Tag represents a user-defined label that can be applied to tasks
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Task represents a single to-do item
type Task struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	TagID       *int64   `json:"tag_id"`
	TagName     string   `json:"tag_name,omitempty"` // populated by the repository
	DateCreated Date     `json:"date_created"`
	IsCompleted bool     `json:"is_completed"`
}

// Tagged reports whether the task carries the given tag.
func (t Task) Tagged(tagID int64) bool {
	return t.TagID != nil && *t.TagID == tagID
}

// Label returns the tag name to display for the task.
func (t Task) Label() string {
	if t.TagID == nil || t.TagName == "" {
		return NoTagName
	}
	return t.TagName
}

// TagLookup maps tag ids to names for one render cycle.
type TagLookup map[int64]string

// NewTagLookup indexes tags by id.
func NewTagLookup(tags []Tag) TagLookup {
	m := make(TagLookup, len(tags))
	for _, t := range tags {
		m[t.ID] = t.Name
	}
	return m
}

// Name returns the name of a tag id, or NoTagName for nil or unknown ids.
func (l TagLookup) Name(id *int64) string {
	if id == nil {
		return NoTagName
	}
	if name, ok := l[*id]; ok {
		return name
	}
	return NoTagName
}
