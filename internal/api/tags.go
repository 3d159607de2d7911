package api

import (
	"context"
	"net/http"

	"github.com/tgienger/smartplanner/internal/models"
	"github.com/tgienger/smartplanner/internal/session"
)

type tagsResponse struct {
	Tags []models.Tag `json:"tags"`
}

type createTagResponse struct {
	Message string `json:"message"`
	TagID   int64  `json:"tag_id"`
}

// Tags returns the session user's tags.
func (c *Client) Tags(ctx context.Context, sess session.Session) ([]models.Tag, error) {
	var out tagsResponse
	if err := c.do(ctx, "list tags", &sess, http.MethodGet, "/tags/get/", nil, &out); err != nil {
		return nil, err
	}
	if out.Tags == nil {
		return []models.Tag{}, nil
	}
	return out.Tags, nil
}

// CreateTag adds a tag and returns its id. Duplicate names and the per-user
// limit are enforced by the repository.
func (c *Client) CreateTag(ctx context.Context, sess session.Session, name string) (int64, error) {
	var out createTagResponse
	in := map[string]string{"name": name}
	if err := c.do(ctx, "create tag", &sess, http.MethodPost, "/tags/create/", in, &out); err != nil {
		return 0, err
	}
	return out.TagID, nil
}

// DeleteTag removes a tag. Tasks carrying it become untagged.
func (c *Client) DeleteTag(ctx context.Context, sess session.Session, id int64) error {
	in := map[string]int64{"tag_id": id}
	return c.do(ctx, "delete tag", &sess, http.MethodDelete, "/tags/delete/", in, nil)
}
