package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/tgienger/smartplanner/internal/db"
	"github.com/tgienger/smartplanner/internal/models"
)

type createTagRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req createTagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Tag name is required")
		return
	}
	if utf8.RuneCountInString(name) > models.MaxTagNameLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Tag name must be at most %d characters", models.MaxTagNameLength))
		return
	}

	tag, err := s.store.CreateTag(r.Context(), user.ID, name)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Tag created successfully",
		"tag_id":  tag.ID,
	})
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request, user *models.User) {
	tags, err := s.store.ListTags(r.Context(), user.ID)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

type tagIDRequest struct {
	TagID int64 `json:"tag_id"`
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req tagIDRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.TagID == 0 {
		writeError(w, http.StatusBadRequest, "Tag ID is required")
		return
	}

	err := s.store.DeleteTag(r.Context(), user.ID, req.TagID)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Tag not found")
		return
	}
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Tag deleted successfully")
}
