package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tgienger/smartplanner/internal/db"
	"github.com/tgienger/smartplanner/internal/models"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON: multiple JSON values")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// storeError maps a store error to its response.
func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, db.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, db.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid login credentials")
	case errors.Is(err, db.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "Username already taken")
	case errors.Is(err, db.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "Email already taken")
	case errors.Is(err, db.ErrInvalidTag):
		writeError(w, http.StatusBadRequest, "Invalid tag ID")
	case errors.Is(err, db.ErrTagExists):
		writeError(w, http.StatusBadRequest, "Tag already exists")
	case errors.Is(err, db.ErrTagLimit):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("You can only have up to %d tags.", models.MaxTagsPerUser))
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	default:
		s.logger.Printf("rid=%s method=%s path=%s err=%v", RequestIDFromContext(r.Context()), r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
