package server

import (
	"net/http"
	"strings"

	"github.com/tgienger/smartplanner/internal/models"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	user, err := s.store.CreateUser(r.Context(), req.Username, req.Email, strings.TrimSpace(req.Name), req.Password)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	token, err := s.store.IssueToken(r.Context(), user.ID)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	user, err := s.store.Authenticate(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	token, err := s.store.IssueToken(r.Context(), user.ID)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, user *models.User) {
	if err := s.store.DeleteUser(r.Context(), user.ID); err != nil {
		s.storeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "User and all associated data deleted successfully")
}
