// Package server exposes the task repository over HTTP.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/tgienger/smartplanner/internal/db"
	"github.com/tgienger/smartplanner/internal/models"
	"github.com/tgienger/smartplanner/internal/planner"
)

const defaultTimeout = 5 * time.Second

// Store is the persistence the server needs. *db.DB implements it.
type Store interface {
	CreateUser(ctx context.Context, username, email, name, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	IssueToken(ctx context.Context, userID int64) (string, error)
	UserByToken(ctx context.Context, token string) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error

	CreateTask(ctx context.Context, userID int64, t models.Task) (int64, error)
	UpdateTask(ctx context.Context, userID, id int64, u db.TaskUpdate) error
	DeleteTask(ctx context.Context, userID, id int64) error
	ListTasks(ctx context.Context, userID int64) ([]models.Task, error)
	ListTasksInRange(ctx context.Context, userID int64, start, end models.Date) ([]models.Task, error)
	FilterTasks(ctx context.Context, userID int64, f planner.FilterSpec) ([]models.Task, error)

	CreateTag(ctx context.Context, userID int64, name string) (*models.Tag, error)
	ListTags(ctx context.Context, userID int64) ([]models.Tag, error)
	DeleteTag(ctx context.Context, userID, id int64) error

	PingContext(ctx context.Context) error
}

// Server routes the repository's endpoints.
type Server struct {
	store   Store
	logger  *log.Logger
	timeout time.Duration
	mux     *http.ServeMux
	handler http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithTimeout bounds the time spent handling one request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New returns the HTTP handler for store. A nil logger uses log.Default.
func New(store Store, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		store:   store,
		logger:  logger,
		timeout: defaultTimeout,
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /users/register/", s.handleRegister)
	s.mux.HandleFunc("POST /users/login/", s.handleLogin)
	s.mux.HandleFunc("DELETE /users/delete/", s.authed(s.handleDeleteUser))

	s.mux.HandleFunc("POST /tasks/create/", s.authed(s.handleCreateTask))
	s.mux.HandleFunc("POST /tasks/update/", s.authed(s.handleUpdateTask))
	s.mux.HandleFunc("DELETE /tasks/delete/", s.authed(s.handleDeleteTask))
	s.mux.HandleFunc("GET /tasks/get/", s.authed(s.handleListTasks))
	s.mux.HandleFunc("POST /tasks/get-by-date/", s.authed(s.handleTasksByDate))
	s.mux.HandleFunc("POST /tasks/filter/", s.authed(s.handleFilterTasks))

	s.mux.HandleFunc("POST /tags/create/", s.authed(s.handleCreateTag))
	s.mux.HandleFunc("GET /tags/get/", s.authed(s.handleListTags))
	s.mux.HandleFunc("DELETE /tags/delete/", s.authed(s.handleDeleteTag))

	s.handler = withRequestID(logging(s.logger)(timeout(s.mux, s.timeout)))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.PingContext(r.Context()); err != nil {
		s.logger.Printf("rid=%s health err=%v", RequestIDFromContext(r.Context()), err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
