package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tgienger/smartplanner/internal/api"
	"github.com/tgienger/smartplanner/internal/db"
	"github.com/tgienger/smartplanner/internal/models"
	"github.com/tgienger/smartplanner/internal/planner"
	"github.com/tgienger/smartplanner/internal/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := db.New(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(New(store, log.New(io.Discard, "", 0)))
	t.Cleanup(srv.Close)
	return srv
}

func register(t *testing.T, c *api.Client, username string) session.Session {
	t.Helper()
	sess, err := c.Register(context.Background(), api.Registration{
		Username: username,
		Email:    username + "@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return sess
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(resp.Header.Get(RequestIDHeader)) != 36 {
		t.Errorf("generated request id=%q", resp.Header.Get(RequestIDHeader))
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("echoed request id=%q", got)
	}
}

func TestAuth(t *testing.T) {
	srv := newTestServer(t)
	c := api.New(srv.URL)
	ctx := context.Background()

	sess := register(t, c, "ann")
	if !sess.Authenticated() {
		t.Fatal("register returned anonymous session")
	}

	login, err := c.Login(ctx, "ann", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	a, _ := sess.Token()
	b, _ := login.Token()
	if a != b {
		t.Errorf("login token %q differs from register token %q", b, a)
	}

	_, err = c.Login(ctx, "ann", "wrong")
	if !errors.Is(err, api.ErrNotAuthenticated) || api.Reason(err) != "Invalid login credentials" {
		t.Errorf("bad login err=%v", err)
	}

	_, err = c.Register(ctx, api.Registration{Username: "ann", Email: "x@example.com", Password: "pw"})
	if !errors.Is(err, api.ErrRejected) || api.Reason(err) != "Username already taken" {
		t.Errorf("duplicate register err=%v", err)
	}

	_, err = c.AllTasks(ctx, session.New("not-a-token", "ann"))
	if !errors.Is(err, api.ErrNotAuthenticated) {
		t.Errorf("bad token err=%v", err)
	}

	resp, err := http.Get(srv.URL + "/tasks/get/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("missing token status=%d", resp.StatusCode)
	}
}

func TestTaskLifecycle(t *testing.T) {
	srv := newTestServer(t)
	c := api.New(srv.URL)
	ctx := context.Background()
	sess := register(t, c, "ann")

	tagID, err := c.CreateTag(ctx, sess, "work")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	win := planner.WeekOf(models.MustParseDate("2024-01-07"), time.Sunday)
	inside, err := c.CreateTask(ctx, sess, models.Task{
		Title:       "Write report",
		Priority:    models.PriorityHigh,
		TagID:       &tagID,
		DateCreated: models.MustParseDate("2024-01-09"),
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := c.CreateTask(ctx, sess, models.Task{Title: "Later", DateCreated: models.MustParseDate("2024-01-20")}); err != nil {
		t.Fatal(err)
	}

	tasks, err := c.FetchRange(ctx, sess, win)
	if err != nil {
		t.Fatalf("FetchRange: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != inside || tasks[0].Label() != "work" {
		t.Fatalf("FetchRange=%+v", tasks)
	}

	done := true
	if err := c.UpdateTask(ctx, sess, inside, api.TaskPatch{IsCompleted: &done}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	completed, err := c.FilterTasks(ctx, sess, planner.FilterSpec{Completed: planner.CompletionDone})
	if err != nil {
		t.Fatal(err)
	}
	if len(completed) != 1 || completed[0].Title != "Write report" || completed[0].Priority != models.PriorityHigh {
		t.Errorf("filter completed=%+v", completed)
	}

	if err := c.DeleteTag(ctx, sess, tagID); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	tasks, _ = c.FetchRange(ctx, sess, win)
	if tasks[0].TagID != nil || tasks[0].TagName != models.NoTagName {
		t.Errorf("task still tagged after tag delete: %+v", tasks[0])
	}

	if err := c.DeleteTask(ctx, sess, inside); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	err = c.DeleteTask(ctx, sess, inside)
	if !errors.Is(err, api.ErrRejected) || api.Reason(err) != "Task not found" {
		t.Errorf("second delete err=%v", err)
	}

	all, err := c.AllTasks(ctx, sess)
	if err != nil || len(all) != 1 {
		t.Errorf("AllTasks=%v, %v", all, err)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	srv := newTestServer(t)
	c := api.New(srv.URL)
	ctx := context.Background()
	ann := register(t, c, "ann")
	bob := register(t, c, "bob")

	id, err := c.CreateTask(ctx, ann, models.Task{Title: "mine", DateCreated: models.Today()})
	if err != nil {
		t.Fatal(err)
	}
	if tasks, _ := c.AllTasks(ctx, bob); len(tasks) != 0 {
		t.Errorf("bob sees %d tasks", len(tasks))
	}
	title := "stolen"
	if err := c.UpdateTask(ctx, bob, id, api.TaskPatch{Title: &title}); !errors.Is(err, api.ErrRejected) {
		t.Errorf("foreign update err=%v", err)
	}
}

func TestTagValidation(t *testing.T) {
	srv := newTestServer(t)
	c := api.New(srv.URL)
	ctx := context.Background()
	sess := register(t, c, "ann")

	if _, err := c.CreateTag(ctx, sess, "work"); err != nil {
		t.Fatal(err)
	}
	_, err := c.CreateTag(ctx, sess, "work")
	if !errors.Is(err, api.ErrRejected) || api.Reason(err) != "Tag already exists" {
		t.Errorf("duplicate err=%v", err)
	}
	if _, err := c.CreateTag(ctx, sess, "  "); !errors.Is(err, api.ErrRejected) {
		t.Errorf("blank name err=%v", err)
	}
	if _, err := c.CreateTag(ctx, sess, strings.Repeat("x", models.MaxTagNameLength+1)); !errors.Is(err, api.ErrRejected) {
		t.Errorf("long name err=%v", err)
	}

	for i := 1; i < models.MaxTagsPerUser; i++ {
		if _, err := c.CreateTag(ctx, sess, strings.Repeat("t", i)); err != nil {
			t.Fatalf("tag %d: %v", i, err)
		}
	}
	_, err = c.CreateTag(ctx, sess, "extra")
	if !errors.Is(err, api.ErrRejected) || !strings.Contains(api.Reason(err), "up to 10 tags") {
		t.Errorf("limit err=%v", err)
	}

	tags, err := c.Tags(ctx, sess)
	if err != nil || len(tags) != models.MaxTagsPerUser {
		t.Errorf("Tags=%v, %v", tags, err)
	}
}

func TestTaskValidation(t *testing.T) {
	srv := newTestServer(t)
	c := api.New(srv.URL)
	ctx := context.Background()
	sess := register(t, c, "ann")

	tests := []struct {
		name string
		task models.Task
		want string
	}{
		{"empty title", models.Task{Title: " ", DateCreated: models.Today()}, "Title and date_created are required"},
		{"missing date", models.Task{Title: "x"}, "Title and date_created are required"},
		{"long title", models.Task{Title: strings.Repeat("a", models.MaxTitleLength+1), DateCreated: models.Today()}, "Title must be at most 50 characters"},
		{"unknown tag", models.Task{Title: "x", TagID: new(int64), DateCreated: models.Today()}, "Invalid tag ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateTask(ctx, sess, tt.task)
			if !errors.Is(err, api.ErrRejected) || api.Reason(err) != tt.want {
				t.Errorf("err=%v, want %q", err, tt.want)
			}
		})
	}
}

func TestMalformedBody(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Post(srv.URL+"/users/login/", "application/json", strings.NewReader(`{"username":`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status=%d", resp.StatusCode)
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]any{"message": "<b>&</b>"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status=%d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type=%q", ct)
	}
	want := `{"message":"\u003cb\u003e\u0026\u003c/b\u003e"}` + "\n"
	if got := rec.Body.String(); got != want {
		t.Errorf("body=%q, want %q", got, want)
	}
}
