package api

import (
	"context"
	"net/http"

	"github.com/tgienger/smartplanner/internal/session"
)

// Registration is the form submitted to create an account.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Register creates an account and returns a session for it.
func (c *Client) Register(ctx context.Context, reg Registration) (session.Session, error) {
	var out tokenResponse
	if err := c.do(ctx, "register", nil, http.MethodPost, "/users/register/", reg, &out); err != nil {
		return session.Anonymous(), err
	}
	return session.New(out.Token, reg.Username), nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, username, password string) (session.Session, error) {
	in := map[string]string{"username": username, "password": password}
	var out tokenResponse
	if err := c.do(ctx, "login", nil, http.MethodPost, "/users/login/", in, &out); err != nil {
		return session.Anonymous(), err
	}
	return session.New(out.Token, username), nil
}

// DeleteAccount removes the session's user along with all of their tasks and tags.
func (c *Client) DeleteAccount(ctx context.Context, sess session.Session) error {
	return c.do(ctx, "delete account", &sess, http.MethodDelete, "/users/delete/", nil, nil)
}
