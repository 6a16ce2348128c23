package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Session is an authenticated client plus the user it authenticated as.
// It is built once per invocation and passed to every hosting operation.
type Session struct {
	Client *Client
	User   *User
}

// Authenticate verifies the token by fetching the current user.
func Authenticate(ctx context.Context, client *Client) (*Session, error) {
	if client == nil {
		return nil, errors.New("github client is not configured")
	}
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return &Session{Client: client, User: user}, nil
}

// FullName qualifies a bare repository name with the session user's login.
func (s *Session) FullName(name string) string {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if strings.Contains(name, "/") || s == nil || s.User == nil {
		return name
	}
	return s.User.Login + "/" + name
}

// CurrentUser returns the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	return Do(ctx, c.retrier(), "get current user", func(ctx context.Context) (*User, error) {
		var u User
		if err := c.request(ctx, http.MethodGet, "/user", nil, nil, &u); err != nil {
			return nil, err
		}
		return &u, nil
	})
}

// GetUser returns a user by login.
func (c *Client) GetUser(ctx context.Context, login string) (*User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return c.CurrentUser(ctx)
	}
	return Do(ctx, c.retrier(), "get user", func(ctx context.Context) (*User, error) {
		var u User
		if err := c.request(ctx, http.MethodGet, "/users/"+url.PathEscape(login), nil, nil, &u); err != nil {
			return nil, err
		}
		return &u, nil
	})
}

// Notifications lists inbox threads. Read threads are included when all is true.
func (c *Client) Notifications(ctx context.Context, all bool, limit int) ([]Notification, error) {
	q := url.Values{}
	if all {
		q.Set("all", "true")
	}
	return listPages[Notification](ctx, c, "list notifications", "/notifications", q, limit)
}

// MarkNotificationsRead marks every inbox thread as read.
func (c *Client) MarkNotificationsRead(ctx context.Context) error {
	_, err := Do(ctx, c.retrier(), "mark notifications read", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.request(ctx, http.MethodPut, "/notifications", nil, map[string]any{}, nil)
	})
	return err
}
