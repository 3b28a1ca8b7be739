// Package gateway is the typed HTTP client for the TaskDeck RPC surface.
// The session cookie set by Login travels implicitly through the client's
// cookie jar; callers never see token material.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"taskdeck/internal/models"
)

// Client issues query and mutation calls against a TaskDeck server. Errors
// returned by any call carry the server's error message verbatim.
type Client struct {
	base string
	http *http.Client
}

// New builds a client for the given base URL (e.g. "http://localhost:8080").
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Jar: jar, Timeout: 15 * time.Second},
	}, nil
}

// Register creates an account. The session is not started; call Login next.
func (c *Client) Register(ctx context.Context, email, password string) error {
	in := map[string]string{"email": email, "password": password}
	return c.call(ctx, http.MethodPost, "/api/auth/register", in, nil)
}

// Login verifies credentials and stores the session cookie in the jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	in := map[string]string{"email": email, "password": password}
	return c.call(ctx, http.MethodPost, "/api/auth/login", in, nil)
}

// Logout ends the session; the server expires the cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Me returns the authenticated user, or (nil, nil) for an anonymous session.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user *models.User
	if err := c.call(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListProjects returns the session user's projects ordered by id.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.call(ctx, http.MethodGet, "/api/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject creates a project and returns the created record.
func (c *Client) CreateProject(ctx context.Context, name string) (models.Project, error) {
	var project models.Project
	in := map[string]string{"name": name}
	if err := c.call(ctx, http.MethodPost, "/api/projects", in, &project); err != nil {
		return models.Project{}, err
	}
	return project, nil
}

// UpdateProject renames a project.
func (c *Client) UpdateProject(ctx context.Context, id int64, name string) error {
	in := map[string]string{"name": name}
	return c.call(ctx, http.MethodPut, fmt.Sprintf("/api/projects/%d", id), in, nil)
}

// DeleteProject removes a project and its todos.
func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/api/projects/%d", id), nil, nil)
}

// ListTodos returns one project's todos ordered by id.
func (c *Client) ListTodos(ctx context.Context, projectID int64) ([]models.Todo, error) {
	var todos []models.Todo
	path := fmt.Sprintf("/api/todos?projectId=%d", projectID)
	if err := c.call(ctx, http.MethodGet, path, nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// CreateTodo creates a todo and returns the created record.
func (c *Client) CreateTodo(ctx context.Context, content string, projectID int64) (models.Todo, error) {
	var todo models.Todo
	in := map[string]interface{}{"content": content, "projectId": projectID}
	if err := c.call(ctx, http.MethodPost, "/api/todos", in, &todo); err != nil {
		return models.Todo{}, err
	}
	return todo, nil
}

// UpdateTodo sets the completed flag (0 or 1).
func (c *Client) UpdateTodo(ctx context.Context, id int64, completed int) error {
	in := map[string]int{"completed": completed}
	return c.call(ctx, http.MethodPut, fmt.Sprintf("/api/todos/%d", id), in, nil)
}

// DeleteTodo removes a todo.
func (c *Client) DeleteTodo(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/api/todos/%d", id), nil, nil)
}

func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeError surfaces the server's error payload as a plain error whose
// message is exactly what the server sent.
func decodeError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return errors.New(payload.Error)
	}
	return fmt.Errorf("server error: %s", resp.Status)
}
