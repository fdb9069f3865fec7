// Package restapi implements the service.Service interface on top of the
// task service's REST API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"taskman/internal/api"
	"taskman/internal/service"
)

// Requester is the subset of *api.Client the backend needs.
type Requester interface {
	Request(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}

// Client implements service.Service using the REST API.
type Client struct {
	api Requester
}

// New creates a REST backend over an API client.
func New(r Requester) *Client {
	return &Client{api: r}
}

// NewFromOptions builds the API client and the backend in one step.
func NewFromOptions(opts api.Options) *Client {
	return New(api.New(opts))
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (service.LoginResult, error) {
	data, err := c.api.Request(ctx, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return service.LoginResult{}, err
	}

	var body struct {
		Token       string          `json:"token"`
		AccessToken string          `json:"access_token"`
		User        json.RawMessage `json:"user"`
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &body); err != nil {
			return service.LoginResult{}, &service.ParseError{Model: "login response", Msg: err.Error()}
		}
	}

	result := service.LoginResult{Token: body.Token}
	if result.Token == "" {
		result.Token = body.AccessToken
	}
	if isNull(body.User) {
		return result, nil
	}
	user, err := service.ParseUser(body.User)
	if err != nil {
		return service.LoginResult{}, err
	}
	result.User = &user
	return result, nil
}

// Register creates an account. Servers that answer with only a message
// yield a zero User.
func (c *Client) Register(ctx context.Context, in service.RegisterInput) (service.User, error) {
	data, err := c.api.Request(ctx, http.MethodPost, "/register", in)
	if err != nil {
		return service.User{}, err
	}
	raw, ok := unwrap(data, "user")
	if !ok || !hasID(raw) {
		return service.User{}, nil
	}
	return service.ParseUser(raw)
}

// GetUser fetches a user by ID.
func (c *Client) GetUser(ctx context.Context, id int64) (service.User, error) {
	data, err := c.api.Request(ctx, http.MethodGet, fmt.Sprintf("/user/%d", id), nil)
	if err != nil {
		return service.User{}, err
	}
	raw, _ := unwrap(data, "user")
	return service.ParseUser(raw)
}

// ListTasks returns tasks, narrowed server-side by at most one filter.
func (c *Client) ListTasks(ctx context.Context, filter service.TaskFilter) ([]service.Task, error) {
	path := "/tasks"
	switch {
	case filter.Overdue:
		path = "/tasks/overdue"
	case filter.DueToday:
		path = "/tasks/due/today"
	case filter.Status != "":
		path = "/tasks/status/" + url.PathEscape(filter.Status)
	case filter.Priority != "":
		path = "/tasks/priority/" + url.PathEscape(string(filter.Priority))
	}

	data, err := c.api.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	raw, _ := unwrap(data, "tasks")
	return service.ParseTasks(raw)
}

// GetTask fetches a task by ID.
func (c *Client) GetTask(ctx context.Context, id int64) (service.Task, error) {
	data, err := c.api.Request(ctx, http.MethodGet, taskPath(id), nil)
	if err != nil {
		return service.Task{}, err
	}
	raw, _ := unwrap(data, "task")
	return service.ParseTask(raw)
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	data, err := c.api.Request(ctx, http.MethodPost, "/tasks", in)
	if err != nil {
		return service.Task{}, err
	}
	raw, _ := unwrap(data, "task")
	return service.ParseTask(raw)
}

// UpdateTask applies a patch. When the server answers with only a message
// the task is fetched again.
func (c *Client) UpdateTask(ctx context.Context, id int64, patch service.TaskPatch) (service.Task, error) {
	data, err := c.api.Request(ctx, http.MethodPut, taskPath(id), patch)
	if err != nil {
		return service.Task{}, err
	}
	return c.taskOrRefetch(ctx, id, data)
}

// CompleteTask toggles completion.
func (c *Client) CompleteTask(ctx context.Context, id int64) (service.Task, error) {
	data, err := c.api.Request(ctx, http.MethodPatch, taskPath(id)+"/complete", nil)
	if err != nil {
		return service.Task{}, err
	}
	return c.taskOrRefetch(ctx, id, data)
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	_, err := c.api.Request(ctx, http.MethodDelete, taskPath(id), nil)
	return err
}

// ListCategories returns categories.
func (c *Client) ListCategories(ctx context.Context) ([]service.Category, error) {
	data, err := c.api.Request(ctx, http.MethodGet, "/categories", nil)
	if err != nil {
		return nil, err
	}
	raw, _ := unwrap(data, "categories")
	return service.ParseCategories(raw)
}

// GetCategory fetches a category by ID.
func (c *Client) GetCategory(ctx context.Context, id int64) (service.Category, error) {
	data, err := c.api.Request(ctx, http.MethodGet, categoryPath(id), nil)
	if err != nil {
		return service.Category{}, err
	}
	raw, _ := unwrap(data, "category")
	return service.ParseCategory(raw)
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, in service.CategoryInput) (service.Category, error) {
	data, err := c.api.Request(ctx, http.MethodPost, "/categories", in)
	if err != nil {
		return service.Category{}, err
	}
	raw, _ := unwrap(data, "category")
	return service.ParseCategory(raw)
}

// UpdateCategory applies a patch.
func (c *Client) UpdateCategory(ctx context.Context, id int64, patch service.CategoryPatch) (service.Category, error) {
	data, err := c.api.Request(ctx, http.MethodPut, categoryPath(id), patch)
	if err != nil {
		return service.Category{}, err
	}
	raw, ok := unwrap(data, "category")
	if ok && hasID(raw) {
		return service.ParseCategory(raw)
	}
	return c.GetCategory(ctx, id)
}

// DeleteCategory deletes a category.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	_, err := c.api.Request(ctx, http.MethodDelete, categoryPath(id), nil)
	return err
}

func (c *Client) taskOrRefetch(ctx context.Context, id int64, data json.RawMessage) (service.Task, error) {
	raw, ok := unwrap(data, "task")
	if ok && hasID(raw) {
		return service.ParseTask(raw)
	}
	return c.GetTask(ctx, id)
}

func taskPath(id int64) string {
	return fmt.Sprintf("/tasks/%d", id)
}

func categoryPath(id int64) string {
	return fmt.Sprintf("/categories/%d", id)
}

// unwrap returns the value under key when data is an object that carries
// it, otherwise data itself. ok is false for an empty body.
func unwrap(data json.RawMessage, key string) (json.RawMessage, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return data, false
	}
	if data[0] != '{' {
		return data, true
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return data, true
	}
	if inner, ok := fields[key]; ok && !isNull(inner) {
		return inner, true
	}
	return data, true
}

func hasID(data json.RawMessage) bool {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return !isNull(probe.ID)
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

var _ service.Service = (*Client)(nil)
