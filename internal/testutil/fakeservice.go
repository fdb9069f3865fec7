// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"taskman/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu         sync.RWMutex
	nextID     int64
	users      map[int64]service.User
	passwords  map[string]string // email -> password
	tasks      map[int64]service.Task
	categories map[int64]service.Category
	calls      []string

	// LoginResult, when set, is returned by Login instead of checking
	// the registered users.
	LoginResult *service.LoginResult

	// Error injection for testing
	LoginErr          error
	RegisterErr       error
	GetUserErr        error
	ListTasksErr      error
	GetTaskErr        error
	CreateTaskErr     error
	UpdateTaskErr     error
	CompleteTaskErr   error
	DeleteTaskErr     error
	ListCategoriesErr error
	GetCategoryErr    error
	CreateCategoryErr error
	UpdateCategoryErr error
	DeleteCategoryErr error

	// Token is handed out by a successful Login.
	Token string

	// LastFilter, LastTaskInput and LastTaskPatch record the most recent
	// arguments so tests can inspect what a command sent.
	LastFilter        service.TaskFilter
	LastTaskInput     service.TaskInput
	LastTaskPatch     service.TaskPatch
	LastCategoryPatch service.CategoryPatch
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users:      make(map[int64]service.User),
		passwords:  make(map[string]string),
		tasks:      make(map[int64]service.Task),
		categories: make(map[int64]service.Category),
		Token:      "fake-token",
	}
}

// AddUser adds an account that Login accepts.
func (f *FakeService) AddUser(fullname, email, password string) service.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u := service.User{ID: f.nextID, Fullname: fullname, Email: email, Role: service.RoleUser, IsActive: true}
	f.users[u.ID] = u
	f.passwords[email] = password
	return u
}

// AddTask adds a task and returns it with its ID assigned.
func (f *FakeService) AddTask(task service.Task) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	task.ID = f.nextID
	if task.Status == "" {
		task.Status = service.DefaultStatus
	}
	if task.Priority == "" {
		task.Priority = service.PriorityMedium
	}
	f.tasks[task.ID] = task
	return task
}

// AddCategory adds a category and returns it with its ID assigned.
func (f *FakeService) AddCategory(name string) service.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := service.Category{ID: f.nextID, Name: name}
	f.categories[c.ID] = c
	return c
}

// Calls returns the names of the Service methods invoked so far.
func (f *FakeService) Calls() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *FakeService) record(name string) {
	f.calls = append(f.calls, name)
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, email, password string) (service.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Login")
	if f.LoginErr != nil {
		return service.LoginResult{}, f.LoginErr
	}
	if f.LoginResult != nil {
		return *f.LoginResult, nil
	}
	if pw, ok := f.passwords[email]; !ok || pw != password {
		return service.LoginResult{}, fmt.Errorf("invalid credentials")
	}
	for _, u := range f.users {
		if u.Email == email {
			return service.LoginResult{Token: f.Token, User: &u}, nil
		}
	}
	return service.LoginResult{}, ErrNotFound
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, in service.RegisterInput) (service.User, error) {
	f.mu.Lock()
	f.record("Register")
	err := f.RegisterErr
	f.mu.Unlock()
	if err != nil {
		return service.User{}, err
	}
	return f.AddUser(in.Fullname, in.Email, in.Password), nil
}

// GetUser implements service.Service.
func (f *FakeService) GetUser(ctx context.Context, id int64) (service.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetUser")
	if f.GetUserErr != nil {
		return service.User{}, f.GetUserErr
	}
	u, ok := f.users[id]
	if !ok {
		return service.User{}, ErrNotFound
	}
	return u, nil
}

// ListTasks implements service.Service. Filters apply with the same
// precedence as the remote API.
func (f *FakeService) ListTasks(ctx context.Context, filter service.TaskFilter) ([]service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTasks")
	f.LastFilter = filter
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}

	today := time.Now().UTC().Format(time.DateOnly)
	var out []service.Task
	for _, t := range f.tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format(time.DateOnly)
		}
		switch {
		case filter.Overdue:
			if due == "" || due >= today || t.Completed {
				continue
			}
		case filter.DueToday:
			if due != today {
				continue
			}
		case filter.Status != "":
			if t.Status != filter.Status {
				continue
			}
		case filter.Priority != "":
			if t.Priority != filter.Priority {
				continue
			}
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id int64) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetTask")
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	t, ok := f.tasks[id]
	if !ok {
		return service.Task{}, ErrNotFound
	}
	return t, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	f.mu.Lock()
	f.record("CreateTask")
	f.LastTaskInput = in
	err := f.CreateTaskErr
	f.mu.Unlock()
	if err != nil {
		return service.Task{}, err
	}
	return f.AddTask(service.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		DueDate:     service.ParseTime(in.DueDate),
		Priority:    in.Priority,
		CategoryID:  in.CategoryID,
	}), nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id int64, patch service.TaskPatch) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateTask")
	f.LastTaskPatch = patch
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	t, ok := f.tasks[id]
	if !ok {
		return service.Task{}, ErrNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		d := *patch.Description
		t.Description = &d
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.DueDate != nil {
		t.DueDate = service.ParseTime(*patch.DueDate)
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.CategoryID != nil {
		t.CategoryID = *patch.CategoryID
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	f.tasks[id] = t
	return t, nil
}

// CompleteTask implements service.Service.
func (f *FakeService) CompleteTask(ctx context.Context, id int64) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CompleteTask")
	if f.CompleteTaskErr != nil {
		return service.Task{}, f.CompleteTaskErr
	}
	t, ok := f.tasks[id]
	if !ok {
		return service.Task{}, ErrNotFound
	}
	t.Completed = !t.Completed
	if t.Completed {
		t.Status = "completed"
	} else {
		t.Status = service.DefaultStatus
	}
	f.tasks[id] = t
	return t, nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	if _, ok := f.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

// ListCategories implements service.Service.
func (f *FakeService) ListCategories(ctx context.Context) ([]service.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListCategories")
	if f.ListCategoriesErr != nil {
		return nil, f.ListCategoriesErr
	}
	out := make([]service.Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetCategory implements service.Service.
func (f *FakeService) GetCategory(ctx context.Context, id int64) (service.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetCategory")
	if f.GetCategoryErr != nil {
		return service.Category{}, f.GetCategoryErr
	}
	c, ok := f.categories[id]
	if !ok {
		return service.Category{}, ErrNotFound
	}
	return c, nil
}

// CreateCategory implements service.Service.
func (f *FakeService) CreateCategory(ctx context.Context, in service.CategoryInput) (service.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateCategory")
	if f.CreateCategoryErr != nil {
		return service.Category{}, f.CreateCategoryErr
	}
	f.nextID++
	c := service.Category{ID: f.nextID, Name: in.Name, Description: in.Description, Color: in.Color}
	f.categories[c.ID] = c
	return c, nil
}

// UpdateCategory implements service.Service.
func (f *FakeService) UpdateCategory(ctx context.Context, id int64, patch service.CategoryPatch) (service.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateCategory")
	f.LastCategoryPatch = patch
	if f.UpdateCategoryErr != nil {
		return service.Category{}, f.UpdateCategoryErr
	}
	c, ok := f.categories[id]
	if !ok {
		return service.Category{}, ErrNotFound
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.Color != nil {
		c.Color = *patch.Color
	}
	f.categories[id] = c
	return c, nil
}

// DeleteCategory implements service.Service.
func (f *FakeService) DeleteCategory(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteCategory")
	if f.DeleteCategoryErr != nil {
		return f.DeleteCategoryErr
	}
	if _, ok := f.categories[id]; !ok {
		return ErrNotFound
	}
	delete(f.categories, id)
	return nil
}

var _ service.Service = (*FakeService)(nil)
