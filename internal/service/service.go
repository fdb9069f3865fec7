// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"
	"errors"
)

// ErrNoUser is returned when a login response carries no user object.
var ErrNoUser = errors.New("no user returned")

// Service defines the interface for remote task operations.
// All HTTP calls go through this interface.
// Commands never import the API client directly.
type Service interface {
	// Login exchanges credentials for a token.
	// A nil LoginResult.User means the server returned no user.
	Login(ctx context.Context, email, password string) (LoginResult, error)

	// Register creates an account.
	Register(ctx context.Context, in RegisterInput) (User, error)

	// GetUser fetches a user by ID.
	GetUser(ctx context.Context, id int64) (User, error)

	// ListTasks returns the caller's tasks in API order.
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)

	// GetTask fetches a task by ID.
	GetTask(ctx context.Context, id int64) (Task, error)

	// CreateTask creates a task and returns it as stored.
	CreateTask(ctx context.Context, in TaskInput) (Task, error)

	// UpdateTask applies a patch and returns the updated task.
	UpdateTask(ctx context.Context, id int64, patch TaskPatch) (Task, error)

	// CompleteTask toggles a task's completion and returns it.
	CompleteTask(ctx context.Context, id int64) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id int64) error

	// ListCategories returns the caller's categories in API order.
	ListCategories(ctx context.Context) ([]Category, error)

	// GetCategory fetches a category by ID.
	GetCategory(ctx context.Context, id int64) (Category, error)

	// CreateCategory creates a category and returns it as stored.
	CreateCategory(ctx context.Context, in CategoryInput) (Category, error)

	// UpdateCategory applies a patch and returns the updated category.
	UpdateCategory(ctx context.Context, id int64, patch CategoryPatch) (Category, error)

	// DeleteCategory deletes a category.
	DeleteCategory(ctx context.Context, id int64) error
}
