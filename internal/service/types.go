// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"fmt"
	"strings"
	"time"
)

// Priority is a task priority.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ParsePriority normalizes a user-supplied priority.
// Matching is case-insensitive; anything other than LOW, MEDIUM or HIGH fails.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToUpper(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("invalid priority: %s (want LOW, MEDIUM or HIGH)", s)
}

// Role is a user's role on the server.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
	RoleDisabled   Role = "disabled"
)

// DefaultStatus is the status of a task created without one.
const DefaultStatus = "pending"

// User is an account on the remote service. The server is authoritative.
type User struct {
	ID        int64
	Fullname  string
	Email     string
	Role      Role
	IsActive  bool
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

// Category groups tasks.
type Category struct {
	ID          int64
	Name        string
	Description string
	Color       string
	UserID      int64
	CreatedAt   *time.Time
	UpdatedAt   *time.Time
}

// Task represents a single task item.
type Task struct {
	ID          int64
	Title       string
	Description *string
	Status      string
	DueDate     *time.Time
	Priority    Priority
	Completed   bool
	UserID      int64
	CategoryID  int64
	CreatedAt   *time.Time
	UpdatedAt   *time.Time
}

// LoginResult is what a successful credential exchange returns.
// User is nil when the server omitted the user object.
type LoginResult struct {
	Token string
	User  *User
}

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TaskInput is the payload for creating a task.
type TaskInput struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Status      string   `json:"status"`
	DueDate     string   `json:"due_date"`
	Priority    Priority `json:"priority"`
	CategoryID  int64    `json:"category_id"`
}

// TaskPatch carries only the fields being changed.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *string   `json:"status,omitempty"`
	DueDate     *string   `json:"due_date,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
}

// IsEmpty reports whether no field is set.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.DueDate == nil && p.Priority == nil && p.CategoryID == nil && p.Completed == nil
}

// TaskFilter narrows a task listing. At most one server-side filter is
// applied; precedence is Overdue, DueToday, Status, Priority.
type TaskFilter struct {
	Status   string
	Priority Priority
	DueToday bool
	Overdue  bool
}

// CategoryInput is the payload for creating a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// CategoryPatch carries only the fields being changed.
type CategoryPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// IsEmpty reports whether no field is set.
func (p CategoryPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Color == nil
}
