package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseError reports a response record that cannot become a model.
type ParseError struct {
	Model string
	Field string
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", e.Model, e.Msg)
	}
	return fmt.Sprintf("invalid %s: %s: %s", e.Model, e.Field, e.Msg)
}

// Parsing policy, shared by every model: "id" is required and must be a
// positive integer. Every other field falls back to a default, and a
// malformed timestamp becomes nil rather than failing the record.
// snake_case keys win over their camelCase spellings.

// timeLayouts are tried in order by ParseTimestamp.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// ParseTimestamp parses an ISO-8601 date or date-time. Values without a
// zone are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %q (want YYYY-MM-DD or ISO-8601)", s)
}

// ParseTime is the permissive form of ParseTimestamp: empty or malformed
// input yields nil.
func ParseTime(s string) *time.Time {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return nil
	}
	return &t
}

// flexInt accepts a JSON number or a numeric string. Anything else leaves
// it unset.
type flexInt struct {
	v   int64
	set bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		f.v, f.set = n, true
		return nil
	}
	if x, err := strconv.ParseFloat(s, 64); err == nil && x == float64(int64(x)) {
		f.v, f.set = int64(x), true
	}
	return nil
}

// flexTime accepts a timestamp string; any other JSON value is ignored.
type flexTime struct {
	t *time.Time
}

func (f *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		f.t = ParseTime(s)
	}
	return nil
}

// flexString accepts a JSON string; null and other types leave it unset.
type flexString struct {
	v   string
	set bool
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &f.v); err == nil && !bytes.Equal(b, []byte("null")) {
		f.set = true
	}
	return nil
}

// flexBool accepts a JSON boolean; anything else leaves it unset.
type flexBool struct {
	v   bool
	set bool
}

func (f *flexBool) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &f.v); err == nil && !bytes.Equal(b, []byte("null")) {
		f.set = true
	}
	return nil
}

func pickInt(a, b flexInt) int64 {
	if a.set {
		return a.v
	}
	return b.v
}

func pickTime(a, b flexTime) *time.Time {
	if a.t != nil {
		return a.t
	}
	return b.t
}

func stringOr(f flexString, def string) string {
	if f.set {
		return f.v
	}
	return def
}

func decodeObject(model string, data []byte, v any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return &ParseError{Model: model, Msg: "expected a JSON object"}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &ParseError{Model: model, Msg: err.Error()}
	}
	return nil
}

func requireID(model string, id flexInt) error {
	if !id.set {
		return &ParseError{Model: model, Field: "id", Msg: "missing"}
	}
	if id.v <= 0 {
		return &ParseError{Model: model, Field: "id", Msg: fmt.Sprintf("not positive: %d", id.v)}
	}
	return nil
}

type rawUser struct {
	ID         flexInt    `json:"id"`
	Fullname   flexString `json:"fullname"`
	Email      flexString `json:"email"`
	Role       flexString `json:"role"`
	IsActive   flexBool   `json:"is_active"`
	IsActiveC  flexBool   `json:"isActive"`
	CreatedAt  flexTime   `json:"created_at"`
	CreatedAtC flexTime   `json:"createdAt"`
	UpdatedAt  flexTime   `json:"updated_at"`
	UpdatedAtC flexTime   `json:"updatedAt"`
}

// ParseUser builds a User from a JSON object.
func ParseUser(data []byte) (User, error) {
	var r rawUser
	if err := decodeObject("user", data, &r); err != nil {
		return User{}, err
	}
	if err := requireID("user", r.ID); err != nil {
		return User{}, err
	}
	active := true
	switch {
	case r.IsActive.set:
		active = r.IsActive.v
	case r.IsActiveC.set:
		active = r.IsActiveC.v
	}
	return User{
		ID:        r.ID.v,
		Fullname:  stringOr(r.Fullname, ""),
		Email:     stringOr(r.Email, ""),
		Role:      Role(stringOr(r.Role, string(RoleUser))),
		IsActive:  active,
		CreatedAt: pickTime(r.CreatedAt, r.CreatedAtC),
		UpdatedAt: pickTime(r.UpdatedAt, r.UpdatedAtC),
	}, nil
}

type rawCategory struct {
	ID          flexInt    `json:"id"`
	Name        flexString `json:"name"`
	Description flexString `json:"description"`
	Color       flexString `json:"color"`
	UserID      flexInt    `json:"user_id"`
	UserIDC     flexInt    `json:"userId"`
	CreatedAt   flexTime   `json:"created_at"`
	CreatedAtC  flexTime   `json:"createdAt"`
	UpdatedAt   flexTime   `json:"updated_at"`
	UpdatedAtC  flexTime   `json:"updatedAt"`
}

// ParseCategory builds a Category from a JSON object.
func ParseCategory(data []byte) (Category, error) {
	var r rawCategory
	if err := decodeObject("category", data, &r); err != nil {
		return Category{}, err
	}
	if err := requireID("category", r.ID); err != nil {
		return Category{}, err
	}
	return Category{
		ID:          r.ID.v,
		Name:        stringOr(r.Name, ""),
		Description: stringOr(r.Description, ""),
		Color:       stringOr(r.Color, ""),
		UserID:      pickInt(r.UserID, r.UserIDC),
		CreatedAt:   pickTime(r.CreatedAt, r.CreatedAtC),
		UpdatedAt:   pickTime(r.UpdatedAt, r.UpdatedAtC),
	}, nil
}

type rawTask struct {
	ID          flexInt    `json:"id"`
	Title       flexString `json:"title"`
	Description flexString `json:"description"`
	Status      flexString `json:"status"`
	DueDate     flexTime   `json:"due_date"`
	DueDateC    flexTime   `json:"dueDate"`
	Priority    flexString `json:"priority"`
	Completed   flexBool   `json:"completed"`
	UserID      flexInt    `json:"user_id"`
	UserIDC     flexInt    `json:"userId"`
	CategoryID  flexInt    `json:"category_id"`
	CategoryIDC flexInt    `json:"categoryId"`
	CreatedAt   flexTime   `json:"created_at"`
	CreatedAtC  flexTime   `json:"createdAt"`
	UpdatedAt   flexTime   `json:"updated_at"`
	UpdatedAtC  flexTime   `json:"updatedAt"`
}

// ParseTask builds a Task from a JSON object.
func ParseTask(data []byte) (Task, error) {
	var r rawTask
	if err := decodeObject("task", data, &r); err != nil {
		return Task{}, err
	}
	if err := requireID("task", r.ID); err != nil {
		return Task{}, err
	}

	var desc *string
	if r.Description.set {
		d := r.Description.v
		desc = &d
	}

	status := stringOr(r.Status, DefaultStatus)
	if status == "" {
		status = DefaultStatus
	}

	priority, err := ParsePriority(stringOr(r.Priority, string(PriorityMedium)))
	if err != nil {
		priority = PriorityMedium
	}

	return Task{
		ID:          r.ID.v,
		Title:       stringOr(r.Title, ""),
		Description: desc,
		Status:      status,
		DueDate:     pickTime(r.DueDate, r.DueDateC),
		Priority:    priority,
		Completed:   r.Completed.set && r.Completed.v,
		UserID:      pickInt(r.UserID, r.UserIDC),
		CategoryID:  pickInt(r.CategoryID, r.CategoryIDC),
		CreatedAt:   pickTime(r.CreatedAt, r.CreatedAtC),
		UpdatedAt:   pickTime(r.UpdatedAt, r.UpdatedAtC),
	}, nil
}

func decodeArray(model string, data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &ParseError{Model: model + " list", Msg: "expected a JSON array"}
	}
	return items, nil
}

// ParseTasks builds tasks from a JSON array. One bad element fails the list.
func ParseTasks(data []byte) ([]Task, error) {
	items, err := decodeArray("task", data)
	if err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(items))
	for _, item := range items {
		t, err := ParseTask(item)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// ParseCategories builds categories from a JSON array. One bad element fails the list.
func ParseCategories(data []byte) ([]Category, error) {
	items, err := decodeArray("category", data)
	if err != nil {
		return nil, err
	}
	cats := make([]Category, 0, len(items))
	for _, item := range items {
		c, err := ParseCategory(item)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, nil
}
