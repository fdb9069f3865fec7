package commands

import (
	"context"
	"errors"
	"flag"
	"io"
	"strings"

	"taskman/internal/service"
)

func init() {
	Register(&TaskUpdateCmd{})
}

// TaskUpdateCmd implements the tasks update command. Only the flags given
// are sent.
type TaskUpdateCmd struct {
	title       optString
	description optString
	status      optString
	dueDate     optString
	priority    optString
	categoryID  optInt64
	completed   optBool
}

func (c *TaskUpdateCmd) Name() string      { return "tasks update" }
func (c *TaskUpdateCmd) Aliases() []string { return []string{"tasks edit"} }
func (c *TaskUpdateCmd) Synopsis() string  { return "Update fields of a task" }
func (c *TaskUpdateCmd) Usage() string {
	return "taskman tasks update [common flags] <id> [--title <t>] [--description <d>] [--status <s>] " +
		"[--due-date <date>] [--priority <p>] [--category-id <id>] [--completed[=false]]"
}
func (c *TaskUpdateCmd) NeedsAuth() bool { return true }

func (c *TaskUpdateCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = TaskUpdateCmd{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.dueDate, "due-date", "")
	fs.Var(&c.dueDate, "due", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.categoryID, "category-id", "")
	fs.Var(&c.categoryID, "category", "")
	fs.Var(&c.completed, "completed", "")
}

// patch builds the outgoing patch from the flags that were given.
func (c *TaskUpdateCmd) patch() (service.TaskPatch, error) {
	p := service.TaskPatch{
		Description: c.description.ptr(),
		CategoryID:  c.categoryID.ptr(),
		Completed:   c.completed.ptr(),
	}
	if c.title.set {
		t := strings.TrimSpace(c.title.val)
		if t == "" {
			return p, errors.New("title cannot be empty")
		}
		p.Title = &t
	}
	if c.status.set {
		s := strings.TrimSpace(c.status.val)
		if s == "" {
			return p, errors.New("status cannot be empty")
		}
		p.Status = &s
	}
	if c.dueDate.set {
		d, err := parseDueDate(c.dueDate.val)
		if err != nil {
			return p, err
		}
		p.DueDate = &d
	}
	if c.priority.set {
		pr, err := service.ParsePriority(c.priority.val)
		if err != nil {
			return p, err
		}
		p.Priority = &pr
	}
	return p, nil
}

func (c *TaskUpdateCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := parseID(args, "task")
	if err != nil {
		return userError(errOut, "%v", err)
	}

	patch, err := c.patch()
	if err != nil {
		return userError(errOut, "%v", err)
	}
	if patch.IsEmpty() {
		return userError(errOut, "no fields to update")
	}

	task, err := svc.UpdateTask(ctx, id, patch)
	if err != nil {
		return backendError(errOut, err)
	}
	return printTask(env, out, task, "")
}
