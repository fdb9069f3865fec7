package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskman/internal/exitcode"
	"taskman/internal/output"
	"taskman/internal/service"
)

func init() {
	Register(&TaskCreateCmd{})
}

// TaskCreateCmd implements the tasks create command.
type TaskCreateCmd struct {
	title       string
	description optString
	status      string
	dueDate     string
	priority    string
	categoryID  optInt64
}

func (c *TaskCreateCmd) Name() string      { return "tasks create" }
func (c *TaskCreateCmd) Aliases() []string { return []string{"tasks add"} }
func (c *TaskCreateCmd) Synopsis() string  { return "Create a task" }
func (c *TaskCreateCmd) Usage() string {
	return "taskman tasks create [common flags] --title <title> --category-id <id> --due-date <date> " +
		"[--priority LOW|MEDIUM|HIGH] [--status <status>] [--description <text>]"
}
func (c *TaskCreateCmd) NeedsAuth() bool { return true }

func (c *TaskCreateCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = TaskCreateCmd{}
	fs.StringVar(&c.title, "title", "", "")
	fs.StringVar(&c.title, "t", "", "")
	fs.Var(&c.description, "description", "")
	fs.StringVar(&c.status, "status", service.DefaultStatus, "")
	fs.StringVar(&c.dueDate, "due-date", "", "")
	fs.StringVar(&c.dueDate, "due", "", "")
	fs.StringVar(&c.priority, "priority", string(service.PriorityMedium), "")
	fs.Var(&c.categoryID, "category-id", "")
	fs.Var(&c.categoryID, "category", "")
}

func (c *TaskCreateCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	// A bare title may be given as positional words.
	title := c.title
	if title == "" {
		title = strings.Join(args, " ")
	} else if len(args) > 0 {
		return userError(errOut, "unexpected argument: %s", args[0])
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return userError(errOut, "title required")
	}
	if !c.categoryID.set {
		return userError(errOut, "category id required (--category-id)")
	}
	if strings.TrimSpace(c.dueDate) == "" {
		return userError(errOut, "due date required (--due-date)")
	}
	due, err := parseDueDate(c.dueDate)
	if err != nil {
		return userError(errOut, "%v", err)
	}
	priority, err := service.ParsePriority(c.priority)
	if err != nil {
		return userError(errOut, "%v", err)
	}
	status := strings.TrimSpace(c.status)
	if status == "" {
		status = service.DefaultStatus
	}

	task, err := svc.CreateTask(ctx, service.TaskInput{
		Title:       title,
		Description: c.description.ptr(),
		Status:      status,
		DueDate:     due,
		Priority:    priority,
		CategoryID:  c.categoryID.val,
	})
	if err != nil {
		return backendError(errOut, err)
	}

	return printTask(env, out, task, "")
}

// printTask shows a task unless quiet, then reports success.
func printTask(env *Env, out io.Writer, task service.Task, msg string) int {
	if env.Config.Quiet {
		return exitcode.Success
	}
	if msg != "" {
		fmt.Fprintln(out, msg)
	}
	output.New(out).Task(task)
	return exitcode.Success
}
