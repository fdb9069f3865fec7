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
	Register(&TaskListCmd{})
}

// TaskListCmd implements the tasks list command.
// At most one filter reaches the server; --overdue wins over --due-today,
// which wins over --status, which wins over --priority.
type TaskListCmd struct {
	status   string
	priority string
	dueToday bool
	overdue  bool
}

func (c *TaskListCmd) Name() string      { return "tasks list" }
func (c *TaskListCmd) Aliases() []string { return []string{"tasks ls"} }
func (c *TaskListCmd) Synopsis() string  { return "List tasks" }
func (c *TaskListCmd) Usage() string {
	return "taskman tasks list [common flags] [--status <s>] [--priority <p>] [--due-today] [--overdue]"
}
func (c *TaskListCmd) NeedsAuth() bool { return true }

func (c *TaskListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.BoolVar(&c.dueToday, "due-today", false, "")
	fs.BoolVar(&c.overdue, "overdue", false, "")
}

func (c *TaskListCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return userError(errOut, "unexpected argument: %s", args[0])
	}

	filter := service.TaskFilter{
		Status:   strings.TrimSpace(c.status),
		DueToday: c.dueToday,
		Overdue:  c.overdue,
	}
	if c.priority != "" {
		p, err := service.ParsePriority(c.priority)
		if err != nil {
			return userError(errOut, "%v", err)
		}
		filter.Priority = p
	}

	tasks, err := svc.ListTasks(ctx, filter)
	if err != nil {
		return backendError(errOut, err)
	}

	if len(tasks) == 0 {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	output.New(out).TaskTable(tasks)
	return exitcode.Success
}
