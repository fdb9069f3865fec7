package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskman/internal/service"
)

func init() {
	Register(&TaskCompleteCmd{})
}

// TaskCompleteCmd implements the tasks complete command. The server
// toggles completion, so running it twice reopens the task.
type TaskCompleteCmd struct{}

func (c *TaskCompleteCmd) Name() string      { return "tasks complete" }
func (c *TaskCompleteCmd) Aliases() []string { return []string{"tasks done"} }
func (c *TaskCompleteCmd) Synopsis() string  { return "Toggle a task's completion" }
func (c *TaskCompleteCmd) Usage() string     { return "taskman tasks complete [common flags] <id>" }
func (c *TaskCompleteCmd) NeedsAuth() bool   { return true }

func (c *TaskCompleteCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TaskCompleteCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := parseID(args, "task")
	if err != nil {
		return userError(errOut, "%v", err)
	}

	task, err := svc.CompleteTask(ctx, id)
	if err != nil {
		return backendError(errOut, err)
	}

	state := "reopened"
	if task.Completed {
		state = "completed"
	}
	return printTask(env, out, task, fmt.Sprintf("task %d %s", task.ID, state))
}
