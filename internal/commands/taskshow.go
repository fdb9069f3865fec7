package commands

import (
	"context"
	"flag"
	"io"

	"taskman/internal/exitcode"
	"taskman/internal/output"
	"taskman/internal/service"
)

func init() {
	Register(&TaskShowCmd{})
}

// TaskShowCmd implements the tasks show command.
type TaskShowCmd struct{}

func (c *TaskShowCmd) Name() string      { return "tasks show" }
func (c *TaskShowCmd) Aliases() []string { return []string{"tasks get"} }
func (c *TaskShowCmd) Synopsis() string  { return "Show a task" }
func (c *TaskShowCmd) Usage() string     { return "taskman tasks show [common flags] <id>" }
func (c *TaskShowCmd) NeedsAuth() bool   { return true }

func (c *TaskShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TaskShowCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := parseID(args, "task")
	if err != nil {
		return userError(errOut, "%v", err)
	}

	task, err := svc.GetTask(ctx, id)
	if err != nil {
		return backendError(errOut, err)
	}

	output.New(out).Task(task)
	return exitcode.Success
}
