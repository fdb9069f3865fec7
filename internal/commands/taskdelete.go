package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskman/internal/exitcode"
	"taskman/internal/service"
)

func init() {
	Register(&TaskDeleteCmd{})
}

// TaskDeleteCmd implements the tasks delete command.
type TaskDeleteCmd struct{}

func (c *TaskDeleteCmd) Name() string      { return "tasks delete" }
func (c *TaskDeleteCmd) Aliases() []string { return []string{"tasks rm"} }
func (c *TaskDeleteCmd) Synopsis() string  { return "Delete a task" }
func (c *TaskDeleteCmd) Usage() string     { return "taskman tasks delete [common flags] <id>" }
func (c *TaskDeleteCmd) NeedsAuth() bool   { return true }

func (c *TaskDeleteCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TaskDeleteCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := parseID(args, "task")
	if err != nil {
		return userError(errOut, "%v", err)
	}

	if err := svc.DeleteTask(ctx, id); err != nil {
		return backendError(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
