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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskman help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, HelpText)
	return exitcode.Success
}

// HelpText is printed by help and when no command is given.
const HelpText = `Usage:
  taskman auth login      [common flags] [--email <email>]
  taskman auth register   [common flags] [--fullname <name>] [--email <email>]
  taskman auth me         [common flags] [--local]
  taskman auth logout     [common flags] [--all]

  taskman tasks list      [common flags] [--status <s>] [--priority <p>] [--due-today] [--overdue]
  taskman tasks create    [common flags] --title <title> --category-id <id> --due-date <date>
                          [--priority LOW|MEDIUM|HIGH] [--status <s>] [--description <text>]
  taskman tasks show      [common flags] <id>
  taskman tasks update    [common flags] <id> [--title <t>] [--description <d>] [--status <s>]
                          [--due-date <date>] [--priority <p>] [--category-id <id>] [--completed[=false]]
  taskman tasks complete  [common flags] <id>
  taskman tasks delete    [common flags] <id>

  taskman categories list   [common flags]
  taskman categories show   [common flags] <id>
  taskman categories create [common flags] --name <name> [--description <d>] [--color <c>]
  taskman categories update [common flags] <id> [--name <n>] [--description <d>] [--color <c>]
  taskman categories delete [common flags] [--force] <id>

  taskman profiles list
  taskman profiles use <name>
  taskman help
  taskman version

Aliases:
  tasks ls, tasks add, tasks get, tasks edit, tasks done, tasks rm
  categories ls, categories add, categories get, categories edit, categories rm

Common flags:
  --config <dir>    Override config directory
  --profile <name>  Use a saved profile other than the current one
  --api-url <url>   Override the API endpoint
  --quiet           Suppress informational output
  --debug           Print debug logs to stderr

Dates are YYYY-MM-DD or ISO-8601 date-times.
`
