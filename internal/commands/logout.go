package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"taskman/internal/exitcode"
	"taskman/internal/service"
	"taskman/internal/session"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the auth logout command. It only touches local
// state; the server is not contacted.
type LogoutCmd struct {
	all bool
}

func (c *LogoutCmd) Name() string      { return "auth logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove the saved session" }
func (c *LogoutCmd) Usage() string     { return "taskman auth logout [common flags] [--all]" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *LogoutCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return userError(errOut, "unexpected argument: %s", args[0])
	}

	if _, err := env.Sessions.List(); errors.Is(err, session.ErrNoConfig) {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	var err error
	if c.all {
		err = env.Sessions.Clear()
	} else {
		err = env.Sessions.Delete(env.Config.Profile)
	}
	if err != nil {
		// Without --profile a missing current profile just means logged out.
		if errors.Is(err, session.ErrProfileNotFound) && env.Config.Profile == "" {
			if !env.Config.Quiet {
				fmt.Fprintln(out, "not logged in")
			}
			return exitcode.Success
		}
		if errors.Is(err, session.ErrProfileNotFound) {
			return userError(errOut, "%v", err)
		}
		return sessionError(errOut, fmt.Errorf("failed to remove session: %w", err))
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
