package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskman/internal/exitcode"
	"taskman/internal/output"
	"taskman/internal/service"
	"taskman/internal/session"
)

func init() {
	Register(&ProfilesListCmd{})
	Register(&ProfilesUseCmd{})
}

// ProfilesListCmd implements the profiles list command.
type ProfilesListCmd struct{}

func (c *ProfilesListCmd) Name() string      { return "profiles list" }
func (c *ProfilesListCmd) Aliases() []string { return []string{"profiles ls"} }
func (c *ProfilesListCmd) Synopsis() string  { return "List saved profiles" }
func (c *ProfilesListCmd) Usage() string     { return "taskman profiles list [common flags]" }
func (c *ProfilesListCmd) NeedsAuth() bool   { return false }

func (c *ProfilesListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ProfilesListCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	names, err := env.Sessions.List()
	if errors.Is(err, session.ErrNoConfig) || (err == nil && len(names) == 0) {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "no profiles found")
		}
		return exitcode.Success
	}
	if err != nil {
		return sessionError(errOut, err)
	}

	current, err := env.Sessions.Current()
	if err != nil {
		return sessionError(errOut, err)
	}
	output.New(out).Profiles(names, current)
	return exitcode.Success
}

// ProfilesUseCmd implements the profiles use command.
type ProfilesUseCmd struct{}

func (c *ProfilesUseCmd) Name() string      { return "profiles use" }
func (c *ProfilesUseCmd) Aliases() []string { return []string{"profiles switch"} }
func (c *ProfilesUseCmd) Synopsis() string  { return "Switch the current profile" }
func (c *ProfilesUseCmd) Usage() string     { return "taskman profiles use [common flags] <name>" }
func (c *ProfilesUseCmd) NeedsAuth() bool   { return false }

func (c *ProfilesUseCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ProfilesUseCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return userError(errOut, "profile name required")
	}

	if err := env.Sessions.Switch(name); err != nil {
		if errors.Is(err, session.ErrNoConfig) || errors.Is(err, session.ErrProfileNotFound) {
			return userError(errOut, "profile not found: %s", name)
		}
		return sessionError(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
