package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskman/internal/exitcode"
	"taskman/internal/output"
	"taskman/internal/service"
	"taskman/internal/session"
)

func init() {
	Register(&MeCmd{})
}

// MeCmd implements the auth me command.
type MeCmd struct {
	local bool
}

func (c *MeCmd) Name() string      { return "auth me" }
func (c *MeCmd) Aliases() []string { return []string{"auth whoami"} }
func (c *MeCmd) Synopsis() string  { return "Show the logged-in user" }
func (c *MeCmd) Usage() string     { return "taskman auth me [common flags] [--local]" }
func (c *MeCmd) NeedsAuth() bool   { return true }

func (c *MeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.local, "local", false, "")
}

func (c *MeCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return userError(errOut, "unexpected argument: %s", args[0])
	}

	p := env.Session
	sess := output.Session{
		Profile: p.Name,
		APIURL:  env.Config.ResolveAPIURL(p.APIURL),
		UserID:  p.UserID,
		Email:   p.Email,
	}
	if exp, ok := session.TokenExpiry(p.Token); ok {
		sess.Expires = &exp
	}

	f := output.New(out)
	if c.local {
		f.Session(sess)
		return exitcode.Success
	}

	user, err := svc.GetUser(ctx, p.UserID)
	if err != nil {
		return backendError(errOut, err)
	}
	f.User(user)
	fmt.Fprintln(out)
	f.Session(sess)
	return exitcode.Success
}
