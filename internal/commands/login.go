package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskman/internal/exitcode"
	"taskman/internal/prompt"
	"taskman/internal/service"
	"taskman/internal/session"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the auth login command.
type LoginCmd struct {
	email string
}

func (c *LoginCmd) Name() string      { return "auth login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in and save the session" }
func (c *LoginCmd) Usage() string     { return "taskman auth login [common flags] [--email <email>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return userError(errOut, "unexpected argument: %s", args[0])
	}

	name := profileName(env)

	// Re-login keeps the endpoint and email of an existing profile.
	var saved session.Profile
	if p, err := env.Sessions.Load(name); err == nil {
		saved = *p
	}
	apiURL := env.Config.ResolveAPIURL(saved.APIURL)

	email := strings.TrimSpace(c.email)
	fields := []prompt.Field{{Label: "Password", Secret: true}}
	if email == "" {
		fields = append([]prompt.Field{{Label: "Email", Value: saved.Email}}, fields...)
	}
	values, err := env.Prompt.Prompt(ctx, fields)
	if err != nil {
		return backendError(errOut, err)
	}
	if email == "" {
		email = strings.TrimSpace(values[0])
	}
	password := values[len(values)-1]
	if email == "" {
		return userError(errOut, "email required")
	}
	if password == "" {
		return userError(errOut, "password required")
	}

	if svc == nil {
		svc, err = env.Connect(apiURL)
		if err != nil {
			return backendError(errOut, err)
		}
	}

	res, err := svc.Login(ctx, email, password)
	if err != nil {
		return backendError(errOut, fmt.Errorf("login failed: %w", err))
	}
	if res.User == nil {
		fmt.Fprintf(errOut, "error: login failed: %v\n", service.ErrNoUser)
		return exitcode.AuthError
	}
	if res.Token == "" {
		fmt.Fprintln(errOut, "error: login failed: no token returned")
		return exitcode.AuthError
	}

	if res.User.Email != "" {
		email = res.User.Email
	}
	err = env.Sessions.Save(name, session.Profile{
		APIURL: apiURL,
		UserID: res.User.ID,
		Email:  email,
		Token:  res.Token,
	})
	if err != nil {
		return sessionError(errOut, fmt.Errorf("failed to save session: %w", err))
	}

	if !env.Config.Quiet {
		fmt.Fprintf(out, "logged in as %s (profile %s)\n", email, name)
	}
	return exitcode.Success
}

// profileName picks the profile a login writes to: --profile, then the
// current profile, then "default".
func profileName(env *Env) string {
	if env.Config.Profile != "" {
		return env.Config.Profile
	}
	if cur, err := env.Sessions.Current(); err == nil && cur != "" {
		return cur
	}
	return session.DefaultProfile
}
