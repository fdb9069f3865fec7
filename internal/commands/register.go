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
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the auth register command.
type RegisterCmd struct {
	fullname string
	email    string
}

func (c *RegisterCmd) Name() string      { return "auth register" }
func (c *RegisterCmd) Aliases() []string { return nil }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "taskman auth register [common flags] [--fullname <name>] [--email <email>]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.fullname, "fullname", "", "")
	fs.StringVar(&c.email, "email", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return userError(errOut, "unexpected argument: %s", args[0])
	}

	fullname := strings.TrimSpace(c.fullname)
	email := strings.TrimSpace(c.email)

	var fields []prompt.Field
	if fullname == "" {
		fields = append(fields, prompt.Field{Label: "Full name"})
	}
	if email == "" {
		fields = append(fields, prompt.Field{Label: "Email"})
	}
	fields = append(fields,
		prompt.Field{Label: "Password", Secret: true},
		prompt.Field{Label: "Confirm password", Secret: true},
	)

	values, err := env.Prompt.Prompt(ctx, fields)
	if err != nil {
		return backendError(errOut, err)
	}
	i := 0
	if fullname == "" {
		fullname = strings.TrimSpace(values[i])
		i++
	}
	if email == "" {
		email = strings.TrimSpace(values[i])
		i++
	}
	password, confirm := values[i], values[i+1]

	switch {
	case fullname == "":
		return userError(errOut, "full name required")
	case email == "":
		return userError(errOut, "email required")
	case password == "":
		return userError(errOut, "password required")
	case password != confirm:
		return userError(errOut, "passwords do not match")
	}

	if svc == nil {
		svc, err = env.Connect(env.Config.ResolveAPIURL(""))
		if err != nil {
			return backendError(errOut, err)
		}
	}

	user, err := svc.Register(ctx, service.RegisterInput{
		Fullname: fullname,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return backendError(errOut, fmt.Errorf("registration failed: %w", err))
	}

	if !env.Config.Quiet {
		if user.ID != 0 {
			fmt.Fprintf(out, "registered %s (id %d)\n", email, user.ID)
		} else {
			fmt.Fprintf(out, "registered %s\n", email)
		}
		fmt.Fprintln(out, "next: taskman auth login")
	}
	return exitcode.Success
}
