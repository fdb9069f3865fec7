// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"taskman/internal/config"
	"taskman/internal/prompt"
	"taskman/internal/service"
	"taskman/internal/session"
)

// Connector builds an unauthenticated service for an API URL. Used by
// commands that talk to the server before a session exists.
type Connector func(apiURL string) (service.Service, error)

// Env is everything a command may need besides the service.
type Env struct {
	// Config is always provided (config dir, API URL, timeout).
	Config *config.Config

	// Sessions reads and writes saved profiles.
	Sessions *session.Store

	// Session is the loaded profile for commands that need auth, nil
	// otherwise.
	Session *session.Profile

	// Prompt asks for credentials.
	Prompt prompt.Prompter

	// Connect builds an unauthenticated service.
	Connect Connector
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name, "group verb" for grouped
	// commands ("tasks create").
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a saved session.
	// Commands like help, version, auth login, auth logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// svc is nil if NeedsAuth() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int
}
