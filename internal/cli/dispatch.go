// Package cli parses the command line and runs the selected command.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"taskman/internal/commands"
	"taskman/internal/config"
	"taskman/internal/exitcode"
	"taskman/internal/logger"
	"taskman/internal/prompt"
	"taskman/internal/service"
	"taskman/internal/session"
)

// ServiceFactory creates a Service for an API endpoint and token. token is
// empty for commands that run before a session exists.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, apiURL, token string) (service.Service, error)

// SecretsFactory picks the token store for a config.
type SecretsFactory func(cfg *config.Config) session.SecretStore

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithSecrets replaces the token store selection, used by tests to avoid
// the OS keychain.
func WithSecrets(f SecretsFactory) Option {
	return func(d *Dispatcher) { d.secrets = f }
}

// WithPrompter replaces the terminal prompter.
func WithPrompter(p prompt.Prompter) Option {
	return func(d *Dispatcher) { d.prompter = p }
}

// WithClock replaces time.Now for session expiry checks.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
	secrets  SecretsFactory
	prompter prompt.Prompter
	now      func() time.Time
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		factory:  factory,
		secrets:  session.SecretsFor,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> usage
	if len(args) == 0 {
		fmt.Fprint(out, commands.HelpText)
		return exitcode.Success
	}

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(args[0], "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
		return exitcode.UserError
	}

	cmd, rest, ok := d.registry.Resolve(args)
	if !ok {
		if d.registry.IsGroup(args[0]) {
			if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
				fmt.Fprintf(errOut, "error: unknown command: %s %s\n", args[0], args[1])
			} else {
				fmt.Fprintf(errOut, "error: missing subcommand for %s (see: taskman help)\n", args[0])
			}
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
		return exitcode.UserError
	}

	return d.dispatchCommand(ctx, cmd, rest, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir, profile, apiURL string
	var quiet, debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.StringVar(&profile, "profile", "", "")
	fs.StringVar(&apiURL, "api-url", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	positionalArgs, err := parseInterleaved(fs, args)
	if err != nil {
		return reportFlagError(errOut, err)
	}

	// Create config
	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	if profile = strings.TrimSpace(profile); profile != "" {
		cfg.Profile = profile
	}
	if apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/"); apiURL != "" {
		cfg.APIURL = apiURL
	}
	cfg.Quiet = quiet
	cfg.Debug = debug
	cfg.Logger = logger.New(errOut, debug)

	prompter := d.prompter
	if prompter == nil {
		// Prompts go to stderr so stdout stays clean for output.
		prompter = prompt.NewTerminal(errOut)
	}

	env := &commands.Env{
		Config:   cfg,
		Sessions: session.NewStore(cfg.ProfilesPath(), d.secrets(cfg)),
		Prompt:   prompter,
		Connect: func(apiURL string) (service.Service, error) {
			return d.factory(ctx, cfg, apiURL, "")
		},
	}

	// Check auth requirements
	var svc service.Service
	if cmd.NeedsAuth() {
		p, code := d.loadSession(cfg, env.Sessions, errOut)
		if p == nil {
			return code
		}
		env.Session = p

		svc, err = d.factory(ctx, cfg, cfg.ResolveAPIURL(p.APIURL), p.Token)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
	}

	cfg.Logger.Debug("dispatch", "command", cmd.Name(), "profile", cfg.Profile, "config", cfg.Dir)

	// Run command
	return cmd.Run(ctx, env, svc, positionalArgs, out, errOut)
}

// loadSession loads the profile an authenticated command runs as. It never
// touches the network: a missing or expired session fails here.
func (d *Dispatcher) loadSession(cfg *config.Config, store *session.Store, errOut io.Writer) (*session.Profile, int) {
	p, err := store.Load(cfg.Profile)
	switch {
	case errors.Is(err, session.ErrNoConfig):
		fmt.Fprintf(errOut, "error: not logged in (run: %s auth login)\n", config.AppName)
		return nil, exitcode.AuthError
	case errors.Is(err, session.ErrProfileNotFound) && cfg.Profile != "":
		fmt.Fprintf(errOut, "error: profile not found: %s\n", cfg.Profile)
		return nil, exitcode.UserError
	case errors.Is(err, session.ErrProfileNotFound):
		fmt.Fprintf(errOut, "error: not logged in (run: %s auth login)\n", config.AppName)
		return nil, exitcode.AuthError
	case err != nil:
		fmt.Fprintf(errOut, "error: %s\n", err)
		return nil, exitcode.AuthError
	}

	if p.Token == "" {
		fmt.Fprintf(errOut, "error: not logged in (run: %s auth login)\n", config.AppName)
		return nil, exitcode.AuthError
	}
	if session.TokenExpired(p.Token, d.now()) {
		fmt.Fprintf(errOut, "error: session expired (run: %s auth login)\n", config.AppName)
		return nil, exitcode.AuthError
	}
	return p, exitcode.Success
}

// parseInterleaved parses flags that may appear before, between or after
// positional arguments. "--" ends flag parsing.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func reportFlagError(errOut io.Writer, err error) int {
	errStr := err.Error()

	// Check for missing flag value
	if strings.HasPrefix(errStr, "flag needs an argument:") {
		flagName := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
		fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagName)
		return exitcode.UserError
	}

	// Check for unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: %s\n", errStr)
	return exitcode.UserError
}
