package commands_test

import (
	"flag"
	"io"
	"strings"
	"testing"

	"taskman/internal/commands"
)

func TestRegistry_Resolve(t *testing.T) {
	tests := []struct {
		args     []string
		wantName string
		wantRest []string
	}{
		{[]string{"tasks", "create", "--title", "x"}, "tasks create", []string{"--title", "x"}},
		{[]string{"tasks", "ls"}, "tasks list", []string{}},
		{[]string{"tasks", "done", "4"}, "tasks complete", []string{"4"}},
		{[]string{"categories", "rm", "2"}, "categories delete", []string{"2"}},
		{[]string{"auth", "whoami"}, "auth me", []string{}},
		{[]string{"version"}, "version", []string{}},
	}

	for _, tt := range tests {
		cmd, rest, ok := commands.DefaultRegistry.Resolve(tt.args)
		if !ok {
			t.Errorf("Resolve(%v) found nothing", tt.args)
			continue
		}
		if cmd.Name() != tt.wantName {
			t.Errorf("Resolve(%v) = %q, want %q", tt.args, cmd.Name(), tt.wantName)
		}
		if strings.Join(rest, " ") != strings.Join(tt.wantRest, " ") {
			t.Errorf("Resolve(%v) rest = %v, want %v", tt.args, rest, tt.wantRest)
		}
	}

	if _, _, ok := commands.DefaultRegistry.Resolve([]string{"tasks"}); ok {
		t.Error("a bare group word should not resolve")
	}
	if !commands.DefaultRegistry.IsGroup("categories") || commands.DefaultRegistry.IsGroup("version") {
		t.Error("IsGroup misclassifies group words")
	}
}

func TestRegistry_DuplicateAlias(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.TaskListCmd{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&commands.TaskListCmd{}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

// Every command documents itself and registers its flags cleanly, twice,
// since the dispatcher builds a fresh flag set per run.
func TestRegistry_AllCommandsWellFormed(t *testing.T) {
	all := commands.DefaultRegistry.All()
	if len(all) != 19 {
		t.Fatalf("expected every command registered, got %d", len(all))
	}

	for _, cmd := range all {
		if !strings.HasPrefix(cmd.Usage(), "taskman "+cmd.Name()) {
			t.Errorf("%s: usage %q does not start with the command name", cmd.Name(), cmd.Usage())
		}
		if cmd.Synopsis() == "" {
			t.Errorf("%s: empty synopsis", cmd.Name())
		}
		if !strings.Contains(commands.HelpText, "taskman "+cmd.Name()) {
			t.Errorf("%s: missing from help text", cmd.Name())
		}
		for i := 0; i < 2; i++ {
			fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			cmd.RegisterFlags(fs)
		}
	}
}
