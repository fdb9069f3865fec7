package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskman/internal/exitcode"
	"taskman/internal/output"
	"taskman/internal/service"
)

func init() {
	Register(&CategoryListCmd{})
	Register(&CategoryShowCmd{})
	Register(&CategoryCreateCmd{})
	Register(&CategoryUpdateCmd{})
	Register(&CategoryDeleteCmd{})
}

// CategoryListCmd implements the categories list command.
type CategoryListCmd struct{}

func (c *CategoryListCmd) Name() string      { return "categories list" }
func (c *CategoryListCmd) Aliases() []string { return []string{"categories ls"} }
func (c *CategoryListCmd) Synopsis() string  { return "List categories" }
func (c *CategoryListCmd) Usage() string     { return "taskman categories list [common flags]" }
func (c *CategoryListCmd) NeedsAuth() bool   { return true }

func (c *CategoryListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CategoryListCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return userError(errOut, "unexpected argument: %s", args[0])
	}

	cats, err := svc.ListCategories(ctx)
	if err != nil {
		return backendError(errOut, err)
	}
	if len(cats) == 0 {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "no categories found")
		}
		return exitcode.Success
	}

	output.New(out).CategoryTable(cats)
	return exitcode.Success
}

// CategoryShowCmd implements the categories show command.
type CategoryShowCmd struct{}

func (c *CategoryShowCmd) Name() string      { return "categories show" }
func (c *CategoryShowCmd) Aliases() []string { return []string{"categories get"} }
func (c *CategoryShowCmd) Synopsis() string  { return "Show a category" }
func (c *CategoryShowCmd) Usage() string     { return "taskman categories show [common flags] <id>" }
func (c *CategoryShowCmd) NeedsAuth() bool   { return true }

func (c *CategoryShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CategoryShowCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := parseID(args, "category")
	if err != nil {
		return userError(errOut, "%v", err)
	}

	cat, err := svc.GetCategory(ctx, id)
	if err != nil {
		return backendError(errOut, err)
	}

	output.New(out).Category(cat)
	return exitcode.Success
}

// CategoryCreateCmd implements the categories create command.
type CategoryCreateCmd struct {
	name        string
	description string
	color       string
}

func (c *CategoryCreateCmd) Name() string      { return "categories create" }
func (c *CategoryCreateCmd) Aliases() []string { return []string{"categories add"} }
func (c *CategoryCreateCmd) Synopsis() string  { return "Create a category" }
func (c *CategoryCreateCmd) Usage() string {
	return "taskman categories create [common flags] --name <name> [--description <d>] [--color <c>]"
}
func (c *CategoryCreateCmd) NeedsAuth() bool { return true }

func (c *CategoryCreateCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.color, "color", "", "")
}

func (c *CategoryCreateCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	// A bare name may be given as positional words.
	name := c.name
	if name == "" {
		name = strings.Join(args, " ")
	} else if len(args) > 0 {
		return userError(errOut, "unexpected argument: %s", args[0])
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return userError(errOut, "category name required")
	}

	cat, err := svc.CreateCategory(ctx, service.CategoryInput{
		Name:        name,
		Description: strings.TrimSpace(c.description),
		Color:       strings.TrimSpace(c.color),
	})
	if err != nil {
		return backendError(errOut, err)
	}

	if !env.Config.Quiet {
		output.New(out).Category(cat)
	}
	return exitcode.Success
}

// CategoryUpdateCmd implements the categories update command. Only the
// flags given are sent.
type CategoryUpdateCmd struct {
	name        optString
	description optString
	color       optString
}

func (c *CategoryUpdateCmd) Name() string      { return "categories update" }
func (c *CategoryUpdateCmd) Aliases() []string { return []string{"categories edit"} }
func (c *CategoryUpdateCmd) Synopsis() string  { return "Update fields of a category" }
func (c *CategoryUpdateCmd) Usage() string {
	return "taskman categories update [common flags] <id> [--name <n>] [--description <d>] [--color <c>]"
}
func (c *CategoryUpdateCmd) NeedsAuth() bool { return true }

func (c *CategoryUpdateCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = CategoryUpdateCmd{}
	fs.Var(&c.name, "name", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.color, "color", "")
}

func (c *CategoryUpdateCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := parseID(args, "category")
	if err != nil {
		return userError(errOut, "%v", err)
	}

	patch := service.CategoryPatch{
		Name:        c.name.ptr(),
		Description: c.description.ptr(),
		Color:       c.color.ptr(),
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return userError(errOut, "name cannot be empty")
	}
	if patch.IsEmpty() {
		return userError(errOut, "no fields to update")
	}

	cat, err := svc.UpdateCategory(ctx, id, patch)
	if err != nil {
		return backendError(errOut, err)
	}

	if !env.Config.Quiet {
		output.New(out).Category(cat)
	}
	return exitcode.Success
}

// CategoryDeleteCmd implements the categories delete command. A category
// that still has tasks is kept unless --force is given.
type CategoryDeleteCmd struct {
	force bool
}

func (c *CategoryDeleteCmd) Name() string      { return "categories delete" }
func (c *CategoryDeleteCmd) Aliases() []string { return []string{"categories rm"} }
func (c *CategoryDeleteCmd) Synopsis() string  { return "Delete a category" }
func (c *CategoryDeleteCmd) Usage() string {
	return "taskman categories delete [common flags] [--force] <id>"
}
func (c *CategoryDeleteCmd) NeedsAuth() bool { return true }

func (c *CategoryDeleteCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *CategoryDeleteCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := parseID(args, "category")
	if err != nil {
		return userError(errOut, "%v", err)
	}

	if !c.force {
		tasks, err := svc.ListTasks(ctx, service.TaskFilter{})
		if err != nil {
			return backendError(errOut, err)
		}
		for _, t := range tasks {
			if t.CategoryID == id {
				return userError(errOut, "category not empty (use --force)")
			}
		}
	}

	if err := svc.DeleteCategory(ctx, id); err != nil {
		return backendError(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
