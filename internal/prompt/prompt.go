// Package prompt asks the user for credentials.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("cancelled")

// Field is one value to ask for.
type Field struct {
	// Label is shown before the input.
	Label string

	// Secret hides the typed characters.
	Secret bool

	// Value is the default, used when the user enters nothing.
	Value string
}

// Prompter asks for a set of fields and returns one value per field.
type Prompter interface {
	Prompt(ctx context.Context, fields []Field) ([]string, error)
}

// Terminal prompts on a terminal with an interactive form, or reads one
// line per field when input is not a terminal.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

// NewTerminal returns a Terminal prompter over stdin, drawing on out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{In: os.Stdin, Out: out}
}

// Prompt implements Prompter.
func (t *Terminal) Prompt(ctx context.Context, fields []Field) ([]string, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	if f, ok := t.In.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return t.runForm(ctx, f, fields)
	}
	return t.readLines(fields)
}

func (t *Terminal) runForm(ctx context.Context, in *os.File, fields []Field) ([]string, error) {
	p := tea.NewProgram(newForm(fields),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(t.Out),
	)
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("prompt failed: %w", err)
	}
	m, ok := final.(form)
	if !ok || m.cancelled {
		return nil, ErrCancelled
	}
	return m.values(), nil
}

// readLines reads one line per field. Input ending before the first field
// is a cancellation.
func (t *Terminal) readLines(fields []Field) ([]string, error) {
	r := bufio.NewReader(t.In)
	values := make([]string, len(fields))
	for i, f := range fields {
		fmt.Fprintf(t.Out, "%s: ", f.Label)
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("prompt failed: %w", err)
		}
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(t.Out)
			return nil, ErrCancelled
		}
		if f.Secret {
			fmt.Fprintln(t.Out)
		}
		values[i] = strings.TrimRight(line, "\r\n")
		if values[i] == "" {
			values[i] = f.Value
		}
	}
	return values, nil
}

// Static answers prompts with fixed values. Used in tests and when every
// value was given on the command line.
type Static struct {
	Values []string
	Err    error

	// Asked records the fields of every Prompt call.
	Asked []Field
}

// Prompt implements Prompter.
func (s *Static) Prompt(ctx context.Context, fields []Field) ([]string, error) {
	s.Asked = append(s.Asked, fields...)
	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.Values) < len(fields) {
		return nil, ErrCancelled
	}
	out := make([]string, len(fields))
	copy(out, s.Values[:len(fields)])
	s.Values = s.Values[len(fields):]
	return out, nil
}
