package prompt

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeText(m form, s string) form {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(form)
}

func press(m form, k tea.KeyType) (form, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(form), cmd
}

func TestForm_EnterAdvancesAndSubmits(t *testing.T) {
	m := newForm([]Field{{Label: "Email"}, {Label: "Password", Secret: true}})

	m = typeText(m, "ada@example.com")
	m, cmd := press(m, tea.KeyEnter)
	if m.done {
		t.Fatal("form should not submit before the last field")
	}
	if m.active != 1 {
		t.Fatalf("expected second field active, got %d", m.active)
	}

	m = typeText(m, "hunter2")
	if strings.Contains(m.View(), "hunter2") {
		t.Error("secret field must not echo its value")
	}

	m, cmd = press(m, tea.KeyEnter)
	if !m.done {
		t.Fatal("expected form to be done")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}

	want := []string{"ada@example.com", "hunter2"}
	if got := m.values(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestForm_EscCancels(t *testing.T) {
	m := newForm([]Field{{Label: "Email"}})
	m, _ = press(m, tea.KeyEsc)
	if !m.cancelled {
		t.Error("expected cancelled")
	}
	if m.View() != "" {
		t.Error("expected empty view after cancel")
	}
}

func TestForm_DefaultValue(t *testing.T) {
	m := newForm([]Field{{Label: "Email", Value: "saved@example.com"}})
	m, _ = press(m, tea.KeyEnter)
	if got := m.values(); got[0] != "saved@example.com" {
		t.Errorf("expected default value, got %q", got[0])
	}
}

func TestTerminal_ReadLines(t *testing.T) {
	var out bytes.Buffer
	term := &Terminal{In: strings.NewReader("ada@example.com\nhunter2\n"), Out: &out}

	got, err := term.Prompt(context.Background(), []Field{{Label: "Email"}, {Label: "Password", Secret: true}})
	if err != nil {
		t.Fatalf("prompt failed: %v", err)
	}
	want := []string{"ada@example.com", "hunter2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !strings.HasPrefix(out.String(), "Email: ") {
		t.Errorf("expected label on output, got %q", out.String())
	}
}

func TestTerminal_ReadLinesLastLineWithoutNewline(t *testing.T) {
	term := &Terminal{In: strings.NewReader("a@b.c\npw"), Out: &bytes.Buffer{}}
	got, err := term.Prompt(context.Background(), []Field{{Label: "Email"}, {Label: "Password", Secret: true}})
	if err != nil {
		t.Fatalf("prompt failed: %v", err)
	}
	if got[1] != "pw" {
		t.Errorf("expected pw, got %q", got[1])
	}
}

func TestTerminal_EOFCancels(t *testing.T) {
	term := &Terminal{In: strings.NewReader(""), Out: &bytes.Buffer{}}
	_, err := term.Prompt(context.Background(), []Field{{Label: "Email"}})
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}

func TestStatic(t *testing.T) {
	s := &Static{Values: []string{"a", "b", "c"}}
	got, err := s.Prompt(context.Background(), []Field{{Label: "x"}, {Label: "y"}})
	if err != nil || !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected result %v (%v)", got, err)
	}
	if _, err := s.Prompt(context.Background(), []Field{{Label: "z"}, {Label: "w"}}); !errors.Is(err, ErrCancelled) {
		t.Errorf("expected ErrCancelled when values run out, got %v", err)
	}
	if len(s.Asked) != 4 {
		t.Errorf("expected 4 recorded fields, got %d", len(s.Asked))
	}
}
