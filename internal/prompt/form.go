package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// form is a bubbletea model with one text input per field. Enter moves to
// the next input and submits on the last one; esc and ctrl+c cancel.
type form struct {
	fields    []Field
	inputs    []textinput.Model
	active    int
	done      bool
	cancelled bool
}

func newForm(fields []Field) form {
	m := form{fields: fields, inputs: make([]textinput.Model, len(fields))}
	for i, f := range fields {
		in := textinput.New()
		in.Prompt = "> "
		in.Width = 40
		in.Placeholder = f.Value
		if f.Secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
			in.Placeholder = ""
		}
		m.inputs[i] = in
	}
	m.inputs[0].Focus()
	return m
}

func (m form) Init() tea.Cmd {
	return textinput.Blink
}

func (m form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.active == len(m.inputs)-1 {
				m.done = true
				return m, tea.Quit
			}
			m.inputs[m.active].Blur()
			m.active++
			return m, m.inputs[m.active].Focus()
		case tea.KeyShiftTab, tea.KeyUp:
			if m.active > 0 {
				m.inputs[m.active].Blur()
				m.active--
				return m, m.inputs[m.active].Focus()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.active], cmd = m.inputs[m.active].Update(msg)
	return m, cmd
}

func (m form) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var sb strings.Builder
	for i, f := range m.fields {
		sb.WriteString(labelStyle.Render(f.Label))
		sb.WriteString("\n")
		sb.WriteString(m.inputs[i].View())
		sb.WriteString("\n")
	}
	sb.WriteString(hintStyle.Render("enter: next  esc: cancel"))
	sb.WriteString("\n")
	return sb.String()
}

// values returns the entered text, falling back to each field's default.
func (m form) values() []string {
	out := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		out[i] = in.Value()
		if out[i] == "" {
			out[i] = m.fields[i].Value
		}
	}
	return out
}
