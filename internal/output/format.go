// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"taskman/internal/service"
)

// DateFormat is how due dates are shown.
const DateFormat = "2006-01-02"

// TimestampFormat is how created/updated timestamps are shown.
const TimestampFormat = "2006-01-02 15:04"

// labelWidth pads detail labels so values line up.
const labelWidth = 12

// None is shown for absent values.
const None = "-"

// Formatter renders models for one writer. Styles come from a renderer
// bound to that writer, so colour and bold are dropped when it is not a
// terminal.
type Formatter struct {
	w     io.Writer
	r     *lipgloss.Renderer
	label lipgloss.Style
	head  lipgloss.Style
	cell  lipgloss.Style
	mark  lipgloss.Style
}

// New returns a Formatter writing to w.
func New(w io.Writer) *Formatter {
	r := lipgloss.NewRenderer(w)
	return &Formatter{
		w:     w,
		r:     r,
		label: r.NewStyle().Bold(true),
		head:  r.NewStyle().Bold(true).Padding(0, 1),
		cell:  r.NewStyle().Padding(0, 1),
		mark:  r.NewStyle().Foreground(lipgloss.Color("205")),
	}
}

// TaskTable prints tasks as a table in the order given.
func (f *Formatter) TaskTable(tasks []service.Task) {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			normalizeTitle(t.Title),
			t.Status,
			string(t.Priority),
			formatDate(t.DueDate),
			formatInt(t.CategoryID),
			yesNo(t.Completed),
		})
	}
	f.table([]string{"ID", "TITLE", "STATUS", "PRIORITY", "DUE", "CATEGORY", "DONE"}, rows)
}

// CategoryTable prints categories as a table in the order given.
func (f *Formatter) CategoryTable(cats []service.Category) {
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			normalizeTitle(c.Name),
			orNone(c.Color),
			orNone(oneLine(c.Description)),
		})
	}
	f.table([]string{"ID", "NAME", "COLOR", "DESCRIPTION"}, rows)
}

func (f *Formatter) table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(f.r.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == 0 {
				return f.head
			}
			return f.cell
		})
	fmt.Fprintln(f.w, t.String())
}

// Task prints every field of a task.
func (f *Formatter) Task(t service.Task) {
	desc := None
	if t.Description != nil && strings.TrimSpace(*t.Description) != "" {
		desc = oneLine(*t.Description)
	}
	f.field("ID", strconv.FormatInt(t.ID, 10))
	f.field("Title", normalizeTitle(t.Title))
	f.field("Description", desc)
	f.field("Status", t.Status)
	f.field("Priority", string(t.Priority))
	f.field("Due date", formatDate(t.DueDate))
	f.field("Completed", yesNo(t.Completed))
	f.field("Category", formatInt(t.CategoryID))
	f.field("Created", formatTimestamp(t.CreatedAt))
	f.field("Updated", formatTimestamp(t.UpdatedAt))
}

// Category prints every field of a category.
func (f *Formatter) Category(c service.Category) {
	f.field("ID", strconv.FormatInt(c.ID, 10))
	f.field("Name", normalizeTitle(c.Name))
	f.field("Description", orNone(c.Description))
	f.field("Color", orNone(c.Color))
	f.field("Created", formatTimestamp(c.CreatedAt))
	f.field("Updated", formatTimestamp(c.UpdatedAt))
}

// User prints a user account.
func (f *Formatter) User(u service.User) {
	f.field("ID", strconv.FormatInt(u.ID, 10))
	f.field("Name", orNone(u.Fullname))
	f.field("Email", orNone(u.Email))
	f.field("Role", string(u.Role))
	f.field("Active", yesNo(u.IsActive))
	f.field("Created", formatTimestamp(u.CreatedAt))
}

// Session describes the locally stored login.
type Session struct {
	Profile string
	APIURL  string
	UserID  int64
	Email   string

	// Expires is nil for tokens without an exp claim.
	Expires *time.Time
}

// Session prints the stored login.
func (f *Formatter) Session(s Session) {
	f.field("Profile", s.Profile)
	f.field("API URL", s.APIURL)
	f.field("User ID", strconv.FormatInt(s.UserID, 10))
	f.field("Email", orNone(s.Email))
	f.field("Expires", formatTimestamp(s.Expires))
}

// Profiles prints profile names, marking the current one with "*".
func (f *Formatter) Profiles(names []string, current string) {
	for _, name := range names {
		if name == current {
			fmt.Fprintf(f.w, "%s %s\n", f.mark.Render("*"), name)
			continue
		}
		fmt.Fprintf(f.w, "  %s\n", name)
	}
}

func (f *Formatter) field(label, value string) {
	fmt.Fprintf(f.w, "%s %s\n", f.label.Render(fmt.Sprintf("%-*s", labelWidth, label+":")), value)
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = oneLine(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func formatDate(t *time.Time) string {
	if t == nil {
		return None
	}
	return t.Format(DateFormat)
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return None
	}
	return t.Format(TimestampFormat)
}

func formatInt(n int64) string {
	if n == 0 {
		return None
	}
	return strconv.FormatInt(n, 10)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return None
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
