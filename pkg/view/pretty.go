// Package view renders task lists for people: coloured todo.txt lines and
// markdown checklists.
package view

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/harrisonrobin/todotxt/pkg/model"
)

type styles struct {
	priority map[model.Priority]lipgloss.Style
	date     lipgloss.Style
	project  lipgloss.Style
	context  lipgloss.Style
	due      lipgloss.Style
	overdue  lipgloss.Style
	attr     lipgloss.Style
	done     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		priority: map[model.Priority]lipgloss.Style{
			"A": r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			"B": r.NewStyle().Foreground(lipgloss.Color("11")),
			"C": r.NewStyle().Foreground(lipgloss.Color("10")),
		},
		date:    r.NewStyle().Foreground(lipgloss.Color("8")),
		project: r.NewStyle().Foreground(lipgloss.Color("12")),
		context: r.NewStyle().Foreground(lipgloss.Color("13")),
		due:     r.NewStyle().Foreground(lipgloss.Color("14")),
		overdue: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		attr:    r.NewStyle().Faint(true),
		done:    r.NewStyle().Faint(true).Strikethrough(true),
	}
}

// Pretty writes the tasks as todo.txt lines, coloured when w is a terminal.
// Without colour support the output equals WriteList's.
func Pretty(w io.Writer, list *model.List, now time.Time) error {
	st := newStyles(lipgloss.NewRenderer(w))
	bw := bufio.NewWriter(w)
	for _, t := range list.Tasks() {
		bw.WriteString(st.line(t, now))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func (st styles) line(t model.Task, now time.Time) string {
	if t.Completed {
		return st.done.Render(t.Line())
	}

	var parts []string
	if t.Priority != "" {
		style, ok := st.priority[t.Priority]
		if !ok {
			style = st.attr
		}
		parts = append(parts, style.Render(t.Priority.String()))
	}
	for _, d := range []*time.Time{t.CompletedAt, t.CreatedAt} {
		if d != nil {
			parts = append(parts, st.date.Render(model.FormatDate(*d)))
		}
	}
	if t.Title != "" {
		parts = append(parts, t.Title)
	}
	for _, p := range t.Projects {
		parts = append(parts, st.project.Render("+"+p))
	}
	for _, c := range t.Contexts {
		parts = append(parts, st.context.Render("@"+c))
	}
	if t.DueDate != nil {
		style := st.due
		if t.Overdue(now) {
			style = st.overdue
		}
		parts = append(parts, style.Render("due:"+model.FormatDate(*t.DueDate)))
	}
	for _, k := range t.Attributes.Keys() {
		v, _ := t.Attribute(k)
		parts = append(parts, st.attr.Render(k+":"+v))
	}
	return strings.Join(parts, " ")
}
