package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/harrisonrobin/todotxt/pkg/model"
)

// Markdown renders the list as a GitHub-style checklist. Titles are kept
// verbatim so their links stay links.
func Markdown(list *model.List) string {
	var b strings.Builder
	for _, t := range list.Tasks() {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		fmt.Fprintf(&b, "- %s ", box)

		if t.Priority != "" {
			fmt.Fprintf(&b, "**%s** ", t.Priority)
		}
		title := t.Title
		if title == "" {
			title = "_untitled_"
		}
		if t.Completed {
			title = "~~" + title + "~~"
		}
		b.WriteString(title)

		for _, p := range t.Projects {
			fmt.Fprintf(&b, " `+%s`", p)
		}
		for _, c := range t.Contexts {
			fmt.Fprintf(&b, " `@%s`", c)
		}
		if t.DueDate != nil {
			fmt.Fprintf(&b, " _due %s_", model.FormatDate(*t.DueDate))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderMarkdown writes the checklist styled for a terminal of the given width.
func RenderMarkdown(w io.Writer, list *model.List, width int) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := renderer.Render(Markdown(list))
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
