// Package orgmode exports todo.txt tasks as Org-mode headlines.
package orgmode

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harrisonrobin/todotxt/pkg/model"
)

const (
	orgDateLayout = "2006-01-02 Mon"
	stateTodo     = "TODO"
	stateDone     = "DONE"
)

// Render writes one level-1 headline per task, in list order.
func Render(w io.Writer, list *model.List) error {
	bw := bufio.NewWriter(w)
	for _, t := range list.Tasks() {
		writeHeadline(bw, t)
	}
	return bw.Flush()
}

func writeHeadline(w *bufio.Writer, t model.Task) {
	state := stateTodo
	if t.Completed {
		state = stateDone
	}

	fmt.Fprintf(w, "* %s ", state)
	if t.Priority != "" {
		fmt.Fprintf(w, "[#%s] ", string(t.Priority))
	}
	title := t.Title
	if title == "" {
		title = t.Line()
	}
	w.WriteString(title)
	if tags := orgTags(t); len(tags) > 0 {
		fmt.Fprintf(w, " :%s:", strings.Join(tags, ":"))
	}
	w.WriteString("\n")

	var planning []string
	if t.Completed && t.CompletedAt != nil {
		planning = append(planning, "CLOSED: ["+orgDate(*t.CompletedAt)+"]")
	}
	if t.DueDate != nil {
		planning = append(planning, "DEADLINE: <"+orgDate(*t.DueDate)+">")
	}
	if len(planning) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(planning, " "))
	}

	w.WriteString("  :PROPERTIES:\n")
	if id, ok := t.Attribute("id"); ok {
		fmt.Fprintf(w, "  :ID: %s\n", id)
	}
	if t.CreatedAt != nil {
		fmt.Fprintf(w, "  :CREATED: [%s]\n", orgDate(*t.CreatedAt))
	}
	for _, k := range t.Attributes.Keys() {
		if k == "id" {
			continue
		}
		v, _ := t.Attribute(k)
		fmt.Fprintf(w, "  :%s: %s\n", strings.ToUpper(k), v)
	}
	w.WriteString("  :END:\n")
}

// orgTags lists projects as plain tags and contexts with their @ sign.
func orgTags(t model.Task) []string {
	tags := make([]string, 0, len(t.Projects)+len(t.Contexts))
	tags = append(tags, t.Projects...)
	for _, c := range t.Contexts {
		tags = append(tags, "@"+c)
	}
	return tags
}

func orgDate(d time.Time) string {
	return d.UTC().Format(orgDateLayout)
}
