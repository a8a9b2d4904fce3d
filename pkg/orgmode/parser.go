package orgmode

import (
	"bufio"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Headline is a TODO or DONE headline read back from an Org file.
type Headline struct {
	Done       bool
	Priority   string
	Title      string
	Tags       []string
	Deadline   *time.Time
	Closed     *time.Time
	Properties map[string]string
}

var (
	headlineRegex = regexp.MustCompile(`^\*+ (TODO|DONE)(?: \[#([A-Z]+)\])?(?: (.*?))?(?:\s+:([^\s:]+(?::[^\s:]+)*):)?\s*$`)
	deadlineRegex = regexp.MustCompile(`DEADLINE:\s+<(\d{4}-\d{2}-\d{2})[^>]*>`)
	closedRegex   = regexp.MustCompile(`CLOSED:\s+\[(\d{4}-\d{2}-\d{2})[^\]]*\]`)
	propertyRegex = regexp.MustCompile(`^:([A-Za-z0-9_-]+):\s*(.*)$`)
	createdRegex  = regexp.MustCompile(`^\[(\d{4}-\d{2}-\d{2})`)
)

const dayLayout = "2006-01-02"

// Parse reads the TODO and DONE headlines of an Org document. Headlines
// without a TODO keyword and their bodies are ignored.
func Parse(r io.Reader) ([]Headline, error) {
	scanner := bufio.NewScanner(r)
	var headlines []Headline
	var current *Headline
	inDrawer := false

	flush := func() {
		if current != nil {
			headlines = append(headlines, *current)
			current = nil
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "*") {
			flush()
			inDrawer = false
			if matches := headlineRegex.FindStringSubmatch(line); matches != nil {
				current = &Headline{
					Done:       matches[1] == stateDone,
					Priority:   matches[2],
					Title:      strings.TrimSpace(matches[3]),
					Properties: make(map[string]string),
				}
				if matches[4] != "" {
					current.Tags = strings.Split(matches[4], ":")
				}
			}
			continue
		}
		if current == nil {
			continue
		}

		switch {
		case line == ":PROPERTIES:":
			inDrawer = true
		case line == ":END:":
			inDrawer = false
		case inDrawer:
			if matches := propertyRegex.FindStringSubmatch(line); matches != nil {
				current.Properties[matches[1]] = matches[2]
			}
		default:
			if matches := deadlineRegex.FindStringSubmatch(line); matches != nil {
				current.Deadline = parseDay(matches[1])
			}
			if matches := closedRegex.FindStringSubmatch(line); matches != nil {
				current.Closed = parseDay(matches[1])
			}
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return headlines, nil
}

func parseDay(s string) *time.Time {
	d, err := time.ParseInLocation(dayLayout, s, time.UTC)
	if err != nil {
		return nil
	}
	return &d
}

// Line converts the headline back to a todo.txt line. Tags starting with @
// become contexts and the rest projects; properties become key:value
// attributes, ID first and the others by name.
func (h Headline) Line() string {
	var parts []string
	if h.Done {
		parts = append(parts, "x")
	}
	if h.Priority != "" {
		parts = append(parts, "("+h.Priority+")")
	}
	// A lone leading date reads as the creation date, so the closing date
	// is only written in front of one.
	if m := createdRegex.FindStringSubmatch(h.Properties["CREATED"]); m != nil {
		if h.Done && h.Closed != nil {
			parts = append(parts, h.Closed.Format(dayLayout))
		}
		parts = append(parts, m[1])
	}
	if h.Title != "" {
		parts = append(parts, h.Title)
	}
	for _, tag := range h.Tags {
		if strings.HasPrefix(tag, "@") {
			parts = append(parts, tag)
		} else {
			parts = append(parts, "+"+tag)
		}
	}
	if h.Deadline != nil {
		parts = append(parts, "due:"+h.Deadline.Format(dayLayout))
	}

	keys := make([]string, 0, len(h.Properties))
	for k := range h.Properties {
		if k != "ID" && k != "CREATED" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := h.Properties["ID"]; ok {
		keys = append([]string{"ID"}, keys...)
	}
	for _, k := range keys {
		v := strings.ReplaceAll(h.Properties[k], " ", "_")
		if v == "" {
			continue
		}
		parts = append(parts, strings.ToLower(k)+":"+v)
	}
	return strings.Join(parts, " ")
}

// ReadLines reads an Org document as todo.txt lines, one per TODO or DONE
// headline.
func ReadLines(r io.Reader) ([]string, error) {
	headlines, err := Parse(r)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(headlines))
	for _, h := range headlines {
		lines = append(lines, h.Line())
	}
	return lines, nil
}
