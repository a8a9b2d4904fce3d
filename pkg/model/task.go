package model

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the todo.txt date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Priority is a todo.txt priority such as "A". The empty value means no priority.
type Priority string

// String renders the priority the way it appears in a todo.txt line, e.g. "(A)".
func (p Priority) String() string {
	if p == "" {
		return ""
	}
	return "(" + string(p) + ")"
}

// Less orders priorities lexicographically, so "A" sorts before "B".
func (p Priority) Less(other Priority) bool {
	return p < other
}

// Attributes is an ordered key:value mapping. Keys are unique; setting an
// existing key replaces its value and keeps its first position.
type Attributes struct {
	keys   []string
	values map[string]string
}

// Set adds or replaces the value for key.
func (a *Attributes) Set(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, exists := a.values[key]; !exists {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

func (a Attributes) clone() Attributes {
	return Attributes{keys: slices.Clone(a.keys), values: maps.Clone(a.values)}
}

// Get returns the value stored for key.
func (a Attributes) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Keys returns the attribute keys in insertion order.
func (a Attributes) Keys() []string {
	keys := make([]string, len(a.keys))
	copy(keys, a.keys)
	return keys
}

// Len returns the number of attributes.
func (a Attributes) Len() int {
	return len(a.keys)
}

// MarshalJSON encodes the attributes as a JSON object, keys in insertion order.
func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range a.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(a.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the attributes as a mapping, keys in insertion order.
func (a Attributes) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range a.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: a.values[k]},
		)
	}
	return node, nil
}

// Task is one parsed todo.txt line.
//
// A Task is built once by the todotxt builder and must not be modified
// afterwards; build a new line and parse it to get a different task.
type Task struct {
	ID          string
	Completed   bool
	Priority    Priority
	CompletedAt *time.Time
	CreatedAt   *time.Time
	Title       string // empty when the line has no plain text
	Projects    []string
	Contexts    []string
	DueDate     *time.Time
	Attributes  Attributes
}

// Clone returns a copy of t that shares no slices, maps or dates with it.
func (t Task) Clone() Task {
	t.CompletedAt = cloneDate(t.CompletedAt)
	t.CreatedAt = cloneDate(t.CreatedAt)
	t.DueDate = cloneDate(t.DueDate)
	t.Projects = slices.Clone(t.Projects)
	t.Contexts = slices.Clone(t.Contexts)
	t.Attributes = t.Attributes.clone()
	return t
}

func cloneDate(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

// Attribute returns the value of a key:value attribute.
func (t Task) Attribute(key string) (string, bool) {
	return t.Attributes.Get(key)
}

// Line serializes the task back into a todo.txt line.
func (t Task) Line() string {
	var parts []string
	if t.Completed {
		parts = append(parts, "x")
	}
	if t.Priority != "" {
		parts = append(parts, t.Priority.String())
	}
	if t.CompletedAt != nil {
		parts = append(parts, FormatDate(*t.CompletedAt))
	}
	if t.CreatedAt != nil {
		parts = append(parts, FormatDate(*t.CreatedAt))
	}
	if t.Title != "" {
		parts = append(parts, t.Title)
	}
	for _, p := range t.Projects {
		parts = append(parts, "+"+p)
	}
	for _, c := range t.Contexts {
		parts = append(parts, "@"+c)
	}
	if t.DueDate != nil {
		parts = append(parts, "due:"+FormatDate(*t.DueDate))
	}
	for _, k := range t.Attributes.keys {
		parts = append(parts, k+":"+t.Attributes.values[k])
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Overdue reports whether a pending task's due day ended before now.
func (t Task) Overdue(now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return !t.DueDate.AddDate(0, 0, 1).After(now)
}

// String implements fmt.Stringer.
func (t Task) String() string {
	return t.Line()
}

// taskView is the exported shape of a task, shared by the JSON and YAML encoders.
type taskView struct {
	ID          string     `json:"id" yaml:"id"`
	Completed   bool       `json:"completed" yaml:"completed"`
	Priority    string     `json:"priority,omitempty" yaml:"priority,omitempty"`
	CompletedAt string     `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	CreatedAt   string     `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Title       string     `json:"title,omitempty" yaml:"title,omitempty"`
	Projects    []string   `json:"projects,omitempty" yaml:"projects,omitempty"`
	Contexts    []string   `json:"contexts,omitempty" yaml:"contexts,omitempty"`
	DueDate     string     `json:"due,omitempty" yaml:"due,omitempty"`
	Attributes  Attributes `json:"attributes" yaml:"attributes"`
}

func (t Task) view() taskView {
	return taskView{
		ID:          t.ID,
		Completed:   t.Completed,
		Priority:    string(t.Priority),
		CompletedAt: formatOptionalDate(t.CompletedAt),
		CreatedAt:   formatOptionalDate(t.CreatedAt),
		Title:       t.Title,
		Projects:    t.Projects,
		Contexts:    t.Contexts,
		DueDate:     formatOptionalDate(t.DueDate),
		Attributes:  t.Attributes,
	}
}

// MarshalJSON implements the json.Marshaler interface for Task.
func (t Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.view())
}

// MarshalYAML implements the yaml.Marshaler interface for Task.
func (t Task) MarshalYAML() (interface{}, error) {
	return t.view(), nil
}

// FormatDate renders a date as YYYY-MM-DD in UTC.
func FormatDate(d time.Time) string {
	return d.UTC().Format(DateLayout)
}

// ParseDate parses a strict YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func formatOptionalDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return FormatDate(*d)
}
