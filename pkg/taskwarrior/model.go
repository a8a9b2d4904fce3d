package taskwarrior

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harrisonrobin/todotxt/pkg/model"
)

const (
	PENDING   = "pending"
	COMPLETED = "completed"
	DELETED   = "deleted"
)

type CustomTime struct {
	time.Time
}

const taskwarriorTimeLayout = "20060102T150405Z" // YYYYMMDDTHHMMSSZ, always UTC

// UnmarshalJSON implements the json.Unmarshaler interface for CustomTime.
func (ct *CustomTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "0" {
		ct.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(taskwarriorTimeLayout, s)
	if err != nil {
		return fmt.Errorf("failed to parse Taskwarrior time string '%s': %w", s, err)
	}
	ct.Time = t
	return nil
}

// MarshalJSON implements the json.Marshaler interface for CustomTime.
func (ct CustomTime) MarshalJSON() ([]byte, error) {
	if ct.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + ct.Time.UTC().Format(taskwarriorTimeLayout) + `"`), nil
}

type Annotation struct {
	Entry       *CustomTime `json:"entry,omitempty"`
	Description string      `json:"description"`
}

// Task is a task in the format read by `task import`.
type Task struct {
	UUID        string       `json:"uuid,omitempty"`
	Description string       `json:"description"`
	Status      string       `json:"status"`
	Entry       *CustomTime  `json:"entry,omitempty"`
	End         *CustomTime  `json:"end,omitempty"`
	Due         *CustomTime  `json:"due,omitempty"`
	Priority    string       `json:"priority,omitempty"`
	Project     string       `json:"project,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// uuidNamespace scopes the UUIDs derived from todo.txt id: attributes.
var uuidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/todotxt/todo.txt"))

// UUIDFor returns the stable UUID for a todo.txt id: attribute value.
func UUIDFor(id string) string {
	return uuid.NewSHA1(uuidNamespace, []byte(id)).String()
}

// priorities maps todo.txt priorities onto the three taskwarrior levels.
var priorities = map[model.Priority]string{
	"A": "H",
	"B": "M",
	"C": "L",
}

// FromTodo converts a parsed todo.txt task. The first project becomes the
// taskwarrior project and contexts become tags; the original line is kept
// as an annotation so nothing is lost.
func FromTodo(t model.Task) Task {
	task := Task{
		Description: t.Title,
		Status:      PENDING,
		Priority:    priorities[t.Priority],
		Tags:        t.Contexts,
		Entry:       customTime(t.CreatedAt),
		Due:         customTime(t.DueDate),
	}
	if task.Description == "" {
		task.Description = t.Line()
	}
	if t.Completed {
		task.Status = COMPLETED
		task.End = customTime(t.CompletedAt)
	}
	if len(t.Projects) > 0 {
		task.Project = t.Projects[0]
	}
	if id, ok := t.Attribute("id"); ok {
		task.UUID = UUIDFor(id)
	}
	task.Annotations = []Annotation{{Entry: task.Entry, Description: todoAnnotation + t.Line()}}
	return task
}

// todoAnnotation prefixes the annotation FromTodo stores the source line in.
const todoAnnotation = "todo.txt: "

// Line converts the task to a todo.txt line. A task that came from
// FromTodo gives its original line back.
func (t Task) Line() string {
	for _, a := range t.Annotations {
		if line, ok := strings.CutPrefix(a.Description, todoAnnotation); ok {
			return line
		}
	}

	var parts []string
	completed := t.Status == COMPLETED
	if completed {
		parts = append(parts, "x")
	}
	for p, level := range priorities {
		if level == t.Priority {
			parts = append(parts, "("+string(p)+")")
		}
	}
	// The end date needs an entry date after it, or it would read back as
	// the creation date.
	if t.Entry != nil && !t.Entry.IsZero() {
		if completed && t.End != nil && !t.End.IsZero() {
			parts = append(parts, model.FormatDate(t.End.Time))
		}
		parts = append(parts, model.FormatDate(t.Entry.Time))
	}
	parts = append(parts, t.Description)
	if t.Project != "" {
		parts = append(parts, "+"+strings.ReplaceAll(t.Project, ".", "_"))
	}
	for _, tag := range t.Tags {
		parts = append(parts, "@"+tag)
	}
	if t.Due != nil && !t.Due.IsZero() {
		parts = append(parts, "due:"+model.FormatDate(t.Due.Time))
	}
	if t.UUID != "" {
		parts = append(parts, "uuid:"+t.UUID)
	}
	return strings.Join(parts, " ")
}

func customTime(d *time.Time) *CustomTime {
	if d == nil {
		return nil
	}
	return &CustomTime{Time: d.UTC()}
}
