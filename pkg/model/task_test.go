package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func date(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q) failed: %v", s, err)
	}
	return &d
}

func TestTaskLine(t *testing.T) {
	var attrs Attributes
	attrs.Set("id", "17")
	attrs.Set("foo", "bar")

	task := Task{
		Completed:   true,
		Priority:    "A",
		CompletedAt: date(t, "2016-05-20"),
		CreatedAt:   date(t, "2016-04-30"),
		Title:       "measure space for",
		Projects:    []string{"chapelShelving"},
		Contexts:    []string{"chapel"},
		DueDate:     date(t, "2016-05-30"),
		Attributes:  attrs,
	}

	want := "x (A) 2016-05-20 2016-04-30 measure space for +chapelShelving @chapel due:2016-05-30 id:17 foo:bar"
	if got := task.Line(); got != want {
		t.Errorf("Line() = %q, want %q", got, want)
	}
	if got := task.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestTaskLineEmpty(t *testing.T) {
	if got := (Task{}).Line(); got != "" {
		t.Errorf("Line() of zero task = %q, want empty", got)
	}
	if got := (Task{Title: "just text"}).Line(); got != "just text" {
		t.Errorf("Line() = %q, want %q", got, "just text")
	}
}

func TestAttributesLastWins(t *testing.T) {
	var attrs Attributes
	attrs.Set("a", "1")
	attrs.Set("b", "2")
	attrs.Set("a", "3")

	if attrs.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", attrs.Len())
	}
	if v, ok := attrs.Get("a"); !ok || v != "3" {
		t.Errorf("Get(a) = %q, %v; want 3, true", v, ok)
	}
	if keys := attrs.Keys(); strings.Join(keys, ",") != "a,b" {
		t.Errorf("Keys() = %v, want [a b]", keys)
	}
	if _, ok := attrs.Get("missing"); ok {
		t.Error("Get(missing) reported a value")
	}
}

func TestTaskAttribute(t *testing.T) {
	var attrs Attributes
	attrs.Set("tags", "bla,bli,blu")
	task := Task{Title: "t", Attributes: attrs}

	if v, ok := task.Attribute("tags"); !ok || v != "bla,bli,blu" {
		t.Errorf("Attribute(tags) = %q, %v", v, ok)
	}
	if _, ok := task.Attribute("due"); ok {
		t.Error("Attribute(due) should be absent")
	}
}

func TestTaskMarshalJSON(t *testing.T) {
	var attrs Attributes
	attrs.Set("id", "17")
	task := Task{
		ID:         "abc",
		Priority:   "B",
		Title:      "Call Mom",
		Contexts:   []string{"phone"},
		DueDate:    date(t, "2022-09-25"),
		Attributes: attrs,
	}

	b, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded["due"] != "2022-09-25" {
		t.Errorf("due = %v, want 2022-09-25", decoded["due"])
	}
	if decoded["priority"] != "B" {
		t.Errorf("priority = %v, want B", decoded["priority"])
	}
	if _, ok := decoded["created_at"]; ok {
		t.Error("created_at should be omitted when absent")
	}
	attrsOut, ok := decoded["attributes"].(map[string]any)
	if !ok || attrsOut["id"] != "17" {
		t.Errorf("attributes = %v, want id:17", decoded["attributes"])
	}
}

func TestTaskMarshalYAML(t *testing.T) {
	var attrs Attributes
	attrs.Set("zeta", "1")
	attrs.Set("alpha", "x,y")
	task := Task{
		ID:         "abc",
		Completed:  true,
		Title:      "Pay rent",
		Projects:   []string{"home"},
		CreatedAt:  date(t, "2022-09-01"),
		Attributes: attrs,
	}

	b, err := yaml.Marshal(task)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	out := string(b)
	if strings.Index(out, "zeta:") > strings.Index(out, "alpha:") {
		t.Errorf("attributes out of order:\n%s", out)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded["title"] != "Pay rent" || decoded["completed"] != true {
		t.Errorf("unexpected YAML:\n%s", out)
	}
	if fmt.Sprint(decoded["created_at"]) != "2022-09-01" {
		t.Errorf("created_at = %v, want 2022-09-01", decoded["created_at"])
	}
	if _, ok := decoded["due"]; ok {
		t.Error("due should be omitted when absent")
	}
	attrsOut, ok := decoded["attributes"].(map[string]any)
	if !ok || fmt.Sprint(attrsOut["zeta"]) != "1" || attrsOut["alpha"] != "x,y" {
		t.Errorf("attributes = %v", decoded["attributes"])
	}
}

func TestPriority(t *testing.T) {
	if Priority("A").String() != "(A)" {
		t.Errorf("String() = %q", Priority("A").String())
	}
	if Priority("").String() != "" {
		t.Error("empty priority should render empty")
	}
	if !Priority("A").Less("B") || Priority("C").Less("B") {
		t.Error("priorities should order lexicographically")
	}
}

func TestTaskOverdue(t *testing.T) {
	now := time.Date(2022, 9, 26, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"past due", Task{DueDate: date(t, "2022-09-25")}, true},
		{"due today", Task{DueDate: date(t, "2022-09-26")}, false},
		{"completed", Task{Completed: true, DueDate: date(t, "2022-09-01")}, false},
		{"no due date", Task{}, false},
	}
	for _, tt := range tests {
		if got := tt.task.Overdue(now); got != tt.want {
			t.Errorf("%s: Overdue = %v, want %v", tt.name, got, tt.want)
		}
	}
}
