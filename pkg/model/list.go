package model

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// SortKey selects the task field a List is sorted by.
type SortKey int

const (
	SortByDueDate SortKey = iota
	SortByPriority
	SortByProject
	SortByContext
)

var sortKeyNames = map[SortKey]string{
	SortByDueDate:  "due",
	SortByPriority: "priority",
	SortByProject:  "project",
	SortByContext:  "context",
}

func (k SortKey) String() string {
	if name, ok := sortKeyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("SortKey(%d)", int(k))
}

// ParseSortKey maps a name such as "due" or "priority" to a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "due", "duedate", "due_date":
		return SortByDueDate, nil
	case "priority", "pri":
		return SortByPriority, nil
	case "project", "projects":
		return SortByProject, nil
	case "context", "contexts":
		return SortByContext, nil
	}
	return 0, fmt.Errorf("unknown sort key %q", s)
}

// List is an ordered, immutable collection of tasks.
type List struct {
	tasks []Task
}

// NewList creates a list holding a copy of tasks.
func NewList(tasks ...Task) *List {
	return &List{tasks: cloneTasks(tasks)}
}

// Tasks returns a deep copy of the tasks in list order.
func (l *List) Tasks() []Task {
	return cloneTasks(l.tasks)
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// Len returns the number of tasks.
func (l *List) Len() int {
	return len(l.tasks)
}

// At returns the task at index i.
func (l *List) At(i int) Task {
	return l.tasks[i].Clone()
}

// Lines serializes every task, preserving list order.
func (l *List) Lines() []string {
	lines := make([]string, len(l.tasks))
	for i, t := range l.tasks {
		lines[i] = t.Line()
	}
	return lines
}

// Filter returns a new list with the tasks keep reports true for.
func (l *List) Filter(keep func(Task) bool) *List {
	var out []Task
	for _, t := range l.tasks {
		if keep(t.Clone()) {
			out = append(out, t)
		}
	}
	return &List{tasks: out}
}

// Sorted returns a new list ordered by key, ascending. Tasks without a value
// for key go after all tasks that have one. The sort is stable and the
// receiver is left untouched.
func (l *List) Sorted(key SortKey) *List {
	sorted := slices.Clone(l.tasks)
	less := lessFunc(key)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return &List{tasks: sorted}
}

func lessFunc(key SortKey) func(a, b Task) bool {
	switch key {
	case SortByPriority:
		return func(a, b Task) bool {
			return lessOptional(string(a.Priority), a.Priority != "", string(b.Priority), b.Priority != "")
		}
	case SortByProject:
		return func(a, b Task) bool {
			av, aok := smallest(a.Projects)
			bv, bok := smallest(b.Projects)
			return lessOptional(av, aok, bv, bok)
		}
	case SortByContext:
		return func(a, b Task) bool {
			av, aok := smallest(a.Contexts)
			bv, bok := smallest(b.Contexts)
			return lessOptional(av, aok, bv, bok)
		}
	default:
		return func(a, b Task) bool {
			switch {
			case a.DueDate != nil && b.DueDate != nil:
				return a.DueDate.Before(*b.DueDate)
			case a.DueDate != nil:
				return true
			default:
				return false
			}
		}
	}
}

// lessOptional orders present values ascending and absent values last.
func lessOptional(a string, aok bool, b string, bok bool) bool {
	switch {
	case aok && bok:
		return a < b
	case aok:
		return true
	default:
		return false
	}
}

func smallest(tags []string) (string, bool) {
	if len(tags) == 0 {
		return "", false
	}
	return slices.Min(tags), true
}
