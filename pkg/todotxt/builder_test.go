package todotxt

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/todotxt/pkg/model"
)

func TestParseLineRoundTrip(t *testing.T) {
	lines := []string{
		"x (A) title +project @context due:2022-09-25",
		"x (A) 2016-05-20 2016-04-30 measure space for +chapelShelving @chapel due:2016-05-30 id:17",
		"x (A) title +project @context due:2022-09-25 id:17 foo:bar tags:bla,bli,blu",
		"(A) Call Mom",
		"(b) Get back to the boss",
		"(B)->Submit TPS report",
		"x 2011-03-02 2011-03-01 Review Tim's pull request +TodoTxtTouch @github",
		"2011-03-01 Review pull request",
		"X (A) uppercase x is not a completion marker",
		"Note: buy milk @store",
		"Meet Bob 2020-01-01 notes +work",
		"Plan trip +travel +family @home @phone",
		"Read [call @bob id:7 now](https://example.com) +reading",
		"Check <https://example.com/id:3> @web",
		"x (A) 2020-01-01 +p @c",
		"due:2022-13-01 is not a date",
		"just some text",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			task, err := ParseLine(line)
			if err != nil {
				t.Fatalf("ParseLine failed: %v", err)
			}
			if got := task.Line(); got != line {
				t.Errorf("round trip mismatch\n got: %q\nwant: %q", got, line)
			}
		})
	}
}

func TestParseLineFields(t *testing.T) {
	task, err := ParseLine("x (A) 2016-05-20 2016-04-30 measure space for +chapelShelving @chapel due:2016-05-30 id:17")
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if !task.Completed {
		t.Error("expected completed task")
	}
	if task.Priority != "A" {
		t.Errorf("Priority = %q, want A", task.Priority)
	}
	if task.CompletedAt == nil || model.FormatDate(*task.CompletedAt) != "2016-05-20" {
		t.Errorf("CompletedAt = %v, want 2016-05-20", task.CompletedAt)
	}
	if task.CreatedAt == nil || model.FormatDate(*task.CreatedAt) != "2016-04-30" {
		t.Errorf("CreatedAt = %v, want 2016-04-30", task.CreatedAt)
	}
	if task.Title != "measure space for" {
		t.Errorf("Title = %q, want %q", task.Title, "measure space for")
	}
	if strings.Join(task.Projects, ",") != "chapelShelving" {
		t.Errorf("Projects = %v", task.Projects)
	}
	if strings.Join(task.Contexts, ",") != "chapel" {
		t.Errorf("Contexts = %v", task.Contexts)
	}
	if task.DueDate == nil || model.FormatDate(*task.DueDate) != "2016-05-30" {
		t.Errorf("DueDate = %v, want 2016-05-30", task.DueDate)
	}
	if v, ok := task.Attribute("id"); !ok || v != "17" {
		t.Errorf("Attribute(id) = %q, %v", v, ok)
	}
	if _, ok := task.Attribute("due"); ok {
		t.Error("due must not be stored as an attribute")
	}
	if task.ID == "" {
		t.Error("expected a generated ID")
	}
}

func TestParseLineKeyValues(t *testing.T) {
	task, err := ParseLine("x (A) 2022-09-26 title +project @context due:2022-09-25 id:17 foo:bar tags:bla,bli,blu")
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	want := map[string]string{"id": "17", "foo": "bar", "tags": "bla,bli,blu"}
	for k, v := range want {
		if got, ok := task.Attribute(k); !ok || got != v {
			t.Errorf("Attribute(%s) = %q, %v; want %q", k, got, ok, v)
		}
	}
	out := task.Line()
	for _, kv := range []string{"id:17", "foo:bar", "tags:bla,bli,blu"} {
		if !strings.Contains(out, kv) {
			t.Errorf("Line() = %q, missing %q", out, kv)
		}
	}
}

func TestParseLineDates(t *testing.T) {
	tests := []struct {
		line          string
		wantCompleted string
		wantCreated   string
	}{
		{"x 2011-03-02 2011-03-01 Review Tim's pull request", "2011-03-02", "2011-03-01"},
		{"2011-03-01 Review pull request", "", "2011-03-01"},
		{"(A) 2011-03-01 Call Mom", "", "2011-03-01"},
		{"Review pull request", "", ""},
		{"Meet Bob 2020-01-01", "", ""},
		{"2020-02-30 is not a real day", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			task, err := ParseLine(tt.line)
			if err != nil {
				t.Fatalf("ParseLine failed: %v", err)
			}
			checkDate(t, "CompletedAt", task.CompletedAt, tt.wantCompleted)
			checkDate(t, "CreatedAt", task.CreatedAt, tt.wantCreated)
			if task.CompletedAt != nil && task.CreatedAt == nil {
				t.Error("CompletedAt set without CreatedAt")
			}
		})
	}
}

func TestParseLineTooManyDates(t *testing.T) {
	_, err := ParseLine("x 2011-03-03 2011-03-02 2011-03-01 Review")
	if !errors.Is(err, ErrTooManyDates) {
		t.Fatalf("expected ErrTooManyDates, got %v", err)
	}
	var lineErr *LineError
	if !errors.As(err, &lineErr) || lineErr.Line != 0 {
		t.Errorf("expected *LineError for a single line, got %#v", err)
	}
}

func TestParseLinePriority(t *testing.T) {
	tests := []struct {
		line string
		want model.Priority
	}{
		{"(A) Call Mom", "A"},
		{"x (B) done", "B"},
		{"(b) Get back to the boss", ""},
		{"(B)->Submit TPS report", ""},
		{"Call (C) later", ""},
		{"(A)", ""},
	}
	for _, tt := range tests {
		task, err := ParseLine(tt.line)
		if err != nil {
			t.Fatalf("ParseLine(%q) failed: %v", tt.line, err)
		}
		if task.Priority != tt.want {
			t.Errorf("ParseLine(%q).Priority = %q, want %q", tt.line, task.Priority, tt.want)
		}
	}
}

func TestParseLineLinks(t *testing.T) {
	task, err := ParseLine("Read [call @bob id:7 now](https://example.com) +reading")
	if err != nil {
		t.Fatalf("ParseLine failed: %v", err)
	}
	if task.Title != "Read [call @bob id:7 now](https://example.com)" {
		t.Errorf("Title = %q", task.Title)
	}
	if len(task.Contexts) != 0 {
		t.Errorf("Contexts = %v, want none", task.Contexts)
	}
	if _, ok := task.Attribute("id"); ok {
		t.Error("link text must not produce attributes")
	}
	if strings.Join(task.Projects, ",") != "reading" {
		t.Errorf("Projects = %v", task.Projects)
	}
}

func TestParseLinesPreservesOrder(t *testing.T) {
	lines := []string{
		"x (A) title_1 +project @context due:2022-09-25",
		"(C) title_2 due:2022-09-26",
		"(B) title_3 +project due:2022-09-27",
		"(C) title_4 @context due:2022-09-28",
		"(A) title_5 due:2022-09-29",
		"x 2022-09-30 2022-09-01 title_6",
		"title_7",
	}

	b := NewBuilder(WithIDGenerator(NewSequenceGenerator("t")), WithWorkers(3))
	list, err := b.ParseLines(context.Background(), lines)
	if err != nil {
		t.Fatalf("ParseLines failed: %v", err)
	}
	got := list.Lines()
	if len(got) != len(lines) {
		t.Fatalf("got %d tasks, want %d", len(got), len(lines))
	}
	for i := range lines {
		if got[i] != lines[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], lines[i])
		}
		if want := "t" + string(rune('1'+i)); list.At(i).ID != want {
			t.Errorf("line %d: ID = %q, want %q", i, list.At(i).ID, want)
		}
	}
}

func TestParseLinesBatchError(t *testing.T) {
	lines := []string{
		"first",
		"2020-01-01 2020-01-02 2020-01-03 broken",
		"third",
	}
	list, err := ParseLines(context.Background(), lines)
	if err == nil {
		t.Fatal("expected an error")
	}
	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected *BatchError, got %T", err)
	}
	if len(batchErr.Errors) != 1 || batchErr.Errors[0].Line != 2 {
		t.Errorf("unexpected line errors: %v", batchErr.Errors)
	}
	if !errors.Is(err, ErrTooManyDates) {
		t.Error("BatchError should unwrap to ErrTooManyDates")
	}
	if list == nil || strings.Join(list.Lines(), "|") != "first|third" {
		t.Errorf("expected the good lines to survive, got %v", list)
	}
}

func TestParseLinesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ParseLines(ctx, []string{"a", "b"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSequenceGenerator(t *testing.T) {
	g := NewSequenceGenerator("id-")
	if g.NewID() != "id-1" || g.NewID() != "id-2" {
		t.Error("sequence should count from 1")
	}
}

func checkDate(t *testing.T, name string, got *time.Time, want string) {
	t.Helper()
	switch {
	case want == "" && got != nil:
		t.Errorf("%s = %s, want absent", name, model.FormatDate(*got))
	case want != "" && got == nil:
		t.Errorf("%s absent, want %s", name, want)
	case want != "" && model.FormatDate(*got) != want:
		t.Errorf("%s = %s, want %s", name, model.FormatDate(*got), want)
	}
}
