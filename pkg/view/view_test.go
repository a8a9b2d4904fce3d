package view

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/todotxt/pkg/model"
	"github.com/harrisonrobin/todotxt/pkg/todotxt"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func parseList(t *testing.T, lines ...string) *model.List {
	t.Helper()
	list, err := todotxt.ParseLines(context.Background(), lines)
	if err != nil {
		t.Fatalf("ParseLines failed: %v", err)
	}
	return list
}

func TestPrettyMatchesLines(t *testing.T) {
	lines := []string{
		"(A) 2022-09-01 Call Mom +family @phone due:2022-09-25 id:17",
		"x 2022-09-26 2022-09-20 Pay rent +home",
		"2022-01-02 2022-01-01 Two dates, still pending",
		"(D) Read [the docs](https://go.dev/doc) +learn",
	}
	list := parseList(t, lines...)

	var buf bytes.Buffer
	if err := Pretty(&buf, list, time.Date(2022, 9, 30, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Pretty failed: %v", err)
	}
	got := strings.Split(strings.TrimSuffix(ansi.ReplaceAllString(buf.String(), ""), "\n"), "\n")
	if strings.Join(got, "\n") != strings.Join(lines, "\n") {
		t.Errorf("Pretty =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(lines, "\n"))
	}
}

func TestMarkdown(t *testing.T) {
	list := parseList(t,
		"(A) Call Mom +family @phone due:2022-09-25",
		"x Pay rent",
		"+inbox",
	)
	want := "- [ ] **(A)** Call Mom `+family` `@phone` _due 2022-09-25_\n" +
		"- [x] ~~Pay rent~~\n" +
		"- [ ] _untitled_ `+inbox`\n"
	if got := Markdown(list); got != want {
		t.Errorf("Markdown =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderMarkdown(t *testing.T) {
	list := parseList(t, "Call Mom @phone", "x Pay rent")
	var buf bytes.Buffer
	if err := RenderMarkdown(&buf, list, 80); err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}
	out := ansi.ReplaceAllString(buf.String(), "")
	for _, want := range []string{"Call Mom", "Pay rent"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
