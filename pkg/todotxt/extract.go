package todotxt

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/harrisonrobin/todotxt/pkg/model"
)

const dueKey = "due"

// ErrTooManyDates means more than two dates precede the title. The format
// allows at most a completion and a creation date, so this is reported
// instead of guessing which two apply.
var ErrTooManyDates = errors.New("more than two leading dates")

// Extractor pulls one field out of a todo.txt line. Extractors are pure and
// safe for concurrent use.
type Extractor[T any] interface {
	Extract(line string) T
}

// Completion reports whether the line starts with a lowercase "x" and a space.
type Completion struct{}

func (Completion) Extract(line string) bool {
	return completionRegex.MatchString(line)
}

// Priority extracts the "(A) " marker at the start of the line.
type Priority struct{}

func (Priority) Extract(line string) model.Priority {
	m := priorityRegex.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return model.Priority(m[1])
}

// Span is the byte range of the title within a line.
type Span struct {
	Start, End int
	OK         bool
}

// Text returns the spanned part of line.
func (s Span) Text(line string) string {
	if !s.OK {
		return ""
	}
	return line[s.Start:s.End]
}

// Title finds the first run of plain words after the completion marker,
// priority and leading dates. The run ends at the first tag, attribute or
// due token, or at the end of the line.
type Title struct{}

func (Title) Extract(line string) Span {
	var span Span
	for _, tok := range tokenize(line, prefixEnd(line)) {
		k := classify(tok.text)
		if !span.OK {
			if k == plainToken {
				span = Span{Start: tok.start, End: tok.end, OK: true}
			}
			continue
		}
		if k != plainToken && k != dateToken {
			break
		}
		span.End = tok.end
	}
	return span
}

// Dates holds the completion and creation dates found before the title.
type Dates struct {
	CompletedAt *time.Time
	CreatedAt   *time.Time
}

// LeadingDates collects the dates in front of the title. A single date is
// the creation date; with two, the first is the completion date.
type LeadingDates struct{}

// Extract scans line up to the start of title. Without a title the whole
// line is scanned.
func (LeadingDates) Extract(line string, title Span) (Dates, error) {
	boundary := len(line)
	if title.OK {
		boundary = title.Start
	}
	var found []time.Time
	for _, tok := range tokenize(line[:boundary], 0) {
		if classify(tok.text) != dateToken {
			continue
		}
		d, err := model.ParseDate(tok.text)
		if err != nil {
			continue
		}
		found = append(found, d)
	}

	switch len(found) {
	case 0:
		return Dates{}, nil
	case 1:
		return Dates{CreatedAt: &found[0]}, nil
	case 2:
		return Dates{CompletedAt: &found[0], CreatedAt: &found[1]}, nil
	default:
		return Dates{}, fmt.Errorf("%w: found %d", ErrTooManyDates, len(found))
	}
}

// Projects collects every +project tag in textual order.
type Projects struct{}

func (Projects) Extract(line string) []string {
	return collectTags(line, projectToken, projectRegex)
}

// Contexts collects every @context tag in textual order.
type Contexts struct{}

func (Contexts) Extract(line string) []string {
	return collectTags(line, contextToken, contextRegex)
}

func collectTags(line string, want kind, re *regexp.Regexp) []string {
	var tags []string
	for _, tok := range tokenize(line, 0) {
		if classify(tok.text) != want {
			continue
		}
		tags = append(tags, re.FindStringSubmatch(tok.text)[1])
	}
	return tags
}

// DueDate extracts the first due:YYYY-MM-DD token.
type DueDate struct{}

func (DueDate) Extract(line string) *time.Time {
	for _, tok := range tokenize(line, 0) {
		if classify(tok.text) != dueToken {
			continue
		}
		d, err := model.ParseDate(dueRegex.FindStringSubmatch(tok.text)[1])
		if err != nil {
			continue
		}
		return &d
	}
	return nil
}

// KeyValues collects key:value attributes other than due. A repeated key
// keeps the last value.
type KeyValues struct{}

func (KeyValues) Extract(line string) model.Attributes {
	var attrs model.Attributes
	for _, tok := range tokenize(line, 0) {
		if classify(tok.text) != attributeToken {
			continue
		}
		m := attributeRegex.FindStringSubmatch(tok.text)
		attrs.Set(m[1], m[2])
	}
	return attrs
}
