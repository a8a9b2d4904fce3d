// Package todotxt parses todo.txt lines into tasks.
//
// Each field has its own extractor. The Builder runs them over a line in a
// fixed order: the title span is found first because the leading dates are
// only those in front of it.
package todotxt

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/harrisonrobin/todotxt/pkg/model"
)

var (
	_ Extractor[bool]             = Completion{}
	_ Extractor[model.Priority]   = Priority{}
	_ Extractor[Span]             = Title{}
	_ Extractor[[]string]         = Projects{}
	_ Extractor[[]string]         = Contexts{}
	_ Extractor[model.Attributes] = KeyValues{}
)

// IDGenerator hands out task IDs.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates random UUIDs. It is the default.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SequenceGenerator generates prefix1, prefix2, ... Useful in tests.
type SequenceGenerator struct {
	prefix string
	n      atomic.Int64
}

func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

func (g *SequenceGenerator) NewID() string {
	return fmt.Sprintf("%s%d", g.prefix, g.n.Add(1))
}

// Builder turns lines into tasks.
type Builder struct {
	ids     IDGenerator
	workers int
	logger  *log.Logger
	reader  LineReader
}

// Option configures a Builder.
type Option func(*Builder)

// WithIDGenerator sets the source of task IDs.
func WithIDGenerator(g IDGenerator) Option {
	return func(b *Builder) { b.ids = g }
}

// WithWorkers bounds how many lines ParseLines parses at once.
// Zero or less means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(b *Builder) { b.workers = n }
}

// WithLogger logs lines that ParseLines had to skip.
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithLineReader sets how ReadFile and ReadGlob turn a file into todo.txt
// lines. The default is ReadLines.
func WithLineReader(r LineReader) Option {
	return func(b *Builder) { b.reader = r }
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{ids: UUIDGenerator{}, reader: ReadLines}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ParseLine parses a single line. Missing fields are simply left empty; the
// only error is ErrTooManyDates, wrapped in a *LineError.
func (b *Builder) ParseLine(line string) (model.Task, error) {
	task, err := b.build(line, b.ids.NewID())
	if err != nil {
		return model.Task{}, &LineError{Text: line, Err: err}
	}
	return task, nil
}

// ParseLines parses lines concurrently and returns the tasks in input order.
//
// Lines that cannot be parsed are left out of the list and reported in a
// *BatchError, returned alongside the list so the caller can choose to
// abort or carry on. Cancelling ctx stops the batch with ctx.Err().
func (b *Builder) ParseLines(ctx context.Context, lines []string) (*model.List, error) {
	ids := make([]string, len(lines))
	for i := range ids {
		ids[i] = b.ids.NewID()
	}

	tasks := make([]model.Task, len(lines))
	errs := make([]error, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workerCount())
	for i, line := range lines {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tasks[i], errs[i] = b.build(line, ids[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parsed := make([]model.Task, 0, len(lines))
	var batchErr BatchError
	for i, err := range errs {
		if err != nil {
			lineErr := &LineError{Line: i + 1, Text: lines[i], Err: err}
			if b.logger != nil {
				b.logger.Printf("skipping %v", lineErr)
			}
			batchErr.Errors = append(batchErr.Errors, lineErr)
			continue
		}
		parsed = append(parsed, tasks[i])
	}

	list := model.NewList(parsed...)
	if len(batchErr.Errors) > 0 {
		return list, &batchErr
	}
	return list, nil
}

func (b *Builder) workerCount() int {
	if b.workers > 0 {
		return b.workers
	}
	return runtime.GOMAXPROCS(0)
}

// build runs the extractors over one line. Links are swapped for
// placeholders first so their brackets and colons are not read as fields.
func (b *Builder) build(line, id string) (model.Task, error) {
	enc := encodeLinks(line)

	span := Title{}.Extract(enc.text)
	dates, err := LeadingDates{}.Extract(enc.text, span)
	if err != nil {
		return model.Task{}, err
	}

	return model.Task{
		ID:          id,
		Completed:   Completion{}.Extract(enc.text),
		Priority:    Priority{}.Extract(enc.text),
		CompletedAt: dates.CompletedAt,
		CreatedAt:   dates.CreatedAt,
		Title:       enc.decode(span.Text(enc.text)),
		Projects:    Projects{}.Extract(enc.text),
		Contexts:    Contexts{}.Extract(enc.text),
		DueDate:     DueDate{}.Extract(enc.text),
		Attributes:  KeyValues{}.Extract(enc.text),
	}, nil
}

var defaultBuilder = NewBuilder()

// ParseLine parses a line with a default Builder.
func ParseLine(line string) (model.Task, error) {
	return defaultBuilder.ParseLine(line)
}

// ParseLines parses lines with a default Builder.
func ParseLines(ctx context.Context, lines []string) (*model.List, error) {
	return defaultBuilder.ParseLines(ctx, lines)
}
