package todotxt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/harrisonrobin/todotxt/pkg/model"
)

// LineReader produces todo.txt lines from a file. Other formats plug in
// by converting their records to lines.
type LineReader func(r io.Reader) ([]string, error)

// ReadLines reads the lines of a todo.txt file. Blank lines are kept, so
// index i is line i+1 of the file; ReadFile skips them.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// ReadFile reads and parses a todo.txt file. As with ParseLines, a
// *BatchError may come back together with the list.
func (b *Builder) ReadFile(ctx context.Context, path string) (*model.List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines, err := b.reader(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	// lineNos[i] is the 1-based file line of tasks[i].
	tasks := make([]string, 0, len(lines))
	lineNos := make([]int, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tasks = append(tasks, line)
		lineNos = append(lineNos, i+1)
	}

	list, err := b.ParseLines(ctx, tasks)
	var batchErr *BatchError
	if errors.As(err, &batchErr) {
		for _, lineErr := range batchErr.Errors {
			lineErr.File = path
			lineErr.Line = lineNos[lineErr.Line-1]
		}
	}
	return list, err
}

// ReadGlob parses every file matching pattern, which may use ** to match
// across directories. Files are read in lexical order and their tasks
// concatenated.
func (b *Builder) ReadGlob(ctx context.Context, pattern string) (*model.List, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no todo.txt file matches %q: %w", pattern, os.ErrNotExist)
	}
	sort.Strings(paths)

	var tasks []model.Task
	var batchErr BatchError
	for _, path := range paths {
		list, err := b.ReadFile(ctx, path)
		var fileErr *BatchError
		if errors.As(err, &fileErr) {
			batchErr.Errors = append(batchErr.Errors, fileErr.Errors...)
		} else if err != nil {
			return nil, err
		}
		tasks = append(tasks, list.Tasks()...)
	}

	list := model.NewList(tasks...)
	if len(batchErr.Errors) > 0 {
		return list, &batchErr
	}
	return list, nil
}

// WriteList writes one serialized line per task.
func WriteList(w io.Writer, list *model.List) error {
	bw := bufio.NewWriter(w)
	for _, line := range list.Lines() {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
