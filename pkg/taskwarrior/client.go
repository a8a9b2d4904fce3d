package taskwarrior

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/harrisonrobin/todotxt/pkg/model"
)

// Encode writes tasks as one JSON array, the format `task import` reads.
func Encode(w io.Writer, tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(tasks)
}

// EncodeList converts and encodes every task in list.
func EncodeList(w io.Writer, list *model.List) error {
	tasks := make([]Task, 0, list.Len())
	for _, t := range list.Tasks() {
		tasks = append(tasks, FromTodo(t))
	}
	return Encode(w, tasks)
}

// ParseTasks decodes either a JSON array or a stream of JSON objects, one
// per line, as `task export` and hooks produce them.
func ParseTasks(r io.Reader) ([]Task, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(br)
	if first == '[' {
		var tasks []Task
		if err := decoder.Decode(&tasks); err != nil {
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		return tasks, nil
	}

	var tasks []Task
	for {
		var task Task
		if err := decoder.Decode(&task); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to decode task json: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// ReadLines reads taskwarrior JSON as todo.txt lines. Deleted tasks are
// dropped.
func ReadLines(r io.Reader) ([]string, error) {
	tasks, err := ParseTasks(r)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == DELETED {
			continue
		}
		lines = append(lines, t.Line())
	}
	return lines, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			br.ReadByte()
		default:
			return b[0], nil
		}
	}
}

// Client runs the taskwarrior binary.
type Client struct {
	Bin string
}

func NewClient() *Client {
	return &Client{Bin: "task"}
}

// Import feeds tasks to `task import`.
func (c *Client) Import(ctx context.Context, tasks []Task) error {
	var in bytes.Buffer
	if err := Encode(&in, tasks); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, c.Bin, "rc.hooks=0", "import")
	cmd.Stdin = &in
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("taskwarrior import failed: exit code %d, stderr: %s", exitErr.ExitCode(), stderr.String())
		}
		return fmt.Errorf("taskwarrior import failed: %w", err)
	}
	return nil
}
