package overdue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const tableFile = "pending_tasks.json"

type Entry struct {
	EventID string    `json:"event_id"`
	Summary string    `json:"summary"`
	Due     time.Time `json:"due"`
}

// Table tracks pending tasks whose calendar events still need the overdue
// marker once their due day has passed.
type Table struct {
	Entries map[string]Entry `json:"entries"`
	Path    string           `json:"-"`
	dirty   bool
}

// NewTable opens the table stored in dir, if any.
func NewTable(dir string) (*Table, error) {
	t := &Table{
		Path:    filepath.Join(dir, tableFile),
		Entries: make(map[string]Entry),
	}

	if _, err := os.Stat(t.Path); err == nil {
		if err := t.Load(); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Table) Load() error {
	f, err := os.Open(t.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(t)
}

func (t *Table) Save() error {
	if !t.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.Path), 0700); err != nil {
		return err
	}

	f, err := os.Create(t.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	err = encoder.Encode(t)
	if err == nil {
		t.dirty = false
	}
	return err
}

// Update records a pending task with a due date. A zero due date removes it.
func (t *Table) Update(key, eventID, summary string, due time.Time) {
	if due.IsZero() {
		t.Remove(key)
		return
	}
	old, exists := t.Entries[key]
	if !exists || !old.Due.Equal(due) || old.EventID != eventID || old.Summary != summary {
		t.Entries[key] = Entry{EventID: eventID, Summary: summary, Due: due}
		t.dirty = true
	}
}

func (t *Table) Remove(key string) {
	if _, exists := t.Entries[key]; exists {
		delete(t.Entries, key)
		t.dirty = true
	}
}

// Sweep returns and removes the entries whose due day ended before now.
func (t *Table) Sweep(now time.Time) []Entry {
	var swept []Entry
	for key, entry := range t.Entries {
		if !entry.Due.AddDate(0, 0, 1).After(now) {
			swept = append(swept, entry)
			delete(t.Entries, key)
			t.dirty = true
		}
	}
	return swept
}
