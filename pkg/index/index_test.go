package index

import (
	"os"
	"testing"
)

func TestEventIndexPersistence(t *testing.T) {
	dir := t.TempDir()

	idx, err := NewEventIndex(dir)
	if err != nil {
		t.Fatalf("NewEventIndex failed: %v", err)
	}
	idx.Set("id:17", "evt-1")
	idx.Set("key-2", "evt-2")
	idx.Remove("key-2")
	if err := idx.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reopened, err := NewEventIndex(dir)
	if err != nil {
		t.Fatalf("NewEventIndex failed: %v", err)
	}
	if got := reopened.Get("id:17"); got != "evt-1" {
		t.Errorf("Get(id:17) = %q, want evt-1", got)
	}
	if got := reopened.Get("key-2"); got != "" {
		t.Errorf("Get(key-2) = %q, want empty", got)
	}
	if keys := reopened.Keys(); len(keys) != 1 {
		t.Errorf("Keys() = %v, want one key", keys)
	}
}

func TestEventIndexSaveSkipsClean(t *testing.T) {
	idx, err := NewEventIndex(t.TempDir())
	if err != nil {
		t.Fatalf("NewEventIndex failed: %v", err)
	}
	if err := idx.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(idx.Path); !os.IsNotExist(err) {
		t.Error("a clean index should not be written")
	}
}
