package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Calendar != DefaultCalendar {
		t.Errorf("Calendar = %q, want %q", cfg.Calendar, DefaultCalendar)
	}
	if filepath.Base(cfg.TodoFile) != "todo.txt" {
		t.Errorf("TodoFile = %q, want .../todo.txt", cfg.TodoFile)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	want := &Config{TodoFile: "/tmp/todo.txt", Calendar: "Work", Workers: 4, Sort: "due", TokenStore: TokenStoreKeyring, Watch: "@every 15m"}

	if err := SaveTo(path, want); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if *got != *want {
		t.Errorf("LoadFrom = %+v, want %+v", got, want)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"sort":"priority"}`), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Calendar != DefaultCalendar || cfg.TodoFile == "" || cfg.Sort != "priority" || cfg.TokenStore != TokenStoreFile {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadFromInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{`), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected a decode error")
	}
}

func TestLoadFromAllowsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
	// work tasks only
	"todo_file": "~/work/todo.txt",
	"calendar": "Work", // synced by cron
	"watch": "@hourly",
}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Calendar != "Work" || cfg.Watch != "@hourly" || cfg.TodoFile != "~/work/todo.txt" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadFromUnknownTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"token_store":"vault"}`), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected an error for an unknown token store")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/todo.txt"); got != filepath.Join(home, "todo.txt") {
		t.Errorf("ExpandHome(~/todo.txt) = %q", got)
	}
	if got := ExpandHome("/tmp/todo.txt"); got != "/tmp/todo.txt" {
		t.Errorf("ExpandHome(/tmp/todo.txt) = %q", got)
	}
}
