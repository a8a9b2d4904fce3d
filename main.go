package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/harrisonrobin/todotxt/pkg/auth"
	"github.com/harrisonrobin/todotxt/pkg/config"
	"github.com/harrisonrobin/todotxt/pkg/model"
	"github.com/harrisonrobin/todotxt/pkg/orgmode"
	"github.com/harrisonrobin/todotxt/pkg/taskwarrior"
	"github.com/harrisonrobin/todotxt/pkg/todotxt"
	"github.com/harrisonrobin/todotxt/pkg/view"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

func main() {
	// 1. Parse Flags
	file := flag.String("file", "", "todo.txt file to read (overrides config)")
	sortBy := flag.String("sort", "", "Sort by due, priority, project or context (overrides config)")
	from := flag.String("from", "todotxt", "Input format: todotxt, org or taskwarrior")
	format := flag.String("format", "todotxt", "Output format: todotxt, pretty, md, json, yaml, taskwarrior or org")
	workers := flag.Int("workers", 0, "Number of parser goroutines (0 uses config, then GOMAXPROCS)")
	doImport := flag.Bool("import", false, "Feed the tasks to `task import`")
	doSync := flag.Bool("sync", false, "Sync tasks with a due date to Google Calendar")
	watch := flag.String("watch", "", "Cron spec (e.g. \"@every 15m\") to keep re-syncing (overrides config)")
	calendarName := flag.String("calendar", "", "Google Calendar name to sync with (overrides config)")
	setCalendar := flag.String("set-calendar", "", "Set the default Google Calendar name")
	doAuth := flag.Bool("auth", false, "Authenticate with Google Calendar")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// 2. Handle Set Calendar
	if *setCalendar != "" {
		cfg.Calendar = *setCalendar
		if err := config.Save(cfg); err != nil {
			log.Fatalf("Error saving config: %v", err)
		}
		fmt.Printf("Default calendar set to: %s\n", *setCalendar)
		return
	}

	// 3. Handle Authentication
	if *doAuth {
		store, err := auth.OpenStore(cfg)
		if err != nil {
			log.Fatalf("Error opening token store: %v", err)
		}
		if err := reauthenticate(ctx, store); err != nil {
			log.Fatalf("Authentication failed: %v", err)
		}
		log.Printf("Authentication successful! Token saved to the %s store", cfg.TokenStore)
		return
	}

	// 4. Flags override config
	if *file != "" {
		cfg.TodoFile = *file
	}
	if *sortBy != "" {
		cfg.Sort = *sortBy
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *calendarName != "" {
		cfg.Calendar = *calendarName
	}
	if *watch != "" {
		cfg.Watch = *watch
	}

	// 5. Parse
	reader, ok := readers[*from]
	if !ok {
		log.Fatalf("Unknown input format %q", *from)
	}
	builder := todotxt.NewBuilder(
		todotxt.WithWorkers(cfg.Workers),
		todotxt.WithLogger(log.Default()),
		todotxt.WithLineReader(reader),
	)
	list, err := load(ctx, builder, cfg)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	// 6. Output
	if err := writeOutput(os.Stdout, list, *format); err != nil {
		log.Fatalf("Error writing output: %v", err)
	}

	if *doImport {
		if err := taskwarrior.NewClient().Import(ctx, exportTasks(list)); err != nil {
			log.Fatalf("Error importing into taskwarrior: %v", err)
		}
	}

	// 7. Calendar sync
	if *doSync {
		dir, err := config.Dir()
		if err != nil {
			log.Fatalf("could not find configuration directory: %v", err)
		}
		store, err := auth.OpenStore(cfg)
		if err != nil {
			log.Fatalf("Error opening token store: %v", err)
		}
		if err := runSync(ctx, dir, store, cfg.Calendar, list); err != nil {
			log.Fatalf("Error syncing with calendar '%s': %v", cfg.Calendar, err)
		}
		if cfg.Watch != "" {
			if err := watchSync(ctx, dir, store, builder, cfg); err != nil {
				log.Fatalf("Error: %v", err)
			}
		}
	}
}

// readers turn each supported input format into todo.txt lines.
var readers = map[string]todotxt.LineReader{
	"todotxt":     todotxt.ReadLines,
	"org":         orgmode.ReadLines,
	"taskwarrior": taskwarrior.ReadLines,
}

// load reads every file matched by cfg.TodoFile and applies cfg.Sort.
// Skipped lines are logged, not fatal.
func load(ctx context.Context, builder *todotxt.Builder, cfg *config.Config) (*model.List, error) {
	pattern := config.ExpandHome(cfg.TodoFile)
	list, err := builder.ReadGlob(ctx, pattern)
	var batchErr *todotxt.BatchError
	if errors.As(err, &batchErr) {
		log.Printf("Warning: %v", batchErr)
	} else if err != nil {
		return nil, fmt.Errorf("reading %s: %w", pattern, err)
	}

	if cfg.Sort != "" {
		key, err := model.ParseSortKey(cfg.Sort)
		if err != nil {
			return nil, err
		}
		list = list.Sorted(key)
	}
	return list, nil
}

func writeOutput(w io.Writer, list *model.List, format string) error {
	switch format {
	case "todotxt", "":
		return todotxt.WriteList(w, list)
	case "pretty":
		return view.Pretty(w, list, time.Now())
	case "md":
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			width, _, err := term.GetSize(int(f.Fd()))
			if err != nil || width <= 0 {
				width = 80
			}
			return view.RenderMarkdown(w, list, width)
		}
		_, err := io.WriteString(w, view.Markdown(list))
		return err
	case "json":
		return writeJSON(w, list.Tasks())
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(list.Tasks()); err != nil {
			return err
		}
		return encoder.Close()
	case "taskwarrior":
		return taskwarrior.EncodeList(w, list)
	case "org":
		return orgmode.Render(w, list)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeJSON(w io.Writer, tasks []model.Task) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(tasks)
}

func exportTasks(list *model.List) []taskwarrior.Task {
	tasks := make([]taskwarrior.Task, 0, list.Len())
	for _, t := range list.Tasks() {
		tasks = append(tasks, taskwarrior.FromTodo(t))
	}
	return tasks
}

// reauthenticate drops the saved token and runs the authorization flow again.
func reauthenticate(ctx context.Context, store auth.TokenStore) error {
	log.Printf("Removing existing token")
	if err := store.Delete(); err != nil {
		return fmt.Errorf("could not delete saved token: %w. Please delete it manually", err)
	}

	_, err := auth.GetCalendarService(ctx, store)
	return err
}
