package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/harrisonrobin/todotxt/pkg/auth"
	"github.com/harrisonrobin/todotxt/pkg/colors"
	"github.com/harrisonrobin/todotxt/pkg/config"
	"github.com/harrisonrobin/todotxt/pkg/google"
	"github.com/harrisonrobin/todotxt/pkg/index"
	"github.com/harrisonrobin/todotxt/pkg/model"
	"github.com/harrisonrobin/todotxt/pkg/overdue"
	"github.com/harrisonrobin/todotxt/pkg/todotxt"
	"github.com/harrisonrobin/todotxt/pkg/util"
	cron "github.com/netresearch/go-cron"
	"google.golang.org/api/calendar/v3"
)

// runSync pushes every task with a due date to the calendar and removes the
// events of tasks that are gone from the file.
func runSync(ctx context.Context, dir string, store auth.TokenStore, calendarName string, list *model.List) error {
	sweepTable, err := overdue.NewTable(dir)
	if err != nil {
		log.Printf("Warning: failed to initialize overdue sweep table: %v", err)
	}
	evtIndex, err := index.NewEventIndex(dir)
	if err != nil {
		log.Printf("Warning: failed to initialize event index: %v", err)
	}
	colorCache, err := colors.NewColorCache(dir)
	if err != nil {
		log.Printf("Warning: failed to initialize color cache: %v", err)
	}

	gClient, err := google.NewClient(ctx, store, calendarName, evtIndex, colorCache)
	if err != nil {
		return err
	}

	return syncList(ctx, gClient, list, sweepTable, evtIndex, colorCache, time.Now())
}

func syncList(ctx context.Context, gClient *google.CalendarClient, list *model.List,
	sweepTable *overdue.Table, evtIndex *index.EventIndex, colorCache *colors.ColorCache, now time.Time) error {
	if sweepTable != nil {
		for _, e := range sweepTable.Sweep(now) {
			patch := &calendar.Event{Summary: "! " + e.Summary}
			if _, err := gClient.PatchEvent(ctx, e.EventID, patch); err != nil {
				log.Printf("Sweep: error patching event %s: %v", e.EventID, err)
			}
		}
	}

	withDue := list.Filter(func(t model.Task) bool { return t.DueDate != nil })
	keep := make(map[string]bool, withDue.Len())
	synced := 0
	for _, task := range withDue.Tasks() {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := util.SyncKey(task)
		keep[key] = true

		event, err := gClient.SyncEvent(ctx, task)
		if err != nil {
			log.Printf("Error syncing %q: %v", task.Line(), err)
			continue
		}
		synced++

		if sweepTable == nil {
			continue
		}
		if task.Completed || task.Overdue(now) {
			sweepTable.Remove(key)
		} else {
			summary := task.Title
			if summary == "" {
				summary = task.Line()
			}
			sweepTable.Update(key, event.Id, summary, *task.DueDate)
		}
	}

	deleted, err := gClient.Prune(ctx, keep)
	if err != nil {
		log.Printf("Error removing stale events: %v", err)
	}
	if sweepTable != nil {
		for key := range sweepTable.Entries {
			if !keep[key] {
				sweepTable.Remove(key)
			}
		}
	}
	log.Printf("Synced %d tasks, removed %d stale events", synced, deleted)
	if upcoming, err := gClient.ListEvents(ctx, now.Truncate(24*time.Hour)); err == nil {
		log.Printf("Calendar %s has %d task events from today on", gClient.CalendarID(), len(upcoming))
	}

	if sweepTable != nil {
		if err := sweepTable.Save(); err != nil {
			log.Printf("Warning: failed to save sweep table: %v", err)
		}
	}
	if evtIndex != nil {
		if err := evtIndex.Save(); err != nil {
			log.Printf("Warning: failed to save event index: %v", err)
		}
	}
	if colorCache != nil {
		if err := colorCache.Save(); err != nil {
			log.Printf("Warning: failed to save color cache: %v", err)
		}
	}
	return nil
}

// watchSync re-reads the todo files and syncs on cfg.Watch until ctx is done.
// A run still in progress when the next one is due makes that one skip.
func watchSync(ctx context.Context, dir string, store auth.TokenStore, builder *todotxt.Builder, cfg *config.Config) error {
	var running sync.Mutex
	job := func() {
		if !running.TryLock() {
			log.Printf("Watch: previous sync still running, skipping")
			return
		}
		defer running.Unlock()

		list, err := load(ctx, builder, cfg)
		if err != nil {
			log.Printf("Watch: %v", err)
			return
		}
		if err := runSync(ctx, dir, store, cfg.Calendar, list); err != nil {
			log.Printf("Watch: error syncing with calendar '%s': %v", cfg.Calendar, err)
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Watch, job); err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", cfg.Watch, err)
	}
	log.Printf("Watching %s, syncing on %q", cfg.TodoFile, cfg.Watch)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
