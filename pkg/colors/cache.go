package colors

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Google Calendar event colours 1 to 11; 8 (graphite) is kept for tasks
// without a project.
const (
	firstColor     = 1
	lastColor      = 11
	noProjectColor = "8"
	cacheFile      = "project_colors.json"
)

type ProjectState struct {
	ColorID      string    `json:"color_id"`
	ActiveTasks  int       `json:"active_tasks"`
	LastModified time.Time `json:"last_modified"`
}

// ColorCache assigns each todo.txt project a calendar colour, recycling the
// least recently used one once all colours are taken.
type ColorCache struct {
	Path     string
	Projects map[string]*ProjectState `json:"projects"`
	now      func() time.Time
	dirty    bool
}

// NewColorCache opens the cache stored in dir, if any.
func NewColorCache(dir string) (*ColorCache, error) {
	cache := &ColorCache{
		Path:     filepath.Join(dir, cacheFile),
		Projects: make(map[string]*ProjectState),
		now:      time.Now,
	}

	if _, err := os.Stat(cache.Path); err == nil {
		if err := cache.Load(); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

func (c *ColorCache) Load() error {
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(&c.Projects)
}

func (c *ColorCache) Save() error {
	if !c.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0700); err != nil {
		log.Printf("Error creating color cache directory: %v", err)
		return err
	}

	f, err := os.Create(c.Path)
	if err != nil {
		log.Printf("Error creating color cache file: %v", err)
		return err
	}
	defer f.Close()
	err = json.NewEncoder(f).Encode(c.Projects)
	if err == nil {
		c.dirty = false
	}
	return err
}

// GetColorID returns the colour for project, assigning one if needed.
// A completed task does not count towards the project's active tasks.
func (c *ColorCache) GetColorID(project string, isTaskActive bool) string {
	if project == "" {
		return noProjectColor
	}

	if state, exists := c.Projects[project]; exists {
		state.LastModified = c.now()
		if isTaskActive {
			state.ActiveTasks++
		}
		c.dirty = true
		return state.ColorID
	}

	return c.assignColor(project, isTaskActive)
}

func (c *ColorCache) assignColor(project string, isTaskActive bool) string {
	active := 0
	if isTaskActive {
		active = 1
	}

	used := make(map[string]bool)
	for _, s := range c.Projects {
		used[s.ColorID] = true
	}

	for i := firstColor; i <= lastColor; i++ {
		id := strconv.Itoa(i)
		if id == noProjectColor || used[id] {
			continue
		}
		c.Projects[project] = &ProjectState{ColorID: id, LastModified: c.now(), ActiveTasks: active}
		c.dirty = true
		return id
	}

	// All colours taken: recycle the least recently used project's colour.
	var oldestProject string
	var oldestTime time.Time
	for p, s := range c.Projects {
		if oldestProject == "" || s.LastModified.Before(oldestTime) {
			oldestTime = s.LastModified
			oldestProject = p
		}
	}

	recycled := c.Projects[oldestProject].ColorID
	delete(c.Projects, oldestProject)
	c.Projects[project] = &ProjectState{ColorID: recycled, LastModified: c.now(), ActiveTasks: active}
	c.dirty = true
	return recycled
}
