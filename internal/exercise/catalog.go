package exercise

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Catalog holds exercises keyed by ID.
// All methods are thread-safe.
type Catalog struct {
	mu        sync.RWMutex
	exercises map[int64]*Exercise
	byPath    map[string]int64
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		exercises: make(map[int64]*Exercise),
		byPath:    make(map[string]int64),
	}
}

// Put adds or replaces an exercise.
func (c *Catalog) Put(ex *Exercise) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exercises[ex.ID] = ex
}

// Get returns the exercise with the given ID.
func (c *Catalog) Get(id int64) (*Exercise, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ex, ok := c.exercises[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return ex, nil
}

// List returns all exercises in ID order.
func (c *Catalog) List() []*Exercise {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list := make([]*Exercise, 0, len(c.exercises))
	for _, ex := range c.exercises {
		list = append(list, ex)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// Len returns the number of exercises.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.exercises)
}

// LoadDir loads every .toml and .json file directly inside dir. Files that
// fail to load are skipped and reported together in the returned error; the
// rest are still added.
func (c *Catalog) LoadDir(dir string) (int, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	var (
		n    int
		errs []error
	)
	for _, e := range entries {
		if e.IsDir() || !isExerciseFile(e.Name()) {
			continue
		}
		if _, err := c.loadPath(filepath.Join(dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

// loadPath loads one file and remembers which exercise it defined.
func (c *Catalog) loadPath(path string) (*Exercise, error) {
	ex, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.byPath[path]; ok && old != ex.ID {
		delete(c.exercises, old)
	}
	c.exercises[ex.ID] = ex
	c.byPath[path] = ex.ID
	return ex, nil
}

// removePath drops the exercise loaded from path, returning its ID.
func (c *Catalog) removePath(path string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.byPath[path]
	if !ok {
		return 0, false
	}
	delete(c.byPath, path)
	delete(c.exercises, id)
	return id, true
}
