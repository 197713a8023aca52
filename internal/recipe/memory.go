package recipe

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryCatalog is an in-memory Catalog used by tests and by callers that
// do not need persistence.
type MemoryCatalog struct {
	mu      sync.RWMutex
	recipes map[string]Recipe
}

// NewMemoryCatalog creates an empty MemoryCatalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{recipes: make(map[string]Recipe)}
}

var _ Catalog = (*MemoryCatalog)(nil)

// Create validates params and stores a new recipe.
func (c *MemoryCatalog) Create(ctx context.Context, params CreateParams) (*Recipe, error) {
	rec, err := build(params, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lookupByKey(NameKey(rec.Name)) != nil {
		return nil, fmt.Errorf("recipe %q: %w", rec.Name, ErrDuplicateName)
	}
	c.recipes[rec.ID] = rec
	return &rec, nil
}

// Update merges params into an existing recipe.
func (c *MemoryCatalog) Update(ctx context.Context, id string, params UpdateParams) (*Recipe, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, ok := c.recipes[id]
	if !ok {
		return nil, fmt.Errorf("update recipe %s: %w", id, ErrNotFound)
	}

	updated, err := applyUpdate(existing, params, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if other := c.lookupByKey(NameKey(updated.Name)); other != nil && other.ID != id {
		return nil, fmt.Errorf("recipe %q: %w", updated.Name, ErrDuplicateName)
	}

	c.recipes[id] = updated
	return &updated, nil
}

// GetByID returns the recipe with the given id, or nil.
func (c *MemoryCatalog) GetByID(ctx context.Context, id string) (*Recipe, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if rec, ok := c.recipes[id]; ok {
		return &rec, nil
	}
	return nil, nil
}

// GetByName returns the recipe matching name (case-insensitive), or nil.
func (c *MemoryCatalog) GetByName(ctx context.Context, name string) (*Recipe, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lookupByKey(NameKey(name)), nil
}

// List returns every recipe in the catalog.
func (c *MemoryCatalog) List(ctx context.Context) ([]Recipe, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Recipe, 0, len(c.recipes))
	for _, rec := range c.recipes {
		out = append(out, rec)
	}
	return out, nil
}

// Delete removes a recipe by id.
func (c *MemoryCatalog) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.recipes[id]; !ok {
		return fmt.Errorf("delete recipe %s: %w", id, ErrNotFound)
	}
	delete(c.recipes, id)
	return nil
}

// lookupByKey must be called with the lock held.
func (c *MemoryCatalog) lookupByKey(key string) *Recipe {
	for _, rec := range c.recipes {
		if NameKey(rec.Name) == key {
			r := rec
			return &r
		}
	}
	return nil
}
