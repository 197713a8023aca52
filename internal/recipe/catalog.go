package recipe

import "context"

// Catalog is the storage contract for the recipe collection. The SQLite
// Repository is the production implementation; MemoryCatalog backs tests.
type Catalog interface {
	// Create validates params, assigns identity and timestamps, and stores
	// the recipe. Returns ErrDuplicateName when the name is taken.
	Create(ctx context.Context, params CreateParams) (*Recipe, error)
	// Update merges params into an existing recipe. ID and CreatedAt are
	// immutable. Returns ErrNotFound for an unknown id and ErrDuplicateName
	// when a renamed recipe collides with another one.
	Update(ctx context.Context, id string, params UpdateParams) (*Recipe, error)
	// GetByID returns the recipe, or nil when absent.
	GetByID(ctx context.Context, id string) (*Recipe, error)
	// GetByName returns the first recipe whose name matches exactly,
	// or nil when absent.
	GetByName(ctx context.Context, name string) (*Recipe, error)
	// List returns every recipe in the catalog.
	List(ctx context.Context) ([]Recipe, error)
	// Delete removes a recipe. Returns ErrNotFound for an unknown id.
	Delete(ctx context.Context, id string) error
}
