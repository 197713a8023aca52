package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"family-ops/internal/notify"
	db "family-ops/internal/recipe/db"
)

// Repository is the SQLite-backed Catalog. The full recipe is stored as a
// JSON document in the data column; name_key carries the case-insensitive
// uniqueness constraint.
type Repository struct {
	queries     *db.Queries
	db          *sql.DB
	broadcaster *notify.Broadcaster
}

// NewRepository creates a new Repository. The broadcaster may be nil.
func NewRepository(d *sql.DB, broadcaster *notify.Broadcaster) *Repository {
	return &Repository{
		queries:     db.New(d),
		db:          d,
		broadcaster: broadcaster,
	}
}

var _ Catalog = (*Repository)(nil)

// Create validates params and stores a new recipe.
func (r *Repository) Create(ctx context.Context, params CreateParams) (*Recipe, error) {
	rec, err := build(params, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := r.insert(ctx, rec); err != nil {
		return nil, err
	}

	r.publish(rec.ID)
	return &rec, nil
}

// Update merges params into an existing recipe.
func (r *Repository) Update(ctx context.Context, id string, params UpdateParams) (*Recipe, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("update recipe %s: %w", id, ErrNotFound)
	}

	updated, err := applyUpdate(*existing, params, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := r.insert(ctx, updated); err != nil {
		return nil, err
	}

	r.publish(updated.ID)
	return &updated, nil
}

// GetByID retrieves a recipe by its id, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id string) (*Recipe, error) {
	dbRecipe, err := r.queries.GetRecipeByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Recipe not found
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}
	return unmarshalRecipe(dbRecipe.Data)
}

// GetByName retrieves a recipe by exact name, or nil when absent. The lookup
// runs against the normalized name key, so the match tolerates casing.
func (r *Repository) GetByName(ctx context.Context, name string) (*Recipe, error) {
	dbRecipe, err := r.queries.GetRecipeByNameKey(ctx, NameKey(name))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe by name: %w", err)
	}
	return unmarshalRecipe(dbRecipe.Data)
}

// List retrieves all recipes ordered by name.
func (r *Repository) List(ctx context.Context) ([]Recipe, error) {
	dbRecipes, err := r.queries.ListAllRecipes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	var recipes []Recipe
	for _, dbRec := range dbRecipes {
		rec, err := unmarshalRecipe(dbRec.Data)
		if err != nil {
			return nil, fmt.Errorf("recipe %s: %w", dbRec.ID, err)
		}
		recipes = append(recipes, *rec)
	}
	return recipes, nil
}

// Delete removes a recipe by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	affected, err := r.queries.DeleteRecipe(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete recipe %s: %w", id, ErrNotFound)
	}
	r.publish(id)
	return nil
}

// Count returns the number of recipes in the catalog.
func (r *Repository) Count(ctx context.Context) (int, error) {
	count, err := r.queries.CountRecipes(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return int(count), nil
}

func (r *Repository) insert(ctx context.Context, rec Recipe) error {
	recipeJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe to JSON: %w", err)
	}

	err = r.queries.InsertRecipe(ctx, db.InsertRecipeParams{
		ID:        rec.ID,
		Name:      rec.Name,
		NameKey:   NameKey(rec.Name),
		Data:      string(recipeJSON),
		UpdatedAt: rec.UpdatedAt,
	})
	if err != nil {
		// modernc.org/sqlite reports constraint violations by message
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("recipe %q: %w", rec.Name, ErrDuplicateName)
		}
		return fmt.Errorf("failed to insert recipe: %w", err)
	}
	return nil
}

func (r *Repository) publish(id string) {
	if r.broadcaster != nil {
		r.broadcaster.Publish(notify.Event{Store: notify.StoreRecipes, Key: id})
	}
}

func unmarshalRecipe(data string) (*Recipe, error) {
	var rec Recipe
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	return &rec, nil
}
