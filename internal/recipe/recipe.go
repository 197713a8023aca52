// Package recipe owns the household recipe catalog. Recipes are addressed by
// id everywhere in the system; the display name is unique but carries no
// referential weight.
package recipe

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a recipe id does not exist.
	ErrNotFound = errors.New("recipe not found")
	// ErrDuplicateName is returned when a recipe name is already taken
	// (case-insensitive).
	ErrDuplicateName = errors.New("recipe name already exists")
)

// Macros holds the macro totals for one serving of a recipe.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fats     float64 `json:"fats"`
	Carbs    float64 `json:"carbs"`
}

// Round returns the macros with every value rounded to the nearest whole number.
func (m Macros) Round() Macros {
	return Macros{
		Calories: math.Round(m.Calories),
		Protein:  math.Round(m.Protein),
		Fats:     math.Round(m.Fats),
		Carbs:    math.Round(m.Carbs),
	}
}

// Ingredient is a single line of a recipe.
type Ingredient struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Qty  string `json:"qty"`
	Unit string `json:"unit,omitempty"`
}

// Recipe is a reusable named recipe.
type Recipe struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Category     string       `json:"category,omitempty"`
	Ingredients  []Ingredient `json:"ingredients"`
	Macros       Macros       `json:"macros"`
	Instructions string       `json:"instructions,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// EmbeddingText builds the semantic string used for similarity search.
func (r Recipe) EmbeddingText() string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		names = append(names, ing.Name)
	}
	return fmt.Sprintf("Title: %s\nCategory: %s\nIngredients: %s",
		r.Name, r.Category, strings.Join(names, ", "))
}

// IngredientInput is an ingredient line as submitted by callers.
type IngredientInput struct {
	Name string `json:"name"`
	Qty  string `json:"qty"`
	Unit string `json:"unit,omitempty"`
}

// CreateParams holds the fields accepted when creating a recipe.
type CreateParams struct {
	Name         string            `json:"name"`
	Category     string            `json:"category,omitempty"`
	Ingredients  []IngredientInput `json:"ingredients"`
	Macros       Macros            `json:"macros"`
	Instructions string            `json:"instructions,omitempty"`
	Notes        string            `json:"notes,omitempty"`
}

// UpdateParams holds the optional fields of a partial update. ID and
// CreatedAt are immutable.
type UpdateParams struct {
	Name         *string            `json:"name,omitempty"`
	Category     *string            `json:"category,omitempty"`
	Ingredients  *[]IngredientInput `json:"ingredients,omitempty"`
	Macros       *Macros            `json:"macros,omitempty"`
	Instructions *string            `json:"instructions,omitempty"`
	Notes        *string            `json:"notes,omitempty"`
}

// NameKey normalizes a recipe name for uniqueness checks.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// build validates params and assembles a new Recipe with fresh identity
// and timestamps. Macro values are rounded before storage.
func build(params CreateParams, now time.Time) (Recipe, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return Recipe{}, fmt.Errorf("recipe name is required")
	}
	if len(params.Ingredients) == 0 {
		return Recipe{}, fmt.Errorf("at least one ingredient is required")
	}

	ingredients, err := buildIngredients(params.Ingredients)
	if err != nil {
		return Recipe{}, err
	}

	return Recipe{
		ID:           uuid.NewString(),
		Name:         name,
		Category:     strings.TrimSpace(params.Category),
		Ingredients:  ingredients,
		Macros:       params.Macros.Round(),
		Instructions: params.Instructions,
		Notes:        params.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// applyUpdate merges params into rec, refreshing UpdatedAt.
func applyUpdate(rec Recipe, params UpdateParams, now time.Time) (Recipe, error) {
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return Recipe{}, fmt.Errorf("recipe name cannot be empty")
		}
		rec.Name = name
	}
	if params.Category != nil {
		rec.Category = strings.TrimSpace(*params.Category)
	}
	if params.Ingredients != nil {
		ingredients, err := buildIngredients(*params.Ingredients)
		if err != nil {
			return Recipe{}, err
		}
		rec.Ingredients = ingredients
	}
	if params.Macros != nil {
		rec.Macros = params.Macros.Round()
	}
	if params.Instructions != nil {
		rec.Instructions = *params.Instructions
	}
	if params.Notes != nil {
		rec.Notes = *params.Notes
	}
	rec.UpdatedAt = now
	return rec, nil
}

func buildIngredients(inputs []IngredientInput) ([]Ingredient, error) {
	ingredients := make([]Ingredient, 0, len(inputs))
	for i, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, fmt.Errorf("ingredient %d: name is required", i+1)
		}
		ingredients = append(ingredients, Ingredient{
			ID:   uuid.NewString(),
			Name: name,
			Qty:  strings.TrimSpace(in.Qty),
			Unit: strings.TrimSpace(in.Unit),
		})
	}
	return ingredients, nil
}
