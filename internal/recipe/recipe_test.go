package recipe

import (
	"context"
	"errors"
	"testing"
)

func validParams() CreateParams {
	return CreateParams{
		Name:     "Chicken Enchilada (GF)",
		Category: "Dinner",
		Ingredients: []IngredientInput{
			{Name: "Chicken Breast", Qty: "500", Unit: "g"},
			{Name: "Corn Tortillas", Qty: "8"},
		},
		Macros: Macros{Calories: 520.4, Protein: 42.6, Fats: 18.2, Carbs: 40.0},
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	catalog := NewMemoryCatalog()

	rec, err := catalog.Create(ctx, validParams())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if rec.ID == "" {
		t.Error("Expected a generated id")
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}
	// Macros are rounded before storage
	if rec.Macros.Calories != 520 || rec.Macros.Protein != 43 {
		t.Errorf("Expected rounded macros (520, 43), got (%v, %v)", rec.Macros.Calories, rec.Macros.Protein)
	}
	if len(rec.Ingredients) != 2 || rec.Ingredients[0].ID == "" {
		t.Errorf("Expected 2 ingredients with ids, got %+v", rec.Ingredients)
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	catalog := NewMemoryCatalog()

	t.Run("MissingName", func(t *testing.T) {
		params := validParams()
		params.Name = "  "
		if _, err := catalog.Create(ctx, params); err == nil {
			t.Fatal("Expected error for missing name, got nil")
		}
	})

	t.Run("NoIngredients", func(t *testing.T) {
		params := validParams()
		params.Ingredients = nil
		if _, err := catalog.Create(ctx, params); err == nil {
			t.Fatal("Expected error for missing ingredients, got nil")
		}
	})

	t.Run("BlankIngredientName", func(t *testing.T) {
		params := validParams()
		params.Ingredients[0].Name = ""
		if _, err := catalog.Create(ctx, params); err == nil {
			t.Fatal("Expected error for blank ingredient name, got nil")
		}
	})
}

func TestCreateDuplicateName(t *testing.T) {
	ctx := context.Background()
	catalog := NewMemoryCatalog()

	if _, err := catalog.Create(ctx, validParams()); err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	// Uniqueness is case-insensitive
	params := validParams()
	params.Name = "chicken enchilada (gf)"
	_, err := catalog.Create(ctx, params)
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("Expected ErrDuplicateName, got %v", err)
	}
}

func TestGetByName(t *testing.T) {
	ctx := context.Background()
	catalog := NewMemoryCatalog()
	created, _ := catalog.Create(ctx, validParams())

	rec, err := catalog.GetByName(ctx, "Chicken Enchilada (GF)")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if rec == nil || rec.ID != created.ID {
		t.Fatalf("Expected recipe %s, got %+v", created.ID, rec)
	}

	// Absent name returns nil, not an error
	rec, err = catalog.GetByName(ctx, "Nonexistent")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if rec != nil {
		t.Errorf("Expected nil for absent recipe, got %+v", rec)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	catalog := NewMemoryCatalog()
	created, _ := catalog.Create(ctx, validParams())

	newName := "Chicken Enchilada v2"
	newMacros := Macros{Calories: 480.7, Protein: 40, Fats: 16, Carbs: 38}
	updated, err := catalog.Update(ctx, created.ID, UpdateParams{Name: &newName, Macros: &newMacros})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Name != newName {
		t.Errorf("Expected name %q, got %q", newName, updated.Name)
	}
	if updated.Macros.Calories != 481 {
		t.Errorf("Expected rounded calories 481, got %v", updated.Macros.Calories)
	}
	if updated.ID != created.ID {
		t.Error("ID must be immutable")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("CreatedAt must be immutable")
	}

	t.Run("UnknownID", func(t *testing.T) {
		_, err := catalog.Update(ctx, "missing", UpdateParams{Name: &newName})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("RenameCollision", func(t *testing.T) {
		other, err := catalog.Create(ctx, CreateParams{
			Name:        "Beef Tacos",
			Ingredients: []IngredientInput{{Name: "Beef Mince", Qty: "400", Unit: "g"}},
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		collision := "chicken enchilada V2"
		_, err = catalog.Update(ctx, other.ID, UpdateParams{Name: &collision})
		if !errors.Is(err, ErrDuplicateName) {
			t.Fatalf("Expected ErrDuplicateName, got %v", err)
		}
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	catalog := NewMemoryCatalog()
	created, _ := catalog.Create(ctx, validParams())

	if err := catalog.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := catalog.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on second delete, got %v", err)
	}
}
