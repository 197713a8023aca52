package recipe

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"family-ops/internal/database"
	"family-ops/internal/notify"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL, notify.NewBroadcaster())
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	created, err := repo.Create(ctx, validParams())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil || got.Name != created.Name {
		t.Fatalf("Expected %q, got %+v", created.Name, got)
	}
	if len(got.Ingredients) != 2 {
		t.Errorf("Expected 2 ingredients, got %d", len(got.Ingredients))
	}

	byName, err := repo.GetByName(ctx, "chicken enchilada (gf)")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if byName == nil || byName.ID != created.ID {
		t.Fatalf("Expected recipe %s by name, got %+v", created.ID, byName)
	}
}

func TestRepositoryDuplicateName(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if _, err := repo.Create(ctx, validParams()); err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	params := validParams()
	params.Name = "CHICKEN ENCHILADA (GF)"
	_, err := repo.Create(ctx, params)
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("Expected ErrDuplicateName, got %v", err)
	}
}

func TestRepositoryListAndCount(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	names := []string{"Beef Tacos", "Chicken Enchilada (GF)", "Avocado Toast"}
	for _, name := range names {
		params := validParams()
		params.Name = name
		if _, err := repo.Create(ctx, params); err != nil {
			t.Fatalf("Create %q failed: %v", name, err)
		}
	}

	recipes, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(recipes) != 3 {
		t.Fatalf("Expected 3 recipes, got %d", len(recipes))
	}
	// Ordered by name
	if recipes[0].Name != "Avocado Toast" {
		t.Errorf("Expected 'Avocado Toast' first, got %q", recipes[0].Name)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected count 3, got %d", count)
	}
}

func TestRepositoryUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	created, _ := repo.Create(ctx, validParams())

	notes := "Family favourite"
	updated, err := repo.Update(ctx, created.ID, UpdateParams{Notes: &notes})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Notes != notes {
		t.Errorf("Expected notes %q, got %q", notes, updated.Notes)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil after delete, got %+v", got)
	}

	if err := repo.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}
