package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"family-ops/internal/database"
	"family-ops/internal/notify"
	"family-ops/internal/plan"
	"family-ops/internal/recipe"
	"family-ops/internal/worklog"
)

func newTestServer(t *testing.T) (*httptest.Server, recipe.Catalog, *plan.Service) {
	t.Helper()

	catalog := recipe.NewMemoryCatalog()
	svc := plan.NewService(plan.NewMemoryStore(), catalog, []string{"jade", "harvey"})

	d, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	srv := New(Deps{
		Catalog:  catalog,
		Plans:    svc,
		Worklog:  worklog.NewRepository(d.SQL, notify.NewBroadcaster()),
		DataPath: t.TempDir(),
	})

	mux := http.NewServeMux()
	srv.Routes(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, catalog, svc
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestRecipeEndpoints(t *testing.T) {
	ts, _, _ := newTestServer(t)

	params := map[string]interface{}{
		"name": "Chicken Enchilada (GF)",
		"ingredients": []map[string]string{
			{"name": "Chicken Breast", "qty": "500", "unit": "g"},
			{"name": "Corn Tortillas", "qty": "8"},
		},
		"macros": map[string]float64{"calories": 520, "protein": 42},
	}

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/recipes", params)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	var created recipe.Recipe
	decode(t, resp, &created)
	if created.ID == "" || created.Name != "Chicken Enchilada (GF)" {
		t.Fatalf("Unexpected recipe: %+v", created)
	}

	t.Run("DuplicateName", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/recipes", params)
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("Expected 409, got %d", resp.StatusCode)
		}
	})

	t.Run("Get", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/recipes/"+created.ID, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		var got recipe.Recipe
		decode(t, resp, &got)
		if got.ID != created.ID {
			t.Errorf("Expected %s, got %s", created.ID, got.ID)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/recipes/nope", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("Update", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, ts.URL+"/api/recipes/"+created.ID,
			map[string]string{"notes": "Family favorite"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		var got recipe.Recipe
		decode(t, resp, &got)
		if got.Notes != "Family favorite" {
			t.Errorf("Expected updated notes, got %q", got.Notes)
		}
	})

	t.Run("List", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/recipes", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		var got []recipe.Recipe
		decode(t, resp, &got)
		if len(got) != 1 {
			t.Errorf("Expected 1 recipe, got %d", len(got))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		resp := doJSON(t, http.MethodDelete, ts.URL+"/api/recipes/"+created.ID, nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d", resp.StatusCode)
		}
		resp = doJSON(t, http.MethodDelete, ts.URL+"/api/recipes/"+created.ID, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404 on double delete, got %d", resp.StatusCode)
		}
	})

	t.Run("SearchUnconfigured", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/recipes/search?q=pasta", nil)
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d", resp.StatusCode)
		}
	})
}

func TestWeekPlanEndpoints(t *testing.T) {
	ts, catalog, _ := newTestServer(t)

	rec, err := catalog.Create(context.Background(), recipe.CreateParams{
		Name: "Overnight Oats",
		Ingredients: []recipe.IngredientInput{
			{Name: "Oats", Qty: "80", Unit: "g"},
			{Name: "Milk", Qty: "200", Unit: "ml"},
		},
		Macros: recipe.Macros{Calories: 350, Protein: 12},
	})
	if err != nil {
		t.Fatalf("Create recipe failed: %v", err)
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/weeks/current", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var week plan.WeekPlan
	decode(t, resp, &week)
	if week.WeekID == "" {
		t.Fatal("Expected a week id")
	}

	slotURL := fmt.Sprintf("%s/api/weeks/%s/members/jade/days/monday/slots/breakfast", ts.URL, week.WeekID)

	t.Run("SetMeal", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, slotURL, map[string]string{"recipe_id": rec.ID})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		var got plan.WeekPlan
		decode(t, resp, &got)
		if len(got.ShoppingList) != 2 {
			t.Errorf("Expected 2 shopping items, got %d", len(got.ShoppingList))
		}
	})

	t.Run("DayMacros", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet,
			fmt.Sprintf("%s/api/weeks/%s/members/jade/days/monday/macros", ts.URL, week.WeekID), nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		var got recipe.Macros
		decode(t, resp, &got)
		if got.Calories != 350 {
			t.Errorf("Expected 350 calories, got %v", got.Calories)
		}
	})

	t.Run("UnknownMember", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut,
			fmt.Sprintf("%s/api/weeks/%s/members/zelda/days/monday/slots/breakfast", ts.URL, week.WeekID),
			map[string]string{"recipe_id": rec.ID})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("InvalidDay", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut,
			fmt.Sprintf("%s/api/weeks/%s/members/jade/days/someday/slots/breakfast", ts.URL, week.WeekID),
			map[string]string{"recipe_id": rec.ID})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("MissingRecipe", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, slotURL, map[string]string{"recipe_id": "nope"})
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("Override", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, slotURL+"/override", map[string]interface{}{
			"ingredients": []map[string]string{{"name": "Almond Milk", "qty": "200", "unit": "ml"}},
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		var got plan.WeekPlan
		decode(t, resp, &got)
		found := false
		for _, item := range got.ShoppingList {
			if item.Ingredient == "Almond Milk" {
				found = true
			}
		}
		if !found {
			t.Error("Expected override ingredient in shopping list")
		}
	})

	t.Run("ShoppingItem", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost,
			fmt.Sprintf("%s/api/weeks/%s/shopping", ts.URL, week.WeekID),
			map[string]string{"ingredient": "Dish Soap", "qty": "1", "source": "harvey"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}

		resp = doJSON(t, http.MethodDelete,
			fmt.Sprintf("%s/api/weeks/%s/shopping/nope", ts.URL, week.WeekID), nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404 for unknown item, got %d", resp.StatusCode)
		}
	})

	t.Run("ReplaceShoppingList", func(t *testing.T) {
		items := []map[string]interface{}{
			{"ingredient": "Coffee Beans", "quantity": 500, "unit": "g", "source": "harvey"},
		}
		resp := doJSON(t, http.MethodPut,
			fmt.Sprintf("%s/api/weeks/%s/shopping", ts.URL, week.WeekID), items)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		var got plan.WeekPlan
		decode(t, resp, &got)
		if len(got.ShoppingList) != 1 || got.ShoppingList[0].Ingredient != "Coffee Beans" {
			t.Errorf("Expected the replaced list, got %+v", got.ShoppingList)
		}
	})

	t.Run("RemoveMeal", func(t *testing.T) {
		resp := doJSON(t, http.MethodDelete, slotURL, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		resp = doJSON(t, http.MethodDelete, slotURL, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404 on empty slot, got %d", resp.StatusCode)
		}
	})

	t.Run("LockThenEdit", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost,
			fmt.Sprintf("%s/api/weeks/%s/lock", ts.URL, week.WeekID), nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200 on lock, got %d", resp.StatusCode)
		}

		resp = doJSON(t, http.MethodPut, slotURL, map[string]string{"recipe_id": rec.ID})
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("Expected 409 on locked week, got %d", resp.StatusCode)
		}

		resp = doJSON(t, http.MethodPost,
			fmt.Sprintf("%s/api/weeks/%s/lock", ts.URL, week.WeekID), nil)
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("Expected 409 on double lock, got %d", resp.StatusCode)
		}
	})

	t.Run("ListByStatus", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/weeks?status=locked", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		var weeks []plan.WeekPlan
		decode(t, resp, &weeks)
		if len(weeks) != 1 || weeks[0].WeekID != week.WeekID {
			t.Errorf("Expected only the locked week, got %+v", weeks)
		}

		resp = doJSON(t, http.MethodGet, ts.URL+"/api/weeks?status=bogus", nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400 for unknown status, got %d", resp.StatusCode)
		}
	})

	t.Run("MissingWeek", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/weeks/1999-w01", nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", resp.StatusCode)
		}
	})
}

func TestWorklogEndpoints(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/worklog", map[string]interface{}{
		"date":     "2026-08-30",
		"category": "automation",
		"summary":  "Migrated the backup cron to the new host",
		"hours":    1.5,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	var entry worklog.Entry
	decode(t, resp, &entry)
	if entry.ID == "" || entry.Category != "automation" {
		t.Fatalf("Unexpected entry: %+v", entry)
	}

	t.Run("RejectsEmptySummary", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/worklog",
			map[string]string{"category": "automation"})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("List", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/worklog?days=7", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d", resp.StatusCode)
		}
		var entries []worklog.Entry
		decode(t, resp, &entries)
		if len(entries) != 1 {
			t.Errorf("Expected 1 entry, got %d", len(entries))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		resp := doJSON(t, http.MethodDelete, ts.URL+"/api/worklog/"+entry.ID, nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d", resp.StatusCode)
		}
		resp = doJSON(t, http.MethodDelete, ts.URL+"/api/worklog/"+entry.ID, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404 on double delete, got %d", resp.StatusCode)
		}
	})
}

func TestUnconfiguredIntegrations(t *testing.T) {
	ts, _, _ := newTestServer(t)

	paths := map[string]string{
		"/api/content/calendar": http.MethodGet,
		"/api/business/revenue": http.MethodGet,
		"/api/business/crm":     http.MethodGet,
		"/api/metrics/usage":    http.MethodGet,
	}
	for path, method := range paths {
		resp := doJSON(t, method, ts.URL+path, nil)
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", path, resp.StatusCode)
		}
	}
}

func TestHealth(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
}
