package shopping

import (
	"testing"
	"time"
)

var now = time.Date(2026, time.February, 16, 9, 0, 0, 0, time.UTC)

func TestCoerceQty(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"200", 200},
		{"1.5", 1.5},
		{"2 large", 2},
		{"a pinch", 0},
		{"", 0},
		{"-3", -3},
		{"  400  ", 400},
	}
	for _, tc := range cases {
		if got := CoerceQty(tc.in); got != tc.want {
			t.Errorf("CoerceQty(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestMergeSumsCaseInsensitive(t *testing.T) {
	meta := &SourceMeta{MealName: "Porridge", Day: "monday", MealType: "breakfast"}

	items := Merge(nil, Line{Name: "Milk", Qty: "200", Unit: "ml"}, "jade", meta, now)
	items = Merge(items, Line{Name: "milk", Qty: "100", Unit: "ml"}, "jade", meta, now)

	if len(items) != 1 {
		t.Fatalf("Expected 1 merged item, got %d", len(items))
	}
	if items[0].Quantity != 300 {
		t.Errorf("Expected quantity 300, got %v", items[0].Quantity)
	}
	if items[0].Unit != "ml" {
		t.Errorf("Expected unit 'ml', got %q", items[0].Unit)
	}
}

func TestMergeCommutativeTotal(t *testing.T) {
	a := Merge(nil, Line{Name: "Milk", Qty: "200", Unit: "ml"}, "jade", nil, now)
	a = Merge(a, Line{Name: "milk", Qty: "100", Unit: "ml"}, "jade", nil, now)

	b := Merge(nil, Line{Name: "milk", Qty: "100", Unit: "ml"}, "jade", nil, now)
	b = Merge(b, Line{Name: "Milk", Qty: "200", Unit: "ml"}, "jade", nil, now)

	if a[0].Quantity != b[0].Quantity {
		t.Errorf("Merge order changed total: %v vs %v", a[0].Quantity, b[0].Quantity)
	}
}

func TestMergeKeepsDifferentUnitsSeparate(t *testing.T) {
	items := Merge(nil, Line{Name: "Milk", Qty: "200", Unit: "ml"}, "jade", nil, now)
	items = Merge(items, Line{Name: "Milk", Qty: "100", Unit: "g"}, "jade", nil, now)

	if len(items) != 2 {
		t.Fatalf("Expected unit-mismatched lines to stay separate, got %d items", len(items))
	}
}

func TestMergeEmptyUnitAdoptsIncoming(t *testing.T) {
	items := Merge(nil, Line{Name: "Eggs", Qty: "6"}, "harvey", nil, now)
	items = Merge(items, Line{Name: "eggs", Qty: "6", Unit: "pcs"}, "harvey", nil, now)

	if len(items) != 1 {
		t.Fatalf("Expected merge onto unitless entry, got %d items", len(items))
	}
	if items[0].Quantity != 12 || items[0].Unit != "pcs" {
		t.Errorf("Expected 12 pcs, got %v %s", items[0].Quantity, items[0].Unit)
	}
}

func TestMergeNonNumericCoercesToZero(t *testing.T) {
	items := Merge(nil, Line{Name: "Salt", Qty: "a pinch"}, "jade", nil, now)
	items = Merge(items, Line{Name: "salt", Qty: "a dash"}, "jade", nil, now)

	if len(items) != 1 || items[0].Quantity != 0 {
		t.Errorf("Expected single zero-quantity item, got %+v", items)
	}
}

func TestRemoveByProvenance(t *testing.T) {
	mondayBreakfast := &SourceMeta{MealName: "Porridge", Day: "monday", MealType: "breakfast"}
	tuesdayLunch := &SourceMeta{MealName: "Smoothie", Day: "tuesday", MealType: "lunch"}

	items := []Item{
		{ID: "1", Ingredient: "Oats", Source: "jade", Meta: mondayBreakfast},
		{ID: "2", Ingredient: "Milk", Source: "jade", Meta: mondayBreakfast},
		{ID: "3", Ingredient: "Milk", Source: "jade", Meta: tuesdayLunch},
		{ID: "4", Ingredient: "Milk", Source: "harvey", Meta: mondayBreakfast},
		{ID: "5", Ingredient: "Chocolate", Source: "jade"}, // manual, no provenance
	}

	got := RemoveByProvenance(items, "jade", *mondayBreakfast)

	if len(got) != 3 {
		t.Fatalf("Expected 3 surviving items, got %d", len(got))
	}
	for _, item := range got {
		if item.ID == "1" || item.ID == "2" {
			t.Errorf("Item %s should have been removed", item.ID)
		}
	}
}
