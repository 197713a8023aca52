// Package shopping holds the week-scoped shopping list items and the
// ingredient reconciliation rules: duplicate ingredients merge by summing
// quantities, and auto-derived items carry provenance so removing a meal
// removes exactly its own contribution.
package shopping

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SourceMeta traces an auto-derived item back to the meal instance that
// produced it.
type SourceMeta struct {
	MealName string `json:"meal_name"`
	Day      string `json:"day"`
	MealType string `json:"meal_type"`
}

// Item is a single shopping list line, scoped to one week plan.
type Item struct {
	ID            string      `json:"id"`
	Ingredient    string      `json:"ingredient"`
	Quantity      float64     `json:"quantity"`
	Unit          string      `json:"unit,omitempty"`
	Source        string      `json:"source"`
	Meta          *SourceMeta `json:"source_metadata,omitempty"`
	AddedAt       time.Time   `json:"added_at"`
	WoolworthsURL string      `json:"woolworths_url,omitempty"`
}

// Line is an incoming ingredient line to be merged into a list.
type Line struct {
	Name string
	Qty  string
	Unit string
}

// CoerceQty extracts the leading numeric portion of a quantity string.
// Non-numeric input coerces to 0, matching how free-text quantities have
// always been treated here.
func CoerceQty(raw string) float64 {
	raw = strings.TrimSpace(raw)
	end := 0
	for end < len(raw) {
		c := raw[end]
		if (c >= '0' && c <= '9') || c == '.' || (end == 0 && c == '-') {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(raw[:end], 64)
	if err != nil {
		return 0
	}
	return f
}

// unitsCompatible reports whether two unit labels may merge. An empty unit
// merges with anything; otherwise labels must match case-insensitively.
// Quantities in different units stay as separate line items.
func unitsCompatible(a, b string) bool {
	if a == "" || b == "" {
		return true
	}
	return strings.EqualFold(a, b)
}

// Merge folds a single ingredient line into items. A case-insensitive name
// match with a compatible unit accumulates the quantity onto the existing
// entry (an empty unit adopts the incoming one); otherwise a new item is
// appended carrying full provenance.
func Merge(items []Item, line Line, source string, meta *SourceMeta, now time.Time) []Item {
	qty := CoerceQty(line.Qty)

	for i := range items {
		if !strings.EqualFold(items[i].Ingredient, line.Name) {
			continue
		}
		if !unitsCompatible(items[i].Unit, line.Unit) {
			continue
		}
		items[i].Quantity += qty
		if items[i].Unit == "" {
			items[i].Unit = line.Unit
		}
		return items
	}

	return append(items, Item{
		ID:         uuid.NewString(),
		Ingredient: line.Name,
		Quantity:   qty,
		Unit:       line.Unit,
		Source:     source,
		Meta:       meta,
		AddedAt:    now,
	})
}

// MergeAll folds every line into items in order.
func MergeAll(items []Item, lines []Line, source string, meta *SourceMeta, now time.Time) []Item {
	for _, line := range lines {
		items = Merge(items, line, source, meta, now)
	}
	return items
}

// RemoveByProvenance drops items whose source and metadata exactly match the
// given meal instance. Manually added items and items from other meals are
// untouched, even when they share an ingredient name.
func RemoveByProvenance(items []Item, source string, meta SourceMeta) []Item {
	out := items[:0]
	for _, item := range items {
		if item.Source == source && item.Meta != nil && *item.Meta == meta {
			continue
		}
		out = append(out, item)
	}
	return out
}
