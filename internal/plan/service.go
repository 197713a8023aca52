package plan

import (
	"context"
	"fmt"
	"log"
	"time"

	"family-ops/internal/recipe"
	"family-ops/internal/shopping"
	"family-ops/internal/week"
)

// Service is the orchestration layer over the plan store and the recipe
// catalog. Each operation loads the week, composes the complete new state
// (assignments, overrides and shopping list together), and saves it with a
// single store write, so a failure can never strand an orphaned shopping item.
type Service struct {
	store   Store
	catalog recipe.Catalog
	members []string
	now     func() time.Time
}

// NewService creates a Service tracking the given household members.
func NewService(store Store, catalog recipe.Catalog, members []string) *Service {
	return &Service{
		store:   store,
		catalog: catalog,
		members: members,
		now:     time.Now,
	}
}

// CurrentWeek returns the plan for the week containing today, creating an
// empty one on first access. Calling it twice in the same ISO week yields the
// same record.
func (s *Service) CurrentWeek(ctx context.Context) (*WeekPlan, error) {
	return s.getOrCreate(ctx, s.now())
}

// NextWeek returns the plan for the week after the current one, creating an
// empty one on first access.
func (s *Service) NextWeek(ctx context.Context) (*WeekPlan, error) {
	return s.getOrCreate(ctx, week.NextMonday(s.now()))
}

// Get returns the plan for weekID. Unknown week ids return ErrNotFound.
func (s *Service) Get(ctx context.Context, weekID string) (*WeekPlan, error) {
	return s.load(ctx, weekID)
}

// ListActive returns every plan that is not archived, newest week first.
// Archived weeks are excluded from current/next style listings.
func (s *Service) ListActive(ctx context.Context) ([]WeekPlan, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	active := all[:0]
	for _, p := range all {
		if p.Status != StatusArchived {
			active = append(active, p)
		}
	}
	return active, nil
}

// ListByStatus returns every plan in the given status, newest week first.
func (s *Service) ListByStatus(ctx context.Context, status Status) ([]WeekPlan, error) {
	return s.store.ListByStatus(ctx, status)
}

// AddMealToDay assigns a catalog recipe to a member's day/slot and merges its
// ingredients into the week's shopping list. An existing assignment for the
// slot is replaced, along with its shopping contribution.
func (s *Service) AddMealToDay(ctx context.Context, weekID, member string, day Day, slot MealSlot, recipeID string) (*WeekPlan, error) {
	p, mp, err := s.loadForPlanning(ctx, weekID, member, day, slot)
	if err != nil {
		return nil, err
	}

	rec, err := s.catalog.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("recipe %s: %w", recipeID, recipe.ErrNotFound)
	}

	// Replacing a slot removes the previous meal's shopping contribution
	// first, so the list never carries lines for a meal no longer planned.
	s.clearSlot(p, mp, member, day, slot)

	now := s.now()
	mp.Meals[day][slot] = MealRef{RecipeID: rec.ID, RecipeName: rec.Name}

	meta := &shopping.SourceMeta{MealName: rec.Name, Day: string(day), MealType: string(slot)}
	p.ShoppingList = shopping.MergeAll(p.ShoppingList, ingredientLines(rec.Ingredients), member, meta, now)

	p.UpdatedAt = now
	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RemoveMealFromDay clears a member's day/slot assignment, drops any override
// for that slot, and removes the shopping items traceable to exactly that
// meal instance. An empty slot returns ErrSlotEmpty.
func (s *Service) RemoveMealFromDay(ctx context.Context, weekID, member string, day Day, slot MealSlot) (*WeekPlan, error) {
	p, mp, err := s.loadForPlanning(ctx, weekID, member, day, slot)
	if err != nil {
		return nil, err
	}

	if _, ok := mp.Meals[day][slot]; !ok {
		return nil, fmt.Errorf("%s %s for %s in %s: %w", day, slot, member, weekID, ErrSlotEmpty)
	}

	s.clearSlot(p, mp, member, day, slot)

	p.UpdatedAt = s.now()
	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// OverrideMealForDay records a day-specific variant of the slot's assigned
// recipe. When ingredient overrides are supplied, the shopping list swaps the
// original recipe's contribution for the variant's, tagged under the variant
// name, so the list reflects only the modified quantities.
func (s *Service) OverrideMealForDay(ctx context.Context, weekID, member string, day Day, slot MealSlot, ingredients []recipe.IngredientInput, macros *recipe.Macros) (*WeekPlan, error) {
	p, mp, err := s.loadForPlanning(ctx, weekID, member, day, slot)
	if err != nil {
		return nil, err
	}

	ref, ok := mp.Meals[day][slot]
	if !ok {
		return nil, fmt.Errorf("%s %s for %s in %s: %w", day, slot, member, weekID, ErrSlotEmpty)
	}

	now := s.now()
	variantName := fmt.Sprintf("%s (%s - Modified)", ref.RecipeName, day)

	if prev, ok := mp.Overrides[day][slot]; ok && prev.VariantName != "" {
		p.ShoppingList = shopping.RemoveByProvenance(p.ShoppingList, member,
			shopping.SourceMeta{MealName: prev.VariantName, Day: string(day), MealType: string(slot)})
	}

	mp.Overrides[day][slot] = Override{
		RecipeID:    ref.RecipeID,
		RecipeName:  ref.RecipeName,
		VariantName: variantName,
		Ingredients: ingredients,
		Macros:      macros,
	}

	if len(ingredients) > 0 {
		p.ShoppingList = shopping.RemoveByProvenance(p.ShoppingList, member,
			shopping.SourceMeta{MealName: ref.RecipeName, Day: string(day), MealType: string(slot)})

		meta := &shopping.SourceMeta{MealName: variantName, Day: string(day), MealType: string(slot)}
		p.ShoppingList = shopping.MergeAll(p.ShoppingList, inputLines(ingredients), member, meta, now)
	}

	p.UpdatedAt = now
	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DayMacros sums the macros of every recipe assigned to the member's slots on
// the given day, then adds any numeric macro overrides. Slots whose recipe no
// longer resolves are skipped with a log line. A day with nothing assigned
// returns zero totals.
func (s *Service) DayMacros(ctx context.Context, weekID, member string, day Day) (recipe.Macros, error) {
	var total recipe.Macros

	p, err := s.load(ctx, weekID)
	if err != nil {
		return total, err
	}
	mp := p.Member(member)
	if mp == nil {
		return total, fmt.Errorf("member %q: %w", member, ErrUnknownMember)
	}
	if !ValidDay(day) {
		return total, fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}

	for _, slot := range Slots {
		ref, ok := mp.Meals[day][slot]
		if !ok {
			continue
		}
		rec, err := s.catalog.GetByID(ctx, ref.RecipeID)
		if err != nil {
			return total, err
		}
		if rec == nil {
			log.Printf("Skipping %s %s for %s: recipe %q no longer resolves", day, slot, member, ref.RecipeName)
			continue
		}
		total.Calories += rec.Macros.Calories
		total.Protein += rec.Macros.Protein
		total.Fats += rec.Macros.Fats
		total.Carbs += rec.Macros.Carbs
	}

	for _, slot := range Slots {
		ov, ok := mp.Overrides[day][slot]
		if !ok || ov.Macros == nil {
			continue
		}
		total.Calories += ov.Macros.Calories
		total.Protein += ov.Macros.Protein
		total.Fats += ov.Macros.Fats
		total.Carbs += ov.Macros.Carbs
	}

	return total, nil
}

// LockWeek moves a plan from planning to locked. There is no way back.
func (s *Service) LockWeek(ctx context.Context, weekID string) (*WeekPlan, error) {
	return s.transition(ctx, weekID, (*WeekPlan).Lock)
}

// ArchiveWeek moves a plan from locked to archived.
func (s *Service) ArchiveWeek(ctx context.Context, weekID string) (*WeekPlan, error) {
	return s.transition(ctx, weekID, (*WeekPlan).Archive)
}

// ItemParams describes a manually added shopping item.
type ItemParams struct {
	Ingredient string `json:"ingredient"`
	Qty        string `json:"qty"`
	Unit       string `json:"unit,omitempty"`
	Source     string `json:"source"`
}

// AddShoppingItem merges a manual item into the week's list. Shopping edits
// stay open on locked weeks (that is when the shopping happens) and close
// once the week is archived.
func (s *Service) AddShoppingItem(ctx context.Context, weekID string, params ItemParams) (*WeekPlan, error) {
	p, err := s.loadForShopping(ctx, weekID)
	if err != nil {
		return nil, err
	}
	if params.Ingredient == "" {
		return nil, fmt.Errorf("ingredient name is required")
	}
	if params.Source != "" && p.Member(params.Source) == nil {
		return nil, fmt.Errorf("member %q: %w", params.Source, ErrUnknownMember)
	}

	now := s.now()
	p.ShoppingList = shopping.Merge(p.ShoppingList,
		shopping.Line{Name: params.Ingredient, Qty: params.Qty, Unit: params.Unit},
		params.Source, nil, now)

	p.UpdatedAt = now
	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateShoppingItem replaces the quantity/unit of a single item.
func (s *Service) UpdateShoppingItem(ctx context.Context, weekID, itemID string, quantity float64, unit string) (*WeekPlan, error) {
	p, err := s.loadForShopping(ctx, weekID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range p.ShoppingList {
		if p.ShoppingList[i].ID == itemID {
			p.ShoppingList[i].Quantity = quantity
			p.ShoppingList[i].Unit = unit
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("item %s in %s: %w", itemID, weekID, ErrItemNotFound)
	}

	p.UpdatedAt = s.now()
	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RemoveShoppingItem deletes a single item from the week's list.
func (s *Service) RemoveShoppingItem(ctx context.Context, weekID, itemID string) (*WeekPlan, error) {
	p, err := s.loadForShopping(ctx, weekID)
	if err != nil {
		return nil, err
	}

	items := p.ShoppingList[:0]
	found := false
	for _, item := range p.ShoppingList {
		if item.ID == itemID {
			found = true
			continue
		}
		items = append(items, item)
	}
	if !found {
		return nil, fmt.Errorf("item %s in %s: %w", itemID, weekID, ErrItemNotFound)
	}
	p.ShoppingList = items

	p.UpdatedAt = s.now()
	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ReplaceShoppingList swaps the entire week list in one write.
func (s *Service) ReplaceShoppingList(ctx context.Context, weekID string, items []shopping.Item) (*WeekPlan, error) {
	p, err := s.loadForShopping(ctx, weekID)
	if err != nil {
		return nil, err
	}

	p.ShoppingList = items
	p.UpdatedAt = s.now()
	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) getOrCreate(ctx context.Context, t time.Time) (*WeekPlan, error) {
	weekID := week.ID(t)
	p, err := s.store.Get(ctx, weekID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	p = New(weekID, week.MondayOf(t), s.members, s.now())
	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) load(ctx context.Context, weekID string) (*WeekPlan, error) {
	p, err := s.store.Get(ctx, weekID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("week %s: %w", weekID, ErrNotFound)
	}
	return p, nil
}

// loadForPlanning loads the week and validates everything a meal mutation
// needs: planning status, known member, valid day and slot.
func (s *Service) loadForPlanning(ctx context.Context, weekID, member string, day Day, slot MealSlot) (*WeekPlan, *MemberPlan, error) {
	p, err := s.load(ctx, weekID)
	if err != nil {
		return nil, nil, err
	}
	if !p.CanPlan() {
		return nil, nil, fmt.Errorf("week %s is %s: %w", weekID, p.Status, ErrWeekLocked)
	}
	mp := p.Member(member)
	if mp == nil {
		return nil, nil, fmt.Errorf("member %q: %w", member, ErrUnknownMember)
	}
	if !ValidDay(day) {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}
	if !ValidSlot(slot) {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	return p, mp, nil
}

func (s *Service) loadForShopping(ctx context.Context, weekID string) (*WeekPlan, error) {
	p, err := s.load(ctx, weekID)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusArchived {
		return nil, fmt.Errorf("week %s is archived: %w", weekID, ErrWeekLocked)
	}
	return p, nil
}

// clearSlot removes the slot's assignment plus its override and every
// shopping item traceable to either, mutating p in place without saving.
func (s *Service) clearSlot(p *WeekPlan, mp *MemberPlan, member string, day Day, slot MealSlot) {
	ref, ok := mp.Meals[day][slot]
	if !ok {
		return
	}

	p.ShoppingList = shopping.RemoveByProvenance(p.ShoppingList, member,
		shopping.SourceMeta{MealName: ref.RecipeName, Day: string(day), MealType: string(slot)})

	if ov, ok := mp.Overrides[day][slot]; ok {
		if ov.VariantName != "" {
			p.ShoppingList = shopping.RemoveByProvenance(p.ShoppingList, member,
				shopping.SourceMeta{MealName: ov.VariantName, Day: string(day), MealType: string(slot)})
		}
		delete(mp.Overrides[day], slot)
	}

	delete(mp.Meals[day], slot)
}

func (s *Service) transition(ctx context.Context, weekID string, step func(*WeekPlan, time.Time) error) (*WeekPlan, error) {
	p, err := s.load(ctx, weekID)
	if err != nil {
		return nil, err
	}
	if err := step(p, s.now()); err != nil {
		return nil, fmt.Errorf("week %s: %w", weekID, err)
	}
	if err := s.store.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func ingredientLines(ingredients []recipe.Ingredient) []shopping.Line {
	lines := make([]shopping.Line, 0, len(ingredients))
	for _, ing := range ingredients {
		lines = append(lines, shopping.Line{Name: ing.Name, Qty: ing.Qty, Unit: ing.Unit})
	}
	return lines
}

func inputLines(inputs []recipe.IngredientInput) []shopping.Line {
	lines := make([]shopping.Line, 0, len(inputs))
	for _, in := range inputs {
		lines = append(lines, shopping.Line{Name: in.Name, Qty: in.Qty, Unit: in.Unit})
	}
	return lines
}
