// Package plan owns the weekly meal plans: one record per ISO week holding
// per-member day/slot assignments, day overrides, and the week's shopping
// list. Every mutation goes through the Service, which composes the full new
// week state and persists it with a single store write.
package plan

import (
	"errors"
	"time"

	"family-ops/internal/recipe"
	"family-ops/internal/shopping"
)

var (
	// ErrNotFound is returned when a week id has no plan.
	ErrNotFound = errors.New("week plan not found")
	// ErrWeekLocked is returned when a planning mutation hits a locked or
	// archived week.
	ErrWeekLocked = errors.New("week is locked")
	// ErrSlotEmpty is returned when an operation needs an assigned meal
	// and the slot has none.
	ErrSlotEmpty = errors.New("no meal assigned to slot")
	// ErrUnknownMember is returned for a member name the plan does not track.
	ErrUnknownMember = errors.New("unknown household member")
	// ErrInvalidTransition is returned for a status change that is not
	// planning -> locked -> archived.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrItemNotFound is returned when a shopping item id is not in the list.
	ErrItemNotFound = errors.New("shopping item not found")
	// ErrInvalidDay is returned for a day name outside the seven fixed days.
	ErrInvalidDay = errors.New("invalid day")
	// ErrInvalidSlot is returned for an unknown meal slot name.
	ErrInvalidSlot = errors.New("invalid meal slot")
)

// Status is the lifecycle state of a week plan. Transitions only move
// forward: planning -> locked -> archived.
type Status string

const (
	StatusPlanning Status = "planning"
	StatusLocked   Status = "locked"
	StatusArchived Status = "archived"
)

// Day is a lowercase weekday name. Every plan carries all seven days.
type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
	Sunday    Day = "sunday"
)

// Days lists the week's days in order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ValidDay reports whether d is one of the seven fixed days.
func ValidDay(d Day) bool {
	for _, day := range Days {
		if day == d {
			return true
		}
	}
	return false
}

// MealSlot is one of the five daily meal slots.
type MealSlot string

const (
	Breakfast MealSlot = "breakfast"
	Lunch     MealSlot = "lunch"
	Snack     MealSlot = "snack"
	Dinner    MealSlot = "dinner"
	Dessert   MealSlot = "dessert"
)

// Slots lists the meal slots in day order.
var Slots = []MealSlot{Breakfast, Lunch, Snack, Dinner, Dessert}

// ValidSlot reports whether s is a known meal slot.
func ValidSlot(s MealSlot) bool {
	for _, slot := range Slots {
		if slot == s {
			return true
		}
	}
	return false
}

// MealRef points a slot at a catalog recipe. The id is the foreign key;
// the name is carried for display and provenance only.
type MealRef struct {
	RecipeID   string `json:"recipe_id"`
	RecipeName string `json:"recipe_name"`
}

// Override is a day-specific variant of an assigned recipe. It never alters
// the base recipe definition.
type Override struct {
	RecipeID    string                   `json:"recipe_id"`
	RecipeName  string                   `json:"recipe_name"`
	VariantName string                   `json:"variant_name,omitempty"`
	Ingredients []recipe.IngredientInput `json:"ingredient_overrides,omitempty"`
	Macros      *recipe.Macros           `json:"macro_overrides,omitempty"`
}

// MemberPlan holds one household member's assignments for the week.
// All seven days are present even when empty.
type MemberPlan struct {
	Meals     map[Day]map[MealSlot]MealRef  `json:"meals"`
	Overrides map[Day]map[MealSlot]Override `json:"day_overrides"`
}

func newMemberPlan() *MemberPlan {
	mp := &MemberPlan{
		Meals:     make(map[Day]map[MealSlot]MealRef, len(Days)),
		Overrides: make(map[Day]map[MealSlot]Override, len(Days)),
	}
	for _, d := range Days {
		mp.Meals[d] = make(map[MealSlot]MealRef)
		mp.Overrides[d] = make(map[MealSlot]Override)
	}
	return mp
}

// WeekPlan is the complete meal-and-shopping record for one Monday-to-Sunday
// span, identified by its ISO week id.
type WeekPlan struct {
	WeekID       string                 `json:"week_id"`
	WeekStart    time.Time              `json:"week_start"`
	WeekEnd      time.Time              `json:"week_end"`
	Status       Status                 `json:"status"`
	Members      map[string]*MemberPlan `json:"members"`
	ShoppingList []shopping.Item        `json:"shopping_list"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	LockedAt     *time.Time             `json:"locked_at,omitempty"`
	ArchivedAt   *time.Time             `json:"archived_at,omitempty"`
}

// New creates an empty plan for the week starting at monday, with fully
// initialized day structures for every member.
func New(weekID string, monday time.Time, members []string, now time.Time) *WeekPlan {
	p := &WeekPlan{
		WeekID:    weekID,
		WeekStart: monday,
		WeekEnd:   monday.AddDate(0, 0, 6),
		Status:    StatusPlanning,
		Members:   make(map[string]*MemberPlan, len(members)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, m := range members {
		p.Members[m] = newMemberPlan()
	}
	return p
}

// Member returns the named member's plan, or nil.
func (p *WeekPlan) Member(name string) *MemberPlan {
	return p.Members[name]
}

// CanPlan reports whether meal assignments may still change.
func (p *WeekPlan) CanPlan() bool {
	return p.Status == StatusPlanning
}

// Lock moves the plan from planning to locked.
func (p *WeekPlan) Lock(now time.Time) error {
	if p.Status != StatusPlanning {
		return ErrInvalidTransition
	}
	p.Status = StatusLocked
	p.LockedAt = &now
	p.UpdatedAt = now
	return nil
}

// Archive moves the plan from locked to archived.
func (p *WeekPlan) Archive(now time.Time) error {
	if p.Status != StatusLocked {
		return ErrInvalidTransition
	}
	p.Status = StatusArchived
	p.ArchivedAt = &now
	p.UpdatedAt = now
	return nil
}
