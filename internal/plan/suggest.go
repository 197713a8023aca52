package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"family-ops/internal/llm"
	"family-ops/internal/recipe"
	"family-ops/internal/shared"
)

// SuggestedMeal is one slot of an LLM-drafted week.
type SuggestedMeal struct {
	Day        string `json:"day"`
	Slot       string `json:"slot"`
	RecipeName string `json:"recipe_name"`
	RecipeID   string `json:"-"`
	Note       string `json:"note"`
}

// Suggestion is an advisory week draft. Nothing is written to any plan until
// the caller applies it slot by slot.
type Suggestion struct {
	Meals []SuggestedMeal  `json:"meals"`
	Notes string           `json:"notes"`
	Meta  shared.AgentMeta `json:"-"`
}

type recipeFinder interface {
	FindSimilar(ctx context.Context, query string, limit int) ([]recipe.Recipe, error)
}

// Suggester drafts weekly plans from the recipe catalog with an LLM. Recipes
// relevant to the request are retrieved by embedding similarity and offered
// as the only choices, so the draft never names a dish the catalog lacks.
type Suggester struct {
	catalog recipe.Catalog
	finder  recipeFinder
	textGen llm.TextGenerator
}

// NewSuggester creates a Suggester. finder may be nil, in which case the
// whole catalog is offered to the model.
func NewSuggester(catalog recipe.Catalog, finder recipeFinder, textGen llm.TextGenerator) *Suggester {
	return &Suggester{
		catalog: catalog,
		finder:  finder,
		textGen: textGen,
	}
}

// Suggest drafts a week of dinner (and optionally other slot) assignments for
// the given request. Suggested meals whose recipe name does not resolve
// against the catalog are dropped rather than surfaced.
func (s *Suggester) Suggest(ctx context.Context, userRequest string) (*Suggestion, error) {
	start := time.Now()

	recipes, err := s.candidates(ctx, userRequest)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, fmt.Errorf("no recipes available to draft a plan")
	}

	prompt := buildSuggestPrompt(userRequest, recipes)

	resp, err := s.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan draft: %w", err)
	}

	var suggestion Suggestion
	if err := json.Unmarshal([]byte(resp.Content), &suggestion); err != nil {
		return nil, fmt.Errorf("failed to parse plan draft %w. Response: %s", err, resp.Content)
	}

	lookup := make(map[string]recipe.Recipe, len(recipes))
	for _, r := range recipes {
		lookup[recipe.NameKey(r.Name)] = r
	}

	resolved := suggestion.Meals[:0]
	for _, meal := range suggestion.Meals {
		r, ok := lookup[recipe.NameKey(meal.RecipeName)]
		if !ok {
			continue
		}
		if !ValidDay(Day(meal.Day)) || !ValidSlot(MealSlot(meal.Slot)) {
			continue
		}
		meal.RecipeID = r.ID
		meal.RecipeName = r.Name
		resolved = append(resolved, meal)
	}
	suggestion.Meals = resolved

	suggestion.Meta = shared.AgentMeta{
		AgentName: "Suggester",
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	return &suggestion, nil
}

// Apply writes a suggestion into a member's week one slot at a time through
// the service, so every assignment carries its shopping contribution.
func (s *Suggester) Apply(ctx context.Context, svc *Service, weekID, member string, suggestion *Suggestion) (*WeekPlan, error) {
	var p *WeekPlan
	var err error
	for _, meal := range suggestion.Meals {
		p, err = svc.AddMealToDay(ctx, weekID, member, Day(meal.Day), MealSlot(meal.Slot), meal.RecipeID)
		if err != nil {
			return nil, fmt.Errorf("failed to apply %s %s: %w", meal.Day, meal.Slot, err)
		}
	}
	if p == nil {
		p, err = svc.Get(ctx, weekID)
	}
	return p, err
}

func (s *Suggester) candidates(ctx context.Context, userRequest string) ([]recipe.Recipe, error) {
	if s.finder != nil {
		// 15 gives the model enough variety without flooding the prompt.
		recipes, err := s.finder.FindSimilar(ctx, userRequest, 15)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve similar recipes: %w", err)
		}
		if len(recipes) > 0 {
			return recipes, nil
		}
	}
	return s.catalog.List(ctx)
}

func buildSuggestPrompt(userRequest string, recipes []recipe.Recipe) string {
	var contextBuilder strings.Builder
	for i, r := range recipes {
		names := make([]string, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			names = append(names, ing.Name)
		}
		fmt.Fprintf(&contextBuilder, "Recipe %d:\nName: %s\nIngredients: %s\nCalories: %.0f Protein: %.0fg\n\n",
			i+1, r.Name, strings.Join(names, ", "), r.Macros.Calories, r.Macros.Protein)
	}

	return fmt.Sprintf(`
You are an expert meal planner for a small household. Based on the user's
request and the provided list of recipes, draft a 7-day dinner plan.
Only use the recipes provided in the context below.

User Request: "%s"

Available Recipes:
%s

Instructions:
1. Suggest one dinner for each of the 7 days (monday to sunday).
2. It's okay to repeat a recipe if it fits the request or if there aren't enough unique recipes.
3. Day names must be lowercase full names; slot must be "dinner".
4. Return the result strictly as a JSON object with this structure:
{
  "meals": [
    {"day": "monday", "slot": "dinner", "recipe_name": "Recipe Name", "note": "Why this was chosen"},
    ...
  ],
  "notes": "Summary of the week"
}

Do not include any other text or formatting in your response.
`, userRequest, contextBuilder.String())
}
