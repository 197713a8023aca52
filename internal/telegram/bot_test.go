package telegram

import (
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"family-ops/internal/config"
	"family-ops/internal/plan"
	"family-ops/internal/shopping"
)

// A bot without an LLM provider has no suggester or clipper; those messages
// must answer with a notice instead of dispatching.
func TestProcessMessageWithoutLLM(t *testing.T) {
	var sent []string
	b := &Bot{
		send: func(c tgbotapi.Chattable) (tgbotapi.Message, error) {
			if msg, ok := c.(tgbotapi.MessageConfig); ok {
				sent = append(sent, msg.Text)
			}
			return tgbotapi.Message{}, nil
		},
		cfg: &config.Config{},
	}

	msg := func(text string) *tgbotapi.Message {
		return &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: 1}}
	}

	t.Run("url without clipper", func(t *testing.T) {
		sent = nil
		b.processMessage(msg("https://example.com/stir-fry"))
		if len(sent) != 1 || !strings.Contains(sent[0], "not configured") {
			t.Fatalf("Expected a not-configured notice, got %v", sent)
		}
	})

	t.Run("free text without suggester", func(t *testing.T) {
		sent = nil
		b.processMessage(msg("quick vegetarian dinners"))
		if len(sent) != 1 || !strings.Contains(sent[0], "not configured") {
			t.Fatalf("Expected a not-configured notice, got %v", sent)
		}
	})
}

func TestFormatWeekMarkdown(t *testing.T) {
	now := time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC)
	p := plan.New("2026-w08", now, []string{"jade", "harvey"}, now)
	p.Member("jade").Meals[plan.Monday][plan.Dinner] = plan.MealRef{RecipeID: "r1", RecipeName: "Stir Fry"}
	p.Member("jade").Overrides[plan.Monday][plan.Dinner] = plan.Override{
		RecipeID:    "r1",
		RecipeName:  "Stir Fry",
		VariantName: "Stir Fry (monday - Modified)",
	}

	out := formatWeekMarkdown(p)

	if !strings.Contains(out, "📅 *Week 2026-w08* (planning)") {
		t.Error("Missing week header")
	}
	// Overridden slots show the variant name
	if !strings.Contains(out, "• monday dinner: Stir Fry (monday - Modified)") {
		t.Errorf("Missing overridden meal line, got:\n%s", out)
	}
	if !strings.Contains(out, "_Nothing planned yet_") {
		t.Error("Expected empty note for harvey")
	}
	// Members come out in stable order
	if strings.Index(out, "*harvey*") > strings.Index(out, "*jade*") {
		t.Error("Expected members sorted alphabetically")
	}
}

func TestFormatShoppingMarkdown(t *testing.T) {
	now := time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC)
	p := plan.New("2026-w08", now, []string{"jade"}, now)

	t.Run("empty list", func(t *testing.T) {
		out := formatShoppingMarkdown(p)
		if !strings.Contains(out, "_Empty_") {
			t.Error("Expected empty marker")
		}
	})

	t.Run("items with and without units", func(t *testing.T) {
		p.ShoppingList = []shopping.Item{
			{Ingredient: "Milk", Quantity: 300, Unit: "ml"},
			{Ingredient: "Onion", Quantity: 1},
			{Ingredient: "Salt"},
		}
		out := formatShoppingMarkdown(p)
		if !strings.Contains(out, "• Milk — 300 ml") {
			t.Errorf("Missing milk line, got:\n%s", out)
		}
		if !strings.Contains(out, "• Onion — 1") {
			t.Errorf("Missing onion line, got:\n%s", out)
		}
		if !strings.Contains(out, "• Salt\n") {
			t.Errorf("Expected bare salt line, got:\n%s", out)
		}
	})
}

func TestFormatSuggestionMarkdown(t *testing.T) {
	s := &plan.Suggestion{
		Meals: []plan.SuggestedMeal{
			{Day: "monday", Slot: "dinner", RecipeName: "Tacos", Note: "Quick"},
			{Day: "tuesday", Slot: "dinner", RecipeName: "Salad"},
		},
		Notes: "Light week",
	}

	out := formatSuggestionMarkdown(s)

	if !strings.Contains(out, "*monday* dinner: Tacos") {
		t.Error("Missing monday suggestion")
	}
	if !strings.Contains(out, "_Quick_") {
		t.Error("Missing note")
	}
	if !strings.Contains(out, "Light week") {
		t.Error("Missing summary notes")
	}
}
