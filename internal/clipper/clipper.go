// Package clipper imports recipes from the web: fetch a URL, strip the page
// down to text, have the LLM extract the structured recipe, and save it to
// the catalog.
package clipper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"family-ops/internal/llm"
	"family-ops/internal/recipe"

	"github.com/PuerkitoBio/goquery"
)

// indexer makes a saved recipe searchable. Optional.
type indexer interface {
	Index(ctx context.Context, rec recipe.Recipe) error
}

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	catalog    recipe.Catalog
	textGen    llm.TextGenerator
	search     indexer
	httpClient *http.Client
}

// extractedRecipe is the shape the LLM returns.
type extractedRecipe struct {
	Name        string                `json:"name"`
	Category    string                `json:"category"`
	Ingredients []extractedIngredient `json:"ingredients"`
	Steps       []string              `json:"steps"`
	Macros      recipe.Macros         `json:"macros"`
}

type extractedIngredient struct {
	Name string `json:"name"`
	Qty  string `json:"qty"`
	Unit string `json:"unit"`
}

// NewClipper creates a new Clipper. search may be nil when embedding search
// is not configured.
func NewClipper(catalog recipe.Catalog, textGen llm.TextGenerator, search indexer) *Clipper {
	return &Clipper{
		catalog:    catalog,
		textGen:    textGen,
		search:     search,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ClipURL fetches the URL, extracts the recipe with the LLM, and saves it to
// the catalog. A page whose recipe name collides with an existing catalog
// entry surfaces recipe.ErrDuplicateName untouched.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*recipe.Recipe, error) {
	content, err := c.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf(`
You are a recipe extraction expert. Extract the recipe details from the following page content.
Return the result strictly as a JSON object with this structure:
{
  "name": "Recipe Name",
  "category": "e.g. dinner",
  "ingredients": [{"name": "Chicken breast", "qty": "500", "unit": "g"}, ...],
  "steps": ["Step 1 description", "Step 2 description", ...],
  "macros": {"calories": 0, "protein": 0, "fats": 0, "carbs": 0}
}
Quantities must be plain numbers as strings; leave unit empty for counted items.
Use zero macros when the page does not state them.

Page Content:
%s
`, content)

	resp, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}

	var extracted extractedRecipe
	if err := json.Unmarshal([]byte(resp.Content), &extracted); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, resp.Content)
	}

	params := recipe.CreateParams{
		Name:         extracted.Name,
		Category:     extracted.Category,
		Macros:       extracted.Macros,
		Instructions: strings.Join(extracted.Steps, "\n"),
		Notes:        fmt.Sprintf("Imported from %s", url),
	}
	for _, ing := range extracted.Ingredients {
		params.Ingredients = append(params.Ingredients, recipe.IngredientInput{
			Name: ing.Name,
			Qty:  ing.Qty,
			Unit: ing.Unit,
		})
	}

	rec, err := c.catalog.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	if c.search != nil {
		if err := c.search.Index(ctx, *rec); err != nil {
			// The recipe is saved; a failed index only degrades search.
			return rec, fmt.Errorf("recipe saved but indexing failed: %w", err)
		}
	}

	return rec, nil
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}
