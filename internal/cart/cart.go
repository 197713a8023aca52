// Package cart turns a week's shopping list into a grocery cart by searching
// the Woolworths store for each item. Product lookups scrape the public
// search page, so outbound calls are rate limited to stay polite.
package cart

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"family-ops/internal/shopping"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// Product is a single store product matched to a shopping item.
type Product struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	URL        string `json:"url"`
}

// ResultItem pairs a shopping-list ingredient with its best product match.
type ResultItem struct {
	Ingredient string   `json:"ingredient"`
	Quantity   float64  `json:"quantity"`
	Unit       string   `json:"unit,omitempty"`
	Product    *Product `json:"product,omitempty"`
	Found      bool     `json:"found"`
}

// Result is the built cart: every list item with its match, and the total
// for the items that matched.
type Result struct {
	Success    bool         `json:"success"`
	Items      []ResultItem `json:"items"`
	TotalCents int64        `json:"total"`
}

// Builder searches the store and assembles carts.
type Builder struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewBuilder creates a Builder against the given store base URL.
func NewBuilder(baseURL string) *Builder {
	return &Builder{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		// One search every couple of seconds keeps us under the store's radar.
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 3),
	}
}

// Build matches every shopping item to a product. Items with no match are
// kept in the result with Found=false; Success is true when at least one
// item matched.
func (b *Builder) Build(ctx context.Context, items []shopping.Item) (*Result, error) {
	result := &Result{Items: make([]ResultItem, 0, len(items))}

	for _, item := range items {
		ri := ResultItem{
			Ingredient: item.Ingredient,
			Quantity:   item.Quantity,
			Unit:       item.Unit,
		}

		product, err := b.searchProduct(ctx, item.Ingredient)
		if err != nil {
			return nil, fmt.Errorf("failed to search for %q: %w", item.Ingredient, err)
		}
		if product != nil {
			ri.Product = product
			ri.Found = true
			result.TotalCents += product.PriceCents
			result.Success = true
		}

		result.Items = append(result.Items, ri)
	}

	return result, nil
}

// searchProduct returns the first product tile on the search results page,
// or nil when the search comes back empty.
func (b *Builder) searchProduct(ctx context.Context, term string) (*Product, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/shop/search/products?searchTerm=%s", b.baseURL, url.QueryEscape(term))
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "family-ops/1.0")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("store search error: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}

	tile := doc.Find(".product-tile").First()
	if tile.Length() == 0 {
		return nil, nil
	}

	product := &Product{
		Name:       strings.TrimSpace(tile.Find(".product-title").Text()),
		PriceCents: parsePriceCents(tile.Find(".product-price").Text()),
	}
	if href, ok := tile.Find("a").First().Attr("href"); ok {
		product.URL = b.baseURL + href
	}
	if product.Name == "" {
		return nil, nil
	}
	return product, nil
}

// parsePriceCents turns a display price like "$4.50" into cents. Unparseable
// prices come back as 0 rather than failing the whole cart.
func parsePriceCents(raw string) int64 {
	cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return int64(value*100 + 0.5)
}
