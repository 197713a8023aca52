package cart

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"family-ops/internal/shopping"
)

func newTestBuilder(serverURL string) *Builder {
	b := NewBuilder(serverURL)
	b.limiter.SetLimit(1000) // no throttling in tests
	return b
}

func productPage(name, price, href string) string {
	return fmt.Sprintf(`
	<html><body>
		<div class="product-tile">
			<a href="%s"><span class="product-title">%s</span></a>
			<span class="product-price">%s</span>
		</div>
		<div class="product-tile">
			<a href="/shop/product/other"><span class="product-title">Other brand</span></a>
			<span class="product-price">$9.99</span>
		</div>
	</body></html>`, href, name, price)
}

func TestBuild(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/shop/search/products" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		switch r.URL.Query().Get("searchTerm") {
		case "Milk":
			fmt.Fprint(w, productPage("Full Cream Milk 2L", "$3.10", "/shop/product/milk-2l"))
		case "Dragon fruit":
			fmt.Fprint(w, `<html><body><p>No results</p></body></html>`)
		default:
			fmt.Fprint(w, productPage("GF Tortillas 8pk", "$4.50", "/shop/product/tortillas"))
		}
	}))
	defer server.Close()

	builder := newTestBuilder(server.URL)
	items := []shopping.Item{
		{Ingredient: "Milk", Quantity: 2, Unit: "l"},
		{Ingredient: "GF tortillas", Quantity: 8},
		{Ingredient: "Dragon fruit", Quantity: 1},
	}

	result, err := builder.Build(context.Background(), items)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if !result.Success {
		t.Error("Expected success with matched items")
	}
	if len(result.Items) != 3 {
		t.Fatalf("Expected 3 result items, got %d", len(result.Items))
	}

	milk := result.Items[0]
	if !milk.Found || milk.Product == nil {
		t.Fatalf("Expected milk to match, got %+v", milk)
	}
	if milk.Product.Name != "Full Cream Milk 2L" {
		t.Errorf("Expected first tile's product, got %q", milk.Product.Name)
	}
	if milk.Product.PriceCents != 310 {
		t.Errorf("Expected 310 cents, got %d", milk.Product.PriceCents)
	}
	if milk.Product.URL != server.URL+"/shop/product/milk-2l" {
		t.Errorf("Unexpected product URL %q", milk.Product.URL)
	}

	if result.Items[2].Found {
		t.Error("Expected no match for dragon fruit")
	}
	if result.TotalCents != 310+450 {
		t.Errorf("Expected total 760, got %d", result.TotalCents)
	}
}

func TestBuildEmptyList(t *testing.T) {
	builder := newTestBuilder("http://unused")
	result, err := builder.Build(context.Background(), nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if result.Success {
		t.Error("Expected no success with an empty list")
	}
	if result.TotalCents != 0 {
		t.Errorf("Expected zero total, got %d", result.TotalCents)
	}
}

func TestBuildServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	builder := newTestBuilder(server.URL)
	_, err := builder.Build(context.Background(), []shopping.Item{{Ingredient: "Milk"}})
	if err == nil {
		t.Fatal("Expected an error for failing store, got nil")
	}
}

func TestParsePriceCents(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{"$4.50", 450},
		{" $12.00 ", 1200},
		{"3.1", 310},
		{"", 0},
		{"Rollback!", 0},
	}
	for _, c := range cases {
		if got := parsePriceCents(c.raw); got != c.want {
			t.Errorf("parsePriceCents(%q) = %d, want %d", c.raw, got, c.want)
		}
	}
}
