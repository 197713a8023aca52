// Package business holds thin read-only clients for the outside-world
// dashboards: payment revenue and CRM pipeline summaries. No state is kept
// locally; every call proxies the upstream API.
package business

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const stripeBaseURL = "https://api.stripe.com"

// RevenueSummary is the dashboard view of the payment account.
type RevenueSummary struct {
	Currency         string  `json:"currency"`
	AvailableCents   int64   `json:"available_cents"`
	PendingCents     int64   `json:"pending_cents"`
	RecentCharges    int     `json:"recent_charges"`
	RecentGrossCents int64   `json:"recent_gross_cents"`
	SuccessRate      float64 `json:"success_rate"`
}

// RevenueClient fetches account balance and recent charges from a
// Stripe-style payments API.
type RevenueClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewRevenueClient creates a revenue client. An empty baseURL uses the
// public Stripe endpoint.
func NewRevenueClient(baseURL, apiKey string) *RevenueClient {
	if baseURL == "" {
		baseURL = stripeBaseURL
	}
	return &RevenueClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

type balanceResponse struct {
	Available []balanceAmount `json:"available"`
	Pending   []balanceAmount `json:"pending"`
}

type balanceAmount struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type chargesResponse struct {
	Data []charge `json:"data"`
}

type charge struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// FetchSummary combines the account balance and the last batch of charges
// into a single dashboard summary.
func (c *RevenueClient) FetchSummary(ctx context.Context) (*RevenueSummary, error) {
	var balance balanceResponse
	if err := c.get(ctx, "/v1/balance", nil, &balance); err != nil {
		return nil, fmt.Errorf("failed to fetch balance: %w", err)
	}

	var charges chargesResponse
	if err := c.get(ctx, "/v1/charges", url.Values{"limit": {"100"}}, &charges); err != nil {
		return nil, fmt.Errorf("failed to fetch charges: %w", err)
	}

	summary := &RevenueSummary{}
	for _, b := range balance.Available {
		summary.AvailableCents += b.Amount
		summary.Currency = b.Currency
	}
	for _, b := range balance.Pending {
		summary.PendingCents += b.Amount
	}

	succeeded := 0
	for _, ch := range charges.Data {
		summary.RecentCharges++
		if ch.Status == "succeeded" {
			succeeded++
			summary.RecentGrossCents += ch.Amount
		}
	}
	if summary.RecentCharges > 0 {
		summary.SuccessRate = float64(succeeded) / float64(summary.RecentCharges)
	}

	return summary, nil
}

func (c *RevenueClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("payments api error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
