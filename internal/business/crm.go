package business

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PipelineSummary is the dashboard view of the CRM.
type PipelineSummary struct {
	TotalContacts      int   `json:"total_contacts"`
	NewContactsWeek    int   `json:"new_contacts_week"`
	OpenDeals          int   `json:"open_deals"`
	PipelineValueCents int64 `json:"pipeline_value_cents"`
}

// CRMClient fetches contact and deal totals from the CRM's metrics endpoint.
type CRMClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewCRMClient creates a CRM client for the given base URL.
func NewCRMClient(baseURL, apiKey string) *CRMClient {
	return &CRMClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// FetchSummary retrieves the current pipeline summary.
func (c *CRMClient) FetchSummary(ctx context.Context) (*PipelineSummary, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/metrics/summary", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crm api error: status %d", resp.StatusCode)
	}

	var summary PipelineSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &summary, nil
}
