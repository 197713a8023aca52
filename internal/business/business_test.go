package business

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRevenueFetchSummary(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer sk_test" {
				t.Errorf("Expected bearer auth, got %q", r.Header.Get("Authorization"))
			}
			switch r.URL.Path {
			case "/v1/balance":
				fmt.Fprintln(w, `{
					"available": [{"amount": 125000, "currency": "aud"}],
					"pending": [{"amount": 4300, "currency": "aud"}]
				}`)
			case "/v1/charges":
				fmt.Fprintln(w, `{"data": [
					{"amount": 5000, "currency": "aud", "status": "succeeded"},
					{"amount": 7500, "currency": "aud", "status": "succeeded"},
					{"amount": 2000, "currency": "aud", "status": "failed"}
				]}`)
			default:
				t.Errorf("Unexpected path %s", r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		client := NewRevenueClient(server.URL, "sk_test")
		summary, err := client.FetchSummary(context.Background())
		if err != nil {
			t.Fatalf("FetchSummary failed: %v", err)
		}

		if summary.AvailableCents != 125000 {
			t.Errorf("Expected 125000 available, got %d", summary.AvailableCents)
		}
		if summary.PendingCents != 4300 {
			t.Errorf("Expected 4300 pending, got %d", summary.PendingCents)
		}
		if summary.Currency != "aud" {
			t.Errorf("Expected aud, got %q", summary.Currency)
		}
		if summary.RecentCharges != 3 {
			t.Errorf("Expected 3 charges, got %d", summary.RecentCharges)
		}
		if summary.RecentGrossCents != 12500 {
			t.Errorf("Expected 12500 gross, got %d", summary.RecentGrossCents)
		}
		if summary.SuccessRate < 0.66 || summary.SuccessRate > 0.67 {
			t.Errorf("Expected ~2/3 success rate, got %v", summary.SuccessRate)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewRevenueClient(server.URL, "sk_test")
		if _, err := client.FetchSummary(context.Background()); err == nil {
			t.Fatal("Expected an error for non-200 status code, got nil")
		}
	})
}

func TestCRMFetchSummary(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Api-Key") != "crm_key" {
				t.Errorf("Expected api key header, got %q", r.Header.Get("X-Api-Key"))
			}
			if r.URL.Path != "/api/v1/metrics/summary" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			fmt.Fprintln(w, `{
				"total_contacts": 412,
				"new_contacts_week": 9,
				"open_deals": 5,
				"pipeline_value_cents": 1850000
			}`)
		}))
		defer server.Close()

		client := NewCRMClient(server.URL, "crm_key")
		summary, err := client.FetchSummary(context.Background())
		if err != nil {
			t.Fatalf("FetchSummary failed: %v", err)
		}
		if summary.TotalContacts != 412 || summary.OpenDeals != 5 {
			t.Errorf("Unexpected summary %+v", summary)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewCRMClient(server.URL, "crm_key")
		if _, err := client.FetchSummary(context.Background()); err == nil {
			t.Fatal("Expected an error for non-200 status code, got nil")
		}
	})
}
