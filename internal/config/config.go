package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the configuration for the application.
type Config struct {
	ListenAddr   string
	DatabasePath string
	ExportPath   string

	// Member names for the two household tracks.
	Members []string

	// Content calendar (Ghost)
	GhostURL        string
	GhostContentKey string
	GhostAdminKey   string

	// LLM providers
	GeminiAPIKey string
	GroqAPIKey   string

	// Grocery cart builder
	WoolworthsBaseURL string
	WoolworthsAPIKey  string

	// Business metrics proxies
	StripeAPIKey string
	CRMBaseURL   string
	CRMAPIKey    string

	// Telegram
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables.
// Only the database path is strictly required; integrations that are not
// configured are disabled at wiring time.
func NewFromEnv() (*Config, error) {
	dbPath := os.Getenv("FAMILYOPS_DB_PATH")
	if dbPath == "" {
		return nil, fmt.Errorf("FAMILYOPS_DB_PATH environment variable not set")
	}

	listenAddr := os.Getenv("FAMILYOPS_LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	exportPath := os.Getenv("FAMILYOPS_EXPORT_PATH")
	if exportPath == "" {
		exportPath = "data/exports"
	}

	members := splitList(os.Getenv("FAMILYOPS_MEMBERS"))
	if len(members) == 0 {
		members = []string{"jade", "harvey"}
	}

	ghostAdminKey := os.Getenv("GHOST_ADMIN_API_KEY")
	if ghostAdminKey == "" {
		// Fallback to content key if only one is provided
		ghostAdminKey = os.Getenv("GHOST_CONTENT_API_KEY")
	}

	var allowedIDs []int64
	for _, raw := range splitList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS")) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", raw, err)
		}
		allowedIDs = append(allowedIDs, id)
	}

	var adminID int64
	if raw := os.Getenv("TELEGRAM_ADMIN_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_ID %q: %w", raw, err)
		}
		adminID = id
	}

	woolworthsBase := os.Getenv("WOOLWORTHS_BASE_URL")
	if woolworthsBase == "" {
		woolworthsBase = "https://www.woolworths.com.au"
	}

	return &Config{
		ListenAddr:             listenAddr,
		DatabasePath:           dbPath,
		ExportPath:             exportPath,
		Members:                members,
		GhostURL:               os.Getenv("GHOST_API_URL"),
		GhostContentKey:        os.Getenv("GHOST_CONTENT_API_KEY"),
		GhostAdminKey:          ghostAdminKey,
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		GroqAPIKey:             os.Getenv("GROQ_API_KEY"),
		WoolworthsBaseURL:      woolworthsBase,
		WoolworthsAPIKey:       os.Getenv("WOOLWORTHS_API_KEY"),
		StripeAPIKey:           os.Getenv("STRIPE_API_KEY"),
		CRMBaseURL:             os.Getenv("CRM_BASE_URL"),
		CRMAPIKey:              os.Getenv("CRM_API_KEY"),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowedIDs,
		AdminTelegramID:        adminID,
	}, nil
}

// HasGhost reports whether the content calendar integration is configured.
func (c *Config) HasGhost() bool {
	return c.GhostURL != "" && c.GhostContentKey != ""
}

// HasTelegram reports whether the Telegram bot is configured.
func (c *Config) HasTelegram() bool {
	return c.TelegramBotToken != "" && c.TelegramWebhookURL != ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
