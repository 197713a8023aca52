// Package telegram is the chat surface: a webhook bot for checking the
// week's plan and shopping list, locking the week, clipping recipe URLs,
// and asking for plan suggestions in free text.
package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"family-ops/internal/clipper"
	"family-ops/internal/config"
	"family-ops/internal/metrics"
	"family-ops/internal/notify"
	"family-ops/internal/plan"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot wraps the Telegram API and the household services. The suggester and
// clipper may be nil when no LLM provider is configured; their commands then
// answer with a notice instead of running.
type Bot struct {
	api          *tgbotapi.BotAPI
	send         func(c tgbotapi.Chattable) (tgbotapi.Message, error)
	svc          *plan.Service
	suggester    *plan.Suggester
	clipper      *clipper.Clipper
	metricsStore *metrics.Store
	cfg          *config.Config
}

// NewBot initializes the Telegram bot and sets the webhook.
func NewBot(
	cfg *config.Config,
	svc *plan.Service,
	suggester *plan.Suggester,
	clip *clipper.Clipper,
	metricsStore *metrics.Store,
) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          bot,
		send:         bot.Send,
		svc:          svc,
		suggester:    suggester,
		clipper:      clip,
		metricsStore: metricsStore,
		cfg:          cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler on the given mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
}

// WatchChanges pushes a short note to the admin chat whenever a store
// changes, replacing the browser storage-event sync of old. Blocks until
// ctx is done.
func (b *Bot) WatchChanges(ctx context.Context, broadcaster *notify.Broadcaster) {
	events, cancel := broadcaster.Subscribe(16)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if b.cfg.AdminTelegramID == 0 {
				continue
			}
			text := fmt.Sprintf("🔄 %s updated (%s)", ev.Store, ev.Key)
			b.send(tgbotapi.NewMessage(b.cfg.AdminTelegramID, text))
		}
	}
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil {
		return
	}

	isAllowed := false
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if update.Message.From.ID == id {
			isAllowed = true
			break
		}
	}

	if !isAllowed {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)

	switch {
	case text == "/week":
		b.handleWeekCommand(msg.Chat.ID)
	case text == "/shopping":
		b.handleShoppingCommand(msg.Chat.ID)
	case text == "/lock":
		b.handleLockCommand(msg.Chat.ID)
	case text == "/metrics":
		b.handleMetricsRequest(msg)
	case strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://"):
		if b.clipper == nil {
			b.sendMarkdown(msg.Chat.ID, "⚠️ Recipe clipping is not configured. Set an LLM API key to enable it.")
			return
		}
		b.handleClipperRequest(msg)
	default:
		if b.suggester == nil {
			b.sendMarkdown(msg.Chat.ID, "⚠️ Suggestions are not configured. Set an LLM API key to enable them.")
			return
		}
		b.handleSuggestRequest(msg)
	}
}

func (b *Bot) handleWeekCommand(chatID int64) {
	p, err := b.svc.CurrentWeek(context.Background())
	if err != nil {
		b.sendError(chatID, "fetching the week", err)
		return
	}
	b.sendMarkdown(chatID, formatWeekMarkdown(p))
}

func (b *Bot) handleShoppingCommand(chatID int64) {
	p, err := b.svc.CurrentWeek(context.Background())
	if err != nil {
		b.sendError(chatID, "fetching the shopping list", err)
		return
	}
	b.sendMarkdown(chatID, formatShoppingMarkdown(p))
}

func (b *Bot) handleLockCommand(chatID int64) {
	ctx := context.Background()
	p, err := b.svc.CurrentWeek(ctx)
	if err != nil {
		b.sendError(chatID, "fetching the week", err)
		return
	}

	p, err = b.svc.LockWeek(ctx, p.WeekID)
	if err != nil {
		b.sendError(chatID, "locking the week", err)
		return
	}
	b.sendMarkdown(chatID, fmt.Sprintf("🔒 *%s locked.* Meal changes are closed; happy shopping.", p.WeekID))
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.sendMarkdown(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}
	b.handleMetricsCommand(msg.Chat.ID)
}

func (b *Bot) handleClipperRequest(msg *tgbotapi.Message) {
	sentMsg, err := b.sendMarkdownMsg(msg.Chat.ID, "✂️ *Clipping recipe...* \n(Extracting and saving to the catalog)")
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rec, err := b.clipper.ClipURL(ctx, msg.Text)
	var finalText string
	if err != nil {
		log.Printf("Error clipping recipe: %v", err)
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		finalText = fmt.Sprintf("❌ *Error clipping recipe:*\n```\n%v\n```", safeErr)
	} else {
		finalText = fmt.Sprintf("✅ *Recipe Saved!*\n\n*Name:* %s\n*Ingredients:* %d", rec.Name, len(rec.Ingredients))
	}

	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sentMsg.MessageID, finalText)
	edit.ParseMode = "Markdown"
	b.send(edit)
}

func (b *Bot) handleSuggestRequest(msg *tgbotapi.Message) {
	sentMsg, err := b.sendMarkdownMsg(msg.Chat.ID, "🧑‍🍳 *Thinking...* \n(Looking through the catalog for a week of dinners)")
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	log.Printf("Generating suggestion for request: %s", msg.Text)

	suggestion, err := b.suggester.Suggest(ctx, msg.Text)
	if suggestion != nil {
		if recErr := b.metricsStore.RecordMeta(ctx, suggestion.Meta); recErr != nil {
			log.Printf("Warning: failed to record metrics: %v", recErr)
		}
	}

	var finalText string
	if err != nil {
		log.Printf("Error generating suggestion: %v", err)
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		finalText = fmt.Sprintf("❌ *Error generating suggestion:*\n```\n%v\n```", safeErr)
	} else {
		finalText = formatSuggestionMarkdown(suggestion)
	}

	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sentMsg.MessageID, finalText)
	edit.ParseMode = "Markdown"
	b.send(edit)
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	ctx := context.Background()
	usage, err := b.metricsStore.GetDailyUsage(ctx, 7)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "❌ Error fetching metrics."))
		return
	}

	health := metrics.GetSysHealth("data")

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))

	b.sendMarkdown(chatID, sb.String())
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	b.send(msg)
}

func (b *Bot) sendMarkdownMsg(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	return b.send(msg)
}

func (b *Bot) sendError(chatID int64, action string, err error) {
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	b.sendMarkdown(chatID, fmt.Sprintf("❌ *Error %s:*\n```\n%v\n```", action, safeErr))
}

func formatWeekMarkdown(p *plan.WeekPlan) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *Week %s* (%s)\n\n", p.WeekID, p.Status))

	members := make([]string, 0, len(p.Members))
	for name := range p.Members {
		members = append(members, name)
	}
	sort.Strings(members)

	for _, member := range members {
		mp := p.Members[member]
		sb.WriteString(fmt.Sprintf("*%s*\n", member))
		empty := true
		for _, day := range plan.Days {
			for _, slot := range plan.Slots {
				ref, ok := mp.Meals[day][slot]
				if !ok {
					continue
				}
				empty = false
				name := ref.RecipeName
				if ov, ok := mp.Overrides[day][slot]; ok && ov.VariantName != "" {
					name = ov.VariantName
				}
				sb.WriteString(fmt.Sprintf("• %s %s: %s\n", day, slot, name))
			}
		}
		if empty {
			sb.WriteString("_Nothing planned yet_\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatShoppingMarkdown(p *plan.WeekPlan) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🛒 *Shopping List — %s*\n\n", p.WeekID))

	if len(p.ShoppingList) == 0 {
		sb.WriteString("_Empty_\n")
		return sb.String()
	}

	for _, item := range p.ShoppingList {
		line := fmt.Sprintf("• %s", item.Ingredient)
		if item.Quantity > 0 {
			line += fmt.Sprintf(" — %g", item.Quantity)
			if item.Unit != "" {
				line += " " + item.Unit
			}
		}
		sb.WriteString(line + "\n")
	}

	return sb.String()
}

func formatSuggestionMarkdown(s *plan.Suggestion) string {
	var sb strings.Builder
	sb.WriteString("🧑‍🍳 *Suggested Week*\n\n")

	for _, meal := range s.Meals {
		sb.WriteString(fmt.Sprintf("*%s* %s: %s\n", meal.Day, meal.Slot, meal.RecipeName))
		if meal.Note != "" {
			sb.WriteString(fmt.Sprintf("_%s_\n", meal.Note))
		}
	}
	if s.Notes != "" {
		sb.WriteString(fmt.Sprintf("\n%s\n", s.Notes))
	}
	sb.WriteString("\n_Apply it from the dashboard when you're happy._")

	return sb.String()
}
