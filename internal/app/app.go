// Package app wires the application graph: database, repositories, services,
// and the optional outside integrations. Integrations without credentials are
// left nil and their surfaces answer as unconfigured.
package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"family-ops/internal/business"
	"family-ops/internal/cart"
	"family-ops/internal/clipper"
	"family-ops/internal/config"
	"family-ops/internal/content"
	"family-ops/internal/database"
	"family-ops/internal/export"
	"family-ops/internal/ghost"
	"family-ops/internal/llm"
	"family-ops/internal/metrics"
	"family-ops/internal/notify"
	"family-ops/internal/plan"
	"family-ops/internal/recipe"
	"family-ops/internal/server"
	"family-ops/internal/worklog"
)

// App holds the application's dependencies.
type App struct {
	Cfg         *config.Config
	DB          *database.DB
	Broadcaster *notify.Broadcaster

	Catalog      recipe.Catalog
	Search       *recipe.Search
	Plans        *plan.Service
	Suggester    *plan.Suggester
	Clipper      *clipper.Clipper
	CartBuilder  *cart.Builder
	Calendar     *content.Calendar
	Revenue      *business.RevenueClient
	CRM          *business.CRMClient
	Worklog      *worklog.Repository
	MetricsStore *metrics.Store
	Exports      *export.Store

	gemini *llm.GeminiClient
}

// New builds the full dependency graph from cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	broadcaster := notify.NewBroadcaster()
	catalog := recipe.NewRepository(db.SQL, broadcaster)
	planStore := plan.NewRepository(db.SQL, broadcaster)
	metricsStore := metrics.NewStore(db.SQL)
	worklogRepo := worklog.NewRepository(db.SQL, broadcaster)

	a := &App{
		Cfg:          cfg,
		DB:           db,
		Broadcaster:  broadcaster,
		Catalog:      catalog,
		Plans:        plan.NewService(planStore, catalog, cfg.Members),
		Worklog:      worklogRepo,
		MetricsStore: metricsStore,
	}

	exports, err := export.NewStore(cfg.ExportPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	a.Exports = exports

	// Text generation prefers Groq; Gemini is the fallback and the only
	// embedding provider.
	var textGen llm.TextGenerator
	if cfg.GroqAPIKey != "" {
		textGen = llm.NewGroqClient(cfg)
	}

	var embedGen llm.EmbeddingGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.gemini = gemini
		if textGen == nil {
			textGen = gemini
		}

		cachePath := filepath.Join(filepath.Dir(cfg.DatabasePath), "embedding_cache.json")
		cached, err := llm.NewCachedEmbeddingGenerator(gemini, cachePath)
		if err != nil {
			log.Printf("Warning: embedding cache unavailable, using direct calls: %v", err)
			embedGen = gemini
		} else {
			embedGen = cached
		}
	}

	if embedGen != nil {
		a.Search = recipe.NewSearch(catalog, llm.NewVectorRepository(db.SQL), embedGen)
	}

	if textGen != nil {
		if a.Search != nil {
			a.Suggester = plan.NewSuggester(catalog, a.Search, textGen)
			a.Clipper = clipper.NewClipper(catalog, textGen, a.Search)
		} else {
			a.Suggester = plan.NewSuggester(catalog, nil, textGen)
			a.Clipper = clipper.NewClipper(catalog, textGen, nil)
		}
	}

	if cfg.WoolworthsBaseURL != "" {
		a.CartBuilder = cart.NewBuilder(cfg.WoolworthsBaseURL)
	}

	if cfg.HasGhost() {
		ghostClient := ghost.NewClient(cfg.GhostURL, cfg.GhostContentKey, cfg.GhostAdminKey)
		a.Calendar = content.NewCalendar(ghostClient, textGen)
	}

	if cfg.StripeAPIKey != "" {
		a.Revenue = business.NewRevenueClient("", cfg.StripeAPIKey)
	}
	if cfg.CRMBaseURL != "" {
		a.CRM = business.NewCRMClient(cfg.CRMBaseURL, cfg.CRMAPIKey)
	}

	return a, nil
}

// Server builds the HTTP API over the wired dependencies.
func (a *App) Server() *server.Server {
	return server.New(server.Deps{
		Catalog:      a.Catalog,
		Plans:        a.Plans,
		Suggester:    a.Suggester,
		Clipper:      a.Clipper,
		Search:       a.Search,
		CartBuilder:  a.CartBuilder,
		Calendar:     a.Calendar,
		Revenue:      a.Revenue,
		CRM:          a.CRM,
		Worklog:      a.Worklog,
		MetricsStore: a.MetricsStore,
		DataPath:     filepath.Dir(a.Cfg.DatabasePath),
	})
}

// SnapshotWeeks writes a versioned JSON snapshot of every non-archived week.
func (a *App) SnapshotWeeks(ctx context.Context) (int, error) {
	plans, err := a.Plans.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list weeks: %w", err)
	}

	count := 0
	for i := range plans {
		path, err := a.Exports.Snapshot(&plans[i])
		if err != nil {
			log.Printf("Failed to snapshot week %s: %v", plans[i].WeekID, err)
			continue
		}
		log.Printf("Snapshotted week %s to %s", plans[i].WeekID, path)
		count++
	}
	return count, nil
}

// Close releases the database and LLM clients.
func (a *App) Close() {
	if a.gemini != nil {
		if err := a.gemini.Close(); err != nil {
			log.Printf("Failed to close Gemini client: %v", err)
		}
	}
	if err := a.DB.Close(); err != nil {
		log.Printf("Failed to close database: %v", err)
	}
}
