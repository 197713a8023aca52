// Package server exposes the household dashboard as a JSON HTTP API:
// recipe catalog CRUD, week plan operations, shopping list edits, the cart
// builder, the content calendar, the worklog, and the metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"family-ops/internal/business"
	"family-ops/internal/cart"
	"family-ops/internal/clipper"
	"family-ops/internal/content"
	"family-ops/internal/metrics"
	"family-ops/internal/plan"
	"family-ops/internal/recipe"
	"family-ops/internal/shopping"
	"family-ops/internal/worklog"
)

// Server holds the API's dependencies. Optional integrations may be nil;
// their endpoints then answer 503.
type Server struct {
	catalog      recipe.Catalog
	plans        *plan.Service
	suggester    *plan.Suggester
	clipper      *clipper.Clipper
	search       *recipe.Search
	cartBuilder  *cart.Builder
	calendar     *content.Calendar
	revenue      *business.RevenueClient
	crm          *business.CRMClient
	worklog      *worklog.Repository
	metricsStore *metrics.Store
	dataPath     string
}

// Deps bundles the constructor arguments; nil fields disable their routes.
type Deps struct {
	Catalog      recipe.Catalog
	Plans        *plan.Service
	Suggester    *plan.Suggester
	Clipper      *clipper.Clipper
	Search       *recipe.Search
	CartBuilder  *cart.Builder
	Calendar     *content.Calendar
	Revenue      *business.RevenueClient
	CRM          *business.CRMClient
	Worklog      *worklog.Repository
	MetricsStore *metrics.Store
	DataPath     string
}

// New creates a Server.
func New(deps Deps) *Server {
	return &Server{
		catalog:      deps.Catalog,
		plans:        deps.Plans,
		suggester:    deps.Suggester,
		clipper:      deps.Clipper,
		search:       deps.Search,
		cartBuilder:  deps.CartBuilder,
		calendar:     deps.Calendar,
		revenue:      deps.Revenue,
		crm:          deps.CRM,
		worklog:      deps.Worklog,
		metricsStore: deps.MetricsStore,
		dataPath:     deps.DataPath,
	}
}

// Routes registers every handler on the mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /api/recipes", s.handleListRecipes)
	mux.HandleFunc("POST /api/recipes", s.handleCreateRecipe)
	mux.HandleFunc("GET /api/recipes/search", s.handleSearchRecipes)
	mux.HandleFunc("GET /api/recipes/{id}", s.handleGetRecipe)
	mux.HandleFunc("PUT /api/recipes/{id}", s.handleUpdateRecipe)
	mux.HandleFunc("DELETE /api/recipes/{id}", s.handleDeleteRecipe)
	mux.HandleFunc("POST /api/recipes/clip", s.handleClipRecipe)

	mux.HandleFunc("GET /api/weeks", s.handleListWeeks)
	mux.HandleFunc("GET /api/weeks/current", s.handleCurrentWeek)
	mux.HandleFunc("GET /api/weeks/next", s.handleNextWeek)
	mux.HandleFunc("GET /api/weeks/{weekID}", s.handleGetWeek)
	mux.HandleFunc("POST /api/weeks/{weekID}/lock", s.handleLockWeek)
	mux.HandleFunc("POST /api/weeks/{weekID}/archive", s.handleArchiveWeek)
	mux.HandleFunc("POST /api/weeks/{weekID}/suggest", s.handleSuggestWeek)

	mux.HandleFunc("PUT /api/weeks/{weekID}/members/{member}/days/{day}/slots/{slot}", s.handleSetMeal)
	mux.HandleFunc("DELETE /api/weeks/{weekID}/members/{member}/days/{day}/slots/{slot}", s.handleRemoveMeal)
	mux.HandleFunc("POST /api/weeks/{weekID}/members/{member}/days/{day}/slots/{slot}/override", s.handleOverrideMeal)
	mux.HandleFunc("GET /api/weeks/{weekID}/members/{member}/days/{day}/macros", s.handleDayMacros)

	mux.HandleFunc("POST /api/weeks/{weekID}/shopping", s.handleAddShoppingItem)
	mux.HandleFunc("PUT /api/weeks/{weekID}/shopping", s.handleReplaceShoppingList)
	mux.HandleFunc("PUT /api/weeks/{weekID}/shopping/{itemID}", s.handleUpdateShoppingItem)
	mux.HandleFunc("DELETE /api/weeks/{weekID}/shopping/{itemID}", s.handleRemoveShoppingItem)
	mux.HandleFunc("POST /api/weeks/{weekID}/cart", s.handleBuildCart)

	mux.HandleFunc("GET /api/content/calendar", s.handleContentCalendar)
	mux.HandleFunc("POST /api/content/drafts", s.handleGenerateDraft)

	mux.HandleFunc("GET /api/business/revenue", s.handleRevenue)
	mux.HandleFunc("GET /api/business/crm", s.handleCRM)

	mux.HandleFunc("GET /api/worklog", s.handleListWorklog)
	mux.HandleFunc("POST /api/worklog", s.handleLogWork)
	mux.HandleFunc("DELETE /api/worklog/{id}", s.handleDeleteWorklog)

	mux.HandleFunc("GET /api/metrics/usage", s.handleMetricsUsage)
	mux.HandleFunc("GET /api/metrics/health", s.handleMetricsHealth)
}

// --- Recipes ---

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.catalog.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var params recipe.CreateParams
	if !decodeBody(w, r, &params) {
		return
	}

	rec, err := s.catalog.Create(r.Context(), params)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if s.search != nil {
		if err := s.search.Index(r.Context(), *rec); err != nil {
			log.Printf("Warning: failed to index recipe %q: %v", rec.Name, err)
		}
	}

	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	rec, err := s.catalog.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if rec == nil {
		writeJSONError(w, http.StatusNotFound, "recipe not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	var params recipe.UpdateParams
	if !decodeBody(w, r, &params) {
		return
	}

	rec, err := s.catalog.Update(r.Context(), r.PathValue("id"), params)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if s.search != nil {
		if err := s.search.Index(r.Context(), *rec); err != nil {
			log.Printf("Warning: failed to reindex recipe %q: %v", rec.Name, err)
		}
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearchRecipes(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "search is not configured")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSONError(w, http.StatusBadRequest, "missing q parameter")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	recipes, err := s.search.FindSimilar(r.Context(), query, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (s *Server) handleClipRecipe(w http.ResponseWriter, r *http.Request) {
	if s.clipper == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "clipper is not configured")
		return
	}

	var body struct {
		URL string `json:"url"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.URL == "" {
		writeJSONError(w, http.StatusBadRequest, "missing url")
		return
	}

	rec, err := s.clipper.ClipURL(r.Context(), body.URL)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// --- Weeks ---

func (s *Server) handleListWeeks(w http.ResponseWriter, r *http.Request) {
	var plans []plan.WeekPlan
	var err error

	switch status := plan.Status(r.URL.Query().Get("status")); status {
	case "":
		plans, err = s.plans.ListActive(r.Context())
	case plan.StatusPlanning, plan.StatusLocked, plan.StatusArchived:
		plans, err = s.plans.ListByStatus(r.Context(), status)
	default:
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", status))
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleCurrentWeek(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.CurrentWeek(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleNextWeek(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.NextWeek(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetWeek(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.Get(r.Context(), r.PathValue("weekID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleLockWeek(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.LockWeek(r.Context(), r.PathValue("weekID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleArchiveWeek(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.ArchiveWeek(r.Context(), r.PathValue("weekID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSuggestWeek(w http.ResponseWriter, r *http.Request) {
	if s.suggester == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "suggestions are not configured")
		return
	}

	var body struct {
		Request string `json:"request"`
		Member  string `json:"member"`
		Apply   bool   `json:"apply"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Request == "" {
		writeJSONError(w, http.StatusBadRequest, "missing request")
		return
	}

	suggestion, err := s.suggester.Suggest(r.Context(), body.Request)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if s.metricsStore != nil {
		if err := s.metricsStore.RecordMeta(r.Context(), suggestion.Meta); err != nil {
			log.Printf("Warning: failed to record metrics: %v", err)
		}
	}

	if body.Apply {
		if body.Member == "" {
			writeJSONError(w, http.StatusBadRequest, "missing member for apply")
			return
		}
		p, err := s.suggester.Apply(r.Context(), s.plans, r.PathValue("weekID"), body.Member, suggestion)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"suggestion": suggestion, "week": p})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"suggestion": suggestion})
}

// --- Meals ---

func (s *Server) handleSetMeal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RecipeID string `json:"recipe_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	p, err := s.plans.AddMealToDay(r.Context(),
		r.PathValue("weekID"), r.PathValue("member"),
		plan.Day(r.PathValue("day")), plan.MealSlot(r.PathValue("slot")),
		body.RecipeID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRemoveMeal(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.RemoveMealFromDay(r.Context(),
		r.PathValue("weekID"), r.PathValue("member"),
		plan.Day(r.PathValue("day")), plan.MealSlot(r.PathValue("slot")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleOverrideMeal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Ingredients []recipe.IngredientInput `json:"ingredients"`
		Macros      *recipe.Macros           `json:"macros"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	p, err := s.plans.OverrideMealForDay(r.Context(),
		r.PathValue("weekID"), r.PathValue("member"),
		plan.Day(r.PathValue("day")), plan.MealSlot(r.PathValue("slot")),
		body.Ingredients, body.Macros)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDayMacros(w http.ResponseWriter, r *http.Request) {
	totals, err := s.plans.DayMacros(r.Context(),
		r.PathValue("weekID"), r.PathValue("member"), plan.Day(r.PathValue("day")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// --- Shopping ---

func (s *Server) handleAddShoppingItem(w http.ResponseWriter, r *http.Request) {
	var params plan.ItemParams
	if !decodeBody(w, r, &params) {
		return
	}

	p, err := s.plans.AddShoppingItem(r.Context(), r.PathValue("weekID"), params)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateShoppingItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity float64 `json:"quantity"`
		Unit     string  `json:"unit"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	p, err := s.plans.UpdateShoppingItem(r.Context(),
		r.PathValue("weekID"), r.PathValue("itemID"), body.Quantity, body.Unit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRemoveShoppingItem(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.RemoveShoppingItem(r.Context(), r.PathValue("weekID"), r.PathValue("itemID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleReplaceShoppingList(w http.ResponseWriter, r *http.Request) {
	var items []shopping.Item
	if !decodeBody(w, r, &items) {
		return
	}

	p, err := s.plans.ReplaceShoppingList(r.Context(), r.PathValue("weekID"), items)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleBuildCart(w http.ResponseWriter, r *http.Request) {
	if s.cartBuilder == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "cart builder is not configured")
		return
	}

	p, err := s.plans.Get(r.Context(), r.PathValue("weekID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.cartBuilder.Build(r.Context(), p.ShoppingList)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Content calendar ---

func (s *Server) handleContentCalendar(w http.ResponseWriter, r *http.Request) {
	if s.calendar == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "content calendar is not configured")
		return
	}

	summary, err := s.calendar.Review(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGenerateDraft(w http.ResponseWriter, r *http.Request) {
	if s.calendar == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "content calendar is not configured")
		return
	}

	var body struct {
		Topic string `json:"topic"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Topic == "" {
		writeJSONError(w, http.StatusBadRequest, "missing topic")
		return
	}

	result, err := s.calendar.GenerateDraft(r.Context(), body.Topic)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if s.metricsStore != nil {
		if err := s.metricsStore.RecordMeta(r.Context(), result.Meta); err != nil {
			log.Printf("Warning: failed to record metrics: %v", err)
		}
	}
	writeJSON(w, http.StatusCreated, result.Post)
}

// --- Business metrics ---

func (s *Server) handleRevenue(w http.ResponseWriter, r *http.Request) {
	if s.revenue == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "revenue metrics are not configured")
		return
	}

	summary, err := s.revenue.FetchSummary(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCRM(w http.ResponseWriter, r *http.Request) {
	if s.crm == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "crm metrics are not configured")
		return
	}

	summary, err := s.crm.FetchSummary(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// --- Worklog ---

func (s *Server) handleListWorklog(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			days = n
		}
	}

	entries, err := s.worklog.ListRecent(r.Context(), days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleLogWork(w http.ResponseWriter, r *http.Request) {
	var params worklog.CreateParams
	if !decodeBody(w, r, &params) {
		return
	}

	entry, err := s.worklog.Log(r.Context(), params)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleDeleteWorklog(w http.ResponseWriter, r *http.Request) {
	if err := s.worklog.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Metrics ---

func (s *Server) handleMetricsUsage(w http.ResponseWriter, r *http.Request) {
	if s.metricsStore == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "metrics are not configured")
		return
	}

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			days = n
		}
	}

	usage, err := s.metricsStore.GetDailyUsage(r.Context(), days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

func (s *Server) handleMetricsHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, metrics.GetSysHealth(s.dataPath))
}

// --- Helpers ---

// writeError maps the domain sentinels onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recipe.ErrDuplicateName),
		errors.Is(err, plan.ErrWeekLocked),
		errors.Is(err, plan.ErrInvalidTransition):
		writeJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, recipe.ErrNotFound),
		errors.Is(err, plan.ErrNotFound),
		errors.Is(err, plan.ErrSlotEmpty),
		errors.Is(err, plan.ErrItemNotFound),
		errors.Is(err, worklog.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, plan.ErrUnknownMember),
		errors.Is(err, plan.ErrInvalidDay),
		errors.Is(err, plan.ErrInvalidSlot),
		errors.Is(err, worklog.ErrInvalidEntry):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
	default:
		log.Printf("Internal error: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
