package plan

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"family-ops/internal/notify"
	db "family-ops/internal/plan/plan_db"
)

// Repository is the SQLite-backed Store. The full plan is stored as a JSON
// document in the data column; status is mirrored into its own column so
// listings can filter without decoding every plan.
type Repository struct {
	queries     *db.Queries
	db          *sql.DB
	broadcaster *notify.Broadcaster
}

// NewRepository creates a new Repository. The broadcaster may be nil.
func NewRepository(d *sql.DB, broadcaster *notify.Broadcaster) *Repository {
	return &Repository{
		queries:     db.New(d),
		db:          d,
		broadcaster: broadcaster,
	}
}

var _ Store = (*Repository)(nil)

// Get retrieves the plan for weekID, or nil when absent.
func (r *Repository) Get(ctx context.Context, weekID string) (*WeekPlan, error) {
	dbPlan, err := r.queries.GetWeekPlan(ctx, weekID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Plan not found
		}
		return nil, fmt.Errorf("failed to get week plan: %w", err)
	}
	return unmarshalPlan(dbPlan.Data)
}

// Save persists the complete plan state in one write and notifies listeners.
func (r *Repository) Save(ctx context.Context, p *WeekPlan) error {
	planJSON, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal week plan to JSON: %w", err)
	}

	err = r.queries.InsertWeekPlan(ctx, db.InsertWeekPlanParams{
		WeekID:    p.WeekID,
		Status:    string(p.Status),
		Data:      string(planJSON),
		UpdatedAt: p.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert week plan: %w", err)
	}

	if r.broadcaster != nil {
		r.broadcaster.Publish(notify.Event{Store: notify.StorePlans, Key: p.WeekID})
	}
	return nil
}

// List returns every stored plan, newest week first.
func (r *Repository) List(ctx context.Context) ([]WeekPlan, error) {
	dbPlans, err := r.queries.ListWeekPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list week plans: %w", err)
	}
	return decodePlans(dbPlans)
}

// ListByStatus returns every plan in the given status, newest week first.
func (r *Repository) ListByStatus(ctx context.Context, status Status) ([]WeekPlan, error) {
	dbPlans, err := r.queries.ListWeekPlansByStatus(ctx, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list week plans by status: %w", err)
	}
	return decodePlans(dbPlans)
}

func decodePlans(dbPlans []db.WeekPlan) ([]WeekPlan, error) {
	var plans []WeekPlan
	for _, dbPlan := range dbPlans {
		p, err := unmarshalPlan(dbPlan.Data)
		if err != nil {
			return nil, fmt.Errorf("week %s: %w", dbPlan.WeekID, err)
		}
		plans = append(plans, *p)
	}
	return plans, nil
}

func unmarshalPlan(data string) (*WeekPlan, error) {
	var p WeekPlan
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal week plan JSON: %w", err)
	}
	return &p, nil
}
