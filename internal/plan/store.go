package plan

import "context"

// Store is the persistence contract for week plans. The SQLite Repository is
// the production implementation; MemoryStore backs tests.
type Store interface {
	// Get returns the plan for weekID, or nil when absent.
	Get(ctx context.Context, weekID string) (*WeekPlan, error)
	// Save persists the complete plan state in one write.
	Save(ctx context.Context, p *WeekPlan) error
	// List returns every stored plan, newest week first.
	List(ctx context.Context) ([]WeekPlan, error)
	// ListByStatus returns every plan in the given status, newest week first.
	ListByStatus(ctx context.Context, status Status) ([]WeekPlan, error)
}
