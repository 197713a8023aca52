package plan

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store used by tests. Plans are copied through
// JSON on the way in and out so callers never share state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[string]string)}
}

var _ Store = (*MemoryStore)(nil)

// Get returns the plan for weekID, or nil when absent.
func (s *MemoryStore) Get(ctx context.Context, weekID string) (*WeekPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.plans[weekID]
	if !ok {
		return nil, nil
	}
	return unmarshalPlan(data)
}

// Save persists the complete plan state.
func (s *MemoryStore) Save(ctx context.Context, p *WeekPlan) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[p.WeekID] = string(data)
	return nil
}

// List returns every stored plan, newest week first.
func (s *MemoryStore) List(ctx context.Context) ([]WeekPlan, error) {
	return s.list(func(WeekPlan) bool { return true })
}

// ListByStatus returns every plan in the given status, newest week first.
func (s *MemoryStore) ListByStatus(ctx context.Context, status Status) ([]WeekPlan, error) {
	return s.list(func(p WeekPlan) bool { return p.Status == status })
}

func (s *MemoryStore) list(keep func(WeekPlan) bool) ([]WeekPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var plans []WeekPlan
	for _, data := range s.plans {
		p, err := unmarshalPlan(data)
		if err != nil {
			return nil, err
		}
		if keep(*p) {
			plans = append(plans, *p)
		}
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].WeekID > plans[j].WeekID
	})
	return plans, nil
}
