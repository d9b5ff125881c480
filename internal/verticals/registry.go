package verticals

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"goal-engine/internal/model"
)

var (
	ErrDuplicateVertical = errors.New("duplicate_vertical")
	ErrInvalidVertical   = errors.New("invalid_vertical")
)

// Registry maps vertical IDs to adapters. Register adapters during startup;
// lookups are safe for concurrent use once registration is done.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(a Adapter) error {
	if a == nil {
		return fmt.Errorf("%w: nil adapter", ErrInvalidVertical)
	}
	id := normalizeVertical(a.ID())
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidVertical)
	}
	if _, exists := r.adapters[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateVertical, id)
	}
	r.adapters[id] = a
	return nil
}

func (r *Registry) Get(verticalID string) (Adapter, bool) {
	a, ok := r.adapters[normalizeVertical(verticalID)]
	return a, ok
}

// Adapters returns the registered adapters sorted by ID.
func (r *Registry) Adapters() []Adapter {
	out := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// ComputeGoalBreakdownForVertical dispatches to the registered adapter. A
// vertical without an adapter gets the generic heuristic, so the only error
// is an invalid timeframe.
func (r *Registry) ComputeGoalBreakdownForVertical(verticalID string, goal model.GoalInput) (model.GoalBreakdown, error) {
	if a, ok := r.Get(verticalID); ok {
		return a.ComputeGoalBreakdown(goal)
	}
	if err := goal.Validate(); err != nil {
		return model.GoalBreakdown{}, err
	}

	id := normalizeVertical(verticalID)
	reason := fmt.Sprintf("No adapter is registered for vertical %q.", id)
	return genericHeuristic.fallback(id, goal, reason, nil)
}

func normalizeVertical(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
