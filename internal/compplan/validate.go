package compplan

import (
	"errors"
	"fmt"

	"goal-engine/internal/model"
)

var ErrInvalidPlan = errors.New("invalid_plan")

// Validate checks the invariants rank resolution relies on. Plans are checked
// once at load time instead of on every lookup.
func Validate(p model.CompensationPlan) error {
	if normalize(p.CompanyID) == "" {
		return invalid(p, "company_id is required")
	}
	if p.AvgVolumePerCustomer <= 0 {
		return invalid(p, "avg_volume_per_customer must be positive")
	}
	if p.AvgVolumePerPartner < 0 {
		return invalid(p, "avg_volume_per_partner must not be negative")
	}
	if len(p.Ranks) == 0 {
		return invalid(p, "ranks cannot be empty")
	}

	entry := p.Ranks[0]
	if entry.Order != 0 {
		return invalid(p, "first rank %q must have order 0, got %d", entry.ID, entry.Order)
	}
	if entry.Requirements.MinPersonalVolume != 0 || entry.Requirements.MinGroupVolume != 0 || entry.Requirements.Legs != nil {
		return invalid(p, "entry rank %q must have no requirements", entry.ID)
	}

	seen := make(map[string]struct{}, len(p.Ranks))
	for i, r := range p.Ranks {
		if r.ID == "" {
			return invalid(p, "rank at position %d has no id", i)
		}
		if _, dup := seen[r.ID]; dup {
			return invalid(p, "rank id %q is not unique", r.ID)
		}
		seen[r.ID] = struct{}{}

		req := r.Requirements
		if req.MinPersonalVolume < 0 || req.MinGroupVolume < 0 {
			return invalid(p, "rank %q has negative volume requirements", r.ID)
		}
		if req.Legs != nil && (req.Legs.LegsRequired <= 0 || req.Legs.MinVolumePerLeg < 0) {
			return invalid(p, "rank %q has an invalid leg requirement", r.ID)
		}
		if est := r.EarningEstimate; est != nil {
			if est.AvgMonthlyIncome < 0 {
				return invalid(p, "rank %q has negative income", r.ID)
			}
			if rg := est.IncomeRange; rg != nil && (rg.Min < 0 || rg.Max < rg.Min) {
				return invalid(p, "rank %q has an invalid income range", r.ID)
			}
		}

		if i == 0 {
			continue
		}
		prev := p.Ranks[i-1]
		if r.Order <= prev.Order {
			return invalid(p, "rank %q order %d does not increase after %q order %d", r.ID, r.Order, prev.ID, prev.Order)
		}
		if req.MinGroupVolume < prev.Requirements.MinGroupVolume {
			return invalid(p, "rank %q min_group_volume %.2f is below %q", r.ID, req.MinGroupVolume, prev.ID)
		}
	}

	return nil
}

func invalid(p model.CompensationPlan, format string, args ...any) error {
	return fmt.Errorf("%w: plan %s/%s: %s", ErrInvalidPlan, p.CompanyID, p.Region, fmt.Sprintf(format, args...))
}
