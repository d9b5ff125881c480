package verticals

import (
	"fmt"
	"strings"

	"goal-engine/internal/model"
)

// heuristicProfile is a plan-free way of estimating the volume behind a
// goal. The network-marketing and generic profiles are separate fallback
// tiers and deliberately use different constants.
type heuristicProfile struct {
	name string
	// Cumulative plan-unit volume per unit of monthly income, per month.
	incomeMultiplier    float64
	volumePerPrimary    float64
	primaryPerSecondary float64
	path                string
}

var (
	networkMarketingHeuristic = heuristicProfile{
		name:                "network_marketing",
		incomeMultiplier:    3,
		volumePerPrimary:    100,
		primaryPerSecondary: customersPerPartner,
		path:                model.PathHeuristic,
	}
	genericHeuristic = heuristicProfile{
		name:                "generic",
		incomeMultiplier:    3,
		volumePerPrimary:    500,
		primaryPerSecondary: 10,
		path:                model.PathGeneric,
	}
)

func (h heuristicProfile) requiredVolume(goal model.GoalInput) float64 {
	switch goal.Kind {
	case model.GoalIncome:
		return goal.TargetValue * h.incomeMultiplier * float64(goal.TimeframeMonths)
	case model.GoalVolume:
		return goal.TargetValue
	default:
		return goal.TargetValue * h.volumePerPrimary
	}
}

func (h heuristicProfile) describe(goal model.GoalInput) string {
	var b strings.Builder
	switch goal.Kind {
	case model.GoalIncome:
		fmt.Fprintf(&b, "Volume assumes %s plan units per month for every unit of monthly income.", formatAmount(h.incomeMultiplier))
	case model.GoalVolume:
		b.WriteString("Volume target taken as given.")
	default:
		fmt.Fprintf(&b, "Volume assumes %s plan units per acquired %s.", formatAmount(h.volumePerPrimary), unitNoun(goal.Kind))
	}
	fmt.Fprintf(&b, " Counts assume %s plan units per customer and %s customers per partner.",
		formatAmount(h.volumePerPrimary), formatAmount(h.primaryPerSecondary))
	return b.String()
}

// fallback builds the heuristic breakdown. reason explains why no plan was
// used and leads the notes.
func (h heuristicProfile) fallback(verticalID string, goal model.GoalInput, reason string, details map[string]any) (model.GoalBreakdown, error) {
	if details == nil {
		details = map[string]any{}
	}
	details[DetailHeuristicProfile] = h.name

	lead := "Heuristic estimate, not anchored to a compensation plan."
	if h.path == model.PathGeneric {
		lead = "Generic estimate, not specific to this vertical or any compensation plan."
	}
	notes := strings.Join(strings.Fields(lead+" "+reason+" "+h.describe(goal)), " ")

	return estimate{
		verticalID:          verticalID,
		goal:                goal,
		requiredVolume:      h.requiredVolume(goal),
		volumePerPrimary:    h.volumePerPrimary,
		primaryPerSecondary: h.primaryPerSecondary,
		path:                h.path,
		details:             details,
		notes:               notes,
	}.build()
}

func unitNoun(kind model.GoalKind) string {
	switch kind {
	case model.GoalClients:
		return "client"
	case model.GoalDeals:
		return "deal"
	default:
		return "unit"
	}
}

func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
