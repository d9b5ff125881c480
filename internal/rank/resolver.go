// Package rank resolves a target income or rank index to a tier of a
// compensation plan. Ranks must be sorted by order ascending and non-empty;
// compplan.Validate guarantees both for loaded plans.
package rank

import "goal-engine/internal/model"

// ByIncome returns the first tier whose average monthly income reaches
// target. When no tier reaches it, the highest tier is returned with
// reached set to false.
func ByIncome(ranks []model.RankTier, target float64) (tier model.RankTier, reached bool) {
	for _, r := range ranks {
		if Income(r) >= target {
			return r, true
		}
	}
	return ranks[len(ranks)-1], false
}

// ByIndex returns the tier whose order equals index after clamping index
// into [0, len(ranks)-1].
func ByIndex(ranks []model.RankTier, index int) (tier model.RankTier, clamped bool) {
	last := len(ranks) - 1
	switch {
	case index < 0:
		index, clamped = 0, true
	case index > last:
		index, clamped = last, true
	}

	for _, r := range ranks {
		if r.Order == index {
			return r, clamped
		}
	}
	// Sparse orders: fall back to position.
	return ranks[index], clamped
}

// RequiredVolume is the group volume a tier requires.
func RequiredVolume(tier model.RankTier) float64 {
	return tier.Requirements.MinGroupVolume
}

// Income is the tier's average monthly income, zero without an estimate.
func Income(tier model.RankTier) float64 {
	if tier.EarningEstimate == nil {
		return 0
	}
	return tier.EarningEstimate.AvgMonthlyIncome
}
