package verticals

import (
	"fmt"
	"math"

	"goal-engine/internal/model"
	"goal-engine/internal/rank"
)

const NetworkMarketingID = "network_marketing"

// customersPerPartner is a business ratio, not plan data: plans publish
// volume per partner but not how many customers a partner brings.
const customersPerPartner = 5

// NetworkMarketing breaks goals down against a multi-tier compensation plan
// when the goal names one, and falls back to the network-marketing heuristic
// otherwise.
type NetworkMarketing struct {
	plans PlanLookup
}

func NewNetworkMarketing(plans PlanLookup) *NetworkMarketing {
	return &NetworkMarketing{plans: plans}
}

func (a *NetworkMarketing) ID() string    { return NetworkMarketingID }
func (a *NetworkMarketing) Label() string { return "Network Marketing" }

func (a *NetworkMarketing) ComputeGoalBreakdown(goal model.GoalInput) (model.GoalBreakdown, error) {
	if err := goal.Validate(); err != nil {
		return model.GoalBreakdown{}, err
	}

	companyID, region := goal.PlanRef()
	if companyID == "" {
		return networkMarketingHeuristic.fallback(a.ID(), goal, "No compensation plan was selected.", map[string]any{
			DetailPlanStatus: PlanStatusNone,
		})
	}

	plan, ok := a.lookup(companyID, region)
	if !ok {
		reason := fmt.Sprintf("Compensation plan %q is not available", companyID)
		if region != "" {
			reason += fmt.Sprintf(" for region %q", region)
		}
		return networkMarketingHeuristic.fallback(a.ID(), goal, reason+".", map[string]any{
			DetailPlanStatus:      PlanStatusNotFound,
			DetailRequestedPlanID: companyID,
			DetailRequestedRegion: region,
		})
	}

	switch goal.Kind {
	case model.GoalIncome:
		return a.byIncome(plan, goal)
	case model.GoalRank:
		return a.byRank(plan, goal)
	case model.GoalVolume:
		return a.fromPlan(plan, goal, goal.TargetValue, planDetails(plan),
			fmt.Sprintf("Volume target of %s %s taken as given.", formatAmount(goal.TargetValue), plan.UnitLabel))
	default:
		details := planDetails(plan)
		details[DetailPlanStatus] = PlanStatusNotApplicable
		reason := fmt.Sprintf("The %s plan does not break down %s goals.", plan.Name, goal.Kind)
		return networkMarketingHeuristic.fallback(a.ID(), goal, reason, details)
	}
}

func (a *NetworkMarketing) lookup(companyID, region string) (model.CompensationPlan, bool) {
	if a.plans == nil {
		return model.CompensationPlan{}, false
	}
	return a.plans.Get(companyID, region)
}

func (a *NetworkMarketing) byIncome(plan model.CompensationPlan, goal model.GoalInput) (model.GoalBreakdown, error) {
	tier, reached := rank.ByIncome(plan.Ranks, goal.TargetValue)

	details := tierDetails(plan, tier)
	details[DetailTargetReached] = reached

	notes := fmt.Sprintf("A monthly income of %s needs rank %s with %s %s group volume.",
		formatAmount(goal.TargetValue), tier.Name, formatAmount(rank.RequiredVolume(tier)), plan.UnitLabel)
	if !reached {
		notes += " No published rank reaches this income, so the top rank is shown."
	}
	return a.fromPlan(plan, goal, rank.RequiredVolume(tier), details, notes)
}

func (a *NetworkMarketing) byRank(plan model.CompensationPlan, goal model.GoalInput) (model.GoalBreakdown, error) {
	requested := math.Floor(goal.TargetValue)
	tier, clamped := rank.ByIndex(plan.Ranks, rankIndex(requested, len(plan.Ranks)))

	details := tierDetails(plan, tier)
	details[DetailIndexClamped] = clamped
	details[DetailRequestedIndex] = requested

	notes := fmt.Sprintf("Rank %s requires %s %s group volume.",
		tier.Name, formatAmount(rank.RequiredVolume(tier)), plan.UnitLabel)
	if clamped {
		notes += fmt.Sprintf(" Rank index %s is outside the plan and was clamped to %d.", formatAmount(requested), tier.Order)
	}
	return a.fromPlan(plan, goal, rank.RequiredVolume(tier), details, notes)
}

func (a *NetworkMarketing) fromPlan(plan model.CompensationPlan, goal model.GoalInput, volume float64, details map[string]any, summary string) (model.GoalBreakdown, error) {
	details[DetailPlanStatus] = PlanStatusApplied

	notes := fmt.Sprintf("Based on the %s plan (%s). %s Counts assume %s %s per customer and %d customers per partner.",
		plan.Name, plan.Region, summary, formatAmount(plan.AvgVolumePerCustomer), plan.UnitLabel, customersPerPartner)

	return estimate{
		verticalID:          a.ID(),
		goal:                goal,
		requiredVolume:      volume,
		volumePerPrimary:    plan.AvgVolumePerCustomer,
		primaryPerSecondary: customersPerPartner,
		path:                model.PathPlan,
		details:             details,
		notes:               notes,
	}.build()
}

func (a *NetworkMarketing) DefaultConversionConfig() model.DailyFlowConfig {
	return model.DailyFlowConfig{
		ContactToCustomerRate: 0.20,
		ContactToPartnerRate:  0.05,
		FollowUpsPerCustomer:  3,
		FollowUpsPerPartner:   5,
		ReactivationShare:     0.20,
		WorkingDaysPerWeek:    5,
	}
}

func (a *NetworkMarketing) KPIDefinitions() []model.KPIDefinition {
	return []model.KPIDefinition{
		{ID: "personal_volume", Label: "Personal volume", Unit: "plan_units", Period: "month", Description: "Volume from own orders and retail customers"},
		{ID: "group_volume", Label: "Group volume", Unit: "plan_units", Period: "month", Description: "Volume of the whole team including personal volume"},
		{ID: "new_customers", Label: "New customers", Unit: "count", Period: "month"},
		{ID: "new_partners", Label: "New partners", Unit: "count", Period: "month"},
		{ID: "contacts", Label: "Contacts", Unit: "count", Period: "day", Description: "New conversations started"},
		{ID: "follow_ups", Label: "Follow-ups", Unit: "count", Period: "day"},
		{ID: "rank_progress", Label: "Rank progress", Unit: "percent", Period: "month", Description: "Share of the next rank's group volume reached"},
	}
}

func planDetails(plan model.CompensationPlan) map[string]any {
	return map[string]any{
		"comp_plan_id": plan.CompanyID,
		"region":       plan.Region,
		"plan_name":    plan.Name,
		"plan_version": plan.Version,
		"unit_label":   plan.UnitLabel,
	}
}

func tierDetails(plan model.CompensationPlan, tier model.RankTier) map[string]any {
	details := planDetails(plan)
	details["tier_id"] = tier.ID
	details["tier_name"] = tier.Name
	details["tier_order"] = tier.Order
	details["tier_avg_monthly_income"] = rank.Income(tier)
	return details
}

// rankIndex bounds a floored index to just outside [0, tiers-1] so the int
// conversion cannot overflow. rank.ByIndex does the actual clamping.
func rankIndex(idx float64, tiers int) int {
	switch {
	case math.IsNaN(idx):
		return 0
	case idx < -1:
		return -1
	case idx > float64(tiers):
		return tiers
	}
	return int(idx)
}
