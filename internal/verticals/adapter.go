package verticals

import (
	"fmt"

	"goal-engine/internal/breakdown"
	"goal-engine/internal/model"
)

// Adapter converts goals of one business vertical into breakdowns. Every
// vertical implements the same contract; the registry dispatches by ID.
type Adapter interface {
	ID() string
	Label() string
	ComputeGoalBreakdown(goal model.GoalInput) (model.GoalBreakdown, error)
	DefaultConversionConfig() model.DailyFlowConfig
	KPIDefinitions() []model.KPIDefinition
}

// PlanLookup finds a compensation plan by company and region.
// *compplan.Repository implements it.
type PlanLookup interface {
	Get(companyID, region string) (model.CompensationPlan, bool)
}

// Keys set in GoalBreakdown.VerticalDetails.
const (
	DetailPlanStatus       = "plan_status"
	DetailRequestedPlanID  = "requested_comp_plan_id"
	DetailRequestedRegion  = "requested_region"
	DetailHeuristicProfile = "heuristic_profile"
	DetailTargetReached    = "target_reached"
	DetailIndexClamped     = "index_clamped"
	DetailRequestedIndex   = "requested_index"
	DetailVolumeCapped     = "volume_capped"
)

// Values of DetailPlanStatus.
const (
	PlanStatusNone          = "none"
	PlanStatusNotFound      = "not_found"
	PlanStatusNotApplicable = "not_applicable"
	PlanStatusApplied       = "applied"
)

type estimate struct {
	verticalID          string
	goal                model.GoalInput
	requiredVolume      float64
	volumePerPrimary    float64
	primaryPerSecondary float64
	path                string
	details             map[string]any
	notes               string
}

func (e estimate) build() (model.GoalBreakdown, error) {
	slices, err := breakdown.Slice(e.requiredVolume, e.goal.TimeframeMonths)
	if err != nil {
		return model.GoalBreakdown{}, err
	}
	primary, secondary := breakdown.Units(e.requiredVolume, e.volumePerPrimary, e.primaryPerSecondary)

	details := e.details
	if details == nil {
		details = map[string]any{}
	}
	notes := e.notes
	if slices.Capped {
		details[DetailVolumeCapped] = true
		notes += fmt.Sprintf(" Required volume exceeds the supported maximum and was capped at %s.", formatAmount(breakdown.MaxVolume))
	}

	return model.GoalBreakdown{
		VerticalID:      e.verticalID,
		GoalKind:        e.goal.Kind,
		TimeframeMonths: e.goal.TimeframeMonths,
		PrimaryUnits:    primary,
		SecondaryUnits:  secondary,
		RequiredVolume:  slices.RequiredVolume,
		PerMonthVolume:  slices.PerMonth,
		PerWeekVolume:   slices.PerWeek,
		PerDayVolume:    slices.PerDay,
		VerticalDetails: details,
		Notes:           notes,
		CalculationPath: e.path,
	}, nil
}
