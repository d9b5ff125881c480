package model

import (
	"errors"
	"strings"
)

var ErrInvalidTimeframe = errors.New("invalid_timeframe")

type GoalKind string

const (
	GoalIncome  GoalKind = "income"
	GoalRank    GoalKind = "rank"
	GoalVolume  GoalKind = "volume"
	GoalClients GoalKind = "clients"
	GoalDeals   GoalKind = "deals"
)

// Keys read from GoalInput.VerticalMeta.
const (
	MetaCompPlanID = "comp_plan_id"
	MetaRegion     = "region"
)

// GoalInput is what a caller wants to reach and by when. TargetValue is
// currency per month for income goals, a rank index for rank goals, plan-unit
// volume for volume goals and a count for clients and deals.
type GoalInput struct {
	Kind            GoalKind       `json:"goal_kind"`
	TargetValue     float64        `json:"target_value"`
	TimeframeMonths int            `json:"timeframe_months"`
	VerticalMeta    map[string]any `json:"vertical_meta,omitempty"`
	CurrentValue    *float64       `json:"current_value,omitempty"`
}

func (g GoalInput) Validate() error {
	if g.TimeframeMonths <= 0 {
		return ErrInvalidTimeframe
	}
	return nil
}

// PlanRef returns the compensation plan reference carried in VerticalMeta.
// Missing or non-string values come back empty.
func (g GoalInput) PlanRef() (companyID, region string) {
	return metaString(g.VerticalMeta, MetaCompPlanID), metaString(g.VerticalMeta, MetaRegion)
}

func metaString(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return strings.TrimSpace(s)
}

const (
	PathPlan      = "plan"
	PathHeuristic = "heuristic"
	PathGeneric   = "generic"
)

// GoalBreakdown is the derived plan for one goal. Volumes are in the plan's
// unit currency and rounded to two decimals.
type GoalBreakdown struct {
	VerticalID      string         `json:"vertical_id"`
	GoalKind        GoalKind       `json:"goal_kind"`
	TimeframeMonths int            `json:"timeframe_months"`
	PrimaryUnits    int            `json:"primary_units"`
	SecondaryUnits  int            `json:"secondary_units"`
	RequiredVolume  float64        `json:"required_volume"`
	PerMonthVolume  float64        `json:"per_month_volume"`
	PerWeekVolume   float64        `json:"per_week_volume"`
	PerDayVolume    float64        `json:"per_day_volume"`
	VerticalDetails map[string]any `json:"vertical_details"`
	Notes           string         `json:"notes"`
	CalculationPath string         `json:"calculation_path"`
}
