package model

// DailyFlowConfig holds the per-vertical conversion defaults callers use to
// turn a GoalBreakdown into daily activity counts.
type DailyFlowConfig struct {
	ContactToCustomerRate float64 `json:"contact_to_customer_rate"`
	ContactToPartnerRate  float64 `json:"contact_to_partner_rate"`
	FollowUpsPerCustomer  int     `json:"follow_ups_per_customer"`
	FollowUpsPerPartner   int     `json:"follow_ups_per_partner"`
	ReactivationShare     float64 `json:"reactivation_share"`
	WorkingDaysPerWeek    int     `json:"working_days_per_week"`
}

type KPIDefinition struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Unit        string `json:"unit"`
	Period      string `json:"period"`
	Description string `json:"description"`
}
