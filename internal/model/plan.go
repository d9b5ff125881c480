package model

// CompensationPlan is one partner company's tiered incentive structure for a region.
// Plans are loaded once and never mutated afterwards.
type CompensationPlan struct {
	CompanyID            string     `json:"company_id" yaml:"company_id"`
	Name                 string     `json:"name" yaml:"name"`
	Region               string     `json:"region" yaml:"region"`
	Version              string     `json:"version" yaml:"version"`
	UnitLabel            string     `json:"unit_label" yaml:"unit_label"`
	AvgVolumePerCustomer float64    `json:"avg_volume_per_customer" yaml:"avg_volume_per_customer"`
	AvgVolumePerPartner  float64    `json:"avg_volume_per_partner" yaml:"avg_volume_per_partner"`
	Ranks                []RankTier `json:"ranks" yaml:"ranks"`
	Disclaimer           string     `json:"disclaimer" yaml:"disclaimer"`
}

type RankTier struct {
	ID              string           `json:"id" yaml:"id"`
	Name            string           `json:"name" yaml:"name"`
	Order           int              `json:"order" yaml:"order"`
	Requirements    RankRequirements `json:"requirements" yaml:"requirements"`
	EarningEstimate *EarningEstimate `json:"earning_estimate,omitempty" yaml:"earning_estimate"`
}

type RankRequirements struct {
	MinPersonalVolume float64         `json:"min_personal_volume" yaml:"min_personal_volume"`
	MinGroupVolume    float64         `json:"min_group_volume" yaml:"min_group_volume"`
	Legs              *LegRequirement `json:"legs,omitempty" yaml:"legs"`
}

// LegRequirement is the structural part of a qualification: a number of
// downline legs that each have to carry a minimum volume.
type LegRequirement struct {
	LegsRequired    int     `json:"legs_required" yaml:"legs_required"`
	MinVolumePerLeg float64 `json:"min_volume_per_leg" yaml:"min_volume_per_leg"`
}

type EarningEstimate struct {
	AvgMonthlyIncome float64      `json:"avg_monthly_income" yaml:"avg_monthly_income"`
	IncomeRange      *IncomeRange `json:"income_range,omitempty" yaml:"income_range"`
}

type IncomeRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}
