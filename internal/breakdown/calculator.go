// Package breakdown slices a total volume over a timeframe into monthly,
// weekly and daily figures.
//
// One calendar convention is used everywhere: a month has 4.33 weeks and a
// week has 5 working days, so a month has 21.65 working days.
package breakdown

import (
	"math"

	"github.com/shopspring/decimal"

	"goal-engine/internal/model"
)

const (
	WeeksPerMonth      = 4.33
	WorkingDaysPerWeek = 5

	// MaxVolume caps every volume this package handles. Larger or infinite
	// inputs saturate here so results stay finite and JSON-encodable.
	MaxVolume = 1e12
)

var (
	weeksPerMonth = decimal.NewFromFloat(WeeksPerMonth)
	daysPerMonth  = weeksPerMonth.Mul(decimal.NewFromInt(WorkingDaysPerWeek))
	maxVolume     = decimal.NewFromFloat(MaxVolume)
	maxUnits      = decimal.NewFromInt(math.MaxInt)
)

type Slices struct {
	RequiredVolume float64
	PerMonth       float64
	PerWeek        float64
	PerDay         float64
	// Capped reports that the requested volume exceeded MaxVolume.
	Capped bool
}

// Slice spreads requiredVolume over months. Negative and NaN volumes count
// as zero, volumes above MaxVolume count as MaxVolume.
func Slice(requiredVolume float64, months int) (Slices, error) {
	if months <= 0 {
		return Slices{}, model.ErrInvalidTimeframe
	}

	total, capped := clampVolume(requiredVolume)
	perMonth := total.Div(decimal.NewFromInt(int64(months)))

	return Slices{
		RequiredVolume: round(total, 2),
		PerMonth:       round(perMonth, 2),
		PerWeek:        round(perMonth.Div(weeksPerMonth), 2),
		PerDay:         round(perMonth.Div(daysPerMonth), 2),
		Capped:         capped,
	}, nil
}

// Units estimates how many primary units (customers) carry requiredVolume and
// how many secondary units (partners) that takes at primaryPerSecondary.
// Both are rounded half up to whole numbers and saturate at math.MaxInt.
func Units(requiredVolume, volumePerPrimary, primaryPerSecondary float64) (primary, secondary int) {
	if !finitePositive(volumePerPrimary) || !finitePositive(primaryPerSecondary) {
		return 0, 0
	}
	volume, _ := clampVolume(requiredVolume)
	p := volume.Div(decimal.NewFromFloat(volumePerPrimary))
	s := p.Div(decimal.NewFromFloat(primaryPerSecondary))
	return count(p), count(s)
}

// Volume rounds v to two decimals.
func Volume(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return round(decimal.NewFromFloat(v), 2)
}

func clampVolume(v float64) (decimal.Decimal, bool) {
	switch {
	case math.IsNaN(v) || v <= 0:
		return decimal.Zero, false
	case v > MaxVolume:
		return maxVolume, true
	}
	return decimal.NewFromFloat(v), false
}

func count(d decimal.Decimal) int {
	d = d.Round(0)
	if d.GreaterThan(maxUnits) {
		return math.MaxInt
	}
	return int(d.IntPart())
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// round is half away from zero, which is half up for the non-negative
// values this package produces.
func round(d decimal.Decimal, places int32) float64 {
	return d.Round(places).InexactFloat64()
}
