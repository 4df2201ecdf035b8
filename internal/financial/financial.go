// Package financial implements the capacity-first financial engine: yield,
// payback, degradation-aware lifetime profit, and the tiered residential
// subsidy schedule. Every function here is pure (spec.md §4.4).
package financial

import (
	"math"
	"sort"

	"github.com/quantumlayer-dev/solar-placement/internal/model"
)

const (
	// DefaultCostPerKW is the benchmark installation-cost rate used when
	// the caller leaves installation_cost at 0 ("auto from capacity").
	DefaultCostPerKW = 50000.0
	// DefaultLandAreaPerKW is the required land footprint per kW of
	// nameplate capacity in capacity-first sizing.
	DefaultLandAreaPerKW = 8.0
	// PerformanceRatio is the lumped real-world derate (inverter,
	// soiling, temperature) applied to nameplate output.
	PerformanceRatio = 0.80
	// DegradationRate is the annual fractional decline in panel output.
	DegradationRate = 0.005
	// LifetimeYears is the modelled horizon for lifetime profit.
	LifetimeYears = 25
	// residentialSubsidyCapKWp is the system size above which no
	// subsidy applies at all (spec.md §4.4, treated authoritative per
	// the Open Question resolution in SPEC_FULL.md).
	residentialSubsidyCapKWp = 10.0
)

// subsidyTier is one row of the piecewise-constant subsidy schedule,
// represented as a sorted slice scanned linearly rather than an if-else
// ladder (spec.md §9 design note).
type subsidyTier struct {
	upperBoundKWp float64
	amount        float64
}

var subsidySchedule = []subsidyTier{
	{upperBoundKWp: 1, amount: 30000},
	{upperBoundKWp: 2, amount: 60000},
	{upperBoundKWp: 3, amount: 78000},
	{upperBoundKWp: math.Inf(1), amount: 78000},
}

func init() {
	sort.Slice(subsidySchedule, func(i, j int) bool {
		return subsidySchedule[i].upperBoundKWp < subsidySchedule[j].upperBoundKWp
	})
}

// Params carries the benchmark constants as configuration, so they can be
// overridden without recompiling (SPEC_FULL.md §0 config section).
type Params struct {
	CostPerKW        float64
	LandAreaPerKW    float64
	PerformanceRatio float64
	DegradationRate  float64
	LifetimeYears    int
}

// DefaultParams returns the spec-documented benchmark constants.
func DefaultParams() Params {
	return Params{
		CostPerKW:        DefaultCostPerKW,
		LandAreaPerKW:    DefaultLandAreaPerKW,
		PerformanceRatio: PerformanceRatio,
		DegradationRate:  DegradationRate,
		LifetimeYears:    LifetimeYears,
	}
}

// Evaluate computes the full Financial projection for a query and its
// acquired solar irradiance.
func Evaluate(q model.Query, irradiance float64, p Params) model.Financial {
	systemSizeKWp, installationCost, landAreaM2 := sizePlant(q, p)

	annualKWh := systemSizeKWp * irradiance * 365 * p.PerformanceRatio
	annualSavings := annualKWh * q.ElectricityRate

	lifetimeKWh := lifetimeEnergy(annualKWh, p.DegradationRate, p.LifetimeYears)
	lifetimeSavings := lifetimeKWh * q.ElectricityRate
	lifetimeProfit := lifetimeSavings - installationCost

	payback := paybackYears(installationCost, annualSavings)

	subsidy := subsidyAmount(systemSizeKWp)
	netCost := math.Max(installationCost-subsidy, 0)
	paybackAfterSubsidy := paybackYears(netCost, annualSavings)
	lifetimeProfitAfterSubsidy := lifetimeSavings - netCost

	return model.Financial{
		AnnualEnergyKWh:            annualKWh,
		AnnualSavings:              annualSavings,
		InstallationCost:           installationCost,
		PaybackYears:               model.Years(payback),
		LifetimeProfit:             lifetimeProfit,
		SubsidyAmount:              subsidy,
		NetCostAfterSubsidy:        netCost,
		PaybackYearsAfterSubsidy:   model.Years(paybackAfterSubsidy),
		LifetimeProfitAfterSubsidy: lifetimeProfitAfterSubsidy,
		SystemSizeKWp:              systemSizeKWp,
		RequiredLandAreaM2:         landAreaM2,
	}
}

// sizePlant returns (systemSizeKWp, installationCost, requiredLandAreaM2).
// Capacity-first when installation_cost is left at 0 (auto); otherwise the
// legacy area-first mode honours the supplied cost and derives size from
// panel_area*efficiency.
func sizePlant(q model.Query, p Params) (systemSizeKWp, installationCost, landAreaM2 float64) {
	if q.InstallationCost == 0 && q.PlantSizeKW > 0 {
		systemSizeKWp = q.PlantSizeKW
		installationCost = q.PlantSizeKW * p.CostPerKW
		landAreaM2 = q.PlantSizeKW * p.LandAreaPerKW
		return
	}

	installationCost = q.InstallationCost
	systemSizeKWp = q.PlantSizeKW
	if q.PanelAreaM2 > 0 && q.Efficiency > 0 {
		// legacy area-first derivation: panel area times efficiency
		// approximates nameplate capacity in kW per m^2 of panel.
		systemSizeKWp = q.PanelAreaM2 * q.Efficiency
	}
	landAreaM2 = q.AvailableAreaM2
	if landAreaM2 == 0 {
		landAreaM2 = systemSizeKWp * p.LandAreaPerKW
	}
	return
}

// lifetimeEnergy sums annualKWh*(1-rate)^y for y in [0, years-1] as a
// closed-form geometric series (spec.md §9 — loop and closed form are
// equivalent; tests cross-check both).
func lifetimeEnergy(annualKWh, rate float64, years int) float64 {
	if annualKWh == 0 {
		return 0
	}
	ratio := 1 - rate
	if ratio == 1 {
		return annualKWh * float64(years)
	}
	// sum_{y=0}^{n-1} ratio^y = (1 - ratio^n) / (1 - ratio)
	return annualKWh * (1 - math.Pow(ratio, float64(years))) / (1 - ratio)
}

func paybackYears(cost, annualSavings float64) float64 {
	if annualSavings <= 0 {
		return math.Inf(1)
	}
	return cost / annualSavings
}

// subsidyAmount performs the linear scan over the sorted tier table
// (spec.md §9 design note), capping to 0 above the residential ceiling.
func subsidyAmount(systemSizeKWp float64) float64 {
	if systemSizeKWp > residentialSubsidyCapKWp {
		return 0
	}
	for _, tier := range subsidySchedule {
		if systemSizeKWp <= tier.upperBoundKWp {
			return tier.amount
		}
	}
	return 0
}
