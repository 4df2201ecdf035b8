package financial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumlayer-dev/solar-placement/internal/model"
)

func TestEvaluate_S1_HighIrradianceDesert(t *testing.T) {
	q := model.Query{PlantSizeKW: 20, ElectricityRate: 8.0}
	fin := Evaluate(q, 6.5, DefaultParams())

	assert.InDelta(t, 37960, fin.AnnualEnergyKWh, 1)
	assert.InDelta(t, 3.3, float64(fin.PaybackYears), 0.1)
	assert.Equal(t, 0.0, fin.SubsidyAmount, "20 kWp exceeds the residential subsidy cap")
	assert.Equal(t, 20.0, fin.SystemSizeKWp)
	assert.Equal(t, 160.0, fin.RequiredLandAreaM2)
	assert.Equal(t, 1000000.0, fin.InstallationCost)
}

func TestEvaluate_S2_RoofSizedResidential(t *testing.T) {
	q := model.Query{PlantSizeKW: 3, ElectricityRate: 8.0, AvailableAreaM2: 25, HasAvailableArea: true}
	fin := Evaluate(q, 6.5, DefaultParams())

	assert.Equal(t, 150000.0, fin.InstallationCost)
	assert.Equal(t, 78000.0, fin.SubsidyAmount)
	assert.Equal(t, 72000.0, fin.NetCostAfterSubsidy)
	assert.Less(t, float64(fin.PaybackYearsAfterSubsidy), float64(fin.PaybackYears))
}

// Boundary: electricity_rate=0 -> infinite payback and lifetime profit
// equal to -installationCost (spec.md §8).
func TestEvaluate_ZeroElectricityRate(t *testing.T) {
	q := model.Query{PlantSizeKW: 5, ElectricityRate: 0}
	fin := Evaluate(q, 5.5, DefaultParams())

	assert.True(t, math.IsInf(float64(fin.PaybackYears), 1))
	assert.Equal(t, -fin.InstallationCost, fin.LifetimeProfit)
}

// Invariant #5: payback = cost / annualSavings to <=1e-6 relative error.
func TestPaybackYears_MatchesFormula(t *testing.T) {
	q := model.Query{PlantSizeKW: 7, ElectricityRate: 6.5}
	fin := Evaluate(q, 5.0, DefaultParams())

	expected := fin.InstallationCost / fin.AnnualSavings
	assert.InEpsilon(t, expected, float64(fin.PaybackYears), 1e-6)
}

// Invariant #6: lifetime profit with 0.5%/yr degradation over 25 years
// matches the explicit-loop sum to <=1e-6 relative error.
func TestLifetimeProfit_MatchesExplicitLoop(t *testing.T) {
	q := model.Query{PlantSizeKW: 10, ElectricityRate: 7.0}
	params := DefaultParams()
	fin := Evaluate(q, 5.5, params)

	annualKWh := q.PlantSizeKW * 5.5 * 365 * params.PerformanceRatio

	var loopKWh float64
	ratio := 1 - params.DegradationRate
	for y := 0; y < params.LifetimeYears; y++ {
		loopKWh += annualKWh * math.Pow(ratio, float64(y))
	}
	expectedProfit := loopKWh*q.ElectricityRate - fin.InstallationCost

	assert.InEpsilon(t, expectedProfit, fin.LifetimeProfit, 1e-6)
}

// Invariant #7: doubling plant_size_kw while staying within the same
// tier bucket cannot increase the subsidy amount (the schedule is
// piecewise-constant within a bucket, so it stays exactly equal).
func TestSubsidyAmount_MonotonicWithinTier(t *testing.T) {
	pairs := [][2]float64{
		{0.4, 0.8},  // both in the <=1 tier
		{4, 8},      // both in the >3,<=10 tier (flat 78000 cap)
		{10, 10},    // degenerate doubling at the tier boundary itself
	}

	for _, p := range pairs {
		assert.LessOrEqual(t, subsidyAmount(p[1]), subsidyAmount(p[0]), "doubling %.1f->%.1f must not increase subsidy", p[0], p[1])
	}
}

func TestSubsidyAmount_Schedule(t *testing.T) {
	cases := []struct {
		kWp    float64
		amount float64
	}{
		{0.5, 30000},
		{1.0, 30000},
		{1.5, 60000},
		{2.0, 60000},
		{2.5, 78000},
		{3.0, 78000},
		{5.0, 78000},
		{10.0, 78000},
		{10.01, 0},
		{20, 0},
	}

	for _, c := range cases {
		assert.Equal(t, c.amount, subsidyAmount(c.kWp), "size %.2f", c.kWp)
	}
}

func TestSizePlant_LegacyAreaFirstMode(t *testing.T) {
	q := model.Query{
		PlantSizeKW:      5,
		InstallationCost: 200000,
		PanelAreaM2:      100,
		Efficiency:       0.2,
		AvailableAreaM2:  150,
		HasAvailableArea: true,
	}

	size, cost, land := sizePlant(q, DefaultParams())
	assert.Equal(t, 20.0, size) // 100 * 0.2
	assert.Equal(t, 200000.0, cost)
	assert.Equal(t, 150.0, land)
}

func TestLifetimeEnergy_ZeroDegradationIsLinear(t *testing.T) {
	got := lifetimeEnergy(1000, 0, 25)
	assert.Equal(t, 25000.0, got)
}

func TestPaybackYears_NonPositiveSavingsIsInfinite(t *testing.T) {
	assert.True(t, math.IsInf(paybackYears(1000, 0), 1))
	assert.True(t, math.IsInf(paybackYears(1000, -5), 1))
}

func TestEvaluate_AutoSizingVsExplicitCost(t *testing.T) {
	auto := model.Query{PlantSizeKW: 4, ElectricityRate: 8}
	fin := Evaluate(auto, 5.5, DefaultParams())
	require.Equal(t, 4*DefaultCostPerKW, fin.InstallationCost)
}
