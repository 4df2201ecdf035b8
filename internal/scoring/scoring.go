// Package scoring implements the deterministic multi-factor placement
// scoring engine: normalization of each acquired feature into a 0-100
// sub-score, weighted aggregation with calibration headroom, hard
// constraint gating, confidence computation, and grade/class mapping
// (spec.md §4.2).
package scoring

import (
	"fmt"
	"math"

	"github.com/quantumlayer-dev/solar-placement/internal/model"
)

// headroomMultiplier gives near-ideal sites room to reach the top of the
// scale despite Gaussian-tail compression; documented, not derived
// (spec.md §4.2/§9).
const headroomMultiplier = 1.05

// weight constants for the eight sub-scores; must sum to 1.0.
const (
	weightSolar            = 0.30
	weightTemperature      = 0.10
	weightElevation        = 0.10
	weightWind             = 0.08
	weightCloud            = 0.10
	weightSlope            = 0.10
	weightGrid             = 0.12
	weightPlantFeasibility = 0.10
)

var slopeThresholds = []float64{5, 15, 25}
var slopeValues = []float64{1.00, 0.65, 0.30, 0.05}

// Calibrator is the read-only interface the scoring engine needs from the
// regional calibrator, so it stays decoupled from the calibrator's
// internal locking strategy. Delta reports the region's bias (cell EMA
// minus global EMA); the engine applies its negation so cells scoring
// systematically above the global mean are pulled down.
type Calibrator interface {
	Delta(lat, lng float64) float64
}

// subScores computes the eight weighted 0-100 factor scores (spec.md
// §4.2 table).
func subScores(f model.Features, q model.Query) model.SubScores {
	irradianceFactor := clamp(f.SolarIrradiance/5.5, 0, 1)

	areaRatio := 1.0
	if q.HasAvailableArea && q.PlantSizeKW > 0 {
		areaRatio = clamp(q.AvailableAreaM2/(q.PlantSizeKW*8), 0, 1)
	}
	plantFeasibility := sigmoid(areaRatio*irradianceFactor, 0.5, 6) * 100

	return model.SubScores{
		Solar:            gaussian(f.SolarIrradiance, 5.5, 1.5) * 100,
		Temperature:      gaussian(f.TemperatureC, 22, 8) * 100,
		Elevation:        gaussian(f.ElevationM, 600, 800) * 100,
		Wind:             gaussian(f.WindSpeed, 3.5, 2.0) * 100,
		Cloud:            invertedSigmoid(f.CloudCoverPct, 50, 0.06) * 100,
		Slope:            step(f.SlopeDegrees, slopeThresholds, slopeValues) * 100,
		Grid:             invertedSigmoid(f.GridDistanceKM, 25, 0.10) * 100,
		PlantFeasibility: plantFeasibility,
	}
}

// aggregate combines the weighted sub-scores with calibration headroom
// (spec.md §4.2 "Aggregation"), before the calibrator delta is applied.
func aggregate(s model.SubScores) float64 {
	raw := weightSolar*s.Solar +
		weightTemperature*s.Temperature +
		weightElevation*s.Elevation +
		weightWind*s.Wind +
		weightCloud*s.Cloud +
		weightSlope*s.Slope +
		weightGrid*s.Grid +
		weightPlantFeasibility*s.PlantFeasibility

	return clamp(raw*headroomMultiplier, 0, 100)
}

// constraintViolations evaluates the hard-constraint gates (spec.md
// §4.2 table). Thresholds use strict inequalities so boundary values
// (irradiance == 2.0, slope == 25.0) do not trigger.
func constraintViolations(f model.Features, q model.Query) []string {
	var violations []string

	if f.SolarIrradiance < 2.0 {
		violations = append(violations, "Solar irradiance insufficient")
	}
	if f.SlopeDegrees > 25 {
		violations = append(violations, "Terrain unsuitable")
	}
	if f.CloudCoverPct > 90 {
		violations = append(violations, "Permanent overcast")
	}
	if f.GridDistanceKM > 100 {
		violations = append(violations, "Grid connection unviable")
	}
	if q.HasAvailableArea && q.AvailableAreaM2 < 0.4*(q.PlantSizeKW*8) {
		violations = append(violations, "Insufficient land area")
	}

	return violations
}

// confidence computes the self-estimate in [0,100] from factor
// agreement, source quality, and input plausibility (spec.md §4.2).
func confidence(s model.SubScores, f model.Features) int {
	values := s.Values()
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	const maxVar = 2500.0
	agreement := clamp(1-variance/maxVar, 0, 1)

	sourceQuality := clamp(float64(f.DataSources)/4.0, 0, 1)

	plausibility := 1.0
	if f.SolarIrradiance > 10 {
		plausibility -= 0.25
	}
	if f.SlopeDegrees < 0 {
		plausibility -= 0.25
	}
	if f.CloudCoverPct < 0 || f.CloudCoverPct > 100 {
		plausibility -= 0.25
	}
	if f.WindSpeed < 0 {
		plausibility -= 0.25
	}
	plausibility = math.Max(plausibility, 0)

	c := clamp(0.50*agreement+0.30*sourceQuality+0.20*plausibility, 0, 1) * 100
	return int(math.Round(c))
}

// gradeAndClass maps the final integer score to a letter grade and
// coarse suitability class (spec.md §4.2 table).
func gradeAndClass(score int) (model.Grade, model.SuitabilityClass) {
	switch {
	case score >= 88:
		return model.GradeAPlus, model.ClassExcellent
	case score >= 78:
		return model.GradeA, model.ClassExcellent
	case score >= 68:
		return model.GradeBPlus, model.ClassGood
	case score >= 58:
		return model.GradeB, model.ClassGood
	case score >= 47:
		return model.GradeC, model.ClassModerate
	case score >= 35:
		return model.GradeD, model.ClassPoor
	default:
		return model.GradeF, model.ClassUnsuitable
	}
}

var recommendations = map[model.Grade]string{
	model.GradeAPlus: "Outstanding site: proceed to detailed engineering review.",
	model.GradeA:     "Excellent site: strongly recommended for development.",
	model.GradeBPlus: "Good site: recommended, with minor mitigations worth reviewing.",
	model.GradeB:     "Good site overall: viable with standard due diligence.",
	model.GradeC:     "Moderate site: viable but returns are sensitive to assumptions.",
	model.GradeD:     "Poor site: development is possible but not advisable.",
	model.GradeF:     "Unsuitable site: development is not recommended.",
}

// Score is the pure scoring entry point (spec.md §4.2 "Public contract").
// It is deterministic for identical inputs and calibrator state.
func Score(f model.Features, q model.Query, cal Calibrator) model.Verdict {
	sub := subScores(f, q)
	raw := aggregate(sub)

	violations := constraintViolations(f, q)

	adjustment := -cal.Delta(q.Lat, q.Lng)
	adjusted := clamp(raw+adjustment, 0, 100)

	if len(violations) > 0 {
		adjusted = math.Min(adjusted, 34)
	}

	score := int(math.Round(adjusted))

	grade, class := gradeAndClass(score)
	if len(violations) > 0 {
		class = model.ClassUnsuitable
	}

	isSuitable := score >= 50 && len(violations) == 0

	return model.Verdict{
		Score:                 score,
		Grade:                 grade,
		SuitabilityClass:      class,
		Confidence:            confidence(sub, f),
		ConstraintViolations:  violations,
		CalibrationAdjustment: adjustment,
		SubScores:             sub,
		IsSuitable:            isSuitable,
		AlgorithmVersion:      model.AlgorithmVersion,
		Recommendation:        recommendationFor(grade, violations),
	}
}

func recommendationFor(grade model.Grade, violations []string) string {
	if len(violations) > 0 {
		return fmt.Sprintf("%s Primary concern: %s.", recommendations[model.GradeF], violations[0])
	}
	return recommendations[grade]
}
