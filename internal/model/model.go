// Package model holds the data types shared across the analysis pipeline:
// the inbound query, the acquired features, the scoring verdict, the
// financial projection, and the persisted analysis record.
package model

import (
	"encoding/json"
	"errors"
	"math"
	"time"
)

// Query is the immutable input to the pipeline.
type Query struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	PlantSizeKW      float64 `json:"plant_size_kw"`
	ElectricityRate  float64 `json:"electricity_rate"`
	PanelAreaM2      float64 `json:"panel_area,omitempty"`
	Efficiency       float64 `json:"efficiency,omitempty"`
	InstallationCost float64 `json:"installation_cost,omitempty"`
	GridDistanceKM   float64 `json:"grid_distance_km,omitempty"`
	AvailableAreaM2  float64 `json:"available_area_m2,omitempty"`

	// HasAvailableArea/HasGridDistance distinguish "caller omitted the
	// field" from "caller sent zero" — the min_area constraint only
	// applies when area was supplied, and grid distance falls back to
	// the region table unless the caller supplied it (spec.md §4.1/§4.2).
	HasAvailableArea bool `json:"-"`
	HasGridDistance  bool `json:"-"`
}

// UnmarshalJSON records field-presence for the optional area/grid-distance
// inputs before delegating to the default struct decoding.
func (q *Query) UnmarshalJSON(data []byte) error {
	type alias Query
	aux := (*alias)(q)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	var presence map[string]json.RawMessage
	if err := json.Unmarshal(data, &presence); err != nil {
		return err
	}
	_, q.HasAvailableArea = presence["available_area_m2"]
	_, q.HasGridDistance = presence["grid_distance_km"]
	return nil
}

// ErrInputInvalid is returned for malformed queries (spec.md §7 InputInvalid).
var ErrInputInvalid = errors.New("input_invalid")

// Validate enforces the boundary checks of spec.md §3/§8. It never lets a
// malformed query reach the pipeline.
func (q Query) Validate() error {
	switch {
	case q.Lat < -90 || q.Lat > 90:
		return errInvalid("lat out of range")
	case q.Lng < -180 || q.Lng > 180:
		return errInvalid("lng out of range")
	case q.PlantSizeKW <= 0:
		return errInvalid("plant_size_kw must be positive")
	case q.ElectricityRate < 0:
		return errInvalid("electricity_rate must not be negative")
	case q.AvailableAreaM2 < 0:
		return errInvalid("available_area_m2 must not be negative")
	case q.GridDistanceKM < 0:
		return errInvalid("grid_distance_km must not be negative")
	}
	return nil
}

func errInvalid(detail string) error {
	return &InputError{Detail: detail}
}

// InputError wraps ErrInputInvalid with a human-readable detail string.
type InputError struct {
	Detail string
}

func (e *InputError) Error() string { return e.Detail }
func (e *InputError) Unwrap() error { return ErrInputInvalid }

// ProvenanceKind tags where a feature value came from.
type ProvenanceKind int

const (
	ProvenanceLive ProvenanceKind = iota
	ProvenanceClimatology
	ProvenanceRegionalEstimate
)

// Features is the complete set of site characteristics the scoring engine
// consumes, assembled by the data acquisition layer (spec.md §3/§4.1).
type Features struct {
	SolarIrradiance float64 `json:"solar_irradiance"`
	WindSpeed       float64 `json:"wind_speed"`
	TemperatureC    float64 `json:"temperature_c"`
	HumidityPct     float64 `json:"humidity_pct"`
	CloudCoverPct   float64 `json:"cloud_cover_pct"`
	ElevationM      float64 `json:"elevation_m"`
	SlopeDegrees    float64 `json:"slope_degrees"`
	GridDistanceKM  float64 `json:"grid_distance_km"`
	DataSources     int     `json:"data_sources"`

	SolarProvenance     ProvenanceKind `json:"-"`
	WeatherProvenance   ProvenanceKind `json:"-"`
	ElevationProvenance ProvenanceKind `json:"-"`
}

// SubScores holds the eight 0-100 normalized factor scores of spec.md §4.2.
type SubScores struct {
	Solar            float64 `json:"solar"`
	Temperature      float64 `json:"temperature"`
	Elevation        float64 `json:"elevation"`
	Wind             float64 `json:"wind"`
	Cloud            float64 `json:"cloud"`
	Slope            float64 `json:"slope"`
	Grid             float64 `json:"grid"`
	PlantFeasibility float64 `json:"plant_feasibility"`
}

// Values returns the eight sub-scores as a slice, for variance/aggregation
// computation that must treat every factor uniformly.
func (s SubScores) Values() []float64 {
	return []float64{s.Solar, s.Temperature, s.Elevation, s.Wind, s.Cloud, s.Slope, s.Grid, s.PlantFeasibility}
}

// Grade is one of A+, A, B+, B, C, D, F.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
)

// SuitabilityClass is the coarse label derived from score and constraints.
type SuitabilityClass string

const (
	ClassExcellent  SuitabilityClass = "Excellent"
	ClassGood       SuitabilityClass = "Good"
	ClassModerate   SuitabilityClass = "Moderate"
	ClassPoor       SuitabilityClass = "Poor"
	ClassUnsuitable SuitabilityClass = "Unsuitable"
)

// AlgorithmVersion identifies the scoring algorithm revision echoed in every
// Verdict, so downstream consumers can detect when weights/constants change.
const AlgorithmVersion = "placement-scoring-v1"

// Verdict is the output of the scoring engine (spec.md §3).
type Verdict struct {
	Score                 int              `json:"score"`
	Grade                 Grade            `json:"grade"`
	SuitabilityClass      SuitabilityClass `json:"suitability_class"`
	Confidence            int              `json:"confidence"`
	ConstraintViolations  []string         `json:"constraint_violations"`
	CalibrationAdjustment float64          `json:"calibration_adjustment"`
	SubScores             SubScores        `json:"sub_scores"`
	IsSuitable            bool             `json:"is_suitable"`
	AlgorithmVersion      string           `json:"algorithm_version"`
	Recommendation        string           `json:"recommendation"`
}

// Years is a span measured in years. Payback can legitimately be
// infinite (no payback at a zero electricity rate); JSON has no
// representation for infinity, so non-finite values encode as null.
type Years float64

func (y Years) MarshalJSON() ([]byte, error) {
	f := float64(y)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

func (y *Years) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*y = Years(math.Inf(1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*y = Years(f)
	return nil
}

// Financial is the output of the financial engine (spec.md §3/§4.4).
type Financial struct {
	AnnualEnergyKWh            float64 `json:"annual_energy_kwh"`
	AnnualSavings              float64 `json:"annual_savings"`
	InstallationCost           float64 `json:"installation_cost"`
	PaybackYears               Years   `json:"payback_years"`
	LifetimeProfit             float64 `json:"lifetime_profit"`
	SubsidyAmount              float64 `json:"subsidy_amount"`
	NetCostAfterSubsidy        float64 `json:"net_cost_after_subsidy"`
	PaybackYearsAfterSubsidy   Years   `json:"payback_years_after_subsidy"`
	LifetimeProfitAfterSubsidy float64 `json:"lifetime_profit_after_subsidy"`
	SystemSizeKWp              float64 `json:"system_size_kwp"`
	RequiredLandAreaM2         float64 `json:"required_land_area_m2"`
}

// AnalysisRecord is the persisted row for one successful pipeline
// invocation (spec.md §3). It is created once and never mutated.
type AnalysisRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`

	SolarIrradiance float64 `json:"solar_irradiance"`
	CloudCoverPct   float64 `json:"cloud_cover_pct"`
	SlopeDegrees    float64 `json:"slope_degrees"`
	GridDistanceKM  float64 `json:"grid_distance_km"`

	Score     int       `json:"score"`
	Grade     Grade     `json:"grade"`
	SubScores SubScores `json:"sub_scores"`

	AnnualEnergyKWh  float64 `json:"annual_energy_kwh"`
	InstallationCost float64 `json:"installation_cost"`
	PaybackYears     float64 `json:"payback_years"`
	LifetimeProfit   float64 `json:"lifetime_profit"`

	AISummary  string `json:"ai_summary"`
	AIProvider string `json:"ai_provider"`
}

// RegionKey is a 5x5 degree calibrator bucket (spec.md §3/§4.3).
type RegionKey struct {
	LatBucket float64
	LngBucket float64
}

// CalibratorCell is the persisted-shape view of one region's learned state.
type CalibratorCell struct {
	EMADelta    float64 `json:"ema_delta"`
	SampleCount int     `json:"sample_count"`
}

// Response is the full assembled result returned to the caller (spec.md §6).
type Response struct {
	Verdict
	Financial
	Features
	AISummary  string `json:"ai_summary"`
	AIProvider string `json:"ai_provider"`
	RequestID  string `json:"request_id"`
}
