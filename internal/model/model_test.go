package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Validate(t *testing.T) {
	valid := Query{Lat: 10, Lng: 20, PlantSizeKW: 5, ElectricityRate: 8}
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name string
		q    Query
	}{
		{"lat too low", Query{Lat: -91, Lng: 0, PlantSizeKW: 1, ElectricityRate: 1}},
		{"lat too high", Query{Lat: 91, Lng: 0, PlantSizeKW: 1, ElectricityRate: 1}},
		{"lng too low", Query{Lat: 0, Lng: -181, PlantSizeKW: 1, ElectricityRate: 1}},
		{"lng too high", Query{Lat: 0, Lng: 181, PlantSizeKW: 1, ElectricityRate: 1}},
		{"zero plant size", Query{Lat: 0, Lng: 0, PlantSizeKW: 0, ElectricityRate: 1}},
		{"negative plant size", Query{Lat: 0, Lng: 0, PlantSizeKW: -1, ElectricityRate: 1}},
		{"negative electricity rate", Query{Lat: 0, Lng: 0, PlantSizeKW: 1, ElectricityRate: -1}},
		{"negative available area", Query{Lat: 0, Lng: 0, PlantSizeKW: 1, ElectricityRate: 1, AvailableAreaM2: -1}},
		{"negative grid distance", Query{Lat: 0, Lng: 0, PlantSizeKW: 1, ElectricityRate: 1, GridDistanceKM: -1}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.q.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInputInvalid))
		})
	}
}

// Boundary: electricity_rate=0 is valid (the financial engine handles it
// by returning an infinite payback, not a validation rejection).
func TestQuery_Validate_ZeroElectricityRateIsValid(t *testing.T) {
	q := Query{Lat: 0, Lng: 0, PlantSizeKW: 1, ElectricityRate: 0}
	assert.NoError(t, q.Validate())
}

func TestQuery_UnmarshalJSON_TracksFieldPresence(t *testing.T) {
	var withArea Query
	require.NoError(t, json.Unmarshal([]byte(`{"lat":1,"lng":2,"plant_size_kw":5,"electricity_rate":8,"available_area_m2":100}`), &withArea))
	assert.True(t, withArea.HasAvailableArea)
	assert.False(t, withArea.HasGridDistance)
	assert.Equal(t, 100.0, withArea.AvailableAreaM2)

	var withoutArea Query
	require.NoError(t, json.Unmarshal([]byte(`{"lat":1,"lng":2,"plant_size_kw":5,"electricity_rate":8}`), &withoutArea))
	assert.False(t, withoutArea.HasAvailableArea)
	assert.False(t, withoutArea.HasGridDistance)

	var withGrid Query
	require.NoError(t, json.Unmarshal([]byte(`{"lat":1,"lng":2,"plant_size_kw":5,"electricity_rate":8,"grid_distance_km":0}`), &withGrid))
	assert.True(t, withGrid.HasGridDistance, "grid_distance_km:0 must still count as supplied")
	assert.Equal(t, 0.0, withGrid.GridDistanceKM)
}

func TestQuery_UnmarshalJSON_MalformedReturnsError(t *testing.T) {
	var q Query
	err := json.Unmarshal([]byte(`{"lat": "not-a-number"}`), &q)
	assert.Error(t, err)
}

func TestSubScores_Values(t *testing.T) {
	s := SubScores{Solar: 1, Temperature: 2, Elevation: 3, Wind: 4, Cloud: 5, Slope: 6, Grid: 7, PlantFeasibility: 8}
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, s.Values())
}

// An infinite payback must serialize as null rather than failing the
// whole response marshal, and null must come back as +Inf.
func TestYears_JSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(Years(3.5))
	require.NoError(t, err)
	assert.Equal(t, "3.5", string(b))

	b, err = json.Marshal(Years(math.Inf(1)))
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	b, err = json.Marshal(Financial{PaybackYears: Years(math.Inf(1))})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"payback_years":null`)

	var y Years
	require.NoError(t, json.Unmarshal([]byte("null"), &y))
	assert.True(t, math.IsInf(float64(y), 1))
}

func TestInputError_Unwraps(t *testing.T) {
	err := errInvalid("boom")
	assert.Equal(t, "boom", err.Error())
	assert.True(t, errors.Is(err, ErrInputInvalid))
}
