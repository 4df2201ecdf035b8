package acquisition

import "math"

// latBandIrradiance is the latitude-band fallback estimator for solar
// irradiance (spec.md §4.1 fallback 2), keyed by the upper bound of an
// absolute-latitude bucket.
var latBandIrradiance = []struct {
	maxAbsLat float64
	kwhM2Day  float64
}{
	{maxAbsLat: 15, kwhM2Day: 5.8},
	{maxAbsLat: 30, kwhM2Day: 5.2},
	{maxAbsLat: 45, kwhM2Day: 4.3},
	{maxAbsLat: 60, kwhM2Day: 3.1},
	{maxAbsLat: 90, kwhM2Day: 1.8},
}

func fallbackIrradiance(lat float64) float64 {
	abs := math.Abs(lat)
	for _, band := range latBandIrradiance {
		if abs <= band.maxAbsLat {
			return band.kwhM2Day
		}
	}
	return latBandIrradiance[len(latBandIrradiance)-1].kwhM2Day
}

// latBandWeather is the latitude-band fallback for the weather bundle.
var latBandWeather = []struct {
	maxAbsLat     float64
	windSpeed     float64
	temperatureC  float64
	humidityPct   float64
	cloudCoverPct float64
}{
	{maxAbsLat: 15, windSpeed: 3.0, temperatureC: 27, humidityPct: 70, cloudCoverPct: 45},
	{maxAbsLat: 30, windSpeed: 3.5, temperatureC: 22, humidityPct: 55, cloudCoverPct: 35},
	{maxAbsLat: 45, windSpeed: 4.0, temperatureC: 14, humidityPct: 60, cloudCoverPct: 50},
	{maxAbsLat: 60, windSpeed: 5.0, temperatureC: 5, humidityPct: 70, cloudCoverPct: 65},
	{maxAbsLat: 90, windSpeed: 6.5, temperatureC: -10, humidityPct: 75, cloudCoverPct: 70},
}

func fallbackWeather(lat float64) (wind, temp, humidity, cloud float64) {
	abs := math.Abs(lat)
	for _, band := range latBandWeather {
		if abs <= band.maxAbsLat {
			return band.windSpeed, band.temperatureC, band.humidityPct, band.cloudCoverPct
		}
	}
	last := latBandWeather[len(latBandWeather)-1]
	return last.windSpeed, last.temperatureC, last.humidityPct, last.cloudCoverPct
}

// regionalElevation is a coarse regional elevation table used only when
// both the primary and secondary elevation providers are unavailable.
// Slope defaults to 2 degrees in this fallback path.
var regionalElevation = []struct {
	name                           string
	minLat, maxLat, minLng, maxLng float64
	elevationM                     float64
}{
	{name: "india", minLat: 6, maxLat: 37, minLng: 68, maxLng: 97, elevationM: 300},
	{name: "europe", minLat: 35, maxLat: 71, minLng: -10, maxLng: 40, elevationM: 250},
	{name: "north-america", minLat: 15, maxLat: 72, minLng: -170, maxLng: -50, elevationM: 500},
	{name: "africa", minLat: -35, maxLat: 37, minLng: -20, maxLng: 55, elevationM: 600},
}

const fallbackSlopeDegrees = 2.0

func fallbackElevation(lat, lng float64) float64 {
	for _, r := range regionalElevation {
		if lat >= r.minLat && lat <= r.maxLat && lng >= r.minLng && lng <= r.maxLng {
			return r.elevationM
		}
	}
	return 400 // global default
}

// gridDistanceTable is the deterministic region table used when the
// caller does not supply grid_distance_km (spec.md §4.1).
var gridDistanceTable = []struct {
	name                           string
	minLat, maxLat, minLng, maxLng float64
	km                             float64
}{
	{name: "india", minLat: 6, maxLat: 37, minLng: 68, maxLng: 97, km: 12},
	{name: "europe", minLat: 35, maxLat: 71, minLng: -10, maxLng: 40, km: 6},
	{name: "north-america", minLat: 15, maxLat: 72, minLng: -170, maxLng: -50, km: 9},
	{name: "africa", minLat: -35, maxLat: 37, minLng: -20, maxLng: 55, km: 20},
}

const globalDefaultGridDistanceKM = 25.0

func regionalGridDistance(lat, lng float64) float64 {
	for _, r := range gridDistanceTable {
		if lat >= r.minLat && lat <= r.maxLat && lng >= r.minLng && lng <= r.maxLng {
			return r.km
		}
	}
	return globalDefaultGridDistanceKM
}
