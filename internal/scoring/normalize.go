package scoring

import "math"

// gaussian maps x to (0,1] peaking at mu with spread sigma.
func gaussian(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}

// sigmoid maps x to (0,1), rising around the midpoint m at rate k.
func sigmoid(x, m, k float64) float64 {
	return 1 / (1 + math.Exp(-k*(x-m)))
}

// invertedSigmoid is 1-sigmoid: falls around m instead of rising.
func invertedSigmoid(x, m, k float64) float64 {
	return 1 - sigmoid(x, m, k)
}

// step returns one of a fixed set of plateau values depending on which
// threshold bucket x falls into. thresholds must be ascending; values has
// one more entry than thresholds.
func step(x float64, thresholds []float64, values []float64) float64 {
	for i, t := range thresholds {
		if x < t {
			return values[i]
		}
	}
	return values[len(values)-1]
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
