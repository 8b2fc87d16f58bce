package nn

import "math"

// logisticSaturation bounds x*response for the "exp" mode; beyond it the
// logistic output is reported as exactly 0 or 1.
const logisticSaturation = 45.0

// Logistic is the bounded sigmoid used by the "exp" activation mode.
func Logistic(x, response float64) float64 {
	t := x * response
	if t < -logisticSaturation {
		return 0
	}
	if t > logisticSaturation {
		return 1
	}
	return 1.0 / (1.0 + math.Exp(-t))
}

// Tanh is the hyperbolic tangent of the response-scaled input.
func Tanh(x, response float64) float64 {
	return math.Tanh(x * response)
}

func finite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
