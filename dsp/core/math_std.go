//go:build !fastmath

package core

import "math"

func exp2(x float64) float64 {
	return math.Exp2(x)
}

func log2(x float64) float64 {
	return math.Log2(x)
}

func sqrt(x float64) float64 {
	return math.Sqrt(x)
}
