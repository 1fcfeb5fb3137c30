//go:build fastmath

package core

import "github.com/meko-christian/algo-approx"

const ln2 = 0.693147180559945309417232121458

func exp2(x float64) float64 {
	return approx.FastExp(x * ln2)
}

func log2(x float64) float64 {
	return approx.FastLog(x) / ln2
}

func sqrt(x float64) float64 {
	return approx.FastSqrt(x)
}
