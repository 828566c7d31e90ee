package logsum

import (
	"fmt"
	"math"
)

// Algorithm selects how log-domain sums log(e^a + e^b) are evaluated.
type Algorithm int

const (
	// Exact evaluates the log-sum-exp with log1p.
	Exact Algorithm = iota
	// Linear uses max plus a piecewise-linear correction table.
	Linear
	// Approximate uses max only (max-log).
	Approximate
)

func (a Algorithm) String() string {
	switch a {
	case Exact:
		return "Exact"
	case Linear:
		return "Linear"
	case Approximate:
		return "Approximate"
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

func (a Algorithm) Valid() bool {
	return a >= Exact && a <= Approximate
}

// Parse maps a case sensitive name to its algorithm.
func Parse(name string) (Algorithm, error) {
	for _, a := range []Algorithm{Exact, Linear, Approximate} {
		if a.String() == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown algorithm %q", name)
}

const (
	tableStep   = 8.0 // samples per unit
	tableLength = 64
)

var correctionTable = func() []float64 {
	t := make([]float64, tableLength+1)
	for i := range t {
		t[i] = math.Log1p(math.Exp(-float64(i) / tableStep))
	}
	return t
}()

// MaxLLR is the magnitude at which decoders saturate channel and prior LLRs.
// It keeps sums of opposing certainties finite.
const MaxLLR = 1e6

// Clamp limits l to [-MaxLLR, MaxLLR].
func Clamp(l float64) float64 {
	if l > MaxLLR {
		return MaxLLR
	}
	if l < -MaxLLR {
		return -MaxLLR
	}
	return l
}

// Correction approximates log(1+exp(-x)) for x >= 0 by linear interpolation,
// returning 0 beyond the table and for NaN.
func Correction(x float64) float64 {
	pos := x * tableStep
	if !(pos < tableLength) {
		return 0
	}
	if pos < 0 {
		pos = 0
	}
	i := int(pos)
	frac := pos - float64(i)
	return correctionTable[i] + (correctionTable[i+1]-correctionTable[i])*frac
}

// Add returns log(e^a + e^b) evaluated with alg.
func (alg Algorithm) Add(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	if math.IsInf(a, 1) || math.IsInf(b, 1) {
		return math.Inf(1)
	}
	max, diff := a, a-b
	if b > a {
		max, diff = b, b-a
	}
	switch alg {
	case Exact:
		return max + math.Log1p(math.Exp(-diff))
	case Linear:
		return max + Correction(diff)
	}
	return max
}

// Sum folds Add over values, returning -Inf for an empty slice.
func (alg Algorithm) Sum(values ...float64) float64 {
	acc := math.Inf(-1)
	for _, v := range values {
		acc = alg.Add(acc, v)
	}
	return acc
}

// Xor returns the LLR of the XOR of two bits with LLRs a and b, where a positive
// LLR favours 1.
func (alg Algorithm) Xor(a, b float64) float64 {
	sign := -1.0
	if (a < 0) != (b < 0) {
		sign = 1.0
	}
	v := sign * math.Min(math.Abs(a), math.Abs(b))
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return v
	}
	switch alg {
	case Exact:
		v += math.Log1p(math.Exp(-math.Abs(a-b))) - math.Log1p(math.Exp(-math.Abs(a+b)))
	case Linear:
		v += Correction(math.Abs(a-b)) - Correction(math.Abs(a+b))
	}
	return v
}
