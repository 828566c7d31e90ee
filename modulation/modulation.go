// Package modulation maps coded bits to constellation symbols and computes
// soft bit LLRs from received symbols.
package modulation

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/nathanhack/fec/internal/logsum"
	"gonum.org/v1/gonum/floats"
)

// Modulation is a constellation of 2^WordWidth points of Dimension reals each.
// Point i carries the word whose bit j is (i>>j)&1.
type Modulation struct {
	constellation [][]float64
	dimension     int
	wordWidth     int
}

func New(constellation [][]float64) (*Modulation, error) {
	if len(constellation) < 2 || bits.OnesCount(uint(len(constellation))) != 1 {
		return nil, fmt.Errorf("constellation size must be a power of two, found %v", len(constellation))
	}
	dimension := len(constellation[0])
	if dimension == 0 {
		return nil, fmt.Errorf("constellation points need at least one dimension")
	}
	m := &Modulation{
		dimension: dimension,
		wordWidth: bits.TrailingZeros(uint(len(constellation))),
	}
	for i, point := range constellation {
		if len(point) != dimension {
			return nil, fmt.Errorf("point %v has dimension %v, expected %v", i, len(point), dimension)
		}
		m.constellation = append(m.constellation, append([]float64(nil), point...))
	}
	return m, nil
}

func BPSK() *Modulation {
	m, _ := New([][]float64{{-1}, {1}})
	return m
}

// QPSK carries one bit per axis, which makes it Gray labelled.
func QPSK() *Modulation {
	a := 1 / math.Sqrt2
	m, _ := New([][]float64{{-a, -a}, {a, -a}, {-a, a}, {a, a}})
	return m
}

// PAM4 is Gray labelled along the amplitude axis: 00, 01, 11, 10 from lowest to highest.
func PAM4() *Modulation {
	a := 1 / math.Sqrt(5)
	m, _ := New([][]float64{{-3 * a}, {-a}, {3 * a}, {a}})
	return m
}

func (m *Modulation) Dimension() int { return m.dimension }
func (m *Modulation) WordWidth() int { return m.wordWidth }

func (m *Modulation) Constellation() [][]float64 {
	result := make([][]float64, len(m.constellation))
	for i, point := range m.constellation {
		result[i] = append([]float64(nil), point...)
	}
	return result
}

// AvgPower is the mean squared norm of the points.
func (m *Modulation) AvgPower() float64 {
	sum := 0.0
	for _, point := range m.constellation {
		sum += floats.Dot(point, point)
	}
	return sum / float64(len(m.constellation))
}

func (m *Modulation) MinDistance() float64 {
	min := math.Inf(1)
	for i := range m.constellation {
		for j := i + 1; j < len(m.constellation); j++ {
			min = math.Min(min, floats.Distance(m.constellation[i], m.constellation[j], 2))
		}
	}
	return min
}

// Modulate maps every WordWidth bits to one symbol of Dimension reals.
func (m *Modulation) Modulate(word []uint8) ([]float64, error) {
	if len(word)%m.wordWidth != 0 {
		return nil, fmt.Errorf("bit count %v not a multiple of %v", len(word), m.wordWidth)
	}
	n := len(word) / m.wordWidth
	symbols := make([]float64, 0, n*m.dimension)
	for i := 0; i < n; i++ {
		index := 0
		for j, b := range word[i*m.wordWidth : (i+1)*m.wordWidth] {
			index |= int(b&1) << uint(j)
		}
		symbols = append(symbols, m.constellation[index]...)
	}
	return symbols, nil
}

// Demodulate returns the LLR of every bit for symbols received through an AWGN
// channel of the given variance per real dimension. scalingFactor multiplies the
// Approximate output, zero means 1.
func (m *Modulation) Demodulate(symbols []float64, variance float64, alg logsum.Algorithm, scalingFactor float64) ([]float64, error) {
	if len(symbols)%m.dimension != 0 {
		return nil, fmt.Errorf("symbol size %v not a multiple of %v", len(symbols), m.dimension)
	}
	if !(variance > 0) {
		return nil, fmt.Errorf("invalid noise variance %v", variance)
	}
	if !alg.Valid() {
		return nil, fmt.Errorf("invalid algorithm %v", alg)
	}
	if scalingFactor == 0 || alg != logsum.Approximate {
		scalingFactor = 1
	}

	n := len(symbols) / m.dimension
	word := make([]float64, n*m.wordWidth)
	metrics := make([]float64, len(m.constellation))
	for i := 0; i < n; i++ {
		y := symbols[i*m.dimension : (i+1)*m.dimension]
		for k, point := range m.constellation {
			d := floats.Distance(y, point, 2)
			metrics[k] = -d * d / (2 * variance)
		}
		for j := 0; j < m.wordWidth; j++ {
			one, zero := math.Inf(-1), math.Inf(-1)
			for k, metric := range metrics {
				if k>>uint(j)&1 == 1 {
					one = alg.Add(one, metric)
				} else {
					zero = alg.Add(zero, metric)
				}
			}
			word[i*m.wordWidth+j] = scalingFactor * (one - zero)
		}
	}
	return word, nil
}
