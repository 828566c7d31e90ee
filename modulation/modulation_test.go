package modulation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/nathanhack/fec/internal/logsum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var algorithms = []logsum.Algorithm{logsum.Exact, logsum.Linear, logsum.Approximate}

func TestNew(t *testing.T) {
	tests := []struct {
		name          string
		constellation [][]float64
	}{
		{"empty", nil},
		{"one point", [][]float64{{1}}},
		{"three points", [][]float64{{0}, {1}, {2}}},
		{"no dimension", [][]float64{{}, {}}},
		{"mixed dimension", [][]float64{{0}, {1, 1}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := New(test.constellation)
			assert.Error(t, err)
		})
	}

	m, err := New([][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 0}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1}})
	require.NoError(t, err)
	assert.Equal(t, 3, m.WordWidth())
	assert.Equal(t, 3, m.Dimension())
	assert.InDelta(t, 1.0, m.MinDistance(), 1e-12)
}

func TestConstellations(t *testing.T) {
	for name, m := range map[string]*Modulation{"bpsk": BPSK(), "qpsk": QPSK(), "pam4": PAM4()} {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, 1.0, m.AvgPower(), 1e-12)
		})
	}
	assert.Equal(t, 2, QPSK().WordWidth())
	assert.Equal(t, 2, QPSK().Dimension())
	assert.InDelta(t, 2/math.Sqrt(5), PAM4().MinDistance(), 1e-12)
}

func TestPam4Gray(t *testing.T) {
	m := PAM4()
	labels := []int{0, 1, 2, 3}
	points := m.Constellation()
	// sort labels by amplitude
	for i := range labels {
		for j := i + 1; j < len(labels); j++ {
			if points[labels[j]][0] < points[labels[i]][0] {
				labels[i], labels[j] = labels[j], labels[i]
			}
		}
	}
	assert.Equal(t, []int{0, 1, 3, 2}, labels)
	for i := 1; i < len(labels); i++ {
		diff := labels[i] ^ labels[i-1]
		assert.Equal(t, 0, diff&(diff-1), "labels %v and %v", labels[i-1], labels[i])
	}
}

func TestModulate(t *testing.T) {
	symbols, err := BPSK().Modulate([]uint8{0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 1, 1}, symbols)

	a := 1 / math.Sqrt2
	symbols, err = QPSK().Modulate([]uint8{1, 0, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{a, -a, -a, a}, symbols)

	_, err = QPSK().Modulate([]uint8{1, 0, 0})
	assert.Error(t, err)
}

func TestNoiselessRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	word := make([]uint8, 600)
	for i := range word {
		word[i] = uint8(r.Intn(2))
	}
	for name, m := range map[string]*Modulation{"bpsk": BPSK(), "qpsk": QPSK(), "pam4": PAM4()} {
		for _, alg := range algorithms {
			t.Run(name+" "+alg.String(), func(t *testing.T) {
				symbols, err := m.Modulate(word)
				require.NoError(t, err)
				require.Len(t, symbols, len(word)/m.WordWidth()*m.Dimension())
				llr, err := m.Demodulate(symbols, 0.1, alg, 0)
				require.NoError(t, err)
				for i, l := range llr {
					assert.Equal(t, word[i] == 1, l > 0, "bit %v", i)
				}
			})
		}
	}
}

func TestBpskLlr(t *testing.T) {
	symbols := []float64{-1.5, -0.2, 0, 0.3, 2}
	variance := 0.5
	for _, alg := range algorithms {
		llr, err := BPSK().Demodulate(symbols, variance, alg, 0)
		require.NoError(t, err)
		for i, y := range symbols {
			assert.InDelta(t, 2*y/variance, llr[i], 1e-12)
		}
	}
}

func TestQpskSeparates(t *testing.T) {
	symbols := []float64{0.3, -0.9, -0.1, 0.4}
	variance := 0.8
	a := 1 / math.Sqrt2
	for _, alg := range []logsum.Algorithm{logsum.Exact, logsum.Approximate} {
		llr, err := QPSK().Demodulate(symbols, variance, alg, 0)
		require.NoError(t, err)
		for i, y := range symbols {
			assert.InDelta(t, 2*a*y/variance, llr[i], 1e-9)
		}
	}
}

func TestScalingFactor(t *testing.T) {
	symbols := []float64{0.3, -0.5}
	plain, err := BPSK().Demodulate(symbols, 1, logsum.Approximate, 1)
	require.NoError(t, err)
	scaled, err := BPSK().Demodulate(symbols, 1, logsum.Approximate, 0.5)
	require.NoError(t, err)
	for i := range plain {
		assert.InDelta(t, plain[i]/2, scaled[i], 1e-12)
	}

	exact, err := BPSK().Demodulate(symbols, 1, logsum.Exact, 0.5)
	require.NoError(t, err)
	assert.Equal(t, plain, exact)
}

func TestDemodulateErrors(t *testing.T) {
	_, err := QPSK().Demodulate([]float64{1, 2, 3}, 1, logsum.Exact, 0)
	assert.Error(t, err)
	_, err = BPSK().Demodulate([]float64{1}, 0, logsum.Exact, 0)
	assert.Error(t, err)
	_, err = BPSK().Demodulate([]float64{1}, math.NaN(), logsum.Exact, 0)
	assert.Error(t, err)
	_, err = BPSK().Demodulate([]float64{1}, 1, logsum.Algorithm(7), 0)
	assert.Error(t, err)
}
