package permutation

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		sequence   []int
		inputSize  int
		outputSize int
		identity   bool
	}{
		{[]int{}, 0, 0, true},
		{[]int{0, 1, 2}, 3, 3, true},
		{[]int{2, 0, 1}, 3, 3, false},
		{[]int{0, 2}, 3, 2, false},
		{[]int{1, 1, 0}, 2, 3, false},
	}
	for i, test := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			p, err := New(test.sequence)
			require.NoError(t, err)
			assert.Equal(t, test.inputSize, p.InputSize())
			assert.Equal(t, test.outputSize, p.OutputSize())
			assert.Equal(t, test.identity, p.IsIdentity())
		})
	}

	_, err := New([]int{0, -1})
	assert.Error(t, err)
}

func TestNewSized(t *testing.T) {
	p, err := NewSized([]int{0, 2}, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, p.InputSize())
	assert.Equal(t, 2, p.OutputSize())

	out, err := p.DepermuteBlocks([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 2, 0, 0, 3, 0, 4, 0, 0}, out)

	_, err = NewSized([]int{0, 5}, 5)
	assert.Error(t, err)
}

func TestPermuteDepermute(t *testing.T) {
	p, err := New([]int{2, 0, 1, 0})
	require.NoError(t, err)

	out := make([]uint8, 4)
	Permute(p, []uint8{1, 0, 1}, out)
	assert.Equal(t, []uint8{1, 1, 0, 1}, out)

	llr := make([]float64, 3)
	p.Depermute([]float64{1, 2, 3, 4}, llr)
	assert.Equal(t, []float64{6, 3, 1}, llr)
}

func TestBlocks(t *testing.T) {
	p := Select([]bool{true, false, true})
	out, err := PermuteBlocks(p, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 4, 6}, out)

	back, err := p.DepermuteBlocks(out)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 3, 4, 0, 6}, back)

	_, err = PermuteBlocks(p, []float64{1, 2})
	assert.Error(t, err)
	_, err = p.DepermuteBlocks([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestRandom(t *testing.T) {
	a := Random(64, 7)
	b := Random(64, 7)
	assert.True(t, a.Equals(b))
	assert.Equal(t, 64, a.InputSize())

	seen := make(map[int]bool)
	for i := 0; i < a.OutputSize(); i++ {
		seen[a.At(i)] = true
	}
	assert.Len(t, seen, 64)
}
