package ldpc

import (
	"context"
	"strconv"
	"testing"

	mat "github.com/nathanhack/sparsemat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGallager(t *testing.T) {
	tests := []struct {
		n, wc, wr int
	}{
		{12, 3, 4},
		{96, 3, 6},
		{200, 4, 8},
	}
	for i, test := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			h, err := Gallager(test.n, test.wc, test.wr, int64(i))
			require.NoError(t, err)
			rows, cols := h.Dims()
			assert.Equal(t, test.n/test.wr*test.wc, rows)
			assert.Equal(t, test.n, cols)
			for r := 0; r < rows; r++ {
				assert.Len(t, h.Row(r).NonzeroArray(), test.wr)
			}
			for c := 0; c < cols; c++ {
				assert.Len(t, h.Column(c).NonzeroArray(), test.wc)
			}
		})
	}

	a, err := Gallager(96, 3, 6, 7)
	require.NoError(t, err)
	b, err := Gallager(96, 3, 6, 7)
	require.NoError(t, err)
	for r := 0; r < 48; r++ {
		assert.Equal(t, a.Row(r).NonzeroArray(), b.Row(r).NonzeroArray())
	}

	_, err = Gallager(96, 1, 6, 0)
	assert.Error(t, err)
	_, err = Gallager(96, 6, 6, 0)
	assert.Error(t, err)
	_, err = Gallager(97, 3, 6, 0)
	assert.Error(t, err)
}

func TestHamming(t *testing.T) {
	for _, parityBits := range []int{3, 4, 5} {
		t.Run(strconv.Itoa(parityBits), func(t *testing.T) {
			h, err := Hamming(parityBits)
			require.NoError(t, err)
			rows, cols := h.Dims()
			assert.Equal(t, parityBits, rows)
			assert.Equal(t, 1<<parityBits-1, cols)

			s, err := New(EncoderOptions{H: h}, DefaultDecoderOptions())
			require.NoError(t, err)
			assert.Equal(t, cols-parityBits, s.MsgSize())
		})
	}
	_, err := Hamming(2)
	assert.Error(t, err)
}

func TestDvbS2(t *testing.T) {
	for _, rate := range DvbS2Rates(DvbS2Short) {
		t.Run(rate, func(t *testing.T) {
			profile := dvbS2Profiles[DvbS2Short][rate]
			h, err := DvbS2(DvbS2Short, rate, 1)
			require.NoError(t, err)
			rows, cols := h.Dims()
			require.Equal(t, DvbS2Short-profile.k, rows)
			require.Equal(t, DvbS2Short, cols)

			for r := 0; r < rows; r++ {
				assert.GreaterOrEqual(t, len(h.Row(r).NonzeroArray()), 2, "row %v", r)
			}
			for _, c := range []int{0, profile.highCount - 1, profile.highCount, profile.k - 1, profile.k, DvbS2Short - 1} {
				expected := 3
				switch {
				case c < profile.highCount:
					expected = profile.highDegree
				case c == DvbS2Short-1:
					expected = 1
				case c >= profile.k:
					expected = 2
				}
				assert.Len(t, h.Column(c).NonzeroArray(), expected, "column %v", c)
			}
		})
	}

	assert.Len(t, DvbS2Rates(DvbS2Normal), 11)
	_, err := DvbS2(1000, "1/2", 0)
	assert.Error(t, err)
	_, err = DvbS2(DvbS2Short, "9/10", 0)
	assert.Error(t, err)
}

func TestDvbS2FromTable(t *testing.T) {
	h, err := DvbS2FromTable(1080, 360, [][]int{{0, 1}})
	require.NoError(t, err)
	rows, cols := h.Dims()
	assert.Equal(t, 720, rows)
	assert.Equal(t, 1080, cols)
	// q = 2, column i of the group sits on checks 2i and 2i+1
	assert.Equal(t, []int{6, 7}, h.Column(3).NonzeroArray())
	assert.Equal(t, []int{0, 360}, h.Row(0).NonzeroArray())
	assert.Equal(t, []int{0, 360, 361}, h.Row(1).NonzeroArray())

	_, err = DvbS2FromTable(1080, 100, [][]int{{0}})
	assert.Error(t, err)
	_, err = DvbS2FromTable(1080, 360, [][]int{{0}, {1}})
	assert.Error(t, err)
	_, err = DvbS2FromTable(1080, 360, [][]int{{720}})
	assert.Error(t, err)
}

func TestGirth(t *testing.T) {
	tests := []struct {
		h        mat.SparseMat
		maxGirth int
		expected int
	}{
		{mat.CSRIdentity(500), -1, -1},
		{mat.CSRIdentity(500), 4, -1},
		{mat.CSRMat(2, 2, 1, 1, 1, 1), -1, 4},
		{mat.CSRMat(2, 2, 1, 1, 1, 1), 6, 4},
		{mat.CSRMat(2, 2, 1, 0, 0, 1), -1, -1},
		{mat.CSRMat(4, 8, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 0, 1, 0, 0, 0, 0, 0, 1, 1), -1, 8},
		{mat.CSRMat(4, 8, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 0, 1, 0, 0, 0, 0, 0, 1, 1), 6, -1},
		{mat.CSRMat(3, 6, 1, 1, 1, 0, 0, 0, 0, 0, 1, 1, 1, 0, 1, 0, 0, 0, 1, 1), -1, 6},
		{mat.CSRMat(3, 6, 1, 1, 1, 0, 0, 0, 0, 0, 1, 1, 1, 0, 1, 0, 0, 0, 1, 1), 6, 6},
		{mat.CSRMat(3, 6, 1, 1, 1, 0, 0, 0, 0, 0, 1, 1, 1, 0, 1, 0, 0, 0, 1, 1), 4, -1},
	}
	for i, test := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			actual := GirthAtMost(context.Background(), test.h, test.maxGirth, 2)
			if actual != test.expected {
				t.Fatalf("expected %v but found %v", test.expected, actual)
			}
		})
	}

	h, err := Hamming(3)
	require.NoError(t, err)
	assert.Equal(t, 4, Girth(context.Background(), h, 0))
}
