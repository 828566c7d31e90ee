package gf2

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSparse(t *testing.T) {
	m, err := NewSparse(2, 4, [][]int{{3, 0, 1}, {2, 2, 1}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3}, m.Row(0))
	assert.Equal(t, []int{1}, m.Row(1))
	assert.Equal(t, 4, m.Size())
	assert.Equal(t, "1101\n0100\n", m.String())

	_, err = NewSparse(1, 2, [][]int{{2}})
	assert.Error(t, err)
	_, err = NewSparse(2, 2, [][]int{{1}})
	assert.Error(t, err)
}

func TestSparseColumns(t *testing.T) {
	m, err := NewSparse(2, 5, [][]int{{0, 2}, {1, 4}})
	require.NoError(t, err)

	m.SwapCols(0, 4)
	assert.Equal(t, []int{2, 4}, m.Row(0))
	assert.Equal(t, []int{0, 1}, m.Row(1))
	assert.Equal(t, []int{4, 1, 2, 3, 0}, m.ColumnOrder())

	m.MoveCol(4, 1)
	assert.Equal(t, []int{1, 3}, m.Row(0))
	assert.Equal(t, []int{0, 2}, m.Row(1))
	assert.Equal(t, []int{4, 0, 1, 2, 3}, m.ColumnOrder())
	assert.True(t, m.Test(0, 1))
	assert.False(t, m.Test(0, 0))

	m.MoveCol(0, 3)
	assert.Equal(t, []int{0, 1, 2, 4, 3}, m.ColumnOrder())
	assert.Equal(t, []int{0, 2}, m.Row(0))
	assert.Equal(t, []int{1, 3}, m.Row(1))

	m.SwapRows(0, 1)
	assert.Equal(t, []int{1, 3}, m.Row(0))
}

func TestSparseSliceTranspose(t *testing.T) {
	m, err := NewSparse(3, 3, [][]int{{0, 1}, {1, 2}, {0, 2}})
	require.NoError(t, err)

	tr := m.Transpose()
	assert.Equal(t, [][]int{{0, 2}, {0, 1}, {1, 2}}, tr.Elements())

	s := m.Slice(1, 1, 2, 2)
	assert.Equal(t, 2, s.Rows())
	assert.Equal(t, 2, s.Cols())
	assert.Equal(t, []int{0, 1}, s.Row(0))
	assert.Equal(t, []int{1}, s.Row(1))
}

func TestDense(t *testing.T) {
	tests := []struct {
		cols int
	}{
		{3}, {64}, {65}, {130},
	}
	for i, test := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			m := NewDense(2, test.cols)
			last := test.cols - 1
			m.Set(0, 0, true)
			m.Set(0, last, true)
			m.Set(1, last, true)
			assert.Equal(t, 0, m.First(0, 0))
			assert.Equal(t, last, m.First(0, 1))
			assert.Equal(t, -1, m.First(1, last+1))

			m.AddRow(0, 1)
			assert.False(t, m.Test(0, last))
			assert.Equal(t, -1, m.First(0, 1))

			m.SwapCols(0, last)
			assert.True(t, m.Test(0, last))
			assert.True(t, m.Test(1, 0))

			m.SwapRows(0, 1)
			assert.True(t, m.Test(0, 0))

			m.Flip(0, 0)
			assert.False(t, m.Test(0, 0))
		})
	}
}

func TestDenseMoveColSparse(t *testing.T) {
	m := NewDense(1, 5)
	m.Set(0, 4, true)
	m.Set(0, 1, true)
	m.MoveCol(4, 0)
	s := m.Sparse(0, 5)
	assert.Equal(t, []int{0, 2}, s.Row(0))

	m.MoveCol(0, 3)
	s = m.Sparse(1, 3)
	assert.Equal(t, []int{0, 2}, s.Row(0))
}
