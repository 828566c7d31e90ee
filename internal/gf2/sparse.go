package gf2

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// SparseBitMatrix is a GF(2) matrix whose rows are sets of column indices.
// Column swaps and moves are tracked as a permutation so they cost O(1) and O(distance),
// which keeps triangularization of large parity-check matrices tractable.
type SparseBitMatrix struct {
	cols  int
	rows  [][]int // physical column ids, sorted
	colAt []int   // logical column -> physical id
	posOf []int   // physical id -> logical column
}

// NewSparse creates a rows x cols matrix where elements[i] lists the set columns of row i.
// Listing a column twice in a row cancels it.
func NewSparse(rows, cols int, elements [][]int) (*SparseBitMatrix, error) {
	if len(elements) != rows {
		return nil, fmt.Errorf("expected %v rows but found %v", rows, len(elements))
	}
	m := &SparseBitMatrix{
		cols:  cols,
		rows:  make([][]int, rows),
		colAt: make([]int, cols),
		posOf: make([]int, cols),
	}
	for i := range m.colAt {
		m.colAt[i] = i
		m.posOf[i] = i
	}
	for r, elems := range elements {
		row := append([]int(nil), elems...)
		slices.Sort(row)
		out := row[:0]
		for _, c := range row {
			if c < 0 || c >= cols {
				return nil, fmt.Errorf("column %v out of range in row %v", c, r)
			}
			if len(out) > 0 && out[len(out)-1] == c {
				out = out[:len(out)-1]
				continue
			}
			out = append(out, c)
		}
		m.rows[r] = out
	}
	return m, nil
}

func (m *SparseBitMatrix) Rows() int { return len(m.rows) }
func (m *SparseBitMatrix) Cols() int { return m.cols }

// Size is the number of set elements.
func (m *SparseBitMatrix) Size() int {
	count := 0
	for _, r := range m.rows {
		count += len(r)
	}
	return count
}

//Test returns true if element (row, col) is set.
func (m *SparseBitMatrix) Test(row, col int) bool {
	_, found := slices.BinarySearch(m.rows[row], m.colAt[col])
	return found
}

// Row returns the sorted set columns of row i.
func (m *SparseBitMatrix) Row(i int) []int {
	result := make([]int, len(m.rows[i]))
	for k, c := range m.rows[i] {
		result[k] = m.posOf[c]
	}
	slices.Sort(result)
	return result
}

// RowWeight is the number of set columns in row i.
func (m *SparseBitMatrix) RowWeight(i int) int {
	return len(m.rows[i])
}

func (m *SparseBitMatrix) SwapRows(a, b int) {
	m.rows[a], m.rows[b] = m.rows[b], m.rows[a]
}

func (m *SparseBitMatrix) SwapCols(a, b int) {
	pa, pb := m.colAt[a], m.colAt[b]
	m.colAt[a], m.colAt[b] = pb, pa
	m.posOf[pa], m.posOf[pb] = b, a
}

// MoveCol moves column from to position to, shifting the columns in between by one.
func (m *SparseBitMatrix) MoveCol(from, to int) {
	moved := m.colAt[from]
	if from > to {
		copy(m.colAt[to+1:from+1], m.colAt[to:from])
	} else {
		copy(m.colAt[from:to], m.colAt[from+1:to+1])
	}
	m.colAt[to] = moved
	lo, hi := from, to
	if lo > hi {
		lo, hi = hi, lo
	}
	for i := lo; i <= hi; i++ {
		m.posOf[m.colAt[i]] = i
	}
}

// ColumnOrder maps each column to the original column it came from.
func (m *SparseBitMatrix) ColumnOrder() []int {
	return append([]int(nil), m.colAt...)
}

// Slice copies the submatrix starting at (row, col) with the given dimensions.
func (m *SparseBitMatrix) Slice(row, col, rows, cols int) *SparseBitMatrix {
	elements := make([][]int, rows)
	for i := 0; i < rows; i++ {
		for _, c := range m.Row(row + i) {
			if c >= col && c < col+cols {
				elements[i] = append(elements[i], c-col)
			}
		}
	}
	result, _ := NewSparse(rows, cols, elements)
	return result
}

// Transpose creates a new matrix with rows and columns exchanged.
func (m *SparseBitMatrix) Transpose() *SparseBitMatrix {
	elements := make([][]int, m.cols)
	for r := range m.rows {
		for _, c := range m.Row(r) {
			elements[c] = append(elements[c], r)
		}
	}
	result, _ := NewSparse(m.cols, len(m.rows), elements)
	return result
}

// Elements returns every row in logical column order.
func (m *SparseBitMatrix) Elements() [][]int {
	result := make([][]int, len(m.rows))
	for i := range m.rows {
		result[i] = m.Row(i)
	}
	return result
}

func (m *SparseBitMatrix) String() string {
	var sb strings.Builder
	for i := range m.rows {
		line := make([]byte, m.cols)
		for k := range line {
			line[k] = '0'
		}
		for _, c := range m.Row(i) {
			line[c] = '1'
		}
		sb.Write(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
