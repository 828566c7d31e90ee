package gf2

import (
	"math/bits"
)

// BitMatrix is a dense GF(2) matrix with rows packed into 64 bit words.
type BitMatrix struct {
	cols int
	rows [][]uint64
}

func NewDense(rows, cols int) *BitMatrix {
	m := &BitMatrix{cols: cols, rows: make([][]uint64, rows)}
	words := (cols + 63) / 64
	for i := range m.rows {
		m.rows[i] = make([]uint64, words)
	}
	return m
}

func (m *BitMatrix) Rows() int { return len(m.rows) }
func (m *BitMatrix) Cols() int { return m.cols }

func (m *BitMatrix) Test(row, col int) bool {
	return m.rows[row][col/64]>>(uint(col)%64)&1 == 1
}

func (m *BitMatrix) Set(row, col int, v bool) {
	if v {
		m.rows[row][col/64] |= 1 << (uint(col) % 64)
	} else {
		m.rows[row][col/64] &^= 1 << (uint(col) % 64)
	}
}

// Flip toggles element (row, col).
func (m *BitMatrix) Flip(row, col int) {
	m.rows[row][col/64] ^= 1 << (uint(col) % 64)
}

// AddRow sets row dst to dst + src over GF(2).
func (m *BitMatrix) AddRow(dst, src int) {
	d, s := m.rows[dst], m.rows[src]
	for i := range d {
		d[i] ^= s[i]
	}
}

func (m *BitMatrix) SwapRows(a, b int) {
	m.rows[a], m.rows[b] = m.rows[b], m.rows[a]
}

func (m *BitMatrix) SwapCols(a, b int) {
	for r := range m.rows {
		va, vb := m.Test(r, a), m.Test(r, b)
		if va != vb {
			m.Set(r, a, vb)
			m.Set(r, b, va)
		}
	}
}

// MoveCol moves column from to position to, shifting the columns in between by one.
func (m *BitMatrix) MoveCol(from, to int) {
	for r := range m.rows {
		v := m.Test(r, from)
		if from > to {
			for c := from; c > to; c-- {
				m.Set(r, c, m.Test(r, c-1))
			}
		} else {
			for c := from; c < to; c++ {
				m.Set(r, c, m.Test(r, c+1))
			}
		}
		m.Set(r, to, v)
	}
}

// First returns the first set column of row at or after col, or -1 if there is none.
func (m *BitMatrix) First(row, col int) int {
	words := m.rows[row]
	for w := col / 64; w < len(words); w++ {
		word := words[w]
		if w == col/64 {
			word &^= (1 << (uint(col) % 64)) - 1
		}
		if word != 0 {
			c := w*64 + bits.TrailingZeros64(word)
			if c >= m.cols {
				return -1
			}
			return c
		}
	}
	return -1
}

// Sparse converts columns [col, col+cols) of every row to a SparseBitMatrix.
func (m *BitMatrix) Sparse(col, cols int) *SparseBitMatrix {
	elements := make([][]int, len(m.rows))
	for r := range m.rows {
		for c := m.First(r, col); c >= 0 && c < col+cols; c = m.First(r, c+1) {
			elements[r] = append(elements[r], c-col)
		}
	}
	result, _ := NewSparse(len(m.rows), cols, elements)
	return result
}
