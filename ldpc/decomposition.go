package ldpc

import (
	"fmt"

	"github.com/cheggaaa/pb/v3"
	"github.com/nathanhack/fec/internal/gf2"
	"github.com/sirupsen/logrus"
)

// decomposition holds H column permuted into
//
//	| msg | gap | T |
//
// where T is lower triangular with a full diagonal. The gap columns are solved
// from the msg columns through DC, then T is forward substituted.
type decomposition struct {
	checks  [][]int // rows of the transformed H
	order   []int   // transformed column -> original column
	msgSize int
	gapSize int
	dc      [][]int // per gap parity: msg columns
	a       [][]int // per T row: msg columns
	b       [][]int // per T row: gap columns
	tt      [][]int // per T column: rows below the diagonal
}

func decompose(rows, cols int, elements [][]int) (*decomposition, error) {
	h, err := gf2.NewSparse(rows, cols, elements)
	if err != nil {
		return nil, fmt.Errorf("invalid parity check matrix: %w", err)
	}

	starts, err := triangulate(h)
	if err != nil {
		return nil, err
	}
	tSize := len(starts)
	fixDiagonal(h, starts)
	logrus.Debugf("ldpc: lower triangular block %v of %v rows", tSize, rows)

	d := &decomposition{msgSize: cols - rows}
	gap := rows - tSize
	tStart := cols - tSize

	cde := gf2.NewDense(gap, cols)
	for r := 0; r < gap; r++ {
		for _, c := range h.Row(tSize + r) {
			cde.Flip(r, c)
		}
	}
	for i := tSize - 1; i >= 0; i-- {
		col := tStart + i
		row := h.Row(i)
		for r := 0; r < gap; r++ {
			if cde.Test(r, col) {
				for _, c := range row {
					cde.Flip(r, c)
				}
			}
		}
	}

	for i := 0; i < tStart-d.msgSize; i++ {
		col := d.msgSize + i
		pivot := -1
		for r := i; r < gap; r++ {
			if cde.Test(r, col) {
				pivot = r
				break
			}
		}
		if pivot < 0 {
			for r := i; r < gap; r++ {
				if c := cde.First(r, 0); c >= 0 {
					pivot = r
					cde.SwapCols(c, col)
					h.SwapCols(c, col)
					break
				}
			}
		}
		if pivot < 0 {
			// no pivot left, the column carries a free bit
			cde.MoveCol(col, d.msgSize)
			h.MoveCol(col, d.msgSize)
			d.msgSize++
			i--
			continue
		}
		cde.SwapRows(pivot, i)
		for r := i + 1; r < gap; r++ {
			if cde.Test(r, col) {
				cde.AddRow(r, i)
			}
		}
	}
	d.gapSize = tStart - d.msgSize
	if d.msgSize > cols-rows {
		logrus.Debugf("ldpc: rank deficiency %v, msgSize grows to %v", d.msgSize-(cols-rows), d.msgSize)
	}

	for i := d.gapSize - 1; i >= 0; i-- {
		col := d.msgSize + i
		for r := 0; r < i; r++ {
			if cde.Test(r, col) {
				cde.AddRow(r, i)
			}
		}
	}

	d.dc = make([][]int, d.gapSize)
	for r := range d.dc {
		for c := cde.First(r, 0); c >= 0 && c < d.msgSize; c = cde.First(r, c+1) {
			d.dc[r] = append(d.dc[r], c)
		}
	}

	d.a = make([][]int, tSize)
	d.b = make([][]int, tSize)
	d.tt = make([][]int, tSize)
	for r := 0; r < tSize; r++ {
		for _, c := range h.Row(r) {
			switch {
			case c < d.msgSize:
				d.a[r] = append(d.a[r], c)
			case c < tStart:
				d.b[r] = append(d.b[r], c-d.msgSize)
			case c-tStart < r:
				d.tt[c-tStart] = append(d.tt[c-tStart], r)
			case c-tStart > r:
				return nil, fmt.Errorf("row %v of the triangular block is not lower triangular", r)
			}
		}
	}

	d.checks = h.Elements()
	d.order = h.ColumnOrder()
	return d, nil
}

// triangulate greedily moves the column touching the fewest active rows to the
// right and its rows to the bottom, until no active row is left. It returns, for
// each selected column from left to right, the first row of its block.
func triangulate(h *gf2.SparseBitMatrix) ([]int, error) {
	rows, cols := h.Rows(), h.Cols()
	colSizes := make([]int, cols)
	for r := 0; r < rows; r++ {
		for _, c := range h.Row(r) {
			colSizes[c]++
		}
	}

	var bar *pb.ProgressBar
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		bar = pb.StartNew(rows)
		defer bar.Finish()
	}

	var starts []int
	maxRow, removed := rows, rows
	for i := cols; i > 0 && maxRow > 0; i-- {
		for removed > maxRow {
			removed--
			for _, c := range h.Row(removed) {
				colSizes[c]--
			}
			if bar != nil {
				bar.Increment()
			}
		}

		minIndex, minValue := -1, 0
		for j := i - 1; j >= 0; j-- {
			if colSizes[j] > 0 && (minIndex < 0 || colSizes[j] < minValue) {
				minIndex, minValue = j, colSizes[j]
				if minValue == 1 {
					break
				}
			}
		}
		if minIndex < 0 {
			return nil, fmt.Errorf("%v rows left without free columns", maxRow)
		}

		h.SwapCols(minIndex, i-1)
		colSizes[minIndex], colSizes[i-1] = colSizes[i-1], colSizes[minIndex]
		bottom := maxRow
		for r := 0; r < bottom; r++ {
			if h.Test(r, i-1) {
				bottom--
				h.SwapRows(bottom, r)
				r--
			}
		}
		maxRow = bottom
		starts = append(starts, bottom)
	}

	for i, j := 0, len(starts)-1; i < j; i, j = i+1, j-1 {
		starts[i], starts[j] = starts[j], starts[i]
	}
	return starts, nil
}

// fixDiagonal moves the first row of the block of T column i to row i. Blocks
// are stacked in column order so the rows already placed are never disturbed.
func fixDiagonal(h *gf2.SparseBitMatrix, starts []int) {
	for i, r := range starts {
		h.SwapRows(i, r)
	}
}
