package minefield

import "iter"

type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Layout is the hidden mine placement of a grid.
type Layout struct {
	rows, cols int
	mines      []bool
}

func NewLayout(rows, cols int) Layout {
	return Layout{rows: rows, cols: cols, mines: make([]bool, rows*cols)}
}

func (l Layout) Rows() int { return l.rows }
func (l Layout) Cols() int { return l.cols }

func (l Layout) InRange(row, col int) bool {
	return 0 <= row && row < l.rows && 0 <= col && col < l.cols
}

func (l Layout) IsMine(row, col int) bool {
	return l.mines[row*l.cols+col]
}

func (l Layout) Place(row, col int) {
	l.mines[row*l.cols+col] = true
}

func (l Layout) Clear(row, col int) {
	l.mines[row*l.cols+col] = false
}

func (l Layout) Count() (n int) {
	for _, m := range l.mines {
		if m {
			n++
		}
	}
	return
}

// neighbours yields the in-range cells of the 8-neighbourhood of row:col,
// never the cell itself.
func (l Layout) neighbours(row, col int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				r, c := row+dr, col+dc
				if (dr != 0 || dc != 0) && l.InRange(r, c) {
					if !yield(r, c) {
						return
					}
				}
			}
		}
	}
}

// Adjacent counts the mines around row:col.
func (l Layout) Adjacent(row, col int) int {
	n := 0
	for r, c := range l.neighbours(row, col) {
		if l.IsMine(r, c) {
			n++
		}
	}
	return n
}

// capacity is the number of cells that may hold a mine when row:col has to
// stay a zero cell.
func (l Layout) capacity(row, col int) int {
	reserved := 1
	for range l.neighbours(row, col) {
		reserved++
	}
	return l.rows*l.cols - reserved
}
