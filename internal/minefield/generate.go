package minefield

import (
	"fmt"
	"hash/maphash"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

// Generator places mines once the first cell to open is known. The returned
// layout must hold exactly mines mines, none of them on or next to
// safeRow:safeCol.
type Generator interface {
	Generate(rows, cols, mines, safeRow, safeCol int) (Layout, error)
}

func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

// Intner is the part of [rand.Rand] the placement needs.
type Intner interface {
	IntN(n int) int
}

// RandomLayout draws uniformly random layouts.
type RandomLayout struct {
	Rand Intner
}

func (g RandomLayout) Generate(rows, cols, mines, safeRow, safeCol int) (Layout, error) {
	l := NewLayout(rows, cols)
	if avail := l.capacity(safeRow, safeCol); mines > avail {
		return Layout{}, fmt.Errorf(
			"%w: %d mines but only %d cells away from %d:%d",
			ErrTooManyMines, mines, avail, safeRow, safeCol,
		)
	}

	/*
	 * Draw a cell, skipping the safe one. Plant a mine there and keep it
	 * only if the safe cell still has no mined neighbours; otherwise take
	 * it back and draw again.
	 */
	placed, draws := 0, 0
	for placed < mines {
		draws++
		row, col := g.Rand.IntN(rows), g.Rand.IntN(cols)
		if row == safeRow && col == safeCol || l.IsMine(row, col) {
			continue
		}
		l.Place(row, col)
		if l.Adjacent(safeRow, safeCol) == 0 {
			placed++
		} else {
			l.Clear(row, col)
		}
	}

	Log.WithFields(logrus.Fields{
		"rows": rows, "cols": cols, "mines": mines,
		"safe":  Point{safeRow, safeCol},
		"draws": draws,
	}).Debug("generated layout")

	return l, nil
}

// FixedLayout puts mines exactly at the listed cells.
type FixedLayout []Point

func (p FixedLayout) Generate(rows, cols, mines, safeRow, safeCol int) (Layout, error) {
	if len(p) != mines {
		return Layout{}, fmt.Errorf("%w: %d fixed mines, want %d", ErrInvalidLayout, len(p), mines)
	}
	l := NewLayout(rows, cols)
	for _, pt := range p {
		if !l.InRange(pt.Row, pt.Col) {
			return Layout{}, fmt.Errorf("%w: mine at %d:%d", ErrInvalidLayout, pt.Row, pt.Col)
		}
		if l.IsMine(pt.Row, pt.Col) {
			return Layout{}, fmt.Errorf("%w: duplicate mine at %d:%d", ErrInvalidLayout, pt.Row, pt.Col)
		}
		l.Place(pt.Row, pt.Col)
	}
	return l, nil
}
