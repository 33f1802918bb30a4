package minefield

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	ErrTooManyMines      = errors.New("too many mines for the grid")
	ErrOutOfRange        = errors.New("cell out of range")
	ErrInvalidLayout     = errors.New("invalid mine layout")
	ErrCorruptSnapshot   = errors.New("corrupt snapshot")
)

// OutOfRangeError is the panic value of queries called with coordinates
// outside the grid.
type OutOfRangeError struct {
	Row, Col   int
	Rows, Cols int
}

// [OutOfRangeError] implements [error]
func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: %d:%d not in %dx%d", ErrOutOfRange, e.Row, e.Col, e.Rows, e.Cols)
}

func (e *OutOfRangeError) Unwrap() error {
	return ErrOutOfRange
}
