package minefield

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

type Outcome int

const (
	Playing Outcome = iota
	Won
	Lost
)

func (o Outcome) String() string {
	switch o {
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "playing"
	}
}

// Minefield is a single game: the hidden layout, what the player has found
// out about every cell, and the flag and mine counters. It is not safe for
// concurrent use.
type Minefield struct {
	rows, cols, mineCount int

	layout Layout
	cells  []CellState

	flags          int // flags the player may still place
	minesRemaining int // mines not yet correctly flagged
	firstMoveTaken bool
	outcome        Outcome
	exploded       int // index of the mine that ended the game, -1 if none

	gen Generator
}

type Option func(*Minefield)

// WithGenerator replaces the random mine placement.
func WithGenerator(g Generator) Option {
	return func(f *Minefield) { f.gen = g }
}

// WithRand seeds the default random placement.
func WithRand(r Intner) Option {
	return func(f *Minefield) { f.gen = RandomLayout{Rand: r} }
}

func validateParams(rows, cols, mines int) error {
	if rows <= 0 || cols <= 0 || rows > math.MaxInt32/cols {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}
	if mines < 0 || mines > 0 && mines >= rows*cols-1 {
		return fmt.Errorf("%w: %d mines on %dx%d", ErrTooManyMines, mines, rows, cols)
	}
	return nil
}

// New creates a concealed minefield. Mines are placed on the first Reveal.
func New(rows, cols, mines int, opts ...Option) (*Minefield, error) {
	if err := validateParams(rows, cols, mines); err != nil {
		return nil, err
	}
	f := &Minefield{
		rows:           rows,
		cols:           cols,
		mineCount:      mines,
		layout:         NewLayout(rows, cols),
		cells:          make([]CellState, rows*cols),
		flags:          mines,
		minesRemaining: mines,
		exploded:       -1,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.gen == nil {
		f.gen = RandomLayout{Rand: NewRand()}
	}
	return f, nil
}

func (f *Minefield) Rows() int           { return f.rows }
func (f *Minefield) Columns() int        { return f.cols }
func (f *Minefield) MineCount() int      { return f.mineCount }
func (f *Minefield) FlagsRemaining() int { return f.flags }
func (f *Minefield) MinesRemaining() int { return f.minesRemaining }
func (f *Minefield) FirstMoveTaken() bool {
	return f.firstMoveTaken
}
func (f *Minefield) Outcome() Outcome { return f.outcome }
func (f *Minefield) IsGameOver() bool { return f.outcome != Playing }

func (f *Minefield) InRange(row, col int) bool {
	return f.layout.InRange(row, col)
}

// check is the precondition of every mutator.
func (f *Minefield) check(row, col int) error {
	if !f.InRange(row, col) {
		return fmt.Errorf("%w: %d:%d not in %dx%d", ErrOutOfRange, row, col, f.rows, f.cols)
	}
	return nil
}

// index panics with *OutOfRangeError, queries have no error to return.
func (f *Minefield) index(row, col int) int {
	if !f.InRange(row, col) {
		panic(&OutOfRangeError{Row: row, Col: col, Rows: f.rows, Cols: f.cols})
	}
	return row*f.cols + col
}

func (f *Minefield) coords(i int) (row, col int) {
	return i / f.cols, i % f.cols
}

func (f *Minefield) State(row, col int) CellState {
	return f.cells[f.index(row, col)]
}

// IsMine reports the hidden layout. Before the first move no cell is mined.
func (f *Minefield) IsMine(row, col int) bool {
	return f.layout.mines[f.index(row, col)]
}

func (f *Minefield) AdjacentMines(row, col int) int {
	f.index(row, col)
	return f.layout.Adjacent(row, col)
}

// Exploded returns the mine whose reveal lost the game.
func (f *Minefield) Exploded() (row, col int, ok bool) {
	if f.exploded < 0 {
		return 0, 0, false
	}
	row, col = f.coords(f.exploded)
	return row, col, true
}

// [Minefield] implements [fmt.Stringer]
func (f *Minefield) String() string {
	var b strings.Builder
	for row := range f.rows {
		for col := range f.cols {
			if col > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(f.cells[row*f.cols+col].String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (f *Minefield) fields() logrus.Fields {
	return logrus.Fields{
		"rows":           f.rows,
		"cols":           f.cols,
		"mines":          f.mineCount,
		"flagsRemaining": f.flags,
		"minesRemaining": f.minesRemaining,
		"outcome":        f.outcome.String(),
	}
}
