package minefield

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Snapshot is the complete state of a [Minefield] in exported form. Cells
// use the codes of [CellState.Code].
type Snapshot struct {
	Rows, Cols, MineCount int
	Mines                 []bool
	Cells                 []int8
	FlagsRemaining        int
	MinesRemaining        int
	FirstMoveTaken        bool
	Outcome               Outcome
	Exploded              int
}

func (f *Minefield) Snapshot() Snapshot {
	s := Snapshot{
		Rows:           f.rows,
		Cols:           f.cols,
		MineCount:      f.mineCount,
		Mines:          make([]bool, len(f.layout.mines)),
		Cells:          make([]int8, len(f.cells)),
		FlagsRemaining: f.flags,
		MinesRemaining: f.minesRemaining,
		FirstMoveTaken: f.firstMoveTaken,
		Outcome:        f.outcome,
		Exploded:       f.exploded,
	}
	copy(s.Mines, f.layout.mines)
	for i, c := range f.cells {
		s.Cells[i] = c.Code()
	}
	return s
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrCorruptSnapshot}, args...)...)
}

// FromSnapshot rebuilds a minefield, refusing snapshots whose counters or
// revealed numbers disagree with the layout.
func FromSnapshot(s Snapshot, opts ...Option) (*Minefield, error) {
	f, err := New(s.Rows, s.Cols, s.MineCount, opts...)
	if err != nil {
		return nil, corrupt("%v", err)
	}
	n := s.Rows * s.Cols
	if len(s.Mines) != n || len(s.Cells) != n {
		return nil, corrupt("%d mines and %d cells on %dx%d", len(s.Mines), len(s.Cells), s.Rows, s.Cols)
	}
	copy(f.layout.mines, s.Mines)

	if s.FirstMoveTaken {
		if c := f.layout.Count(); c != s.MineCount {
			return nil, corrupt("layout has %d mines, want %d", c, s.MineCount)
		}
	} else if f.layout.Count() != 0 {
		return nil, corrupt("mines placed before the first move")
	}

	flagged, flaggedMines := 0, 0
	for i, code := range s.Cells {
		state, ok := stateFromCode(code)
		if !ok {
			return nil, corrupt("cell %d has code %d", i, code)
		}
		row, col := f.coords(i)
		switch state.kind {
		case Revealed:
			if !s.FirstMoveTaken {
				return nil, corrupt("cell %d:%d revealed before the first move", row, col)
			}
			if f.layout.mines[i] {
				return nil, corrupt("revealed mine at %d:%d", row, col)
			}
			if a := f.layout.Adjacent(row, col); int(state.adjacent) != a {
				return nil, corrupt("cell %d:%d shows %d, has %d", row, col, state.adjacent, a)
			}
		case Flagged:
			flagged++
			if f.layout.mines[i] {
				flaggedMines++
			}
		}
		f.cells[i] = state
	}

	if s.FlagsRemaining != s.MineCount-flagged {
		return nil, corrupt("%d flags remaining with %d placed", s.FlagsRemaining, flagged)
	}
	if s.MinesRemaining != s.MineCount-flaggedMines {
		return nil, corrupt("%d mines remaining with %d flagged", s.MinesRemaining, flaggedMines)
	}
	f.flags, f.minesRemaining = s.FlagsRemaining, s.MinesRemaining
	f.firstMoveTaken = s.FirstMoveTaken

	switch s.Outcome {
	case Playing:
		if s.Exploded != -1 {
			return nil, corrupt("explosion in a running game")
		}
		if s.FirstMoveTaken && s.MinesRemaining == 0 && s.FlagsRemaining == 0 {
			return nil, corrupt("every mine flagged in a running game")
		}
	case Won:
		if s.Exploded != -1 || s.MinesRemaining != 0 || s.FlagsRemaining != 0 {
			return nil, corrupt("won with unflagged mines")
		}
	case Lost:
		if s.Exploded < 0 || s.Exploded >= n || !f.layout.mines[s.Exploded] {
			return nil, corrupt("lost without an exploded mine")
		}
	default:
		return nil, corrupt("unknown outcome %d", s.Outcome)
	}
	f.outcome, f.exploded = s.Outcome, s.Exploded

	return f, nil
}

// [Minefield] implements [encoding.BinaryMarshaler]
func (f *Minefield) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(f.Snapshot()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary replaces f with the decoded game, keeping f's generator
// when it has one.
func (f *Minefield) UnmarshalBinary(data []byte) error {
	var opts []Option
	if f.gen != nil {
		opts = append(opts, WithGenerator(f.gen))
	}
	g, err := Decode(data, opts...)
	if err != nil {
		return err
	}
	*f = *g
	return nil
}

func Decode(data []byte, opts ...Option) (*Minefield, error) {
	var s Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	return FromSnapshot(s, opts...)
}
