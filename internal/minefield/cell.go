package minefield

import "strconv"

type Kind uint8

const (
	Concealed Kind = iota
	Flagged
	Questioned
	Revealed
)

func (k Kind) String() string {
	switch k {
	case Concealed:
		return "concealed"
	case Flagged:
		return "flagged"
	case Questioned:
		return "questioned"
	case Revealed:
		return "revealed"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// CellState is what the player knows about a cell. The adjacent mine count
// only exists for revealed cells.
type CellState struct {
	kind     Kind
	adjacent uint8
}

func revealed(n int) CellState {
	return CellState{kind: Revealed, adjacent: uint8(n)}
}

func (s CellState) Kind() Kind {
	return s.kind
}

// Adjacent returns the number of mines around a revealed cell.
func (s CellState) Adjacent() (n int, ok bool) {
	if s.kind != Revealed {
		return 0, false
	}
	return int(s.adjacent), true
}

func (s CellState) IsRevealed() bool {
	return s.kind == Revealed
}

// [CellState] implements [fmt.Stringer]
func (s CellState) String() string {
	switch s.kind {
	case Flagged:
		return "*"
	case Questioned:
		return "?"
	case Revealed:
		return strconv.Itoa(int(s.adjacent))
	default:
		return " "
	}
}

// Wire encoding of a cell state, shared by snapshots and the HTTP view.
const (
	codeQuestioned int8 = -3
	codeConcealed  int8 = -2
	codeFlagged    int8 = -1
	// 0-8 for a revealed cell with the given number of mined neighbours
)

func (s CellState) Code() int8 {
	switch s.kind {
	case Flagged:
		return codeFlagged
	case Questioned:
		return codeQuestioned
	case Revealed:
		return int8(s.adjacent)
	default:
		return codeConcealed
	}
}

func stateFromCode(c int8) (CellState, bool) {
	switch {
	case c == codeConcealed:
		return CellState{kind: Concealed}, true
	case c == codeFlagged:
		return CellState{kind: Flagged}, true
	case c == codeQuestioned:
		return CellState{kind: Questioned}, true
	case 0 <= c && c <= 8:
		return revealed(int(c)), true
	default:
		return CellState{}, false
	}
}
