package minefield

// CycleAnnotation moves a cell through concealed, flagged, questioned and
// back to concealed. A concealed cell goes straight to questioned when no
// flags are left.
func (f *Minefield) CycleAnnotation(row, col int) error {
	if err := f.check(row, col); err != nil {
		return err
	}
	if f.IsGameOver() {
		return nil
	}
	i := f.index(row, col)
	switch f.cells[i].kind {
	case Concealed:
		if f.flags > 0 {
			f.flag(i)
		} else {
			f.cells[i] = CellState{kind: Questioned}
		}
	case Flagged:
		f.unflag(i, Questioned)
	case Questioned:
		f.cells[i] = CellState{kind: Concealed}
	}
	return nil
}

// Flag marks a concealed or questioned cell as a mine. Without flags left
// it does nothing.
func (f *Minefield) Flag(row, col int) error {
	if err := f.check(row, col); err != nil {
		return err
	}
	if f.IsGameOver() {
		return nil
	}
	i := f.index(row, col)
	switch f.cells[i].kind {
	case Concealed, Questioned:
		if f.flags > 0 {
			f.flag(i)
		}
	}
	return nil
}

func (f *Minefield) Question(row, col int) error {
	if err := f.check(row, col); err != nil {
		return err
	}
	if f.IsGameOver() {
		return nil
	}
	i := f.index(row, col)
	switch f.cells[i].kind {
	case Concealed:
		f.cells[i] = CellState{kind: Questioned}
	case Flagged:
		f.unflag(i, Questioned)
	}
	return nil
}

// Hide removes any annotation from a cell that is not revealed.
func (f *Minefield) Hide(row, col int) error {
	if err := f.check(row, col); err != nil {
		return err
	}
	if f.IsGameOver() {
		return nil
	}
	i := f.index(row, col)
	switch f.cells[i].kind {
	case Questioned:
		f.cells[i] = CellState{kind: Concealed}
	case Flagged:
		f.unflag(i, Concealed)
	}
	return nil
}

// flag and unflag are the only places where a player's flag changes the
// counters; checkWin is the only place a game is won.
func (f *Minefield) flag(i int) {
	f.cells[i] = CellState{kind: Flagged}
	f.flags--
	if f.layout.mines[i] {
		f.minesRemaining--
	}
	f.checkWin()
}

// checkWin ends the game once every mine is flagged and no flag is spare.
func (f *Minefield) checkWin() {
	if f.minesRemaining == 0 && f.flags == 0 {
		f.outcome = Won
		Log.WithFields(f.fields()).Debug("all mines flagged")
	}
}

func (f *Minefield) unflag(i int, to Kind) {
	f.cells[i] = CellState{kind: to}
	f.flags++
	if f.layout.mines[i] {
		f.minesRemaining++
	}
}
