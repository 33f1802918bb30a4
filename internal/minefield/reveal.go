package minefield

import "fmt"

// Reveal opens row:col. The first reveal of a game places the mines so that
// row:col and its neighbours are clear. Revealed and flagged cells are left
// alone, as is everything once the game is over.
func (f *Minefield) Reveal(row, col int) error {
	if err := f.check(row, col); err != nil {
		return err
	}
	if f.IsGameOver() {
		return nil
	}
	i := f.index(row, col)
	switch f.cells[i].kind {
	case Revealed, Flagged:
		return nil
	}
	if !f.firstMoveTaken {
		if err := f.generate(row, col); err != nil {
			return err
		}
		f.firstMoveTaken = true
		f.expand(i)
		// flags planted beforehand may already cover every mine
		f.checkWin()
		return nil
	}
	f.open(i)
	return nil
}

// Chord reveals every unflagged neighbour of a revealed cell whose mine
// count is matched by flags around it.
func (f *Minefield) Chord(row, col int) error {
	if err := f.check(row, col); err != nil {
		return err
	}
	if f.IsGameOver() {
		return nil
	}
	n, ok := f.cells[f.index(row, col)].Adjacent()
	if !ok {
		return nil
	}
	flagged := 0
	targets := make([]int, 0, 8)
	for r, c := range f.layout.neighbours(row, col) {
		j := r*f.cols + c
		switch f.cells[j].kind {
		case Flagged:
			flagged++
		case Concealed, Questioned:
			targets = append(targets, j)
		}
	}
	if flagged != n {
		return nil
	}
	for _, j := range targets {
		if f.cells[j].kind == Revealed {
			continue // opened by an earlier expansion
		}
		f.open(j)
		if f.IsGameOver() {
			break
		}
	}
	return nil
}

func (f *Minefield) generate(row, col int) error {
	l, err := f.gen.Generate(f.rows, f.cols, f.mineCount, row, col)
	if err != nil {
		return err
	}
	switch {
	case l.rows != f.rows || l.cols != f.cols:
		return fmt.Errorf("%w: layout is %dx%d", ErrInvalidLayout, l.rows, l.cols)
	case l.Count() != f.mineCount:
		return fmt.Errorf("%w: %d mines placed", ErrInvalidLayout, l.Count())
	case l.IsMine(row, col):
		return fmt.Errorf("%w: mine under %d:%d", ErrInvalidLayout, row, col)
	case l.Adjacent(row, col) != 0:
		return fmt.Errorf("%w: mines next to %d:%d", ErrInvalidLayout, row, col)
	}
	f.layout = l

	// Flags planted before the layout existed could not be scored yet.
	for i, s := range f.cells {
		if s.kind == Flagged && l.mines[i] {
			f.minesRemaining--
		}
	}
	return nil
}

// open reveals a single concealed or questioned cell.
func (f *Minefield) open(i int) {
	if f.layout.mines[i] {
		f.exploded = i
		f.outcome = Lost
		row, col := f.coords(i)
		Log.WithFields(f.fields()).Debugf("mine revealed at %d:%d", row, col)
		return
	}
	f.expand(i)
}

// expand reveals root and, while the revealed cells have no mined
// neighbours, everything around them. Mines and revealed cells stop the
// expansion; flags in its way are handed back to the player.
func (f *Minefield) expand(root int) {
	todo := []int{root}
	for len(todo) > 0 {
		i := todo[len(todo)-1]
		todo = todo[:len(todo)-1]

		if f.layout.mines[i] || f.cells[i].kind == Revealed {
			continue
		}
		if f.cells[i].kind == Flagged {
			f.flags++
		}
		row, col := f.coords(i)
		n := f.layout.Adjacent(row, col)
		f.cells[i] = revealed(n)
		if n != 0 {
			continue
		}
		for r, c := range f.layout.neighbours(row, col) {
			if j := r*f.cols + c; f.cells[j].kind != Revealed {
				todo = append(todo, j)
			}
		}
	}
}
