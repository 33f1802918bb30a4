package handlers

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/vancomm/minefield/internal/minefield"
)

type Action int

const (
	Reveal Action = iota
	Flag
	Question
	Hide
	Cycle
	Chord
)

var actionNames = map[string]Action{
	"reveal": Reveal, "r": Reveal,
	"flag": Flag, "f": Flag,
	"question": Question, "q": Question,
	"hide": Hide, "h": Hide,
	"cycle": Cycle, "m": Cycle,
	"chord": Chord, "c": Chord,
}

func ParseAction(s string) (Action, error) {
	a, ok := actionNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

func (a Action) Apply(f *minefield.Minefield, row, col int) error {
	switch a {
	case Reveal:
		return f.Reveal(row, col)
	case Flag:
		return f.Flag(row, col)
	case Question:
		return f.Question(row, col)
	case Hide:
		return f.Hide(row, col)
	case Cycle:
		return f.CycleAnnotation(row, col)
	case Chord:
		return f.Chord(row, col)
	}
	return fmt.Errorf("invalid action %d", a)
}

// CommandError points at the offending line of a batch.
type CommandError struct {
	Line int
	Err  error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func byPiece(s string, sep string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		i := 0
		found := true
		var piece string
		for found {
			piece, s, found = strings.Cut(s, sep)
			if !yield(i, piece) {
				return
			}
			i += 1
		}
	}
}

func parseCommand(c string) (a Action, row, col int, err error) {
	parts := strings.Fields(c)
	if len(parts) != 3 {
		return 0, 0, 0, errors.New("want: <action> <row> <col>")
	}
	if a, err = ParseAction(parts[0]); err != nil {
		return
	}
	if row, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, errors.New("row must be an int")
	}
	if col, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, errors.New("col must be an int")
	}
	return
}

// ExecuteBatch runs newline-separated commands such as
//
//	r 3 4 // reveal row 3, column 4
//	f 0 1 // flag
//	q 0 1 // question
//	h 0 1 // hide
//	m 0 1 // cycle annotation
//	c 3 4 // chord
//
// in order. Blank lines are skipped. It stops at the first failing command
// or once the game is over; the caller discards f on error.
func ExecuteBatch(f *minefield.Minefield, batch string) error {
	for i, line := range byPiece(batch, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		a, row, col, err := parseCommand(line)
		if err != nil {
			return &CommandError{Line: i + 1, Err: err}
		}
		if err := a.Apply(f, row, col); err != nil {
			return &CommandError{Line: i + 1, Err: err}
		}
		if f.IsGameOver() {
			return nil
		}
	}
	return nil
}
