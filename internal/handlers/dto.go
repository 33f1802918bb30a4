package handlers

import (
	"strconv"

	"github.com/gorilla/schema"

	"github.com/vancomm/minefield/internal/minefield"
	"github.com/vancomm/minefield/internal/repository"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

type CreateGameDTO struct {
	Preset string `schema:"preset"`
	Rows   int    `schema:"rows"`
	Cols   int    `schema:"cols"`
	Mines  int    `schema:"mines"`
	// optional first click
	Row *int `schema:"row"`
	Col *int `schema:"col"`
}

type MoveDTO struct {
	Action string `schema:"action,required"`
	Row    int    `schema:"row,required"`
	Col    int    `schema:"col,required"`
}

type SaveSlotDTO struct {
	Game int64 `schema:"game,required"`
}

func decode[T any](src map[string][]string) (T, error) {
	var dto T
	err := decoder.Decode(&dto, src)
	return dto, err
}

// GameDTO is what a player may see of a game. Mines are listed only once
// the game is over.
type GameDTO struct {
	GameSessionId  string            `json:"game_session_id"`
	Rows           int               `json:"rows"`
	Cols           int               `json:"cols"`
	MineCount      int               `json:"mine_count"`
	Grid           []int8            `json:"grid"`
	FlagsRemaining int               `json:"flags_remaining"`
	MinesRemaining int               `json:"mines_remaining"`
	FirstMoveTaken bool              `json:"first_move_taken"`
	GameOver       bool              `json:"game_over"`
	Outcome        string            `json:"outcome"`
	Mines          []minefield.Point `json:"mines,omitempty"`
	Exploded       *minefield.Point  `json:"exploded,omitempty"`
	StartedAt      int64             `json:"started_at"`
	EndedAt        *int64            `json:"ended_at,omitempty"`
	Token          string            `json:"token,omitempty"`
}

func NewGameDTO(s *repository.GameSession, f *minefield.Minefield) *GameDTO {
	dto := &GameDTO{
		GameSessionId:  strconv.FormatInt(s.GameSessionId, 10),
		Rows:           f.Rows(),
		Cols:           f.Columns(),
		MineCount:      f.MineCount(),
		Grid:           make([]int8, 0, f.Rows()*f.Columns()),
		FlagsRemaining: f.FlagsRemaining(),
		MinesRemaining: f.MinesRemaining(),
		FirstMoveTaken: f.FirstMoveTaken(),
		GameOver:       f.IsGameOver(),
		Outcome:        f.Outcome().String(),
		StartedAt:      s.StartedAt.Time.UnixMilli(),
	}
	for row := range f.Rows() {
		for col := range f.Columns() {
			dto.Grid = append(dto.Grid, f.State(row, col).Code())
			if f.IsGameOver() && f.IsMine(row, col) {
				dto.Mines = append(dto.Mines, minefield.Point{Row: row, Col: col})
			}
		}
	}
	if row, col, ok := f.Exploded(); ok {
		dto.Exploded = &minefield.Point{Row: row, Col: col}
	}
	if s.EndedAt.Valid {
		e := s.EndedAt.Time.UnixMilli()
		dto.EndedAt = &e
	}
	return dto
}

type SaveSlotView struct {
	Name    string `json:"name"`
	Rows    int32  `json:"rows"`
	Cols    int32  `json:"cols"`
	Mines   int32  `json:"mine_count"`
	SavedAt int64  `json:"saved_at"`
}

func NewSaveSlotView(s *repository.SaveSlot) SaveSlotView {
	return SaveSlotView{
		Name:    s.Name,
		Rows:    s.RowCount,
		Cols:    s.ColCount,
		Mines:   s.MineCount,
		SavedAt: s.SavedAt.Time.UnixMilli(),
	}
}
