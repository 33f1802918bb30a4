package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/minefield/internal/minefield"
)

// SaveSlot is a named copy of a game that can be loaded into a new session.
type SaveSlot struct {
	Name      string             `db:"name"`
	RowCount  int32              `db:"row_count"`
	ColCount  int32              `db:"col_count"`
	MineCount int32              `db:"mine_count"`
	State     []byte             `db:"state"`
	SavedAt   pgtype.Timestamptz `db:"saved_at"`
}

func (s SaveSlot) Minefield(opts ...minefield.Option) (*minefield.Minefield, error) {
	return minefield.Decode(s.State, opts...)
}

// CreateSaveSlot fails with [ErrSlotTaken] when name is in use.
func (q *Queries) CreateSaveSlot(
	ctx context.Context, name string, f *minefield.Minefield,
) (*SaveSlot, error) {
	state, err := f.MarshalBinary()
	if err != nil {
		return nil, err
	}
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO save_slot (name, row_count, col_count, mine_count, state)
		VALUES (@name, @row_count, @col_count, @mine_count, @state)
		RETURNING *;`,
		pgx.NamedArgs{
			"name":       name,
			"row_count":  f.Rows(),
			"col_count":  f.Columns(),
			"mine_count": f.MineCount(),
			"state":      state,
		},
	)
	slot, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[SaveSlot])
	return slot, mapError(err)
}

func (q *Queries) FetchSaveSlot(ctx context.Context, name string) (*SaveSlot, error) {
	rows, _ := q.db.Query(ctx, "SELECT * FROM save_slot WHERE name = $1", name)
	slot, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[SaveSlot])
	return slot, mapError(err)
}
