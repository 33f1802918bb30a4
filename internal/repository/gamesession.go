package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/minefield/internal/minefield"
)

type GameSession struct {
	GameSessionId int64              `db:"game_session_id"`
	RowCount      int32              `db:"row_count"`
	ColCount      int32              `db:"col_count"`
	MineCount     int32              `db:"mine_count"`
	Outcome       string             `db:"outcome"`
	State         []byte             `db:"state"`
	StartedAt     pgtype.Timestamptz `db:"started_at"`
	EndedAt       pgtype.Timestamptz `db:"ended_at"`
	UpdatedAt     pgtype.Timestamptz `db:"updated_at"`
}

// Minefield decodes the stored game.
func (s GameSession) Minefield(opts ...minefield.Option) (*minefield.Minefield, error) {
	return minefield.Decode(s.State, opts...)
}

func (q *Queries) CreateGameSession(
	ctx context.Context, f *minefield.Minefield,
) (*GameSession, error) {
	state, err := f.MarshalBinary()
	if err != nil {
		return nil, err
	}
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_session (
			row_count, col_count, mine_count, outcome, state, ended_at
		)
		VALUES (
			@row_count, @col_count, @mine_count, @outcome, @state,
			CASE WHEN @over::boolean THEN now() END
		)
		RETURNING *;`,
		pgx.NamedArgs{
			"row_count":  f.Rows(),
			"col_count":  f.Columns(),
			"mine_count": f.MineCount(),
			"outcome":    f.Outcome().String(),
			"state":      state,
			"over":       f.IsGameOver(),
		},
	)
	session, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
	return session, mapError(err)
}

func (q *Queries) FetchGameSession(ctx context.Context, gameSessionId int64) (*GameSession, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM game_session WHERE game_session_id = $1",
		gameSessionId,
	)
	session, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
	return session, mapError(err)
}

// UpdateGameSession stores the current state of f; the first update that
// sees the game over stamps ended_at.
func (q *Queries) UpdateGameSession(
	ctx context.Context, gameSessionId int64, f *minefield.Minefield,
) (*GameSession, error) {
	state, err := f.MarshalBinary()
	if err != nil {
		return nil, err
	}
	rows, _ := q.db.Query(
		ctx,
		`UPDATE game_session
		SET state = @state,
			outcome = @outcome,
			ended_at = CASE
				WHEN @over::boolean AND ended_at IS NULL THEN now()
				ELSE ended_at
			END,
			updated_at = now()
		WHERE game_session_id = @game_session_id
		RETURNING *;`,
		pgx.NamedArgs{
			"game_session_id": gameSessionId,
			"state":           state,
			"outcome":         f.Outcome().String(),
			"over":            f.IsGameOver(),
		},
	)
	session, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
	return session, mapError(err)
}
