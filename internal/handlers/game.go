package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/middleware"
	"github.com/vancomm/minefield/internal/minefield"
	"github.com/vancomm/minefield/internal/repository"
)

const maxBatchBytes = 64 << 10

var (
	errNoToken      = errors.New("missing game token")
	errGridTooLarge = errors.New("grid too large")
)

// Store persists game sessions and save slots; *repository.Queries is the
// production implementation.
type Store interface {
	CreateGameSession(ctx context.Context, f *minefield.Minefield) (*repository.GameSession, error)
	FetchGameSession(ctx context.Context, gameSessionId int64) (*repository.GameSession, error)
	UpdateGameSession(ctx context.Context, gameSessionId int64, f *minefield.Minefield) (*repository.GameSession, error)
	CreateSaveSlot(ctx context.Context, name string, f *minefield.Minefield) (*repository.SaveSlot, error)
	FetchSaveSlot(ctx context.Context, name string) (*repository.SaveSlot, error)
}

type GameHandler struct {
	log          *logrus.Logger
	store        Store
	tokens       *config.Tokens
	defaults     config.GameDefaults
	upgrader     websocket.Upgrader
	newGenerator func() minefield.Generator
	locks        sessionLocks
}

type Option func(*GameHandler)

// WithGenerator fixes how mines are placed, for tests.
func WithGenerator(newGenerator func() minefield.Generator) Option {
	return func(g *GameHandler) { g.newGenerator = newGenerator }
}

func WithUpgrader(u websocket.Upgrader) Option {
	return func(g *GameHandler) { g.upgrader = u }
}

func NewGameHandler(
	log *logrus.Logger,
	store Store,
	tokens *config.Tokens,
	defaults config.GameDefaults,
	opts ...Option,
) *GameHandler {
	g := &GameHandler{
		log:      log,
		store:    store,
		tokens:   tokens,
		defaults: defaults,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		newGenerator: func() minefield.Generator {
			return minefield.RandomLayout{Rand: minefield.NewRand()}
		},
	}
	if g.defaults.MaxCells <= 0 {
		g.defaults.MaxCells = config.DefaultMaxCells
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GameHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /game", g.NewGame)
	mux.HandleFunc("GET /game/{id}", g.Fetch)
	mux.HandleFunc("POST /game/{id}/move", g.Move)
	mux.HandleFunc("POST /game/{id}/batch", g.Batch)
	mux.HandleFunc("/game/{id}/connect", g.ConnectWS)
	mux.HandleFunc("PUT /slot/{name}", g.SaveSlot)
	mux.HandleFunc("POST /slot/{name}/load", g.LoadSlot)
}

func (g *GameHandler) newMinefield(dto CreateGameDTO) (*minefield.Minefield, error) {
	gen := minefield.WithGenerator(g.newGenerator())
	if dto.Preset != "" {
		p, ok := minefield.PresetByName(dto.Preset)
		if !ok {
			return nil, &CommandError{Err: fmt.Errorf("unknown preset %q", dto.Preset)}
		}
		return p.New(gen)
	}
	if dto.Rows == 0 && dto.Cols == 0 {
		return minefield.New(g.defaults.Rows, g.defaults.Cols, g.defaults.Mines, gen)
	}
	if limit := g.defaults.MaxCells; dto.Rows > limit || dto.Cols > limit || dto.Rows*dto.Cols > limit {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d cells", errGridTooLarge, dto.Rows, dto.Cols, limit)
	}
	return minefield.New(dto.Rows, dto.Cols, dto.Mines, gen)
}

// start stores f as a new session and hands out its token.
func (g *GameHandler) start(ctx context.Context, f *minefield.Minefield) (*GameDTO, error) {
	session, err := g.store.CreateGameSession(ctx, f)
	if err != nil {
		return nil, err
	}
	token, err := g.tokens.Sign(session.GameSessionId)
	if err != nil {
		return nil, err
	}
	dto := NewGameDTO(session, f)
	dto.Token = token
	return dto, nil
}

func (g *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	dto, err := decode[CreateGameDTO](r.URL.Query())
	if err != nil {
		sendJSON(w, g.log, http.StatusBadRequest, wrapError(err))
		return
	}
	f, err := g.newMinefield(dto)
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	if dto.Row != nil || dto.Col != nil {
		if dto.Row == nil || dto.Col == nil {
			sendJSON(w, g.log, http.StatusBadRequest, wrapError(errors.New("first click needs row and col")))
			return
		}
		if err := f.Reveal(*dto.Row, *dto.Col); err != nil {
			sendError(w, g.log, err)
			return
		}
	}

	game, err := g.start(r.Context(), f)
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	g.log.WithFields(logrus.Fields{
		"gameSessionId": game.GameSessionId,
		"rows":          game.Rows,
		"cols":          game.Cols,
		"mines":         game.MineCount,
	}).Debug("new game")
	sendJSON(w, g.log, http.StatusCreated, game)
}

func parseId(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, &CommandError{Err: fmt.Errorf("invalid game id %q", r.PathValue("id"))}
	}
	return id, nil
}

// authorize resolves the game id of the path and checks the request token
// controls it.
func (g *GameHandler) authorize(r *http.Request) (int64, error) {
	id, err := parseId(r)
	if err != nil {
		return 0, err
	}
	claims, ok := middleware.GameClaims(r.Context())
	if !ok {
		return 0, errNoToken
	}
	if claims.GameSessionId != id {
		return 0, config.ErrTokenMismatch
	}
	return id, nil
}

func (g *GameHandler) load(ctx context.Context, id int64) (*repository.GameSession, *minefield.Minefield, error) {
	session, err := g.store.FetchGameSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	f, err := session.Minefield(minefield.WithGenerator(g.newGenerator()))
	if err != nil {
		return nil, nil, fmt.Errorf("stored game %d: %w", id, err)
	}
	return session, f, nil
}

// play applies moves to the stored game and saves the result. Nothing is
// saved when moves fails.
func (g *GameHandler) play(ctx context.Context, id int64, moves func(*minefield.Minefield) error) (*GameDTO, error) {
	unlock := g.locks.lock(id)
	defer unlock()

	_, f, err := g.load(ctx, id)
	if err != nil {
		return nil, err
	}
	wasOver := f.IsGameOver()
	if err := moves(f); err != nil {
		return nil, err
	}
	session, err := g.store.UpdateGameSession(ctx, id, f)
	if err != nil {
		return nil, err
	}
	if !wasOver && f.IsGameOver() {
		g.log.WithFields(logrus.Fields{
			"gameSessionId": id,
			"outcome":       f.Outcome().String(),
		}).Info("game over")
	}
	return NewGameDTO(session, f), nil
}

func (g *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	id, err := parseId(r)
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	session, f, err := g.load(r.Context(), id)
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	sendJSON(w, g.log, http.StatusOK, NewGameDTO(session, f))
}

func (g *GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := g.authorize(r)
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	dto, err := decode[MoveDTO](r.URL.Query())
	if err != nil {
		sendJSON(w, g.log, http.StatusBadRequest, wrapError(err))
		return
	}
	action, err := ParseAction(dto.Action)
	if err != nil {
		sendJSON(w, g.log, http.StatusBadRequest, wrapError(err))
		return
	}
	game, err := g.play(r.Context(), id, func(f *minefield.Minefield) error {
		return action.Apply(f, dto.Row, dto.Col)
	})
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	sendJSON(w, g.log, http.StatusOK, game)
}

// Batch applies the newline-separated commands of the body, see
// [ExecuteBatch]. A bad command rejects the whole batch.
func (g *GameHandler) Batch(w http.ResponseWriter, r *http.Request) {
	id, err := g.authorize(r)
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBatchBytes))
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	game, err := g.play(r.Context(), id, func(f *minefield.Minefield) error {
		return ExecuteBatch(f, string(body))
	})
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	sendJSON(w, g.log, http.StatusOK, game)
}
