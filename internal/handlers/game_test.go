package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/middleware"
	"github.com/vancomm/minefield/internal/minefield"
)

type testServer struct {
	handler http.Handler
	tokens  *config.Tokens
	store   *memStore
}

// newTestServer places a single mine at 2:2 of every new game.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log, _ := test.NewNullLogger()
	tokens, err := config.NewTokens(config.TokenConfig{
		Secret:   "test secret",
		Lifetime: config.Duration{Duration: time.Hour},
	})
	require.NoError(t, err)
	store := newMemStore()
	h := NewGameHandler(
		log, store, tokens,
		config.GameDefaults{Rows: 9, Cols: 9, Mines: 1},
		WithGenerator(func() minefield.Generator {
			return minefield.FixedLayout{{Row: 2, Col: 2}}
		}),
	)
	mux := http.NewServeMux()
	h.Register(mux)
	return &testServer{
		handler: middleware.Auth(log, tokens)(mux),
		tokens:  tokens,
		store:   store,
	}
}

func (s *testServer) do(t *testing.T, method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, body)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) newGame(t *testing.T, query string) GameDTO {
	t.Helper()
	w := s.do(t, http.MethodPost, "/game?"+query, "", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	game := decodeBody[GameDTO](t, w)
	require.NotEmpty(t, game.Token)
	return game
}

func TestNewGame(t *testing.T) {
	s := newTestServer(t)

	t.Run("first click", func(t *testing.T) {
		game := s.newGame(t, "rows=3&cols=3&mines=1&row=0&col=0")
		assert.True(t, game.FirstMoveTaken)
		assert.Equal(t, []int8{0, 0, 0, 0, 1, 1, 0, 1, -2}, game.Grid)
		assert.Equal(t, "playing", game.Outcome)
		assert.Empty(t, game.Mines)
	})

	t.Run("no click", func(t *testing.T) {
		game := s.newGame(t, "rows=3&cols=3&mines=1")
		assert.False(t, game.FirstMoveTaken)
		assert.Len(t, game.Grid, 9)
		for _, code := range game.Grid {
			assert.EqualValues(t, -2, code)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		game := s.newGame(t, "")
		assert.Equal(t, 9, game.Rows)
		assert.Equal(t, 9, game.Cols)
		assert.Equal(t, 1, game.MineCount)
	})

	t.Run("preset", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/game?preset=expert", "", nil)
		assert.Equal(t, http.StatusCreated, w.Code)
		game := decodeBody[GameDTO](t, w)
		assert.Equal(t, 16, game.Rows)
		assert.Equal(t, 30, game.Cols)
		assert.Equal(t, 99, game.MineCount)
	})

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"unknown preset", "preset=impossible", http.StatusBadRequest},
		{"bad dimensions", "rows=0&cols=5&mines=1", http.StatusBadRequest},
		{"too many mines", "rows=3&cols=3&mines=8", http.StatusUnprocessableEntity},
		{"half a click", "rows=3&cols=3&mines=1&row=1", http.StatusBadRequest},
		{"click out of range", "rows=3&cols=3&mines=1&row=3&col=0", http.StatusBadRequest},
		{"not a number", "rows=three", http.StatusBadRequest},
		{"over the cell cap", "rows=101&cols=100&mines=1", http.StatusBadRequest},
		{"huge grid", "rows=100000&cols=100000&mines=0", http.StatusBadRequest},
		{"overflowing grid", "rows=4294967296&cols=4294967296&mines=0", http.StatusBadRequest},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/game?"+test.query, "", nil)
			assert.Equal(t, test.status, w.Code, w.Body.String())
			assert.NotEmpty(t, decodeBody[errorDTO](t, w).Error)
		})
	}
}

func TestMove(t *testing.T) {
	s := newTestServer(t)
	game := s.newGame(t, "rows=3&cols=3&mines=1")
	path := "/game/" + game.GameSessionId + "/move"

	w := s.do(t, http.MethodPost, path+"?action=reveal&row=0&col=0", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other := s.newGame(t, "rows=3&cols=3&mines=1")
	w = s.do(t, http.MethodPost, path+"?action=reveal&row=0&col=0", other.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, path+"?action=dig&row=0&col=0", game.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, path+"?action=reveal&row=0", game.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, path+"?action=reveal&row=0&col=0", game.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []int8{0, 0, 0, 0, 1, 1, 0, 1, -2}, decodeBody[GameDTO](t, w).Grid)

	w = s.do(t, http.MethodPost, path+"?action=f&row=2&col=2", game.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	won := decodeBody[GameDTO](t, w)
	assert.True(t, won.GameOver)
	assert.Equal(t, "won", won.Outcome)
	assert.Equal(t, []minefield.Point{{Row: 2, Col: 2}}, won.Mines)
	assert.Nil(t, won.Exploded)
	assert.NotNil(t, won.EndedAt)
	assert.Empty(t, won.Token)

	w = s.do(t, http.MethodGet, "/game/"+game.GameSessionId, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, won.Grid, decodeBody[GameDTO](t, w).Grid)
}

func TestMoveLoses(t *testing.T) {
	s := newTestServer(t)
	game := s.newGame(t, "rows=3&cols=3&mines=1&row=0&col=0")

	w := s.do(t, http.MethodPost, "/game/"+game.GameSessionId+"/move?action=r&row=2&col=2", game.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	lost := decodeBody[GameDTO](t, w)
	assert.Equal(t, "lost", lost.Outcome)
	assert.Equal(t, &minefield.Point{Row: 2, Col: 2}, lost.Exploded)
}

func TestBatch(t *testing.T) {
	s := newTestServer(t)
	game := s.newGame(t, "rows=3&cols=3&mines=1&row=0&col=0")
	path := "/game/" + game.GameSessionId + "/batch"

	w := s.do(t, http.MethodPost, path, game.Token, strings.NewReader("q 2 2\nx 1 1\n"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	e := decodeBody[errorDTO](t, w)
	require.NotNil(t, e.Line)
	assert.Equal(t, 2, *e.Line)

	// the failed batch left no trace
	w = s.do(t, http.MethodGet, "/game/"+game.GameSessionId, "", nil)
	assert.EqualValues(t, -2, decodeBody[GameDTO](t, w).Grid[8])

	w = s.do(t, http.MethodPost, path, game.Token, strings.NewReader("q 2 2\n\nm 2 2\nm 2 2\n"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	game = decodeBody[GameDTO](t, w)
	assert.Equal(t, "won", game.Outcome)
}

func TestBatchTooLarge(t *testing.T) {
	s := newTestServer(t)
	game := s.newGame(t, "rows=3&cols=3&mines=1")

	// cut at the limit, the last line would read "f 2 2" and win
	body := "r 0 0\n" + strings.Repeat("\n", maxBatchBytes-len("r 0 0\n")-len("f 2 2")) + "f 2 21"
	require.Equal(t, maxBatchBytes+1, len(body))

	w := s.do(t, http.MethodPost, "/game/"+game.GameSessionId+"/batch", game.Token, strings.NewReader(body))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/game/"+game.GameSessionId, "", nil)
	fetched := decodeBody[GameDTO](t, w)
	assert.False(t, fetched.FirstMoveTaken)
	assert.Equal(t, "playing", fetched.Outcome)
}

func TestFetch(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/game/42", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/game/nope", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveAndLoadSlot(t *testing.T) {
	s := newTestServer(t)
	game := s.newGame(t, "rows=3&cols=3&mines=1&row=0&col=0")
	save := "/slot/first?game=" + game.GameSessionId

	w := s.do(t, http.MethodPut, save, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPut, save, game.Token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	slot := decodeBody[SaveSlotView](t, w)
	assert.Equal(t, "first", slot.Name)
	assert.EqualValues(t, 1, slot.Mines)

	w = s.do(t, http.MethodPut, save, game.Token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/slot/missing/load", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/slot/first/load", "", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	loaded := decodeBody[GameDTO](t, w)
	assert.NotEqual(t, game.GameSessionId, loaded.GameSessionId)
	assert.Equal(t, game.Grid, loaded.Grid)
	assert.NotEmpty(t, loaded.Token)

	// the copy plays on its own
	w = s.do(t, http.MethodPost, "/game/"+loaded.GameSessionId+"/move?action=r&row=2&col=2", loaded.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lost", decodeBody[GameDTO](t, w).Outcome)

	w = s.do(t, http.MethodGet, "/game/"+game.GameSessionId, "", nil)
	assert.Equal(t, "playing", decodeBody[GameDTO](t, w).Outcome)
}
