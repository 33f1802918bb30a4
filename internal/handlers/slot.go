package handlers

import (
	"net/http"
	"strings"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/middleware"
	"github.com/vancomm/minefield/internal/minefield"
)

const maxSlotName = 64

func slotName(r *http.Request) (string, bool) {
	name := strings.TrimSpace(r.PathValue("name"))
	return name, name != "" && len(name) <= maxSlotName
}

// SaveSlot copies a game the caller controls into a named slot.
func (g *GameHandler) SaveSlot(w http.ResponseWriter, r *http.Request) {
	name, ok := slotName(r)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	dto, err := decode[SaveSlotDTO](r.URL.Query())
	if err != nil {
		sendJSON(w, g.log, http.StatusBadRequest, wrapError(err))
		return
	}
	claims, ok := middleware.GameClaims(r.Context())
	if !ok {
		sendError(w, g.log, errNoToken)
		return
	}
	if claims.GameSessionId != dto.Game {
		sendError(w, g.log, config.ErrTokenMismatch)
		return
	}

	unlock := g.locks.lock(dto.Game)
	_, f, err := g.load(r.Context(), dto.Game)
	unlock()
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	slot, err := g.store.CreateSaveSlot(r.Context(), name, f)
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	sendJSON(w, g.log, http.StatusCreated, NewSaveSlotView(slot))
}

// LoadSlot starts a new session from a saved game; the slot stays as it is.
func (g *GameHandler) LoadSlot(w http.ResponseWriter, r *http.Request) {
	name, ok := slotName(r)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	slot, err := g.store.FetchSaveSlot(r.Context(), name)
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	f, err := slot.Minefield(minefield.WithGenerator(g.newGenerator()))
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	game, err := g.start(r.Context(), f)
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	sendJSON(w, g.log, http.StatusCreated, game)
}
