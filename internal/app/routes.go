package app

import (
	"net/http"

	"github.com/vancomm/minefield/internal/handlers"
	"github.com/vancomm/minefield/internal/repository"
)

func (a *App) loadRoutes() {
	game := handlers.NewGameHandler(
		a.log, repository.New(a.db), a.tokens, a.config.Defaults,
	)
	game.Register(a.router)

	a.router.HandleFunc("GET /health", a.health)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	if err := a.db.Ping(r.Context()); err != nil {
		a.log.WithError(err).Warn("database unreachable")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
