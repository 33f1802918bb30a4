package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/minefield"
	"github.com/vancomm/minefield/internal/repository"
)

func sendJSON(w http.ResponseWriter, log *logrus.Logger, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.WithError(err).Error("unable to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		log.WithError(err).Warn("unable to send response")
	}
}

type errorDTO struct {
	Error string `json:"error"`
	Line  *int   `json:"line,omitempty"`
}

func wrapError(err error) errorDTO {
	dto := errorDTO{Error: err.Error()}
	var ce *CommandError
	if errors.As(err, &ce) {
		dto.Line = &ce.Line
	}
	return dto
}

// statusFor maps model and storage errors onto HTTP.
func statusFor(err error) int {
	var (
		ce       *CommandError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &ce),
		errors.Is(err, minefield.ErrOutOfRange),
		errors.Is(err, minefield.ErrInvalidDimensions),
		errors.Is(err, errGridTooLarge):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, minefield.ErrTooManyMines),
		errors.Is(err, minefield.ErrInvalidLayout):
		return http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrSlotTaken):
		return http.StatusConflict
	case errors.Is(err, errNoToken):
		return http.StatusUnauthorized
	case errors.Is(err, config.ErrTokenMismatch):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func sendError(w http.ResponseWriter, log *logrus.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
		w.WriteHeader(status)
		return
	}
	sendJSON(w, log, status, wrapError(err))
}
