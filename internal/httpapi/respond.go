package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"osassist/internal/logs"
	"osassist/internal/panel"
	"osassist/internal/settings"
	"osassist/internal/startup"
)

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

type startupBody struct {
	Enabled bool `json:"enabled"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var decodeErr *logs.DecodeError
	var ioErr *logs.IOError
	switch {
	case errors.As(err, &decodeErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ioErr):
		return http.StatusInternalServerError
	case errors.Is(err, logs.ErrResourcesNotFound), errors.Is(err, settings.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, panel.ErrInvalidInput), errors.Is(err, settings.ErrMalformed):
		return http.StatusBadRequest
	case errors.Is(err, startup.ErrUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("api request failed",
			errorAttrs(r, err)...)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: message})
}
