package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps the error taxonomy to stable status codes. Only
// the sentinel's own message crosses the boundary; wrapped internal detail
// goes to the log instead.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, apperrors.ErrInvalidCredentials.Error())
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, apperrors.ErrUnauthorized.Error())
	case apperrors.Is(err, apperrors.ErrDuplicateAccount):
		writeError(w, http.StatusConflict, apperrors.ErrDuplicateAccount.Error())
	case apperrors.Is(err, apperrors.ErrUnavailable), apperrors.Is(err, apperrors.ErrCacheUnavailable):
		writeError(w, http.StatusServiceUnavailable, apperrors.ErrUnavailable.Error())
	default:
		s.log.Error().Err(err).Msg("unhandled service error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
