package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/notechat/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps domain errors to status codes. Unexpected errors are
// logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	case errors.Is(err, apperr.ErrInvalidTitle):
		writeJSON(w, http.StatusBadRequest, errorBody("invalid title"))
	case errors.Is(err, apperr.ErrEmptyMessage):
		writeJSON(w, http.StatusBadRequest, errorBody("message is required"))
	case errors.Is(err, apperr.ErrLimitReached):
		writeJSON(w, http.StatusTooManyRequests, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrOracleFailure):
		slog.Error(op+" failed", slog.String("owner", OwnerFrom(r.Context())), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("assistant unavailable"))
	default:
		slog.Error(op+" failed", slog.String("owner", OwnerFrom(r.Context())), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
