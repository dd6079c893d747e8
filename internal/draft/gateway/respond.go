package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/rinkdraft/rinkdraft/internal/auth"
	core "github.com/rinkdraft/rinkdraft/internal/draft"
	"github.com/rinkdraft/rinkdraft/internal/draft/team"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	if v == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps domain error kinds onto HTTP statuses. Conflict-shaped
// failures (wrong turn, taken player, stale cursor) all surface as 409 with
// a distinct code so clients can react without string matching.
func writeError(w http.ResponseWriter, err error) {
	var status int
	var code string

	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		status, code = http.StatusUnauthorized, "UNAUTHENTICATED"
	case errors.Is(err, core.ErrNotAuthorized):
		status, code = http.StatusForbidden, "NOT_AUTHORIZED"
	case errors.Is(err, core.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, core.ErrInvalidState):
		status, code = http.StatusConflict, "INVALID_STATE"
	case errors.Is(err, core.ErrNotYourTurn):
		status, code = http.StatusConflict, "NOT_YOUR_TURN"
	case errors.Is(err, core.ErrPlayerAlreadyPicked):
		status, code = http.StatusConflict, "PLAYER_ALREADY_PICKED"
	case errors.Is(err, core.ErrStaleTurn):
		status, code = http.StatusConflict, "STALE_TURN"
	case errors.Is(err, core.ErrSchedulingConflict):
		status, code = http.StatusConflict, "SCHEDULING_CONFLICT"
	case errors.Is(err, core.ErrTimingViolation):
		status, code = http.StatusConflict, "TIMING_VIOLATION"
	case errors.Is(err, core.ErrEmptyDraft):
		status, code = http.StatusConflict, "EMPTY_DRAFT"
	case errors.Is(err, team.ErrAlreadyJoined):
		status, code = http.StatusConflict, "ALREADY_JOINED"
	default:
		status, code = http.StatusInternalServerError, "INTERNAL"
		log.Error().Err(err).Msg("request failed")
	}

	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: "BAD_REQUEST", Message: msg})
}
