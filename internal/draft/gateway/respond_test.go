package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rinkdraft/rinkdraft/internal/auth"
	core "github.com/rinkdraft/rinkdraft/internal/draft"
	"github.com/rinkdraft/rinkdraft/internal/draft/team"
)

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{auth.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
		{core.ErrNotAuthorized, http.StatusForbidden, "NOT_AUTHORIZED"},
		{core.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{core.ErrInvalidState, http.StatusConflict, "INVALID_STATE"},
		{core.ErrNotYourTurn, http.StatusConflict, "NOT_YOUR_TURN"},
		{core.ErrPlayerAlreadyPicked, http.StatusConflict, "PLAYER_ALREADY_PICKED"},
		{core.ErrStaleTurn, http.StatusConflict, "STALE_TURN"},
		{core.ErrSchedulingConflict, http.StatusConflict, "SCHEDULING_CONFLICT"},
		{core.ErrTimingViolation, http.StatusConflict, "TIMING_VIOLATION"},
		{core.ErrEmptyDraft, http.StatusConflict, "EMPTY_DRAFT"},
		{team.ErrAlreadyJoined, http.StatusConflict, "ALREADY_JOINED"},
		{fmt.Errorf("pgx: connection refused"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, tc.err)

		if rec.Code != tc.status {
			t.Fatalf("%v: expected status %d, got %d", tc.err, tc.status, rec.Code)
		}

		var body errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("%v: decode body: %v", tc.err, err)
		}
		if body.Code != tc.code {
			t.Fatalf("%v: expected code %s, got %s", tc.err, tc.code, body.Code)
		}
	}
}

func TestWriteJSONNoBody(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusNoContent, nil)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "" {
		t.Fatalf("expected no Content-Type on empty response, got %q", ct)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rec.Body.String())
	}
}

func TestWriteErrorWrappedSentinel(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, fmt.Errorf("draft is POST: %w", core.ErrInvalidState))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for wrapped sentinel, got %d", rec.Code)
	}
}
