package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rinkdraft/rinkdraft/internal/auth"
	draftapp "github.com/rinkdraft/rinkdraft/internal/draft/draft"
	"github.com/rinkdraft/rinkdraft/internal/draft/pick"
	"github.com/rinkdraft/rinkdraft/internal/models"
)

// principal resolves the caller or writes a 401 and returns false.
func (s *Service) principal(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, err := s.resolver.Resolve(r.Context(), auth.BearerToken(r))
	if err != nil {
		writeError(w, err)
		return auth.Principal{}, false
	}
	return p, true
}

// pathUUID parses the {id} path segment or writes a 400 and returns false.
func pathUUID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Service) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}

	var req draftapp.CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	draft, err := s.drafts.CreateDraft(r.Context(), p.ID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

func (s *Service) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}

	drafts, err := s.drafts.ListDraftsForPrincipal(r.Context(), p.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drafts)
}

func (s *Service) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	draft, err := s.drafts.GetDraft(r.Context(), draftID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// draftState is the room snapshot a client needs on join or reconnect.
type draftState struct {
	Draft       *models.Draft          `json:"draft"`
	Teams       []models.Team          `json:"teams"`
	Picks       []models.Pick          `json:"picks"`
	CurrentTurn *draftapp.CurrentTurn  `json:"current_turn,omitempty"`
	Online      []models.PresenceEntry `json:"online"`
}

func (s *Service) handleDraftState(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathUUID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	draft, err := s.drafts.GetDraft(ctx, draftID)
	if err != nil {
		writeError(w, err)
		return
	}
	teams, err := s.teams.ListTeamsByDraft(ctx, draftID)
	if err != nil {
		writeError(w, err)
		return
	}
	picks, err := s.picks.ListPicksByDraft(ctx, draftID)
	if err != nil {
		writeError(w, err)
		return
	}
	turn, err := s.drafts.CurrentTurn(ctx, draftID)
	if err != nil {
		writeError(w, err)
		return
	}
	online, err := s.presence.OnlineSet(ctx, draftID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, draftState{
		Draft:       draft,
		Teams:       teams,
		Picks:       picks,
		CurrentTurn: turn,
		Online:      online,
	})
}

func (s *Service) handleJoinDraft(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	draftID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	var req struct {
		TeamName string `json:"team_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.TeamName == "" {
		writeBadRequest(w, "team_name is required")
		return
	}

	team, err := s.teams.JoinDraft(r.Context(), p.ID, draftID, req.TeamName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

func (s *Service) handleMyTeam(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	draftID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	team, err := s.teams.TeamForPrincipal(r.Context(), draftID, p.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (s *Service) handleStartDraft(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	draftID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	draft, err := s.drafts.Start(r.Context(), p.ID, draftID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *Service) handleFinishDraft(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	draftID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	draft, err := s.drafts.Finish(r.Context(), p.ID, draftID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *Service) handleRandomizeOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	draftID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	teams, err := s.teams.RandomizeOrder(r.Context(), p.ID, draftID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

func (s *Service) handleSubmitPick(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	draftID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	var req pick.SubmitPickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	req.DraftID = draftID
	req.PrincipalID = p.ID

	committed, err := s.picks.SubmitPick(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, committed)
}

func (s *Service) handleGetPick(w http.ResponseWriter, r *http.Request) {
	pickID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	committed, err := s.picks.GetPick(r.Context(), pickID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, committed)
}

func (s *Service) handleListPicks(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	picks, err := s.picks.ListPicksByDraft(r.Context(), draftID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, picks)
}

func (s *Service) handleRecentPicks(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	limit := int32(10)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeBadRequest(w, "invalid limit")
			return
		}
		limit = int32(n)
	}

	picks, err := s.picks.ListRecentPicks(r.Context(), draftID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, picks)
}

func (s *Service) handleAvailablePlayers(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	players, err := s.players.ListAvailableForDraft(r.Context(), draftID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Service) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.players.ListPlayers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *Service) handleOnlineSet(w http.ResponseWriter, r *http.Request) {
	draftID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	online, err := s.presence.OnlineSet(r.Context(), draftID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, online)
}

func (s *Service) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	draftID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	if err := s.presence.Heartbeat(r.Context(), draftID, p.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Service) handleLeave(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	draftID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	if err := s.presence.Leave(r.Context(), draftID, p.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Service) handleRenameTeam(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}
	teamID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	team, err := s.teams.RenameTeam(r.Context(), p.ID, teamID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (s *Service) handleTeamPicks(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathUUID(w, r)
	if !ok {
		return
	}

	picks, err := s.picks.ListPicksByTeam(r.Context(), teamID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, picks)
}

func (s *Service) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	p, ok := s.principal(w, r)
	if !ok {
		return
	}

	draftIDStr := r.URL.Query().Get("draft_id")
	if draftIDStr == "" {
		writeBadRequest(w, "draft_id is required")
		return
	}
	draftID, err := uuid.Parse(draftIDStr)
	if err != nil {
		writeBadRequest(w, "invalid draft_id format")
		return
	}

	// The draft must exist before we hold a socket open for it.
	if _, err := s.drafts.GetDraft(r.Context(), draftID); err != nil {
		writeError(w, err)
		return
	}

	if err := s.connMgr.UpgradeConnection(w, r, p.ID, draftID); err != nil {
		log.Error().Err(err).
			Str("draft_id", draftID.String()).
			Str("principal_id", p.ID).
			Msg("failed to upgrade WebSocket connection")
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	total, activeDrafts := s.connMgr.ConnectionStats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"total_connections": total,
		"active_drafts":     activeDrafts,
	})
}
