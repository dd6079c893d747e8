package gateway

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/rinkdraft/rinkdraft/internal/auth"
	draftapp "github.com/rinkdraft/rinkdraft/internal/draft/draft"
	"github.com/rinkdraft/rinkdraft/internal/draft/pick"
	"github.com/rinkdraft/rinkdraft/internal/models"
)

// DraftApp is the draft surface the gateway exposes over HTTP.
type DraftApp interface {
	CreateDraft(ctx context.Context, principalID string, req draftapp.CreateDraftRequest) (*models.Draft, error)
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	ListDraftsForPrincipal(ctx context.Context, principalID string) ([]models.Draft, error)
	Start(ctx context.Context, principalID string, draftID uuid.UUID) (*models.Draft, error)
	Finish(ctx context.Context, principalID string, draftID uuid.UUID) (*models.Draft, error)
	CurrentTurn(ctx context.Context, draftID uuid.UUID) (*draftapp.CurrentTurn, error)
}

// TeamApp is the team surface the gateway exposes over HTTP.
type TeamApp interface {
	JoinDraft(ctx context.Context, principalID string, draftID uuid.UUID, teamName string) (*models.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	TeamForPrincipal(ctx context.Context, draftID uuid.UUID, principalID string) (*models.Team, error)
	ListTeamsByDraft(ctx context.Context, draftID uuid.UUID) ([]models.Team, error)
	RenameTeam(ctx context.Context, principalID string, teamID uuid.UUID, name string) (*models.Team, error)
	RandomizeOrder(ctx context.Context, principalID string, draftID uuid.UUID) ([]models.Team, error)
}

// PickApp is the pick ledger surface the gateway exposes over HTTP.
type PickApp interface {
	SubmitPick(ctx context.Context, req pick.SubmitPickRequest) (*models.Pick, error)
	GetPick(ctx context.Context, id uuid.UUID) (*models.Pick, error)
	ListPicksByDraft(ctx context.Context, draftID uuid.UUID) ([]models.Pick, error)
	ListPicksByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Pick, error)
	ListRecentPicks(ctx context.Context, draftID uuid.UUID, limit int32) ([]pick.PickDetail, error)
}

// PlayersApp is the catalog surface the gateway exposes over HTTP.
type PlayersApp interface {
	ListPlayers(ctx context.Context) ([]models.Player, error)
	ListAvailableForDraft(ctx context.Context, draftID uuid.UUID) ([]models.Player, error)
}

// RoomPresenceApp extends the connection-level PresenceApp with the online
// set read.
type RoomPresenceApp interface {
	PresenceApp
	OnlineSet(ctx context.Context, draftID uuid.UUID) ([]models.PresenceEntry, error)
}

// Service wires the app layers to HTTP routes and the WebSocket endpoint.
type Service struct {
	drafts   DraftApp
	teams    TeamApp
	picks    PickApp
	players  PlayersApp
	presence RoomPresenceApp
	resolver auth.Resolver
	connMgr  *ConnectionManager
}

func NewService(drafts DraftApp, teams TeamApp, picks PickApp, players PlayersApp, presence RoomPresenceApp, resolver auth.Resolver, connMgr *ConnectionManager) *Service {
	return &Service{
		drafts:   drafts,
		teams:    teams,
		picks:    picks,
		players:  players,
		presence: presence,
		resolver: resolver,
		connMgr:  connMgr,
	}
}

// RegisterRoutes attaches all gateway routes to mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/drafts", s.handleCreateDraft)
	mux.HandleFunc("GET /api/drafts", s.handleListDrafts)
	mux.HandleFunc("GET /api/drafts/{id}", s.handleGetDraft)
	mux.HandleFunc("GET /api/drafts/{id}/state", s.handleDraftState)
	mux.HandleFunc("POST /api/drafts/{id}/join", s.handleJoinDraft)
	mux.HandleFunc("GET /api/drafts/{id}/team", s.handleMyTeam)
	mux.HandleFunc("POST /api/drafts/{id}/start", s.handleStartDraft)
	mux.HandleFunc("POST /api/drafts/{id}/finish", s.handleFinishDraft)
	mux.HandleFunc("POST /api/drafts/{id}/randomize", s.handleRandomizeOrder)
	mux.HandleFunc("POST /api/drafts/{id}/picks", s.handleSubmitPick)
	mux.HandleFunc("GET /api/drafts/{id}/picks", s.handleListPicks)
	mux.HandleFunc("GET /api/drafts/{id}/picks/recent", s.handleRecentPicks)
	mux.HandleFunc("GET /api/drafts/{id}/players/available", s.handleAvailablePlayers)
	mux.HandleFunc("GET /api/drafts/{id}/presence", s.handleOnlineSet)
	mux.HandleFunc("POST /api/drafts/{id}/presence/heartbeat", s.handleHeartbeat)
	mux.HandleFunc("POST /api/drafts/{id}/presence/leave", s.handleLeave)
	mux.HandleFunc("GET /api/players", s.handleListPlayers)
	mux.HandleFunc("GET /api/picks/{id}", s.handleGetPick)
	mux.HandleFunc("PATCH /api/teams/{id}", s.handleRenameTeam)
	mux.HandleFunc("GET /api/teams/{id}/picks", s.handleTeamPicks)
	mux.HandleFunc("GET /ws/draft", s.handleWebSocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)
}
