package pick

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	core "github.com/rinkdraft/rinkdraft/internal/draft"
	draftapp "github.com/rinkdraft/rinkdraft/internal/draft/draft"
	"github.com/rinkdraft/rinkdraft/internal/draft/events"
	"github.com/rinkdraft/rinkdraft/internal/models"
)

// PickRepository defines what the pick app layer needs from the pick
// repository.
type PickRepository interface {
	GetPick(ctx context.Context, id uuid.UUID) (*models.Pick, error)
	ListPicksByDraft(ctx context.Context, draftID uuid.UUID) ([]models.Pick, error)
	ListPicksByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Pick, error)
	ListRecentPicks(ctx context.Context, draftID uuid.UUID, limit int32) ([]PickDetail, error)
	IsPlayerPicked(ctx context.Context, draftID, playerID uuid.UUID) (bool, error)
}

// DraftApp defines what the pick app layer needs from the draft app: the
// current turn and the exclusive commit. All cursor writes go through
// CommitPick so a timer skip and a submitted pick can never both win the
// same turn.
type DraftApp interface {
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	CurrentTurn(ctx context.Context, draftID uuid.UUID) (*draftapp.CurrentTurn, error)
	CommitPick(ctx context.Context, draft *models.Draft, pick *models.Pick) (*models.Draft, error)
}

// TeamApp defines what the pick app layer needs from the team app.
type TeamApp interface {
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
}

// PlayerCatalog defines what the pick app layer needs from the player
// catalog.
type PlayerCatalog interface {
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
}

// OutboxApp defines what the pick app layer needs from the outbox.
type OutboxApp interface {
	InsertEvent(ctx context.Context, draftID uuid.UUID, eventType string, payload []byte) error
}

// App owns the pick ledger: validating submissions against the turn on the
// clock and recording committed picks.
type App struct {
	repo    PickRepository
	drafts  DraftApp
	teams   TeamApp
	players PlayerCatalog
	outbox  OutboxApp
	clock   clockwork.Clock
}

// NewApp creates a new pick App.
func NewApp(repo PickRepository, drafts DraftApp, teams TeamApp, players PlayerCatalog, outbox OutboxApp) *App {
	return &App{
		repo:    repo,
		drafts:  drafts,
		teams:   teams,
		players: players,
		outbox:  outbox,
		clock:   clockwork.NewRealClock(),
	}
}

// SubmitPick validates a pick against the turn on the clock and commits it.
// Checks run in a fixed order so the caller always sees the most specific
// failure: draft state, team ownership, whose turn it is, player existence
// and availability, then turn staleness. The commit itself is conditional on
// the cursor, so two racing submissions for the same turn resolve to exactly
// one winner.
func (a *App) SubmitPick(ctx context.Context, req SubmitPickRequest) (*models.Pick, error) {
	draft, err := a.drafts.GetDraft(ctx, req.DraftID)
	if err != nil {
		return nil, err
	}
	if draft.Status != models.DraftStatusDuring {
		return nil, fmt.Errorf("draft is %s: %w", draft.Status, core.ErrInvalidState)
	}

	team, err := a.teams.GetTeam(ctx, req.TeamID)
	if err != nil {
		return nil, err
	}
	if team.DraftID != req.DraftID {
		return nil, fmt.Errorf("team %s is not in draft %s: %w", req.TeamID, req.DraftID, core.ErrNotFound)
	}
	if !core.CanSubmitPick(req.PrincipalID, team) {
		return nil, fmt.Errorf("team %s is not yours: %w", req.TeamID, core.ErrNotAuthorized)
	}

	turn, err := a.drafts.CurrentTurn(ctx, req.DraftID)
	if err != nil {
		return nil, err
	}
	if turn == nil {
		return nil, fmt.Errorf("no turn on the clock: %w", core.ErrInvalidState)
	}
	if turn.Team.ID != req.TeamID {
		return nil, fmt.Errorf("pick %d belongs to team %s: %w", turn.PickNumber, turn.Team.ID, core.ErrNotYourTurn)
	}

	player, err := a.players.GetPlayer(ctx, req.PlayerID)
	if err != nil {
		return nil, err
	}

	taken, err := a.repo.IsPlayerPicked(ctx, req.DraftID, req.PlayerID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("player %s is already drafted: %w", req.PlayerID, core.ErrPlayerAlreadyPicked)
	}

	if req.ExpectedPickNumber != turn.PickNumber {
		return nil, fmt.Errorf("expected pick %d but draft is at pick %d: %w",
			req.ExpectedPickNumber, turn.PickNumber, core.ErrStaleTurn)
	}

	pick := &models.Pick{
		ID:         uuid.New(),
		DraftID:    req.DraftID,
		TeamID:     req.TeamID,
		PlayerID:   req.PlayerID,
		PickNumber: turn.PickNumber,
		Round:      turn.Round,
		PickedAt:   a.clock.Now(),
	}

	if _, err := a.drafts.CommitPick(ctx, draft, pick); err != nil {
		return nil, err
	}

	a.emitPickMade(ctx, pick, team, player)
	log.Printf("Pick %d in draft %s: team %q takes %q", pick.PickNumber, pick.DraftID, team.Name, player.Name)
	return pick, nil
}

// GetPick retrieves a committed pick by ID.
func (a *App) GetPick(ctx context.Context, id uuid.UUID) (*models.Pick, error) {
	return a.repo.GetPick(ctx, id)
}

// ListPicksByDraft returns the draft's ledger in pick number order.
func (a *App) ListPicksByDraft(ctx context.Context, draftID uuid.UUID) ([]models.Pick, error) {
	return a.repo.ListPicksByDraft(ctx, draftID)
}

// ListPicksByTeam returns a team's roster in pick number order.
func (a *App) ListPicksByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Pick, error) {
	return a.repo.ListPicksByTeam(ctx, teamID)
}

// ListRecentPicks returns the latest picks with names attached, newest first.
func (a *App) ListRecentPicks(ctx context.Context, draftID uuid.UUID, limit int32) ([]PickDetail, error) {
	if limit <= 0 {
		limit = 10
	}
	return a.repo.ListRecentPicks(ctx, draftID, limit)
}

func (a *App) emitPickMade(ctx context.Context, pick *models.Pick, team *models.Team, player *models.Player) {
	payload := events.PickMadePayload{
		PickID:     pick.ID.String(),
		PickNumber: pick.PickNumber,
		Round:      pick.Round,
		TeamID:     team.ID.String(),
		TeamName:   team.Name,
		PlayerID:   player.ID.String(),
		PlayerName: player.Name,
		MadeAt:     pick.PickedAt,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal PickMade payload: %v", err)
		return
	}
	if err := a.outbox.InsertEvent(ctx, pick.DraftID, events.TypePickMade, data); err != nil {
		log.Printf("Failed to emit PickMade event: %v", err)
	}
}
