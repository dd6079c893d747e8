package team

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	core "github.com/rinkdraft/rinkdraft/internal/draft"
	"github.com/rinkdraft/rinkdraft/internal/draft/events"
	"github.com/rinkdraft/rinkdraft/internal/models"
)

// ErrAlreadyJoined is returned when a principal already has a team in the
// draft.
var ErrAlreadyJoined = errors.New("already joined this draft")

// TeamRepository defines what the team app layer needs from the team
// repository.
type TeamRepository interface {
	CreateTeam(ctx context.Context, team models.Team) (*models.Team, error)
	AppendTeam(ctx context.Context, id uuid.UUID, draftID uuid.UUID, ownerPrincipalID, name string) (*models.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetTeamByDraftAndOwner(ctx context.Context, draftID uuid.UUID, ownerPrincipalID string) (*models.Team, error)
	ListTeamsByDraft(ctx context.Context, draftID uuid.UUID) ([]models.Team, error)
	RenameTeam(ctx context.Context, id uuid.UUID, name string) (*models.Team, error)
	ReorderTeams(ctx context.Context, draftID uuid.UUID, orderedTeamIDs []uuid.UUID) error
}

// DraftGetter defines what the team app layer needs from the draft app.
type DraftGetter interface {
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
}

// OutboxApp defines what the team app layer needs from the outbox.
type OutboxApp interface {
	InsertEvent(ctx context.Context, draftID uuid.UUID, eventType string, payload []byte) error
}

// App handles team membership: joining a PRE draft, draft order assignment,
// and renames.
type App struct {
	repo   TeamRepository
	drafts DraftGetter
	outbox OutboxApp
	clock  clockwork.Clock
}

// NewApp creates a new team App.
func NewApp(repo TeamRepository, drafts DraftGetter, outbox OutboxApp) *App {
	return &App{
		repo:   repo,
		drafts: drafts,
		outbox: outbox,
		clock:  clockwork.NewRealClock(),
	}
}

// JoinDraft adds the principal's team at the next draft order number. Only
// PRE drafts accept joins; order numbers stay contiguous 1..N.
func (a *App) JoinDraft(ctx context.Context, principalID string, draftID uuid.UUID, teamName string) (*models.Team, error) {
	if teamName == "" {
		return nil, fmt.Errorf("validation failed: team name is required")
	}

	draft, err := a.drafts.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Status != models.DraftStatusPre {
		return nil, fmt.Errorf("draft is %s, joins closed: %w", draft.Status, core.ErrInvalidState)
	}

	team, err := a.repo.AppendTeam(ctx, uuid.New(), draftID, principalID, teamName)
	if err != nil {
		return nil, err
	}

	a.emitTeamJoined(ctx, team)
	log.Printf("Team %q joined draft %s at position %d", team.Name, draftID, team.DraftOrderNumber)
	return team, nil
}

// GetTeam retrieves a team by ID.
func (a *App) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	return a.repo.GetTeam(ctx, id)
}

// TeamForPrincipal returns the principal's team in the draft.
func (a *App) TeamForPrincipal(ctx context.Context, draftID uuid.UUID, principalID string) (*models.Team, error) {
	return a.repo.GetTeamByDraftAndOwner(ctx, draftID, principalID)
}

// ListTeamsByDraft returns the draft's teams in draft order.
func (a *App) ListTeamsByDraft(ctx context.Context, draftID uuid.UUID) ([]models.Team, error) {
	return a.repo.ListTeamsByDraft(ctx, draftID)
}

// RenameTeam updates a team's name. Owner only.
func (a *App) RenameTeam(ctx context.Context, principalID string, teamID uuid.UUID, name string) (*models.Team, error) {
	if name == "" {
		return nil, fmt.Errorf("validation failed: team name is required")
	}

	team, err := a.repo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !core.CanRenameTeam(principalID, team) {
		return nil, fmt.Errorf("only the owner can rename the team: %w", core.ErrNotAuthorized)
	}

	return a.repo.RenameTeam(ctx, teamID, name)
}

// RandomizeOrder reshuffles draft order numbers across the draft's teams.
// Host only, PRE only: the order is frozen once the draft starts.
func (a *App) RandomizeOrder(ctx context.Context, principalID string, draftID uuid.UUID) ([]models.Team, error) {
	draft, err := a.drafts.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if !core.CanRandomizeOrder(principalID, draft) {
		return nil, fmt.Errorf("only the host can randomize the order: %w", core.ErrNotAuthorized)
	}
	if draft.Status != models.DraftStatusPre {
		return nil, fmt.Errorf("draft is %s, order is frozen: %w", draft.Status, core.ErrInvalidState)
	}

	teams, err := a.repo.ListTeamsByDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	if err := a.repo.ReorderTeams(ctx, draftID, ids); err != nil {
		return nil, err
	}

	a.emitOrderShuffled(ctx, draftID, ids)
	log.Printf("Randomized draft order for %d teams in draft %s", len(ids), draftID)
	return a.repo.ListTeamsByDraft(ctx, draftID)
}

func (a *App) emitTeamJoined(ctx context.Context, team *models.Team) {
	payload, err := json.Marshal(events.TeamJoinedPayload{
		TeamID:           team.ID.String(),
		TeamName:         team.Name,
		DraftOrderNumber: team.DraftOrderNumber,
		JoinedAt:         a.clock.Now(),
	})
	if err != nil {
		log.Printf("Failed to marshal TeamJoined payload: %v", err)
		return
	}
	if err := a.outbox.InsertEvent(ctx, team.DraftID, events.TypeTeamJoined, payload); err != nil {
		log.Printf("Failed to emit TeamJoined event: %v", err)
	}
}

func (a *App) emitOrderShuffled(ctx context.Context, draftID uuid.UUID, ids []uuid.UUID) {
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	payload, err := json.Marshal(events.OrderShuffledPayload{
		TeamIDs:    strIDs,
		ShuffledAt: a.clock.Now(),
	})
	if err != nil {
		log.Printf("Failed to marshal OrderShuffled payload: %v", err)
		return
	}
	if err := a.outbox.InsertEvent(ctx, draftID, events.TypeOrderShuffled, payload); err != nil {
		log.Printf("Failed to emit OrderShuffled event: %v", err)
	}
}
