package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	core "github.com/rinkdraft/rinkdraft/internal/draft"
	"github.com/rinkdraft/rinkdraft/internal/draft/events"
	"github.com/rinkdraft/rinkdraft/internal/models"
	"github.com/rinkdraft/rinkdraft/internal/snake"
)

// DraftRepository defines what the draft app layer needs from the draft
// repository.
type DraftRepository interface {
	CreateDraft(ctx context.Context, id uuid.UUID, hostPrincipalID string, req CreateDraftRequest, settings models.DraftSettings) (*models.Draft, error)
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	ListDraftsForPrincipal(ctx context.Context, principalID string) ([]models.Draft, error)
	StartDraft(ctx context.Context, id uuid.UUID, now, deadline time.Time, totalPicks int) (*models.Draft, error)
	FinishDraft(ctx context.Context, id uuid.UUID, now time.Time) (*models.Draft, error)
	CommitTurn(ctx context.Context, req CommitTurnRequest) (*models.Draft, error)
	FetchNextDeadline(ctx context.Context) (*NextDeadline, error)
	FetchDraftsDueForAdvance(ctx context.Context, asOf time.Time, limit int32) ([]DueDraft, error)
	CountPicks(ctx context.Context, draftID uuid.UUID) (int, error)
}

// TeamRepository defines what the draft app layer needs from the team
// repository.
type TeamRepository interface {
	CreateTeam(ctx context.Context, team models.Team) (*models.Team, error)
	ListTeamsByDraft(ctx context.Context, draftID uuid.UUID) ([]models.Team, error)
}

// OutboxApp defines what the draft app layer needs from the outbox.
type OutboxApp interface {
	InsertEvent(ctx context.Context, draftID uuid.UUID, eventType string, payload []byte) error
}

// App owns the draft lifecycle (PRE -> DURING -> POST) and the pick cursor.
// It is the sole writer of draft status and cursor fields.
type App struct {
	repo     DraftRepository
	teams    TeamRepository
	outbox   OutboxApp
	defaults models.DraftSettings
	clock    clockwork.Clock
}

// NewApp creates a new draft App.
func NewApp(repo DraftRepository, teams TeamRepository, outbox OutboxApp, defaults models.DraftSettings) *App {
	return &App{
		repo:     repo,
		teams:    teams,
		outbox:   outbox,
		defaults: defaults,
		clock:    clockwork.NewRealClock(),
	}
}

// CreateDraft creates a PRE draft plus the host's team at draft order 1.
func (a *App) CreateDraft(ctx context.Context, principalID string, req CreateDraftRequest) (*models.Draft, error) {
	if err := a.validateCreateDraftRequest(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	draft, err := a.repo.CreateDraft(ctx, uuid.New(), principalID, req, a.defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	if _, err := a.teams.CreateTeam(ctx, models.Team{
		ID:               uuid.New(),
		DraftID:          draft.ID,
		OwnerPrincipalID: principalID,
		Name:             req.HostTeamName,
		DraftOrderNumber: 1,
	}); err != nil {
		return nil, fmt.Errorf("failed to create host team: %w", err)
	}

	log.Printf("Created draft %s (%q) hosted by %s", draft.ID, draft.Name, principalID)
	return draft, nil
}

// GetDraft retrieves a draft by ID.
func (a *App) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	return a.repo.GetDraft(ctx, id)
}

// ListDraftsForPrincipal lists drafts hosted by or joined by the principal.
func (a *App) ListDraftsForPrincipal(ctx context.Context, principalID string) ([]models.Draft, error) {
	return a.repo.ListDraftsForPrincipal(ctx, principalID)
}

// Start transitions the draft to DURING and puts pick 1 on the clock.
func (a *App) Start(ctx context.Context, principalID string, draftID uuid.UUID) (*models.Draft, error) {
	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	if !core.CanStartDraft(principalID, draft) {
		return nil, fmt.Errorf("only the host can start the draft: %w", core.ErrNotAuthorized)
	}
	if draft.Status != models.DraftStatusPre {
		return nil, fmt.Errorf("draft is %s: %w", draft.Status, core.ErrInvalidState)
	}

	now := a.clock.Now()
	if now.Before(draft.ScheduledAt) {
		return nil, fmt.Errorf("scheduled for %s: %w", draft.ScheduledAt, core.ErrTimingViolation)
	}

	teams, err := a.teams.ListTeamsByDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("cannot start: %w", core.ErrEmptyDraft)
	}

	totalPicks := snake.TotalPicks(len(teams), draft.Settings.Rounds)
	deadline := now.Add(a.pickTimeLimit(draft))

	started, err := a.repo.StartDraft(ctx, draftID, now, deadline, totalPicks)
	if err != nil {
		return nil, err
	}

	a.emitDraftStarted(ctx, started, len(teams))
	a.emitPickStarted(ctx, started, teams)

	log.Printf("Started draft %s: %d teams, %d total picks", draftID, len(teams), totalPicks)
	return started, nil
}

// Finish terminates a DURING draft early. Host only.
func (a *App) Finish(ctx context.Context, principalID string, draftID uuid.UUID) (*models.Draft, error) {
	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}

	if !core.CanFinishDraft(principalID, draft) {
		return nil, fmt.Errorf("only the host can finish the draft: %w", core.ErrNotAuthorized)
	}
	if draft.Status != models.DraftStatusDuring {
		return nil, fmt.Errorf("draft is %s: %w", draft.Status, core.ErrInvalidState)
	}

	finished, err := a.repo.FinishDraft(ctx, draftID, a.clock.Now())
	if err != nil {
		return nil, err
	}

	a.emitDraftCompleted(ctx, finished)
	log.Printf("Finished draft %s early at pick %d", draftID, finished.CurrentPickNumber)
	return finished, nil
}

// CurrentTurn reports whose turn it is, or nil when the draft is not DURING.
func (a *App) CurrentTurn(ctx context.Context, draftID uuid.UUID) (*CurrentTurn, error) {
	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Status != models.DraftStatusDuring {
		return nil, nil
	}

	teams, err := a.teams.ListTeamsByDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return a.turnForCursor(draft, teams)
}

// turnForCursor resolves the team on the clock for the draft's cursor
// against the team list ordered by draft order number.
func (a *App) turnForCursor(draft *models.Draft, teams []models.Team) (*CurrentTurn, error) {
	if len(teams) == 0 {
		return nil, fmt.Errorf("draft %s has no teams: %w", draft.ID, core.ErrEmptyDraft)
	}

	idx := snake.TeamIndexForPick(draft.CurrentPickNumber, len(teams))
	turn := &CurrentTurn{
		PickNumber: draft.CurrentPickNumber,
		Round:      snake.Round(draft.CurrentPickNumber, len(teams)),
		Team:       teams[idx],
	}
	if draft.CurrentPickStartAt != nil {
		turn.StartedAt = *draft.CurrentPickStartAt
	}
	if draft.CurrentPickDeadline != nil {
		turn.Deadline = *draft.CurrentPickDeadline
	}
	return turn, nil
}

// CommitPick runs the exclusive turn commit on behalf of the pick ledger:
// insert the pick, advance the cursor, reset the deadline, then the
// completion check. Single transaction underneath.
func (a *App) CommitPick(ctx context.Context, draft *models.Draft, pick *models.Pick) (*models.Draft, error) {
	now := a.clock.Now()
	updated, err := a.repo.CommitTurn(ctx, CommitTurnRequest{
		DraftID:            draft.ID,
		ExpectedPickNumber: pick.PickNumber,
		Pick:               pick,
		Now:                now,
		NextDeadline:       now.Add(a.pickTimeLimit(draft)),
	})
	if err != nil {
		return nil, err
	}

	a.afterCursorMove(ctx, updated)
	return updated, nil
}

// AdvanceOnTimeout skips the current turn when its deadline elapsed with no
// committed pick. The slot is skipped: no Pick record is created. Losing the
// race to a just-committed pick is a no-op, not an error.
func (a *App) AdvanceOnTimeout(ctx context.Context, draftID uuid.UUID, expectedPickNumber int) error {
	draft, err := a.repo.GetDraft(ctx, draftID)
	if err != nil {
		return err
	}
	if draft.Status != models.DraftStatusDuring || draft.CurrentPickNumber != expectedPickNumber {
		// A pick landed (or the host finished) between the timer firing and
		// now. Nothing to do.
		return nil
	}

	teams, err := a.teams.ListTeamsByDraft(ctx, draftID)
	if err != nil {
		return fmt.Errorf("failed to list teams: %w", err)
	}
	skipped, err := a.turnForCursor(draft, teams)
	if err != nil {
		return err
	}

	now := a.clock.Now()
	updated, err := a.repo.CommitTurn(ctx, CommitTurnRequest{
		DraftID:            draftID,
		ExpectedPickNumber: expectedPickNumber,
		Now:                now,
		NextDeadline:       now.Add(a.pickTimeLimit(draft)),
	})
	if err != nil {
		if errors.Is(err, core.ErrSchedulingConflict) {
			return nil
		}
		return err
	}

	a.emitTurnSkipped(ctx, updated, skipped, now)
	a.afterCursorMove(ctx, updated)

	log.Printf("Auto-advanced draft %s past pick %d (team %s timed out)",
		draftID, expectedPickNumber, skipped.Team.ID)
	return nil
}

// FetchNextDeadline exposes the soonest pick deadline to the scheduler.
func (a *App) FetchNextDeadline(ctx context.Context) (*NextDeadline, error) {
	return a.repo.FetchNextDeadline(ctx)
}

// FetchDraftsDueForAdvance exposes overdue drafts to the scheduler.
func (a *App) FetchDraftsDueForAdvance(ctx context.Context, limit int32) ([]DueDraft, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}
	return a.repo.FetchDraftsDueForAdvance(ctx, a.clock.Now(), limit)
}

// afterCursorMove emits the follow-up event for a cursor move: the next
// turn's PickStarted while the draft is still DURING, DraftCompleted once
// the cursor has run past the last pick.
func (a *App) afterCursorMove(ctx context.Context, draft *models.Draft) {
	if draft.Status == models.DraftStatusPost {
		a.emitDraftCompleted(ctx, draft)
		return
	}

	teams, err := a.teams.ListTeamsByDraft(ctx, draft.ID)
	if err != nil {
		log.Printf("Failed to list teams for PickStarted event: %v", err)
		return
	}
	a.emitPickStarted(ctx, draft, teams)
}

func (a *App) pickTimeLimit(draft *models.Draft) time.Duration {
	secs := draft.Settings.TimePerPickSec
	if secs <= 0 {
		secs = a.defaults.TimePerPickSec
	}
	return time.Duration(secs) * time.Second
}

// Event emission helpers. Failure to record an event is logged, not
// propagated: the state change has already committed.

func (a *App) emitDraftStarted(ctx context.Context, draft *models.Draft, teamCount int) {
	payload := events.DraftStartedPayload{
		DraftID:     draft.ID.String(),
		StartedAt:   *draft.StartedAt,
		TotalRounds: draft.Settings.Rounds,
		TotalPicks:  draft.TotalPicks,
		TeamCount:   teamCount,
	}
	a.insertEvent(ctx, draft.ID, events.TypeDraftStarted, payload)
}

func (a *App) emitDraftCompleted(ctx context.Context, draft *models.Draft) {
	picksMade, err := a.repo.CountPicks(ctx, draft.ID)
	if err != nil {
		log.Printf("Failed to count picks for DraftCompleted event: %v", err)
	}
	payload := events.DraftCompletedPayload{
		DraftID:     draft.ID.String(),
		CompletedAt: a.clock.Now(),
		TotalPicks:  draft.TotalPicks,
		PicksMade:   picksMade,
	}
	a.insertEvent(ctx, draft.ID, events.TypeDraftCompleted, payload)
}

func (a *App) emitPickStarted(ctx context.Context, draft *models.Draft, teams []models.Team) {
	turn, err := a.turnForCursor(draft, teams)
	if err != nil {
		log.Printf("Failed to resolve turn for PickStarted event: %v", err)
		return
	}
	payload := events.PickStartedPayload{
		PickNumber:     turn.PickNumber,
		Round:          turn.Round,
		TeamID:         turn.Team.ID.String(),
		TeamName:       turn.Team.Name,
		StartedAt:      turn.StartedAt,
		TimeoutAt:      turn.Deadline,
		TimePerPickSec: draft.Settings.TimePerPickSec,
	}
	a.insertEvent(ctx, draft.ID, events.TypePickStarted, payload)
}

func (a *App) emitTurnSkipped(ctx context.Context, draft *models.Draft, skipped *CurrentTurn, at time.Time) {
	payload := events.TurnSkippedPayload{
		PickNumber: skipped.PickNumber,
		Round:      skipped.Round,
		TeamID:     skipped.Team.ID.String(),
		SkippedAt:  at,
	}
	a.insertEvent(ctx, draft.ID, events.TypeTurnSkipped, payload)
}

func (a *App) insertEvent(ctx context.Context, draftID uuid.UUID, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s payload: %v", eventType, err)
		return
	}
	if err := a.outbox.InsertEvent(ctx, draftID, eventType, data); err != nil {
		log.Printf("Failed to emit %s event: %v", eventType, err)
	}
}

// Validation methods

func (a *App) validateCreateDraftRequest(req CreateDraftRequest) error {
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if req.HostTeamName == "" {
		return fmt.Errorf("host_team_name is required")
	}
	if req.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}
	return nil
}
