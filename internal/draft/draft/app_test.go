package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	core "github.com/rinkdraft/rinkdraft/internal/draft"
	"github.com/rinkdraft/rinkdraft/internal/models"
)

// fakeDraftRepo keeps drafts in memory and honors the same conditional
// update semantics as the Postgres repository: StartDraft requires PRE,
// CommitTurn compare-and-swaps on (DURING, cursor).
type fakeDraftRepo struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]*models.Draft
	picks  map[uuid.UUID][]models.Pick
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{
		drafts: make(map[uuid.UUID]*models.Draft),
		picks:  make(map[uuid.UUID][]models.Pick),
	}
}

func (f *fakeDraftRepo) CreateDraft(ctx context.Context, id uuid.UUID, hostPrincipalID string, req CreateDraftRequest, settings models.DraftSettings) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := &models.Draft{
		ID:                id,
		Name:              req.Name,
		HostPrincipalID:   hostPrincipalID,
		Status:            models.DraftStatusPre,
		Settings:          settings,
		ScheduledAt:       req.ScheduledAt,
		CurrentPickNumber: 1,
	}
	f.drafts[id] = d
	copied := *d
	return &copied, nil
}

func (f *fakeDraftRepo) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[id]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", id, core.ErrNotFound)
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDraftRepo) ListDraftsForPrincipal(ctx context.Context, principalID string) ([]models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Draft
	for _, d := range f.drafts {
		if d.HostPrincipalID == principalID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDraftRepo) StartDraft(ctx context.Context, id uuid.UUID, now, deadline time.Time, totalPicks int) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	if d.Status != models.DraftStatusPre {
		return nil, fmt.Errorf("draft is %s: %w", d.Status, core.ErrInvalidState)
	}
	d.Status = models.DraftStatusDuring
	d.StartedAt = &now
	d.CurrentPickNumber = 1
	d.CurrentPickStartAt = &now
	d.CurrentPickDeadline = &deadline
	d.TotalPicks = totalPicks
	copied := *d
	return &copied, nil
}

func (f *fakeDraftRepo) FinishDraft(ctx context.Context, id uuid.UUID, now time.Time) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	if d.Status != models.DraftStatusDuring {
		return nil, fmt.Errorf("draft is %s: %w", d.Status, core.ErrInvalidState)
	}
	d.Status = models.DraftStatusPost
	d.CompletedAt = &now
	d.CurrentPickStartAt = nil
	d.CurrentPickDeadline = nil
	copied := *d
	return &copied, nil
}

func (f *fakeDraftRepo) CommitTurn(ctx context.Context, req CommitTurnRequest) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[req.DraftID]
	if !ok {
		return nil, core.ErrNotFound
	}
	if d.Status != models.DraftStatusDuring || d.CurrentPickNumber != req.ExpectedPickNumber {
		return nil, fmt.Errorf("pick %d already resolved: %w", req.ExpectedPickNumber, core.ErrSchedulingConflict)
	}
	if req.Pick != nil {
		for _, p := range f.picks[req.DraftID] {
			if p.PlayerID == req.Pick.PlayerID {
				return nil, fmt.Errorf("player taken: %w", core.ErrPlayerAlreadyPicked)
			}
		}
		f.picks[req.DraftID] = append(f.picks[req.DraftID], *req.Pick)
	}
	d.CurrentPickNumber++
	d.CurrentPickStartAt = &req.Now
	d.CurrentPickDeadline = &req.NextDeadline
	if d.CurrentPickNumber > d.TotalPicks {
		d.Status = models.DraftStatusPost
		d.CompletedAt = &req.Now
		d.CurrentPickStartAt = nil
		d.CurrentPickDeadline = nil
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDraftRepo) FetchNextDeadline(ctx context.Context) (*NextDeadline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var nd *NextDeadline
	for _, d := range f.drafts {
		if d.Status != models.DraftStatusDuring || d.CurrentPickDeadline == nil {
			continue
		}
		if nd == nil || d.CurrentPickDeadline.Before(*nd.Deadline) {
			deadline := *d.CurrentPickDeadline
			nd = &NextDeadline{DraftID: d.ID, Deadline: &deadline}
		}
	}
	return nd, nil
}

func (f *fakeDraftRepo) FetchDraftsDueForAdvance(ctx context.Context, asOf time.Time, limit int32) ([]DueDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var due []DueDraft
	for _, d := range f.drafts {
		if d.Status != models.DraftStatusDuring || d.CurrentPickDeadline == nil {
			continue
		}
		if !d.CurrentPickDeadline.After(asOf) {
			due = append(due, DueDraft{DraftID: d.ID, PickNumber: d.CurrentPickNumber})
		}
		if int32(len(due)) >= limit {
			break
		}
	}
	return due, nil
}

func (f *fakeDraftRepo) CountPicks(ctx context.Context, draftID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.picks[draftID]), nil
}

type fakeTeamRepo struct {
	mu    sync.Mutex
	teams map[uuid.UUID][]models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[uuid.UUID][]models.Team)}
}

func (f *fakeTeamRepo) CreateTeam(ctx context.Context, team models.Team) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teams[team.DraftID] = append(f.teams[team.DraftID], team)
	return &team, nil
}

func (f *fakeTeamRepo) ListTeamsByDraft(ctx context.Context, draftID uuid.UUID) ([]models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Team, len(f.teams[draftID]))
	copy(out, f.teams[draftID])
	return out, nil
}

type recordedEvent struct {
	draftID   uuid.UUID
	eventType string
	payload   []byte
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeOutbox) InsertEvent(ctx context.Context, draftID uuid.UUID, eventType string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{draftID: draftID, eventType: eventType, payload: payload})
	return nil
}

func (f *fakeOutbox) typesFor(draftID uuid.UUID) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var types []string
	for _, e := range f.events {
		if e.draftID == draftID {
			types = append(types, e.eventType)
		}
	}
	return types
}

var testDefaults = models.DraftSettings{Rounds: 2, TimePerPickSec: 45}

func newTestApp(t *testing.T) (*App, *fakeDraftRepo, *fakeTeamRepo, *fakeOutbox, *clockwork.FakeClock) {
	t.Helper()
	repo := newFakeDraftRepo()
	teams := newFakeTeamRepo()
	outbox := &fakeOutbox{}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC))
	app := NewApp(repo, teams, outbox, testDefaults)
	app.clock = clock
	return app, repo, teams, outbox, clock
}

// setupRunningDraft creates a draft with the given team owners and starts it.
func setupRunningDraft(t *testing.T, app *App, clock *clockwork.FakeClock, teamRepo *fakeTeamRepo, owners ...string) *models.Draft {
	t.Helper()
	ctx := context.Background()

	draft, err := app.CreateDraft(ctx, owners[0], CreateDraftRequest{
		Name:         "Friday Night Draft",
		ScheduledAt:  clock.Now(),
		HostTeamName: "Team 1",
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	for i, owner := range owners[1:] {
		_, err := teamRepo.CreateTeam(ctx, models.Team{
			ID:               uuid.New(),
			DraftID:          draft.ID,
			OwnerPrincipalID: owner,
			Name:             fmt.Sprintf("Team %d", i+2),
			DraftOrderNumber: i + 2,
		})
		if err != nil {
			t.Fatalf("create team: %v", err)
		}
	}

	started, err := app.Start(ctx, owners[0], draft.ID)
	if err != nil {
		t.Fatalf("start draft: %v", err)
	}
	return started
}

func TestCreateDraftCreatesHostTeam(t *testing.T) {
	app, _, teamRepo, _, clock := newTestApp(t)
	ctx := context.Background()

	draft, err := app.CreateDraft(ctx, "host-1", CreateDraftRequest{
		Name:         "Playoff Pool",
		ScheduledAt:  clock.Now(),
		HostTeamName: "Ice Dogs",
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if draft.Status != models.DraftStatusPre {
		t.Fatalf("expected PRE status, got %s", draft.Status)
	}
	if draft.CurrentPickNumber != 1 {
		t.Fatalf("expected cursor at 1, got %d", draft.CurrentPickNumber)
	}

	teams, _ := teamRepo.ListTeamsByDraft(ctx, draft.ID)
	if len(teams) != 1 {
		t.Fatalf("expected 1 team, got %d", len(teams))
	}
	if teams[0].OwnerPrincipalID != "host-1" || teams[0].DraftOrderNumber != 1 {
		t.Fatalf("unexpected host team: %+v", teams[0])
	}
}

func TestCreateDraftValidation(t *testing.T) {
	app, _, _, _, clock := newTestApp(t)

	cases := []CreateDraftRequest{
		{ScheduledAt: clock.Now(), HostTeamName: "A"},
		{Name: "No Team", ScheduledAt: clock.Now()},
		{Name: "No Time", HostTeamName: "A"},
	}
	for i, req := range cases {
		if _, err := app.CreateDraft(context.Background(), "host-1", req); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestStartRequiresHost(t *testing.T) {
	app, _, _, _, clock := newTestApp(t)
	ctx := context.Background()

	draft, err := app.CreateDraft(ctx, "host-1", CreateDraftRequest{
		Name: "D", ScheduledAt: clock.Now(), HostTeamName: "T",
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	if _, err := app.Start(ctx, "someone-else", draft.ID); !errors.Is(err, core.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestStartBeforeScheduledTime(t *testing.T) {
	app, _, _, _, clock := newTestApp(t)
	ctx := context.Background()

	draft, err := app.CreateDraft(ctx, "host-1", CreateDraftRequest{
		Name: "D", ScheduledAt: clock.Now().Add(time.Hour), HostTeamName: "T",
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	if _, err := app.Start(ctx, "host-1", draft.ID); !errors.Is(err, core.ErrTimingViolation) {
		t.Fatalf("expected ErrTimingViolation, got %v", err)
	}

	clock.Advance(time.Hour)
	if _, err := app.Start(ctx, "host-1", draft.ID); err != nil {
		t.Fatalf("start after scheduled time: %v", err)
	}
}

func TestStartEmptyDraft(t *testing.T) {
	app, repo, _, _, clock := newTestApp(t)
	ctx := context.Background()

	// Seed the draft through the repository so no host team exists.
	draft, err := repo.CreateDraft(ctx, uuid.New(), "host-1", CreateDraftRequest{
		Name:         "Nobody Home",
		ScheduledAt:  clock.Now(),
		HostTeamName: "Ghosts",
	}, testDefaults)
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	if _, err := app.Start(ctx, "host-1", draft.ID); !errors.Is(err, core.ErrEmptyDraft) {
		t.Fatalf("expected ErrEmptyDraft, got %v", err)
	}
}

func TestStartSetsCursorAndTotalPicks(t *testing.T) {
	app, _, teamRepo, outbox, clock := newTestApp(t)

	draft := setupRunningDraft(t, app, clock, teamRepo, "host-1", "user-2", "user-3", "user-4")

	if draft.Status != models.DraftStatusDuring {
		t.Fatalf("expected DURING, got %s", draft.Status)
	}
	if draft.TotalPicks != 8 { // 4 teams x 2 rounds
		t.Fatalf("expected 8 total picks, got %d", draft.TotalPicks)
	}
	if draft.CurrentPickNumber != 1 {
		t.Fatalf("expected cursor at 1, got %d", draft.CurrentPickNumber)
	}
	wantDeadline := clock.Now().Add(45 * time.Second)
	if draft.CurrentPickDeadline == nil || !draft.CurrentPickDeadline.Equal(wantDeadline) {
		t.Fatalf("expected deadline %v, got %v", wantDeadline, draft.CurrentPickDeadline)
	}

	types := outbox.typesFor(draft.ID)
	if len(types) != 2 || types[0] != "DraftStarted" || types[1] != "PickStarted" {
		t.Fatalf("unexpected events: %v", types)
	}
}

func TestStartTwiceFails(t *testing.T) {
	app, _, teamRepo, _, clock := newTestApp(t)
	draft := setupRunningDraft(t, app, clock, teamRepo, "host-1", "user-2")

	if _, err := app.Start(context.Background(), "host-1", draft.ID); !errors.Is(err, core.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestCurrentTurnNilOutsideDuring(t *testing.T) {
	app, _, _, _, clock := newTestApp(t)
	ctx := context.Background()

	draft, err := app.CreateDraft(ctx, "host-1", CreateDraftRequest{
		Name: "D", ScheduledAt: clock.Now(), HostTeamName: "T",
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	turn, err := app.CurrentTurn(ctx, draft.ID)
	if err != nil {
		t.Fatalf("current turn: %v", err)
	}
	if turn != nil {
		t.Fatalf("expected nil turn for PRE draft, got %+v", turn)
	}
}

func TestCurrentTurnFollowsSnakeOrder(t *testing.T) {
	app, _, teamRepo, _, clock := newTestApp(t)
	ctx := context.Background()
	draft := setupRunningDraft(t, app, clock, teamRepo, "host-1", "user-2", "user-3")

	// Round 1: teams 1,2,3. Round 2: teams 3,2,1.
	wantOwners := []string{"host-1", "user-2", "user-3", "user-3", "user-2", "host-1"}

	for i, want := range wantOwners {
		turn, err := app.CurrentTurn(ctx, draft.ID)
		if err != nil {
			t.Fatalf("pick %d: current turn: %v", i+1, err)
		}
		if turn == nil {
			t.Fatalf("pick %d: expected a turn", i+1)
		}
		if turn.PickNumber != i+1 {
			t.Fatalf("pick %d: cursor at %d", i+1, turn.PickNumber)
		}
		if turn.Team.OwnerPrincipalID != want {
			t.Fatalf("pick %d: expected %s on the clock, got %s", i+1, want, turn.Team.OwnerPrincipalID)
		}

		current, _ := app.GetDraft(ctx, draft.ID)
		pick := &models.Pick{
			ID: uuid.New(), DraftID: draft.ID, TeamID: turn.Team.ID,
			PlayerID: uuid.New(), PickNumber: turn.PickNumber, Round: turn.Round,
			PickedAt: clock.Now(),
		}
		if _, err := app.CommitPick(ctx, current, pick); err != nil {
			t.Fatalf("pick %d: commit: %v", i+1, err)
		}
	}

	final, _ := app.GetDraft(ctx, draft.ID)
	if final.Status != models.DraftStatusPost {
		t.Fatalf("expected POST after final pick, got %s", final.Status)
	}
	if final.CompletedAt == nil {
		t.Fatal("expected completed_at to be set")
	}
}

func TestCommitPickResetsDeadline(t *testing.T) {
	app, _, teamRepo, _, clock := newTestApp(t)
	ctx := context.Background()
	draft := setupRunningDraft(t, app, clock, teamRepo, "host-1", "user-2")

	clock.Advance(30 * time.Second)
	turn, _ := app.CurrentTurn(ctx, draft.ID)
	current, _ := app.GetDraft(ctx, draft.ID)

	updated, err := app.CommitPick(ctx, current, &models.Pick{
		ID: uuid.New(), DraftID: draft.ID, TeamID: turn.Team.ID,
		PlayerID: uuid.New(), PickNumber: 1, Round: 1, PickedAt: clock.Now(),
	})
	if err != nil {
		t.Fatalf("commit pick: %v", err)
	}

	if updated.CurrentPickNumber != 2 {
		t.Fatalf("expected cursor at 2, got %d", updated.CurrentPickNumber)
	}
	wantDeadline := clock.Now().Add(45 * time.Second)
	if updated.CurrentPickDeadline == nil || !updated.CurrentPickDeadline.Equal(wantDeadline) {
		t.Fatalf("expected deadline %v, got %v", wantDeadline, updated.CurrentPickDeadline)
	}
}

func TestConcurrentCommitsSingleWinner(t *testing.T) {
	app, _, teamRepo, _, clock := newTestApp(t)
	ctx := context.Background()
	draft := setupRunningDraft(t, app, clock, teamRepo, "host-1", "user-2")

	turn, _ := app.CurrentTurn(ctx, draft.ID)
	current, _ := app.GetDraft(ctx, draft.ID)

	const contenders = 16
	var wg sync.WaitGroup
	errs := make([]error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = app.CommitPick(ctx, current, &models.Pick{
				ID: uuid.New(), DraftID: draft.ID, TeamID: turn.Team.ID,
				PlayerID: uuid.New(), PickNumber: 1, Round: 1, PickedAt: clock.Now(),
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, core.ErrSchedulingConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 winner, got %d", winners)
	}

	final, _ := app.GetDraft(ctx, draft.ID)
	if final.CurrentPickNumber != 2 {
		t.Fatalf("expected cursor at 2 after race, got %d", final.CurrentPickNumber)
	}
}

func TestAdvanceOnTimeoutSkipsTurn(t *testing.T) {
	app, repo, teamRepo, outbox, clock := newTestApp(t)
	ctx := context.Background()
	draft := setupRunningDraft(t, app, clock, teamRepo, "host-1", "user-2")

	clock.Advance(46 * time.Second)
	if err := app.AdvanceOnTimeout(ctx, draft.ID, 1); err != nil {
		t.Fatalf("advance on timeout: %v", err)
	}

	after, _ := app.GetDraft(ctx, draft.ID)
	if after.CurrentPickNumber != 2 {
		t.Fatalf("expected cursor at 2, got %d", after.CurrentPickNumber)
	}

	// A skipped turn records no pick.
	count, _ := repo.CountPicks(ctx, draft.ID)
	if count != 0 {
		t.Fatalf("expected 0 picks after skip, got %d", count)
	}

	types := outbox.typesFor(draft.ID)
	last := types[len(types)-1]
	if last != "PickStarted" {
		t.Fatalf("expected PickStarted after skip, got %s", last)
	}
	foundSkip := false
	for _, tp := range types {
		if tp == "TurnSkipped" {
			foundSkip = true
		}
	}
	if !foundSkip {
		t.Fatalf("expected TurnSkipped event, got %v", types)
	}
}

func TestAdvanceOnTimeoutNoopWhenCursorMoved(t *testing.T) {
	app, _, teamRepo, _, clock := newTestApp(t)
	ctx := context.Background()
	draft := setupRunningDraft(t, app, clock, teamRepo, "host-1", "user-2")

	turn, _ := app.CurrentTurn(ctx, draft.ID)
	current, _ := app.GetDraft(ctx, draft.ID)
	if _, err := app.CommitPick(ctx, current, &models.Pick{
		ID: uuid.New(), DraftID: draft.ID, TeamID: turn.Team.ID,
		PlayerID: uuid.New(), PickNumber: 1, Round: 1, PickedAt: clock.Now(),
	}); err != nil {
		t.Fatalf("commit pick: %v", err)
	}

	// The timer for pick 1 fires late; the cursor already moved on.
	if err := app.AdvanceOnTimeout(ctx, draft.ID, 1); err != nil {
		t.Fatalf("expected stale timeout to be a no-op, got %v", err)
	}

	after, _ := app.GetDraft(ctx, draft.ID)
	if after.CurrentPickNumber != 2 {
		t.Fatalf("stale timeout must not advance: cursor at %d", after.CurrentPickNumber)
	}
}

func TestTimeoutOnFinalPickCompletesDraft(t *testing.T) {
	app, _, teamRepo, outbox, clock := newTestApp(t)
	ctx := context.Background()
	draft := setupRunningDraft(t, app, clock, teamRepo, "host-1")

	// 1 team x 2 rounds = 2 picks, both timed out.
	for pickNum := 1; pickNum <= 2; pickNum++ {
		clock.Advance(46 * time.Second)
		if err := app.AdvanceOnTimeout(ctx, draft.ID, pickNum); err != nil {
			t.Fatalf("timeout pick %d: %v", pickNum, err)
		}
	}

	final, _ := app.GetDraft(ctx, draft.ID)
	if final.Status != models.DraftStatusPost {
		t.Fatalf("expected POST, got %s", final.Status)
	}

	types := outbox.typesFor(draft.ID)
	last := types[len(types)-1]
	if last != "DraftCompleted" {
		t.Fatalf("expected DraftCompleted last, got %v", types)
	}
}

func TestFinishEarly(t *testing.T) {
	app, _, teamRepo, _, clock := newTestApp(t)
	ctx := context.Background()
	draft := setupRunningDraft(t, app, clock, teamRepo, "host-1", "user-2")

	if _, err := app.Finish(ctx, "user-2", draft.ID); !errors.Is(err, core.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for non-host, got %v", err)
	}

	finished, err := app.Finish(ctx, "host-1", draft.ID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if finished.Status != models.DraftStatusPost {
		t.Fatalf("expected POST, got %s", finished.Status)
	}

	if _, err := app.Finish(ctx, "host-1", draft.ID); !errors.Is(err, core.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on double finish, got %v", err)
	}
}

func TestFetchNextDeadline(t *testing.T) {
	app, _, teamRepo, _, clock := newTestApp(t)
	ctx := context.Background()

	nd, err := app.FetchNextDeadline(ctx)
	if err != nil {
		t.Fatalf("fetch next deadline: %v", err)
	}
	if nd != nil {
		t.Fatalf("expected no deadline with no drafts, got %+v", nd)
	}

	draft := setupRunningDraft(t, app, clock, teamRepo, "host-1", "user-2")

	nd, err = app.FetchNextDeadline(ctx)
	if err != nil {
		t.Fatalf("fetch next deadline: %v", err)
	}
	if nd == nil || nd.DraftID != draft.ID {
		t.Fatalf("expected deadline for draft %s, got %+v", draft.ID, nd)
	}

	clock.Advance(time.Minute)
	due, err := app.FetchDraftsDueForAdvance(ctx, 10)
	if err != nil {
		t.Fatalf("fetch due: %v", err)
	}
	if len(due) != 1 || due[0].DraftID != draft.ID || due[0].PickNumber != 1 {
		t.Fatalf("unexpected due drafts: %+v", due)
	}
}
