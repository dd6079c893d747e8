package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/goleak"

	draftapp "github.com/rinkdraft/rinkdraft/internal/draft/draft"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeSchedulerApp serves one pending deadline and records advances. Once a
// draft is advanced its deadline is cleared, as committing the skip would do.
type fakeSchedulerApp struct {
	mu       sync.Mutex
	deadline *draftapp.NextDeadline
	due      []draftapp.DueDraft
	advanced []uuid.UUID
}

func (f *fakeSchedulerApp) FetchNextDeadline(ctx context.Context) (*draftapp.NextDeadline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deadline, nil
}

func (f *fakeSchedulerApp) FetchDraftsDueForAdvance(ctx context.Context, limit int32) ([]draftapp.DueDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deadline == nil || f.deadline.Deadline.After(time.Now()) {
		return nil, nil
	}
	return f.due, nil
}

func (f *fakeSchedulerApp) AdvanceOnTimeout(ctx context.Context, draftID uuid.UUID, expectedPickNumber int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.advanced = append(f.advanced, draftID)
	f.deadline = nil
	f.due = nil
	return nil
}

func (f *fakeSchedulerApp) setDue(draftID uuid.UUID, pickNumber int, deadline time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deadline = &draftapp.NextDeadline{DraftID: draftID, Deadline: &deadline}
	f.due = []draftapp.DueDraft{{DraftID: draftID, PickNumber: pickNumber}}
}

func (f *fakeSchedulerApp) advancedIDs() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uuid.UUID, len(f.advanced))
	copy(out, f.advanced)
	return out
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func runScheduler(t *testing.T, app DraftApp) (cancel func()) {
	t.Helper()
	o := New(app, Config{BatchSize: 16, NumWorkers: 2})

	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- o.RunScheduler(ctx)
	}()

	return func() {
		cancelCtx()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("scheduler exited with error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("scheduler did not shut down")
		}
	}
}

func TestSchedulerAdvancesDueDraft(t *testing.T) {
	app := &fakeSchedulerApp{}
	draftID := uuid.New()
	app.setDue(draftID, 4, time.Now().Add(20*time.Millisecond))

	stop := runScheduler(t, app)
	defer stop()

	waitFor(t, 2*time.Second, func() bool {
		return len(app.advancedIDs()) > 0
	})

	ids := app.advancedIDs()
	if ids[0] != draftID {
		t.Fatalf("advanced wrong draft: %s", ids[0])
	}
}

func TestWakeShortensIdlePoll(t *testing.T) {
	app := &fakeSchedulerApp{}
	o := New(app, Config{BatchSize: 16, NumWorkers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- o.RunScheduler(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	// Let the scheduler settle into its idle poll, then publish a deadline
	// that is already due and nudge it. Without the wake it would sit out
	// the full idle interval.
	time.Sleep(30 * time.Millisecond)
	draftID := uuid.New()
	app.setDue(draftID, 1, time.Now())
	o.Wake()

	waitFor(t, time.Second, func() bool {
		return len(app.advancedIDs()) > 0
	})
}

func TestWakeDoesNotBlock(t *testing.T) {
	o := New(&fakeSchedulerApp{}, DefaultConfig())
	for i := 0; i < 100; i++ {
		o.Wake()
	}
}

func TestSleepUntil(t *testing.T) {
	now := time.Now()
	if d := sleepUntil(now.Add(time.Second), now); d != time.Second {
		t.Fatalf("expected 1s, got %s", d)
	}
	if d := sleepUntil(now.Add(-time.Second), now); d != 0 {
		t.Fatalf("expected 0 for elapsed deadline, got %s", d)
	}
}
