// Package orchestrator advances drafts whose pick deadline has elapsed.
// Deadlines live in the drafts table, so the scheduler is stateless: it
// sleeps until the soonest stored deadline, claims due drafts in batches,
// and hands them to a worker pool. The skip itself goes through the same
// conditional cursor commit a submitted pick uses, so a timeout can never
// double-advance a draft another instance (or a racing pick) already moved.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	draftapp "github.com/rinkdraft/rinkdraft/internal/draft/draft"
)

// DraftApp defines what the orchestrator needs from the draft app.
type DraftApp interface {
	FetchNextDeadline(ctx context.Context) (*draftapp.NextDeadline, error)
	FetchDraftsDueForAdvance(ctx context.Context, limit int32) ([]draftapp.DueDraft, error)
	AdvanceOnTimeout(ctx context.Context, draftID uuid.UUID, expectedPickNumber int) error
}

type Config struct {
	BatchSize  int32
	NumWorkers int
	NATSURL    string
}

func DefaultConfig() Config {
	return Config{
		BatchSize:  16,
		NumWorkers: 10,
		NATSURL:    nats.DefaultURL,
	}
}

type dueItem struct {
	draftID    uuid.UUID
	pickNumber int
}

type Orchestrator struct {
	drafts     DraftApp
	config     Config
	clock      clockwork.Clock
	wakeCh     chan struct{}
	instanceID string

	workCh chan dueItem

	// Tracks drafts handed to workers so one draft is never advanced by
	// two workers at once within this instance.
	inFlight   map[uuid.UUID]bool
	inFlightMu sync.Mutex

	nc       *nats.Conn
	consumer jetstream.Consumer
}

func New(drafts DraftApp, cfg Config) *Orchestrator {
	return &Orchestrator{
		drafts:     drafts,
		config:     cfg,
		clock:      clockwork.NewRealClock(),
		wakeCh:     make(chan struct{}, 1),
		instanceID: uuid.New().String()[:8],
		workCh:     make(chan dueItem, cfg.NumWorkers*2),
		inFlight:   make(map[uuid.UUID]bool),
	}
}

// Wake nudges the scheduler to re-read the next deadline. Safe to call from
// any goroutine; a pending wake is not duplicated.
func (o *Orchestrator) Wake() {
	select {
	case o.wakeCh <- struct{}{}:
	default:
	}
}

// Close releases the NATS connection if the event consumer was started.
func (o *Orchestrator) Close() error {
	if o.nc != nil {
		o.nc.Close()
	}
	return nil
}

func (o *Orchestrator) handleTimeout(ctx context.Context, item dueItem) error {
	log.Info().
		Str("draft_id", item.draftID.String()).
		Int("pick_number", item.pickNumber).
		Msg("pick deadline elapsed, advancing")

	return o.drafts.AdvanceOnTimeout(ctx, item.draftID, item.pickNumber)
}

// worker processes due drafts from the work channel.
func (o *Orchestrator) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-o.workCh:
			if !ok {
				return
			}

			if err := o.handleTimeout(ctx, item); err != nil {
				log.Error().Err(err).
					Str("draft_id", item.draftID.String()).
					Str("instance", o.instanceID).
					Int("worker_id", workerID).
					Msg("timeout handling failed")
			}

			o.inFlightMu.Lock()
			delete(o.inFlight, item.draftID)
			o.inFlightMu.Unlock()
		}
	}
}

// enqueueDue queues due drafts for the worker pool, skipping those already
// in flight. Returns false if the context was cancelled while queueing.
func (o *Orchestrator) enqueueDue(ctx context.Context, due []draftapp.DueDraft) bool {
	for _, d := range due {
		o.inFlightMu.Lock()
		if o.inFlight[d.DraftID] {
			o.inFlightMu.Unlock()
			continue
		}
		o.inFlight[d.DraftID] = true
		o.inFlightMu.Unlock()

		select {
		case <-ctx.Done():
			o.inFlightMu.Lock()
			delete(o.inFlight, d.DraftID)
			o.inFlightMu.Unlock()
			return false
		case o.workCh <- dueItem{draftID: d.DraftID, pickNumber: d.PickNumber}:
		}
	}
	return true
}

func sleepUntil(deadline time.Time, now time.Time) time.Duration {
	wait := deadline.Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}
