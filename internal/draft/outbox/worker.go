package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/rinkdraft/rinkdraft/internal/sqlutil"
)

type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int32
	MaxRetries   int
	RetryDelay   time.Duration

	// Sent rows older than RetentionAge are pruned every PruneInterval.
	PruneInterval time.Duration
	RetentionAge  time.Duration
}

func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval:  time.Second,
		BatchSize:     100,
		MaxRetries:    3,
		RetryDelay:    time.Second,
		PruneInterval: time.Hour,
		RetentionAge:  24 * time.Hour,
	}
}

// Worker polls the outbox table and relays unsent events to the publisher.
// Fetch and mark-sent share one transaction per batch, so a crash between
// publish and commit redelivers the batch and the publisher's message-ID
// dedup absorbs it.
type Worker struct {
	repo      *Repository
	publisher EventPublisher
	config    WorkerConfig

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewWorker(repo *Repository, publisher EventPublisher, cfg WorkerConfig) *Worker {
	return &Worker{
		repo:      repo,
		publisher: publisher,
		config:    cfg,
		stopChan:  make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	log.Info().
		Dur("poll_interval", w.config.PollInterval).
		Int32("batch_size", w.config.BatchSize).
		Msg("outbox worker started")

	return nil
}

func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker not running")
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()

	log.Info().Msg("outbox worker stopped")
	return nil
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	pruneTicker := time.NewTicker(w.config.PruneInterval)
	defer pruneTicker.Stop()

	// Drain whatever accumulated before the worker came up.
	w.processOutbox(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.processOutbox(ctx)
		case <-pruneTicker.C:
			w.pruneSent(ctx)
		}
	}
}

// pruneSent drops relayed rows past the retention window. The stream keeps
// its own copy, so pruned rows are only lost from the table.
func (w *Worker) pruneSent(ctx context.Context) {
	removed, err := w.repo.DeleteSentBefore(ctx, time.Now().Add(-w.config.RetentionAge))
	if err != nil {
		log.Error().Err(err).Msg("failed to prune sent events")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("pruned sent outbox events")
	}
}

func (w *Worker) processOutbox(ctx context.Context) {
	var total, sent int
	err := sqlutil.WithTx(ctx, w.repo.Pool(), func(tx pgx.Tx) error {
		events, err := w.repo.FetchUnsent(ctx, tx, w.config.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to fetch unsent events: %w", err)
		}
		total = len(events)
		if total == 0 {
			return nil
		}

		var sentIDs []uuid.UUID
		for _, event := range events {
			if err := w.publishWithRetry(ctx, event); err != nil {
				log.Error().Err(err).
					Str("event_id", event.ID.String()).
					Str("event_type", event.EventType).
					Msg("failed to publish event")
				continue
			}
			sentIDs = append(sentIDs, event.ID)
		}
		sent = len(sentIDs)

		if len(sentIDs) > 0 {
			if err := w.repo.MarkSent(ctx, tx, sentIDs); err != nil {
				return fmt.Errorf("failed to mark events sent: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("outbox batch failed")
		return
	}

	if total > 0 {
		log.Debug().
			Int("total", total).
			Int("sent", sent).
			Msg("processed outbox batch")
	}
}

func (w *Worker) publishWithRetry(ctx context.Context, event Event) error {
	var lastErr error

	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.config.RetryDelay * time.Duration(attempt)):
			}
		}

		if err := w.publisher.Publish(ctx, event); err != nil {
			lastErr = err
			log.Warn().Err(err).
				Str("event_id", event.ID.String()).
				Int("attempt", attempt+1).
				Msg("publish failed, retrying")
			continue
		}
		return nil
	}

	return fmt.Errorf("failed after %d attempts: %w", w.config.MaxRetries+1, lastErr)
}
