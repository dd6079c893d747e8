package presence

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rinkdraft/rinkdraft/internal/models"
)

const (
	// DefaultOnlineThreshold is how recently a principal must have been
	// seen to count as online.
	DefaultOnlineThreshold = 30 * time.Second

	// DefaultEntryTTL is how long a stale entry may linger before the
	// janitor removes it.
	DefaultEntryTTL = 10 * time.Minute

	// DefaultSweepInterval is how often the janitor runs.
	DefaultSweepInterval = time.Minute
)

// PresenceRepository defines what the app layer needs from the presence
// repository.
type PresenceRepository interface {
	Upsert(ctx context.Context, draftID uuid.UUID, principalID string, seenAt time.Time) error
	Delete(ctx context.Context, draftID uuid.UUID, principalID string) error
	ListSeenSince(ctx context.Context, draftID uuid.UUID, cutoff time.Time) ([]models.PresenceEntry, error)
	DeleteSeenBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// App tracks who is in a draft room. Online membership is derived from
// last_seen recency at read time, never stored.
type App struct {
	repo            PresenceRepository
	onlineThreshold time.Duration
	entryTTL        time.Duration
	sweepInterval   time.Duration
	clock           clockwork.Clock
}

// NewApp creates a presence App with the default thresholds.
func NewApp(repo PresenceRepository) *App {
	return &App{
		repo:            repo,
		onlineThreshold: DefaultOnlineThreshold,
		entryTTL:        DefaultEntryTTL,
		sweepInterval:   DefaultSweepInterval,
		clock:           clockwork.NewRealClock(),
	}
}

// Heartbeat records that the principal is (still) in the draft room.
func (a *App) Heartbeat(ctx context.Context, draftID uuid.UUID, principalID string) error {
	return a.repo.Upsert(ctx, draftID, principalID, a.clock.Now())
}

// Leave removes the principal from the room. Idempotent: leaving twice,
// or leaving without ever joining, succeeds.
func (a *App) Leave(ctx context.Context, draftID uuid.UUID, principalID string) error {
	return a.repo.Delete(ctx, draftID, principalID)
}

// OnlineSet returns the principals seen within the online threshold.
func (a *App) OnlineSet(ctx context.Context, draftID uuid.UUID) ([]models.PresenceEntry, error) {
	cutoff := a.clock.Now().Add(-a.onlineThreshold)
	return a.repo.ListSeenSince(ctx, draftID, cutoff)
}

// RunJanitor sweeps stale entries until the context is cancelled. Entries
// past the TTL are rows whose owner stopped heartbeating without calling
// Leave; sweeping them keeps the table from accumulating dead rows but
// is not what makes them disappear from OnlineSet, recency does that.
func (a *App) RunJanitor(ctx context.Context) error {
	log.Printf("Presence janitor running: ttl=%s interval=%s", a.entryTTL, a.sweepInterval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.clock.After(a.sweepInterval):
		}

		cutoff := a.clock.Now().Add(-a.entryTTL)
		removed, err := a.repo.DeleteSeenBefore(ctx, cutoff)
		if err != nil {
			log.Printf("Presence sweep failed: %v", err)
			continue
		}
		if removed > 0 {
			log.Printf("Presence sweep removed %d stale entries", removed)
		}
	}
}
