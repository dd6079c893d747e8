package draft

import (
	"time"

	"github.com/google/uuid"
	"github.com/rinkdraft/rinkdraft/internal/models"
)

// CreateDraftRequest represents a request to create a new draft. The host's
// team is created alongside the draft with draft order 1.
type CreateDraftRequest struct {
	Name         string    `json:"name"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	HostTeamName string    `json:"host_team_name"`
}

// CurrentTurn describes the pick currently on the clock.
type CurrentTurn struct {
	PickNumber int         `json:"pick_number"`
	Round      int         `json:"round"`
	Team       models.Team `json:"team"`
	StartedAt  time.Time   `json:"started_at"`
	Deadline   time.Time   `json:"deadline"`
}

// CommitTurnRequest asks the repository to advance the cursor past
// ExpectedPickNumber, optionally recording Pick in the same transaction.
// The cursor compare-and-swap is the single serialization point shared by
// pick submission and advance-on-timeout: exactly one caller wins each pick
// number.
type CommitTurnRequest struct {
	DraftID            uuid.UUID
	ExpectedPickNumber int
	Pick               *models.Pick // nil for a skipped (timed-out) turn
	Now                time.Time
	NextDeadline       time.Time
}

// NextDeadline is the soonest pick deadline across all DURING drafts.
type NextDeadline struct {
	DraftID  uuid.UUID  `json:"draft_id"`
	Deadline *time.Time `json:"deadline"`
}
