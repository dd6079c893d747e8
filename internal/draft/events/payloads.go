// Package events holds the payload types shared between the draft packages,
// the outbox, and the gateway.
package events

import "time"

// Event type names as stored in the outbox and published on the bus.
const (
	TypeDraftStarted   = "DraftStarted"
	TypeDraftCompleted = "DraftCompleted"
	TypePickStarted    = "PickStarted"
	TypePickMade       = "PickMade"
	TypeTurnSkipped    = "TurnSkipped"
	TypeTeamJoined     = "TeamJoined"
	TypeOrderShuffled  = "OrderShuffled"
)

// DraftStartedPayload is the payload for a DraftStarted event.
type DraftStartedPayload struct {
	DraftID     string    `json:"draft_id"`
	StartedAt   time.Time `json:"started_at"`
	TotalRounds int       `json:"total_rounds"`
	TotalPicks  int       `json:"total_picks"`
	TeamCount   int       `json:"team_count"`
}

// DraftCompletedPayload is the payload for a DraftCompleted event.
type DraftCompletedPayload struct {
	DraftID     string    `json:"draft_id"`
	CompletedAt time.Time `json:"completed_at"`
	TotalPicks  int       `json:"total_picks"`
	PicksMade   int       `json:"picks_made"`
}

// PickStartedPayload announces that a new turn is on the clock.
type PickStartedPayload struct {
	PickNumber     int       `json:"pick_number"`
	Round          int       `json:"round"`
	TeamID         string    `json:"team_id"`
	TeamName       string    `json:"team_name"`
	StartedAt      time.Time `json:"started_at"`
	TimeoutAt      time.Time `json:"timeout_at"`
	TimePerPickSec int       `json:"time_per_pick_sec"`
}

// PickMadePayload is the payload for a committed pick.
type PickMadePayload struct {
	PickID     string    `json:"pick_id"`
	PickNumber int       `json:"pick_number"`
	Round      int       `json:"round"`
	TeamID     string    `json:"team_id"`
	TeamName   string    `json:"team_name"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	MadeAt     time.Time `json:"made_at"`
}

// TurnSkippedPayload is the payload for a turn that timed out with no pick.
// The slot is skipped: no Pick record exists for this pick number.
type TurnSkippedPayload struct {
	PickNumber int       `json:"pick_number"`
	Round      int       `json:"round"`
	TeamID     string    `json:"team_id"`
	SkippedAt  time.Time `json:"skipped_at"`
}

// TeamJoinedPayload is the payload for a participant joining a PRE draft.
type TeamJoinedPayload struct {
	TeamID           string    `json:"team_id"`
	TeamName         string    `json:"team_name"`
	DraftOrderNumber int       `json:"draft_order_number"`
	JoinedAt         time.Time `json:"joined_at"`
}

// OrderShuffledPayload is the payload for a host reshuffling the draft order.
type OrderShuffledPayload struct {
	TeamIDs    []string  `json:"team_ids"` // new order, position 1..N
	ShuffledAt time.Time `json:"shuffled_at"`
}
