package models

import (
	"time"

	"github.com/google/uuid"
)

// Pick represents a single committed pick in a draft. Picks are append-only:
// once committed they are never updated or deleted. Within a draft,
// PickNumber values are unique and form a prefix of 1..TotalPicks, and a
// player id appears at most once.
type Pick struct {
	ID         uuid.UUID `json:"id"`
	DraftID    uuid.UUID `json:"draft_id"`
	TeamID     uuid.UUID `json:"team_id"`
	PlayerID   uuid.UUID `json:"player_id"`
	PickNumber int       `json:"pick_number"`
	Round      int       `json:"round"`
	PickedAt   time.Time `json:"picked_at"`
}
