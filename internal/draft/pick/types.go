package pick

import (
	"github.com/google/uuid"
	"github.com/rinkdraft/rinkdraft/internal/models"
)

// SubmitPickRequest represents a participant's attempt to claim a player
// for the current turn. ExpectedPickNumber is the cursor value the caller
// observed; a mismatch means the caller is acting on outdated state.
type SubmitPickRequest struct {
	DraftID            uuid.UUID `json:"draft_id"`
	TeamID             uuid.UUID `json:"team_id"`
	PlayerID           uuid.UUID `json:"player_id"`
	ExpectedPickNumber int       `json:"expected_pick_number"`
	PrincipalID        string    `json:"-"`
}

// PickDetail is a committed pick joined with its team and player names for
// display.
type PickDetail struct {
	models.Pick
	TeamName   string `json:"team_name"`
	PlayerName string `json:"player_name"`
}
