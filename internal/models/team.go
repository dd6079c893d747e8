package models

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a participant's team within a single draft.
// DraftOrderNumber is unique and contiguous over 1..N within a draft and
// never changes after the draft starts.
type Team struct {
	ID               uuid.UUID `json:"id"`
	DraftID          uuid.UUID `json:"draft_id"`
	OwnerPrincipalID string    `json:"owner_principal_id"`
	Name             string    `json:"name"`
	DraftOrderNumber int       `json:"draft_order_number"`
	CreatedAt        time.Time `json:"created_at"`
}
