package models

import (
	"time"

	"github.com/google/uuid"
)

// PresenceEntry records the last heartbeat from a principal in a draft.
// Entries are upserted on heartbeat and deleted on explicit leave or by the
// idle sweep; recency against the online threshold decides visibility.
type PresenceEntry struct {
	DraftID     uuid.UUID `json:"draft_id"`
	PrincipalID string    `json:"principal_id"`
	LastSeen    time.Time `json:"last_seen"`
}
