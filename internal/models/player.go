package models

import (
	"time"

	"github.com/google/uuid"
)

// Player represents a draftable catalog entry, shared across all drafts and
// immutable once seeded.
type Player struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Position  string    `json:"position"` // 'C', 'LW', 'RW', 'D', 'G'
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}
