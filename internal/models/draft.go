package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftStatus defines the lifecycle phase of a draft.
type DraftStatus string

const (
	DraftStatusPre    DraftStatus = "PRE"
	DraftStatusDuring DraftStatus = "DURING"
	DraftStatusPost   DraftStatus = "POST"
)

// DraftSettings holds JSONB configuration for drafts.
type DraftSettings struct {
	Rounds         int `json:"rounds"`
	TimePerPickSec int `json:"time_per_pick_sec"`
}

// Draft represents a draft instance. The cursor fields are meaningful only
// while Status is DURING; CurrentPickNumber is the sole source of truth for
// whose turn it is.
type Draft struct {
	ID                  uuid.UUID     `json:"id"`
	Name                string        `json:"name"`
	HostPrincipalID     string        `json:"host_principal_id"`
	Status              DraftStatus   `json:"status"`
	Settings            DraftSettings `json:"settings"`
	ScheduledAt         time.Time     `json:"scheduled_at"`
	StartedAt           *time.Time    `json:"started_at,omitempty"`
	CompletedAt         *time.Time    `json:"completed_at,omitempty"`
	CurrentPickNumber   int           `json:"current_pick_number"`
	CurrentPickStartAt  *time.Time    `json:"current_pick_start_at,omitempty"`
	CurrentPickDeadline *time.Time    `json:"current_pick_deadline,omitempty"`
	TotalPicks          int           `json:"total_picks"` // frozen at start: teams * rounds
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}
