// Package outbox implements the transactional outbox: domain events are
// written to Postgres alongside state changes, then relayed to JetStream
// by a polling worker. Delivery is at-least-once; consumers dedupe on the
// event ID.
package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Event is an outbox row awaiting (or after) relay.
type Event struct {
	ID        uuid.UUID
	DraftID   uuid.UUID
	EventType string
	Payload   []byte
	CreatedAt time.Time
	SentAt    *time.Time
}
