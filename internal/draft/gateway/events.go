package gateway

import (
	"encoding/json"
	"time"
)

// DraftEvent is the frame pushed to draft room clients over WebSocket.
type DraftEvent struct {
	ID        string          `json:"id"`
	DraftID   string          `json:"draft_id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}
